package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/padcheck/pkg/board"
	"github.com/OpenTraceLab/padcheck/pkg/drc"
	"github.com/OpenTraceLab/padcheck/pkg/kicad/renderer"
	"github.com/OpenTraceLab/padcheck/pkg/task"
	"github.com/OpenTraceLab/padcheck/pkg/units"
)

var (
	failOnFlag bool
	slowSilk   bool
	outlinePNG string
	interval   = task.DefaultInterval
)

var padCmd = &cobra.Command{
	Use:   "pad <board_file>",
	Short: "List every pad with its paste and mask margins",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck("pad"),
}

var stencilCmd = &cobra.Command{
	Use:   "stencil <board_file>",
	Short: "Check paste apertures against stencil thickness",
	Long: `Groups paste apertures by size and reports their area and aspect ratios
for each candidate stencil thickness. Pads failing at the thinnest stencil are
selected.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck("stencil"),
}

var drillCmd = &cobra.Command{
	Use:   "drill <board_file>",
	Short: "Check holes, edge clearance and via spacing",
	Long: `Reports holes by layer and size, holes too close to straight board edges,
hole separation per layer, pad drills mapped onto a standard drill set, via
to via spacing and via to track clearance.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck("drill"),
}

var silkCmd = &cobra.Command{
	Use:   "silk <board_file>",
	Short: "Check silkscreen against pads, line widths and text sizes",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck("silk"),
}

var checkCmd = &cobra.Command{
	Use:   "check <board_file>",
	Short: "Run the pad, stencil, drill and silk checks in order",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck("all"),
}

func init() {
	for _, c := range []*cobra.Command{padCmd, stencilCmd, drillCmd, silkCmd, checkCmd} {
		c.Flags().BoolVar(&failOnFlag, "fail-on-flag", false, "exit with status 1 when any object fails")
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{silkCmd, checkCmd} {
		c.Flags().BoolVar(&slowSilk, "slow", false, "compare pads against every text stroke")
		c.Flags().StringVar(&outlinePNG, "outline-png", "", "write debug outlines and selected objects to a PNG file")
	}
}

func runCheck(name string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := loggerFromContext(ctx)

		cfg, err := loadConfig(ctx)
		if err != nil {
			return err
		}
		if slowSilk {
			cfg.SlowCheck = true
		}

		start := time.Now()
		b, err := board.Load(args[0])
		if err != nil {
			return err
		}
		logger.Info("loaded board", "path", args[0], "pads", len(b.Pads), "vias", len(b.Vias),
			"tracks", len(b.Tracks), "elapsed", time.Since(start).Round(time.Millisecond))

		check, err := drc.Lookup(name)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()

		t, err := task.NewRunner().Start(ctx, check, drc.Env{Board: b, Rules: cfg})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		bar := newProgressLine(cmd.ErrOrStderr(), t.Total, quiet)
		err = task.Poll(ctx, t, interval, func(progress int, lines []string) {
			bar.clear()
			for _, l := range lines {
				fmt.Fprintln(out, styleLine(l))
			}
			bar.show(progress)
		})
		bar.clear()
		logger.Debug("check finished", "check", t.Name, "id", t.ID, "elapsed", time.Since(start).Round(time.Millisecond))
		if err != nil {
			return fmt.Errorf("%s check: %w", t.Name, err)
		}

		printSelected(out, b, t.Flags)

		if outlinePNG != "" {
			scene := renderer.OutlineScene(b, t.Flags, t.Outlines())
			if err := renderer.SavePNG(outlinePNG, scene, renderer.DefaultImageOptions); err != nil {
				return err
			}
			logger.Info("wrote outlines", "path", outlinePNG, "outlines", len(scene.Outlines))
		}

		if failOnFlag && t.Flags.Len() > 0 {
			return fmt.Errorf("%d objects failed the %s check", t.Flags.Len(), t.Name)
		}
		return nil
	}
}

// printSelected lists the flagged objects after the report.
func printSelected(w io.Writer, b *board.Snapshot, flags *board.Flags) {
	ids := flags.List()
	if len(ids) == 0 {
		fmt.Fprintln(w, styleSuccess.Render("No objects selected."))
		return
	}
	fmt.Fprintln(w, styleError.Render(fmt.Sprintf("%d objects selected:", len(ids))))
	for _, id := range ids {
		p := b.Position(id)
		fmt.Fprintf(w, "  %-9s %-24s at (%.3f, %.3f) mm\n", id.Kind, b.Describe(id), units.MM(p.X), units.MM(p.Y))
	}
}

// progressLine redraws a one-line progress counter on a terminal stream.
type progressLine struct {
	w     io.Writer
	total int
	off   bool
	shown bool
}

func newProgressLine(w io.Writer, total int, off bool) *progressLine {
	return &progressLine{w: w, total: total, off: off || total <= 0}
}

func (p *progressLine) show(done int) {
	if p.off || done <= 0 {
		return
	}
	fmt.Fprintf(p.w, "\r%s", styleDim.Render(fmt.Sprintf("%d/%d (%d%%)", done, p.total, done*100/p.total)))
	p.shown = true
}

func (p *progressLine) clear() {
	if p.shown {
		fmt.Fprint(p.w, "\r\033[K")
		p.shown = false
	}
}
