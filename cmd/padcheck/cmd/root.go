package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/padcheck/pkg/rules"
)

var (
	// Global flags
	verbose   bool
	rulesFile string
	settings  []string
	quiet     bool
)

var rootCmd = &cobra.Command{
	Use:   "padcheck",
	Short: "Pad, drill, silkscreen and stencil checks for KiCad boards",
	Long: `padcheck runs supplementary design rule checks on a KiCad board:
  - pad info: every pad with its paste and mask margins
  - stencil: paste aperture area and aspect ratios per stencil thickness
  - drill: hole sizes, edge clearance, via spacing and via to track clearance
  - silk: silkscreen to pad clearance, line widths and text sizes

Examples:
  padcheck check board.kicad_pcb                  # Run every check
  padcheck drill --set via_to_via=0.25mm board.kicad_pcb
  padcheck silk --slow --outline-png out.png board.kicad_pcb
  padcheck rules show --format yaml               # Print effective thresholds
  padcheck ui board.kicad_pcb                     # Open the check dialog`,
	Version:      "0.9.0",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := log.InfoLevel
		if verbose {
			level = log.DebugLevel
		}
		logger := newLogger(os.Stderr, level)
		log.SetDefault(logger)
		cmd.SetContext(withLogger(cmd.Context(), logger))
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&rulesFile, "rules", "r", "", "rule file (.toml, .yaml, .json or .kicad_dru)")
	rootCmd.PersistentFlags().StringArrayVar(&settings, "set", nil, "override one threshold, as name=value (repeatable)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "do not show progress")
}

// loadConfig builds the effective thresholds: defaults, then the rule file,
// then --set overrides.
func loadConfig(ctx context.Context) (rules.Config, error) {
	logger := loggerFromContext(ctx)

	cfg := rules.Default()
	if rulesFile != "" {
		if err := cfg.LoadFile(rulesFile); err != nil {
			return cfg, err
		}
		logger.Debug("loaded rules", "path", rulesFile)
	}

	for _, s := range settings {
		key, value, ok := strings.Cut(s, "=")
		if !ok {
			return cfg, fmt.Errorf("invalid --set %q: expected name=value", s)
		}
		if err := cfg.Set(key, value); err != nil {
			return cfg, err
		}
		logger.Debug("override", "key", key, "value", value)
	}

	return cfg, cfg.Validate()
}
