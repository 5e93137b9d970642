package cmd

import (
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/padcheck/internal/ui"
	"github.com/OpenTraceLab/padcheck/pkg/board"
)

var uiCmd = &cobra.Command{
	Use:   "ui <board_file>",
	Short: "Open the interactive check window",
	Long: `Opens a window with the threshold settings, one button per check, a live
console and a board preview that highlights the selected objects.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Context())
		if err != nil {
			return err
		}
		b, err := board.Load(args[0])
		if err != nil {
			return err
		}
		loggerFromContext(cmd.Context()).Info("opening board", "path", args[0], "pads", len(b.Pads))
		return ui.Run(b, cfg)
	},
}

func init() {
	rootCmd.AddCommand(uiCmd)
}
