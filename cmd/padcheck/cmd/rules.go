package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/padcheck/pkg/drilltable"
	"github.com/OpenTraceLab/padcheck/pkg/rules"
	"github.com/OpenTraceLab/padcheck/pkg/units"
)

var rulesFormat string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect thresholds and drill sets",
}

var rulesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective thresholds as a rule file",
	Long: `Prints the thresholds after applying --rules and --set, in a form that
can be saved and passed back with --rules.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Context())
		if err != nil {
			return err
		}
		return cfg.Encode(cmd.OutOrStdout(), rules.Format(strings.ToLower(rulesFormat)))
	},
}

var rulesKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List every threshold name with its current value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, key := range rules.Keys() {
			value, err := cfg.Get(key)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\n", key, value)
		}
		return w.Flush()
	},
}

var rulesDrillsCmd = &cobra.Command{
	Use:   "drills",
	Short: "List the standard drill sets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for i, set := range drilltable.Sets() {
			lo, hi := set.Range()
			mark := " "
			if i == cfg.DrillSet {
				mark = "*"
			}
			fmt.Fprintf(out, "%s %d  %s\n", mark, i, styleTitle.Render(set.Name))
			fmt.Fprintf(out, "     %d drills, %s to %s\n", len(set.Drills), units.Format(lo, "mm"), units.Format(hi, "mm"))
			if set.Source != "" {
				fmt.Fprintf(out, "     %s\n", styleDim.Render(set.Source))
			}
		}
		return nil
	},
}

func init() {
	rulesShowCmd.Flags().StringVarP(&rulesFormat, "format", "f", "toml", "output format: toml, yaml or json")
	rulesCmd.AddCommand(rulesShowCmd, rulesKeysCmd, rulesDrillsCmd)
	rootCmd.AddCommand(rulesCmd)
}
