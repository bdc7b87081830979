package main

import (
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"

	"github.com/mickaelfiorentino/keyv/src/report"
)

var reportHelp = map[string][2]string{
	"area": {"Plot cell type and module area per processor",
		`Reads area_summary.csv and writes area: the CMB/SEQ split next to the
module hierarchy, with OTHER holding what the named modules leave.`},
	"benchmark": {"Plot benchmark scores and power breakdowns",
		`Reads benchmarks_summary.csv, splits it into dhrystone and coremark rows
and writes power_score, power_groups, power_categories and power_hier.`},
	"timing": {"Plot average setup and hold arrival time and slack per stage",
		`Reads sta_summary.csv, groups rows by path direction and trial and writes
sta_avg with the mean data arrival time and slack of each pipeline stage.`},
}

func newReportCmd(b report.Builder, rf *rootFlags) *cobra.Command {
	help := reportHelp[b.Name()]
	return &cobra.Command{
		Use:   b.Name(),
		Short: help[0],
		Long:  help[1],
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReports(cmd, rf, b)
		},
	}
}

func newConfigCmd(rf *rootFlags) *cobra.Command {
	var color bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		Long:  `Resolves defaults, the config file, KEYV_* variables and flags the same way a run does and prints the result.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, rf)
			if err != nil {
				return err
			}
			pp.ColoringEnabled = color
			_, err = pp.Fprintln(cmd.OutOrStdout(), cfg)
			return err
		},
	}
	cmd.Flags().BoolVar(&color, "color", false, "colorize the output")
	return cmd
}
