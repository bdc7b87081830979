package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mickaelfiorentino/keyv/src/config"
	"github.com/mickaelfiorentino/keyv/src/logging"
	"github.com/mickaelfiorentino/keyv/src/report"
)

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configFile string
	envFile    string
}

func newRootCmd() *cobra.Command {
	var rf rootFlags
	root := &cobra.Command{
		Use:   "keyvplots",
		Short: "Plot KeyV area, power and timing summaries",
		Long: `keyvplots reads area_summary.csv, benchmarks_summary.csv and sta_summary.csv
from the data directory ($KEYV_DATA) and writes area, power_score,
power_groups, power_categories, power_hier and sta_avg images next to them.
Without a subcommand every report is rendered.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReports(cmd, &rf, report.All()...)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&rf.configFile, "config", "", "config file (default keyvplots.yaml in . or $KEYV_HOME)")
	pf.StringVar(&rf.envFile, "env-file", "", "environment file loaded before lookup (default .env when present)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.Bool("keep-going", false, "render the remaining reports when one fails")
	pf.Bool("workbook", false, "also write the plotted values to an xlsx workbook")
	pf.String("format", "png", "image format: png or svg")
	pf.Int("dpi", 200, "image resolution")

	for _, b := range report.All() {
		root.AddCommand(newReportCmd(b, &rf))
	}
	root.AddCommand(newConfigCmd(&rf))
	return root
}

// loadConfig resolves the configuration for cmd and applies the log level.
func loadConfig(cmd *cobra.Command, rf *rootFlags) (*config.Config, error) {
	if lvl, err := cmd.Flags().GetString("log-level"); err == nil && logging.ValidLevel(lvl) {
		logging.SetLogLevel(lvl)
	}
	cfg, err := config.Load(config.Sources{
		ConfigFile: rf.configFile,
		EnvFile:    rf.envFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return nil, err
	}
	logging.SetLogLevel(cfg.LogLevel)
	return cfg, nil
}

func runReports(cmd *cobra.Command, rf *rootFlags, builders ...report.Builder) error {
	cfg, err := loadConfig(cmd, rf)
	if err != nil {
		return err
	}
	res, err := report.Run(report.NewEnv(cfg), builders...)
	if res != nil {
		out := cmd.OutOrStdout()
		for _, img := range res.Images {
			fmt.Fprintln(out, img)
		}
		if res.Workbook != "" {
			fmt.Fprintln(out, res.Workbook)
		}
	}
	return err
}
