// Package cmd defines and implements the CLI commands for the climex
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/climex-dev/climex/internal/config"
	"github.com/climex-dev/climex/internal/logging"
)

var (
	cfgFile string

	// cfg and logger are initialized once in the root PersistentPreRunE
	// and shared by all subcommands.
	cfg    config.Config
	logger *zap.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "climex",
		Short: "Bulk NASA POWER climate-data downloader",
		Long: `climex downloads climate data from the NASA POWER API for every
location in a CSV table, one request per row with bounded concurrency,
and writes one CSV file per location plus a summary or consolidated
result table.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err = logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file (YAML)")
	cmd.AddCommand(newFetchCmd())
	cmd.AddCommand(newFilterCmd())
	return cmd
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
