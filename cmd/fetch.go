package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/climex-dev/climex/internal/api"
	"github.com/climex-dev/climex/internal/dispatcher"
	"github.com/climex-dev/climex/internal/fetcher"
	"github.com/climex-dev/climex/internal/power"
	"github.com/climex-dev/climex/internal/progress"
	"github.com/climex-dev/climex/internal/progress/sinks"
	"github.com/climex-dev/climex/internal/reducer"
	"github.com/climex-dev/climex/internal/table"
)

// newFetchCmd creates the 'fetch' subcommand, which runs the full
// plan/download/reduce pipeline over a location CSV.
func newFetchCmd() *cobra.Command {
	var (
		input       string
		outPath     string
		xlsxPath    string
		folder      string
		processes   int
		consolidate bool
		listen      string
	)
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download climate data for every location in a CSV table",
		Long: `Plans one provider request per input row, downloads with bounded
concurrency, writes one CSV per location into the output folder, and
writes the summary or consolidated table to --out.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if input != "" {
				cfg.Input.Path = input
			}
			if outPath != "" {
				cfg.Output.ResultPath = outPath
			}
			if xlsxPath != "" {
				cfg.Output.XLSXPath = xlsxPath
			}
			if folder != "" {
				cfg.Output.Folder = folder
			}
			if cmd.Flags().Changed("processes") {
				cfg.Fetch.Processes = processes
			}
			if cmd.Flags().Changed("consolidate") {
				cfg.Output.Consolidate = consolidate
			}
			if listen != "" {
				cfg.Monitor.Listen = listen
			}
			if cfg.Input.Path == "" {
				return fmt.Errorf("an input location table is required (--input)")
			}
			return runFetch(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "location CSV path")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "result table CSV path")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write the result table as XLSX")
	cmd.Flags().StringVar(&folder, "folder", "", "per-location output folder")
	cmd.Flags().IntVarP(&processes, "processes", "p", power.DefaultProcesses, "requested pool concurrency (capped at 5)")
	cmd.Flags().BoolVar(&consolidate, "consolidate", true, "return the consolidated table instead of the summary")
	cmd.Flags().StringVar(&listen, "listen", "", "serve /healthz and /metrics on this address while fetching")
	return cmd
}

func runFetch(ctx context.Context) error {
	started := time.Now()

	locations, err := table.ReadCSV(cfg.Input.Path)
	if err != nil {
		return fmt.Errorf("load locations: %w", err)
	}
	opts := cfg.Options()

	jobs, err := power.Plan(locations, opts)
	if err != nil {
		return err
	}
	logger.Info("planned download batch",
		zap.Int("jobs", len(jobs)),
		zap.Strings("parameters", opts.Parameters),
		zap.String("temporal_resolution", string(opts.Temporal)),
		zap.String("spatial_resolution", string(opts.Spatial)),
		zap.String("community", string(opts.Community)),
	)

	registry := prometheus.NewRegistry()
	promSink, err := sinks.NewPrometheusSink(registry)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	hub := progress.NewHub(progress.Config{Logger: logger},
		sinks.NewLogSink(logger),
		promSink,
	)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = hub.Close(closeCtx)
	}()

	if cfg.Monitor.Listen != "" {
		monitor := api.NewServer(cfg.Monitor.Listen, registry, logger)
		monitor.Start()
		defer func() {
			shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = monitor.Shutdown(shutCtx)
		}()
	}

	f := fetcher.New(fetcher.Config{
		Timeout:            time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
		InsecureSkipVerify: opts.InsecureSkipVerify,
		FailOnMissingData:  opts.FailOnMissingData,
	}, logger)

	outcomes := dispatcher.New(f, hub, logger).Run(ctx, jobs, opts.Processes)

	succeeded := 0
	for _, o := range outcomes {
		if o.Success {
			succeeded++
		}
	}
	logger.Info("download batch finished",
		zap.Int("succeeded", succeeded),
		zap.Int("failed", len(outcomes)-succeeded),
		zap.Duration("elapsed", time.Since(started)),
	)

	result := reducer.New(logger).Reduce(outcomes, opts.OutputFolder, opts.Consolidate)

	if cfg.Output.ResultPath != "" {
		if err := result.WriteCSV(cfg.Output.ResultPath); err != nil {
			return fmt.Errorf("write result table: %w", err)
		}
		logger.Info("wrote result table",
			zap.String("path", cfg.Output.ResultPath),
			zap.Int("rows", result.Len()),
		)
	}
	if cfg.Output.XLSXPath != "" {
		if err := result.WriteXLSX(cfg.Output.XLSXPath, "climex"); err != nil {
			return fmt.Errorf("write result workbook: %w", err)
		}
		logger.Info("wrote result workbook", zap.String("path", cfg.Output.XLSXPath))
	}

	if succeeded < len(outcomes) {
		logger.Warn("some locations failed; inspect the summary success column",
			zap.Int("failed", len(outcomes)-succeeded),
		)
	}
	return nil
}
