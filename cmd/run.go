package cmd

import (
	"context"
	"fmt"

	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/config"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/export"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/logger"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/pipeline"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var skipExports bool

// runCmd executes one full acquisition, reconciliation and export cycle.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a full monitoring cycle (fetch, reconcile, export)",
	Long: `Fetches the workload inventory from the Illumio PCE and the server
inventory from the ServiceNow CMDB, reconciles them by hostname, and writes
Excel extracts and PDF reports. If ServiceNow is unreachable the run
continues in Illumio-only mode.

Examples:
  # Full cycle with exports and reports
  illumio-monitoring-tool run

  # Reconcile only, no files written
  illumio-monitoring-tool run --skip-exports`,
	RunE: runMonitoring,
}

func init() {
	runCmd.Flags().BoolVar(&skipExports, "skip-exports", false, "Skip writing Excel extracts and PDF reports")
	RootCmd.AddCommand(runCmd)
}

func runMonitoring(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	l.Info("Starting monitoring cycle")

	result, err := pipeline.Run(ctx, cfg, l)
	if err != nil {
		return err
	}

	if !skipExports {
		if err := writeExports(ctx, cfg, l, result); err != nil {
			return err
		}
	}

	logSummary(l, result)
	return nil
}

func writeExports(ctx context.Context, cfg *config.Config, l *zap.Logger, result *pipeline.Result) error {
	sink, err := export.NewSink(cfg.Output, l)
	if err != nil {
		return fmt.Errorf("failed to create export sink: %w", err)
	}

	if err := sink.WriteWorkloads(ctx, result.Workloads); err != nil {
		return fmt.Errorf("writing workload export: %w", err)
	}
	if result.CMDBAvailable {
		if err := sink.WriteServers(ctx, result.Servers); err != nil {
			return fmt.Errorf("writing server export: %w", err)
		}
	}
	if err := sink.WriteReconciliation(ctx, result.Records, result.Stats); err != nil {
		return fmt.Errorf("writing reconciliation export: %w", err)
	}

	reporter, err := export.NewPDFReporter(cfg.Output, l)
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}
	if err := reporter.WriteReports(ctx, result.Records, result.Stats, result.CMDBAvailable); err != nil {
		return fmt.Errorf("writing reports: %w", err)
	}

	files := append(sink.Files(), reporter.Files()...)
	l.Info("Exports written", zap.Strings("files", files))

	if !cfg.Storage.Enabled {
		return nil
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}
	archiver := export.NewArchiver(client, cfg.Storage, l)
	if err := archiver.Archive(ctx, result.RunID, files); err != nil {
		return fmt.Errorf("archiving exports: %w", err)
	}
	return nil
}

func logSummary(l *zap.Logger, result *pipeline.Result) {
	stats := result.Stats
	l.Info("Monitoring cycle complete",
		zap.String("run_id", result.RunID),
		zap.Duration("duration", result.FinishedAt.Sub(result.StartedAt)),
		zap.Bool("cmdb_available", result.CMDBAvailable),
		zap.Int("workloads", stats.TotalIllumioWorkloads),
		zap.Int("servers", stats.TotalCMDBServers),
		zap.Int("matched_by_hostname", stats.MatchedByHostname),
		zap.Int("not_deployed", stats.NotDeployed),
		zap.Int("not_in_cmdb", stats.NotInCMDB),
		zap.Float64("coverage_rate", stats.CoverageRate),
		zap.Float64("active_rate", stats.ActiveRate),
		zap.Float64("enforcement_rate", stats.EnforcementRate),
	)
	l.Info("Illumio session",
		zap.Int64("requests", result.IllumioFetch.RequestsMade),
		zap.Int64("failed", result.IllumioFetch.RequestsFailed),
		zap.Int64("retries", result.IllumioFetch.Retries),
		zap.Duration("duration", result.IllumioFetch.Duration),
	)
	if result.CMDBAvailable {
		l.Info("ServiceNow session",
			zap.Int64("requests", result.ServiceNowFetch.RequestsMade),
			zap.Int64("failed", result.ServiceNowFetch.RequestsFailed),
			zap.Int64("retries", result.ServiceNowFetch.Retries),
			zap.Duration("duration", result.ServiceNowFetch.Duration),
		)
	}
}
