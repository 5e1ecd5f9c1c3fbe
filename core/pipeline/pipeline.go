package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/config"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/inventory"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/reconcile"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/rest"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/feature/illumio"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/feature/servicenow"
)

// Result is the outcome of one complete acquisition and reconciliation run.
type Result struct {
	RunID string

	Workloads []inventory.Workload
	// Servers is nil when the CMDB source was unavailable.
	Servers []inventory.Server

	Records []reconcile.Record
	Stats   *reconcile.Stats

	CMDBAvailable bool

	IllumioFetch    rest.StatsSnapshot
	ServiceNowFetch rest.StatsSnapshot

	StartedAt  time.Time
	FinishedAt time.Time
}

// Run executes the pipeline: fetch workloads from the PCE (fatal on failure),
// fetch servers from the CMDB (degrades to Illumio-only mode on failure),
// then reconcile. Connector sessions are closed on every exit path.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Result, error) {
	result := &Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	runLog := log.With(zap.String("run_id", result.RunID))

	if err := fetchWorkloads(ctx, cfg, runLog, result); err != nil {
		return nil, err
	}

	fetchServers(ctx, cfg, runLog, result)

	runLog.Info("reconciling data",
		zap.Int("workloads", len(result.Workloads)),
		zap.Int("servers", len(result.Servers)),
		zap.Bool("cmdb_available", result.CMDBAvailable))

	var servers []inventory.Server
	if result.CMDBAvailable {
		servers = result.Servers
		if servers == nil {
			servers = []inventory.Server{}
		}
	}
	result.Records, result.Stats = reconcile.Reconcile(result.Workloads, servers)
	result.FinishedAt = time.Now()

	runLog.Info("reconciliation complete",
		zap.Int("records", len(result.Records)),
		zap.Float64("coverage_rate", result.Stats.CoverageRate))

	return result, nil
}

// fetchWorkloads pulls the PCE inventory. Any failure here aborts the run.
func fetchWorkloads(ctx context.Context, cfg *config.Config, log *zap.Logger, result *Result) error {
	if err := cfg.Illumio.Validate(); err != nil {
		return fmt.Errorf("illumio config: %w", err)
	}

	connector := illumio.New(cfg.Illumio, cfg.Retry, cfg.Normalization, log)
	defer func() {
		connector.Close()
		result.IllumioFetch = connector.Stats()
	}()

	if err := connector.TestConnection(ctx); err != nil {
		return fmt.Errorf("illumio source unavailable: %w", err)
	}
	log.Info("connected to illumio pce")

	workloads, err := connector.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("fetching illumio data: %w", err)
	}

	result.Workloads = workloads
	log.Info("fetched workloads", zap.Int("count", len(workloads)))
	return nil
}

// fetchServers pulls the CMDB inventory. Any failure here only degrades the
// run to Illumio-only mode.
func fetchServers(ctx context.Context, cfg *config.Config, log *zap.Logger, result *Result) {
	if err := cfg.ServiceNow.Validate(); err != nil {
		log.Warn("servicenow not configured, continuing without cmdb", zap.Error(err))
		return
	}

	connector := servicenow.New(cfg.ServiceNow, cfg.Filtering, cfg.Retry, cfg.Normalization, log)
	defer func() {
		connector.Close()
		result.ServiceNowFetch = connector.Stats()
	}()

	if err := connector.TestConnection(ctx); err != nil {
		log.Warn("servicenow unavailable, continuing with illumio-only analysis", zap.Error(err))
		return
	}
	log.Info("connected to servicenow")

	servers, err := connector.FetchAll(ctx)
	if err != nil {
		log.Warn("servicenow fetch failed, continuing with illumio-only analysis", zap.Error(err))
		return
	}

	if fields := connector.DiscoveredFields(); len(fields) > 0 {
		log.Info("cmdb custom fields discovered", zap.Int("count", len(fields)))
	}

	result.Servers = servers
	result.CMDBAvailable = true
	log.Info("fetched servers", zap.Int("count", len(servers)))
}
