package export

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/inventory"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/reconcile"
)

// Supported extract formats.
const (
	FormatExcel = "excel"
	FormatCSV   = "csv"
)

// Sink accepts fetch and reconciliation results for rendering. The caller
// passes fully materialized collections; the sink owns all formatting.
type Sink interface {
	// WriteWorkloads renders the PCE workload extract.
	WriteWorkloads(ctx context.Context, workloads []inventory.Workload) error
	// WriteServers renders the CMDB server extract.
	WriteServers(ctx context.Context, servers []inventory.Server) error
	// WriteReconciliation renders the reconciled record list and the
	// aggregate statistics.
	WriteReconciliation(ctx context.Context, records []reconcile.Record, stats *reconcile.Stats) error
	// Files returns the paths of every file written so far.
	Files() []string
}

// NewSink returns the extract sink for the configured format. Excel is the
// default; CSV is the fallback for environments that cannot consume
// workbooks.
func NewSink(cfg Config, log *zap.Logger) (Sink, error) {
	switch cfg.Format {
	case "", FormatExcel:
		return NewExcelSink(cfg, log)
	case FormatCSV:
		return NewCSVSink(cfg, log)
	default:
		return nil, fmt.Errorf("unknown export format %q", cfg.Format)
	}
}
