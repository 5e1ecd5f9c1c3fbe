package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/inventory"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/reconcile"
)

var _ Sink = (*CSVSink)(nil)

// CSVSink writes extracts as plain CSV files, one file per table where the
// Excel sink writes one sheet per table.
type CSVSink struct {
	cfg Config
	dir string
	now time.Time
	log *zap.Logger

	files []string
}

// NewCSVSink creates the output directory and returns a sink writing into
// it.
func NewCSVSink(cfg Config, log *zap.Logger) (*CSVSink, error) {
	now := time.Now()
	dir := cfg.ExtractsPath(now)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating extracts directory: %w", err)
	}

	return &CSVSink{cfg: cfg, dir: dir, now: now, log: log}, nil
}

// Files returns the paths of every file written so far.
func (s *CSVSink) Files() []string {
	out := make([]string, len(s.files))
	copy(out, s.files)
	return out
}

func (s *CSVSink) filename(name string) string {
	base := fmt.Sprintf("%s_%s_%s.csv", s.cfg.FilePrefix, name, s.now.Format(dateLayout))
	return filepath.Join(s.dir, base)
}

// WriteWorkloads renders the PCE workload extract.
func (s *CSVSink) WriteWorkloads(_ context.Context, workloads []inventory.Workload) error {
	s.log.Info("exporting workloads", zap.Int("count", len(workloads)))

	rows := make([][]any, 0, len(workloads))
	for _, w := range workloads {
		rows = append(rows, workloadRow(w))
	}
	return s.writeTable("illumio_workloads", workloadHeaders, rows)
}

// WriteServers renders the CMDB server extract.
func (s *CSVSink) WriteServers(_ context.Context, servers []inventory.Server) error {
	s.log.Info("exporting servers", zap.Int("count", len(servers)))

	rows := make([][]any, 0, len(servers))
	for _, sv := range servers {
		rows = append(rows, serverRow(sv))
	}
	return s.writeTable("cmdb_servers", serverHeaders, rows)
}

// WriteReconciliation renders the same tables as the Excel sink's workbook,
// one CSV file per sheet.
func (s *CSVSink) WriteReconciliation(_ context.Context, records []reconcile.Record, stats *reconcile.Stats) error {
	s.log.Info("exporting reconciliation", zap.Int("records", len(records)))

	for _, sh := range reconciliationSheets(records, stats) {
		if err := s.writeTable(strings.ToLower(sh.name), sh.headers, sh.rows); err != nil {
			return err
		}
	}
	return nil
}

func (s *CSVSink) writeTable(name string, headers []string, rows [][]any) error {
	path := s.filename(name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	record := make([]string, len(headers))
	for _, row := range rows {
		for i, cell := range row {
			record[i] = fmt.Sprint(cell)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	s.files = append(s.files, path)
	s.log.Info("csv written", zap.String("path", path))
	return nil
}
