package export

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/inventory"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/reconcile"
)

func testSink(t *testing.T) *ExcelSink {
	t.Helper()
	cfg := Config{
		BasePath:       t.TempDir(),
		ExtractsFolder: "extracts",
		FilePrefix:     "illumio_monitoring",
	}
	sink, err := NewExcelSink(cfg, zap.NewNop())
	require.NoError(t, err)
	return sink
}

func TestExtractsPath(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	flat := Config{BasePath: "/data", ExtractsFolder: "extracts"}
	assert.Equal(t, filepath.Join("/data", "extracts"), flat.ExtractsPath(now))

	dated := Config{BasePath: "/data", ExtractsFolder: "extracts", CreateDateSubfolder: true}
	assert.Equal(t, filepath.Join("/data", "extracts", "01-03-2025"), dated.ExtractsPath(now))
}

func TestWriteWorkloads(t *testing.T) {
	sink := testSink(t)

	workloads := []inventory.Workload{
		{
			Hostname:           "web01.corp.example.com",
			HostnameNormalized: "WEB01",
			PrimaryIP:          "10.0.0.5",
			Online:             true,
			Managed:            true,
			VENStatus:          inventory.VENActive,
		},
	}

	require.NoError(t, sink.WriteWorkloads(context.Background(), workloads))

	files := sink.Files()
	require.Len(t, files, 1)
	assert.Contains(t, filepath.Base(files[0]), "illumio_monitoring_illumio_workloads_")

	f, err := excelize.OpenFile(files[0])
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{"All_Workloads"}, f.GetSheetList())

	header, err := f.GetCellValue("All_Workloads", "A1")
	require.NoError(t, err)
	assert.Equal(t, "hostname", header)

	hostname, err := f.GetCellValue("All_Workloads", "A2")
	require.NoError(t, err)
	assert.Equal(t, "web01.corp.example.com", hostname)

	online, err := f.GetCellValue("All_Workloads", "F2")
	require.NoError(t, err)
	assert.Equal(t, "Yes", online)
}

func TestWriteServersJoinsCustomFields(t *testing.T) {
	sink := testSink(t)

	servers := []inventory.Server{
		{
			SysID:              "sys-1",
			Name:               "web01",
			HostnameNormalized: "WEB01",
			Extra:              map[string]string{"u_support_tier": "gold", "u_cost_center": "cc-42"},
		},
	}

	require.NoError(t, sink.WriteServers(context.Background(), servers))

	files := sink.Files()
	require.Len(t, files, 1)

	f, err := excelize.OpenFile(files[0])
	require.NoError(t, err)
	defer f.Close()

	// The custom_fields column is last and carries the sorted side-table.
	cell, _ := excelize.CoordinatesToCellName(len(serverHeaders), 2)
	extras, err := f.GetCellValue("All_Servers", cell)
	require.NoError(t, err)
	assert.Equal(t, "u_cost_center=cc-42, u_support_tier=gold", extras)
}

func TestWriteReconciliationSheets(t *testing.T) {
	sink := testSink(t)

	records := []reconcile.Record{
		{HostnameNormalized: "WEB01", Status: reconcile.StatusDeployedActive, MatchType: reconcile.MatchHostname},
		{HostnameNormalized: "WEB02", Status: reconcile.StatusNotInCMDB, MatchType: reconcile.MatchNone},
		{HostnameNormalized: "DB01", Status: reconcile.StatusNotDeployed, MatchType: reconcile.MatchNone},
		{HostnameNormalized: "DB02", Status: reconcile.StatusDeployedOffline, MatchType: reconcile.MatchHostname},
	}
	stats := &reconcile.Stats{TotalCMDBServers: 3, TotalIllumioWorkloads: 3, CoverageRate: 66.67}

	require.NoError(t, sink.WriteReconciliation(context.Background(), records, stats))

	files := sink.Files()
	require.Len(t, files, 1)

	f, err := excelize.OpenFile(files[0])
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t,
		[]string{"Reconciliation", "Summary", "Gap_Analysis", "Shadow_IT", "Health_Issues"},
		f.GetSheetList())

	// The gap sheet holds only the agent-less server.
	rows, err := f.GetRows("Gap_Analysis")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "DB01", rows[1][0])

	// Summary rows render the rates as percentages.
	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	found := false
	for _, row := range summary {
		if len(row) >= 2 && row[0] == "coverage_rate" {
			assert.Equal(t, "66.67%", row[1])
			found = true
		}
	}
	assert.True(t, found, "summary has no coverage_rate row")
}

func TestWriteReconciliationOmitsEmptyGapSheets(t *testing.T) {
	sink := testSink(t)

	records := []reconcile.Record{
		{HostnameNormalized: "WEB01", Status: reconcile.StatusDeployedActive, MatchType: reconcile.MatchHostname},
	}

	require.NoError(t, sink.WriteReconciliation(context.Background(), records, &reconcile.Stats{}))

	f, err := excelize.OpenFile(sink.Files()[0])
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Reconciliation", "Summary"}, f.GetSheetList())
}
