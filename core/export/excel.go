package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/inventory"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/reconcile"
)

// headerColor is the fill color of header rows in generated workbooks.
const headerColor = "A100FF"

var _ Sink = (*ExcelSink)(nil)

// ExcelSink writes extracts as Excel workbooks with dated file names.
type ExcelSink struct {
	cfg Config
	dir string
	now time.Time
	log *zap.Logger

	files []string
}

// NewExcelSink creates the output directory and returns a sink writing
// into it.
func NewExcelSink(cfg Config, log *zap.Logger) (*ExcelSink, error) {
	now := time.Now()
	dir := cfg.ExtractsPath(now)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating extracts directory: %w", err)
	}

	return &ExcelSink{cfg: cfg, dir: dir, now: now, log: log}, nil
}

// Files returns the paths of every workbook written so far.
func (s *ExcelSink) Files() []string {
	out := make([]string, len(s.files))
	copy(out, s.files)
	return out
}

func (s *ExcelSink) filename(name string) string {
	base := fmt.Sprintf("%s_%s_%s.xlsx", s.cfg.FilePrefix, name, s.now.Format(dateLayout))
	return filepath.Join(s.dir, base)
}

var workloadHeaders = []string{
	"hostname", "hostname_normalized", "name", "primary_ip", "all_ips",
	"online", "managed", "ven_status", "ven_version",
	"enforcement_mode", "visibility_level",
	"label_app", "label_env", "label_role", "label_loc",
	"os_type", "os_detail", "agent_status", "agent_last_heartbeat",
	"data_center", "data_center_zone", "created_at", "updated_at", "href",
}

func workloadRow(w inventory.Workload) []any {
	return []any{
		w.Hostname, w.HostnameNormalized, w.Name, w.PrimaryIP, w.AllIPs,
		yesNo(w.Online), yesNo(w.Managed), string(w.VENStatus), w.VENVersion,
		w.EnforcementMode, w.VisibilityLevel,
		w.LabelApp, w.LabelEnv, w.LabelRole, w.LabelLoc,
		w.OSType, w.OSDetail, w.AgentStatus, w.AgentLastHeartbeat,
		w.DataCenter, w.DataCenterZone, w.CreatedAt, w.UpdatedAt, w.Href,
	}
}

// WriteWorkloads renders the PCE workload extract.
func (s *ExcelSink) WriteWorkloads(_ context.Context, workloads []inventory.Workload) error {
	s.log.Info("exporting workloads", zap.Int("count", len(workloads)))

	rows := make([][]any, 0, len(workloads))
	for _, w := range workloads {
		rows = append(rows, workloadRow(w))
	}

	return s.writeWorkbook("illumio_workloads", []sheet{
		{name: "All_Workloads", headers: workloadHeaders, rows: rows},
	})
}

var serverHeaders = []string{
	"sys_id", "name", "hostname", "hostname_normalized", "ip_address",
	"operating_entity", "company", "environment", "application",
	"os", "os_version", "operational_status", "install_status",
	"location", "assigned_to", "support_group",
	"serial_number", "sys_class_name", "virtual",
	"discovery_source", "last_discovered", "custom_fields",
}

func serverRow(sv inventory.Server) []any {
	extras := make([]string, 0, len(sv.Extra))
	for _, key := range sv.ExtraFields() {
		extras = append(extras, key+"="+sv.Extra[key])
	}

	return []any{
		sv.SysID, sv.Name, sv.Hostname, sv.HostnameNormalized, sv.IPAddress,
		sv.OperatingEntity, sv.Company, sv.Environment, sv.Application,
		sv.OS, sv.OSVersion, sv.OperationalStatus, sv.InstallStatus,
		sv.Location, sv.AssignedTo, sv.SupportGroup,
		sv.SerialNumber, sv.SysClassName, sv.Virtual,
		sv.DiscoverySource, sv.LastDiscovered, strings.Join(extras, ", "),
	}
}

// WriteServers renders the CMDB server extract.
func (s *ExcelSink) WriteServers(_ context.Context, servers []inventory.Server) error {
	s.log.Info("exporting servers", zap.Int("count", len(servers)))

	rows := make([][]any, 0, len(servers))
	for _, sv := range servers {
		rows = append(rows, serverRow(sv))
	}

	return s.writeWorkbook("cmdb_servers", []sheet{
		{name: "All_Servers", headers: serverHeaders, rows: rows},
	})
}

var recordHeaders = []string{
	"hostname_normalized", "reconciliation_status", "match_type",
	"cmdb_name", "cmdb_hostname", "cmdb_ip_address",
	"cmdb_operating_entity", "cmdb_environment", "cmdb_application",
	"cmdb_os", "cmdb_operational_status", "cmdb_location", "cmdb_assigned_to",
	"illumio_hostname", "illumio_name", "illumio_primary_ip",
	"illumio_online", "illumio_managed", "illumio_ven_status",
	"illumio_ven_version", "illumio_enforcement_mode",
	"illumio_label_app", "illumio_label_env", "illumio_last_heartbeat",
	"cmdb_sys_id", "illumio_href",
}

func recordRow(r reconcile.Record) []any {
	return []any{
		r.HostnameNormalized, string(r.Status), string(r.MatchType),
		r.CMDBName, r.CMDBHostname, r.CMDBIPAddress,
		r.CMDBOperatingEntity, r.CMDBEnvironment, r.CMDBApplication,
		r.CMDBOS, r.CMDBOperationalStatus, r.CMDBLocation, r.CMDBAssignedTo,
		r.IllumioHostname, r.IllumioName, r.IllumioPrimaryIP,
		r.IllumioOnline, r.IllumioManaged, string(r.IllumioVENStatus),
		r.IllumioVENVersion, r.IllumioEnforcementMode,
		r.IllumioLabelApp, r.IllumioLabelEnv, r.IllumioLastHeartbeat,
		r.CMDBSysID, r.IllumioHref,
	}
}

// WriteReconciliation renders the reconciled records, the gap-analysis views
// and a summary sheet with the aggregate statistics.
func (s *ExcelSink) WriteReconciliation(_ context.Context, records []reconcile.Record, stats *reconcile.Stats) error {
	s.log.Info("exporting reconciliation", zap.Int("records", len(records)))

	return s.writeWorkbook("reconciliation", reconciliationSheets(records, stats))
}

// reconciliationSheets assembles the reconciliation tables: all records, the
// summary, and the gap-analysis views when they have rows.
func reconciliationSheets(records []reconcile.Record, stats *reconcile.Stats) []sheet {
	sheets := []sheet{
		{name: "Reconciliation", headers: recordHeaders, rows: recordRows(records)},
		{name: "Summary", headers: []string{"metric", "value"}, rows: summaryRows(stats)},
	}

	if notDeployed := reconcile.NotDeployed(records); len(notDeployed) > 0 {
		sheets = append(sheets, sheet{name: "Gap_Analysis", headers: recordHeaders, rows: recordRows(notDeployed)})
	}
	if shadow := reconcile.ShadowIT(records); len(shadow) > 0 {
		sheets = append(sheets, sheet{name: "Shadow_IT", headers: recordHeaders, rows: recordRows(shadow)})
	}

	offline := reconcile.OfflineAgents(records)
	suspended := reconcile.SuspendedAgents(records)
	if len(offline) > 0 || len(suspended) > 0 {
		sheets = append(sheets, sheet{
			name:    "Health_Issues",
			headers: recordHeaders,
			rows:    recordRows(append(offline, suspended...)),
		})
	}

	return sheets
}

func recordRows(records []reconcile.Record) [][]any {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, recordRow(r))
	}
	return rows
}

func summaryRows(stats *reconcile.Stats) [][]any {
	rows := [][]any{
		{"total_cmdb_servers", stats.TotalCMDBServers},
		{"total_illumio_workloads", stats.TotalIllumioWorkloads},
		{"deployed_active", stats.DeployedActive},
		{"deployed_offline", stats.DeployedOffline},
		{"deployed_suspended", stats.DeployedSuspended},
		{"deployed_uninstalled", stats.DeployedUninstalled},
		{"not_deployed", stats.NotDeployed},
		{"not_in_cmdb", stats.NotInCMDB},
		{"matched_by_hostname", stats.MatchedByHostname},
		{"coverage_rate", fmt.Sprintf("%.2f%%", stats.CoverageRate)},
		{"active_rate", fmt.Sprintf("%.2f%%", stats.ActiveRate)},
		{"enforcement_rate", fmt.Sprintf("%.2f%%", stats.EnforcementRate)},
	}
	return rows
}

// sheet is one worksheet worth of tabular data.
type sheet struct {
	name    string
	headers []string
	rows    [][]any
}

// writeWorkbook renders the sheets into one workbook file and records its
// path for archiving.
func (s *ExcelSink) writeWorkbook(name string, sheets []sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerColor}},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	for i, sh := range sheets {
		if i == 0 {
			// Rename the default sheet instead of leaving it empty.
			if err := f.SetSheetName("Sheet1", sh.name); err != nil {
				return err
			}
		} else {
			if _, err := f.NewSheet(sh.name); err != nil {
				return err
			}
		}

		for col, header := range sh.headers {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			if err := f.SetCellValue(sh.name, cell, header); err != nil {
				return err
			}
		}

		endHeader, _ := excelize.CoordinatesToCellName(len(sh.headers), 1)
		if err := f.SetCellStyle(sh.name, "A1", endHeader, headerStyle); err != nil {
			return err
		}

		for rowIdx, row := range sh.rows {
			start, _ := excelize.CoordinatesToCellName(1, rowIdx+2)
			if err := f.SetSheetRow(sh.name, start, &row); err != nil {
				return err
			}
		}

		// Filterable header and frozen top row, like the analysts expect.
		if len(sh.rows) > 0 {
			endData, _ := excelize.CoordinatesToCellName(len(sh.headers), len(sh.rows)+1)
			if err := f.AutoFilter(sh.name, "A1:"+endData, nil); err != nil {
				return err
			}
		}
		if err := f.SetPanes(sh.name, &excelize.Panes{
			Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
		}); err != nil {
			return err
		}
	}

	path := s.filename(name)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	s.files = append(s.files, path)
	s.log.Info("workbook written", zap.String("path", path))
	return nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
