package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/reconcile"
)

// Report branding.
const (
	reportCompany    = "Accenture"
	reportFooterText = "Confidential - Accenture Internal Use Only"
)

// PDFReporter renders the management reports as PDF documents, with the same
// dated file naming as the workbook extracts.
type PDFReporter struct {
	cfg Config
	dir string
	now time.Time
	log *zap.Logger

	files []string
}

// NewPDFReporter creates the reports directory and returns a reporter
// writing into it.
func NewPDFReporter(cfg Config, log *zap.Logger) (*PDFReporter, error) {
	now := time.Now()
	dir := cfg.ReportsPath(now)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating reports directory: %w", err)
	}

	return &PDFReporter{cfg: cfg, dir: dir, now: now, log: log}, nil
}

// Files returns the paths of every report written so far.
func (p *PDFReporter) Files() []string {
	out := make([]string, len(p.files))
	copy(out, p.files)
	return out
}

func (p *PDFReporter) filename(name string) string {
	base := fmt.Sprintf("%s_%s_%s.pdf", p.cfg.FilePrefix, name, p.now.Format(dateLayout))
	return filepath.Join(p.dir, base)
}

// WriteReports renders the full report set from one reconciled run.
func (p *PDFReporter) WriteReports(_ context.Context, records []reconcile.Record, stats *reconcile.Stats, cmdbAvailable bool) error {
	p.log.Info("generating reports", zap.Int("records", len(records)))

	if err := p.ExecutiveSummary(stats, cmdbAvailable); err != nil {
		return err
	}
	if err := p.DeploymentDashboard(stats); err != nil {
		return err
	}
	if err := p.AgentHealth(stats, reconcile.OfflineAgents(records), reconcile.SuspendedAgents(records)); err != nil {
		return err
	}
	return p.GapAnalysis(stats, reconcile.NotDeployed(records), reconcile.ShadowIT(records))
}

// DeploymentDashboard renders the deployment progress report: overall KPIs,
// the status distribution, and the environment and application breakdowns.
func (p *PDFReporter) DeploymentDashboard(stats *reconcile.Stats) error {
	pdf := p.newDoc()
	p.title(pdf, "Illumio Deployment Progress Dashboard")

	deployed := stats.DeployedActive + stats.DeployedOffline
	p.kpiRow(pdf, []kpi{
		{fmt.Sprintf("%.1f%%", stats.CoverageRate), "Coverage Rate"},
		{fmt.Sprintf("%d", stats.TotalCMDBServers), "Total Servers"},
		{fmt.Sprintf("%d", deployed), "Deployed"},
		{fmt.Sprintf("%d", stats.NotDeployed), "Pending"},
	})

	byStatus := []labelCount{
		{"Active", stats.DeployedActive},
		{"Offline", stats.DeployedOffline},
		{"Suspended", stats.DeployedSuspended},
		{"Not Deployed", stats.NotDeployed},
		{"Shadow IT", stats.NotInCMDB},
	}
	byStatus = dropZero(byStatus)
	if len(byStatus) > 0 {
		p.heading(pdf, "Deployment Status Distribution")
		p.barList(pdf, byStatus)
	}

	envDeployed := make(map[string]int)
	for env, statuses := range stats.ByEnvironment {
		if env == "" || env == "Unknown" {
			continue
		}
		n := statuses[reconcile.StatusDeployedActive] + statuses[reconcile.StatusDeployedOffline]
		if n > 0 {
			envDeployed[env] = n
		}
	}
	if len(envDeployed) > 0 {
		p.heading(pdf, "Coverage by Environment")
		p.barList(pdf, sortedCounts(envDeployed, 0))
	}

	appGap := make(map[string]int)
	for app, statuses := range stats.ByApplication {
		if app == "" || app == "Unknown" {
			continue
		}
		if n := statuses[reconcile.StatusNotDeployed]; n > 0 {
			appGap[app] = n
		}
	}
	if len(appGap) > 0 {
		pdf.AddPage()
		p.heading(pdf, "Least Covered Applications (Top 20)")
		p.barList(pdf, sortedCounts(appGap, 20))
	}

	return p.save(pdf, "deployment_dashboard")
}

// AgentHealth renders the agent health report: the online rate, the VEN
// status, enforcement mode and version distributions, and a sample of the
// offline agents.
func (p *PDFReporter) AgentHealth(stats *reconcile.Stats, offline, suspended []reconcile.Record) error {
	pdf := p.newDoc()
	p.title(pdf, "Agent Health Status Report")

	totalAgents := stats.DeployedActive + stats.DeployedOffline + stats.DeployedSuspended
	onlineRate := 0.0
	if totalAgents > 0 {
		onlineRate = float64(stats.DeployedActive) / float64(totalAgents) * 100
	}
	p.kpiRow(pdf, []kpi{
		{fmt.Sprintf("%.1f%%", onlineRate), "Online Rate"},
		{fmt.Sprintf("%d", stats.DeployedActive), "Active Agents"},
		{fmt.Sprintf("%d", len(offline)), "Offline"},
		{fmt.Sprintf("%d", len(suspended)), "Suspended"},
	})

	if venStatus := dropNA(stats.ByVENStatus); len(venStatus) > 0 {
		p.heading(pdf, "VEN Status Distribution")
		p.barList(pdf, sortedCounts(venStatus, 0))
	}
	if enforcement := dropNA(stats.ByEnforcementMode); len(enforcement) > 0 {
		p.heading(pdf, "Enforcement Mode Distribution")
		p.barList(pdf, sortedCounts(enforcement, 0))
	}
	if versions := dropNA(stats.ByVENVersion); len(versions) > 0 {
		pdf.AddPage()
		p.heading(pdf, "VEN Version Distribution")
		p.barList(pdf, sortedCounts(versions, 0))
	}

	if len(offline) > 0 {
		pdf.AddPage()
		p.heading(pdf, "Offline Agents (Sample)")

		rows := make([][]string, 0, 25)
		for _, agent := range offline {
			if len(rows) == 25 {
				break
			}
			env := agent.CMDBEnvironment
			if env == "" {
				env = agent.IllumioLabelEnv
			}
			rows = append(rows, []string{
				truncate(agent.HostnameNormalized, 30),
				agent.IllumioPrimaryIP,
				truncate(agent.IllumioLastHeartbeat, 19),
				env,
			})
		}
		p.dataTable(pdf,
			[]string{"Hostname", "IP", "Last Heartbeat", "Environment"},
			rows,
			[]float64{55, 35, 50, 40},
		)
		p.overflowNote(pdf, len(offline), 25, "offline agents")
	}

	return p.save(pdf, "agent_health")
}

// GapAnalysis renders the gap analysis report: the servers still waiting for
// an agent and the workloads with no CMDB record.
func (p *PDFReporter) GapAnalysis(stats *reconcile.Stats, notDeployed, shadowIT []reconcile.Record) error {
	pdf := p.newDoc()
	p.title(pdf, "Gap Analysis Report")

	p.kpiRow(pdf, []kpi{
		{fmt.Sprintf("%d", len(notDeployed)), "Not Deployed"},
		{fmt.Sprintf("%d", len(shadowIT)), "Shadow IT"},
		{fmt.Sprintf("%d", stats.MatchedByHostname), "Matched"},
		{fmt.Sprintf("%.1f%%", stats.CoverageRate), "Coverage"},
	})

	if len(notDeployed) > 0 {
		p.heading(pdf, "Servers Not Deployed (Top 50)")

		rows := make([][]string, 0, 50)
		for _, server := range notDeployed {
			if len(rows) == 50 {
				break
			}
			rows = append(rows, []string{
				truncate(server.CMDBName, 25),
				server.CMDBIPAddress,
				truncate(server.CMDBOS, 15),
				truncate(server.CMDBEnvironment, 15),
				truncate(server.CMDBApplication, 20),
			})
		}
		p.dataTable(pdf,
			[]string{"Hostname", "IP", "OS", "Environment", "Application"},
			rows,
			[]float64{40, 35, 30, 35, 40},
		)
		p.overflowNote(pdf, len(notDeployed), 50, "servers")
	}

	if len(shadowIT) > 0 {
		pdf.AddPage()
		p.heading(pdf, "Shadow IT - Workloads Not in CMDB (Top 50)")

		rows := make([][]string, 0, 50)
		for _, workload := range shadowIT {
			if len(rows) == 50 {
				break
			}
			rows = append(rows, []string{
				truncate(workload.IllumioHostname, 25),
				workload.IllumioPrimaryIP,
				truncate(workload.IllumioOSType, 15),
				truncate(workload.IllumioLabelApp, 20),
				truncate(workload.IllumioLabelEnv, 15),
			})
		}
		p.dataTable(pdf,
			[]string{"Hostname", "IP", "OS", "App Label", "Env Label"},
			rows,
			[]float64{40, 35, 30, 40, 35},
		)
	}

	return p.save(pdf, "gap_analysis")
}

// ExecutiveSummary renders the one-page management summary with the headline
// rates, a deployment overview table, and derived findings and
// recommendations.
func (p *PDFReporter) ExecutiveSummary(stats *reconcile.Stats, cmdbAvailable bool) error {
	pdf := p.newDoc()
	p.title(pdf, "Illumio Deployment - Executive Summary")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, "Report Date: "+p.now.Format("02-01-2006 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	p.kpiRow(pdf, []kpi{
		{fmt.Sprintf("%.1f%%", stats.CoverageRate), "Coverage"},
		{fmt.Sprintf("%.1f%%", stats.ActiveRate), "Active"},
		{fmt.Sprintf("%.1f%%", stats.EnforcementRate), "Enforced"},
		{fmt.Sprintf("%d", stats.TotalIllumioWorkloads), "Workloads"},
	})

	p.heading(pdf, "Deployment Overview")
	p.dataTable(pdf,
		[]string{"Metric", "Count"},
		[][]string{
			{"Total CMDB Servers", fmt.Sprintf("%d", stats.TotalCMDBServers)},
			{"Total Illumio Workloads", fmt.Sprintf("%d", stats.TotalIllumioWorkloads)},
			{"Deployed & Active", fmt.Sprintf("%d", stats.DeployedActive)},
			{"Deployed & Offline", fmt.Sprintf("%d", stats.DeployedOffline)},
			{"Deployed & Suspended", fmt.Sprintf("%d", stats.DeployedSuspended)},
			{"Not Yet Deployed", fmt.Sprintf("%d", stats.NotDeployed)},
			{"Shadow IT (Not in CMDB)", fmt.Sprintf("%d", stats.NotInCMDB)},
		},
		[]float64{110, 40},
	)

	p.heading(pdf, "Key Findings")
	for _, finding := range summaryFindings(stats, cmdbAvailable) {
		p.bodyLine(pdf, finding)
	}

	p.heading(pdf, "Recommendations")
	for i, rec := range summaryRecommendations(stats) {
		p.bodyLine(pdf, fmt.Sprintf("%d. %s", i+1, rec))
	}

	return p.save(pdf, "executive_summary")
}

// summaryFindings derives the findings bullets from the run statistics.
func summaryFindings(stats *reconcile.Stats, cmdbAvailable bool) []string {
	var findings []string

	switch {
	case stats.CoverageRate >= 80:
		findings = append(findings, "[OK] Deployment coverage is on track (>=80%)")
	case stats.CoverageRate >= 50:
		findings = append(findings, "[!] Deployment coverage needs acceleration (50-80%)")
	default:
		findings = append(findings, "[X] Deployment coverage is behind schedule (<50%)")
	}

	if stats.DeployedOffline > 0 {
		findings = append(findings, fmt.Sprintf("[!] %d agents are currently offline", stats.DeployedOffline))
	}
	if stats.NotInCMDB > 0 {
		findings = append(findings, fmt.Sprintf("[!] %d workloads not found in CMDB (potential shadow IT)", stats.NotInCMDB))
	}
	if stats.NotDeployed > 0 {
		findings = append(findings, fmt.Sprintf("- %d servers pending deployment", stats.NotDeployed))
	}
	if stats.EnforcementRate < 50 {
		findings = append(findings, "[!] Enforcement rate is low - most agents in visibility mode")
	}
	if !cmdbAvailable {
		findings = append(findings, "[!] CMDB data unavailable - report based on Illumio data only")
	}
	return findings
}

// summaryRecommendations derives the recommended actions from the run
// statistics, with a neutral fallback when nothing needs attention.
func summaryRecommendations(stats *reconcile.Stats) []string {
	var recs []string

	if stats.NotDeployed > 0 {
		recs = append(recs, "Prioritize deployment to remaining servers, starting with production environments")
	}
	if stats.DeployedOffline > 0 {
		recs = append(recs, "Investigate and remediate offline agents to ensure continuous protection")
	}
	if stats.NotInCMDB > 0 {
		recs = append(recs, "Review shadow IT workloads and update CMDB accordingly")
	}
	if stats.EnforcementRate < 50 {
		recs = append(recs, "Plan transition from visibility to enforcement mode for stable workloads")
	}
	if len(recs) == 0 {
		recs = append(recs, "Continue monitoring and maintain current deployment pace")
	}
	return recs
}

// newDoc builds an A4 portrait document with the branded banner header and
// confidentiality footer on every page.
func (p *PDFReporter) newDoc() *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 35, 15)
	pdf.SetAutoPageBreak(true, 25)

	r, g, b := hexToRGB(headerColor)
	pdf.SetHeaderFunc(func() {
		width, _ := pdf.GetPageSize()
		pdf.SetFillColor(r, g, b)
		pdf.Rect(0, 0, width, 25, "F")

		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 14)
		pdf.Text(15, 12, reportCompany)

		date := p.now.Format(dateLayout)
		pdf.SetFont("Helvetica", "", 10)
		pdf.Text(width-15-pdf.GetStringWidth(date), 12, date)
		pdf.SetTextColor(0, 0, 0)
	})
	pdf.SetFooterFunc(func() {
		width, height := pdf.GetPageSize()
		pdf.SetTextColor(128, 128, 128)
		pdf.SetFont("Helvetica", "", 8)
		pdf.Text(15, height-15, reportFooterText)

		page := fmt.Sprintf("Page %d", pdf.PageNo())
		pdf.Text(width-15-pdf.GetStringWidth(page), height-15, page)
		pdf.SetTextColor(0, 0, 0)
	})

	pdf.AddPage()
	return pdf
}

func (p *PDFReporter) title(pdf *fpdf.Fpdf, text string) {
	r, g, b := hexToRGB(headerColor)
	pdf.SetTextColor(r, g, b)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, text, "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)
}

func (p *PDFReporter) heading(pdf *fpdf.Fpdf, text string) {
	r, g, b := hexToRGB(headerColor)
	pdf.Ln(6)
	pdf.SetTextColor(r, g, b)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, text, "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(1)
}

func (p *PDFReporter) bodyLine(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, "  "+text, "", 1, "L", false, 0, "")
}

// kpi is one headline value with its caption.
type kpi struct {
	value string
	label string
}

// kpiRow renders the KPIs as equal-width boxes across the content area.
func (p *PDFReporter) kpiRow(pdf *fpdf.Fpdf, kpis []kpi) {
	width := 180.0 / float64(len(kpis))
	pdf.SetFillColor(245, 245, 245)
	pdf.SetDrawColor(211, 211, 211)

	pdf.SetFont("Helvetica", "B", 14)
	for _, k := range kpis {
		pdf.CellFormat(width, 12, k.value, "LTR", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(105, 105, 105)
	for _, k := range kpis {
		pdf.CellFormat(width, 7, k.label, "LBR", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)
}

// dataTable renders a grid with a branded header row and alternating row
// fills.
func (p *PDFReporter) dataTable(pdf *fpdf.Fpdf, headers []string, rows [][]string, widths []float64) {
	r, g, b := hexToRGB(headerColor)
	pdf.SetDrawColor(128, 128, 128)

	pdf.SetFillColor(r, g, b)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 9)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 7, header, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 8)
	for rowIdx, row := range rows {
		if rowIdx%2 == 0 {
			pdf.SetFillColor(255, 255, 255)
		} else {
			pdf.SetFillColor(245, 245, 245)
		}
		for i, cell := range row {
			pdf.CellFormat(widths[i], 6, cell, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}
}

// labelCount is one category of a distribution.
type labelCount struct {
	label string
	count int
}

// barList renders a distribution as labelled horizontal bars scaled to the
// largest count.
func (p *PDFReporter) barList(pdf *fpdf.Fpdf, items []labelCount) {
	max := 0
	for _, item := range items {
		if item.count > max {
			max = item.count
		}
	}
	if max == 0 {
		return
	}

	r, g, b := hexToRGB(headerColor)
	pdf.SetFont("Helvetica", "", 8)
	for _, item := range items {
		pdf.CellFormat(55, 6, truncate(item.label, 32), "", 0, "L", false, 0, "")

		x, y := pdf.GetX(), pdf.GetY()
		barWidth := float64(item.count) / float64(max) * 100
		pdf.SetFillColor(r, g, b)
		pdf.Rect(x, y+1, barWidth, 4, "F")

		pdf.SetX(x + barWidth + 2)
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", item.count), "", 1, "L", false, 0, "")
	}
}

// overflowNote points truncated tables at the full Excel extract.
func (p *PDFReporter) overflowNote(pdf *fpdf.Fpdf, total, shown int, noun string) {
	if total <= shown {
		return
	}
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("... and %d more %s. See Excel export for full list.", total-shown, noun), "", 1, "L", false, 0, "")
}

func (p *PDFReporter) save(pdf *fpdf.Fpdf, name string) error {
	path := p.filename(name)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	p.files = append(p.files, path)
	p.log.Info("report written", zap.String("path", path))
	return nil
}

// sortedCounts flattens a counter into a deterministic descending order,
// optionally keeping only the top entries.
func sortedCounts(counts map[string]int, topN int) []labelCount {
	items := make([]labelCount, 0, len(counts))
	for label, count := range counts {
		items = append(items, labelCount{label, count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].count != items[j].count {
			return items[i].count > items[j].count
		}
		return items[i].label < items[j].label
	})
	if topN > 0 && len(items) > topN {
		items = items[:topN]
	}
	return items
}

func dropZero(items []labelCount) []labelCount {
	out := items[:0]
	for _, item := range items {
		if item.count > 0 {
			out = append(out, item)
		}
	}
	return out
}

// dropNA removes the placeholder bucket of records with no agent.
func dropNA(counts map[string]int) map[string]int {
	out := make(map[string]int, len(counts))
	for label, count := range counts {
		if label == "" || label == "N/A" {
			continue
		}
		out[label] = count
	}
	return out
}

func hexToRGB(hex string) (int, int, int) {
	var r, g, b int
	fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b)
	return r, g, b
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
