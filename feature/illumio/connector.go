package illumio

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/inventory"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/normalize"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/rest"
)

// Label is one resolved PCE label.
type Label struct {
	Key   string
	Value string
}

// Connector fetches workloads and labels from one PCE.
type Connector struct {
	cfg       Config
	uppercase bool
	client    *rest.Client
	log       *zap.Logger

	// labels maps label href to its resolved key/value pair. Populated by
	// FetchLabels before the workload pass runs.
	labels map[string]Label
}

// New creates a PCE connector and opens its session.
func New(cfg Config, retry rest.RetryConfig, norm normalize.Config, log *zap.Logger) *Connector {
	client := rest.NewClient(rest.Options{
		BaseURL:               cfg.BaseURL(),
		Headers:               authHeaders(cfg.APIUser, cfg.APISecret),
		Timeout:               time.Duration(cfg.TimeoutSeconds) * time.Second,
		MaxConcurrentRequests: cfg.MaxConcurrentRequests,
		Retry:                 retry,
		Logger:                log,
	})
	client.Stats().SessionStarted()

	return &Connector{
		cfg:       cfg,
		uppercase: norm.HostnameUppercase,
		client:    client,
		log:       log,
		labels:    make(map[string]Label),
	}
}

// Name identifies the connector in logs and reports.
func (c *Connector) Name() string {
	return "illumio"
}

// Close ends the connector session. Safe on every exit path.
func (c *Connector) Close() {
	c.client.Stats().SessionEnded()
}

// Stats returns a snapshot of the session's request counters.
func (c *Connector) Stats() rest.StatsSnapshot {
	return c.client.Stats().Snapshot()
}

// authHeaders builds the static Basic-Auth session headers.
func authHeaders(user, secret string) map[string]string {
	encoded := base64.StdEncoding.EncodeToString([]byte(user + ":" + secret))
	return map[string]string{
		"Authorization": "Basic " + encoded,
		"Content-Type":  "application/json",
		"Accept":        "application/json",
	}
}

// TestConnection probes the workload endpoint with a single-record page.
func (c *Connector) TestConnection(ctx context.Context) error {
	query := url.Values{}
	query.Set("max_results", "1")

	out := c.client.Execute(ctx, http.MethodGet, "/workloads", query)
	if !out.OK() {
		return fmt.Errorf("pce connection test failed: %w", out.AsError())
	}
	return nil
}

// pageSpec is the PCE pagination parameterization: bare-array responses with
// offset/max_results parameters and a trailing short page on the last round.
func pageSpec() rest.PageSpec {
	return rest.PageSpec{
		OffsetParam: "offset",
		LimitParam:  "max_results",
	}
}

// FetchLabels loads the full label dictionary and caches it for workload
// enrichment.
func (c *Connector) FetchLabels(ctx context.Context) (map[string]Label, error) {
	c.log.Info("fetching labels from pce")

	items, err := c.client.FetchAllPages(ctx, "/labels", c.cfg.PageSize, nil, pageSpec())
	if err != nil {
		return nil, fmt.Errorf("fetching labels: %w", err)
	}

	labels := make(map[string]Label, len(items))
	for _, item := range items {
		var raw rawLabel
		if err := json.Unmarshal(item, &raw); err != nil {
			c.log.Warn("skipping unparseable label", zap.Error(err))
			continue
		}
		labels[raw.Href] = Label{Key: raw.Key, Value: raw.Value}
	}

	c.labels = labels
	c.log.Info("fetched labels", zap.Int("count", len(labels)))
	return labels, nil
}

// FetchAll loads every workload with full details, enriched and normalized.
func (c *Connector) FetchAll(ctx context.Context) ([]inventory.Workload, error) {
	if _, err := c.FetchLabels(ctx); err != nil {
		return nil, err
	}

	c.log.Info("fetching workloads from pce")

	items, err := c.client.FetchAllPages(ctx, "/workloads", c.cfg.PageSize, nil, pageSpec())
	if err != nil {
		return nil, fmt.Errorf("fetching workloads: %w", err)
	}

	c.log.Info("enriching workloads", zap.Int("count", len(items)))

	workloads := make([]inventory.Workload, 0, len(items))
	for _, item := range items {
		var raw rawWorkload
		if err := json.Unmarshal(item, &raw); err != nil {
			c.log.Warn("skipping unparseable workload", zap.Error(err))
			continue
		}
		workloads = append(workloads, c.enrich(raw))
	}

	return workloads, nil
}

// PCEHealth returns the raw PCE health payload.
func (c *Connector) PCEHealth(ctx context.Context) (json.RawMessage, error) {
	out := c.client.Execute(ctx, http.MethodGet, "/health", nil)
	if !out.OK() {
		return nil, fmt.Errorf("pce health check failed: %w", out.AsError())
	}
	return out.Payload, nil
}

// rawLabel is the wire shape of one PCE label.
type rawLabel struct {
	Href  string `json:"href"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// rawWorkload is the wire shape of one PCE workload, limited to the fields
// the normalized record carries.
type rawWorkload struct {
	Href            string `json:"href"`
	Name            string `json:"name"`
	Hostname        string `json:"hostname"`
	Description     string `json:"description"`
	PublicIP        string `json:"public_ip"`
	Online          bool   `json:"online"`
	Managed         bool   `json:"managed"`
	EnforcementMode string `json:"enforcement_mode"`
	VisibilityLevel string `json:"visibility_level"`
	OSType          string `json:"os_type"`
	OSID            string `json:"os_id"`
	OSDetail        string `json:"os_detail"`
	DataCenter      string `json:"data_center"`
	DataCenterZone  string `json:"data_center_zone"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`

	Labels []struct {
		Href string `json:"href"`
	} `json:"labels"`

	Interfaces []struct {
		Address string `json:"address"`
	} `json:"interfaces"`

	Agent struct {
		Href   string `json:"href"`
		Config struct {
			Mode string `json:"mode"`
		} `json:"config"`
		Status struct {
			Status          string `json:"status"`
			AgentVersion    string `json:"agent_version"`
			LastHeartbeatOn string `json:"last_heartbeat_on"`
		} `json:"status"`
	} `json:"agent"`
}

// enrich turns a raw workload into a normalized record: labels resolved,
// interfaces flattened, VEN status derived, hostname normalized.
func (c *Connector) enrich(raw rawWorkload) inventory.Workload {
	resolved := make(map[string]string, len(raw.Labels))
	for _, ref := range raw.Labels {
		if label, ok := c.labels[ref.Href]; ok {
			resolved[label.Key] = label.Value
		}
	}

	var primaryIP string
	ips := make([]string, 0, len(raw.Interfaces))
	for _, iface := range raw.Interfaces {
		if iface.Address == "" {
			continue
		}
		ips = append(ips, iface.Address)
		if primaryIP == "" {
			primaryIP = iface.Address
		}
	}

	return inventory.Workload{
		Href:               raw.Href,
		Name:               raw.Name,
		Hostname:           raw.Hostname,
		HostnameNormalized: normalize.Hostname(raw.Hostname, c.uppercase),
		Description:        raw.Description,

		PrimaryIP:       primaryIP,
		AllIPs:          strings.Join(ips, ", "),
		PublicIP:        raw.PublicIP,
		InterfacesCount: len(raw.Interfaces),

		Online:          raw.Online,
		Managed:         raw.Managed,
		EnforcementMode: raw.EnforcementMode,
		VisibilityLevel: raw.VisibilityLevel,

		AgentHref:          raw.Agent.Href,
		AgentStatus:        raw.Agent.Status.Status,
		AgentLastHeartbeat: raw.Agent.Status.LastHeartbeatOn,
		AgentMode:          raw.Agent.Config.Mode,

		VENVersion: raw.Agent.Status.AgentVersion,
		VENStatus:  inventory.DeriveVENStatus(raw.Managed, raw.Agent.Status.Status, raw.Online),

		OSType:   raw.OSType,
		OSID:     raw.OSID,
		OSDetail: raw.OSDetail,

		DataCenter:     raw.DataCenter,
		DataCenterZone: raw.DataCenterZone,

		CreatedAt: raw.CreatedAt,
		UpdatedAt: raw.UpdatedAt,

		LabelRole: resolved["role"],
		LabelApp:  resolved["app"],
		LabelEnv:  resolved["env"],
		LabelLoc:  resolved["loc"],
		Labels:    resolved,
	}
}
