package servicenow

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/inventory"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/normalize"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/rest"
)

// Connector fetches server records from one CMDB instance.
type Connector struct {
	cfg       Config
	filter    Filter
	uppercase bool
	client    *rest.Client
	log       *zap.Logger

	// discovered is the sorted list of custom field names (u_*) seen on the
	// first sample record.
	discovered []string
}

// New creates a CMDB connector and opens its session.
func New(cfg Config, filter Filter, retry rest.RetryConfig, norm normalize.Config, log *zap.Logger) *Connector {
	client := rest.NewClient(rest.Options{
		BaseURL:               cfg.BaseURL(),
		Headers:               authHeaders(cfg.APIUser, cfg.APIKey),
		Timeout:               time.Duration(cfg.TimeoutSeconds) * time.Second,
		MaxConcurrentRequests: cfg.MaxConcurrentRequests,
		Retry:                 retry,
		Logger:                log,
	})
	client.Stats().SessionStarted()

	return &Connector{
		cfg:       cfg,
		filter:    filter,
		uppercase: norm.HostnameUppercase,
		client:    client,
		log:       log,
	}
}

// Name identifies the connector in logs and reports.
func (c *Connector) Name() string {
	return "servicenow"
}

// Close ends the connector session. Safe on every exit path.
func (c *Connector) Close() {
	c.client.Stats().SessionEnded()
}

// Stats returns a snapshot of the session's request counters.
func (c *Connector) Stats() rest.StatsSnapshot {
	return c.client.Stats().Snapshot()
}

// authHeaders picks Bearer or Basic auth from the credential shape: a short
// key paired with a plain username means Basic, anything else is a token.
func authHeaders(user, key string) map[string]string {
	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
	if !strings.Contains(user, "@") && len(key) < 100 {
		encoded := base64.StdEncoding.EncodeToString([]byte(user + ":" + key))
		headers["Authorization"] = "Basic " + encoded
	} else {
		headers["Authorization"] = "Bearer " + key
	}
	return headers
}

// TestConnection probes the table with a single-record page and checks the
// response envelope.
func (c *Connector) TestConnection(ctx context.Context) error {
	query := url.Values{}
	query.Set("sysparm_limit", "1")

	out := c.client.Execute(ctx, http.MethodGet, "/"+c.cfg.Table, query)
	if !out.OK() {
		return fmt.Errorf("cmdb connection test failed: %w", out.AsError())
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(out.Payload, &envelope); err != nil {
		return fmt.Errorf("cmdb connection test: unexpected response: %w", err)
	}
	if _, ok := envelope["result"]; !ok {
		return fmt.Errorf("cmdb connection test: response has no result field")
	}
	return nil
}

// buildQuery assembles the encoded query: an OR across the three candidate
// operating-entity fields when a filter is configured.
func (c *Connector) buildQuery() string {
	if c.filter.OperatingEntityContains == "" {
		return ""
	}

	safe := strings.ReplaceAll(c.filter.OperatingEntityContains, "'", `\'`)

	var b strings.Builder
	b.WriteString("u_operating_entityLIKE" + safe)
	b.WriteString("^ORoperating_entityLIKE" + safe)
	b.WriteString("^ORcompanyLIKE" + safe)
	return b.String()
}

// pageSpec is the Table API pagination parameterization. The result array is
// nested under "result" and the API has no reliable trailing-short-page
// signal, so an under-filled round ends pagination.
func pageSpec() rest.PageSpec {
	return rest.PageSpec{
		OffsetParam:      "sysparm_offset",
		LimitParam:       "sysparm_limit",
		DataKey:          "result",
		StopOnShortRound: true,
	}
}

// FetchAll loads every server record matching the configured filter,
// normalized and with custom fields discovered.
func (c *Connector) FetchAll(ctx context.Context) ([]inventory.Server, error) {
	c.log.Info("fetching servers from cmdb", zap.String("table", c.cfg.Table))

	params := url.Values{}
	if query := c.buildQuery(); query != "" {
		c.log.Info("applying operating entity filter",
			zap.String("contains", c.filter.OperatingEntityContains))
		params.Set("sysparm_query", query)
	}

	items, err := c.client.FetchAllPages(ctx, "/"+c.cfg.Table, c.cfg.PageSize, params, pageSpec())
	if err != nil {
		return nil, fmt.Errorf("fetching servers: %w", err)
	}

	c.log.Info("normalizing servers", zap.Int("count", len(items)))

	servers := make([]inventory.Server, 0, len(items))
	for i, item := range items {
		var raw map[string]any
		if err := json.Unmarshal(item, &raw); err != nil {
			c.log.Warn("skipping unparseable server record", zap.Error(err))
			continue
		}
		if i == 0 {
			c.discoverFields(raw)
		}
		servers = append(servers, c.normalizeServer(raw))
	}

	return servers, nil
}

// DiscoveredFields returns the custom field names seen on the sample record.
func (c *Connector) DiscoveredFields() []string {
	out := make([]string, len(c.discovered))
	copy(out, c.discovered)
	return out
}

// discoverFields records the dynamically named custom fields present on the
// first sample record.
func (c *Connector) discoverFields(sample map[string]any) {
	var custom []string
	for key := range sample {
		if strings.HasPrefix(key, "u_") {
			custom = append(custom, key)
		}
	}
	sort.Strings(custom)
	c.discovered = custom

	if len(custom) > 0 {
		c.log.Info("discovered custom fields", zap.Int("count", len(custom)), zap.Strings("fields", custom))
	}
}

// consumedCustomFields are the u_* fields already mapped to typed record
// fields; they stay out of the extras side-table.
var consumedCustomFields = map[string]struct{}{
	"u_operating_entity": {},
	"u_environment":      {},
	"u_application":      {},
	"u_criticality":      {},
}

// normalizeServer flattens one raw Table API record: reference fields resolve
// to their display value, the hostname comes from whichever candidate name
// field is non-empty, and unmapped custom fields land in the extras table.
func (c *Connector) normalizeServer(raw map[string]any) inventory.Server {
	hostname := scalar(raw, "name")
	if hostname == "" {
		hostname = scalar(raw, "host_name")
	}

	server := inventory.Server{
		SysID:              scalar(raw, "sys_id"),
		Name:               scalar(raw, "name"),
		Hostname:           hostname,
		HostnameNormalized: normalize.Hostname(hostname, c.uppercase),
		AssetTag:           scalar(raw, "asset_tag"),
		SerialNumber:       scalar(raw, "serial_number"),
		FQDN:               scalar(raw, "fqdn"),
		DNSDomain:          scalar(raw, "dns_domain"),

		IPAddress:  scalar(raw, "ip_address"),
		MACAddress: scalar(raw, "mac_address"),

		SysClassName: scalar(raw, "sys_class_name"),
		Category:     scalar(raw, "category"),
		Subcategory:  scalar(raw, "subcategory"),

		OperatingEntity: displayValue(firstPresent(raw, "u_operating_entity", "operating_entity")),
		Company:         displayValue(raw["company"]),
		Department:      displayValue(raw["department"]),
		Location:        displayValue(raw["location"]),

		OS:        scalar(raw, "os"),
		OSVersion: scalar(raw, "os_version"),
		CPUCount:  scalar(raw, "cpu_count"),
		RAM:       scalar(raw, "ram"),
		Virtual:   scalar(raw, "virtual"),

		OperationalStatus: displayValue(raw["operational_status"]),
		InstallStatus:     displayValue(raw["install_status"]),

		AssignedTo:   displayValue(raw["assigned_to"]),
		ManagedBy:    displayValue(raw["managed_by"]),
		SupportGroup: displayValue(raw["support_group"]),

		Environment: scalar2(raw, "u_environment", "environment"),
		Application: displayValue(raw["u_application"]),
		Criticality: scalar2(raw, "u_criticality", "criticality"),

		CreatedOn:       scalar(raw, "sys_created_on"),
		UpdatedOn:       scalar(raw, "sys_updated_on"),
		DiscoverySource: scalar(raw, "discovery_source"),
		LastDiscovered:  scalar(raw, "last_discovered"),
	}

	extra := make(map[string]string)
	for key, value := range raw {
		if !strings.HasPrefix(key, "u_") {
			continue
		}
		if _, consumed := consumedCustomFields[key]; consumed {
			continue
		}
		extra[key] = displayValue(value)
	}
	if len(extra) > 0 {
		server.Extra = extra
	}

	return server
}

// displayValue resolves a reference field: the display value wins when the
// field arrives as a structure, otherwise the scalar is cleaned up.
func displayValue(value any) string {
	if m, ok := value.(map[string]any); ok {
		if dv, ok := m["display_value"]; ok {
			return normalize.CleanString(dv)
		}
		return normalize.CleanString(m["value"])
	}
	return normalize.CleanString(value)
}

func scalar(raw map[string]any, key string) string {
	return normalize.CleanString(raw[key])
}

// scalar2 returns the first key's value, falling back to the second.
func scalar2(raw map[string]any, primary, fallback string) string {
	if v := scalar(raw, primary); v != "" {
		return v
	}
	return scalar(raw, fallback)
}

// firstPresent returns the first key that exists in the record, present but
// empty included.
func firstPresent(raw map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := raw[key]; ok {
			return v
		}
	}
	return nil
}
