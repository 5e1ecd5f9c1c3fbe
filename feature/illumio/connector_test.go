package illumio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/inventory"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/normalize"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/rest"
)

// testConnector builds a connector aimed at the given handler.
func testConnector(t *testing.T, handler http.Handler) *Connector {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	cfg := Config{
		PCEURL:    "http://" + u.Hostname(),
		OrgID:     "1",
		APIUser:   "api_user",
		APISecret: "secret",
		Port:      port,
		PageSize:  100,
	}
	return New(cfg, rest.RetryConfig{MaxAttempts: 1}, normalize.Config{HostnameUppercase: true}, zap.NewNop())
}

func TestBaseURL(t *testing.T) {
	cfg := Config{PCEURL: "https://pce.example.com/", OrgID: "7", Port: 8443}
	assert.Equal(t, "https://pce.example.com:8443/api/v2/orgs/7", cfg.BaseURL())
}

func TestConfigValidate(t *testing.T) {
	valid := Config{PCEURL: "https://pce.example.com", APIUser: "u", APISecret: "s"}
	assert.NoError(t, valid.Validate())

	assert.Error(t, Config{PCEURL: "pce.example.com", APIUser: "u", APISecret: "s"}.Validate())
	assert.Error(t, Config{PCEURL: "https://pce.example.com"}.Validate())
}

func TestTestConnection(t *testing.T) {
	var gotPath string
	var gotMax string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMax = r.URL.Query().Get("max_results")
		fmt.Fprint(w, `[]`)
	})

	c := testConnector(t, handler)
	defer c.Close()

	require.NoError(t, c.TestConnection(context.Background()))
	assert.Equal(t, "/api/v2/orgs/1/workloads", gotPath)
	assert.Equal(t, "1", gotMax)
}

func TestTestConnectionAuthFailure(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	c := testConnector(t, handler)
	defer c.Close()

	err := c.TestConnection(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication failed")
}

func TestFetchAllEnrichesWorkloads(t *testing.T) {
	labels := []map[string]string{
		{"href": "/orgs/1/labels/1", "key": "app", "value": "Billing"},
		{"href": "/orgs/1/labels/2", "key": "env", "value": "Production"},
	}
	workloads := []map[string]any{
		{
			"href":             "/orgs/1/workloads/w1",
			"hostname":         "web01.corp.example.com",
			"online":           true,
			"managed":          true,
			"enforcement_mode": "full",
			"os_type":          "linux",
			"labels": []map[string]string{
				{"href": "/orgs/1/labels/1"},
				{"href": "/orgs/1/labels/2"},
				{"href": "/orgs/1/labels/404"},
			},
			"interfaces": []map[string]string{
				{"address": "10.0.0.5"},
				{"address": "10.0.1.5"},
			},
			"agent": map[string]any{
				"href": "/orgs/1/agents/a1",
				"status": map[string]string{
					"status":            "active",
					"agent_version":     "23.2.10",
					"last_heartbeat_on": "2025-03-01T10:00:00Z",
				},
			},
		},
		{
			"href":     "/orgs/1/workloads/w2",
			"hostname": "db01",
			"online":   false,
			"managed":  false,
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/orgs/1/labels":
			json.NewEncoder(w).Encode(labels)
		case "/api/v2/orgs/1/workloads":
			json.NewEncoder(w).Encode(workloads)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	c := testConnector(t, handler)
	defer c.Close()

	got, err := c.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	w1 := got[0]
	assert.Equal(t, "WEB01", w1.HostnameNormalized)
	assert.Equal(t, "10.0.0.5", w1.PrimaryIP)
	assert.Equal(t, "10.0.0.5, 10.0.1.5", w1.AllIPs)
	assert.Equal(t, 2, w1.InterfacesCount)
	assert.Equal(t, "Billing", w1.LabelApp)
	assert.Equal(t, "Production", w1.LabelEnv)
	assert.Equal(t, "23.2.10", w1.VENVersion)
	assert.Equal(t, inventory.VENActive, w1.VENStatus)
	assert.Equal(t, "2025-03-01T10:00:00Z", w1.AgentLastHeartbeat)

	w2 := got[1]
	assert.Equal(t, "DB01", w2.HostnameNormalized)
	assert.Equal(t, inventory.VENUnmanaged, w2.VENStatus)
	assert.Empty(t, w2.PrimaryIP)
}

func TestFetchAllSkipsUnparseableRecords(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/orgs/1/labels":
			fmt.Fprint(w, `[]`)
		case "/api/v2/orgs/1/workloads":
			fmt.Fprint(w, `[{"href":"/orgs/1/workloads/w1","hostname":"web01"}, 42]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	c := testConnector(t, handler)
	defer c.Close()

	got, err := c.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "WEB01", got[0].HostnameNormalized)
}

func TestFetchAllLabelFailureIsFatal(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	c := testConnector(t, handler)
	defer c.Close()

	_, err := c.FetchAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching labels")
}

func TestAuthHeaders(t *testing.T) {
	headers := authHeaders("api_user", "secret")
	// base64("api_user:secret")
	assert.Equal(t, "Basic YXBpX3VzZXI6c2VjcmV0", headers["Authorization"])
	assert.Equal(t, "application/json", headers["Accept"])
}

func TestPCEHealth(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/orgs/1/health", r.URL.Path)
		fmt.Fprint(w, `[{"status":"normal"}]`)
	})

	c := testConnector(t, handler)
	defer c.Close()

	payload, err := c.PCEHealth(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `[{"status":"normal"}]`, string(payload))
}
