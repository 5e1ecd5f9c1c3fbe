package pipeline

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

	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/config"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/reconcile"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/rest"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/feature/illumio"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/feature/servicenow"
)

func pceServer(t *testing.T) illumio.Config {
	t.Helper()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/orgs/1/labels":
			fmt.Fprint(w, `[]`)
		case "/api/v2/orgs/1/workloads":
			json.NewEncoder(w).Encode([]map[string]any{
				{"href": "/orgs/1/workloads/w1", "hostname": "web01", "online": true, "managed": true},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	return illumio.Config{
		PCEURL:    "http://" + u.Hostname(),
		OrgID:     "1",
		APIUser:   "u",
		APISecret: "s",
		Port:      port,
		PageSize:  100,
	}
}

func cmdbServer(t *testing.T) servicenow.Config {
	t.Helper()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"result": []map[string]any{
			{"sys_id": "sys-1", "name": "web01"},
			{"sys_id": "sys-2", "name": "db01"},
		}})
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return servicenow.Config{
		InstanceURL: srv.URL,
		APIUser:     "u",
		APIKey:      "k",
		Table:       "cmdb_ci_server",
		PageSize:    100,
	}
}

func TestRunFullMode(t *testing.T) {
	cfg := &config.Config{
		Illumio:    pceServer(t),
		ServiceNow: cmdbServer(t),
		Retry:      rest.RetryConfig{MaxAttempts: 1},
	}
	cfg.Normalization.HostnameUppercase = true

	result, err := Run(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.True(t, result.CMDBAvailable)
	assert.Len(t, result.Workloads, 1)
	assert.Len(t, result.Servers, 2)
	require.Len(t, result.Records, 2)

	assert.Equal(t, 1, result.Stats.MatchedByHostname)
	assert.Equal(t, 1, result.Stats.NotDeployed)
	assert.Greater(t, result.IllumioFetch.RequestsMade, int64(0))
	assert.Greater(t, result.ServiceNowFetch.RequestsMade, int64(0))
	assert.False(t, result.FinishedAt.Before(result.StartedAt))
}

func TestRunDegradesWithoutServiceNow(t *testing.T) {
	cfg := &config.Config{
		Illumio: pceServer(t),
		// ServiceNow left unconfigured on purpose.
		Retry: rest.RetryConfig{MaxAttempts: 1},
	}
	cfg.Normalization.HostnameUppercase = true

	result, err := Run(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, result.CMDBAvailable)
	assert.Nil(t, result.Servers)
	require.Len(t, result.Records, 1)
	assert.Equal(t, reconcile.MatchIllumioOnly, result.Records[0].MatchType)
}

func TestRunDegradesWhenServiceNowUnreachable(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(down.Close)

	cfg := &config.Config{
		Illumio: pceServer(t),
		ServiceNow: servicenow.Config{
			InstanceURL: down.URL,
			APIUser:     "u",
			APIKey:      "k",
			Table:       "cmdb_ci_server",
			PageSize:    100,
		},
		Retry: rest.RetryConfig{MaxAttempts: 1},
	}

	result, err := Run(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, result.CMDBAvailable)
}

func TestRunFailsWithoutPCE(t *testing.T) {
	cfg := &config.Config{Retry: rest.RetryConfig{MaxAttempts: 1}}

	_, err := Run(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "illumio config")
}
