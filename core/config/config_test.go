package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "1", cfg.Illumio.OrgID)
	assert.Equal(t, 8443, cfg.Illumio.Port)
	assert.Equal(t, 500, cfg.Illumio.PageSize)
	assert.Equal(t, 15, cfg.Illumio.MaxConcurrentRequests)

	assert.Equal(t, "cmdb_ci_server", cfg.ServiceNow.Table)
	assert.Equal(t, 10000, cfg.ServiceNow.PageSize)
	assert.Equal(t, 10, cfg.ServiceNow.MaxConcurrentRequests)

	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 1.0, cfg.Retry.InitialDelaySeconds)
	assert.Equal(t, 2.0, cfg.Retry.BackoffMultiplier)
	assert.Equal(t, 60.0, cfg.Retry.MaxDelaySeconds)

	assert.True(t, cfg.Normalization.HostnameUppercase)

	assert.Equal(t, "./outputs", cfg.Output.BasePath)
	assert.True(t, cfg.Output.CreateDateSubfolder)
	assert.Equal(t, "illumio_monitoring", cfg.Output.FilePrefix)
	assert.Equal(t, "reports", cfg.Output.ReportsFolder)
	assert.Equal(t, "excel", cfg.Output.Format)

	assert.False(t, cfg.Storage.Enabled)
	assert.Equal(t, "monitoring-exports", cfg.Storage.Bucket)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 60, cfg.Server.RefreshMinutes)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("ILLUMIO_PCE_URL", "https://pce.example.com")
	t.Setenv("ILLUMIO_API_USER", "api_user")
	t.Setenv("SERVICENOW_INSTANCE_URL", "https://acme.service-now.com")
	t.Setenv("RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("NORMALIZATION_HOSTNAME_UPPERCASE", "false")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "https://pce.example.com", cfg.Illumio.PCEURL)
	assert.Equal(t, "api_user", cfg.Illumio.APIUser)
	assert.Equal(t, "https://acme.service-now.com", cfg.ServiceNow.InstanceURL)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.False(t, cfg.Normalization.HostnameUppercase)
}

func TestLoadConfigDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir+"/.env", "FILTERING_OPERATING_ENTITY_CONTAINS=Acme\n")
	// godotenv mutates the process environment.
	t.Cleanup(func() { os.Unsetenv("FILTERING_OPERATING_ENTITY_CONTAINS") })

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "Acme", cfg.Filtering.OperatingEntityContains)
}

func TestLoadConfigYamlFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir+"/config.yaml", `
illumio:
  pce_url: https://pce.yaml.example.com
  page_size: 250
servicenow:
  table: cmdb_ci_win_server
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://pce.yaml.example.com", cfg.Illumio.PCEURL)
	assert.Equal(t, 250, cfg.Illumio.PageSize)
	assert.Equal(t, "cmdb_ci_win_server", cfg.ServiceNow.Table)

	// Everything not in the file keeps its default.
	assert.Equal(t, 8443, cfg.Illumio.Port)
}
