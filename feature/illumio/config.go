package illumio

import (
	"fmt"
	"strings"
)

// Config holds PCE connection settings.
type Config struct {
	// PCEURL is the PCE base URL including scheme.
	PCEURL string `mapstructure:"pce_url" default:""`
	// OrgID is the PCE organization id.
	OrgID string `mapstructure:"org_id" default:"1"`
	// APIUser is the API username.
	APIUser string `mapstructure:"api_user" default:""`
	// APISecret is the API secret.
	APISecret string `mapstructure:"api_secret" default:""`
	// Port is the PCE API port.
	Port int `mapstructure:"port" default:"8443"`
	// PageSize is the number of records per page.
	PageSize int `mapstructure:"page_size" default:"500"`
	// MaxConcurrentRequests bounds in-flight requests for this connector.
	MaxConcurrentRequests int `mapstructure:"max_concurrent_requests" default:"15"`
	// TimeoutSeconds bounds every single request attempt.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// BaseURL returns the org-scoped API root.
func (c Config) BaseURL() string {
	return fmt.Sprintf("%s:%d/api/v2/orgs/%s", strings.TrimRight(c.PCEURL, "/"), c.Port, c.OrgID)
}

// Validate checks the settings a connector cannot run without.
func (c Config) Validate() error {
	if !strings.HasPrefix(c.PCEURL, "http://") && !strings.HasPrefix(c.PCEURL, "https://") {
		return fmt.Errorf("pce_url must start with http:// or https://")
	}
	if c.APIUser == "" || c.APISecret == "" {
		return fmt.Errorf("api_user and api_secret are required")
	}
	return nil
}
