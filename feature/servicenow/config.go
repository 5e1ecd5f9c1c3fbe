package servicenow

import (
	"fmt"
	"strings"
)

// Config holds CMDB connection settings.
type Config struct {
	// InstanceURL is the instance base URL including scheme.
	InstanceURL string `mapstructure:"instance_url" default:""`
	// APIUser is the API username.
	APIUser string `mapstructure:"api_user" default:""`
	// APIKey is the API key or password. Bearer or Basic auth is chosen
	// heuristically from its shape.
	APIKey string `mapstructure:"api_key" default:""`
	// Table is the CMDB table to extract.
	Table string `mapstructure:"table" default:"cmdb_ci_server"`
	// PageSize is the number of records per page.
	PageSize int `mapstructure:"page_size" default:"10000"`
	// MaxConcurrentRequests bounds in-flight requests for this connector.
	MaxConcurrentRequests int `mapstructure:"max_concurrent_requests" default:"10"`
	// TimeoutSeconds bounds every single request attempt.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"60"`
}

// Filter holds the optional record filtering settings.
type Filter struct {
	// OperatingEntityContains restricts the extract to records whose
	// operating entity (any of three candidate fields) contains this string.
	OperatingEntityContains string `mapstructure:"operating_entity_contains" default:""`
}

// BaseURL returns the Table API root.
func (c Config) BaseURL() string {
	return strings.TrimRight(c.InstanceURL, "/") + "/api/now/table"
}

// Validate checks the settings a connector cannot run without.
func (c Config) Validate() error {
	if !strings.HasPrefix(c.InstanceURL, "http://") && !strings.HasPrefix(c.InstanceURL, "https://") {
		return fmt.Errorf("instance_url must start with http:// or https://")
	}
	if c.APIKey == "" {
		return fmt.Errorf("api_key is required")
	}
	return nil
}
