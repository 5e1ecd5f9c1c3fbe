package config

import (
	"reflect"
	"strings"

	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/export"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/logger"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/normalize"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/rest"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/server"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/storage"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/feature/illumio"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/feature/servicenow"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Illumio holds PCE connection settings.
	Illumio illumio.Config `mapstructure:"illumio"`
	// ServiceNow holds CMDB connection settings.
	ServiceNow servicenow.Config `mapstructure:"servicenow"`
	// Filtering holds the optional CMDB record filter.
	Filtering servicenow.Filter `mapstructure:"filtering"`
	// Normalization holds data-cleaning settings shared by both sources.
	Normalization normalize.Config `mapstructure:"normalization"`
	// Retry holds the backoff policy shared by both connectors.
	Retry rest.RetryConfig `mapstructure:"retry"`
	// Output holds export file settings.
	Output export.Config `mapstructure:"output"`
	// Storage holds object storage settings for export archiving.
	Storage storage.Config `mapstructure:"storage"`
	// Server holds configuration for the snapshot HTTP server.
	Server server.Config `mapstructure:"server"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
}

// LoadConfig loads configuration from an optional config.yaml, environment
// variables and a .env file, in increasing order of precedence for the
// environment.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Optional config file next to the binary
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	// A missing file is fine; env vars and defaults still apply
	_ = v.ReadInConfig()

	// Map environment variables to nested keys (e.g. ILLUMIO_PCE_URL -> illumio.pce_url)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
