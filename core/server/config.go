package server

// Config holds configuration for the snapshot HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// RefreshMinutes is the interval between background pipeline runs.
	RefreshMinutes int `mapstructure:"refresh_minutes" default:"60"`
}
