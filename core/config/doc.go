// Package config provides configuration management for the monitoring tool.
//
// It utilizes Viper for loading configuration from an optional config.yaml,
// environment variables and a .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Illumio: PCE connection details (URL, org, credentials, paging)
//   - ServiceNow: CMDB connection details (instance, table, credentials)
//   - Filtering: optional operating-entity substring filter
//   - Retry: backoff policy shared by both connectors
//   - Output: export file location and naming
//   - Storage: S3/MinIO settings for export archiving
//   - Server: snapshot HTTP server settings
//   - Log: logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Illumio.PCEURL)
package config
