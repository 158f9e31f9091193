// Package config provides configuration management for the warehouse server.
//
// This package handles loading and validating server configuration
// from environment variables and configuration files.
//
// # Configuration Sources
//
// Configuration is loaded from:
//
//   - Configuration file (warehouse.yml)
//   - Environment variables (override the file)
//
// Each attribute remembers where its value came from (default, file or
// environment); "warehousectl configuration show" reports the sources.
//
// # Key Configuration Options
//
//   - WAREHOUSE_CONFIG_PATH: config file directory
//   - WAREHOUSE_MAX_FILE_SIZE_MB: per-file upload limit
//   - WAREHOUSE_QUARANTINE_REPORT_THRESHOLD: distinct observers before quarantine
//   - WAREHOUSE_STORAGE_PATH: package file storage root
//   - DATABASE_URL: database connection
package config
