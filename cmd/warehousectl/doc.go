// Package warehouse provides a Go implementation of a Python package index.
//
// The index accepts distribution uploads over the legacy upload API, serves
// the PEP 503 simple index and the JSON project API, and supports structured
// abuse reports (observations) with automatic quarantine of projects that
// accumulate malware reports from distinct observers.
//
// # Architecture
//
// The server is organized into several packages:
//
//   - pkg/server: HTTP server and routing
//   - pkg/server/endpoints: API endpoint handlers
//   - pkg/server/store: storage interfaces and their gorm implementations
//   - pkg/packaging: PEP 503 names, PEP 440 versions, filenames, wheels
//   - pkg/storage: content-addressed file storage
//   - pkg/observations: quarantine evaluation
//   - pkg/token: API token generation and verification
//   - pkg/events: RFC 5424 audit events
//   - pkg/model: database models
//   - pkg/db: database connection utilities
//   - pkg/config: configuration management
//
// # Quick Start
//
// The server is run via the warehousectl CLI:
//
//	# Run database migrations
//	warehousectl db migrate
//
//	# Create a user and an upload token
//	warehousectl user create alice
//	warehousectl token create alice --caption "laptop"
//
//	# Start the server
//	warehousectl server
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string
//   - WAREHOUSE_CONFIG_PATH: config file directory (default: /etc/warehouse/config)
//   - WAREHOUSE_ADMIN_JWT_SECRET: HMAC secret for admin sessions
//   - WAREHOUSE_LOG_LEVEL: log level (debug, info, warn, error)
//   - WAREHOUSE_AUDIT_ENABLED: enable audit event logging
//   - PORT: server port (default: 8000)
package main
