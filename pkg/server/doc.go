// Package server provides the HTTP server for the package index API.
//
// This package implements the core HTTP server that handles all index
// requests. It uses gorilla/mux for routing and provides middleware for
// authentication and request handling.
//
// # Server Setup
//
//	srv := server.NewServer(stores, fileStorage, evaluator, cfg, db, host, port)
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Endpoints
//
// API endpoints are registered via the endpoints subpackage:
//
//   - POST /legacy/ - distribution file upload (:action=file_upload)
//   - /simple/ - PEP 503 simple index
//   - /pypi/{name}/json - project metadata API
//   - /api/projects/{name}/observations - observer reports
//   - /admin/* - admin sessions and quarantine management
//   - /health - connectivity check
package server
