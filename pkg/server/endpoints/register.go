package endpoints

import (
	"warehouse-in-go/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) error {
	RegisterUploadEndpoint(srv)
	RegisterSimpleEndpoints(srv)
	RegisterJSONEndpoints(srv)
	RegisterObservationsEndpoints(srv)
	RegisterStatusEndpoints(srv)
	return RegisterAdminEndpoints(srv)
}
