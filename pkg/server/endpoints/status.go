package endpoints

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"warehouse-in-go/pkg/server"
)

// HealthResponse represents the response from /health
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// RegisterStatusEndpoints registers the status and health endpoints
func RegisterStatusEndpoints(s *server.Server) {
	s.Router.HandleFunc("/", handleStatus()).Methods("GET")
	s.Router.HandleFunc("/health", handleHealth(s)).Methods("GET")
}

func handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version := os.Getenv("WAREHOUSE_VERSION_DISPLAY")
		if version == "" {
			version = "0.1.0"
		}

		accept := r.Header.Get("Accept")
		format := r.URL.Query().Get("format")
		if format == "json" || strings.Contains(accept, "application/json") {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{"version": version})
			return
		}

		html := `<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width">
    <title>Package Index Status</title>
  </head>
  <body>
    <main>
      <h1>Status</h1>
      <p>Your package index is running!</p>
      <dl>
        <dt>Version:</dt>
        <dd>` + version + `</dd>
        <dt>Index:</dt>
        <dd><a href="/simple/">/simple/</a></dd>
      </dl>
    </main>
  </body>
</html>
`

		respondWithHTML(w, http.StatusOK, html)
	}
}

func handleHealth(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Stores.Health.CheckConnectivity(); err != nil {
			respondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status: "error",
				Error:  "database connectivity check failed",
			})
			return
		}
		respondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}
