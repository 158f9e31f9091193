package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"warehouse-in-go/pkg/events"
	"warehouse-in-go/pkg/identity"
	"warehouse-in-go/pkg/model"
	"warehouse-in-go/pkg/packaging"
	"warehouse-in-go/pkg/server"
	"warehouse-in-go/pkg/server/middleware"
	"warehouse-in-go/pkg/server/store"
)

const defaultObservationPageSize = 100

// RegisterAdminEndpoints registers the admin session and quarantine
// management endpoints. It fails when no admin session secret is configured.
func RegisterAdminEndpoints(s *server.Server) error {
	sessions, err := middleware.NewAdminSessions(s.Stores.Users, s.Config)
	if err != nil {
		return err
	}

	// Session minting authenticates with an API token, everything else
	// with the minted session.
	tokenAuth := middleware.NewTokenAuthenticator(s.Stores.Users, s.Config)
	s.Router.Handle("/admin/sessions",
		tokenAuth.Middleware(handleCreateSession(s, sessions))).Methods("POST")

	admin := sessions.Middleware
	s.Router.Handle("/admin/observations",
		admin(handleListRecentObservations(s))).Methods("GET")
	s.Router.Handle("/admin/projects/{name}/observations",
		admin(handleListProjectObservations(s))).Methods("GET")
	s.Router.Handle("/admin/projects/{name}/quarantine",
		admin(handleQuarantineEnter(s))).Methods("POST")
	s.Router.Handle("/admin/projects/{name}/quarantine",
		admin(handleQuarantineExit(s))).Methods("DELETE")
	s.Router.Handle("/admin/quarantine",
		admin(handleListQuarantine(s))).Methods("GET")
	s.Router.Handle("/admin/prohibited-names",
		admin(handleProhibitName(s))).Methods("POST")
	s.Router.Handle("/admin/prohibited-names",
		admin(handleListProhibitedNames(s))).Methods("GET")
	return nil
}

func handleCreateSession(s *server.Server, sessions *middleware.AdminSessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !id.IsAdmin() {
			respondWithError(w, http.StatusForbidden, "admin privileges required")
			return
		}

		session, err := sessions.Issue(id.User.ID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to issue session")
			return
		}

		respondWithJSON(w, http.StatusCreated, map[string]interface{}{
			"token":      session,
			"expires_in": int(s.Config.SessionTTL().Seconds()),
		})
	}
}

func handleListRecentObservations(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultObservationPageSize
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				respondWithError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			limit = parsed
		}

		observations, err := s.Stores.Observations.ListRecentObservations(limit)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to list observations")
			return
		}
		respondWithJSON(w, http.StatusOK, observationResponses(observations))
	}
}

func handleListProjectObservations(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, ok := findAdminProject(s, w, r)
		if !ok {
			return
		}

		observations, err := s.Stores.Observations.ListObservations(project.ID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to list observations")
			return
		}
		respondWithJSON(w, http.StatusOK, observationResponses(observations))
	}
}

func handleQuarantineEnter(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := identity.Get(r.Context())
		project, ok := findAdminProject(s, w, r)
		if !ok {
			return
		}
		if project.InQuarantine() {
			respondWithError(w, http.StatusConflict, "project is already in quarantine")
			return
		}

		var body struct {
			Reason string `json:"reason"`
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&body)
		}

		status := model.LifecycleStatusQuarantineEnter
		if err := s.Stores.Projects.SetLifecycleStatus(project.ID, &status, body.Reason); err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to quarantine project")
			return
		}

		events.Log(events.QuarantineEvent{
			Actor:     id.Username(),
			ClientIP:  ipString(id),
			Project:   project.NormalizedName,
			Operation: "enter",
			Reason:    body.Reason,
		})
		respondWithJSON(w, http.StatusOK, map[string]string{
			"project": project.NormalizedName,
			"status":  status,
		})
	}
}

func handleQuarantineExit(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := identity.Get(r.Context())
		project, ok := findAdminProject(s, w, r)
		if !ok {
			return
		}
		if !project.InQuarantine() {
			respondWithError(w, http.StatusConflict, "project is not in quarantine")
			return
		}

		status := model.LifecycleStatusQuarantineExit
		if err := s.Stores.Projects.SetLifecycleStatus(project.ID, &status, ""); err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to release project")
			return
		}

		events.Log(events.QuarantineEvent{
			Actor:     id.Username(),
			ClientIP:  ipString(id),
			Project:   project.NormalizedName,
			Operation: "exit",
		})
		respondWithJSON(w, http.StatusOK, map[string]string{
			"project": project.NormalizedName,
			"status":  status,
		})
	}
}

func handleListQuarantine(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := s.Stores.Projects.ListQuarantined()
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to list quarantined projects")
			return
		}

		type entry struct {
			Name      string `json:"name"`
			Since     string `json:"since,omitempty"`
			Note      string `json:"note,omitempty"`
			TotalSize int64  `json:"total_size"`
		}
		entries := make([]entry, 0, len(projects))
		for _, p := range projects {
			e := entry{Name: p.NormalizedName, TotalSize: p.TotalSize}
			if p.StatusChangedAt != nil {
				e.Since = p.StatusChangedAt.UTC().Format("2006-01-02T15:04:05Z")
			}
			if p.StatusNote != nil {
				e.Note = *p.StatusNote
			}
			entries = append(entries, e)
		}
		respondWithJSON(w, http.StatusOK, entries)
	}
}

func handleProhibitName(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := identity.Get(r.Context())

		var body struct {
			Name    string `json:"name"`
			Comment string `json:"comment"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if !packaging.ValidName(body.Name) {
			respondWithError(w, http.StatusBadRequest, "invalid project name")
			return
		}

		normalized := packaging.NormalizeName(body.Name)
		prohibited, err := s.Stores.Projects.IsProhibited(normalized)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to look up name")
			return
		}
		if prohibited {
			respondWithError(w, http.StatusConflict, "name is already prohibited")
			return
		}

		if err := s.Stores.Projects.Prohibit(normalized, id.Username(), body.Comment); err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to prohibit name")
			return
		}

		events.Log(events.ProhibitNameEvent{
			Actor:    id.Username(),
			ClientIP: ipString(id),
			Name:     normalized,
			Comment:  body.Comment,
		})
		respondWithJSON(w, http.StatusCreated, map[string]string{
			"name": normalized,
		})
	}
}

func handleListProhibitedNames(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := s.Stores.Projects.ListProhibited()
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to list prohibited names")
			return
		}

		type entry struct {
			Name         string `json:"name"`
			ProhibitedBy string `json:"prohibited_by"`
			Comment      string `json:"comment,omitempty"`
			CreatedAt    string `json:"created_at"`
		}
		entries := make([]entry, 0, len(names))
		for _, n := range names {
			entries = append(entries, entry{
				Name:         n.Name,
				ProhibitedBy: n.ProhibitedBy,
				Comment:      n.Comment,
				CreatedAt:    n.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			})
		}
		respondWithJSON(w, http.StatusOK, entries)
	}
}

func findAdminProject(s *server.Server, w http.ResponseWriter, r *http.Request) (*model.Project, bool) {
	normalized := packaging.NormalizeName(mux.Vars(r)["name"])
	project, err := s.Stores.Projects.FindProject(normalized)
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			respondWithError(w, http.StatusNotFound, "project not found")
			return nil, false
		}
		respondWithError(w, http.StatusInternalServerError, "failed to look up project")
		return nil, false
	}
	return project, true
}

func observationResponses(observations []model.Observation) []ObservationResponse {
	responses := make([]ObservationResponse, 0, len(observations))
	for _, obs := range observations {
		responses = append(responses, ObservationResponse{
			ID:        obs.ID,
			ProjectID: obs.ProjectID,
			Kind:      obs.Kind,
			Summary:   obs.Summary,
			Payload:   json.RawMessage(obs.Payload),
			CreatedAt: obs.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	return responses
}
