package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"warehouse-in-go/pkg/events"
	"warehouse-in-go/pkg/identity"
	"warehouse-in-go/pkg/model"
	"warehouse-in-go/pkg/packaging"
	"warehouse-in-go/pkg/server"
	"warehouse-in-go/pkg/server/middleware"
	"warehouse-in-go/pkg/server/store"
)

// maxObservationBody bounds the reporter-supplied JSON document.
const maxObservationBody = 1 << 20

// ObservationRequest is the body of a POST observation.
type ObservationRequest struct {
	Kind    string          `json:"kind"`
	Summary string          `json:"summary"`
	Payload json.RawMessage `json:"payload"`
}

// ObservationResponse is a stored observation as returned by the API.
type ObservationResponse struct {
	ID        string          `json:"id"`
	ProjectID string          `json:"project_id"`
	Kind      string          `json:"kind"`
	Summary   string          `json:"summary"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt string          `json:"created_at"`
}

// RegisterObservationsEndpoints registers the observer report endpoint
func RegisterObservationsEndpoints(s *server.Server) {
	auth := middleware.NewTokenAuthenticator(s.Stores.Users, s.Config)
	s.Router.Handle("/api/projects/{name}/observations",
		auth.Middleware(handleCreateObservation(s))).Methods("POST")
}

func handleCreateObservation(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		name := mux.Vars(r)["name"]
		normalized := packaging.NormalizeName(name)

		fail := func(code int, kind, reason string) {
			events.Log(events.ObservationEvent{
				Observer:     id.Username(),
				ClientIP:     ipString(id),
				Project:      normalized,
				Kind:         kind,
				Success:      false,
				ErrorMessage: reason,
			})
			respondWithError(w, code, reason)
		}

		if !id.IsObserver() {
			fail(http.StatusForbidden, "", "observer privileges required")
			return
		}

		var req ObservationRequest
		decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxObservationBody))
		if err := decoder.Decode(&req); err != nil {
			fail(http.StatusBadRequest, "", "invalid observation body")
			return
		}

		if !model.ValidObservationKind(req.Kind) {
			fail(http.StatusBadRequest, req.Kind, "unknown observation kind")
			return
		}
		if req.Summary == "" {
			fail(http.StatusBadRequest, req.Kind, "a summary is required")
			return
		}
		if req.Kind == model.ObservationKindMalware {
			var payload struct {
				InspectorURL string `json:"inspector_url"`
			}
			if err := json.Unmarshal(req.Payload, &payload); err != nil || payload.InspectorURL == "" {
				fail(http.StatusBadRequest, req.Kind, "malware observations must include an inspector_url")
				return
			}
		}

		project, err := s.Stores.Projects.FindProject(normalized)
		if err != nil {
			if errors.Is(err, store.ErrProjectNotFound) {
				fail(http.StatusNotFound, req.Kind, "project not found")
				return
			}
			fail(http.StatusInternalServerError, req.Kind, "failed to look up project")
			return
		}

		obs := &model.Observation{
			ID:         model.NewID(),
			ProjectID:  project.ID,
			ObserverID: id.User.ID,
			Kind:       req.Kind,
			Summary:    req.Summary,
			Payload:    req.Payload,
		}
		if err := s.Stores.Observations.CreateObservation(obs); err != nil {
			fail(http.StatusInternalServerError, req.Kind, "failed to store observation")
			return
		}

		events.Log(events.ObservationEvent{
			Observer: id.Username(),
			ClientIP: ipString(id),
			Project:  normalized,
			Kind:     req.Kind,
			Success:  true,
		})

		quarantined, err := s.Evaluator.Evaluate(project)
		if err != nil {
			// The observation is stored; evaluation failure must not
			// hide that from the reporter.
			quarantined = false
		}

		respondWithJSON(w, http.StatusCreated, map[string]interface{}{
			"id":          obs.ID,
			"project":     normalized,
			"kind":        obs.Kind,
			"quarantined": quarantined,
		})
	}
}
