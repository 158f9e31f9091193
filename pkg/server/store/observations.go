package store

import (
	"warehouse-in-go/pkg/model"
)

// ObservationsStore abstracts observation storage operations
type ObservationsStore interface {
	// CreateObservation stores a new observation.
	CreateObservation(obs *model.Observation) error

	// ListObservations returns a project's observations, newest first.
	ListObservations(projectID string) ([]model.Observation, error)

	// ListRecentObservations returns the most recent observations across
	// all projects, newest first, up to limit.
	ListRecentObservations(limit int) ([]model.Observation, error)

	// CountDistinctMalwareObservers counts how many distinct observers
	// have filed malware observations against a project.
	CountDistinctMalwareObservers(projectID string) (int, error)
}
