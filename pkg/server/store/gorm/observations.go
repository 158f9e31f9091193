package gorm

import (
	"gorm.io/gorm"

	"warehouse-in-go/pkg/model"
	"warehouse-in-go/pkg/server/store"
)

// Ensure ObservationsStore implements store.ObservationsStore
var _ store.ObservationsStore = (*ObservationsStore)(nil)

// ObservationsStore implements store.ObservationsStore using GORM
type ObservationsStore struct {
	db *gorm.DB
}

// NewObservationsStore creates a new ObservationsStore
func NewObservationsStore(db *gorm.DB) *ObservationsStore {
	return &ObservationsStore{db: db}
}

// CreateObservation stores a new observation.
func (s *ObservationsStore) CreateObservation(obs *model.Observation) error {
	return s.db.Create(obs).Error
}

// ListObservations returns a project's observations, newest first.
func (s *ObservationsStore) ListObservations(projectID string) ([]model.Observation, error) {
	var observations []model.Observation
	err := s.db.Where("project_id = ?", projectID).
		Order("created_at desc").
		Find(&observations).Error
	return observations, err
}

// ListRecentObservations returns the most recent observations across all
// projects, up to limit.
func (s *ObservationsStore) ListRecentObservations(limit int) ([]model.Observation, error) {
	var observations []model.Observation
	err := s.db.Order("created_at desc").
		Limit(limit).
		Find(&observations).Error
	return observations, err
}

// CountDistinctMalwareObservers counts distinct observers with malware
// observations against a project.
func (s *ObservationsStore) CountDistinctMalwareObservers(projectID string) (int, error) {
	var count int64
	err := s.db.Model(&model.Observation{}).
		Where("project_id = ? AND kind = ?", projectID, model.ObservationKindMalware).
		Distinct("observer_id").
		Count(&count).Error
	return int(count), err
}
