package gorm

import (
	"time"

	"gorm.io/gorm"

	"warehouse-in-go/pkg/model"
	"warehouse-in-go/pkg/server/store"
)

// Ensure ProjectsStore implements store.ProjectsStore
var _ store.ProjectsStore = (*ProjectsStore)(nil)

// ProjectsStore implements store.ProjectsStore using GORM
type ProjectsStore struct {
	db *gorm.DB
}

// NewProjectsStore creates a new ProjectsStore
func NewProjectsStore(db *gorm.DB) *ProjectsStore {
	return &ProjectsStore{db: db}
}

// FindProject retrieves a project by normalized name.
func (s *ProjectsStore) FindProject(normalizedName string) (*model.Project, error) {
	var project model.Project
	tx := s.db.Where("normalized_name = ?", normalizedName).First(&project)
	if tx.Error != nil {
		if tx.Error == gorm.ErrRecordNotFound {
			return nil, store.ErrProjectNotFound
		}
		return nil, tx.Error
	}
	return &project, nil
}

// CreateProject registers a new project and grants its creator the owner role.
func (s *ProjectsStore) CreateProject(project *model.Project, ownerID string) error {
	prohibited, err := s.IsProhibited(project.NormalizedName)
	if err != nil {
		return err
	}
	if prohibited {
		return store.ErrProjectProhibited
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}
		return tx.Create(&model.ProjectRole{
			ProjectID: project.ID,
			UserID:    ownerID,
			RoleName:  "owner",
		}).Error
	})
}

// ListProjectNames returns live project normalized names in lexical order.
func (s *ProjectsStore) ListProjectNames(limit int) ([]string, error) {
	var names []string
	tx := s.db.Model(&model.Project{}).
		Where("lifecycle_status IS NULL OR lifecycle_status <> ?", model.LifecycleStatusQuarantineEnter).
		Order("normalized_name asc")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if err := tx.Pluck("normalized_name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

// HasRole checks whether a user holds any role on a project.
func (s *ProjectsStore) HasRole(projectID, userID string) (bool, error) {
	var count int64
	err := s.db.Model(&model.ProjectRole{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	return count > 0, err
}

// GrantRole grants a role on a project, replacing any existing grant.
func (s *ProjectsStore) GrantRole(projectID, userID, roleName string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		tx.Where("project_id = ? AND user_id = ?", projectID, userID).
			Delete(&model.ProjectRole{})
		return tx.Create(&model.ProjectRole{
			ProjectID: projectID,
			UserID:    userID,
			RoleName:  roleName,
		}).Error
	})
}

// SetLifecycleStatus updates the project lifecycle status.
func (s *ProjectsStore) SetLifecycleStatus(projectID string, status *string, note string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"lifecycle_status":         status,
		"lifecycle_status_changed": &now,
		"lifecycle_status_note":    note,
	}
	tx := s.db.Model(&model.Project{}).Where("id = ?", projectID).Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrProjectNotFound
	}
	return nil
}

// ListQuarantined returns all projects currently in quarantine.
func (s *ProjectsStore) ListQuarantined() ([]model.Project, error) {
	var projects []model.Project
	err := s.db.Where("lifecycle_status = ?", model.LifecycleStatusQuarantineEnter).
		Order("lifecycle_status_changed desc").
		Find(&projects).Error
	return projects, err
}

// AddTotalSize adjusts the project's cached total size by delta bytes.
func (s *ProjectsStore) AddTotalSize(projectID string, delta int64) error {
	return s.db.Model(&model.Project{}).
		Where("id = ?", projectID).
		Update("total_size", gorm.Expr("total_size + ?", delta)).Error
}

// Prohibit blocks a normalized name from registration.
func (s *ProjectsStore) Prohibit(name, prohibitedBy, comment string) error {
	return s.db.Create(&model.ProhibitedProjectName{
		Name:         name,
		ProhibitedBy: prohibitedBy,
		Comment:      comment,
	}).Error
}

// ListProhibited returns all prohibited names ordered by name.
func (s *ProjectsStore) ListProhibited() ([]model.ProhibitedProjectName, error) {
	var names []model.ProhibitedProjectName
	err := s.db.Order("name").Find(&names).Error
	return names, err
}

// IsProhibited checks whether a normalized name is blocked.
func (s *ProjectsStore) IsProhibited(normalizedName string) (bool, error) {
	var count int64
	err := s.db.Model(&model.ProhibitedProjectName{}).
		Where("name = ?", normalizedName).
		Count(&count).Error
	return count > 0, err
}
