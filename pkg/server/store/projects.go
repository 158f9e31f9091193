package store

import (
	"errors"

	"warehouse-in-go/pkg/model"
)

// ErrProjectNotFound is returned when a project doesn't exist
var ErrProjectNotFound = errors.New("project not found")

// ErrProjectProhibited is returned when a project name is blocked
var ErrProjectProhibited = errors.New("project name is prohibited")

// ProjectsStore abstracts project storage operations
type ProjectsStore interface {
	// FindProject retrieves a project by normalized name.
	// Returns ErrProjectNotFound if the project doesn't exist.
	FindProject(normalizedName string) (*model.Project, error)

	// CreateProject registers a new project and grants its creator the
	// owner role. Returns ErrProjectProhibited if the normalized name is
	// on the prohibited list.
	CreateProject(project *model.Project, ownerID string) error

	// ListProjectNames returns up to limit live (non-quarantined) project
	// normalized names in lexical order. limit <= 0 means no limit.
	ListProjectNames(limit int) ([]string, error)

	// HasRole checks whether a user holds any role on a project.
	HasRole(projectID, userID string) (bool, error)

	// GrantRole grants a role on a project, replacing any existing grant.
	GrantRole(projectID, userID, roleName string) error

	// SetLifecycleStatus updates the project lifecycle status. A nil
	// status returns the project to the live state.
	SetLifecycleStatus(projectID string, status *string, note string) error

	// ListQuarantined returns all projects currently in quarantine.
	ListQuarantined() ([]model.Project, error)

	// AddTotalSize adjusts the project's cached total size by delta bytes.
	AddTotalSize(projectID string, delta int64) error

	// Prohibit blocks a normalized name from registration.
	Prohibit(name, prohibitedBy, comment string) error

	// IsProhibited checks whether a normalized name is blocked.
	IsProhibited(normalizedName string) (bool, error)

	// ListProhibited returns all prohibited names ordered by name.
	ListProhibited() ([]model.ProhibitedProjectName, error)
}
