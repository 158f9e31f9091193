package store

import (
	"errors"

	"warehouse-in-go/pkg/model"
)

// ErrReleaseNotFound is returned when a release doesn't exist
var ErrReleaseNotFound = errors.New("release not found")

// ReleasesStore abstracts release storage operations
type ReleasesStore interface {
	// FindRelease retrieves a release by project and canonical version.
	// Returns ErrReleaseNotFound if the release doesn't exist.
	FindRelease(projectID, canonicalVersion string) (*model.Release, error)

	// CreateRelease stores a new release with its classifiers.
	CreateRelease(release *model.Release, classifiers []string) error

	// ListReleases returns all releases of a project, newest first by
	// creation time. Version ordering is applied by callers.
	ListReleases(projectID string) ([]model.Release, error)

	// ListClassifiers returns the classifiers of a release in lexical order.
	ListClassifiers(releaseID string) ([]string, error)

	// SetYanked marks a release yanked or un-yanked.
	SetYanked(releaseID string, yanked bool, reason string) error
}
