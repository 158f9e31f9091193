package gorm

import (
	"gorm.io/gorm"

	"warehouse-in-go/pkg/model"
	"warehouse-in-go/pkg/server/store"
)

// Ensure ReleasesStore implements store.ReleasesStore
var _ store.ReleasesStore = (*ReleasesStore)(nil)

// ReleasesStore implements store.ReleasesStore using GORM
type ReleasesStore struct {
	db *gorm.DB
}

// NewReleasesStore creates a new ReleasesStore
func NewReleasesStore(db *gorm.DB) *ReleasesStore {
	return &ReleasesStore{db: db}
}

// FindRelease retrieves a release by project and canonical version.
func (s *ReleasesStore) FindRelease(projectID, canonicalVersion string) (*model.Release, error) {
	var release model.Release
	tx := s.db.Where("project_id = ? AND canonical_version = ?", projectID, canonicalVersion).
		First(&release)
	if tx.Error != nil {
		if tx.Error == gorm.ErrRecordNotFound {
			return nil, store.ErrReleaseNotFound
		}
		return nil, tx.Error
	}
	return &release, nil
}

// CreateRelease stores a new release with its classifiers.
func (s *ReleasesStore) CreateRelease(release *model.Release, classifiers []string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(release).Error; err != nil {
			return err
		}
		for _, classifier := range classifiers {
			rc := model.ReleaseClassifier{
				ReleaseID:  release.ID,
				Classifier: classifier,
			}
			if err := tx.Create(&rc).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ListReleases returns all releases of a project, newest first.
func (s *ReleasesStore) ListReleases(projectID string) ([]model.Release, error) {
	var releases []model.Release
	err := s.db.Where("project_id = ?", projectID).
		Order("created_at desc").
		Find(&releases).Error
	return releases, err
}

// ListClassifiers returns the classifiers of a release in lexical order.
func (s *ReleasesStore) ListClassifiers(releaseID string) ([]string, error) {
	var classifiers []string
	err := s.db.Model(&model.ReleaseClassifier{}).
		Where("release_id = ?", releaseID).
		Order("classifier asc").
		Pluck("classifier", &classifiers).Error
	return classifiers, err
}

// SetYanked marks a release yanked or un-yanked.
func (s *ReleasesStore) SetYanked(releaseID string, yanked bool, reason string) error {
	tx := s.db.Model(&model.Release{}).
		Where("id = ?", releaseID).
		Updates(map[string]interface{}{
			"yanked":        yanked,
			"yanked_reason": reason,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrReleaseNotFound
	}
	return nil
}
