package gorm

import (
	"gorm.io/gorm"

	"warehouse-in-go/pkg/model"
	"warehouse-in-go/pkg/server/store"
)

// Ensure FilesStore implements store.FilesStore
var _ store.FilesStore = (*FilesStore)(nil)

// FilesStore implements store.FilesStore using GORM
type FilesStore struct {
	db *gorm.DB
}

// NewFilesStore creates a new FilesStore
func NewFilesStore(db *gorm.DB) *FilesStore {
	return &FilesStore{db: db}
}

// FindFile retrieves a file by filename.
func (s *FilesStore) FindFile(filename string) (*model.File, error) {
	var file model.File
	tx := s.db.Where("filename = ?", filename).First(&file)
	if tx.Error != nil {
		if tx.Error == gorm.ErrRecordNotFound {
			return nil, store.ErrFileNotFound
		}
		return nil, tx.Error
	}
	return &file, nil
}

// ExistsWithDigests checks whether a file with any of the given digests is
// already stored.
func (s *FilesStore) ExistsWithDigests(md5, sha256, blake2 string) (bool, error) {
	var count int64
	err := s.db.Model(&model.File{}).
		Where("md5_digest = ? OR sha256_digest = ? OR blake2_256_digest = ?", md5, sha256, blake2).
		Count(&count).Error
	return count > 0, err
}

// FilenameInJournal checks the append-only filename journal.
func (s *FilesStore) FilenameInJournal(filename string) (bool, error) {
	var count int64
	err := s.db.Model(&model.Filename{}).
		Where("filename = ?", filename).
		Count(&count).Error
	return count > 0, err
}

// CreateFile stores a file row and journals its filename in one transaction.
func (s *FilesStore) CreateFile(file *model.File) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Filename{}).
			Where("filename = ?", file.Filename).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return store.ErrFilenameTaken
		}
		if err := tx.Create(&model.Filename{Filename: file.Filename}).Error; err != nil {
			return err
		}
		return tx.Create(file).Error
	})
}

// ListFiles returns all files of a release, by filename.
func (s *FilesStore) ListFiles(releaseID string) ([]model.File, error) {
	var files []model.File
	err := s.db.Where("release_id = ?", releaseID).
		Order("filename asc").
		Find(&files).Error
	return files, err
}

// ListProjectFiles returns all files across a project's releases.
func (s *FilesStore) ListProjectFiles(projectID string) ([]model.File, error) {
	var files []model.File
	err := s.db.
		Joins("JOIN releases ON releases.id = files.release_id").
		Where("releases.project_id = ?", projectID).
		Order("files.filename asc").
		Find(&files).Error
	return files, err
}
