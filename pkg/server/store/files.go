package store

import (
	"errors"

	"warehouse-in-go/pkg/model"
)

// ErrFileNotFound is returned when a file doesn't exist
var ErrFileNotFound = errors.New("file not found")

// ErrDuplicateFile is returned when a file with the same digests exists
var ErrDuplicateFile = errors.New("file already exists")

// ErrFilenameTaken is returned when a filename has ever been used before
var ErrFilenameTaken = errors.New("filename has already been used")

// FilesStore abstracts distribution file storage operations
type FilesStore interface {
	// FindFile retrieves a file by filename.
	// Returns ErrFileNotFound if the file doesn't exist.
	FindFile(filename string) (*model.File, error)

	// ExistsWithDigests checks whether a file with any of the given
	// digests is already stored.
	ExistsWithDigests(md5, sha256, blake2 string) (bool, error)

	// FilenameInJournal checks the append-only filename journal.
	FilenameInJournal(filename string) (bool, error)

	// CreateFile stores a file row and journals its filename in one
	// transaction. Returns ErrFilenameTaken if the journal already holds
	// the filename.
	CreateFile(file *model.File) error

	// ListFiles returns all files of a release, by filename.
	ListFiles(releaseID string) ([]model.File, error)

	// ListProjectFiles returns all files across a project's releases.
	ListProjectFiles(projectID string) ([]model.File, error)
}
