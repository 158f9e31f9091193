package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileStorage is the archive storage backend. Paths are relative,
// forward-slash separated and derived from the file's blake2b digest.
type FileStorage interface {
	// Store writes the contents of src to path. It fails if path already
	// exists: archives are immutable once written.
	Store(path string, src io.Reader, meta map[string]string) error
	// Open returns a reader for the file at path.
	Open(path string) (io.ReadCloser, error)
	// Remove deletes the file at path. Used only by quarantine tooling.
	Remove(path string) error
}

// PathForFile computes the storage path for an archive:
// the first two, next two and remaining hex characters of the blake2b-256
// digest as directories, then the filename.
func PathForFile(blake2Digest, filename string) string {
	return strings.Join([]string{
		blake2Digest[0:2],
		blake2Digest[2:4],
		blake2Digest[4:],
		filename,
	}, "/")
}

// LocalStorage stores archives on the local filesystem under a root
// directory. Writes go through a temp file and rename so readers never see
// partial archives. Metadata is persisted next to the archive as a .meta
// file with key: value lines.
type LocalStorage struct {
	root string
}

var _ FileStorage = (*LocalStorage)(nil)

// NewLocalStorage creates a LocalStorage rooted at root, creating the
// directory if needed.
func NewLocalStorage(root string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &LocalStorage{root: root}, nil
}

// Root returns the storage root directory.
func (s *LocalStorage) Root() string {
	return s.root
}

func (s *LocalStorage) resolve(path string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(path))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid storage path: %s", path)
	}
	return filepath.Join(s.root, cleaned), nil
}

// Store implements FileStorage.
func (s *LocalStorage) Store(path string, src io.Reader, meta map[string]string) error {
	dest, err := s.resolve(path)
	if err != nil {
		return err
	}

	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("file already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, dest); err != nil {
		return fmt.Errorf("failed to move archive into place: %w", err)
	}

	if len(meta) > 0 {
		if err := writeMeta(dest+".meta", meta); err != nil {
			return err
		}
	}
	return nil
}

// Open implements FileStorage.
func (s *LocalStorage) Open(path string) (io.ReadCloser, error) {
	dest, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.Open(dest)
}

// Remove implements FileStorage.
func (s *LocalStorage) Remove(path string) error {
	dest, err := s.resolve(path)
	if err != nil {
		return err
	}
	os.Remove(dest + ".meta")
	return os.Remove(dest)
}

func writeMeta(path string, meta map[string]string) error {
	var sb strings.Builder
	for k, v := range meta {
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(v)
		sb.WriteString("\n")
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write metadata sidecar: %w", err)
	}
	return nil
}
