package model

import "time"

// File is one uploaded distribution file.
type File struct {
	ID              string    `gorm:"column:id;primaryKey"`
	ReleaseID       string    `gorm:"column:release_id;not null;index"`
	Filename        string    `gorm:"column:filename;not null;uniqueIndex"`
	Path            string    `gorm:"column:path;not null"`
	PackageType     string    `gorm:"column:package_type;not null"` // "sdist" or "bdist_wheel"
	PythonVersion   string    `gorm:"column:python_version"`
	RequiresPython  string    `gorm:"column:requires_python"`
	Size            int64     `gorm:"column:size;not null"`
	MD5Digest       string    `gorm:"column:md5_digest;not null"`
	SHA256Digest    string    `gorm:"column:sha256_digest;not null;uniqueIndex"`
	Blake2Digest    string    `gorm:"column:blake2_256_digest;not null;uniqueIndex"`
	MetadataSHA256  *string   `gorm:"column:metadata_file_sha256_digest"`
	UploadedVia     string    `gorm:"column:uploaded_via"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (File) TableName() string {
	return "files"
}

// MetadataPath is where the extracted wheel METADATA is stored, if any.
func (f *File) MetadataPath() string {
	if f.MetadataSHA256 == nil {
		return ""
	}
	return f.Path + ".metadata"
}

// Filename journals every filename ever uploaded. Rows are never deleted, so
// a filename can't be reused after its file is removed.
type Filename struct {
	Filename  string    `gorm:"column:filename;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Filename) TableName() string {
	return "file_registry"
}
