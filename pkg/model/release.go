package model

import "time"

// Release is one version of a project. CanonicalVersion is the normalized
// PEP 440 rendering; (project_id, canonical_version) is unique.
type Release struct {
	ID                     string    `gorm:"column:id;primaryKey"`
	ProjectID              string    `gorm:"column:project_id;not null;index"`
	Version                string    `gorm:"column:version;not null"`
	CanonicalVersion       string    `gorm:"column:canonical_version;not null"`
	IsPrerelease           bool      `gorm:"column:is_prerelease;not null"`
	Summary                string    `gorm:"column:summary"`
	Description            string    `gorm:"column:description"`
	DescriptionContentType string    `gorm:"column:description_content_type"`
	DescriptionHTML        *string   `gorm:"column:description_html"`
	RequiresPython         string    `gorm:"column:requires_python"`
	Yanked                 bool      `gorm:"column:yanked;not null"`
	YankedReason           string    `gorm:"column:yanked_reason"`
	UploadedBy             string    `gorm:"column:uploaded_by"`
	CreatedAt              time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Release) TableName() string {
	return "releases"
}

// ReleaseClassifier is one trove classifier attached to a release.
type ReleaseClassifier struct {
	ReleaseID  string `gorm:"column:release_id;primaryKey"`
	Classifier string `gorm:"column:classifier;primaryKey"`
}

func (ReleaseClassifier) TableName() string {
	return "release_classifiers"
}
