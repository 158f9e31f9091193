package model

import "time"

// Lifecycle statuses a project can be in. A nil LifecycleStatus means the
// project is live.
const (
	LifecycleStatusQuarantineEnter = "quarantine-enter"
	LifecycleStatusQuarantineExit  = "quarantine-exit"
)

// Project represents a distribution project on the index.
type Project struct {
	ID              string     `gorm:"column:id;primaryKey"`
	Name            string     `gorm:"column:name;not null"`
	NormalizedName  string     `gorm:"column:normalized_name;not null;uniqueIndex"`
	LifecycleStatus *string    `gorm:"column:lifecycle_status"`
	StatusChangedAt *time.Time `gorm:"column:lifecycle_status_changed"`
	StatusNote      *string    `gorm:"column:lifecycle_status_note"`
	TotalSize       int64      `gorm:"column:total_size;not null"`
	UploadLimit     *int64     `gorm:"column:upload_limit"`
	TotalSizeLimit  *int64     `gorm:"column:total_size_limit"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (Project) TableName() string {
	return "projects"
}

// InQuarantine reports whether the project is currently quarantined.
// A quarantined project is hidden from the index surfaces and refuses
// uploads.
func (p *Project) InQuarantine() bool {
	return p.LifecycleStatus != nil && *p.LifecycleStatus == LifecycleStatusQuarantineEnter
}

// ProjectRole grants a user upload rights on a project.
type ProjectRole struct {
	ProjectID string    `gorm:"column:project_id;primaryKey"`
	UserID    string    `gorm:"column:user_id;primaryKey"`
	RoleName  string    `gorm:"column:role_name;not null"` // "owner" or "maintainer"
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ProjectRole) TableName() string {
	return "project_roles"
}

// ProhibitedProjectName blocks a normalized name from registration.
type ProhibitedProjectName struct {
	Name         string    `gorm:"column:name;primaryKey"`
	ProhibitedBy string    `gorm:"column:prohibited_by"`
	Comment      string    `gorm:"column:comment"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ProhibitedProjectName) TableName() string {
	return "prohibited_project_names"
}
