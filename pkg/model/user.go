package model

import "time"

// User is an account on the index. Accounts are created through the CLI;
// the web signup surfaces are out of scope here.
type User struct {
	ID         string    `gorm:"column:id;primaryKey"`
	Username   string    `gorm:"column:username;not null;uniqueIndex"`
	IsAdmin    bool      `gorm:"column:is_admin;not null"`
	IsObserver bool      `gorm:"column:is_observer;not null"`
	IsFrozen   bool      `gorm:"column:is_frozen;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}

// APIToken authenticates uploads and API calls. Only the SHA-256 of the
// secret is stored; the cleartext token is shown once at creation.
// A token may be scoped to a single project by normalized name.
type APIToken struct {
	ID           string     `gorm:"column:id;primaryKey"`
	UserID       string     `gorm:"column:user_id;not null;index"`
	HashedSecret string     `gorm:"column:hashed_secret;not null"`
	Caption      string     `gorm:"column:caption"`
	ProjectScope *string    `gorm:"column:project_scope"`
	LastUsedAt   *time.Time `gorm:"column:last_used_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (APIToken) TableName() string {
	return "api_tokens"
}
