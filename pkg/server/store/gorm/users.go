package gorm

import (
	"time"

	"gorm.io/gorm"

	"warehouse-in-go/pkg/model"
	"warehouse-in-go/pkg/server/store"
)

// Ensure UsersStore implements store.UsersStore
var _ store.UsersStore = (*UsersStore)(nil)

// UsersStore implements store.UsersStore using GORM
type UsersStore struct {
	db *gorm.DB
}

// NewUsersStore creates a new UsersStore
func NewUsersStore(db *gorm.DB) *UsersStore {
	return &UsersStore{db: db}
}

// FindUser retrieves a user by username.
func (s *UsersStore) FindUser(username string) (*model.User, error) {
	var user model.User
	tx := s.db.Where("username = ?", username).First(&user)
	if tx.Error != nil {
		if tx.Error == gorm.ErrRecordNotFound {
			return nil, store.ErrUserNotFound
		}
		return nil, tx.Error
	}
	return &user, nil
}

// FindUserByID retrieves a user by ID.
func (s *UsersStore) FindUserByID(id string) (*model.User, error) {
	var user model.User
	tx := s.db.Where("id = ?", id).First(&user)
	if tx.Error != nil {
		if tx.Error == gorm.ErrRecordNotFound {
			return nil, store.ErrUserNotFound
		}
		return nil, tx.Error
	}
	return &user, nil
}

// CreateUser stores a new user.
func (s *UsersStore) CreateUser(user *model.User) error {
	return s.db.Create(user).Error
}

// SetFrozen freezes or unfreezes a user account.
func (s *UsersStore) SetFrozen(userID string, frozen bool) error {
	tx := s.db.Model(&model.User{}).
		Where("id = ?", userID).
		Update("is_frozen", frozen)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

// FindToken retrieves an API token by its ID.
func (s *UsersStore) FindToken(tokenID string) (*model.APIToken, error) {
	var token model.APIToken
	tx := s.db.Where("id = ?", tokenID).First(&token)
	if tx.Error != nil {
		if tx.Error == gorm.ErrRecordNotFound {
			return nil, store.ErrTokenNotFound
		}
		return nil, tx.Error
	}
	return &token, nil
}

// CreateToken stores a new API token.
func (s *UsersStore) CreateToken(token *model.APIToken) error {
	return s.db.Create(token).Error
}

// TouchToken records that a token was just used.
func (s *UsersStore) TouchToken(tokenID string) error {
	now := time.Now()
	return s.db.Model(&model.APIToken{}).
		Where("id = ?", tokenID).
		Update("last_used_at", &now).Error
}
