package store

import (
	"errors"

	"warehouse-in-go/pkg/model"
)

// ErrUserNotFound is returned when a user doesn't exist
var ErrUserNotFound = errors.New("user not found")

// ErrTokenNotFound is returned when an API token doesn't exist
var ErrTokenNotFound = errors.New("token not found")

// UsersStore abstracts user and API token storage operations
type UsersStore interface {
	// FindUser retrieves a user by username.
	// Returns ErrUserNotFound if the user doesn't exist.
	FindUser(username string) (*model.User, error)

	// FindUserByID retrieves a user by ID.
	FindUserByID(id string) (*model.User, error)

	// CreateUser stores a new user.
	CreateUser(user *model.User) error

	// SetFrozen freezes or unfreezes a user account.
	SetFrozen(userID string, frozen bool) error

	// FindToken retrieves an API token by its ID.
	// Returns ErrTokenNotFound if the token doesn't exist.
	FindToken(tokenID string) (*model.APIToken, error)

	// CreateToken stores a new API token.
	CreateToken(token *model.APIToken) error

	// TouchToken records that a token was just used.
	TouchToken(tokenID string) error
}
