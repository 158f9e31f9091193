package identity

import (
	"context"
	"net"

	"warehouse-in-go/pkg/model"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// Key is the context key for Identity.
	Key ContextKey = "identity"
)

// Identity represents the authenticated identity for a request.
// It combines the authenticated user with request-specific context.
type Identity struct {
	User  *model.User
	Token *model.APIToken

	// RemoteIP is the client IP address, resolved through trusted proxies.
	RemoteIP net.IP
}

// FromToken creates an Identity from an authenticated token and its owner.
func FromToken(user *model.User, token *model.APIToken) *Identity {
	return &Identity{
		User:  user,
		Token: token,
	}
}

// FromUser creates an Identity for a session authenticated without a token,
// such as an admin JWT session.
func FromUser(user *model.User) *Identity {
	return &Identity{User: user}
}

// WithRemoteIP sets the remote IP address.
func (i *Identity) WithRemoteIP(ip net.IP) *Identity {
	i.RemoteIP = ip
	return i
}

// Username returns the login of the authenticated user, or "" when unknown.
func (i *Identity) Username() string {
	if i.User == nil {
		return ""
	}
	return i.User.Username
}

// IsAdmin returns true if the identity belongs to an administrator.
func (i *Identity) IsAdmin() bool {
	return i.User != nil && i.User.IsAdmin
}

// IsObserver returns true if the identity may submit observations.
func (i *Identity) IsObserver() bool {
	return i.User != nil && (i.User.IsObserver || i.User.IsAdmin)
}

// ScopedTo reports whether the identity's token restricts it to a single
// project. Unscoped tokens and admin sessions may touch any project.
func (i *Identity) ScopedTo(normalizedName string) bool {
	if i.Token == nil || i.Token.ProjectScope == nil {
		return true
	}
	return *i.Token.ProjectScope == normalizedName
}

// Get retrieves Identity from context.
func Get(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(Key).(*Identity)
	return id, ok
}

// Set stores Identity in context.
func Set(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, Key, id)
}
