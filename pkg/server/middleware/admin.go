package middleware

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"warehouse-in-go/pkg/config"
	"warehouse-in-go/pkg/identity"
	"warehouse-in-go/pkg/server/store"
)

// AdminSessions issues and validates admin session tokens. Sessions are
// HS256 JWTs carrying the user ID, signed with a shared secret from
// WAREHOUSE_ADMIN_JWT_SECRET.
type AdminSessions struct {
	secret []byte
	ttl    time.Duration
	users  store.UsersStore
	cfg    *config.WarehouseConfig
}

// NewAdminSessions creates an AdminSessions helper. It fails when no signing
// secret is configured.
func NewAdminSessions(users store.UsersStore, cfg *config.WarehouseConfig) (*AdminSessions, error) {
	secret := os.Getenv("WAREHOUSE_ADMIN_JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("WAREHOUSE_ADMIN_JWT_SECRET environment variable is required")
	}
	return &AdminSessions{
		secret: []byte(secret),
		ttl:    cfg.SessionTTL(),
		users:  users,
		cfg:    cfg,
	}, nil
}

// Issue creates a session token for an admin user.
func (a *AdminSessions) Issue(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		Issuer:    "warehouse-admin",
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Middleware returns an HTTP middleware that requires a valid admin session.
func (a *AdminSessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Authorization missing"))
			return
		}

		tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Malformed authorization header"))
			return
		}

		claims := &jwt.RegisteredClaims{}
		parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.secret, nil
		})
		if err != nil || !parsed.Valid {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Invalid session token"))
			return
		}

		user, err := a.users.FindUserByID(claims.Subject)
		if err != nil || !user.IsAdmin || user.IsFrozen {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte("Admin privileges required"))
			return
		}

		id := identity.FromUser(user).WithRemoteIP(RemoteIP(r, a.cfg))
		r = r.WithContext(identity.Set(r.Context(), id))
		next.ServeHTTP(w, r)
	})
}
