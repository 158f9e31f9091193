package middleware

import (
	"net"
	"net/http"

	"warehouse-in-go/pkg/config"
	"warehouse-in-go/pkg/events"
	"warehouse-in-go/pkg/identity"
	"warehouse-in-go/pkg/server/store"
	"warehouse-in-go/pkg/token"
)

// TokenUser is the fixed Basic auth username for API token authentication.
const TokenUser = "__token__"

// TokenAuthenticator is middleware that authenticates API tokens presented
// as the Basic auth password for the "__token__" user.
type TokenAuthenticator struct {
	Users  store.UsersStore
	Config *config.WarehouseConfig
}

// NewTokenAuthenticator creates a new API token authenticator middleware.
func NewTokenAuthenticator(users store.UsersStore, cfg *config.WarehouseConfig) *TokenAuthenticator {
	return &TokenAuthenticator{Users: users, Config: cfg}
}

// Middleware returns an HTTP middleware that validates API tokens.
func (t *TokenAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := RemoteIP(r, t.Config)

		basicUser, password, ok := r.BasicAuth()
		if !ok || basicUser != TokenUser {
			t.reject(w, clientIP, "", "", "credentials missing or not an API token")
			return
		}

		tokenID, secret, err := token.Parse(password)
		if err != nil {
			t.reject(w, clientIP, "", "", "malformed token")
			return
		}

		record, err := t.Users.FindToken(tokenID)
		if err != nil {
			t.reject(w, clientIP, "", tokenID, "unknown token")
			return
		}

		if !token.Verify(record, secret) {
			t.reject(w, clientIP, "", tokenID, "invalid token secret")
			return
		}

		user, err := t.Users.FindUserByID(record.UserID)
		if err != nil {
			t.reject(w, clientIP, "", tokenID, "token owner missing")
			return
		}

		if user.IsFrozen {
			t.reject(w, clientIP, user.Username, tokenID, "account is frozen")
			return
		}

		// Last-use bookkeeping is best effort
		_ = t.Users.TouchToken(record.ID)

		events.Log(events.TokenAuthEvent{
			Username: user.Username,
			TokenID:  record.ID,
			ClientIP: ipString(clientIP),
			Success:  true,
		})

		id := identity.FromToken(user, record).WithRemoteIP(clientIP)
		r = r.WithContext(identity.Set(r.Context(), id))
		next.ServeHTTP(w, r)
	})
}

func (t *TokenAuthenticator) reject(w http.ResponseWriter, clientIP net.IP, username, tokenID, reason string) {
	events.Log(events.TokenAuthEvent{
		Username:     username,
		TokenID:      tokenID,
		ClientIP:     ipString(clientIP),
		Success:      false,
		ErrorMessage: reason,
	})
	w.Header().Set("WWW-Authenticate", `Basic realm="pypi"`)
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte("Invalid or non-existent authentication information"))
}

func ipString(ip net.IP) string {
	if ip == nil {
		return ""
	}
	return ip.String()
}
