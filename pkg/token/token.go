// Package token implements the API token wire format.
//
// A cleartext token looks like "wh-<id>.<secret>". Only the SHA-256 of the
// secret half is stored; the id half locates the row. Uploaders present the
// whole cleartext as the Basic auth password for user "__token__".
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"warehouse-in-go/pkg/model"
)

// Prefix identifies index-issued tokens in credential scanners.
const Prefix = "wh-"

const secretBytes = 32

var ErrMalformed = errors.New("malformed API token")

// Generate creates a new API token for a user. It returns the cleartext
// token, shown exactly once, and the record to persist.
func Generate(userID, caption string, projectScope *string) (string, *model.APIToken, error) {
	id := model.NewID()

	raw := make([]byte, secretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", nil, fmt.Errorf("failed to generate token secret: %w", err)
	}
	secret := hex.EncodeToString(raw)

	record := &model.APIToken{
		ID:           id,
		UserID:       userID,
		HashedSecret: hashSecret(secret),
		Caption:      caption,
		ProjectScope: projectScope,
	}
	return Prefix + id + "." + secret, record, nil
}

// Parse splits a cleartext token into its id and secret halves.
func Parse(cleartext string) (id, secret string, err error) {
	if !strings.HasPrefix(cleartext, Prefix) {
		return "", "", ErrMalformed
	}
	rest := strings.TrimPrefix(cleartext, Prefix)
	id, secret, ok := strings.Cut(rest, ".")
	if !ok || id == "" || secret == "" {
		return "", "", ErrMalformed
	}
	return id, secret, nil
}

// Verify checks a secret against a stored token record in constant time.
func Verify(record *model.APIToken, secret string) bool {
	hashed := hashSecret(secret)
	return subtle.ConstantTimeCompare([]byte(hashed), []byte(record.HashedSecret)) == 1
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
