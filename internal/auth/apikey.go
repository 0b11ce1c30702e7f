package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
)

const ServerKeyPrefix = "ghost_"

// NewServerKey returns "ghost_" followed by 64 hex chars. The plaintext is
// shown once at creation; only its hash is stored.
func NewServerKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return ServerKeyPrefix + hex.EncodeToString(b), nil
}

// BearerToken returns the token of an "Authorization: Bearer x" header.
func BearerToken(r *http.Request) string {
	v := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(v) <= len(prefix) || !strings.EqualFold(v[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(v[len(prefix):])
}

// ServerKeyFromRequest reads X-API-Key, falling back to the bearer token.
func ServerKeyFromRequest(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get("X-API-Key")); v != "" {
		return v
	}
	return BearerToken(r)
}

func secretEqual(got, want string) bool {
	if want == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// CheckConfigSecret validates X-Config-Key against the shared secret. An
// unset secret rejects everything.
func CheckConfigSecret(r *http.Request, secret string) bool {
	return secretEqual(strings.TrimSpace(r.Header.Get("X-Config-Key")), secret)
}
