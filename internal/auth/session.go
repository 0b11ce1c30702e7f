package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultSessionTTL = 7 * 24 * time.Hour

// SessionClaims is the payload of the ghost_session cookie. Subject carries
// the steam id.
type SessionClaims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
}

func (c *SessionClaims) SteamID() string {
	return c.Subject
}

// Sessions signs and verifies HS256 session tokens. Issuing exists for the
// login flow and tests; request handling only decodes.
type Sessions struct {
	secret []byte
	cookie string
	ttl    time.Duration
	now    func() time.Time
}

func NewSessions(secret, cookie string) (*Sessions, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrEmptySecret
	}
	if cookie == "" {
		cookie = "ghost_session"
	}
	return &Sessions{secret: []byte(secret), cookie: cookie, ttl: DefaultSessionTTL, now: time.Now}, nil
}

func (s *Sessions) CookieName() string {
	return s.cookie
}

func (s *Sessions) Issue(steamID, name string) (string, error) {
	now := s.now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   steamID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Name: name,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Sessions) Parse(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}
	if claims.Subject == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// FromRequest decodes the session cookie. A missing cookie is ErrNoSession;
// anything unreadable is ErrInvalidSession.
func (s *Sessions) FromRequest(r *http.Request) (*SessionClaims, error) {
	c, err := r.Cookie(s.cookie)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, ErrNoSession
		}
		return nil, ErrInvalidSession
	}
	if c.Value == "" {
		return nil, ErrNoSession
	}
	return s.Parse(c.Value)
}
