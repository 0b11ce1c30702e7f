package auth

import (
	"net/http"
	"strings"
)

type Role string

const (
	RoleAnonymous Role = "anonymous"
	RolePlayer    Role = "player"
	RoleAdmin     Role = "admin"
)

// Principal is who a request acts as. Via records how the role was earned
// ("session" or "admin_key") so audit entries can name the actor.
type Principal struct {
	SteamID string
	Name    string
	Role    Role
	Via     string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Actor is the label written into admin ledger descriptions.
func (p Principal) Actor() string {
	if p.SteamID != "" {
		return p.SteamID
	}
	return p.Via
}

// Policy is the single place that turns request credentials into a role.
type Policy struct {
	sessions *Sessions
	adminKey string
	owners   map[string]struct{}
}

func NewPolicy(sessions *Sessions, adminKey string, ownerSteamIDs []string) *Policy {
	owners := make(map[string]struct{}, len(ownerSteamIDs))
	for _, id := range ownerSteamIDs {
		if id = strings.TrimSpace(id); id != "" {
			owners[id] = struct{}{}
		}
	}
	return &Policy{sessions: sessions, adminKey: adminKey, owners: owners}
}

func (p *Policy) Sessions() *Sessions {
	return p.sessions
}

// Resolve never fails: bad or missing credentials resolve to anonymous.
// The admin key wins over a session so tooling can act without a cookie.
func (p *Policy) Resolve(r *http.Request) Principal {
	if p.adminKeyPresented(r) {
		return Principal{Role: RoleAdmin, Via: "admin_key"}
	}
	if p.sessions == nil {
		return Principal{Role: RoleAnonymous}
	}
	claims, err := p.sessions.FromRequest(r)
	if err != nil {
		return Principal{Role: RoleAnonymous}
	}
	out := Principal{SteamID: claims.SteamID(), Name: claims.Name, Role: RolePlayer, Via: "session"}
	if _, ok := p.owners[out.SteamID]; ok {
		out.Role = RoleAdmin
	}
	return out
}

func (p *Policy) adminKeyPresented(r *http.Request) bool {
	if p.adminKey == "" {
		return false
	}
	if secretEqual(strings.TrimSpace(r.Header.Get("X-Admin-Key")), p.adminKey) {
		return true
	}
	return secretEqual(BearerToken(r), p.adminKey)
}
