package entities

import "time"

// SessionKind separates phone-verified organizer sessions from token-scoped
// voter sessions.
type SessionKind string

const (
	SessionKindPhone SessionKind = "PHONE"
	SessionKindVoter SessionKind = "VOTER"
)

// Session is the opaque handle the transport layer carries. The engine
// never interprets the id; scope fields say what the holder may touch.
type Session struct {
	SessionID string
	Kind      SessionKind
	Phone     string
	SheetID   string
	OwnerID   string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Live reports whether the session is still usable.
func (s Session) Live(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// TokenGrant is what the token directory resolves a public-token hash to.
type TokenGrant struct {
	SheetID        string
	OwnerID        string
	SheetExpiresAt time.Time
}
