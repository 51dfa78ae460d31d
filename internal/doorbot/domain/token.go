package domain

import "time"

// BearerToken is an opaque API credential belonging to exactly one member.
// Expired or unknown tokens are invalid; there is no refresh or rotation.
type BearerToken struct {
	ID        string
	MemberID  string
	Name      string // human label, e.g. "garage kiosk"
	Token     string // opaque value, unique
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Valid reports whether the token is usable at the given instant.
func (t BearerToken) Valid(now time.Time) bool {
	return now.Before(t.ExpiresAt)
}
