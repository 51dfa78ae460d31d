package domain

import "time"

// Role is a named bundle of permissions, assignable to members.
// Both relationships are many-to-many and live in junction tables owned
// by the access store.
type Role struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Permission is a named capability gating one entry point or action,
// by convention a dotted path like "woodshop.tablesaw".
type Permission struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
