package store

import (
	"context"
	"errors"

	"github.com/tinkerhall/doorbot/internal/doorbot/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement it and
// expose sub-repositories to keep concerns separate. No other component
// touches the junction tables behind Access; they are reachable only through
// its methods.
type Store interface {
	Members() Members
	Access() Access
	Tokens() Tokens
	Locations() Locations
	EntryLog() EntryLog

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, rolling back when fn returns
	// an error and committing otherwise. Prefer this over Tx directly.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// MemberSearch filters and pages a member listing. Name matches
// case-insensitively as a substring. Limit zero means no limit is applied at
// this layer; callers wanting a cap must pass one.
type MemberSearch struct {
	Name   string
	RFID   string
	Offset int
	Limit  int
}

// EntrySearch filters and pages the entry log, newest first.
type EntrySearch struct {
	RFID   string
	Offset int
	Limit  int
}

type Members interface {
	// CreateMember inserts a new member (id is provided by the service via
	// ULID). A duplicate rfid or username reports ErrAlreadyExists.
	CreateMember(ctx context.Context, m domain.Member) error

	GetMemberByID(ctx context.Context, id string) (domain.Member, error)
	GetMemberByTag(ctx context.Context, rfid string) (domain.Member, error)
	GetMemberByUsername(ctx context.Context, username string) (domain.Member, error)

	// SetMemberActive soft-enables or -disables a member. Members are never
	// hard-deleted in normal flow.
	SetMemberActive(ctx context.Context, rfid string, active bool) error

	UpdateMemberName(ctx context.Context, rfid, newName string) error

	// UpdateMemberTag is the explicit admin "change tag" operation; rfid is
	// otherwise immutable.
	UpdateMemberTag(ctx context.Context, oldRFID, newRFID string) error

	// UpdateMemberPassword persists a (type tag, encoded) credential pair.
	UpdateMemberPassword(ctx context.Context, rfid, passwordType, encoded string) error

	// SearchMembers lists members ordered by join date ascending.
	SearchMembers(ctx context.Context, q MemberSearch) ([]domain.Member, error)

	// DumpActiveTags returns every currently-active tag mapped to true, for
	// downstream access-control hardware.
	DumpActiveTags(ctx context.Context) (map[string]bool, error)
}

type Access interface {
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)
	CreateRole(ctx context.Context, r domain.Role) error

	// DeleteRole cascades the role's grants and memberships but leaves
	// members' other roles intact.
	DeleteRole(ctx context.Context, roleID string) error

	GetPermissionByName(ctx context.Context, name string) (domain.Permission, error)
	CreatePermission(ctx context.Context, p domain.Permission) error

	GrantPermission(ctx context.Context, roleID, permissionID string) error
	RevokePermission(ctx context.Context, roleID, permissionID string) error

	AddMemberRole(ctx context.Context, memberID, roleID string) error
	RemoveMemberRole(ctx context.Context, memberID, roleID string) error

	RoleHasPermission(ctx context.Context, roleID, permissionID string) (bool, error)

	// MemberHasPermission is the two-hop traversal: member -> roles ->
	// permissions, OR semantics across roles.
	MemberHasPermission(ctx context.Context, memberID, permissionName string) (bool, error)

	ListMemberRoles(ctx context.Context, memberID string) ([]domain.Role, error)
	ListMemberPermissions(ctx context.Context, memberID string) ([]domain.Permission, error)

	// TagsWithPermission returns tag -> true for members granted the named
	// permission through any role, filtered to active members unless
	// includeInactive is set.
	TagsWithPermission(ctx context.Context, permissionName string, includeInactive bool) (map[string]bool, error)
}

type Tokens interface {
	CreateToken(ctx context.Context, t domain.BearerToken) error

	// GetTokenByValue looks a token up by its exact opaque value. Expiry is
	// not checked here; the auth gateway owns that decision.
	GetTokenByValue(ctx context.Context, token string) (domain.BearerToken, error)

	ListMemberTokens(ctx context.Context, memberID string) ([]domain.BearerToken, error)

	// DeleteMemberToken removes a token only when it belongs to the given
	// member; anyone else's token id reports ErrNotFound.
	DeleteMemberToken(ctx context.Context, memberID, id string) error

	// DeleteExpiredTokens is housekeeping.
	DeleteExpiredTokens(ctx context.Context) error
}

type Locations interface {
	GetLocationByName(ctx context.Context, name string) (domain.Location, error)
	CreateLocation(ctx context.Context, l domain.Location) error
	ListLocations(ctx context.Context) ([]domain.Location, error)
}

type EntryLog interface {
	// InsertEntry appends one audit row. The entry timestamp is assigned at
	// insert; entries are immutable afterwards.
	InsertEntry(ctx context.Context, e domain.EntryLogEntry) error

	// SearchEntries lists audit rows newest first, joined with the member
	// name and location name where they resolve.
	SearchEntries(ctx context.Context, q EntrySearch) ([]domain.EntryLogEntry, error)
}
