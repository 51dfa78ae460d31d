package service

import (
	"context"
	"errors"
	"time"

	"github.com/tinkerhall/doorbot/internal/doorbot/domain"
	"github.com/tinkerhall/doorbot/internal/doorbot/store"
	"github.com/tinkerhall/doorbot/pkg/idx"
)

// AccessService manages the role/permission graph. Roles and
// permissions are identified by name everywhere above the storage
// layer; referencing a name that does not exist yet creates it.
type AccessService struct {
	Store store.Store
}

func NewAccessService(s store.Store) *AccessService {
	return &AccessService{Store: s}
}

// GetOrCreateRole resolves a role by name, creating it when absent.
func (s *AccessService) GetOrCreateRole(ctx context.Context, name string) (domain.Role, error) {
	if name == "" {
		return domain.Role{}, ErrInvalidInput
	}
	var role domain.Role
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		role, err = getOrCreateRole(ctx, tx.Access(), name)
		return err
	})
	return role, err
}

// GetOrCreatePermission resolves a permission by name, creating it when
// absent.
func (s *AccessService) GetOrCreatePermission(ctx context.Context, name string) (domain.Permission, error) {
	if name == "" {
		return domain.Permission{}, ErrInvalidInput
	}
	var p domain.Permission
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		p, err = getOrCreatePermission(ctx, tx.Access(), name)
		return err
	})
	return p, err
}

func getOrCreateRole(ctx context.Context, access store.Access, name string) (domain.Role, error) {
	role, err := access.GetRoleByName(ctx, name)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Role{}, err
	}
	role = domain.Role{ID: idx.New(), Name: name, CreatedAt: time.Now().UTC()}
	if err := access.CreateRole(ctx, role); err != nil {
		return domain.Role{}, err
	}
	return role, nil
}

func getOrCreatePermission(ctx context.Context, access store.Access, name string) (domain.Permission, error) {
	p, err := access.GetPermissionByName(ctx, name)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Permission{}, err
	}
	p = domain.Permission{ID: idx.New(), Name: name, CreatedAt: time.Now().UTC()}
	if err := access.CreatePermission(ctx, p); err != nil {
		return domain.Permission{}, err
	}
	return p, nil
}

// Grant attaches a permission to a role, creating either side as
// needed. Granting an existing pair is a no-op.
func (s *AccessService) Grant(ctx context.Context, roleName, permissionName string) error {
	if roleName == "" || permissionName == "" {
		return ErrInvalidInput
	}
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		role, err := getOrCreateRole(ctx, tx.Access(), roleName)
		if err != nil {
			return err
		}
		perm, err := getOrCreatePermission(ctx, tx.Access(), permissionName)
		if err != nil {
			return err
		}
		return tx.Access().GrantPermission(ctx, role.ID, perm.ID)
	})
}

// Revoke detaches a permission from a role. Both must already exist.
func (s *AccessService) Revoke(ctx context.Context, roleName, permissionName string) error {
	if roleName == "" || permissionName == "" {
		return ErrInvalidInput
	}
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		role, err := tx.Access().GetRoleByName(ctx, roleName)
		if err != nil {
			return mapStoreErr(err)
		}
		perm, err := tx.Access().GetPermissionByName(ctx, permissionName)
		if err != nil {
			return mapStoreErr(err)
		}
		return tx.Access().RevokePermission(ctx, role.ID, perm.ID)
	})
}

// AddRoleToMember puts the member holding the given tag into a role,
// creating the role when absent.
func (s *AccessService) AddRoleToMember(ctx context.Context, tag, roleName string) error {
	if !ValidTag(tag) || roleName == "" {
		return ErrInvalidInput
	}
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		m, err := tx.Members().GetMemberByTag(ctx, tag)
		if err != nil {
			return mapStoreErr(err)
		}
		role, err := getOrCreateRole(ctx, tx.Access(), roleName)
		if err != nil {
			return err
		}
		return tx.Access().AddMemberRole(ctx, m.ID, role.ID)
	})
}

// RemoveRoleFromMember takes the member holding the given tag out of a
// role. Any permissions the member holds through other roles are
// unaffected.
func (s *AccessService) RemoveRoleFromMember(ctx context.Context, tag, roleName string) error {
	if !ValidTag(tag) || roleName == "" {
		return ErrInvalidInput
	}
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		m, err := tx.Members().GetMemberByTag(ctx, tag)
		if err != nil {
			return mapStoreErr(err)
		}
		role, err := tx.Access().GetRoleByName(ctx, roleName)
		if err != nil {
			return mapStoreErr(err)
		}
		return tx.Access().RemoveMemberRole(ctx, m.ID, role.ID)
	})
}

// DeleteRole removes a role entirely, cascading its grants and
// memberships.
func (s *AccessService) DeleteRole(ctx context.Context, roleName string) error {
	if roleName == "" {
		return ErrInvalidInput
	}
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		role, err := tx.Access().GetRoleByName(ctx, roleName)
		if err != nil {
			return mapStoreErr(err)
		}
		return mapStoreErr(tx.Access().DeleteRole(ctx, role.ID))
	})
}

// MemberHasPermission reports whether any of the member's roles grants
// the named permission. A missing role, permission or grant is simply
// false, never an error.
func (s *AccessService) MemberHasPermission(ctx context.Context, memberID, permissionName string) (bool, error) {
	return s.Store.Access().MemberHasPermission(ctx, memberID, permissionName)
}

// ListMemberRoles lists the roles held by the member with the given tag.
func (s *AccessService) ListMemberRoles(ctx context.Context, tag string) ([]domain.Role, error) {
	if !ValidTag(tag) {
		return nil, ErrInvalidInput
	}
	m, err := s.Store.Members().GetMemberByTag(ctx, tag)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return s.Store.Access().ListMemberRoles(ctx, m.ID)
}

// ListMemberPermissions lists every permission the member holds through
// any role, deduplicated.
func (s *AccessService) ListMemberPermissions(ctx context.Context, tag string) ([]domain.Permission, error) {
	if !ValidTag(tag) {
		return nil, ErrInvalidInput
	}
	m, err := s.Store.Members().GetMemberByTag(ctx, tag)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return s.Store.Access().ListMemberPermissions(ctx, m.ID)
}

// TagsWithPermission returns the tags of members granted the named
// permission. Inactive members are excluded unless includeInactive is
// set; the default serves door controllers that must deny lapsed
// memberships.
func (s *AccessService) TagsWithPermission(ctx context.Context, permissionName string, includeInactive bool) (map[string]bool, error) {
	if permissionName == "" {
		return nil, ErrInvalidInput
	}
	return s.Store.Access().TagsWithPermission(ctx, permissionName, includeInactive)
}
