package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tinkerhall/doorbot/internal/doorbot/domain"
)

// accessRepo owns the role/permission graph, including the two junction
// tables. Nothing else in the codebase queries member_roles or
// role_permissions directly.
type accessRepo struct {
	q dbtx
}

func (r *accessRepo) GetRoleByName(ctx context.Context, name string) (domain.Role, error) {
	var role domain.Role
	err := r.q.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM roles WHERE name = ?;`, name,
	).Scan(&role.ID, &role.Name, &role.CreatedAt)
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	return role, nil
}

func (r *accessRepo) CreateRole(ctx context.Context, role domain.Role) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO roles (id, name, created_at) VALUES (?, ?, ?);`,
		role.ID, role.Name, role.CreatedAt.UTC())
	return mapConflict(err)
}

func (r *accessRepo) DeleteRole(ctx context.Context, roleID string) error {
	// Grants and memberships go with the role (ON DELETE CASCADE); the
	// members themselves keep their other roles.
	res, err := r.q.ExecContext(ctx, `DELETE FROM roles WHERE id = ?;`, roleID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *accessRepo) GetPermissionByName(ctx context.Context, name string) (domain.Permission, error) {
	var p domain.Permission
	err := r.q.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM permissions WHERE name = ?;`, name,
	).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		return domain.Permission{}, mapNotFound(err)
	}
	return p, nil
}

func (r *accessRepo) CreatePermission(ctx context.Context, p domain.Permission) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO permissions (id, name, created_at) VALUES (?, ?, ?);`,
		p.ID, p.Name, p.CreatedAt.UTC())
	return mapConflict(err)
}

func (r *accessRepo) GrantPermission(ctx context.Context, roleID, permissionID string) error {
	// Re-granting an existing pair is a no-op.
	_, err := r.q.ExecContext(ctx, `
INSERT OR IGNORE INTO role_permissions (role_id, permission_id) VALUES (?, ?);
`, roleID, permissionID)
	return err
}

func (r *accessRepo) RevokePermission(ctx context.Context, roleID, permissionID string) error {
	_, err := r.q.ExecContext(ctx, `
DELETE FROM role_permissions WHERE role_id = ? AND permission_id = ?;
`, roleID, permissionID)
	return err
}

func (r *accessRepo) AddMemberRole(ctx context.Context, memberID, roleID string) error {
	_, err := r.q.ExecContext(ctx, `
INSERT OR IGNORE INTO member_roles (member_id, role_id) VALUES (?, ?);
`, memberID, roleID)
	return err
}

func (r *accessRepo) RemoveMemberRole(ctx context.Context, memberID, roleID string) error {
	_, err := r.q.ExecContext(ctx, `
DELETE FROM member_roles WHERE member_id = ? AND role_id = ?;
`, memberID, roleID)
	return err
}

func (r *accessRepo) RoleHasPermission(ctx context.Context, roleID, permissionID string) (bool, error) {
	var one int
	err := r.q.QueryRowContext(ctx, `
SELECT 1 FROM role_permissions WHERE role_id = ? AND permission_id = ? LIMIT 1;
`, roleID, permissionID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *accessRepo) MemberHasPermission(ctx context.Context, memberID, permissionName string) (bool, error) {
	// Two hops: member -> roles -> permissions. Any path grants.
	var one int
	err := r.q.QueryRowContext(ctx, `
SELECT 1
FROM member_roles
JOIN role_permissions ON role_permissions.role_id = member_roles.role_id
JOIN permissions ON permissions.id = role_permissions.permission_id
WHERE member_roles.member_id = ? AND permissions.name = ?
LIMIT 1;
`, memberID, permissionName).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *accessRepo) ListMemberRoles(ctx context.Context, memberID string) ([]domain.Role, error) {
	rows, err := r.q.QueryContext(ctx, `
SELECT roles.id, roles.name, roles.created_at
FROM roles
JOIN member_roles ON member_roles.role_id = roles.id
WHERE member_roles.member_id = ?
ORDER BY roles.name;
`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *accessRepo) ListMemberPermissions(ctx context.Context, memberID string) ([]domain.Permission, error) {
	rows, err := r.q.QueryContext(ctx, `
SELECT DISTINCT permissions.id, permissions.name, permissions.created_at
FROM permissions
JOIN role_permissions ON role_permissions.permission_id = permissions.id
JOIN member_roles ON member_roles.role_id = role_permissions.role_id
WHERE member_roles.member_id = ?
ORDER BY permissions.name;
`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []domain.Permission
	for rows.Next() {
		var p domain.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

func (r *accessRepo) TagsWithPermission(ctx context.Context, permissionName string, includeInactive bool) (map[string]bool, error) {
	stmt := `
SELECT DISTINCT members.rfid
FROM members
JOIN member_roles ON member_roles.member_id = members.id
JOIN role_permissions ON role_permissions.role_id = member_roles.role_id
JOIN permissions ON permissions.id = role_permissions.permission_id
WHERE permissions.name = ?`
	if !includeInactive {
		stmt += ` AND members.active = 1`
	}

	rows, err := r.q.QueryContext(ctx, stmt+`;`, permissionName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := map[string]bool{}
	for rows.Next() {
		var rfid string
		if err := rows.Scan(&rfid); err != nil {
			return nil, err
		}
		tags[rfid] = true
	}
	return tags, rows.Err()
}
