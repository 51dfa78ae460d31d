package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinkerhall/doorbot/internal/doorbot/domain"
	"github.com/tinkerhall/doorbot/internal/doorbot/service"
)

func TestGrantRevokeTraversal(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	access := service.NewAccessService(st)

	alice := seedMember(t, st, domain.Member{
		RFID: "1234", FullName: "Alice Active", Active: true,
	})

	require.NoError(t, access.Grant(ctx, "members", "back.door"))
	require.NoError(t, access.AddRoleToMember(ctx, "1234", "members"))

	t.Run("grant reaches member through role", func(t *testing.T) {
		ok, err := access.MemberHasPermission(ctx, alice.ID, "back.door")
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("role holds the permission directly", func(t *testing.T) {
		role, err := st.Access().GetRoleByName(ctx, "members")
		require.NoError(t, err)
		perm, err := st.Access().GetPermissionByName(ctx, "back.door")
		require.NoError(t, err)

		ok, err := st.Access().RoleHasPermission(ctx, role.ID, perm.ID)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("ungranted permission is false not error", func(t *testing.T) {
		ok, err := access.MemberHasPermission(ctx, alice.ID, "server.room")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("regrant is a no-op", func(t *testing.T) {
		require.NoError(t, access.Grant(ctx, "members", "back.door"))
		ok, err := access.MemberHasPermission(ctx, alice.ID, "back.door")
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("revoke removes access", func(t *testing.T) {
		require.NoError(t, access.Revoke(ctx, "members", "back.door"))
		ok, err := access.MemberHasPermission(ctx, alice.ID, "back.door")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("grant after revoke restores access", func(t *testing.T) {
		require.NoError(t, access.Grant(ctx, "members", "back.door"))
		ok, err := access.MemberHasPermission(ctx, alice.ID, "back.door")
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("revoke of unknown role reports not found", func(t *testing.T) {
		err := access.Revoke(ctx, "ghosts", "back.door")
		require.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestPermissionThroughAnyRole(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	access := service.NewAccessService(st)

	alice := seedMember(t, st, domain.Member{
		RFID: "1234", FullName: "Alice Active", Active: true,
	})

	// Two roles grant the same permission; losing one must not lose the
	// permission.
	require.NoError(t, access.Grant(ctx, "members", "back.door"))
	require.NoError(t, access.Grant(ctx, "committee", "back.door"))
	require.NoError(t, access.AddRoleToMember(ctx, "1234", "members"))
	require.NoError(t, access.AddRoleToMember(ctx, "1234", "committee"))

	perms, err := access.ListMemberPermissions(ctx, "1234")
	require.NoError(t, err)
	require.Len(t, perms, 1)
	require.Equal(t, "back.door", perms[0].Name)

	require.NoError(t, access.RemoveRoleFromMember(ctx, "1234", "committee"))
	ok, err := access.MemberHasPermission(ctx, alice.ID, "back.door")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, access.RemoveRoleFromMember(ctx, "1234", "members"))
	ok, err = access.MemberHasPermission(ctx, alice.ID, "back.door")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDeleteRoleCascades(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	access := service.NewAccessService(st)

	alice := seedMember(t, st, domain.Member{
		RFID: "1234", FullName: "Alice Active", Active: true,
	})

	require.NoError(t, access.Grant(ctx, "members", "back.door"))
	require.NoError(t, access.Grant(ctx, "committee", "server.room"))
	require.NoError(t, access.AddRoleToMember(ctx, "1234", "members"))
	require.NoError(t, access.AddRoleToMember(ctx, "1234", "committee"))

	require.NoError(t, access.DeleteRole(ctx, "committee"))

	ok, err := access.MemberHasPermission(ctx, alice.ID, "server.room")
	require.NoError(t, err)
	require.False(t, ok)

	// The other role survives.
	ok, err = access.MemberHasPermission(ctx, alice.ID, "back.door")
	require.NoError(t, err)
	require.True(t, ok)

	roles, err := access.ListMemberRoles(ctx, "1234")
	require.NoError(t, err)
	require.Len(t, roles, 1)
	require.Equal(t, "members", roles[0].Name)
}

func TestTagsWithPermission(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	access := service.NewAccessService(st)

	seedMember(t, st, domain.Member{RFID: "1234", FullName: "Alice Active", Active: true})
	seedMember(t, st, domain.Member{RFID: "4321", FullName: "Bob Lapsed", Active: false})
	seedMember(t, st, domain.Member{RFID: "7777", FullName: "Dan Unrelated", Active: true})

	require.NoError(t, access.Grant(ctx, "members", "back.door"))
	require.NoError(t, access.AddRoleToMember(ctx, "1234", "members"))
	require.NoError(t, access.AddRoleToMember(ctx, "4321", "members"))

	t.Run("defaults to active members only", func(t *testing.T) {
		tags, err := access.TagsWithPermission(ctx, "back.door", false)
		require.NoError(t, err)
		require.Equal(t, map[string]bool{"1234": true}, tags)
	})

	t.Run("include inactive is opt-in", func(t *testing.T) {
		tags, err := access.TagsWithPermission(ctx, "back.door", true)
		require.NoError(t, err)
		require.Equal(t, map[string]bool{"1234": true, "4321": true}, tags)
	})

	t.Run("unknown permission yields an empty set", func(t *testing.T) {
		tags, err := access.TagsWithPermission(ctx, "helipad", false)
		require.NoError(t, err)
		require.Empty(t, tags)
	})
}
