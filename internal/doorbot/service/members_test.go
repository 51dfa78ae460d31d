package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tinkerhall/doorbot/internal/doorbot/domain"
	"github.com/tinkerhall/doorbot/internal/doorbot/service"
	"github.com/tinkerhall/doorbot/internal/doorbot/store"
)

func TestCreateMember(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	members := service.NewMembersService(st)

	t.Run("create and fetch", func(t *testing.T) {
		m, err := members.Create(ctx, service.NewMember{
			RFID: "1234", Username: "alice", FullName: "Alice Example",
		})
		require.NoError(t, err)
		require.NotEmpty(t, m.ID)
		require.True(t, m.Active)
		require.False(t, m.JoinDate.IsZero())

		got, err := members.Get(ctx, "1234")
		require.NoError(t, err)
		require.Equal(t, m.ID, got.ID)
	})

	t.Run("duplicate tag conflicts", func(t *testing.T) {
		_, err := members.Create(ctx, service.NewMember{
			RFID: "1234", FullName: "Someone Else",
		})
		require.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("malformed tag rejected", func(t *testing.T) {
		_, err := members.Create(ctx, service.NewMember{
			RFID: "abc", FullName: "Bad Tag",
		})
		require.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("missing name rejected", func(t *testing.T) {
		_, err := members.Create(ctx, service.NewMember{RFID: "9999"})
		require.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestDeactivateReactivate(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	members := service.NewMembersService(st)

	seedMember(t, st, domain.Member{RFID: "1234", FullName: "Alice", Active: true})

	require.NoError(t, members.Deactivate(ctx, "1234"))
	m, err := members.Get(ctx, "1234")
	require.NoError(t, err)
	require.False(t, m.Active)

	require.NoError(t, members.Reactivate(ctx, "1234"))
	m, err = members.Get(ctx, "1234")
	require.NoError(t, err)
	require.True(t, m.Active)

	require.ErrorIs(t, members.Deactivate(ctx, "0000"), service.ErrNotFound)
}

func TestRenameAndChangeTag(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	members := service.NewMembersService(st)
	access := service.NewAccessService(st)

	alice := seedMember(t, st, domain.Member{RFID: "1234", FullName: "Alice", Active: true})
	seedMember(t, st, domain.Member{RFID: "8888", FullName: "Holder", Active: true})

	require.NoError(t, access.Grant(ctx, "members", "back.door"))
	require.NoError(t, access.AddRoleToMember(ctx, "1234", "members"))

	t.Run("rename", func(t *testing.T) {
		require.NoError(t, members.Rename(ctx, "1234", "Alice Renamed"))
		m, err := members.Get(ctx, "1234")
		require.NoError(t, err)
		require.Equal(t, "Alice Renamed", m.FullName)
	})

	t.Run("change tag keeps identity and roles", func(t *testing.T) {
		require.NoError(t, members.ChangeTag(ctx, "1234", "5678"))

		_, err := members.Get(ctx, "1234")
		require.ErrorIs(t, err, service.ErrNotFound)

		m, err := members.Get(ctx, "5678")
		require.NoError(t, err)
		require.Equal(t, alice.ID, m.ID)

		ok, err := access.MemberHasPermission(ctx, alice.ID, "back.door")
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("change tag to an occupied tag conflicts", func(t *testing.T) {
		require.ErrorIs(t, members.ChangeTag(ctx, "5678", "8888"), service.ErrConflict)
	})

	t.Run("change tag from unknown tag", func(t *testing.T) {
		require.ErrorIs(t, members.ChangeTag(ctx, "0000", "9999"), service.ErrNotFound)
	})
}

func TestSearchMembers(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	members := service.NewMembersService(st)

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	seedMember(t, st, domain.Member{
		RFID: "3333", FullName: "Carol Newest", Active: true, JoinDate: base.AddDate(0, 2, 0),
	})
	seedMember(t, st, domain.Member{
		RFID: "1111", FullName: "Alice Oldest", Active: true, JoinDate: base,
	})
	seedMember(t, st, domain.Member{
		RFID: "2222", FullName: "Bob Middle", Active: false, JoinDate: base.AddDate(0, 1, 0),
	})

	t.Run("ordered by join date ascending", func(t *testing.T) {
		got, err := members.Search(ctx, store.MemberSearch{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		require.Equal(t, "1111", got[0].RFID)
		require.Equal(t, "2222", got[1].RFID)
		require.Equal(t, "3333", got[2].RFID)
	})

	t.Run("name filter is a case-insensitive substring", func(t *testing.T) {
		got, err := members.Search(ctx, store.MemberSearch{Name: "bob"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, "2222", got[0].RFID)
	})

	t.Run("tag filter is exact", func(t *testing.T) {
		got, err := members.Search(ctx, store.MemberSearch{RFID: "3333"})
		require.NoError(t, err)
		require.Len(t, got, 1)

		got, err = members.Search(ctx, store.MemberSearch{RFID: "33"})
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("pagination clamps negatives and pages in order", func(t *testing.T) {
		got, err := members.Search(ctx, store.MemberSearch{Offset: -5, Limit: 2})
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Equal(t, "1111", got[0].RFID)

		got, err = members.Search(ctx, store.MemberSearch{Offset: 2, Limit: 2})
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, "3333", got[0].RFID)
	})
}

func TestDumpActiveTags(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	members := service.NewMembersService(st)

	seedMember(t, st, domain.Member{RFID: "1234", FullName: "Alice", Active: true})
	seedMember(t, st, domain.Member{RFID: "4321", FullName: "Bob", Active: false})

	tags, err := members.DumpActiveTags(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]bool{"1234": true}, tags)
}
