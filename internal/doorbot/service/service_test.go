package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tinkerhall/doorbot/internal/doorbot/domain"
	"github.com/tinkerhall/doorbot/internal/doorbot/store"
	"github.com/tinkerhall/doorbot/internal/doorbot/store/drivers/sqlite"
	"github.com/tinkerhall/doorbot/pkg/idx"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

// seedMember inserts a member directly, bypassing the service, so tests
// can control join dates and credentials.
func seedMember(t *testing.T, st store.Store, m domain.Member) domain.Member {
	t.Helper()

	if m.ID == "" {
		m.ID = idx.New()
	}
	if m.JoinDate.IsZero() {
		m.JoinDate = time.Now().UTC()
	}
	require.NoError(t, st.Members().CreateMember(context.Background(), m))
	return m
}
