package sqlite

import (
	"context"
	"database/sql"

	"github.com/tinkerhall/doorbot/internal/doorbot/store"
)

type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // outer DB stays open; caller commits or rolls back

// Ping is a no-op for transactions; the connection already exists.
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx starts

func (t *txStore) Members() store.Members     { return &membersRepo{q: t.tx} }
func (t *txStore) Access() store.Access       { return &accessRepo{q: t.tx} }
func (t *txStore) Tokens() store.Tokens       { return &tokensRepo{q: t.tx} }
func (t *txStore) Locations() store.Locations { return &locationsRepo{q: t.tx} }
func (t *txStore) EntryLog() store.EntryLog   { return &entryLogRepo{q: t.tx} }
