package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/tinkerhall/doorbot/internal/doorbot/domain"
	"github.com/tinkerhall/doorbot/internal/doorbot/store"
)

type entryLogRepo struct {
	q dbtx
}

func (r *entryLogRepo) InsertEntry(ctx context.Context, e domain.EntryLogEntry) error {
	// Location resolves by name here so a scan at an unrecognised door still
	// records, with a NULL location reference.
	var locationID any
	if e.Location != "" {
		var id string
		err := r.q.QueryRowContext(ctx,
			`SELECT id FROM locations WHERE name = ?;`, e.Location).Scan(&id)
		switch {
		case err == nil:
			locationID = id
		case !errors.Is(err, sql.ErrNoRows):
			return err
		}
	}

	when := e.EntryTime
	if when.IsZero() {
		when = time.Now().UTC()
	}

	_, err := r.q.ExecContext(ctx, `
INSERT INTO entry_log (rfid, entry_time, is_active_tag, is_found_tag, location_id)
VALUES (?, ?, ?, ?, ?);
`, e.RFID, when.UTC(), e.IsActiveTag, e.IsFoundTag, locationID)
	return err
}

func (r *entryLogRepo) SearchEntries(ctx context.Context, q store.EntrySearch) ([]domain.EntryLogEntry, error) {
	stmt := `
SELECT
	entry_log.id,
	members.full_name,
	entry_log.rfid,
	locations.name,
	entry_log.entry_time,
	entry_log.is_active_tag,
	entry_log.is_found_tag
FROM entry_log
LEFT OUTER JOIN members ON entry_log.rfid = members.rfid
LEFT OUTER JOIN locations ON entry_log.location_id = locations.id`

	var args []any
	if q.RFID != "" {
		stmt += ` WHERE entry_log.rfid = ?`
		args = append(args, q.RFID)
	}
	stmt += ` ORDER BY entry_log.entry_time DESC, entry_log.id DESC`

	if q.Limit > 0 {
		stmt += ` LIMIT ?`
		args = append(args, q.Limit)
	} else if q.Offset > 0 {
		stmt += ` LIMIT -1`
	}
	if q.Offset > 0 {
		stmt += ` OFFSET ?`
		args = append(args, q.Offset)
	}

	rows, err := r.q.QueryContext(ctx, stmt+`;`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.EntryLogEntry
	for rows.Next() {
		var e domain.EntryLogEntry
		var fullName, location sql.NullString
		err := rows.Scan(&e.ID, &fullName, &e.RFID, &location,
			&e.EntryTime, &e.IsActiveTag, &e.IsFoundTag)
		if err != nil {
			return nil, err
		}
		e.FullName = mapNullString(fullName)
		e.Location = mapNullString(location)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
