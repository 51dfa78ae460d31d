package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/tinkerhall/doorbot/internal/doorbot/domain"
	"github.com/tinkerhall/doorbot/internal/doorbot/store"
)

type membersRepo struct {
	q dbtx
}

const memberColumns = `id, rfid, username, full_name, active, mms_id, phone, email,
	entry_type, notes, password_type, encoded_password, join_date, end_date`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (domain.Member, error) {
	var m domain.Member
	var username, mmsID, notes, passwordType, encodedPassword sql.NullString
	var endDate sql.NullTime

	err := row.Scan(
		&m.ID, &m.RFID, &username, &m.FullName, &m.Active, &mmsID,
		&m.Phone, &m.Email, &m.EntryType, &notes, &passwordType,
		&encodedPassword, &m.JoinDate, &endDate,
	)
	if err != nil {
		return domain.Member{}, err
	}

	m.Username = mapNullString(username)
	m.MMSID = mapNullString(mmsID)
	m.Notes = mapNullString(notes)
	m.PasswordType = mapNullString(passwordType)
	m.EncodedPassword = mapNullString(encodedPassword)
	m.EndDate = mapNullTimePtr(endDate)
	return m, nil
}

func (r *membersRepo) CreateMember(ctx context.Context, m domain.Member) error {
	_, err := r.q.ExecContext(ctx, `
INSERT INTO members (
	id, rfid, username, full_name, active, mms_id, phone, email,
	entry_type, notes, password_type, encoded_password, join_date, end_date
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`,
		m.ID, m.RFID, mapStringNull(m.Username), m.FullName, m.Active,
		mapStringNull(m.MMSID), m.Phone, m.Email, m.EntryType,
		mapStringNull(m.Notes), mapStringNull(m.PasswordType),
		mapStringNull(m.EncodedPassword), m.JoinDate.UTC(),
		mapOptionalTime(m.EndDate),
	)
	return mapConflict(err)
}

func (r *membersRepo) GetMemberByID(ctx context.Context, id string) (domain.Member, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE id = ?;`, id)
	m, err := scanMember(row)
	if err != nil {
		return domain.Member{}, mapNotFound(err)
	}
	return m, nil
}

func (r *membersRepo) GetMemberByTag(ctx context.Context, rfid string) (domain.Member, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE rfid = ?;`, rfid)
	m, err := scanMember(row)
	if err != nil {
		return domain.Member{}, mapNotFound(err)
	}
	return m, nil
}

func (r *membersRepo) GetMemberByUsername(ctx context.Context, username string) (domain.Member, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE username = ?;`, username)
	m, err := scanMember(row)
	if err != nil {
		return domain.Member{}, mapNotFound(err)
	}
	return m, nil
}

func (r *membersRepo) SetMemberActive(ctx context.Context, rfid string, active bool) error {
	return r.execOnTag(ctx, `UPDATE members SET active = ? WHERE rfid = ?;`, active, rfid)
}

func (r *membersRepo) UpdateMemberName(ctx context.Context, rfid, newName string) error {
	return r.execOnTag(ctx, `UPDATE members SET full_name = ? WHERE rfid = ?;`, newName, rfid)
}

func (r *membersRepo) UpdateMemberTag(ctx context.Context, oldRFID, newRFID string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE members SET rfid = ? WHERE rfid = ?;`, newRFID, oldRFID)
	if err != nil {
		return mapConflict(err)
	}
	return affectedOrNotFound(res)
}

func (r *membersRepo) UpdateMemberPassword(ctx context.Context, rfid, passwordType, encoded string) error {
	return r.execOnTag(ctx, `
UPDATE members SET password_type = ?, encoded_password = ? WHERE rfid = ?;
`, mapStringNull(passwordType), mapStringNull(encoded), rfid)
}

func (r *membersRepo) SearchMembers(ctx context.Context, q store.MemberSearch) ([]domain.Member, error) {
	var where []string
	var args []any

	if q.Name != "" {
		where = append(where, `lower(full_name) LIKE lower(?)`)
		args = append(args, "%"+q.Name+"%")
	}
	if q.RFID != "" {
		where = append(where, `rfid = ?`)
		args = append(args, q.RFID)
	}

	stmt := `SELECT ` + memberColumns + ` FROM members`
	if len(where) > 0 {
		stmt += ` WHERE ` + strings.Join(where, ` AND `)
	}
	stmt += ` ORDER BY join_date, id`

	// Limit zero means unbounded here; sqlite still needs a LIMIT clause
	// when OFFSET is present.
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

	var members []domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *membersRepo) DumpActiveTags(ctx context.Context) (map[string]bool, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT rfid FROM members WHERE active = 1;`)
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

func (r *membersRepo) execOnTag(ctx context.Context, stmt string, args ...any) error {
	res, err := r.q.ExecContext(ctx, stmt, args...)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func affectedOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
