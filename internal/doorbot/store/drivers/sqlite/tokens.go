package sqlite

import (
	"context"
	"time"

	"github.com/tinkerhall/doorbot/internal/doorbot/domain"
)

type tokensRepo struct {
	q dbtx
}

func (r *tokensRepo) CreateToken(ctx context.Context, t domain.BearerToken) error {
	_, err := r.q.ExecContext(ctx, `
INSERT INTO bearer_tokens (id, member_id, name, token, expires_at, created_at)
VALUES (?, ?, ?, ?, ?, ?);
`, t.ID, t.MemberID, t.Name, t.Token, t.ExpiresAt.UTC(), t.CreatedAt.UTC())
	return mapConflict(err)
}

func (r *tokensRepo) GetTokenByValue(ctx context.Context, token string) (domain.BearerToken, error) {
	var t domain.BearerToken
	err := r.q.QueryRowContext(ctx, `
SELECT id, member_id, name, token, expires_at, created_at
FROM bearer_tokens WHERE token = ?;
`, token).Scan(&t.ID, &t.MemberID, &t.Name, &t.Token, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return domain.BearerToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *tokensRepo) ListMemberTokens(ctx context.Context, memberID string) ([]domain.BearerToken, error) {
	rows, err := r.q.QueryContext(ctx, `
SELECT id, member_id, name, token, expires_at, created_at
FROM bearer_tokens WHERE member_id = ? ORDER BY created_at;
`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []domain.BearerToken
	for rows.Next() {
		var t domain.BearerToken
		if err := rows.Scan(&t.ID, &t.MemberID, &t.Name, &t.Token, &t.ExpiresAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (r *tokensRepo) DeleteMemberToken(ctx context.Context, memberID, id string) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM bearer_tokens WHERE id = ? AND member_id = ?;`, id, memberID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *tokensRepo) DeleteExpiredTokens(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM bearer_tokens WHERE expires_at <= ?;`, time.Now().UTC())
	return err
}
