package service

import (
	"context"
	"errors"
	"time"

	"github.com/tinkerhall/doorbot/internal/doorbot/domain"
	"github.com/tinkerhall/doorbot/internal/doorbot/store"
	"github.com/tinkerhall/doorbot/pkg/passwd"
	"github.com/tinkerhall/doorbot/pkg/slogx"
)

// AuthService authenticates admin callers by password or bearer token.
type AuthService struct {
	Store store.Store

	// Preferred is the credential scheme new and upgraded passwords are
	// encoded with.
	Preferred passwd.Scheme
}

func NewAuthService(s store.Store, preferred passwd.Scheme) *AuthService {
	return &AuthService{Store: s, Preferred: preferred}
}

// VerifyPassword checks a login (tag or username) and password pair.
// Every failure mode reports ErrUnauthorized so callers cannot probe
// which logins exist. On success a credential stored under a
// non-preferred scheme is transparently re-encoded; the plaintext is
// available here and nowhere else. Re-encoding is one-directional: a
// preferred scheme weaker than the stored one leaves the credential
// untouched.
func (s *AuthService) VerifyPassword(ctx context.Context, login, password string) (domain.Member, error) {
	m, err := s.lookupLogin(ctx, login)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Member{}, ErrUnauthorized
	}
	if err != nil {
		return domain.Member{}, err
	}

	if !m.Active || m.PasswordType == "" || m.EncodedPassword == "" {
		return domain.Member{}, ErrUnauthorized
	}
	if !passwd.Verify(password, m.PasswordType, m.EncodedPassword) {
		return domain.Member{}, ErrUnauthorized
	}

	if stored, err := passwd.ParseTag(m.PasswordType); err == nil &&
		m.PasswordType != s.Preferred.Tag() && !s.Preferred.WeakerThan(stored) {
		s.upgradeCredential(ctx, &m, password)
	}
	return m, nil
}

func (s *AuthService) lookupLogin(ctx context.Context, login string) (domain.Member, error) {
	if ValidTag(login) {
		m, err := s.Store.Members().GetMemberByTag(ctx, login)
		if !errors.Is(err, store.ErrNotFound) {
			return m, err
		}
	}
	return s.Store.Members().GetMemberByUsername(ctx, login)
}

// upgradeCredential re-encodes a verified password under the preferred
// scheme. A write failure is logged but never fails the login; the old
// credential still works.
func (s *AuthService) upgradeCredential(ctx context.Context, m *domain.Member, password string) {
	tag, encoded, err := passwd.Encode(password, s.Preferred)
	if err != nil {
		slogx.FromContext(ctx).Warn("credential upgrade encode failed",
			"member_id", m.ID, "error", err)
		return
	}
	if err := s.Store.Members().UpdateMemberPassword(ctx, m.RFID, tag, encoded); err != nil {
		slogx.FromContext(ctx).Warn("credential upgrade write failed",
			"member_id", m.ID, "error", err)
		return
	}
	m.PasswordType = tag
	m.EncodedPassword = encoded
}

// VerifyBearerToken resolves an opaque bearer token to its member.
// Unknown, expired and inactive-member tokens all report
// ErrUnauthorized.
func (s *AuthService) VerifyBearerToken(ctx context.Context, token string) (domain.Member, error) {
	if token == "" {
		return domain.Member{}, ErrUnauthorized
	}
	t, err := s.Store.Tokens().GetTokenByValue(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Member{}, ErrUnauthorized
	}
	if err != nil {
		return domain.Member{}, err
	}
	if !t.Valid(time.Now()) {
		return domain.Member{}, ErrUnauthorized
	}

	m, err := s.Store.Members().GetMemberByID(ctx, t.MemberID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Member{}, ErrUnauthorized
	}
	if err != nil {
		return domain.Member{}, err
	}
	if !m.Active {
		return domain.Member{}, ErrUnauthorized
	}
	return m, nil
}

// SetPassword encodes and stores a new password for the member holding
// the given tag, using the preferred scheme.
func (s *AuthService) SetPassword(ctx context.Context, tag, password string) error {
	if !ValidTag(tag) || password == "" {
		return ErrInvalidInput
	}
	encTag, encoded, err := passwd.Encode(password, s.Preferred)
	if err != nil {
		return err
	}
	if err := s.Store.Members().UpdateMemberPassword(ctx, tag, encTag, encoded); err != nil {
		return mapStoreErr(err)
	}
	return nil
}

// ChangePassword verifies the current password before setting a new
// one. The new password must be supplied twice and match.
func (s *AuthService) ChangePassword(ctx context.Context, login, current, next, confirm string) error {
	if next == "" || next != confirm {
		return ErrInvalidInput
	}
	m, err := s.VerifyPassword(ctx, login, current)
	if err != nil {
		return err
	}
	return s.SetPassword(ctx, m.RFID, next)
}
