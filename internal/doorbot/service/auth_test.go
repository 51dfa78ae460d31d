package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tinkerhall/doorbot/internal/doorbot/domain"
	"github.com/tinkerhall/doorbot/internal/doorbot/service"
	"github.com/tinkerhall/doorbot/pkg/idx"
	"github.com/tinkerhall/doorbot/pkg/passwd"
)

// Low cost keeps the bcrypt tests fast; production uses a higher one.
var testScheme = passwd.Scheme{Kind: passwd.KindBcrypt, Difficulty: 4}

func TestVerifyPassword(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth := service.NewAuthService(st, testScheme)

	seedMember(t, st, domain.Member{
		RFID:            "1234",
		Username:        "alice",
		FullName:        "Alice Example",
		Active:          true,
		PasswordType:    "plaintext",
		EncodedPassword: "hunter2",
	})
	seedMember(t, st, domain.Member{
		RFID:            "4321",
		Username:        "bob",
		FullName:        "Bob Lapsed",
		Active:          false,
		PasswordType:    "plaintext",
		EncodedPassword: "hunter2",
	})

	t.Run("correct password by username", func(t *testing.T) {
		m, err := auth.VerifyPassword(ctx, "alice", "hunter2")
		require.NoError(t, err)
		require.Equal(t, "1234", m.RFID)
	})

	t.Run("correct password by tag", func(t *testing.T) {
		m, err := auth.VerifyPassword(ctx, "1234", "hunter2")
		require.NoError(t, err)
		require.Equal(t, "alice", m.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := auth.VerifyPassword(ctx, "alice", "wrong")
		require.ErrorIs(t, err, service.ErrUnauthorized)
	})

	t.Run("unknown login", func(t *testing.T) {
		_, err := auth.VerifyPassword(ctx, "nobody", "hunter2")
		require.ErrorIs(t, err, service.ErrUnauthorized)
	})

	t.Run("inactive member", func(t *testing.T) {
		_, err := auth.VerifyPassword(ctx, "bob", "hunter2")
		require.ErrorIs(t, err, service.ErrUnauthorized)
	})

	t.Run("member without credential", func(t *testing.T) {
		seedMember(t, st, domain.Member{
			RFID: "5555", Username: "carol", FullName: "Carol NoPass", Active: true,
		})
		_, err := auth.VerifyPassword(ctx, "carol", "")
		require.ErrorIs(t, err, service.ErrUnauthorized)
	})
}

func TestVerifyPasswordUpgradesScheme(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth := service.NewAuthService(st, testScheme)

	seedMember(t, st, domain.Member{
		RFID:            "1234",
		Username:        "alice",
		FullName:        "Alice Example",
		Active:          true,
		PasswordType:    "plaintext",
		EncodedPassword: "hunter2",
	})

	t.Run("failed attempts do not rewrite the credential", func(t *testing.T) {
		_, err := auth.VerifyPassword(ctx, "alice", "wrong")
		require.ErrorIs(t, err, service.ErrUnauthorized)

		m, err := st.Members().GetMemberByTag(ctx, "1234")
		require.NoError(t, err)
		require.Equal(t, "plaintext", m.PasswordType)
		require.Equal(t, "hunter2", m.EncodedPassword)
	})

	t.Run("successful verify re-encodes under the preferred scheme", func(t *testing.T) {
		_, err := auth.VerifyPassword(ctx, "alice", "hunter2")
		require.NoError(t, err)

		m, err := st.Members().GetMemberByTag(ctx, "1234")
		require.NoError(t, err)
		require.Equal(t, "bcrypt_4", m.PasswordType)
		require.NotEqual(t, "hunter2", m.EncodedPassword)

		// Same password still verifies after the upgrade.
		_, err = auth.VerifyPassword(ctx, "alice", "hunter2")
		require.NoError(t, err)
		_, err = auth.VerifyPassword(ctx, "alice", "wrong")
		require.ErrorIs(t, err, service.ErrUnauthorized)
	})
}

func TestVerifyPasswordNeverDowngradesScheme(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	bcryptTag, bcryptEncoded, err := passwd.Encode("hunter2", testScheme)
	require.NoError(t, err)

	seedMember(t, st, domain.Member{
		RFID:            "1234",
		Username:        "alice",
		FullName:        "Alice Example",
		Active:          true,
		PasswordType:    bcryptTag,
		EncodedPassword: bcryptEncoded,
	})
	seedMember(t, st, domain.Member{
		RFID:            "8888",
		Username:        "dave",
		FullName:        "Dave Legacy",
		Active:          true,
		PasswordType:    "apache_md5",
		EncodedPassword: "$apr1$123/abCD$qVXnv7ltJwsWk3Y9JhLA1/",
	})

	t.Run("plaintext preference leaves bcrypt in place", func(t *testing.T) {
		auth := service.NewAuthService(st, passwd.Scheme{Kind: passwd.KindPlaintext})

		_, err := auth.VerifyPassword(ctx, "alice", "hunter2")
		require.NoError(t, err)

		m, err := st.Members().GetMemberByTag(ctx, "1234")
		require.NoError(t, err)
		require.Equal(t, bcryptTag, m.PasswordType)
		require.Equal(t, bcryptEncoded, m.EncodedPassword)
	})

	t.Run("plaintext preference leaves apache md5 in place", func(t *testing.T) {
		auth := service.NewAuthService(st, passwd.Scheme{Kind: passwd.KindPlaintext})

		_, err := auth.VerifyPassword(ctx, "dave", "foobar123")
		require.NoError(t, err)

		m, err := st.Members().GetMemberByTag(ctx, "8888")
		require.NoError(t, err)
		require.Equal(t, "apache_md5", m.PasswordType)
	})

	t.Run("higher bcrypt cost still upgrades", func(t *testing.T) {
		auth := service.NewAuthService(st,
			passwd.Scheme{Kind: passwd.KindBcrypt, Difficulty: testScheme.Difficulty + 1})

		_, err := auth.VerifyPassword(ctx, "alice", "hunter2")
		require.NoError(t, err)

		m, err := st.Members().GetMemberByTag(ctx, "1234")
		require.NoError(t, err)
		require.Equal(t, "bcrypt_5", m.PasswordType)

		_, err = auth.VerifyPassword(ctx, "alice", "hunter2")
		require.NoError(t, err)
	})

	t.Run("lower bcrypt cost preference leaves the stored cost", func(t *testing.T) {
		auth := service.NewAuthService(st, testScheme)

		_, err := auth.VerifyPassword(ctx, "alice", "hunter2")
		require.NoError(t, err)

		m, err := st.Members().GetMemberByTag(ctx, "1234")
		require.NoError(t, err)
		require.Equal(t, "bcrypt_5", m.PasswordType)
	})
}

func TestVerifyBearerToken(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth := service.NewAuthService(st, testScheme)

	alice := seedMember(t, st, domain.Member{
		RFID: "1234", Username: "alice", FullName: "Alice Example", Active: true,
	})

	now := time.Now().UTC()
	require.NoError(t, st.Tokens().CreateToken(ctx, domain.BearerToken{
		ID: idx.New(), MemberID: alice.ID, Name: "ci",
		Token: "good-token", ExpiresAt: now.Add(time.Hour), CreatedAt: now,
	}))
	require.NoError(t, st.Tokens().CreateToken(ctx, domain.BearerToken{
		ID: idx.New(), MemberID: alice.ID, Name: "old",
		Token: "expired-token", ExpiresAt: now.Add(-time.Minute), CreatedAt: now.Add(-time.Hour),
	}))

	t.Run("valid token", func(t *testing.T) {
		m, err := auth.VerifyBearerToken(ctx, "good-token")
		require.NoError(t, err)
		require.Equal(t, alice.ID, m.ID)
	})

	t.Run("expired token", func(t *testing.T) {
		_, err := auth.VerifyBearerToken(ctx, "expired-token")
		require.ErrorIs(t, err, service.ErrUnauthorized)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := auth.VerifyBearerToken(ctx, "never-issued")
		require.ErrorIs(t, err, service.ErrUnauthorized)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := auth.VerifyBearerToken(ctx, "")
		require.ErrorIs(t, err, service.ErrUnauthorized)
	})

	t.Run("token for deactivated member", func(t *testing.T) {
		require.NoError(t, st.Members().SetMemberActive(ctx, "1234", false))
		defer func() {
			require.NoError(t, st.Members().SetMemberActive(ctx, "1234", true))
		}()

		_, err := auth.VerifyBearerToken(ctx, "good-token")
		require.ErrorIs(t, err, service.ErrUnauthorized)
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth := service.NewAuthService(st, testScheme)

	seedMember(t, st, domain.Member{
		RFID:            "1234",
		Username:        "alice",
		FullName:        "Alice Example",
		Active:          true,
		PasswordType:    "plaintext",
		EncodedPassword: "hunter2",
	})

	t.Run("confirmation mismatch", func(t *testing.T) {
		err := auth.ChangePassword(ctx, "alice", "hunter2", "newpass", "different")
		require.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("wrong current password", func(t *testing.T) {
		err := auth.ChangePassword(ctx, "alice", "wrong", "newpass", "newpass")
		require.ErrorIs(t, err, service.ErrUnauthorized)
	})

	t.Run("success", func(t *testing.T) {
		require.NoError(t, auth.ChangePassword(ctx, "alice", "hunter2", "newpass", "newpass"))

		_, err := auth.VerifyPassword(ctx, "alice", "newpass")
		require.NoError(t, err)
		_, err = auth.VerifyPassword(ctx, "alice", "hunter2")
		require.ErrorIs(t, err, service.ErrUnauthorized)
	})
}
