package service

import (
	"context"
	"time"

	"github.com/tinkerhall/doorbot/internal/doorbot/domain"
	"github.com/tinkerhall/doorbot/internal/doorbot/store"
	"github.com/tinkerhall/doorbot/pkg/cryptox"
	"github.com/tinkerhall/doorbot/pkg/idx"
)

// DefaultTokenTTL applies when a token is created without an explicit
// lifetime.
const DefaultTokenTTL = 30 * 24 * time.Hour

const tokenEntropyBytes = 32

// TokensService issues and revokes opaque bearer tokens for API
// automation.
type TokensService struct {
	Store store.Store

	// DefaultTTL applies to tokens created without an explicit lifetime.
	DefaultTTL time.Duration
}

func NewTokensService(s store.Store, defaultTTL time.Duration) *TokensService {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTokenTTL
	}
	return &TokensService{Store: s, DefaultTTL: defaultTTL}
}

// Create issues a new token for the member holding the given tag. The
// token value is random and stored as-is; it is returned exactly once.
func (s *TokensService) Create(ctx context.Context, tag, name string, ttl time.Duration) (domain.BearerToken, error) {
	if !ValidTag(tag) || name == "" {
		return domain.BearerToken{}, ErrInvalidInput
	}
	if ttl <= 0 {
		ttl = s.DefaultTTL
	}

	m, err := s.Store.Members().GetMemberByTag(ctx, tag)
	if err != nil {
		return domain.BearerToken{}, mapStoreErr(err)
	}

	value, err := cryptox.RandomToken(tokenEntropyBytes)
	if err != nil {
		return domain.BearerToken{}, err
	}

	now := time.Now().UTC()
	t := domain.BearerToken{
		ID:        idx.New(),
		MemberID:  m.ID,
		Name:      name,
		Token:     value,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := s.Store.Tokens().CreateToken(ctx, t); err != nil {
		return domain.BearerToken{}, mapStoreErr(err)
	}
	return t, nil
}

// List returns the tokens issued to the member holding the given tag.
func (s *TokensService) List(ctx context.Context, tag string) ([]domain.BearerToken, error) {
	if !ValidTag(tag) {
		return nil, ErrInvalidInput
	}
	m, err := s.Store.Members().GetMemberByTag(ctx, tag)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return s.Store.Tokens().ListMemberTokens(ctx, m.ID)
}

// Delete revokes one of the member's own tokens by id. A token id
// belonging to someone else reports ErrNotFound, the same as an id
// that never existed.
func (s *TokensService) Delete(ctx context.Context, tag, id string) error {
	if !ValidTag(tag) || id == "" {
		return ErrInvalidInput
	}
	m, err := s.Store.Members().GetMemberByTag(ctx, tag)
	if err != nil {
		return mapStoreErr(err)
	}
	if err := s.Store.Tokens().DeleteMemberToken(ctx, m.ID, id); err != nil {
		return mapStoreErr(err)
	}
	return nil
}
