package service

import (
	"context"
	"strings"
	"time"

	"github.com/tinkerhall/doorbot/internal/doorbot/domain"
	"github.com/tinkerhall/doorbot/internal/doorbot/store"
	"github.com/tinkerhall/doorbot/pkg/idx"
)

// MembersService manages the member roster.
type MembersService struct {
	Store store.Store
}

func NewMembersService(s store.Store) *MembersService {
	return &MembersService{Store: s}
}

// NewMember carries the caller-supplied fields for member creation.
type NewMember struct {
	RFID      string
	Username  string
	FullName  string
	MMSID     string
	Phone     string
	Email     string
	EntryType string
	Notes     string
}

// Create registers a new member. The tag must be well formed and not
// already registered. New members start active with the join date set
// to now.
func (s *MembersService) Create(ctx context.Context, in NewMember) (domain.Member, error) {
	if !ValidTag(in.RFID) {
		return domain.Member{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.FullName) == "" {
		return domain.Member{}, ErrInvalidInput
	}

	m := domain.Member{
		ID:        idx.New(),
		RFID:      in.RFID,
		Username:  in.Username,
		FullName:  in.FullName,
		Active:    true,
		MMSID:     in.MMSID,
		Phone:     in.Phone,
		Email:     in.Email,
		EntryType: in.EntryType,
		Notes:     in.Notes,
		JoinDate:  time.Now().UTC(),
	}
	if err := s.Store.Members().CreateMember(ctx, m); err != nil {
		return domain.Member{}, mapStoreErr(err)
	}
	return m, nil
}

// Get looks up a member by tag.
func (s *MembersService) Get(ctx context.Context, tag string) (domain.Member, error) {
	if !ValidTag(tag) {
		return domain.Member{}, ErrInvalidInput
	}
	m, err := s.Store.Members().GetMemberByTag(ctx, tag)
	if err != nil {
		return domain.Member{}, mapStoreErr(err)
	}
	return m, nil
}

// Deactivate marks a member inactive. The member record, roles and
// entry history are all retained.
func (s *MembersService) Deactivate(ctx context.Context, tag string) error {
	return s.setActive(ctx, tag, false)
}

// Reactivate marks a member active again.
func (s *MembersService) Reactivate(ctx context.Context, tag string) error {
	return s.setActive(ctx, tag, true)
}

func (s *MembersService) setActive(ctx context.Context, tag string, active bool) error {
	if !ValidTag(tag) {
		return ErrInvalidInput
	}
	if err := s.Store.Members().SetMemberActive(ctx, tag, active); err != nil {
		return mapStoreErr(err)
	}
	return nil
}

// Rename updates a member's display name.
func (s *MembersService) Rename(ctx context.Context, tag, newName string) error {
	if !ValidTag(tag) || strings.TrimSpace(newName) == "" {
		return ErrInvalidInput
	}
	if err := s.Store.Members().UpdateMemberName(ctx, tag, newName); err != nil {
		return mapStoreErr(err)
	}
	return nil
}

// ChangeTag reassigns a member's credential to a new physical tag.
// Roles and history follow the member, not the tag.
func (s *MembersService) ChangeTag(ctx context.Context, oldTag, newTag string) error {
	if !ValidTag(oldTag) || !ValidTag(newTag) {
		return ErrInvalidInput
	}
	if err := s.Store.Members().UpdateMemberTag(ctx, oldTag, newTag); err != nil {
		return mapStoreErr(err)
	}
	return nil
}

// Search lists members matching the given filters, ordered by join
// date ascending. Pagination is clamped to sane bounds.
func (s *MembersService) Search(ctx context.Context, q store.MemberSearch) ([]domain.Member, error) {
	q.Offset, q.Limit = clampPage(q.Offset, q.Limit)
	return s.Store.Members().SearchMembers(ctx, q)
}

// DumpActiveTags returns every active tag, keyed for O(1) lookup by
// door controllers that cache the set locally.
func (s *MembersService) DumpActiveTags(ctx context.Context) (map[string]bool, error) {
	return s.Store.Members().DumpActiveTags(ctx)
}
