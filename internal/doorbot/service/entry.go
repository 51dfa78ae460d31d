package service

import (
	"context"
	"errors"

	"github.com/tinkerhall/doorbot/internal/doorbot/domain"
	"github.com/tinkerhall/doorbot/internal/doorbot/store"
	"github.com/tinkerhall/doorbot/pkg/idx"
)

// EntryService decides scans at the door. A decision is never an
// error: deny outcomes are ordinary results and the caller maps them
// to a transport status. Errors mean storage broke mid-decision.
type EntryService struct {
	Store store.Store
}

func NewEntryService(s store.Store) *EntryService {
	return &EntryService{Store: s}
}

// CheckTag evaluates a tag against the roster, optionally also
// requiring a permission. It writes nothing; use RecordEntry at a real
// door.
func (s *EntryService) CheckTag(ctx context.Context, tag, permission string) (domain.EntryDecision, error) {
	if !ValidTag(tag) {
		return domain.EntryDecision{}, ErrInvalidInput
	}
	return decide(ctx, s.Store, tag, permission)
}

// RecordEntry evaluates a scan at a physical door and appends exactly
// one audit row, whatever the outcome. The decision and its log entry
// commit together: if the audit row cannot be written the scan fails
// outright rather than allowing an unrecorded entry.
func (s *EntryService) RecordEntry(ctx context.Context, tag, location, permission string) (domain.EntryDecision, error) {
	if !ValidTag(tag) {
		return domain.EntryDecision{}, ErrInvalidInput
	}

	var d domain.EntryDecision
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		d, err = decide(ctx, tx, tag, permission)
		if err != nil {
			return err
		}
		return tx.EntryLog().InsertEntry(ctx, domain.EntryLogEntry{
			RFID:        tag,
			IsActiveTag: d.IsActiveTag,
			IsFoundTag:  d.IsFoundTag,
			Location:    location,
		})
	})
	if err != nil {
		return domain.EntryDecision{}, err
	}
	return d, nil
}

// SearchEntries lists audit rows, newest first, with pagination
// clamped.
func (s *EntryService) SearchEntries(ctx context.Context, q store.EntrySearch) ([]domain.EntryLogEntry, error) {
	q.Offset, q.Limit = clampPage(q.Offset, q.Limit)
	return s.Store.EntryLog().SearchEntries(ctx, q)
}

// AddLocation registers a named entry point. Scans at unregistered
// doors still log; registering makes them resolve in reports.
func (s *EntryService) AddLocation(ctx context.Context, name string) (domain.Location, error) {
	if name == "" {
		return domain.Location{}, ErrInvalidInput
	}
	l := domain.Location{ID: idx.New(), Name: name}
	if err := s.Store.Locations().CreateLocation(ctx, l); err != nil {
		return domain.Location{}, mapStoreErr(err)
	}
	return l, nil
}

// ListLocations lists registered entry points by name.
func (s *EntryService) ListLocations(ctx context.Context) ([]domain.Location, error) {
	return s.Store.Locations().ListLocations(ctx)
}

func decide(ctx context.Context, st store.Store, tag, permission string) (domain.EntryDecision, error) {
	m, err := st.Members().GetMemberByTag(ctx, tag)
	if errors.Is(err, store.ErrNotFound) {
		return domain.EntryDecision{Outcome: domain.DecisionNotFound}, nil
	}
	if err != nil {
		return domain.EntryDecision{}, err
	}

	d := domain.EntryDecision{
		MemberName:  m.FullName,
		IsFoundTag:  true,
		IsActiveTag: m.Active,
	}
	if !m.Active {
		d.Outcome = domain.DecisionInactive
		return d, nil
	}
	if permission != "" {
		ok, err := st.Access().MemberHasPermission(ctx, m.ID, permission)
		if err != nil {
			return domain.EntryDecision{}, err
		}
		if !ok {
			d.Outcome = domain.DecisionUnauthorized
			return d, nil
		}
	}
	d.Outcome = domain.DecisionAllowed
	return d, nil
}
