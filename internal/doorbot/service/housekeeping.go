package service

import (
	"context"
	"sync"
	"time"

	"github.com/tinkerhall/doorbot/internal/doorbot/store"
	"github.com/tinkerhall/doorbot/pkg/slogx"
)

// HousekeepingService periodically purges expired bearer tokens.
type HousekeepingService struct {
	Store    store.Store
	Interval time.Duration

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewHousekeepingService(s store.Store, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &HousekeepingService{
		Store:    s,
		Interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the background sweep loop. One sweep runs immediately
// so a restart never leaves stale tokens sitting for a full interval.
func (s *HousekeepingService) Start(ctx context.Context) {
	go func() {
		defer close(s.done)

		s.sweep(ctx)

		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep(ctx)
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (s *HousekeepingService) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

func (s *HousekeepingService) sweep(ctx context.Context) {
	if err := s.Store.Tokens().DeleteExpiredTokens(ctx); err != nil {
		slogx.FromContext(ctx).Error("expired token sweep failed", "error", err)
	}
}
