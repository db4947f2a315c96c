package ratelimit

import (
	"context"
	"sync"
	"time"

	"skinvalue/internal/venue"
)

// MinInterval wraps a Fetcher and enforces a minimum time between calls.
// Concurrent calls will wait until the interval has elapsed since the last
// call, or return early if the context is canceled. The Steam community
// endpoint has no documented quota but throttles bursts hard, so the
// adapter in front of it gets one of these.
type MinInterval struct {
	F        venue.Fetcher
	Interval time.Duration
	mu       sync.Mutex
	last     time.Time
}

func (m *MinInterval) Venue() venue.Venue { return m.F.Venue() }

func (m *MinInterval) Fetch(ctx context.Context, name, currencyHint string) (venue.Quote, error) {
	if m.Interval > 0 {
		// simple gate: ensure at least Interval since last
		m.mu.Lock()
		wait := time.Until(m.last.Add(m.Interval))
		m.mu.Unlock()
		if wait > 0 {
			t := time.NewTimer(wait)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return venue.Quote{}, ctx.Err()
			case <-t.C:
			}
		}
	}
	q, err := m.F.Fetch(ctx, name, currencyHint)
	if m.Interval > 0 {
		m.mu.Lock()
		m.last = time.Now()
		m.mu.Unlock()
	}
	return q, err
}
