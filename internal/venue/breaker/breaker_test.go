package breaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"skinvalue/internal/venue"
)

type flakyFetcher struct {
	v     venue.Venue
	fail  bool
	calls int
}

func (f *flakyFetcher) Venue() venue.Venue { return f.v }

func (f *flakyFetcher) Fetch(context.Context, string, string) (venue.Quote, error) {
	f.calls++
	if f.fail {
		return venue.Quote{}, errors.New("venue down")
	}
	return venue.Null(f.v), nil
}

func TestFetch_TripsAfterConsecutiveFailures(t *testing.T) {
	f := &flakyFetcher{v: venue.Skinport, fail: true}
	b := Wrap(f, Config{ConsecutiveFailures: 3, Timeout: time.Minute})

	for i := 0; i < 3; i++ {
		_, err := b.Fetch(context.Background(), "item", "1")
		require.Error(t, err)
	}
	require.Equal(t, 3, f.calls)

	// Open circuit: the next call fails fast without touching the venue.
	_, err := b.Fetch(context.Background(), "item", "1")
	require.Error(t, err)
	require.Equal(t, 3, f.calls)
}

func TestFetch_RecoversAfterCooldown(t *testing.T) {
	f := &flakyFetcher{v: venue.Steam, fail: true}
	b := Wrap(f, Config{ConsecutiveFailures: 2, Timeout: 30 * time.Millisecond})

	for i := 0; i < 2; i++ {
		_, _ = b.Fetch(context.Background(), "item", "1")
	}
	_, err := b.Fetch(context.Background(), "item", "1")
	require.Error(t, err)

	f.fail = false
	time.Sleep(50 * time.Millisecond)

	// Half-open probe succeeds and closes the circuit again.
	q, err := b.Fetch(context.Background(), "item", "1")
	require.NoError(t, err)
	require.Equal(t, venue.Steam, q.Venue)
}

func TestFetch_SuccessPassesThrough(t *testing.T) {
	f := &flakyFetcher{v: venue.CSFloat}
	b := Wrap(f, Config{})

	q, err := b.Fetch(context.Background(), "item", "1")
	require.NoError(t, err)
	require.Equal(t, venue.CSFloat, q.Venue)
	require.Equal(t, venue.CSFloat, b.Venue())
}
