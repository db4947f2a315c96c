package breaker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"skinvalue/internal/venue"
)

// Config tunes the circuit breaker around one venue.
type Config struct {
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Interval resets the failure counts while closed.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
}

// Breaker wraps a Fetcher with a circuit breaker. While the circuit is
// open, fetches fail immediately instead of hammering a venue that is
// already down; the boundary above turns that into a null-quote like any
// other failure.
type Breaker struct {
	f  venue.Fetcher
	cb *gobreaker.CircuitBreaker
}

func Wrap(f venue.Fetcher, cfg Config) *Breaker {
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}
	settings := gobreaker.Settings{
		Name:        string(f.Venue()),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("venue", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("venue breaker state change")
		},
	}
	return &Breaker{f: f, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (b *Breaker) Venue() venue.Venue { return b.f.Venue() }

func (b *Breaker) Fetch(ctx context.Context, name, currencyHint string) (venue.Quote, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		return b.f.Fetch(ctx, name, currencyHint)
	})
	if err != nil {
		return venue.Quote{}, err
	}
	return v.(venue.Quote), nil
}
