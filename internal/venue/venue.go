package venue

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"skinvalue/internal/telemetry"
)

// Venue identifies one external marketplace.
type Venue string

const (
	Steam    Venue = "Steam"
	Skinport Venue = "Skinport"
	CSFloat  Venue = "CSFloat"
	Buff     Venue = "Buff"
)

// Order is the fixed venue order. Price matrix rows, tie-breaks and any
// downstream iteration follow this order regardless of fetch completion order.
var Order = []Venue{Steam, Skinport, CSFloat, Buff}

// Quote is one venue's raw price/volume/listing snapshot for one item,
// pre-fee. Nil fields mean "no data", which is distinct from zero.
// Monetary fields are decimal USD.
type Quote struct {
	Venue      Venue            `json:"venue"`
	Ask        *decimal.Decimal `json:"ask"`
	Bid        *decimal.Decimal `json:"bid"`
	Median     *decimal.Decimal `json:"median"`
	Volume24h  *int64           `json:"volume24h"`
	Listings   *int             `json:"listings"`
	ObservedAt time.Time        `json:"observed_at"`
}

// Null returns the null-quote for v: all numeric fields absent, observed now.
func Null(v Venue) Quote {
	return Quote{Venue: v, ObservedAt: time.Now().UTC()}
}

// HasData reports whether any numeric field is present.
func (q Quote) HasData() bool {
	return q.Ask != nil || q.Bid != nil || q.Median != nil || q.Volume24h != nil || q.Listings != nil
}

// Fetcher is the fallible inner adapter capability. Middlewares (rate
// limiting, circuit breaking) wrap Fetchers; errors stop at Totalize.
type Fetcher interface {
	Venue() Venue
	Fetch(ctx context.Context, name, currencyHint string) (Quote, error)
}

// Source is the total-function adapter the pricing core consumes: it
// never returns an error. Any failure mode (network, non-2xx, schema
// mismatch, missing credential, timeout) is already collapsed into a
// null-quote, so callers never special-case adapter failure.
type Source interface {
	Venue() Venue
	Quote(ctx context.Context, name, currencyHint string) Quote
}

// Totalize converts a Fetcher into a Source, swallowing errors into
// null-quotes and recording fetch telemetry.
func Totalize(f Fetcher) Source { return total{f: f} }

type total struct {
	f Fetcher
}

func (t total) Venue() Venue { return t.f.Venue() }

func (t total) Quote(ctx context.Context, name, currencyHint string) Quote {
	start := time.Now()
	q, err := t.f.Fetch(ctx, name, currencyHint)
	elapsed := time.Since(start)
	if err != nil {
		log.Debug().Err(err).Str("venue", string(t.f.Venue())).Str("item", name).
			Msg("venue fetch failed, degrading to null-quote")
		telemetry.ObserveFetch(string(t.f.Venue()), "error", elapsed)
		return Null(t.f.Venue())
	}
	outcome := "ok"
	if !q.HasData() {
		outcome = "null"
	}
	telemetry.ObserveFetch(string(t.f.Venue()), outcome, elapsed)
	return q
}
