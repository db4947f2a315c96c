package pricing

import (
	"context"
	"sync"
	"time"

	"skinvalue/internal/venue"
)

// PriceMatrix is the per-item valuation result. Quotes appear in the
// builder's declared venue order regardless of fetch completion order.
// Constructed once per item per run and not mutated afterwards.
type PriceMatrix struct {
	ItemName       string      `json:"name"`
	Quotes         []NetQuote  `json:"quotes"`
	BestVenue      *NetQuote   `json:"best_venue"`
	LiquidityScore int         `json:"liquidity_score"`
	TimeToSellDays *TimeToSell `json:"time_to_sell_days"`
}

// Builder assembles price matrices by fanning out to every venue source
// concurrently and joining in declared order.
type Builder struct {
	sources []venue.Source
	timeout time.Duration
}

// NewBuilder keeps the given source order; that order fixes the matrix
// row order and breaks best-venue ties (earlier venue wins). Each venue
// fetch carries its own timeout so one slow venue cannot stall the rest
// of a batch indefinitely.
func NewBuilder(sources []venue.Source, perVenueTimeout time.Duration) *Builder {
	if perVenueTimeout <= 0 {
		perVenueTimeout = 8 * time.Second
	}
	return &Builder{sources: sources, timeout: perVenueTimeout}
}

// Build values one item across all venues. It never fails: venues with no
// data contribute null rows, and a total absence of data yields a matrix
// with a nil best venue and a zero liquidity score.
func (b *Builder) Build(ctx context.Context, name, currencyHint string, fees FeeConfig) PriceMatrix {
	raw := make([]venue.Quote, len(b.sources))
	var wg sync.WaitGroup
	for i, src := range b.sources {
		wg.Add(1)
		go func(i int, src venue.Source) {
			defer wg.Done()
			fetchCtx, cancel := context.WithTimeout(ctx, b.timeout)
			defer cancel()
			raw[i] = src.Quote(fetchCtx, name, currencyHint)
		}(i, src)
	}
	wg.Wait()

	quotes := make([]NetQuote, len(raw))
	for i, q := range raw {
		quotes[i] = Net(q, fees)
	}

	var best *NetQuote
	for i := range quotes {
		if quotes[i].NetAsk == nil {
			continue
		}
		// strict greater-than: ties keep the earlier venue
		if best == nil || quotes[i].NetAsk.GreaterThan(*best.NetAsk) {
			best = &quotes[i]
		}
	}

	score, tts := Score(quotes)
	return PriceMatrix{
		ItemName:       name,
		Quotes:         quotes,
		BestVenue:      best,
		LiquidityScore: score,
		TimeToSellDays: &tts,
	}
}
