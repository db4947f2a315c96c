package buff

import (
	"context"

	"skinvalue/internal/venue"
)

// Adapter is the Buff marketplace placeholder. Buff exposes no public
// API, so the adapter always reports a null-quote. It keeps the same
// contract as the real adapters, which keeps the downstream pipeline
// venue-count agnostic and leaves a stable slot for a future data source.
type Adapter struct{}

func New() *Adapter { return &Adapter{} }

func (*Adapter) Venue() venue.Venue { return venue.Buff }

func (*Adapter) Fetch(_ context.Context, _, _ string) (venue.Quote, error) {
	return venue.Null(venue.Buff), nil
}
