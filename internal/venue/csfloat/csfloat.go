package csfloat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"skinvalue/internal/venue"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=csfloat_test -destination=mock_http_client_test.go -source=csfloat.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config controls the CSFloat adapter.
type Config struct {
	// APIKey authenticates listing requests. An empty key is a supported
	// degraded mode: the adapter then always reports a null-quote.
	APIKey string
	// URL is the listings endpoint.
	URL string
	// PageSize caps how many lowest-priced listings one fetch examines.
	PageSize int
}

// Adapter fetches live listings sorted by ascending price. Listing prices
// arrive as integer USD cents; the minimum becomes the ask and the number
// of listings actually returned becomes the listing count.
type Adapter struct {
	cfg        Config
	httpClient HTTPClient
}

// Option is a configuration option for the adapter.
type Option func(*Adapter)

// WithHTTPClient sets the HTTP client used for listing requests.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(a *Adapter) {
		a.httpClient = httpClient
	}
}

func New(cfg Config, options ...Option) *Adapter {
	if cfg.URL == "" {
		cfg.URL = "https://csfloat.com/api/v1/listings"
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 50
	}
	a := &Adapter{cfg: cfg, httpClient: http.DefaultClient}
	for _, option := range options {
		option(a)
	}
	return a
}

func (a *Adapter) Venue() venue.Venue { return venue.CSFloat }

type listing struct {
	Price int64 `json:"price"` // USD cents
	Item  struct {
		MarketHashName string `json:"market_hash_name"`
	} `json:"item"`
}

func (a *Adapter) Fetch(ctx context.Context, name, _ string) (venue.Quote, error) {
	if a.cfg.APIKey == "" {
		// No credential configured: degrade gracefully, never error.
		return venue.Null(venue.CSFloat), nil
	}

	params := url.Values{}
	params.Set("market_hash_name", name)
	params.Set("limit", strconv.Itoa(a.cfg.PageSize))
	params.Set("sort_by", "lowest_price")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.URL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return venue.Quote{}, fmt.Errorf("csfloat: creating request: %w", err)
	}
	req.Header.Set("Authorization", a.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	res, err := a.httpClient.Do(req)
	if err != nil {
		return venue.Quote{}, fmt.Errorf("csfloat: performing request: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden:
		return venue.Quote{}, fmt.Errorf("csfloat: unauthorized")
	case http.StatusTooManyRequests:
		return venue.Quote{}, fmt.Errorf("csfloat: rate limited")
	default:
		return venue.Quote{}, fmt.Errorf("csfloat: unexpected status code: %d", res.StatusCode)
	}

	var listings []listing
	if err := json.NewDecoder(res.Body).Decode(&listings); err != nil {
		return venue.Quote{}, fmt.Errorf("csfloat: decoding listings: %w", err)
	}

	now := time.Now().UTC()
	count := len(listings)
	if count == 0 {
		// The venue answered but has no inventory for this item.
		return venue.Quote{Venue: venue.CSFloat, Listings: &count, ObservedAt: now}, nil
	}

	minCents := listings[0].Price
	for _, l := range listings[1:] {
		if l.Price < minCents {
			minCents = l.Price
		}
	}
	ask := decimal.New(minCents, -2)
	return venue.Quote{
		Venue:      venue.CSFloat,
		Ask:        &ask,
		Listings:   &count,
		ObservedAt: now,
	}, nil
}
