package skinport

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"skinvalue/internal/httpx"
	"skinvalue/internal/venue"
)

// Config controls the Skinport adapter.
type Config struct {
	// URL is the bulk items endpoint.
	URL string
	// AppID is the Steam app id (e.g. 730).
	AppID int
	// Currency is the catalog's native currency. The endpoint serves EUR
	// by default; prices are converted to USD before leaving the adapter.
	Currency string
	// FxRate converts the native currency to USD.
	FxRate decimal.Decimal
	// CatalogTTL caches the full catalog payload for this long. The venue
	// serves one catalog for all items and rate-limits aggressively, so
	// per-item requests are not an option.
	CatalogTTL time.Duration
}

// DefaultFxRate is the fixed EUR to USD conversion applied to catalog prices.
var DefaultFxRate = decimal.NewFromFloat(1.08)

// Adapter fetches the Skinport bulk catalog and answers item lookups from
// it. A name absent from the catalog yields a null-quote; listing
// inventory stays nil in that case so "not found" is never conflated with
// "zero liquidity".
type Adapter struct {
	cfg    Config
	client *httpx.Client

	mu      sync.RWMutex
	byName  map[string]catalogItem
	expires time.Time

	// coalesce concurrent catalog refreshes
	sf singleflight.Group
}

func New(cfg Config, hc *httpx.Client) *Adapter {
	if cfg.URL == "" {
		cfg.URL = "https://api.skinport.com/v1/items"
	}
	if cfg.AppID == 0 {
		cfg.AppID = 730
	}
	if cfg.Currency == "" {
		cfg.Currency = "EUR"
	}
	if cfg.FxRate.IsZero() {
		cfg.FxRate = DefaultFxRate
	}
	if cfg.CatalogTTL <= 0 {
		cfg.CatalogTTL = 5 * time.Minute
	}
	return &Adapter{cfg: cfg, client: hc}
}

func (a *Adapter) Venue() venue.Venue { return venue.Skinport }

type catalogItem struct {
	MarketHashName string   `json:"market_hash_name"`
	Currency       string   `json:"currency"`
	MinPrice       *float64 `json:"min_price"`
	MedianPrice    *float64 `json:"median_price"`
	MeanPrice      *float64 `json:"mean_price"`
	MaxPrice       *float64 `json:"max_price"`
	Quantity       *int     `json:"quantity"`
}

func (a *Adapter) Fetch(ctx context.Context, name, _ string) (venue.Quote, error) {
	byName, err := a.catalog(ctx)
	if err != nil {
		return venue.Quote{}, err
	}
	it, ok := byName[name]
	if !ok {
		// Not-found is venue data, not a failure.
		return venue.Null(venue.Skinport), nil
	}
	return venue.Quote{
		Venue:      venue.Skinport,
		Ask:        a.toUSD(it.MinPrice),
		Median:     a.toUSD(it.MedianPrice),
		Listings:   it.Quantity,
		ObservedAt: time.Now().UTC(),
	}, nil
}

// catalog returns the cached name index, refreshing it when expired.
// Concurrent refreshes collapse into one upstream request.
func (a *Adapter) catalog(ctx context.Context) (map[string]catalogItem, error) {
	a.mu.RLock()
	byName, expires := a.byName, a.expires
	a.mu.RUnlock()
	if byName != nil && time.Now().Before(expires) {
		return byName, nil
	}

	v, err, _ := a.sf.Do("catalog", func() (any, error) {
		// Re-check under the flight: another caller may have refreshed.
		a.mu.RLock()
		cur, until := a.byName, a.expires
		a.mu.RUnlock()
		if cur != nil && time.Now().Before(until) {
			return cur, nil
		}
		fresh, err := a.fetchCatalog(ctx)
		if err != nil {
			return nil, err
		}
		a.mu.Lock()
		a.byName = fresh
		a.expires = time.Now().Add(a.cfg.CatalogTTL)
		a.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]catalogItem), nil
}

func (a *Adapter) fetchCatalog(ctx context.Context) (map[string]catalogItem, error) {
	u, err := url.Parse(a.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("skinport: %w", err)
	}
	q := u.Query()
	q.Set("app_id", strconv.Itoa(a.cfg.AppID))
	q.Set("currency", a.cfg.Currency)
	q.Set("tradable", "0")
	u.RawQuery = q.Encode()

	var items []catalogItem
	if err := a.client.GetJSON(ctx, u.String(), nil, &items); err != nil {
		return nil, fmt.Errorf("skinport: %w", err)
	}
	byName := make(map[string]catalogItem, len(items))
	for _, it := range items {
		byName[it.MarketHashName] = it
	}
	return byName, nil
}

// toUSD converts a native-currency price to USD, rounded to cents.
func (a *Adapter) toUSD(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v).Mul(a.cfg.FxRate).Round(2)
	if d.IsNegative() {
		return nil
	}
	return &d
}
