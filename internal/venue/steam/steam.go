package steam

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"skinvalue/internal/httpx"
	"skinvalue/internal/venue"
)

// Config controls the Steam community market adapter.
type Config struct {
	// URL is the priceoverview endpoint.
	URL string
	// AppID is the Steam app whose market is queried (e.g. 730).
	AppID int
}

// Adapter is the baseline marketplace adapter. It fetches a single-item
// price summary whose numeric fields arrive as locale-formatted strings
// ("$1,234.56", "1,234"); anything malformed parses to nil, not an error.
type Adapter struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Adapter {
	if cfg.URL == "" {
		cfg.URL = "https://steamcommunity.com/market/priceoverview/"
	}
	if cfg.AppID == 0 {
		cfg.AppID = 730
	}
	return &Adapter{cfg: cfg, client: hc}
}

func (a *Adapter) Venue() venue.Venue { return venue.Steam }

type priceOverview struct {
	Success     bool   `json:"success"`
	LowestPrice string `json:"lowest_price"`
	MedianPrice string `json:"median_price"`
	Volume      string `json:"volume"`
}

func (a *Adapter) Fetch(ctx context.Context, name, currencyHint string) (venue.Quote, error) {
	if currencyHint == "" {
		currencyHint = "1" // USD
	}
	u, err := url.Parse(a.cfg.URL)
	if err != nil {
		return venue.Quote{}, fmt.Errorf("steam: %w", err)
	}
	q := u.Query()
	q.Set("appid", strconv.Itoa(a.cfg.AppID))
	q.Set("currency", currencyHint)
	q.Set("market_hash_name", name)
	u.RawQuery = q.Encode()

	var body priceOverview
	if err := a.client.GetJSON(ctx, u.String(), nil, &body); err != nil {
		return venue.Quote{}, fmt.Errorf("steam: %w", err)
	}
	return venue.Quote{
		Venue:      venue.Steam,
		Ask:        parsePrice(body.LowestPrice),
		Median:     parsePrice(body.MedianPrice),
		Volume24h:  parseVolume(body.Volume),
		ObservedAt: time.Now().UTC(),
	}, nil
}

// parsePrice strips everything but digits and separators from a
// locale-formatted price string, drops thousands separators, and parses
// the remainder. Missing or malformed input yields nil.
func parsePrice(s string) *decimal.Decimal {
	if s == "" {
		return nil
	}
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.ReplaceAll(b.String(), ",", "")
	d, err := decimal.NewFromString(cleaned)
	if err != nil || d.IsNegative() {
		return nil
	}
	return &d
}

func parseVolume(s string) *int64 {
	if s == "" {
		return nil
	}
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
