// Package pricing is the valuation core: it nets raw venue quotes for
// fees and FX, scores liquidity, assembles per-item price matrices and
// runs batches of them under bounded concurrency.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"skinvalue/internal/venue"
)

// FeeConfig describes seller-side costs per venue plus a global FX
// haircut. It is immutable for the duration of a valuation run. Venues
// absent from the maps pay no fee.
type FeeConfig struct {
	FeePctByVenue    map[venue.Venue]decimal.Decimal `json:"fee_pct_by_venue"`
	PayoutFeeByVenue map[venue.Venue]decimal.Decimal `json:"payout_fee_by_venue"`
	FxHaircutPct     decimal.Decimal                 `json:"fx_haircut_pct"`
}

// DefaultFees returns the stock fee model for the four venues.
func DefaultFees() FeeConfig {
	return FeeConfig{
		FeePctByVenue: map[venue.Venue]decimal.Decimal{
			venue.Steam:    decimal.NewFromFloat(0.15),
			venue.Skinport: decimal.NewFromFloat(0.12),
			venue.CSFloat:  decimal.NewFromFloat(0.01),
			venue.Buff:     decimal.NewFromFloat(0.02),
		},
		PayoutFeeByVenue: map[venue.Venue]decimal.Decimal{},
		FxHaircutPct:     decimal.Zero,
	}
}

// FeesFrom builds a FeeConfig from plain fractions, as loaded from
// configuration or a request body. Unknown venue names are kept as-is;
// they simply never match a quote.
func FeesFrom(pctByVenue, payoutByVenue map[string]float64, fxHaircut float64) FeeConfig {
	f := FeeConfig{
		FeePctByVenue:    make(map[venue.Venue]decimal.Decimal, len(pctByVenue)),
		PayoutFeeByVenue: make(map[venue.Venue]decimal.Decimal, len(payoutByVenue)),
		FxHaircutPct:     decimal.NewFromFloat(fxHaircut),
	}
	for v, p := range pctByVenue {
		f.FeePctByVenue[venue.Venue(v)] = decimal.NewFromFloat(p)
	}
	for v, p := range payoutByVenue {
		f.PayoutFeeByVenue[venue.Venue(v)] = decimal.NewFromFloat(p)
	}
	return f
}

// Validate rejects fee fractions outside [0,1) and negative payout fees.
func (f FeeConfig) Validate() error {
	for v, pct := range f.FeePctByVenue {
		if pct.IsNegative() || pct.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return fmt.Errorf("fee pct for %s out of range [0,1): %s", v, pct)
		}
	}
	for v, fee := range f.PayoutFeeByVenue {
		if fee.IsNegative() {
			return fmt.Errorf("payout fee for %s is negative: %s", v, fee)
		}
	}
	if f.FxHaircutPct.IsNegative() || f.FxHaircutPct.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("fx haircut out of range [0,1): %s", f.FxHaircutPct)
	}
	return nil
}

// NetQuote is a raw quote plus estimated seller proceeds per side.
type NetQuote struct {
	venue.Quote
	NetAsk *decimal.Decimal `json:"net_ask"`
	NetBid *decimal.Decimal `json:"net_bid"`
}

var one = decimal.NewFromInt(1)

// Net applies the fee model to one quote. Ask netting falls back to the
// median when the ask is absent (a median is still a usable proxy sale
// price); bid netting has no such fallback. Pure: identical inputs yield
// identical outputs, no side effects.
func Net(q venue.Quote, fees FeeConfig) NetQuote {
	pct := fees.FeePctByVenue[q.Venue]
	payout := fees.PayoutFeeByVenue[q.Venue]
	askBasis := q.Ask
	if askBasis == nil {
		askBasis = q.Median
	}
	return NetQuote{
		Quote:  q,
		NetAsk: net(askBasis, pct, fees.FxHaircutPct, payout),
		NetBid: net(q.Bid, pct, fees.FxHaircutPct, payout),
	}
}

// net = max(0, v * (1-pct) * (1-fx) - payout); nil in, nil out.
func net(v *decimal.Decimal, pct, fx, payout decimal.Decimal) *decimal.Decimal {
	if v == nil {
		return nil
	}
	n := v.Mul(one.Sub(pct)).Mul(one.Sub(fx)).Sub(payout)
	if n.IsNegative() {
		n = decimal.Zero
	}
	return &n
}
