package pricing

import "math"

// TimeToSell is an estimated listing-to-sale window in days, min <= max.
type TimeToSell struct {
	MinDays float64 `json:"min_days"`
	MaxDays float64 `json:"max_days"`
}

// Liquidity weights: 24h volume dominates, listing depth seconds it.
const (
	volumeWeight   = 0.7
	listingsWeight = 0.3
)

// Score collapses one item's net quotes into a 0-100 liquidity score and
// a time-to-sell estimate. Each venue's volume and listing count is
// normalized against the per-item maximum for that metric (denominator
// floored at 1), composited 0.7/0.3, and the score is the rounded mean of
// the composites times 100. Absent metrics count as zero in the
// composite; the quote itself keeps nil so "no data" stays visible.
//
// This is a heuristic proxy for ease of sale, not a statistical
// estimator. The weights and the linear time-to-sell mapping are a
// reproducibility contract: identical inputs produce bit-identical
// outputs, and downstream tests pin exact values.
func Score(quotes []NetQuote) (int, TimeToSell) {
	var vMax, lMax float64 = 1, 1
	for _, q := range quotes {
		if q.Volume24h != nil && float64(*q.Volume24h) > vMax {
			vMax = float64(*q.Volume24h)
		}
		if q.Listings != nil && float64(*q.Listings) > lMax {
			lMax = float64(*q.Listings)
		}
	}

	var sum float64
	for _, q := range quotes {
		var vol, lst float64
		if q.Volume24h != nil {
			vol = float64(*q.Volume24h)
		}
		if q.Listings != nil {
			lst = float64(*q.Listings)
		}
		sum += volumeWeight*vol/vMax + listingsWeight*lst/lMax
	}

	n := len(quotes)
	if n == 0 {
		n = 1
	}
	score := int(math.Round(sum / float64(n) * 100))

	minDays := math.Max(0.25, 7-float64(score)/100*6)
	maxDays := minDays * 2.2
	return score, TimeToSell{MinDays: round2(minDays), MaxDays: round2(maxDays)}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
