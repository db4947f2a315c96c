// Package portfolio folds inventory holdings and their price matrices
// into a valued item list with an aggregate total.
package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"

	"skinvalue/internal/pricing"
	"skinvalue/internal/steamweb"
)

// ValuedItem is one holding with its valuation attached.
type ValuedItem struct {
	Name    string              `json:"name"`
	Icon    string              `json:"icon"`
	Count   int                 `json:"count"`
	Pricing pricing.PriceMatrix `json:"pricing"`
}

// Valuation is a fully valued inventory.
type Valuation struct {
	Items []ValuedItem    `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// Value joins holdings with their matrices. The total sums best net
// proceeds times quantity over items that have any, rounded to cents;
// items without a sellable quote still appear, valued at nothing. Rows
// are sorted by best net descending, stable for equal values.
func Value(holdings []steamweb.Holding, matrices map[string]pricing.PriceMatrix) Valuation {
	items := make([]ValuedItem, 0, len(holdings))
	total := decimal.Zero
	for _, h := range holdings {
		m, ok := matrices[h.Name]
		if !ok {
			m = pricing.PriceMatrix{ItemName: h.Name}
		}
		if m.BestVenue != nil && m.BestVenue.NetAsk != nil {
			total = total.Add(m.BestVenue.NetAsk.Mul(decimal.NewFromInt(int64(h.Count))))
		}
		items = append(items, ValuedItem{Name: h.Name, Icon: h.Icon, Count: h.Count, Pricing: m})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return bestNet(items[i]).GreaterThan(bestNet(items[j]))
	})
	return Valuation{Items: items, Total: total.Round(2)}
}

func bestNet(it ValuedItem) decimal.Decimal {
	if it.Pricing.BestVenue == nil || it.Pricing.BestVenue.NetAsk == nil {
		return decimal.Zero
	}
	return *it.Pricing.BestVenue.NetAsk
}
