package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"skinvalue/internal/venue"
)

func d(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func testFees() FeeConfig {
	return FeesFrom(map[string]float64{
		"Steam":    0.15,
		"Skinport": 0.12,
		"CSFloat":  0.01,
		"Buff":     0,
	}, nil, 0)
}

func TestNet_AppliesVenueFee(t *testing.T) {
	now := time.Now().UTC()
	fees := testFees()

	nb := Net(venue.Quote{Venue: venue.Skinport, Ask: d("100"), ObservedAt: now}, fees)
	require.NotNil(t, nb.NetAsk)
	require.True(t, nb.NetAsk.Equal(decimal.RequireFromString("88")), "got %s", nb.NetAsk)

	nc := Net(venue.Quote{Venue: venue.CSFloat, Ask: d("120"), ObservedAt: now}, fees)
	require.NotNil(t, nc.NetAsk)
	require.True(t, nc.NetAsk.Equal(decimal.RequireFromString("118.8")), "got %s", nc.NetAsk)
}

func TestNet_MedianFallbackForAskOnly(t *testing.T) {
	fees := testFees()
	q := venue.Quote{Venue: venue.Steam, Median: d("50"), ObservedAt: time.Now().UTC()}

	n := Net(q, fees)
	require.NotNil(t, n.NetAsk)
	require.True(t, n.NetAsk.Equal(decimal.RequireFromString("42.5")), "got %s", n.NetAsk)
	// bid has no fallback
	require.Nil(t, n.NetBid)
}

func TestNet_NullPropagation(t *testing.T) {
	n := Net(venue.Null(venue.Steam), testFees())
	require.Nil(t, n.NetAsk)
	require.Nil(t, n.NetBid)
}

func TestNet_PayoutFeeClampsAtZero(t *testing.T) {
	fees := FeesFrom(nil, map[string]float64{"CSFloat": 5}, 0)
	n := Net(venue.Quote{Venue: venue.CSFloat, Ask: d("1")}, fees)
	require.NotNil(t, n.NetAsk)
	require.True(t, n.NetAsk.Equal(decimal.Zero), "got %s", n.NetAsk)
}

func TestNet_FeesNeverCreateValue(t *testing.T) {
	ask := d("37.41")
	for _, pct := range []float64{0, 0.01, 0.15, 0.5, 0.99} {
		for _, fx := range []float64{0, 0.02, 0.5} {
			fees := FeesFrom(map[string]float64{"Steam": pct}, nil, fx)
			n := Net(venue.Quote{Venue: venue.Steam, Ask: ask}, fees)
			require.NotNil(t, n.NetAsk)
			require.True(t, n.NetAsk.LessThanOrEqual(*ask),
				"pct=%g fx=%g: net %s > ask %s", pct, fx, n.NetAsk, ask)
		}
	}
}

func TestNet_UnknownVenueDefaultsToZeroFees(t *testing.T) {
	n := Net(venue.Quote{Venue: venue.Buff, Ask: d("10")}, FeesFrom(nil, nil, 0))
	require.NotNil(t, n.NetAsk)
	require.True(t, n.NetAsk.Equal(decimal.RequireFromString("10")))
}

func TestNet_Deterministic(t *testing.T) {
	fees := FeesFrom(map[string]float64{"Skinport": 0.12}, map[string]float64{"Skinport": 0.5}, 0.03)
	q := venue.Quote{Venue: venue.Skinport, Ask: d("99.99"), Bid: d("80"), ObservedAt: time.Unix(1700000000, 0)}

	a := Net(q, fees)
	b := Net(q, fees)
	require.Equal(t, a, b)
}

func TestFeeConfigValidate(t *testing.T) {
	require.NoError(t, DefaultFees().Validate())
	require.Error(t, FeesFrom(map[string]float64{"Steam": 1}, nil, 0).Validate())
	require.Error(t, FeesFrom(map[string]float64{"Steam": -0.1}, nil, 0).Validate())
	require.Error(t, FeesFrom(nil, map[string]float64{"Steam": -1}, 0).Validate())
	require.Error(t, FeesFrom(nil, nil, 1.2).Validate())
}
