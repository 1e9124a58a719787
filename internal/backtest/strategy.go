package backtest

import (
	"sort"

	"volarb/internal/models"
)

// Volatility model modes.
const (
	ModeHistorical = "historical"
	ModeImplied    = "implied"
)

// VolatilityModel supplies the volatility used to quote and price each
// option observation. Implementations may learn from the solved market
// implied vol as the month progresses.
type VolatilityModel interface {
	// VolFor returns the model volatility for a quote. midIV is the
	// solved market mid implied vol for the same observation.
	VolFor(q models.QuoteRecord, midIV float64) float64

	// Snapshot returns the per-expiry estimates accumulated so far,
	// sorted by expiry day. Nil when the model keeps no such state.
	Snapshot() []models.ExpiryVolatility
}

func newVolatilityModel(mode string, histVol float64) VolatilityModel {
	if mode == ModeImplied {
		return &impliedModel{
			histVol:  histVol,
			byExpiry: make(map[int]*models.ExpiryVolatility),
		}
	}
	return historicalModel{vol: histVol}
}

// historicalModel quotes every option off the single annualized vol
// estimated from the warmup window.
type historicalModel struct {
	vol float64
}

func (m historicalModel) VolFor(models.QuoteRecord, float64) float64 { return m.vol }

func (historicalModel) Snapshot() []models.ExpiryVolatility { return nil }

// impliedModel keeps a running mean of the market mid implied vol per
// expiry day. The first observation for an expiry is seeded with the
// historical vol scaled by the observed mid, later observations fold in
// the raw mid incrementally.
type impliedModel struct {
	histVol  float64
	byExpiry map[int]*models.ExpiryVolatility
}

func (m *impliedModel) VolFor(q models.QuoteRecord, midIV float64) float64 {
	day := q.ExpiryDayOffset()
	ev, ok := m.byExpiry[day]
	if !ok {
		ev = &models.ExpiryVolatility{
			ExpiryDay:    day,
			Estimate:     m.histVol * midIV,
			Observations: 1,
		}
		m.byExpiry[day] = ev
		return ev.Estimate
	}
	ev.Observations++
	n := float64(ev.Observations)
	ev.Estimate = ev.Estimate*(n-1)/n + midIV/n
	return ev.Estimate
}

func (m *impliedModel) Snapshot() []models.ExpiryVolatility {
	out := make([]models.ExpiryVolatility, 0, len(m.byExpiry))
	for _, ev := range m.byExpiry {
		out = append(out, *ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiryDay < out[j].ExpiryDay })
	return out
}
