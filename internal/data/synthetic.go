package data

import (
	"context"
	"math"
	"math/rand"
	"time"

	"volarb/internal/models"
)

// SyntheticProvider generates geometric-Brownian candle series. Used
// by tests and for offline demo runs when no exchange data is cached.
// Series are deterministic for a given (seed, symbol, timeframe,
// start), so the daily and intraday series of one simulated month are
// reproducible.
type SyntheticProvider struct {
	seed       int64
	startPrice float64
	drift      float64 // annual
	vol        float64 // annual
}

// NewSyntheticProvider creates a provider with the given seed. A zero
// seed falls back to a fixed default so runs stay reproducible.
func NewSyntheticProvider(seed int64) *SyntheticProvider {
	if seed == 0 {
		seed = 42
	}
	return &SyntheticProvider{
		seed:       seed,
		startPrice: 30000,
		drift:      0.05,
		vol:        0.6,
	}
}

// GetCandles implements PriceProvider.
func (p *SyntheticProvider) GetCandles(ctx context.Context, symbol, timeframe string, limit int, start time.Time) ([]models.Candle, error) {
	step, err := ParseTimeframe(timeframe)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(p.seed ^ start.Unix() ^ int64(len(symbol)) ^ int64(step)))

	dt := step.Hours() / 24 / 365 // years per bar
	price := p.startPrice * (0.8 + 0.4*rng.Float64())

	candles := make([]models.Candle, 0, limit)
	ts := start
	for i := 0; i < limit; i++ {
		z := rng.NormFloat64()
		next := price * math.Exp((p.drift-0.5*p.vol*p.vol)*dt+p.vol*math.Sqrt(dt)*z)

		high := math.Max(price, next) * (1 + 0.002*math.Abs(rng.NormFloat64()))
		low := math.Min(price, next) * (1 - 0.002*math.Abs(rng.NormFloat64()))
		candles = append(candles, models.Candle{
			Timestamp: ts,
			Open:      price,
			High:      high,
			Low:       low,
			Close:     next,
			Volume:    1000 + 5000*rng.Float64(),
		})
		price = next
		ts = ts.Add(step)
	}
	return candles, nil
}
