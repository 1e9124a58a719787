// Package analysis provides statistical estimators over price series.
package analysis

import (
	"math"

	"volarb/internal/errors"
	"volarb/internal/models"
)

const daysPerYear = 365.0

// AnnualizedVolatility estimates historical volatility from a close
// price series: the population standard deviation of log returns
// ln(1 + pct_change), annualized by sqrt(365 / mean inter-bar gap in
// days). Sub-daily series whose mean whole-day gap truncates to zero
// fall back to a 1/24-day period.
//
// Fails with ErrInsufficientData when fewer than two candles are
// supplied.
func AnnualizedVolatility(candles []models.Candle) (float64, error) {
	if len(candles) < 2 {
		return 0, errors.Wrapf(errors.ErrInsufficientData, "have %d candles, need at least 2", len(candles))
	}

	returns := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		pctChange := candles[i].Close/candles[i-1].Close - 1
		returns = append(returns, math.Log(1+pctChange))
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))
	std := math.Sqrt(variance)

	gap := meanGapDays(candles)
	if gap == 0 {
		gap = 1.0 / 24.0
	}

	return std * math.Sqrt(daysPerYear/gap), nil
}

// meanGapDays returns the mean whole-day gap between consecutive
// candles. Gaps shorter than a day truncate to zero.
func meanGapDays(candles []models.Candle) float64 {
	total := 0.0
	for i := 1; i < len(candles); i++ {
		d := candles[i].Timestamp.Sub(candles[i-1].Timestamp)
		total += math.Trunc(d.Hours() / 24)
	}
	return total / float64(len(candles)-1)
}

// MeanStd returns the arithmetic mean and population standard deviation
// of values. Used by the aggregator over monthly profits.
func MeanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	for _, v := range values {
		std += (v - mean) * (v - mean)
	}
	std = math.Sqrt(std / float64(len(values)))
	return mean, std
}
