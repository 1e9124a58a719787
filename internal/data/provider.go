// Package data provides market-data provider interfaces and
// implementations: a CSV options-chain reader, a SQLite candle cache
// and a synthetic price generator.
package data

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"volarb/internal/models"
)

// PriceProvider supplies OHLCV candle series.
//
// GetCandles returns up to limit candles for the symbol and timeframe,
// starting at start, in chronological order. A provider failure or an
// empty result aborts the caller's simulation period.
type PriceProvider interface {
	GetCandles(ctx context.Context, symbol, timeframe string, limit int, start time.Time) ([]models.Candle, error)
}

// ChainProvider supplies normalized per-month options-chain tables in
// original quote-timestamp order.
type ChainProvider interface {
	GetMonthQuotes(ctx context.Context, year int, month time.Month) ([]models.QuoteRecord, error)
}

// ParseTimeframe converts a bar-interval string like "5m", "2h" or
// "1d" into a duration.
func ParseTimeframe(tf string) (time.Duration, error) {
	if len(tf) < 2 {
		return 0, fmt.Errorf("invalid timeframe %q", tf)
	}
	n, err := strconv.Atoi(tf[:len(tf)-1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid timeframe %q", tf)
	}
	switch strings.ToLower(tf[len(tf)-1:]) {
	case "m":
		return time.Duration(n) * time.Minute, nil
	case "h":
		return time.Duration(n) * time.Hour, nil
	case "d":
		return time.Duration(n) * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("invalid timeframe %q", tf)
	}
}
