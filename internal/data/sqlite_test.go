package data

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"volarb/internal/models"
)

// countingProvider wraps a provider and counts fetches, so tests can
// tell cache hits from misses.
type countingProvider struct {
	inner PriceProvider
	calls int
}

func (p *countingProvider) GetCandles(ctx context.Context, symbol, timeframe string, limit int, start time.Time) ([]models.Candle, error) {
	p.calls++
	return p.inner.GetCandles(ctx, symbol, timeframe, limit, start)
}

func TestCandleCacheServesSecondFetchFromDisk(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	counting := &countingProvider{inner: NewSyntheticProvider(7)}

	cache, err := NewCandleCache(dbPath, counting)
	if err != nil {
		t.Fatalf("NewCandleCache returned error: %v", err)
	}
	defer cache.Close()

	start := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	first, err := cache.GetCandles(ctx, "BTC/USDT", "1d", 30, start)
	if err != nil {
		t.Fatalf("first fetch returned error: %v", err)
	}
	if counting.calls != 1 {
		t.Fatalf("expected 1 inner fetch, got %d", counting.calls)
	}

	second, err := cache.GetCandles(ctx, "BTC/USDT", "1d", 30, start)
	if err != nil {
		t.Fatalf("second fetch returned error: %v", err)
	}
	if counting.calls != 1 {
		t.Errorf("second fetch should hit the cache, inner fetches = %d", counting.calls)
	}

	if len(first) != len(second) {
		t.Fatalf("cache returned %d candles, want %d", len(second), len(first))
	}
	for i := range first {
		if !first[i].Timestamp.Equal(second[i].Timestamp) || first[i].Close != second[i].Close {
			t.Fatalf("candle %d differs after caching: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestCandleCacheKeysBySymbolAndTimeframe(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	counting := &countingProvider{inner: NewSyntheticProvider(7)}

	cache, err := NewCandleCache(dbPath, counting)
	if err != nil {
		t.Fatalf("NewCandleCache returned error: %v", err)
	}
	defer cache.Close()

	start := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	if _, err := cache.GetCandles(ctx, "BTC/USDT", "1d", 10, start); err != nil {
		t.Fatalf("fetch returned error: %v", err)
	}
	if _, err := cache.GetCandles(ctx, "BTC/USDT", "5m", 10, start); err != nil {
		t.Fatalf("fetch returned error: %v", err)
	}
	if _, err := cache.GetCandles(ctx, "ETH/USDT", "1d", 10, start); err != nil {
		t.Fatalf("fetch returned error: %v", err)
	}

	// Three distinct (symbol, timeframe) keys, three inner fetches.
	if counting.calls != 3 {
		t.Errorf("expected 3 inner fetches, got %d", counting.calls)
	}
}
