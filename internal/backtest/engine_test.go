package backtest

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"volarb/internal/config"
	"volarb/internal/errors"
	"volarb/internal/models"
)

// fakePrices serves canned candle series. The engine asks for a
// warmup window, an intraday series and a month daily series; they
// are told apart by timeframe and limit.
type fakePrices struct {
	warmup   []models.Candle
	intraday []models.Candle
	daily    []models.Candle
	err      error
}

func (f *fakePrices) GetCandles(ctx context.Context, symbol, timeframe string, limit int, start time.Time) ([]models.Candle, error) {
	if f.err != nil {
		return nil, f.err
	}
	if timeframe == "5m" {
		return f.intraday, nil
	}
	if limit == warmupBars {
		return f.warmup, nil
	}
	return f.daily, nil
}

type fakeChain struct {
	quotes map[MonthKey][]models.QuoteRecord
}

func (f *fakeChain) GetMonthQuotes(ctx context.Context, year int, month time.Month) ([]models.QuoteRecord, error) {
	key := MonthKey{Year: year, Month: int(month)}
	quotes, ok := f.quotes[key]
	if !ok {
		period := fmt.Sprintf("%d-%02d", year, int(month))
		return nil, errors.NewDataError("quotes", "test", period, errors.ErrDataUnavailable)
	}
	return quotes, nil
}

func testStrategy() config.StrategyConfig {
	return config.StrategyConfig{
		Mode:         ModeHistorical,
		RiskFreeRate: 0.0242,
		Spread:       0.2,
		LongMax:      20,
		ShortMax:     10,
		DeltaHedging: false,
		HedgeWindow:  32,
		MinExpiryYrs: 0.0028,
	}
}

func monthCandles(n int, open, close float64, step time.Duration) []models.Candle {
	start := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, n)
	for i := range candles {
		candles[i] = models.Candle{
			Timestamp: start.Add(time.Duration(i) * step),
			Open:      open,
			Close:     close,
		}
	}
	return candles
}

// warmupCandles yields an annualized vol of about 0.4341.
func warmupCandles() []models.Candle {
	closes := []float64{100, 101, 99, 103, 102}
	start := time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, len(closes))
	for i, c := range closes {
		candles[i] = models.Candle{Timestamp: start.AddDate(0, 0, i), Close: c}
	}
	return candles
}

func testPrices() *fakePrices {
	return &fakePrices{
		warmup:   warmupCandles(),
		intraday: monthCandles(288, 100, 100, 5*time.Minute),
		daily:    monthCandles(32, 100, 100, 24*time.Hour),
	}
}

// quoteAt builds a call quote struck at the money with the given
// bid/ask fractions of spot, expiring on the 16th (offset 15).
func testQuote(bidFrac, askFrac float64) models.QuoteRecord {
	return models.QuoteRecord{
		Timestamp:    time.Date(2021, 3, 2, 0, 0, 0, 0, time.UTC),
		Strike:       100,
		Expiration:   time.Date(2021, 3, 16, 8, 0, 0, 0, time.UTC),
		Type:         models.Call,
		Delta:        0.5,
		BidPriceFrac: bidFrac,
		AskPriceFrac: askFrac,
	}
}

func newTestEngine(cfg config.StrategyConfig, prices *fakePrices, quotes []models.QuoteRecord) *Engine {
	chain := &fakeChain{quotes: map[MonthKey][]models.QuoteRecord{
		{Year: 2021, Month: 3}: quotes,
	}}
	return NewEngine(cfg, "BTC/USDT", prices, chain, zerolog.Nop())
}

func TestRunMonthBuysUnderpricedOption(t *testing.T) {
	// With model vol 0.4341 and spread 0.2 the model bid is about 2.76,
	// so a market ask of 2.00 gets lifted.
	engine := newTestEngine(testStrategy(), testPrices(), []models.QuoteRecord{testQuote(0.018, 0.02)})

	res, err := engine.RunMonth(context.Background(), 2021, time.March)
	if err != nil {
		t.Fatalf("RunMonth returned error: %v", err)
	}

	if len(res.Winners) != 0 || len(res.Losers) != 1 {
		t.Fatalf("expected 1 losing trade, got %d winners / %d losers", len(res.Winners), len(res.Losers))
	}
	trade := res.Losers[0]
	if trade.Side != models.SideBuy {
		t.Errorf("side = %s, want Buy", trade.Side)
	}
	if trade.ExpiryDay != 15 {
		t.Errorf("expiry day = %d, want 15", trade.ExpiryDay)
	}
	if math.Abs(trade.Premium-2.0) > 1e-9 {
		t.Errorf("premium = %.4f, want 2.0", trade.Premium)
	}
	// Expires at the money, so the full premium is lost.
	if math.Abs(res.OptionProfit+2.0) > 1e-9 {
		t.Errorf("option profit = %.4f, want -2.0", res.OptionProfit)
	}
	if res.DeltaProfit != 0 {
		t.Errorf("hedging disabled but delta profit = %.4f", res.DeltaProfit)
	}
}

func TestRunMonthSellsOverpricedOption(t *testing.T) {
	// Model ask is about 4.33 at vol 0.5341; a market bid of 10 gets hit.
	engine := newTestEngine(testStrategy(), testPrices(), []models.QuoteRecord{testQuote(0.10, 0.11)})

	res, err := engine.RunMonth(context.Background(), 2021, time.March)
	if err != nil {
		t.Fatalf("RunMonth returned error: %v", err)
	}

	if len(res.Winners) != 1 || len(res.Losers) != 0 {
		t.Fatalf("expected 1 winning trade, got %d winners / %d losers", len(res.Winners), len(res.Losers))
	}
	trade := res.Winners[0]
	if trade.Side != models.SideSell {
		t.Errorf("side = %s, want Sell", trade.Side)
	}
	// Expires worthless, the seller keeps the premium.
	if math.Abs(res.OptionProfit-10.0) > 1e-9 {
		t.Errorf("option profit = %.4f, want 10.0", res.OptionProfit)
	}
}

func TestRunMonthHedgedProfitSumsBothLegs(t *testing.T) {
	cfg := testStrategy()
	cfg.DeltaHedging = true

	// Trending opens so each rebalance trades the underlying at a new
	// price and the hedge leg generates cash.
	prices := testPrices()
	for i := range prices.daily {
		prices.daily[i].Open = 100 + float64(i)
	}

	engine := newTestEngine(cfg, prices, []models.QuoteRecord{testQuote(0.018, 0.02)})

	res, err := engine.RunMonth(context.Background(), 2021, time.March)
	if err != nil {
		t.Fatalf("RunMonth returned error: %v", err)
	}
	if res.TradeCount() != 1 {
		t.Fatalf("expected 1 trade, got %d", res.TradeCount())
	}

	// The bought call expires at the money, so the option leg loses the
	// full premium regardless of hedging.
	if math.Abs(res.OptionProfit+2.0) > 1e-9 {
		t.Errorf("option profit = %.4f, want -2.0", res.OptionProfit)
	}
	if res.DeltaProfit == 0 {
		t.Fatal("expected nonzero hedge leg with trending opens")
	}
	if math.Abs(res.Profit-(res.OptionProfit+res.DeltaProfit)) > 1e-9 {
		t.Errorf("profit = %.6f, want option %.6f + hedge %.6f",
			res.Profit, res.OptionProfit, res.DeltaProfit)
	}

	// The settled trade carries its hedge cash and an unwound hedge.
	trade := res.Losers[0]
	if math.Abs(trade.HedgeCash-res.DeltaProfit) > 1e-9 {
		t.Errorf("trade hedge cash = %.6f, want %.6f", trade.HedgeCash, res.DeltaProfit)
	}
	if trade.HedgeDelta != 0 {
		t.Errorf("hedge not unwound at expiry, delta = %.6f", trade.HedgeDelta)
	}
}

func TestRunMonthSkipsNearExpiryAndUnquoted(t *testing.T) {
	nearExpiry := testQuote(0.018, 0.02)
	nearExpiry.Expiration = time.Date(2021, 3, 1, 8, 0, 0, 0, time.UTC) // offset 0

	unquoted := testQuote(math.NaN(), 0.02)

	engine := newTestEngine(testStrategy(), testPrices(), []models.QuoteRecord{nearExpiry, unquoted})

	res, err := engine.RunMonth(context.Background(), 2021, time.March)
	if err != nil {
		t.Fatalf("RunMonth returned error: %v", err)
	}
	if res.TradeCount() != 0 {
		t.Errorf("expected no trades, got %d", res.TradeCount())
	}
	if res.Profit != 0 {
		t.Errorf("expected zero profit, got %.4f", res.Profit)
	}
}

func TestRunMonthHonorsPositionCaps(t *testing.T) {
	cfg := testStrategy()
	cfg.LongMax = 2

	quotes := make([]models.QuoteRecord, 5)
	for i := range quotes {
		quotes[i] = testQuote(0.018, 0.02)
	}
	engine := newTestEngine(cfg, testPrices(), quotes)

	res, err := engine.RunMonth(context.Background(), 2021, time.March)
	if err != nil {
		t.Fatalf("RunMonth returned error: %v", err)
	}
	if res.TradeCount() != 2 {
		t.Errorf("long cap 2 but %d trades taken", res.TradeCount())
	}

	cfg = testStrategy()
	cfg.ShortMax = 3
	quotes = make([]models.QuoteRecord, 7)
	for i := range quotes {
		quotes[i] = testQuote(0.10, 0.11)
	}
	engine = newTestEngine(cfg, testPrices(), quotes)

	res, err = engine.RunMonth(context.Background(), 2021, time.March)
	if err != nil {
		t.Fatalf("RunMonth returned error: %v", err)
	}
	if res.TradeCount() != 3 {
		t.Errorf("short cap 3 but %d trades taken", res.TradeCount())
	}
}

func TestRunMonthSeparateCapsPerType(t *testing.T) {
	cfg := testStrategy()
	cfg.LongMax = 1

	call := testQuote(0.018, 0.02)
	put := testQuote(0.018, 0.02)
	put.Type = models.Put
	put.Strike = 100

	engine := newTestEngine(cfg, testPrices(), []models.QuoteRecord{call, put, call, put})

	res, err := engine.RunMonth(context.Background(), 2021, time.March)
	if err != nil {
		t.Fatalf("RunMonth returned error: %v", err)
	}
	// One long per type.
	if res.TradeCount() != 2 {
		t.Errorf("expected 2 trades (one per type), got %d", res.TradeCount())
	}
}

func TestRunMonthAbortsOnMissingCandles(t *testing.T) {
	prices := testPrices()
	prices.err = errors.ErrDataUnavailable

	engine := newTestEngine(testStrategy(), prices, nil)

	_, err := engine.RunMonth(context.Background(), 2021, time.March)
	if !errors.Is(err, errors.ErrDataUnavailable) {
		t.Errorf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestBucketIndex(t *testing.T) {
	cases := []struct {
		hour, min, want int
	}{
		{0, 0, 0},
		{0, 4, 0},
		{0, 5, 1},
		{1, 0, 12},
		{23, 55, 287},
	}
	for _, c := range cases {
		ts := time.Date(2021, 3, 10, c.hour, c.min, 0, 0, time.UTC)
		if got := bucketIndex(ts); got != c.want {
			t.Errorf("bucketIndex(%02d:%02d) = %d, want %d", c.hour, c.min, got, c.want)
		}
	}
}
