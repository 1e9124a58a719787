package backtest

import (
	"volarb/internal/config"
	"volarb/internal/models"
	"volarb/internal/pricing"
)

// rebalance walks the month's daily opens and keeps every open trade
// delta neutral: the hedge is seeded at the day-0 open, adjusted to the
// fresh model delta at each subsequent open, and unwound at the open of
// the trade's expiry day. Longs hedge short the underlying and shorts
// hedge long, so the per-trade logic only differs by the position sign.
//
// Trades are updated in place; the return value is the aggregate cash
// generated by all hedge legs.
func rebalance(cfg config.StrategyConfig, buys, sells []models.Trade, daily []models.Candle) (float64, error) {
	window := cfg.HedgeWindow
	if window > len(daily) {
		window = len(daily)
	}

	for day := 0; day < window; day++ {
		open := daily[day].Open
		for _, book := range [][]models.Trade{buys, sells} {
			for i := range book {
				if err := rebalanceTrade(&book[i], day, open, cfg.RiskFreeRate); err != nil {
					return 0, err
				}
			}
		}
	}

	var total float64
	for _, book := range [][]models.Trade{buys, sells} {
		for i := range book {
			total += book[i].HedgeCash
		}
	}
	return total, nil
}

// rebalanceTrade advances one trade's hedge to the given day. The
// hedge delta is the discounted model delta at a fixed time to expiry
// of ExpiryDay/365, held opposite to the option position.
func rebalanceTrade(t *models.Trade, day int, open, rate float64) error {
	switch {
	case day < t.ExpiryDay:
		expiry := float64(t.ExpiryDay) / 365
		d, err := pricing.Delta(t.Type, open, t.Strike, expiry, t.ModelVol, rate)
		if err != nil {
			return err
		}
		hedge := -t.PositionSign() * d
		if day == 0 {
			t.HedgeDelta = hedge
			t.HedgeCash = -hedge * open
		} else {
			// Buy or sell the difference at today's open.
			t.HedgeCash -= (hedge - t.HedgeDelta) * open
			t.HedgeDelta = hedge
		}
	case day == t.ExpiryDay:
		// Unwind whatever is still held.
		t.HedgeCash += t.HedgeDelta * open
		t.HedgeDelta = 0
	}
	return nil
}
