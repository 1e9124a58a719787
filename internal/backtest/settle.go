package backtest

import (
	"fmt"

	"volarb/internal/errors"
	"volarb/internal/models"
)

// settle exercises every trade against the daily close of its expiry
// day and splits the book into winners and losers. Buys settle before
// sells so the reported lists keep decision order within each side.
func settle(buys, sells []models.Trade, daily []models.Candle) (profit float64, winners, losers []models.Trade, err error) {
	for _, book := range [][]models.Trade{buys, sells} {
		for i := range book {
			t, err := settleTrade(book[i], daily)
			if err != nil {
				return 0, nil, nil, err
			}
			profit += t.Profit
			if t.Profit >= 0 {
				winners = append(winners, t)
			} else {
				losers = append(losers, t)
			}
		}
	}
	return profit, winners, losers, nil
}

func settleTrade(t models.Trade, daily []models.Candle) (models.Trade, error) {
	if t.ExpiryDay < 0 || t.ExpiryDay >= len(daily) {
		return t, errors.NewDataError("candles", "", fmt.Sprintf("expiry day %d", t.ExpiryDay),
			errors.Wrapf(errors.ErrDataUnavailable, "no close for expiry day %d in %d daily bars", t.ExpiryDay, len(daily)))
	}
	settleSpot := daily[t.ExpiryDay].Close

	var intrinsic float64
	switch t.Type {
	case models.Call:
		if settleSpot > t.Strike {
			intrinsic = settleSpot - t.Strike
		}
	case models.Put:
		if settleSpot < t.Strike {
			intrinsic = t.Strike - settleSpot
		}
	default:
		return t, errors.Wrapf(errors.ErrInvalidOptionType, "settle %q", t.Type)
	}

	t.Profit = t.PositionSign() * (intrinsic - t.Premium)
	t.Settled = true
	return t, nil
}
