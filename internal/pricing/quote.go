package pricing

import (
	"volarb/internal/models"
)

// Quotes produces the model's two-sided market around a base
// volatility: the buy price is struck at vol - spread/2, the sell price
// at vol + spread/2. The spread is a volatility offset, not a price
// offset, which keeps the quoted width proportional to the option's
// vega. Both sides price the call and derive put quotes via parity.
func Quotes(optType models.OptionType, spot, strike, expiry, vol, rate, spread float64) (buy, sell float64, err error) {
	buyVol := vol - spread/2
	sellVol := vol + spread/2

	callBuy, err := Price(models.Call, spot, strike, expiry, buyVol, rate)
	if err != nil {
		return 0, 0, err
	}
	callSell, err := Price(models.Call, spot, strike, expiry, sellVol, rate)
	if err != nil {
		return 0, 0, err
	}

	switch optType {
	case models.Call:
		return callBuy, callSell, nil
	case models.Put:
		putBuy := PutFromCall(callBuy, spot, strike, expiry, rate)
		putSell := PutFromCall(callSell, spot, strike, expiry, rate)
		return putBuy, putSell, nil
	default:
		_, err = Price(optType, spot, strike, expiry, vol, rate) // surfaces the type error
		return 0, 0, err
	}
}
