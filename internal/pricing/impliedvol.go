package pricing

import (
	"math"

	"volarb/internal/errors"
	"volarb/internal/models"
)

const (
	ivMaxIter = 100
	ivTol     = 1e-6
	ivMinVol  = 1e-4
	ivMaxVol  = 5.0
	ivMinVega = 1e-8
)

// ImpliedVol inverts the Black-Scholes formula, recovering the
// volatility at which the model price equals marketPrice. guess seeds
// the Newton-Raphson search; the caller normally passes its fair
// volatility estimate.
//
// Put prices are first converted to the parity-equivalent call price.
// If that conversion yields a negative call the market quote is
// arbitrage-inconsistent and the solve fails with ErrUnsolvable; a
// search that exhausts its iteration budget fails with
// ErrNoConvergence. Callers must skip the quote on failure, never
// substitute a default.
func ImpliedVol(optType models.OptionType, marketPrice, spot, strike, expiry, guess, rate float64) (float64, error) {
	if !optType.Valid() {
		return 0, errors.Wrapf(errors.ErrInvalidOptionType, "implied vol %q", optType)
	}

	target := marketPrice
	if optType == models.Put {
		target = CallFromPut(marketPrice, spot, strike, expiry, rate)
		if target < 0 {
			return 0, errors.NewSolveError(marketPrice, spot, strike, expiry, errors.ErrUnsolvable)
		}
	}

	vol := guess
	if vol <= 0 {
		vol = ivMinVol
	}

	for i := 0; i < ivMaxIter; i++ {
		price, err := Price(models.Call, spot, strike, expiry, vol, rate)
		if err != nil {
			return 0, err
		}
		diff := price - target
		if math.Abs(diff) < ivTol {
			return vol, nil
		}

		vega := Vega(spot, strike, expiry, vol, rate)
		if vega < ivMinVega {
			break
		}

		vol -= diff / vega

		// Guardrails keep the iterate inside the valid domain.
		if vol < ivMinVol {
			vol = ivMinVol
		}
		if vol > ivMaxVol {
			vol = ivMaxVol
		}
	}

	return 0, errors.NewSolveError(marketPrice, spot, strike, expiry, errors.ErrNoConvergence)
}
