// Package pricing implements Black-Scholes valuation, put-call parity,
// the spread-quoting model and implied-volatility inversion.
package pricing

import (
	"math"

	"volarb/internal/errors"
	"volarb/internal/models"
)

// normCDF computes the cumulative distribution function of the standard
// normal distribution using the error function.
func normCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}

// normPDF computes the probability density of the standard normal
// distribution at x.
func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}

func d1(spot, strike, expiry, vol, rate float64) float64 {
	return (math.Log(spot/strike) + (rate+0.5*vol*vol)*expiry) / (vol * math.Sqrt(expiry))
}

// Price returns the Black-Scholes value of a European option.
//
//	spot    underlying price
//	strike  strike price
//	expiry  time to expiration in years
//	vol     annualized volatility, as a decimal
//	rate    annual risk-free rate
//
// Degenerate inputs (expiry <= 0 or vol <= 0) are a caller error: the
// formula is evaluated as-is and NaN propagates. Callers filter
// near-expiry quotes before pricing.
func Price(optType models.OptionType, spot, strike, expiry, vol, rate float64) (float64, error) {
	if !optType.Valid() {
		return 0, errors.Wrapf(errors.ErrInvalidOptionType, "pricing %q", optType)
	}

	dOne := d1(spot, strike, expiry, vol, rate)
	dTwo := dOne - vol*math.Sqrt(expiry)

	if optType == models.Call {
		return spot*normCDF(dOne) - strike*math.Exp(-rate*expiry)*normCDF(dTwo), nil
	}
	return strike*math.Exp(-rate*expiry)*normCDF(-dTwo) - spot*normCDF(-dOne), nil
}

// Vega returns the sensitivity of the Black-Scholes price to volatility.
// Returns 0 for degenerate inputs.
func Vega(spot, strike, expiry, vol, rate float64) float64 {
	if expiry <= 0 || vol <= 0 {
		return 0
	}
	return spot * normPDF(d1(spot, strike, expiry, vol, rate)) * math.Sqrt(expiry)
}

// Delta returns the discounted Black-Scholes hedge ratio:
// e^{-rT}*Phi(d1) for calls, -e^{-rT}*Phi(-d1) for puts.
func Delta(optType models.OptionType, spot, strike, expiry, vol, rate float64) (float64, error) {
	if !optType.Valid() {
		return 0, errors.Wrapf(errors.ErrInvalidOptionType, "delta %q", optType)
	}

	dOne := d1(spot, strike, expiry, vol, rate)
	if optType == models.Call {
		return math.Exp(-rate*expiry) * normCDF(dOne), nil
	}
	return -math.Exp(-rate*expiry) * normCDF(-dOne), nil
}

// PutFromCall converts a call price into the parity-equivalent put
// price for the same strike and expiry: put = call + K/(1+r)^T - S.
func PutFromCall(callPrice, spot, strike, expiry, rate float64) float64 {
	return callPrice + strike/math.Pow(1+rate, expiry) - spot
}

// CallFromPut is the inverse conversion: call = put + S - K/(1+r)^T.
func CallFromPut(putPrice, spot, strike, expiry, rate float64) float64 {
	return putPrice + spot - strike/math.Pow(1+rate, expiry)
}

// Fair returns the model fair value for the requested type. Puts are
// derived from the call via parity rather than repriced from scratch.
func Fair(optType models.OptionType, spot, strike, expiry, vol, rate float64) (float64, error) {
	call, err := Price(models.Call, spot, strike, expiry, vol, rate)
	if err != nil {
		return 0, err
	}
	if optType == models.Call {
		return call, nil
	}
	if optType != models.Put {
		return 0, errors.Wrapf(errors.ErrInvalidOptionType, "fair value %q", optType)
	}
	return PutFromCall(call, spot, strike, expiry, rate), nil
}
