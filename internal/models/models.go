// Package models provides domain models for the volatility backtester.
package models

import (
	"fmt"
	"time"
)

// OptionType represents the type of an option contract.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// ParseOptionType parses s into an OptionType.
func ParseOptionType(s string) (OptionType, error) {
	switch OptionType(s) {
	case Call:
		return Call, nil
	case Put:
		return Put, nil
	default:
		return "", fmt.Errorf("invalid option type %q", s)
	}
}

// Valid reports whether t is one of the known option types.
func (t OptionType) Valid() bool {
	return t == Call || t == Put
}

// TradeSide represents the side of a simulated trade.
type TradeSide string

const (
	SideBuy  TradeSide = "Buy"
	SideSell TradeSide = "Sell"
)

// Candle represents OHLCV data for a time period.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// QuoteRecord is one historical market quote observation from a
// normalized options-chain table. Prices are quoted as a fraction of
// the underlying spot, Deribit style.
type QuoteRecord struct {
	Timestamp    time.Time
	Strike       float64
	Expiration   time.Time
	Type         OptionType
	Delta        float64
	BidPriceFrac float64
	AskPriceFrac float64
}

// ExpiryDayOffset returns the quote's expiration expressed as whole
// days from the start of its month (day-of-month minus one).
func (q QuoteRecord) ExpiryDayOffset() int {
	return q.Expiration.Day() - 1
}

// TimeToExpiryYears returns the quote's time to expiry in years,
// derived from the expiry day offset.
func (q QuoteRecord) TimeToExpiryYears() float64 {
	return float64(q.ExpiryDayOffset()) / 365.0
}
