// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrInsufficientData  = errors.New("insufficient price data")
	ErrInvalidOptionType = errors.New("invalid option type")
	ErrUnsolvable        = errors.New("implied volatility unsolvable")
	ErrNoConvergence     = errors.New("root search did not converge")
	ErrDataUnavailable   = errors.New("data unavailable")
	ErrConfigInvalid     = errors.New("invalid configuration")
)

// DataError represents a failure to obtain price or quote data for a
// simulation period.
type DataError struct {
	DataType string // "candles", "quotes"
	Symbol   string
	Period   string
	Err      error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s] %s %s: %v", e.DataType, e.Symbol, e.Period, e.Err)
	}
	return fmt.Sprintf("data error [%s] %s %s", e.DataType, e.Symbol, e.Period)
}

func (e *DataError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrDataUnavailable
}

// NewDataError creates a new DataError.
func NewDataError(dataType, symbol, period string, err error) *DataError {
	return &DataError{
		DataType: dataType,
		Symbol:   symbol,
		Period:   period,
		Err:      err,
	}
}

// SolveError represents an implied-volatility solve failure for a
// single quote. It wraps either ErrUnsolvable (parity gave a negative
// call price) or ErrNoConvergence (iteration budget exhausted).
type SolveError struct {
	MarketPrice float64
	Spot        float64
	Strike      float64
	Expiry      float64
	Err         error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("implied vol solve failed (price=%.4f spot=%.2f strike=%.2f T=%.4f): %v",
		e.MarketPrice, e.Spot, e.Strike, e.Expiry, e.Err)
}

func (e *SolveError) Unwrap() error {
	return e.Err
}

// NewSolveError creates a new SolveError.
func NewSolveError(marketPrice, spot, strike, expiry float64, err error) *SolveError {
	return &SolveError{
		MarketPrice: marketPrice,
		Spot:        spot,
		Strike:      strike,
		Expiry:      expiry,
		Err:         err,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
