package backtest

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"volarb/internal/analysis"
	"volarb/internal/config"
	"volarb/internal/errors"
	"volarb/internal/models"
	"volarb/internal/performance"
)

// MonthKey identifies one simulated month.
type MonthKey struct {
	Year  int
	Month int
}

// GridResult is the outcome of a multi-month run: every settled month
// in range order, the months that had to be skipped for lack of data,
// and the summary statistics over the monthly profits.
type GridResult struct {
	Months     []models.MonthlyResult
	Missing    []MonthKey
	Total      float64
	YearTotals map[int]float64
	Mean       float64
	Std        float64
}

// Aggregator runs the engine over a (year, month) grid and reduces the
// per-month results. Months run independently, so the grid can be
// fanned out over a worker pool.
type Aggregator struct {
	engine *Engine
	rng    config.RangeConfig
	logger zerolog.Logger
}

// NewAggregator creates an aggregator over the given range.
func NewAggregator(engine *Engine, rng config.RangeConfig, logger zerolog.Logger) *Aggregator {
	return &Aggregator{engine: engine, rng: rng, logger: logger}
}

// Keys expands the configured range into month keys, in order.
func (a *Aggregator) Keys() []MonthKey {
	var keys []MonthKey
	for year := a.rng.StartYear; year <= a.rng.EndYear; year++ {
		first, last := 1, 12
		if year == a.rng.StartYear {
			first = a.rng.StartMonth
		}
		if year == a.rng.EndYear {
			last = a.rng.EndMonth
		}
		for month := first; month <= last; month++ {
			keys = append(keys, MonthKey{Year: year, Month: month})
		}
	}
	return keys
}

type monthOutcome struct {
	result *models.MonthlyResult
	err    error
}

// Run simulates every month in the range and aggregates the results.
// A month whose data cannot be loaded is recorded as missing and the
// run continues; malformed chain data aborts the whole run.
func (a *Aggregator) Run(ctx context.Context) (*GridResult, error) {
	keys := a.Keys()
	outcomes := make([]monthOutcome, len(keys))

	workers := a.rng.Workers
	if workers < 1 {
		workers = 1
	}
	pool := performance.NewWorkerPool(workers)
	pool.Start()
	for i, key := range keys {
		i, key := i, key
		pool.Submit(func() {
			res, err := a.engine.RunMonth(ctx, key.Year, time.Month(key.Month))
			outcomes[i] = monthOutcome{result: res, err: err}
		})
	}
	pool.Stop()

	grid := &GridResult{YearTotals: make(map[int]float64)}
	var profits []float64
	for i, key := range keys {
		out := outcomes[i]
		if out.err != nil {
			if errors.Is(out.err, errors.ErrInvalidOptionType) ||
				errors.Is(out.err, context.Canceled) ||
				errors.Is(out.err, context.DeadlineExceeded) {
				return nil, out.err
			}
			a.logger.Warn().Err(out.err).Int("year", key.Year).Int("month", key.Month).Msg("Month skipped")
			grid.Missing = append(grid.Missing, key)
			continue
		}
		res := *out.result
		res.Profit = round2(res.Profit)
		grid.Months = append(grid.Months, res)
		grid.Total += res.Profit
		grid.YearTotals[key.Year] += res.Profit
		profits = append(profits, res.Profit)
	}
	if len(profits) > 0 {
		grid.Mean, grid.Std = analysis.MeanStd(profits)
	}
	return grid, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
