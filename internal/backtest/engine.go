package backtest

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"volarb/internal/analysis"
	"volarb/internal/config"
	"volarb/internal/data"
	"volarb/internal/errors"
	"volarb/internal/logging"
	"volarb/internal/models"
	"volarb/internal/pricing"
)

// Candle request shapes. The warmup window feeds the historical vol
// estimate, the intraday series supplies spot prices for quote pricing,
// and the daily series drives hedging and settlement.
const (
	warmupBars   = 30
	intradayBars = 500
	settleBars   = 31
)

// Engine simulates one month of option market making: estimate
// volatility, price every quote in the month's chain, take the
// profitable side when the market crosses the model, then hedge and
// settle the resulting book.
type Engine struct {
	cfg    config.StrategyConfig
	symbol string
	prices data.PriceProvider
	chain  data.ChainProvider
	logger zerolog.Logger
}

// NewEngine creates a backtest engine.
func NewEngine(cfg config.StrategyConfig, symbol string, prices data.PriceProvider, chain data.ChainProvider, logger zerolog.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		symbol: symbol,
		prices: prices,
		chain:  chain,
		logger: logger,
	}
}

// monthState accumulates the open book while a month's quotes stream
// through the decision loop. Position counters are per option type and
// bound how far the book may grow on either side.
type monthState struct {
	callPos int
	putPos  int
	buys    []models.Trade
	sells   []models.Trade
}

func (st *monthState) positionFor(t models.OptionType) *int {
	if t == models.Put {
		return &st.putPos
	}
	return &st.callPos
}

// RunMonth simulates a single (year, month) and returns its settled
// result. Any data failure aborts the month cleanly; no partial result
// is returned.
func (e *Engine) RunMonth(ctx context.Context, year int, month time.Month) (*models.MonthlyResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := logging.WithMonth(e.logger, year, int(month))
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	warmupStart := monthStart.AddDate(0, -1, 0)

	warmup, err := e.prices.GetCandles(ctx, e.symbol, "1d", warmupBars, warmupStart)
	if err != nil {
		return nil, errors.NewDataError("candles", e.symbol, warmupStart.Format("2006-01"), err)
	}
	histVol, err := analysis.AnnualizedVolatility(warmup)
	if err != nil {
		return nil, err
	}
	logger.Debug().Float64("hist_vol", histVol).Msg("Warmup volatility estimated")

	intraday, err := e.prices.GetCandles(ctx, e.symbol, "5m", intradayBars, monthStart)
	if err != nil {
		return nil, errors.NewDataError("candles", e.symbol, monthStart.Format("2006-01"), err)
	}

	quotes, err := e.chain.GetMonthQuotes(ctx, year, month)
	if err != nil {
		return nil, err
	}

	model := newVolatilityModel(e.cfg.Mode, histVol)
	st := &monthState{}
	for _, q := range quotes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := e.processQuote(st, model, q, intraday, histVol, logger); err != nil {
			return nil, err
		}
	}

	bars := settleBars
	if e.cfg.HedgeWindow > bars {
		bars = e.cfg.HedgeWindow
	}
	daily, err := e.prices.GetCandles(ctx, e.symbol, "1d", bars, monthStart)
	if err != nil {
		return nil, errors.NewDataError("candles", e.symbol, monthStart.Format("2006-01"), err)
	}

	var deltaProfit float64
	if e.cfg.DeltaHedging {
		deltaProfit, err = rebalance(e.cfg, st.buys, st.sells, daily)
		if err != nil {
			return nil, err
		}
	}

	optionProfit, winners, losers, err := settle(st.buys, st.sells, daily)
	if err != nil {
		return nil, err
	}

	res := &models.MonthlyResult{
		Year:         year,
		Month:        int(month),
		Profit:       optionProfit + deltaProfit,
		OptionProfit: optionProfit,
		DeltaProfit:  deltaProfit,
		Winners:      winners,
		Losers:       losers,
		VolByExpiry:  model.Snapshot(),
		HistVol:      histVol,
	}
	logging.LogMonthResult(logger, year, int(month), res.Profit, res.TradeCount())
	return res, nil
}

// bucketIndex maps a quote timestamp onto the intraday series by its
// time of day, in five minute steps.
func bucketIndex(ts time.Time) int {
	return (ts.Hour()*60 + ts.Minute()) / 5
}

func (e *Engine) processQuote(st *monthState, model VolatilityModel, q models.QuoteRecord, intraday []models.Candle, histVol float64, logger zerolog.Logger) error {
	idx := bucketIndex(q.Timestamp)
	if idx >= len(intraday) {
		logger.Debug().Time("ts", q.Timestamp).Msg("Quote outside intraday series, skipped")
		return nil
	}
	spot := intraday[idx].Close

	expiry := q.TimeToExpiryYears()
	marketBid := q.BidPriceFrac * spot
	marketAsk := q.AskPriceFrac * spot
	if expiry < e.cfg.MinExpiryYrs || math.IsNaN(marketBid) || math.IsNaN(marketAsk) {
		return nil
	}

	askIV, err := pricing.ImpliedVol(q.Type, marketAsk, spot, q.Strike, expiry, histVol, e.cfg.RiskFreeRate)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidOptionType) {
			return err
		}
		logger.Debug().Err(err).Float64("strike", q.Strike).Msg("Ask vol unsolvable, quote skipped")
		return nil
	}
	bidIV, err := pricing.ImpliedVol(q.Type, marketBid, spot, q.Strike, expiry, histVol, e.cfg.RiskFreeRate)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidOptionType) {
			return err
		}
		logger.Debug().Err(err).Float64("strike", q.Strike).Msg("Bid vol unsolvable, quote skipped")
		return nil
	}

	vol := model.VolFor(q, (askIV+bidIV)/2)

	myBid, myAsk, err := pricing.Quotes(q.Type, spot, q.Strike, expiry, vol, e.cfg.RiskFreeRate, e.cfg.Spread)
	if err != nil {
		return err
	}
	fair, err := pricing.Fair(q.Type, spot, q.Strike, expiry, vol, e.cfg.RiskFreeRate)
	if err != nil {
		return err
	}

	pos := st.positionFor(q.Type)
	switch {
	case marketBid > myAsk && *pos > -e.cfg.ShortMax:
		t := models.Trade{
			Type:      q.Type,
			ExpiryDay: q.ExpiryDayOffset(),
			Strike:    q.Strike,
			Premium:   marketBid,
			Delta:     q.Delta,
			MarketIV:  100 * bidIV,
			ModelVol:  vol,
			Side:      models.SideSell,
		}
		st.sells = append(st.sells, t)
		*pos--
		logging.LogTrade(logger, string(q.Type), string(t.Side), t.Strike, t.Premium, vol)
	case marketAsk < myBid && *pos < e.cfg.LongMax:
		if askIV > vol {
			logger.Warn().Float64("ask_iv", askIV).Float64("model_vol", vol).Float64("fair", fair).Msg("Buying above model volatility")
		}
		t := models.Trade{
			Type:      q.Type,
			ExpiryDay: q.ExpiryDayOffset(),
			Strike:    q.Strike,
			Premium:   marketAsk,
			Delta:     q.Delta,
			MarketIV:  100 * askIV,
			ModelVol:  vol,
			Side:      models.SideBuy,
		}
		st.buys = append(st.buys, t)
		*pos++
		logging.LogTrade(logger, string(q.Type), string(t.Side), t.Strike, t.Premium, vol)
	}
	return nil
}
