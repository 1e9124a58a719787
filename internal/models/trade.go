package models

// Trade is a simulated position opened by the decision engine for one
// accepted quote. Hedge fields are populated only when delta hedging is
// enabled; Profit is set at settlement.
type Trade struct {
	Type      OptionType
	ExpiryDay int     // days from period start
	Strike    float64
	Premium   float64 // price paid (Buy) or received (Sell)
	Delta     float64 // market-quoted delta at decision time
	MarketIV  float64 // implied vol backed out of the traded price, in percent
	ModelVol  float64 // model volatility used for the decision
	Side      TradeSide

	// Delta-hedging overlay state.
	HedgeDelta float64 // running hedge ratio, signed by position
	HedgeCash  float64 // cumulative cash from hedge rebalancing

	// Settlement result.
	Profit  float64
	Settled bool
}

// NetProfit returns option P&L plus hedge P&L for the trade.
func (t Trade) NetProfit() float64 {
	return t.Profit + t.HedgeCash
}

// PositionSign returns +1 for long trades and -1 for short trades.
func (t Trade) PositionSign() float64 {
	if t.Side == SideSell {
		return -1
	}
	return 1
}

// ExpiryVolatility is the running per-expiration volatility estimate
// maintained by the implied-vol strategy. Estimate is updated by an
// incremental mean over observed market mid implied vols.
type ExpiryVolatility struct {
	ExpiryDay    int
	Estimate     float64
	Observations int
}

// MonthlyResult is the outcome of one monthly simulation.
type MonthlyResult struct {
	Year         int
	Month        int
	Profit       float64 // option P&L + hedge P&L, rounded for reporting
	OptionProfit float64
	DeltaProfit  float64
	Winners      []Trade
	Losers       []Trade
	VolByExpiry  []ExpiryVolatility // sorted by expiry day; implied mode only
	HistVol      float64
}

// TradeCount returns the number of settled trades in the month.
func (r MonthlyResult) TradeCount() int {
	return len(r.Winners) + len(r.Losers)
}
