package marketdata

// Quote is a point-in-time snapshot of the inside market.
type Quote struct {
	Symbol string
	Bid    float64
	Ask    float64
	Last   float64
}

func (q Quote) Mid() float64 {
	return (q.Bid + q.Ask) / 2
}

// LiquidityMetrics is a symbol-keyed liquidity snapshot.
type LiquidityMetrics struct {
	Symbol       string
	BidAskSpread float64
	MarketDepth  float64
}

// MarketData is the external market data collaborator. The engine
// never subscribes to a stream; it polls synchronously when needed.
type MarketData interface {
	Quote(symbol string) Quote
	Liquidity(symbol string) LiquidityMetrics
}
