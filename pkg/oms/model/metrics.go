package model

import (
	"time"
)

// ExecutionMetrics is the derived execution-quality record for one
// order. It is recomputed incrementally as trades accrue and finalized
// when the order reaches a terminal state.
type ExecutionMetrics struct {
	OrderID string

	// Slippage is |avgFillPrice - arrivalPrice| / arrivalPrice.
	Slippage float64

	// ImplementationShortfall is slippage plus opportunity cost plus
	// commission as a fraction of executed notional. TWAP/VWAP orders
	// measure it against BenchmarkPrice instead of arrival price.
	ImplementationShortfall float64

	MarketImpact float64
	TimingCost   float64
	FillRate     float64

	// BenchmarkPrice is set for TWAP and VWAP orders only.
	BenchmarkPrice float64

	UpdatedAt time.Time
}
