package model

import (
	"time"
)

// Venue is static reference data. Liquidity and fill-probability
// figures are computed per scoring call, not stored here.
type Venue struct {
	Name            string  `yaml:"name"`
	LatencyMs       int64   `yaml:"latency_ms"`
	FeeRate         float64 `yaml:"fee_rate"`
	LiquidityFactor float64 `yaml:"liquidity_factor"`
	LowImpact       bool    `yaml:"low_impact"`
}

func (v *Venue) Latency() time.Duration {
	return time.Duration(v.LatencyMs) * time.Millisecond
}

// DefaultVenues is the candidate set used when the config does not
// declare its own.
func DefaultVenues() []*Venue {
	return []*Venue{
		{Name: "NYSE", LatencyMs: 2, FeeRate: 0.0020, LiquidityFactor: 1.0},
		{Name: "NASDAQ", LatencyMs: 1, FeeRate: 0.0025, LiquidityFactor: 0.95},
		{Name: "ARCA", LatencyMs: 3, FeeRate: 0.0015, LiquidityFactor: 0.85},
		{Name: "IEX", LatencyMs: 4, FeeRate: 0.0010, LiquidityFactor: 0.75, LowImpact: true},
		{Name: "BATS", LatencyMs: 2, FeeRate: 0.0018, LiquidityFactor: 0.80},
	}
}
