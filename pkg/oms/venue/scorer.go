package venue

import (
	"math"
	"math/rand"

	"github.com/joripage/execution-engine/pkg/oms/model"
)

const (
	weightLiquidity = 0.40
	weightFillProb  = 0.25
	weightFee       = 0.20
	weightImpact    = 0.10
	weightLatency   = 0.15
)

// Select ranks the candidate venues for an order and returns the one
// with the highest composite score. Ties resolve to declaration order.
// The function is pure given its random source, so callers inject a
// seeded rand for deterministic tests.
func Select(rng *rand.Rand, order *model.Order, candidates []*model.Venue) *model.Venue {
	if len(candidates) == 0 {
		return nil
	}

	best := candidates[0]
	bestScore := Score(rng, order, best)
	for _, v := range candidates[1:] {
		if s := Score(rng, order, v); s > bestScore {
			best, bestScore = v, s
		}
	}
	return best
}

// Score computes the composite score for one candidate:
//
//	0.40·liquidity + 0.25·fillProb + 0.20·(1−feeRate)·100 − 0.10·impact + 0.15·(1/latency)·10
//
// clamped so the output is never negative.
func Score(rng *rand.Rand, order *model.Order, v *model.Venue) float64 {
	liquidity := clamp(rng.Float64()*100*v.LiquidityFactor, 0, 100)
	fillProb := clamp(fillProbability(rng, order, v), 0, 100)
	impact := marketImpact(order.Quantity, v)

	latencyMs := float64(v.LatencyMs)
	if latencyMs < 1 {
		latencyMs = 1
	}

	score := weightLiquidity*liquidity +
		weightFillProb*fillProb +
		weightFee*(1-v.FeeRate)*100 -
		weightImpact*impact +
		weightLatency*(1/latencyMs)*10
	if score < 0 {
		score = 0
	}
	return score
}

// fillProbability is a stochastic per-venue estimate: biased upward
// for market orders, downward for passive orders, jittered ±10 points.
func fillProbability(rng *rand.Rand, order *model.Order, v *model.Venue) float64 {
	base := 60.0 * v.LiquidityFactor
	switch order.Type {
	case model.OrderTypeMarket:
		base += 20
	case model.OrderTypeLimit, model.OrderTypeIceberg:
		base -= 10
	}
	jitter := rng.Float64()*20 - 10
	return base + jitter
}

// marketImpact = max(0, ln(quantity/1000)·0.01), scaled down on
// low-impact venues.
func marketImpact(qty int64, v *model.Venue) float64 {
	impact := math.Log(float64(qty)/1000) * 0.01
	if impact < 0 {
		impact = 0
	}
	if v.LowImpact {
		impact *= 0.5
	}
	return impact
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
