package execution

import (
	"context"
	"time"

	"github.com/joripage/execution-engine/pkg/oms/model"
)

const (
	vwapCurvature          = 1.5  // U-shape steepness at open/close
	vwapBaseAggressiveness = 0.3  // fraction of the gap to the benchmark closed per slice
	vwapHighAggressiveness = 0.6  // used when deviation exceeds the band
	vwapDeviationBand      = 0.02 // 2%
	vwapBenchNoiseFrac     = 0.002
)

// runVWAP slices the quantity along a U-shaped volume profile (heavier
// at open and close) over a fixed horizon. Fill prices are biased
// toward the precomputed historical VWAP benchmark, more aggressively
// once the running deviation exceeds 2%.
func (e *Executor) runVWAP(ctx context.Context, order *model.Order, v *model.Venue) {
	n := e.cfg.VWAPSlices
	interval := time.Duration(e.cfg.VWAPHorizonMs/int64(n)) * time.Millisecond
	weights := vwapWeights(n)

	// historical benchmark, simulated around the arrival price
	bench := order.ArrivalPrice * (1 + (e.rng.Float64()-0.5)*2*vwapBenchNoiseFrac)
	e.led.SetBenchmark(order.OrderID, bench)

	allocated := int64(0)
	for i := 0; i < n; i++ {
		if !e.wait(ctx, order.OrderID, interval) {
			return
		}

		live, ok := e.led.Get(order.OrderID)
		if !ok || live.IsEnd() {
			return
		}

		qty := int64(float64(order.Quantity) * weights[i])
		if i == n-1 {
			qty = order.Quantity - allocated
		}
		if qty > live.LeavesQuantity() {
			qty = live.LeavesQuantity()
		}
		if qty < 1 {
			continue
		}

		q := e.market.Quote(order.Symbol)
		aggr := vwapBaseAggressiveness
		if dev := (live.AvgFillPrice - bench) / bench; live.FilledQuantity > 0 &&
			(dev > vwapDeviationBand || dev < -vwapDeviationBand) {
			aggr = vwapHighAggressiveness
		}
		price := q.Last - aggr*(q.Last-bench)

		if !e.fill(order.OrderID, qty, price, v) {
			return
		}
		allocated += qty
	}
}

// vwapWeights returns the U-shaped volume profile, normalized so the
// weights sum to 1.
func vwapWeights(n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{1}
	}

	weights := make([]float64, n)
	mid := float64(n-1) / 2
	sum := 0.0
	for i := range weights {
		x := (float64(i) - mid) / mid
		weights[i] = 1 + vwapCurvature*x*x
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}
