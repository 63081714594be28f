package execution

import (
	"context"
	"time"

	"github.com/joripage/execution-engine/pkg/oms/model"
)

const twapSlipCoeff = 0.0001

// runTWAP divides the quantity into equal time-spaced slices over a
// fixed horizon. Each slice fills at the prevailing simulated price
// plus slippage. An independently sampled average of the tape over the
// same horizon becomes the TWAP benchmark the shortfall is measured
// against.
func (e *Executor) runTWAP(ctx context.Context, order *model.Order, v *model.Venue) {
	n := e.cfg.TWAPSlices
	interval := time.Duration(e.cfg.TWAPHorizonMs/int64(n)) * time.Millisecond
	sliceQty := order.Quantity / int64(n)
	if sliceQty < 1 {
		sliceQty = 1
	}

	var benchSum float64
	benchCount := 0

	for i := 0; i < n; i++ {
		if !e.wait(ctx, order.OrderID, interval) {
			break
		}

		live, ok := e.led.Get(order.OrderID)
		if !ok || live.IsEnd() {
			break
		}

		qty := sliceQty
		if i == n-1 || qty > live.LeavesQuantity() {
			// last slice absorbs the rounding remainder
			qty = live.LeavesQuantity()
		}
		if qty == 0 {
			break
		}

		q := e.market.Quote(order.Symbol)
		price := sidePrice(order.Side, q.Last, slippage(qty, twapSlipCoeff, v))
		if !e.fill(order.OrderID, qty, price, v) {
			break
		}

		// independent benchmark sample
		benchSum += e.market.Quote(order.Symbol).Last
		benchCount++
	}

	if benchCount > 0 {
		e.led.SetBenchmark(order.OrderID, benchSum/float64(benchCount))
	}
}
