package execution

import (
	"context"
	"time"

	"github.com/joripage/execution-engine/pkg/oms/model"
)

const icebergNoiseFrac = 0.0005

// runIceberg exposes only the display quantity at a time. Each slice
// fills a random 80-100% fraction of the exposed amount at the limit
// price plus small noise, then the task sleeps a randomized inter-slice
// delay before exposing the next slice.
func (e *Executor) runIceberg(ctx context.Context, order *model.Order, v *model.Venue) {
	display := order.DisplayQuantity
	if display <= 0 {
		display = order.Quantity / 10
	}
	if display < 1 {
		display = 1
	}

	for {
		live, ok := e.led.Get(order.OrderID)
		if !ok || live.IsEnd() {
			return
		}

		exposed := display
		if remaining := live.LeavesQuantity(); exposed > remaining {
			exposed = remaining
		}

		frac := 0.8 + 0.2*e.rng.Float64()
		qty := int64(frac * float64(exposed))
		if qty < 1 {
			qty = 1
		}
		noise := (e.rng.Float64() - 0.5) * 2 * icebergNoiseFrac
		price := order.Price * (1 + noise)

		if !e.fill(order.OrderID, qty, price, v) {
			return
		}
		if live, ok = e.led.Get(order.OrderID); !ok || live.LeavesQuantity() == 0 {
			return
		}

		if !e.wait(ctx, order.OrderID, e.icebergDelay()) {
			return
		}
	}
}

func (e *Executor) icebergDelay() time.Duration {
	lo, hi := e.cfg.IcebergMinDelayMs, e.cfg.IcebergMaxDelayMs
	if hi <= lo {
		return time.Duration(lo) * time.Millisecond
	}
	return time.Duration(lo+e.rng.Int63n(hi-lo)) * time.Millisecond
}
