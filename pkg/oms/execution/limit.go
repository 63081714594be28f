package execution

import (
	"context"
	"time"

	"github.com/joripage/execution-engine/pkg/oms/model"
)

// runLimit polls the simulated market on a fixed cadence and fills
// fully at the limit price once the price crosses favorably, with a
// fixed fill probability per poll to model partial liquidity. When the
// time-in-force window elapses first the unfilled remainder is
// cancelled.
func (e *Executor) runLimit(ctx context.Context, order *model.Order, v *model.Venue) {
	deadline := time.NewTimer(e.cfg.tifWindow(order.TimeInForce))
	defer deadline.Stop()
	ticker := time.NewTicker(e.cfg.pollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			e.expire(order.OrderID)
			return
		case <-ticker.C:
		}

		live, ok := e.led.Get(order.OrderID)
		if !ok || live.IsEnd() {
			return
		}

		q := e.market.Quote(order.Symbol)
		if !crossed(order.Side, order.Price, q.Last) {
			continue
		}
		if e.rng.Float64() >= e.cfg.LimitFillProbability {
			continue
		}

		e.fill(order.OrderID, live.LeavesQuantity(), order.Price, v)
		return
	}
}

// crossed reports whether the market moved through the limit price in
// the order's favor.
func crossed(side model.OrderSide, limit, last float64) bool {
	if side == model.OrderSideBuy {
		return last <= limit
	}
	return last >= limit
}
