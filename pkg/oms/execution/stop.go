package execution

import (
	"context"
	"time"

	"github.com/joripage/execution-engine/pkg/oms/model"
)

// runStop polls until the stop price is breached, then re-dispatches
// as a market order, or as a limit order for STOP_LIMIT. An untriggered
// stop whose time-in-force window elapses is cancelled.
func (e *Executor) runStop(ctx context.Context, order *model.Order, v *model.Venue, asLimit bool) {
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

		if !e.live(order.OrderID) {
			return
		}

		q := e.market.Quote(order.Symbol)
		if !triggered(order.Side, order.StopPrice, q.Last) {
			continue
		}

		if asLimit {
			e.runLimit(ctx, order, v)
		} else {
			e.runMarket(ctx, order, v)
		}
		return
	}
}

// triggered reports the stop breach condition: last >= stop for buys,
// last <= stop for sells.
func triggered(side model.OrderSide, stop, last float64) bool {
	if side == model.OrderSideBuy {
		return last >= stop
	}
	return last <= stop
}
