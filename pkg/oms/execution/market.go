package execution

import (
	"context"

	"github.com/joripage/execution-engine/pkg/oms/model"
)

const marketSlipCoeff = 0.0001

// runMarket fills the full quantity after the venue latency delay at
// the far touch adjusted by logarithmic slippage.
func (e *Executor) runMarket(ctx context.Context, order *model.Order, v *model.Venue) {
	if !e.wait(ctx, order.OrderID, v.Latency()) {
		return
	}

	live, ok := e.led.Get(order.OrderID)
	if !ok || live.IsEnd() {
		return
	}

	q := e.market.Quote(order.Symbol)
	base := q.Ask
	if order.Side == model.OrderSideSell {
		base = q.Bid
	}
	price := sidePrice(order.Side, base, slippage(live.LeavesQuantity(), marketSlipCoeff, v))

	e.fill(order.OrderID, live.LeavesQuantity(), price, v)
}
