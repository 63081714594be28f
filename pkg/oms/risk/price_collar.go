package risk

import (
	"context"
	"fmt"
	"math"

	"github.com/joripage/execution-engine/pkg/marketdata"
	"github.com/joripage/execution-engine/pkg/oms/model"
)

type PriceCollarRule struct {
	collar float64 // max fractional deviation from last traded price
}

func NewPriceCollarRule(collar float64) *PriceCollarRule {
	return &PriceCollarRule{collar: collar}
}

func (r *PriceCollarRule) Name() string { return "price_collar" }

func (r *PriceCollarRule) Check(_ context.Context, order *model.Order, ref marketdata.Quote) error {
	if ref.Last <= 0 {
		return nil
	}
	for _, p := range []float64{order.Price, order.StopPrice} {
		if p <= 0 {
			continue
		}
		dev := math.Abs(p-ref.Last) / ref.Last
		if dev > r.collar {
			return fmt.Errorf("%w: price %.4f deviates %.2f%% from last %.4f, collar %.2f%%",
				ErrRejected, p, dev*100, ref.Last, r.collar*100)
		}
	}
	return nil
}
