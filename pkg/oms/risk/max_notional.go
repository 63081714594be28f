package risk

import (
	"context"
	"fmt"

	"github.com/joripage/execution-engine/pkg/marketdata"
	"github.com/joripage/execution-engine/pkg/oms/model"
)

type MaxNotionalRule struct {
	limit float64
}

func NewMaxNotionalRule(limit float64) *MaxNotionalRule {
	return &MaxNotionalRule{limit: limit}
}

func (r *MaxNotionalRule) Name() string { return "max_notional" }

// Check estimates notional as quantity times the last traded price.
func (r *MaxNotionalRule) Check(_ context.Context, order *model.Order, ref marketdata.Quote) error {
	notional := float64(order.Quantity) * ref.Last
	if notional > r.limit {
		return fmt.Errorf("%w: estimated notional %.2f exceeds max order value %.2f",
			ErrRejected, notional, r.limit)
	}
	return nil
}
