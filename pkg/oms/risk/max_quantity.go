package risk

import (
	"context"
	"fmt"

	"github.com/joripage/execution-engine/pkg/marketdata"
	"github.com/joripage/execution-engine/pkg/oms/model"
)

type MaxQuantityRule struct {
	limit int64
}

func NewMaxQuantityRule(limit int64) *MaxQuantityRule {
	return &MaxQuantityRule{limit: limit}
}

func (r *MaxQuantityRule) Name() string { return "max_quantity" }

func (r *MaxQuantityRule) Check(_ context.Context, order *model.Order, _ marketdata.Quote) error {
	if order.Quantity > r.limit {
		return fmt.Errorf("%w: quantity %d exceeds max position size %d",
			ErrRejected, order.Quantity, r.limit)
	}
	return nil
}
