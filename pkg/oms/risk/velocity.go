package risk

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gammazero/deque"
	"github.com/joripage/execution-engine/pkg/marketdata"
	"github.com/joripage/execution-engine/pkg/oms/model"
)

// VelocityRule caps the count of orders submitted within a trailing
// window. Timestamps live in a deque; expired entries are pruned from
// the front on every check.
type VelocityRule struct {
	mu     sync.Mutex
	window time.Duration
	limit  int
	stamps deque.Deque[time.Time]
}

func NewVelocityRule(limit int, windowMs int64) *VelocityRule {
	return &VelocityRule{
		window: time.Duration(windowMs) * time.Millisecond,
		limit:  limit,
	}
}

func (r *VelocityRule) Name() string { return "velocity" }

func (r *VelocityRule) Check(_ context.Context, _ *model.Order, _ marketdata.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-r.window)
	for r.stamps.Len() > 0 && r.stamps.Front().Before(cutoff) {
		r.stamps.PopFront()
	}

	if r.stamps.Len() >= r.limit {
		return fmt.Errorf("%w: more than %d orders in %s", ErrRejected, r.limit, r.window)
	}
	r.stamps.PushBack(now)
	return nil
}
