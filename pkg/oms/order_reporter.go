package oms

import (
	"context"

	"github.com/joripage/execution-engine/pkg/oms/model"
)

// OrderReporter receives a snapshot of the order after every status
// transition. Implementations must not block the execution path.
type OrderReporter interface {
	OnOrderReport(ctx context.Context, order model.Order)
}

// EventPublisher forwards order events to an external stream, e.g.
// NATS JetStream. Publish failures are logged, never propagated into
// the order lifecycle.
type EventPublisher interface {
	Publish(ctx context.Context, ev *model.OrderEvent) error
}
