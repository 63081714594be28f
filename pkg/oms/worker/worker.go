package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/joripage/execution-engine/pkg/oms/model"
	"github.com/joripage/execution-engine/pkg/oms/repo"
)

// Worker drains order events from JetStream into the journal tables.
// Fill events carry their trade, which lands in the trades table.
type Worker struct {
	orderEvent repo.IOrderEvent
	trade      repo.ITrade
}

func NewWorker(repo repo.IRepo) *Worker {
	return &Worker{
		orderEvent: repo.OrderEvent(),
		trade:      repo.Trade(),
	}
}

func (w *Worker) StartConsumer(ctx context.Context, js nats.JetStreamContext, subject, durable string) error {
	cons, err := js.PullSubscribe(subject, durable)
	if err != nil {
		return err
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		msgs, err := cons.Fetch(10, nats.Context(ctx))
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			if !errors.Is(err, nats.ErrTimeout) {
				zap.S().Warnf("fetch error: %v", err)
			}
			continue
		}

		for _, msg := range msgs {
			var ev model.OrderEvent
			if err := json.Unmarshal(msg.Data, &ev); err != nil {
				zap.S().Warnf("unmarshal order event: %v", err)
				_ = msg.Ack()
				continue
			}
			if err := w.handleEvent(ctx, ev); err != nil {
				zap.S().Warnf("persist order event %s: %v", ev.EventID, err)
				continue
			}
			_ = msg.Ack()
		}
	}
}

func (w *Worker) handleEvent(ctx context.Context, ev model.OrderEvent) error {
	if ev.Trade != nil {
		if _, err := w.trade.Create(ctx, ev.Trade); err != nil {
			return err
		}
	}
	_, err := w.orderEvent.Create(ctx, &ev)
	return err
}
