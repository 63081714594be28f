package execution

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/joripage/execution-engine/pkg/marketdata"
	"github.com/joripage/execution-engine/pkg/oms/ledger"
	"github.com/joripage/execution-engine/pkg/oms/model"
)

// NotifyFunc receives a notification after the execution task applied
// a ledger transition. The trade is set for fills and nil otherwise.
type NotifyFunc func(orderID string, execType model.OrderExecType, trade *model.Trade)

// Executor drives one order-type-specific algorithm per submitted
// order. Each order owns exactly one task goroutine; tasks share no
// order-specific state and coordinate only through the ledger.
type Executor struct {
	cfg    *Config
	market marketdata.MarketData
	led    *ledger.Ledger
	rng    *rand.Rand
	notify NotifyFunc
	sugar  *zap.SugaredLogger
}

func New(cfg *Config, market marketdata.MarketData, led *ledger.Ledger, notify NotifyFunc) *Executor {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.withDefaults()
	if notify == nil {
		notify = func(string, model.OrderExecType, *model.Trade) {}
	}

	return &Executor{
		cfg:    cfg,
		market: market,
		led:    led,
		rng:    rand.New(&lockedSource{src: rand.NewSource(cfg.Seed)}),
		notify: notify,
		sugar:  zap.S().With("component", "executor"),
	}
}

// Run executes the order until it reaches a terminal state, the
// context is cancelled, or no further work can be scheduled. It is
// meant to run in its own goroutine.
func (e *Executor) Run(ctx context.Context, orderID string, v *model.Venue) {
	order, ok := e.led.Get(orderID)
	if !ok {
		return
	}
	// whatever way the task exits, no further slices or polls get
	// scheduled for this order
	defer e.led.MarkDone(orderID)

	switch order.Type {
	case model.OrderTypeMarket:
		e.runMarket(ctx, order, v)
	case model.OrderTypeLimit:
		e.runLimit(ctx, order, v)
	case model.OrderTypeStop:
		e.runStop(ctx, order, v, false)
	case model.OrderTypeStopLimit:
		e.runStop(ctx, order, v, true)
	case model.OrderTypeIceberg:
		e.runIceberg(ctx, order, v)
	case model.OrderTypeTWAP:
		e.runTWAP(ctx, order, v)
	case model.OrderTypeVWAP:
		e.runVWAP(ctx, order, v)
	default:
		e.sugar.Warnw("no algorithm for order type", "order_id", orderID, "type", order.Type)
	}
}

// fill applies one fill through the ledger. A false return means the
// order went terminal first and the attempt was refused.
func (e *Executor) fill(orderID string, qty int64, price float64, v *model.Venue) bool {
	trade, err := e.led.ApplyFill(orderID, qty, price, v)
	if err != nil {
		if !errors.Is(err, ledger.ErrOrderDone) {
			e.sugar.Warnw("fill refused", "order_id", orderID, "err", err)
		}
		return false
	}
	e.notify(orderID, model.ExecTypeTrade, trade)
	return true
}

// expire cancels the unfilled remainder once the time-in-force window
// elapsed.
func (e *Executor) expire(orderID string) {
	if e.led.Cancel(orderID, model.CauseExpired) {
		e.notify(orderID, model.ExecTypeExpired, nil)
	}
}

// wait sleeps for d. It returns false when the context was cancelled
// or the order reached a terminal state in the meantime, which is the
// cancellation check every algorithm performs before acting on a
// scheduled wake-up.
func (e *Executor) wait(ctx context.Context, orderID string, d time.Duration) bool {
	if d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return false
		case <-t.C:
		}
	}
	return e.live(orderID)
}

func (e *Executor) live(orderID string) bool {
	order, ok := e.led.Get(orderID)
	return ok && !order.IsEnd()
}

// slippage = max(0, ln(qty/1000)·slipCoeff), halved on low-impact
// venues.
func slippage(qty int64, coeff float64, v *model.Venue) float64 {
	s := math.Log(float64(qty)/1000) * coeff
	if s < 0 {
		s = 0
	}
	if v != nil && v.LowImpact {
		s *= 0.5
	}
	return s
}

// sidePrice adjusts a base price against the order's side: buys pay
// up, sells give back.
func sidePrice(side model.OrderSide, base, frac float64) float64 {
	if side == model.OrderSideBuy {
		return base * (1 + frac)
	}
	return base * (1 - frac)
}

// lockedSource lets concurrent order tasks share one seeded random
// stream.
type lockedSource struct {
	mu  sync.Mutex
	src rand.Source
}

func (s *lockedSource) Int63() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Int63()
}

func (s *lockedSource) Seed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src.Seed(seed)
}
