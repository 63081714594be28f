package oms

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joripage/execution-engine/pkg/marketdata"
	eventstore "github.com/joripage/execution-engine/pkg/oms/event_store"
	"github.com/joripage/execution-engine/pkg/oms/execution"
	"github.com/joripage/execution-engine/pkg/oms/ledger"
	"github.com/joripage/execution-engine/pkg/oms/model"
	"github.com/joripage/execution-engine/pkg/oms/risk"
	"github.com/joripage/execution-engine/pkg/oms/venue"
	"github.com/joripage/execution-engine/pkg/telemetry"
)

type Config struct {
	Risk      *risk.Config      `yaml:"risk"`
	Execution *execution.Config `yaml:"execution"`
	Venues    []*model.Venue    `yaml:"venues"`

	// RetentionMs > 0 enables the periodic sweep of terminal orders.
	RetentionMs     int64 `yaml:"retention_ms"`
	SweepIntervalMs int64 `yaml:"sweep_interval_ms"`
}

// OMS is the public entry point: it validates, scores venues, records
// the order and launches the matching execution algorithm. Risk checks
// and venue scoring run once synchronously before the task starts and
// are never revisited.
type OMS struct {
	cfg    *Config
	market marketdata.MarketData
	gate   *risk.Gate
	led    *ledger.Ledger
	exec   *execution.Executor
	events eventstore.EventStore
	venues []*model.Venue

	scoreMu  sync.Mutex
	scoreRng *rand.Rand

	reporter  OrderReporter
	publisher EventPublisher
	tele      *telemetry.Metrics

	tasks    sync.Map // OrderID -> context.CancelFunc
	rootCtx  context.Context
	cancel   context.CancelFunc
	stopCh   chan struct{}
	stopOnce sync.Once
	sugar    *zap.SugaredLogger
}

func NewOMS(cfg *Config, market marketdata.MarketData) *OMS {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Execution == nil {
		cfg.Execution = &execution.Config{}
	}
	venues := cfg.Venues
	if len(venues) == 0 {
		venues = model.DefaultVenues()
	}

	s := &OMS{
		cfg:    cfg,
		market: market,
		gate:   risk.NewGate(cfg.Risk),
		events: eventstore.NewInMemoryEventStore(),
		venues: venues,
		stopCh: make(chan struct{}),
		sugar:  zap.S().With("component", "oms"),
	}
	s.led = ledger.New(cfg.Execution.Seed + 1)
	s.exec = execution.New(cfg.Execution, market, s.led, s.onExecTransition)
	s.scoreRng = rand.New(rand.NewSource(cfg.Execution.Seed + 2))
	return s
}

// AddRiskRule appends an extra pre-trade rule, e.g. the redis-backed
// velocity rule.
func (s *OMS) AddRiskRule(r risk.Rule) { s.gate.AddRule(r) }

func (s *OMS) SetReporter(r OrderReporter) { s.reporter = r }

func (s *OMS) SetPublisher(p EventPublisher) { s.publisher = p }

func (s *OMS) SetTelemetry(t *telemetry.Metrics) { s.tele = t }

func (s *OMS) Start(ctx context.Context) {
	s.rootCtx, s.cancel = context.WithCancel(ctx)
	if s.cfg.RetentionMs > 0 {
		interval := time.Duration(s.cfg.SweepIntervalMs) * time.Millisecond
		if interval <= 0 {
			interval = 10 * time.Second
		}
		go s.startCleaner(interval)
	}
}

// Stop cancels every running execution task. Safe to call more than
// once.
func (s *OMS) Stop() {
	s.stopOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		close(s.stopCh)
	})
}

// SubmitOrder assigns identity, runs the risk gate and, on pass, runs
// venue selection and launches the execution algorithm. On a risk
// failure the order is recorded as REJECTED, stays queryable, and the
// returned error wraps ErrRiskRejected.
func (s *OMS) SubmitOrder(ctx context.Context, req *model.OrderRequest) (string, error) {
	start := time.Now()

	if err := req.Validate(); err != nil {
		return "", err
	}

	order := req.ToOrder()
	order.OrderID = uuid.NewString()
	if order.TransactTime.IsZero() {
		order.TransactTime = time.Now()
	}
	// the reservation is atomic, so concurrent submits reusing a
	// ClientOrderID cannot both enter the ledger
	if order.ClientOrderID != "" && !s.events.TrackClientOrderID(order.ClientOrderID, order.OrderID) {
		return "", ErrDuplicateOrder
	}
	if err := s.led.Insert(order); err != nil {
		return "", err
	}

	ref := s.market.Quote(order.Symbol)
	if err := s.gate.Validate(ctx, order, ref); err != nil {
		_ = s.led.Reject(order.OrderID, model.CauseRiskRejected)
		s.emit(order.OrderID, model.ExecTypeRejected, nil)
		if s.tele != nil {
			s.tele.OrdersRejected.Inc()
		}
		s.sugar.Infow("order rejected", "order_id", order.OrderID, "reason", err)
		return order.OrderID, fmt.Errorf("%w: %v", ErrRiskRejected, err)
	}

	s.scoreMu.Lock()
	selected := venue.Select(s.scoreRng, order, s.venues)
	s.scoreMu.Unlock()
	if selected == nil {
		_ = s.led.Reject(order.OrderID, model.CauseRiskRejected)
		return order.OrderID, errNoVenue
	}

	if err := s.led.Activate(order.OrderID, selected.Name, ref.Last); err != nil {
		return order.OrderID, err
	}
	s.emit(order.OrderID, model.ExecTypeNew, nil)
	if s.tele != nil {
		s.tele.OrdersSubmitted.Inc()
		s.tele.SubmitDur.Observe(time.Since(start).Seconds())
	}

	taskCtx, cancelTask := context.WithCancel(s.taskParent())
	s.tasks.Store(order.OrderID, cancelTask)
	go func() {
		defer s.tasks.Delete(order.OrderID)
		defer cancelTask()
		s.exec.Run(taskCtx, order.OrderID, selected)
	}()

	return order.OrderID, nil
}

// CancelOrder succeeds only while the order is SUBMITTED or
// PARTIALLY_FILLED with pending work. The running execution task is
// signalled to stop scheduling further slices; any fill racing past
// the signal is refused under the ledger lock.
func (s *OMS) CancelOrder(ctx context.Context, orderID string) bool {
	if !s.led.Cancel(orderID, model.CauseUserCancelled) {
		return false
	}
	if cancelTask, ok := s.tasks.Load(orderID); ok {
		cancelTask.(context.CancelFunc)()
	}
	s.emit(orderID, model.ExecTypeCanceled, nil)
	if s.tele != nil {
		s.tele.OrdersCancelled.Inc()
	}
	s.sugar.Infow("order cancelled", "order_id", orderID)
	return true
}

// --- query surface, read-only snapshots ---

func (s *OMS) GetOrder(orderID string) (*model.Order, error) {
	order, ok := s.led.Get(orderID)
	if !ok {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OMS) GetOrderByClientID(clientOrderID string) (*model.Order, error) {
	orderID := s.events.GetOrderID(clientOrderID)
	if orderID == "" {
		return nil, ErrOrderNotFound
	}
	return s.GetOrder(orderID)
}

func (s *OMS) GetAllOrders() []*model.Order { return s.led.All() }

func (s *OMS) GetTrades() []*model.Trade { return s.led.Trades() }

func (s *OMS) GetTradesForOrder(orderID string) []*model.Trade {
	return s.led.TradesForOrder(orderID)
}

func (s *OMS) GetExecutionMetrics(orderID string) (*model.ExecutionMetrics, error) {
	m, ok := s.led.Metrics(orderID)
	if !ok {
		return nil, ErrOrderNotFound
	}
	return m, nil
}

func (s *OMS) GetOrderEvents(orderID string) []*model.OrderEvent {
	return s.events.EventsForOrder(orderID)
}

func (s *OMS) Venues() []*model.Venue { return s.venues }

// Report aggregates execution quality across all orders.
func (s *OMS) Report() *ledger.Report { return s.led.Report() }

// --- internal ---

func (s *OMS) taskParent() context.Context {
	if s.rootCtx != nil {
		return s.rootCtx
	}
	return context.Background()
}

// onExecTransition runs on the execution task after each fill or
// expiry it applied through the ledger.
func (s *OMS) onExecTransition(orderID string, execType model.OrderExecType, trade *model.Trade) {
	if s.tele != nil {
		switch execType {
		case model.ExecTypeTrade:
			s.tele.TradesTotal.Inc()
			if trade != nil {
				s.tele.TradeQty.Observe(float64(trade.Quantity))
			}
		case model.ExecTypeExpired:
			s.tele.OrdersCancelled.Inc()
		}
	}
	order := s.emit(orderID, execType, trade)
	if s.tele != nil && order != nil && order.Status == model.OrderStatusFilled {
		s.tele.OrdersFilled.Inc()
	}
}

// emit appends the transition to the event history and fans it out to
// the reporter and the publisher. For fills the trade rides along in
// the event so the journal worker can persist it.
func (s *OMS) emit(orderID string, execType model.OrderExecType, trade *model.Trade) *model.Order {
	order, ok := s.led.Get(orderID)
	if !ok {
		return nil
	}

	ev := model.NewOrderEvent(*order, execType, time.Now())
	ev.Trade = trade
	s.events.AddEvent(ev)

	if s.reporter != nil {
		s.reporter.OnOrderReport(context.Background(), *order)
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(context.Background(), ev); err != nil {
			s.sugar.Warnw("publish order event failed", "order_id", orderID, "err", err)
		}
	}
	return order
}

func (s *OMS) startCleaner(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	retention := time.Duration(s.cfg.RetentionMs) * time.Millisecond
	for {
		select {
		case <-ticker.C:
			for _, orderID := range s.led.Sweep(retention) {
				s.events.DeleteByOrderID(orderID)
			}
		case <-s.stopCh:
			return
		}
	}
}
