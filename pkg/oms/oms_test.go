package oms

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joripage/execution-engine/pkg/marketdata"
	"github.com/joripage/execution-engine/pkg/oms/execution"
	"github.com/joripage/execution-engine/pkg/oms/model"
	"github.com/joripage/execution-engine/pkg/oms/risk"
)

func newTestOMS(t *testing.T) (*OMS, *marketdata.Simulator) {
	t.Helper()

	sim := marketdata.NewSimulator(1)
	sim.SetPrice("ABC", 100.0)

	cfg := &Config{
		Risk: &risk.Config{
			MaxPositionSize:    50_000,
			MaxOrderValue:      100_000_000,
			PriceCollar:        0.90,
			MaxOrdersPerWindow: 1000,
			WindowMs:           1000,
		},
		Execution: &execution.Config{
			LimitPollIntervalMs:  5,
			LimitFillProbability: 1.0,
			DayWindowMs:          100,
			IOCWindowMs:          40,
			FOKWindowMs:          40,
			GTCWindowMs:          5000,
			IcebergMinDelayMs:    1,
			IcebergMaxDelayMs:    3,
			TWAPSlices:           10,
			TWAPHorizonMs:        100,
			VWAPSlices:           10,
			VWAPHorizonMs:        100,
			Seed:                 1,
		},
	}

	engine := NewOMS(cfg, sim)
	engine.Start(context.Background())
	t.Cleanup(engine.Stop)
	return engine, sim
}

func marketRequest(clientID string, qty int64) *model.OrderRequest {
	return &model.OrderRequest{
		ClientOrderID: clientID,
		Account:       "ACC1",
		Symbol:        "ABC",
		Side:          model.OrderSideBuy,
		Type:          model.OrderTypeMarket,
		Quantity:      decimal.NewFromInt(qty),
	}
}

func waitForStatus(t *testing.T, engine *OMS, orderID string, want model.OrderStatus) *model.Order {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		order, err := engine.GetOrder(orderID)
		if err == nil && order.Status == want {
			return order
		}
		if time.Now().After(deadline) {
			t.Fatalf("order %s never reached %s, last: %+v (err %v)", orderID, want, order, err)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestSubmitMarketOrderLifecycle(t *testing.T) {
	engine, _ := newTestOMS(t)

	orderID, err := engine.SubmitOrder(context.Background(), marketRequest("C1", 1000))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	order := waitForStatus(t, engine, orderID, model.OrderStatusFilled)
	if order.FilledQuantity != 1000 {
		t.Errorf("expected full fill, got %d", order.FilledQuantity)
	}
	if order.Venue == "" {
		t.Errorf("filled order must carry its venue")
	}
	if order.AvgFillPrice <= 0 || order.Commission <= 0 {
		t.Errorf("fill must produce price and commission, got %f/%f", order.AvgFillPrice, order.Commission)
	}

	if got := len(engine.GetTradesForOrder(orderID)); got != 1 {
		t.Errorf("expected 1 trade, got %d", got)
	}

	m, err := engine.GetExecutionMetrics(orderID)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	if m.FillRate != 1.0 {
		t.Errorf("expected fill rate 1.0, got %f", m.FillRate)
	}

	byClient, err := engine.GetOrderByClientID("C1")
	if err != nil || byClient.OrderID != orderID {
		t.Errorf("client id lookup failed: %v", err)
	}

	events := engine.GetOrderEvents(orderID)
	if len(events) < 2 {
		t.Fatalf("expected New and Trade events, got %d", len(events))
	}
	if events[0].ExecType != model.ExecTypeNew {
		t.Errorf("first event should be New, got %s", events[0].ExecType)
	}
	last := events[len(events)-1]
	if last.ExecType != model.ExecTypeTrade || last.Status != model.OrderStatusFilled {
		t.Errorf("last event should be the terminal Trade, got %s/%s", last.ExecType, last.Status)
	}
}

func TestMalformedRequestNeverEntersLedger(t *testing.T) {
	engine, _ := newTestOMS(t)

	req := marketRequest("C1", 100)
	req.Type = model.OrderTypeLimit // price missing

	orderID, err := engine.SubmitOrder(context.Background(), req)
	if !errors.Is(err, ErrMalformedRequest) {
		t.Fatalf("expected ErrMalformedRequest, got %v", err)
	}
	if orderID != "" {
		t.Errorf("malformed request must not get an id, got %q", orderID)
	}
	if got := len(engine.GetAllOrders()); got != 0 {
		t.Errorf("malformed request leaked into the ledger: %d orders", got)
	}
}

func TestRiskRejectedOrderStaysQueryable(t *testing.T) {
	engine, _ := newTestOMS(t)

	orderID, err := engine.SubmitOrder(context.Background(), marketRequest("C1", 1_000_000))
	if !errors.Is(err, ErrRiskRejected) {
		t.Fatalf("expected ErrRiskRejected, got %v", err)
	}
	if orderID == "" {
		t.Fatalf("rejected order must still get an id")
	}

	order, err := engine.GetOrder(orderID)
	if err != nil {
		t.Fatalf("rejected order must stay queryable: %v", err)
	}
	if order.Status != model.OrderStatusRejected || order.Cause != model.CauseRiskRejected {
		t.Errorf("expected REJECTED/RISK_REJECTED, got %s/%s", order.Status, order.Cause)
	}

	events := engine.GetOrderEvents(orderID)
	if len(events) != 1 || events[0].ExecType != model.ExecTypeRejected {
		t.Errorf("expected a single Rejected event, got %+v", events)
	}
	if got := len(engine.GetTradesForOrder(orderID)); got != 0 {
		t.Errorf("rejected order must have no trades, got %d", got)
	}
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []*model.OrderEvent
}

func (p *capturingPublisher) Publish(_ context.Context, ev *model.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *capturingPublisher) published() []*model.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*model.OrderEvent, len(p.events))
	copy(out, p.events)
	return out
}

func TestPublishedFillEventsCarryTheirTrade(t *testing.T) {
	engine, _ := newTestOMS(t)
	pub := &capturingPublisher{}
	engine.SetPublisher(pub)

	orderID, err := engine.SubmitOrder(context.Background(), marketRequest("C1", 1000))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	waitForStatus(t, engine, orderID, model.OrderStatusFilled)

	var fills int
	for _, ev := range pub.published() {
		switch ev.ExecType {
		case model.ExecTypeTrade:
			fills++
			if ev.Trade == nil {
				t.Fatalf("fill event %s published without its trade", ev.EventID)
			}
			if ev.Trade.OrderID != orderID || ev.Trade.Quantity != 1000 {
				t.Errorf("published trade mismatch: %+v", ev.Trade)
			}
		default:
			if ev.Trade != nil {
				t.Errorf("%s event must not carry a trade", ev.ExecType)
			}
		}
	}
	if fills != 1 {
		t.Errorf("expected 1 published fill event, got %d", fills)
	}
}

func TestDuplicateClientOrderIDRefused(t *testing.T) {
	engine, _ := newTestOMS(t)

	if _, err := engine.SubmitOrder(context.Background(), marketRequest("C1", 100)); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := engine.SubmitOrder(context.Background(), marketRequest("C1", 100))
	if !errors.Is(err, ErrDuplicateOrder) {
		t.Errorf("expected ErrDuplicateOrder, got %v", err)
	}
}

func TestConcurrentDuplicateClientOrderIDSingleWinner(t *testing.T) {
	engine, _ := newTestOMS(t)

	const submitters = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0

	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.SubmitOrder(context.Background(), marketRequest("C1", 100))
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			} else if !errors.Is(err, ErrDuplicateOrder) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if accepted != 1 {
		t.Errorf("expected exactly one accepted submit, got %d", accepted)
	}
	if got := len(engine.GetAllOrders()); got != 1 {
		t.Errorf("expected exactly one order in the ledger, got %d", got)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	sim := marketdata.NewSimulator(1)
	engine := NewOMS(nil, sim)
	engine.Start(context.Background())

	engine.Stop()
	engine.Stop()
}

func TestCancelOrderLifecycle(t *testing.T) {
	engine, sim := newTestOMS(t)
	sim.SetPrice("ABC", 100.0)

	// a buy limit well below the tape never crosses within GTC
	req := marketRequest("C1", 500)
	req.Type = model.OrderTypeLimit
	req.Price = decimal.NewFromFloat(20.0)
	req.TimeInForce = model.OrderTimeInForceGTC

	orderID, err := engine.SubmitOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	waitForStatus(t, engine, orderID, model.OrderStatusSubmitted)

	if !engine.CancelOrder(context.Background(), orderID) {
		t.Fatalf("live order should cancel")
	}
	order := waitForStatus(t, engine, orderID, model.OrderStatusCancelled)
	if order.Cause != model.CauseUserCancelled {
		t.Errorf("expected USER_CANCELLED, got %s", order.Cause)
	}

	if engine.CancelOrder(context.Background(), orderID) {
		t.Errorf("second cancel must fail")
	}

	events := engine.GetOrderEvents(orderID)
	last := events[len(events)-1]
	if last.ExecType != model.ExecTypeCanceled {
		t.Errorf("expected Canceled as the last event, got %s", last.ExecType)
	}
}

func TestCancelFilledOrderFails(t *testing.T) {
	engine, _ := newTestOMS(t)

	orderID, err := engine.SubmitOrder(context.Background(), marketRequest("C1", 100))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	waitForStatus(t, engine, orderID, model.OrderStatusFilled)

	if engine.CancelOrder(context.Background(), orderID) {
		t.Errorf("FILLED order must not cancel")
	}
	if got, _ := engine.GetOrder(orderID); got.Status != model.OrderStatusFilled {
		t.Errorf("failed cancel must not change status, got %s", got.Status)
	}
}

func TestCancelUnknownOrderFails(t *testing.T) {
	engine, _ := newTestOMS(t)
	if engine.CancelOrder(context.Background(), "no-such-order") {
		t.Errorf("unknown order must not cancel")
	}
	if _, err := engine.GetOrder("no-such-order"); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}

type capturingReporter struct {
	mu      sync.Mutex
	reports []model.Order
}

func (r *capturingReporter) OnOrderReport(_ context.Context, order model.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, order)
}

func (r *capturingReporter) statuses() []model.OrderStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.OrderStatus, len(r.reports))
	for i, o := range r.reports {
		out[i] = o.Status
	}
	return out
}

func TestReporterReceivesTransitions(t *testing.T) {
	engine, _ := newTestOMS(t)
	rep := &capturingReporter{}
	engine.SetReporter(rep)

	orderID, err := engine.SubmitOrder(context.Background(), marketRequest("C1", 100))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	waitForStatus(t, engine, orderID, model.OrderStatusFilled)

	statuses := rep.statuses()
	if len(statuses) < 2 {
		t.Fatalf("expected submit and fill reports, got %v", statuses)
	}
	if statuses[0] != model.OrderStatusSubmitted {
		t.Errorf("first report should be SUBMITTED, got %s", statuses[0])
	}
	if statuses[len(statuses)-1] != model.OrderStatusFilled {
		t.Errorf("last report should be FILLED, got %s", statuses[len(statuses)-1])
	}
}

func TestTWAPThroughFacade(t *testing.T) {
	engine, _ := newTestOMS(t)

	req := marketRequest("C1", 1000)
	req.Type = model.OrderTypeTWAP

	orderID, err := engine.SubmitOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	order := waitForStatus(t, engine, orderID, model.OrderStatusFilled)
	if order.FilledQuantity != 1000 {
		t.Errorf("expected full fill, got %d", order.FilledQuantity)
	}
	if got := len(engine.GetTradesForOrder(orderID)); got != 10 {
		t.Errorf("expected 10 slices, got %d", got)
	}

	m, _ := engine.GetExecutionMetrics(orderID)
	if m == nil || m.BenchmarkPrice <= 0 {
		t.Errorf("TWAP must record a benchmark, got %+v", m)
	}
}

func TestReportCountsOrders(t *testing.T) {
	engine, _ := newTestOMS(t)

	id1, err := engine.SubmitOrder(context.Background(), marketRequest("C1", 100))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	waitForStatus(t, engine, id1, model.OrderStatusFilled)

	if _, err := engine.SubmitOrder(context.Background(), marketRequest("C2", 1_000_000)); !errors.Is(err, ErrRiskRejected) {
		t.Fatalf("expected risk rejection, got %v", err)
	}

	r := engine.Report()
	if r.Orders != 2 || r.Filled != 1 || r.Rejected != 1 {
		t.Errorf("report counts wrong: %+v", r)
	}
	if r.Trades != 1 {
		t.Errorf("expected 1 trade in the report, got %d", r.Trades)
	}
	if r.MeanFillRate <= 0 {
		t.Errorf("expected positive mean fill rate")
	}
}

func TestOrdersRetainPartialFillOnCancel(t *testing.T) {
	engine, sim := newTestOMS(t)
	sim.SetPrice("ABC", 100.0)

	req := marketRequest("C1", 40_000)
	req.Type = model.OrderTypeIceberg
	req.Price = decimal.NewFromFloat(100.0)
	req.DisplayQuantity = decimal.NewFromInt(50)

	orderID, err := engine.SubmitOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		if order, _ := engine.GetOrder(orderID); order != nil && order.FilledQuantity > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("no slice landed in time")
		}
		time.Sleep(time.Millisecond)
	}

	if !engine.CancelOrder(context.Background(), orderID) {
		t.Fatalf("partially filled iceberg should cancel")
	}
	order := waitForStatus(t, engine, orderID, model.OrderStatusCancelled)
	if order.FilledQuantity == 0 || order.FilledQuantity >= order.Quantity {
		t.Errorf("cancel should preserve the partial fill, got %d of %d", order.FilledQuantity, order.Quantity)
	}

	trades := engine.GetTradesForOrder(orderID)
	var sum int64
	for _, tr := range trades {
		sum += tr.Quantity
	}
	if sum != order.FilledQuantity {
		t.Errorf("trade quantities sum to %d but order filled %d", sum, order.FilledQuantity)
	}
}
