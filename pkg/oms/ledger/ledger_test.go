package ledger

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/joripage/execution-engine/pkg/oms/model"
)

var testVenue = &model.Venue{Name: "NYSE", LatencyMs: 2, FeeRate: 0.002, LiquidityFactor: 1.0}

func newOrder(id string, qty int64) *model.Order {
	return &model.Order{
		OrderID:  id,
		Symbol:   "ABC",
		Side:     model.OrderSideBuy,
		Type:     model.OrderTypeMarket,
		Quantity: qty,
		Status:   model.OrderStatusPending,
	}
}

func mustInsertActive(t *testing.T, l *Ledger, id string, qty int64, arrival float64) {
	t.Helper()
	if err := l.Insert(newOrder(id, qty)); err != nil {
		t.Fatalf("insert %s: %v", id, err)
	}
	if err := l.Activate(id, testVenue.Name, arrival); err != nil {
		t.Fatalf("activate %s: %v", id, err)
	}
}

func TestInsertRejectsDuplicateID(t *testing.T) {
	l := New(1)
	if err := l.Insert(newOrder("O1", 100)); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := l.Insert(newOrder("O1", 200)); !errors.Is(err, ErrDuplicateOrder) {
		t.Errorf("expected ErrDuplicateOrder, got %v", err)
	}
}

func TestApplyFillAccumulatesState(t *testing.T) {
	l := New(1)
	mustInsertActive(t, l, "O1", 100, 100.0)

	if _, err := l.ApplyFill("O1", 40, 100.0, testVenue); err != nil {
		t.Fatalf("first fill: %v", err)
	}
	order, _ := l.Get("O1")
	if order.Status != model.OrderStatusPartiallyFilled {
		t.Errorf("expected PARTIALLY_FILLED after partial fill, got %s", order.Status)
	}

	if _, err := l.ApplyFill("O1", 60, 102.0, testVenue); err != nil {
		t.Fatalf("second fill: %v", err)
	}
	order, _ = l.Get("O1")
	if order.Status != model.OrderStatusFilled {
		t.Errorf("expected FILLED at full quantity, got %s", order.Status)
	}
	if order.FilledQuantity != 100 {
		t.Errorf("expected filled 100, got %d", order.FilledQuantity)
	}

	// volume-weighted average of 40@100 and 60@102
	wantAvg := (40*100.0 + 60*102.0) / 100.0
	if math.Abs(order.AvgFillPrice-wantAvg) > 1e-9 {
		t.Errorf("expected avg %.4f, got %.4f", wantAvg, order.AvgFillPrice)
	}

	wantComm := 40*100.0*testVenue.FeeRate + 60*102.0*testVenue.FeeRate
	if math.Abs(order.Commission-wantComm) > 1e-9 {
		t.Errorf("expected commission %.4f, got %.4f", wantComm, order.Commission)
	}

	if got := len(l.TradesForOrder("O1")); got != 2 {
		t.Errorf("expected 2 trades, got %d", got)
	}
}

func TestApplyFillRefusesOverfill(t *testing.T) {
	l := New(1)
	mustInsertActive(t, l, "O1", 100, 100.0)

	if _, err := l.ApplyFill("O1", 101, 100.0, testVenue); !errors.Is(err, ErrOverfill) {
		t.Errorf("fill above quantity: expected ErrOverfill, got %v", err)
	}
	if _, err := l.ApplyFill("O1", 70, 100.0, testVenue); err != nil {
		t.Fatalf("partial fill: %v", err)
	}
	if _, err := l.ApplyFill("O1", 31, 100.0, testVenue); !errors.Is(err, ErrOverfill) {
		t.Errorf("fill above remaining: expected ErrOverfill, got %v", err)
	}
	if _, err := l.ApplyFill("O1", 0, 100.0, testVenue); !errors.Is(err, ErrOverfill) {
		t.Errorf("zero fill: expected ErrOverfill, got %v", err)
	}
}

func TestFilledOnlyAtExactQuantity(t *testing.T) {
	l := New(1)
	mustInsertActive(t, l, "O1", 100, 100.0)

	l.ApplyFill("O1", 99, 100.0, testVenue)
	order, _ := l.Get("O1")
	if order.Status == model.OrderStatusFilled {
		t.Fatalf("99/100 must not be FILLED")
	}
	l.ApplyFill("O1", 1, 100.0, testVenue)
	order, _ = l.Get("O1")
	if order.Status != model.OrderStatusFilled {
		t.Errorf("100/100 must be FILLED, got %s", order.Status)
	}
	if order.FilledQuantity != order.Quantity {
		t.Errorf("FILLED order must have filled == requested")
	}
}

func TestCancelBlocksLaterFills(t *testing.T) {
	l := New(1)
	mustInsertActive(t, l, "O1", 100, 100.0)
	l.ApplyFill("O1", 30, 100.0, testVenue)

	if !l.Cancel("O1", model.CauseUserCancelled) {
		t.Fatalf("live order should cancel")
	}
	order, _ := l.Get("O1")
	if order.Status != model.OrderStatusCancelled || order.Cause != model.CauseUserCancelled {
		t.Errorf("expected CANCELLED/USER_CANCELLED, got %s/%s", order.Status, order.Cause)
	}
	if order.FilledQuantity != 30 {
		t.Errorf("cancel must preserve partial fills, got %d", order.FilledQuantity)
	}

	// a racing execution task must be refused
	if _, err := l.ApplyFill("O1", 10, 100.0, testVenue); !errors.Is(err, ErrOrderDone) {
		t.Errorf("fill after cancel: expected ErrOrderDone, got %v", err)
	}
	if got := len(l.TradesForOrder("O1")); got != 1 {
		t.Errorf("trade log grew after cancel: %d trades", got)
	}
}

func TestCancelRefusesTerminalAndDoneOrders(t *testing.T) {
	l := New(1)
	mustInsertActive(t, l, "O1", 100, 100.0)
	l.ApplyFill("O1", 100, 100.0, testVenue)
	if l.Cancel("O1", model.CauseUserCancelled) {
		t.Errorf("FILLED order must not cancel")
	}

	mustInsertActive(t, l, "O2", 100, 100.0)
	l.ApplyFill("O2", 40, 100.0, testVenue)
	l.MarkDone("O2")
	if l.Cancel("O2", model.CauseUserCancelled) {
		t.Errorf("partially filled order with no pending work must not cancel")
	}
	if l.HasPendingWork("O2") {
		t.Errorf("MarkDone should clear pending work")
	}

	if l.Cancel("missing", model.CauseUserCancelled) {
		t.Errorf("unknown order must not cancel")
	}
}

func TestRejectKeepsOrderQueryable(t *testing.T) {
	l := New(1)
	l.Insert(newOrder("O1", 100))
	if err := l.Reject("O1", model.CauseRiskRejected); err != nil {
		t.Fatalf("reject: %v", err)
	}
	order, ok := l.Get("O1")
	if !ok {
		t.Fatalf("rejected order must stay queryable")
	}
	if order.Status != model.OrderStatusRejected || order.Cause != model.CauseRiskRejected {
		t.Errorf("expected REJECTED/RISK_REJECTED, got %s/%s", order.Status, order.Cause)
	}
}

func TestGetReturnsSnapshot(t *testing.T) {
	l := New(1)
	mustInsertActive(t, l, "O1", 100, 100.0)

	snap, _ := l.Get("O1")
	snap.Status = model.OrderStatusCancelled

	cur, _ := l.Get("O1")
	if cur.Status != model.OrderStatusSubmitted {
		t.Errorf("mutating the snapshot leaked into the ledger: %s", cur.Status)
	}
}

func TestAllPreservesInsertionOrder(t *testing.T) {
	l := New(1)
	for _, id := range []string{"O3", "O1", "O2"} {
		l.Insert(newOrder(id, 10))
	}
	got := l.All()
	want := []string{"O3", "O1", "O2"}
	for i, o := range got {
		if o.OrderID != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], o.OrderID)
		}
	}
}

func TestSweepDropsIdleTerminalOrders(t *testing.T) {
	l := New(1)
	mustInsertActive(t, l, "O1", 100, 100.0)
	l.ApplyFill("O1", 100, 100.0, testVenue)
	mustInsertActive(t, l, "O2", 100, 100.0) // still live

	time.Sleep(20 * time.Millisecond)
	removed := l.Sweep(10 * time.Millisecond)
	if len(removed) != 1 || removed[0] != "O1" {
		t.Fatalf("expected sweep to remove O1, got %v", removed)
	}
	if _, ok := l.Get("O1"); ok {
		t.Errorf("swept order still present")
	}
	if _, ok := l.Get("O2"); !ok {
		t.Errorf("live order was swept")
	}
	if got := len(l.Trades()); got != 1 {
		t.Errorf("sweep must not touch the trade log, got %d trades", got)
	}
}
