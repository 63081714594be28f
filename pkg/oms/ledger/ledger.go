package ledger

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joripage/execution-engine/pkg/oms/model"
)

var (
	ErrOrderNotFound  = errors.New("orderID not found")
	ErrDuplicateOrder = errors.New("duplicate order")
	ErrOrderDone      = errors.New("order already terminal")
	ErrOverfill       = errors.New("fill exceeds remaining quantity")
)

// Ledger owns the authoritative order records, the append-only trade
// log and the derived execution metrics. Execution tasks never mutate
// an order directly; every state change goes through a Ledger method
// so cancellation and fills serialize on the same lock.
type Ledger struct {
	mu            sync.RWMutex
	orders        map[string]*model.Order
	orderIDs      []string // insertion order
	trades        []*model.Trade
	tradesByOrder map[string][]*model.Trade
	metrics       map[string]*model.ExecutionMetrics

	// done marks orders whose execution task scheduled no further
	// work; a PARTIALLY_FILLED order with done set is permanent.
	done map[string]bool

	rng *rand.Rand
}

func New(seed int64) *Ledger {
	return &Ledger{
		orders:        make(map[string]*model.Order),
		tradesByOrder: make(map[string][]*model.Trade),
		metrics:       make(map[string]*model.ExecutionMetrics),
		done:          make(map[string]bool),
		rng:           rand.New(rand.NewSource(seed)),
	}
}

// Insert records a newly created order in PENDING state.
func (l *Ledger) Insert(order *model.Order) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.orders[order.OrderID]; ok {
		return ErrDuplicateOrder
	}
	order.UpdatedAt = time.Now()
	l.orders[order.OrderID] = order
	l.orderIDs = append(l.orderIDs, order.OrderID)
	return nil
}

// Activate transitions PENDING -> SUBMITTED once the venue is chosen,
// capturing the arrival price benchmark.
func (l *Ledger) Activate(orderID, venueName string, arrivalPrice float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	order, ok := l.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	if order.Status != model.OrderStatusPending {
		return ErrOrderDone
	}
	order.Status = model.OrderStatusSubmitted
	order.Venue = venueName
	order.ArrivalPrice = arrivalPrice
	order.UpdatedAt = time.Now()
	return nil
}

// Reject transitions PENDING -> REJECTED. The order stays queryable.
func (l *Ledger) Reject(orderID string, cause model.TerminalCause) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	order, ok := l.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	if order.Status.IsTerminal() {
		return ErrOrderDone
	}
	order.Status = model.OrderStatusRejected
	order.Cause = cause
	order.UpdatedAt = time.Now()
	l.done[orderID] = true
	return nil
}

// Cancel moves a live order to CANCELLED. It fails when the order is
// already terminal or its execution task finished scheduling work.
// Any fill attempted after Cancel succeeds is refused by ApplyFill
// under the same lock.
func (l *Ledger) Cancel(orderID string, cause model.TerminalCause) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	order, ok := l.orders[orderID]
	if !ok {
		return false
	}
	if !order.CanCancel() || l.done[orderID] {
		return false
	}
	order.Status = model.OrderStatusCancelled
	order.Cause = cause
	order.UpdatedAt = time.Now()
	l.done[orderID] = true
	l.recomputeMetrics(order)
	return true
}

// ApplyFill appends a trade, updates the order's cumulative fill state
// and recomputes its execution metrics. The terminal check happens
// under the ledger lock so a cancelled order can never gain a trade.
func (l *Ledger) ApplyFill(orderID string, qty int64, price float64, venue *model.Venue) (*model.Trade, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	order, ok := l.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	if order.Status.IsTerminal() {
		return nil, ErrOrderDone
	}
	if qty <= 0 || qty > order.LeavesQuantity() {
		return nil, ErrOverfill
	}

	feeRate := 0.0
	venueName := order.Venue
	if venue != nil {
		feeRate = venue.FeeRate
		venueName = venue.Name
	}

	commission := float64(qty) * price * feeRate
	trade := &model.Trade{
		TradeID:    uuid.NewString(),
		OrderID:    orderID,
		Symbol:     order.Symbol,
		Side:       order.Side,
		Quantity:   qty,
		Price:      price,
		Venue:      venueName,
		Commission: commission,
		Timestamp:  time.Now(),
	}
	l.trades = append(l.trades, trade)
	l.tradesByOrder[orderID] = append(l.tradesByOrder[orderID], trade)

	oldQty := order.FilledQuantity
	newQty := oldQty + qty
	order.AvgFillPrice = (order.AvgFillPrice*float64(oldQty) + price*float64(qty)) / float64(newQty)
	order.FilledQuantity = newQty
	order.Commission += commission
	if newQty == order.Quantity {
		order.Status = model.OrderStatusFilled
		l.done[orderID] = true
	} else {
		order.Status = model.OrderStatusPartiallyFilled
	}
	order.UpdatedAt = trade.Timestamp

	l.recomputeMetrics(order)
	return trade, nil
}

// MarkDone records that the execution task scheduled no further work.
// A PARTIALLY_FILLED order in this state is permanent.
func (l *Ledger) MarkDone(orderID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.done[orderID] = true
	if order, ok := l.orders[orderID]; ok {
		l.recomputeMetrics(order)
	}
}

// SetBenchmark stores the realized TWAP/VWAP benchmark price and
// recomputes implementation shortfall against it.
func (l *Ledger) SetBenchmark(orderID string, price float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	order, ok := l.orders[orderID]
	if !ok {
		return
	}
	m := l.metricsFor(orderID)
	m.BenchmarkPrice = price
	l.recomputeMetricsInto(order, m)
}

// Get returns a snapshot copy of the order.
func (l *Ledger) Get(orderID string) (*model.Order, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	order, ok := l.orders[orderID]
	if !ok {
		return nil, false
	}
	cp := *order
	return &cp, true
}

// All returns snapshot copies of every order in insertion order.
func (l *Ledger) All() []*model.Order {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*model.Order, 0, len(l.orderIDs))
	for _, id := range l.orderIDs {
		if order, ok := l.orders[id]; ok {
			cp := *order
			out = append(out, &cp)
		}
	}
	return out
}

// Trades returns the full trade log. Trades are immutable so sharing
// the pointers is safe.
func (l *Ledger) Trades() []*model.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*model.Trade, len(l.trades))
	copy(out, l.trades)
	return out
}

func (l *Ledger) TradesForOrder(orderID string) []*model.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()

	src := l.tradesByOrder[orderID]
	out := make([]*model.Trade, len(src))
	copy(out, src)
	return out
}

// Metrics returns a snapshot of the per-order execution metrics.
func (l *Ledger) Metrics(orderID string) (*model.ExecutionMetrics, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	m, ok := l.metrics[orderID]
	if !ok {
		return nil, false
	}
	cp := *m
	return &cp, true
}

// HasPendingWork reports whether the order's execution task may still
// schedule slices or polls.
func (l *Ledger) HasPendingWork(orderID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return !l.done[orderID]
}

// Sweep drops terminal orders idle for longer than retention, together
// with their metrics, and returns the removed order ids. The trade log
// is append-only and never swept.
func (l *Ledger) Sweep(retention time.Duration) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-retention)
	var removed []string
	kept := l.orderIDs[:0]
	for _, id := range l.orderIDs {
		order := l.orders[id]
		if order != nil && order.IsEnd() && order.UpdatedAt.Before(cutoff) {
			delete(l.orders, id)
			delete(l.metrics, id)
			delete(l.done, id)
			removed = append(removed, id)
			continue
		}
		kept = append(kept, id)
	}
	l.orderIDs = kept
	return removed
}
