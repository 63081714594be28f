package ledger

import (
	"math"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/joripage/execution-engine/pkg/oms/model"
)

// fixed simulated opportunity-cost term used in implementation
// shortfall, in fractional terms (5 bps)
const opportunityCost = 0.0005

// metricsFor returns the live metrics record, creating it on first
// use. Caller holds the write lock.
func (l *Ledger) metricsFor(orderID string) *model.ExecutionMetrics {
	m, ok := l.metrics[orderID]
	if !ok {
		m = &model.ExecutionMetrics{OrderID: orderID}
		l.metrics[orderID] = m
	}
	return m
}

// recomputeMetrics derives execution-quality data from the order's
// current fill state. Caller holds the write lock.
func (l *Ledger) recomputeMetrics(order *model.Order) {
	l.recomputeMetricsInto(order, l.metricsFor(order.OrderID))
}

func (l *Ledger) recomputeMetricsInto(order *model.Order, m *model.ExecutionMetrics) {
	m.FillRate = 0
	if order.Quantity > 0 {
		m.FillRate = float64(order.FilledQuantity) / float64(order.Quantity)
	}

	if order.FilledQuantity > 0 && order.ArrivalPrice > 0 {
		m.Slippage = math.Abs(order.AvgFillPrice-order.ArrivalPrice) / order.ArrivalPrice
	}

	// benchmark-relative shortfall for TWAP/VWAP, arrival-relative
	// otherwise
	base := m.Slippage
	if m.BenchmarkPrice > 0 && order.FilledQuantity > 0 {
		base = math.Abs(order.AvgFillPrice-m.BenchmarkPrice) / m.BenchmarkPrice
	}

	commissionFrac := 0.0
	if notional := float64(order.FilledQuantity) * order.AvgFillPrice; notional > 0 {
		commissionFrac = order.Commission / notional
	}
	m.ImplementationShortfall = base + opportunityCost + commissionFrac

	// independent simulated estimates
	m.MarketImpact = l.rng.Float64() * 0.001
	m.TimingCost = l.rng.Float64() * 0.0005

	m.UpdatedAt = time.Now()
}

// Report aggregates execution quality across all orders.
type Report struct {
	Orders          int
	Filled          int
	PartiallyFilled int
	Cancelled       int
	Rejected        int
	Trades          int
	TotalCommission float64

	MeanSlippage   float64
	MedianSlippage float64
	P95Slippage    float64
	MeanFillRate   float64
}

// Report summarizes the ledger. Slippage statistics cover orders with
// at least one fill.
func (l *Ledger) Report() *Report {
	l.mu.RLock()
	defer l.mu.RUnlock()

	r := &Report{Trades: len(l.trades)}
	var slippages, fillRates []float64
	for _, id := range l.orderIDs {
		order, ok := l.orders[id]
		if !ok {
			continue
		}
		r.Orders++
		r.TotalCommission += order.Commission
		switch order.Status {
		case model.OrderStatusFilled:
			r.Filled++
		case model.OrderStatusPartiallyFilled:
			r.PartiallyFilled++
		case model.OrderStatusCancelled:
			r.Cancelled++
		case model.OrderStatusRejected:
			r.Rejected++
		}
		if m, ok := l.metrics[id]; ok {
			fillRates = append(fillRates, m.FillRate)
			if order.FilledQuantity > 0 {
				slippages = append(slippages, m.Slippage)
			}
		}
	}

	if len(slippages) > 0 {
		r.MeanSlippage, _ = stats.Mean(slippages)
		r.MedianSlippage, _ = stats.Median(slippages)
		r.P95Slippage, _ = stats.Percentile(slippages, 95)
	}
	if len(fillRates) > 0 {
		r.MeanFillRate, _ = stats.Mean(fillRates)
	}
	return r
}
