package model

import (
	"fmt"
	"time"
)

type OrderExecType string

const (
	ExecTypeNew      OrderExecType = "New"
	ExecTypeTrade    OrderExecType = "Trade"
	ExecTypeCanceled OrderExecType = "Canceled"
	ExecTypeRejected OrderExecType = "Rejected"
	ExecTypeExpired  OrderExecType = "Expired"
)

// OrderEvent records one status transition. The event history is how a
// REJECTED or CANCELLED order stays attributable to its cause after
// the fact.
type OrderEvent struct {
	EventID       string
	OrderID       string
	ClientOrderID string
	ExecType      OrderExecType
	Status        OrderStatus
	Cause         TerminalCause
	Qty           int64
	Price         float64
	Timestamp     time.Time

	// Trade is set on ExecTypeTrade events only. It travels in the
	// serialized event so the journal worker can persist the fill, but
	// it is not a column of the order_events table itself.
	Trade *Trade `gorm:"-"`
}

func NewOrderEvent(order Order, execType OrderExecType, ts time.Time) *OrderEvent {
	return &OrderEvent{
		EventID:       NewEventID(order.OrderID, order.Status, ts),
		OrderID:       order.OrderID,
		ClientOrderID: order.ClientOrderID,
		ExecType:      execType,
		Status:        order.Status,
		Cause:         order.Cause,
		Qty:           order.FilledQuantity,
		Price:         order.AvgFillPrice,
		Timestamp:     ts,
	}
}

func NewEventID(orderID string, status OrderStatus, ts time.Time) string {
	return fmt.Sprintf("%s-%s-%d", orderID, status, ts.UnixNano())
}
