package model

import (
	"time"
)

type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "PENDING"
	OrderStatusSubmitted       OrderStatus = "SUBMITTED"
	OrderStatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	OrderStatusFilled          OrderStatus = "FILLED"
	OrderStatusCancelled       OrderStatus = "CANCELLED"
	OrderStatusRejected        OrderStatus = "REJECTED"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusFilled || s == OrderStatusCancelled || s == OrderStatusRejected
}

type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

type OrderType string

const (
	OrderTypeMarket    OrderType = "MARKET"
	OrderTypeLimit     OrderType = "LIMIT"
	OrderTypeStop      OrderType = "STOP"
	OrderTypeStopLimit OrderType = "STOP_LIMIT"
	OrderTypeIceberg   OrderType = "ICEBERG"
	OrderTypeTWAP      OrderType = "TWAP"
	OrderTypeVWAP      OrderType = "VWAP"
)

type OrderTimeInForce string

const (
	OrderTimeInForceDAY OrderTimeInForce = "DAY"
	OrderTimeInForceIOC OrderTimeInForce = "IOC"
	OrderTimeInForceFOK OrderTimeInForce = "FOK"
	OrderTimeInForceGTC OrderTimeInForce = "GTC"
)

// TerminalCause attributes a REJECTED or CANCELLED transition to
// exactly one origin.
type TerminalCause string

const (
	CauseRiskRejected  TerminalCause = "RISK_REJECTED"
	CauseExpired       TerminalCause = "EXPIRED"
	CauseUserCancelled TerminalCause = "USER_CANCELLED"
)

type Order struct {
	OrderID       string
	ClientOrderID string
	Account       string

	// init info
	Symbol          string
	Side            OrderSide
	Type            OrderType
	TimeInForce     OrderTimeInForce
	Quantity        int64
	Price           float64 // limit price, 0 when not set
	StopPrice       float64 // stop trigger, 0 when not set
	DisplayQuantity int64   // iceberg visible slice, 0 when not set
	TransactTime    time.Time

	// routing
	Venue string

	// calculated info, mutated only through the ledger
	Status         OrderStatus
	Cause          TerminalCause
	FilledQuantity int64
	AvgFillPrice   float64
	Commission     float64
	ArrivalPrice   float64
	UpdatedAt      time.Time
}

func (o *Order) LeavesQuantity() int64 {
	return o.Quantity - o.FilledQuantity
}

func (o *Order) CanCancel() bool {
	return o.Status == OrderStatusSubmitted || o.Status == OrderStatusPartiallyFilled
}

func (o *Order) IsEnd() bool {
	return o.Status.IsTerminal()
}
