package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrMalformedRequest marks a request that is missing a field the
// declared order type requires. Such a request never enters the ledger.
var ErrMalformedRequest = errors.New("malformed order request")

// OrderRequest is the submission contract consumed from the strategy
// layer. Prices and quantities arrive as decimals and are converted at
// the facade boundary.
type OrderRequest struct {
	ClientOrderID   string
	Account         string
	Symbol          string
	Side            OrderSide
	Type            OrderType
	TimeInForce     OrderTimeInForce
	Quantity        decimal.Decimal
	Price           decimal.Decimal
	StopPrice       decimal.Decimal
	DisplayQuantity decimal.Decimal
	TransactTime    time.Time
}

func (r *OrderRequest) needsPrice() bool {
	switch r.Type {
	case OrderTypeLimit, OrderTypeStopLimit, OrderTypeIceberg:
		return true
	}
	return false
}

func (r *OrderRequest) needsStopPrice() bool {
	return r.Type == OrderTypeStop || r.Type == OrderTypeStopLimit
}

// Validate fails fast on contract violations before the order is
// assigned an identity.
func (r *OrderRequest) Validate() error {
	if r.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrMalformedRequest)
	}
	if r.Side != OrderSideBuy && r.Side != OrderSideSell {
		return fmt.Errorf("%w: invalid side %q", ErrMalformedRequest, r.Side)
	}
	switch r.Type {
	case OrderTypeMarket, OrderTypeLimit, OrderTypeStop, OrderTypeStopLimit,
		OrderTypeIceberg, OrderTypeTWAP, OrderTypeVWAP:
	default:
		return fmt.Errorf("%w: invalid order type %q", ErrMalformedRequest, r.Type)
	}
	switch r.TimeInForce {
	case "", OrderTimeInForceDAY, OrderTimeInForceIOC, OrderTimeInForceFOK, OrderTimeInForceGTC:
	default:
		return fmt.Errorf("%w: invalid time in force %q", ErrMalformedRequest, r.TimeInForce)
	}
	if r.Quantity.IntPart() <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrMalformedRequest)
	}
	if r.needsPrice() && !r.Price.IsPositive() {
		return fmt.Errorf("%w: limit price required for %s order", ErrMalformedRequest, r.Type)
	}
	if r.needsStopPrice() && !r.StopPrice.IsPositive() {
		return fmt.Errorf("%w: stop price required for %s order", ErrMalformedRequest, r.Type)
	}
	if r.Type == OrderTypeIceberg && r.DisplayQuantity.IntPart() > r.Quantity.IntPart() {
		return fmt.Errorf("%w: display quantity exceeds total quantity", ErrMalformedRequest)
	}
	return nil
}

// ToOrder converts the decimal request into the internal order record.
// Identity fields (OrderID, Status, ArrivalPrice) are set by the facade.
func (r *OrderRequest) ToOrder() *Order {
	tif := r.TimeInForce
	if tif == "" {
		tif = OrderTimeInForceGTC
	}
	return &Order{
		ClientOrderID:   r.ClientOrderID,
		Account:         r.Account,
		Symbol:          r.Symbol,
		Side:            r.Side,
		Type:            r.Type,
		TimeInForce:     tif,
		Quantity:        r.Quantity.IntPart(),
		Price:           r.Price.InexactFloat64(),
		StopPrice:       r.StopPrice.InexactFloat64(),
		DisplayQuantity: r.DisplayQuantity.IntPart(),
		TransactTime:    r.TransactTime,
		Status:          OrderStatusPending,
	}
}
