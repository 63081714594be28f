package model

import (
	"time"
)

// Trade is an immutable fill fact. It is never revised after creation.
type Trade struct {
	TradeID    string
	OrderID    string
	Symbol     string
	Side       OrderSide
	Quantity   int64
	Price      float64
	Venue      string
	Commission float64
	Timestamp  time.Time
}
