package eventstore

import "github.com/joripage/execution-engine/pkg/oms/model"

type EventStore interface {
	AddEvent(ev *model.OrderEvent)
	EventsForOrder(orderID string) []*model.OrderEvent
	// TrackClientOrderID reserves the client id for the order. It
	// returns false when the id is already taken by another order.
	TrackClientOrderID(clientOrderID, orderID string) bool
	GetOrderID(clientOrderID string) string
	DeleteByOrderID(orderID string)
}
