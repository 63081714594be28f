package eventstore

import (
	"sync"

	"github.com/joripage/execution-engine/pkg/oms/model"
)

type InMemoryEventStore struct {
	mu          sync.RWMutex
	events      map[string][]*model.OrderEvent
	orderID     map[string]string // ClientOrderID -> OrderID
	clientOrder map[string]string // OrderID -> ClientOrderID
}

func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{
		events:      make(map[string][]*model.OrderEvent),
		orderID:     make(map[string]string),
		clientOrder: make(map[string]string),
	}
}

func (s *InMemoryEventStore) AddEvent(ev *model.OrderEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events[ev.OrderID] = append(s.events[ev.OrderID], ev)
	if ev.ClientOrderID != "" {
		s.trackLocked(ev.ClientOrderID, ev.OrderID)
	}
}

// TrackClientOrderID maps a client-supplied identifier to its order so
// replays of the same ClientOrderID can be refused. The check and the
// reservation happen under one lock, which keeps concurrent submits
// with the same id down to a single winner.
func (s *InMemoryEventStore) TrackClientOrderID(clientOrderID, orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.orderID[clientOrderID]; ok && existing != orderID {
		return false
	}
	s.trackLocked(clientOrderID, orderID)
	return true
}

func (s *InMemoryEventStore) trackLocked(clientOrderID, orderID string) {
	s.orderID[clientOrderID] = orderID
	s.clientOrder[orderID] = clientOrderID
}

func (s *InMemoryEventStore) GetOrderID(clientOrderID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orderID[clientOrderID]
}

func (s *InMemoryEventStore) EventsForOrder(orderID string) []*model.OrderEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.events[orderID]
	out := make([]*model.OrderEvent, len(src))
	copy(out, src)
	return out
}

func (s *InMemoryEventStore) DeleteByOrderID(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.events, orderID)
	if clOrdID, ok := s.clientOrder[orderID]; ok {
		delete(s.orderID, clOrdID)
		delete(s.clientOrder, orderID)
	}
}
