package eventstore

import (
	"testing"
	"time"

	"github.com/joripage/execution-engine/pkg/oms/model"
)

func TestEventHistoryPerOrder(t *testing.T) {
	s := NewInMemoryEventStore()

	order := model.Order{OrderID: "O1", ClientOrderID: "C1", Status: model.OrderStatusSubmitted}
	s.AddEvent(model.NewOrderEvent(order, model.ExecTypeNew, time.Now()))
	order.Status = model.OrderStatusFilled
	s.AddEvent(model.NewOrderEvent(order, model.ExecTypeTrade, time.Now()))

	events := s.EventsForOrder("O1")
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].ExecType != model.ExecTypeNew || events[1].ExecType != model.ExecTypeTrade {
		t.Errorf("events out of order: %s, %s", events[0].ExecType, events[1].ExecType)
	}

	if got := s.EventsForOrder("missing"); len(got) != 0 {
		t.Errorf("unknown order should have no events, got %d", len(got))
	}
}

func TestClientOrderIDTracking(t *testing.T) {
	s := NewInMemoryEventStore()
	if !s.TrackClientOrderID("C1", "O1") {
		t.Fatalf("first reservation should win")
	}

	if got := s.GetOrderID("C1"); got != "O1" {
		t.Errorf("expected O1, got %q", got)
	}
	if got := s.GetOrderID("unknown"); got != "" {
		t.Errorf("unknown client id should map to empty, got %q", got)
	}

	if s.TrackClientOrderID("C1", "O2") {
		t.Errorf("reservation for a taken client id must be refused")
	}
	if got := s.GetOrderID("C1"); got != "O1" {
		t.Errorf("refused reservation must not overwrite, got %q", got)
	}
	if !s.TrackClientOrderID("C1", "O1") {
		t.Errorf("re-reserving the same pair should stay true")
	}
}

func TestDeleteByOrderIDClearsBothMappings(t *testing.T) {
	s := NewInMemoryEventStore()
	order := model.Order{OrderID: "O1", ClientOrderID: "C1", Status: model.OrderStatusFilled}
	s.AddEvent(model.NewOrderEvent(order, model.ExecTypeTrade, time.Now()))

	s.DeleteByOrderID("O1")
	if got := s.EventsForOrder("O1"); len(got) != 0 {
		t.Errorf("events survived deletion")
	}
	if got := s.GetOrderID("C1"); got != "" {
		t.Errorf("client id mapping survived deletion, got %q", got)
	}
}
