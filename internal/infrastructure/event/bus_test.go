package event

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/medrent/backend/internal/domain/shared"
)

type countingHandler struct {
	types []string
	seen  []string
}

func (h *countingHandler) Handle(ctx context.Context, ev shared.DomainEvent) error {
	h.seen = append(h.seen, ev.EventType())
	return nil
}

func (h *countingHandler) EventTypes() []string {
	return h.types
}

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "SalesOrder", uuid.New(), uuid.New()),
	}
}

func TestInMemoryEventBus_TypedSubscription(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &countingHandler{types: []string{"sales_order.submitted"}}
	bus.Subscribe(h)

	err := bus.Publish(context.Background(),
		newTestEvent("sales_order.submitted"),
		newTestEvent("sales_order.cancelled"),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"sales_order.submitted"}, h.seen)
}

func TestInMemoryEventBus_CatchAll(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &countingHandler{}
	bus.Subscribe(h)

	err := bus.Publish(context.Background(),
		newTestEvent("sales_order.submitted"),
		newTestEvent("sales_order.cancelled"),
	)
	require.NoError(t, err)
	assert.Len(t, h.seen, 2)
}

func TestAuditLogHandler_LogsEveryEvent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core)

	bus := NewInMemoryEventBus(log)
	bus.Subscribe(NewAuditLogHandler(log))

	ev := newTestEvent("sales_order.submitted")
	require.NoError(t, bus.Publish(context.Background(), ev))

	entries := logs.FilterMessage("domain event").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "sales_order.submitted", fields["event_type"])
	assert.Equal(t, ev.AggregateID().String(), fields["aggregate_id"])
}
