package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/medrent/backend/internal/domain/shared"
)

// AuditLogHandler writes every domain event to the structured log,
// giving operations a flat audit trail of order activity.
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates a new AuditLogHandler
func NewAuditLogHandler(logger *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: logger}
}

// Handle logs the event with its aggregate coordinates
func (h *AuditLogHandler) Handle(ctx context.Context, ev shared.DomainEvent) error {
	h.logger.Info("domain event",
		zap.String("event_type", ev.EventType()),
		zap.String("event_id", ev.EventID().String()),
		zap.String("aggregate_type", ev.AggregateType()),
		zap.String("aggregate_id", ev.AggregateID().String()),
		zap.String("company_id", ev.CompanyID().String()),
		zap.Time("occurred_at", ev.OccurredAt()),
	)
	return nil
}

// EventTypes returns nil so the handler receives every event
func (h *AuditLogHandler) EventTypes() []string {
	return nil
}

var _ shared.EventHandler = (*AuditLogHandler)(nil)
