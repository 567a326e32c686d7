package rental

import (
	"github.com/google/uuid"

	"github.com/medrent/backend/internal/domain/shared"
)

// MaintenanceDocKind distinguishes the maintenance documents derived
// from an order
type MaintenanceDocKind string

const (
	MaintenanceKindSchedule MaintenanceDocKind = "SCHEDULE"
	MaintenanceKindVisit    MaintenanceDocKind = "VISIT"
)

// MaintenanceDocument records that a maintenance schedule or visit has
// been derived for an order. One row per order and kind backs the
// derive-at-most-once guard.
type MaintenanceDocument struct {
	shared.CompanyAggregateRoot
	OrderID uuid.UUID          `gorm:"type:uuid;not null;index" json:"order_id"`
	Kind    MaintenanceDocKind `gorm:"size:20;not null" json:"kind"`
}

// TableName specifies the table name for MaintenanceDocument
func (MaintenanceDocument) TableName() string {
	return "maintenance_documents"
}
