package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medrent/backend/internal/domain/derivation"
	"github.com/medrent/backend/internal/domain/rental"
	"github.com/medrent/backend/internal/domain/shared"
)

// GormMaintenanceLookup tracks which maintenance documents have been
// derived per order and answers the engine's derive-at-most-once guard
type GormMaintenanceLookup struct {
	db *gorm.DB
}

// NewGormMaintenanceLookup creates a new GormMaintenanceLookup
func NewGormMaintenanceLookup(db *gorm.DB) *GormMaintenanceLookup {
	return &GormMaintenanceLookup{db: db}
}

func (r *GormMaintenanceLookup) has(ctx context.Context, orderID uuid.UUID, kind rental.MaintenanceDocKind) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&rental.MaintenanceDocument{}).
		Where("order_id = ? AND kind = ?", orderID, kind).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasSchedule reports whether a maintenance schedule exists for the order
func (r *GormMaintenanceLookup) HasSchedule(ctx context.Context, orderID uuid.UUID) (bool, error) {
	return r.has(ctx, orderID, rental.MaintenanceKindSchedule)
}

// HasVisit reports whether a maintenance visit exists for the order
func (r *GormMaintenanceLookup) HasVisit(ctx context.Context, orderID uuid.UUID) (bool, error) {
	return r.has(ctx, orderID, rental.MaintenanceKindVisit)
}

func (r *GormMaintenanceLookup) record(ctx context.Context, companyID, orderID uuid.UUID, kind rental.MaintenanceDocKind) error {
	doc := &rental.MaintenanceDocument{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		OrderID:              orderID,
		Kind:                 kind,
	}
	return r.db.WithContext(ctx).Create(doc).Error
}

// RecordSchedule marks the order as having a derived maintenance schedule
func (r *GormMaintenanceLookup) RecordSchedule(ctx context.Context, companyID, orderID uuid.UUID) error {
	return r.record(ctx, companyID, orderID, rental.MaintenanceKindSchedule)
}

// RecordVisit marks the order as having a derived maintenance visit
func (r *GormMaintenanceLookup) RecordVisit(ctx context.Context, companyID, orderID uuid.UUID) error {
	return r.record(ctx, companyID, orderID, rental.MaintenanceKindVisit)
}

var _ derivation.MaintenanceLookup = (*GormMaintenanceLookup)(nil)
