package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/medrent/backend/internal/domain/order"
)

// GormReservationLookup reads warehouse stock reservations held against
// order lines
type GormReservationLookup struct {
	db *gorm.DB
}

// NewGormReservationLookup creates a new GormReservationLookup
func NewGormReservationLookup(db *gorm.DB) *GormReservationLookup {
	return &GormReservationLookup{db: db}
}

// ReservedQty sums the quantity reserved for one order line
func (r *GormReservationLookup) ReservedQty(ctx context.Context, orderID, itemID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&order.StockReservation{}).
		Select("SUM(reserved_qty)").
		Where("order_id = ? AND item_id = ?", orderID, itemID).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// HasReservations reports whether any reservation exists for the order
func (r *GormReservationLookup) HasReservations(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&order.StockReservation{}).
		Where("order_id = ?", orderID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save upserts a reservation row
func (r *GormReservationLookup) Save(ctx context.Context, reservation *order.StockReservation) error {
	return r.db.WithContext(ctx).Save(reservation).Error
}

var _ order.ReservationLookup = (*GormReservationLookup)(nil)
