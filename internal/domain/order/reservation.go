package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medrent/backend/internal/domain/shared"
)

// StockReservation is a warehouse hold of quantity against an order
// line. Pick list derivation subtracts reserved quantity from what is
// still to be picked.
type StockReservation struct {
	shared.BaseEntity
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ItemID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"item_id"`
	Warehouse   string          `gorm:"size:200" json:"warehouse"`
	ReservedQty decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"reserved_qty"`
}

// TableName specifies the table name for StockReservation
func (StockReservation) TableName() string {
	return "stock_reservations"
}
