package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medrent/backend/internal/domain/shared"
)

// SalesOrderItem represents a line on a sales order. Each line carries
// the fulfilment counters consumed by downstream documents alongside
// the rental sub-status of the physical device it is tied to.
type SalesOrderItem struct {
	shared.BaseEntity
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	ItemCode    string    `gorm:"not null;size:140" json:"item_code"`
	ItemName    string    `gorm:"size:200" json:"item_name"`
	ItemGroup   string    `gorm:"size:140" json:"item_group"`
	Description string    `gorm:"size:500" json:"description"`
	UOM         string    `gorm:"size:50;default:'Nos'" json:"uom"`

	Qty              decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"qty"`
	Rate             decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"rate"`
	Amount           decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"amount"`
	ConversionFactor decimal.Decimal `gorm:"type:decimal(20,6);default:1" json:"conversion_factor"`
	StockQty         decimal.Decimal `gorm:"type:decimal(20,6)" json:"stock_qty"`

	Warehouse           string     `gorm:"size:140" json:"warehouse"`
	DeliveryDate        *time.Time `json:"delivery_date"`
	Supplier            string     `gorm:"size:140" json:"supplier"`
	DeliveredBySupplier bool       `gorm:"default:false" json:"delivered_by_supplier"`

	// Fulfilment counters, updated as downstream documents post back
	DeliveredQty     decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"delivered_qty"`
	ReturnedQty      decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"returned_qty"`
	BilledAmount     decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"billed_amount"`
	OrderedQty       decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"ordered_qty"`
	PickedQty        decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"picked_qty"`
	ProducedQty      decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"produced_qty"`
	RequestedQty     decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"requested_qty"`
	ReceivedQty      decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"received_qty"`
	StockReservedQty decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"stock_reserved_qty"`

	// Catalog attributes denormalized at line creation
	IsStockItem          bool `gorm:"default:true" json:"is_stock_item"`
	IsBundle             bool `gorm:"default:false" json:"is_bundle"`
	EnsureSerialDelivery bool `gorm:"default:false" json:"ensure_serial_delivery"`

	// Rental tracking
	Status         LineStatus `gorm:"size:40;default:'PENDING'" json:"status"`
	DeviceID       *uuid.UUID `gorm:"type:uuid" json:"device_id"`
	DispatchDate   *time.Time `json:"dispatch_date"`
	RentalDelivery *time.Time `json:"rental_delivery_date"`
	PickupDate     *time.Time `json:"pickup_date"`
	SubmittedDate  *time.Time `json:"submitted_date"`
	PickupReason   string     `gorm:"size:200" json:"pickup_reason"`
	PickupRemark   string     `gorm:"size:500" json:"pickup_remark"`

	// Replacement audit trail
	ReplacedItemCode  string     `gorm:"size:140" json:"replaced_item_code"`
	ReplacedAt        *time.Time `json:"replaced_at"`
	ReplacementReason string     `gorm:"size:500" json:"replacement_reason"`
}

// TableName specifies the table name for SalesOrderItem
func (SalesOrderItem) TableName() string {
	return "sales_order_items"
}

// RecalculateAmount recomputes amount and stock qty from qty, rate and
// conversion factor
func (i *SalesOrderItem) RecalculateAmount() {
	i.Amount = i.Qty.Mul(i.Rate)
	cf := i.ConversionFactor
	if cf.IsZero() {
		cf = decimal.NewFromInt(1)
		i.ConversionFactor = cf
	}
	i.StockQty = i.Qty.Mul(cf)
}

// IsDropShip reports whether the line ships directly from a supplier
func (i *SalesOrderItem) IsDropShip() bool {
	return i.DeliveredBySupplier && i.Supplier != ""
}

// PackedItem is a bundle component exploded under a parent order line.
// Conservation holds per parent: each packed row carries the component
// qty per one unit of the parent bundle times the parent qty.
type PackedItem struct {
	shared.BaseEntity
	OrderID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ParentItemID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"parent_item_id"`
	ParentItemCode string          `gorm:"not null;size:140" json:"parent_item_code"`
	ItemCode       string          `gorm:"not null;size:140" json:"item_code"`
	ItemName       string          `gorm:"size:200" json:"item_name"`
	Warehouse      string          `gorm:"size:140" json:"warehouse"`
	Qty            decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"qty"`
	Rate           decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"rate"`
	UOM            string          `gorm:"size:50;default:'Nos'" json:"uom"`
	DeliveredQty   decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"delivered_qty"`
	PickedQty      decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"picked_qty"`
	OrderedQty     decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"ordered_qty"`
	IsStockItem    bool            `gorm:"default:true" json:"is_stock_item"`
}

// TableName specifies the table name for PackedItem
func (PackedItem) TableName() string {
	return "sales_order_packed_items"
}

// TaxLine is a tax or charge row applied to the order total
type TaxLine struct {
	shared.BaseEntity
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ChargeType  string          `gorm:"size:50;default:'On Net Total'" json:"charge_type"`
	AccountHead string          `gorm:"not null;size:200" json:"account_head"`
	Description string          `gorm:"size:200" json:"description"`
	Rate        decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"rate"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"amount"`
}

// TableName specifies the table name for TaxLine
func (TaxLine) TableName() string {
	return "sales_order_taxes"
}
