package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/medrent/backend/internal/domain/shared"
)

// Item is the master record of a sellable or rentable article. Catalog
// data is shared master data, not company scoped.
type Item struct {
	shared.BaseEntity
	ItemCode             string `gorm:"uniqueIndex;not null;size:100" json:"item_code"`
	ItemName             string `gorm:"not null;size:200" json:"item_name"`
	ItemGroup            string `gorm:"size:100;index" json:"item_group"`
	UOM                  string `gorm:"size:50" json:"uom"`
	IsStockItem          bool   `gorm:"default:true" json:"is_stock_item"`
	IsBundle             bool   `gorm:"default:false" json:"is_bundle"`
	EnsureSerialDelivery bool   `gorm:"default:false" json:"ensure_serial_delivery"`
	DefaultSupplier      string `gorm:"size:200" json:"default_supplier"`
	DefaultWarehouse     string `gorm:"size:200" json:"default_warehouse"`
	Disabled             bool   `gorm:"default:false" json:"disabled"`
}

// TableName specifies the table name for Item
func (Item) TableName() string {
	return "catalog_items"
}

// NewItem creates a catalog item
func NewItem(itemCode, itemName string) (*Item, error) {
	if itemCode == "" {
		return nil, shared.NewDomainError("INVALID_ITEM_CODE", "item code cannot be empty")
	}
	if itemName == "" {
		itemName = itemCode
	}
	return &Item{
		BaseEntity:  shared.NewBaseEntity(),
		ItemCode:    itemCode,
		ItemName:    itemName,
		IsStockItem: true,
	}, nil
}

// BundleLine is one component of a product bundle, quantity per unit of
// the parent item
type BundleLine struct {
	shared.BaseEntity
	ParentItemCode string          `gorm:"not null;size:100;index" json:"parent_item_code"`
	ItemCode       string          `gorm:"not null;size:100" json:"item_code"`
	ItemName       string          `gorm:"size:200" json:"item_name"`
	Qty            decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"qty"`
	UOM            string          `gorm:"size:50" json:"uom"`
	Warehouse      string          `gorm:"size:200" json:"warehouse"`
	IsStockItem    bool            `gorm:"default:true" json:"is_stock_item"`
}

// TableName specifies the table name for BundleLine
func (BundleLine) TableName() string {
	return "catalog_bundle_lines"
}
