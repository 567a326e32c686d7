package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/medrent/backend/internal/domain/catalog"
	"github.com/medrent/backend/internal/domain/order"
	"github.com/medrent/backend/internal/domain/shared"
)

// GormItemCatalog resolves catalog master data for order lines
type GormItemCatalog struct {
	db *gorm.DB
}

// NewGormItemCatalog creates a new GormItemCatalog
func NewGormItemCatalog(db *gorm.DB) *GormItemCatalog {
	return &GormItemCatalog{db: db}
}

// Lookup resolves the catalog attributes of an item code
func (c *GormItemCatalog) Lookup(ctx context.Context, itemCode string) (*order.CatalogItem, error) {
	var item catalog.Item
	err := c.db.WithContext(ctx).
		Where("item_code = ? AND disabled = ?", itemCode, false).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError("UNKNOWN_ITEM", "item "+itemCode+" is not in the catalog")
		}
		return nil, err
	}
	return &order.CatalogItem{
		ItemCode:             item.ItemCode,
		ItemName:             item.ItemName,
		ItemGroup:            item.ItemGroup,
		UOM:                  item.UOM,
		IsStockItem:          item.IsStockItem,
		IsBundle:             item.IsBundle,
		EnsureSerialDelivery: item.EnsureSerialDelivery,
		DefaultSupplier:      item.DefaultSupplier,
		DefaultWarehouse:     item.DefaultWarehouse,
	}, nil
}

// ExplodeBundle returns the component list for one unit of a bundle
func (c *GormItemCatalog) ExplodeBundle(ctx context.Context, itemCode string) ([]order.BundleComponent, error) {
	var lines []catalog.BundleLine
	err := c.db.WithContext(ctx).
		Where("parent_item_code = ?", itemCode).
		Order("item_code ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	components := make([]order.BundleComponent, 0, len(lines))
	for _, line := range lines {
		components = append(components, order.BundleComponent{
			ItemCode:    line.ItemCode,
			ItemName:    line.ItemName,
			Qty:         line.Qty,
			UOM:         line.UOM,
			Warehouse:   line.Warehouse,
			IsStockItem: line.IsStockItem,
		})
	}
	return components, nil
}

// SaveItem upserts a catalog item
func (c *GormItemCatalog) SaveItem(ctx context.Context, item *catalog.Item) error {
	return c.db.WithContext(ctx).Save(item).Error
}

// SaveBundleLine upserts a bundle component row
func (c *GormItemCatalog) SaveBundleLine(ctx context.Context, line *catalog.BundleLine) error {
	return c.db.WithContext(ctx).Save(line).Error
}

var _ order.ItemCatalog = (*GormItemCatalog)(nil)
