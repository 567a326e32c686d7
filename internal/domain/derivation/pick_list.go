package derivation

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/medrent/backend/internal/domain/order"
	"github.com/medrent/backend/internal/domain/shared"
)

// PickList derives a warehouse pick list draft for the unpicked remainder.
//
// Orders holding stock reservations cannot be picked again through this
// path: the reservation already pins specific stock, and a second pick
// would double-allocate it.
func (e *Engine) PickList(ctx context.Context, o *order.SalesOrder) (*PickListDraft, error) {
	if err := validateSource(o); err != nil {
		return nil, err
	}
	if e.reservations != nil {
		reserved, err := e.reservations.HasReservations(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		if reserved {
			return nil, shared.NewDomainError("STOCK_RESERVED",
				"order has reserved stock; picking runs through the reservation, not a pick list")
		}
	}

	var locations []PickListLine
	for idx := range o.Items {
		item := &o.Items[idx]
		if item.IsDropShip() || !item.IsStockItem && !item.IsBundle {
			continue
		}
		rem := order.RemainingToPick(item)
		if !rem.IsPositive() {
			continue
		}

		if item.IsBundle {
			// bundles pick their components, scaled to the pending fraction
			ratio := order.PendingRatio(item)
			for _, packed := range o.PackedItemsFor(item.ID) {
				if !packed.IsStockItem {
					continue
				}
				qty := packed.Qty.Mul(ratio)
				if !qty.IsPositive() {
					continue
				}
				locations = append(locations, PickListLine{
					SourceLineID:   item.ID,
					ItemCode:       packed.ItemCode,
					Warehouse:      packed.Warehouse,
					Qty:            qty,
					StockQty:       qty,
					UOM:            packed.UOM,
					IsBundlePart:   true,
					ParentItemCode: packed.ParentItemCode,
				})
			}
			continue
		}

		cf := item.ConversionFactor
		if cf.IsZero() {
			cf = decimal.NewFromInt(1)
		}
		locations = append(locations, PickListLine{
			SourceLineID: item.ID,
			ItemCode:     item.ItemCode,
			Warehouse:    item.Warehouse,
			Qty:          rem,
			StockQty:     rem.Mul(cf),
			UOM:          item.UOM,
		})
	}
	if len(locations) == 0 {
		return nil, ErrNothingToDerive
	}

	return &PickListDraft{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		CompanyID:   o.CompanyID,
		Locations:   locations,
	}, nil
}
