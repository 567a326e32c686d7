package derivation

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/medrent/backend/internal/domain/order"
	"github.com/medrent/backend/internal/domain/shared"
)

// DeliveryNote derives a delivery note draft covering the undelivered
// remainder of the order. Drop-ship lines are excluded; those ship from
// the supplier and never pass through our warehouse.
func (e *Engine) DeliveryNote(ctx context.Context, o *order.SalesOrder) (*DeliveryNoteDraft, error) {
	if err := validateSource(o); err != nil {
		return nil, err
	}
	if o.SkipDeliveryNote {
		return nil, shared.NewDomainError("DELIVERY_NOTE_SKIPPED", "order is configured to bill without delivery notes")
	}

	lines := selectLines(o, order.RemainingToDeliver, func(item *order.SalesOrderItem, rem decimal.Decimal) *DeliveryNoteLine {
		if item.IsDropShip() {
			return nil
		}
		return &DeliveryNoteLine{
			SourceLineID:   item.ID,
			ItemCode:       item.ItemCode,
			ItemName:       item.ItemName,
			Warehouse:      item.Warehouse,
			Qty:            rem,
			Rate:           item.Rate,
			Amount:         rem.Mul(item.Rate),
			UOM:            item.UOM,
			SerialRequired: item.EnsureSerialDelivery,
		}
	})
	if len(lines) == 0 {
		return nil, ErrNothingToDerive
	}

	draft := &DeliveryNoteDraft{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		CompanyID:   o.CompanyID,
		CustomerID:  o.CustomerID,
		Currency:    o.Currency,
		PostingDate: time.Now(),
		Items:       lines,
	}

	// carry bundle components for the selected parents, scaled to the
	// undelivered fraction
	selected := make(map[string]*order.SalesOrderItem, len(lines))
	for idx := range o.Items {
		selected[o.Items[idx].ID.String()] = &o.Items[idx]
	}
	for _, line := range lines {
		parent := selected[line.SourceLineID.String()]
		for _, packed := range o.PackedItemsFor(parent.ID) {
			qty := packedRemainder(parent, &packed)
			if !qty.IsPositive() {
				continue
			}
			draft.PackedItems = append(draft.PackedItems, PackedLine{
				ParentLineID:   parent.ID,
				ParentItemCode: packed.ParentItemCode,
				ItemCode:       packed.ItemCode,
				Warehouse:      packed.Warehouse,
				Qty:            qty,
			})
		}
	}
	return draft, nil
}
