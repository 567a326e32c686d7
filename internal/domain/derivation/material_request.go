package derivation

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/medrent/backend/internal/domain/order"
)

// MaterialRequest derives a material request draft for the order quantity
// not yet covered by earlier requests. Deliveries count as consumption,
// offset by goods the customer has already returned.
func (e *Engine) MaterialRequest(ctx context.Context, o *order.SalesOrder, requestType string) (*MaterialRequestDraft, error) {
	if err := validateSource(o); err != nil {
		return nil, err
	}
	if requestType == "" {
		requestType = "Purchase"
	}

	lines := selectLines(o, order.RemainingToRequest, func(item *order.SalesOrderItem, rem decimal.Decimal) *MaterialRequestLine {
		if !item.IsStockItem {
			return nil
		}
		return &MaterialRequestLine{
			SourceLineID: item.ID,
			ItemCode:     item.ItemCode,
			Warehouse:    item.Warehouse,
			Qty:          rem,
			UOM:          item.UOM,
			RequiredBy:   item.DeliveryDate,
		}
	})
	if len(lines) == 0 {
		return nil, ErrNothingToDerive
	}

	return &MaterialRequestDraft{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		CompanyID:   o.CompanyID,
		RequestType: requestType,
		Items:       lines,
	}, nil
}
