package derivation

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/medrent/backend/internal/domain/order"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/domain/shared/valueobject"
)

// PurchaseOrders derives one backing purchase order draft per supplier
// for the stock not yet ordered. When selectedSuppliers is non-empty,
// only those suppliers are considered.
//
// Customer pricing never crosses onto the procurement side: the drafts
// carry quantities and schedules only, and the supplier's rates are
// filled in downstream.
func (e *Engine) PurchaseOrders(ctx context.Context, o *order.SalesOrder, selectedSuppliers []string) ([]PurchaseOrderDraft, error) {
	if err := validateSource(o); err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(selectedSuppliers))
	for _, s := range selectedSuppliers {
		wanted[s] = true
	}

	type supplierGroup struct {
		dropShip bool
		lines    []PurchaseOrderLine
	}
	groups := make(map[string]*supplierGroup)

	for idx := range o.Items {
		item := &o.Items[idx]
		if item.Supplier == "" {
			continue
		}
		if len(wanted) > 0 && !wanted[item.Supplier] {
			continue
		}
		rem := order.RemainingToOrder(item)
		if !rem.IsPositive() {
			continue
		}
		g := groups[item.Supplier]
		if g == nil {
			g = &supplierGroup{}
			groups[item.Supplier] = g
		}
		if item.IsDropShip() {
			g.dropShip = true
		}
		g.lines = append(g.lines, PurchaseOrderLine{
			SourceLineID: item.ID,
			ItemCode:     item.ItemCode,
			ItemName:     item.ItemName,
			Warehouse:    item.Warehouse,
			StockQty:     rem,
			UOM:          item.UOM,
			DeliveryDate: item.DeliveryDate,
		})
	}
	if len(groups) == 0 {
		return nil, ErrNothingToDerive
	}

	suppliers := make([]string, 0, len(groups))
	for s := range groups {
		suppliers = append(suppliers, s)
	}
	sort.Strings(suppliers)

	drafts := make([]PurchaseOrderDraft, 0, len(suppliers))
	for _, supplier := range suppliers {
		g := groups[supplier]
		rate, err := e.conversionRate(ctx, o.Currency)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, PurchaseOrderDraft{
			OrderID:        o.ID,
			OrderNumber:    o.OrderNumber,
			CompanyID:      o.CompanyID,
			Supplier:       supplier,
			DropShip:       g.dropShip,
			Currency:       o.Currency,
			ConversionRate: rate,
			Items:          g.lines,
		})
	}
	return drafts, nil
}

func (e *Engine) conversionRate(ctx context.Context, currency valueobject.Currency) (decimal.Decimal, error) {
	if currency == valueobject.DefaultCurrency || e.rates == nil {
		return decimal.NewFromInt(1), nil
	}
	rate, err := e.rates.Rate(ctx, currency, valueobject.DefaultCurrency)
	if err != nil {
		return decimal.Decimal{}, shared.NewDomainError("EXCHANGE_RATE_UNAVAILABLE", err.Error())
	}
	return rate, nil
}
