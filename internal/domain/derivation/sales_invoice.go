package derivation

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/medrent/backend/internal/domain/order"
)

// SalesInvoice derives an invoice draft covering the unbilled remainder
// of the order. Billing tracks amounts, so a line stays billable until
// its full amount is invoiced regardless of delivered quantity.
func (e *Engine) SalesInvoice(ctx context.Context, o *order.SalesOrder) (*SalesInvoiceDraft, error) {
	if err := validateSource(o); err != nil {
		return nil, err
	}

	lines := selectLines(o, order.RemainingToBill, func(item *order.SalesOrderItem, remAmount decimal.Decimal) *SalesInvoiceLine {
		qty := order.RemainingQtyToBill(item)
		return &SalesInvoiceLine{
			SourceLineID: item.ID,
			ItemCode:     item.ItemCode,
			ItemName:     item.ItemName,
			Qty:          qty,
			Rate:         item.Rate,
			Amount:       remAmount,
			UOM:          item.UOM,
		}
	})
	if len(lines) == 0 {
		return nil, ErrNothingToDerive
	}

	net := decimal.Zero
	for _, l := range lines {
		net = net.Add(l.Amount)
	}
	// taxes prorate over the billed fraction of the net total
	taxTotal := decimal.Zero
	if o.NetTotal.IsPositive() {
		taxTotal = o.TaxTotal.Mul(net).Div(o.NetTotal).Round(2)
	}

	return &SalesInvoiceDraft{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		CompanyID:   o.CompanyID,
		CustomerID:  o.CustomerID,
		Currency:    o.Currency,
		PostingDate: time.Now(),
		Items:       lines,
		TaxTotal:    taxTotal,
		GrandTotal:  net.Add(taxTotal),
	}, nil
}
