package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medrent/backend/internal/domain/shared"
)

// The quantity ledger derives every "remaining" figure from the requested
// and fulfilled counters on the order lines. Remainders never go negative:
// over-fulfilment clamps to zero instead of producing a negative claim.

var hundred = decimal.NewFromInt(100)

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// RemainingToDeliver returns the undelivered quantity of a line.
// Returns are excluded: comparison runs on absolute values so a line
// with net-negative delivery still reports the full remainder.
func RemainingToDeliver(i *SalesOrderItem) decimal.Decimal {
	if i.DeliveredQty.Abs().GreaterThanOrEqual(i.Qty.Abs()) {
		return decimal.Zero
	}
	return clampZero(i.Qty.Sub(i.DeliveredQty))
}

// RemainingToBill returns the uninvoiced amount of a line. Billing tracks
// amounts, not quantities, so a rate change after partial invoicing still
// settles on the order line amount.
func RemainingToBill(i *SalesOrderItem) decimal.Decimal {
	return clampZero(i.Amount.Sub(i.BilledAmount))
}

// RemainingQtyToBill approximates the remaining billable quantity by
// prorating the uninvoiced amount over the line rate
func RemainingQtyToBill(i *SalesOrderItem) decimal.Decimal {
	if i.Rate.IsZero() {
		return RemainingToDeliver(i)
	}
	return clampZero(RemainingToBill(i).Div(i.Rate))
}

// RemainingToOrder returns the stock quantity not yet covered by a
// purchase order raised against the line
func RemainingToOrder(i *SalesOrderItem) decimal.Decimal {
	return clampZero(i.StockQty.Sub(i.OrderedQty))
}

// RemainingToPick returns the quantity not yet picked or delivered.
// Picked quantity is tracked in stock UOM and converted back to the
// line UOM before comparison.
func RemainingToPick(i *SalesOrderItem) decimal.Decimal {
	cf := i.ConversionFactor
	if cf.IsZero() {
		cf = decimal.NewFromInt(1)
	}
	picked := i.PickedQty.Div(cf)
	consumed := decimal.Max(picked, i.DeliveredQty)
	return clampZero(i.Qty.Sub(consumed))
}

// RemainingToRequest returns the quantity a material request may still
// cover. Deliveries already made count as consumption, but goods received
// back against earlier requests offset that consumption.
func RemainingToRequest(i *SalesOrderItem) decimal.Decimal {
	consumedByDelivery := clampZero(i.DeliveredQty.Sub(i.ReceivedQty))
	return clampZero(i.Qty.Sub(i.RequestedQty).Sub(consumedByDelivery))
}

// PendingRatio returns the fraction of a line still unfulfilled, used to
// scale bundle components proportionally when deriving partial documents
func PendingRatio(i *SalesOrderItem) decimal.Decimal {
	if i.Qty.IsZero() {
		return decimal.Zero
	}
	consumed := decimal.Max(i.PickedQty, i.DeliveredQty)
	return clampZero(i.Qty.Sub(consumed)).Div(i.Qty)
}

// UnreservedQty returns the portion of a line's stock qty not held by a
// stock reservation, in line UOM
func UnreservedQty(i *SalesOrderItem) decimal.Decimal {
	cf := i.ConversionFactor
	if cf.IsZero() {
		cf = decimal.NewFromInt(1)
	}
	return clampZero(i.StockQty.Sub(i.StockReservedQty)).Div(cf)
}

// fulfilmentPercent computes 100 * fulfilled / requested over a set of
// lines, clamped to [0,100]
func fulfilmentPercent(fulfilled, requested decimal.Decimal) decimal.Decimal {
	if requested.IsZero() {
		return decimal.Zero
	}
	pct := fulfilled.Div(requested).Mul(hundred)
	if pct.IsNegative() {
		return decimal.Zero
	}
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct.Round(2)
}

// RecomputeFulfilment re-derives the order-level completion percentages
// and the billing/delivery summaries from its lines. Lines shipped by a
// supplier do not participate in delivery tracking.
func (o *SalesOrder) RecomputeFulfilment() {
	var (
		totalQty, deliveredQty  decimal.Decimal
		deliverableQty, pickQty decimal.Decimal
		totalAmt, billedAmt     decimal.Decimal
		pickedQty               decimal.Decimal
	)

	for i := range o.Items {
		item := &o.Items[i]
		totalQty = totalQty.Add(item.Qty)
		totalAmt = totalAmt.Add(item.Amount)
		billedAmt = billedAmt.Add(decimal.Min(item.BilledAmount, item.Amount))
		if !item.IsDropShip() {
			deliverableQty = deliverableQty.Add(item.Qty)
			deliveredQty = deliveredQty.Add(decimal.Min(item.DeliveredQty, item.Qty))
		}
		cf := item.ConversionFactor
		if cf.IsZero() {
			cf = decimal.NewFromInt(1)
		}
		pickQty = pickQty.Add(item.StockQty)
		pickedQty = pickedQty.Add(decimal.Min(item.PickedQty, item.StockQty))
	}

	o.PerDelivered = fulfilmentPercent(deliveredQty, deliverableQty)
	o.PerBilled = fulfilmentPercent(billedAmt, totalAmt)
	o.PerPicked = fulfilmentPercent(pickedQty, pickQty)

	switch {
	case deliverableQty.IsZero():
		o.DeliveryStatus = DeliveryNotApplicable
	case o.PerDelivered.GreaterThanOrEqual(hundred):
		o.DeliveryStatus = DeliveryFullyDelivered
	case o.PerDelivered.IsPositive():
		o.DeliveryStatus = DeliveryPartlyDelivered
	default:
		o.DeliveryStatus = DeliveryNotDelivered
	}

	switch {
	case o.PerBilled.GreaterThanOrEqual(hundred):
		o.BillingStatus = BillingFullyBilled
	case o.PerBilled.IsPositive():
		o.BillingStatus = BillingPartlyBilled
	default:
		o.BillingStatus = BillingNotBilled
	}

	if o.Status == StatusClosed {
		o.BillingStatus = BillingClosed
		o.DeliveryStatus = DeliveryClosed
	}
}

// ApplyFulfilmentStatus rolls the derived fulfilment status onto the
// header when the order is not under rental flow control
func (o *SalesOrder) ApplyFulfilmentStatus() {
	if o.OrderType == OrderTypeRental {
		return
	}
	if o.Status == StatusDraft || o.Status == StatusCancelled ||
		o.Status == StatusClosed || o.Status == StatusOnHold {
		return
	}
	o.Status = StatusFromFulfilment(o.PerDelivered, o.PerBilled)
}

// LineProgress carries fulfilment counters posted back by downstream
// documents against a single line. Nil fields leave the counter untouched.
type LineProgress struct {
	DeliveredQty     *decimal.Decimal
	ReturnedQty      *decimal.Decimal
	BilledAmount     *decimal.Decimal
	OrderedQty       *decimal.Decimal
	PickedQty        *decimal.Decimal
	ProducedQty      *decimal.Decimal
	RequestedQty     *decimal.Decimal
	ReceivedQty      *decimal.Decimal
	StockReservedQty *decimal.Decimal
}

func (p LineProgress) validate() error {
	counters := map[string]*decimal.Decimal{
		"delivered_qty":      p.DeliveredQty,
		"returned_qty":       p.ReturnedQty,
		"billed_amount":      p.BilledAmount,
		"ordered_qty":        p.OrderedQty,
		"picked_qty":         p.PickedQty,
		"produced_qty":       p.ProducedQty,
		"requested_qty":      p.RequestedQty,
		"received_qty":       p.ReceivedQty,
		"stock_reserved_qty": p.StockReservedQty,
	}
	for name, v := range counters {
		if v != nil && v.IsNegative() {
			return shared.NewDomainError("INVALID_PROGRESS_QTY", name+" cannot be negative")
		}
	}
	return nil
}

// ApplyLineProgress overwrites a line's fulfilment counters with the
// figures a downstream document reports, then re-derives the header
// percentages and status. Draft orders have no fulfilment to track.
func (o *SalesOrder) ApplyLineProgress(itemID uuid.UUID, p LineProgress) error {
	if !o.IsSubmitted() {
		return shared.NewDomainError("ORDER_NOT_SUBMITTED", "fulfilment progress applies to submitted orders only")
	}
	if err := p.validate(); err != nil {
		return err
	}
	item, err := o.ItemByID(itemID)
	if err != nil {
		return err
	}

	if p.DeliveredQty != nil {
		item.DeliveredQty = *p.DeliveredQty
	}
	if p.ReturnedQty != nil {
		item.ReturnedQty = *p.ReturnedQty
	}
	if p.BilledAmount != nil {
		item.BilledAmount = *p.BilledAmount
	}
	if p.OrderedQty != nil {
		item.OrderedQty = *p.OrderedQty
	}
	if p.PickedQty != nil {
		item.PickedQty = *p.PickedQty
	}
	if p.ProducedQty != nil {
		item.ProducedQty = *p.ProducedQty
	}
	if p.RequestedQty != nil {
		item.RequestedQty = *p.RequestedQty
	}
	if p.ReceivedQty != nil {
		item.ReceivedQty = *p.ReceivedQty
	}
	if p.StockReservedQty != nil {
		item.StockReservedQty = *p.StockReservedQty
	}

	o.RecomputeFulfilment()
	o.ApplyFulfilmentStatus()
	return nil
}
