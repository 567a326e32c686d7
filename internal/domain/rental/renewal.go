package rental

import (
	"fmt"
	"time"

	"github.com/medrent/backend/internal/domain/order"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/domain/shared/valueobject"
)

// BuildRenewal copies a rental order into a fresh draft covering the next
// period. Fulfilment counters reset, devices carry over, and the draft
// points back at its predecessor.
//
// The new period must touch the predecessor's: a gap in coverage means
// the customer kept the device uncovered, which is a data error, not a
// renewal.
func BuildRenewal(predecessor *order.SalesOrder, newOrderNumber string, start, end time.Time) (*order.SalesOrder, error) {
	if predecessor.OrderType != order.OrderTypeRental {
		return nil, shared.NewDomainError("NOT_RENTAL", "only rental orders can be renewed")
	}
	if !predecessor.IsSubmitted() {
		return nil, shared.NewDomainError("ORDER_NOT_SUBMITTED", "only submitted orders can be renewed")
	}
	switch predecessor.Status {
	case order.StatusRenewed:
		return nil, shared.NewDomainError("ALREADY_RENEWED",
			fmt.Sprintf("order %s has already been renewed", predecessor.OrderNumber))
	case order.StatusClosed, order.StatusCancelled:
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("order %s is %s and cannot be renewed", predecessor.OrderNumber, predecessor.Status))
	}

	prevPeriod, err := predecessor.RentalPeriod()
	if err != nil {
		return nil, err
	}
	newPeriod, err := valueobject.NewDateRange(start, end)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_RENTAL_PERIOD", err.Error())
	}
	if !newPeriod.Overlaps(prevPeriod) && !newPeriod.Start().Equal(prevPeriod.End().AddDate(0, 0, 1)) {
		return nil, shared.NewDomainError("RENEWAL_GAP",
			fmt.Sprintf("renewal period %s leaves a coverage gap after %s", newPeriod, prevPeriod))
	}

	successor, err := order.NewSalesOrder(
		predecessor.CompanyID,
		predecessor.CustomerID,
		newOrderNumber,
		order.OrderTypeRental,
		time.Now(),
	)
	if err != nil {
		return nil, err
	}
	successor.CustomerName = predecessor.CustomerName
	successor.Currency = predecessor.Currency
	successor.ConversionRate = predecessor.ConversionRate
	successor.SecurityDeposit = predecessor.SecurityDeposit
	successor.PreviousOrderID = &predecessor.ID
	if err := successor.SetRentalPeriod(start, end); err != nil {
		return nil, err
	}

	for idx := range predecessor.Items {
		src := &predecessor.Items[idx]
		if src.Status == order.LineStatusCancelled {
			continue
		}
		line := order.SalesOrderItem{
			ItemCode:         src.ItemCode,
			ItemName:         src.ItemName,
			ItemGroup:        src.ItemGroup,
			Description:      src.Description,
			UOM:              src.UOM,
			Qty:              src.Qty,
			Rate:             src.Rate,
			ConversionFactor: src.ConversionFactor,
			Warehouse:        src.Warehouse,
			IsStockItem:      src.IsStockItem,
			IsBundle:         src.IsBundle,
			// device stays with the customer across the renewal
			DeviceID: src.DeviceID,
			Status:   order.LineStatusPending,
		}
		if err := successor.AddItem(line); err != nil {
			return nil, err
		}
	}
	if len(successor.Items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "predecessor has no renewable items")
	}

	for idx := range predecessor.Taxes {
		t := predecessor.Taxes[idx]
		successor.Taxes = append(successor.Taxes, order.TaxLine{
			ChargeType:  t.ChargeType,
			AccountHead: t.AccountHead,
			Description: t.Description,
			Rate:        t.Rate,
		})
	}
	successor.RecalculateTotals()
	return successor, nil
}

// CheckOverlap rejects a rental period that collides with another open
// order covering the same customer and item, excluding the predecessor
// an explicit renewal is allowed to touch
func CheckOverlap(candidate *order.SalesOrder, openOrders []order.SalesOrder) error {
	period, err := candidate.RentalPeriod()
	if err != nil {
		return err
	}
	for idx := range openOrders {
		other := &openOrders[idx]
		if other.ID == candidate.ID {
			continue
		}
		if candidate.PreviousOrderID != nil && other.ID == *candidate.PreviousOrderID {
			continue
		}
		switch other.Status {
		case order.StatusCancelled, order.StatusClosed, order.StatusRenewed, order.StatusDraft:
			continue
		}
		otherPeriod, err := other.RentalPeriod()
		if err != nil {
			continue
		}
		if !period.Overlaps(otherPeriod) {
			continue
		}
		for i := range candidate.Items {
			for j := range other.Items {
				if candidate.Items[i].ItemCode == other.Items[j].ItemCode {
					return shared.NewDomainError("RENTAL_OVERLAP",
						fmt.Sprintf("item %s is already covered by order %s over %s",
							candidate.Items[i].ItemCode, other.OrderNumber, otherPeriod))
				}
			}
		}
	}
	return nil
}
