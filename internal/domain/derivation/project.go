package derivation

import (
	"context"
	"fmt"

	"github.com/medrent/backend/internal/domain/order"
)

// Project derives a project draft tracking the order's execution. Rental
// orders span the coverage window; sales orders run to the delivery date.
func (e *Engine) Project(ctx context.Context, o *order.SalesOrder) (*ProjectDraft, error) {
	if err := validateSource(o); err != nil {
		return nil, err
	}

	draft := &ProjectDraft{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		CompanyID:   o.CompanyID,
		CustomerID:  o.CustomerID,
		ProjectName: fmt.Sprintf("%s - %s", o.OrderNumber, o.CustomerName),
	}
	if o.OrderType == order.OrderTypeRental {
		draft.ExpectedStart = o.RentalStart
		draft.ExpectedEnd = o.RentalEnd
	} else {
		start := o.TransactionDate
		draft.ExpectedStart = &start
		draft.ExpectedEnd = o.DeliveryDate
	}
	return draft, nil
}
