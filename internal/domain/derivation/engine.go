package derivation

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medrent/backend/internal/domain/order"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/domain/shared/valueobject"
)

// Engine derives downstream documents from a submitted sales order.
//
// Every derivation follows the same protocol: validate the source order,
// select the lines with a positive remainder, assemble the target lines,
// run the target's post-processing, and fail with ErrNothingToDerive when
// no line qualifies. The engine only builds drafts; persisting them is
// the caller's concern.
type Engine struct {
	catalog      order.ItemCatalog
	reservations order.ReservationLookup
	rates        ExchangeRateProvider
	maintenance  MaintenanceLookup
}

// ExchangeRateProvider resolves a conversion rate between two currencies,
// used when a backing purchase order is raised in the supplier's currency
type ExchangeRateProvider interface {
	Rate(ctx context.Context, from, to valueobject.Currency) (decimal.Decimal, error)
}

// MaintenanceLookup reports whether a maintenance document already exists
// for an order. Schedules and visits are derived at most once per order.
type MaintenanceLookup interface {
	HasSchedule(ctx context.Context, orderID uuid.UUID) (bool, error)
	HasVisit(ctx context.Context, orderID uuid.UUID) (bool, error)
}

// NewEngine creates a derivation engine
func NewEngine(catalog order.ItemCatalog, reservations order.ReservationLookup, rates ExchangeRateProvider, maintenance MaintenanceLookup) *Engine {
	return &Engine{
		catalog:      catalog,
		reservations: reservations,
		rates:        rates,
		maintenance:  maintenance,
	}
}

// Derivation failures
var (
	// ErrNothingToDerive signals that every line is already fully covered
	ErrNothingToDerive = shared.NewDomainError("NOTHING_TO_DERIVE", "all items are already fully covered by downstream documents")
)

// validateSource runs the source-side checks shared by all derivations
func validateSource(o *order.SalesOrder) error {
	if !o.IsSubmitted() {
		return shared.NewDomainError("ORDER_NOT_SUBMITTED", "downstream documents can only be derived from submitted orders")
	}
	switch o.Status {
	case order.StatusClosed:
		return shared.NewDomainError("ORDER_CLOSED", "no documents can be derived from a closed order")
	case order.StatusCancelled:
		return shared.NewDomainError("ORDER_CANCELLED", "no documents can be derived from a cancelled order")
	case order.StatusOnHold:
		return shared.NewDomainError("ORDER_ON_HOLD", "order is on hold")
	}
	return nil
}

// selectLines filters the order lines whose remainder under the given
// measure is positive. The target line is built by assemble; a nil return
// skips the line.
func selectLines[T any](o *order.SalesOrder, remaining func(*order.SalesOrderItem) decimal.Decimal, assemble func(*order.SalesOrderItem, decimal.Decimal) *T) []T {
	var out []T
	for idx := range o.Items {
		item := &o.Items[idx]
		rem := remaining(item)
		if !rem.IsPositive() {
			continue
		}
		if line := assemble(item, rem); line != nil {
			out = append(out, *line)
		}
	}
	return out
}

// packedRemainder scales a bundle component by the parent's pending ratio
// so partial documents keep the pack list proportional to the parent qty
func packedRemainder(parent *order.SalesOrderItem, packed *order.PackedItem) decimal.Decimal {
	return packed.Qty.Mul(order.PendingRatio(parent))
}
