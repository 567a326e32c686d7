package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medrent/backend/internal/domain/shared"
)

// Repository defines persistence for the SalesOrder aggregate
type Repository interface {
	Save(ctx context.Context, o *SalesOrder) error
	GenerateOrderNumber(ctx context.Context, companyID uuid.UUID) (string, error)
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*SalesOrder, error)
	FindByOrderNumber(ctx context.Context, companyID uuid.UUID, orderNumber string) (*SalesOrder, error)
	FindAll(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (shared.Paginated[SalesOrder], error)
	FindByCustomer(ctx context.Context, companyID, customerID uuid.UUID, filter shared.Filter) (shared.Paginated[SalesOrder], error)
	// FindOpenRentalsByCustomer lists the customer's rental orders still
	// holding coverage, for the overlap check at submission
	FindOpenRentalsByCustomer(ctx context.Context, companyID, customerID uuid.UUID) ([]SalesOrder, error)
	// FindActiveRentalsEndingBefore lists active rentals whose coverage
	// window lapsed before the cutoff, for the overdue sweep
	FindActiveRentalsEndingBefore(ctx context.Context, cutoff time.Time) ([]SalesOrder, error)
	// ExistsPONoForCustomer reports whether another order of the customer
	// already references the given customer purchase order number
	ExistsPONoForCustomer(ctx context.Context, companyID, customerID uuid.UUID, poNo string, excludeOrderID uuid.UUID) (bool, error)
	Delete(ctx context.Context, companyID, id uuid.UUID) error
}

// ItemCatalog resolves catalog attributes for an item code at line
// creation. Bundles explode through ExplodeBundle.
type ItemCatalog interface {
	Lookup(ctx context.Context, itemCode string) (*CatalogItem, error)
	// ExplodeBundle returns the component list for one unit of a bundle
	ExplodeBundle(ctx context.Context, itemCode string) ([]BundleComponent, error)
}

// CatalogItem is the denormalized catalog view of an item
type CatalogItem struct {
	ItemCode             string
	ItemName             string
	ItemGroup            string
	UOM                  string
	IsStockItem          bool
	IsBundle             bool
	EnsureSerialDelivery bool
	DefaultSupplier      string
	DefaultWarehouse     string
}

// BundleComponent is one component of an exploded bundle, qty per unit
// of the parent
type BundleComponent struct {
	ItemCode    string
	ItemName    string
	Qty         decimal.Decimal
	UOM         string
	Warehouse   string
	IsStockItem bool
}

// CreditChecker verifies a customer's outstanding exposure before an
// order is submitted
type CreditChecker interface {
	CheckCredit(ctx context.Context, companyID, customerID uuid.UUID, additionalExposure decimal.Decimal) error
}

// ReservationLookup exposes warehouse stock reservations held against
// order lines, consulted by pick list derivation
type ReservationLookup interface {
	ReservedQty(ctx context.Context, orderID, itemID uuid.UUID) (decimal.Decimal, error)
	HasReservations(ctx context.Context, orderID uuid.UUID) (bool, error)
}
