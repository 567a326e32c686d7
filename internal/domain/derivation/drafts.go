package derivation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medrent/backend/internal/domain/shared/valueobject"
)

// Drafts are the typed, unsaved target documents produced by the engine.
// The caller persists them through the matching downstream service; the
// engine itself never writes.

// DeliveryNoteDraft is an unsaved delivery note derived from an order
type DeliveryNoteDraft struct {
	OrderID     uuid.UUID
	OrderNumber string
	CompanyID   uuid.UUID
	CustomerID  uuid.UUID
	Currency    valueobject.Currency
	PostingDate time.Time
	Items       []DeliveryNoteLine
	PackedItems []PackedLine
}

// DeliveryNoteLine is one deliverable line of a draft delivery note
type DeliveryNoteLine struct {
	SourceLineID   uuid.UUID
	ItemCode       string
	ItemName       string
	Warehouse      string
	Qty            decimal.Decimal
	Rate           decimal.Decimal
	Amount         decimal.Decimal
	UOM            string
	SerialRequired bool
}

// PackedLine is a bundle component row carried onto a derived document
type PackedLine struct {
	ParentLineID   uuid.UUID
	ParentItemCode string
	ItemCode       string
	Warehouse      string
	Qty            decimal.Decimal
}

// SalesInvoiceDraft is an unsaved sales invoice derived from an order
type SalesInvoiceDraft struct {
	OrderID     uuid.UUID
	OrderNumber string
	CompanyID   uuid.UUID
	CustomerID  uuid.UUID
	Currency    valueobject.Currency
	PostingDate time.Time
	Items       []SalesInvoiceLine
	TaxTotal    decimal.Decimal
	GrandTotal  decimal.Decimal
}

// SalesInvoiceLine is one billable line of a draft invoice
type SalesInvoiceLine struct {
	SourceLineID uuid.UUID
	ItemCode     string
	ItemName     string
	Qty          decimal.Decimal
	Rate         decimal.Decimal
	Amount       decimal.Decimal
	UOM          string
}

// PurchaseOrderDraft is an unsaved purchase order for one supplier,
// raised to back the sales order
type PurchaseOrderDraft struct {
	OrderID        uuid.UUID
	OrderNumber    string
	CompanyID      uuid.UUID
	Supplier       string
	DropShip       bool
	Currency       valueobject.Currency
	ConversionRate decimal.Decimal
	Items          []PurchaseOrderLine
}

// PurchaseOrderLine is one procurement line. Selling-price fields are
// deliberately absent: the supplier's pricing applies, not the customer's.
type PurchaseOrderLine struct {
	SourceLineID uuid.UUID
	ItemCode     string
	ItemName     string
	Warehouse    string
	StockQty     decimal.Decimal
	UOM          string
	DeliveryDate *time.Time
}

// PickListDraft is an unsaved warehouse pick list
type PickListDraft struct {
	OrderID     uuid.UUID
	OrderNumber string
	CompanyID   uuid.UUID
	Locations   []PickListLine
}

// PickListLine is one pick location row
type PickListLine struct {
	SourceLineID   uuid.UUID
	ItemCode       string
	Warehouse      string
	Qty            decimal.Decimal
	StockQty       decimal.Decimal
	UOM            string
	IsBundlePart   bool
	ParentItemCode string
}

// MaterialRequestDraft is an unsaved material request covering the
// unrequested remainder of the order
type MaterialRequestDraft struct {
	OrderID     uuid.UUID
	OrderNumber string
	CompanyID   uuid.UUID
	RequestType string
	Items       []MaterialRequestLine
}

// MaterialRequestLine is one requested line
type MaterialRequestLine struct {
	SourceLineID uuid.UUID
	ItemCode     string
	Warehouse    string
	Qty          decimal.Decimal
	UOM          string
	RequiredBy   *time.Time
}

// ProjectDraft is an unsaved project opened against the order
type ProjectDraft struct {
	OrderID       uuid.UUID
	OrderNumber   string
	CompanyID     uuid.UUID
	CustomerID    uuid.UUID
	ProjectName   string
	ExpectedStart *time.Time
	ExpectedEnd   *time.Time
}

// MaintenanceScheduleDraft is an unsaved periodic maintenance plan
// covering the serviceable lines of the order
type MaintenanceScheduleDraft struct {
	OrderID     uuid.UUID
	OrderNumber string
	CompanyID   uuid.UUID
	CustomerID  uuid.UUID
	StartDate   time.Time
	EndDate     time.Time
	Items       []MaintenanceScheduleItem
}

// MaintenanceScheduleItem is one scheduled line. Periodicity defaults to
// monthly servicing and is adjusted by the maintenance team on the saved
// document.
type MaintenanceScheduleItem struct {
	SourceLineID uuid.UUID
	ItemCode     string
	ItemName     string
	Periodicity  string
	StartDate    time.Time
	EndDate      time.Time
}

// MaintenanceVisitDraft is an unsaved maintenance visit scheduled for
// the devices on the order
type MaintenanceVisitDraft struct {
	OrderID     uuid.UUID
	OrderNumber string
	CompanyID   uuid.UUID
	CustomerID  uuid.UUID
	Purposes    []MaintenancePurpose
}

// MaintenancePurpose is one visit purpose row, one per serviceable line
type MaintenancePurpose struct {
	SourceLineID uuid.UUID
	ItemCode     string
	ItemName     string
	Description  string
}
