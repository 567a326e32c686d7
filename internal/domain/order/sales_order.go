package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/domain/shared/valueobject"
)

// SalesOrder is the aggregate root for customer orders. It owns the order
// lines, packed bundle components and tax rows, and controls every status
// change and fulfilment recomputation.
type SalesOrder struct {
	shared.CompanyAggregateRoot
	OrderNumber     string     `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	OrderType       OrderType  `gorm:"size:20;not null;default:'SALES'" json:"order_type"`
	CustomerID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"customer_id"`
	CustomerName    string     `gorm:"size:200" json:"customer_name"`
	TransactionDate time.Time  `gorm:"not null" json:"transaction_date"`
	DeliveryDate    *time.Time `json:"delivery_date"`

	Currency       valueobject.Currency `gorm:"size:3;default:'INR'" json:"currency"`
	ConversionRate decimal.Decimal      `gorm:"type:decimal(20,9);default:1" json:"conversion_rate"`

	NetTotal     decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"net_total"`
	TaxTotal     decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"tax_total"`
	GrandTotal   decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"grand_total"`
	RoundedTotal decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"rounded_total"`

	Status         OrderStatus    `gorm:"size:40;not null;default:'DRAFT'" json:"status"`
	PreviousStatus OrderStatus    `gorm:"size:40" json:"previous_status"`
	DeliveryStatus DeliveryStatus `gorm:"size:30;default:'NOT_DELIVERED'" json:"delivery_status"`
	BillingStatus  BillingStatus  `gorm:"size:30;default:'NOT_BILLED'" json:"billing_status"`
	OverdueTrack   OverdueTrack   `gorm:"size:20;default:'ACTIVE'" json:"overdue_track"`

	PerDelivered decimal.Decimal `gorm:"type:decimal(6,2);default:0" json:"per_delivered"`
	PerBilled    decimal.Decimal `gorm:"type:decimal(6,2);default:0" json:"per_billed"`
	PerPicked    decimal.Decimal `gorm:"type:decimal(6,2);default:0" json:"per_picked"`

	// Customer purchase order reference. AllowSameCustomerPO skips the
	// duplicate-PO guard when the customer legitimately splits one PO
	// across several orders.
	PONo                string     `gorm:"size:100" json:"po_no"`
	PODate              *time.Time `json:"po_date"`
	AllowSameCustomerPO bool       `gorm:"default:false" json:"allow_same_customer_po"`

	SkipDeliveryNote bool `gorm:"default:false" json:"skip_delivery_note"`

	// Rental coverage window and lineage
	RentalStart     *time.Time `json:"rental_start_date"`
	RentalEnd       *time.Time `json:"rental_end_date"`
	PreviousOrderID *uuid.UUID `gorm:"type:uuid;index" json:"previous_order_id"`

	// Rental money tracking
	PaymentStatus         PaymentStatus   `gorm:"size:20;default:'UNPAID'" json:"payment_status"`
	PaidAmount            decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"paid_amount"`
	SecurityDeposit       decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"security_deposit"`
	SecurityDepositPaid   decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"security_deposit_paid"`
	SecurityDepositStatus PaymentStatus   `gorm:"size:20;default:'UNPAID'" json:"security_deposit_status"`

	SubmittedAt *time.Time `json:"submitted_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	Remarks     string     `gorm:"size:1000" json:"remarks"`

	Items       []SalesOrderItem `gorm:"foreignKey:OrderID" json:"items"`
	PackedItems []PackedItem     `gorm:"foreignKey:OrderID" json:"packed_items"`
	Taxes       []TaxLine        `gorm:"foreignKey:OrderID" json:"taxes"`
}

// TableName specifies the table name for SalesOrder
func (SalesOrder) TableName() string {
	return "sales_orders"
}

// NewSalesOrder creates a new draft sales order
func NewSalesOrder(companyID, customerID uuid.UUID, orderNumber string, orderType OrderType, transactionDate time.Time) (*SalesOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "order number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "customer is required")
	}
	if !orderType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ORDER_TYPE", fmt.Sprintf("unknown order type: %s", orderType))
	}
	if transactionDate.IsZero() {
		transactionDate = time.Now()
	}

	o := &SalesOrder{
		CompanyAggregateRoot:  shared.NewCompanyAggregateRoot(companyID),
		OrderNumber:           orderNumber,
		OrderType:             orderType,
		CustomerID:            customerID,
		TransactionDate:       transactionDate,
		Currency:              valueobject.DefaultCurrency,
		ConversionRate:        decimal.NewFromInt(1),
		Status:                StatusDraft,
		OverdueTrack:          OverdueTrackActive,
		PaymentStatus:         PaymentStatusUnpaid,
		SecurityDepositStatus: PaymentStatusUnpaid,
		DeliveryStatus:        DeliveryNotDelivered,
		BillingStatus:         BillingNotBilled,
	}
	o.AddDomainEvent(NewSalesOrderCreatedEvent(o))
	return o, nil
}

// IsDraft returns true while the order has not been submitted
func (o *SalesOrder) IsDraft() bool {
	return o.Status == StatusDraft
}

// IsSubmitted returns true once the order has left draft and is not cancelled
func (o *SalesOrder) IsSubmitted() bool {
	return o.SubmittedAt != nil && o.Status != StatusCancelled
}

// RentalPeriod returns the rental coverage window, or an error when the
// order carries no rental dates
func (o *SalesOrder) RentalPeriod() (valueobject.DateRange, error) {
	if o.RentalStart == nil || o.RentalEnd == nil {
		return valueobject.DateRange{}, shared.NewDomainError("MISSING_RENTAL_PERIOD", "order has no rental period")
	}
	return valueobject.NewDateRange(*o.RentalStart, *o.RentalEnd)
}

// SetRentalPeriod sets the rental coverage window on a draft order
func (o *SalesOrder) SetRentalPeriod(start, end time.Time) error {
	r, err := valueobject.NewDateRange(start, end)
	if err != nil {
		return shared.NewDomainError("INVALID_RENTAL_PERIOD", err.Error())
	}
	s, e := r.Start(), r.End()
	o.RentalStart = &s
	o.RentalEnd = &e
	return nil
}

// AddItem appends a line to a draft order and recalculates totals
func (o *SalesOrder) AddItem(item SalesOrderItem) error {
	if !o.IsDraft() {
		return shared.NewDomainError("ORDER_NOT_DRAFT", "items can only be added to draft orders")
	}
	if item.ItemCode == "" {
		return shared.NewDomainError("INVALID_ITEM", "item code cannot be empty")
	}
	if !item.Qty.IsPositive() {
		return shared.NewDomainError("INVALID_QTY", fmt.Sprintf("quantity for item %s must be positive", item.ItemCode))
	}
	if item.Rate.IsNegative() {
		return shared.NewDomainError("INVALID_RATE", fmt.Sprintf("rate for item %s cannot be negative", item.ItemCode))
	}
	if item.ID == uuid.Nil {
		item.BaseEntity = shared.NewBaseEntity()
	}
	item.OrderID = o.ID
	if item.Status == "" {
		item.Status = LineStatusPending
	}
	item.RecalculateAmount()
	o.Items = append(o.Items, item)
	o.RecalculateTotals()
	return nil
}

// RemoveItem removes a line from a draft order by item id
func (o *SalesOrder) RemoveItem(itemID uuid.UUID) error {
	if !o.IsDraft() {
		return shared.NewDomainError("ORDER_NOT_DRAFT", "items can only be removed from draft orders")
	}
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			o.RecalculateTotals()
			return nil
		}
	}
	return shared.ErrNotFound
}

// ItemByID finds an order line by its id
func (o *SalesOrder) ItemByID(itemID uuid.UUID) (*SalesOrderItem, error) {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx], nil
		}
	}
	return nil, shared.ErrNotFound
}

// ItemByCode finds the first order line with the given item code
func (o *SalesOrder) ItemByCode(itemCode string) (*SalesOrderItem, error) {
	for idx := range o.Items {
		if o.Items[idx].ItemCode == itemCode {
			return &o.Items[idx], nil
		}
	}
	return nil, shared.ErrNotFound
}

// PackedItemsFor returns the bundle components belonging to a parent line
func (o *SalesOrder) PackedItemsFor(parentItemID uuid.UUID) []PackedItem {
	var out []PackedItem
	for idx := range o.PackedItems {
		if o.PackedItems[idx].ParentItemID == parentItemID {
			out = append(out, o.PackedItems[idx])
		}
	}
	return out
}

// RecalculateTotals recomputes line amounts, tax amounts and order totals
func (o *SalesOrder) RecalculateTotals() {
	net := decimal.Zero
	for idx := range o.Items {
		o.Items[idx].RecalculateAmount()
		net = net.Add(o.Items[idx].Amount)
	}
	o.NetTotal = net

	taxTotal := decimal.Zero
	for idx := range o.Taxes {
		t := &o.Taxes[idx]
		if t.Rate.IsPositive() {
			t.Amount = net.Mul(t.Rate).Div(hundred)
		}
		taxTotal = taxTotal.Add(t.Amount)
	}
	o.TaxTotal = taxTotal
	o.GrandTotal = net.Add(taxTotal)
	o.RoundedTotal = o.GrandTotal.Round(0)
}

// validateForSubmit runs the document-level checks gating submission
func (o *SalesOrder) validateForSubmit() error {
	if len(o.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "order must have at least one item")
	}
	if o.PODate != nil && o.PODate.After(o.TransactionDate) {
		return shared.NewDomainError("INVALID_PO_DATE", "customer purchase order date cannot be after the order date")
	}
	for idx := range o.Items {
		item := &o.Items[idx]
		if !item.Qty.IsPositive() {
			return shared.NewDomainError("INVALID_QTY", fmt.Sprintf("quantity for item %s must be positive", item.ItemCode))
		}
		if o.OrderType == OrderTypeSales && item.DeliveryDate == nil && o.DeliveryDate == nil {
			return shared.NewDomainError("MISSING_DELIVERY_DATE", fmt.Sprintf("delivery date is required for item %s", item.ItemCode))
		}
		if item.DeliveryDate != nil && item.DeliveryDate.Before(o.TransactionDate) {
			return shared.NewDomainError("INVALID_DELIVERY_DATE", fmt.Sprintf("delivery date for item %s cannot precede the order date", item.ItemCode))
		}
		if item.IsStockItem && !item.IsDropShip() && item.Warehouse == "" {
			return shared.NewDomainError("MISSING_WAREHOUSE", fmt.Sprintf("warehouse is required for stock item %s", item.ItemCode))
		}
		if item.IsDropShip() && item.EnsureSerialDelivery {
			return shared.NewDomainError("DROP_SHIP_SERIAL_CONFLICT",
				fmt.Sprintf("item %s requires serial-tracked delivery and cannot be drop-shipped", item.ItemCode))
		}
	}
	if o.OrderType == OrderTypeRental {
		if _, err := o.RentalPeriod(); err != nil {
			return err
		}
	}
	return nil
}

// Submit moves a draft order into its submitted lifecycle. Rental orders
// enter the approval flow; sales orders go straight to fulfilment tracking.
func (o *SalesOrder) Submit() error {
	if !o.IsDraft() {
		return shared.NewDomainError("ORDER_NOT_DRAFT", "only draft orders can be submitted")
	}
	if err := o.validateForSubmit(); err != nil {
		return err
	}

	now := time.Now()
	o.SubmittedAt = &now
	if o.OrderType == OrderTypeRental {
		o.Status = StatusPending
		for idx := range o.Items {
			o.Items[idx].Status = LineStatusPending
		}
	} else {
		o.RecomputeFulfilment()
		o.Status = StatusFromFulfilment(o.PerDelivered, o.PerBilled)
	}
	o.AddDomainEvent(NewSalesOrderSubmittedEvent(o))
	return nil
}

// TransitionTo applies a commanded status change, enforcing the transition
// table. PreviousStatus is retained so holds can be released back.
func (o *SalesOrder) TransitionTo(target OrderStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("unknown status: %s", target))
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("cannot transition order %s from %s to %s", o.OrderNumber, o.Status, target))
	}
	from := o.Status
	o.PreviousStatus = from
	o.Status = target
	o.AddDomainEvent(NewSalesOrderStatusChangedEvent(o, from, target))
	return nil
}

// Cancel voids the order. Closed orders must be reopened first, and orders
// with active rental devices in the field cannot be cancelled.
func (o *SalesOrder) Cancel(reason string) error {
	if o.Status == StatusClosed {
		return shared.NewDomainError("CLOSED_ORDER_CANNOT_CANCEL", "closed orders cannot be cancelled; reopen the order first")
	}
	if o.Status == StatusCancelled {
		return shared.NewDomainError("ALREADY_CANCELLED", "order is already cancelled")
	}
	if o.OrderType == OrderTypeRental {
		for idx := range o.Items {
			switch o.Items[idx].Status {
			case LineStatusDispatched, LineStatusActive, LineStatusReadyForPickup, LineStatusPickedUp:
				return shared.NewDomainError("DEVICE_IN_FIELD",
					fmt.Sprintf("item %s has a device in the field and must be picked up before cancellation", o.Items[idx].ItemCode))
			}
		}
	}

	now := time.Now()
	from := o.Status
	o.Status = StatusCancelled
	o.CancelledAt = &now
	if reason != "" {
		o.Remarks = reason
	}
	for idx := range o.Items {
		o.Items[idx].Status = LineStatusCancelled
	}
	o.AddDomainEvent(NewSalesOrderCancelledEvent(o, from, reason))
	return nil
}

// Close stops further fulfilment against the order without cancelling it
func (o *SalesOrder) Close() error {
	if !o.IsSubmitted() {
		return shared.NewDomainError("ORDER_NOT_SUBMITTED", "only submitted orders can be closed")
	}
	if o.Status == StatusClosed {
		return shared.NewDomainError("ALREADY_CLOSED", "order is already closed")
	}
	from := o.Status
	o.PreviousStatus = from
	o.Status = StatusClosed
	o.BillingStatus = BillingClosed
	o.DeliveryStatus = DeliveryClosed
	o.AddDomainEvent(NewSalesOrderStatusChangedEvent(o, from, StatusClosed))
	return nil
}

// Reopen reverts a closed order to its fulfilment-derived status
func (o *SalesOrder) Reopen() error {
	if o.Status != StatusClosed {
		return shared.NewDomainError("ORDER_NOT_CLOSED", "only closed orders can be reopened")
	}
	from := o.Status
	// leave CLOSED before recomputing so the closed clamp on the
	// billing/delivery summaries does not survive the reopen
	o.Status = o.PreviousStatus
	o.RecomputeFulfilment()
	if o.OrderType == OrderTypeRental {
		statuses := make([]LineStatus, 0, len(o.Items))
		for idx := range o.Items {
			statuses = append(statuses, o.Items[idx].Status)
		}
		o.Status = DeriveHeaderStatus(statuses)
	} else {
		o.Status = StatusFromFulfilment(o.PerDelivered, o.PerBilled)
	}
	o.AddDomainEvent(NewSalesOrderStatusChangedEvent(o, from, o.Status))
	return nil
}

// MarkOverdue flags an active rental whose coverage window has lapsed.
// The sweep is idempotent: already-flagged orders are left alone.
func (o *SalesOrder) MarkOverdue(asOf time.Time) bool {
	if o.OrderType != OrderTypeRental || o.OverdueTrack != OverdueTrackActive {
		return false
	}
	if o.RentalEnd == nil || !o.RentalEnd.Before(asOf) {
		return false
	}
	switch o.Status {
	case StatusActive, StatusReadyForPickup, StatusPartiallyClosed:
		o.OverdueTrack = OverdueTrackOverdue
		o.AddDomainEvent(NewSalesOrderOverdueEvent(o))
		return true
	}
	return false
}

// MarkRenewed stamps a predecessor order once its renewal is submitted
func (o *SalesOrder) MarkRenewed(successorID uuid.UUID) error {
	if o.OrderType != OrderTypeRental {
		return shared.NewDomainError("NOT_RENTAL", "only rental orders can be renewed")
	}
	if !o.IsSubmitted() {
		return shared.NewDomainError("ORDER_NOT_SUBMITTED", "only submitted orders can be renewed")
	}
	from := o.Status
	o.PreviousStatus = from
	o.Status = StatusRenewed
	o.OverdueTrack = OverdueTrackRenewed
	for idx := range o.Items {
		if o.Items[idx].Status != LineStatusCancelled {
			o.Items[idx].Status = LineStatusRenewed
		}
	}
	o.AddDomainEvent(NewSalesOrderRenewedEvent(o, successorID))
	return nil
}

// RecordPayment applies a received rental payment and reclassifies the
// payment status against the grand total
func (o *SalesOrder) RecordPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "payment amount must be positive")
	}
	paid := o.PaidAmount.Add(amount)
	if paid.GreaterThan(o.GrandTotal) {
		return shared.NewDomainError("OVERPAYMENT",
			fmt.Sprintf("payment of %s exceeds outstanding balance on order %s", amount, o.OrderNumber))
	}
	o.PaidAmount = paid
	o.PaymentStatus = ClassifyPayment(o.PaidAmount, o.GrandTotal)
	return nil
}

// RecordDeposit applies a received security deposit instalment
func (o *SalesOrder) RecordDeposit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "deposit amount must be positive")
	}
	if !o.SecurityDeposit.IsPositive() {
		return shared.NewDomainError("NO_DEPOSIT_DUE", "order carries no security deposit")
	}
	paid := o.SecurityDepositPaid.Add(amount)
	if paid.GreaterThan(o.SecurityDeposit) {
		return shared.NewDomainError("OVERPAYMENT", "deposit received exceeds the deposit due")
	}
	o.SecurityDepositPaid = paid
	o.SecurityDepositStatus = ClassifyPayment(o.SecurityDepositPaid, o.SecurityDeposit)
	return nil
}

// ReleaseDeposit books a deposit refund back to the customer
func (o *SalesOrder) ReleaseDeposit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "refund amount must be positive")
	}
	if amount.GreaterThan(o.SecurityDepositPaid) {
		return shared.NewDomainError("REFUND_EXCEEDS_DEPOSIT", "refund exceeds the deposit held")
	}
	o.SecurityDepositPaid = o.SecurityDepositPaid.Sub(amount)
	o.SecurityDepositStatus = ClassifyPayment(o.SecurityDepositPaid, o.SecurityDeposit)
	return nil
}
