package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medrent/backend/internal/domain/shared"
)

const aggregateTypeSalesOrder = "SalesOrder"

// Event types for the sales order aggregate
const (
	EventSalesOrderCreated         = "sales_order.created"
	EventSalesOrderSubmitted       = "sales_order.submitted"
	EventSalesOrderStatusChanged   = "sales_order.status_changed"
	EventSalesOrderCancelled       = "sales_order.cancelled"
	EventSalesOrderRenewed         = "sales_order.renewed"
	EventSalesOrderOverdue         = "sales_order.overdue"
	EventSalesOrderDeviceAssigned  = "sales_order.device_assigned"
	EventSalesOrderItemReplaced    = "sales_order.item_replaced"
	EventSalesOrderPaymentReceived = "sales_order.payment_received"
)

// SalesOrderCreatedEvent is raised when a draft order is created
type SalesOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string    `json:"order_number"`
	OrderType   OrderType `json:"order_type"`
	CustomerID  uuid.UUID `json:"customer_id"`
}

// NewSalesOrderCreatedEvent creates a new SalesOrderCreatedEvent
func NewSalesOrderCreatedEvent(o *SalesOrder) *SalesOrderCreatedEvent {
	return &SalesOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventSalesOrderCreated, aggregateTypeSalesOrder, o.ID, o.CompanyID),
		OrderNumber:     o.OrderNumber,
		OrderType:       o.OrderType,
		CustomerID:      o.CustomerID,
	}
}

// SalesOrderSubmittedEvent is raised when an order leaves draft
type SalesOrderSubmittedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string          `json:"order_number"`
	OrderType   OrderType       `json:"order_type"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
}

// NewSalesOrderSubmittedEvent creates a new SalesOrderSubmittedEvent
func NewSalesOrderSubmittedEvent(o *SalesOrder) *SalesOrderSubmittedEvent {
	return &SalesOrderSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventSalesOrderSubmitted, aggregateTypeSalesOrder, o.ID, o.CompanyID),
		OrderNumber:     o.OrderNumber,
		OrderType:       o.OrderType,
		GrandTotal:      o.GrandTotal,
	}
}

// SalesOrderStatusChangedEvent is raised on every header status change
type SalesOrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string      `json:"order_number"`
	FromStatus  OrderStatus `json:"from_status"`
	ToStatus    OrderStatus `json:"to_status"`
}

// NewSalesOrderStatusChangedEvent creates a new SalesOrderStatusChangedEvent
func NewSalesOrderStatusChangedEvent(o *SalesOrder, from, to OrderStatus) *SalesOrderStatusChangedEvent {
	return &SalesOrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventSalesOrderStatusChanged, aggregateTypeSalesOrder, o.ID, o.CompanyID),
		OrderNumber:     o.OrderNumber,
		FromStatus:      from,
		ToStatus:        to,
	}
}

// SalesOrderCancelledEvent is raised when an order is cancelled
type SalesOrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderNumber string      `json:"order_number"`
	FromStatus  OrderStatus `json:"from_status"`
	Reason      string      `json:"reason"`
}

// NewSalesOrderCancelledEvent creates a new SalesOrderCancelledEvent
func NewSalesOrderCancelledEvent(o *SalesOrder, from OrderStatus, reason string) *SalesOrderCancelledEvent {
	return &SalesOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventSalesOrderCancelled, aggregateTypeSalesOrder, o.ID, o.CompanyID),
		OrderNumber:     o.OrderNumber,
		FromStatus:      from,
		Reason:          reason,
	}
}

// SalesOrderRenewedEvent is raised on the predecessor when a renewal
// order is submitted against it
type SalesOrderRenewedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string    `json:"order_number"`
	SuccessorID uuid.UUID `json:"successor_id"`
}

// NewSalesOrderRenewedEvent creates a new SalesOrderRenewedEvent
func NewSalesOrderRenewedEvent(o *SalesOrder, successorID uuid.UUID) *SalesOrderRenewedEvent {
	return &SalesOrderRenewedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventSalesOrderRenewed, aggregateTypeSalesOrder, o.ID, o.CompanyID),
		OrderNumber:     o.OrderNumber,
		SuccessorID:     successorID,
	}
}

// SalesOrderOverdueEvent is raised by the sweep when a rental lapses
type SalesOrderOverdueEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
}

// NewSalesOrderOverdueEvent creates a new SalesOrderOverdueEvent
func NewSalesOrderOverdueEvent(o *SalesOrder) *SalesOrderOverdueEvent {
	return &SalesOrderOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventSalesOrderOverdue, aggregateTypeSalesOrder, o.ID, o.CompanyID),
		OrderNumber:     o.OrderNumber,
	}
}

// SalesOrderDeviceAssignedEvent is raised when a physical device is
// reserved against an order line
type SalesOrderDeviceAssignedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string    `json:"order_number"`
	ItemCode    string    `json:"item_code"`
	DeviceID    uuid.UUID `json:"device_id"`
}

// NewSalesOrderDeviceAssignedEvent creates a new SalesOrderDeviceAssignedEvent
func NewSalesOrderDeviceAssignedEvent(o *SalesOrder, itemCode string, deviceID uuid.UUID) *SalesOrderDeviceAssignedEvent {
	return &SalesOrderDeviceAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventSalesOrderDeviceAssigned, aggregateTypeSalesOrder, o.ID, o.CompanyID),
		OrderNumber:     o.OrderNumber,
		ItemCode:        itemCode,
		DeviceID:        deviceID,
	}
}

// SalesOrderItemReplacedEvent is raised when a device in the field is
// swapped for another
type SalesOrderItemReplacedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
	OldItemCode string `json:"old_item_code"`
	NewItemCode string `json:"new_item_code"`
	Reason      string `json:"reason"`
}

// NewSalesOrderItemReplacedEvent creates a new SalesOrderItemReplacedEvent
func NewSalesOrderItemReplacedEvent(o *SalesOrder, oldCode, newCode, reason string) *SalesOrderItemReplacedEvent {
	return &SalesOrderItemReplacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventSalesOrderItemReplaced, aggregateTypeSalesOrder, o.ID, o.CompanyID),
		OrderNumber:     o.OrderNumber,
		OldItemCode:     oldCode,
		NewItemCode:     newCode,
		Reason:          reason,
	}
}

// SalesOrderPaymentReceivedEvent is raised when a rental payment or
// deposit instalment is booked against the order
type SalesOrderPaymentReceivedEvent struct {
	shared.BaseDomainEvent
	OrderNumber   string          `json:"order_number"`
	Amount        decimal.Decimal `json:"amount"`
	IsDeposit     bool            `json:"is_deposit"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
}

// NewSalesOrderPaymentReceivedEvent creates a new SalesOrderPaymentReceivedEvent
func NewSalesOrderPaymentReceivedEvent(o *SalesOrder, amount decimal.Decimal, isDeposit bool, status PaymentStatus) *SalesOrderPaymentReceivedEvent {
	return &SalesOrderPaymentReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventSalesOrderPaymentReceived, aggregateTypeSalesOrder, o.ID, o.CompanyID),
		OrderNumber:     o.OrderNumber,
		Amount:          amount,
		IsDeposit:       isDeposit,
		PaymentStatus:   status,
	}
}
