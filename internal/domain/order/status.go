package order

import (
	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle status of a sales order header
type OrderStatus string

const (
	StatusDraft                OrderStatus = "DRAFT"
	StatusPending              OrderStatus = "PENDING"
	StatusApproved             OrderStatus = "APPROVED"
	StatusRentalDeviceAssigned OrderStatus = "RENTAL_DEVICE_ASSIGNED"
	StatusReadyForDelivery     OrderStatus = "READY_FOR_DELIVERY"
	StatusDispatched           OrderStatus = "DISPATCHED"
	StatusActive               OrderStatus = "ACTIVE"
	StatusReadyForPickup       OrderStatus = "READY_FOR_PICKUP"
	StatusPickedUp             OrderStatus = "PICKED_UP"
	StatusSubmittedToOffice    OrderStatus = "SUBMITTED_TO_OFFICE"
	StatusOnHold               OrderStatus = "ON_HOLD"
	StatusRenewed              OrderStatus = "RENEWED"
	StatusToDeliverAndBill     OrderStatus = "TO_DELIVER_AND_BILL"
	StatusToBill               OrderStatus = "TO_BILL"
	StatusToDeliver            OrderStatus = "TO_DELIVER"
	StatusCompleted            OrderStatus = "COMPLETED"
	StatusClosed               OrderStatus = "CLOSED"
	StatusPartiallyClosed      OrderStatus = "PARTIALLY_CLOSED"
	StatusCancelled            OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a known OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusRentalDeviceAssigned,
		StatusReadyForDelivery, StatusDispatched, StatusActive, StatusReadyForPickup,
		StatusPickedUp, StatusSubmittedToOffice, StatusOnHold, StatusRenewed,
		StatusToDeliverAndBill, StatusToBill, StatusToDeliver, StatusCompleted,
		StatusClosed, StatusPartiallyClosed, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal returns true for states that accept no further transitions
func (s OrderStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted || s == StatusRenewed
}

// IsFulfilment returns true for statuses derived from billing/delivery
// percentages rather than commanded by a rental transition
func (s OrderStatus) IsFulfilment() bool {
	switch s {
	case StatusToDeliverAndBill, StatusToBill, StatusToDeliver, StatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo checks whether the rental flow allows moving to target.
// Fulfilment statuses are re-derived rather than commanded, so transitions
// between them are always permitted.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if s == target {
		return false
	}
	if s.IsTerminal() {
		return false
	}
	// Closed orders may only be reopened, never cancelled
	if s == StatusClosed {
		return target == StatusActive || target == StatusPartiallyClosed
	}
	if target == StatusCancelled {
		return true
	}
	if s.IsFulfilment() && target.IsFulfilment() {
		return true
	}
	switch s {
	case StatusDraft:
		return target == StatusPending || target.IsFulfilment()
	case StatusPending:
		return target == StatusApproved || target == StatusOnHold
	case StatusApproved:
		return target == StatusRentalDeviceAssigned || target == StatusReadyForDelivery
	case StatusRentalDeviceAssigned:
		return target == StatusReadyForDelivery
	case StatusReadyForDelivery:
		return target == StatusDispatched
	case StatusDispatched:
		return target == StatusActive
	case StatusActive:
		return target == StatusReadyForPickup || target == StatusOnHold ||
			target == StatusRenewed || target == StatusClosed || target == StatusPartiallyClosed
	case StatusReadyForPickup:
		return target == StatusPickedUp || target == StatusActive
	case StatusPickedUp:
		return target == StatusSubmittedToOffice || target == StatusReadyForPickup || target == StatusActive
	case StatusSubmittedToOffice:
		return target == StatusClosed || target == StatusPartiallyClosed ||
			target == StatusPickedUp || target == StatusRenewed
	case StatusPartiallyClosed:
		return target == StatusClosed || target == StatusActive || target == StatusSubmittedToOffice
	case StatusOnHold:
		return target == StatusActive || target == StatusPending
	case StatusToDeliverAndBill, StatusToBill, StatusToDeliver:
		return target == StatusClosed || target == StatusOnHold
	}
	return false
}

// LineStatus is the rental sub-status tracked per order line, voted into
// the header status when an order has multiple lines
type LineStatus string

const (
	LineStatusPending           LineStatus = "PENDING"
	LineStatusApproved          LineStatus = "APPROVED"
	LineStatusReadyForDelivery  LineStatus = "READY_FOR_DELIVERY"
	LineStatusDispatched        LineStatus = "DISPATCHED"
	LineStatusActive            LineStatus = "ACTIVE"
	LineStatusReadyForPickup    LineStatus = "READY_FOR_PICKUP"
	LineStatusPickedUp          LineStatus = "PICKED_UP"
	LineStatusSubmittedToOffice LineStatus = "SUBMITTED_TO_OFFICE"
	LineStatusRenewed           LineStatus = "RENEWED"
	LineStatusCancelled         LineStatus = "CANCELLED"
)

// HeaderStatus maps a line sub-status to the order status a single-line
// order mirrors
func (s LineStatus) HeaderStatus() OrderStatus {
	switch s {
	case LineStatusPending:
		return StatusPending
	case LineStatusApproved:
		return StatusApproved
	case LineStatusReadyForDelivery:
		return StatusReadyForDelivery
	case LineStatusDispatched:
		return StatusDispatched
	case LineStatusActive:
		return StatusActive
	case LineStatusReadyForPickup:
		return StatusReadyForPickup
	case LineStatusPickedUp:
		return StatusPickedUp
	case LineStatusSubmittedToOffice:
		return StatusSubmittedToOffice
	case LineStatusRenewed:
		return StatusRenewed
	case LineStatusCancelled:
		return StatusCancelled
	}
	return StatusActive
}

// DeriveHeaderStatus re-derives the header status from line sub-statuses.
//
// A single-line order mirrors its line. With multiple lines, lines still in
// "Ready for Delivery" or "Dispatched" are excluded from the vote; of the
// remaining voters, all Submitted to Office closes the order fully, any
// Submitted to Office closes it partially, and all Active keeps it Active.
func DeriveHeaderStatus(lines []LineStatus) OrderStatus {
	if len(lines) == 0 {
		return StatusActive
	}
	if len(lines) == 1 {
		return lines[0].HeaderStatus()
	}

	uniform := true
	for _, ls := range lines[1:] {
		if ls != lines[0] {
			uniform = false
			break
		}
	}
	if uniform {
		return lines[0].HeaderStatus()
	}

	voters := make([]LineStatus, 0, len(lines))
	for _, ls := range lines {
		if ls == LineStatusReadyForDelivery || ls == LineStatusDispatched {
			continue
		}
		voters = append(voters, ls)
	}
	if len(voters) == 0 {
		return StatusActive
	}

	allSubmitted := true
	anySubmitted := false
	allActive := true
	for _, ls := range voters {
		if ls == LineStatusSubmittedToOffice {
			anySubmitted = true
		} else {
			allSubmitted = false
		}
		if ls != LineStatusActive {
			allActive = false
		}
	}

	switch {
	case allSubmitted:
		return StatusSubmittedToOffice
	case allActive:
		return StatusActive
	case anySubmitted:
		return StatusPartiallyClosed
	default:
		return StatusActive
	}
}

// StatusFromFulfilment maps billing/delivery completion percentages to the
// generic fulfilment status of a submitted sales order
func StatusFromFulfilment(perDelivered, perBilled decimal.Decimal) OrderStatus {
	hundred := decimal.NewFromInt(100)
	delivered := perDelivered.GreaterThanOrEqual(hundred)
	billed := perBilled.GreaterThanOrEqual(hundred)

	switch {
	case delivered && billed:
		return StatusCompleted
	case delivered:
		return StatusToBill
	case billed:
		return StatusToDeliver
	default:
		return StatusToDeliverAndBill
	}
}

// OverdueTrack is the orthogonal overdue marker swept by the scheduler
type OverdueTrack string

const (
	OverdueTrackActive  OverdueTrack = "ACTIVE"
	OverdueTrackOverdue OverdueTrack = "OVERDUE"
	OverdueTrackRenewed OverdueTrack = "RENEWED"
)

// BillingStatus summarises how much of the order has been invoiced
type BillingStatus string

const (
	BillingNotBilled    BillingStatus = "NOT_BILLED"
	BillingPartlyBilled BillingStatus = "PARTLY_BILLED"
	BillingFullyBilled  BillingStatus = "FULLY_BILLED"
	BillingClosed       BillingStatus = "CLOSED"
)

// DeliveryStatus summarises how much of the order has been delivered
type DeliveryStatus string

const (
	DeliveryNotDelivered    DeliveryStatus = "NOT_DELIVERED"
	DeliveryPartlyDelivered DeliveryStatus = "PARTLY_DELIVERED"
	DeliveryFullyDelivered  DeliveryStatus = "FULLY_DELIVERED"
	DeliveryClosed          DeliveryStatus = "CLOSED"
	DeliveryNotApplicable   DeliveryStatus = "NOT_APPLICABLE"
)

// PaymentStatus is the three-way classification shared by rental payments
// and security deposits
type PaymentStatus string

const (
	PaymentStatusPaid          PaymentStatus = "PAID"
	PaymentStatusUnpaid        PaymentStatus = "UNPAID"
	PaymentStatusPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
)

// ClassifyPayment derives the payment status from the paid amount and the
// total due: nothing outstanding is Paid, nothing received is Unpaid,
// anything in between is Partially Paid.
func ClassifyPayment(paid, total decimal.Decimal) PaymentStatus {
	outstanding := total.Sub(paid)
	switch {
	case outstanding.IsZero() && total.IsPositive():
		return PaymentStatusPaid
	case paid.IsZero():
		return PaymentStatusUnpaid
	default:
		return PaymentStatusPartiallyPaid
	}
}

// OrderType distinguishes the business flavour of a sales order
type OrderType string

const (
	OrderTypeSales       OrderType = "SALES"
	OrderTypeRental      OrderType = "RENTAL"
	OrderTypeMaintenance OrderType = "MAINTENANCE"
)

// IsValid checks if the order type is known
func (t OrderType) IsValid() bool {
	switch t {
	case OrderTypeSales, OrderTypeRental, OrderTypeMaintenance:
		return true
	}
	return false
}
