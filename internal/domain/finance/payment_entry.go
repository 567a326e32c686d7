package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medrent/backend/internal/domain/shared"
)

// PaymentType is the direction of a payment entry
type PaymentType string

const (
	PaymentReceive PaymentType = "RECEIVE"
	PaymentPay     PaymentType = "PAY"
)

// PaymentEntry records money moving against one or more documents. Rental
// payments are Receive entries allocated against the sales order.
type PaymentEntry struct {
	shared.CompanyAggregateRoot
	PaymentNumber string          `gorm:"uniqueIndex;not null;size:50" json:"payment_number"`
	PaymentType   PaymentType     `gorm:"size:20;not null" json:"payment_type"`
	PartyID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"party_id"`
	ModeOfPayment string          `gorm:"size:50;default:'Cash'" json:"mode_of_payment"`
	PostingDate   time.Time       `gorm:"not null" json:"posting_date"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"paid_amount"`
	Remarks       string          `gorm:"size:500" json:"remarks"`
	SubmittedAt   *time.Time      `json:"submitted_at"`
	CancelledAt   *time.Time      `json:"cancelled_at"`

	References []PaymentReference `gorm:"foreignKey:PaymentID" json:"references"`
}

// TableName specifies the table name for PaymentEntry
func (PaymentEntry) TableName() string {
	return "payment_entries"
}

// PaymentReference allocates part of a payment to one document
type PaymentReference struct {
	shared.BaseEntity
	PaymentID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"payment_id"`
	ReferenceType     string          `gorm:"not null;size:50" json:"reference_type"`
	ReferenceID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"reference_id"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"total_amount"`
	OutstandingAmount decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"outstanding_amount"`
	AllocatedAmount   decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"allocated_amount"`
}

// TableName specifies the table name for PaymentReference
func (PaymentReference) TableName() string {
	return "payment_entry_references"
}

// NewPaymentEntry creates a draft payment entry
func NewPaymentEntry(companyID, partyID uuid.UUID, paymentNumber string, paymentType PaymentType, amount decimal.Decimal) (*PaymentEntry, error) {
	if paymentNumber == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_NUMBER", "payment number cannot be empty")
	}
	if partyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTY", "party is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "paid amount must be positive")
	}
	if paymentType != PaymentReceive && paymentType != PaymentPay {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TYPE", fmt.Sprintf("unknown payment type: %s", paymentType))
	}
	return &PaymentEntry{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		PaymentNumber:        paymentNumber,
		PaymentType:          paymentType,
		PartyID:              partyID,
		ModeOfPayment:        "Cash",
		PostingDate:          time.Now(),
		PaidAmount:           amount,
	}, nil
}

// AllocateTo directs part of the payment at a document
func (p *PaymentEntry) AllocateTo(referenceType string, referenceID uuid.UUID, total, outstanding, allocated decimal.Decimal) error {
	if p.SubmittedAt != nil {
		return shared.NewDomainError("PAYMENT_SUBMITTED", "submitted payments cannot be modified")
	}
	if !allocated.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "allocated amount must be positive")
	}
	if allocated.GreaterThan(outstanding) {
		return shared.NewDomainError("OVER_ALLOCATION",
			fmt.Sprintf("allocation %s exceeds outstanding %s on %s", allocated, outstanding, referenceType))
	}
	ref := PaymentReference{
		BaseEntity:        shared.NewBaseEntity(),
		PaymentID:         p.ID,
		ReferenceType:     referenceType,
		ReferenceID:       referenceID,
		TotalAmount:       total,
		OutstandingAmount: outstanding,
		AllocatedAmount:   allocated,
	}
	p.References = append(p.References, ref)
	return nil
}

// AllocatedTotal sums the allocations across all references
func (p *PaymentEntry) AllocatedTotal() decimal.Decimal {
	total := decimal.Zero
	for idx := range p.References {
		total = total.Add(p.References[idx].AllocatedAmount)
	}
	return total
}

// Submit posts the payment. Allocations may not exceed the paid amount.
func (p *PaymentEntry) Submit() error {
	if p.SubmittedAt != nil {
		return shared.NewDomainError("PAYMENT_SUBMITTED", "payment is already submitted")
	}
	if len(p.References) == 0 {
		return shared.NewDomainError("NO_REFERENCES", "payment must be allocated to at least one document")
	}
	if p.AllocatedTotal().GreaterThan(p.PaidAmount) {
		return shared.NewDomainError("OVER_ALLOCATION",
			fmt.Sprintf("allocations %s exceed paid amount %s", p.AllocatedTotal(), p.PaidAmount))
	}
	now := time.Now()
	p.SubmittedAt = &now
	return nil
}

// Cancel voids a submitted payment
func (p *PaymentEntry) Cancel() error {
	if p.SubmittedAt == nil {
		return shared.NewDomainError("PAYMENT_NOT_SUBMITTED", "only submitted payments can be cancelled")
	}
	if p.CancelledAt != nil {
		return shared.NewDomainError("ALREADY_CANCELLED", "payment is already cancelled")
	}
	now := time.Now()
	p.CancelledAt = &now
	return nil
}
