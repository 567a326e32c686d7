package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medrent/backend/internal/domain/shared"
)

// VoucherTag labels the business intent of a booking so deposit and
// advance movements can be traced back from the ledger
type VoucherTag string

const (
	TagBookingAdvance         VoucherTag = "BOOKING_ADVANCE"
	TagCashReceivedFromClient VoucherTag = "CASH_RECEIVED_FROM_CLIENT"
	TagReturnToClient         VoucherTag = "RETURN_TO_CLIENT"
)

// Default ledger accounts for rental money movements
const (
	AccountCashInHand       = "Cash In Hand - MD"
	AccountSecurityDeposits = "Security Deposits Received - MD"
	AccountDebtors          = "Debtors - MD"
)

// JournalEntry is a double-entry voucher. It is balanced at submission:
// total debit must equal total credit.
type JournalEntry struct {
	shared.CompanyAggregateRoot
	VoucherNumber string          `gorm:"uniqueIndex;not null;size:50" json:"voucher_number"`
	PostingDate   time.Time       `gorm:"not null" json:"posting_date"`
	OrderID       *uuid.UUID      `gorm:"type:uuid;index" json:"order_id"`
	Tag           VoucherTag      `gorm:"size:40" json:"tag"`
	Remark        string          `gorm:"size:500" json:"remark"`
	TotalDebit    decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"total_debit"`
	TotalCredit   decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"total_credit"`
	SubmittedAt   *time.Time      `json:"submitted_at"`
	CancelledAt   *time.Time      `json:"cancelled_at"`

	Legs []JournalLeg `gorm:"foreignKey:EntryID" json:"legs"`
}

// TableName specifies the table name for JournalEntry
func (JournalEntry) TableName() string {
	return "journal_entries"
}

// JournalLeg is one side of a journal entry
type JournalLeg struct {
	shared.BaseEntity
	EntryID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"entry_id"`
	Account   string          `gorm:"not null;size:200" json:"account"`
	PartyType string          `gorm:"size:50" json:"party_type"`
	PartyID   *uuid.UUID      `gorm:"type:uuid" json:"party_id"`
	Debit     decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"debit"`
	Credit    decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"credit"`
}

// TableName specifies the table name for JournalLeg
func (JournalLeg) TableName() string {
	return "journal_entry_legs"
}

// NewJournalEntry creates a draft journal entry
func NewJournalEntry(companyID uuid.UUID, voucherNumber string, tag VoucherTag, postingDate time.Time) (*JournalEntry, error) {
	if voucherNumber == "" {
		return nil, shared.NewDomainError("INVALID_VOUCHER_NUMBER", "voucher number cannot be empty")
	}
	if postingDate.IsZero() {
		postingDate = time.Now()
	}
	return &JournalEntry{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		VoucherNumber:        voucherNumber,
		Tag:                  tag,
		PostingDate:          postingDate,
	}, nil
}

// AddLeg appends one side of the entry. A leg carries either a debit or
// a credit, never both.
func (j *JournalEntry) AddLeg(leg JournalLeg) error {
	if j.SubmittedAt != nil {
		return shared.NewDomainError("ENTRY_SUBMITTED", "submitted entries cannot be modified")
	}
	if leg.Account == "" {
		return shared.NewDomainError("INVALID_ACCOUNT", "leg account cannot be empty")
	}
	if leg.Debit.IsNegative() || leg.Credit.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "debit and credit cannot be negative")
	}
	if leg.Debit.IsPositive() == leg.Credit.IsPositive() {
		return shared.NewDomainError("INVALID_LEG", "a leg must carry exactly one of debit or credit")
	}
	if leg.ID == uuid.Nil {
		leg.BaseEntity = shared.NewBaseEntity()
	}
	leg.EntryID = j.ID
	j.Legs = append(j.Legs, leg)
	j.TotalDebit = j.TotalDebit.Add(leg.Debit)
	j.TotalCredit = j.TotalCredit.Add(leg.Credit)
	return nil
}

// Submit posts the entry to the ledger after the balance check
func (j *JournalEntry) Submit() error {
	if j.SubmittedAt != nil {
		return shared.NewDomainError("ENTRY_SUBMITTED", "entry is already submitted")
	}
	if len(j.Legs) < 2 {
		return shared.NewDomainError("INCOMPLETE_ENTRY", "a journal entry needs at least two legs")
	}
	if !j.TotalDebit.Equal(j.TotalCredit) {
		return shared.NewDomainError("UNBALANCED_ENTRY",
			fmt.Sprintf("debit %s does not equal credit %s", j.TotalDebit, j.TotalCredit))
	}
	now := time.Now()
	j.SubmittedAt = &now
	return nil
}

// Cancel voids a submitted entry
func (j *JournalEntry) Cancel() error {
	if j.SubmittedAt == nil {
		return shared.NewDomainError("ENTRY_NOT_SUBMITTED", "only submitted entries can be cancelled")
	}
	if j.CancelledAt != nil {
		return shared.NewDomainError("ALREADY_CANCELLED", "entry is already cancelled")
	}
	now := time.Now()
	j.CancelledAt = &now
	return nil
}

// BuildDepositReceipt builds the voucher booking a security deposit
// received from the customer: cash in, deposit liability up.
func BuildDepositReceipt(companyID uuid.UUID, voucherNumber string, orderID, customerID uuid.UUID, amount decimal.Decimal, advance bool) (*JournalEntry, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "deposit amount must be positive")
	}
	tag := TagCashReceivedFromClient
	if advance {
		tag = TagBookingAdvance
	}
	j, err := NewJournalEntry(companyID, voucherNumber, tag, time.Now())
	if err != nil {
		return nil, err
	}
	j.OrderID = &orderID
	if err := j.AddLeg(JournalLeg{Account: AccountCashInHand, Debit: amount}); err != nil {
		return nil, err
	}
	if err := j.AddLeg(JournalLeg{
		Account:   AccountSecurityDeposits,
		PartyType: "Customer",
		PartyID:   &customerID,
		Credit:    amount,
	}); err != nil {
		return nil, err
	}
	return j, nil
}

// BuildDepositRefund builds the voucher returning a deposit to the
// customer: deposit liability down, cash out.
func BuildDepositRefund(companyID uuid.UUID, voucherNumber string, orderID, customerID uuid.UUID, amount decimal.Decimal) (*JournalEntry, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "refund amount must be positive")
	}
	j, err := NewJournalEntry(companyID, voucherNumber, TagReturnToClient, time.Now())
	if err != nil {
		return nil, err
	}
	j.OrderID = &orderID
	if err := j.AddLeg(JournalLeg{
		Account:   AccountSecurityDeposits,
		PartyType: "Customer",
		PartyID:   &customerID,
		Debit:     amount,
	}); err != nil {
		return nil, err
	}
	if err := j.AddLeg(JournalLeg{Account: AccountCashInHand, Credit: amount}); err != nil {
		return nil, err
	}
	return j, nil
}
