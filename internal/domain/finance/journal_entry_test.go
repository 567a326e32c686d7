package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medrent/backend/internal/domain/shared"
)

func TestJournalEntry_BalancedSubmit(t *testing.T) {
	j, err := NewJournalEntry(uuid.New(), "JV-2026-00001", TagCashReceivedFromClient, time.Now())
	require.NoError(t, err)

	amount := decimal.NewFromInt(2000)
	require.NoError(t, j.AddLeg(JournalLeg{Account: AccountCashInHand, Debit: amount}))
	require.NoError(t, j.AddLeg(JournalLeg{Account: AccountSecurityDeposits, Credit: amount}))

	require.NoError(t, j.Submit())
	assert.NotNil(t, j.SubmittedAt)
	assert.True(t, j.TotalDebit.Equal(j.TotalCredit))
}

func TestJournalEntry_UnbalancedRejected(t *testing.T) {
	j, err := NewJournalEntry(uuid.New(), "JV-2026-00002", TagCashReceivedFromClient, time.Now())
	require.NoError(t, err)

	require.NoError(t, j.AddLeg(JournalLeg{Account: AccountCashInHand, Debit: decimal.NewFromInt(2000)}))
	require.NoError(t, j.AddLeg(JournalLeg{Account: AccountSecurityDeposits, Credit: decimal.NewFromInt(1500)}))

	err = j.Submit()
	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "UNBALANCED_ENTRY", derr.Code)
}

func TestJournalEntry_LegValidation(t *testing.T) {
	j, err := NewJournalEntry(uuid.New(), "JV-2026-00003", TagReturnToClient, time.Now())
	require.NoError(t, err)

	// a leg carries exactly one side
	assert.Error(t, j.AddLeg(JournalLeg{Account: AccountCashInHand, Debit: decimal.NewFromInt(10), Credit: decimal.NewFromInt(10)}))
	assert.Error(t, j.AddLeg(JournalLeg{Account: AccountCashInHand}))
	assert.Error(t, j.AddLeg(JournalLeg{Debit: decimal.NewFromInt(10)}))

	// single-leg entries cannot post
	require.NoError(t, j.AddLeg(JournalLeg{Account: AccountCashInHand, Debit: decimal.NewFromInt(10)}))
	assert.Error(t, j.Submit())
}

func TestBuildDepositReceipt(t *testing.T) {
	companyID, orderID, customerID := uuid.New(), uuid.New(), uuid.New()
	amount := decimal.NewFromInt(2000)

	j, err := BuildDepositReceipt(companyID, "JV-2026-00004", orderID, customerID, amount, false)
	require.NoError(t, err)

	assert.Equal(t, TagCashReceivedFromClient, j.Tag)
	require.Len(t, j.Legs, 2)
	assert.Equal(t, AccountCashInHand, j.Legs[0].Account)
	assert.True(t, j.Legs[0].Debit.Equal(amount))
	assert.Equal(t, AccountSecurityDeposits, j.Legs[1].Account)
	assert.True(t, j.Legs[1].Credit.Equal(amount))
	require.NotNil(t, j.Legs[1].PartyID)
	assert.Equal(t, customerID, *j.Legs[1].PartyID)
	assert.NoError(t, j.Submit())

	// before the order exists the receipt books as a booking advance
	adv, err := BuildDepositReceipt(companyID, "JV-2026-00005", orderID, customerID, amount, true)
	require.NoError(t, err)
	assert.Equal(t, TagBookingAdvance, adv.Tag)
}

func TestBuildDepositRefund(t *testing.T) {
	j, err := BuildDepositRefund(uuid.New(), "JV-2026-00006", uuid.New(), uuid.New(), decimal.NewFromInt(2000))
	require.NoError(t, err)

	assert.Equal(t, TagReturnToClient, j.Tag)
	require.Len(t, j.Legs, 2)
	// refund reverses the receipt: liability debited, cash credited
	assert.Equal(t, AccountSecurityDeposits, j.Legs[0].Account)
	assert.True(t, j.Legs[0].Debit.IsPositive())
	assert.Equal(t, AccountCashInHand, j.Legs[1].Account)
	assert.True(t, j.Legs[1].Credit.IsPositive())
	assert.NoError(t, j.Submit())

	_, err = BuildDepositRefund(uuid.New(), "JV-X", uuid.New(), uuid.New(), decimal.Zero)
	assert.Error(t, err)
}

func TestPaymentEntry(t *testing.T) {
	companyID, customerID, orderID := uuid.New(), uuid.New(), uuid.New()

	p, err := NewPaymentEntry(companyID, customerID, "PE-2026-00001", PaymentReceive, decimal.NewFromInt(3000))
	require.NoError(t, err)

	total := decimal.NewFromInt(5000)
	outstanding := decimal.NewFromInt(5000)
	require.NoError(t, p.AllocateTo("Sales Order", orderID, total, outstanding, decimal.NewFromInt(3000)))

	require.NoError(t, p.Submit())
	assert.NotNil(t, p.SubmittedAt)
	assert.True(t, p.AllocatedTotal().Equal(decimal.NewFromInt(3000)))
}

func TestPaymentEntry_Guards(t *testing.T) {
	companyID, customerID, orderID := uuid.New(), uuid.New(), uuid.New()

	_, err := NewPaymentEntry(companyID, customerID, "PE-1", PaymentReceive, decimal.Zero)
	assert.Error(t, err)
	_, err = NewPaymentEntry(companyID, uuid.Nil, "PE-1", PaymentReceive, decimal.NewFromInt(10))
	assert.Error(t, err)

	p, err := NewPaymentEntry(companyID, customerID, "PE-2", PaymentReceive, decimal.NewFromInt(1000))
	require.NoError(t, err)

	// allocation beyond the document's outstanding balance
	err = p.AllocateTo("Sales Order", orderID, decimal.NewFromInt(5000), decimal.NewFromInt(500), decimal.NewFromInt(800))
	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "OVER_ALLOCATION", derr.Code)

	// unallocated payment cannot post
	assert.Error(t, p.Submit())

	// allocations beyond the paid amount cannot post
	require.NoError(t, p.AllocateTo("Sales Order", orderID, decimal.NewFromInt(5000), decimal.NewFromInt(5000), decimal.NewFromInt(900)))
	require.NoError(t, p.AllocateTo("Sales Order", orderID, decimal.NewFromInt(5000), decimal.NewFromInt(5000), decimal.NewFromInt(900)))
	assert.Error(t, p.Submit())
}
