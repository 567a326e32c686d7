package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medrent/backend/internal/domain/finance"
	"github.com/medrent/backend/internal/domain/shared"
)

func TestGormJournalEntryRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormJournalEntryRepository(db)
	ctx := context.Background()

	companyID := uuid.New()
	orderID := uuid.New()
	customerID := uuid.New()

	receipt, err := finance.BuildDepositReceipt(companyID, "JV-2026-00001", orderID, customerID,
		decimal.NewFromInt(2000), true)
	require.NoError(t, err)
	require.NoError(t, receipt.Submit())
	require.NoError(t, repo.Save(ctx, receipt))

	t.Run("round-trips entry with legs", func(t *testing.T) {
		found, err := repo.FindByID(ctx, companyID, receipt.ID)
		require.NoError(t, err)
		assert.Equal(t, finance.TagBookingAdvance, found.Tag)
		require.Len(t, found.Legs, 2)
		assert.True(t, found.TotalDebit.Equal(found.TotalCredit))
		assert.NotNil(t, found.SubmittedAt)
	})

	t.Run("not found outside company", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New(), receipt.ID)
		assert.Equal(t, shared.ErrNotFound, err)
	})

	t.Run("lists vouchers of an order", func(t *testing.T) {
		refund, err := finance.BuildDepositRefund(companyID, "JV-2026-00002", orderID, customerID,
			decimal.NewFromInt(2000))
		require.NoError(t, err)
		require.NoError(t, refund.Submit())
		require.NoError(t, repo.Save(ctx, refund))

		entries, err := repo.FindByOrder(ctx, companyID, orderID)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("finds vouchers by tag", func(t *testing.T) {
		page, err := repo.FindByTag(ctx, companyID, finance.TagReturnToClient, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "JV-2026-00002", page.Items[0].VoucherNumber)
	})
}

func TestGormPaymentEntryRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPaymentEntryRepository(db)
	ctx := context.Background()

	companyID := uuid.New()
	customerID := uuid.New()
	orderID := uuid.New()

	entry, err := finance.NewPaymentEntry(companyID, customerID, "PE-2026-00001",
		finance.PaymentReceive, decimal.NewFromInt(3000))
	require.NoError(t, err)
	require.NoError(t, entry.AllocateTo("Sales Order", orderID,
		decimal.NewFromInt(10000), decimal.NewFromInt(10000), decimal.NewFromInt(3000)))
	require.NoError(t, entry.Submit())
	require.NoError(t, repo.Save(ctx, entry))

	t.Run("round-trips payment with references", func(t *testing.T) {
		found, err := repo.FindByID(ctx, companyID, entry.ID)
		require.NoError(t, err)
		assert.Equal(t, "PE-2026-00001", found.PaymentNumber)
		require.Len(t, found.References, 1)
		assert.True(t, found.References[0].AllocatedAmount.Equal(decimal.NewFromInt(3000)))
	})

	t.Run("finds payments against a document", func(t *testing.T) {
		payments, err := repo.FindByReference(ctx, companyID, "Sales Order", orderID)
		require.NoError(t, err)
		require.Len(t, payments, 1)
		assert.Equal(t, entry.ID, payments[0].ID)

		payments, err = repo.FindByReference(ctx, companyID, "Sales Order", uuid.New())
		require.NoError(t, err)
		assert.Empty(t, payments)
	})
}

func TestGormVoucherNumberProvider(t *testing.T) {
	db := setupTestDB(t)
	provider := NewGormVoucherNumberProvider(db)
	journals := NewGormJournalEntryRepository(db)
	ctx := context.Background()

	companyID := uuid.New()
	year := time.Now().Year()

	first, err := provider.NextJournalNumber(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("JV-%d-00001", year), first)

	entry, err := finance.NewJournalEntry(companyID, first, finance.TagCashReceivedFromClient, time.Now())
	require.NoError(t, err)
	require.NoError(t, journals.Save(ctx, entry))

	second, err := provider.NextJournalNumber(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("JV-%d-00002", year), second)

	payment, err := provider.NextPaymentNumber(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("PE-%d-00001", year), payment)
}
