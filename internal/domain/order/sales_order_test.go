package order

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medrent/backend/internal/domain/shared"
)

func newTestOrder(t *testing.T, orderType OrderType) *SalesOrder {
	t.Helper()
	o, err := NewSalesOrder(uuid.New(), uuid.New(), "SO-2026-00001", orderType, time.Now())
	require.NoError(t, err)
	if orderType == OrderTypeRental {
		require.NoError(t, o.SetRentalPeriod(time.Now(), time.Now().AddDate(0, 1, 0)))
	}
	return o
}

func futureDate(days int) *time.Time {
	d := time.Now().AddDate(0, 0, days)
	return &d
}

func TestNewSalesOrder(t *testing.T) {
	companyID := uuid.New()
	customerID := uuid.New()

	o, err := NewSalesOrder(companyID, customerID, "SO-2026-00042", OrderTypeRental, time.Now())
	require.NoError(t, err)

	assert.Equal(t, "SO-2026-00042", o.OrderNumber)
	assert.Equal(t, StatusDraft, o.Status)
	assert.Equal(t, PaymentStatusUnpaid, o.PaymentStatus)
	assert.Equal(t, OverdueTrackActive, o.OverdueTrack)
	assert.Equal(t, companyID, o.CompanyID)
	assert.Len(t, o.GetDomainEvents(), 1)
	assert.Equal(t, EventSalesOrderCreated, o.GetDomainEvents()[0].EventType())
}

func TestNewSalesOrder_Validation(t *testing.T) {
	_, err := NewSalesOrder(uuid.New(), uuid.Nil, "SO-1", OrderTypeSales, time.Now())
	assert.Error(t, err)

	_, err = NewSalesOrder(uuid.New(), uuid.New(), "", OrderTypeSales, time.Now())
	assert.Error(t, err)

	_, err = NewSalesOrder(uuid.New(), uuid.New(), "SO-1", OrderType("LEASE"), time.Now())
	assert.Error(t, err)
}

func TestAddItem_RecalculatesTotals(t *testing.T) {
	o := newTestOrder(t, OrderTypeSales)

	item := newLine(10, 100)
	item.DeliveryDate = futureDate(7)
	item.Warehouse = "Stores - MD"
	require.NoError(t, o.AddItem(item))

	require.Len(t, o.Items, 1)
	assert.True(t, o.Items[0].Amount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, o.NetTotal.Equal(decimal.NewFromInt(1000)))
	assert.True(t, o.GrandTotal.Equal(decimal.NewFromInt(1000)))
}

func TestAddItem_Rejections(t *testing.T) {
	o := newTestOrder(t, OrderTypeSales)

	bad := newLine(0, 100)
	bad.Qty = decimal.Zero
	err := o.AddItem(bad)
	assert.Error(t, err)

	negRate := newLine(5, 100)
	negRate.Rate = decimal.NewFromInt(-10)
	assert.Error(t, o.AddItem(negRate))

	ok := newLine(5, 100)
	ok.DeliveryDate = futureDate(7)
	ok.Warehouse = "Stores - MD"
	require.NoError(t, o.AddItem(ok))
	require.NoError(t, o.Submit())

	// submitted orders are frozen
	assert.Error(t, o.AddItem(newLine(1, 1)))
}

func TestRecalculateTotals_WithTaxes(t *testing.T) {
	o := newTestOrder(t, OrderTypeSales)
	item := newLine(10, 100)
	item.DeliveryDate = futureDate(7)
	item.Warehouse = "Stores - MD"
	require.NoError(t, o.AddItem(item))

	o.Taxes = append(o.Taxes, TaxLine{
		AccountHead: "Output GST - MD",
		Rate:        decimal.NewFromInt(18),
	})
	o.RecalculateTotals()

	assert.True(t, o.TaxTotal.Equal(decimal.NewFromInt(180)))
	assert.True(t, o.GrandTotal.Equal(decimal.NewFromInt(1180)))
	assert.True(t, o.RoundedTotal.Equal(decimal.NewFromInt(1180)))
}

func TestSubmit_SalesOrder(t *testing.T) {
	o := newTestOrder(t, OrderTypeSales)
	item := newLine(10, 100)
	item.DeliveryDate = futureDate(7)
	item.Warehouse = "Stores - MD"
	require.NoError(t, o.AddItem(item))

	require.NoError(t, o.Submit())

	assert.Equal(t, StatusToDeliverAndBill, o.Status)
	assert.NotNil(t, o.SubmittedAt)
	assert.True(t, o.IsSubmitted())
}

func TestSubmit_RentalEntersApprovalFlow(t *testing.T) {
	o := newTestOrder(t, OrderTypeRental)
	item := newLine(1, 5000)
	item.Warehouse = "Stores - MD"
	require.NoError(t, o.AddItem(item))

	require.NoError(t, o.Submit())

	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, LineStatusPending, o.Items[0].Status)
}

func TestSubmit_Validations(t *testing.T) {
	t.Run("no items", func(t *testing.T) {
		o := newTestOrder(t, OrderTypeSales)
		assert.Error(t, o.Submit())
	})

	t.Run("missing delivery date on sales order", func(t *testing.T) {
		o := newTestOrder(t, OrderTypeSales)
		item := newLine(1, 100)
		item.Warehouse = "Stores - MD"
		require.NoError(t, o.AddItem(item))
		assert.Error(t, o.Submit())
	})

	t.Run("delivery date before order date", func(t *testing.T) {
		o := newTestOrder(t, OrderTypeSales)
		item := newLine(1, 100)
		item.Warehouse = "Stores - MD"
		past := time.Now().AddDate(0, 0, -3)
		item.DeliveryDate = &past
		require.NoError(t, o.AddItem(item))
		assert.Error(t, o.Submit())
	})

	t.Run("stock item without warehouse", func(t *testing.T) {
		o := newTestOrder(t, OrderTypeSales)
		item := newLine(1, 100)
		item.DeliveryDate = futureDate(7)
		require.NoError(t, o.AddItem(item))
		assert.Error(t, o.Submit())
	})

	t.Run("drop ship line needs no warehouse", func(t *testing.T) {
		o := newTestOrder(t, OrderTypeSales)
		item := newLine(1, 100)
		item.DeliveryDate = futureDate(7)
		item.Supplier = "ACME Medical Supplies"
		item.DeliveredBySupplier = true
		require.NoError(t, o.AddItem(item))
		assert.NoError(t, o.Submit())
	})

	t.Run("drop ship conflicts with serial delivery", func(t *testing.T) {
		o := newTestOrder(t, OrderTypeSales)
		item := newLine(1, 100)
		item.DeliveryDate = futureDate(7)
		item.Supplier = "ACME Medical Supplies"
		item.DeliveredBySupplier = true
		item.EnsureSerialDelivery = true
		require.NoError(t, o.AddItem(item))
		assert.Error(t, o.Submit())
	})

	t.Run("po date after transaction date", func(t *testing.T) {
		o := newTestOrder(t, OrderTypeSales)
		item := newLine(1, 100)
		item.DeliveryDate = futureDate(7)
		item.Warehouse = "Stores - MD"
		require.NoError(t, o.AddItem(item))
		o.PONo = "CUST-PO-9"
		o.PODate = futureDate(2)
		assert.Error(t, o.Submit())
	})

	t.Run("rental without period", func(t *testing.T) {
		o, err := NewSalesOrder(uuid.New(), uuid.New(), "SO-2", OrderTypeRental, time.Now())
		require.NoError(t, err)
		item := newLine(1, 100)
		item.Warehouse = "Stores - MD"
		require.NoError(t, o.AddItem(item))
		assert.Error(t, o.Submit())
	})
}

func TestTransitionTo(t *testing.T) {
	o := newTestOrder(t, OrderTypeRental)
	item := newLine(1, 5000)
	item.Warehouse = "Stores - MD"
	require.NoError(t, o.AddItem(item))
	require.NoError(t, o.Submit())

	require.NoError(t, o.TransitionTo(StatusApproved))
	assert.Equal(t, StatusApproved, o.Status)
	assert.Equal(t, StatusPending, o.PreviousStatus)

	err := o.TransitionTo(StatusActive)
	require.Error(t, err)
	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "INVALID_TRANSITION", derr.Code)
	// failed transition leaves the order untouched
	assert.Equal(t, StatusApproved, o.Status)
}

func TestCancel(t *testing.T) {
	t.Run("cancels and cascades to lines", func(t *testing.T) {
		o := newTestOrder(t, OrderTypeRental)
		item := newLine(1, 5000)
		item.Warehouse = "Stores - MD"
		require.NoError(t, o.AddItem(item))
		require.NoError(t, o.Submit())

		require.NoError(t, o.Cancel("customer withdrew"))
		assert.Equal(t, StatusCancelled, o.Status)
		assert.Equal(t, LineStatusCancelled, o.Items[0].Status)
		assert.NotNil(t, o.CancelledAt)
	})

	t.Run("closed order cannot cancel", func(t *testing.T) {
		o := newTestOrder(t, OrderTypeSales)
		item := newLine(1, 100)
		item.DeliveryDate = futureDate(7)
		item.Warehouse = "Stores - MD"
		require.NoError(t, o.AddItem(item))
		require.NoError(t, o.Submit())
		require.NoError(t, o.Close())

		err := o.Cancel("too late")
		require.Error(t, err)
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "CLOSED_ORDER_CANNOT_CANCEL", derr.Code)
	})

	t.Run("device in the field blocks cancellation", func(t *testing.T) {
		o := newTestOrder(t, OrderTypeRental)
		item := newLine(1, 5000)
		item.Warehouse = "Stores - MD"
		require.NoError(t, o.AddItem(item))
		require.NoError(t, o.Submit())
		o.Items[0].Status = LineStatusActive

		assert.Error(t, o.Cancel("abort"))
	})
}

func TestCloseAndReopen(t *testing.T) {
	o := newTestOrder(t, OrderTypeSales)
	item := newLine(10, 100)
	item.DeliveryDate = futureDate(7)
	item.Warehouse = "Stores - MD"
	require.NoError(t, o.AddItem(item))
	require.NoError(t, o.Submit())

	require.NoError(t, o.Close())
	assert.Equal(t, StatusClosed, o.Status)
	assert.Equal(t, BillingClosed, o.BillingStatus)
	assert.Equal(t, DeliveryClosed, o.DeliveryStatus)

	require.NoError(t, o.Reopen())
	assert.Equal(t, StatusToDeliverAndBill, o.Status)
	assert.Equal(t, BillingNotBilled, o.BillingStatus)
	assert.Equal(t, DeliveryNotDelivered, o.DeliveryStatus)
}

func TestMarkOverdue(t *testing.T) {
	o := newTestOrder(t, OrderTypeRental)
	item := newLine(1, 5000)
	item.Warehouse = "Stores - MD"
	require.NoError(t, o.AddItem(item))
	require.NoError(t, o.SetRentalPeriod(time.Now().AddDate(0, -2, 0), time.Now().AddDate(0, -1, 0)))
	require.NoError(t, o.Submit())
	o.Status = StatusActive

	assert.True(t, o.MarkOverdue(time.Now()))
	assert.Equal(t, OverdueTrackOverdue, o.OverdueTrack)

	// sweep is idempotent
	assert.False(t, o.MarkOverdue(time.Now()))
}

func TestMarkRenewed(t *testing.T) {
	o := newTestOrder(t, OrderTypeRental)
	item := newLine(1, 5000)
	item.Warehouse = "Stores - MD"
	require.NoError(t, o.AddItem(item))
	require.NoError(t, o.Submit())
	o.Status = StatusActive
	o.Items[0].Status = LineStatusActive

	successor := uuid.New()
	require.NoError(t, o.MarkRenewed(successor))

	assert.Equal(t, StatusRenewed, o.Status)
	assert.Equal(t, OverdueTrackRenewed, o.OverdueTrack)
	assert.Equal(t, LineStatusRenewed, o.Items[0].Status)
}

func TestRecordPaymentAndDeposit(t *testing.T) {
	o := newTestOrder(t, OrderTypeRental)
	item := newLine(1, 5000)
	item.Warehouse = "Stores - MD"
	require.NoError(t, o.AddItem(item))
	o.SecurityDeposit = decimal.NewFromInt(2000)
	require.NoError(t, o.Submit())

	require.NoError(t, o.RecordPayment(decimal.NewFromInt(2000)))
	assert.Equal(t, PaymentStatusPartiallyPaid, o.PaymentStatus)

	require.NoError(t, o.RecordPayment(decimal.NewFromInt(3000)))
	assert.Equal(t, PaymentStatusPaid, o.PaymentStatus)

	// overpayment rejected
	assert.Error(t, o.RecordPayment(decimal.NewFromInt(1)))

	require.NoError(t, o.RecordDeposit(decimal.NewFromInt(2000)))
	assert.Equal(t, PaymentStatusPaid, o.SecurityDepositStatus)

	require.NoError(t, o.ReleaseDeposit(decimal.NewFromInt(2000)))
	assert.Equal(t, PaymentStatusUnpaid, o.SecurityDepositStatus)
	assert.Error(t, o.ReleaseDeposit(decimal.NewFromInt(1)))
}
