package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medrent/backend/internal/domain/shared"
)

func newLine(qty, rate float64) SalesOrderItem {
	i := SalesOrderItem{
		ItemCode:         "OXY-CONC-5L",
		Qty:              decimal.NewFromFloat(qty),
		Rate:             decimal.NewFromFloat(rate),
		ConversionFactor: decimal.NewFromInt(1),
		IsStockItem:      true,
	}
	i.RecalculateAmount()
	return i
}

func TestRemainingToDeliver(t *testing.T) {
	tests := []struct {
		name      string
		qty       float64
		delivered float64
		want      float64
	}{
		{"nothing delivered", 10, 0, 10},
		{"partly delivered", 10, 4, 6},
		{"fully delivered", 10, 10, 0},
		{"over delivered clamps to zero", 10, 12, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := newLine(tt.qty, 100)
			i.DeliveredQty = decimal.NewFromFloat(tt.delivered)
			assert.True(t, RemainingToDeliver(&i).Equal(decimal.NewFromFloat(tt.want)),
				"got %s", RemainingToDeliver(&i))
		})
	}
}

func TestRemainingToBill_TracksAmountNotQty(t *testing.T) {
	i := newLine(10, 100)
	i.BilledAmount = decimal.NewFromInt(250)

	assert.True(t, RemainingToBill(&i).Equal(decimal.NewFromInt(750)))
	assert.True(t, RemainingQtyToBill(&i).Equal(decimal.NewFromFloat(7.5)))

	// over-billing clamps instead of going negative
	i.BilledAmount = decimal.NewFromInt(1200)
	assert.True(t, RemainingToBill(&i).IsZero())
}

func TestRemainingToOrder(t *testing.T) {
	i := newLine(10, 100)
	i.ConversionFactor = decimal.NewFromInt(2)
	i.RecalculateAmount()
	require.True(t, i.StockQty.Equal(decimal.NewFromInt(20)))

	i.OrderedQty = decimal.NewFromInt(5)
	assert.True(t, RemainingToOrder(&i).Equal(decimal.NewFromInt(15)))
}

func TestRemainingToPick(t *testing.T) {
	i := newLine(10, 100)

	// picked tracked in stock UOM, converted before comparison
	i.ConversionFactor = decimal.NewFromInt(2)
	i.RecalculateAmount()
	i.PickedQty = decimal.NewFromInt(8) // 4 in line UOM
	assert.True(t, RemainingToPick(&i).Equal(decimal.NewFromInt(6)))

	// delivery counts when it outruns picking
	i.DeliveredQty = decimal.NewFromInt(7)
	assert.True(t, RemainingToPick(&i).Equal(decimal.NewFromInt(3)))
}

func TestRemainingToRequest(t *testing.T) {
	i := newLine(10, 100)
	i.RequestedQty = decimal.NewFromInt(3)
	i.DeliveredQty = decimal.NewFromInt(5)
	i.ReceivedQty = decimal.NewFromInt(2)

	// 10 - 3 requested - (5 delivered - 2 received back) = 4
	assert.True(t, RemainingToRequest(&i).Equal(decimal.NewFromInt(4)))

	// goods received back never produce extra headroom
	i.ReceivedQty = decimal.NewFromInt(9)
	assert.True(t, RemainingToRequest(&i).Equal(decimal.NewFromInt(7)))
}

func TestPendingRatio(t *testing.T) {
	i := newLine(10, 100)
	i.DeliveredQty = decimal.NewFromInt(4)
	assert.True(t, PendingRatio(&i).Equal(decimal.NewFromFloat(0.6)))

	i.Qty = decimal.Zero
	assert.True(t, PendingRatio(&i).IsZero())
}

func TestRecomputeFulfilment(t *testing.T) {
	o := newTestOrder(t, OrderTypeSales)
	a := newLine(10, 100)
	b := newLine(10, 50)
	require.NoError(t, o.AddItem(a))
	require.NoError(t, o.AddItem(b))

	o.Items[0].DeliveredQty = decimal.NewFromInt(10)
	o.Items[0].BilledAmount = decimal.NewFromInt(1000)
	o.RecomputeFulfilment()

	assert.True(t, o.PerDelivered.Equal(decimal.NewFromInt(50)), "got %s", o.PerDelivered)
	// billed 1000 of 1500
	assert.True(t, o.PerBilled.Equal(decimal.NewFromFloat(66.67)), "got %s", o.PerBilled)
	assert.Equal(t, DeliveryPartlyDelivered, o.DeliveryStatus)
	assert.Equal(t, BillingPartlyBilled, o.BillingStatus)
}

func TestRecomputeFulfilment_DropShipExcludedFromDelivery(t *testing.T) {
	o := newTestOrder(t, OrderTypeSales)
	regular := newLine(10, 100)
	drop := newLine(10, 100)
	drop.Supplier = "ACME Medical Supplies"
	drop.DeliveredBySupplier = true
	require.NoError(t, o.AddItem(regular))
	require.NoError(t, o.AddItem(drop))

	o.Items[0].DeliveredQty = decimal.NewFromInt(10)
	o.RecomputeFulfilment()

	// the drop-ship line does not participate in delivery tracking
	assert.True(t, o.PerDelivered.Equal(decimal.NewFromInt(100)), "got %s", o.PerDelivered)
	assert.Equal(t, DeliveryFullyDelivered, o.DeliveryStatus)
}

func TestRecomputeFulfilment_OverFulfilmentClampsAt100(t *testing.T) {
	o := newTestOrder(t, OrderTypeSales)
	require.NoError(t, o.AddItem(newLine(10, 100)))

	o.Items[0].DeliveredQty = decimal.NewFromInt(15)
	o.Items[0].BilledAmount = decimal.NewFromInt(1500)
	o.RecomputeFulfilment()

	assert.True(t, o.PerDelivered.Equal(decimal.NewFromInt(100)))
	assert.True(t, o.PerBilled.Equal(decimal.NewFromInt(100)))
}

func TestApplyLineProgress(t *testing.T) {
	o := newTestOrder(t, OrderTypeSales)
	item := newLine(10, 100)
	item.DeliveryDate = futureDate(7)
	item.Warehouse = "Stores - MD"
	require.NoError(t, o.AddItem(item))

	delivered := decimal.NewFromInt(10)
	lineID := o.Items[0].ID

	// draft orders carry no fulfilment to update
	err := o.ApplyLineProgress(lineID, LineProgress{DeliveredQty: &delivered})
	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "ORDER_NOT_SUBMITTED", derr.Code)

	require.NoError(t, o.Submit())
	require.NoError(t, o.ApplyLineProgress(lineID, LineProgress{DeliveredQty: &delivered}))

	assert.True(t, o.Items[0].DeliveredQty.Equal(delivered))
	assert.Equal(t, StatusToBill, o.Status)
	assert.Equal(t, DeliveryFullyDelivered, o.DeliveryStatus)

	billed := decimal.NewFromInt(1000)
	produced := decimal.NewFromInt(3)
	require.NoError(t, o.ApplyLineProgress(lineID, LineProgress{BilledAmount: &billed, ProducedQty: &produced}))
	assert.Equal(t, StatusCompleted, o.Status)
	assert.True(t, o.Items[0].ProducedQty.Equal(produced))
}

func TestApplyLineProgress_Rejections(t *testing.T) {
	o := newTestOrder(t, OrderTypeSales)
	item := newLine(10, 100)
	item.DeliveryDate = futureDate(7)
	item.Warehouse = "Stores - MD"
	require.NoError(t, o.AddItem(item))
	require.NoError(t, o.Submit())

	negative := decimal.NewFromInt(-1)
	err := o.ApplyLineProgress(o.Items[0].ID, LineProgress{PickedQty: &negative})
	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "INVALID_PROGRESS_QTY", derr.Code)

	qty := decimal.NewFromInt(1)
	err = o.ApplyLineProgress(uuid.New(), LineProgress{DeliveredQty: &qty})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
