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
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/medrent/backend/internal/domain/order"
	"github.com/medrent/backend/internal/domain/shared"
)

// setupTestDB creates an in-memory SQLite database with the full schema
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func newPersistedOrder(t *testing.T, orderType order.OrderType, orderNumber string) *order.SalesOrder {
	t.Helper()
	o, err := order.NewSalesOrder(uuid.New(), uuid.New(), orderNumber, orderType, time.Now())
	require.NoError(t, err)
	o.CustomerName = "City Hospital"

	item := order.SalesOrderItem{
		ItemCode:    "OXY-CONC-5L",
		ItemName:    "Oxygen Concentrator 5L",
		Qty:         decimal.NewFromInt(2),
		Rate:        decimal.NewFromInt(5000),
		UOM:         "Nos",
		Warehouse:   "Stores - MD",
		IsStockItem: true,
	}
	if orderType == order.OrderTypeSales {
		due := time.Now().AddDate(0, 0, 7)
		item.DeliveryDate = &due
	}
	require.NoError(t, o.AddItem(item))
	return o
}

func TestGormSalesOrderRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSalesOrderRepository(db)
	ctx := context.Background()

	o := newPersistedOrder(t, order.OrderTypeSales, "SO-2026-00001")
	require.NoError(t, repo.Save(ctx, o))

	t.Run("finds by id with items", func(t *testing.T) {
		found, err := repo.FindByID(ctx, o.CompanyID, o.ID)
		require.NoError(t, err)
		assert.Equal(t, "SO-2026-00001", found.OrderNumber)
		require.Len(t, found.Items, 1)
		assert.Equal(t, "OXY-CONC-5L", found.Items[0].ItemCode)
		assert.True(t, found.GrandTotal.Equal(decimal.NewFromInt(10000)))
	})

	t.Run("finds by order number", func(t *testing.T) {
		found, err := repo.FindByOrderNumber(ctx, o.CompanyID, "SO-2026-00001")
		require.NoError(t, err)
		assert.Equal(t, o.ID, found.ID)
	})

	t.Run("not found outside company", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New(), o.ID)
		assert.Equal(t, shared.ErrNotFound, err)
	})

	t.Run("removed item is deleted on save", func(t *testing.T) {
		found, err := repo.FindByID(ctx, o.CompanyID, o.ID)
		require.NoError(t, err)
		due := time.Now().AddDate(0, 0, 7)
		require.NoError(t, found.AddItem(order.SalesOrderItem{
			ItemCode:     "BIPAP-01",
			Qty:          decimal.NewFromInt(1),
			Rate:         decimal.NewFromInt(12000),
			DeliveryDate: &due,
		}))
		require.NoError(t, repo.Save(ctx, found))

		require.NoError(t, found.RemoveItem(found.Items[0].ID))
		require.NoError(t, repo.Save(ctx, found))

		reloaded, err := repo.FindByID(ctx, o.CompanyID, o.ID)
		require.NoError(t, err)
		require.Len(t, reloaded.Items, 1)
		assert.Equal(t, "BIPAP-01", reloaded.Items[0].ItemCode)
	})
}

func TestGormSalesOrderRepository_GenerateOrderNumber(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSalesOrderRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	first, err := repo.GenerateOrderNumber(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("SO-%d-00001", time.Now().Year()), first)

	o, err := order.NewSalesOrder(companyID, uuid.New(), first, order.OrderTypeRental, time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, o))

	second, err := repo.GenerateOrderNumber(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("SO-%d-00002", time.Now().Year()), second)

	// sequences are per company
	other, err := repo.GenerateOrderNumber(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("SO-%d-00001", time.Now().Year()), other)
}

func TestGormSalesOrderRepository_ExistsPONoForCustomer(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSalesOrderRepository(db)
	ctx := context.Background()

	o := newPersistedOrder(t, order.OrderTypeSales, "SO-2026-00010")
	o.PONo = "PO-777"
	require.NoError(t, repo.Save(ctx, o))

	exists, err := repo.ExistsPONoForCustomer(ctx, o.CompanyID, o.CustomerID, "PO-777", uuid.New())
	require.NoError(t, err)
	assert.True(t, exists)

	// the order itself is excluded
	exists, err = repo.ExistsPONoForCustomer(ctx, o.CompanyID, o.CustomerID, "PO-777", o.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsPONoForCustomer(ctx, o.CompanyID, o.CustomerID, "PO-999", uuid.New())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGormSalesOrderRepository_FindOpenRentalsByCustomer(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSalesOrderRepository(db)
	ctx := context.Background()

	open := newPersistedOrder(t, order.OrderTypeRental, "SO-2026-00020")
	require.NoError(t, open.SetRentalPeriod(time.Now(), time.Now().AddDate(0, 1, 0)))
	require.NoError(t, open.Submit())
	require.NoError(t, repo.Save(ctx, open))

	closed := newPersistedOrder(t, order.OrderTypeRental, "SO-2026-00021")
	closed.CompanyID = open.CompanyID
	closed.CustomerID = open.CustomerID
	require.NoError(t, closed.SetRentalPeriod(time.Now(), time.Now().AddDate(0, 1, 0)))
	require.NoError(t, closed.Cancel("test"))
	require.NoError(t, repo.Save(ctx, closed))

	rentals, err := repo.FindOpenRentalsByCustomer(ctx, open.CompanyID, open.CustomerID)
	require.NoError(t, err)
	require.Len(t, rentals, 1)
	assert.Equal(t, "SO-2026-00020", rentals[0].OrderNumber)
}

func TestGormSalesOrderRepository_FindActiveRentalsEndingBefore(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSalesOrderRepository(db)
	ctx := context.Background()

	lapsed := newPersistedOrder(t, order.OrderTypeRental, "SO-2026-00030")
	require.NoError(t, lapsed.SetRentalPeriod(time.Now().AddDate(0, -2, 0), time.Now().AddDate(0, -1, 0)))
	require.NoError(t, lapsed.Submit())
	lapsed.Status = order.StatusActive
	require.NoError(t, repo.Save(ctx, lapsed))

	running := newPersistedOrder(t, order.OrderTypeRental, "SO-2026-00031")
	require.NoError(t, running.SetRentalPeriod(time.Now(), time.Now().AddDate(0, 1, 0)))
	require.NoError(t, running.Submit())
	running.Status = order.StatusActive
	require.NoError(t, repo.Save(ctx, running))

	due, err := repo.FindActiveRentalsEndingBefore(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "SO-2026-00030", due[0].OrderNumber)
}

func TestGormSalesOrderRepository_FindAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSalesOrderRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	for i := 0; i < 3; i++ {
		o := newPersistedOrder(t, order.OrderTypeRental, fmt.Sprintf("SO-2026-1%04d", i))
		o.CompanyID = companyID
		require.NoError(t, repo.Save(ctx, o))
	}

	filter := shared.DefaultFilter()
	filter.PageSize = 2
	page, err := repo.FindAll(ctx, companyID, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.TotalPages)

	filter.Filters["order_type"] = string(order.OrderTypeSales)
	page, err = repo.FindAll(ctx, companyID, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)
}

func TestGormSalesOrderRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSalesOrderRepository(db)
	ctx := context.Background()

	o := newPersistedOrder(t, order.OrderTypeSales, "SO-2026-00040")
	require.NoError(t, repo.Save(ctx, o))

	require.NoError(t, repo.Delete(ctx, o.CompanyID, o.ID))
	_, err := repo.FindByID(ctx, o.CompanyID, o.ID)
	assert.Equal(t, shared.ErrNotFound, err)

	var itemCount int64
	require.NoError(t, db.Model(&order.SalesOrderItem{}).Where("order_id = ?", o.ID).Count(&itemCount).Error)
	assert.Equal(t, int64(0), itemCount)

	assert.Equal(t, shared.ErrNotFound, repo.Delete(ctx, o.CompanyID, uuid.New()))
}
