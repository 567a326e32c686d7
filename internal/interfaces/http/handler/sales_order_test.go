package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apporder "github.com/medrent/backend/internal/application/order"
	"github.com/medrent/backend/internal/domain/order"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/interfaces/http/middleware"
)

// MockOrderRepository implements order.Repository for handler tests
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.SalesOrder) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) GenerateOrderNumber(ctx context.Context, companyID uuid.UUID) (string, error) {
	args := m.Called(ctx, companyID)
	return args.String(0), args.Error(1)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*order.SalesOrder, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.SalesOrder), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, companyID uuid.UUID, orderNumber string) (*order.SalesOrder, error) {
	args := m.Called(ctx, companyID, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.SalesOrder), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (shared.Paginated[order.SalesOrder], error) {
	args := m.Called(ctx, companyID, filter)
	return args.Get(0).(shared.Paginated[order.SalesOrder]), args.Error(1)
}

func (m *MockOrderRepository) FindByCustomer(ctx context.Context, companyID, customerID uuid.UUID, filter shared.Filter) (shared.Paginated[order.SalesOrder], error) {
	args := m.Called(ctx, companyID, customerID, filter)
	return args.Get(0).(shared.Paginated[order.SalesOrder]), args.Error(1)
}

func (m *MockOrderRepository) FindOpenRentalsByCustomer(ctx context.Context, companyID, customerID uuid.UUID) ([]order.SalesOrder, error) {
	args := m.Called(ctx, companyID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.SalesOrder), args.Error(1)
}

func (m *MockOrderRepository) FindActiveRentalsEndingBefore(ctx context.Context, cutoff time.Time) ([]order.SalesOrder, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.SalesOrder), args.Error(1)
}

func (m *MockOrderRepository) ExistsPONoForCustomer(ctx context.Context, companyID, customerID uuid.UUID, poNo string, excludeOrderID uuid.UUID) (bool, error) {
	args := m.Called(ctx, companyID, customerID, poNo, excludeOrderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	args := m.Called(ctx, companyID, id)
	return args.Error(0)
}

var _ order.Repository = (*MockOrderRepository)(nil)

// stubCatalog resolves every item to a fixed stock item
type stubCatalog struct{}

func (stubCatalog) Lookup(ctx context.Context, itemCode string) (*order.CatalogItem, error) {
	return &order.CatalogItem{
		ItemCode:         itemCode,
		ItemName:         "Oxygen Concentrator 5L",
		UOM:              "Nos",
		IsStockItem:      true,
		DefaultWarehouse: "Stores - MD",
	}, nil
}

func (stubCatalog) ExplodeBundle(ctx context.Context, itemCode string) ([]order.BundleComponent, error) {
	return nil, nil
}

type stubCreditChecker struct{ err error }

func (s stubCreditChecker) CheckCredit(ctx context.Context, companyID, customerID uuid.UUID, additionalExposure decimal.Decimal) error {
	return s.err
}

// Test helpers

func setupSalesOrderTestRouter(creditErr error) (*gin.Engine, *MockOrderRepository) {
	gin.SetMode(gin.TestMode)

	mockRepo := new(MockOrderRepository)
	service := apporder.NewSalesOrderService(mockRepo, stubCatalog{}, stubCreditChecker{err: creditErr}, new(MockDeviceRepository))
	h := NewSalesOrderHandler(service)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.CompanyContext())

	router.POST("/sales-orders", h.Create)
	router.GET("/sales-orders/:id", h.GetByID)
	router.POST("/sales-orders/:id/submit", h.Submit)
	router.POST("/sales-orders/:id/cancel", h.Cancel)

	return router, mockRepo
}

func newSubmittableOrder(t *testing.T, companyID uuid.UUID) *order.SalesOrder {
	t.Helper()
	o, err := order.NewSalesOrder(companyID, uuid.New(), "SO-2026-00042", order.OrderTypeSales, time.Now())
	require.NoError(t, err)
	delivery := time.Now().Add(48 * time.Hour)
	require.NoError(t, o.AddItem(order.SalesOrderItem{
		ItemCode:     "OXY-CONC-5L",
		ItemName:     "Oxygen Concentrator 5L",
		Qty:          decimal.NewFromInt(1),
		Rate:         decimal.NewFromInt(5000),
		Warehouse:    "Stores - MD",
		DeliveryDate: &delivery,
		IsStockItem:  true,
	}))
	return o
}

func doJSON(router *gin.Engine, method, path string, companyID uuid.UUID, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Company-ID", companyID.String())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// Tests

func TestSalesOrderHandler_Create(t *testing.T) {
	companyID := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	t.Run("should create draft order", func(t *testing.T) {
		router, mockRepo := setupSalesOrderTestRouter(nil)

		mockRepo.On("GenerateOrderNumber", mock.Anything, companyID).
			Return("SO-2026-00001", nil)
		mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*order.SalesOrder")).
			Return(nil)

		delivery := time.Now().Add(72 * time.Hour)
		reqBody := apporder.CreateSalesOrderRequest{
			CustomerID:   uuid.New(),
			CustomerName: "City Hospital",
			OrderType:    "SALES",
			DeliveryDate: &delivery,
			Items: []apporder.CreateOrderItemRequest{
				{ItemCode: "OXY-CONC-5L", Qty: 2, Rate: 5000},
			},
		}

		w := doJSON(router, http.MethodPost, "/sales-orders", companyID, reqBody)
		assert.Equal(t, http.StatusCreated, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.True(t, response["success"].(bool))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "SO-2026-00001", data["order_number"])
		assert.Equal(t, "DRAFT", data["status"])

		mockRepo.AssertExpectations(t)
	})

	t.Run("should reject request without items", func(t *testing.T) {
		router, _ := setupSalesOrderTestRouter(nil)

		reqBody := map[string]interface{}{
			"customer_id": uuid.New().String(),
			"order_type":  "SALES",
		}
		w := doJSON(router, http.MethodPost, "/sales-orders", companyID, reqBody)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should reject unknown order type", func(t *testing.T) {
		router, _ := setupSalesOrderTestRouter(nil)

		reqBody := map[string]interface{}{
			"customer_id": uuid.New().String(),
			"order_type":  "LEASE",
			"items":       []map[string]interface{}{{"item_code": "OXY-CONC-5L", "qty": 1}},
		}
		w := doJSON(router, http.MethodPost, "/sales-orders", companyID, reqBody)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSalesOrderHandler_GetByID(t *testing.T) {
	companyID := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	t.Run("should return order", func(t *testing.T) {
		router, mockRepo := setupSalesOrderTestRouter(nil)
		o := newSubmittableOrder(t, companyID)

		mockRepo.On("FindByID", mock.Anything, companyID, o.ID).Return(o, nil)

		w := doJSON(router, http.MethodGet, "/sales-orders/"+o.ID.String(), companyID, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "SO-2026-00042", data["order_number"])

		mockRepo.AssertExpectations(t)
	})

	t.Run("should return 404 when order does not exist", func(t *testing.T) {
		router, mockRepo := setupSalesOrderTestRouter(nil)
		orderID := uuid.New()

		mockRepo.On("FindByID", mock.Anything, companyID, orderID).
			Return(nil, shared.ErrNotFound)

		w := doJSON(router, http.MethodGet, "/sales-orders/"+orderID.String(), companyID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		mockRepo.AssertExpectations(t)
	})

	t.Run("should reject malformed order ID", func(t *testing.T) {
		router, _ := setupSalesOrderTestRouter(nil)

		w := doJSON(router, http.MethodGet, "/sales-orders/not-a-uuid", companyID, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSalesOrderHandler_Submit(t *testing.T) {
	companyID := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	t.Run("should submit draft order", func(t *testing.T) {
		router, mockRepo := setupSalesOrderTestRouter(nil)
		o := newSubmittableOrder(t, companyID)

		mockRepo.On("FindByID", mock.Anything, companyID, o.ID).Return(o, nil)
		mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*order.SalesOrder")).
			Return(nil)

		w := doJSON(router, http.MethodPost, "/sales-orders/"+o.ID.String()+"/submit", companyID, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "TO_DELIVER_AND_BILL", data["status"])

		mockRepo.AssertExpectations(t)
	})

	t.Run("should map business rule violation to 422", func(t *testing.T) {
		router, mockRepo := setupSalesOrderTestRouter(nil)

		// a draft without lines fails validation inside the domain
		empty, err := order.NewSalesOrder(companyID, uuid.New(), "SO-2026-00099", order.OrderTypeSales, time.Now())
		require.NoError(t, err)

		mockRepo.On("FindByID", mock.Anything, companyID, empty.ID).Return(empty, nil)

		w := doJSON(router, http.MethodPost, "/sales-orders/"+empty.ID.String()+"/submit", companyID, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.False(t, response["success"].(bool))

		mockRepo.AssertExpectations(t)
	})

	t.Run("should map duplicate PO number to 409", func(t *testing.T) {
		router, mockRepo := setupSalesOrderTestRouter(nil)
		o := newSubmittableOrder(t, companyID)
		o.PONo = "PO-777"

		mockRepo.On("FindByID", mock.Anything, companyID, o.ID).Return(o, nil)
		mockRepo.On("ExistsPONoForCustomer", mock.Anything, companyID, o.CustomerID, "PO-777", o.ID).
			Return(true, nil)

		w := doJSON(router, http.MethodPost, "/sales-orders/"+o.ID.String()+"/submit", companyID, nil)
		assert.Equal(t, http.StatusConflict, w.Code)

		mockRepo.AssertExpectations(t)
	})
}

func TestSalesOrderHandler_Cancel(t *testing.T) {
	companyID := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	t.Run("should cancel submitted order", func(t *testing.T) {
		router, mockRepo := setupSalesOrderTestRouter(nil)
		o := newSubmittableOrder(t, companyID)
		require.NoError(t, o.Submit())

		mockRepo.On("FindByID", mock.Anything, companyID, o.ID).Return(o, nil)
		mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*order.SalesOrder")).
			Return(nil)

		w := doJSON(router, http.MethodPost, "/sales-orders/"+o.ID.String()+"/cancel", companyID,
			apporder.CancelOrderRequest{Reason: "customer withdrew"})
		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "CANCELLED", data["status"])

		mockRepo.AssertExpectations(t)
	})
}
