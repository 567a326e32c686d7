package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apporder "github.com/medrent/backend/internal/application/order"
	"github.com/medrent/backend/internal/interfaces/http/middleware"
)

// SalesOrderHandler handles sales order API endpoints
type SalesOrderHandler struct {
	BaseHandler
	orderService *apporder.SalesOrderService
}

// NewSalesOrderHandler creates a new SalesOrderHandler
func NewSalesOrderHandler(orderService *apporder.SalesOrderService) *SalesOrderHandler {
	return &SalesOrderHandler{orderService: orderService}
}

// parseOrderID extracts the order ID path parameter
func parseOrderID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// Create creates a new draft sales order
// POST /api/v1/sales-orders
func (h *SalesOrderHandler) Create(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)

	var req apporder.CreateSalesOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.orderService.Create(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID retrieves a sales order
// GET /api/v1/sales-orders/:id
func (h *SalesOrderHandler) GetByID(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	orderID, ok := parseOrderID(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	resp, err := h.orderService.GetByID(c.Request.Context(), companyID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByOrderNumber retrieves a sales order by its number
// GET /api/v1/sales-orders/number/:number
func (h *SalesOrderHandler) GetByOrderNumber(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "Order number is required")
		return
	}

	resp, err := h.orderService.GetByOrderNumber(c.Request.Context(), companyID, number)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List lists sales orders with filtering and pagination
// GET /api/v1/sales-orders
func (h *SalesOrderHandler) List(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)

	var filter apporder.SalesOrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	page, err := h.orderService.List(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Submit submits a draft order
// POST /api/v1/sales-orders/:id/submit
func (h *SalesOrderHandler) Submit(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	orderID, ok := parseOrderID(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	resp, err := h.orderService.Submit(c.Request.Context(), companyID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel voids an order
// POST /api/v1/sales-orders/:id/cancel
func (h *SalesOrderHandler) Cancel(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	orderID, ok := parseOrderID(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req apporder.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.orderService.Cancel(c.Request.Context(), companyID, orderID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateFulfilment posts downstream fulfilment counters onto the order lines
// POST /api/v1/sales-orders/:id/fulfilment
func (h *SalesOrderHandler) UpdateFulfilment(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	orderID, ok := parseOrderID(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req apporder.UpdateFulfilmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.orderService.UpdateFulfilment(c.Request.Context(), companyID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Close stops further fulfilment against the order
// POST /api/v1/sales-orders/:id/close
func (h *SalesOrderHandler) Close(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	orderID, ok := parseOrderID(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	resp, err := h.orderService.Close(c.Request.Context(), companyID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Reopen reverts a closed order to its derived status
// POST /api/v1/sales-orders/:id/reopen
func (h *SalesOrderHandler) Reopen(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	orderID, ok := parseOrderID(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	resp, err := h.orderService.Reopen(c.Request.Context(), companyID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
