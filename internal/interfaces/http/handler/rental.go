package handler

import (
	"github.com/gin-gonic/gin"

	apporder "github.com/medrent/backend/internal/application/order"
	"github.com/medrent/backend/internal/interfaces/http/middleware"
)

// RentalHandler handles the rental lifecycle endpoints: line status
// changes, device pool management, field replacement and renewal
type RentalHandler struct {
	BaseHandler
	rentalService *apporder.RentalService
}

// NewRentalHandler creates a new RentalHandler
func NewRentalHandler(rentalService *apporder.RentalService) *RentalHandler {
	return &RentalHandler{rentalService: rentalService}
}

// ChangeStatus moves the selected lines to the requested sub-status
// POST /api/v1/sales-orders/:id/rental/status
func (h *RentalHandler) ChangeStatus(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	orderID, ok := parseOrderID(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req apporder.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.rentalService.ChangeStatus(c.Request.Context(), companyID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AssignDevice reserves a device against an approved order line
// POST /api/v1/sales-orders/:id/rental/assign-device
func (h *RentalHandler) AssignDevice(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	orderID, ok := parseOrderID(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req apporder.AssignDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.rentalService.AssignDevice(c.Request.Context(), companyID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ReplaceDevice swaps the device on an active line
// POST /api/v1/sales-orders/:id/rental/replace-device
func (h *RentalHandler) ReplaceDevice(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	orderID, ok := parseOrderID(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req apporder.ReplaceDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.rentalService.ReplaceDevice(c.Request.Context(), companyID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Renew copies the order into a successor covering the next period
// POST /api/v1/sales-orders/:id/rental/renew
func (h *RentalHandler) Renew(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	orderID, ok := parseOrderID(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req apporder.RenewOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.rentalService.Renew(c.Request.Context(), companyID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListReplacements returns the replacement trail of an order
// GET /api/v1/sales-orders/:id/rental/replacements
func (h *RentalHandler) ListReplacements(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	orderID, ok := parseOrderID(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	replacements, err := h.rentalService.ListReplacements(c.Request.Context(), companyID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, replacements)
}

// RegisterDevice adds a rental asset to the pool
// POST /api/v1/rental-devices
func (h *RentalHandler) RegisterDevice(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)

	var req apporder.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.rentalService.RegisterDevice(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListDevices lists the device pool
// GET /api/v1/rental-devices
func (h *RentalHandler) ListDevices(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)

	var filter apporder.DeviceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	page, err := h.rentalService.ListDevices(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
