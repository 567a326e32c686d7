package handler

import (
	"github.com/gin-gonic/gin"

	apporder "github.com/medrent/backend/internal/application/order"
	"github.com/medrent/backend/internal/interfaces/http/middleware"
)

// DerivationHandler exposes the downstream document derivations of a
// sales order. Every endpoint returns a draft; persisting the document
// belongs to its own service.
type DerivationHandler struct {
	BaseHandler
	derivationService *apporder.DerivationService
}

// NewDerivationHandler creates a new DerivationHandler
func NewDerivationHandler(derivationService *apporder.DerivationService) *DerivationHandler {
	return &DerivationHandler{derivationService: derivationService}
}

// DeliveryNote derives a delivery note draft
// POST /api/v1/sales-orders/:id/derive/delivery-note
func (h *DerivationHandler) DeliveryNote(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	orderID, ok := parseOrderID(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	draft, err := h.derivationService.DeliveryNote(c.Request.Context(), companyID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, draft)
}

// SalesInvoice derives a sales invoice draft
// POST /api/v1/sales-orders/:id/derive/sales-invoice
func (h *DerivationHandler) SalesInvoice(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	orderID, ok := parseOrderID(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	draft, err := h.derivationService.SalesInvoice(c.Request.Context(), companyID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, draft)
}

// PurchaseOrders derives backing purchase order drafts, one per supplier
// POST /api/v1/sales-orders/:id/derive/purchase-orders
func (h *DerivationHandler) PurchaseOrders(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	orderID, ok := parseOrderID(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	// body is optional; without one every drop-ship supplier is covered
	var req apporder.DeriveRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindingError(c, err)
			return
		}
	}

	drafts, err := h.derivationService.PurchaseOrders(c.Request.Context(), companyID, orderID, req.Suppliers)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, drafts)
}

// PickList derives a warehouse pick list draft
// POST /api/v1/sales-orders/:id/derive/pick-list
func (h *DerivationHandler) PickList(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	orderID, ok := parseOrderID(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	draft, err := h.derivationService.PickList(c.Request.Context(), companyID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, draft)
}

// MaterialRequest derives a material request draft
// POST /api/v1/sales-orders/:id/derive/material-request
func (h *DerivationHandler) MaterialRequest(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	orderID, ok := parseOrderID(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	// body is optional; the request type defaults when absent
	var req apporder.DeriveRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindingError(c, err)
			return
		}
	}

	draft, err := h.derivationService.MaterialRequest(c.Request.Context(), companyID, orderID, req.RequestType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, draft)
}

// Project derives a project draft
// POST /api/v1/sales-orders/:id/derive/project
func (h *DerivationHandler) Project(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	orderID, ok := parseOrderID(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	draft, err := h.derivationService.Project(c.Request.Context(), companyID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, draft)
}

// MaintenanceSchedule derives the order's maintenance schedule draft
// POST /api/v1/sales-orders/:id/derive/maintenance-schedule
func (h *DerivationHandler) MaintenanceSchedule(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	orderID, ok := parseOrderID(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	draft, err := h.derivationService.MaintenanceSchedule(c.Request.Context(), companyID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, draft)
}

// MaintenanceVisit derives a maintenance visit draft
// POST /api/v1/sales-orders/:id/derive/maintenance-visit
func (h *DerivationHandler) MaintenanceVisit(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	orderID, ok := parseOrderID(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	draft, err := h.derivationService.MaintenanceVisit(c.Request.Context(), companyID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, draft)
}
