package handler

import (
	"github.com/gin-gonic/gin"

	apporder "github.com/medrent/backend/internal/application/order"
	"github.com/medrent/backend/internal/interfaces/http/middleware"
)

// PaymentHandler handles rental payment and security deposit endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *apporder.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *apporder.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// ApplyPayment books a rental payment against the order
// POST /api/v1/sales-orders/:id/payments
func (h *PaymentHandler) ApplyPayment(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	orderID, ok := parseOrderID(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req apporder.ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.paymentService.ApplyPayment(c.Request.Context(), companyID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CollectDeposit books a security deposit instalment
// POST /api/v1/sales-orders/:id/deposit/collect
func (h *PaymentHandler) CollectDeposit(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	orderID, ok := parseOrderID(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req apporder.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.paymentService.CollectDeposit(c.Request.Context(), companyID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RefundDeposit returns deposit money to the customer
// POST /api/v1/sales-orders/:id/deposit/refund
func (h *PaymentHandler) RefundDeposit(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	orderID, ok := parseOrderID(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req apporder.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.paymentService.RefundDeposit(c.Request.Context(), companyID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListVouchers returns the finance trail booked against an order
// GET /api/v1/sales-orders/:id/vouchers
func (h *PaymentHandler) ListVouchers(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	orderID, ok := parseOrderID(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	journals, payments, err := h.paymentService.ListVouchers(c.Request.Context(), companyID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{
		"journal_entries": journals,
		"payment_entries": payments,
	})
}
