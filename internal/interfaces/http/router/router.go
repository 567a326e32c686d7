package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/medrent/backend/internal/infrastructure/logger"
	"github.com/medrent/backend/internal/interfaces/http/handler"
	"github.com/medrent/backend/internal/interfaces/http/middleware"
)

// Handlers bundles the API handlers the router wires up
type Handlers struct {
	SalesOrder *handler.SalesOrderHandler
	Rental     *handler.RentalHandler
	Payment    *handler.PaymentHandler
	Derivation *handler.DerivationHandler
}

// Setup builds the gin engine with all middleware and routes registered
func Setup(log *zap.Logger, h Handlers) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CompanyContext())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api/v1")
	registerSalesOrderRoutes(api, h)
	registerRentalDeviceRoutes(api, h)
	return engine
}

func registerSalesOrderRoutes(api *gin.RouterGroup, h Handlers) {
	orders := api.Group("/sales-orders")

	orders.POST("", h.SalesOrder.Create)
	orders.GET("", h.SalesOrder.List)
	orders.GET("/number/:number", h.SalesOrder.GetByOrderNumber)
	orders.GET("/:id", h.SalesOrder.GetByID)
	orders.POST("/:id/submit", h.SalesOrder.Submit)
	orders.POST("/:id/fulfilment", h.SalesOrder.UpdateFulfilment)
	orders.POST("/:id/cancel", h.SalesOrder.Cancel)
	orders.POST("/:id/close", h.SalesOrder.Close)
	orders.POST("/:id/reopen", h.SalesOrder.Reopen)

	rental := orders.Group("/:id/rental")
	rental.POST("/status", h.Rental.ChangeStatus)
	rental.POST("/assign-device", h.Rental.AssignDevice)
	rental.POST("/replace-device", h.Rental.ReplaceDevice)
	rental.POST("/renew", h.Rental.Renew)
	rental.GET("/replacements", h.Rental.ListReplacements)

	orders.POST("/:id/payments", h.Payment.ApplyPayment)
	orders.POST("/:id/deposit/collect", h.Payment.CollectDeposit)
	orders.POST("/:id/deposit/refund", h.Payment.RefundDeposit)
	orders.GET("/:id/vouchers", h.Payment.ListVouchers)

	derive := orders.Group("/:id/derive")
	derive.POST("/delivery-note", h.Derivation.DeliveryNote)
	derive.POST("/sales-invoice", h.Derivation.SalesInvoice)
	derive.POST("/purchase-orders", h.Derivation.PurchaseOrders)
	derive.POST("/pick-list", h.Derivation.PickList)
	derive.POST("/material-request", h.Derivation.MaterialRequest)
	derive.POST("/project", h.Derivation.Project)
	derive.POST("/maintenance-schedule", h.Derivation.MaintenanceSchedule)
	derive.POST("/maintenance-visit", h.Derivation.MaintenanceVisit)
}

func registerRentalDeviceRoutes(api *gin.RouterGroup, h Handlers) {
	devices := api.Group("/rental-devices")
	devices.POST("", h.Rental.RegisterDevice)
	devices.GET("", h.Rental.ListDevices)
}
