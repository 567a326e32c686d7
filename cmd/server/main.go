package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apporder "github.com/medrent/backend/internal/application/order"
	"github.com/medrent/backend/internal/domain/derivation"
	"github.com/medrent/backend/internal/infrastructure/cache"
	"github.com/medrent/backend/internal/infrastructure/config"
	"github.com/medrent/backend/internal/infrastructure/event"
	"github.com/medrent/backend/internal/infrastructure/logger"
	"github.com/medrent/backend/internal/infrastructure/persistence"
	"github.com/medrent/backend/internal/infrastructure/scheduler"
	"github.com/medrent/backend/internal/interfaces/http/handler"
	"github.com/medrent/backend/internal/interfaces/http/middleware"
	"github.com/medrent/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting MedRent Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := persistence.AutoMigrate(db); err != nil {
		log.Fatal("Failed to migrate database schema", zap.Error(err))
	}
	log.Info("Database connected")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		_ = redisClient.Close()
	}()

	// Repositories
	orderRepo := persistence.NewGormSalesOrderRepository(db)
	deviceRepo := persistence.NewGormDeviceRepository(db)
	replacementRepo := persistence.NewGormReplacementRepository(db)
	journalRepo := persistence.NewGormJournalEntryRepository(db)
	paymentRepo := persistence.NewGormPaymentEntryRepository(db)
	voucherNumbers := persistence.NewGormVoucherNumberProvider(db)
	itemCatalog := persistence.NewGormItemCatalog(db)
	reservations := persistence.NewGormReservationLookup(db)
	creditChecker := persistence.NewGormCreditChecker(db)
	maintenanceLookup := persistence.NewGormMaintenanceLookup(db)

	// Exchange rates: static table refreshed through the Redis cache.
	// Cross-currency derivation is rare; INR orders short-circuit to 1.
	staticRates := cache.NewStaticExchangeRateProvider(map[string]decimal.Decimal{
		"USD:INR": decimal.NewFromFloat(83.20),
		"EUR:INR": decimal.NewFromFloat(90.45),
	})
	rateProvider := cache.NewRedisExchangeRateCache(redisClient, staticRates, time.Hour)

	// Event bus with the audit trail subscribed to everything
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewAuditLogHandler(log))

	// Application services
	orderService := apporder.NewSalesOrderService(orderRepo, itemCatalog, creditChecker, deviceRepo)
	orderService.SetEventPublisher(eventBus)
	rentalService := apporder.NewRentalService(orderRepo, deviceRepo, replacementRepo)
	rentalService.SetEventPublisher(eventBus)
	paymentService := apporder.NewPaymentService(orderRepo, journalRepo, paymentRepo, voucherNumbers)
	paymentService.SetEventPublisher(eventBus)
	derivationEngine := derivation.NewEngine(itemCatalog, reservations, rateProvider, maintenanceLookup)
	derivationService := apporder.NewDerivationService(orderRepo, derivationEngine, maintenanceLookup)

	// Overdue sweep
	sweepScheduler := scheduler.NewOverdueSweepScheduler(orderService, log, scheduler.OverdueSweepConfig{
		Enabled:  cfg.Scheduler.Enabled,
		Interval: cfg.Scheduler.OverdueSweepInterval,
	})
	if err := sweepScheduler.Start(context.Background()); err != nil {
		log.Fatal("Failed to start overdue sweep scheduler", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := sweepScheduler.Stop(stopCtx); err != nil {
			log.Error("Error stopping overdue sweep scheduler", zap.Error(err))
		}
	}()

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := router.Setup(log, router.Handlers{
		SalesOrder: handler.NewSalesOrderHandler(orderService),
		Rental:     handler.NewRentalHandler(rentalService),
		Payment:    handler.NewPaymentHandler(paymentService),
		Derivation: handler.NewDerivationHandler(derivationService),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}
	log.Info("Server stopped")
}
