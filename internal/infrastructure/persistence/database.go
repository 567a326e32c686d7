package persistence

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/medrent/backend/internal/domain/catalog"
	"github.com/medrent/backend/internal/domain/finance"
	"github.com/medrent/backend/internal/domain/order"
	"github.com/medrent/backend/internal/domain/rental"
	"github.com/medrent/backend/internal/infrastructure/config"
)

// NewDatabase opens the PostgreSQL connection and configures the pool
func NewDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access sql pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	return db, nil
}

// AutoMigrate creates or updates the database schema
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&order.SalesOrder{},
		&order.SalesOrderItem{},
		&order.PackedItem{},
		&order.TaxLine{},
		&order.StockReservation{},
		&rental.Device{},
		&rental.Replacement{},
		&rental.MaintenanceDocument{},
		&catalog.Item{},
		&catalog.BundleLine{},
		&finance.JournalEntry{},
		&finance.JournalLeg{},
		&finance.PaymentEntry{},
		&finance.PaymentReference{},
		&finance.CreditProfile{},
	)
}
