package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/medrent/backend/internal/domain/finance"
	"github.com/medrent/backend/internal/domain/order"
	"github.com/medrent/backend/internal/domain/shared"
)

// GormCreditChecker verifies a customer's outstanding exposure against
// the credit limit stored in their credit profile. Customers without a
// profile are not limited.
type GormCreditChecker struct {
	db *gorm.DB
}

// NewGormCreditChecker creates a new GormCreditChecker
func NewGormCreditChecker(db *gorm.DB) *GormCreditChecker {
	return &GormCreditChecker{db: db}
}

// CheckCredit fails when outstanding order value plus the additional
// exposure would exceed the customer's credit limit
func (c *GormCreditChecker) CheckCredit(ctx context.Context, companyID, customerID uuid.UUID, additionalExposure decimal.Decimal) error {
	var profile finance.CreditProfile
	err := c.db.WithContext(ctx).
		Where("company_id = ? AND customer_id = ?", companyID, customerID).
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if profile.BypassCreditCheck || !profile.CreditLimit.IsPositive() {
		return nil
	}

	var outstanding decimal.NullDecimal
	err = c.db.WithContext(ctx).
		Model(&order.SalesOrder{}).
		Select("SUM(grand_total - paid_amount)").
		Where("company_id = ? AND customer_id = ?", companyID, customerID).
		Where("status NOT IN ?", []order.OrderStatus{
			order.StatusDraft, order.StatusCancelled, order.StatusClosed,
		}).
		Scan(&outstanding).Error
	if err != nil {
		return err
	}

	exposure := additionalExposure
	if outstanding.Valid {
		exposure = exposure.Add(outstanding.Decimal)
	}
	if exposure.GreaterThan(profile.CreditLimit) {
		return shared.NewDomainError("CREDIT_LIMIT_EXCEEDED",
			fmt.Sprintf("exposure %s exceeds credit limit %s", exposure.StringFixed(2), profile.CreditLimit.StringFixed(2)))
	}
	return nil
}

// SaveProfile upserts a customer credit profile
func (c *GormCreditChecker) SaveProfile(ctx context.Context, profile *finance.CreditProfile) error {
	return c.db.WithContext(ctx).Save(profile).Error
}

var _ order.CreditChecker = (*GormCreditChecker)(nil)
