package finance

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medrent/backend/internal/domain/shared"
)

// CreditProfile holds the credit terms granted to a customer. A customer
// without a profile is not credit limited.
type CreditProfile struct {
	shared.CompanyAggregateRoot
	CustomerID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	CreditLimit       decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"credit_limit"`
	BypassCreditCheck bool            `gorm:"default:false" json:"bypass_credit_check"`
}

// TableName specifies the table name for CreditProfile
func (CreditProfile) TableName() string {
	return "customer_credit_profiles"
}
