package finance

import (
	"context"

	"github.com/google/uuid"

	"github.com/medrent/backend/internal/domain/shared"
)

// JournalEntryRepository defines persistence for journal entries
type JournalEntryRepository interface {
	Save(ctx context.Context, entry *JournalEntry) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*JournalEntry, error)
	FindByOrder(ctx context.Context, companyID, orderID uuid.UUID) ([]JournalEntry, error)
	FindByTag(ctx context.Context, companyID uuid.UUID, tag VoucherTag, filter shared.Filter) (shared.Paginated[JournalEntry], error)
}

// PaymentEntryRepository defines persistence for payment entries
type PaymentEntryRepository interface {
	Save(ctx context.Context, entry *PaymentEntry) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*PaymentEntry, error)
	FindByReference(ctx context.Context, companyID uuid.UUID, referenceType string, referenceID uuid.UUID) ([]PaymentEntry, error)
}
