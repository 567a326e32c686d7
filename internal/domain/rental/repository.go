package rental

import (
	"context"

	"github.com/google/uuid"

	"github.com/medrent/backend/internal/domain/shared"
)

// DeviceRepository defines persistence for rental devices
type DeviceRepository interface {
	Save(ctx context.Context, device *Device) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*Device, error)
	FindBySerialNo(ctx context.Context, companyID uuid.UUID, serialNo string) (*Device, error)
	FindAvailableByItemCode(ctx context.Context, companyID uuid.UUID, itemCode string) ([]Device, error)
	FindAll(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (shared.Paginated[Device], error)
}

// ReplacementRepository defines persistence for the replacement audit trail
type ReplacementRepository interface {
	Save(ctx context.Context, replacement *Replacement) error
	FindByOrder(ctx context.Context, companyID, orderID uuid.UUID) ([]Replacement, error)
}
