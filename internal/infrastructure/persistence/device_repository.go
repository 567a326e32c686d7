package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medrent/backend/internal/domain/rental"
	"github.com/medrent/backend/internal/domain/shared"
)

// GormDeviceRepository implements rental.DeviceRepository using GORM
type GormDeviceRepository struct {
	db *gorm.DB
}

// NewGormDeviceRepository creates a new GormDeviceRepository
func NewGormDeviceRepository(db *gorm.DB) *GormDeviceRepository {
	return &GormDeviceRepository{db: db}
}

// Save creates or updates a rental device
func (r *GormDeviceRepository) Save(ctx context.Context, device *rental.Device) error {
	return r.db.WithContext(ctx).Save(device).Error
}

// FindByID finds a device by ID within a company
func (r *GormDeviceRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*rental.Device, error) {
	var d rental.Device
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// FindBySerialNo finds a device by its serial number
func (r *GormDeviceRepository) FindBySerialNo(ctx context.Context, companyID uuid.UUID, serialNo string) (*rental.Device, error) {
	var d rental.Device
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND serial_no = ?", companyID, serialNo).
		First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// FindAvailableByItemCode lists devices of an item that can be reserved
func (r *GormDeviceRepository) FindAvailableByItemCode(ctx context.Context, companyID uuid.UUID, itemCode string) ([]rental.Device, error) {
	var devices []rental.Device
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND item_code = ? AND status = ?", companyID, itemCode, rental.DeviceAvailable).
		Order("serial_no ASC").
		Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

// FindAll lists devices for a company with filtering and pagination
func (r *GormDeviceRepository) FindAll(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (shared.Paginated[rental.Device], error) {
	query := r.db.WithContext(ctx).Model(&rental.Device{}).
		Where("company_id = ?", companyID)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("serial_no LIKE ? OR item_code LIKE ? OR model_name LIKE ?", pattern, pattern, pattern)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if itemCode, ok := filter.Filters["item_code"]; ok {
		query = query.Where("item_code = ?", itemCode)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[rental.Device]{}, err
	}

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "serial_no"
	}
	dir := "ASC"
	if filter.OrderDir == "desc" {
		dir = "DESC"
	}

	var devices []rental.Device
	if err := query.
		Order(fmt.Sprintf("%s %s", orderBy, dir)).
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&devices).Error; err != nil {
		return shared.Paginated[rental.Device]{}, err
	}
	return shared.NewPaginated(devices, total, filter.Page, filter.PageSize), nil
}

var _ rental.DeviceRepository = (*GormDeviceRepository)(nil)

// GormReplacementRepository implements rental.ReplacementRepository using GORM
type GormReplacementRepository struct {
	db *gorm.DB
}

// NewGormReplacementRepository creates a new GormReplacementRepository
func NewGormReplacementRepository(db *gorm.DB) *GormReplacementRepository {
	return &GormReplacementRepository{db: db}
}

// Save records a device replacement
func (r *GormReplacementRepository) Save(ctx context.Context, replacement *rental.Replacement) error {
	return r.db.WithContext(ctx).Save(replacement).Error
}

// FindByOrder lists the replacement history of an order
func (r *GormReplacementRepository) FindByOrder(ctx context.Context, companyID, orderID uuid.UUID) ([]rental.Replacement, error) {
	var replacements []rental.Replacement
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND order_id = ?", companyID, orderID).
		Order("created_at DESC").
		Find(&replacements).Error; err != nil {
		return nil, err
	}
	return replacements, nil
}

var _ rental.ReplacementRepository = (*GormReplacementRepository)(nil)
