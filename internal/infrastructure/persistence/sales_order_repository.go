package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medrent/backend/internal/domain/order"
	"github.com/medrent/backend/internal/domain/shared"
)

// GormSalesOrderRepository implements order.Repository using GORM
type GormSalesOrderRepository struct {
	db *gorm.DB
}

// NewGormSalesOrderRepository creates a new GormSalesOrderRepository
func NewGormSalesOrderRepository(db *gorm.DB) *GormSalesOrderRepository {
	return &GormSalesOrderRepository{db: db}
}

// GenerateOrderNumber issues the next sequential order number per company
// and year
func (r *GormSalesOrderRepository) GenerateOrderNumber(ctx context.Context, companyID uuid.UUID) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("SO-%d-", year)

	var count int64
	if err := r.db.WithContext(ctx).Model(&order.SalesOrder{}).
		Where("company_id = ? AND order_number LIKE ?", companyID, prefix+"%").
		Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

// FindByID finds a sales order by ID within a company
func (r *GormSalesOrderRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*order.SalesOrder, error) {
	var o order.SalesOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("PackedItems").
		Preload("Taxes").
		Where("company_id = ? AND id = ?", companyID, id).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByOrderNumber finds a sales order by its number within a company
func (r *GormSalesOrderRepository) FindByOrderNumber(ctx context.Context, companyID uuid.UUID, orderNumber string) (*order.SalesOrder, error) {
	var o order.SalesOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("PackedItems").
		Preload("Taxes").
		Where("company_id = ? AND order_number = ?", companyID, orderNumber).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindAll finds sales orders for a company with filtering and pagination
func (r *GormSalesOrderRepository) FindAll(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (shared.Paginated[order.SalesOrder], error) {
	return r.page(ctx, filter, r.db.WithContext(ctx).Model(&order.SalesOrder{}).
		Where("company_id = ?", companyID))
}

// FindByCustomer finds sales orders for a customer
func (r *GormSalesOrderRepository) FindByCustomer(ctx context.Context, companyID, customerID uuid.UUID, filter shared.Filter) (shared.Paginated[order.SalesOrder], error) {
	return r.page(ctx, filter, r.db.WithContext(ctx).Model(&order.SalesOrder{}).
		Where("company_id = ? AND customer_id = ?", companyID, customerID))
}

func (r *GormSalesOrderRepository) page(ctx context.Context, filter shared.Filter, query *gorm.DB) (shared.Paginated[order.SalesOrder], error) {
	query = r.applyFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[order.SalesOrder]{}, err
	}

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "created_at"
	}
	dir := "DESC"
	if filter.OrderDir == "asc" {
		dir = "ASC"
	}

	var orders []order.SalesOrder
	if err := query.
		Preload("Items").
		Order(fmt.Sprintf("%s %s", orderBy, dir)).
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&orders).Error; err != nil {
		return shared.Paginated[order.SalesOrder]{}, err
	}
	return shared.NewPaginated(orders, total, filter.Page, filter.PageSize), nil
}

func (r *GormSalesOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("order_number LIKE ? OR customer_name LIKE ? OR po_no LIKE ?", pattern, pattern, pattern)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if orderType, ok := filter.Filters["order_type"]; ok {
		query = query.Where("order_type = ?", orderType)
	}
	return query
}

// FindOpenRentalsByCustomer lists rental orders of the customer that
// still hold coverage
func (r *GormSalesOrderRepository) FindOpenRentalsByCustomer(ctx context.Context, companyID, customerID uuid.UUID) ([]order.SalesOrder, error) {
	var orders []order.SalesOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("company_id = ? AND customer_id = ? AND order_type = ?", companyID, customerID, order.OrderTypeRental).
		Where("status NOT IN ?", []order.OrderStatus{
			order.StatusDraft, order.StatusCancelled, order.StatusClosed, order.StatusRenewed,
		}).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindActiveRentalsEndingBefore lists active rentals whose coverage
// lapsed before the cutoff, for the overdue sweep
func (r *GormSalesOrderRepository) FindActiveRentalsEndingBefore(ctx context.Context, cutoff time.Time) ([]order.SalesOrder, error) {
	var orders []order.SalesOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_type = ? AND overdue_track = ? AND rental_end < ?",
			order.OrderTypeRental, order.OverdueTrackActive, cutoff).
		Where("status IN ?", []order.OrderStatus{
			order.StatusActive, order.StatusReadyForPickup, order.StatusPartiallyClosed,
		}).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ExistsPONoForCustomer reports whether another open order of the
// customer already references the purchase order number
func (r *GormSalesOrderRepository) ExistsPONoForCustomer(ctx context.Context, companyID, customerID uuid.UUID, poNo string, excludeOrderID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&order.SalesOrder{}).
		Where("company_id = ? AND customer_id = ? AND po_no = ?", companyID, customerID, poNo).
		Where("id <> ? AND status <> ?", excludeOrderID, order.StatusCancelled).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a sales order with its child rows in one
// transaction. Removed children are deleted, remaining ones upserted.
func (r *GormSalesOrderRepository) Save(ctx context.Context, o *order.SalesOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(o).Error; err != nil {
			return err
		}
		if err := syncChildren(tx, o.ID, &order.SalesOrderItem{}, len(o.Items), func(i int) (any, []uuid.UUID, error) {
			o.Items[i].OrderID = o.ID
			return &o.Items[i], itemIDs(o), nil
		}); err != nil {
			return err
		}
		if err := syncChildren(tx, o.ID, &order.PackedItem{}, len(o.PackedItems), func(i int) (any, []uuid.UUID, error) {
			o.PackedItems[i].OrderID = o.ID
			return &o.PackedItems[i], packedIDs(o), nil
		}); err != nil {
			return err
		}
		return syncChildren(tx, o.ID, &order.TaxLine{}, len(o.Taxes), func(i int) (any, []uuid.UUID, error) {
			o.Taxes[i].OrderID = o.ID
			return &o.Taxes[i], taxIDs(o), nil
		})
	})
}

func itemIDs(o *order.SalesOrder) []uuid.UUID {
	ids := make([]uuid.UUID, len(o.Items))
	for i := range o.Items {
		ids[i] = o.Items[i].ID
	}
	return ids
}

func packedIDs(o *order.SalesOrder) []uuid.UUID {
	ids := make([]uuid.UUID, len(o.PackedItems))
	for i := range o.PackedItems {
		ids[i] = o.PackedItems[i].ID
	}
	return ids
}

func taxIDs(o *order.SalesOrder) []uuid.UUID {
	ids := make([]uuid.UUID, len(o.Taxes))
	for i := range o.Taxes {
		ids[i] = o.Taxes[i].ID
	}
	return ids
}

// syncChildren deletes child rows no longer present and saves the rest
func syncChildren(tx *gorm.DB, orderID uuid.UUID, model any, count int, row func(int) (any, []uuid.UUID, error)) error {
	if count == 0 {
		return tx.Where("order_id = ?", orderID).Delete(model).Error
	}
	var keep []uuid.UUID
	for i := 0; i < count; i++ {
		rec, ids, err := row(i)
		if err != nil {
			return err
		}
		keep = ids
		if err := tx.Save(rec).Error; err != nil {
			return err
		}
	}
	return tx.Where("order_id = ? AND id NOT IN ?", orderID, keep).Delete(model).Error
}

// Delete removes a sales order and its children
func (r *GormSalesOrderRepository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&order.SalesOrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&order.PackedItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&order.TaxLine{}).Error; err != nil {
			return err
		}
		result := tx.Where("company_id = ? AND id = ?", companyID, id).Delete(&order.SalesOrder{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

var _ order.Repository = (*GormSalesOrderRepository)(nil)
