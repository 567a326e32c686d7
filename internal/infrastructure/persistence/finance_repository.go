package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medrent/backend/internal/domain/finance"
	"github.com/medrent/backend/internal/domain/shared"
)

// GormJournalEntryRepository implements finance.JournalEntryRepository
// using GORM
type GormJournalEntryRepository struct {
	db *gorm.DB
}

// NewGormJournalEntryRepository creates a new GormJournalEntryRepository
func NewGormJournalEntryRepository(db *gorm.DB) *GormJournalEntryRepository {
	return &GormJournalEntryRepository{db: db}
}

// Save creates or updates a journal entry with its legs in one transaction
func (r *GormJournalEntryRepository) Save(ctx context.Context, entry *finance.JournalEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(entry).Error; err != nil {
			return err
		}
		if len(entry.Legs) == 0 {
			return tx.Where("entry_id = ?", entry.ID).Delete(&finance.JournalLeg{}).Error
		}
		keep := make([]uuid.UUID, len(entry.Legs))
		for i := range entry.Legs {
			entry.Legs[i].EntryID = entry.ID
			keep[i] = entry.Legs[i].ID
			if err := tx.Save(&entry.Legs[i]).Error; err != nil {
				return err
			}
		}
		return tx.Where("entry_id = ? AND id NOT IN ?", entry.ID, keep).
			Delete(&finance.JournalLeg{}).Error
	})
}

// FindByID finds a journal entry by ID within a company
func (r *GormJournalEntryRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*finance.JournalEntry, error) {
	var entry finance.JournalEntry
	if err := r.db.WithContext(ctx).
		Preload("Legs").
		Where("company_id = ? AND id = ?", companyID, id).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindByOrder lists the vouchers posted against an order
func (r *GormJournalEntryRepository) FindByOrder(ctx context.Context, companyID, orderID uuid.UUID) ([]finance.JournalEntry, error) {
	var entries []finance.JournalEntry
	if err := r.db.WithContext(ctx).
		Preload("Legs").
		Where("company_id = ? AND order_id = ?", companyID, orderID).
		Order("posting_date DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByTag lists vouchers carrying a business tag with pagination
func (r *GormJournalEntryRepository) FindByTag(ctx context.Context, companyID uuid.UUID, tag finance.VoucherTag, filter shared.Filter) (shared.Paginated[finance.JournalEntry], error) {
	query := r.db.WithContext(ctx).Model(&finance.JournalEntry{}).
		Where("company_id = ? AND tag = ?", companyID, tag)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[finance.JournalEntry]{}, err
	}

	var entries []finance.JournalEntry
	if err := query.
		Preload("Legs").
		Order("posting_date DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&entries).Error; err != nil {
		return shared.Paginated[finance.JournalEntry]{}, err
	}
	return shared.NewPaginated(entries, total, filter.Page, filter.PageSize), nil
}

var _ finance.JournalEntryRepository = (*GormJournalEntryRepository)(nil)

// GormPaymentEntryRepository implements finance.PaymentEntryRepository
// using GORM
type GormPaymentEntryRepository struct {
	db *gorm.DB
}

// NewGormPaymentEntryRepository creates a new GormPaymentEntryRepository
func NewGormPaymentEntryRepository(db *gorm.DB) *GormPaymentEntryRepository {
	return &GormPaymentEntryRepository{db: db}
}

// Save creates or updates a payment entry with its references in one
// transaction
func (r *GormPaymentEntryRepository) Save(ctx context.Context, entry *finance.PaymentEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(entry).Error; err != nil {
			return err
		}
		if len(entry.References) == 0 {
			return tx.Where("payment_id = ?", entry.ID).Delete(&finance.PaymentReference{}).Error
		}
		keep := make([]uuid.UUID, len(entry.References))
		for i := range entry.References {
			entry.References[i].PaymentID = entry.ID
			keep[i] = entry.References[i].ID
			if err := tx.Save(&entry.References[i]).Error; err != nil {
				return err
			}
		}
		return tx.Where("payment_id = ? AND id NOT IN ?", entry.ID, keep).
			Delete(&finance.PaymentReference{}).Error
	})
}

// FindByID finds a payment entry by ID within a company
func (r *GormPaymentEntryRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*finance.PaymentEntry, error) {
	var entry finance.PaymentEntry
	if err := r.db.WithContext(ctx).
		Preload("References").
		Where("company_id = ? AND id = ?", companyID, id).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindByReference lists payments allocated against a document
func (r *GormPaymentEntryRepository) FindByReference(ctx context.Context, companyID uuid.UUID, referenceType string, referenceID uuid.UUID) ([]finance.PaymentEntry, error) {
	var entries []finance.PaymentEntry
	if err := r.db.WithContext(ctx).
		Preload("References").
		Joins("JOIN payment_entry_references ON payment_entry_references.payment_id = payment_entries.id").
		Where("payment_entries.company_id = ?", companyID).
		Where("payment_entry_references.reference_type = ? AND payment_entry_references.reference_id = ?", referenceType, referenceID).
		Order("payment_entries.posting_date DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

var _ finance.PaymentEntryRepository = (*GormPaymentEntryRepository)(nil)

// GormVoucherNumberProvider issues sequential voucher numbers per company
// and year, counting existing rows under the prefix
type GormVoucherNumberProvider struct {
	db *gorm.DB
}

// NewGormVoucherNumberProvider creates a new GormVoucherNumberProvider
func NewGormVoucherNumberProvider(db *gorm.DB) *GormVoucherNumberProvider {
	return &GormVoucherNumberProvider{db: db}
}

// NextJournalNumber issues the next journal voucher number
func (p *GormVoucherNumberProvider) NextJournalNumber(ctx context.Context, companyID uuid.UUID) (string, error) {
	return p.next(ctx, companyID, &finance.JournalEntry{}, "voucher_number", "JV")
}

// NextPaymentNumber issues the next payment entry number
func (p *GormVoucherNumberProvider) NextPaymentNumber(ctx context.Context, companyID uuid.UUID) (string, error) {
	return p.next(ctx, companyID, &finance.PaymentEntry{}, "payment_number", "PE")
}

func (p *GormVoucherNumberProvider) next(ctx context.Context, companyID uuid.UUID, model any, column, series string) (string, error) {
	prefix := fmt.Sprintf("%s-%d-", series, time.Now().Year())

	var count int64
	if err := p.db.WithContext(ctx).Model(model).
		Where("company_id = ?", companyID).
		Where(column+" LIKE ?", prefix+"%").
		Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}
