package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/medrent/backend/internal/domain/derivation"
	"github.com/medrent/backend/internal/domain/order"
)

// DerivationService exposes the document derivations of a sales order.
// Drafts are returned to the caller; persisting them belongs to the
// downstream document services. Maintenance derivations additionally
// leave a record so the engine's derive-at-most-once guard holds.
type DerivationService struct {
	orderRepo   order.Repository
	engine      *derivation.Engine
	maintenance MaintenanceRecorder
}

// MaintenanceRecorder marks an order as having a derived maintenance
// schedule or visit
type MaintenanceRecorder interface {
	RecordSchedule(ctx context.Context, companyID, orderID uuid.UUID) error
	RecordVisit(ctx context.Context, companyID, orderID uuid.UUID) error
}

// NewDerivationService creates a new DerivationService
func NewDerivationService(orderRepo order.Repository, engine *derivation.Engine, maintenance MaintenanceRecorder) *DerivationService {
	return &DerivationService{
		orderRepo:   orderRepo,
		engine:      engine,
		maintenance: maintenance,
	}
}

func (s *DerivationService) load(ctx context.Context, companyID, orderID uuid.UUID) (*order.SalesOrder, error) {
	return s.orderRepo.FindByID(ctx, companyID, orderID)
}

// DeliveryNote derives a delivery note draft
func (s *DerivationService) DeliveryNote(ctx context.Context, companyID, orderID uuid.UUID) (*derivation.DeliveryNoteDraft, error) {
	o, err := s.load(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}
	return s.engine.DeliveryNote(ctx, o)
}

// SalesInvoice derives a sales invoice draft
func (s *DerivationService) SalesInvoice(ctx context.Context, companyID, orderID uuid.UUID) (*derivation.SalesInvoiceDraft, error) {
	o, err := s.load(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}
	return s.engine.SalesInvoice(ctx, o)
}

// PurchaseOrders derives backing purchase order drafts, one per supplier
func (s *DerivationService) PurchaseOrders(ctx context.Context, companyID, orderID uuid.UUID, suppliers []string) ([]derivation.PurchaseOrderDraft, error) {
	o, err := s.load(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}
	return s.engine.PurchaseOrders(ctx, o, suppliers)
}

// PickList derives a warehouse pick list draft
func (s *DerivationService) PickList(ctx context.Context, companyID, orderID uuid.UUID) (*derivation.PickListDraft, error) {
	o, err := s.load(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}
	return s.engine.PickList(ctx, o)
}

// MaterialRequest derives a material request draft
func (s *DerivationService) MaterialRequest(ctx context.Context, companyID, orderID uuid.UUID, requestType string) (*derivation.MaterialRequestDraft, error) {
	o, err := s.load(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}
	return s.engine.MaterialRequest(ctx, o, requestType)
}

// Project derives a project draft
func (s *DerivationService) Project(ctx context.Context, companyID, orderID uuid.UUID) (*derivation.ProjectDraft, error) {
	o, err := s.load(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}
	return s.engine.Project(ctx, o)
}

// MaintenanceSchedule derives the order's maintenance schedule draft
// and records it so a second derivation is rejected
func (s *DerivationService) MaintenanceSchedule(ctx context.Context, companyID, orderID uuid.UUID) (*derivation.MaintenanceScheduleDraft, error) {
	o, err := s.load(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}
	draft, err := s.engine.MaintenanceSchedule(ctx, o)
	if err != nil {
		return nil, err
	}
	if s.maintenance != nil {
		if err := s.maintenance.RecordSchedule(ctx, companyID, orderID); err != nil {
			return nil, err
		}
	}
	return draft, nil
}

// MaintenanceVisit derives a maintenance visit draft and records it so
// a second derivation is rejected
func (s *DerivationService) MaintenanceVisit(ctx context.Context, companyID, orderID uuid.UUID) (*derivation.MaintenanceVisitDraft, error) {
	o, err := s.load(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}
	draft, err := s.engine.MaintenanceVisit(ctx, o)
	if err != nil {
		return nil, err
	}
	if s.maintenance != nil {
		if err := s.maintenance.RecordVisit(ctx, companyID, orderID); err != nil {
			return nil, err
		}
	}
	return draft, nil
}
