package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/medrent/backend/internal/domain/order"
	"github.com/medrent/backend/internal/domain/rental"
	"github.com/medrent/backend/internal/domain/shared"
)

// RentalService drives the rental lifecycle of submitted orders: line
// status changes, device assignment, field replacement and renewal.
type RentalService struct {
	orderRepo       order.Repository
	deviceRepo      rental.DeviceRepository
	replacementRepo rental.ReplacementRepository
	eventPublisher  shared.EventPublisher
}

// NewRentalService creates a new RentalService
func NewRentalService(orderRepo order.Repository, deviceRepo rental.DeviceRepository, replacementRepo rental.ReplacementRepository) *RentalService {
	return &RentalService{
		orderRepo:       orderRepo,
		deviceRepo:      deviceRepo,
		replacementRepo: replacementRepo,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *RentalService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *RentalService) publishEvents(ctx context.Context, o *order.SalesOrder) {
	if s.eventPublisher == nil {
		return
	}
	if events := o.GetDomainEvents(); len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
		o.ClearDomainEvents()
	}
}

// ChangeStatus moves the selected lines to the requested sub-status and
// applies the resulting device movements
func (s *RentalService) ChangeStatus(ctx context.Context, companyID, orderID uuid.UUID, req ChangeStatusRequest) (*SalesOrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}

	effects, err := rental.ChangeLineStatus(o, order.LineStatus(req.Status), req.LineIDs, req.Reason, req.Remark)
	if err != nil {
		return nil, err
	}

	for _, effect := range effects {
		device, err := s.deviceRepo.FindByID(ctx, companyID, effect.DeviceID)
		if err != nil {
			return nil, err
		}
		switch effect.Action {
		case rental.DeviceActionIssue:
			err = device.Issue()
		case rental.DeviceActionReturn:
			err = device.Return()
		case rental.DeviceActionReserve:
			err = device.Reserve(o.ID)
		}
		if err != nil {
			return nil, err
		}
		if err := s.deviceRepo.Save(ctx, device); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, o)

	response := ToSalesOrderResponse(o)
	return &response, nil
}

// AssignDevice reserves a device against an approved order line
func (s *RentalService) AssignDevice(ctx context.Context, companyID, orderID uuid.UUID, req AssignDeviceRequest) (*SalesOrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}
	device, err := s.deviceRepo.FindByID(ctx, companyID, req.DeviceID)
	if err != nil {
		return nil, err
	}

	if err := rental.AssignDevice(o, req.LineID, device); err != nil {
		return nil, err
	}

	if err := s.deviceRepo.Save(ctx, device); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, o)

	response := ToSalesOrderResponse(o)
	return &response, nil
}

// ReplaceDevice swaps the device on an active line and records the
// replacement trail
func (s *RentalService) ReplaceDevice(ctx context.Context, companyID, orderID uuid.UUID, req ReplaceDeviceRequest) (*SalesOrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}
	item, err := o.ItemByID(req.LineID)
	if err != nil {
		return nil, err
	}
	if item.DeviceID == nil {
		return nil, shared.NewDomainError("NO_DEVICE_ASSIGNED", "line holds no device to replace")
	}
	oldDevice, err := s.deviceRepo.FindByID(ctx, companyID, *item.DeviceID)
	if err != nil {
		return nil, err
	}
	newDevice, err := s.deviceRepo.FindByID(ctx, companyID, req.NewDeviceID)
	if err != nil {
		return nil, err
	}

	record, err := rental.ReplaceDevice(o, req.LineID, oldDevice, newDevice, req.Reason, req.TechnicianName, req.TechnicianMobile)
	if err != nil {
		return nil, err
	}

	if err := s.deviceRepo.Save(ctx, oldDevice); err != nil {
		return nil, err
	}
	if err := s.deviceRepo.Save(ctx, newDevice); err != nil {
		return nil, err
	}
	if err := s.replacementRepo.Save(ctx, record); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, o)

	response := ToSalesOrderResponse(o)
	return &response, nil
}

// Renew copies the order into a successor covering the next period. The
// predecessor is stamped renewed once the successor is submitted.
func (s *RentalService) Renew(ctx context.Context, companyID, orderID uuid.UUID, req RenewOrderRequest) (*SalesOrderResponse, error) {
	predecessor, err := s.orderRepo.FindByID(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}

	orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx, companyID)
	if err != nil {
		return nil, err
	}
	successor, err := rental.BuildRenewal(predecessor, orderNumber, req.RentalStart, req.RentalEnd)
	if err != nil {
		return nil, err
	}

	if req.AutoSubmit {
		if err := successor.Submit(); err != nil {
			return nil, err
		}
		if err := predecessor.MarkRenewed(successor.ID); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Save(ctx, successor); err != nil {
		return nil, err
	}
	if req.AutoSubmit {
		if err := s.orderRepo.Save(ctx, predecessor); err != nil {
			return nil, err
		}
		s.publishEvents(ctx, predecessor)
	}
	s.publishEvents(ctx, successor)

	response := ToSalesOrderResponse(successor)
	return &response, nil
}

// ListReplacements returns the replacement trail of an order
func (s *RentalService) ListReplacements(ctx context.Context, companyID, orderID uuid.UUID) ([]rental.Replacement, error) {
	return s.replacementRepo.FindByOrder(ctx, companyID, orderID)
}

// RegisterDevice adds a rental asset to the pool
func (s *RentalService) RegisterDevice(ctx context.Context, companyID uuid.UUID, req RegisterDeviceRequest) (*DeviceResponse, error) {
	if existing, err := s.deviceRepo.FindBySerialNo(ctx, companyID, req.SerialNo); err == nil && existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_SERIAL_NO",
			"a device with serial number "+req.SerialNo+" is already registered")
	}
	device, err := rental.NewDevice(companyID, req.ItemCode, req.SerialNo)
	if err != nil {
		return nil, err
	}
	device.ModelName = req.ModelName
	device.Notes = req.Notes
	if err := s.deviceRepo.Save(ctx, device); err != nil {
		return nil, err
	}
	response := ToDeviceResponse(device)
	return &response, nil
}

// ListDevices lists the device pool with filtering and pagination
func (s *RentalService) ListDevices(ctx context.Context, companyID uuid.UUID, filter DeviceListFilter) (shared.Paginated[DeviceResponse], error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.Search = filter.Search
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}
	if filter.ItemCode != nil {
		domainFilter.Filters["item_code"] = *filter.ItemCode
	}

	page, err := s.deviceRepo.FindAll(ctx, companyID, domainFilter)
	if err != nil {
		return shared.Paginated[DeviceResponse]{}, err
	}
	items := make([]DeviceResponse, 0, len(page.Items))
	for idx := range page.Items {
		items = append(items, ToDeviceResponse(&page.Items[idx]))
	}
	return shared.NewPaginated(items, page.Total, page.Page, page.PageSize), nil
}
