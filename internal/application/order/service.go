package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medrent/backend/internal/domain/order"
	"github.com/medrent/backend/internal/domain/rental"
	"github.com/medrent/backend/internal/domain/shared"
)

// SalesOrderService handles sales order business operations
type SalesOrderService struct {
	orderRepo      order.Repository
	catalog        order.ItemCatalog
	creditChecker  order.CreditChecker
	deviceRepo     rental.DeviceRepository
	eventPublisher shared.EventPublisher
}

// NewSalesOrderService creates a new SalesOrderService
func NewSalesOrderService(orderRepo order.Repository, catalog order.ItemCatalog, creditChecker order.CreditChecker, deviceRepo rental.DeviceRepository) *SalesOrderService {
	return &SalesOrderService{
		orderRepo:     orderRepo,
		catalog:       catalog,
		creditChecker: creditChecker,
		deviceRepo:    deviceRepo,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *SalesOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *SalesOrderService) publishEvents(ctx context.Context, o *order.SalesOrder) {
	if s.eventPublisher == nil {
		return
	}
	if events := o.GetDomainEvents(); len(events) > 0 {
		// event delivery is best-effort; the save already happened
		_ = s.eventPublisher.Publish(ctx, events...)
		o.ClearDomainEvents()
	}
}

// Create creates a new draft sales order
func (s *SalesOrderService) Create(ctx context.Context, companyID uuid.UUID, req CreateSalesOrderRequest) (*SalesOrderResponse, error) {
	orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx, companyID)
	if err != nil {
		return nil, err
	}

	txDate := time.Now()
	if req.TransactionDate != nil {
		txDate = *req.TransactionDate
	}
	o, err := order.NewSalesOrder(companyID, req.CustomerID, orderNumber, order.OrderType(req.OrderType), txDate)
	if err != nil {
		return nil, err
	}
	o.CustomerName = req.CustomerName
	o.DeliveryDate = req.DeliveryDate
	o.PONo = req.PONo
	o.PODate = req.PODate
	o.AllowSameCustomerPO = req.AllowSameCustomerPO
	o.SkipDeliveryNote = req.SkipDeliveryNote
	o.Remarks = req.Remarks
	if req.SecurityDeposit != nil {
		o.SecurityDeposit = decimal.NewFromFloat(*req.SecurityDeposit)
	}
	if req.RentalStart != nil && req.RentalEnd != nil {
		if err := o.SetRentalPeriod(*req.RentalStart, *req.RentalEnd); err != nil {
			return nil, err
		}
	}

	for _, line := range req.Items {
		item, err := s.buildItem(ctx, line)
		if err != nil {
			return nil, err
		}
		if err := o.AddItem(*item); err != nil {
			return nil, err
		}
	}
	for _, tax := range req.Taxes {
		chargeType := tax.ChargeType
		if chargeType == "" {
			chargeType = "On Net Total"
		}
		o.Taxes = append(o.Taxes, order.TaxLine{
			ChargeType:  chargeType,
			AccountHead: tax.AccountHead,
			Rate:        decimal.NewFromFloat(tax.Rate),
		})
	}
	o.RecalculateTotals()

	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, o)

	response := ToSalesOrderResponse(o)
	return &response, nil
}

// buildItem resolves catalog attributes for one requested line
func (s *SalesOrderService) buildItem(ctx context.Context, req CreateOrderItemRequest) (*order.SalesOrderItem, error) {
	item := order.SalesOrderItem{
		ItemCode:            req.ItemCode,
		Qty:                 decimal.NewFromFloat(req.Qty),
		Rate:                decimal.NewFromFloat(req.Rate),
		ConversionFactor:    decimal.NewFromInt(1),
		Warehouse:           req.Warehouse,
		DeliveryDate:        req.DeliveryDate,
		Supplier:            req.Supplier,
		DeliveredBySupplier: req.DeliveredBySupplier,
		IsStockItem:         true,
	}
	if s.catalog == nil {
		return &item, nil
	}
	cat, err := s.catalog.Lookup(ctx, req.ItemCode)
	if err != nil {
		return nil, err
	}
	item.ItemName = cat.ItemName
	item.ItemGroup = cat.ItemGroup
	item.UOM = cat.UOM
	item.IsStockItem = cat.IsStockItem
	item.IsBundle = cat.IsBundle
	item.EnsureSerialDelivery = cat.EnsureSerialDelivery
	if item.Warehouse == "" {
		item.Warehouse = cat.DefaultWarehouse
	}
	if item.Supplier == "" {
		item.Supplier = cat.DefaultSupplier
	}
	return &item, nil
}

// explodeBundles builds packed item rows for every bundle line
func (s *SalesOrderService) explodeBundles(ctx context.Context, o *order.SalesOrder) error {
	if s.catalog == nil {
		return nil
	}
	o.PackedItems = o.PackedItems[:0]
	for idx := range o.Items {
		item := &o.Items[idx]
		if !item.IsBundle {
			continue
		}
		components, err := s.catalog.ExplodeBundle(ctx, item.ItemCode)
		if err != nil {
			return err
		}
		for _, c := range components {
			warehouse := c.Warehouse
			if warehouse == "" {
				warehouse = item.Warehouse
			}
			packed := order.PackedItem{
				OrderID:        o.ID,
				ParentItemID:   item.ID,
				ParentItemCode: item.ItemCode,
				ItemCode:       c.ItemCode,
				ItemName:       c.ItemName,
				Warehouse:      warehouse,
				Qty:            c.Qty.Mul(item.Qty),
				UOM:            c.UOM,
				IsStockItem:    c.IsStockItem,
			}
			o.PackedItems = append(o.PackedItems, packed)
		}
	}
	return nil
}

// GetByID retrieves a sales order by ID
func (s *SalesOrderService) GetByID(ctx context.Context, companyID, orderID uuid.UUID) (*SalesOrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}
	response := ToSalesOrderResponse(o)
	return &response, nil
}

// GetByOrderNumber retrieves a sales order by its number
func (s *SalesOrderService) GetByOrderNumber(ctx context.Context, companyID uuid.UUID, orderNumber string) (*SalesOrderResponse, error) {
	o, err := s.orderRepo.FindByOrderNumber(ctx, companyID, orderNumber)
	if err != nil {
		return nil, err
	}
	response := ToSalesOrderResponse(o)
	return &response, nil
}

// List retrieves sales orders with filtering and pagination
func (s *SalesOrderService) List(ctx context.Context, companyID uuid.UUID, filter SalesOrderListFilter) (shared.Paginated[SalesOrderResponse], error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}
	if filter.OrderType != nil {
		domainFilter.Filters["order_type"] = *filter.OrderType
	}

	var (
		page shared.Paginated[order.SalesOrder]
		err  error
	)
	if filter.CustomerID != nil {
		page, err = s.orderRepo.FindByCustomer(ctx, companyID, *filter.CustomerID, domainFilter)
	} else {
		page, err = s.orderRepo.FindAll(ctx, companyID, domainFilter)
	}
	if err != nil {
		return shared.Paginated[SalesOrderResponse]{}, err
	}

	items := make([]SalesOrderResponse, 0, len(page.Items))
	for idx := range page.Items {
		items = append(items, ToSalesOrderResponse(&page.Items[idx]))
	}
	return shared.NewPaginated(items, page.Total, page.Page, page.PageSize), nil
}

// Submit validates and submits a draft order. Rental orders are checked
// for period collisions, the customer's credit is verified, and bundles
// are exploded into packed items before the order leaves draft.
func (s *SalesOrderService) Submit(ctx context.Context, companyID, orderID uuid.UUID) (*SalesOrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}

	if o.PONo != "" && !o.AllowSameCustomerPO {
		exists, err := s.orderRepo.ExistsPONoForCustomer(ctx, companyID, o.CustomerID, o.PONo, o.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("DUPLICATE_PO_NO",
				"another order of this customer already references purchase order "+o.PONo)
		}
	}

	if s.creditChecker != nil {
		if err := s.creditChecker.CheckCredit(ctx, companyID, o.CustomerID, o.GrandTotal); err != nil {
			return nil, err
		}
	}

	if o.OrderType == order.OrderTypeRental {
		open, err := s.orderRepo.FindOpenRentalsByCustomer(ctx, companyID, o.CustomerID)
		if err != nil {
			return nil, err
		}
		if err := rental.CheckOverlap(o, open); err != nil {
			return nil, err
		}
	}

	if err := s.explodeBundles(ctx, o); err != nil {
		return nil, err
	}
	if err := o.Submit(); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, o)

	response := ToSalesOrderResponse(o)
	return &response, nil
}

// Cancel voids an order and releases every device still held against it.
// Devices out in the field block the cancel inside the aggregate, so the
// survivors here are reserved ones that were never dispatched.
func (s *SalesOrderService) Cancel(ctx context.Context, companyID, orderID uuid.UUID, reason string) (*SalesOrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.Cancel(reason); err != nil {
		return nil, err
	}
	if err := s.releaseHeldDevices(ctx, companyID, o); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, o)

	response := ToSalesOrderResponse(o)
	return &response, nil
}

// releaseHeldDevices returns every device the order's lines still hold
// back to the available pool
func (s *SalesOrderService) releaseHeldDevices(ctx context.Context, companyID uuid.UUID, o *order.SalesOrder) error {
	if s.deviceRepo == nil {
		return nil
	}
	for idx := range o.Items {
		item := &o.Items[idx]
		if item.DeviceID == nil {
			continue
		}
		device, err := s.deviceRepo.FindByID(ctx, companyID, *item.DeviceID)
		if err != nil {
			return err
		}
		if device.CurrentOrder == nil || *device.CurrentOrder != o.ID {
			continue
		}
		if err := device.Return(); err != nil {
			return err
		}
		if err := s.deviceRepo.Save(ctx, device); err != nil {
			return err
		}
	}
	return nil
}

// Close stops further fulfilment against the order
func (s *SalesOrderService) Close(ctx context.Context, companyID, orderID uuid.UUID) (*SalesOrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.Close(); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, o)

	response := ToSalesOrderResponse(o)
	return &response, nil
}

// Reopen reverts a closed order to its derived status
func (s *SalesOrderService) Reopen(ctx context.Context, companyID, orderID uuid.UUID) (*SalesOrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.Reopen(); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, o)

	response := ToSalesOrderResponse(o)
	return &response, nil
}

// UpdateFulfilment posts fulfilment counters reported by downstream
// documents (delivery notes, invoices, pick lists, work orders) back onto
// the order lines and re-derives the header status
func (s *SalesOrderService) UpdateFulfilment(ctx context.Context, companyID, orderID uuid.UUID, req UpdateFulfilmentRequest) (*SalesOrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}
	for _, line := range req.Lines {
		if err := o.ApplyLineProgress(line.ItemID, line.toDomain()); err != nil {
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

// SweepOverdue flags every active rental whose coverage lapsed before
// the cutoff. Returns the number of orders flagged.
func (s *SalesOrderService) SweepOverdue(ctx context.Context, asOf time.Time) (int, error) {
	lapsed, err := s.orderRepo.FindActiveRentalsEndingBefore(ctx, asOf)
	if err != nil {
		return 0, err
	}
	flagged := 0
	for idx := range lapsed {
		o := &lapsed[idx]
		if !o.MarkOverdue(asOf) {
			continue
		}
		if err := s.orderRepo.Save(ctx, o); err != nil {
			return flagged, err
		}
		s.publishEvents(ctx, o)
		flagged++
	}
	return flagged, nil
}
