package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medrent/backend/internal/domain/finance"
	"github.com/medrent/backend/internal/domain/order"
	"github.com/medrent/backend/internal/domain/shared"
)

// PaymentService books rental payments and security deposit movements.
//
// Each booking validates the amount against the order's outstanding
// balance first, then creates and submits the finance voucher, and only
// after the voucher is durable saves the order's payment tracking. A
// rejected amount leaves no voucher behind; a voucher failure leaves the
// order untouched.
type PaymentService struct {
	orderRepo      order.Repository
	journalRepo    finance.JournalEntryRepository
	paymentRepo    finance.PaymentEntryRepository
	numbers        VoucherNumberProvider
	eventPublisher shared.EventPublisher
}

// VoucherNumberProvider issues sequential voucher numbers per company
type VoucherNumberProvider interface {
	NextJournalNumber(ctx context.Context, companyID uuid.UUID) (string, error)
	NextPaymentNumber(ctx context.Context, companyID uuid.UUID) (string, error)
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(orderRepo order.Repository, journalRepo finance.JournalEntryRepository, paymentRepo finance.PaymentEntryRepository, numbers VoucherNumberProvider) *PaymentService {
	return &PaymentService{
		orderRepo:   orderRepo,
		journalRepo: journalRepo,
		paymentRepo: paymentRepo,
		numbers:     numbers,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *PaymentService) publishEvents(ctx context.Context, o *order.SalesOrder) {
	if s.eventPublisher == nil {
		return
	}
	if events := o.GetDomainEvents(); len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
		o.ClearDomainEvents()
	}
}

// ApplyPayment books a rental payment: a payment entry allocated to the
// order posts first, then the order's paid amount and payment status move.
func (s *PaymentService) ApplyPayment(ctx context.Context, companyID, orderID uuid.UUID, req ApplyPaymentRequest) (*SalesOrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsSubmitted() {
		return nil, shared.NewDomainError("ORDER_NOT_SUBMITTED", "payments apply to submitted orders only")
	}

	amount := decimal.NewFromFloat(req.Amount)
	outstanding := o.GrandTotal.Sub(o.PaidAmount)
	if amount.GreaterThan(outstanding) {
		return nil, shared.NewDomainError("OVERPAYMENT", "payment exceeds the outstanding balance")
	}

	number, err := s.numbers.NextPaymentNumber(ctx, companyID)
	if err != nil {
		return nil, err
	}
	entry, err := finance.NewPaymentEntry(companyID, o.CustomerID, number, finance.PaymentReceive, amount)
	if err != nil {
		return nil, err
	}
	if req.ModeOfPayment != "" {
		entry.ModeOfPayment = req.ModeOfPayment
	}
	entry.Remarks = req.Remarks
	if err := entry.AllocateTo("Sales Order", o.ID, o.GrandTotal, outstanding, amount); err != nil {
		return nil, err
	}
	if err := entry.Submit(); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Save(ctx, entry); err != nil {
		return nil, err
	}

	if err := o.RecordPayment(amount); err != nil {
		return nil, err
	}
	o.AddDomainEvent(order.NewSalesOrderPaymentReceivedEvent(o, amount, false, o.PaymentStatus))
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, o)

	response := ToSalesOrderResponse(o)
	return &response, nil
}

// CollectDeposit books a security deposit instalment through a journal
// entry, then moves the order's deposit tracking. Deposits received
// before the order is submitted book as booking advances.
func (s *PaymentService) CollectDeposit(ctx context.Context, companyID, orderID uuid.UUID, req DepositRequest) (*SalesOrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}

	// validate and move the in-memory tracking first; the order row is
	// only saved once the journal entry is durable
	amount := decimal.NewFromFloat(req.Amount)
	if err := o.RecordDeposit(amount); err != nil {
		return nil, err
	}

	number, err := s.numbers.NextJournalNumber(ctx, companyID)
	if err != nil {
		return nil, err
	}
	advance := !o.IsSubmitted()
	entry, err := finance.BuildDepositReceipt(companyID, number, o.ID, o.CustomerID, amount, advance)
	if err != nil {
		return nil, err
	}
	if err := entry.Submit(); err != nil {
		return nil, err
	}
	if err := s.journalRepo.Save(ctx, entry); err != nil {
		return nil, err
	}

	o.AddDomainEvent(order.NewSalesOrderPaymentReceivedEvent(o, amount, true, o.SecurityDepositStatus))
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, o)

	response := ToSalesOrderResponse(o)
	return &response, nil
}

// RefundDeposit returns deposit money to the customer once the devices
// are back. Orders with devices still in the field keep their deposit.
func (s *PaymentService) RefundDeposit(ctx context.Context, companyID, orderID uuid.UUID, req DepositRequest) (*SalesOrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}
	for idx := range o.Items {
		switch o.Items[idx].Status {
		case order.LineStatusDispatched, order.LineStatusActive, order.LineStatusReadyForPickup, order.LineStatusPickedUp:
			return nil, shared.NewDomainError("DEVICE_IN_FIELD",
				"deposit is held until every device is back at the office")
		}
	}

	// validate the refund against the deposit held before any voucher
	// exists; the reversing entry posts next, the order row last
	amount := decimal.NewFromFloat(req.Amount)
	if err := o.ReleaseDeposit(amount); err != nil {
		return nil, err
	}

	number, err := s.numbers.NextJournalNumber(ctx, companyID)
	if err != nil {
		return nil, err
	}
	entry, err := finance.BuildDepositRefund(companyID, number, o.ID, o.CustomerID, amount)
	if err != nil {
		return nil, err
	}
	if err := entry.Submit(); err != nil {
		return nil, err
	}
	if err := s.journalRepo.Save(ctx, entry); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, o)

	response := ToSalesOrderResponse(o)
	return &response, nil
}

// ListVouchers returns the finance trail booked against an order
func (s *PaymentService) ListVouchers(ctx context.Context, companyID, orderID uuid.UUID) ([]finance.JournalEntry, []finance.PaymentEntry, error) {
	journals, err := s.journalRepo.FindByOrder(ctx, companyID, orderID)
	if err != nil {
		return nil, nil, err
	}
	payments, err := s.paymentRepo.FindByReference(ctx, companyID, "Sales Order", orderID)
	if err != nil {
		return nil, nil, err
	}
	return journals, payments, nil
}
