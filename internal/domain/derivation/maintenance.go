package derivation

import (
	"context"
	"fmt"
	"time"

	"github.com/medrent/backend/internal/domain/order"
	"github.com/medrent/backend/internal/domain/shared"
)

// defaultPeriodicity is the servicing cadence a schedule starts with;
// the maintenance team adjusts it on the saved document.
const defaultPeriodicity = "MONTHLY"

// MaintenanceSchedule derives a periodic maintenance plan with one row
// per serviceable line. An order gets at most one schedule: deriving a
// second is rejected while the first exists.
func (e *Engine) MaintenanceSchedule(ctx context.Context, o *order.SalesOrder) (*MaintenanceScheduleDraft, error) {
	if err := validateSource(o); err != nil {
		return nil, err
	}
	if e.maintenance != nil {
		exists, err := e.maintenance.HasSchedule(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("MAINTENANCE_SCHEDULE_EXISTS",
				fmt.Sprintf("order %s already has a maintenance schedule", o.OrderNumber))
		}
	}

	start, end := schedulePeriod(o)
	var items []MaintenanceScheduleItem
	for idx := range o.Items {
		item := &o.Items[idx]
		switch item.Status {
		case order.LineStatusCancelled, order.LineStatusRenewed:
			continue
		}
		items = append(items, MaintenanceScheduleItem{
			SourceLineID: item.ID,
			ItemCode:     item.ItemCode,
			ItemName:     item.ItemName,
			Periodicity:  defaultPeriodicity,
			StartDate:    start,
			EndDate:      end,
		})
	}
	if len(items) == 0 {
		return nil, ErrNothingToDerive
	}

	return &MaintenanceScheduleDraft{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		CompanyID:   o.CompanyID,
		CustomerID:  o.CustomerID,
		StartDate:   start,
		EndDate:     end,
		Items:       items,
	}, nil
}

// schedulePeriod covers the rental window when the order has one, and a
// year from the transaction date otherwise
func schedulePeriod(o *order.SalesOrder) (time.Time, time.Time) {
	if o.RentalStart != nil && o.RentalEnd != nil {
		return *o.RentalStart, *o.RentalEnd
	}
	return o.TransactionDate, o.TransactionDate.AddDate(1, 0, 0)
}

// MaintenanceVisit derives a visit draft with one purpose row per line
// still in the field. Lines already returned to the office need no visit,
// and an order gets at most one open visit.
func (e *Engine) MaintenanceVisit(ctx context.Context, o *order.SalesOrder) (*MaintenanceVisitDraft, error) {
	if err := validateSource(o); err != nil {
		return nil, err
	}
	if e.maintenance != nil {
		exists, err := e.maintenance.HasVisit(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("MAINTENANCE_VISIT_EXISTS",
				fmt.Sprintf("order %s already has a maintenance visit", o.OrderNumber))
		}
	}

	var purposes []MaintenancePurpose
	for idx := range o.Items {
		item := &o.Items[idx]
		switch item.Status {
		case order.LineStatusSubmittedToOffice, order.LineStatusCancelled, order.LineStatusRenewed:
			continue
		}
		purposes = append(purposes, MaintenancePurpose{
			SourceLineID: item.ID,
			ItemCode:     item.ItemCode,
			ItemName:     item.ItemName,
			Description:  fmt.Sprintf("Scheduled maintenance for %s against %s", item.ItemCode, o.OrderNumber),
		})
	}
	if len(purposes) == 0 {
		return nil, ErrNothingToDerive
	}

	return &MaintenanceVisitDraft{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		CompanyID:   o.CompanyID,
		CustomerID:  o.CustomerID,
		Purposes:    purposes,
	}, nil
}
