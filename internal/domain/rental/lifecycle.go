package rental

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medrent/backend/internal/domain/order"
	"github.com/medrent/backend/internal/domain/shared"
)

// Line transitions run validate-first: every selected line is checked
// before any line is mutated, so a rejected request leaves the order
// exactly as it was.

// DeviceAction is the side effect a line transition demands of the
// device assigned to that line
type DeviceAction string

const (
	DeviceActionNone    DeviceAction = ""
	DeviceActionIssue   DeviceAction = "ISSUE"
	DeviceActionReturn  DeviceAction = "RETURN"
	DeviceActionReserve DeviceAction = "RESERVE"
)

// DeviceEffect pairs a device with the action a transition requires
type DeviceEffect struct {
	DeviceID uuid.UUID
	Action   DeviceAction
}

// lineCanMove is the per-line transition table of the rental flow
func lineCanMove(from, to order.LineStatus) bool {
	switch from {
	case order.LineStatusPending:
		return to == order.LineStatusApproved
	case order.LineStatusApproved:
		return to == order.LineStatusReadyForDelivery
	case order.LineStatusReadyForDelivery:
		return to == order.LineStatusDispatched
	case order.LineStatusDispatched:
		return to == order.LineStatusActive
	case order.LineStatusActive:
		return to == order.LineStatusReadyForPickup
	case order.LineStatusReadyForPickup:
		return to == order.LineStatusPickedUp || to == order.LineStatusActive
	case order.LineStatusPickedUp:
		return to == order.LineStatusSubmittedToOffice || to == order.LineStatusReadyForPickup
	case order.LineStatusSubmittedToOffice:
		return to == order.LineStatusPickedUp
	}
	return false
}

// deviceActionFor maps a line transition to its device side effect
func deviceActionFor(to order.LineStatus) DeviceAction {
	switch to {
	case order.LineStatusDispatched:
		return DeviceActionIssue
	case order.LineStatusSubmittedToOffice:
		return DeviceActionReturn
	}
	return DeviceActionNone
}

// ChangeLineStatus moves the selected lines (all lines when lineIDs is
// empty) to the target sub-status, stamps the transition date, re-derives
// the header status from the line vote, and reports the device effects
// the caller must apply.
func ChangeLineStatus(o *order.SalesOrder, target order.LineStatus, lineIDs []uuid.UUID, reason, remark string) ([]DeviceEffect, error) {
	if o.OrderType != order.OrderTypeRental {
		return nil, shared.NewDomainError("NOT_RENTAL", "line status changes apply to rental orders only")
	}
	if !o.IsSubmitted() {
		return nil, shared.NewDomainError("ORDER_NOT_SUBMITTED", "order must be submitted before its lines can move")
	}
	if o.Status == order.StatusOnHold {
		return nil, shared.NewDomainError("ORDER_ON_HOLD", "release the hold before changing line status")
	}

	selected := make(map[uuid.UUID]bool, len(lineIDs))
	for _, id := range lineIDs {
		selected[id] = true
	}

	var targets []*order.SalesOrderItem
	for idx := range o.Items {
		item := &o.Items[idx]
		if len(selected) > 0 && !selected[item.ID] {
			continue
		}
		targets = append(targets, item)
	}
	if len(targets) == 0 {
		return nil, shared.ErrNotFound
	}

	// validate everything before touching anything
	for _, item := range targets {
		if !lineCanMove(item.Status, target) {
			return nil, shared.NewDomainError("INVALID_LINE_TRANSITION",
				fmt.Sprintf("item %s cannot move from %s to %s", item.ItemCode, item.Status, target))
		}
		if target == order.LineStatusDispatched && item.DeviceID == nil {
			return nil, shared.NewDomainError("NO_DEVICE_ASSIGNED",
				fmt.Sprintf("item %s has no device assigned and cannot be dispatched", item.ItemCode))
		}
	}

	now := time.Now()
	var effects []DeviceEffect
	for _, item := range targets {
		item.Status = target
		switch target {
		case order.LineStatusDispatched:
			item.DispatchDate = &now
		case order.LineStatusActive:
			item.RentalDelivery = &now
		case order.LineStatusReadyForPickup:
			item.PickupReason = reason
			item.PickupRemark = remark
		case order.LineStatusPickedUp:
			item.PickupDate = &now
		case order.LineStatusSubmittedToOffice:
			item.SubmittedDate = &now
		}
		if item.DeviceID != nil {
			if action := deviceActionFor(target); action != DeviceActionNone {
				effects = append(effects, DeviceEffect{DeviceID: *item.DeviceID, Action: action})
			}
		}
	}

	applyHeaderVote(o)
	return effects, nil
}

// applyHeaderVote re-derives the header status from the line sub-statuses
// and records the change when it moved
func applyHeaderVote(o *order.SalesOrder) {
	statuses := make([]order.LineStatus, 0, len(o.Items))
	for idx := range o.Items {
		statuses = append(statuses, o.Items[idx].Status)
	}
	derived := order.DeriveHeaderStatus(statuses)
	if derived != o.Status {
		from := o.Status
		o.PreviousStatus = from
		o.Status = derived
		o.AddDomainEvent(order.NewSalesOrderStatusChangedEvent(o, from, derived))
	}
}

// AssignDevice reserves a device against an approved order line. Once
// every line holds a device the header advances to device-assigned.
func AssignDevice(o *order.SalesOrder, lineID uuid.UUID, device *Device) error {
	if o.OrderType != order.OrderTypeRental {
		return shared.NewDomainError("NOT_RENTAL", "devices are assigned on rental orders only")
	}
	item, err := o.ItemByID(lineID)
	if err != nil {
		return err
	}
	if item.Status != order.LineStatusApproved {
		return shared.NewDomainError("LINE_NOT_APPROVED",
			fmt.Sprintf("item %s must be approved before a device is assigned", item.ItemCode))
	}
	if item.DeviceID != nil {
		return shared.NewDomainError("DEVICE_ALREADY_ASSIGNED",
			fmt.Sprintf("item %s already holds a device", item.ItemCode))
	}
	if device.ItemCode != item.ItemCode {
		return shared.NewDomainError("DEVICE_ITEM_MISMATCH",
			fmt.Sprintf("device %s is a %s, not a %s", device.SerialNo, device.ItemCode, item.ItemCode))
	}
	if err := device.Reserve(o.ID); err != nil {
		return err
	}
	item.DeviceID = &device.ID
	o.AddDomainEvent(order.NewSalesOrderDeviceAssignedEvent(o, item.ItemCode, device.ID))

	if o.Status == order.StatusApproved && allDevicesAssigned(o) {
		return o.TransitionTo(order.StatusRentalDeviceAssigned)
	}
	return nil
}

func allDevicesAssigned(o *order.SalesOrder) bool {
	for idx := range o.Items {
		if o.Items[idx].Status == order.LineStatusCancelled {
			continue
		}
		if o.Items[idx].DeviceID == nil {
			return false
		}
	}
	return true
}
