package rental

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medrent/backend/internal/domain/order"
	"github.com/medrent/backend/internal/domain/shared"
)

// Replacement records a device swap performed in the field, keeping the
// order line alive while the physical asset changes underneath it.
type Replacement struct {
	shared.CompanyAggregateRoot
	OrderID          uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	OrderLineID      uuid.UUID `gorm:"type:uuid;not null;index" json:"order_line_id"`
	OldDeviceID      uuid.UUID `gorm:"type:uuid;not null" json:"old_device_id"`
	NewDeviceID      uuid.UUID `gorm:"type:uuid;not null" json:"new_device_id"`
	OldItemCode      string    `gorm:"size:140" json:"old_item_code"`
	NewItemCode      string    `gorm:"size:140" json:"new_item_code"`
	Reason           string    `gorm:"size:500" json:"reason"`
	ReplacedAt       time.Time `gorm:"not null" json:"replaced_at"`
	TechnicianName   string    `gorm:"size:200" json:"technician_name"`
	TechnicianMobile string    `gorm:"size:30" json:"technician_mobile"`
}

// TableName specifies the table name for Replacement
func (Replacement) TableName() string {
	return "rental_replacements"
}

// ReplaceDevice swaps the device on an active line for a fresh one. The
// old device comes back for maintenance, the new one goes straight out,
// and the line keeps its status and billing untouched.
func ReplaceDevice(o *order.SalesOrder, lineID uuid.UUID, oldDevice, newDevice *Device, reason, technicianName, technicianMobile string) (*Replacement, error) {
	if o.OrderType != order.OrderTypeRental {
		return nil, shared.NewDomainError("NOT_RENTAL", "device replacement applies to rental orders only")
	}
	item, err := o.ItemByID(lineID)
	if err != nil {
		return nil, err
	}
	if item.Status != order.LineStatusActive {
		return nil, shared.NewDomainError("LINE_NOT_ACTIVE",
			fmt.Sprintf("item %s is %s; only devices on active lines can be replaced", item.ItemCode, item.Status))
	}
	if item.DeviceID == nil || *item.DeviceID != oldDevice.ID {
		return nil, shared.NewDomainError("DEVICE_MISMATCH",
			fmt.Sprintf("device %s is not the one assigned to item %s", oldDevice.SerialNo, item.ItemCode))
	}
	if newDevice.ItemCode != item.ItemCode {
		return nil, shared.NewDomainError("DEVICE_ITEM_MISMATCH",
			fmt.Sprintf("replacement device %s is a %s, not a %s", newDevice.SerialNo, newDevice.ItemCode, item.ItemCode))
	}

	// the new device must be issuable before the old one is released
	if err := newDevice.Reserve(o.ID); err != nil {
		return nil, err
	}
	if err := newDevice.Issue(); err != nil {
		return nil, err
	}
	if err := oldDevice.Return(); err != nil {
		return nil, err
	}
	if err := oldDevice.SendToMaintenance(fmt.Sprintf("returned from field: %s", reason)); err != nil {
		return nil, err
	}

	now := time.Now()
	item.ReplacedItemCode = oldDevice.ItemCode
	item.ReplacedAt = &now
	item.ReplacementReason = reason
	item.DeviceID = &newDevice.ID

	o.AddDomainEvent(order.NewSalesOrderItemReplacedEvent(o, oldDevice.SerialNo, newDevice.SerialNo, reason))

	return &Replacement{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(o.CompanyID),
		OrderID:              o.ID,
		OrderLineID:          item.ID,
		OldDeviceID:          oldDevice.ID,
		NewDeviceID:          newDevice.ID,
		OldItemCode:          oldDevice.ItemCode,
		NewItemCode:          newDevice.ItemCode,
		Reason:               reason,
		ReplacedAt:           now,
		TechnicianName:       technicianName,
		TechnicianMobile:     technicianMobile,
	}, nil
}
