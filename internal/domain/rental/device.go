package rental

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medrent/backend/internal/domain/shared"
)

// DeviceStatus tracks the availability of a physical rental device
type DeviceStatus string

const (
	DeviceAvailable        DeviceStatus = "AVAILABLE"
	DeviceReserved         DeviceStatus = "RESERVED"
	DeviceRentedOut        DeviceStatus = "RENTED_OUT"
	DeviceUnderMaintenance DeviceStatus = "UNDER_MAINTENANCE"
	DeviceRetired          DeviceStatus = "RETIRED"
)

// IsValid checks if the status is a known DeviceStatus
func (s DeviceStatus) IsValid() bool {
	switch s {
	case DeviceAvailable, DeviceReserved, DeviceRentedOut, DeviceUnderMaintenance, DeviceRetired:
		return true
	}
	return false
}

// Device is an individually tracked rental asset. At most one order line
// holds a device at a time; the status moves Available -> Reserved ->
// RentedOut -> Available around each rental cycle.
type Device struct {
	shared.CompanyAggregateRoot
	ItemCode     string       `gorm:"not null;size:140;index" json:"item_code"`
	SerialNo     string       `gorm:"uniqueIndex;not null;size:140" json:"serial_no"`
	ModelName    string       `gorm:"size:200" json:"model_name"`
	Status       DeviceStatus `gorm:"size:30;not null;default:'AVAILABLE'" json:"status"`
	CurrentOrder *uuid.UUID   `gorm:"type:uuid;index" json:"current_order_id"`
	LastIssuedAt *time.Time   `json:"last_issued_at"`
	LastReturnAt *time.Time   `json:"last_return_at"`
	Notes        string       `gorm:"size:500" json:"notes"`
}

// TableName specifies the table name for Device
func (Device) TableName() string {
	return "rental_devices"
}

// NewDevice registers a rental asset
func NewDevice(companyID uuid.UUID, itemCode, serialNo string) (*Device, error) {
	if itemCode == "" || serialNo == "" {
		return nil, shared.NewDomainError("INVALID_DEVICE", "item code and serial number are required")
	}
	return &Device{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		ItemCode:             itemCode,
		SerialNo:             serialNo,
		Status:               DeviceAvailable,
	}, nil
}

// Reserve holds the device against an order before dispatch
func (d *Device) Reserve(orderID uuid.UUID) error {
	if d.Status != DeviceAvailable {
		return shared.NewDomainError("DEVICE_NOT_AVAILABLE",
			fmt.Sprintf("device %s is %s and cannot be reserved", d.SerialNo, d.Status))
	}
	d.Status = DeviceReserved
	d.CurrentOrder = &orderID
	return nil
}

// Issue marks a reserved device as out in the field
func (d *Device) Issue() error {
	if d.Status != DeviceReserved {
		return shared.NewDomainError("DEVICE_NOT_RESERVED",
			fmt.Sprintf("device %s is %s and cannot be issued", d.SerialNo, d.Status))
	}
	now := time.Now()
	d.Status = DeviceRentedOut
	d.LastIssuedAt = &now
	return nil
}

// Return brings the device back into stock after pickup
func (d *Device) Return() error {
	if d.Status != DeviceRentedOut && d.Status != DeviceReserved {
		return shared.NewDomainError("DEVICE_NOT_OUT",
			fmt.Sprintf("device %s is %s and has nothing to return", d.SerialNo, d.Status))
	}
	now := time.Now()
	d.Status = DeviceAvailable
	d.CurrentOrder = nil
	d.LastReturnAt = &now
	return nil
}

// SendToMaintenance pulls the device out of the rentable pool
func (d *Device) SendToMaintenance(reason string) error {
	if d.Status == DeviceRentedOut {
		return shared.NewDomainError("DEVICE_IN_FIELD",
			fmt.Sprintf("device %s is with a customer and must be returned first", d.SerialNo))
	}
	if d.Status == DeviceRetired {
		return shared.NewDomainError("DEVICE_RETIRED", "retired devices cannot enter maintenance")
	}
	d.Status = DeviceUnderMaintenance
	d.CurrentOrder = nil
	d.Notes = reason
	return nil
}

// RestoreFromMaintenance returns a serviced device to the pool
func (d *Device) RestoreFromMaintenance() error {
	if d.Status != DeviceUnderMaintenance {
		return shared.NewDomainError("DEVICE_NOT_IN_MAINTENANCE",
			fmt.Sprintf("device %s is %s", d.SerialNo, d.Status))
	}
	d.Status = DeviceAvailable
	return nil
}

// Retire permanently removes the device from service
func (d *Device) Retire(reason string) error {
	if d.Status == DeviceRentedOut || d.Status == DeviceReserved {
		return shared.NewDomainError("DEVICE_IN_USE",
			fmt.Sprintf("device %s is allocated and cannot be retired", d.SerialNo))
	}
	d.Status = DeviceRetired
	d.Notes = reason
	return nil
}
