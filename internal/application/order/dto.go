package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medrent/backend/internal/domain/order"
	"github.com/medrent/backend/internal/domain/rental"
)

// CreateSalesOrderRequest is the request to create a sales order
type CreateSalesOrderRequest struct {
	CustomerID          uuid.UUID                `json:"customer_id" binding:"required"`
	CustomerName        string                   `json:"customer_name"`
	OrderType           string                   `json:"order_type" binding:"required,oneof=SALES RENTAL MAINTENANCE"`
	TransactionDate     *time.Time               `json:"transaction_date"`
	DeliveryDate        *time.Time               `json:"delivery_date"`
	RentalStart         *time.Time               `json:"rental_start_date"`
	RentalEnd           *time.Time               `json:"rental_end_date"`
	SecurityDeposit     *float64                 `json:"security_deposit"`
	PONo                string                   `json:"po_no"`
	PODate              *time.Time               `json:"po_date"`
	AllowSameCustomerPO bool                     `json:"allow_same_customer_po"`
	SkipDeliveryNote    bool                     `json:"skip_delivery_note"`
	Remarks             string                   `json:"remarks"`
	Items               []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Taxes               []TaxLineRequest         `json:"taxes" binding:"omitempty,dive"`
}

// CreateOrderItemRequest is one line of a create request
type CreateOrderItemRequest struct {
	ItemCode            string     `json:"item_code" binding:"required"`
	Qty                 float64    `json:"qty" binding:"required,gt=0"`
	Rate                float64    `json:"rate" binding:"gte=0"`
	Warehouse           string     `json:"warehouse"`
	DeliveryDate        *time.Time `json:"delivery_date"`
	Supplier            string     `json:"supplier"`
	DeliveredBySupplier bool       `json:"delivered_by_supplier"`
}

// TaxLineRequest is one tax row of a create request
type TaxLineRequest struct {
	ChargeType  string  `json:"charge_type"`
	AccountHead string  `json:"account_head" binding:"required"`
	Rate        float64 `json:"rate" binding:"gte=0"`
}

// ChangeStatusRequest commands a rental line status change
type ChangeStatusRequest struct {
	Status  string      `json:"status" binding:"required"`
	LineIDs []uuid.UUID `json:"line_ids"`
	Reason  string      `json:"reason"`
	Remark  string      `json:"remark"`
}

// AssignDeviceRequest assigns a device to an order line
type AssignDeviceRequest struct {
	LineID   uuid.UUID `json:"line_id" binding:"required"`
	DeviceID uuid.UUID `json:"device_id" binding:"required"`
}

// ReplaceDeviceRequest swaps the device on an active line
type ReplaceDeviceRequest struct {
	LineID           uuid.UUID `json:"line_id" binding:"required"`
	NewDeviceID      uuid.UUID `json:"new_device_id" binding:"required"`
	Reason           string    `json:"reason" binding:"required"`
	TechnicianName   string    `json:"technician_name"`
	TechnicianMobile string    `json:"technician_mobile"`
}

// RenewOrderRequest creates a successor rental order
type RenewOrderRequest struct {
	RentalStart time.Time `json:"rental_start_date" binding:"required"`
	RentalEnd   time.Time `json:"rental_end_date" binding:"required"`
	AutoSubmit  bool      `json:"auto_submit"`
}

// ApplyPaymentRequest books a rental payment against the order
type ApplyPaymentRequest struct {
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	ModeOfPayment string  `json:"mode_of_payment"`
	Remarks       string  `json:"remarks"`
}

// DepositRequest books or refunds a security deposit instalment
type DepositRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// CancelOrderRequest voids an order
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// UpdateFulfilmentRequest posts downstream fulfilment counters back onto
// the order lines
type UpdateFulfilmentRequest struct {
	Lines []LineProgressRequest `json:"lines" binding:"required,min=1,dive"`
}

// LineProgressRequest carries the counters for one line. Absent fields
// leave the stored counter unchanged.
type LineProgressRequest struct {
	ItemID           uuid.UUID `json:"item_id" binding:"required"`
	DeliveredQty     *float64  `json:"delivered_qty" binding:"omitempty,gte=0"`
	ReturnedQty      *float64  `json:"returned_qty" binding:"omitempty,gte=0"`
	BilledAmount     *float64  `json:"billed_amount" binding:"omitempty,gte=0"`
	OrderedQty       *float64  `json:"ordered_qty" binding:"omitempty,gte=0"`
	PickedQty        *float64  `json:"picked_qty" binding:"omitempty,gte=0"`
	ProducedQty      *float64  `json:"produced_qty" binding:"omitempty,gte=0"`
	RequestedQty     *float64  `json:"requested_qty" binding:"omitempty,gte=0"`
	ReceivedQty      *float64  `json:"received_qty" binding:"omitempty,gte=0"`
	StockReservedQty *float64  `json:"stock_reserved_qty" binding:"omitempty,gte=0"`
}

func optionalDecimal(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v)
	return &d
}

func (r LineProgressRequest) toDomain() order.LineProgress {
	return order.LineProgress{
		DeliveredQty:     optionalDecimal(r.DeliveredQty),
		ReturnedQty:      optionalDecimal(r.ReturnedQty),
		BilledAmount:     optionalDecimal(r.BilledAmount),
		OrderedQty:       optionalDecimal(r.OrderedQty),
		PickedQty:        optionalDecimal(r.PickedQty),
		ProducedQty:      optionalDecimal(r.ProducedQty),
		RequestedQty:     optionalDecimal(r.RequestedQty),
		ReceivedQty:      optionalDecimal(r.ReceivedQty),
		StockReservedQty: optionalDecimal(r.StockReservedQty),
	}
}

// DeriveRequest selects options for document derivation
type DeriveRequest struct {
	Suppliers   []string `json:"suppliers"`
	RequestType string   `json:"request_type"`
}

// SalesOrderResponse is the API representation of a sales order
type SalesOrderResponse struct {
	ID                    uuid.UUID           `json:"id"`
	OrderNumber           string              `json:"order_number"`
	OrderType             string              `json:"order_type"`
	CustomerID            uuid.UUID           `json:"customer_id"`
	CustomerName          string              `json:"customer_name"`
	TransactionDate       time.Time           `json:"transaction_date"`
	DeliveryDate          *time.Time          `json:"delivery_date,omitempty"`
	Status                string              `json:"status"`
	DeliveryStatus        string              `json:"delivery_status"`
	BillingStatus         string              `json:"billing_status"`
	PaymentStatus         string              `json:"payment_status"`
	SecurityDepositStatus string              `json:"security_deposit_status"`
	OverdueTrack          string              `json:"overdue_track"`
	PerDelivered          decimal.Decimal     `json:"per_delivered"`
	PerBilled             decimal.Decimal     `json:"per_billed"`
	PerPicked             decimal.Decimal     `json:"per_picked"`
	Currency              string              `json:"currency"`
	NetTotal              decimal.Decimal     `json:"net_total"`
	TaxTotal              decimal.Decimal     `json:"tax_total"`
	GrandTotal            decimal.Decimal     `json:"grand_total"`
	RoundedTotal          decimal.Decimal     `json:"rounded_total"`
	PaidAmount            decimal.Decimal     `json:"paid_amount"`
	SecurityDeposit       decimal.Decimal     `json:"security_deposit"`
	SecurityDepositPaid   decimal.Decimal     `json:"security_deposit_paid"`
	RentalStart           *time.Time          `json:"rental_start_date,omitempty"`
	RentalEnd             *time.Time          `json:"rental_end_date,omitempty"`
	PreviousOrderID       *uuid.UUID          `json:"previous_order_id,omitempty"`
	PONo                  string              `json:"po_no,omitempty"`
	Remarks               string              `json:"remarks,omitempty"`
	SubmittedAt           *time.Time          `json:"submitted_at,omitempty"`
	Items                 []OrderItemResponse `json:"items"`
	Version               int                 `json:"version"`
	CreatedAt             time.Time           `json:"created_at"`
	UpdatedAt             time.Time           `json:"updated_at"`
}

// OrderItemResponse is the API representation of an order line
type OrderItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	ItemCode     string          `json:"item_code"`
	ItemName     string          `json:"item_name"`
	Qty          decimal.Decimal `json:"qty"`
	Rate         decimal.Decimal `json:"rate"`
	Amount       decimal.Decimal `json:"amount"`
	Warehouse    string          `json:"warehouse,omitempty"`
	DeliveryDate *time.Time      `json:"delivery_date,omitempty"`
	Supplier     string          `json:"supplier,omitempty"`
	DeliveredQty decimal.Decimal `json:"delivered_qty"`
	BilledAmount decimal.Decimal `json:"billed_amount"`
	PickedQty    decimal.Decimal `json:"picked_qty"`
	OrderedQty   decimal.Decimal `json:"ordered_qty"`
	ProducedQty  decimal.Decimal `json:"produced_qty"`
	Status       string          `json:"status"`
	DeviceID     *uuid.UUID      `json:"device_id,omitempty"`
	PickupDate   *time.Time      `json:"pickup_date,omitempty"`
}

// RegisterDeviceRequest adds a rental asset to the pool
type RegisterDeviceRequest struct {
	ItemCode  string `json:"item_code" binding:"required"`
	SerialNo  string `json:"serial_no" binding:"required"`
	ModelName string `json:"model_name"`
	Notes     string `json:"notes"`
}

// DeviceResponse is the API representation of a rental device
type DeviceResponse struct {
	ID           uuid.UUID  `json:"id"`
	ItemCode     string     `json:"item_code"`
	SerialNo     string     `json:"serial_no"`
	ModelName    string     `json:"model_name,omitempty"`
	Status       string     `json:"status"`
	CurrentOrder *uuid.UUID `json:"current_order_id,omitempty"`
	LastIssuedAt *time.Time `json:"last_issued_at,omitempty"`
	LastReturnAt *time.Time `json:"last_return_at,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

// DeviceListFilter narrows device listings
type DeviceListFilter struct {
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
	Search   string  `form:"search"`
	Status   *string `form:"status"`
	ItemCode *string `form:"item_code"`
}

// ToDeviceResponse maps a domain device to its API representation
func ToDeviceResponse(d *rental.Device) DeviceResponse {
	return DeviceResponse{
		ID:           d.ID,
		ItemCode:     d.ItemCode,
		SerialNo:     d.SerialNo,
		ModelName:    d.ModelName,
		Status:       string(d.Status),
		CurrentOrder: d.CurrentOrder,
		LastIssuedAt: d.LastIssuedAt,
		LastReturnAt: d.LastReturnAt,
		Notes:        d.Notes,
	}
}

// SalesOrderListFilter narrows order listings
type SalesOrderListFilter struct {
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir"`
	Search     string     `form:"search"`
	CustomerID *uuid.UUID `form:"customer_id"`
	OrderType  *string    `form:"order_type"`
	Status     *string    `form:"status"`
}

// ToSalesOrderResponse maps a domain order to its API representation
func ToSalesOrderResponse(o *order.SalesOrder) SalesOrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for idx := range o.Items {
		i := &o.Items[idx]
		items = append(items, OrderItemResponse{
			ID:           i.ID,
			ItemCode:     i.ItemCode,
			ItemName:     i.ItemName,
			Qty:          i.Qty,
			Rate:         i.Rate,
			Amount:       i.Amount,
			Warehouse:    i.Warehouse,
			DeliveryDate: i.DeliveryDate,
			Supplier:     i.Supplier,
			DeliveredQty: i.DeliveredQty,
			BilledAmount: i.BilledAmount,
			PickedQty:    i.PickedQty,
			OrderedQty:   i.OrderedQty,
			ProducedQty:  i.ProducedQty,
			Status:       string(i.Status),
			DeviceID:     i.DeviceID,
			PickupDate:   i.PickupDate,
		})
	}
	return SalesOrderResponse{
		ID:                    o.ID,
		OrderNumber:           o.OrderNumber,
		OrderType:             string(o.OrderType),
		CustomerID:            o.CustomerID,
		CustomerName:          o.CustomerName,
		TransactionDate:       o.TransactionDate,
		DeliveryDate:          o.DeliveryDate,
		Status:                string(o.Status),
		DeliveryStatus:        string(o.DeliveryStatus),
		BillingStatus:         string(o.BillingStatus),
		PaymentStatus:         string(o.PaymentStatus),
		SecurityDepositStatus: string(o.SecurityDepositStatus),
		OverdueTrack:          string(o.OverdueTrack),
		PerDelivered:          o.PerDelivered,
		PerBilled:             o.PerBilled,
		PerPicked:             o.PerPicked,
		Currency:              string(o.Currency),
		NetTotal:              o.NetTotal,
		TaxTotal:              o.TaxTotal,
		GrandTotal:            o.GrandTotal,
		RoundedTotal:          o.RoundedTotal,
		PaidAmount:            o.PaidAmount,
		SecurityDeposit:       o.SecurityDeposit,
		SecurityDepositPaid:   o.SecurityDepositPaid,
		RentalStart:           o.RentalStart,
		RentalEnd:             o.RentalEnd,
		PreviousOrderID:       o.PreviousOrderID,
		PONo:                  o.PONo,
		Remarks:               o.Remarks,
		SubmittedAt:           o.SubmittedAt,
		Items:                 items,
		Version:               o.Version,
		CreatedAt:             o.CreatedAt,
		UpdatedAt:             o.UpdatedAt,
	}
}
