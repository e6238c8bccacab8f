// Package order holds the canonical order record and the rules shared by every
// ingestion source.
package order

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Order lifecycle statuses
const (
	StatusNew          = "New"
	StatusInfoReceived = "InfoReceived"
)

// Payment modes
const (
	PaymentCOD     = "COD"
	PaymentPrepaid = "PREPAID"
)

// DefaultCurrency is applied when a source does not report one.
const DefaultCurrency = "INR"

// LineItem is one product line of an order.
type LineItem struct {
	ProductName string   `json:"productName"`
	Quantity    int      `json:"quantity"`
	Price       *float64 `json:"price,omitempty"`
	SKU         string   `json:"sku,omitempty"`
	Vendor      string   `json:"vendor,omitempty"`
}

// TrackingEvent is one entry of the return shipment history.
type TrackingEvent struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ReturnTracking describes the lifecycle of a reverse-logistics shipment.
type ReturnTracking struct {
	CurrentStatus   string          `json:"currentStatus"`
	History         []TrackingEvent `json:"history"`
	EkartTrackingID string          `json:"ekartTrackingId"`
}

// Order is the canonical, source-independent order record.
type Order struct {
	ID        uuid.UUID
	OrderID   string
	ShopifyID string
	OrderName string
	OrderDate time.Time

	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	CustomerAddress string
	BillingAddress  string
	City            string
	State           string
	Pincode         string

	Products []LineItem

	Length           *float64
	Breadth          *float64
	Height           *float64
	DeadWeight       *float64
	VolumetricWeight *float64

	Amount            float64
	Subtotal          *float64
	TotalTax          *float64
	TotalDiscounts    *float64
	ShippingCharges   *float64
	Currency          string
	PaymentMode       string
	FinancialStatus   string
	FulfillmentStatus string
	CGST              *float64
	SGST              *float64
	IGST              *float64
	HSNCode           string
	GSTINNumber       string
	Category          string
	UnitPrice         *float64
	AWB               string
	ServiceTier       string

	VendorName       string
	PickupAddress    string
	PickupCity       string
	PickupState      string
	PickupPincode    string
	ReturnLabelLine1 string
	ReturnLabelLine2 string
	InvoiceReference string

	Cancelled    bool
	CancelledAt  *time.Time
	CancelReason string
	Tags         string
	Note         string

	Status          string
	ReturnTracking  *ReturnTracking
	CarrierResponse json.RawMessage

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewFromPatch builds a fresh order from a normalized record.
func NewFromPatch(p Patch) *Order {
	o := &Order{
		ID:        uuid.New(),
		OrderDate: time.Now(),
		Currency:  DefaultCurrency,
		Status:    StatusNew,
	}
	p.Apply(o)
	o.EnsureStatus()
	return o
}

// EnsureStatus replaces an empty status with StatusNew.
func (o *Order) EnsureStatus() {
	if o.Status == "" {
		o.Status = StatusNew
	}
}

// Validate checks the identity and line item invariants.
func (o *Order) Validate() error {
	if o.OrderID == "" && o.ShopifyID == "" {
		return NewValidationError("orderId", "orderId or shopifyId is required")
	}
	for _, item := range o.Products {
		if item.Quantity < 0 {
			return NewValidationError("products", "quantity cannot be negative")
		}
	}
	return nil
}

// RecordReturnRequested moves the order into the InfoReceived state and appends
// one history entry for the carrier tracking id.
func (o *Order) RecordReturnRequested(trackingID string, response json.RawMessage, at time.Time) {
	o.Status = StatusInfoReceived
	if o.ReturnTracking == nil {
		o.ReturnTracking = &ReturnTracking{}
	}
	o.ReturnTracking.CurrentStatus = StatusInfoReceived
	o.ReturnTracking.EkartTrackingID = trackingID
	o.ReturnTracking.History = append(o.ReturnTracking.History, TrackingEvent{
		Status:    StatusInfoReceived,
		Timestamp: at,
	})
	o.CarrierResponse = response
}
