package order

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/ikkasa/orderhub/internal/domain/order"
	csvimport "github.com/ikkasa/orderhub/internal/infrastructure/import"
)

// OrderResponse is the API view of an order
type OrderResponse struct {
	ID        uuid.UUID `json:"id"`
	OrderID   string    `json:"orderId,omitempty"`
	ShopifyID string    `json:"shopifyId,omitempty"`
	OrderName string    `json:"orderName,omitempty"`
	OrderDate time.Time `json:"orderDate"`

	CustomerName    string `json:"customerName"`
	CustomerPhone   string `json:"customerPhone"`
	CustomerEmail   string `json:"customerEmail"`
	CustomerAddress string `json:"customerAddress"`
	BillingAddress  string `json:"billingAddress,omitempty"`
	City            string `json:"city"`
	State           string `json:"state"`
	Pincode         string `json:"pincode"`

	Products []order.LineItem `json:"products"`

	Length           *float64 `json:"length,omitempty"`
	Breadth          *float64 `json:"breadth,omitempty"`
	Height           *float64 `json:"height,omitempty"`
	DeadWeight       *float64 `json:"deadWeight,omitempty"`
	VolumetricWeight *float64 `json:"volumetricWeight,omitempty"`

	Amount            float64  `json:"amount"`
	Subtotal          *float64 `json:"subtotal,omitempty"`
	TotalTax          *float64 `json:"totalTax,omitempty"`
	TotalDiscounts    *float64 `json:"totalDiscounts,omitempty"`
	ShippingCharges   *float64 `json:"shippingCharges,omitempty"`
	Currency          string   `json:"currency"`
	PaymentMode       string   `json:"paymentMode"`
	FinancialStatus   string   `json:"financialStatus,omitempty"`
	FulfillmentStatus string   `json:"fulfillmentStatus,omitempty"`
	CGST              *float64 `json:"cgst,omitempty"`
	SGST              *float64 `json:"sgst,omitempty"`
	IGST              *float64 `json:"igst,omitempty"`
	HSNCode           string   `json:"hsnCode,omitempty"`
	GSTINNumber       string   `json:"gstinNumber,omitempty"`
	Category          string   `json:"category,omitempty"`
	UnitPrice         *float64 `json:"unitPrice,omitempty"`
	AWB               string   `json:"awb,omitempty"`
	ServiceTier       string   `json:"serviceTier,omitempty"`

	VendorName       string `json:"vendorName,omitempty"`
	PickupAddress    string `json:"pickupAddress,omitempty"`
	PickupCity       string `json:"pickupCity,omitempty"`
	PickupState      string `json:"pickupState,omitempty"`
	PickupPincode    string `json:"pickupPincode,omitempty"`
	ReturnLabelLine1 string `json:"returnLabelLine1,omitempty"`
	ReturnLabelLine2 string `json:"returnLabelLine2,omitempty"`
	InvoiceReference string `json:"invoiceReference,omitempty"`

	Cancelled    bool       `json:"cancelled"`
	CancelledAt  *time.Time `json:"cancelledAt,omitempty"`
	CancelReason string     `json:"cancelReason,omitempty"`
	Tags         string     `json:"tags,omitempty"`
	Note         string     `json:"note,omitempty"`

	Status          string                `json:"status"`
	ReturnTracking  *order.ReturnTracking `json:"returnTracking,omitempty"`
	CarrierResponse json.RawMessage       `json:"carrierResponse,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToOrderResponse converts a domain order to its API view
func ToOrderResponse(o *order.Order) OrderResponse {
	products := o.Products
	if products == nil {
		products = []order.LineItem{}
	}
	return OrderResponse{
		ID:                o.ID,
		OrderID:           o.OrderID,
		ShopifyID:         o.ShopifyID,
		OrderName:         o.OrderName,
		OrderDate:         o.OrderDate,
		CustomerName:      o.CustomerName,
		CustomerPhone:     o.CustomerPhone,
		CustomerEmail:     o.CustomerEmail,
		CustomerAddress:   o.CustomerAddress,
		BillingAddress:    o.BillingAddress,
		City:              o.City,
		State:             o.State,
		Pincode:           o.Pincode,
		Products:          products,
		Length:            o.Length,
		Breadth:           o.Breadth,
		Height:            o.Height,
		DeadWeight:        o.DeadWeight,
		VolumetricWeight:  o.VolumetricWeight,
		Amount:            o.Amount,
		Subtotal:          o.Subtotal,
		TotalTax:          o.TotalTax,
		TotalDiscounts:    o.TotalDiscounts,
		ShippingCharges:   o.ShippingCharges,
		Currency:          o.Currency,
		PaymentMode:       o.PaymentMode,
		FinancialStatus:   o.FinancialStatus,
		FulfillmentStatus: o.FulfillmentStatus,
		CGST:              o.CGST,
		SGST:              o.SGST,
		IGST:              o.IGST,
		HSNCode:           o.HSNCode,
		GSTINNumber:       o.GSTINNumber,
		Category:          o.Category,
		UnitPrice:         o.UnitPrice,
		AWB:               o.AWB,
		ServiceTier:       o.ServiceTier,
		VendorName:        o.VendorName,
		PickupAddress:     o.PickupAddress,
		PickupCity:        o.PickupCity,
		PickupState:       o.PickupState,
		PickupPincode:     o.PickupPincode,
		ReturnLabelLine1:  o.ReturnLabelLine1,
		ReturnLabelLine2:  o.ReturnLabelLine2,
		InvoiceReference:  o.InvoiceReference,
		Cancelled:         o.Cancelled,
		CancelledAt:       o.CancelledAt,
		CancelReason:      o.CancelReason,
		Tags:              o.Tags,
		Note:              o.Note,
		Status:            o.Status,
		ReturnTracking:    o.ReturnTracking,
		CarrierResponse:   o.CarrierResponse,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

// ToOrderResponses converts a slice of domain orders
func ToOrderResponses(orders []*order.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = ToOrderResponse(o)
	}
	return out
}

// ListResponse is one page of orders
type ListResponse struct {
	Total  int64           `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
	Orders []OrderResponse `json:"orders"`
}

// FailedRecord is a record that reached the store and failed there
type FailedRecord struct {
	OrderID string `json:"orderId,omitempty"`
	Line    int    `json:"line,omitempty"`
	Error   string `json:"error"`
}

// ImportResult summarizes one file import. The JSON shape depends on the mode.
type ImportResult struct {
	Mode        ImportMode
	Updated     int
	NotFound    int
	Inserted    int
	Skipped     int
	Failed      []FailedRecord
	InvalidRows []csvimport.RowError
	Orders      []OrderResponse
}

type mergeResultView struct {
	Updated     int                  `json:"updated"`
	NotFound    int                  `json:"notFound"`
	Failed      []FailedRecord       `json:"failed"`
	InvalidRows []csvimport.RowError `json:"invalidRows"`
	Orders      []OrderResponse      `json:"orders"`
}

type insertResultView struct {
	Inserted    int                  `json:"inserted"`
	Skipped     int                  `json:"skipped"`
	Failed      []FailedRecord       `json:"failed"`
	InvalidRows []csvimport.RowError `json:"invalidRows"`
}

// MarshalJSON writes the merge view for merge imports and the insert view otherwise
func (r ImportResult) MarshalJSON() ([]byte, error) {
	failed, invalid := r.Failed, r.InvalidRows
	if failed == nil {
		failed = []FailedRecord{}
	}
	if invalid == nil {
		invalid = []csvimport.RowError{}
	}
	if r.Mode == ModeMerge {
		orders := r.Orders
		if orders == nil {
			orders = []OrderResponse{}
		}
		return json.Marshal(mergeResultView{
			Updated:     r.Updated,
			NotFound:    r.NotFound,
			Failed:      failed,
			InvalidRows: invalid,
			Orders:      orders,
		})
	}
	return json.Marshal(insertResultView{
		Inserted:    r.Inserted,
		Skipped:     r.Skipped,
		Failed:      failed,
		InvalidRows: invalid,
	})
}

// SyncResult summarizes one Shopify sync
type SyncResult struct {
	Count   int             `json:"count"`
	Created int             `json:"created"`
	Updated int             `json:"updated"`
	Skipped int             `json:"skipped"`
	Failed  []FailedRecord  `json:"failed"`
	Orders  []OrderResponse `json:"orders"`
}

// ReturnResult is a created return shipment
type ReturnResult struct {
	TrackingID   string          `json:"trackingId"`
	Response     json.RawMessage `json:"response"`
	OrderUpdated bool            `json:"orderUpdated"`
	Order        *OrderResponse  `json:"order,omitempty"`
}
