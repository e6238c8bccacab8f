package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ikkasa/orderhub/internal/domain/order"
	"gorm.io/gorm"
)

// OrderModel is the persistence model for order.Order
type OrderModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID   *string   `gorm:"size:100;uniqueIndex"`
	ShopifyID *string   `gorm:"size:64;uniqueIndex"`
	OrderName string    `gorm:"size:100"`
	OrderDate time.Time `gorm:"not null;index"`

	CustomerName    string `gorm:"size:200"`
	CustomerPhone   string `gorm:"size:50"`
	CustomerEmail   string `gorm:"size:200"`
	CustomerAddress string `gorm:"type:text"`
	BillingAddress  string `gorm:"type:text"`
	City            string `gorm:"size:100"`
	State           string `gorm:"size:100"`
	Pincode         string `gorm:"size:20"`

	Products string `gorm:"type:jsonb;not null"`

	Length           *float64
	Breadth          *float64
	Height           *float64
	DeadWeight       *float64
	VolumetricWeight *float64

	Amount            float64 `gorm:"not null"`
	Subtotal          *float64
	TotalTax          *float64
	TotalDiscounts    *float64
	ShippingCharges   *float64
	Currency          string   `gorm:"size:10"`
	PaymentMode       string   `gorm:"size:50"`
	FinancialStatus   string   `gorm:"size:50"`
	FulfillmentStatus string   `gorm:"size:50"`
	CGST              *float64 `gorm:"column:cgst"`
	SGST              *float64 `gorm:"column:sgst"`
	IGST              *float64 `gorm:"column:igst"`
	HSNCode           string   `gorm:"column:hsn_code;size:50"`
	GSTINNumber       string   `gorm:"column:gstin_number;size:50"`
	Category          string   `gorm:"size:100"`
	UnitPrice         *float64
	AWB               string `gorm:"column:awb;size:100"`
	ServiceTier       string `gorm:"size:50"`

	VendorName       string `gorm:"size:200"`
	PickupAddress    string `gorm:"type:text"`
	PickupCity       string `gorm:"size:100"`
	PickupState      string `gorm:"size:100"`
	PickupPincode    string `gorm:"size:20"`
	ReturnLabelLine1 string `gorm:"type:text"`
	ReturnLabelLine2 string `gorm:"type:text"`
	InvoiceReference string `gorm:"size:100"`

	Cancelled    bool `gorm:"not null"`
	CancelledAt  *time.Time
	CancelReason string `gorm:"size:100"`
	Tags         string `gorm:"type:text"`
	Note         string `gorm:"type:text"`

	Status          string  `gorm:"size:50;not null;index"`
	ReturnTracking  *string `gorm:"type:jsonb"`
	CarrierResponse *string `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// BeforeSave fills the default status for rows written without one.
func (m *OrderModel) BeforeSave(*gorm.DB) error {
	if m.Status == "" {
		m.Status = order.StatusNew
	}
	if m.Products == "" {
		m.Products = "[]"
	}
	return nil
}

// ToDomain converts the model to a domain order
func (m *OrderModel) ToDomain() (*order.Order, error) {
	o := &order.Order{
		ID:                m.ID,
		OrderID:           deref(m.OrderID),
		ShopifyID:         deref(m.ShopifyID),
		OrderName:         m.OrderName,
		OrderDate:         m.OrderDate,
		CustomerName:      m.CustomerName,
		CustomerPhone:     m.CustomerPhone,
		CustomerEmail:     m.CustomerEmail,
		CustomerAddress:   m.CustomerAddress,
		BillingAddress:    m.BillingAddress,
		City:              m.City,
		State:             m.State,
		Pincode:           m.Pincode,
		Length:            m.Length,
		Breadth:           m.Breadth,
		Height:            m.Height,
		DeadWeight:        m.DeadWeight,
		VolumetricWeight:  m.VolumetricWeight,
		Amount:            m.Amount,
		Subtotal:          m.Subtotal,
		TotalTax:          m.TotalTax,
		TotalDiscounts:    m.TotalDiscounts,
		ShippingCharges:   m.ShippingCharges,
		Currency:          m.Currency,
		PaymentMode:       m.PaymentMode,
		FinancialStatus:   m.FinancialStatus,
		FulfillmentStatus: m.FulfillmentStatus,
		CGST:              m.CGST,
		SGST:              m.SGST,
		IGST:              m.IGST,
		HSNCode:           m.HSNCode,
		GSTINNumber:       m.GSTINNumber,
		Category:          m.Category,
		UnitPrice:         m.UnitPrice,
		AWB:               m.AWB,
		ServiceTier:       m.ServiceTier,
		VendorName:        m.VendorName,
		PickupAddress:     m.PickupAddress,
		PickupCity:        m.PickupCity,
		PickupState:       m.PickupState,
		PickupPincode:     m.PickupPincode,
		ReturnLabelLine1:  m.ReturnLabelLine1,
		ReturnLabelLine2:  m.ReturnLabelLine2,
		InvoiceReference:  m.InvoiceReference,
		Cancelled:         m.Cancelled,
		CancelledAt:       m.CancelledAt,
		CancelReason:      m.CancelReason,
		Tags:              m.Tags,
		Note:              m.Note,
		Status:            m.Status,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}

	if m.Products != "" {
		if err := json.Unmarshal([]byte(m.Products), &o.Products); err != nil {
			return nil, fmt.Errorf("decode products of order %s: %w", m.ID, err)
		}
	}
	if m.ReturnTracking != nil && *m.ReturnTracking != "" {
		o.ReturnTracking = &order.ReturnTracking{}
		if err := json.Unmarshal([]byte(*m.ReturnTracking), o.ReturnTracking); err != nil {
			return nil, fmt.Errorf("decode return tracking of order %s: %w", m.ID, err)
		}
	}
	if m.CarrierResponse != nil && *m.CarrierResponse != "" {
		o.CarrierResponse = json.RawMessage(*m.CarrierResponse)
	}
	o.EnsureStatus()
	return o, nil
}

// FromDomain populates the model from a domain order
func (m *OrderModel) FromDomain(o *order.Order) error {
	products := o.Products
	if products == nil {
		products = []order.LineItem{}
	}
	productsJSON, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("encode products: %w", err)
	}

	*m = OrderModel{
		ID:                o.ID,
		OrderID:           ref(o.OrderID),
		ShopifyID:         ref(o.ShopifyID),
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
		Products:          string(productsJSON),
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
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}

	if o.ReturnTracking != nil {
		b, err := json.Marshal(o.ReturnTracking)
		if err != nil {
			return fmt.Errorf("encode return tracking: %w", err)
		}
		s := string(b)
		m.ReturnTracking = &s
	}
	if len(o.CarrierResponse) > 0 {
		s := string(o.CarrierResponse)
		m.CarrierResponse = &s
	}
	return nil
}

// NewOrderModelFromDomain creates a model from a domain order
func NewOrderModelFromDomain(o *order.Order) (*OrderModel, error) {
	m := &OrderModel{}
	if err := m.FromDomain(o); err != nil {
		return nil, err
	}
	return m, nil
}

func ref(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
