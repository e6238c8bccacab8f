// Package ekart creates reverse-logistics (return) shipments with the Ekart
// carrier API.
package ekart

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/ikkasa/orderhub/internal/domain/order"
)

// ReturnItem is one product of a return request
type ReturnItem struct {
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
}

// ReturnRequest is the input of a return shipment. Required fields are
// declared in the order they are checked.
type ReturnRequest struct {
	OrderID         string       `json:"orderId" validate:"required"`
	CustomerName    string       `json:"customerName" validate:"required"`
	CustomerPhone   string       `json:"customerPhone" validate:"required"`
	CustomerAddress string       `json:"customerAddress" validate:"required"`
	City            string       `json:"city" validate:"required"`
	State           string       `json:"state" validate:"required"`
	Pincode         string       `json:"pincode" validate:"required"`
	Products        []ReturnItem `json:"products" validate:"required,min=1"`
	Amount          float64      `json:"amount" validate:"required"`
	VendorName      string       `json:"vendorName" validate:"required"`
	PickupAddress   string       `json:"pickupAddress" validate:"required"`
	PickupCity      string       `json:"pickupCity" validate:"required"`
	PickupState     string       `json:"pickupState" validate:"required"`
	PickupPincode   string       `json:"pickupPincode" validate:"required"`
	HSN             string       `json:"hsn" validate:"required"`
	InvoiceID       string       `json:"invoiceId" validate:"required"`

	CustomerEmail    string   `json:"customerEmail,omitempty"`
	DeadWeight       *float64 `json:"deadWeight,omitempty"`
	Length           *float64 `json:"length,omitempty"`
	Breadth          *float64 `json:"breadth,omitempty"`
	Height           *float64 `json:"height,omitempty"`
	VolumetricWeight *float64 `json:"volumetricWeight,omitempty"`
	PaymentMode      string   `json:"paymentMode,omitempty"`
	GSTIN            string   `json:"gstin,omitempty"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate returns an *order.ValidationError naming the first missing or
// invalid field.
func (r *ReturnRequest) Validate() error {
	err := requestValidator().Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return order.NewValidationError(verrs[0].Field(), "")
	}
	return err
}

// Trimmed returns a copy with surrounding whitespace removed from the text
// fields, so blank values fail validation.
func (r ReturnRequest) Trimmed() ReturnRequest {
	for _, s := range []*string{
		&r.OrderID, &r.CustomerName, &r.CustomerPhone, &r.CustomerAddress,
		&r.City, &r.State, &r.Pincode, &r.VendorName, &r.PickupAddress,
		&r.PickupCity, &r.PickupState, &r.PickupPincode, &r.HSN, &r.InvoiceID,
	} {
		*s = strings.TrimSpace(*s)
	}
	return r
}
