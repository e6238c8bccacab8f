package ekart

import (
	"errors"
	"testing"

	"github.com/ikkasa/orderhub/internal/domain/order"
	"github.com/ikkasa/orderhub/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() ReturnRequest {
	return ReturnRequest{
		OrderID:         "ORD-1",
		CustomerName:    "Asha Rao",
		CustomerPhone:   "9876543210",
		CustomerAddress: "12 MG Road",
		City:            "Bengaluru",
		State:           "KA",
		Pincode:         "560001",
		Products:        []ReturnItem{{ProductName: "Kurta", Quantity: 1}},
		Amount:          999,
		VendorName:      "Ikkasa",
		PickupAddress:   "12 MG Road",
		PickupCity:      "Bengaluru",
		PickupState:     "KA",
		PickupPincode:   "560001",
		HSN:             "6204",
		InvoiceID:       "INV-1",
	}
}

func TestReturnRequest_ValidateOK(t *testing.T) {
	r := validRequest()
	assert.NoError(t, r.Validate())
}

func TestReturnRequest_ValidateReportsFirstMissingField(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ReturnRequest)
		field  string
	}{
		{"order id", func(r *ReturnRequest) { r.OrderID = "" }, "orderId"},
		{"empty products", func(r *ReturnRequest) { r.Products = []ReturnItem{} }, "products"},
		{"nil products", func(r *ReturnRequest) { r.Products = nil }, "products"},
		{"zero amount", func(r *ReturnRequest) { r.Amount = 0 }, "amount"},
		{"invoice id", func(r *ReturnRequest) { r.InvoiceID = "" }, "invoiceId"},
		{"first of several", func(r *ReturnRequest) {
			r.HSN = ""
			r.City = ""
		}, "city"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRequest()
			tt.mutate(&r)

			err := r.Validate()
			require.Error(t, err)

			var verr *order.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, "Missing or invalid field: "+tt.field, err.Error())
			assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		})
	}
}

func TestReturnRequest_TrimmedBlankFails(t *testing.T) {
	r := validRequest()
	r.CustomerPhone = "   "
	r = r.Trimmed()

	err := r.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "customerPhone")
}
