package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	orderapp "github.com/ikkasa/orderhub/internal/application/order"
	"github.com/ikkasa/orderhub/internal/domain/order"
	"github.com/ikkasa/orderhub/internal/infrastructure/ekart"
	"github.com/ikkasa/orderhub/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const returnBody = `{
	"orderId": "S-1",
	"customerName": "Asha",
	"customerPhone": "9999999999",
	"customerAddress": "12 MG Road",
	"city": "Pune",
	"state": "MH",
	"pincode": "411001",
	"products": [{"productName": "Kurta", "quantity": 1}],
	"amount": 799,
	"vendorName": "Ikkasa",
	"pickupAddress": "Warehouse 4",
	"pickupCity": "Jaipur",
	"pickupState": "RJ",
	"pickupPincode": "302001",
	"hsn": "6204",
	"invoiceId": "INV-1"
}`

func TestEkartHandler_CreateReturn(t *testing.T) {
	svc := new(MockReturnService)
	r := newTestEngine(NewEkartHandler(svc))
	svc.On("CreateReturn", mock.Anything, mock.MatchedBy(func(req ekart.ReturnRequest) bool {
		return req.OrderID == "S-1" && len(req.Products) == 1 && req.Amount == 799
	})).Return(&orderapp.ReturnResult{
		TrackingID:   "EK-123",
		Response:     json.RawMessage(`{"tracking_id":"EK-123"}`),
		OrderUpdated: true,
	}, nil)

	w := doJSON(r, http.MethodPost, "/api/v1/ekart/return", returnBody)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool                  `json:"success"`
		Message string                `json:"message"`
		Data    orderapp.ReturnResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Ekart return shipment created successfully", resp.Message)
	assert.Equal(t, "EK-123", resp.Data.TrackingID)
	assert.JSONEq(t, `{"tracking_id":"EK-123"}`, string(resp.Data.Response))
	svc.AssertExpectations(t)
}

func TestEkartHandler_CreateReturn_Errors(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		err            error
		expectedStatus int
		expectedCode   string
		details        string
	}{
		{
			name:           "malformed body",
			body:           `[`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   dto.ErrCodeBadRequest,
		},
		{
			name:           "missing field",
			body:           `{"orderId":"S-1"}`,
			err:            order.NewValidationError("customerName", ""),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   dto.ErrCodeValidation,
			details:        `{"field":"customerName"}`,
		},
		{
			name:           "carrier rejected",
			body:           returnBody,
			err:            &ekart.UpstreamError{StatusCode: 400, Body: []byte(`{"message":"invalid pincode"}`)},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   dto.ErrCodeUpstream,
			details:        `{"status":400,"body":{"message":"invalid pincode"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockReturnService)
			if tt.err != nil {
				svc.On("CreateReturn", mock.Anything, mock.Anything).Return(nil, tt.err)
			}
			r := newTestEngine(NewEkartHandler(svc))

			w := doJSON(r, http.MethodPost, "/api/v1/ekart/return", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tt.expectedCode, body.Error.Code)
			if tt.details != "" {
				assert.JSONEq(t, tt.details, string(body.Error.Details))
			}
			svc.AssertExpectations(t)
		})
	}
}
