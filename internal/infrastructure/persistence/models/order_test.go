package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ikkasa/orderhub/internal/domain/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderModel_RoundTrip(t *testing.T) {
	l, b, h := 10.0, 20.0, 5.0
	cancelledAt := time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)
	o := &order.Order{
		OrderID:     "A-1",
		ShopifyID:   "",
		Length:      &l,
		Breadth:     &b,
		Height:      &h,
		Products:    []order.LineItem{{ProductName: "Saree", Quantity: 2}},
		Cancelled:   true,
		CancelledAt: &cancelledAt,
		ReturnTracking: &order.ReturnTracking{
			CurrentStatus:   order.StatusInfoReceived,
			EkartTrackingID: "TRK",
		},
		CarrierResponse: json.RawMessage(`{"ok":true}`),
	}

	m, err := NewOrderModelFromDomain(o)
	require.NoError(t, err)
	require.NotNil(t, m.OrderID)
	assert.Nil(t, m.ShopifyID, "empty natural keys are stored as NULL")
	assert.JSONEq(t, `[{"productName":"Saree","quantity":2}]`, m.Products)

	back, err := m.ToDomain()
	require.NoError(t, err)
	assert.Equal(t, "A-1", back.OrderID)
	assert.Empty(t, back.ShopifyID)
	assert.Equal(t, o.Products, back.Products)
	assert.Equal(t, "TRK", back.ReturnTracking.EkartTrackingID)
	assert.JSONEq(t, `{"ok":true}`, string(back.CarrierResponse))
	assert.Equal(t, order.StatusNew, back.Status)
	assert.True(t, back.Cancelled)
}

func TestOrderModel_NilProductsEncodeAsArray(t *testing.T) {
	m, err := NewOrderModelFromDomain(&order.Order{OrderID: "X"})
	require.NoError(t, err)
	assert.Equal(t, "[]", m.Products)
	assert.Nil(t, m.ReturnTracking)
	assert.Nil(t, m.CarrierResponse)
}

func TestOrderModel_BeforeSave(t *testing.T) {
	m := &OrderModel{}
	require.NoError(t, m.BeforeSave(nil))
	assert.Equal(t, order.StatusNew, m.Status)
	assert.Equal(t, "[]", m.Products)
}

func TestOrderModel_ToDomainRejectsCorruptProducts(t *testing.T) {
	m := &OrderModel{Products: "{not json"}
	_, err := m.ToDomain()
	assert.Error(t, err)
}
