package order

import (
	"testing"

	"github.com/ikkasa/orderhub/internal/domain/order"
	"github.com/stretchr/testify/assert"
)

func TestManualNormalizer(t *testing.T) {
	tests := []struct {
		name    string
		infer   bool
		input   order.Patch
		want    string
		present bool
	}{
		{name: "upper-cases explicit mode", input: order.Patch{PaymentMode: some("cod")}, want: "COD", present: true},
		{name: "keeps gateway string", input: order.Patch{PaymentMode: some(" razorpay ")}, want: "RAZORPAY", present: true},
		{name: "pending infers cod", infer: true, input: order.Patch{FinancialStatus: some("pending")}, want: order.PaymentCOD, present: true},
		{name: "paid infers prepaid", infer: true, input: order.Patch{FinancialStatus: some("paid")}, want: order.PaymentPrepaid, present: true},
		{name: "explicit wins over inference", infer: true, input: order.Patch{PaymentMode: some("prepaid"), FinancialStatus: some("pending")}, want: order.PaymentPrepaid, present: true},
		{name: "no inference leaves it absent", input: order.Patch{FinancialStatus: some("pending")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ManualNormalizer{InferPayment: tt.infer}.Normalize(tt.input)
			mode, ok := got.PaymentMode.Get()
			assert.Equal(t, tt.present, ok)
			assert.Equal(t, tt.want, mode)
		})
	}
}

func TestManualNormalizer_TrimsKeys(t *testing.T) {
	got := ManualNormalizer{}.Normalize(order.Patch{
		OrderID:   some("  A-1 "),
		ShopifyID: some("   "),
	})

	id, ok := got.OrderID.Get()
	assert.True(t, ok)
	assert.Equal(t, "A-1", id)
	assert.False(t, got.ShopifyID.IsPresent())
}
