package order

import (
	"testing"

	"github.com/ikkasa/orderhub/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestInferPaymentMode(t *testing.T) {
	tests := []struct {
		name    string
		signals PaymentSignals
		want    string
	}{
		{"positive COD amount", PaymentSignals{CODAmount: shared.Some(250.0)}, PaymentCOD},
		{"zero COD amount", PaymentSignals{CODAmount: shared.Some(0.0)}, PaymentPrepaid},
		{"zero COD amount and pending", PaymentSignals{CODAmount: shared.Some(0.0), FinancialStatus: "pending"}, PaymentCOD},
		{"zero COD amount and paid", PaymentSignals{CODAmount: shared.Some(0.0), FinancialStatus: "paid"}, PaymentPrepaid},
		{"positive COD amount and paid", PaymentSignals{CODAmount: shared.Some(10.0), FinancialStatus: "paid"}, PaymentCOD},
		{"absent COD and pending", PaymentSignals{FinancialStatus: "pending"}, PaymentCOD},
		{"absent COD and paid", PaymentSignals{FinancialStatus: "paid"}, PaymentPrepaid},
		{"nothing at all", PaymentSignals{}, PaymentPrepaid},
		{"gateway upper-cased", PaymentSignals{Gateway: shared.Some("razorpay")}, "RAZORPAY"},
		{"unknown gateway falls back to pending", PaymentSignals{Gateway: shared.Some("unknown"), FinancialStatus: "pending"}, PaymentCOD},
		{"empty gateway falls back to paid", PaymentSignals{Gateway: shared.Some(""), FinancialStatus: "paid"}, PaymentPrepaid},
		{"status is case-insensitive", PaymentSignals{FinancialStatus: "PENDING"}, PaymentCOD},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferPaymentMode(tt.signals))
		})
	}
}
