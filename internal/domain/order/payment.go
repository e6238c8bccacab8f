package order

import (
	"strings"

	"github.com/ikkasa/orderhub/internal/domain/shared"
)

// PaymentSignals are the inputs a source may offer for payment mode inference.
type PaymentSignals struct {
	// CODAmount is the explicit cash-on-delivery amount, when the source has one.
	CODAmount shared.Optional[float64]
	// Gateway is the payment gateway name, when the source has one.
	Gateway shared.Optional[string]
	// FinancialStatus is the source's payment state, e.g. "pending" or "paid".
	FinancialStatus string
}

// InferPaymentMode classifies the payment of an order.
//
// A positive COD amount means COD. A zero COD amount means PREPAID unless the
// financial status is "pending". A known gateway is returned upper-cased.
// Without either, a "pending" financial status means COD and everything else
// PREPAID.
func InferPaymentMode(s PaymentSignals) string {
	pending := strings.EqualFold(strings.TrimSpace(s.FinancialStatus), "pending")
	if amount, ok := s.CODAmount.Get(); ok {
		if amount > 0 || pending {
			return PaymentCOD
		}
		return PaymentPrepaid
	}
	if gw, ok := s.Gateway.Get(); ok {
		gw = strings.ToUpper(strings.TrimSpace(gw))
		if gw != "" && gw != "UNKNOWN" {
			return gw
		}
	}
	if pending {
		return PaymentCOD
	}
	return PaymentPrepaid
}
