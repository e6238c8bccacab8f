package order

import (
	"strings"

	"github.com/ikkasa/orderhub/internal/domain/order"
	"github.com/ikkasa/orderhub/internal/domain/shared"
)

// ManualNormalizer cleans an order patch submitted through the API.
//
// Payment modes are upper-cased. With InferPayment set, a missing payment
// mode is inferred from the financial status.
type ManualNormalizer struct {
	InferPayment bool
}

var _ order.Normalizer[order.Patch] = ManualNormalizer{}

// Normalize implements order.Normalizer
func (n ManualNormalizer) Normalize(p order.Patch) order.Patch {
	p.OrderID = trimmed(p.OrderID)
	p.ShopifyID = trimmed(p.ShopifyID)

	if mode, ok := p.PaymentMode.Get(); ok {
		p.PaymentMode = shared.NonEmpty(strings.ToUpper(strings.TrimSpace(mode)))
	}
	if n.InferPayment && !p.PaymentMode.IsPresent() {
		p.PaymentMode = shared.Some(order.InferPaymentMode(order.PaymentSignals{
			FinancialStatus: p.FinancialStatus.OrElse(""),
		}))
	}
	return p
}

// trimmed drops surrounding blanks and treats a blank key as absent.
func trimmed(v shared.Optional[string]) shared.Optional[string] {
	s, ok := v.Get()
	if !ok {
		return v
	}
	return shared.NonEmpty(strings.TrimSpace(s))
}
