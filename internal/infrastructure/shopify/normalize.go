package shopify

import (
	"strings"
	"time"

	"github.com/ikkasa/orderhub/internal/domain/order"
	"github.com/ikkasa/orderhub/internal/domain/shared"
)

// RESTNormalizer maps REST orders to patches
type RESTNormalizer struct{}

// GraphQLNormalizer maps GraphQL order nodes to patches
type GraphQLNormalizer struct{}

var (
	_ order.Normalizer[RESTOrder]    = RESTNormalizer{}
	_ order.Normalizer[GraphQLOrder] = GraphQLNormalizer{}
)

type party struct {
	first, last, name, email, phone string
}

// customerName picks, in order: shipping name, billing name, customer name,
// then email.
func customerName(shipping, billing, customer party, email string) string {
	candidates := []string{
		order.FirstNonEmpty(order.FullName(shipping.first, shipping.last), shipping.name),
		order.FirstNonEmpty(order.FullName(billing.first, billing.last), billing.name),
		order.FullName(customer.first, customer.last),
		email,
	}
	if n := order.FirstNonEmpty(candidates...); n != "" {
		return n
	}
	return order.UnknownCustomer
}

// legacyID reduces a GraphQL global id (gid://shopify/Order/5123) to the
// numeric id the REST API reports, so both APIs key an order the same way.
func legacyID(id string) string {
	if !strings.HasPrefix(id, "gid://") {
		return id
	}
	id = id[strings.LastIndex(id, "/")+1:]
	if i := strings.IndexByte(id, '?'); i >= 0 {
		id = id[:i]
	}
	return id
}

// orderNumber returns number when set, else the trailing digits of the order
// name (#1001 gives 1001). A name without digits is kept minus its '#'.
func orderNumber(number, name string) string {
	if number != "" {
		return number
	}
	name = strings.TrimSpace(name)
	start := len(name)
	for start > 0 && name[start-1] >= '0' && name[start-1] <= '9' {
		start--
	}
	if start < len(name) {
		return name[start:]
	}
	return strings.TrimPrefix(name, "#")
}

// Normalize implements order.Normalizer
func (RESTNormalizer) Normalize(o RESTOrder) order.Patch {
	ship := derefAddress(o.ShippingAddress)
	bill := derefAddress(o.BillingAddress)
	var cust Customer
	if o.Customer != nil {
		cust = *o.Customer
	}

	items := make([]order.LineItem, 0, len(o.LineItems))
	for _, li := range o.LineItems {
		items = append(items, order.LineItem{
			ProductName: order.FirstNonEmpty(li.Name, li.Title),
			Quantity:    li.Quantity,
			Price:       optionalPtr(li.Price.Value()),
			SKU:         li.SKU,
			Vendor:      li.Vendor,
		})
	}

	fulfillment := derefString(o.FulfillmentStatus)
	p := order.Patch{
		ShopifyID: shared.NonEmpty(o.ID.String()),
		OrderID:   shared.NonEmpty(orderNumber(o.OrderNumber.String(), o.Name)),
		OrderName: shared.NonEmpty(o.Name),
		OrderDate: optionalTime(o.CreatedAt),

		CustomerName: shared.Some(customerName(
			party{first: ship.FirstName, last: ship.LastName, name: ship.Name},
			party{first: bill.FirstName, last: bill.LastName, name: bill.Name},
			party{first: cust.FirstName, last: cust.LastName},
			o.Email,
		)),
		CustomerEmail:   shared.NonEmpty(order.FirstNonEmpty(o.Email, cust.Email, ship.Email, bill.Email)),
		CustomerPhone:   shared.NonEmpty(order.FirstNonEmpty(ship.Phone, bill.Phone, cust.Phone)),
		CustomerAddress: shared.NonEmpty(restAddressLine(ship)),
		BillingAddress:  shared.NonEmpty(restAddressLine(bill)),
		City:            shared.NonEmpty(ship.City),
		State:           shared.NonEmpty(ship.Province),
		Pincode:         shared.NonEmpty(order.FirstNonEmpty(ship.Zip, ship.PostalCode)),

		Products: shared.Some(items),

		Amount:          o.TotalPrice.Value(),
		Subtotal:        o.SubtotalPrice.Value(),
		TotalTax:        o.TotalTax.Value(),
		TotalDiscounts:  o.TotalDiscounts.Value(),
		ShippingCharges: o.TotalShippingSet.amount(),
		Currency:        shared.Some(order.FirstNonEmpty(o.Currency, order.DefaultCurrency)),
		PaymentMode: shared.Some(order.InferPaymentMode(order.PaymentSignals{
			Gateway:         shared.NonEmpty(restGateway(o)),
			FinancialStatus: o.FinancialStatus,
		})),
		FinancialStatus:   shared.NonEmpty(o.FinancialStatus),
		FulfillmentStatus: shared.NonEmpty(fulfillment),
		Status:            shared.NonEmpty(fulfillment),

		PickupAddress: shared.NonEmpty(ship.Address1),

		Cancelled:    shared.Some(o.CancelledAt != nil),
		CancelledAt:  shared.Some(o.CancelledAt),
		CancelReason: shared.Some(derefString(o.CancelReason)),
		Tags:         shared.NonEmpty(o.Tags),
		Note:         shared.NonEmpty(derefString(o.Note)),
	}
	if len(items) > 0 {
		p.VendorName = shared.NonEmpty(items[0].Vendor)
	}
	return p.WithDerivedFields()
}

// restGateway prefers the first successful transaction, then any
// transaction, then the order level gateway fields.
func restGateway(o RESTOrder) string {
	if len(o.Transactions) > 0 {
		tx := o.Transactions[0]
		for _, t := range o.Transactions {
			if t.Status == "success" {
				tx = t
				break
			}
		}
		if tx.Gateway != "" {
			return tx.Gateway
		}
	}
	if o.Gateway != "" {
		return o.Gateway
	}
	if len(o.PaymentGatewayNames) > 0 {
		return o.PaymentGatewayNames[0]
	}
	return ""
}

func restAddressLine(a Address) string {
	return order.JoinAddress(a.Address1, a.Address2, a.City, a.Province,
		order.FirstNonEmpty(a.Zip, a.PostalCode), a.Country)
}

// Normalize implements order.Normalizer
func (GraphQLNormalizer) Normalize(o GraphQLOrder) order.Patch {
	var ship, bill GraphQLAddress
	if o.ShippingAddress != nil {
		ship = *o.ShippingAddress
	}
	if o.BillingAddress != nil {
		bill = *o.BillingAddress
	}
	var cust party
	if o.Customer != nil {
		cust = party{first: o.Customer.FirstName, last: o.Customer.LastName,
			email: o.Customer.Email, phone: o.Customer.Phone}
	}

	items := make([]order.LineItem, 0, len(o.LineItems.Edges))
	for _, e := range o.LineItems.Edges {
		li := e.Node
		items = append(items, order.LineItem{
			ProductName: order.FirstNonEmpty(li.Name, li.Title),
			Quantity:    li.Quantity,
			Price:       optionalPtr(li.OriginalUnitPriceSet.amount()),
			SKU:         li.SKU,
			Vendor:      li.Vendor,
		})
	}

	var gateway string
	if len(o.Transactions) > 0 {
		gateway = o.Transactions[0].Gateway
	}
	if gateway == "" && len(o.PaymentGatewayNames) > 0 {
		gateway = o.PaymentGatewayNames[0]
	}
	financial := strings.ToLower(o.DisplayFinancialStatus)
	fulfillment := strings.ToLower(o.DisplayFulfillmentStatus)

	p := order.Patch{
		ShopifyID: shared.NonEmpty(legacyID(o.ID)),
		OrderID:   shared.NonEmpty(orderNumber("", o.Name)),
		OrderName: shared.NonEmpty(o.Name),
		OrderDate: optionalTime(o.CreatedAt),

		CustomerName: shared.Some(customerName(
			party{first: ship.FirstName, last: ship.LastName, name: ship.Name},
			party{first: bill.FirstName, last: bill.LastName, name: bill.Name},
			cust,
			o.Email,
		)),
		CustomerEmail:   shared.NonEmpty(order.FirstNonEmpty(o.Email, cust.email)),
		CustomerPhone:   shared.NonEmpty(order.FirstNonEmpty(ship.Phone, bill.Phone, cust.phone, o.Phone)),
		CustomerAddress: shared.NonEmpty(gqlAddressLine(ship)),
		BillingAddress:  shared.NonEmpty(gqlAddressLine(bill)),
		City:            shared.NonEmpty(ship.City),
		State:           shared.NonEmpty(ship.Province),
		Pincode:         shared.NonEmpty(ship.Zip),

		Products: shared.Some(items),

		Amount:          o.CurrentTotalPriceSet.amount(),
		Subtotal:        o.CurrentSubtotalPriceSet.amount(),
		TotalTax:        o.CurrentTotalTaxSet.amount(),
		TotalDiscounts:  o.CurrentTotalDiscountsSet.amount(),
		ShippingCharges: o.CurrentShippingPriceSet.amount(),
		Currency:        shared.Some(order.FirstNonEmpty(o.CurrencyCode, order.DefaultCurrency)),
		PaymentMode: shared.Some(order.InferPaymentMode(order.PaymentSignals{
			Gateway:         shared.NonEmpty(gateway),
			FinancialStatus: financial,
		})),
		FinancialStatus:   shared.NonEmpty(financial),
		FulfillmentStatus: shared.NonEmpty(fulfillment),

		PickupAddress: shared.NonEmpty(ship.Address1),

		Cancelled:    shared.Some(o.CancelledAt != nil),
		CancelledAt:  shared.Some(o.CancelledAt),
		CancelReason: shared.Some(derefString(o.CancelReason)),
		Tags:         shared.NonEmpty(strings.Join(o.Tags, ", ")),
		Note:         shared.NonEmpty(derefString(o.Note)),
	}
	if len(items) > 0 {
		p.VendorName = shared.NonEmpty(items[0].Vendor)
	}
	return p.WithDerivedFields()
}

func gqlAddressLine(a GraphQLAddress) string {
	return order.JoinAddress(a.Address1, a.Address2, a.City, a.Province, a.Zip, a.Country)
}

func derefAddress(a *Address) Address {
	if a == nil {
		return Address{}
	}
	return *a
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optionalTime(t *time.Time) shared.Optional[time.Time] {
	if t == nil {
		return shared.None[time.Time]()
	}
	return shared.Some(*t)
}

func optionalPtr(v shared.Optional[float64]) *float64 {
	if f, ok := v.Get(); ok {
		return &f
	}
	return nil
}
