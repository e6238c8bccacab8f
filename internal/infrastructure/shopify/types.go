package shopify

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/ikkasa/orderhub/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Amount is a money value that Shopify encodes either as a string or a number
type Amount string

// UnmarshalJSON accepts "12.50", 12.5 and null.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	*a = Amount(data)
	return nil
}

// Value parses the amount. Blank and malformed values are absent.
func (a Amount) Value() shared.Optional[float64] {
	s := strings.TrimSpace(string(a))
	if s == "" {
		return shared.None[float64]()
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return shared.None[float64]()
	}
	return shared.Some(d.InexactFloat64())
}

// Address is a REST shipping or billing address
type Address struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Name       string `json:"name"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2"`
	City       string `json:"city"`
	Province   string `json:"province"`
	Zip        string `json:"zip"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
}

// Customer is the REST customer block
type Customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// LineItem is a REST line item
type LineItem struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	Price    Amount `json:"price"`
	SKU      string `json:"sku"`
	Vendor   string `json:"vendor"`
}

// Transaction is a REST payment transaction
type Transaction struct {
	Gateway string `json:"gateway"`
	Status  string `json:"status"`
}

type moneySet struct {
	ShopMoney struct {
		Amount Amount `json:"amount"`
	} `json:"shop_money"`
}

// RESTOrder is an order as returned by orders.json
type RESTOrder struct {
	ID                  json.Number   `json:"id"`
	OrderNumber         json.Number   `json:"order_number"`
	Name                string        `json:"name"`
	CreatedAt           *time.Time    `json:"created_at"`
	Email               string        `json:"email"`
	Phone               string        `json:"phone"`
	TotalPrice          Amount        `json:"total_price"`
	SubtotalPrice       Amount        `json:"subtotal_price"`
	TotalTax            Amount        `json:"total_tax"`
	TotalDiscounts      Amount        `json:"total_discounts"`
	TotalShippingSet    *moneySet     `json:"total_shipping_price_set"`
	Currency            string        `json:"currency"`
	FinancialStatus     string        `json:"financial_status"`
	FulfillmentStatus   *string       `json:"fulfillment_status"`
	Gateway             string        `json:"gateway"`
	PaymentGatewayNames []string      `json:"payment_gateway_names"`
	Transactions        []Transaction `json:"transactions"`
	CancelledAt         *time.Time    `json:"cancelled_at"`
	CancelReason        *string       `json:"cancel_reason"`
	Tags                string        `json:"tags"`
	Note                *string       `json:"note"`
	Customer            *Customer     `json:"customer"`
	ShippingAddress     *Address      `json:"shipping_address"`
	BillingAddress      *Address      `json:"billing_address"`
	LineItems           []LineItem    `json:"line_items"`
}

type restPage struct {
	Orders []RESTOrder `json:"orders"`
}

// GraphQLAddress is a MailingAddress
type GraphQLAddress struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Name      string `json:"name"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2"`
	City      string `json:"city"`
	Province  string `json:"province"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

type gqlMoneyBag struct {
	ShopMoney struct {
		Amount Amount `json:"amount"`
	} `json:"shopMoney"`
}

// GraphQLLineItem is a LineItem node
type GraphQLLineItem struct {
	Name                 string       `json:"name"`
	Title                string       `json:"title"`
	Quantity             int          `json:"quantity"`
	OriginalUnitPriceSet *gqlMoneyBag `json:"originalUnitPriceSet"`
	SKU                  string       `json:"sku"`
	Vendor               string       `json:"vendor"`
}

// GraphQLOrder is an Order node
type GraphQLOrder struct {
	ID                       string     `json:"id"`
	Name                     string     `json:"name"`
	CreatedAt                *time.Time `json:"createdAt"`
	Email                    string     `json:"email"`
	Phone                    string     `json:"phone"`
	DisplayFinancialStatus   string     `json:"displayFinancialStatus"`
	DisplayFulfillmentStatus string     `json:"displayFulfillmentStatus"`
	PaymentGatewayNames      []string   `json:"paymentGatewayNames"`
	CancelledAt              *time.Time `json:"cancelledAt"`
	CancelReason             *string    `json:"cancelReason"`
	Tags                     []string   `json:"tags"`
	Note                     *string    `json:"note"`
	CurrencyCode             string     `json:"currencyCode"`
	Customer                 *struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
	} `json:"customer"`
	ShippingAddress *GraphQLAddress `json:"shippingAddress"`
	BillingAddress  *GraphQLAddress `json:"billingAddress"`
	LineItems       struct {
		Edges []struct {
			Node GraphQLLineItem `json:"node"`
		} `json:"edges"`
	} `json:"lineItems"`
	CurrentTotalPriceSet     *gqlMoneyBag `json:"currentTotalPriceSet"`
	CurrentSubtotalPriceSet  *gqlMoneyBag `json:"currentSubtotalPriceSet"`
	CurrentTotalTaxSet       *gqlMoneyBag `json:"currentTotalTaxSet"`
	CurrentTotalDiscountsSet *gqlMoneyBag `json:"currentTotalDiscountsSet"`
	CurrentShippingPriceSet  *gqlMoneyBag `json:"currentShippingPriceSet"`
	Transactions             []struct {
		Gateway string `json:"gateway"`
		Status  string `json:"status"`
	} `json:"transactions"`
}

type gqlResponse struct {
	Data *struct {
		Orders *struct {
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
			Edges []struct {
				Node GraphQLOrder `json:"node"`
			} `json:"edges"`
		} `json:"orders"`
	} `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

func (m *gqlMoneyBag) amount() shared.Optional[float64] {
	if m == nil {
		return shared.None[float64]()
	}
	return m.ShopMoney.Amount.Value()
}

func (m *moneySet) amount() shared.Optional[float64] {
	if m == nil {
		return shared.None[float64]()
	}
	return m.ShopMoney.Amount.Value()
}
