package graphql

import (
	"github.com/graphql-go/graphql"
	orderapp "github.com/ikkasa/orderhub/internal/application/order"
)

// Patch fields by GraphQL type. Input and output share these names with the
// JSON form of order.Patch.
var (
	stringFields = []string{
		"orderId", "shopifyId", "orderName",
		"customerName", "customerPhone", "customerEmail", "customerAddress", "billingAddress",
		"city", "state", "pincode",
		"currency", "paymentMode", "financialStatus", "fulfillmentStatus",
		"hsnCode", "gstinNumber", "category", "awb", "serviceTier",
		"vendorName", "pickupAddress", "pickupCity", "pickupState", "pickupPincode",
		"returnLabelLine1", "returnLabelLine2", "invoiceReference",
		"cancelReason", "tags", "note", "status",
	}
	floatFields = []string{
		"length", "breadth", "height", "deadWeight", "volumetricWeight",
		"amount", "subtotal", "totalTax", "totalDiscounts", "shippingCharges",
		"cgst", "sgst", "igst", "unitPrice",
	}
)

var lineItemType = graphql.NewObject(graphql.ObjectConfig{
	Name: "LineItem",
	Fields: graphql.Fields{
		"productName": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"quantity":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"price":       &graphql.Field{Type: graphql.Float},
		"sku":         &graphql.Field{Type: graphql.String},
		"vendor":      &graphql.Field{Type: graphql.String},
	},
})

var trackingEventType = graphql.NewObject(graphql.ObjectConfig{
	Name: "TrackingEvent",
	Fields: graphql.Fields{
		"status":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"timestamp": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
	},
})

var returnTrackingType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ReturnTracking",
	Fields: graphql.Fields{
		"currentStatus":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"ekartTrackingId": &graphql.Field{Type: graphql.String},
		"history":         &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(trackingEventType)))},
	},
})

var orderType = newOrderType()

func newOrderType() *graphql.Object {
	fields := graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.NewNonNull(graphql.ID),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(orderapp.OrderResponse).ID.String(), nil
			},
		},
		"orderDate": &graphql.Field{Type: graphql.DateTime},
		"products":  &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(lineItemType)))},
		"cancelled": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"cancelledAt": &graphql.Field{
			Type: graphql.DateTime,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				if at := p.Source.(orderapp.OrderResponse).CancelledAt; at != nil {
					return *at, nil
				}
				return nil, nil
			},
		},
		"returnTracking": &graphql.Field{
			Type: returnTrackingType,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				if rt := p.Source.(orderapp.OrderResponse).ReturnTracking; rt != nil {
					return *rt, nil
				}
				return nil, nil
			},
		},
		"carrierResponse": &graphql.Field{
			Type:        graphql.String,
			Description: "Raw carrier response as a JSON string",
			Resolve: func(p graphql.ResolveParams) (any, error) {
				if raw := p.Source.(orderapp.OrderResponse).CarrierResponse; len(raw) > 0 {
					return string(raw), nil
				}
				return nil, nil
			},
		},
		"createdAt": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
		"updatedAt": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
	}
	for _, name := range stringFields {
		fields[name] = &graphql.Field{Type: graphql.String}
	}
	for _, name := range floatFields {
		fields[name] = &graphql.Field{Type: graphql.Float}
	}
	return graphql.NewObject(graphql.ObjectConfig{Name: "Order", Fields: fields})
}

var lineItemInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "LineItemInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"productName": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"quantity":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
		"price":       &graphql.InputObjectFieldConfig{Type: graphql.Float},
		"sku":         &graphql.InputObjectFieldConfig{Type: graphql.String},
		"vendor":      &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var orderInputType = newOrderInputType()

func newOrderInputType() *graphql.InputObject {
	fields := graphql.InputObjectConfigFieldMap{
		"orderDate":   &graphql.InputObjectFieldConfig{Type: graphql.DateTime},
		"products":    &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(lineItemInputType))},
		"cancelled":   &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
		"cancelledAt": &graphql.InputObjectFieldConfig{Type: graphql.DateTime},
	}
	for _, name := range stringFields {
		fields[name] = &graphql.InputObjectFieldConfig{Type: graphql.String}
	}
	for _, name := range floatFields {
		fields[name] = &graphql.InputObjectFieldConfig{Type: graphql.Float}
	}
	return graphql.NewInputObject(graphql.InputObjectConfig{Name: "OrderInput", Fields: fields})
}
