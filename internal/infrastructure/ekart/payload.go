package ekart

import (
	"fmt"
	"time"
)

// Fixed payload values for apparel returns
const (
	GoodsCategory  = "ESSENTIAL"
	ServiceCode    = "RETURNS_SMART_CHECK"
	ServiceLeg     = "REVERSE"
	DeliveryType   = "SMALL"
	ItemCategory   = "Apparel"
	ReturnReason   = "OTHER_REASON"
	ReturnRemark   = "Customer requested for Return"
	zeroTaxPercent = "0.0"
)

// Payload is the create-shipment request body
type Payload struct {
	ClientName    string    `json:"client_name"`
	GoodsCategory string    `json:"goods_category"`
	Services      []Service `json:"services"`
}

// Service is one carrier service
type Service struct {
	ServiceCode    string          `json:"service_code"`
	ServiceDetails []ServiceDetail `json:"service_details"`
}

// ServiceDetail is one leg of a service
type ServiceDetail struct {
	ServiceLeg  string      `json:"service_leg"`
	ServiceData ServiceData `json:"service_data"`
	Shipment    Shipment    `json:"shipment"`
}

// ServiceData carries the pickup source and the return destination
type ServiceData struct {
	AmountToCollect float64     `json:"amount_to_collect"`
	DeliveryType    string      `json:"delivery_type"`
	Source          Source      `json:"source"`
	Destination     Destination `json:"destination"`
}

// Source is the customer pickup location
type Source struct {
	Address SourceAddress `json:"address"`
}

// SourceAddress is the customer address block
type SourceAddress struct {
	FirstName            string `json:"first_name"`
	AddressLine1         string `json:"address_line1"`
	AddressLine2         string `json:"address_line2"`
	Pincode              string `json:"pincode"`
	City                 string `json:"city"`
	State                string `json:"state"`
	PrimaryContactNumber string `json:"primary_contact_number"`
}

// Destination is the warehouse receiving the return
type Destination struct {
	LocationCode string `json:"location_code"`
}

// Shipment describes the parcel
type Shipment struct {
	ClientReferenceID  string         `json:"client_reference_id"`
	TrackingID         string         `json:"tracking_id"`
	ShipmentValue      float64        `json:"shipment_value"`
	ShipmentDimensions Dimensions     `json:"shipment_dimensions"`
	ShipmentItems      []ShipmentItem `json:"shipment_items"`
}

// Measure is a single dimension value
type Measure struct {
	Value float64 `json:"value"`
}

// Dimensions of the parcel; unknown values are 1
type Dimensions struct {
	Length  Measure `json:"length"`
	Breadth Measure `json:"breadth"`
	Height  Measure `json:"height"`
	Weight  Measure `json:"weight"`
}

// ShipmentItem is one returned product
type ShipmentItem struct {
	ProductID      string          `json:"product_id"`
	Category       string          `json:"category"`
	ProductTitle   string          `json:"product_title"`
	Quantity       int             `json:"quantity"`
	Cost           Cost            `json:"cost"`
	SellerDetails  SellerDetails   `json:"seller_details"`
	HSN            string          `json:"hsn"`
	ERN            string          `json:"ern"`
	Discount       string          `json:"discount"`
	ItemAttributes []ItemAttribute `json:"item_attributes"`
	PickupInfo     PickupInfo      `json:"pickup_info"`
	SmartChecks    []any           `json:"smart_checks"`
}

// Cost of an item
type Cost struct {
	TotalSaleValue float64    `json:"total_sale_value"`
	TotalTaxValue  float64    `json:"total_tax_value"`
	TaxBreakup     TaxBreakup `json:"tax_breakup"`
}

// TaxBreakup splits the item tax
type TaxBreakup struct {
	CGST string `json:"cgst"`
	SGST string `json:"sgst"`
	IGST string `json:"igst"`
}

// SellerDetails identifies the seller
type SellerDetails struct {
	SellerRegName string `json:"seller_reg_name"`
	GSTINID       string `json:"gstin_id"`
}

// ItemAttribute is a name/value pair
type ItemAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PickupInfo describes why and where the item is collected
type PickupInfo struct {
	Reason            string `json:"reason"`
	SubReason         string `json:"sub_reason"`
	ReasonDescription string `json:"reason_description"`
	PickupAddress     string `json:"pickup_address"`
	PickupCity        string `json:"pickup_city"`
	PickupState       string `json:"pickup_state"`
	PickupPincode     string `json:"pickup_pincode"`
}

// FallbackTrackingID is used when the carrier does not return one
func FallbackTrackingID(now time.Time) string {
	return fmt.Sprintf("RET-%d", now.UnixMilli())
}

// BuildPayload maps a validated request to the carrier payload
func BuildPayload(r ReturnRequest, merchantCode, locationCode string, now time.Time) Payload {
	pickup := PickupInfo{
		Reason:            ReturnReason,
		SubReason:         ReturnReason,
		ReasonDescription: ReturnRemark,
		PickupAddress:     orDefault(r.PickupAddress, r.CustomerAddress),
		PickupCity:        orDefault(r.PickupCity, r.City),
		PickupState:       orDefault(r.PickupState, r.State),
		PickupPincode:     orDefault(r.PickupPincode, r.Pincode),
	}

	items := make([]ShipmentItem, len(r.Products))
	for i, p := range r.Products {
		items[i] = ShipmentItem{
			ProductID:    fmt.Sprintf("SKU-%d", i+1),
			Category:     ItemCategory,
			ProductTitle: p.ProductName,
			Quantity:     p.Quantity,
			Cost: Cost{
				TotalSaleValue: r.Amount,
				TaxBreakup:     TaxBreakup{CGST: zeroTaxPercent, SGST: zeroTaxPercent, IGST: zeroTaxPercent},
			},
			SellerDetails: SellerDetails{SellerRegName: r.VendorName, GSTINID: r.GSTIN},
			HSN:           r.HSN,
			ItemAttributes: []ItemAttribute{
				{Name: "order_id", Value: r.OrderID},
				{Name: "invoice_id", Value: r.InvoiceID},
			},
			PickupInfo:  pickup,
			SmartChecks: []any{},
		}
	}

	weight := positive(r.DeadWeight)
	if weight == 0 {
		weight = positive(r.VolumetricWeight)
	}

	return Payload{
		ClientName:    merchantCode,
		GoodsCategory: GoodsCategory,
		Services: []Service{{
			ServiceCode: ServiceCode,
			ServiceDetails: []ServiceDetail{{
				ServiceLeg: ServiceLeg,
				ServiceData: ServiceData{
					DeliveryType: DeliveryType,
					Source: Source{Address: SourceAddress{
						FirstName:            r.CustomerName,
						AddressLine1:         r.CustomerAddress,
						AddressLine2:         r.City,
						Pincode:              r.Pincode,
						City:                 r.City,
						State:                r.State,
						PrimaryContactNumber: r.CustomerPhone,
					}},
					Destination: Destination{LocationCode: locationCode},
				},
				Shipment: Shipment{
					ClientReferenceID: r.OrderID,
					TrackingID:        FallbackTrackingID(now),
					ShipmentValue:     r.Amount,
					ShipmentDimensions: Dimensions{
						Length:  Measure{Value: orOne(positive(r.Length))},
						Breadth: Measure{Value: orOne(positive(r.Breadth))},
						Height:  Measure{Value: orOne(positive(r.Height))},
						Weight:  Measure{Value: orOne(weight)},
					},
					ShipmentItems: items,
				},
			}},
		}},
	}
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

// positive returns *v, or 0 when v is nil or not positive.
func positive(v *float64) float64 {
	if v == nil || *v <= 0 {
		return 0
	}
	return *v
}

func orOne(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
