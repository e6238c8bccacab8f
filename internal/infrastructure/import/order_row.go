package csvimport

import (
	"math"
	"strconv"
	"strings"

	"github.com/ikkasa/orderhub/internal/domain/order"
	"github.com/ikkasa/orderhub/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Spreadsheet column headers
const (
	ColOrderNo          = "Order no"
	ColAWB              = "AWB"
	ColCustomerName     = "Customer Name"
	ColMobile           = "mobile"
	ColAddress          = "Address"
	ColCity             = "City"
	ColState            = "State"
	ColPincode          = "Pincode"
	ColWeight           = "Weight"
	ColLength           = "length (CM)"
	ColWidth            = "width (CM)"
	ColHeight           = "height (CM)"
	ColProductName      = "product Name"
	ColBoxQty           = "Box QTY"
	ColPackageAmount    = "Package amount"
	ColCODAmount        = "COD amount"
	ColCGST             = "CGST"
	ColSGST             = "SGST"
	ColIGST             = "IGST"
	ColHSNCode          = "hsn_code"
	ColGSTIN            = "GSTIN Number"
	ColCategory         = "Category"
	ColUnitPrice        = "Unit Price"
	ColPickupFacility   = "Pickup Facility Name"
	ColPickupCity       = "Pickup City"
	ColPickupState      = "Pickup State"
	ColPickupPincode    = "Pickup Pincode"
	ColReturnLabelLine1 = "Return Label Line 1"
	ColReturnLabelLine2 = "Return Label Line 2"
	ColServiceTier      = "ServiceTier"
	ColInvoiceReference = "invoice_reference"
)

// RowNormalizer maps a spreadsheet row to an order patch. Empty cells and
// cells that are not numbers are left absent.
type RowNormalizer struct{}

var _ order.Normalizer[*Row] = RowNormalizer{}

// Normalize implements order.Normalizer
func (RowNormalizer) Normalize(row *Row) order.Patch {
	p := order.Patch{
		OrderID:         shared.NonEmpty(row.Get(ColOrderNo)),
		AWB:             shared.NonEmpty(row.Get(ColAWB)),
		CustomerName:    shared.NonEmpty(row.Get(ColCustomerName)),
		CustomerPhone:   shared.NonEmpty(row.Get(ColMobile)),
		CustomerAddress: shared.NonEmpty(row.Get(ColAddress)),
		City:            shared.NonEmpty(row.Get(ColCity)),
		State:           shared.NonEmpty(row.Get(ColState)),
		Pincode:         shared.NonEmpty(row.Get(ColPincode)),

		DeadWeight: ParseNumber(row.Get(ColWeight)),
		Length:     ParseNumber(row.Get(ColLength)),
		Breadth:    ParseNumber(row.Get(ColWidth)),
		Height:     ParseNumber(row.Get(ColHeight)),

		Amount:      ParseNumber(row.Get(ColPackageAmount)),
		CGST:        ParseNumber(row.Get(ColCGST)),
		SGST:        ParseNumber(row.Get(ColSGST)),
		IGST:        ParseNumber(row.Get(ColIGST)),
		HSNCode:     shared.NonEmpty(row.Get(ColHSNCode)),
		GSTINNumber: shared.NonEmpty(row.Get(ColGSTIN)),
		Category:    shared.NonEmpty(row.Get(ColCategory)),
		UnitPrice:   ParseNumber(row.Get(ColUnitPrice)),

		PickupAddress: shared.NonEmpty(row.FirstOf(ColPickupFacility, ColAddress)),
		PickupCity:    shared.NonEmpty(row.FirstOf(ColPickupCity, ColCity)),
		PickupState:   shared.NonEmpty(row.FirstOf(ColPickupState, ColState)),
		PickupPincode: shared.NonEmpty(row.FirstOf(ColPickupPincode, ColPincode)),

		ReturnLabelLine1: shared.NonEmpty(row.Get(ColReturnLabelLine1)),
		ReturnLabelLine2: shared.NonEmpty(row.Get(ColReturnLabelLine2)),
		ServiceTier:      shared.NonEmpty(row.Get(ColServiceTier)),
		InvoiceReference: shared.NonEmpty(row.Get(ColInvoiceReference)),
	}

	if name := row.Get(ColProductName); name != "" {
		p.Products = shared.Some([]order.LineItem{{
			ProductName: name,
			Quantity:    parseQuantity(row.Get(ColBoxQty)),
		}})
	}

	// Without a COD column the payment mode is not known, and merging must
	// not overwrite the stored one.
	if cod := ParseNumber(row.Get(ColCODAmount)); cod.IsPresent() {
		p.PaymentMode = shared.Some(order.InferPaymentMode(order.PaymentSignals{CODAmount: cod}))
	}

	return p.WithDerivedFields()
}

// ParseNumber parses a decimal cell. Blank, malformed and non-finite values
// are absent.
func ParseNumber(s string) shared.Optional[float64] {
	s = strings.TrimSpace(s)
	if s == "" {
		return shared.None[float64]()
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return shared.None[float64]()
	}
	return shared.Some(d.InexactFloat64())
}

var maxQuantity = decimal.NewFromInt(math.MaxInt32)

// parseQuantity returns the integer part of s, or 1 when s is blank, zero,
// not a number or beyond the int32 range.
func parseQuantity(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 32); err == nil && n != 0 {
		return int(n)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 1
	}
	d = d.Truncate(0)
	if d.IsZero() || d.Abs().GreaterThan(maxQuantity) {
		return 1
	}
	return int(d.IntPart())
}
