package order

import (
	"time"

	"github.com/ikkasa/orderhub/internal/domain/shared"
)

type (
	optString = shared.Optional[string]
	optFloat  = shared.Optional[float64]
)

// Patch is a partial order: every field carries an explicit present/absent
// state. Applying a patch only touches present fields.
type Patch struct {
	OrderID   optString                  `json:"orderId"`
	ShopifyID optString                  `json:"shopifyId"`
	OrderName optString                  `json:"orderName"`
	OrderDate shared.Optional[time.Time] `json:"orderDate"`

	CustomerName    optString `json:"customerName"`
	CustomerPhone   optString `json:"customerPhone"`
	CustomerEmail   optString `json:"customerEmail"`
	CustomerAddress optString `json:"customerAddress"`
	BillingAddress  optString `json:"billingAddress"`
	City            optString `json:"city"`
	State           optString `json:"state"`
	Pincode         optString `json:"pincode"`

	Products shared.Optional[[]LineItem] `json:"products"`

	Length           optFloat `json:"length"`
	Breadth          optFloat `json:"breadth"`
	Height           optFloat `json:"height"`
	DeadWeight       optFloat `json:"deadWeight"`
	VolumetricWeight optFloat `json:"volumetricWeight"`

	Amount            optFloat  `json:"amount"`
	Subtotal          optFloat  `json:"subtotal"`
	TotalTax          optFloat  `json:"totalTax"`
	TotalDiscounts    optFloat  `json:"totalDiscounts"`
	ShippingCharges   optFloat  `json:"shippingCharges"`
	Currency          optString `json:"currency"`
	PaymentMode       optString `json:"paymentMode"`
	FinancialStatus   optString `json:"financialStatus"`
	FulfillmentStatus optString `json:"fulfillmentStatus"`
	CGST              optFloat  `json:"cgst"`
	SGST              optFloat  `json:"sgst"`
	IGST              optFloat  `json:"igst"`
	HSNCode           optString `json:"hsnCode"`
	GSTINNumber       optString `json:"gstinNumber"`
	Category          optString `json:"category"`
	UnitPrice         optFloat  `json:"unitPrice"`
	AWB               optString `json:"awb"`
	ServiceTier       optString `json:"serviceTier"`

	VendorName       optString `json:"vendorName"`
	PickupAddress    optString `json:"pickupAddress"`
	PickupCity       optString `json:"pickupCity"`
	PickupState      optString `json:"pickupState"`
	PickupPincode    optString `json:"pickupPincode"`
	ReturnLabelLine1 optString `json:"returnLabelLine1"`
	ReturnLabelLine2 optString `json:"returnLabelLine2"`
	InvoiceReference optString `json:"invoiceReference"`

	Cancelled    shared.Optional[bool]       `json:"cancelled"`
	CancelledAt  shared.Optional[*time.Time] `json:"cancelledAt"`
	CancelReason optString                   `json:"cancelReason"`
	Tags         optString                   `json:"tags"`
	Note         optString                   `json:"note"`

	Status optString `json:"status"`
}

// Apply copies every present field of p onto o.
func (p Patch) Apply(o *Order) {
	setString(&o.OrderID, p.OrderID)
	setString(&o.ShopifyID, p.ShopifyID)
	setString(&o.OrderName, p.OrderName)
	if v, ok := p.OrderDate.Get(); ok {
		o.OrderDate = v
	}

	setString(&o.CustomerName, p.CustomerName)
	setString(&o.CustomerPhone, p.CustomerPhone)
	setString(&o.CustomerEmail, p.CustomerEmail)
	setString(&o.CustomerAddress, p.CustomerAddress)
	setString(&o.BillingAddress, p.BillingAddress)
	setString(&o.City, p.City)
	setString(&o.State, p.State)
	setString(&o.Pincode, p.Pincode)

	if v, ok := p.Products.Get(); ok {
		o.Products = append([]LineItem(nil), v...)
	}

	setFloat(&o.Length, p.Length)
	setFloat(&o.Breadth, p.Breadth)
	setFloat(&o.Height, p.Height)
	setFloat(&o.DeadWeight, p.DeadWeight)
	setFloat(&o.VolumetricWeight, p.VolumetricWeight)

	if v, ok := p.Amount.Get(); ok {
		o.Amount = v
	}
	setFloat(&o.Subtotal, p.Subtotal)
	setFloat(&o.TotalTax, p.TotalTax)
	setFloat(&o.TotalDiscounts, p.TotalDiscounts)
	setFloat(&o.ShippingCharges, p.ShippingCharges)
	setString(&o.Currency, p.Currency)
	setString(&o.PaymentMode, p.PaymentMode)
	setString(&o.FinancialStatus, p.FinancialStatus)
	setString(&o.FulfillmentStatus, p.FulfillmentStatus)
	setFloat(&o.CGST, p.CGST)
	setFloat(&o.SGST, p.SGST)
	setFloat(&o.IGST, p.IGST)
	setString(&o.HSNCode, p.HSNCode)
	setString(&o.GSTINNumber, p.GSTINNumber)
	setString(&o.Category, p.Category)
	setFloat(&o.UnitPrice, p.UnitPrice)
	setString(&o.AWB, p.AWB)
	setString(&o.ServiceTier, p.ServiceTier)

	setString(&o.VendorName, p.VendorName)
	setString(&o.PickupAddress, p.PickupAddress)
	setString(&o.PickupCity, p.PickupCity)
	setString(&o.PickupState, p.PickupState)
	setString(&o.PickupPincode, p.PickupPincode)
	setString(&o.ReturnLabelLine1, p.ReturnLabelLine1)
	setString(&o.ReturnLabelLine2, p.ReturnLabelLine2)
	setString(&o.InvoiceReference, p.InvoiceReference)

	if v, ok := p.Cancelled.Get(); ok {
		o.Cancelled = v
	}
	if v, ok := p.CancelledAt.Get(); ok {
		o.CancelledAt = v
	}
	setString(&o.CancelReason, p.CancelReason)
	setString(&o.Tags, p.Tags)
	setString(&o.Note, p.Note)

	setString(&o.Status, p.Status)
}

// Merge returns a patch where the present fields of next win over p.
func (p Patch) Merge(next Patch) Patch {
	return Patch{
		OrderID:           next.OrderID.Or(p.OrderID),
		ShopifyID:         next.ShopifyID.Or(p.ShopifyID),
		OrderName:         next.OrderName.Or(p.OrderName),
		OrderDate:         next.OrderDate.Or(p.OrderDate),
		CustomerName:      next.CustomerName.Or(p.CustomerName),
		CustomerPhone:     next.CustomerPhone.Or(p.CustomerPhone),
		CustomerEmail:     next.CustomerEmail.Or(p.CustomerEmail),
		CustomerAddress:   next.CustomerAddress.Or(p.CustomerAddress),
		BillingAddress:    next.BillingAddress.Or(p.BillingAddress),
		City:              next.City.Or(p.City),
		State:             next.State.Or(p.State),
		Pincode:           next.Pincode.Or(p.Pincode),
		Products:          next.Products.Or(p.Products),
		Length:            next.Length.Or(p.Length),
		Breadth:           next.Breadth.Or(p.Breadth),
		Height:            next.Height.Or(p.Height),
		DeadWeight:        next.DeadWeight.Or(p.DeadWeight),
		VolumetricWeight:  next.VolumetricWeight.Or(p.VolumetricWeight),
		Amount:            next.Amount.Or(p.Amount),
		Subtotal:          next.Subtotal.Or(p.Subtotal),
		TotalTax:          next.TotalTax.Or(p.TotalTax),
		TotalDiscounts:    next.TotalDiscounts.Or(p.TotalDiscounts),
		ShippingCharges:   next.ShippingCharges.Or(p.ShippingCharges),
		Currency:          next.Currency.Or(p.Currency),
		PaymentMode:       next.PaymentMode.Or(p.PaymentMode),
		FinancialStatus:   next.FinancialStatus.Or(p.FinancialStatus),
		FulfillmentStatus: next.FulfillmentStatus.Or(p.FulfillmentStatus),
		CGST:              next.CGST.Or(p.CGST),
		SGST:              next.SGST.Or(p.SGST),
		IGST:              next.IGST.Or(p.IGST),
		HSNCode:           next.HSNCode.Or(p.HSNCode),
		GSTINNumber:       next.GSTINNumber.Or(p.GSTINNumber),
		Category:          next.Category.Or(p.Category),
		UnitPrice:         next.UnitPrice.Or(p.UnitPrice),
		AWB:               next.AWB.Or(p.AWB),
		ServiceTier:       next.ServiceTier.Or(p.ServiceTier),
		VendorName:        next.VendorName.Or(p.VendorName),
		PickupAddress:     next.PickupAddress.Or(p.PickupAddress),
		PickupCity:        next.PickupCity.Or(p.PickupCity),
		PickupState:       next.PickupState.Or(p.PickupState),
		PickupPincode:     next.PickupPincode.Or(p.PickupPincode),
		ReturnLabelLine1:  next.ReturnLabelLine1.Or(p.ReturnLabelLine1),
		ReturnLabelLine2:  next.ReturnLabelLine2.Or(p.ReturnLabelLine2),
		InvoiceReference:  next.InvoiceReference.Or(p.InvoiceReference),
		Cancelled:         next.Cancelled.Or(p.Cancelled),
		CancelledAt:       next.CancelledAt.Or(p.CancelledAt),
		CancelReason:      next.CancelReason.Or(p.CancelReason),
		Tags:              next.Tags.Or(p.Tags),
		Note:              next.Note.Or(p.Note),
		Status:            next.Status.Or(p.Status),
	}
}

// WithDerivedFields fills the volumetric weight when all three dimensions are
// present, and the pickup fields from the customer fields when absent.
func (p Patch) WithDerivedFields() Patch {
	if !p.VolumetricWeight.IsPresent() {
		l, lok := p.Length.Get()
		b, bok := p.Breadth.Get()
		h, hok := p.Height.Get()
		if lok && bok && hok {
			p.VolumetricWeight = shared.Some(VolumetricWeight(l, b, h))
		}
	}
	p.PickupAddress = p.PickupAddress.Or(p.CustomerAddress)
	p.PickupCity = p.PickupCity.Or(p.City)
	p.PickupState = p.PickupState.Or(p.State)
	p.PickupPincode = p.PickupPincode.Or(p.Pincode)
	return p
}

// Fields lists the JSON names of the present fields.
func (p Patch) Fields() []string {
	presence := []struct {
		name string
		set  bool
	}{
		{"orderId", p.OrderID.IsPresent()},
		{"shopifyId", p.ShopifyID.IsPresent()},
		{"orderName", p.OrderName.IsPresent()},
		{"orderDate", p.OrderDate.IsPresent()},
		{"customerName", p.CustomerName.IsPresent()},
		{"customerPhone", p.CustomerPhone.IsPresent()},
		{"customerEmail", p.CustomerEmail.IsPresent()},
		{"customerAddress", p.CustomerAddress.IsPresent()},
		{"billingAddress", p.BillingAddress.IsPresent()},
		{"city", p.City.IsPresent()},
		{"state", p.State.IsPresent()},
		{"pincode", p.Pincode.IsPresent()},
		{"products", p.Products.IsPresent()},
		{"length", p.Length.IsPresent()},
		{"breadth", p.Breadth.IsPresent()},
		{"height", p.Height.IsPresent()},
		{"deadWeight", p.DeadWeight.IsPresent()},
		{"volumetricWeight", p.VolumetricWeight.IsPresent()},
		{"amount", p.Amount.IsPresent()},
		{"subtotal", p.Subtotal.IsPresent()},
		{"totalTax", p.TotalTax.IsPresent()},
		{"totalDiscounts", p.TotalDiscounts.IsPresent()},
		{"shippingCharges", p.ShippingCharges.IsPresent()},
		{"currency", p.Currency.IsPresent()},
		{"paymentMode", p.PaymentMode.IsPresent()},
		{"financialStatus", p.FinancialStatus.IsPresent()},
		{"fulfillmentStatus", p.FulfillmentStatus.IsPresent()},
		{"cgst", p.CGST.IsPresent()},
		{"sgst", p.SGST.IsPresent()},
		{"igst", p.IGST.IsPresent()},
		{"hsnCode", p.HSNCode.IsPresent()},
		{"gstinNumber", p.GSTINNumber.IsPresent()},
		{"category", p.Category.IsPresent()},
		{"unitPrice", p.UnitPrice.IsPresent()},
		{"awb", p.AWB.IsPresent()},
		{"serviceTier", p.ServiceTier.IsPresent()},
		{"vendorName", p.VendorName.IsPresent()},
		{"pickupAddress", p.PickupAddress.IsPresent()},
		{"pickupCity", p.PickupCity.IsPresent()},
		{"pickupState", p.PickupState.IsPresent()},
		{"pickupPincode", p.PickupPincode.IsPresent()},
		{"returnLabelLine1", p.ReturnLabelLine1.IsPresent()},
		{"returnLabelLine2", p.ReturnLabelLine2.IsPresent()},
		{"invoiceReference", p.InvoiceReference.IsPresent()},
		{"cancelled", p.Cancelled.IsPresent()},
		{"cancelledAt", p.CancelledAt.IsPresent()},
		{"cancelReason", p.CancelReason.IsPresent()},
		{"tags", p.Tags.IsPresent()},
		{"note", p.Note.IsPresent()},
		{"status", p.Status.IsPresent()},
	}
	fields := make([]string, 0, len(presence))
	for _, f := range presence {
		if f.set {
			fields = append(fields, f.name)
		}
	}
	return fields
}

// IsEmpty reports whether no field is present.
func (p Patch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// Validate rejects values that could never be stored.
func (p Patch) Validate() error {
	if items, ok := p.Products.Get(); ok {
		for _, item := range items {
			if item.Quantity < 0 {
				return NewValidationError("products", "quantity cannot be negative")
			}
		}
	}
	return nil
}

func setString(dst *string, v optString) {
	if s, ok := v.Get(); ok {
		*dst = s
	}
}

func setFloat(dst **float64, v optFloat) {
	if f, ok := v.Get(); ok {
		*dst = &f
	}
}
