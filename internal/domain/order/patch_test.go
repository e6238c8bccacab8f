package order

import (
	"encoding/json"
	"testing"

	"github.com/ikkasa/orderhub/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestPatchApply(t *testing.T) {
	t.Run("absent fields leave the order untouched", func(t *testing.T) {
		o := &Order{
			OrderID:       "1001",
			CustomerName:  "Asha",
			CustomerPhone: "9999999999",
			Length:        ptr(10),
			Amount:        499,
			Status:        StatusNew,
		}

		Patch{CustomerPhone: shared.Some("8888888888")}.Apply(o)

		assert.Equal(t, "Asha", o.CustomerName)
		assert.Equal(t, "8888888888", o.CustomerPhone)
		assert.Equal(t, 10.0, *o.Length)
		assert.Equal(t, 499.0, o.Amount)
		assert.Equal(t, StatusNew, o.Status)
	})

	t.Run("present zero values are applied", func(t *testing.T) {
		o := &Order{Amount: 499, Note: "gift"}
		Patch{Amount: shared.Some(0.0), Note: shared.Some("")}.Apply(o)
		assert.Equal(t, 0.0, o.Amount)
		assert.Equal(t, "", o.Note)
	})

	t.Run("products replaced wholesale", func(t *testing.T) {
		o := &Order{Products: []LineItem{{ProductName: "a", Quantity: 1}, {ProductName: "b", Quantity: 2}}}
		items := []LineItem{{ProductName: "c", Quantity: 3}}
		Patch{Products: shared.Some(items)}.Apply(o)
		require.Len(t, o.Products, 1)
		items[0].ProductName = "mutated"
		assert.Equal(t, "c", o.Products[0].ProductName)
	})
}

func TestPatchMerge(t *testing.T) {
	first := Patch{OrderID: shared.Some("1"), City: shared.Some("Pune"), Amount: shared.Some(10.0)}
	second := Patch{City: shared.Some("Mumbai"), Pincode: shared.Some("400001")}

	merged := first.Merge(second)

	assert.Equal(t, "1", merged.OrderID.OrElse(""))
	assert.Equal(t, "Mumbai", merged.City.OrElse(""))
	assert.Equal(t, "400001", merged.Pincode.OrElse(""))
	assert.Equal(t, 10.0, merged.Amount.OrElse(0))
	assert.False(t, merged.State.IsPresent())
}

func TestPatchWithDerivedFields(t *testing.T) {
	t.Run("volumetric weight needs all three dimensions", func(t *testing.T) {
		p := Patch{Length: shared.Some(30.0), Breadth: shared.Some(20.0)}.WithDerivedFields()
		assert.False(t, p.VolumetricWeight.IsPresent())

		p = Patch{Length: shared.Some(30.0), Breadth: shared.Some(20.0), Height: shared.Some(10.0)}.WithDerivedFields()
		assert.Equal(t, 1.2, p.VolumetricWeight.OrElse(0))
	})

	t.Run("pickup falls back to customer fields", func(t *testing.T) {
		p := Patch{
			CustomerAddress: shared.Some("12 MG Road"),
			City:            shared.Some("Bengaluru"),
			State:           shared.Some("KA"),
			Pincode:         shared.Some("560001"),
			PickupCity:      shared.Some("Mysuru"),
		}.WithDerivedFields()

		assert.Equal(t, "12 MG Road", p.PickupAddress.OrElse(""))
		assert.Equal(t, "Mysuru", p.PickupCity.OrElse(""))
		assert.Equal(t, "KA", p.PickupState.OrElse(""))
		assert.Equal(t, "560001", p.PickupPincode.OrElse(""))
	})

	t.Run("nothing invented when customer fields absent", func(t *testing.T) {
		p := Patch{}.WithDerivedFields()
		assert.True(t, p.IsEmpty())
	})
}

func TestPatchJSON(t *testing.T) {
	var p Patch
	err := json.Unmarshal([]byte(`{"customerName":"Asha","city":null,"amount":0,"products":[{"productName":"Kurta","quantity":2}]}`), &p)
	require.NoError(t, err)

	assert.Equal(t, []string{"customerName", "products", "amount"}, p.Fields())
	assert.False(t, p.City.IsPresent(), "null is treated as absent")
	assert.Equal(t, 0.0, p.Amount.OrElse(-1))
	items, _ := p.Products.Get()
	assert.Equal(t, 2, items[0].Quantity)
}

func TestPatchValidate(t *testing.T) {
	assert.NoError(t, Patch{}.Validate())
	err := Patch{Products: shared.Some([]LineItem{{ProductName: "x", Quantity: -2}})}.Validate()
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "products", vErr.Field)
}
