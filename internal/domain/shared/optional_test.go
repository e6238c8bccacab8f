package shared

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptional(t *testing.T) {
	t.Run("zero value is absent", func(t *testing.T) {
		var o Optional[string]
		_, ok := o.Get()
		assert.False(t, ok)
		assert.Equal(t, "x", o.OrElse("x"))
	})

	t.Run("Some keeps zero values present", func(t *testing.T) {
		o := Some(0.0)
		v, ok := o.Get()
		assert.True(t, ok)
		assert.Equal(t, 0.0, v)
	})

	t.Run("Or prefers the receiver", func(t *testing.T) {
		assert.Equal(t, "a", Some("a").Or(Some("b")).OrElse(""))
		assert.Equal(t, "b", None[string]().Or(Some("b")).OrElse(""))
	})

	t.Run("NonEmpty", func(t *testing.T) {
		assert.False(t, NonEmpty("").IsPresent())
		assert.True(t, NonEmpty("x").IsPresent())
	})
}

func TestOptionalJSON(t *testing.T) {
	type body struct {
		Name  Optional[string]  `json:"name"`
		Count Optional[int]     `json:"count"`
		Price Optional[float64] `json:"price"`
	}

	var b body
	require.NoError(t, json.Unmarshal([]byte(`{"name":"","price":null}`), &b))
	assert.True(t, b.Name.IsPresent())
	assert.False(t, b.Count.IsPresent())
	assert.False(t, b.Price.IsPresent())

	out, err := json.Marshal(body{Name: Some("x")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"x","count":null,"price":null}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"count":"abc"}`), &b))
}
