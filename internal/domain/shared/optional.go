package shared

import (
	"bytes"
	"encoding/json"
)

// Optional holds a value together with an explicit presence flag.
// The zero value is absent.
type Optional[T any] struct {
	value   T
	present bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, present: true}
}

// None returns an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.present
}

// IsPresent reports whether a value was supplied.
func (o Optional[T]) IsPresent() bool {
	return o.present
}

// OrElse returns the value when present, otherwise def.
func (o Optional[T]) OrElse(def T) T {
	if o.present {
		return o.value
	}
	return def
}

// Or returns o when present, otherwise other.
func (o Optional[T]) Or(other Optional[T]) Optional[T] {
	if o.present {
		return o
	}
	return other
}

// MarshalJSON encodes an absent value as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.present {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON treats an explicit null the same as a missing key.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// SomeIf returns a present Optional only when ok is true.
func SomeIf[T any](v T, ok bool) Optional[T] {
	if !ok {
		return Optional[T]{}
	}
	return Some(v)
}

// NonEmpty returns a present Optional for a non-empty string.
func NonEmpty(s string) Optional[string] {
	return SomeIf(s, s != "")
}
