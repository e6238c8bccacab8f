package order

// Normalizer maps one external record shape onto a Patch holding only the
// fields that source can supply.
type Normalizer[R any] interface {
	Normalize(record R) Patch
}

// NormalizerFunc adapts a plain function to Normalizer.
type NormalizerFunc[R any] func(record R) Patch

// Normalize calls f(record).
func (f NormalizerFunc[R]) Normalize(record R) Patch {
	return f(record)
}

// NormalizeAll applies n to every record, preserving order.
func NormalizeAll[R any](n Normalizer[R], records []R) []Patch {
	out := make([]Patch, len(records))
	for i, r := range records {
		out[i] = n.Normalize(r)
	}
	return out
}
