package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVolumetricWeight(t *testing.T) {
	tests := []struct {
		name             string
		l, b, h, expects float64
	}{
		{"unit cube", 1, 1, 1, 0.0002},
		{"shoebox", 30, 20, 10, 1.2},
		{"exact divisor", 50, 10, 10, 1},
		{"large carton", 100, 50, 40, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.l*tt.b*tt.h/5000, VolumetricWeight(tt.l, tt.b, tt.h))
			assert.InDelta(t, tt.expects, VolumetricWeight(tt.l, tt.b, tt.h), 1e-9)
		})
	}
}
