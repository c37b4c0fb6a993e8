package rate_test

import (
	"testing"

	"github.com/shipdesk/logistics/pkg/rate"
	"github.com/stretchr/testify/assert"
)

func TestVolumetricWeight(t *testing.T) {
	tests := []struct {
		name    string
		dims    rate.Dimensions
		divisor float64
		want    float64
	}{
		{"standard box", rate.Dimensions{Length: 50, Width: 40, Height: 30}, 5000, 12},
		{"small parcel", rate.Dimensions{Length: 20, Width: 15, Height: 10}, 5000, 0.6},
		{"all dimensions missing default to 10cm", rate.Dimensions{}, 5000, 0.2},
		{"partial dimensions default", rate.Dimensions{Length: 50}, 5000, 1},
		{"zero divisor falls back to default", rate.Dimensions{Length: 50, Width: 40, Height: 30}, 0, 12},
		{"courier-specific divisor", rate.Dimensions{Length: 50, Width: 40, Height: 30}, 4000, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rate.VolumetricWeight(tt.dims, tt.divisor)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestChargeableWeight(t *testing.T) {
	dims := rate.Dimensions{Length: 50, Width: 40, Height: 30} // 12kg volumetric

	t.Run("volumetric dominates light package", func(t *testing.T) {
		assert.InDelta(t, 12.0, rate.ChargeableWeight(2, dims, 5000), 1e-9)
	})
	t.Run("actual dominates dense package", func(t *testing.T) {
		assert.InDelta(t, 18.0, rate.ChargeableWeight(18, dims, 5000), 1e-9)
	})
	t.Run("no dimensions uses actual above default volumetric", func(t *testing.T) {
		assert.InDelta(t, 1.2, rate.ChargeableWeight(1.2, rate.Dimensions{}, 5000), 1e-9)
	})
}

func TestChargeableWeight_MonotonicInActualWeight(t *testing.T) {
	dims := rate.Dimensions{Length: 30, Width: 20, Height: 20}
	prev := 0.0
	for w := 0.5; w <= 20; w += 0.5 {
		got := rate.ChargeableWeight(w, dims, 5000)
		assert.GreaterOrEqual(t, got, prev, "chargeable weight must never decrease as actual weight grows")
		prev = got
	}
}
