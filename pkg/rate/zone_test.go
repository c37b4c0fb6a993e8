package rate_test

import (
	"testing"

	"github.com/shipdesk/logistics/pkg/rate"
	"github.com/stretchr/testify/assert"
)

func TestClassifyZone(t *testing.T) {
	tests := []struct {
		name      string
		origin    string
		dest      string
		destState string
		want      rate.Zone
	}{
		{"same metro prefix", "400001", "400099", "Maharashtra", rate.ZoneWithinCity},
		{"metro to metro", "400001", "110001", "Delhi", rate.ZoneMetroToMetro},
		{"non-metro origin to metro dest", "831001", "560001", "Karnataka", rate.ZoneMetroToMetro},
		{"north east destination", "400001", "781001", "Assam", rate.ZoneNorthEastSpecial},
		{"sikkim destination", "110001", "737101", "Sikkim", rate.ZoneNorthEastSpecial},
		{"rest of india", "400001", "831001", "Jharkhand", rate.ZoneRestOfIndia},
		{"unknown destination pincode", "400001", "999999", "", rate.ZoneRestOfIndia},
		{"malformed destination", "400001", "ab", "", rate.ZoneRestOfIndia},
		{"malformed origin to metro", "xx", "600001", "Tamil Nadu", rate.ZoneMetroToMetro},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rate.ClassifyZone(tt.origin, tt.dest, tt.destState)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyZone_Deterministic(t *testing.T) {
	// Same inputs always classify the same way; the prefix table is static.
	for i := 0; i < 100; i++ {
		assert.Equal(t, rate.ZoneMetroToMetro, rate.ClassifyZone("400001", "700001", "West Bengal"))
	}
}

func TestClassifyZone_MetroBeatsNorthEast(t *testing.T) {
	// A metro destination prefix wins even when the state field claims a
	// North-East state; the pincode is authoritative.
	got := rate.ClassifyZone("400001", "700001", "Assam")
	assert.Equal(t, rate.ZoneMetroToMetro, got)
}

func TestMetroCity(t *testing.T) {
	city, ok := rate.MetroCity("560034")
	assert.True(t, ok)
	assert.Equal(t, "Bengaluru", city)

	_, ok = rate.MetroCity("831001")
	assert.False(t, ok)
}
