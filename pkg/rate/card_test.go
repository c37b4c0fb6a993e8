package rate_test

import (
	"testing"

	"github.com/shipdesk/logistics/pkg/rate"
	"github.com/stretchr/testify/assert"
)

func f64(v float64) *float64 { return &v }

func baseCard() rate.RateCard {
	return rate.RateCard{
		ID:                    "card-1",
		Courier:               "delhivery",
		ProductName:           "Delhivery Surface",
		Mode:                  rate.ModeSurface,
		Zone:                  rate.ZoneMetroToMetro,
		RateBand:              rate.DefaultRateBand,
		BaseRate:              30,
		AdditionalRate:        15,
		CODFlatAmount:         25,
		CODPercent:            1.5,
		RTOCharge:             40,
		MinimumBillableWeight: 0.5,
		IsActive:              true,
	}
}

func TestMerge_NoOverrideInheritsEverything(t *testing.T) {
	eff := rate.Merge(baseCard(), nil)

	assert.Equal(t, 30.0, eff.BaseRate)
	assert.Equal(t, 15.0, eff.AdditionalRate)
	assert.Equal(t, 25.0, eff.CODFlatAmount)
	assert.False(t, eff.IsOverride)
	assert.Equal(t, "card-1", eff.BaseRateCardID)
}

func TestMerge_SparseOverride(t *testing.T) {
	override := &rate.SellerRateOverride{
		ID:       "ov-1",
		SellerID: "seller-9",
		BaseRate: f64(25),
		// AdditionalRate and the rest are nil: inherit from the base card.
	}

	eff := rate.Merge(baseCard(), override)

	assert.Equal(t, 25.0, eff.BaseRate, "overridden field takes the override value")
	assert.Equal(t, 15.0, eff.AdditionalRate, "nil field inherits the base value")
	assert.Equal(t, 25.0, eff.CODFlatAmount)
	assert.Equal(t, 1.5, eff.CODPercent)
	assert.True(t, eff.IsOverride)
	assert.Equal(t, "ov-1", eff.OverrideID)
}

func TestMerge_FullOverride(t *testing.T) {
	override := &rate.SellerRateOverride{
		ID:                    "ov-2",
		BaseRate:              f64(20),
		AdditionalRate:        f64(10),
		CODFlatAmount:         f64(15),
		CODPercent:            f64(1),
		RTOCharge:             f64(30),
		MinimumBillableWeight: f64(1),
	}

	eff := rate.Merge(baseCard(), override)

	assert.Equal(t, 20.0, eff.BaseRate)
	assert.Equal(t, 10.0, eff.AdditionalRate)
	assert.Equal(t, 15.0, eff.CODFlatAmount)
	assert.Equal(t, 1.0, eff.CODPercent)
	assert.Equal(t, 30.0, eff.RTOCharge)
	assert.Equal(t, 1.0, eff.MinimumBillableWeight)
}

func TestMerge_ZeroValueOverrideIsExplicit(t *testing.T) {
	// An explicit zero differs from a nil field: it sets the charge to zero
	// rather than inheriting.
	override := &rate.SellerRateOverride{ID: "ov-3", CODFlatAmount: f64(0)}

	eff := rate.Merge(baseCard(), override)

	assert.Equal(t, 0.0, eff.CODFlatAmount)
	assert.Equal(t, 30.0, eff.BaseRate)
}

func TestCardKey_Uniqueness(t *testing.T) {
	a := baseCard()
	b := baseCard()
	b.Zone = rate.ZoneRestOfIndia

	assert.Equal(t, a.Key(), baseCard().Key())
	assert.NotEqual(t, a.Key(), b.Key())
}
