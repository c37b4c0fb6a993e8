package rate

import "time"

// Mode is the transport mode a rate card prices.
type Mode string

const (
	ModeSurface  Mode = "surface"
	ModeAir      Mode = "air"
	ModeExpress  Mode = "express"
	ModeStandard Mode = "standard"
	ModePremium  Mode = "premium"
)

// DefaultRateBand is the seller tier applied when a seller has no explicit
// band assignment.
const DefaultRateBand = "RBX1"

// CardKey identifies a rate card within a rate band. The tuple is unique
// among active cards.
type CardKey struct {
	Courier     string
	ProductName string
	Mode        Mode
	Zone        Zone
}

// RateCard is a priced offering for one (courier, product, mode, zone, band)
// tuple. Cards are created by administrators and never mutated by shipment
// flows; retirement is a soft-disable via IsActive.
type RateCard struct {
	ID                    string
	Courier               string
	ProductName           string
	Mode                  Mode
	Zone                  Zone
	RateBand              string
	BaseRate              float64
	AdditionalRate        float64
	CODFlatAmount         float64
	CODPercent            float64
	RTOCharge             float64
	MinimumBillableWeight float64
	IsActive              bool
}

// Key returns the lookup tuple for the card.
func (c RateCard) Key() CardKey {
	return CardKey{Courier: c.Courier, ProductName: c.ProductName, Mode: c.Mode, Zone: c.Zone}
}

// SellerRateOverride is a sparse per-seller patch of one base rate card.
// A nil field inherits the base card value. Unique per (seller, courier,
// product, mode, zone).
type SellerRateOverride struct {
	ID             string
	SellerID       string
	BaseRateCardID string
	Courier        string
	ProductName    string
	Mode           Mode
	Zone           Zone

	BaseRate              *float64
	AdditionalRate        *float64
	CODFlatAmount         *float64
	CODPercent            *float64
	RTOCharge             *float64
	MinimumBillableWeight *float64

	IsActive  bool
	CreatedBy string
	UpdatedBy string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Key returns the lookup tuple for the override.
func (o SellerRateOverride) Key() CardKey {
	return CardKey{Courier: o.Courier, ProductName: o.ProductName, Mode: o.Mode, Zone: o.Zone}
}

// EffectiveRate is the materialized merge of a base card with a seller's
// override. Derived, never persisted.
type EffectiveRate struct {
	Courier               string
	ProductName           string
	Mode                  Mode
	Zone                  Zone
	RateBand              string
	BaseRate              float64
	AdditionalRate        float64
	CODFlatAmount         float64
	CODPercent            float64
	RTOCharge             float64
	MinimumBillableWeight float64

	IsOverride     bool
	OverrideID     string
	BaseRateCardID string
}

// Merge materializes the effective rate for a base card, applying the
// override field-by-field when one is present. A nil override field means
// "inherit the base value".
func Merge(base RateCard, override *SellerRateOverride) EffectiveRate {
	eff := EffectiveRate{
		Courier:               base.Courier,
		ProductName:           base.ProductName,
		Mode:                  base.Mode,
		Zone:                  base.Zone,
		RateBand:              base.RateBand,
		BaseRate:              base.BaseRate,
		AdditionalRate:        base.AdditionalRate,
		CODFlatAmount:         base.CODFlatAmount,
		CODPercent:            base.CODPercent,
		RTOCharge:             base.RTOCharge,
		MinimumBillableWeight: base.MinimumBillableWeight,
		BaseRateCardID:        base.ID,
	}
	if override == nil {
		return eff
	}
	eff.IsOverride = true
	eff.OverrideID = override.ID
	if override.BaseRate != nil {
		eff.BaseRate = *override.BaseRate
	}
	if override.AdditionalRate != nil {
		eff.AdditionalRate = *override.AdditionalRate
	}
	if override.CODFlatAmount != nil {
		eff.CODFlatAmount = *override.CODFlatAmount
	}
	if override.CODPercent != nil {
		eff.CODPercent = *override.CODPercent
	}
	if override.RTOCharge != nil {
		eff.RTOCharge = *override.RTOCharge
	}
	if override.MinimumBillableWeight != nil {
		eff.MinimumBillableWeight = *override.MinimumBillableWeight
	}
	return eff
}

// PincodeRecord is the read-only serviceability record for one pincode,
// enriched by a batch job outside this layer.
type PincodeRecord struct {
	Pincode       string
	District      string
	State         string
	IsMetro       bool
	IsServiceable bool
	Couriers      []string
}
