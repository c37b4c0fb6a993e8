package repository

import (
	"fmt"

	"github.com/shipdesk/logistics/pkg/rate"
)

// SeedDemo loads a small realistic dataset into an in-memory repository so
// the service is usable without a database (mock mode, local development).
func SeedDemo(repo *Memory) {
	zones := []rate.Zone{
		rate.ZoneWithinCity,
		rate.ZoneMetroToMetro,
		rate.ZoneRestOfIndia,
		rate.ZoneNorthEastSpecial,
	}
	// Base rates per zone, cheapest within-city.
	surfaceBase := map[rate.Zone]float64{
		rate.ZoneWithinCity:       25,
		rate.ZoneMetroToMetro:     30,
		rate.ZoneRestOfIndia:      42,
		rate.ZoneNorthEastSpecial: 60,
	}

	id := 0
	nextID := func() string {
		id++
		return fmt.Sprintf("seed-card-%02d", id)
	}

	for _, zone := range zones {
		repo.AddRateCard(rate.RateCard{
			ID:                    nextID(),
			Courier:               "delhivery",
			ProductName:           "Delhivery Surface",
			Mode:                  rate.ModeSurface,
			Zone:                  zone,
			RateBand:              rate.DefaultRateBand,
			BaseRate:              surfaceBase[zone],
			AdditionalRate:        15,
			CODFlatAmount:         25,
			CODPercent:            1.5,
			RTOCharge:             surfaceBase[zone],
			MinimumBillableWeight: 0.5,
			IsActive:              true,
		})
		repo.AddRateCard(rate.RateCard{
			ID:                    nextID(),
			Courier:               "xpressbees",
			ProductName:           "Xpressbees Surface",
			Mode:                  rate.ModeSurface,
			Zone:                  zone,
			RateBand:              rate.DefaultRateBand,
			BaseRate:              surfaceBase[zone] - 2,
			AdditionalRate:        18,
			CODFlatAmount:         30,
			CODPercent:            2,
			RTOCharge:             surfaceBase[zone],
			MinimumBillableWeight: 0.5,
			IsActive:              true,
		})
	}
	// Air product on the metro lane only.
	repo.AddRateCard(rate.RateCard{
		ID:                    nextID(),
		Courier:               "delhivery",
		ProductName:           "Delhivery Air",
		Mode:                  rate.ModeAir,
		Zone:                  rate.ZoneMetroToMetro,
		RateBand:              rate.DefaultRateBand,
		BaseRate:              55,
		AdditionalRate:        28,
		CODFlatAmount:         25,
		CODPercent:            1.5,
		RTOCharge:             55,
		MinimumBillableWeight: 0.5,
		IsActive:              true,
	})

	seedPincodes := []rate.PincodeRecord{
		{Pincode: "110001", District: "New Delhi", State: "Delhi", IsMetro: true, IsServiceable: true, Couriers: []string{"delhivery", "xpressbees", "bluedart", "ekart"}},
		{Pincode: "400001", District: "Mumbai", State: "Maharashtra", IsMetro: true, IsServiceable: true, Couriers: []string{"delhivery", "xpressbees", "bluedart", "ekart", "shadowfax"}},
		{Pincode: "560001", District: "Bengaluru Urban", State: "Karnataka", IsMetro: true, IsServiceable: true, Couriers: []string{"delhivery", "xpressbees", "bluedart", "ekart", "shadowfax"}},
		{Pincode: "781001", District: "Kamrup", State: "Assam", IsServiceable: true, Couriers: []string{"delhivery", "ekart"}},
		{Pincode: "831001", District: "East Singhbhum", State: "Jharkhand", IsServiceable: true, Couriers: []string{"delhivery", "xpressbees"}},
		{Pincode: "193501", District: "Kupwara", State: "Jammu and Kashmir", IsServiceable: false},
	}
	for _, record := range seedPincodes {
		repo.AddPincode(record)
	}
}
