// Package rate implements zone classification, chargeable-weight resolution
// and rate-card based pricing for shipments.
package rate

// Zone is a coarse geographic pricing category derived from the
// origin/destination pincode pair.
type Zone string

const (
	ZoneWithinCity       Zone = "within_city"
	ZoneWithinState      Zone = "within_state"
	ZoneWithinRegion     Zone = "within_region"
	ZoneMetroToMetro     Zone = "metro_to_metro"
	ZoneRestOfIndia      Zone = "rest_of_india"
	ZoneSpecial          Zone = "special"
	ZoneNorthEastSpecial Zone = "north_east_special"
)

// metroPrefixes maps the 3-digit pincode prefix of major metro areas to the
// city name. The table is static; pincode allocation does not change at
// request time.
var metroPrefixes = map[string]string{
	"110": "Delhi",
	"400": "Mumbai",
	"560": "Bengaluru",
	"600": "Chennai",
	"700": "Kolkata",
	"500": "Hyderabad",
	"380": "Ahmedabad",
	"411": "Pune",
}

// northEastStates is the fixed set of states billed under the North-East
// special zone.
var northEastStates = map[string]bool{
	"Arunachal Pradesh": true,
	"Assam":             true,
	"Manipur":           true,
	"Meghalaya":         true,
	"Mizoram":           true,
	"Nagaland":          true,
	"Sikkim":            true,
	"Tripura":           true,
}

// ClassifyZone maps an origin/destination pincode pair to a pricing zone.
// It is a pure function over the static prefix table. Decision order, first
// match wins:
//
//  1. destination prefix is a metro prefix        -> MetroToMetro
//  2. destination state is a North-East state     -> NorthEastSpecial
//  3. origin and destination share a metro prefix -> WithinCity
//  4. otherwise                                   -> RestOfIndia
//
// Unknown or malformed pincodes fall through to RestOfIndia.
func ClassifyZone(originPincode, destinationPincode, destinationState string) Zone {
	originPrefix := pincodePrefix(originPincode)
	destPrefix := pincodePrefix(destinationPincode)

	if _, ok := metroPrefixes[destPrefix]; ok {
		if originPrefix == destPrefix {
			return ZoneWithinCity
		}
		return ZoneMetroToMetro
	}
	if northEastStates[destinationState] {
		return ZoneNorthEastSpecial
	}
	if _, ok := metroPrefixes[originPrefix]; ok && originPrefix == destPrefix {
		return ZoneWithinCity
	}
	return ZoneRestOfIndia
}

// MetroCity returns the metro city for a pincode, if any.
func MetroCity(pincode string) (string, bool) {
	city, ok := metroPrefixes[pincodePrefix(pincode)]
	return city, ok
}

func pincodePrefix(pincode string) string {
	if len(pincode) < 3 {
		return ""
	}
	for i := 0; i < 3; i++ {
		if pincode[i] < '0' || pincode[i] > '9' {
			return ""
		}
	}
	return pincode[:3]
}
