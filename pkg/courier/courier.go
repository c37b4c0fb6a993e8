// Package courier provides an abstraction layer over courier backends.
package courier

import (
	"context"
)

// Courier defines the uniform contract every courier backend implements.
// Callers only ever see this interface; backend-specific payloads, status
// vocabularies and error bodies never leak past the adapter.
type Courier interface {
	// Name returns the courier identifier (e.g., "delhivery", "bluedart").
	Name() string

	// Authenticate obtains or refreshes the bearer credential for the
	// backend. Implementations cache the token with its real expiry and
	// never call the upstream login endpoint while a cached token is valid.
	Authenticate(ctx context.Context) (Token, error)

	// CalculateRate asks the backend to price a shipment. Legacy fallback:
	// the rate engine is authoritative whenever a rate card exists.
	CalculateRate(ctx context.Context, req *RateRequest) (*RateQuote, error)

	// BookShipment creates a shipment with the backend. A failed booking is
	// an error; no synthetic AWB is ever returned.
	BookShipment(ctx context.Context, req *ShipmentRequest) (*BookingResult, error)

	// TrackShipment returns tracking state for an AWB. On upstream failure
	// it returns a degraded result with manual-tracking instructions rather
	// than an error, so tracking never breaks the surrounding UI.
	TrackShipment(ctx context.Context, awb string) (*TrackingResult, error)

	// CancelShipment cancels a booked shipment.
	CancelShipment(ctx context.Context, awb string) (*CancelResult, error)

	// RequestPickup schedules a pickup for a set of AWBs.
	RequestPickup(ctx context.Context, awbs []string) (*PickupResult, error)
}
