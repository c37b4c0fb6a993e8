package courier

import (
	"encoding/json"
	"time"
)

// ShipmentStatus is the normalized status vocabulary across backends.
type ShipmentStatus string

const (
	StatusPending        ShipmentStatus = "pending"
	StatusBooked         ShipmentStatus = "booked"
	StatusPickedUp       ShipmentStatus = "picked_up"
	StatusInTransit      ShipmentStatus = "in_transit"
	StatusOutForDelivery ShipmentStatus = "out_for_delivery"
	StatusDelivered      ShipmentStatus = "delivered"
	StatusRTO            ShipmentStatus = "rto"
	StatusCancelled      ShipmentStatus = "cancelled"
	StatusException      ShipmentStatus = "exception"
	StatusUnknown        ShipmentStatus = "unknown"
)

// PaymentMode is how the consignee pays for the order.
type PaymentMode string

const (
	PaymentPrepaid PaymentMode = "prepaid"
	PaymentCOD     PaymentMode = "cod"
)

// Token is a cached bearer credential with its real expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Valid reports whether the token is usable at the given instant, with a
// conservative skew so a token is refreshed slightly before it expires.
func (t Token) Valid(now time.Time, skew time.Duration) bool {
	return t.Value != "" && now.Add(skew).Before(t.ExpiresAt)
}

// Address is a pickup or delivery address.
type Address struct {
	Name    string
	Phone   string
	Email   string
	Line1   string
	Line2   string
	City    string
	State   string
	Pincode string
	Country string
}

// Parcel describes the physical package.
type Parcel struct {
	WeightKg    float64
	LengthCm    float64
	WidthCm     float64
	HeightCm    float64
	Description string
}

// ShipmentRequest is the generic booking payload each adapter translates to
// its backend's own schema.
type ShipmentRequest struct {
	OrderID       string
	Reference     string
	Pickup        Address
	Delivery      Address
	Parcel        Parcel
	PaymentMode   PaymentMode
	CODAmount     float64
	DeclaredValue float64
	ProductName   string
}

// BookingResult is the normalized booking outcome. It is only ever produced
// for a successful booking; failures surface as errors.
type BookingResult struct {
	AWB         string
	TrackingID  string
	TrackingURL string
	Courier     string
	// Raw carries the provider's response body for audit logging.
	Raw json.RawMessage
}

// TrackingEvent is one scan in a shipment's history.
type TrackingEvent struct {
	Timestamp   time.Time
	Status      ShipmentStatus
	Detail      string
	Location    string
	CarrierCode string
}

// TrackingResult is the normalized tracking state. When Degraded is set the
// upstream was unreachable and ManualTrackingURL carries instructions for
// tracking on the courier's own site.
type TrackingResult struct {
	AWB               string
	Courier           string
	Status            ShipmentStatus
	StatusDetail      string
	Location          string
	Timestamp         time.Time
	History           []TrackingEvent
	Degraded          bool
	ManualTrackingURL string
}

// CancelResult is the normalized cancellation outcome.
type CancelResult struct {
	AWB     string
	Success bool
	Message string
}

// PickupResult is the normalized pickup-scheduling outcome.
type PickupResult struct {
	PickupID     string
	ScheduledFor time.Time
	AWBs         []string
	Message      string
}

// RateRequest asks a backend to price a route directly. Used only when no
// rate card covers the courier.
type RateRequest struct {
	OriginPincode      string
	DestinationPincode string
	WeightKg           float64
	PaymentMode        PaymentMode
	CODAmount          float64
	Express            bool
}

// RateQuote is a backend-computed price.
type RateQuote struct {
	Courier     string
	ProductName string
	Total       float64
	Currency    string
	EstimatedDays int
}
