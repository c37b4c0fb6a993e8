package xpressbees

import (
	"context"
)

// APIClient defines the Xpressbees API operations the adapter depends on.
// Xpressbees authenticates with an email/password login that returns a JWT;
// the adapter owns the token lifecycle, so every call takes the current token.
type APIClient interface {
	// Login exchanges email/password credentials for a JWT.
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)

	// Serviceability prices a route and reports whether it is serviceable.
	Serviceability(ctx context.Context, token string, req *ServiceabilityRequest) (*ServiceabilityResponse, error)

	// CreateShipment books a shipment.
	CreateShipment(ctx context.Context, token string, req *ShipmentRequest) (*ShipmentResponse, error)

	// TrackShipment fetches tracking state for an AWB.
	TrackShipment(ctx context.Context, token, awb string) (*TrackResponse, error)

	// CancelShipment cancels a booked shipment.
	CancelShipment(ctx context.Context, token, awb string) (*CancelResponse, error)

	// CreatePickup schedules a pickup run.
	CreatePickup(ctx context.Context, token string, req *PickupRequest) (*PickupResponse, error)
}

// ============================================================================
// API Request/Response Types (match Xpressbees REST API structure)
// ============================================================================

// LoginRequest carries the portal credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the JWT in data. Xpressbees tokens are valid for
// 24 hours but the response does not say so.
type LoginResponse struct {
	Status  bool   `json:"status"`
	Data    string `json:"data"`
	Message string `json:"message,omitempty"`
}

// ServiceabilityRequest prices a route.
type ServiceabilityRequest struct {
	OriginPincode      string  `json:"origin"`
	DestinationPincode string  `json:"destination"`
	PaymentType        string  `json:"payment_type"` // "cod" or "prepaid"
	OrderAmount        float64 `json:"order_amount"`
	Weight             float64 `json:"weight"` // grams
	Length             float64 `json:"length,omitempty"`
	Breadth            float64 `json:"breadth,omitempty"`
	Height             float64 `json:"height,omitempty"`
}

// ServiceabilityResponse lists the serviceable products with charges.
type ServiceabilityResponse struct {
	Status bool             `json:"status"`
	Data   []ServiceOption  `json:"data"`
}

// ServiceOption is one product's price on the route.
type ServiceOption struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	FreightCharge float64 `json:"freight_charges"`
	CODCharge    float64 `json:"cod_charges"`
	TotalCharge  float64 `json:"total_charges"`
	EDD          string  `json:"edd,omitempty"`
}

// ShipmentRequest books a shipment via /shipments2.
type ShipmentRequest struct {
	OrderNumber     string           `json:"order_number"`
	PaymentType     string           `json:"payment_type"`
	OrderAmount     float64          `json:"order_amount"`
	PackageWeight   float64          `json:"package_weight"` // grams
	PackageLength   float64          `json:"package_length"`
	PackageBreadth  float64          `json:"package_breadth"`
	PackageHeight   float64          `json:"package_height"`
	Consignee       Party            `json:"consignee"`
	Pickup          Party            `json:"pickup"`
	CollectableAmount float64        `json:"collectable_amount"`
	CourierID       int              `json:"courier_id,omitempty"`
}

// Party is a consignee or pickup location.
type Party struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Address2 string `json:"address_2,omitempty"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
	Phone    string `json:"phone"`
}

// ShipmentResponse is the booking result.
type ShipmentResponse struct {
	Status  bool         `json:"status"`
	Data    ShipmentData `json:"data"`
	Message string       `json:"message,omitempty"`
}

// ShipmentData carries the booked shipment's identifiers.
type ShipmentData struct {
	ShipmentID int    `json:"shipment_id"`
	AWBNumber  string `json:"awb_number"`
	LabelURL   string `json:"label"`
}

// TrackResponse carries shipment status plus scan history.
type TrackResponse struct {
	Status bool      `json:"status"`
	Data   TrackData `json:"data"`
}

// TrackData is the tracked shipment state.
type TrackData struct {
	AWBNumber string      `json:"awb_number"`
	Status    string      `json:"status"`
	History   []ScanEvent `json:"history"`
}

// ScanEvent is one tracking scan.
type ScanEvent struct {
	StatusCode string `json:"status_code"`
	Message    string `json:"message"`
	Location   string `json:"location"`
	EventTime  string `json:"event_time"` // 2006-01-02 15:04:05
}

// CancelResponse is the cancellation result.
type CancelResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message,omitempty"`
}

// PickupRequest schedules a pickup run.
type PickupRequest struct {
	PickupDate string   `json:"pickup_date"` // YYYY-MM-DD
	AWBNumbers []string `json:"awb_numbers"`
}

// PickupResponse is the pickup scheduling result.
type PickupResponse struct {
	Status   bool   `json:"status"`
	PickupID string `json:"pickup_id"`
	Message  string `json:"message,omitempty"`
}

// APIError represents an error from the Xpressbees API.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Message
}
