package ekart

import (
	"context"
)

// APIClient defines the Ekart Logistics API operations the adapter depends
// on. Auth is a client-id/secret exchange for a short-lived access token.
type APIClient interface {
	// FetchToken exchanges the client credentials for an access token.
	FetchToken(ctx context.Context) (*TokenResponse, error)

	// CreateShipment books a shipment.
	CreateShipment(ctx context.Context, token string, req *CreateShipmentRequest) (*CreateShipmentResponse, error)

	// TrackShipment fetches tracking state for a tracking ID.
	TrackShipment(ctx context.Context, token, trackingID string) (*TrackResponse, error)

	// CancelShipment cancels a booked shipment.
	CancelShipment(ctx context.Context, token, trackingID string) (*CancelResponse, error)

	// RequestPickup schedules a pickup slot.
	RequestPickup(ctx context.Context, token string, req *PickupSlotRequest) (*PickupSlotResponse, error)
}

// TokenResponse is the credential exchange result.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // seconds
}

// CreateShipmentRequest books a shipment.
type CreateShipmentRequest struct {
	ClientOrderID string   `json:"client_order_id"`
	ServiceType   string   `json:"service_type"` // "FORWARD"
	PaymentMode   string   `json:"payment_mode"` // "COD" or "PREPAID"
	CODValue      float64  `json:"cod_value,omitempty"`
	WeightGrams   float64  `json:"weight_grams"`
	Source        Location `json:"source"`
	Destination   Location `json:"destination"`
}

// Location is a pickup or drop address.
type Location struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	City      string `json:"city"`
	StateCode string `json:"state"`
	Pincode   string `json:"pin_code"`
	Phone     string `json:"primary_contact"`
}

// CreateShipmentResponse is the booking result.
type CreateShipmentResponse struct {
	TrackingID string `json:"tracking_id"`
	Status     string `json:"status"` // "REQUEST_ACCEPTED" on success
	Remarks    string `json:"remarks,omitempty"`
}

// TrackResponse carries shipment status plus scan history.
type TrackResponse struct {
	TrackingID string      `json:"tracking_id"`
	Status     string      `json:"current_status"`
	Events     []ScanEvent `json:"events"`
}

// ScanEvent is one tracking scan.
type ScanEvent struct {
	Status    string `json:"status"`
	City      string `json:"city"`
	Timestamp string `json:"event_date"` // RFC3339
}

// CancelResponse is the cancellation result.
type CancelResponse struct {
	Status  string `json:"status"` // "CANCELLED" on success
	Remarks string `json:"remarks,omitempty"`
}

// PickupSlotRequest schedules a pickup slot.
type PickupSlotRequest struct {
	PickupDate  string   `json:"pickup_date"` // YYYY-MM-DD
	TrackingIDs []string `json:"tracking_ids"`
}

// PickupSlotResponse is the pickup scheduling result.
type PickupSlotResponse struct {
	SlotID string `json:"slot_id"`
	Status string `json:"status"`
}

// APIError represents an error from the Ekart API.
type APIError struct {
	StatusCode int
	Code       string `json:"error_code"`
	Message    string `json:"error_message"`
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Message
}
