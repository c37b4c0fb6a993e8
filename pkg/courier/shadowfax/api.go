package shadowfax

import (
	"context"
)

// APIClient defines the Shadowfax API operations the adapter depends on.
// Shadowfax uses a static bearer token issued at onboarding; there is no
// login exchange.
type APIClient interface {
	// ValidateToken checks the configured token against the profile endpoint.
	ValidateToken(ctx context.Context) error

	// CreateOrder books a delivery order.
	CreateOrder(ctx context.Context, req *OrderRequest) (*OrderResponse, error)

	// TrackOrder fetches tracking state for an AWB.
	TrackOrder(ctx context.Context, awb string) (*TrackResponse, error)

	// CancelOrder cancels a booked order.
	CancelOrder(ctx context.Context, awb string) (*CancelResponse, error)
}

// OrderRequest books a delivery order.
type OrderRequest struct {
	ClientOrderID  string  `json:"client_order_id"`
	IsCOD          bool    `json:"is_cod"`
	CODAmount      float64 `json:"cod_amount,omitempty"`
	WeightKg       float64 `json:"weight"`
	PickupDetails  Contact `json:"pickup_details"`
	DropDetails    Contact `json:"drop_details"`
}

// Contact is a pickup or drop contact.
type Contact struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Pincode string `json:"pincode"`
	Phone   string `json:"contact_number"`
}

// OrderResponse is the booking result.
type OrderResponse struct {
	AWBNumber string `json:"awb_number"`
	OrderID   int    `json:"sfx_order_id"`
	Accepted  bool   `json:"is_accepted"`
	Message   string `json:"message,omitempty"`
}

// TrackResponse carries order status plus rider events.
type TrackResponse struct {
	AWBNumber string       `json:"awb_number"`
	Status    string       `json:"status"`
	Events    []RiderEvent `json:"events"`
}

// RiderEvent is one tracking event.
type RiderEvent struct {
	Status    string `json:"status"`
	Remark    string `json:"remark"`
	Location  string `json:"location"`
	Timestamp string `json:"timestamp"` // RFC3339
}

// CancelResponse is the cancellation result.
type CancelResponse struct {
	Cancelled bool   `json:"is_cancelled"`
	Message   string `json:"message,omitempty"`
}

// APIError represents an error from the Shadowfax API.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Message
}
