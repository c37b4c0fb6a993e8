package bluedart

import (
	"context"
)

// APIClient defines the Blue Dart API operations the adapter depends on.
// All shipment operations require a JWT obtained from Login; the adapter
// owns the token lifecycle, so every call takes the current token.
type APIClient interface {
	// Login exchanges the license key for a JWT (profile/token endpoint).
	Login(ctx context.Context) (*LoginResponse, error)

	// GenerateWaybill books a shipment.
	GenerateWaybill(ctx context.Context, token string, req *WaybillRequest) (*WaybillResponse, error)

	// TrackWaybill fetches tracking state for an AWB.
	TrackWaybill(ctx context.Context, token, awb string) (*TrackingResponse, error)

	// CancelWaybill voids a booked waybill.
	CancelWaybill(ctx context.Context, token, awb string) (*CancelResponse, error)

	// SchedulePickup registers a pickup request.
	SchedulePickup(ctx context.Context, token string, req *PickupRegistrationRequest) (*PickupRegistrationResponse, error)
}

// ============================================================================
// API Request/Response Types (match Blue Dart REST API structure)
// ============================================================================

// LoginResponse carries the JWT and its validity window in seconds.
type LoginResponse struct {
	JWTToken         string `json:"JWTToken"`
	ExpiresInSeconds int    `json:"ExpiresInSeconds"`
	Error            string `json:"error-response,omitempty"`
}

// WaybillRequest books a shipment via /waybill/generate.
type WaybillRequest struct {
	Shipper     Entity  `json:"Shipper"`
	Consignee   Entity  `json:"Consignee"`
	Services    Service `json:"Services"`
	ProfileCode string  `json:"ProfileCode"`
}

// Entity is a shipper or consignee.
type Entity struct {
	Name          string `json:"CustomerName"`
	AddressLine1  string `json:"CustomerAddress1"`
	AddressLine2  string `json:"CustomerAddress2,omitempty"`
	Pincode       string `json:"CustomerPincode"`
	Mobile        string `json:"CustomerMobile"`
	EmailID       string `json:"CustomerEmailID,omitempty"`
}

// Service carries shipment parameters.
type Service struct {
	ProductCode     string  `json:"ProductCode"`  // "D" domestic air, "E" surface
	SubProductCode  string  `json:"SubProductCode,omitempty"` // "C" for COD
	PieceCount      int     `json:"PieceCount"`
	ActualWeight    float64 `json:"ActualWeight"`
	DeclaredValue   float64 `json:"DeclaredValue"`
	CollectableAmount float64 `json:"CollectableAmount,omitempty"`
	CreditReferenceNo string  `json:"CreditReferenceNo"`
	Dimensions      []Dimension `json:"Dimensions,omitempty"`
}

// Dimension is one piece's dimensions in cm.
type Dimension struct {
	Length float64 `json:"Length"`
	Width  float64 `json:"Breadth"`
	Height float64 `json:"Height"`
	Count  int     `json:"Count"`
}

// WaybillResponse is the waybill generation result.
type WaybillResponse struct {
	AWBNo        string `json:"AWBNo"`
	DestinationArea string `json:"DestinationArea,omitempty"`
	TokenNumber  string `json:"TokenNumber,omitempty"`
	IsError      bool   `json:"IsError"`
	Status       []StatusInfo `json:"Status,omitempty"`
}

// StatusInfo is one error/status line in a Blue Dart response.
type StatusInfo struct {
	StatusCode        string `json:"StatusCode"`
	StatusInformation string `json:"StatusInformation"`
}

// TrackingResponse carries shipment status plus scan history.
type TrackingResponse struct {
	ShipmentStatus string      `json:"Status"`
	StatusType     string      `json:"StatusType"`
	Location       string      `json:"Location"`
	StatusDate     string      `json:"StatusDate"` // DD-MMM-YYYY
	StatusTime     string      `json:"StatusTime"` // HHMM
	Scans          []ScanEntry `json:"Scans"`
	IsError        bool        `json:"IsError"`
}

// ScanEntry is one tracking scan.
type ScanEntry struct {
	Scan     string `json:"Scan"`
	ScanCode string `json:"ScanCode"`
	Location string `json:"ScannedLocation"`
	Date     string `json:"ScanDate"`
	Time     string `json:"ScanTime"`
}

// CancelResponse is the waybill cancellation result.
type CancelResponse struct {
	IsError bool         `json:"IsError"`
	Status  []StatusInfo `json:"Status,omitempty"`
}

// PickupRegistrationRequest schedules a pickup.
type PickupRegistrationRequest struct {
	PickupDate    string  `json:"ShipmentPickupDate"` // YYYY-MM-DD
	PickupTime    string  `json:"ShipmentPickupTime"` // HHMM
	NumberOfPieces int    `json:"NumberofPieces"`
	WeightOfShipment float64 `json:"WeightofShipment,omitempty"`
}

// PickupRegistrationResponse is the pickup scheduling result.
type PickupRegistrationResponse struct {
	TokenNumber int          `json:"TokenNumber"`
	IsError     bool         `json:"IsError"`
	Status      []StatusInfo `json:"Status,omitempty"`
}

// APIError represents an error from the Blue Dart API.
type APIError struct {
	StatusCode int
	Code       string `json:"ErrorCode"`
	Message    string `json:"ErrorMessage"`
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Message
}
