package delhivery

import (
	"context"
)

// APIClient defines the Delhivery API operations the adapter depends on.
// The split keeps wire-level concerns out of the adapter and lets tests
// inject a mock.
type APIClient interface {
	// GetRate prices a route via the invoice/charges endpoint.
	GetRate(ctx context.Context, req *RateRequest) (*RateResponse, error)

	// CreatePackage manifests a shipment (cmu/create).
	CreatePackage(ctx context.Context, req *ManifestRequest) (*ManifestResponse, error)

	// TrackPackage fetches scan history for a waybill.
	TrackPackage(ctx context.Context, waybill string) (*TrackResponse, error)

	// CancelPackage cancels a manifested waybill (p/edit with cancellation flag).
	CancelPackage(ctx context.Context, waybill string) (*CancelResponse, error)

	// CreatePickup schedules a pickup request.
	CreatePickup(ctx context.Context, req *PickupRequest) (*PickupResponse, error)
}

// ============================================================================
// API Request/Response Types (match Delhivery REST API structure)
// ============================================================================

// RateRequest queries /api/kinko/v1/invoice/charges/.json.
type RateRequest struct {
	OriginPin      string  `json:"o_pin"`
	DestinationPin string  `json:"d_pin"`
	WeightGrams    float64 `json:"cgm"`
	PaymentType    string  `json:"pt"` // "Pre-paid" or "COD"
	CODAmount      float64 `json:"cod,omitempty"`
	Mode           string  `json:"md"` // "S" surface, "E" express
}

// RateResponse is one priced charge row.
type RateResponse struct {
	TotalAmount  float64 `json:"total_amount"`
	ChargeWeight float64 `json:"charged_weight"`
	Zone         string  `json:"zone"`
}

// ManifestRequest creates packages via /api/cmu/create.json.
type ManifestRequest struct {
	Shipments   []Shipment  `json:"shipments"`
	PickupInfo  PickupInfo  `json:"pickup_location"`
}

// Shipment is one package in a manifest.
type Shipment struct {
	Order         string  `json:"order"`
	Waybill       string  `json:"waybill,omitempty"`
	Name          string  `json:"name"`
	Phone         string  `json:"phone"`
	Address       string  `json:"add"`
	City          string  `json:"city"`
	State         string  `json:"state"`
	Pin           string  `json:"pin"`
	Country       string  `json:"country"`
	PaymentMode   string  `json:"payment_mode"` // "Prepaid" or "COD"
	CODAmount     float64 `json:"cod_amount,omitempty"`
	TotalAmount   float64 `json:"total_amount"`
	WeightGrams   float64 `json:"weight"`
	ProductsDesc  string  `json:"products_desc,omitempty"`
	ShippingMode  string  `json:"shipping_mode"` // "Surface" or "Express"
}

// PickupInfo identifies the registered pickup location.
type PickupInfo struct {
	Name    string `json:"name"`
	City    string `json:"city"`
	Pin     string `json:"pin_code"`
	Address string `json:"add"`
	Phone   string `json:"phone"`
}

// ManifestResponse is the cmu/create result.
type ManifestResponse struct {
	Success  bool              `json:"success"`
	Packages []ManifestPackage `json:"packages"`
	RMK      string            `json:"rmk,omitempty"` // remark on failure
}

// ManifestPackage is one manifested package.
type ManifestPackage struct {
	Status  string `json:"status"` // "Success" or "Fail"
	Waybill string `json:"waybill"`
	Refnum  string `json:"refnum"`
	Remarks string `json:"remarks,omitempty"`
}

// TrackResponse wraps /api/v1/packages/json tracking data.
type TrackResponse struct {
	ShipmentData []ShipmentData `json:"ShipmentData"`
}

// ShipmentData is one tracked shipment.
type ShipmentData struct {
	Shipment TrackedShipment `json:"Shipment"`
}

// TrackedShipment carries current status plus scan history.
type TrackedShipment struct {
	AWB    string     `json:"AWB"`
	Status ScanStatus `json:"Status"`
	Scans  []ScanItem `json:"Scans"`
}

// ScanStatus is the current shipment state.
type ScanStatus struct {
	Status       string `json:"Status"`
	StatusType   string `json:"StatusType"` // "UD" in-flight, "DL" delivered, "RT" returned
	Instructions string `json:"Instructions"`
	Location     string `json:"StatusLocation"`
	DateTime     string `json:"StatusDateTime"`
}

// ScanItem is one scan event.
type ScanItem struct {
	ScanDetail ScanDetail `json:"ScanDetail"`
}

// ScanDetail is the payload of one scan.
type ScanDetail struct {
	Scan         string `json:"Scan"`
	ScanType     string `json:"ScanType"`
	Instructions string `json:"Instructions"`
	Location     string `json:"ScannedLocation"`
	DateTime     string `json:"ScanDateTime"`
}

// CancelResponse is the p/edit cancellation result.
type CancelResponse struct {
	Status  bool   `json:"status"`
	Remark  string `json:"remark,omitempty"`
	Waybill string `json:"waybill"`
}

// PickupRequest schedules a pickup via /fm/request/new/.
type PickupRequest struct {
	PickupLocation string `json:"pickup_location"`
	PickupDate     string `json:"pickup_date"` // YYYY-MM-DD
	PickupTime     string `json:"pickup_time"` // HH:MM:SS
	ExpectedCount  int    `json:"expected_package_count"`
}

// PickupResponse is the pickup scheduling result.
type PickupResponse struct {
	PickupID   int    `json:"pickup_id"`
	PickupDate string `json:"pickup_date"`
	Incident   string `json:"incident,omitempty"`
}

// APIError represents an error from the Delhivery API.
type APIError struct {
	StatusCode int
	Code       string `json:"error"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Message
}
