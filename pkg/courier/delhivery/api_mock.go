package delhivery

import (
	"context"
	"fmt"
	"time"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnGetRate       func(ctx context.Context, req *RateRequest) (*RateResponse, error)
	OnCreatePackage func(ctx context.Context, req *ManifestRequest) (*ManifestResponse, error)
	OnTrackPackage  func(ctx context.Context, waybill string) (*TrackResponse, error)
	OnCancelPackage func(ctx context.Context, waybill string) (*CancelResponse, error)
	OnCreatePickup  func(ctx context.Context, req *PickupRequest) (*PickupResponse, error)
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

func (m *MockAPIClient) simulate() error {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}
	if m.SimulateErrors {
		return &APIError{Code: "MOCK_ERROR", Message: "Simulated API error", StatusCode: 500}
	}
	return nil
}

// GetRate returns a mock charge row.
func (m *MockAPIClient) GetRate(ctx context.Context, req *RateRequest) (*RateResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnGetRate != nil {
		return m.OnGetRate(ctx, req)
	}

	total := 50.0 + req.WeightGrams/1000*14
	if req.Mode == "E" {
		total *= 1.5
	}
	return &RateResponse{
		TotalAmount:  total,
		ChargeWeight: req.WeightGrams,
		Zone:         "D",
	}, nil
}

// CreatePackage manifests a mock shipment.
func (m *MockAPIClient) CreatePackage(ctx context.Context, req *ManifestRequest) (*ManifestResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnCreatePackage != nil {
		return m.OnCreatePackage(ctx, req)
	}

	waybill := fmt.Sprintf("%d", 1000000000000+time.Now().UnixNano()%9000000000000)
	refnum := ""
	if len(req.Shipments) > 0 {
		refnum = req.Shipments[0].Order
	}
	return &ManifestResponse{
		Success: true,
		Packages: []ManifestPackage{
			{Status: "Success", Waybill: waybill, Refnum: refnum},
		},
	}, nil
}

// TrackPackage returns mock scan history.
func (m *MockAPIClient) TrackPackage(ctx context.Context, waybill string) (*TrackResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnTrackPackage != nil {
		return m.OnTrackPackage(ctx, waybill)
	}

	now := time.Now()
	return &TrackResponse{
		ShipmentData: []ShipmentData{{
			Shipment: TrackedShipment{
				AWB: waybill,
				Status: ScanStatus{
					Status:     "In Transit",
					StatusType: "UD",
					Location:   "Nagpur_Hub",
					DateTime:   now.Format("2006-01-02T15:04:05"),
				},
				Scans: []ScanItem{
					{ScanDetail: ScanDetail{
						Scan:     "Manifested",
						ScanType: "UD",
						Location: "Mumbai_Andheri",
						DateTime: now.Add(-48 * time.Hour).Format("2006-01-02T15:04:05"),
					}},
					{ScanDetail: ScanDetail{
						Scan:     "In Transit",
						ScanType: "UD",
						Location: "Nagpur_Hub",
						DateTime: now.Format("2006-01-02T15:04:05"),
					}},
				},
			},
		}},
	}, nil
}

// CancelPackage cancels a mock waybill.
func (m *MockAPIClient) CancelPackage(ctx context.Context, waybill string) (*CancelResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnCancelPackage != nil {
		return m.OnCancelPackage(ctx, waybill)
	}
	return &CancelResponse{Status: true, Waybill: waybill}, nil
}

// CreatePickup schedules a mock pickup.
func (m *MockAPIClient) CreatePickup(ctx context.Context, req *PickupRequest) (*PickupResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnCreatePickup != nil {
		return m.OnCreatePickup(ctx, req)
	}
	return &PickupResponse{
		PickupID:   int(time.Now().UnixNano() % 1000000),
		PickupDate: req.PickupDate,
	}, nil
}

var _ APIClient = (*MockAPIClient)(nil)
