package xpressbees

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration
	LoginCalls      atomic.Int64

	OnLogin          func(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	OnServiceability func(ctx context.Context, token string, req *ServiceabilityRequest) (*ServiceabilityResponse, error)
	OnCreateShipment func(ctx context.Context, token string, req *ShipmentRequest) (*ShipmentResponse, error)
	OnTrackShipment  func(ctx context.Context, token, awb string) (*TrackResponse, error)
	OnCancelShipment func(ctx context.Context, token, awb string) (*CancelResponse, error)
	OnCreatePickup   func(ctx context.Context, token string, req *PickupRequest) (*PickupResponse, error)
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

// Login returns a mock JWT.
func (m *MockAPIClient) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	m.LoginCalls.Add(1)
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnLogin != nil {
		return m.OnLogin(ctx, req)
	}
	return &LoginResponse{
		Status: true,
		Data:   fmt.Sprintf("xb-jwt-%d", time.Now().UnixNano()),
	}, nil
}

// Serviceability returns two mock products so rate selection is exercised.
func (m *MockAPIClient) Serviceability(ctx context.Context, token string, req *ServiceabilityRequest) (*ServiceabilityResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnServiceability != nil {
		return m.OnServiceability(ctx, token, req)
	}
	return &ServiceabilityResponse{
		Status: true,
		Data: []ServiceOption{
			{ID: 1, Name: "Xpressbees Air", FreightCharge: 95, CODCharge: 30, TotalCharge: 125},
			{ID: 2, Name: "Xpressbees Surface", FreightCharge: 55, CODCharge: 30, TotalCharge: 85},
		},
	}, nil
}

// CreateShipment books a mock shipment.
func (m *MockAPIClient) CreateShipment(ctx context.Context, token string, req *ShipmentRequest) (*ShipmentResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnCreateShipment != nil {
		return m.OnCreateShipment(ctx, token, req)
	}
	return &ShipmentResponse{
		Status: true,
		Data: ShipmentData{
			ShipmentID: int(time.Now().UnixNano() % 10000000),
			AWBNumber:  fmt.Sprintf("141%d", 10000000000+time.Now().UnixNano()%89999999999),
			LabelURL:   "https://shipment.xpressbees.com/label/mock.pdf",
		},
	}, nil
}

// TrackShipment returns mock tracking state.
func (m *MockAPIClient) TrackShipment(ctx context.Context, token, awb string) (*TrackResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnTrackShipment != nil {
		return m.OnTrackShipment(ctx, token, awb)
	}
	now := time.Now()
	return &TrackResponse{
		Status: true,
		Data: TrackData{
			AWBNumber: awb,
			Status:    "IT",
			History: []ScanEvent{
				{
					StatusCode: "PUD",
					Message:    "Shipment picked up",
					Location:   "Pune",
					EventTime:  now.Add(-30 * time.Hour).Format("2006-01-02 15:04:05"),
				},
				{
					StatusCode: "IT",
					Message:    "Shipment in transit",
					Location:   "Bhiwandi Hub",
					EventTime:  now.Format("2006-01-02 15:04:05"),
				},
			},
		},
	}, nil
}

// CancelShipment cancels a mock shipment.
func (m *MockAPIClient) CancelShipment(ctx context.Context, token, awb string) (*CancelResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnCancelShipment != nil {
		return m.OnCancelShipment(ctx, token, awb)
	}
	return &CancelResponse{Status: true, Message: "shipment cancelled"}, nil
}

// CreatePickup schedules a mock pickup.
func (m *MockAPIClient) CreatePickup(ctx context.Context, token string, req *PickupRequest) (*PickupResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnCreatePickup != nil {
		return m.OnCreatePickup(ctx, token, req)
	}
	return &PickupResponse{
		Status:   true,
		PickupID: fmt.Sprintf("PU-%d", time.Now().UnixNano()%1000000),
	}, nil
}

var _ APIClient = (*MockAPIClient)(nil)
