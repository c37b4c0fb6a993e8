package ekart

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
	TokenCalls      atomic.Int64

	OnFetchToken     func(ctx context.Context) (*TokenResponse, error)
	OnCreateShipment func(ctx context.Context, token string, req *CreateShipmentRequest) (*CreateShipmentResponse, error)
	OnTrackShipment  func(ctx context.Context, token, trackingID string) (*TrackResponse, error)
	OnCancelShipment func(ctx context.Context, token, trackingID string) (*CancelResponse, error)
	OnRequestPickup  func(ctx context.Context, token string, req *PickupSlotRequest) (*PickupSlotResponse, error)
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

// FetchToken returns a mock access token valid for an hour.
func (m *MockAPIClient) FetchToken(ctx context.Context) (*TokenResponse, error) {
	m.TokenCalls.Add(1)
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnFetchToken != nil {
		return m.OnFetchToken(ctx)
	}
	return &TokenResponse{
		AccessToken: fmt.Sprintf("ek-token-%d", time.Now().UnixNano()),
		TokenType:   "Bearer",
		ExpiresIn:   3600,
	}, nil
}

// CreateShipment books a mock shipment.
func (m *MockAPIClient) CreateShipment(ctx context.Context, token string, req *CreateShipmentRequest) (*CreateShipmentResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnCreateShipment != nil {
		return m.OnCreateShipment(ctx, token, req)
	}
	return &CreateShipmentResponse{
		TrackingID: fmt.Sprintf("FMPC%d", 1000000000+time.Now().UnixNano()%8999999999),
		Status:     "REQUEST_ACCEPTED",
	}, nil
}

// TrackShipment returns mock tracking state.
func (m *MockAPIClient) TrackShipment(ctx context.Context, token, trackingID string) (*TrackResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnTrackShipment != nil {
		return m.OnTrackShipment(ctx, token, trackingID)
	}
	now := time.Now()
	return &TrackResponse{
		TrackingID: trackingID,
		Status:     "IN_TRANSIT",
		Events: []ScanEvent{
			{Status: "PICKUP_COMPLETE", City: "Bengaluru", Timestamp: now.Add(-40 * time.Hour).Format(time.RFC3339)},
			{Status: "IN_TRANSIT", City: "Hyderabad", Timestamp: now.Format(time.RFC3339)},
		},
	}, nil
}

// CancelShipment cancels a mock shipment.
func (m *MockAPIClient) CancelShipment(ctx context.Context, token, trackingID string) (*CancelResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnCancelShipment != nil {
		return m.OnCancelShipment(ctx, token, trackingID)
	}
	return &CancelResponse{Status: "CANCELLED"}, nil
}

// RequestPickup schedules a mock pickup slot.
func (m *MockAPIClient) RequestPickup(ctx context.Context, token string, req *PickupSlotRequest) (*PickupSlotResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnRequestPickup != nil {
		return m.OnRequestPickup(ctx, token, req)
	}
	return &PickupSlotResponse{
		SlotID: fmt.Sprintf("SLOT-%d", time.Now().UnixNano()%1000000),
		Status: "CONFIRMED",
	}, nil
}

var _ APIClient = (*MockAPIClient)(nil)
