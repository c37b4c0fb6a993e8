package shadowfax

import (
	"context"
	"fmt"
	"time"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnValidateToken func(ctx context.Context) error
	OnCreateOrder   func(ctx context.Context, req *OrderRequest) (*OrderResponse, error)
	OnTrackOrder    func(ctx context.Context, awb string) (*TrackResponse, error)
	OnCancelOrder   func(ctx context.Context, awb string) (*CancelResponse, error)
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

// ValidateToken accepts the mock token.
func (m *MockAPIClient) ValidateToken(ctx context.Context) error {
	if err := m.simulate(); err != nil {
		return err
	}
	if m.OnValidateToken != nil {
		return m.OnValidateToken(ctx)
	}
	return nil
}

// CreateOrder books a mock order.
func (m *MockAPIClient) CreateOrder(ctx context.Context, req *OrderRequest) (*OrderResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnCreateOrder != nil {
		return m.OnCreateOrder(ctx, req)
	}
	return &OrderResponse{
		AWBNumber: fmt.Sprintf("SFX%d", 100000000+time.Now().UnixNano()%899999999),
		OrderID:   int(time.Now().UnixNano() % 10000000),
		Accepted:  true,
	}, nil
}

// TrackOrder returns mock tracking state.
func (m *MockAPIClient) TrackOrder(ctx context.Context, awb string) (*TrackResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnTrackOrder != nil {
		return m.OnTrackOrder(ctx, awb)
	}
	now := time.Now()
	return &TrackResponse{
		AWBNumber: awb,
		Status:    "out_for_delivery",
		Events: []RiderEvent{
			{Status: "picked", Remark: "Collected by rider", Location: "Koramangala", Timestamp: now.Add(-2 * time.Hour).Format(time.RFC3339)},
			{Status: "out_for_delivery", Remark: "Rider en route", Location: "Indiranagar", Timestamp: now.Format(time.RFC3339)},
		},
	}, nil
}

// CancelOrder cancels a mock order.
func (m *MockAPIClient) CancelOrder(ctx context.Context, awb string) (*CancelResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnCancelOrder != nil {
		return m.OnCancelOrder(ctx, awb)
	}
	return &CancelResponse{Cancelled: true}, nil
}

var _ APIClient = (*MockAPIClient)(nil)
