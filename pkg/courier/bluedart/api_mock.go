package bluedart

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// MockAPIClient is a mock implementation of APIClient for testing.
// LoginCalls counts upstream login exchanges, which single-flight tests
// assert on.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration
	LoginCalls      atomic.Int64

	OnLogin            func(ctx context.Context) (*LoginResponse, error)
	OnGenerateWaybill  func(ctx context.Context, token string, req *WaybillRequest) (*WaybillResponse, error)
	OnTrackWaybill     func(ctx context.Context, token, awb string) (*TrackingResponse, error)
	OnCancelWaybill    func(ctx context.Context, token, awb string) (*CancelResponse, error)
	OnSchedulePickup   func(ctx context.Context, token string, req *PickupRegistrationRequest) (*PickupRegistrationResponse, error)
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

// Login returns a mock JWT valid for an hour.
func (m *MockAPIClient) Login(ctx context.Context) (*LoginResponse, error) {
	m.LoginCalls.Add(1)
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnLogin != nil {
		return m.OnLogin(ctx)
	}
	return &LoginResponse{
		JWTToken:         fmt.Sprintf("bd-jwt-%d", time.Now().UnixNano()),
		ExpiresInSeconds: 3600,
	}, nil
}

// GenerateWaybill books a mock shipment.
func (m *MockAPIClient) GenerateWaybill(ctx context.Context, token string, req *WaybillRequest) (*WaybillResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnGenerateWaybill != nil {
		return m.OnGenerateWaybill(ctx, token, req)
	}
	return &WaybillResponse{
		AWBNo:           fmt.Sprintf("%d", 70000000000+time.Now().UnixNano()%9999999999),
		DestinationArea: "DEL",
	}, nil
}

// TrackWaybill returns mock tracking state.
func (m *MockAPIClient) TrackWaybill(ctx context.Context, token, awb string) (*TrackingResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnTrackWaybill != nil {
		return m.OnTrackWaybill(ctx, token, awb)
	}
	now := time.Now()
	return &TrackingResponse{
		ShipmentStatus: "SHIPMENT IN TRANSIT",
		StatusType:     "UD",
		Location:       "Nagpur Hub",
		StatusDate:     now.Format("02-Jan-2006"),
		StatusTime:     now.Format("1504"),
		Scans: []ScanEntry{
			{
				Scan:     "SHIPMENT PICKED UP",
				ScanCode: "PU",
				Location: "Mumbai",
				Date:     now.Add(-36 * time.Hour).Format("02-Jan-2006"),
				Time:     "1130",
			},
			{
				Scan:     "SHIPMENT IN TRANSIT",
				ScanCode: "IT",
				Location: "Nagpur Hub",
				Date:     now.Format("02-Jan-2006"),
				Time:     now.Format("1504"),
			},
		},
	}, nil
}

// CancelWaybill voids a mock waybill.
func (m *MockAPIClient) CancelWaybill(ctx context.Context, token, awb string) (*CancelResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnCancelWaybill != nil {
		return m.OnCancelWaybill(ctx, token, awb)
	}
	return &CancelResponse{IsError: false}, nil
}

// SchedulePickup registers a mock pickup.
func (m *MockAPIClient) SchedulePickup(ctx context.Context, token string, req *PickupRegistrationRequest) (*PickupRegistrationResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnSchedulePickup != nil {
		return m.OnSchedulePickup(ctx, token, req)
	}
	return &PickupRegistrationResponse{
		TokenNumber: int(time.Now().UnixNano() % 1000000),
	}, nil
}

var _ APIClient = (*MockAPIClient)(nil)
