package xpressbees_test

import (
	"context"
	"testing"
	"time"

	"github.com/shipdesk/logistics/pkg/courier"
	"github.com/shipdesk/logistics/pkg/courier/xpressbees"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newTestClient(mockClient *xpressbees.MockAPIClient) *xpressbees.Client {
	logger := otelzap.New(zap.NewNop())
	return xpressbees.NewWithAPIClient(
		xpressbees.Config{Email: "ops@example.com", Password: "secret"},
		mockClient,
		logger,
		nil,
	)
}

func TestClient_Authenticate_ReusesToken(t *testing.T) {
	mockAPI := xpressbees.NewMockAPIClient()
	client := newTestClient(mockAPI)
	ctx := context.Background()

	first, err := client.Authenticate(ctx)
	require.NoError(t, err)
	second, err := client.Authenticate(ctx)
	require.NoError(t, err)

	assert.Equal(t, first.Value, second.Value)
	assert.EqualValues(t, 1, mockAPI.LoginCalls.Load())
}

func TestClient_Authenticate_BadCredentials(t *testing.T) {
	mockAPI := xpressbees.NewMockAPIClient()
	mockAPI.OnLogin = func(ctx context.Context, req *xpressbees.LoginRequest) (*xpressbees.LoginResponse, error) {
		return nil, &xpressbees.APIError{Code: "LOGIN_REJECTED", Message: "invalid credentials", StatusCode: 401}
	}
	client := newTestClient(mockAPI)

	_, err := client.Authenticate(context.Background())

	require.Error(t, err)
	assert.Equal(t, courier.KindAuthFailed, courier.Kind(err))
}

func TestClient_CalculateRate_PicksCheapestProduct(t *testing.T) {
	client := newTestClient(xpressbees.NewMockAPIClient())

	quote, err := client.CalculateRate(context.Background(), &courier.RateRequest{
		OriginPincode:      "411001",
		DestinationPincode: "560001",
		WeightKg:           0.75,
		PaymentMode:        courier.PaymentCOD,
		CODAmount:          999,
	})

	require.NoError(t, err)
	assert.Equal(t, "xpressbees", quote.Courier)
	assert.Equal(t, "Xpressbees Surface", quote.ProductName)
	assert.Equal(t, 85.0, quote.Total)
	assert.Equal(t, "INR", quote.Currency)
}

func TestClient_CalculateRate_NotServiceable(t *testing.T) {
	mockAPI := xpressbees.NewMockAPIClient()
	mockAPI.OnServiceability = func(ctx context.Context, token string, req *xpressbees.ServiceabilityRequest) (*xpressbees.ServiceabilityResponse, error) {
		return &xpressbees.ServiceabilityResponse{Status: true, Data: nil}, nil
	}
	client := newTestClient(mockAPI)

	_, err := client.CalculateRate(context.Background(), &courier.RateRequest{
		OriginPincode:      "411001",
		DestinationPincode: "792001",
		WeightKg:           2,
	})

	require.Error(t, err)
	assert.Equal(t, courier.KindUpstreamRejected, courier.Kind(err))
}

func TestClient_BookShipment_Success(t *testing.T) {
	client := newTestClient(xpressbees.NewMockAPIClient())

	result, err := client.BookShipment(context.Background(), &courier.ShipmentRequest{
		OrderID:     "ORD-3001",
		Pickup:      courier.Address{Name: "Warehouse B", Pincode: "411001", Phone: "9800000003"},
		Delivery:    courier.Address{Name: "Meera Shah", Pincode: "560001", Phone: "9800000004"},
		Parcel:      courier.Parcel{WeightKg: 0.75},
		PaymentMode: courier.PaymentPrepaid,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.AWB)
	assert.Contains(t, result.TrackingURL, result.AWB)
	assert.NotEmpty(t, result.Raw)
}

func TestClient_BookShipment_Rejected(t *testing.T) {
	mockAPI := xpressbees.NewMockAPIClient()
	mockAPI.OnCreateShipment = func(ctx context.Context, token string, req *xpressbees.ShipmentRequest) (*xpressbees.ShipmentResponse, error) {
		return &xpressbees.ShipmentResponse{Status: false, Message: "pincode not serviceable"}, nil
	}
	client := newTestClient(mockAPI)

	_, err := client.BookShipment(context.Background(), &courier.ShipmentRequest{OrderID: "ORD-3002"})

	require.Error(t, err)
	assert.Equal(t, courier.KindUpstreamRejected, courier.Kind(err))
	assert.Contains(t, err.Error(), "pincode not serviceable")
}

func TestClient_TrackShipment_Success(t *testing.T) {
	client := newTestClient(xpressbees.NewMockAPIClient())

	result, err := client.TrackShipment(context.Background(), "14110000000001")

	require.NoError(t, err)
	assert.False(t, result.Degraded)
	assert.Equal(t, courier.StatusInTransit, result.Status)
	require.Len(t, result.History, 2)
	assert.Equal(t, courier.StatusPickedUp, result.History[0].Status)
	assert.Equal(t, "Bhiwandi Hub", result.Location)
}

func TestClient_TrackShipment_DegradesOnUpstreamFailure(t *testing.T) {
	mockAPI := xpressbees.NewMockAPIClient()
	mockAPI.OnTrackShipment = func(ctx context.Context, token, awb string) (*xpressbees.TrackResponse, error) {
		return nil, &xpressbees.APIError{Code: "HTTP_502", Message: "bad gateway", StatusCode: 502}
	}
	client := newTestClient(mockAPI)

	result, err := client.TrackShipment(context.Background(), "14110000000001")

	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Equal(t, courier.StatusUnknown, result.Status)
	assert.Contains(t, result.ManualTrackingURL, "14110000000001")
}

func TestClient_CancelShipment_Success(t *testing.T) {
	client := newTestClient(xpressbees.NewMockAPIClient())

	result, err := client.CancelShipment(context.Background(), "14110000000001")

	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestClient_RequestPickup_Success(t *testing.T) {
	client := newTestClient(xpressbees.NewMockAPIClient())

	result, err := client.RequestPickup(context.Background(), []string{"awb-1", "awb-2"})

	require.NoError(t, err)
	assert.NotEmpty(t, result.PickupID)
	assert.Len(t, result.AWBs, 2)
	assert.True(t, result.ScheduledFor.After(time.Now()))
}
