package ekart_test

import (
	"context"
	"testing"

	"github.com/shipdesk/logistics/pkg/courier"
	"github.com/shipdesk/logistics/pkg/courier/ekart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newTestClient(mockClient *ekart.MockAPIClient) *ekart.Client {
	logger := otelzap.New(zap.NewNop())
	return ekart.NewWithAPIClient(
		ekart.Config{ClientID: "shipdesk", ClientSecret: "secret"},
		mockClient,
		logger,
		nil,
	)
}

func TestClient_Authenticate_ReusesToken(t *testing.T) {
	mockAPI := ekart.NewMockAPIClient()
	client := newTestClient(mockAPI)
	ctx := context.Background()

	first, err := client.Authenticate(ctx)
	require.NoError(t, err)
	second, err := client.Authenticate(ctx)
	require.NoError(t, err)

	assert.Equal(t, first.Value, second.Value)
	assert.EqualValues(t, 1, mockAPI.TokenCalls.Load())
}

func TestClient_Authenticate_ExchangeFailure(t *testing.T) {
	mockAPI := ekart.NewMockAPIClient()
	mockAPI.SimulateErrors = true
	client := newTestClient(mockAPI)

	_, err := client.Authenticate(context.Background())

	require.Error(t, err)
	assert.Equal(t, courier.KindAuthFailed, courier.Kind(err))
}

func TestClient_CalculateRate_NotSupported(t *testing.T) {
	client := newTestClient(ekart.NewMockAPIClient())

	_, err := client.CalculateRate(context.Background(), &courier.RateRequest{})
	assert.ErrorIs(t, err, courier.ErrRateNotSupported)
}

func TestClient_BookShipment_Success(t *testing.T) {
	client := newTestClient(ekart.NewMockAPIClient())

	result, err := client.BookShipment(context.Background(), &courier.ShipmentRequest{
		OrderID:     "ORD-4001",
		Pickup:      courier.Address{Name: "Warehouse C", Pincode: "560068", Phone: "9800000005"},
		Delivery:    courier.Address{Name: "Arjun Nair", Pincode: "682001", Phone: "9800000006"},
		Parcel:      courier.Parcel{WeightKg: 1.4},
		PaymentMode: courier.PaymentCOD,
		CODAmount:   1499,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.AWB)
	assert.Contains(t, result.TrackingURL, result.AWB)
}

func TestClient_BookShipment_Rejected(t *testing.T) {
	mockAPI := ekart.NewMockAPIClient()
	mockAPI.OnCreateShipment = func(ctx context.Context, token string, req *ekart.CreateShipmentRequest) (*ekart.CreateShipmentResponse, error) {
		return &ekart.CreateShipmentResponse{Status: "REQUEST_REJECTED", Remarks: "destination not serviceable"}, nil
	}
	client := newTestClient(mockAPI)

	_, err := client.BookShipment(context.Background(), &courier.ShipmentRequest{OrderID: "ORD-4002"})

	require.Error(t, err)
	assert.Equal(t, courier.KindUpstreamRejected, courier.Kind(err))
	assert.Contains(t, err.Error(), "destination not serviceable")
}

func TestClient_TrackShipment_Success(t *testing.T) {
	client := newTestClient(ekart.NewMockAPIClient())

	result, err := client.TrackShipment(context.Background(), "FMPC1000000001")

	require.NoError(t, err)
	assert.False(t, result.Degraded)
	assert.Equal(t, courier.StatusInTransit, result.Status)
	require.Len(t, result.History, 2)
	assert.Equal(t, courier.StatusPickedUp, result.History[0].Status)
	assert.Equal(t, "Hyderabad", result.Location)
}

func TestClient_TrackShipment_DegradesOnAuthFailure(t *testing.T) {
	mockAPI := ekart.NewMockAPIClient()
	mockAPI.SimulateErrors = true
	client := newTestClient(mockAPI)

	result, err := client.TrackShipment(context.Background(), "FMPC1000000001")

	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Contains(t, result.ManualTrackingURL, "FMPC1000000001")
}

func TestClient_CancelShipment_Success(t *testing.T) {
	client := newTestClient(ekart.NewMockAPIClient())

	result, err := client.CancelShipment(context.Background(), "FMPC1000000001")

	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestClient_RequestPickup_Success(t *testing.T) {
	client := newTestClient(ekart.NewMockAPIClient())

	result, err := client.RequestPickup(context.Background(), []string{"FMPC1000000001"})

	require.NoError(t, err)
	assert.NotEmpty(t, result.PickupID)
}
