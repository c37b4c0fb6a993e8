package shadowfax_test

import (
	"context"
	"testing"

	"github.com/shipdesk/logistics/pkg/courier"
	"github.com/shipdesk/logistics/pkg/courier/shadowfax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newTestClient(mockClient *shadowfax.MockAPIClient) *shadowfax.Client {
	logger := otelzap.New(zap.NewNop())
	return shadowfax.NewWithAPIClient(
		shadowfax.Config{AuthToken: "sfx-static-token"},
		mockClient,
		logger,
		nil,
	)
}

func TestClient_Authenticate_StaticToken(t *testing.T) {
	client := newTestClient(shadowfax.NewMockAPIClient())

	token, err := client.Authenticate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "sfx-static-token", token.Value)
	assert.False(t, token.ExpiresAt.IsZero())
}

func TestClient_Authenticate_MissingToken(t *testing.T) {
	logger := otelzap.New(zap.NewNop())
	client := shadowfax.NewWithAPIClient(shadowfax.Config{}, shadowfax.NewMockAPIClient(), logger, nil)

	_, err := client.Authenticate(context.Background())

	require.Error(t, err)
	assert.Equal(t, courier.KindAuthFailed, courier.Kind(err))
}

func TestClient_Authenticate_InvalidToken(t *testing.T) {
	mockAPI := shadowfax.NewMockAPIClient()
	mockAPI.OnValidateToken = func(ctx context.Context) error {
		return &shadowfax.APIError{Code: "HTTP_401", Message: "invalid token", StatusCode: 401}
	}
	client := newTestClient(mockAPI)

	_, err := client.Authenticate(context.Background())

	require.Error(t, err)
	assert.Equal(t, courier.KindAuthFailed, courier.Kind(err))
}

func TestClient_CalculateRate_NotSupported(t *testing.T) {
	client := newTestClient(shadowfax.NewMockAPIClient())

	_, err := client.CalculateRate(context.Background(), &courier.RateRequest{})
	assert.ErrorIs(t, err, courier.ErrRateNotSupported)
}

func TestClient_BookShipment_Success(t *testing.T) {
	client := newTestClient(shadowfax.NewMockAPIClient())

	result, err := client.BookShipment(context.Background(), &courier.ShipmentRequest{
		OrderID:     "ORD-5001",
		Pickup:      courier.Address{Name: "Dark Store 7", Pincode: "560034", Phone: "9800000007"},
		Delivery:    courier.Address{Name: "Priya Iyer", Pincode: "560038", Phone: "9800000008"},
		Parcel:      courier.Parcel{WeightKg: 0.4},
		PaymentMode: courier.PaymentPrepaid,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.AWB)
	assert.Contains(t, result.TrackingURL, result.AWB)
}

func TestClient_BookShipment_Rejected(t *testing.T) {
	mockAPI := shadowfax.NewMockAPIClient()
	mockAPI.OnCreateOrder = func(ctx context.Context, req *shadowfax.OrderRequest) (*shadowfax.OrderResponse, error) {
		return &shadowfax.OrderResponse{Accepted: false, Message: "outside service area"}, nil
	}
	client := newTestClient(mockAPI)

	_, err := client.BookShipment(context.Background(), &courier.ShipmentRequest{OrderID: "ORD-5002"})

	require.Error(t, err)
	assert.Equal(t, courier.KindUpstreamRejected, courier.Kind(err))
	assert.Contains(t, err.Error(), "outside service area")
}

func TestClient_TrackShipment_Success(t *testing.T) {
	client := newTestClient(shadowfax.NewMockAPIClient())

	result, err := client.TrackShipment(context.Background(), "SFX100000001")

	require.NoError(t, err)
	assert.False(t, result.Degraded)
	assert.Equal(t, courier.StatusOutForDelivery, result.Status)
	require.Len(t, result.History, 2)
	assert.Equal(t, courier.StatusPickedUp, result.History[0].Status)
}

func TestClient_TrackShipment_DegradesOnUpstreamFailure(t *testing.T) {
	mockAPI := shadowfax.NewMockAPIClient()
	mockAPI.SimulateErrors = true
	client := newTestClient(mockAPI)

	result, err := client.TrackShipment(context.Background(), "SFX100000001")

	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Contains(t, result.ManualTrackingURL, "SFX100000001")
}

func TestClient_CancelShipment_Success(t *testing.T) {
	client := newTestClient(shadowfax.NewMockAPIClient())

	result, err := client.CancelShipment(context.Background(), "SFX100000001")

	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestClient_RequestPickup_AutoAssigned(t *testing.T) {
	client := newTestClient(shadowfax.NewMockAPIClient())

	result, err := client.RequestPickup(context.Background(), []string{"SFX100000001"})

	require.NoError(t, err)
	assert.Equal(t, "auto", result.PickupID)
	assert.Contains(t, result.Message, "automatic")
}
