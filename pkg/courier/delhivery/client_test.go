package delhivery_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shipdesk/logistics/pkg/courier"
	"github.com/shipdesk/logistics/pkg/courier/delhivery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newTestClient(mockClient *delhivery.MockAPIClient) *delhivery.Client {
	logger := otelzap.New(zap.NewNop())
	return delhivery.NewWithAPIClient(
		delhivery.Config{APIToken: "test-token"},
		mockClient,
		logger,
		nil,
	)
}

func TestClient_Name(t *testing.T) {
	client := newTestClient(delhivery.NewMockAPIClient())
	assert.Equal(t, "delhivery", client.Name())
}

func TestClient_Authenticate_StaticToken(t *testing.T) {
	client := newTestClient(delhivery.NewMockAPIClient())

	tok, err := client.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test-token", tok.Value)
	assert.False(t, tok.ExpiresAt.IsZero())
}

func TestClient_CalculateRate_Success(t *testing.T) {
	client := newTestClient(delhivery.NewMockAPIClient())

	quote, err := client.CalculateRate(context.Background(), &courier.RateRequest{
		OriginPincode:      "400001",
		DestinationPincode: "110001",
		WeightKg:           2,
		PaymentMode:        courier.PaymentPrepaid,
	})

	require.NoError(t, err)
	assert.Equal(t, "delhivery", quote.Courier)
	assert.Equal(t, "INR", quote.Currency)
	assert.Greater(t, quote.Total, 0.0)
}

func TestClient_BookShipment_Success(t *testing.T) {
	client := newTestClient(delhivery.NewMockAPIClient())

	result, err := client.BookShipment(context.Background(), &courier.ShipmentRequest{
		OrderID: "ORD-1001",
		Pickup: courier.Address{
			Name: "Warehouse A", City: "Mumbai", Pincode: "400001", Phone: "9800000001",
		},
		Delivery: courier.Address{
			Name: "Asha Rao", City: "Delhi", State: "Delhi", Pincode: "110001", Phone: "9800000002",
			Line1: "14 Connaught Place",
		},
		Parcel:      courier.Parcel{WeightKg: 1.2},
		PaymentMode: courier.PaymentPrepaid,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.AWB)
	assert.Contains(t, result.TrackingURL, result.AWB)
	assert.Equal(t, "delhivery", result.Courier)
	assert.NotEmpty(t, result.Raw)
}

func TestClient_BookShipment_ManifestRejected(t *testing.T) {
	mockAPI := delhivery.NewMockAPIClient()
	mockAPI.OnCreatePackage = func(ctx context.Context, req *delhivery.ManifestRequest) (*delhivery.ManifestResponse, error) {
		return &delhivery.ManifestResponse{
			Success: true,
			Packages: []delhivery.ManifestPackage{
				{Status: "Fail", Remarks: "pincode not serviceable"},
			},
		}, nil
	}
	client := newTestClient(mockAPI)

	_, err := client.BookShipment(context.Background(), &courier.ShipmentRequest{OrderID: "ORD-1002"})

	// A rejected manifest must surface as a failure, never a fake waybill.
	require.Error(t, err)
	assert.Equal(t, courier.KindUpstreamRejected, courier.Kind(err))
	assert.Contains(t, err.Error(), "pincode not serviceable")
}

func TestClient_BookShipment_APIError(t *testing.T) {
	mockAPI := delhivery.NewMockAPIClient()
	mockAPI.SimulateErrors = true
	client := newTestClient(mockAPI)

	_, err := client.BookShipment(context.Background(), &courier.ShipmentRequest{OrderID: "ORD-1003"})

	require.Error(t, err)
	var cerr *courier.Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "delhivery", cerr.Courier)
}

func TestClient_TrackShipment_Success(t *testing.T) {
	client := newTestClient(delhivery.NewMockAPIClient())

	result, err := client.TrackShipment(context.Background(), "1234567890123")

	require.NoError(t, err)
	assert.False(t, result.Degraded)
	assert.Equal(t, courier.StatusInTransit, result.Status)
	assert.Len(t, result.History, 2)
	assert.Equal(t, courier.StatusBooked, result.History[0].Status)
}

func TestClient_TrackShipment_DegradesOnUpstreamFailure(t *testing.T) {
	mockAPI := delhivery.NewMockAPIClient()
	mockAPI.SimulateErrors = true
	client := newTestClient(mockAPI)

	result, err := client.TrackShipment(context.Background(), "1234567890123")

	// Tracking failures must not break the caller: degraded, not an error.
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Equal(t, courier.StatusUnknown, result.Status)
	assert.Contains(t, result.ManualTrackingURL, "1234567890123")
}

func TestClient_CancelShipment_Success(t *testing.T) {
	client := newTestClient(delhivery.NewMockAPIClient())

	result, err := client.CancelShipment(context.Background(), "1234567890123")

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "1234567890123", result.AWB)
}

func TestClient_RequestPickup_Success(t *testing.T) {
	client := newTestClient(delhivery.NewMockAPIClient())

	result, err := client.RequestPickup(context.Background(), []string{"awb-1", "awb-2"})

	require.NoError(t, err)
	assert.NotEmpty(t, result.PickupID)
	assert.Len(t, result.AWBs, 2)
}
