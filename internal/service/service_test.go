package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/shipdesk/logistics/internal/repository"
	"github.com/shipdesk/logistics/internal/service"
	"github.com/shipdesk/logistics/internal/telemetry"
	"github.com/shipdesk/logistics/pkg/courier"
	"github.com/shipdesk/logistics/pkg/courier/mock"
	"github.com/shipdesk/logistics/pkg/rate"
)

func newTestService(t *testing.T, couriers ...courier.Courier) *service.Service {
	t.Helper()
	logger := otelzap.New(zap.NewNop())

	repo := repository.NewMemory()
	repo.AddRateCard(rate.RateCard{
		ID:             "card-dl-surface",
		Courier:        "delhivery",
		ProductName:    "Delhivery Surface",
		Mode:           rate.ModeSurface,
		Zone:           rate.ZoneMetroToMetro,
		RateBand:       rate.DefaultRateBand,
		BaseRate:       30,
		AdditionalRate: 15,
		CODFlatAmount:  25,
		CODPercent:     1.5,
		IsActive:       true,
	})
	repo.AddPincode(rate.PincodeRecord{Pincode: "110001", District: "New Delhi", State: "Delhi", IsMetro: true, IsServiceable: true})
	repo.AddPincode(rate.PincodeRecord{Pincode: "193501", District: "Kupwara", State: "Jammu and Kashmir", IsServiceable: false})

	store := rate.NewStore(repo, logger)
	engine := rate.NewEngine(store, repo, rate.EngineConfig{}, logger)

	registry := courier.NewRegistry(logger, 2*time.Second)
	for _, c := range couriers {
		registry.Register(c)
	}

	metrics := telemetry.NewMetricsWith(prometheus.NewRegistry())
	return service.New(engine, store, registry, metrics, logger)
}

func TestService_Quote_DirectQuotesForNonCardedCouriers(t *testing.T) {
	// delhivery has a rate card, shadowfax does not. The card quote stays
	// authoritative for delhivery and shadowfax surfaces as a direct quote.
	svc := newTestService(t, mock.New("delhivery"), mock.New("shadowfax"))

	result, err := svc.Quote(context.Background(), rate.QuoteRequest{
		SellerID:           "seller-1",
		OriginPincode:      "400001",
		DestinationPincode: "110001",
		WeightKg:           1.0,
	})

	require.NoError(t, err)
	require.True(t, result.Available)
	require.Len(t, result.Quotes, 1)
	assert.Equal(t, "delhivery", result.Quotes[0].Courier)

	require.Len(t, result.DirectQuotes, 1)
	assert.Equal(t, "shadowfax", result.DirectQuotes[0].Courier)
	assert.Greater(t, result.DirectQuotes[0].Total, 0.0)
}

func TestService_Quote_NoDirectQuotesWhenUnserviceable(t *testing.T) {
	backend := mock.New("shadowfax")
	called := false
	backend.OnCalculateRate = func(ctx context.Context, req *courier.RateRequest) (*courier.RateQuote, error) {
		called = true
		return nil, courier.ErrRateNotSupported
	}
	svc := newTestService(t, backend)

	result, err := svc.Quote(context.Background(), rate.QuoteRequest{
		SellerID:           "seller-1",
		OriginPincode:      "400001",
		DestinationPincode: "193501",
		WeightKg:           1.0,
	})

	require.NoError(t, err)
	assert.False(t, result.Available)
	assert.Empty(t, result.DirectQuotes)
	assert.False(t, called, "unserviceable destinations must not fan out to backends")
}

func TestService_Quote_BackendFailureDoesNotBreakCardQuotes(t *testing.T) {
	broken := mock.New("shadowfax")
	broken.Err = courier.NewError("shadowfax", courier.KindUpstreamRejected, "500", "internal error")
	svc := newTestService(t, mock.New("delhivery"), broken)

	result, err := svc.Quote(context.Background(), rate.QuoteRequest{
		SellerID:           "seller-1",
		OriginPincode:      "400001",
		DestinationPincode: "110001",
		WeightKg:           1.0,
	})

	require.NoError(t, err)
	require.Len(t, result.Quotes, 1)
	assert.Empty(t, result.DirectQuotes)
}

func TestService_Quote_ValidationError(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Quote(context.Background(), rate.QuoteRequest{
		SellerID:           "seller-1",
		OriginPincode:      "400001",
		DestinationPincode: "110001",
		WeightKg:           -2,
	})

	assert.ErrorIs(t, err, rate.ErrValidation)
}

func TestService_Overrides_RoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	override, err := svc.SaveOverride(ctx, "seller-1", rate.OverridePatch{
		Courier:     "delhivery",
		ProductName: "Delhivery Surface",
		Mode:        rate.ModeSurface,
		Zone:        rate.ZoneMetroToMetro,
		BaseRate:    ptr(22.0),
	}, "admin-1")
	require.NoError(t, err)

	rates, err := svc.SellerRates(ctx, "seller-1")
	require.NoError(t, err)
	require.Len(t, rates, 1)
	assert.True(t, rates[0].IsOverride)
	assert.Equal(t, 22.0, rates[0].BaseRate)

	require.NoError(t, svc.DeleteOverride(ctx, "seller-1", override.ID))

	rates, err = svc.SellerRates(ctx, "seller-1")
	require.NoError(t, err)
	require.Len(t, rates, 1)
	assert.False(t, rates[0].IsOverride)
	assert.Equal(t, 30.0, rates[0].BaseRate)
}

func TestService_BookShipment_Success(t *testing.T) {
	svc := newTestService(t, mock.New("delhivery"))

	result, err := svc.BookShipment(context.Background(), "delhivery", &courier.ShipmentRequest{
		OrderID:     "ORD-9001",
		Pickup:      courier.Address{Name: "Warehouse", Pincode: "400001"},
		Delivery:    courier.Address{Name: "Customer", Pincode: "110001"},
		Parcel:      courier.Parcel{WeightKg: 1.0},
		PaymentMode: courier.PaymentPrepaid,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.AWB)
	assert.Equal(t, "delhivery", result.Courier)
}

func TestService_BookShipment_UnknownCourier(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.BookShipment(context.Background(), "dtdc", &courier.ShipmentRequest{OrderID: "ORD-1"})
	assert.ErrorIs(t, err, courier.ErrCourierNotFound)
}

func TestService_TrackShipment_MapsFailureToUnavailable(t *testing.T) {
	broken := mock.New("delhivery")
	broken.Err = errors.New("connection reset by peer")
	svc := newTestService(t, broken)

	_, err := svc.TrackShipment(context.Background(), "delhivery", "AWB123")

	require.ErrorIs(t, err, courier.ErrProviderUnavailable)
	assert.NotContains(t, err.Error(), "connection reset")
}

func TestService_CancelShipment(t *testing.T) {
	svc := newTestService(t, mock.New("delhivery"))

	result, err := svc.CancelShipment(context.Background(), "delhivery", "AWB123")
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestService_RequestPickup(t *testing.T) {
	svc := newTestService(t, mock.New("delhivery"))

	result, err := svc.RequestPickup(context.Background(), "delhivery", []string{"AWB1", "AWB2"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.PickupID)
	assert.Equal(t, []string{"AWB1", "AWB2"}, result.AWBs)
}

func TestService_Couriers_Sorted(t *testing.T) {
	svc := newTestService(t, mock.New("xpressbees"), mock.New("delhivery"), mock.New("ekart"))

	assert.Equal(t, []string{"delhivery", "ekart", "xpressbees"}, svc.Couriers())
}

func ptr(v float64) *float64 { return &v }
