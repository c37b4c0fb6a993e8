package courier_test

import (
	"context"
	"testing"
	"time"

	"github.com/shipdesk/logistics/pkg/courier"
	"github.com/shipdesk/logistics/pkg/courier/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newTestRegistry(timeout time.Duration) *courier.Registry {
	return courier.NewRegistry(otelzap.New(zap.NewNop()), timeout)
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	registry := newTestRegistry(0)
	registry.Register(mock.New("delhivery"))
	registry.Register(mock.New("ekart"))

	c, err := registry.Get("delhivery")
	require.NoError(t, err)
	assert.Equal(t, "delhivery", c.Name())
	assert.Equal(t, 2, registry.Count())
	assert.ElementsMatch(t, []string{"delhivery", "ekart"}, registry.Names())
}

func TestRegistry_GetUnknownCourier(t *testing.T) {
	registry := newTestRegistry(0)

	_, err := registry.Get("nonexistent")

	assert.ErrorIs(t, err, courier.ErrCourierNotFound)
	assert.Contains(t, err.Error(), "nonexistent")
}

func TestRegistry_QuoteAll_AllHealthy(t *testing.T) {
	registry := newTestRegistry(0)
	registry.Register(mock.New("delhivery"))
	registry.Register(mock.New("xpressbees"))
	registry.Register(mock.New("ekart"))

	quotes := registry.QuoteAll(context.Background(), &courier.RateRequest{
		OriginPincode:      "400001",
		DestinationPincode: "110001",
		WeightKg:           1.2,
	})

	assert.Len(t, quotes, 3)
}

func TestRegistry_QuoteAll_PartialFailure(t *testing.T) {
	registry := newTestRegistry(0)
	registry.Register(mock.New("delhivery"))

	broken := mock.New("ekart")
	broken.Err = courier.NewError("ekart", courier.KindUpstreamRejected, "HTTP_500", "internal error")
	registry.Register(broken)

	quotes := registry.QuoteAll(context.Background(), &courier.RateRequest{WeightKg: 1})

	// The failing courier is excluded, the healthy one still answers.
	require.Len(t, quotes, 1)
	assert.Equal(t, "delhivery", quotes[0].Courier)
}

func TestRegistry_QuoteAll_SlowCourierTimesOut(t *testing.T) {
	registry := newTestRegistry(50 * time.Millisecond)
	registry.Register(mock.New("delhivery"))

	slow := mock.New("bluedart")
	slow.Latency = 500 * time.Millisecond
	registry.Register(slow)

	start := time.Now()
	quotes := registry.QuoteAll(context.Background(), &courier.RateRequest{WeightKg: 1})

	require.Len(t, quotes, 1)
	assert.Equal(t, "delhivery", quotes[0].Courier)
	assert.Less(t, time.Since(start), 400*time.Millisecond, "slow courier must not stall the fan-out")
}

func TestRegistry_QuoteAll_RateNotSupportedSkippedSilently(t *testing.T) {
	registry := newTestRegistry(0)
	registry.Register(mock.New("delhivery"))

	noRates := mock.New("shadowfax")
	noRates.OnCalculateRate = func(ctx context.Context, req *courier.RateRequest) (*courier.RateQuote, error) {
		return nil, courier.ErrRateNotSupported
	}
	registry.Register(noRates)

	quotes := registry.QuoteAll(context.Background(), &courier.RateRequest{WeightKg: 1})

	require.Len(t, quotes, 1)
	assert.Equal(t, "delhivery", quotes[0].Courier)
}

func TestRegistry_BookWithCourier_Success(t *testing.T) {
	registry := newTestRegistry(0)
	registry.Register(mock.New("delhivery"))

	result, err := registry.BookWithCourier(context.Background(), "delhivery", &courier.ShipmentRequest{OrderID: "ORD-1"})

	require.NoError(t, err)
	assert.NotEmpty(t, result.AWB)
}

func TestRegistry_BookWithCourier_MapsFailureToUnavailable(t *testing.T) {
	registry := newTestRegistry(0)
	broken := mock.New("delhivery")
	broken.Err = courier.NewError("delhivery", courier.KindUpstreamRejected, "E500", "raw upstream body")
	registry.Register(broken)

	_, err := registry.BookWithCourier(context.Background(), "delhivery", &courier.ShipmentRequest{OrderID: "ORD-1"})

	require.Error(t, err)
	assert.ErrorIs(t, err, courier.ErrProviderUnavailable)
	// Upstream detail stays in logs, never in the returned error.
	assert.NotContains(t, err.Error(), "raw upstream body")
}

func TestRegistry_BookWithCourier_NeverRetries(t *testing.T) {
	registry := newTestRegistry(0)
	attempts := 0
	flaky := mock.New("delhivery")
	flaky.OnBookShipment = func(ctx context.Context, req *courier.ShipmentRequest) (*courier.BookingResult, error) {
		attempts++
		return nil, courier.NewError("delhivery", courier.KindUpstreamTimeout, "TIMEOUT", "slow")
	}
	registry.Register(flaky)

	_, err := registry.BookWithCourier(context.Background(), "delhivery", &courier.ShipmentRequest{OrderID: "ORD-1"})

	require.Error(t, err)
	assert.Equal(t, 1, attempts, "booking is not idempotent upstream, a timeout must not be retried")
}

func TestRegistry_TrackShipment_RetriesOnceOnTimeout(t *testing.T) {
	registry := newTestRegistry(0)
	attempts := 0
	flaky := mock.New("bluedart")
	flaky.OnTrackShipment = func(ctx context.Context, awb string) (*courier.TrackingResult, error) {
		attempts++
		if attempts == 1 {
			return nil, courier.NewError("bluedart", courier.KindUpstreamTimeout, "TIMEOUT", "slow")
		}
		return &courier.TrackingResult{AWB: awb, Status: courier.StatusDelivered}, nil
	}
	registry.Register(flaky)

	result, err := registry.TrackShipment(context.Background(), "bluedart", "awb-1")

	require.NoError(t, err)
	assert.Equal(t, courier.StatusDelivered, result.Status)
	assert.Equal(t, 2, attempts)
}

func TestRegistry_TrackShipment_NoRetryOnRejection(t *testing.T) {
	registry := newTestRegistry(0)
	attempts := 0
	broken := mock.New("bluedart")
	broken.OnTrackShipment = func(ctx context.Context, awb string) (*courier.TrackingResult, error) {
		attempts++
		return nil, courier.NewError("bluedart", courier.KindUpstreamRejected, "BAD_AWB", "unknown waybill")
	}
	registry.Register(broken)

	_, err := registry.TrackShipment(context.Background(), "bluedart", "awb-1")

	require.ErrorIs(t, err, courier.ErrProviderUnavailable)
	assert.Equal(t, 1, attempts)
}

func TestRegistry_CancelShipment_Success(t *testing.T) {
	registry := newTestRegistry(0)
	registry.Register(mock.New("ekart"))

	result, err := registry.CancelShipment(context.Background(), "ekart", "awb-9")

	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestRegistry_RequestPickup_Success(t *testing.T) {
	registry := newTestRegistry(0)
	registry.Register(mock.New("ekart"))

	result, err := registry.RequestPickup(context.Background(), "ekart", []string{"awb-9", "awb-10"})

	require.NoError(t, err)
	assert.NotEmpty(t, result.PickupID)
	assert.Len(t, result.AWBs, 2)
}
