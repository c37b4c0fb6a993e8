package courier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultCallTimeout bounds each adapter call issued by the registry.
const DefaultCallTimeout = 30 * time.Second

// trackRetries is the bounded transparent retry count for tracking calls.
// Tracking is safe to retry; booking never is.
const trackRetries = 1

// Registry manages registered couriers and fans requests out to them.
// One courier's failure never aborts the others.
type Registry struct {
	couriers    map[string]Courier
	mu          sync.RWMutex
	logger      *otelzap.Logger
	callTimeout time.Duration
}

// NewRegistry creates a courier registry.
func NewRegistry(logger *otelzap.Logger, callTimeout time.Duration) *Registry {
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	return &Registry{
		couriers:    make(map[string]Courier),
		logger:      logger,
		callTimeout: callTimeout,
	}
}

// Register adds a courier to the registry, replacing any previous courier
// with the same name.
func (r *Registry) Register(c Courier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.couriers[c.Name()] = c
}

// Get returns a courier by name.
func (r *Registry) Get(name string) (Courier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.couriers[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrCourierNotFound, name)
}

// All returns all registered couriers.
func (r *Registry) All() []Courier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Courier, 0, len(r.couriers))
	for _, c := range r.couriers {
		result = append(result, c)
	}
	return result
}

// Names returns the names of all registered couriers.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.couriers))
	for name := range r.couriers {
		names = append(names, name)
	}
	return names
}

// Count returns the number of registered couriers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.couriers)
}

// QuoteAll asks every registered courier to price the route concurrently and
// returns whichever succeed within the per-call timeout. Failures are logged
// and excluded; the caller-supplied deadline propagates to every branch and
// a branch timeout never cancels its siblings.
func (r *Registry) QuoteAll(ctx context.Context, req *RateRequest) []*RateQuote {
	couriers := r.All()

	results := make([]*RateQuote, 0, len(couriers))
	mu := &sync.Mutex{}

	g := &errgroup.Group{}
	for _, c := range couriers {
		c := c
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
			defer cancel()

			quote, err := c.CalculateRate(callCtx, req)
			if err != nil {
				if !errors.Is(err, ErrRateNotSupported) {
					r.logger.Warn("Courier rate call failed",
						zap.String("courier", c.Name()),
						zap.String("kind", string(Kind(err))),
						zap.Error(err),
					)
				}
				return nil // partial-failure tolerance
			}
			mu.Lock()
			results = append(results, quote)
			mu.Unlock()
			return nil
		})
	}

	g.Wait()
	return results
}

// BookWithCourier books a shipment with one courier by id. Booking is never
// retried here: the upstreams give no idempotency guarantee, so a retry
// needs caller confirmation.
func (r *Registry) BookWithCourier(ctx context.Context, courierID string, req *ShipmentRequest) (*BookingResult, error) {
	c, err := r.Get(courierID)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	result, err := c.BookShipment(callCtx, req)
	if err != nil {
		return nil, r.unavailable(c.Name(), "book", err)
	}
	return result, nil
}

// TrackShipment tracks an AWB with one courier, retrying transparently on
// timeout up to a small bounded count. Adapters already degrade gracefully
// on upstream failure; an error here means the adapter itself gave up.
func (r *Registry) TrackShipment(ctx context.Context, courierID, awb string) (*TrackingResult, error) {
	c, err := r.Get(courierID)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= trackRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
		result, err := c.TrackShipment(callCtx, awb)
		cancel()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			break
		}
	}
	return nil, r.unavailable(c.Name(), "track", lastErr)
}

// CancelShipment cancels an AWB with one courier.
func (r *Registry) CancelShipment(ctx context.Context, courierID, awb string) (*CancelResult, error) {
	c, err := r.Get(courierID)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	result, err := c.CancelShipment(callCtx, awb)
	if err != nil {
		return nil, r.unavailable(c.Name(), "cancel", err)
	}
	return result, nil
}

// RequestPickup schedules a pickup with one courier.
func (r *Registry) RequestPickup(ctx context.Context, courierID string, awbs []string) (*PickupResult, error) {
	c, err := r.Get(courierID)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	result, err := c.RequestPickup(callCtx, awbs)
	if err != nil {
		return nil, r.unavailable(c.Name(), "pickup", err)
	}
	return result, nil
}

// unavailable logs the classified adapter failure with full detail and maps
// it to the single externally-visible unavailability error. Raw upstream
// error bodies never cross this boundary.
func (r *Registry) unavailable(courierName, operation string, err error) error {
	r.logger.Error("Courier operation failed",
		zap.String("courier", courierName),
		zap.String("operation", operation),
		zap.String("kind", string(Kind(err))),
		zap.Error(err),
	)
	return fmt.Errorf("%w: %s", ErrProviderUnavailable, courierName)
}
