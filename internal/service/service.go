// Package service wires the rate engine and the courier registry into the
// operations the HTTP layer exposes.
package service

import (
	"context"
	"sort"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/shipdesk/logistics/internal/telemetry"
	"github.com/shipdesk/logistics/pkg/courier"
	"github.com/shipdesk/logistics/pkg/rate"
)

// Service is the application facade over pricing and courier operations.
type Service struct {
	engine   *rate.Engine
	store    *rate.Store
	registry *courier.Registry
	metrics  *telemetry.Metrics
	logger   *otelzap.Logger
}

// New creates the service facade.
func New(engine *rate.Engine, store *rate.Store, registry *courier.Registry, metrics *telemetry.Metrics, logger *otelzap.Logger) *Service {
	return &Service{
		engine:   engine,
		store:    store,
		registry: registry,
		metrics:  metrics,
		logger:   logger,
	}
}

// QuoteResult combines card-driven pricing with live backend quotes for
// couriers that have no rate card on the route.
type QuoteResult struct {
	rate.QuoteResponse
	DirectQuotes []courier.RateQuote `json:"directQuotes,omitempty"`
}

// Quote prices a shipment. Card-driven pricing is authoritative; registered
// couriers absent from the card quotes are asked for a live price so a
// missing card never hides a courier entirely.
func (s *Service) Quote(ctx context.Context, req rate.QuoteRequest) (*QuoteResult, error) {
	start := time.Now()

	resp, err := s.engine.Quote(ctx, req)
	if err != nil {
		s.metrics.RecordRequest("quote", "all", "error", time.Since(start).Seconds())
		return nil, err
	}

	result := &QuoteResult{QuoteResponse: *resp}

	// Zone is empty only when the destination itself is unserviceable; no
	// point asking backends to price it then.
	if resp.Zone != "" {
		carded := make(map[string]bool, len(resp.Quotes))
		for _, q := range resp.Quotes {
			carded[q.Courier] = true
		}

		direct := s.registry.QuoteAll(ctx, &courier.RateRequest{
			OriginPincode:      req.OriginPincode,
			DestinationPincode: req.DestinationPincode,
			WeightKg:           req.WeightKg,
			CODAmount:          req.CODAmount,
			Express:            req.Mode == rate.ModeExpress,
		})
		for _, q := range direct {
			if !carded[q.Courier] {
				result.DirectQuotes = append(result.DirectQuotes, *q)
			}
		}
		sort.Slice(result.DirectQuotes, func(i, j int) bool {
			return result.DirectQuotes[i].Total < result.DirectQuotes[j].Total
		})
	}

	s.metrics.RecordRequest("quote", "all", "ok", time.Since(start).Seconds())
	return result, nil
}

// SellerRates materializes the seller's effective rate cards.
func (s *Service) SellerRates(ctx context.Context, sellerID string) ([]rate.EffectiveRate, error) {
	return s.store.ResolveEffectiveRates(ctx, sellerID)
}

// SaveOverride creates or updates a seller rate override.
func (s *Service) SaveOverride(ctx context.Context, sellerID string, patch rate.OverridePatch, actorID string) (*rate.SellerRateOverride, error) {
	return s.store.CreateOrUpdateOverride(ctx, sellerID, patch, actorID)
}

// DeleteOverride removes a seller rate override, reverting to the base card.
func (s *Service) DeleteOverride(ctx context.Context, sellerID, overrideID string) error {
	return s.store.RemoveOverride(ctx, sellerID, overrideID)
}

// BookShipment books a shipment with the named courier.
func (s *Service) BookShipment(ctx context.Context, courierID string, req *courier.ShipmentRequest) (*courier.BookingResult, error) {
	start := time.Now()
	result, err := s.registry.BookWithCourier(ctx, courierID, req)
	s.observe("book", courierID, err, start)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Shipment booked",
		zap.String("courier", courierID),
		zap.String("order_id", req.OrderID),
		zap.String("awb", result.AWB),
	)
	return result, nil
}

// TrackShipment tracks an AWB with the named courier.
func (s *Service) TrackShipment(ctx context.Context, courierID, awb string) (*courier.TrackingResult, error) {
	start := time.Now()
	result, err := s.registry.TrackShipment(ctx, courierID, awb)
	s.observe("track", courierID, err, start)
	return result, err
}

// CancelShipment cancels an AWB with the named courier.
func (s *Service) CancelShipment(ctx context.Context, courierID, awb string) (*courier.CancelResult, error) {
	start := time.Now()
	result, err := s.registry.CancelShipment(ctx, courierID, awb)
	s.observe("cancel", courierID, err, start)
	return result, err
}

// RequestPickup schedules a pickup with the named courier.
func (s *Service) RequestPickup(ctx context.Context, courierID string, awbs []string) (*courier.PickupResult, error) {
	start := time.Now()
	result, err := s.registry.RequestPickup(ctx, courierID, awbs)
	s.observe("pickup", courierID, err, start)
	return result, err
}

// Couriers returns the registered courier names, sorted.
func (s *Service) Couriers() []string {
	names := s.registry.Names()
	sort.Strings(names)
	return names
}

func (s *Service) observe(operation, courierID string, err error, start time.Time) {
	status := "ok"
	if err != nil {
		status = "error"
		if kind := courier.Kind(err); kind != "" {
			s.metrics.RecordError(courierID, string(kind))
		}
	}
	s.metrics.RecordRequest(operation, courierID, status, time.Since(start).Seconds())
}
