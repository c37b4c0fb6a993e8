// Package mock provides a mock courier implementation for testing.
package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/shipdesk/logistics/pkg/courier"
)

// Client is a mock courier for testing. Zero value behavior is a healthy
// backend; individual operations can be overridden via the On* hooks or
// failed wholesale via Err.
type Client struct {
	name string

	// Err, when set, is returned by every operation.
	Err error

	// Latency is added to every operation before responding.
	Latency time.Duration

	OnAuthenticate  func(ctx context.Context) (courier.Token, error)
	OnCalculateRate func(ctx context.Context, req *courier.RateRequest) (*courier.RateQuote, error)
	OnBookShipment  func(ctx context.Context, req *courier.ShipmentRequest) (*courier.BookingResult, error)
	OnTrackShipment func(ctx context.Context, awb string) (*courier.TrackingResult, error)
}

// New creates a new mock courier.
func New(name string) *Client {
	return &Client{name: name}
}

// Name returns the courier name.
func (c *Client) Name() string {
	return c.name
}

func (c *Client) before(ctx context.Context) error {
	if c.Latency > 0 {
		select {
		case <-time.After(c.Latency):
		case <-ctx.Done():
			return courier.NewError(c.name, courier.KindUpstreamTimeout, "TIMEOUT", "mock latency exceeded deadline").WithCause(ctx.Err())
		}
	}
	return c.Err
}

// Authenticate returns a mock token valid for an hour.
func (c *Client) Authenticate(ctx context.Context) (courier.Token, error) {
	if err := c.before(ctx); err != nil {
		return courier.Token{}, err
	}
	if c.OnAuthenticate != nil {
		return c.OnAuthenticate(ctx)
	}
	return courier.Token{
		Value:     fmt.Sprintf("%s-token-%d", c.name, time.Now().UnixNano()),
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

// CalculateRate returns a mock backend-computed price.
func (c *Client) CalculateRate(ctx context.Context, req *courier.RateRequest) (*courier.RateQuote, error) {
	if err := c.before(ctx); err != nil {
		return nil, err
	}
	if c.OnCalculateRate != nil {
		return c.OnCalculateRate(ctx, req)
	}
	total := 45.0 + req.WeightKg*12.0
	if req.Express {
		total *= 1.5
	}
	return &courier.RateQuote{
		Courier:       c.name,
		ProductName:   fmt.Sprintf("%s Surface", c.name),
		Total:         total,
		Currency:      "INR",
		EstimatedDays: 4,
	}, nil
}

// BookShipment books a mock shipment.
func (c *Client) BookShipment(ctx context.Context, req *courier.ShipmentRequest) (*courier.BookingResult, error) {
	if err := c.before(ctx); err != nil {
		return nil, err
	}
	if c.OnBookShipment != nil {
		return c.OnBookShipment(ctx, req)
	}
	awb := fmt.Sprintf("%s%d", c.name[:2], time.Now().UnixNano()%1_000_000_000_000)
	return &courier.BookingResult{
		AWB:         awb,
		TrackingID:  awb,
		TrackingURL: fmt.Sprintf("https://track.%s.mock/%s", c.name, awb),
		Courier:     c.name,
	}, nil
}

// TrackShipment returns mock tracking state.
func (c *Client) TrackShipment(ctx context.Context, awb string) (*courier.TrackingResult, error) {
	if err := c.before(ctx); err != nil {
		return nil, err
	}
	if c.OnTrackShipment != nil {
		return c.OnTrackShipment(ctx, awb)
	}
	now := time.Now()
	return &courier.TrackingResult{
		AWB:          awb,
		Courier:      c.name,
		Status:       courier.StatusInTransit,
		StatusDetail: "Shipment in transit",
		Location:     "Nagpur Hub",
		Timestamp:    now,
		History: []courier.TrackingEvent{
			{Timestamp: now.Add(-36 * time.Hour), Status: courier.StatusPickedUp, Detail: "Picked up", Location: "Mumbai"},
			{Timestamp: now, Status: courier.StatusInTransit, Detail: "In transit", Location: "Nagpur Hub"},
		},
	}, nil
}

// CancelShipment cancels a mock shipment.
func (c *Client) CancelShipment(ctx context.Context, awb string) (*courier.CancelResult, error) {
	if err := c.before(ctx); err != nil {
		return nil, err
	}
	return &courier.CancelResult{AWB: awb, Success: true, Message: "cancellation accepted"}, nil
}

// RequestPickup schedules a mock pickup.
func (c *Client) RequestPickup(ctx context.Context, awbs []string) (*courier.PickupResult, error) {
	if err := c.before(ctx); err != nil {
		return nil, err
	}
	return &courier.PickupResult{
		PickupID:     fmt.Sprintf("PU-%d", time.Now().UnixNano()%1_000_000),
		ScheduledFor: time.Now().Add(24 * time.Hour),
		AWBs:         awbs,
		Message:      "pickup scheduled",
	}, nil
}

var _ courier.Courier = (*Client)(nil)
