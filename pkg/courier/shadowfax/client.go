// Package shadowfax provides integration with the Shadowfax delivery API.
package shadowfax

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shipdesk/logistics/pkg/courier"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const courierName = "shadowfax"

const trackingBaseURL = "https://tracker.shadowfax.in/#/track/"

// Config holds Shadowfax configuration.
type Config struct {
	AuthToken string
	BaseURL   string
	UseMock   bool
}

// Client is the Shadowfax courier client. The bearer token is static,
// issued at onboarding; Authenticate validates it against the profile
// endpoint on first use.
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer

	mu        sync.Mutex
	validated bool
}

// New creates a new Shadowfax client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient
	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL:   cfg.BaseURL,
			AuthToken: cfg.AuthToken,
			Timeout:   30 * time.Second,
		})
	}
	return NewWithAPIClient(cfg, apiClient, logger, tracer)
}

// NewWithAPIClient creates a new Shadowfax client with a custom API client.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	return &Client{config: cfg, apiClient: apiClient, logger: logger, tracer: tracer}
}

// Name returns the courier name.
func (c *Client) Name() string {
	return courierName
}

// Authenticate returns the static bearer token, validating it upstream the
// first time. A static token has no real expiry; a nominal one is reported
// so callers can treat all couriers uniformly.
func (c *Client) Authenticate(ctx context.Context) (courier.Token, error) {
	if c.config.AuthToken == "" && !c.config.UseMock {
		return courier.Token{}, courier.NewError(courierName, courier.KindAuthFailed, "NO_TOKEN",
			"auth token not configured")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.validated {
		if err := c.apiClient.ValidateToken(ctx); err != nil {
			return courier.Token{}, classifyAuth(err)
		}
		c.validated = true
		c.logger.Info("Shadowfax token validated")
	}
	return courier.Token{Value: c.config.AuthToken, ExpiresAt: time.Now().Add(24 * time.Hour)}, nil
}

// CalculateRate is not offered by the Shadowfax integration; pricing comes
// from rate cards.
func (c *Client) CalculateRate(ctx context.Context, req *courier.RateRequest) (*courier.RateQuote, error) {
	return nil, courier.ErrRateNotSupported
}

// BookShipment books a delivery order with Shadowfax.
func (c *Client) BookShipment(ctx context.Context, req *courier.ShipmentRequest) (*courier.BookingResult, error) {
	if _, err := c.Authenticate(ctx); err != nil {
		return nil, err
	}

	c.logger.Info("Creating Shadowfax order",
		zap.String("order_id", req.OrderID),
		zap.String("destination_pin", req.Delivery.Pincode),
	)

	apiResp, err := c.apiClient.CreateOrder(ctx, orderFromRequest(req))
	if err != nil {
		return nil, classify("book", err)
	}
	if !apiResp.Accepted || apiResp.AWBNumber == "" {
		return nil, courier.NewError(courierName, courier.KindUpstreamRejected, "ORDER_REJECTED",
			firstNonEmpty(apiResp.Message, "order rejected"))
	}

	raw, _ := json.Marshal(apiResp)
	return &courier.BookingResult{
		AWB:         apiResp.AWBNumber,
		TrackingID:  apiResp.AWBNumber,
		TrackingURL: trackingBaseURL + apiResp.AWBNumber,
		Courier:     courierName,
		Raw:         raw,
	}, nil
}

// TrackShipment returns tracking state for an AWB, degrading to manual
// tracking instructions when the upstream is unreachable.
func (c *Client) TrackShipment(ctx context.Context, awb string) (*courier.TrackingResult, error) {
	apiResp, err := c.apiClient.TrackOrder(ctx, awb)
	if err != nil {
		c.logger.Warn("Shadowfax tracking degraded", zap.String("awb", awb), zap.Error(err))
		return degradedTracking(awb), nil
	}

	history := make([]courier.TrackingEvent, 0, len(apiResp.Events))
	for _, event := range apiResp.Events {
		ts, _ := time.Parse(time.RFC3339, event.Timestamp)
		history = append(history, courier.TrackingEvent{
			Timestamp:   ts,
			Status:      mapStatus(event.Status),
			Detail:      firstNonEmpty(event.Remark, event.Status),
			Location:    event.Location,
			CarrierCode: event.Status,
		})
	}

	result := &courier.TrackingResult{
		AWB:          awb,
		Courier:      courierName,
		Status:       mapStatus(apiResp.Status),
		StatusDetail: apiResp.Status,
		History:      history,
	}
	if len(history) > 0 {
		last := history[len(history)-1]
		result.Location = last.Location
		result.Timestamp = last.Timestamp
	}
	return result, nil
}

// CancelShipment cancels a booked order.
func (c *Client) CancelShipment(ctx context.Context, awb string) (*courier.CancelResult, error) {
	apiResp, err := c.apiClient.CancelOrder(ctx, awb)
	if err != nil {
		return nil, classify("cancel", err)
	}
	return &courier.CancelResult{
		AWB:     awb,
		Success: apiResp.Cancelled,
		Message: firstNonEmpty(apiResp.Message, "cancellation processed"),
	}, nil
}

// RequestPickup reports the rider assignment Shadowfax performs on its own;
// there is no pickup-scheduling endpoint to call.
func (c *Client) RequestPickup(ctx context.Context, awbs []string) (*courier.PickupResult, error) {
	if _, err := c.Authenticate(ctx); err != nil {
		return nil, err
	}
	return &courier.PickupResult{
		PickupID:     "auto",
		ScheduledFor: time.Now(),
		AWBs:         awbs,
		Message:      "rider assignment is automatic on order creation",
	}, nil
}

func orderFromRequest(req *courier.ShipmentRequest) *OrderRequest {
	return &OrderRequest{
		ClientOrderID: req.OrderID,
		IsCOD:         req.PaymentMode == courier.PaymentCOD,
		CODAmount:     req.CODAmount,
		WeightKg:      req.Parcel.WeightKg,
		PickupDetails: Contact{
			Name:    req.Pickup.Name,
			Address: req.Pickup.Line1,
			Pincode: req.Pickup.Pincode,
			Phone:   req.Pickup.Phone,
		},
		DropDetails: Contact{
			Name:    req.Delivery.Name,
			Address: req.Delivery.Line1,
			Pincode: req.Delivery.Pincode,
			Phone:   req.Delivery.Phone,
		},
	}
}

func degradedTracking(awb string) *courier.TrackingResult {
	return &courier.TrackingResult{
		AWB:               awb,
		Courier:           courierName,
		Status:            courier.StatusUnknown,
		StatusDetail:      "live tracking unavailable, use the courier tracking page",
		Degraded:          true,
		ManualTrackingURL: trackingBaseURL + awb,
	}
}

func mapStatus(status string) courier.ShipmentStatus {
	switch strings.ToLower(status) {
	case "order_placed", "accepted":
		return courier.StatusBooked
	case "picked", "collected":
		return courier.StatusPickedUp
	case "in_transit", "reached_hub":
		return courier.StatusInTransit
	case "out_for_delivery":
		return courier.StatusOutForDelivery
	case "delivered":
		return courier.StatusDelivered
	case "rto", "returned":
		return courier.StatusRTO
	case "cancelled":
		return courier.StatusCancelled
	case "undelivered", "failed_delivery":
		return courier.StatusException
	default:
		return courier.StatusUnknown
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// classify maps wire-level failures onto the common adapter error taxonomy.
func classify(operation string, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == "TIMEOUT":
			return courier.NewError(courierName, courier.KindUpstreamTimeout, apiErr.Code, apiErr.Message).WithCause(err)
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
			return courier.NewError(courierName, courier.KindAuthFailed, apiErr.Code, apiErr.Message).WithCause(err)
		default:
			return courier.NewError(courierName, courier.KindUpstreamRejected, apiErr.Code, apiErr.Message).WithCause(err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return courier.NewError(courierName, courier.KindUpstreamTimeout, "TIMEOUT", operation+" timed out").WithCause(err)
	}
	if strings.Contains(err.Error(), "failed to decode") {
		return courier.NewError(courierName, courier.KindInvalidResponseShape, "BAD_SHAPE", err.Error()).WithCause(err)
	}
	return courier.NewError(courierName, courier.KindUpstreamTimeout, "TRANSPORT", operation+" failed").WithCause(err)
}

func classifyAuth(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code == "TIMEOUT" {
		return courier.NewError(courierName, courier.KindUpstreamTimeout, apiErr.Code, apiErr.Message).WithCause(err)
	}
	return courier.NewError(courierName, courier.KindAuthFailed, "TOKEN_INVALID", "token validation failed").WithCause(err)
}

var _ courier.Courier = (*Client)(nil)
