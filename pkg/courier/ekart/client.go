// Package ekart provides integration with the Ekart Logistics API.
package ekart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shipdesk/logistics/pkg/courier"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const courierName = "ekart"

const trackingBaseURL = "https://ekartlogistics.com/shipmenttrack/"

// Config holds Ekart configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	UseMock      bool
}

// Client is the Ekart courier client. The access token from the credential
// exchange is cached by a token source.
type Client struct {
	config    Config
	apiClient APIClient
	tokens    *courier.TokenSource
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new Ekart client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient
	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL:      cfg.BaseURL,
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Timeout:      30 * time.Second,
		})
	}
	return newClient(cfg, apiClient, logger, tracer)
}

// NewWithAPIClient creates a new Ekart client with a custom API client.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	return newClient(cfg, apiClient, logger, tracer)
}

func newClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	c := &Client{config: cfg, apiClient: apiClient, logger: logger, tracer: tracer}
	c.tokens = courier.NewTokenSource(c.exchange, courier.DefaultTokenSkew)
	return c
}

func (c *Client) exchange(ctx context.Context) (courier.Token, error) {
	resp, err := c.apiClient.FetchToken(ctx)
	if err != nil {
		return courier.Token{}, classifyAuth(err)
	}
	ttl := time.Duration(resp.ExpiresIn) * time.Second
	if ttl <= 0 {
		ttl = time.Hour
	}
	c.logger.Info("Ekart token refreshed", zap.Duration("ttl", ttl))
	return courier.Token{Value: resp.AccessToken, ExpiresAt: time.Now().Add(ttl)}, nil
}

// Name returns the courier name.
func (c *Client) Name() string {
	return courierName
}

// Authenticate returns the cached access token, refreshing it if absent or
// near expiry.
func (c *Client) Authenticate(ctx context.Context) (courier.Token, error) {
	return c.tokens.Token(ctx)
}

// CalculateRate is not offered by the Ekart integration; pricing comes from
// rate cards.
func (c *Client) CalculateRate(ctx context.Context, req *courier.RateRequest) (*courier.RateQuote, error) {
	return nil, courier.ErrRateNotSupported
}

// BookShipment books a shipment with Ekart.
func (c *Client) BookShipment(ctx context.Context, req *courier.ShipmentRequest) (*courier.BookingResult, error) {
	token, err := c.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Creating Ekart shipment",
		zap.String("order_id", req.OrderID),
		zap.String("destination_pin", req.Delivery.Pincode),
	)

	apiResp, err := c.apiClient.CreateShipment(ctx, token.Value, createFromRequest(req))
	if err != nil {
		return nil, classify("book", err)
	}
	if apiResp.Status != "REQUEST_ACCEPTED" || apiResp.TrackingID == "" {
		return nil, courier.NewError(courierName, courier.KindUpstreamRejected, "BOOKING_FAILED",
			firstNonEmpty(apiResp.Remarks, "shipment request rejected"))
	}

	raw, _ := json.Marshal(apiResp)
	return &courier.BookingResult{
		AWB:         apiResp.TrackingID,
		TrackingID:  apiResp.TrackingID,
		TrackingURL: trackingBaseURL + apiResp.TrackingID,
		Courier:     courierName,
		Raw:         raw,
	}, nil
}

// TrackShipment returns tracking state for a tracking ID, degrading to
// manual tracking instructions when the upstream is unreachable.
func (c *Client) TrackShipment(ctx context.Context, awb string) (*courier.TrackingResult, error) {
	token, err := c.Authenticate(ctx)
	if err != nil {
		return degradedTracking(awb), nil
	}

	apiResp, err := c.apiClient.TrackShipment(ctx, token.Value, awb)
	if err != nil {
		c.logger.Warn("Ekart tracking degraded", zap.String("awb", awb), zap.Error(err))
		return degradedTracking(awb), nil
	}

	history := make([]courier.TrackingEvent, 0, len(apiResp.Events))
	for _, event := range apiResp.Events {
		ts, _ := time.Parse(time.RFC3339, event.Timestamp)
		history = append(history, courier.TrackingEvent{
			Timestamp:   ts,
			Status:      mapStatus(event.Status),
			Detail:      event.Status,
			Location:    event.City,
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

// CancelShipment cancels a booked shipment.
func (c *Client) CancelShipment(ctx context.Context, awb string) (*courier.CancelResult, error) {
	token, err := c.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	apiResp, err := c.apiClient.CancelShipment(ctx, token.Value, awb)
	if err != nil {
		return nil, classify("cancel", err)
	}
	return &courier.CancelResult{
		AWB:     awb,
		Success: apiResp.Status == "CANCELLED",
		Message: firstNonEmpty(apiResp.Remarks, apiResp.Status),
	}, nil
}

// RequestPickup schedules a next-day pickup slot.
func (c *Client) RequestPickup(ctx context.Context, awbs []string) (*courier.PickupResult, error) {
	token, err := c.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	pickupDate := time.Now().Add(24 * time.Hour)
	apiResp, err := c.apiClient.RequestPickup(ctx, token.Value, &PickupSlotRequest{
		PickupDate:  pickupDate.Format("2006-01-02"),
		TrackingIDs: awbs,
	})
	if err != nil {
		return nil, classify("pickup", err)
	}
	if apiResp.SlotID == "" {
		return nil, courier.NewError(courierName, courier.KindUpstreamRejected, "PICKUP_FAILED",
			"no pickup slot allocated")
	}
	return &courier.PickupResult{
		PickupID:     apiResp.SlotID,
		ScheduledFor: pickupDate,
		AWBs:         awbs,
		Message:      "pickup slot allocated",
	}, nil
}

func createFromRequest(req *courier.ShipmentRequest) *CreateShipmentRequest {
	paymentMode := "PREPAID"
	codValue := 0.0
	if req.PaymentMode == courier.PaymentCOD {
		paymentMode = "COD"
		codValue = req.CODAmount
	}
	return &CreateShipmentRequest{
		ClientOrderID: req.OrderID,
		ServiceType:   "FORWARD",
		PaymentMode:   paymentMode,
		CODValue:      codValue,
		WeightGrams:   req.Parcel.WeightKg * 1000,
		Source: Location{
			Name:      req.Pickup.Name,
			Address:   req.Pickup.Line1,
			City:      req.Pickup.City,
			StateCode: req.Pickup.State,
			Pincode:   req.Pickup.Pincode,
			Phone:     req.Pickup.Phone,
		},
		Destination: Location{
			Name:      req.Delivery.Name,
			Address:   req.Delivery.Line1,
			City:      req.Delivery.City,
			StateCode: req.Delivery.State,
			Pincode:   req.Delivery.Pincode,
			Phone:     req.Delivery.Phone,
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
	switch strings.ToUpper(status) {
	case "SHIPMENT_CREATED", "REQUEST_ACCEPTED":
		return courier.StatusBooked
	case "PICKUP_COMPLETE", "PICKED_UP":
		return courier.StatusPickedUp
	case "IN_TRANSIT", "RECEIVED_AT_HUB":
		return courier.StatusInTransit
	case "OUT_FOR_DELIVERY":
		return courier.StatusOutForDelivery
	case "DELIVERED":
		return courier.StatusDelivered
	case "RTO_INITIATED", "RTO_DELIVERED":
		return courier.StatusRTO
	case "CANCELLED":
		return courier.StatusCancelled
	case "UNDELIVERED":
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
	return courier.NewError(courierName, courier.KindAuthFailed, "TOKEN_EXCHANGE_FAILED", "client credential exchange failed").WithCause(err)
}

var _ courier.Courier = (*Client)(nil)
