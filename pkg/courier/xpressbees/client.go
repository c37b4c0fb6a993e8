// Package xpressbees provides integration with the Xpressbees shipping API.
package xpressbees

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shipdesk/logistics/pkg/courier"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const courierName = "xpressbees"

const trackingBaseURL = "https://www.xpressbees.com/shipment/tracking?awbNo="

// Xpressbees does not return an expiry with the JWT; the portal documents a
// 24 hour validity.
const tokenTTL = 24 * time.Hour

// Config holds Xpressbees configuration.
type Config struct {
	Email    string
	Password string
	BaseURL  string
	UseMock  bool
}

// Client is the Xpressbees courier client. Login is email/password for a
// JWT; the token source caches it and refreshes near expiry.
type Client struct {
	config    Config
	apiClient APIClient
	tokens    *courier.TokenSource
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new Xpressbees client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient
	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL: cfg.BaseURL,
			Timeout: 30 * time.Second,
		})
	}
	return newClient(cfg, apiClient, logger, tracer)
}

// NewWithAPIClient creates a new Xpressbees client with a custom API client.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	return newClient(cfg, apiClient, logger, tracer)
}

func newClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	c := &Client{config: cfg, apiClient: apiClient, logger: logger, tracer: tracer}
	c.tokens = courier.NewTokenSource(c.login, courier.DefaultTokenSkew)
	return c
}

func (c *Client) login(ctx context.Context) (courier.Token, error) {
	resp, err := c.apiClient.Login(ctx, &LoginRequest{
		Email:    c.config.Email,
		Password: c.config.Password,
	})
	if err != nil {
		return courier.Token{}, classifyAuth(err)
	}
	c.logger.Info("Xpressbees token refreshed", zap.Duration("ttl", tokenTTL))
	return courier.Token{Value: resp.Data, ExpiresAt: time.Now().Add(tokenTTL)}, nil
}

// Name returns the courier name.
func (c *Client) Name() string {
	return courierName
}

// Authenticate returns the cached JWT, refreshing it if absent or near
// expiry.
func (c *Client) Authenticate(ctx context.Context) (courier.Token, error) {
	return c.tokens.Token(ctx)
}

// CalculateRate prices a route via the serviceability API and returns the
// cheapest serviceable product.
func (c *Client) CalculateRate(ctx context.Context, req *courier.RateRequest) (*courier.RateQuote, error) {
	token, err := c.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	paymentType := "prepaid"
	if req.PaymentMode == courier.PaymentCOD {
		paymentType = "cod"
	}
	apiResp, err := c.apiClient.Serviceability(ctx, token.Value, &ServiceabilityRequest{
		OriginPincode:      req.OriginPincode,
		DestinationPincode: req.DestinationPincode,
		PaymentType:        paymentType,
		OrderAmount:        req.CODAmount,
		Weight:             req.WeightKg * 1000,
	})
	if err != nil {
		return nil, classify("rate", err)
	}
	if !apiResp.Status || len(apiResp.Data) == 0 {
		return nil, courier.NewError(courierName, courier.KindUpstreamRejected, "NOT_SERVICEABLE",
			"no serviceable product on route")
	}

	best := apiResp.Data[0]
	for _, option := range apiResp.Data[1:] {
		if option.TotalCharge < best.TotalCharge {
			best = option
		}
	}
	return &courier.RateQuote{
		Courier:     courierName,
		ProductName: best.Name,
		Total:       best.TotalCharge,
		Currency:    "INR",
	}, nil
}

// BookShipment books a shipment with Xpressbees.
func (c *Client) BookShipment(ctx context.Context, req *courier.ShipmentRequest) (*courier.BookingResult, error) {
	token, err := c.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Creating Xpressbees shipment",
		zap.String("order_id", req.OrderID),
		zap.String("destination_pin", req.Delivery.Pincode),
	)

	apiResp, err := c.apiClient.CreateShipment(ctx, token.Value, shipmentFromRequest(req))
	if err != nil {
		return nil, classify("book", err)
	}
	if !apiResp.Status || apiResp.Data.AWBNumber == "" {
		return nil, courier.NewError(courierName, courier.KindUpstreamRejected, "BOOKING_FAILED",
			firstNonEmpty(apiResp.Message, "shipment creation rejected"))
	}

	raw, _ := json.Marshal(apiResp)
	return &courier.BookingResult{
		AWB:         apiResp.Data.AWBNumber,
		TrackingID:  fmt.Sprintf("%d", apiResp.Data.ShipmentID),
		TrackingURL: trackingBaseURL + apiResp.Data.AWBNumber,
		Courier:     courierName,
		Raw:         raw,
	}, nil
}

// TrackShipment returns tracking state for an AWB, degrading to manual
// tracking instructions when the upstream is unreachable.
func (c *Client) TrackShipment(ctx context.Context, awb string) (*courier.TrackingResult, error) {
	token, err := c.Authenticate(ctx)
	if err != nil {
		return degradedTracking(awb), nil
	}

	apiResp, err := c.apiClient.TrackShipment(ctx, token.Value, awb)
	if err != nil || !apiResp.Status {
		c.logger.Warn("Xpressbees tracking degraded", zap.String("awb", awb), zap.Error(err))
		return degradedTracking(awb), nil
	}

	history := make([]courier.TrackingEvent, 0, len(apiResp.Data.History))
	for _, event := range apiResp.Data.History {
		history = append(history, courier.TrackingEvent{
			Timestamp:   parseEventTime(event.EventTime),
			Status:      mapStatus(event.StatusCode),
			Detail:      event.Message,
			Location:    event.Location,
			CarrierCode: event.StatusCode,
		})
	}

	result := &courier.TrackingResult{
		AWB:     awb,
		Courier: courierName,
		Status:  mapStatus(apiResp.Data.Status),
		History: history,
	}
	if len(history) > 0 {
		last := history[len(history)-1]
		result.StatusDetail = last.Detail
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
		Success: apiResp.Status,
		Message: firstNonEmpty(apiResp.Message, "cancellation processed"),
	}, nil
}

// RequestPickup schedules a next-day pickup run.
func (c *Client) RequestPickup(ctx context.Context, awbs []string) (*courier.PickupResult, error) {
	token, err := c.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	pickupDate := time.Now().Add(24 * time.Hour)
	apiResp, err := c.apiClient.CreatePickup(ctx, token.Value, &PickupRequest{
		PickupDate: pickupDate.Format("2006-01-02"),
		AWBNumbers: awbs,
	})
	if err != nil {
		return nil, classify("pickup", err)
	}
	if !apiResp.Status {
		return nil, courier.NewError(courierName, courier.KindUpstreamRejected, "PICKUP_FAILED",
			firstNonEmpty(apiResp.Message, "pickup scheduling rejected"))
	}
	return &courier.PickupResult{
		PickupID:     apiResp.PickupID,
		ScheduledFor: pickupDate,
		AWBs:         awbs,
		Message:      "pickup scheduled",
	}, nil
}

// ============================================================================
// Conversion helpers
// ============================================================================

func shipmentFromRequest(req *courier.ShipmentRequest) *ShipmentRequest {
	paymentType := "prepaid"
	collectable := 0.0
	if req.PaymentMode == courier.PaymentCOD {
		paymentType = "cod"
		collectable = req.CODAmount
	}
	return &ShipmentRequest{
		OrderNumber:       req.OrderID,
		PaymentType:       paymentType,
		OrderAmount:       req.DeclaredValue,
		PackageWeight:     req.Parcel.WeightKg * 1000,
		PackageLength:     req.Parcel.LengthCm,
		PackageBreadth:    req.Parcel.WidthCm,
		PackageHeight:     req.Parcel.HeightCm,
		CollectableAmount: collectable,
		Consignee: Party{
			Name:     req.Delivery.Name,
			Address:  req.Delivery.Line1,
			Address2: req.Delivery.Line2,
			City:     req.Delivery.City,
			State:    req.Delivery.State,
			Pincode:  req.Delivery.Pincode,
			Phone:    req.Delivery.Phone,
		},
		Pickup: Party{
			Name:     req.Pickup.Name,
			Address:  req.Pickup.Line1,
			Address2: req.Pickup.Line2,
			City:     req.Pickup.City,
			State:    req.Pickup.State,
			Pincode:  req.Pickup.Pincode,
			Phone:    req.Pickup.Phone,
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

func mapStatus(code string) courier.ShipmentStatus {
	switch strings.ToUpper(code) {
	case "DRC", "BOOKED", "PENDING PICKUP":
		return courier.StatusBooked
	case "PUD", "PICKED", "PICKED UP":
		return courier.StatusPickedUp
	case "IT", "IN TRANSIT", "RAD":
		return courier.StatusInTransit
	case "OFD", "OUT FOR DELIVERY":
		return courier.StatusOutForDelivery
	case "DLV", "DELIVERED":
		return courier.StatusDelivered
	case "RTO", "RTD", "RTO DELIVERED":
		return courier.StatusRTO
	case "CAN", "CANCELLED":
		return courier.StatusCancelled
	case "NDR", "UD":
		return courier.StatusException
	default:
		return courier.StatusUnknown
	}
}

// parseEventTime parses Xpressbees' "2006-01-02 15:04:05" timestamps.
func parseEventTime(value string) time.Time {
	ts, _ := time.Parse("2006-01-02 15:04:05", value)
	return ts
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
	return courier.NewError(courierName, courier.KindAuthFailed, "LOGIN_FAILED", "email/password login failed").WithCause(err)
}

var _ courier.Courier = (*Client)(nil)
