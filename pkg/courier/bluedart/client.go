// Package bluedart provides integration with the Blue Dart shipping API.
package bluedart

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

const courierName = "bluedart"

const trackingBaseURL = "https://www.bluedart.com/web/guest/trackdartresult?trackFor=0&trackNo="

// Config holds Blue Dart configuration.
type Config struct {
	LicenseKey  string
	LoginID     string
	BaseURL     string
	ProfileCode string
	UseMock     bool
}

// Client is the Blue Dart courier client. The JWT obtained from the license
// key login is cached by a token source; booking happens-after a successful
// authenticate on the same instance.
type Client struct {
	config    Config
	apiClient APIClient
	tokens    *courier.TokenSource
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new Blue Dart client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient
	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL:    cfg.BaseURL,
			LicenseKey: cfg.LicenseKey,
			LoginID:    cfg.LoginID,
			Timeout:    30 * time.Second,
		})
	}
	return newClient(cfg, apiClient, logger, tracer)
}

// NewWithAPIClient creates a new Blue Dart client with a custom API client.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	return newClient(cfg, apiClient, logger, tracer)
}

func newClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	c := &Client{config: cfg, apiClient: apiClient, logger: logger, tracer: tracer}
	c.tokens = courier.NewTokenSource(c.login, courier.DefaultTokenSkew)
	return c
}

// login performs the upstream JWT exchange. Called only by the token source,
// which guarantees single-flight refresh.
func (c *Client) login(ctx context.Context) (courier.Token, error) {
	resp, err := c.apiClient.Login(ctx)
	if err != nil {
		return courier.Token{}, classifyAuth(err)
	}
	ttl := time.Duration(resp.ExpiresInSeconds) * time.Second
	if ttl <= 0 {
		ttl = time.Hour
	}
	c.logger.Info("Blue Dart token refreshed", zap.Duration("ttl", ttl))
	return courier.Token{Value: resp.JWTToken, ExpiresAt: time.Now().Add(ttl)}, nil
}

// Name returns the courier name.
func (c *Client) Name() string {
	return courierName
}

// Authenticate returns the cached JWT, refreshing it if absent or near
// expiry. Concurrent callers during a refresh share one upstream login.
func (c *Client) Authenticate(ctx context.Context) (courier.Token, error) {
	return c.tokens.Token(ctx)
}

// CalculateRate is not offered by the Blue Dart integration; pricing comes
// from rate cards.
func (c *Client) CalculateRate(ctx context.Context, req *courier.RateRequest) (*courier.RateQuote, error) {
	return nil, courier.ErrRateNotSupported
}

// BookShipment generates a waybill with Blue Dart.
func (c *Client) BookShipment(ctx context.Context, req *courier.ShipmentRequest) (*courier.BookingResult, error) {
	token, err := c.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Generating Blue Dart waybill",
		zap.String("order_id", req.OrderID),
		zap.String("destination_pin", req.Delivery.Pincode),
	)

	apiResp, err := c.apiClient.GenerateWaybill(ctx, token.Value, waybillFromShipment(req, c.config.ProfileCode))
	if err != nil {
		return nil, classify("book", err)
	}
	if apiResp.IsError || apiResp.AWBNo == "" {
		return nil, courier.NewError(courierName, courier.KindUpstreamRejected, "WAYBILL_FAILED",
			statusMessage(apiResp.Status, "waybill generation rejected"))
	}

	raw, _ := json.Marshal(apiResp)
	return &courier.BookingResult{
		AWB:         apiResp.AWBNo,
		TrackingID:  apiResp.AWBNo,
		TrackingURL: trackingBaseURL + apiResp.AWBNo,
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

	apiResp, err := c.apiClient.TrackWaybill(ctx, token.Value, awb)
	if err != nil || apiResp.IsError {
		c.logger.Warn("Blue Dart tracking degraded", zap.String("awb", awb), zap.Error(err))
		return degradedTracking(awb), nil
	}

	history := make([]courier.TrackingEvent, 0, len(apiResp.Scans))
	for _, scan := range apiResp.Scans {
		history = append(history, courier.TrackingEvent{
			Timestamp:   parseScanTime(scan.Date, scan.Time),
			Status:      mapStatus(scan.ScanCode, scan.Scan),
			Detail:      scan.Scan,
			Location:    scan.Location,
			CarrierCode: scan.ScanCode,
		})
	}

	return &courier.TrackingResult{
		AWB:          awb,
		Courier:      courierName,
		Status:       mapStatus(apiResp.StatusType, apiResp.ShipmentStatus),
		StatusDetail: apiResp.ShipmentStatus,
		Location:     apiResp.Location,
		Timestamp:    parseScanTime(apiResp.StatusDate, apiResp.StatusTime),
		History:      history,
	}, nil
}

// CancelShipment voids a booked waybill.
func (c *Client) CancelShipment(ctx context.Context, awb string) (*courier.CancelResult, error) {
	token, err := c.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	apiResp, err := c.apiClient.CancelWaybill(ctx, token.Value, awb)
	if err != nil {
		return nil, classify("cancel", err)
	}
	if apiResp.IsError {
		return &courier.CancelResult{
			AWB:     awb,
			Success: false,
			Message: statusMessage(apiResp.Status, "cancellation rejected"),
		}, nil
	}
	return &courier.CancelResult{AWB: awb, Success: true, Message: "waybill cancelled"}, nil
}

// RequestPickup registers a next-day pickup.
func (c *Client) RequestPickup(ctx context.Context, awbs []string) (*courier.PickupResult, error) {
	token, err := c.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	pickupDate := time.Now().Add(24 * time.Hour)
	apiResp, err := c.apiClient.SchedulePickup(ctx, token.Value, &PickupRegistrationRequest{
		PickupDate:     pickupDate.Format("2006-01-02"),
		PickupTime:     "1100",
		NumberOfPieces: len(awbs),
	})
	if err != nil {
		return nil, classify("pickup", err)
	}
	if apiResp.IsError {
		return nil, courier.NewError(courierName, courier.KindUpstreamRejected, "PICKUP_FAILED",
			statusMessage(apiResp.Status, "pickup registration rejected"))
	}
	return &courier.PickupResult{
		PickupID:     fmt.Sprintf("%d", apiResp.TokenNumber),
		ScheduledFor: pickupDate,
		AWBs:         awbs,
		Message:      "pickup registered",
	}, nil
}

// ============================================================================
// Conversion helpers
// ============================================================================

func waybillFromShipment(req *courier.ShipmentRequest, profileCode string) *WaybillRequest {
	service := Service{
		ProductCode:       "E",
		PieceCount:        1,
		ActualWeight:      req.Parcel.WeightKg,
		DeclaredValue:     req.DeclaredValue,
		CreditReferenceNo: req.OrderID,
	}
	if req.PaymentMode == courier.PaymentCOD {
		service.SubProductCode = "C"
		service.CollectableAmount = req.CODAmount
	}
	if req.Parcel.LengthCm > 0 {
		service.Dimensions = []Dimension{{
			Length: req.Parcel.LengthCm,
			Width:  req.Parcel.WidthCm,
			Height: req.Parcel.HeightCm,
			Count:  1,
		}}
	}

	return &WaybillRequest{
		Shipper: Entity{
			Name:         req.Pickup.Name,
			AddressLine1: req.Pickup.Line1,
			AddressLine2: req.Pickup.Line2,
			Pincode:      req.Pickup.Pincode,
			Mobile:       req.Pickup.Phone,
			EmailID:      req.Pickup.Email,
		},
		Consignee: Entity{
			Name:         req.Delivery.Name,
			AddressLine1: req.Delivery.Line1,
			AddressLine2: req.Delivery.Line2,
			Pincode:      req.Delivery.Pincode,
			Mobile:       req.Delivery.Phone,
			EmailID:      req.Delivery.Email,
		},
		Services:    service,
		ProfileCode: profileCode,
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

func mapStatus(code, detail string) courier.ShipmentStatus {
	switch code {
	case "DL", "DLVD":
		return courier.StatusDelivered
	case "RT", "RTO":
		return courier.StatusRTO
	case "CN":
		return courier.StatusCancelled
	case "OD":
		return courier.StatusOutForDelivery
	case "PU":
		return courier.StatusPickedUp
	}
	switch {
	case strings.Contains(detail, "DELIVERED"):
		return courier.StatusDelivered
	case strings.Contains(detail, "OUT FOR DELIVERY"):
		return courier.StatusOutForDelivery
	case strings.Contains(detail, "PICKED"):
		return courier.StatusPickedUp
	default:
		return courier.StatusInTransit
	}
}

// parseScanTime parses Blue Dart's DD-MMM-YYYY date + HHMM time pair.
func parseScanTime(date, clock string) time.Time {
	if len(clock) == 4 {
		if ts, err := time.Parse("02-Jan-2006 1504", date+" "+clock); err == nil {
			return ts
		}
	}
	ts, _ := time.Parse("02-Jan-2006", date)
	return ts
}

func statusMessage(status []StatusInfo, fallback string) string {
	if len(status) > 0 && status[0].StatusInformation != "" {
		return status[0].StatusInformation
	}
	return fallback
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
	return courier.NewError(courierName, courier.KindAuthFailed, "LOGIN_FAILED", "license key login failed").WithCause(err)
}

var _ courier.Courier = (*Client)(nil)
