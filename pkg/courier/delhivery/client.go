// Package delhivery provides integration with the Delhivery logistics API.
package delhivery

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

const courierName = "delhivery"

const trackingBaseURL = "https://www.delhivery.com/track/package/"

// Config holds Delhivery configuration.
type Config struct {
	APIToken   string
	BaseURL    string
	PickupName string // registered pickup location
	UseMock    bool
}

// Client is the Delhivery courier client. It implements the courier.Courier
// interface and delegates API calls to the underlying APIClient.
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new Delhivery client. If cfg.UseMock is true, it uses a mock
// API client for testing; otherwise the real HTTP API client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient
	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL:    cfg.BaseURL,
			APIToken:   cfg.APIToken,
			PickupName: cfg.PickupName,
			Timeout:    30 * time.Second,
		})
	}
	return &Client{config: cfg, apiClient: apiClient, logger: logger, tracer: tracer}
}

// NewWithAPIClient creates a new Delhivery client with a custom API client.
// Useful for injecting mocks in tests.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	return &Client{config: cfg, apiClient: apiClient, logger: logger, tracer: tracer}
}

// Name returns the courier name.
func (c *Client) Name() string {
	return courierName
}

// Authenticate returns the static API token. Delhivery has no login
// exchange; the credential never expires server-side, so the token is
// reported with a long synthetic expiry.
func (c *Client) Authenticate(ctx context.Context) (courier.Token, error) {
	if c.config.APIToken == "" && !c.config.UseMock {
		return courier.Token{}, courier.NewError(courierName, courier.KindAuthFailed, "NO_TOKEN", "API token not configured")
	}
	return courier.Token{
		Value:     c.config.APIToken,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}, nil
}

// CalculateRate prices a route via the Delhivery charges endpoint.
func (c *Client) CalculateRate(ctx context.Context, req *courier.RateRequest) (*courier.RateQuote, error) {
	mode := "S"
	if req.Express {
		mode = "E"
	}
	paymentType := "Pre-paid"
	if req.PaymentMode == courier.PaymentCOD {
		paymentType = "COD"
	}

	apiResp, err := c.apiClient.GetRate(ctx, &RateRequest{
		OriginPin:      req.OriginPincode,
		DestinationPin: req.DestinationPincode,
		WeightGrams:    req.WeightKg * 1000,
		PaymentType:    paymentType,
		CODAmount:      req.CODAmount,
		Mode:           mode,
	})
	if err != nil {
		return nil, classify("rate", err)
	}

	product := "Delhivery Surface"
	if req.Express {
		product = "Delhivery Express"
	}
	return &courier.RateQuote{
		Courier:       courierName,
		ProductName:   product,
		Total:         apiResp.TotalAmount,
		Currency:      "INR",
		EstimatedDays: 4,
	}, nil
}

// BookShipment manifests a shipment with Delhivery.
func (c *Client) BookShipment(ctx context.Context, req *courier.ShipmentRequest) (*courier.BookingResult, error) {
	c.logger.Info("Creating Delhivery shipment",
		zap.String("order_id", req.OrderID),
		zap.String("destination_pin", req.Delivery.Pincode),
	)

	apiResp, err := c.apiClient.CreatePackage(ctx, manifestFromShipment(req))
	if err != nil {
		return nil, classify("book", err)
	}

	// A manifest can come back 200 with a per-package failure; that is a
	// booking failure, never a synthetic success.
	if !apiResp.Success || len(apiResp.Packages) == 0 {
		return nil, courier.NewError(courierName, courier.KindUpstreamRejected, "MANIFEST_FAILED",
			firstNonEmpty(apiResp.RMK, "manifest rejected"))
	}
	pkg := apiResp.Packages[0]
	if pkg.Status != "Success" || pkg.Waybill == "" {
		return nil, courier.NewError(courierName, courier.KindUpstreamRejected, "PACKAGE_FAILED",
			firstNonEmpty(pkg.Remarks, "package rejected"))
	}

	raw, _ := json.Marshal(apiResp)
	return &courier.BookingResult{
		AWB:         pkg.Waybill,
		TrackingID:  pkg.Waybill,
		TrackingURL: trackingBaseURL + pkg.Waybill,
		Courier:     courierName,
		Raw:         raw,
	}, nil
}

// TrackShipment returns tracking state for a waybill. Upstream failures
// degrade to manual-tracking instructions instead of erroring.
func (c *Client) TrackShipment(ctx context.Context, awb string) (*courier.TrackingResult, error) {
	apiResp, err := c.apiClient.TrackPackage(ctx, awb)
	if err != nil {
		c.logger.Warn("Delhivery tracking degraded",
			zap.String("awb", awb),
			zap.Error(err),
		)
		return degradedTracking(awb), nil
	}
	if len(apiResp.ShipmentData) == 0 {
		return degradedTracking(awb), nil
	}
	return trackedToResult(awb, apiResp.ShipmentData[0].Shipment), nil
}

// CancelShipment cancels a manifested waybill.
func (c *Client) CancelShipment(ctx context.Context, awb string) (*courier.CancelResult, error) {
	apiResp, err := c.apiClient.CancelPackage(ctx, awb)
	if err != nil {
		return nil, classify("cancel", err)
	}
	return &courier.CancelResult{
		AWB:     awb,
		Success: apiResp.Status,
		Message: firstNonEmpty(apiResp.Remark, "cancellation accepted"),
	}, nil
}

// RequestPickup schedules a next-day pickup for the given waybills.
func (c *Client) RequestPickup(ctx context.Context, awbs []string) (*courier.PickupResult, error) {
	pickupDate := time.Now().Add(24 * time.Hour)
	apiResp, err := c.apiClient.CreatePickup(ctx, &PickupRequest{
		PickupDate:    pickupDate.Format("2006-01-02"),
		PickupTime:    "11:00:00",
		ExpectedCount: len(awbs),
	})
	if err != nil {
		return nil, classify("pickup", err)
	}
	scheduled, perr := time.Parse("2006-01-02", apiResp.PickupDate)
	if perr != nil {
		scheduled = pickupDate
	}
	return &courier.PickupResult{
		PickupID:     fmt.Sprintf("%d", apiResp.PickupID),
		ScheduledFor: scheduled,
		AWBs:         awbs,
		Message:      "pickup scheduled",
	}, nil
}

// ============================================================================
// Conversion helpers
// ============================================================================

func manifestFromShipment(req *courier.ShipmentRequest) *ManifestRequest {
	paymentMode := "Prepaid"
	if req.PaymentMode == courier.PaymentCOD {
		paymentMode = "COD"
	}
	shippingMode := "Surface"
	if req.ProductName == "Delhivery Express" {
		shippingMode = "Express"
	}

	return &ManifestRequest{
		Shipments: []Shipment{{
			Order:        req.OrderID,
			Name:         req.Delivery.Name,
			Phone:        req.Delivery.Phone,
			Address:      req.Delivery.Line1 + " " + req.Delivery.Line2,
			City:         req.Delivery.City,
			State:        req.Delivery.State,
			Pin:          req.Delivery.Pincode,
			Country:      firstNonEmpty(req.Delivery.Country, "India"),
			PaymentMode:  paymentMode,
			CODAmount:    req.CODAmount,
			TotalAmount:  req.DeclaredValue,
			WeightGrams:  req.Parcel.WeightKg * 1000,
			ProductsDesc: req.Parcel.Description,
			ShippingMode: shippingMode,
		}},
		PickupInfo: PickupInfo{
			Name:    req.Pickup.Name,
			City:    req.Pickup.City,
			Pin:     req.Pickup.Pincode,
			Address: req.Pickup.Line1,
			Phone:   req.Pickup.Phone,
		},
	}
}

func trackedToResult(awb string, shipment TrackedShipment) *courier.TrackingResult {
	history := make([]courier.TrackingEvent, 0, len(shipment.Scans))
	for _, scan := range shipment.Scans {
		ts, _ := time.Parse("2006-01-02T15:04:05", scan.ScanDetail.DateTime)
		history = append(history, courier.TrackingEvent{
			Timestamp:   ts,
			Status:      mapScan(scan.ScanDetail.ScanType, scan.ScanDetail.Scan),
			Detail:      scan.ScanDetail.Instructions,
			Location:    scan.ScanDetail.Location,
			CarrierCode: scan.ScanDetail.ScanType,
		})
	}

	ts, _ := time.Parse("2006-01-02T15:04:05", shipment.Status.DateTime)
	return &courier.TrackingResult{
		AWB:          awb,
		Courier:      courierName,
		Status:       mapScan(shipment.Status.StatusType, shipment.Status.Status),
		StatusDetail: shipment.Status.Instructions,
		Location:     shipment.Status.Location,
		Timestamp:    ts,
		History:      history,
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

func mapScan(scanType, scan string) courier.ShipmentStatus {
	switch scanType {
	case "DL":
		return courier.StatusDelivered
	case "RT":
		return courier.StatusRTO
	case "CN":
		return courier.StatusCancelled
	}
	switch scan {
	case "Manifested":
		return courier.StatusBooked
	case "Picked Up", "Pickup Done":
		return courier.StatusPickedUp
	case "In Transit":
		return courier.StatusInTransit
	case "Out for Delivery", "Dispatched":
		return courier.StatusOutForDelivery
	case "Delivered":
		return courier.StatusDelivered
	default:
		return courier.StatusInTransit
	}
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

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

var _ courier.Courier = (*Client)(nil)
