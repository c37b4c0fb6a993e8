// Package server exposes the service over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/shipdesk/logistics/internal/service"
	"github.com/shipdesk/logistics/pkg/courier"
	"github.com/shipdesk/logistics/pkg/rate"
)

// Server is the HTTP server for the logistics service.
type Server struct {
	port    int
	svc     *service.Service
	logger  *otelzap.Logger
	handler http.Handler
}

// Config holds server configuration.
type Config struct {
	Port int
}

// New creates a new server instance.
func New(cfg Config, svc *service.Service, logger *otelzap.Logger) *Server {
	s := &Server{
		port:   cfg.Port,
		svc:    svc,
		logger: logger,
	}
	s.handler = s.routes()
	return s
}

// Handler returns the route table, for tests driving the server through
// httptest.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("POST /v1/quotes", s.handleQuote)
	mux.HandleFunc("GET /v1/couriers", s.handleCouriers)

	mux.HandleFunc("GET /v1/sellers/{sellerID}/rates", s.handleSellerRates)
	mux.HandleFunc("PUT /v1/sellers/{sellerID}/overrides", s.handleSaveOverride)
	mux.HandleFunc("DELETE /v1/sellers/{sellerID}/overrides/{overrideID}", s.handleDeleteOverride)

	mux.HandleFunc("POST /v1/shipments", s.handleBookShipment)
	mux.HandleFunc("GET /v1/shipments/{courierID}/{awb}", s.handleTrackShipment)
	mux.HandleFunc("DELETE /v1/shipments/{courierID}/{awb}", s.handleCancelShipment)
	mux.HandleFunc("POST /v1/pickups", s.handleRequestPickup)

	return mux
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// ============================================================================
// Quoting
// ============================================================================

type quoteRequest struct {
	SellerID           string  `json:"sellerId"`
	OriginPincode      string  `json:"originPincode"`
	DestinationPincode string  `json:"destinationPincode"`
	WeightKg           float64 `json:"weightKg"`
	LengthCm           float64 `json:"lengthCm,omitempty"`
	WidthCm            float64 `json:"widthCm,omitempty"`
	HeightCm           float64 `json:"heightCm,omitempty"`
	Mode               string  `json:"mode,omitempty"`
	CODAmount          float64 `json:"codAmount,omitempty"`
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	result, err := s.svc.Quote(r.Context(), rate.QuoteRequest{
		SellerID:           req.SellerID,
		OriginPincode:      req.OriginPincode,
		DestinationPincode: req.DestinationPincode,
		WeightKg:           req.WeightKg,
		Dims:               rate.Dimensions{Length: req.LengthCm, Width: req.WidthCm, Height: req.HeightCm},
		Mode:               rate.Mode(req.Mode),
		CODAmount:          req.CODAmount,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCouriers(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"couriers": s.svc.Couriers()})
}

// ============================================================================
// Seller rates and overrides
// ============================================================================

func (s *Server) handleSellerRates(w http.ResponseWriter, r *http.Request) {
	rates, err := s.svc.SellerRates(r.Context(), r.PathValue("sellerID"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"rates": rates})
}

type overrideRequest struct {
	Courier     string `json:"courier"`
	ProductName string `json:"productName"`
	Mode        string `json:"mode"`
	Zone        string `json:"zone"`

	BaseRate              *float64 `json:"baseRate,omitempty"`
	AdditionalRate        *float64 `json:"additionalRate,omitempty"`
	CODFlatAmount         *float64 `json:"codFlatAmount,omitempty"`
	CODPercent            *float64 `json:"codPercent,omitempty"`
	RTOCharge             *float64 `json:"rtoCharge,omitempty"`
	MinimumBillableWeight *float64 `json:"minimumBillableWeight,omitempty"`

	Notes   string `json:"notes,omitempty"`
	ActorID string `json:"actorId"`
}

func (s *Server) handleSaveOverride(w http.ResponseWriter, r *http.Request) {
	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	override, err := s.svc.SaveOverride(r.Context(), r.PathValue("sellerID"), rate.OverridePatch{
		Courier:               req.Courier,
		ProductName:           req.ProductName,
		Mode:                  rate.Mode(req.Mode),
		Zone:                  rate.Zone(req.Zone),
		BaseRate:              req.BaseRate,
		AdditionalRate:        req.AdditionalRate,
		CODFlatAmount:         req.CODFlatAmount,
		CODPercent:            req.CODPercent,
		RTOCharge:             req.RTOCharge,
		MinimumBillableWeight: req.MinimumBillableWeight,
		Notes:                 req.Notes,
	}, req.ActorID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"overrideId": override.ID})
}

func (s *Server) handleDeleteOverride(w http.ResponseWriter, r *http.Request) {
	err := s.svc.DeleteOverride(r.Context(), r.PathValue("sellerID"), r.PathValue("overrideID"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ============================================================================
// Shipments
// ============================================================================

type bookRequest struct {
	Courier       string          `json:"courier"`
	OrderID       string          `json:"orderId"`
	Reference     string          `json:"reference,omitempty"`
	Pickup        courier.Address `json:"pickup"`
	Delivery      courier.Address `json:"delivery"`
	WeightKg      float64         `json:"weightKg"`
	LengthCm      float64         `json:"lengthCm,omitempty"`
	WidthCm       float64         `json:"widthCm,omitempty"`
	HeightCm      float64         `json:"heightCm,omitempty"`
	PaymentMode   string          `json:"paymentMode"`
	CODAmount     float64         `json:"codAmount,omitempty"`
	DeclaredValue float64         `json:"declaredValue,omitempty"`
	ProductName   string          `json:"productName,omitempty"`
}

func (s *Server) handleBookShipment(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Courier == "" || req.OrderID == "" {
		s.writeError(w, http.StatusBadRequest, "courier and orderId are required")
		return
	}

	result, err := s.svc.BookShipment(r.Context(), req.Courier, &courier.ShipmentRequest{
		OrderID:   req.OrderID,
		Reference: req.Reference,
		Pickup:    req.Pickup,
		Delivery:  req.Delivery,
		Parcel: courier.Parcel{
			WeightKg: req.WeightKg,
			LengthCm: req.LengthCm,
			WidthCm:  req.WidthCm,
			HeightCm: req.HeightCm,
		},
		PaymentMode:   courier.PaymentMode(strings.ToLower(req.PaymentMode)),
		CODAmount:     req.CODAmount,
		DeclaredValue: req.DeclaredValue,
		ProductName:   req.ProductName,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleTrackShipment(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.TrackShipment(r.Context(), r.PathValue("courierID"), r.PathValue("awb"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCancelShipment(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.CancelShipment(r.Context(), r.PathValue("courierID"), r.PathValue("awb"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

type pickupRequest struct {
	Courier string   `json:"courier"`
	AWBs    []string `json:"awbs"`
}

func (s *Server) handleRequestPickup(w http.ResponseWriter, r *http.Request) {
	var req pickupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Courier == "" || len(req.AWBs) == 0 {
		s.writeError(w, http.StatusBadRequest, "courier and awbs are required")
		return
	}

	result, err := s.svc.RequestPickup(r.Context(), req.Courier, req.AWBs)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// ============================================================================
// Response helpers
// ============================================================================

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps domain errors onto HTTP statuses. Adapter failures
// surface uniformly as 503; upstream detail never reaches clients.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rate.ErrValidation):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, rate.ErrNotFound), errors.Is(err, courier.ErrCourierNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, courier.ErrProviderUnavailable):
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error("Unhandled service error", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}
