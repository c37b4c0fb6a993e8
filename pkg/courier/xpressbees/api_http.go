package xpressbees

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPAPIClient is the production implementation of APIClient.
type HTTPAPIClient struct {
	baseURL    string
	httpClient *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPAPIClient{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Login exchanges email/password for a JWT.
// POST /users/login
func (c *HTTPAPIClient) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	var result LoginResponse
	if err := c.doJSON(ctx, "", http.MethodPost, "/users/login", req, &result); err != nil {
		return nil, err
	}
	if !result.Status || result.Data == "" {
		return nil, &APIError{Code: "LOGIN_REJECTED", Message: result.Message, StatusCode: http.StatusUnauthorized}
	}
	return &result, nil
}

// Serviceability prices a route.
// POST /courier/serviceability
func (c *HTTPAPIClient) Serviceability(ctx context.Context, token string, req *ServiceabilityRequest) (*ServiceabilityResponse, error) {
	var result ServiceabilityResponse
	if err := c.doJSON(ctx, token, http.MethodPost, "/courier/serviceability", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateShipment books a shipment.
// POST /shipments2
func (c *HTTPAPIClient) CreateShipment(ctx context.Context, token string, req *ShipmentRequest) (*ShipmentResponse, error) {
	var result ShipmentResponse
	if err := c.doJSON(ctx, token, http.MethodPost, "/shipments2", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TrackShipment fetches tracking state.
// GET /shipments2/track/{awb}
func (c *HTTPAPIClient) TrackShipment(ctx context.Context, token, awb string) (*TrackResponse, error) {
	var result TrackResponse
	if err := c.doJSON(ctx, token, http.MethodGet, "/shipments2/track/"+awb, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CancelShipment cancels a booked shipment.
// POST /shipments2/cancel
func (c *HTTPAPIClient) CancelShipment(ctx context.Context, token, awb string) (*CancelResponse, error) {
	body := map[string]string{"awb": awb}
	var result CancelResponse
	if err := c.doJSON(ctx, token, http.MethodPost, "/shipments2/cancel", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreatePickup schedules a pickup run.
// POST /pickups
func (c *HTTPAPIClient) CreatePickup(ctx context.Context, token string, req *PickupRequest) (*PickupResponse, error) {
	var result PickupResponse
	if err := c.doJSON(ctx, token, http.MethodPost, "/pickups", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPAPIClient) doJSON(ctx context.Context, token, method, path string, body, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "shipdesk-logistics/1.0")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return wrapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return c.parseError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// parseError extracts error information from an HTTP response.
func (c *HTTPAPIClient) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && (apiErr.Code != "" || apiErr.Message != "") {
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       fmt.Sprintf("HTTP_%d", resp.StatusCode),
		Message:    string(body),
	}
}

func wrapTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &APIError{Code: "TIMEOUT", Message: "request timed out"}
	}
	return err
}

// Ensure HTTPAPIClient implements APIClient interface
var _ APIClient = (*HTTPAPIClient)(nil)
