package ekart

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
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPAPIClient{
		baseURL:      cfg.BaseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// FetchToken exchanges the client credentials for an access token.
// POST /integrations/v2/auth/token
func (c *HTTPAPIClient) FetchToken(ctx context.Context) (*TokenResponse, error) {
	body := map[string]string{
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
		"grant_type":    "client_credentials",
	}
	var result TokenResponse
	if err := c.doJSON(ctx, "", http.MethodPost, "/integrations/v2/auth/token", body, &result); err != nil {
		return nil, err
	}
	if result.AccessToken == "" {
		return nil, &APIError{Code: "NO_TOKEN", Message: "token exchange returned no access token", StatusCode: http.StatusUnauthorized}
	}
	return &result, nil
}

// CreateShipment books a shipment.
// POST /integrations/v2/shipments/create
func (c *HTTPAPIClient) CreateShipment(ctx context.Context, token string, req *CreateShipmentRequest) (*CreateShipmentResponse, error) {
	var result CreateShipmentResponse
	if err := c.doJSON(ctx, token, http.MethodPost, "/integrations/v2/shipments/create", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TrackShipment fetches tracking state.
// GET /integrations/v2/shipments/track/{trackingID}
func (c *HTTPAPIClient) TrackShipment(ctx context.Context, token, trackingID string) (*TrackResponse, error) {
	var result TrackResponse
	if err := c.doJSON(ctx, token, http.MethodGet, "/integrations/v2/shipments/track/"+trackingID, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CancelShipment cancels a booked shipment.
// POST /integrations/v2/shipments/cancel
func (c *HTTPAPIClient) CancelShipment(ctx context.Context, token, trackingID string) (*CancelResponse, error) {
	body := map[string]string{"tracking_id": trackingID}
	var result CancelResponse
	if err := c.doJSON(ctx, token, http.MethodPost, "/integrations/v2/shipments/cancel", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RequestPickup schedules a pickup slot.
// POST /integrations/v2/pickups
func (c *HTTPAPIClient) RequestPickup(ctx context.Context, token string, req *PickupSlotRequest) (*PickupSlotResponse, error) {
	var result PickupSlotResponse
	if err := c.doJSON(ctx, token, http.MethodPost, "/integrations/v2/pickups", req, &result); err != nil {
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
