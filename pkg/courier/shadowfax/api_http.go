package shadowfax

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
	authToken  string
	httpClient *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL   string
	AuthToken string
	Timeout   time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPAPIClient{
		baseURL:    cfg.BaseURL,
		authToken:  cfg.AuthToken,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ValidateToken checks the configured token.
// GET /v3/clients/profile
func (c *HTTPAPIClient) ValidateToken(ctx context.Context) error {
	var out json.RawMessage
	return c.doJSON(ctx, http.MethodGet, "/v3/clients/profile", nil, &out)
}

// CreateOrder books a delivery order.
// POST /v3/orders
func (c *HTTPAPIClient) CreateOrder(ctx context.Context, req *OrderRequest) (*OrderResponse, error) {
	var result OrderResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v3/orders", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TrackOrder fetches tracking state.
// GET /v3/orders/track/{awb}
func (c *HTTPAPIClient) TrackOrder(ctx context.Context, awb string) (*TrackResponse, error) {
	var result TrackResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v3/orders/track/"+awb, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CancelOrder cancels a booked order.
// POST /v3/orders/cancel
func (c *HTTPAPIClient) CancelOrder(ctx context.Context, awb string) (*CancelResponse, error) {
	body := map[string]string{"awb_number": awb}
	var result CancelResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v3/orders/cancel", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPAPIClient) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
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
	req.Header.Set("Authorization", "Token "+c.authToken)
	req.Header.Set("User-Agent", "shipdesk-logistics/1.0")

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
