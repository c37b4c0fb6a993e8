package bluedart

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

// HTTPAPIClient is the production implementation of APIClient. Blue Dart
// issues short-lived JWTs against a license key; the adapter's token source
// decides when Login is called.
type HTTPAPIClient struct {
	baseURL    string
	licenseKey string
	loginID    string
	httpClient *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL    string
	LicenseKey string
	LoginID    string
	Timeout    time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPAPIClient{
		baseURL:    cfg.BaseURL,
		licenseKey: cfg.LicenseKey,
		loginID:    cfg.LoginID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Login exchanges the license key for a JWT.
// GET /in/transportation/token/v1/login
func (c *HTTPAPIClient) Login(ctx context.Context) (*LoginResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/in/transportation/token/v1/login", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("ClientID", c.loginID)
	req.Header.Set("clientSecret", c.licenseKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, wrapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var result LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}
	if result.JWTToken == "" {
		return nil, &APIError{StatusCode: resp.StatusCode, Code: "NO_TOKEN", Message: result.Error}
	}
	return &result, nil
}

// GenerateWaybill books a shipment.
// POST /in/transportation/waybill/v1/GenerateWayBill
func (c *HTTPAPIClient) GenerateWaybill(ctx context.Context, token string, req *WaybillRequest) (*WaybillResponse, error) {
	var result WaybillResponse
	if err := c.doJSON(ctx, token, http.MethodPost, "/in/transportation/waybill/v1/GenerateWayBill", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TrackWaybill fetches tracking state.
// GET /in/transportation/tracking/v1/shipment?awb={awb}
func (c *HTTPAPIClient) TrackWaybill(ctx context.Context, token, awb string) (*TrackingResponse, error) {
	var result TrackingResponse
	if err := c.doJSON(ctx, token, http.MethodGet, "/in/transportation/tracking/v1/shipment?awb="+awb, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CancelWaybill voids a booked waybill.
// POST /in/transportation/waybill/v1/CancelWaybill
func (c *HTTPAPIClient) CancelWaybill(ctx context.Context, token, awb string) (*CancelResponse, error) {
	body := map[string]string{"AWBNo": awb}
	var result CancelResponse
	if err := c.doJSON(ctx, token, http.MethodPost, "/in/transportation/waybill/v1/CancelWaybill", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SchedulePickup registers a pickup request.
// POST /in/transportation/pickup/v1/RegisterPickup
func (c *HTTPAPIClient) SchedulePickup(ctx context.Context, token string, req *PickupRegistrationRequest) (*PickupRegistrationResponse, error) {
	var result PickupRegistrationResponse
	if err := c.doJSON(ctx, token, http.MethodPost, "/in/transportation/pickup/v1/RegisterPickup", req, &result); err != nil {
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
	req.Header.Set("JWTToken", token)
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
