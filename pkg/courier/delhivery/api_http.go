package delhivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HTTPAPIClient is the production implementation of APIClient. Delhivery
// authenticates every call with a static API token header; there is no login
// exchange.
type HTTPAPIClient struct {
	baseURL    string
	apiToken   string
	pickupName string
	httpClient *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL    string
	APIToken   string
	PickupName string // registered pickup location name
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
		apiToken:   cfg.APIToken,
		pickupName: cfg.PickupName,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetRate fetches a priced charge row.
// GET /api/kinko/v1/invoice/charges/.json
func (c *HTTPAPIClient) GetRate(ctx context.Context, req *RateRequest) (*RateResponse, error) {
	q := url.Values{}
	q.Set("o_pin", req.OriginPin)
	q.Set("d_pin", req.DestinationPin)
	q.Set("cgm", fmt.Sprintf("%.0f", req.WeightGrams))
	q.Set("pt", req.PaymentType)
	q.Set("md", req.Mode)
	if req.CODAmount > 0 {
		q.Set("cod", fmt.Sprintf("%.2f", req.CODAmount))
	}

	resp, err := c.doRequest(ctx, http.MethodGet, "/api/kinko/v1/invoice/charges/.json?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	// The endpoint returns a single-element array of charge rows.
	var rows []RateResponse
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode rate response: %w", err)
	}
	if len(rows) == 0 {
		return nil, &APIError{Code: "EMPTY_RATE", Message: "no charge rows returned"}
	}
	return &rows[0], nil
}

// CreatePackage manifests a shipment.
// POST /api/cmu/create.json (form-encoded JSON payload, a Delhivery quirk)
func (c *HTTPAPIClient) CreatePackage(ctx context.Context, req *ManifestRequest) (*ManifestResponse, error) {
	if req.PickupInfo.Name == "" {
		req.PickupInfo.Name = c.pickupName
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	form := url.Values{}
	form.Set("format", "json")
	form.Set("data", string(payload))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/cmu/create.json", bytes.NewBufferString(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.setAuth(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, wrapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, c.parseError(resp)
	}

	var result ManifestResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode manifest response: %w", err)
	}
	return &result, nil
}

// TrackPackage fetches scan history for a waybill.
// GET /api/v1/packages/json/?waybill={awb}
func (c *HTTPAPIClient) TrackPackage(ctx context.Context, waybill string) (*TrackResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v1/packages/json/?waybill="+url.QueryEscape(waybill), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var result TrackResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode track response: %w", err)
	}
	return &result, nil
}

// CancelPackage cancels a manifested waybill.
// POST /api/p/edit with cancellation=true
func (c *HTTPAPIClient) CancelPackage(ctx context.Context, waybill string) (*CancelResponse, error) {
	body := map[string]interface{}{
		"waybill":      waybill,
		"cancellation": true,
	}
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/p/edit", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var result CancelResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode cancel response: %w", err)
	}
	result.Waybill = waybill
	return &result, nil
}

// CreatePickup schedules a pickup.
// POST /fm/request/new/
func (c *HTTPAPIClient) CreatePickup(ctx context.Context, req *PickupRequest) (*PickupResponse, error) {
	if req.PickupLocation == "" {
		req.PickupLocation = c.pickupName
	}
	resp, err := c.doRequest(ctx, http.MethodPost, "/fm/request/new/", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, c.parseError(resp)
	}

	var result PickupResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode pickup response: %w", err)
	}
	return &result, nil
}

// doRequest performs an HTTP request with auth headers.
func (c *HTTPAPIClient) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, wrapTransportError(err)
	}
	return resp, nil
}

func (c *HTTPAPIClient) setAuth(req *http.Request) {
	req.Header.Set("Authorization", "Token "+c.apiToken)
	req.Header.Set("User-Agent", "shipdesk-logistics/1.0")
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

// wrapTransportError distinguishes deadline expiry from other transport
// failures so the adapter can classify them.
func wrapTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &APIError{Code: "TIMEOUT", Message: "request timed out", StatusCode: 0}
	}
	return err
}

// Ensure HTTPAPIClient implements APIClient interface
var _ APIClient = (*HTTPAPIClient)(nil)
