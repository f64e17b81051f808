package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tailor/internal/api"
)

// apiClient is a thin HTTP client for the daemon API.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(baseURL, token string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   token,
		// Optimize runs block on the generative service; match the daemon's
		// generous write timeout.
		http: &http.Client{Timeout: 15 * time.Minute},
	}
}

func (c *apiClient) Health(ctx context.Context) (api.HealthResponse, error) {
	var health api.HealthResponse
	err := c.getJSON(ctx, "/api/health", &health)
	return health, err
}

func (c *apiClient) Optimize(ctx context.Context, req api.OptimizeRequest) (api.OptimizeResponse, error) {
	var resp api.OptimizeResponse
	err := c.postJSON(ctx, "/api/optimize", req, &resp)
	return resp, err
}

// Compile returns the compiled PDF bytes; compile failures surface as errors
// carrying the daemon's diagnostic detail.
func (c *apiClient) Compile(ctx context.Context, req api.CompileRequest) ([]byte, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/compile", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.authorize(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("daemon unreachable: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp.StatusCode, payload)
	}
	return payload, nil
}

func (c *apiClient) History(ctx context.Context, limit int) (api.HistoryResponse, error) {
	var hist api.HistoryResponse
	path := "/api/history"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}
	err := c.getJSON(ctx, path, &hist)
	return hist, err
}

func (c *apiClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.authorize(req)
	return c.doJSON(req, out)
}

func (c *apiClient) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)
	return c.doJSON(req, out)
}

func (c *apiClient) doJSON(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("daemon unreachable: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp.StatusCode, payload)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *apiClient) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func decodeError(status int, payload []byte) error {
	var apiErr api.ErrorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil && apiErr.Detail != "" {
		return fmt.Errorf("daemon returned %d: %s", status, apiErr.Detail)
	}
	return fmt.Errorf("daemon returned %d: %s", status, strings.TrimSpace(string(payload)))
}
