package storeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ecomplus/app-google-analytics/internal/auth"
)

// DefaultBaseURL is the production Store API endpoint.
const DefaultBaseURL = "https://api.e-com.plus/v1"

const (
	defaultRequestTimeout = 30 * time.Second
	maxResponseBodyBytes  = 1 << 20
	errorSnippetMaxBytes  = 512
)

// HTTPDoer lets tests and callers inject the HTTP transport.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches order snapshots and app configuration from the Store API.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
}

// NewClient returns a Client for baseURL. A nil doer falls back to a
// default http.Client with a request timeout.
func NewClient(baseURL string, doer HTTPDoer) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if doer == nil {
		doer = &http.Client{Timeout: defaultRequestTimeout}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: doer,
	}
}

// FindOrderByID fetches the current order snapshot for a store.
func (c *Client) FindOrderByID(ctx context.Context, storeID, orderID string, creds *auth.Credentials) (*Order, error) {
	var order Order
	if err := c.getJSON(ctx, fmt.Sprintf("/orders/%s.json", orderID), storeID, creds, &order); err != nil {
		return nil, fmt.Errorf("find order %s: %w", orderID, err)
	}
	return &order, nil
}

// GetAppConfig fetches the application record and merges data with
// hidden_data into an AppConfig. hidden_data overrides data.
func (c *Client) GetAppConfig(ctx context.Context, storeID string, creds *auth.Credentials) (*AppConfig, error) {
	var app struct {
		Data       json.RawMessage `json:"data"`
		HiddenData json.RawMessage `json:"hidden_data"`
	}
	path := fmt.Sprintf("/applications/%s.json", creds.ApplicationID)
	if err := c.getJSON(ctx, path, storeID, creds, &app); err != nil {
		return nil, fmt.Errorf("get app config: %w", err)
	}

	cfg := &AppConfig{}
	if len(app.Data) > 0 {
		if err := json.Unmarshal(app.Data, cfg); err != nil {
			return nil, fmt.Errorf("get app config: decode data: %w", err)
		}
	}
	if len(app.HiddenData) > 0 {
		if err := json.Unmarshal(app.HiddenData, cfg); err != nil {
			return nil, fmt.Errorf("get app config: decode hidden_data: %w", err)
		}
	}
	return cfg, nil
}

func (c *Client) getJSON(ctx context.Context, path, storeID string, creds *auth.Credentials, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Store-ID", storeID)
	req.Header.Set("X-My-ID", creds.AuthenticationID)
	req.Header.Set("X-Access-Token", creds.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("store api responded %d: %s", resp.StatusCode, errorSnippet(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func errorSnippet(body []byte) string {
	if len(body) > errorSnippetMaxBytes {
		body = body[:errorSnippetMaxBytes]
	}
	return string(body)
}
