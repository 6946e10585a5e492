// Package measurement delivers batched events to the GA4 Measurement
// Protocol collect endpoint.
package measurement

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ecomplus/app-google-analytics/internal/events"
)

// DefaultBaseURL is the production Measurement Protocol host.
const DefaultBaseURL = "https://www.google-analytics.com"

const (
	collectPath           = "/mp/collect"
	defaultRequestTimeout = 10 * time.Second
	errorSnippetMaxBytes  = 512
)

// HTTPDoer lets tests and callers inject the HTTP transport.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client posts event batches to the measurement endpoint.
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

type collectBody struct {
	ClientID string         `json:"client_id"`
	Events   []events.Event `json:"events"`
}

// Send posts all events in one request, credentials as query parameters.
// Failures (transport error or non-2xx) are returned as-is and never
// retried here; webhook re-delivery plus the dedup ledger make the retry
// safe upstream.
func (c *Client) Send(ctx context.Context, measurementID, apiSecret, clientID string, evs []events.Event) error {
	if len(evs) == 0 {
		return nil
	}

	query := url.Values{}
	query.Set("api_secret", apiSecret)
	query.Set("measurement_id", measurementID)
	endpoint := c.baseURL + collectPath + "?" + query.Encode()

	payload, err := json.Marshal(collectBody{ClientID: clientID, Events: evs})
	if err != nil {
		return fmt.Errorf("marshal events: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post collect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorSnippetMaxBytes))
		return fmt.Errorf("measurement endpoint responded %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
