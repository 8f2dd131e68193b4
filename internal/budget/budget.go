// Package budget queries a LiteLLM proxy for key spend and budget status.
package budget

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client fetches key information from a LiteLLM proxy.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a budget client for the given proxy endpoint.
func NewClient(baseURL, apiKey string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required (set LLM_API_KEY)")
	}
	if baseURL == "" {
		return nil, fmt.Errorf("proxy base URL is required (set LLM_API_BASE)")
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// KeyInfo is the budget-relevant subset of the proxy's /key/info response.
type KeyInfo struct {
	UserID string `json:"user_id"`
	Spend  float64 `json:"spend"`

	// MaxBudget is nil for unlimited keys.
	MaxBudget *float64 `json:"max_budget"`
}

// keyInfoEnvelope handles both response shapes: some proxy versions wrap
// the payload in an "info" object, others return it at the top level.
type keyInfoEnvelope struct {
	Info *KeyInfo `json:"info"`
	KeyInfo
}

// KeyInfo fetches spend and budget information for the configured key.
func (c *Client) KeyInfo(ctx context.Context) (*KeyInfo, error) {
	endpoint := fmt.Sprintf("%s/key/info?key=%s", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connect to proxy at %s: %w", c.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("proxy returned %d: %s", resp.StatusCode, string(body))
	}

	var envelope keyInfoEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	if envelope.Info != nil {
		return envelope.Info, nil
	}
	return &envelope.KeyInfo, nil
}

// Remaining returns the remaining budget, or false for unlimited keys.
func (k *KeyInfo) Remaining() (float64, bool) {
	if k.MaxBudget == nil {
		return 0, false
	}
	return *k.MaxBudget - k.Spend, true
}

// UsageFraction returns spend as a fraction of the budget, or false for
// unlimited or zero budgets.
func (k *KeyInfo) UsageFraction() (float64, bool) {
	if k.MaxBudget == nil || *k.MaxBudget <= 0 {
		return 0, false
	}
	return k.Spend / *k.MaxBudget, true
}
