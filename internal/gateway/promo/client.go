package promo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Validation is the promo endpoint's verdict on a code.
type Validation struct {
	Valid       bool    `json:"valid"`
	Discount    float64 `json:"discount,omitempty"` // percent
	Description string  `json:"description,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// Client calls the external promo validation endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new promo client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Validate posts the code to {base}/promo/validate.
func (c *Client) Validate(ctx context.Context, code string) (*Validation, error) {
	payload, err := json.Marshal(map[string]string{"code": code})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal promo request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/promo/validate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create promo request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to validate promo code: %w", err)
	}
	defer resp.Body.Close()

	var result Validation
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse promo response: %w", err)
	}
	return &result, nil
}
