package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/devanagari-foods/storefront/internal/config"
)

// Client calls the Razorpay REST API for server-side order creation and
// verifies the signatures the hosted checkout posts back.
type Client struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Razorpay client
func NewClient(cfg *config.Config) *Client {
	return &Client{
		keyID:     cfg.Razorpay.KeyID,
		keySecret: cfg.Razorpay.KeySecret,
		baseURL:   cfg.Razorpay.BaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// KeyID returns the publishable key the hosted checkout UI needs.
func (c *Client) KeyID() string {
	return c.keyID
}

// CreateOrderRequest is the gateway order-creation payload.
type CreateOrderRequest struct {
	Amount   int64          `json:"amount"` // paise
	Currency string         `json:"currency"`
	Receipt  string         `json:"receipt"`
	Notes    map[string]any `json:"notes,omitempty"`
}

// GatewayOrder is the order handle returned by the gateway.
type GatewayOrder struct {
	ID        string         `json:"id"`
	Entity    string         `json:"entity"`
	Amount    int64          `json:"amount"`
	Currency  string         `json:"currency"`
	Receipt   string         `json:"receipt"`
	Status    string         `json:"status"`
	Notes     map[string]any `json:"notes"`
	CreatedAt int64          `json:"created_at"`
}

// Payment is the gateway's view of a captured payment.
type Payment struct {
	ID          string `json:"id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
	OrderID     string `json:"order_id"`
	Method      string `json:"method"`
	Email       string `json:"email"`
	Contact     string `json:"contact"`
	Description string `json:"description"`
	CreatedAt   int64  `json:"created_at"`
}

// CreateOrder creates a gateway order for the quoted amount.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*GatewayOrder, error) {
	body, err := c.call(ctx, http.MethodPost, "/orders", req)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}

	var order GatewayOrder
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("failed to parse gateway order response: %w", err)
	}
	return &order, nil
}

// FetchPayment retrieves a payment by gateway id.
func (c *Client) FetchPayment(ctx context.Context, paymentID string) (*Payment, error) {
	body, err := c.call(ctx, http.MethodGet, "/payments/"+paymentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment: %w", err)
	}

	var payment Payment
	if err := json.Unmarshal(body, &payment); err != nil {
		return nil, fmt.Errorf("failed to parse payment response: %w", err)
	}
	return &payment, nil
}

// VerifySignature checks the success-callback signature: HMAC-SHA256 of
// "<order_id>|<payment_id>" under the key secret.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	fmt.Fprintf(mac, "%s|%s", orderID, paymentID)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (c *Client) call(ctx context.Context, method, endpoint string, data any) ([]byte, error) {
	var reqBody io.Reader
	if data != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request data: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call gateway: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("gateway call failed with status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
