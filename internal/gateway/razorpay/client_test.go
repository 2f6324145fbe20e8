package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devanagari-foods/storefront/internal/config"
)

func newTestClient(baseURL string) *Client {
	cfg := &config.Config{}
	cfg.Razorpay.KeyID = "rzp_test_key"
	cfg.Razorpay.KeySecret = "test_secret"
	cfg.Razorpay.BaseURL = baseURL
	return NewClient(cfg)
}

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s|%s", orderID, paymentID)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	c := newTestClient("http://unused")

	good := sign("test_secret", "order_abc", "pay_xyz")
	assert.True(t, c.VerifySignature("order_abc", "pay_xyz", good))

	assert.False(t, c.VerifySignature("order_abc", "pay_xyz", "tampered"))
	assert.False(t, c.VerifySignature("order_other", "pay_xyz", good))
}

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/orders", r.URL.Path)

		username, password, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "rzp_test_key", username)
		require.Equal(t, "test_secret", password)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"order_abc","entity":"order","amount":39800,"currency":"INR","receipt":"rcpt_1","status":"created"}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	order, err := c.CreateOrder(context.Background(), CreateOrderRequest{
		Amount:   39800,
		Currency: "INR",
		Receipt:  "rcpt_1",
	})
	require.NoError(t, err)
	assert.Equal(t, "order_abc", order.ID)
	assert.Equal(t, int64(39800), order.Amount)
}

func TestCreateOrderGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"description":"amount must be at least 100"}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.CreateOrder(context.Background(), CreateOrderRequest{Amount: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}
