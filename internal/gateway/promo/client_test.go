package promo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAccepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/promo/validate", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "SAVE20", body["code"])

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"valid":true,"discount":20,"description":"20% off on orders above ₹500"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	v, err := c.Validate(context.Background(), "SAVE20")
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, 20.0, v.Discount)
}

func TestValidateRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"valid":false,"error":"The promo code you entered is not valid"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	v, err := c.Validate(context.Background(), "BOGUS")
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Contains(t, v.Error, "not valid")
}
