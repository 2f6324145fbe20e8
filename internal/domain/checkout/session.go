package checkout

import (
	"time"

	"github.com/google/uuid"
)

// sessionKeyPrefix namespaces checkout sessions in redis.
const sessionKeyPrefix = "checkout:session:"

// Step is a checkout wizard step.
type Step string

const (
	StepAddress Step = "address"
	StepPayment Step = "payment"
)

// AppliedPromo is the single active promo on a session. Applying a new
// code replaces it.
type AppliedPromo struct {
	Code         string  `json:"code"`
	Description  string  `json:"description"`
	Percent      float64 `json:"percent"`
	FreeShipping bool    `json:"free_shipping"`
}

// Quote is a priced snapshot of the cart. It is computed exactly once
// per payment attempt and threaded unchanged to the gateway order and
// the persisted order.
type Quote struct {
	Subtotal int64  `json:"subtotal"`
	Shipping int64  `json:"shipping"`
	Discount int64  `json:"discount"`
	Total    int64  `json:"total"`
	Currency string `json:"currency"`
}

// Session is the per-user checkout state persisted in redis.
type Session struct {
	UserID         uuid.UUID     `json:"user_id"`
	Step           Step          `json:"step"`
	AddressID      *uuid.UUID    `json:"address_id,omitempty"`
	Promo          *AppliedPromo `json:"promo,omitempty"`
	Quote          *Quote        `json:"quote,omitempty"`
	PaymentOrderID string        `json:"payment_order_id,omitempty"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
