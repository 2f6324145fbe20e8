package checkout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/devanagari-foods/storefront/internal/config"
	"github.com/devanagari-foods/storefront/internal/domain/cart"
	"github.com/devanagari-foods/storefront/internal/domain/order"
	"github.com/devanagari-foods/storefront/internal/domain/user"
	"github.com/devanagari-foods/storefront/internal/gateway/promo"
	"github.com/devanagari-foods/storefront/internal/gateway/razorpay"
)

// ValidationError carries a user-facing message. Handlers render it as a
// 4xx, never a 5xx.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ErrAddressRequired blocks Continue until a delivery address is selected.
var ErrAddressRequired = &ValidationError{Message: "Please select a delivery address to continue"}

// ErrNoActivePayment reports a success callback without a matching attempt.
var ErrNoActivePayment = errors.New("no active payment attempt for this session")

// ErrSignatureMismatch reports a failed gateway signature check.
var ErrSignatureMismatch = errors.New("payment verification failed")

// CartSource is the cart surface the orchestrator needs.
type CartSource interface {
	Get(ctx context.Context, userID uuid.UUID) (*cart.View, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// AddressSource reads the user's delivery addresses.
type AddressSource interface {
	List(ctx context.Context, userID uuid.UUID) ([]user.Address, error)
	Get(ctx context.Context, userID, addressID uuid.UUID) (*user.Address, error)
	GetDefault(ctx context.Context, userID uuid.UUID) (*user.Address, error)
}

// OrderWriter persists a paid order.
type OrderWriter interface {
	CreateFromCart(ctx context.Context, userID uuid.UUID, items []cart.CartItem, total int64, pay order.PaymentInfo) (*order.Order, error)
}

// Gateway is the payment gateway surface.
type Gateway interface {
	CreateOrder(ctx context.Context, req razorpay.CreateOrderRequest) (*razorpay.GatewayOrder, error)
	VerifySignature(orderID, paymentID, signature string) bool
	KeyID() string
}

// PromoValidator checks codes the static offer table does not know.
type PromoValidator interface {
	Validate(ctx context.Context, code string) (*promo.Validation, error)
}

// ConfirmationSender sends the order confirmation mail. Optional and
// best effort.
type ConfirmationSender interface {
	SendOrderConfirmation(ctx context.Context, to, name string, o *order.Order) error
}

// Cache is the redis surface for session persistence.
type Cache interface {
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) error
	Del(ctx context.Context, keys ...string) error
}

// Service orchestrates the two-step checkout wizard.
type Service struct {
	cache     Cache
	carts     CartSource
	addresses AddressSource
	orders    OrderWriter
	gateway   Gateway
	promos    PromoValidator
	mailer    ConfirmationSender
	config    *config.Config
	logger    *logrus.Logger
}

// NewService creates a new checkout service
func NewService(cache Cache, carts CartSource, addresses AddressSource, orders OrderWriter, gateway Gateway, promos PromoValidator, mailer ConfirmationSender, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		cache:     cache,
		carts:     carts,
		addresses: addresses,
		orders:    orders,
		gateway:   gateway,
		promos:    promos,
		mailer:    mailer,
		config:    cfg,
		logger:    logger,
	}
}

// Summary is the orchestrator's view of a session: wizard state,
// cart, known addresses and the current price preview.
type Summary struct {
	Session   *Session       `json:"session"`
	Cart      *cart.View     `json:"cart"`
	Addresses []user.Address `json:"addresses"`
	Quote     Quote          `json:"quote"`
}

// PaymentIntent is handed to the hosted gateway UI.
type PaymentIntent struct {
	Key            string `json:"key"`
	GatewayOrderID string `json:"gateway_order_id"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Quote          Quote  `json:"quote"`
}

// SuccessCallback is the gateway's payment-success payload.
type SuccessCallback struct {
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	Signature string `json:"razorpay_signature" binding:"required"`
}

// Begin opens a checkout session on the address step, auto-selecting the
// default address when one exists.
func (s *Service) Begin(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	sess := &Session{
		UserID: userID,
		Step:   StepAddress,
	}

	if def, err := s.addresses.GetDefault(ctx, userID); err == nil {
		sess.AddressID = &def.ID
	} else if !errors.Is(err, user.ErrAddressNotFound) {
		return nil, fmt.Errorf("failed to load default address: %w", err)
	}

	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return s.summarize(ctx, sess)
}

// SelectAddress pins the delivery address. Ownership is verified before
// the session is touched.
func (s *Service) SelectAddress(ctx context.Context, userID, addressID uuid.UUID) (*Summary, error) {
	sess, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	addr, err := s.addresses.Get(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	sess.AddressID = &addr.ID
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return s.summarize(ctx, sess)
}

// Continue advances the wizard from address to payment. Without a
// selected address it fails with a validation message.
func (s *Service) Continue(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	sess, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if sess.Step == StepAddress {
		if sess.AddressID == nil {
			return nil, ErrAddressRequired
		}
		sess.Step = StepPayment
		if err := s.save(ctx, sess); err != nil {
			return nil, err
		}
	}
	return s.summarize(ctx, sess)
}

// Back returns the wizard to the address step.
func (s *Service) Back(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	sess, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	sess.Step = StepAddress
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return s.summarize(ctx, sess)
}

// ApplyPromo evaluates a code against the current subtotal. One promo is
// active at a time; applying another replaces it.
func (s *Service) ApplyPromo(ctx context.Context, userID uuid.UUID, code string) (*Summary, error) {
	sess, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	view, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	applied, err := s.evaluatePromo(ctx, code, view.TotalPrice)
	if err != nil {
		return nil, err
	}

	sess.Promo = applied
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return s.summarize(ctx, sess)
}

// RemovePromo clears the active promo.
func (s *Service) RemovePromo(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	sess, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	sess.Promo = nil
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return s.summarize(ctx, sess)
}

func (s *Service) evaluatePromo(ctx context.Context, code string, subtotal int64) (*AppliedPromo, error) {
	if offer, ok := lookupOffer(code); ok {
		if subtotal < offer.MinSubtotal {
			return nil, &ValidationError{
				Message: fmt.Sprintf("%s requires a minimum order of %s", offer.Code, formatRupees(offer.MinSubtotal)),
			}
		}
		return &AppliedPromo{
			Code:         offer.Code,
			Description:  offer.Description,
			Percent:      offer.Percent,
			FreeShipping: offer.FreeShipping,
		}, nil
	}

	result, err := s.promos.Validate(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to validate promo code: %w", err)
	}
	if !result.Valid {
		msg := result.Error
		if msg == "" {
			msg = "The promo code you entered is not valid"
		}
		return nil, &ValidationError{Message: msg}
	}
	return &AppliedPromo{
		Code:        code,
		Description: result.Description,
		Percent:     result.Discount,
	}, nil
}

// StartPayment prices the cart exactly once for this attempt and creates
// the gateway order for that quote.
func (s *Service) StartPayment(ctx context.Context, ident user.Profile) (*PaymentIntent, error) {
	sess, err := s.load(ctx, ident.ID)
	if err != nil {
		return nil, err
	}
	if sess.AddressID == nil {
		return nil, ErrAddressRequired
	}

	view, err := s.carts.Get(ctx, ident.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(view.Items) == 0 {
		return nil, &ValidationError{Message: "Your cart is empty"}
	}

	addr, err := s.addresses.Get(ctx, ident.ID, *sess.AddressID)
	if err != nil {
		return nil, err
	}

	quote := s.computeQuote(view, addr, sess.Promo)

	notes := map[string]any{
		"email":      ident.Email,
		"address_id": sess.AddressID.String(),
	}
	for _, item := range view.Items {
		if item.Product != nil {
			notes[item.Product.Name] = fmt.Sprintf("x%d", item.Quantity)
		}
	}

	gw, err := s.gateway.CreateOrder(ctx, razorpay.CreateOrderRequest{
		Amount:   quote.Total,
		Currency: quote.Currency,
		Receipt:  "rcpt_" + uuid.NewString()[:18],
		Notes:    notes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}

	sess.Quote = &quote
	sess.PaymentOrderID = gw.ID
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}

	return &PaymentIntent{
		Key:            s.gateway.KeyID(),
		GatewayOrderID: gw.ID,
		Amount:         quote.Total,
		Currency:       quote.Currency,
		Quote:          quote,
	}, nil
}

// HandleSuccess verifies the gateway callback, persists the order with
// its items in one transaction, clears the cart and resets the session.
func (s *Service) HandleSuccess(ctx context.Context, ident user.Profile, cb SuccessCallback) (*order.Order, error) {
	sess, err := s.load(ctx, ident.ID)
	if err != nil {
		return nil, err
	}
	if sess.Quote == nil || sess.PaymentOrderID == "" {
		return nil, ErrNoActivePayment
	}
	if sess.PaymentOrderID != cb.OrderID {
		return nil, ErrNoActivePayment
	}
	if !s.gateway.VerifySignature(cb.OrderID, cb.PaymentID, cb.Signature) {
		return nil, ErrSignatureMismatch
	}

	view, err := s.carts.Get(ctx, ident.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	o, err := s.orders.CreateFromCart(ctx, ident.ID, view.Items, sess.Quote.Total, order.PaymentInfo{
		PaymentID:        cb.PaymentID,
		PaymentOrderID:   cb.OrderID,
		PaymentSignature: cb.Signature,
		PaymentStatus:    order.PaymentStatusPaid,
		PaymentMethod:    "razorpay",
		Currency:         sess.Quote.Currency,
	})
	if err != nil {
		return nil, err
	}

	if err := s.carts.Clear(ctx, ident.ID); err != nil {
		s.logger.WithError(err).WithField("user_id", ident.ID).Error("Failed to clear cart after payment")
	}
	if err := s.reset(ctx, ident.ID); err != nil {
		s.logger.WithError(err).WithField("user_id", ident.ID).Warn("Failed to reset checkout session")
	}

	if s.mailer != nil && ident.Email != "" {
		if err := s.mailer.SendOrderConfirmation(ctx, ident.Email, ident.FullName, o); err != nil {
			s.logger.WithError(err).WithField("order_id", o.ID).Warn("Failed to send order confirmation")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":   o.ID,
		"user_id":    ident.ID,
		"payment_id": cb.PaymentID,
		"total":      sess.Quote.Total,
	}).Info("Payment captured, order created")

	return o, nil
}

// HandleFailure records a failed or dismissed payment. The cart and the
// wizard step stay untouched; the gateway's message is passed back
// verbatim for display.
func (s *Service) HandleFailure(ctx context.Context, userID uuid.UUID, code, description string) string {
	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"code":    code,
		"reason":  description,
	}).Warn("Payment attempt failed")

	if description == "" {
		description = "Payment was not completed"
	}
	return description
}

func (s *Service) computeQuote(view *cart.View, addr *user.Address, applied *AppliedPromo) Quote {
	quote := Quote{
		Subtotal: view.TotalPrice,
		Currency: s.config.Checkout.Currency,
	}

	quote.Shipping = s.config.Checkout.ShippingFlatFee
	if addr != nil && s.isFreeDeliveryPincode(addr.PostalCode) {
		quote.Shipping = 0
	}

	if applied != nil {
		if applied.FreeShipping {
			quote.Shipping = 0
		}
		if applied.Percent > 0 {
			quote.Discount = int64(math.Round(float64(quote.Subtotal) * applied.Percent / 100))
		}
	}

	quote.Total = quote.Subtotal + quote.Shipping - quote.Discount
	if quote.Total < 0 {
		quote.Total = 0
	}
	return quote
}

func (s *Service) isFreeDeliveryPincode(pincode string) bool {
	for _, p := range s.config.Checkout.FreeDeliveryPincodes {
		if p == pincode {
			return true
		}
	}
	return false
}

func (s *Service) summarize(ctx context.Context, sess *Session) (*Summary, error) {
	view, err := s.carts.Get(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	addresses, err := s.addresses.List(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load addresses: %w", err)
	}

	var addr *user.Address
	if sess.AddressID != nil {
		for i := range addresses {
			if addresses[i].ID == *sess.AddressID {
				addr = &addresses[i]
				break
			}
		}
	}

	return &Summary{
		Session:   sess,
		Cart:      view,
		Addresses: addresses,
		Quote:     s.computeQuote(view, addr, sess.Promo),
	}, nil
}

func (s *Service) load(ctx context.Context, userID uuid.UUID) (*Session, error) {
	var sess Session
	if err := s.cache.GetJSON(ctx, sessionKeyPrefix+userID.String(), &sess); err != nil {
		// expired or never begun, restart at the address step
		fresh, ferr := s.freshSession(ctx, userID)
		if ferr != nil {
			return nil, ferr
		}
		return fresh, nil
	}
	return &sess, nil
}

func (s *Service) freshSession(ctx context.Context, userID uuid.UUID) (*Session, error) {
	sess := &Session{
		UserID: userID,
		Step:   StepAddress,
	}
	if def, err := s.addresses.GetDefault(ctx, userID); err == nil {
		sess.AddressID = &def.ID
	} else if !errors.Is(err, user.ErrAddressNotFound) {
		return nil, fmt.Errorf("failed to load default address: %w", err)
	}
	return sess, nil
}

func (s *Service) save(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = time.Now().UTC()
	key := sessionKeyPrefix + sess.UserID.String()
	if err := s.cache.SetJSON(ctx, key, sess, s.config.Checkout.SessionTTL); err != nil {
		return fmt.Errorf("failed to persist checkout session: %w", err)
	}
	return nil
}

func (s *Service) reset(ctx context.Context, userID uuid.UUID) error {
	return s.cache.Del(ctx, sessionKeyPrefix+userID.String())
}

// formatRupees renders a paise amount for user-facing messages, trimming
// trailing zeros (₹500, not ₹500.00).
func formatRupees(paise int64) string {
	if paise%100 == 0 {
		return fmt.Sprintf("₹%d", paise/100)
	}
	return fmt.Sprintf("₹%.2f", float64(paise)/100)
}
