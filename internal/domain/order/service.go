package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/devanagari-foods/storefront/internal/domain/cart"
	"github.com/devanagari-foods/storefront/internal/rowstore"
)

// PaymentInfo carries the gateway fields persisted with an order.
type PaymentInfo struct {
	PaymentID        string
	PaymentOrderID   string
	PaymentSignature string
	PaymentStatus    PaymentStatus
	PaymentMethod    string
	Currency         string
}

// Service handles order business logic
type Service struct {
	store rowstore.Store
}

// NewService creates a new order service
func NewService(store rowstore.Store) *Service {
	return &Service{store: store}
}

// CreateFromCart materializes an Order plus its OrderItems from the cart
// contents. Both writes run in one transaction: a failed item insert
// rolls the order row back rather than leaving an orphaned zero-item
// order. The total is the quote computed by checkout and must not be
// recomputed here.
func (s *Service) CreateFromCart(ctx context.Context, userID uuid.UUID, items []cart.CartItem, total int64, pay PaymentInfo) (*Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("cannot create order from empty cart")
	}

	status := StatusPending
	if pay.PaymentStatus == PaymentStatusPaid {
		status = StatusProcessing
	}
	if pay.PaymentStatus == "" {
		pay.PaymentStatus = PaymentStatusPending
	}
	if pay.PaymentMethod == "" {
		pay.PaymentMethod = "razorpay"
	}
	if pay.Currency == "" {
		pay.Currency = "INR"
	}

	o := &Order{
		ID:               uuid.New(),
		UserID:           userID,
		Total:            total,
		Status:           status,
		PaymentID:        pay.PaymentID,
		PaymentOrderID:   pay.PaymentOrderID,
		PaymentSignature: pay.PaymentSignature,
		PaymentStatus:    pay.PaymentStatus,
		PaymentMethod:    pay.PaymentMethod,
		Currency:         pay.Currency,
	}

	err := s.store.Transaction(ctx, func(tx rowstore.Store) error {
		if err := tx.Insert(ctx, o); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, item := range items {
			var price int64
			if item.Product != nil {
				price = item.Product.Price
			}
			line := &OrderItem{
				ID:        uuid.New(),
				OrderID:   o.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     price,
			}
			if err := tx.Insert(ctx, line); err != nil {
				return fmt.Errorf("failed to create order items: %w", err)
			}
			o.Items = append(o.Items, *line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return o, nil
}

// ListForUser returns the identity's orders, newest first, with items
// and their products joined.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	var orders []Order
	err := s.store.SelectAll(ctx, &orders, rowstore.Filter{"user_id": userID},
		rowstore.WithExpand("Items", "Items.Product"),
		rowstore.WithOrder("created_at DESC"))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	return orders, nil
}

// Get returns one order owned by the user.
func (s *Service) Get(ctx context.Context, userID, orderID uuid.UUID) (*Order, error) {
	var o Order
	err := s.store.SelectOne(ctx, &o, rowstore.Filter{"id": orderID, "user_id": userID},
		rowstore.WithExpand("Items", "Items.Product"))
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdatePayment records a late gateway result against an existing order.
func (s *Service) UpdatePayment(ctx context.Context, orderID uuid.UUID, pay PaymentInfo) error {
	status := StatusPending
	if pay.PaymentStatus == PaymentStatusPaid {
		status = StatusProcessing
	}

	rows, err := s.store.Update(ctx, &Order{}, rowstore.Filter{"id": orderID}, map[string]any{
		"payment_id":        pay.PaymentID,
		"payment_signature": pay.PaymentSignature,
		"payment_status":    pay.PaymentStatus,
		"status":            status,
		"updated_at":        time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to update order payment: %w", err)
	}
	if rows == 0 {
		return rowstore.ErrNotFound
	}
	return nil
}

// UpdateStatus moves an order through its fulfillment lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, orderID uuid.UUID, status Status) error {
	rows, err := s.store.Update(ctx, &Order{}, rowstore.Filter{"id": orderID}, map[string]any{
		"status":     status,
		"updated_at": time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if rows == 0 {
		return rowstore.ErrNotFound
	}
	return nil
}
