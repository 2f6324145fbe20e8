package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/devanagari-foods/storefront/internal/domain/product"
	"github.com/devanagari-foods/storefront/internal/domain/user"
	"github.com/devanagari-foods/storefront/internal/rowstore"
)

var (
	// ErrNotAuthenticated reports a cart operation without an identity.
	ErrNotAuthenticated = errors.New("cart: sign in required")

	// ErrItemNotFound reports a mutation whose target row is missing or
	// not owned by the caller.
	ErrItemNotFound = errors.New("cart: item not found")
)

// ProductResolver resolves catalog rows for add-to-cart.
type ProductResolver interface {
	FindOrCreate(ctx context.Context, desc product.Descriptor) (*product.Product, error)
}

// IdentityMirror guarantees the users row a cart write depends on.
type IdentityMirror interface {
	EnsureMirrored(ctx context.Context, p user.Profile) error
}

// Service is the cart state machine. The row store holds the truth;
// every mutation ends with a full re-fetch so the returned view always
// reflects the store's last-committed state.
type Service struct {
	store    rowstore.Store
	products ProductResolver
	mirror   IdentityMirror
	logger   *logrus.Logger
}

// NewService creates a new cart service
func NewService(store rowstore.Store, products ProductResolver, mirror IdentityMirror, logger *logrus.Logger) *Service {
	return &Service{
		store:    store,
		products: products,
		mirror:   mirror,
		logger:   logger,
	}
}

// Get fetches the cart collection for the identity with products joined.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*View, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	return s.fetch(ctx, userID)
}

// AddItem adds quantity of the described product pack to the identity's
// cart. The users row is upserted inline first: the background identity
// mirror is best-effort and a cart write must not depend on its timing.
// Two callers racing to create the same (user, product) row converge via
// the unique-violation fallback: re-read and increment instead of fail.
func (s *Service) AddItem(ctx context.Context, ident user.Profile, desc product.Descriptor, quantity int) (*View, error) {
	if ident.ID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	if quantity < 1 {
		quantity = 1
	}

	if err := s.mirror.EnsureMirrored(ctx, ident); err != nil {
		return nil, fmt.Errorf("failed to ensure user row: %w", err)
	}

	prod, err := s.products.FindOrCreate(ctx, desc)
	if err != nil {
		return nil, err
	}

	if err := s.upsertItem(ctx, ident.ID, prod.ID, quantity); err != nil {
		return nil, err
	}

	return s.fetch(ctx, ident.ID)
}

// UpdateQuantity sets an item's quantity. Anything below one removes the
// item. The row must belong to the caller; a foreign or missing row
// fails with ErrItemNotFound.
func (s *Service) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*View, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	if quantity < 1 {
		return s.RemoveItem(ctx, userID, itemID)
	}

	// Ownership is re-verified at mutation time, not trusted from a
	// previously fetched snapshot.
	rows, err := s.store.Update(ctx, &CartItem{},
		rowstore.Filter{"id": itemID, "user_id": userID},
		map[string]any{"quantity": quantity})
	if err != nil {
		return nil, fmt.Errorf("failed to update cart item quantity: %w", err)
	}
	if rows == 0 {
		return nil, ErrItemNotFound
	}

	return s.fetch(ctx, userID)
}

// RemoveItem deletes the row scoped to caller ownership. Removing an
// already-removed item is not an error.
func (s *Service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*View, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}

	if _, err := s.store.Delete(ctx, &CartItem{}, rowstore.Filter{"id": itemID, "user_id": userID}); err != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}

	return s.fetch(ctx, userID)
}

// Clear deletes every cart row for the identity. Used post-checkout.
func (s *Service) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrNotAuthenticated
	}

	if _, err := s.store.Delete(ctx, &CartItem{}, rowstore.Filter{"user_id": userID}); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// upsertItem is the find-or-create core of AddItem.
func (s *Service) upsertItem(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	var existing CartItem
	err := s.store.SelectOne(ctx, &existing, rowstore.Filter{"user_id": userID, "product_id": productID})
	switch {
	case err == nil:
		return s.incrementItem(ctx, existing, quantity)
	case !rowstore.IsNotFound(err):
		return fmt.Errorf("failed to check cart item: %w", err)
	}

	item := &CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}
	err = s.store.Insert(ctx, item)
	if err == nil {
		return nil
	}
	if !rowstore.IsUniqueViolation(err) {
		return fmt.Errorf("failed to add item to cart: %w", err)
	}

	// A second writer created the row between the check and the insert
	// (double-click, second tab). Re-read and increment instead.
	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"product_id": productID,
	}).Debug("Cart item insert raced, falling back to update")

	var winner CartItem
	if err := s.store.SelectOne(ctx, &winner, rowstore.Filter{"user_id": userID, "product_id": productID}); err != nil {
		return fmt.Errorf("failed to add item to cart: %w", err)
	}
	return s.incrementItem(ctx, winner, quantity)
}

func (s *Service) incrementItem(ctx context.Context, item CartItem, quantity int) error {
	_, err := s.store.Update(ctx, &CartItem{},
		rowstore.Filter{"id": item.ID},
		map[string]any{"quantity": item.Quantity + quantity})
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	return nil
}

func (s *Service) fetch(ctx context.Context, userID uuid.UUID) (*View, error) {
	var items []CartItem
	err := s.store.SelectAll(ctx, &items, rowstore.Filter{"user_id": userID},
		rowstore.WithExpand("Product"), rowstore.WithOrder("created_at ASC"))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cart items: %w", err)
	}
	return buildView(items), nil
}
