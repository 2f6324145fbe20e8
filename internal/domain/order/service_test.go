package order

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devanagari-foods/storefront/internal/domain/cart"
	"github.com/devanagari-foods/storefront/internal/domain/product"
	"github.com/devanagari-foods/storefront/internal/rowstore"
)

// fakeStore records order and order_item inserts with transactional
// rollback, and can fail the nth insert.
type fakeStore struct {
	orders []Order
	items  []OrderItem

	insertCount int
	failAt      int // fail the nth insert (1-based), 0 = never
}

func (f *fakeStore) Insert(ctx context.Context, value any) error {
	f.insertCount++
	if f.failAt > 0 && f.insertCount == f.failAt {
		return errors.New("insert failed")
	}
	switch v := value.(type) {
	case *Order:
		f.orders = append(f.orders, *v)
	case *OrderItem:
		f.items = append(f.items, *v)
	}
	return nil
}

func (f *fakeStore) Transaction(ctx context.Context, fn func(tx rowstore.Store) error) error {
	ordersBefore := len(f.orders)
	itemsBefore := len(f.items)
	if err := fn(f); err != nil {
		f.orders = f.orders[:ordersBefore]
		f.items = f.items[:itemsBefore]
		return err
	}
	return nil
}

func (f *fakeStore) SelectAll(ctx context.Context, dest any, filters rowstore.Filter, opts ...rowstore.Option) error {
	return nil
}

func (f *fakeStore) SelectOne(ctx context.Context, dest any, filters rowstore.Filter, opts ...rowstore.Option) error {
	return rowstore.ErrNotFound
}

func (f *fakeStore) Update(ctx context.Context, model any, filters rowstore.Filter, changes map[string]any) (int64, error) {
	return 0, nil
}

func (f *fakeStore) Delete(ctx context.Context, model any, filters rowstore.Filter) (int64, error) {
	return 0, nil
}

func (f *fakeStore) Upsert(ctx context.Context, value any, conflictColumns, assignColumns []string) error {
	return nil
}

func cartItems(userID uuid.UUID) []cart.CartItem {
	p1 := &product.Product{ID: uuid.New(), Name: "Devanagari Health Mix", Weight: 200, Price: 19900}
	p2 := &product.Product{ID: uuid.New(), Name: "Devanagari Health Mix", Weight: 900, Price: 49900}
	return []cart.CartItem{
		{ID: uuid.New(), UserID: userID, ProductID: p1.ID, Quantity: 2, Product: p1},
		{ID: uuid.New(), UserID: userID, ProductID: p2.ID, Quantity: 1, Product: p2},
	}
}

func TestCreateFromCartWritesOrderAndItems(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)
	userID := uuid.New()

	o, err := svc.CreateFromCart(context.Background(), userID, cartItems(userID), 89700, PaymentInfo{
		PaymentID:      "pay_1",
		PaymentOrderID: "order_gw_1",
		PaymentStatus:  PaymentStatusPaid,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusProcessing, o.Status)
	assert.Equal(t, PaymentStatusPaid, o.PaymentStatus)
	assert.Equal(t, int64(89700), o.Total)
	assert.Equal(t, "INR", o.Currency)
	assert.Equal(t, "razorpay", o.PaymentMethod)

	require.Len(t, store.orders, 1)
	require.Len(t, store.items, 2)
	assert.Equal(t, o.ID, store.items[0].OrderID)
	// per-unit price snapshots, not line totals
	assert.Equal(t, int64(19900), store.items[0].Price)
	assert.Equal(t, 2, store.items[0].Quantity)
}

func TestCreateFromCartRejectsEmptyCart(t *testing.T) {
	svc := NewService(&fakeStore{})

	_, err := svc.CreateFromCart(context.Background(), uuid.New(), nil, 0, PaymentInfo{})
	require.Error(t, err)
}

func TestCreateFromCartRollsBackOnItemFailure(t *testing.T) {
	// order insert succeeds, the second item insert fails
	store := &fakeStore{failAt: 3}
	svc := NewService(store)
	userID := uuid.New()

	_, err := svc.CreateFromCart(context.Background(), userID, cartItems(userID), 89700, PaymentInfo{
		PaymentStatus: PaymentStatusPaid,
	})
	require.Error(t, err)

	assert.Empty(t, store.orders)
	assert.Empty(t, store.items)
}

func TestCreateFromCartUnpaidStaysPending(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)
	userID := uuid.New()

	o, err := svc.CreateFromCart(context.Background(), userID, cartItems(userID)[:1], 39800, PaymentInfo{})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, PaymentStatusPending, o.PaymentStatus)
}

func TestCreateFromCartUnresolvedProductSnapshotsZero(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)
	userID := uuid.New()

	items := []cart.CartItem{{ID: uuid.New(), UserID: userID, ProductID: uuid.New(), Quantity: 1}}
	_, err := svc.CreateFromCart(context.Background(), userID, items, 9900, PaymentInfo{})
	require.NoError(t, err)
	require.Len(t, store.items, 1)
	assert.Equal(t, int64(0), store.items[0].Price)
}
