package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devanagari-foods/storefront/internal/domain/product"
	"github.com/devanagari-foods/storefront/internal/domain/user"
	"github.com/devanagari-foods/storefront/internal/rowstore"
)

// fakeStore is an in-memory cart_items table honouring the store's
// error taxonomy, with a switch to inject a unique violation on insert
// the way a racing second writer would.
type fakeStore struct {
	items    map[uuid.UUID]*CartItem
	products map[uuid.UUID]*product.Product

	injectUniqueOnInsert bool
	raceWinner           *CartItem
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:    make(map[uuid.UUID]*CartItem),
		products: make(map[uuid.UUID]*product.Product),
	}
}

func (f *fakeStore) match(item *CartItem, filters rowstore.Filter) bool {
	for col, val := range filters {
		switch col {
		case "id":
			if item.ID != val.(uuid.UUID) {
				return false
			}
		case "user_id":
			if item.UserID != val.(uuid.UUID) {
				return false
			}
		case "product_id":
			if item.ProductID != val.(uuid.UUID) {
				return false
			}
		}
	}
	return true
}

func (f *fakeStore) SelectAll(ctx context.Context, dest any, filters rowstore.Filter, opts ...rowstore.Option) error {
	out := dest.(*[]CartItem)
	*out = nil
	for _, item := range f.items {
		if f.match(item, filters) {
			cp := *item
			cp.Product = f.products[item.ProductID]
			*out = append(*out, cp)
		}
	}
	return nil
}

func (f *fakeStore) SelectOne(ctx context.Context, dest any, filters rowstore.Filter, opts ...rowstore.Option) error {
	out := dest.(*CartItem)
	for _, item := range f.items {
		if f.match(item, filters) {
			*out = *item
			return nil
		}
	}
	return rowstore.ErrNotFound
}

func (f *fakeStore) Insert(ctx context.Context, value any) error {
	item := value.(*CartItem)
	if f.injectUniqueOnInsert {
		f.injectUniqueOnInsert = false
		if f.raceWinner != nil {
			f.items[f.raceWinner.ID] = f.raceWinner
		}
		return rowstore.ErrUniqueViolation
	}
	for _, existing := range f.items {
		if existing.UserID == item.UserID && existing.ProductID == item.ProductID {
			return rowstore.ErrUniqueViolation
		}
	}
	cp := *item
	f.items[item.ID] = &cp
	return nil
}

func (f *fakeStore) Update(ctx context.Context, model any, filters rowstore.Filter, changes map[string]any) (int64, error) {
	var n int64
	for _, item := range f.items {
		if f.match(item, filters) {
			if q, ok := changes["quantity"]; ok {
				item.Quantity = q.(int)
			}
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) Delete(ctx context.Context, model any, filters rowstore.Filter) (int64, error) {
	var n int64
	for id, item := range f.items {
		if f.match(item, filters) {
			delete(f.items, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) Upsert(ctx context.Context, value any, conflictColumns, assignColumns []string) error {
	return nil
}

func (f *fakeStore) Transaction(ctx context.Context, fn func(tx rowstore.Store) error) error {
	return fn(f)
}

type fakeProducts struct {
	store *fakeStore
	calls int
}

func (f *fakeProducts) FindOrCreate(ctx context.Context, desc product.Descriptor) (*product.Product, error) {
	f.calls++
	for _, p := range f.store.products {
		if p.Name == desc.Name && p.Weight == desc.Weight {
			return p, nil
		}
	}
	p := &product.Product{
		ID:     uuid.New(),
		Name:   desc.Name,
		Price:  desc.Price,
		Weight: desc.Weight,
	}
	f.store.products[p.ID] = p
	return p, nil
}

type fakeMirror struct {
	mirrored []user.Profile
	err      error
}

func (f *fakeMirror) EnsureMirrored(ctx context.Context, p user.Profile) error {
	if f.err != nil {
		return f.err
	}
	f.mirrored = append(f.mirrored, p)
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func healthMix() product.Descriptor {
	return product.Descriptor{Name: "Devanagari Health Mix", Weight: 450, Price: 19900}
}

func newTestService() (*Service, *fakeStore, *fakeMirror) {
	store := newFakeStore()
	mirror := &fakeMirror{}
	svc := NewService(store, &fakeProducts{store: store}, mirror, testLogger())
	return svc, store, mirror
}

func TestAddItemRequiresIdentity(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.AddItem(context.Background(), user.Profile{}, healthMix(), 1)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestAddItemMirrorsUserInline(t *testing.T) {
	svc, _, mirror := newTestService()
	ident := user.Profile{ID: uuid.New(), Email: "asha@example.com"}

	_, err := svc.AddItem(context.Background(), ident, healthMix(), 1)
	require.NoError(t, err)
	require.Len(t, mirror.mirrored, 1)
	assert.Equal(t, ident.ID, mirror.mirrored[0].ID)
}

func TestAddItemCreatesSingleRow(t *testing.T) {
	svc, store, _ := newTestService()
	ident := user.Profile{ID: uuid.New()}

	view, err := svc.AddItem(context.Background(), ident, healthMix(), 2)
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.Equal(t, 2, view.TotalItems)
	assert.Equal(t, int64(39800), view.TotalPrice)
	assert.Len(t, store.items, 1)
}

func TestAddItemTwiceIncrementsQuantity(t *testing.T) {
	svc, store, _ := newTestService()
	ident := user.Profile{ID: uuid.New()}

	_, err := svc.AddItem(context.Background(), ident, healthMix(), 1)
	require.NoError(t, err)
	view, err := svc.AddItem(context.Background(), ident, healthMix(), 2)
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.Len(t, store.items, 1)
}

func TestAddItemZeroQuantityMeansOne(t *testing.T) {
	svc, _, _ := newTestService()
	ident := user.Profile{ID: uuid.New()}

	view, err := svc.AddItem(context.Background(), ident, healthMix(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, view.TotalItems)
}

func TestAddItemRaceConvergesOnOneRow(t *testing.T) {
	svc, store, _ := newTestService()
	ident := user.Profile{ID: uuid.New()}

	// resolve the product first so the racing row can reference it
	products := &fakeProducts{store: store}
	prod, err := products.FindOrCreate(context.Background(), healthMix())
	require.NoError(t, err)

	// a second writer lands its insert between our existence check and
	// our insert; the store answers with a unique violation
	store.injectUniqueOnInsert = true
	store.raceWinner = &CartItem{
		ID:        uuid.New(),
		UserID:    ident.ID,
		ProductID: prod.ID,
		Quantity:  1,
		CreatedAt: time.Now(),
	}

	view, err := svc.AddItem(context.Background(), ident, healthMix(), 1)
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.Len(t, store.items, 1)
}

func TestUpdateQuantityBelowOneRemoves(t *testing.T) {
	svc, store, _ := newTestService()
	ident := user.Profile{ID: uuid.New()}

	view, err := svc.AddItem(context.Background(), ident, healthMix(), 2)
	require.NoError(t, err)
	itemID := view.Items[0].ID

	view, err = svc.UpdateQuantity(context.Background(), ident.ID, itemID, 0)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Empty(t, store.items)
}

func TestUpdateQuantityReverifiesOwnership(t *testing.T) {
	svc, _, _ := newTestService()
	owner := user.Profile{ID: uuid.New()}

	view, err := svc.AddItem(context.Background(), owner, healthMix(), 1)
	require.NoError(t, err)
	itemID := view.Items[0].ID

	_, err = svc.UpdateQuantity(context.Background(), uuid.New(), itemID, 5)
	assert.ErrorIs(t, err, ErrItemNotFound)

	// the owner's row is untouched
	got, err := svc.Get(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Items[0].Quantity)
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	svc, _, _ := newTestService()
	ident := user.Profile{ID: uuid.New()}

	view, err := svc.AddItem(context.Background(), ident, healthMix(), 1)
	require.NoError(t, err)
	itemID := view.Items[0].ID

	view, err = svc.RemoveItem(context.Background(), ident.ID, itemID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	view, err = svc.RemoveItem(context.Background(), ident.ID, itemID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestClearEmptiesCart(t *testing.T) {
	svc, store, _ := newTestService()
	ident := user.Profile{ID: uuid.New()}

	_, err := svc.AddItem(context.Background(), ident, healthMix(), 1)
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), ident, product.Descriptor{Name: "Devanagari Health Mix", Weight: 900, Price: 49900}, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(context.Background(), ident.ID))
	assert.Empty(t, store.items)
}

func TestTotalsSkipUnresolvedProducts(t *testing.T) {
	svc, store, _ := newTestService()
	ident := user.Profile{ID: uuid.New()}

	_, err := svc.AddItem(context.Background(), ident, healthMix(), 2)
	require.NoError(t, err)

	// a row whose product no longer resolves still counts items but
	// contributes nothing to the price
	orphan := &CartItem{ID: uuid.New(), UserID: ident.ID, ProductID: uuid.New(), Quantity: 3}
	store.items[orphan.ID] = orphan

	view, err := svc.Get(context.Background(), ident.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, view.TotalItems)
	assert.Equal(t, int64(39800), view.TotalPrice)
}
