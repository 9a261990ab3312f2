package wishlist

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/catalog-backend/internal/catalog"
	"github.com/angelmondragon/catalog-backend/internal/store"
	"github.com/angelmondragon/catalog-backend/internal/store/storetest"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
)

type fixture struct {
	svc     Service
	catalog catalog.Service
	store   store.Store
	phones  *catalog.CategoryDTO
	android *catalog.SubCategoryDTO
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	s := storetest.New(t)

	cat, err := catalog.NewService(catalog.ServiceParams{Store: s})
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{Store: s, Products: cat})
	require.NoError(t, err)

	phones, err := cat.CreateCategory(ctx, catalog.CreateCategoryInput{Name: "Phones"})
	require.NoError(t, err)
	android, err := cat.CreateSubCategory(ctx, catalog.CreateSubCategoryInput{Name: "Android", CategoryID: phones.ID.String()})
	require.NoError(t, err)

	return fixture{svc: svc, catalog: cat, store: s, phones: phones, android: android}
}

func (f fixture) product(t *testing.T, name string) *catalog.ProductDTO {
	t.Helper()
	p, err := f.catalog.CreateProduct(context.Background(), catalog.CreateProductInput{
		Name:          name,
		Description:   name + " description",
		CategoryID:    f.phones.ID.String(),
		SubCategoryID: f.android.ID.String(),
		Variants:      []catalog.VariantInput{{Ram: "8GB", Price: decimal.NewFromInt(500), Qty: 1}},
	})
	require.NoError(t, err)
	return p
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) *pkgerrors.Error {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	require.Equal(t, code, typed.Code(), "message: %s", typed.Message())
	return typed
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = NewService(ServiceParams{Store: storetest.New(t)})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestAddProductCreatesThenAppends(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A")
	b := f.product(t, "B")

	w, err := f.svc.AddProduct(ctx, "user-1", a.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "user-1", w.UserID)
	assert.Equal(t, []uuid.UUID{a.ID}, w.Products)

	w, err = f.svc.AddProduct(ctx, "user-1", b.ID.String())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a.ID, b.ID}, w.Products)

	n, err := f.store.Wishlists().Count(ctx, store.Filter{"user_id": "user-1"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestAddProductRejectsDuplicateWithoutMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A")

	_, err := f.svc.AddProduct(ctx, "user-1", a.ID.String())
	require.NoError(t, err)

	_, err = f.svc.AddProduct(ctx, "user-1", a.ID.String())
	typed := requireCode(t, err, pkgerrors.CodeAlreadyExists)
	assert.Equal(t, "Product already in wishlist", typed.Message())

	stored, err := f.store.Wishlists().FindOne(ctx, store.Filter{"user_id": "user-1"})
	require.NoError(t, err)
	assert.Len(t, stored.Products, 1)
}

func TestAddProductRequiresExistingProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, id := range []string{uuid.NewString(), "not-a-uuid"} {
		_, err := f.svc.AddProduct(ctx, "user-1", id)
		typed := requireCode(t, err, pkgerrors.CodeNotFound)
		assert.Equal(t, pkgerrors.EntityProduct, typed.Entity())
	}

	_, err := f.store.Wishlists().FindOne(ctx, store.Filter{"user_id": "user-1"})
	require.ErrorIs(t, err, store.ErrNotFound, "failed adds must not create a wishlist")
}

func TestGetWishlist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty, err := f.svc.GetWishlist(ctx, "nobody")
	require.NoError(t, err)
	require.NotNil(t, empty.Products)
	assert.Empty(t, empty.Products)

	a := f.product(t, "A")
	b := f.product(t, "B")
	_, err = f.svc.AddProduct(ctx, "user-1", b.ID.String())
	require.NoError(t, err)
	_, err = f.svc.AddProduct(ctx, "user-1", a.ID.String())
	require.NoError(t, err)

	got, err := f.svc.GetWishlist(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got.Products, 2)
	assert.Equal(t, b.ID, got.Products[0].ID)
	assert.Equal(t, "Phones", got.Products[0].Category.Name)
	assert.Equal(t, "Android", got.Products[0].SubCategory.Name)

	// deleted products drop out of the resolved view
	require.NoError(t, f.catalog.DeleteProduct(ctx, b.ID))
	got, err = f.svc.GetWishlist(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got.Products, 1)
	assert.Equal(t, a.ID, got.Products[0].ID)
}

func TestRemoveProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A")
	b := f.product(t, "B")

	_, err := f.svc.RemoveProduct(ctx, "user-1", a.ID.String())
	typed := requireCode(t, err, pkgerrors.CodeNotFound)
	assert.Equal(t, "Wishlist not found", typed.Message())
	assert.Equal(t, pkgerrors.EntityWishlist, typed.Entity())

	_, err = f.svc.AddProduct(ctx, "user-1", a.ID.String())
	require.NoError(t, err)
	_, err = f.svc.AddProduct(ctx, "user-1", b.ID.String())
	require.NoError(t, err)

	w, err := f.svc.RemoveProduct(ctx, "user-1", uuid.NewString())
	require.NoError(t, err, "removing an unlisted product is a no-op")
	assert.Len(t, w.Products, 2)

	w, err = f.svc.RemoveProduct(ctx, "user-1", "garbage")
	require.NoError(t, err)
	assert.Len(t, w.Products, 2)

	w, err = f.svc.RemoveProduct(ctx, "user-1", a.ID.String())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{b.ID}, w.Products)
}

func TestClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A")

	_, err := f.svc.Clear(ctx, "user-1")
	requireCode(t, err, pkgerrors.CodeNotFound)

	_, err = f.svc.AddProduct(ctx, "user-1", a.ID.String())
	require.NoError(t, err)

	w, err := f.svc.Clear(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, w.Products)

	// the record survives and can be refilled
	w, err = f.svc.AddProduct(ctx, "user-1", a.ID.String())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a.ID}, w.Products)
}

func TestOperationsRequireUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddProduct(ctx, " ", uuid.NewString())
	requireCode(t, err, pkgerrors.CodeUnauthorized)
	_, err = f.svc.GetWishlist(ctx, "")
	requireCode(t, err, pkgerrors.CodeUnauthorized)
	_, err = f.svc.RemoveProduct(ctx, "", uuid.NewString())
	requireCode(t, err, pkgerrors.CodeUnauthorized)
	_, err = f.svc.Clear(ctx, "")
	requireCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestConcurrentDuplicateAdds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A")

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.AddProduct(ctx, "racer", a.ID.String())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		requireCode(t, err, pkgerrors.CodeAlreadyExists)
	}
	assert.GreaterOrEqual(t, succeeded, 1)

	stored, err := f.store.Wishlists().FindOne(ctx, store.Filter{"user_id": "racer"})
	require.NoError(t, err)
	count := 0
	for _, id := range stored.Products {
		if id == a.ID {
			count++
		}
	}
	// last write wins; a raced duplicate is tolerated
	assert.GreaterOrEqual(t, count, 1)
	assert.LessOrEqual(t, count, succeeded)

	// a single remove clears every occurrence
	w, err := f.svc.RemoveProduct(ctx, "racer", a.ID.String())
	require.NoError(t, err)
	assert.Empty(t, w.Products)

	n, err := f.store.Wishlists().Count(ctx, store.Filter{"user_id": "racer"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestWishlistModelContains(t *testing.T) {
	id := uuid.New()
	w := models.Wishlist{Products: []uuid.UUID{uuid.New(), id}}
	assert.True(t, w.Contains(id))
	assert.False(t, w.Contains(uuid.New()))
}
