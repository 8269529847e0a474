package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/DRSN-tech/catalog-admin/pkg/e"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type productFixture struct {
	store    *memCatalog
	tx       *fakeTx
	storage  *fakePhotoStorage
	producer *fakeProducer
	uc       *ProductUseCase
}

func newProductFixture() *productFixture {
	store := newMemCatalog()
	f := &productFixture{
		store:    store,
		tx:       &fakeTx{store: store},
		storage:  &fakePhotoStorage{},
		producer: &fakeProducer{},
	}
	f.uc = NewProductUC(
		&fakeProductRepo{store: store},
		&fakePhotoRepo{store: store},
		f.tx,
		f.storage,
		f.producer,
		discardLogger(),
	)
	return f
}

func widgetFields() ProductFields {
	price := decimal.RequireFromString("9.99")
	return ProductFields{
		Name:           "Widget",
		Price:          &price,
		CategoryID:     1,
		ManufacturerID: 1,
	}
}

func TestCreateProduct_ReturnsPhotosInInputOrder(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	paths := []string{"/uploads/a.png", "/uploads/b.png"}

	created, err := f.uc.CreateProduct(ctx, &CreateProductReq{ProductFields: widgetFields(), PhotoPaths: paths})
	require.NoError(t, err)

	assert.Positive(t, created.ID)
	assert.Equal(t, "Widget", created.Name)
	assert.True(t, created.Price.Equal(decimal.RequireFromString("9.99")))
	require.NotNil(t, created.CategoryName)
	assert.Equal(t, "Tools", *created.CategoryName)
	require.NotNil(t, created.ManufacturerName)
	assert.Equal(t, "Acme", *created.ManufacturerName)
	assert.Equal(t, paths, created.Photos)

	fetched, err := f.uc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Photos, fetched.Photos)

	require.Len(t, f.producer.events, 1)
	assert.Equal(t, ProductCreated, f.producer.events[0].Type)
	assert.Equal(t, created.ID, f.producer.events[0].ProductID)
}

func TestCreateProduct_WithoutPhotos(t *testing.T) {
	f := newProductFixture()

	created, err := f.uc.CreateProduct(context.Background(), &CreateProductReq{ProductFields: widgetFields()})
	require.NoError(t, err)
	assert.Empty(t, created.Photos)
}

func TestCreateProduct_ValidationBeforeStoreAccess(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateProductReq)
	}{
		{name: "missing name", mutate: func(r *CreateProductReq) { r.Name = "" }},
		{name: "missing price", mutate: func(r *CreateProductReq) { r.Price = nil }},
		{name: "missing category", mutate: func(r *CreateProductReq) { r.CategoryID = 0 }},
		{name: "missing manufacturer", mutate: func(r *CreateProductReq) { r.ManufacturerID = 0 }},
		{name: "negative price", mutate: func(r *CreateProductReq) {
			p := decimal.RequireFromString("-1")
			r.Price = &p
		}},
		{name: "too precise price", mutate: func(r *CreateProductReq) {
			p := decimal.RequireFromString("1.999")
			r.Price = &p
		}},
		{name: "price above column range", mutate: func(r *CreateProductReq) {
			p := decimal.RequireFromString("1e12")
			r.Price = &p
		}},
		{name: "empty photo path", mutate: func(r *CreateProductReq) { r.PhotoPaths = []string{""} }},
		{name: "negative explicit id", mutate: func(r *CreateProductReq) { r.ID = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProductFixture()
			req := &CreateProductReq{ProductFields: widgetFields()}
			tt.mutate(req)

			_, err := f.uc.CreateProduct(context.Background(), req)
			require.Error(t, err)
			assert.ErrorIs(t, err, e.ErrValidation)
			assert.Zero(t, f.store.calls)
			assert.Zero(t, f.tx.begun)
		})
	}
}

func TestCreateProduct_UnknownReferenceLeavesNothingBehind(t *testing.T) {
	for _, mutate := range []func(*ProductFields){
		func(p *ProductFields) { p.CategoryID = 42 },
		func(p *ProductFields) { p.ManufacturerID = 42 },
	} {
		f := newProductFixture()
		fields := widgetFields()
		mutate(&fields)
		before := f.store.snapshot()

		_, err := f.uc.CreateProduct(context.Background(), &CreateProductReq{
			ProductFields: fields,
			PhotoPaths:    []string{"/uploads/a.png"},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, e.ErrReferentialIntegrity)
		assert.ErrorIs(t, err, e.ErrPersistence)
		assert.Equal(t, before, f.store.snapshot())
		assert.Empty(t, f.producer.events)
	}
}

func TestCreateProduct_PhotoFailureRollsBackProduct(t *testing.T) {
	f := newProductFixture()
	f.store.failPhotoInsert = errors.New("disk full")

	_, err := f.uc.CreateProduct(context.Background(), &CreateProductReq{
		ProductFields: widgetFields(),
		PhotoPaths:    []string{"/uploads/a.png"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrPersistence)
	assert.Empty(t, f.store.products)
	assert.Empty(t, f.store.photos)
}

func TestCreateProduct_ExplicitIDConflict(t *testing.T) {
	f := newProductFixture()
	f.store.seed(3, "Existing")

	_, err := f.uc.CreateProduct(context.Background(), &CreateProductReq{ProductFields: widgetFields(), ID: 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrConflict)
	assert.Equal(t, "Existing", f.store.products[3].Name)
}

func TestCreateProduct_UsesReconciledID(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	for _, id := range []int64{1, 2, 4, 5} {
		f.store.seed(id, "p")
	}

	next, err := f.uc.NextProductID(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), next)

	created, err := f.uc.CreateProduct(ctx, &CreateProductReq{ProductFields: widgetFields(), ID: next})
	require.NoError(t, err)
	assert.Equal(t, int64(3), created.ID)
}

func TestUpdateProduct_NotFoundChangesNothing(t *testing.T) {
	f := newProductFixture()
	f.store.seed(1, "Keep", "/uploads/keep.png")
	before := f.store.snapshot()
	callsBefore := f.store.calls

	_, err := f.uc.UpdateProduct(context.Background(), &UpdateProductReq{
		ProductFields: widgetFields(),
		ID:            99,
		ReplacePhotos: true,
		PhotoPaths:    []string{"/uploads/new.png"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrNotFound)
	assert.Equal(t, before, f.store.snapshot())
	// только UPDATE товара: шаг с фото не выполнялся
	assert.Equal(t, callsBefore+1, f.store.calls)
	assert.Empty(t, f.storage.cleaned)
}

func TestUpdateProduct_ReplacesPhotoSet(t *testing.T) {
	f := newProductFixture()
	f.store.seed(1, "Old", "/uploads/old1.png", "/uploads/keep.png", "/uploads/old2.png")

	updated, err := f.uc.UpdateProduct(context.Background(), &UpdateProductReq{
		ProductFields: widgetFields(),
		ID:            1,
		ReplacePhotos: true,
		PhotoPaths:    []string{"/uploads/new.png", "/uploads/keep.png"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Widget", updated.Name)
	assert.Equal(t, []string{"/uploads/new.png", "/uploads/keep.png"}, updated.Photos)
	assert.ElementsMatch(t, []string{"/uploads/old1.png", "/uploads/old2.png"}, f.storage.cleaned)
	require.Len(t, f.producer.events, 1)
	assert.Equal(t, ProductUpdated, f.producer.events[0].Type)
}

func TestUpdateProduct_KeepsPhotosWhenNotReplacing(t *testing.T) {
	f := newProductFixture()
	f.store.seed(1, "Old", "/uploads/a.png")

	updated, err := f.uc.UpdateProduct(context.Background(), &UpdateProductReq{ProductFields: widgetFields(), ID: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/a.png"}, updated.Photos)
	assert.Empty(t, f.storage.cleaned)
}

func TestUpdateProduct_EmptyReplacementRemovesAllPhotos(t *testing.T) {
	f := newProductFixture()
	f.store.seed(1, "Old", "/uploads/a.png", "/uploads/b.png")

	updated, err := f.uc.UpdateProduct(context.Background(), &UpdateProductReq{
		ProductFields: widgetFields(),
		ID:            1,
		ReplacePhotos: true,
		PhotoPaths:    []string{},
	})
	require.NoError(t, err)
	assert.Empty(t, updated.Photos)
	assert.ElementsMatch(t, []string{"/uploads/a.png", "/uploads/b.png"}, f.storage.cleaned)
}

func TestUpdateProduct_BadReferenceRollsBack(t *testing.T) {
	f := newProductFixture()
	f.store.seed(1, "Old", "/uploads/a.png")
	before := f.store.snapshot()

	fields := widgetFields()
	fields.CategoryID = 77
	_, err := f.uc.UpdateProduct(context.Background(), &UpdateProductReq{ProductFields: fields, ID: 1, ReplacePhotos: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrReferentialIntegrity)
	assert.Equal(t, before, f.store.snapshot())
}

func TestDeleteProduct_RemovesPhotosAndProduct(t *testing.T) {
	f := newProductFixture()
	f.store.seed(5, "Gone", "/uploads/1.png", "/uploads/2.png", "/uploads/3.png")
	f.store.seed(6, "Stays", "/uploads/4.png")
	ctx := context.Background()

	require.NoError(t, f.uc.DeleteProduct(ctx, 5))

	assert.NotContains(t, f.store.products, int64(5))
	assert.NotContains(t, f.store.photos, int64(5))
	assert.Equal(t, []string{"/uploads/4.png"}, f.store.photos[6])
	assert.ElementsMatch(t, []string{"/uploads/1.png", "/uploads/2.png", "/uploads/3.png"}, f.storage.cleaned)

	err := f.uc.DeleteProduct(ctx, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrNotFound)

	require.Len(t, f.producer.events, 1)
	assert.Equal(t, ProductDeleted, f.producer.events[0].Type)
}

func TestDeleteProduct_NotFoundChangesNothing(t *testing.T) {
	f := newProductFixture()
	f.store.seed(1, "Keep", "/uploads/a.png")
	before := f.store.snapshot()

	err := f.uc.DeleteProduct(context.Background(), 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrNotFound)
	assert.Equal(t, before, f.store.snapshot())
	assert.Empty(t, f.storage.cleaned)
}

func TestNextProductID(t *testing.T) {
	tests := []struct {
		name string
		ids  []int64
		want int64
	}{
		{name: "empty catalog", want: 1},
		{name: "gap", ids: []int64{1, 2, 4, 5}, want: 3},
		{name: "dense", ids: []int64{1, 2, 3}, want: 4},
		{name: "ids start above one", ids: []int64{2, 3}, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProductFixture()
			for _, id := range tt.ids {
				f.store.seed(id, "p")
			}

			got, err := f.uc.NextProductID(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	f := newProductFixture()
	f.producer.err = errors.New("broker not available")

	created, err := f.uc.CreateProduct(context.Background(), &CreateProductReq{ProductFields: widgetFields()})
	require.NoError(t, err)
	assert.Contains(t, f.store.products, created.ID)
}

func TestListProducts_FilterAndOrder(t *testing.T) {
	f := newProductFixture()
	f.store.seed(1, "first")
	f.store.seed(2, "second")
	f.store.categories[2] = "Other"
	second := f.store.products[2]
	second.CategoryID = 2
	f.store.products[2] = second

	all, err := f.uc.ListProducts(context.Background(), ProductFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(2), all[0].ID)

	category := int64(1)
	filtered, err := f.uc.ListProducts(context.Background(), ProductFilter{CategoryID: &category})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "first", filtered[0].Name)
}

func TestUpdateProduct_RejectsPriceAboveRange(t *testing.T) {
	f := newProductFixture()
	f.store.seed(1, "Old")

	fields := widgetFields()
	huge := decimal.RequireFromString("10000000000")
	fields.Price = &huge

	_, err := f.uc.UpdateProduct(context.Background(), &UpdateProductReq{ProductFields: fields, ID: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrValidation)
	assert.Zero(t, f.tx.begun)
}

func TestDeleteProduct_KeepsFilesSharedWithOtherProducts(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()

	first, err := f.uc.CreateProduct(ctx, &CreateProductReq{
		ProductFields: widgetFields(),
		PhotoPaths:    []string{"/uploads/shared.png", "/uploads/own.png"},
	})
	require.NoError(t, err)
	second, err := f.uc.CreateProduct(ctx, &CreateProductReq{
		ProductFields: widgetFields(),
		PhotoPaths:    []string{"/uploads/shared.png"},
	})
	require.NoError(t, err)

	require.NoError(t, f.uc.DeleteProduct(ctx, first.ID))

	assert.Equal(t, []string{"/uploads/shared.png"}, f.store.photos[second.ID])
	assert.Equal(t, []string{"/uploads/own.png"}, f.storage.cleaned)

	require.NoError(t, f.uc.DeleteProduct(ctx, second.ID))
	assert.Equal(t, []string{"/uploads/own.png", "/uploads/shared.png"}, f.storage.cleaned)
}

func TestUpdateProduct_KeepsFilesSharedWithOtherProducts(t *testing.T) {
	f := newProductFixture()
	f.store.seed(1, "A", "/uploads/shared.png", "/uploads/a.png")
	f.store.seed(2, "B", "/uploads/shared.png")

	_, err := f.uc.UpdateProduct(context.Background(), &UpdateProductReq{
		ProductFields: widgetFields(),
		ID:            1,
		ReplacePhotos: true,
		PhotoPaths:    []string{},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/a.png"}, f.storage.cleaned)
}
