package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/DRSN-tech/catalog-admin/internal/domain"
	"github.com/DRSN-tech/catalog-admin/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCategoryRepo struct {
	items  map[int64]domain.Category
	nextID int64
	used   map[int64]bool
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{items: map[int64]domain.Category{}, nextID: 1, used: map[int64]bool{}}
}

func (r *fakeCategoryRepo) List(context.Context) ([]domain.Category, error) {
	out := make([]domain.Category, 0, len(r.items))
	for id := int64(1); id < r.nextID; id++ {
		if c, ok := r.items[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCategoryRepo) Create(_ context.Context, c *domain.Category) (*domain.Category, error) {
	for _, existing := range r.items {
		if existing.Name == c.Name {
			return nil, fmt.Errorf("category %q: %w", c.Name, e.ErrConflict)
		}
	}
	c.ID = r.nextID
	r.nextID++
	r.items[c.ID] = *c
	return c, nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, c *domain.Category) (*domain.Category, error) {
	if _, ok := r.items[c.ID]; !ok {
		return nil, fmt.Errorf("category %d: %w", c.ID, e.ErrNotFound)
	}
	r.items[c.ID] = *c
	return c, nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("category %d: %w", id, e.ErrNotFound)
	}
	if r.used[id] {
		return fmt.Errorf("category %d is in use: %w", id, e.ErrReferentialIntegrity)
	}
	delete(r.items, id)
	return nil
}

type fakeManufacturerRepo struct {
	items  map[int64]domain.Manufacturer
	nextID int64
}

func (r *fakeManufacturerRepo) List(context.Context) ([]domain.Manufacturer, error) {
	out := make([]domain.Manufacturer, 0, len(r.items))
	for id := int64(1); id < r.nextID; id++ {
		if m, ok := r.items[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeManufacturerRepo) Create(_ context.Context, m *domain.Manufacturer) (*domain.Manufacturer, error) {
	for _, existing := range r.items {
		if existing.Name == m.Name {
			return nil, fmt.Errorf("manufacturer %q: %w", m.Name, e.ErrConflict)
		}
	}
	m.ID = r.nextID
	r.nextID++
	r.items[m.ID] = *m
	return m, nil
}

func (r *fakeManufacturerRepo) Update(_ context.Context, m *domain.Manufacturer) (*domain.Manufacturer, error) {
	if _, ok := r.items[m.ID]; !ok {
		return nil, fmt.Errorf("manufacturer %d: %w", m.ID, e.ErrNotFound)
	}
	r.items[m.ID] = *m
	return m, nil
}

func (r *fakeManufacturerRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("manufacturer %d: %w", id, e.ErrNotFound)
	}
	delete(r.items, id)
	return nil
}

func newCatalogFixture() (*CatalogUseCase, *fakeCategoryRepo, *fakeManufacturerRepo) {
	categories := newFakeCategoryRepo()
	manufacturers := &fakeManufacturerRepo{items: map[int64]domain.Manufacturer{}, nextID: 1}
	return NewCatalogUC(categories, manufacturers, discardLogger()), categories, manufacturers
}

func TestCategoryLifecycle(t *testing.T) {
	uc, repo, _ := newCatalogFixture()
	ctx := context.Background()
	desc := "hand tools"

	created, err := uc.CreateCategory(ctx, &CategoryReq{Name: "Tools", Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	updated, err := uc.UpdateCategory(ctx, &CategoryReq{ID: created.ID, Name: "Power tools"})
	require.NoError(t, err)
	assert.Equal(t, "Power tools", updated.Name)
	assert.Nil(t, updated.Description)

	list, err := uc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	repo.used[created.ID] = true
	err = uc.DeleteCategory(ctx, created.ID)
	assert.ErrorIs(t, err, e.ErrReferentialIntegrity)
	assert.ErrorIs(t, err, e.ErrPersistence)

	repo.used[created.ID] = false
	require.NoError(t, uc.DeleteCategory(ctx, created.ID))
	assert.ErrorIs(t, uc.DeleteCategory(ctx, created.ID), e.ErrNotFound)
}

func TestCreateCategory_Validation(t *testing.T) {
	uc, repo, _ := newCatalogFixture()

	_, err := uc.CreateCategory(context.Background(), &CategoryReq{Name: ""})
	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrValidation)
	assert.Empty(t, repo.items)
}

func TestManufacturer_DuplicateNameConflicts(t *testing.T) {
	uc, _, repo := newCatalogFixture()
	ctx := context.Background()

	_, err := uc.CreateManufacturer(ctx, &ManufacturerReq{Name: "Acme"})
	require.NoError(t, err)

	_, err = uc.CreateManufacturer(ctx, &ManufacturerReq{Name: "Acme"})
	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrConflict)
	assert.Len(t, repo.items, 1)
}

func TestUpdateManufacturer_NotFound(t *testing.T) {
	uc, _, _ := newCatalogFixture()

	_, err := uc.UpdateManufacturer(context.Background(), &ManufacturerReq{ID: 9, Name: "Ghost"})
	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrNotFound)
}
