package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/DRSN-tech/catalog-admin/internal/domain"
	"github.com/DRSN-tech/catalog-admin/pkg/e"
	"github.com/DRSN-tech/catalog-admin/pkg/logger"
)

func discardLogger() logger.Logger {
	return logger.NewFromSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// memCatalog — in-memory каталог. fakeTx снимает с него снимок и восстанавливает при ошибке.
type memCatalog struct {
	mu            sync.Mutex
	categories    map[int64]string
	manufacturers map[int64]string
	products      map[int64]domain.Product
	photos        map[int64][]string
	nextID        int64
	calls         int

	failPhotoInsert error
}

type catalogState struct {
	products map[int64]domain.Product
	photos   map[int64][]string
	nextID   int64
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		categories:    map[int64]string{1: "Tools"},
		manufacturers: map[int64]string{1: "Acme"},
		products:      map[int64]domain.Product{},
		photos:        map[int64][]string{},
		nextID:        1,
	}
}

func (m *memCatalog) snapshot() catalogState {
	m.mu.Lock()
	defer m.mu.Unlock()

	photos := make(map[int64][]string, len(m.photos))
	for k, v := range m.photos {
		photos[k] = slices.Clone(v)
	}

	return catalogState{products: maps.Clone(m.products), photos: photos, nextID: m.nextID}
}

func (m *memCatalog) restore(s catalogState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products, m.photos, m.nextID = s.products, s.photos, s.nextID
}

func (m *memCatalog) touch() {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
}

// seed добавляет товар напрямую, минуя use case.
func (m *memCatalog) seed(id int64, name string, photos ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[id] = domain.Product{ID: id, Name: name, CategoryID: 1, ManufacturerID: 1}
	if len(photos) > 0 {
		m.photos[id] = photos
	}
	if id >= m.nextID {
		m.nextID = id + 1
	}
}

type fakeTx struct {
	store *memCatalog
	begun int
}

func (f *fakeTx) WithinTransaction(ctx context.Context, work func(ctx context.Context) error) error {
	f.begun++
	snap := f.store.snapshot()
	if err := work(ctx); err != nil {
		f.store.restore(snap)
		return err
	}

	return nil
}

type fakeProductRepo struct{ store *memCatalog }

func (r *fakeProductRepo) Create(_ context.Context, p *domain.Product) (int64, error) {
	m := r.store
	m.touch()
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.categories[p.CategoryID]; !ok {
		return 0, fmt.Errorf("category %d: %w", p.CategoryID, e.ErrReferentialIntegrity)
	}
	if _, ok := m.manufacturers[p.ManufacturerID]; !ok {
		return 0, fmt.Errorf("manufacturer %d: %w", p.ManufacturerID, e.ErrReferentialIntegrity)
	}

	id := p.ID
	if id == 0 {
		id = m.nextID
		m.nextID++
	}
	if _, exists := m.products[id]; exists {
		return 0, fmt.Errorf("product %d: %w", id, e.ErrConflict)
	}

	stored := *p
	stored.ID = id
	m.products[id] = stored
	return id, nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *domain.Product) (int64, error) {
	m := r.store
	m.touch()
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[p.ID]; !ok {
		return 0, nil
	}
	if _, ok := m.categories[p.CategoryID]; !ok {
		return 0, fmt.Errorf("category %d: %w", p.CategoryID, e.ErrReferentialIntegrity)
	}

	m.products[p.ID] = *p
	return 1, nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id int64) (int64, error) {
	m := r.store
	m.touch()
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return 0, nil
	}
	if len(m.photos[id]) > 0 {
		return 0, fmt.Errorf("photos reference product %d: %w", id, e.ErrReferentialIntegrity)
	}

	delete(m.products, id)
	return 1, nil
}

func (r *fakeProductRepo) GetDetails(_ context.Context, id int64) (*domain.ProductDetails, error) {
	m := r.store
	m.touch()
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, e.ErrNotFound)
	}

	return m.details(p), nil
}

func (m *memCatalog) details(p domain.Product) *domain.ProductDetails {
	category := m.categories[p.CategoryID]
	manufacturer := m.manufacturers[p.ManufacturerID]
	photos := slices.Clone(m.photos[p.ID])
	if photos == nil {
		photos = []string{}
	}

	return &domain.ProductDetails{
		Product:          p,
		CategoryName:     &category,
		ManufacturerName: &manufacturer,
		Photos:           photos,
	}
}

func (r *fakeProductRepo) List(_ context.Context, filter ProductFilter) ([]domain.ProductDetails, error) {
	m := r.store
	m.touch()
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := slices.Sorted(maps.Keys(m.products))
	slices.Reverse(ids)

	out := make([]domain.ProductDetails, 0, len(ids))
	for _, id := range ids {
		p := m.products[id]
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.ManufacturerID != nil && p.ManufacturerID != *filter.ManufacturerID {
			continue
		}
		out = append(out, *m.details(p))
	}

	return out, nil
}

func (r *fakeProductRepo) IDs(context.Context) ([]int64, error) {
	m := r.store
	m.touch()
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := slices.Collect(maps.Keys(m.products))
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type fakePhotoRepo struct{ store *memCatalog }

func (r *fakePhotoRepo) Insert(_ context.Context, photos []domain.Photo) error {
	m := r.store
	m.touch()
	if m.failPhotoInsert != nil {
		return m.failPhotoInsert
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ph := range photos {
		if _, ok := m.products[ph.ProductID]; !ok {
			return fmt.Errorf("product %d: %w", ph.ProductID, e.ErrReferentialIntegrity)
		}
		m.photos[ph.ProductID] = append(m.photos[ph.ProductID], ph.PhotoPath)
	}

	return nil
}

func (r *fakePhotoRepo) DeleteByProduct(_ context.Context, productID int64) ([]string, error) {
	m := r.store
	m.touch()
	m.mu.Lock()
	defer m.mu.Unlock()

	paths := m.photos[productID]
	delete(m.photos, productID)
	return paths, nil
}

func (r *fakePhotoRepo) Unreferenced(_ context.Context, paths []string) ([]string, error) {
	m := r.store
	m.touch()
	m.mu.Lock()
	defer m.mu.Unlock()

	used := map[string]bool{}
	for _, list := range m.photos {
		for _, p := range list {
			used[p] = true
		}
	}

	var out []string
	for _, p := range paths {
		if !used[p] {
			out = append(out, p)
			used[p] = true
		}
	}

	return out, nil
}

type fakePhotoStorage struct {
	mu      sync.Mutex
	cleaned []string
}

func (f *fakePhotoStorage) SavePhotos(context.Context, []PhotoUpload) ([]string, error) {
	return nil, errors.New("not used")
}

func (f *fakePhotoStorage) OpenPhoto(context.Context, string) (*ImageObject, error) {
	return nil, errors.New("not used")
}

func (f *fakePhotoStorage) CleanupPhotos(paths []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleaned = append(f.cleaned, paths...)
}

type fakeProducer struct {
	events []*ProductEvent
	err    error
}

func (f *fakeProducer) PublishProductEvent(_ context.Context, event *ProductEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}
