package usecase

import (
	"context"

	"github.com/DRSN-tech/catalog-admin/internal/domain"
)

type ProductRepository interface {
	// Create вставляет товар и возвращает его id. При product.ID > 0 используется явный id.
	Create(ctx context.Context, product *domain.Product) (int64, error)
	// Update перезаписывает все поля товара и возвращает число затронутых строк.
	Update(ctx context.Context, product *domain.Product) (int64, error)
	// Delete удаляет строку товара и возвращает число затронутых строк.
	Delete(ctx context.Context, id int64) (int64, error)
	GetDetails(ctx context.Context, id int64) (*domain.ProductDetails, error)
	List(ctx context.Context, filter ProductFilter) ([]domain.ProductDetails, error)
	// IDs возвращает все id товаров по возрастанию.
	IDs(ctx context.Context) ([]int64, error)
}

type PhotoRepository interface {
	Insert(ctx context.Context, photos []domain.Photo) error
	// DeleteByProduct удаляет все фото товара и возвращает их пути.
	DeleteByProduct(ctx context.Context, productID int64) ([]string, error)
	// Unreferenced возвращает пути из paths, на которые не ссылается ни одно фото. Без повторов.
	Unreferenced(ctx context.Context, paths []string) ([]string, error)
}

type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
	Update(ctx context.Context, category *domain.Category) (*domain.Category, error)
	Delete(ctx context.Context, id int64) error
}

type ManufacturerRepository interface {
	List(ctx context.Context) ([]domain.Manufacturer, error)
	Create(ctx context.Context, manufacturer *domain.Manufacturer) (*domain.Manufacturer, error)
	Update(ctx context.Context, manufacturer *domain.Manufacturer) (*domain.Manufacturer, error)
	Delete(ctx context.Context, id int64) error
}

type ImageRepository interface {
	Upload(ctx context.Context, image *domain.Image) (string, error)
	Open(ctx context.Context, key string) (*ImageObject, error)
	Delete(ctx context.Context, key string) error
}
