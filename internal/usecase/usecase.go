package usecase

import (
	"context"

	"github.com/DRSN-tech/catalog-admin/internal/domain"
)

type ProductUC interface {
	CreateProduct(ctx context.Context, req *CreateProductReq) (*domain.ProductDetails, error)
	UpdateProduct(ctx context.Context, req *UpdateProductReq) (*domain.ProductDetails, error)
	DeleteProduct(ctx context.Context, id int64) error
	GetProduct(ctx context.Context, id int64) (*domain.ProductDetails, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]domain.ProductDetails, error)
	NextProductID(ctx context.Context) (int64, error)
}

type CatalogUC interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, req *CategoryReq) (*domain.Category, error)
	UpdateCategory(ctx context.Context, req *CategoryReq) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	ListManufacturers(ctx context.Context) ([]domain.Manufacturer, error)
	CreateManufacturer(ctx context.Context, req *ManufacturerReq) (*domain.Manufacturer, error)
	UpdateManufacturer(ctx context.Context, req *ManufacturerReq) (*domain.Manufacturer, error)
	DeleteManufacturer(ctx context.Context, id int64) error
}
