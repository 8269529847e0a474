package converter

import (
	"fmt"

	"github.com/DRSN-tech/catalog-admin/internal/domain"
	"github.com/shopspring/decimal"
)

// ProductConverter преобразует товары между domain и моделью PostgreSQL.
type ProductConverter interface {
	ToModel(entity *domain.Product) *ProductModel
	ToEntity(model *ProductModel) (*domain.ProductDetails, error)
	ToArrEntity(models []ProductModel) ([]domain.ProductDetails, error)
}

// PhotoConverter преобразует фото между domain и моделью PostgreSQL.
type PhotoConverter interface {
	ToArrModel(entities []domain.Photo) []PhotoModel
}

// CategoryConverter преобразует категории между domain и моделью PostgreSQL.
type CategoryConverter interface {
	ToModel(entity *domain.Category) *CategoryModel
	ToEntity(model *CategoryModel) *domain.Category
	ToArrEntity(models []CategoryModel) []domain.Category
}

// ManufacturerConverter преобразует производителей между domain и моделью PostgreSQL.
type ManufacturerConverter interface {
	ToModel(entity *domain.Manufacturer) *ManufacturerModel
	ToEntity(model *ManufacturerModel) *domain.Manufacturer
	ToArrEntity(models []ManufacturerModel) []domain.Manufacturer
}

type ProductConverterImpl struct{}

func (ProductConverterImpl) ToModel(entity *domain.Product) *ProductModel {
	if entity == nil {
		return nil
	}

	return &ProductModel{
		ID:             entity.ID,
		Name:           entity.Name,
		Description:    entity.Description,
		Price:          entity.Price.StringFixed(2),
		CategoryID:     entity.CategoryID,
		ManufacturerID: entity.ManufacturerID,
	}
}

func (ProductConverterImpl) ToEntity(model *ProductModel) (*domain.ProductDetails, error) {
	if model == nil {
		return nil, nil
	}

	price, err := decimal.NewFromString(model.Price)
	if err != nil {
		return nil, fmt.Errorf("product %d: price %q: %w", model.ID, model.Price, err)
	}

	photos := model.Photos
	if photos == nil {
		photos = []string{}
	}

	return &domain.ProductDetails{
		Product: domain.Product{
			ID:             model.ID,
			Name:           model.Name,
			Description:    model.Description,
			Price:          price,
			CategoryID:     model.CategoryID,
			ManufacturerID: model.ManufacturerID,
		},
		CategoryName:     model.CategoryName,
		ManufacturerName: model.ManufacturerName,
		Photos:           photos,
	}, nil
}

func (c ProductConverterImpl) ToArrEntity(models []ProductModel) ([]domain.ProductDetails, error) {
	out := make([]domain.ProductDetails, 0, len(models))
	for i := range models {
		entity, err := c.ToEntity(&models[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *entity)
	}

	return out, nil
}

type PhotoConverterImpl struct{}

func (PhotoConverterImpl) ToArrModel(entities []domain.Photo) []PhotoModel {
	out := make([]PhotoModel, 0, len(entities))
	for _, ph := range entities {
		out = append(out, PhotoModel{
			ProductID: ph.ProductID,
			Position:  int32(ph.Position),
			PhotoPath: ph.PhotoPath,
		})
	}

	return out
}

type CategoryConverterImpl struct{}

func (CategoryConverterImpl) ToModel(entity *domain.Category) *CategoryModel {
	if entity == nil {
		return nil
	}

	return &CategoryModel{
		ID:            entity.ID,
		Name:          entity.Name,
		Description:   entity.Description,
		ProductsCount: entity.ProductsCount,
	}
}

func (CategoryConverterImpl) ToEntity(model *CategoryModel) *domain.Category {
	if model == nil {
		return nil
	}

	return &domain.Category{
		ID:            model.ID,
		Name:          model.Name,
		Description:   model.Description,
		ProductsCount: model.ProductsCount,
	}
}

func (c CategoryConverterImpl) ToArrEntity(models []CategoryModel) []domain.Category {
	out := make([]domain.Category, 0, len(models))
	for i := range models {
		out = append(out, *c.ToEntity(&models[i]))
	}

	return out
}

type ManufacturerConverterImpl struct{}

func (ManufacturerConverterImpl) ToModel(entity *domain.Manufacturer) *ManufacturerModel {
	if entity == nil {
		return nil
	}

	return &ManufacturerModel{
		ID:            entity.ID,
		Name:          entity.Name,
		Description:   entity.Description,
		ProductsCount: entity.ProductsCount,
	}
}

func (ManufacturerConverterImpl) ToEntity(model *ManufacturerModel) *domain.Manufacturer {
	if model == nil {
		return nil
	}

	return &domain.Manufacturer{
		ID:            model.ID,
		Name:          model.Name,
		Description:   model.Description,
		ProductsCount: model.ProductsCount,
	}
}

func (c ManufacturerConverterImpl) ToArrEntity(models []ManufacturerModel) []domain.Manufacturer {
	out := make([]domain.Manufacturer, 0, len(models))
	for i := range models {
		out = append(out, *c.ToEntity(&models[i]))
	}

	return out
}
