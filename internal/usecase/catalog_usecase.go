package usecase

import (
	"context"

	"github.com/DRSN-tech/catalog-admin/internal/domain"
	"github.com/DRSN-tech/catalog-admin/pkg/e"
	"github.com/DRSN-tech/catalog-admin/pkg/logger"
)

// CatalogUseCase управляет справочниками: категориями и производителями.
// Удаление записи, на которую ссылаются товары, запрещено ограничением внешнего ключа.
type CatalogUseCase struct {
	categoryRepo     CategoryRepository
	manufacturerRepo ManufacturerRepository
	logger           logger.Logger
}

func NewCatalogUC(categoryRepo CategoryRepository, manufacturerRepo ManufacturerRepository, logger logger.Logger) *CatalogUseCase {
	return &CatalogUseCase{
		categoryRepo:     categoryRepo,
		manufacturerRepo: manufacturerRepo,
		logger:           logger,
	}
}

func (c *CatalogUseCase) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const op = "CatalogUseCase.ListCategories"

	categories, err := c.categoryRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, e.Persistence(err))
	}

	return categories, nil
}

func (c *CatalogUseCase) CreateCategory(ctx context.Context, req *CategoryReq) (*domain.Category, error) {
	const op = "CatalogUseCase.CreateCategory"

	if err := validateStruct(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	category, err := c.categoryRepo.Create(ctx, domain.NewCategory(req.Name, req.Description))
	if err != nil {
		return nil, e.Wrap(op, e.Persistence(err))
	}

	c.logger.Infof("category created: id=%d name=%q", category.ID, category.Name)
	return category, nil
}

func (c *CatalogUseCase) UpdateCategory(ctx context.Context, req *CategoryReq) (*domain.Category, error) {
	const op = "CatalogUseCase.UpdateCategory"

	if err := validateStruct(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	category := domain.NewCategory(req.Name, req.Description)
	category.ID = req.ID

	updated, err := c.categoryRepo.Update(ctx, category)
	if err != nil {
		return nil, e.Wrap(op, e.Persistence(err))
	}

	return updated, nil
}

// DeleteCategory удаляет категорию. Если на неё ссылаются товары, возвращается e.ErrReferentialIntegrity.
func (c *CatalogUseCase) DeleteCategory(ctx context.Context, id int64) error {
	const op = "CatalogUseCase.DeleteCategory"

	if err := c.categoryRepo.Delete(ctx, id); err != nil {
		return e.Wrap(op, e.Persistence(err))
	}

	return nil
}

func (c *CatalogUseCase) ListManufacturers(ctx context.Context) ([]domain.Manufacturer, error) {
	const op = "CatalogUseCase.ListManufacturers"

	manufacturers, err := c.manufacturerRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, e.Persistence(err))
	}

	return manufacturers, nil
}

// CreateManufacturer создаёт производителя. Дубликат имени даёт e.ErrConflict.
func (c *CatalogUseCase) CreateManufacturer(ctx context.Context, req *ManufacturerReq) (*domain.Manufacturer, error) {
	const op = "CatalogUseCase.CreateManufacturer"

	if err := validateStruct(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	manufacturer, err := c.manufacturerRepo.Create(ctx, domain.NewManufacturer(req.Name, req.Description))
	if err != nil {
		return nil, e.Wrap(op, e.Persistence(err))
	}

	c.logger.Infof("manufacturer created: id=%d name=%q", manufacturer.ID, manufacturer.Name)
	return manufacturer, nil
}

func (c *CatalogUseCase) UpdateManufacturer(ctx context.Context, req *ManufacturerReq) (*domain.Manufacturer, error) {
	const op = "CatalogUseCase.UpdateManufacturer"

	if err := validateStruct(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	manufacturer := domain.NewManufacturer(req.Name, req.Description)
	manufacturer.ID = req.ID

	updated, err := c.manufacturerRepo.Update(ctx, manufacturer)
	if err != nil {
		return nil, e.Wrap(op, e.Persistence(err))
	}

	return updated, nil
}

func (c *CatalogUseCase) DeleteManufacturer(ctx context.Context, id int64) error {
	const op = "CatalogUseCase.DeleteManufacturer"

	if err := c.manufacturerRepo.Delete(ctx, id); err != nil {
		return e.Wrap(op, e.Persistence(err))
	}

	return nil
}
