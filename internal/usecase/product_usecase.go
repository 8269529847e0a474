package usecase

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/catalog-admin/internal/domain"
	"github.com/DRSN-tech/catalog-admin/pkg/e"
	"github.com/DRSN-tech/catalog-admin/pkg/logger"
	"github.com/shopspring/decimal"
)

// MaxPrice — верхняя граница NUMERIC(12,2) для цены товара.
var MaxPrice = decimal.RequireFromString("9999999999.99")

// ProductUseCase реализует запись товаров: товар и его набор фото меняются одной транзакцией.
type ProductUseCase struct {
	productRepo ProductRepository
	photoRepo   PhotoRepository
	trManager   Transactor
	photos      PhotoStorage  // может быть nil: файлы тогда не удаляются
	producer    EventProducer // может быть nil: события не публикуются
	logger      logger.Logger
}

func NewProductUC(
	productRepo ProductRepository,
	photoRepo PhotoRepository,
	trManager Transactor,
	photos PhotoStorage,
	producer EventProducer,
	logger logger.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo: productRepo,
		photoRepo:   photoRepo,
		trManager:   trManager,
		photos:      photos,
		producer:    producer,
		logger:      logger,
	}
}

// CreateProduct создаёт товар и его фото (в порядке PhotoPaths) одной транзакцией.
// Любая ошибка внутри транзакции откатывает всё и возвращается как e.ErrPersistence
// с сохранённой причиной (e.ErrReferentialIntegrity, e.ErrConflict).
func (p *ProductUseCase) CreateProduct(ctx context.Context, req *CreateProductReq) (*domain.ProductDetails, error) {
	const op = "ProductUseCase.CreateProduct"

	if err := validateProductFields(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	product := req.toDomain(req.ID)

	var productID int64
	err := p.trManager.WithinTransaction(ctx, func(ctx context.Context) error {
		id, err := p.productRepo.Create(ctx, product)
		if err != nil {
			return err
		}
		productID = id

		return p.insertPhotos(ctx, id, req.PhotoPaths)
	})
	if err != nil {
		return nil, e.Wrap(op, e.Persistence(err))
	}

	details, err := p.productRepo.GetDetails(ctx, productID)
	if err != nil {
		return nil, e.Wrap(op, e.Persistence(err))
	}

	p.publish(ctx, NewProductEvent(ProductCreated, productID, details))

	return details, nil
}

// UpdateProduct перезаписывает все поля товара. Если товара нет, возвращается e.ErrNotFound и шаг с фото не выполняется.
// При ReplacePhotos прежний набор фото удаляется и заменяется новым.
// Файлы удаляются только для путей, на которые после коммита не ссылается ни один товар.
func (p *ProductUseCase) UpdateProduct(ctx context.Context, req *UpdateProductReq) (*domain.ProductDetails, error) {
	const op = "ProductUseCase.UpdateProduct"

	if err := validateProductFields(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	product := req.toDomain(req.ID)

	var replaced []string
	err := p.trManager.WithinTransaction(ctx, func(ctx context.Context) error {
		affected, err := p.productRepo.Update(ctx, product)
		if err != nil {
			return err
		}
		if affected == 0 {
			return productNotFound(req.ID)
		}

		if !req.ReplacePhotos {
			return nil
		}

		old, err := p.photoRepo.DeleteByProduct(ctx, req.ID)
		if err != nil {
			return err
		}

		if err := p.insertPhotos(ctx, req.ID, req.PhotoPaths); err != nil {
			return err
		}

		replaced, err = p.photoRepo.Unreferenced(ctx, old)
		return err
	})
	if err != nil {
		return nil, e.Wrap(op, e.Persistence(err))
	}

	p.cleanupPhotos(replaced)

	details, err := p.productRepo.GetDetails(ctx, req.ID)
	if err != nil {
		return nil, e.Wrap(op, e.Persistence(err))
	}

	p.publish(ctx, NewProductEvent(ProductUpdated, req.ID, details))

	return details, nil
}

// DeleteProduct удаляет фото товара, затем сам товар. Если товара нет, возвращается e.ErrNotFound,
// и удаление фото откатывается вместе с транзакцией.
func (p *ProductUseCase) DeleteProduct(ctx context.Context, id int64) error {
	const op = "ProductUseCase.DeleteProduct"

	var removed []string
	err := p.trManager.WithinTransaction(ctx, func(ctx context.Context) error {
		paths, err := p.photoRepo.DeleteByProduct(ctx, id)
		if err != nil {
			return err
		}

		affected, err := p.productRepo.Delete(ctx, id)
		if err != nil {
			return err
		}
		if affected == 0 {
			return productNotFound(id)
		}

		removed, err = p.photoRepo.Unreferenced(ctx, paths)
		return err
	})
	if err != nil {
		return e.Wrap(op, e.Persistence(err))
	}

	p.cleanupPhotos(removed)
	p.publish(ctx, NewProductEvent(ProductDeleted, id, nil))

	return nil
}

// GetProduct возвращает товар с названиями категории/производителя и фото.
func (p *ProductUseCase) GetProduct(ctx context.Context, id int64) (*domain.ProductDetails, error) {
	const op = "ProductUseCase.GetProduct"

	details, err := p.productRepo.GetDetails(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, e.Persistence(err))
	}

	return details, nil
}

// ListProducts возвращает товары (новые первыми) с фото.
func (p *ProductUseCase) ListProducts(ctx context.Context, filter ProductFilter) ([]domain.ProductDetails, error) {
	const op = "ProductUseCase.ListProducts"

	products, err := p.productRepo.List(ctx, filter)
	if err != nil {
		return nil, e.Wrap(op, e.Persistence(err))
	}

	return products, nil
}

// NextProductID возвращает наименьший свободный положительный id товара.
// Значение не резервируется: параллельный вызов может получить тот же id,
// и одна из последующих вставок завершится e.ErrConflict.
func (p *ProductUseCase) NextProductID(ctx context.Context) (int64, error) {
	const op = "ProductUseCase.NextProductID"

	ids, err := p.productRepo.IDs(ctx)
	if err != nil {
		return 0, e.Wrap(op, e.Persistence(err))
	}

	return domain.FirstFreeID(ids), nil
}

func (p *ProductUseCase) insertPhotos(ctx context.Context, productID int64, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	return p.photoRepo.Insert(ctx, domain.NewPhotos(productID, paths))
}

// publish отправляет событие после коммита. Ошибка публикации не отменяет уже закоммиченную запись.
func (p *ProductUseCase) publish(ctx context.Context, event *ProductEvent) {
	if p.producer == nil {
		return
	}

	if err := p.producer.PublishProductEvent(ctx, event); err != nil {
		p.logger.Warnf("failed to publish %s for product %d: %v", event.Type, event.ProductID, err)
	}
}

func (p *ProductUseCase) cleanupPhotos(paths []string) {
	if p.photos == nil || len(paths) == 0 {
		return
	}

	p.photos.CleanupPhotos(paths)
}

type productFieldsHolder interface {
	fields() *ProductFields
}

func (r *CreateProductReq) fields() *ProductFields { return &r.ProductFields }
func (r *UpdateProductReq) fields() *ProductFields { return &r.ProductFields }

// validateProductFields выполняется до любого обращения к хранилищу.
func validateProductFields(req productFieldsHolder) error {
	if err := validateStruct(req); err != nil {
		return err
	}

	price := *req.fields().Price
	if price.IsNegative() {
		return fmt.Errorf("%w: price: must not be negative", e.ErrValidation)
	}
	if price.GreaterThan(MaxPrice) {
		return fmt.Errorf("%w: price: must not exceed %s", e.ErrValidation, MaxPrice.StringFixed(2))
	}
	if !price.Equal(price.Round(2)) {
		return fmt.Errorf("%w: price: at most 2 decimal places", e.ErrValidation)
	}

	return nil
}

func productNotFound(id int64) error {
	return fmt.Errorf("product %d: %w", id, e.ErrNotFound)
}
