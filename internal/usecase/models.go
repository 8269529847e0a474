package usecase

import (
	"time"

	"github.com/DRSN-tech/catalog-admin/internal/domain"
	"github.com/shopspring/decimal"
)

// PRODUCT USECASE

// ProductFields — полный набор полей товара. Частичное обновление не поддерживается:
// каждый вызов Create/Update передаёт все поля.
type ProductFields struct {
	Name           string           `json:"name" validate:"required,max=255"`
	Description    *string          `json:"description"`
	Price          *decimal.Decimal `json:"price" validate:"required"`
	CategoryID     int64            `json:"category_id" validate:"required,gt=0"`
	ManufacturerID int64            `json:"manufacturer_id" validate:"required,gt=0"`
}

// CreateProductReq — запрос на создание товара.
// ID > 0 означает заранее выделенный id (см. NextProductID), при 0 id назначает БД.
type CreateProductReq struct {
	ProductFields
	ID         int64    `json:"id" validate:"gte=0"`
	PhotoPaths []string `json:"photos" validate:"dive,required"`
}

// UpdateProductReq — запрос на обновление товара.
// Если ReplacePhotos == false, фото не трогаются; иначе набор фото целиком заменяется
// на PhotoPaths (пустой список удаляет все фото).
type UpdateProductReq struct {
	ProductFields
	ID            int64    `json:"-"`
	ReplacePhotos bool     `json:"-"`
	PhotoPaths    []string `json:"photos" validate:"dive,required"`
}

// ProductFilter — необязательные фильтры списка товаров.
type ProductFilter struct {
	CategoryID     *int64
	ManufacturerID *int64
}

// CATALOG USECASE

// CategoryReq содержит поля категории для создания и обновления.
type CategoryReq struct {
	ID          int64   `json:"-"`
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description"`
}

// ManufacturerReq — поля производителя для создания и обновления.
type ManufacturerReq struct {
	ID          int64   `json:"-"`
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description"`
}

// INFRASTRUCTURE

// PhotoUpload — файл фотографии, полученный из multipart/form-data.
type PhotoUpload struct {
	Data     []byte
	MimeType string
	Size     int64
	Name     string // оригинальное имя файла
}

type ProductEventType string

const (
	ProductCreated ProductEventType = "product.created"
	ProductUpdated ProductEventType = "product.updated"
	ProductDeleted ProductEventType = "product.deleted"
)

// ProductEvent — уведомление об изменении товара, публикуется после коммита.
type ProductEvent struct {
	Type       ProductEventType
	ProductID  int64
	Product    *domain.ProductDetails // nil для ProductDeleted
	OccurredAt time.Time
}

// MAPPERS

func NewProductEvent(t ProductEventType, productID int64, product *domain.ProductDetails) *ProductEvent {
	return &ProductEvent{
		Type:       t,
		ProductID:  productID,
		Product:    product,
		OccurredAt: time.Now().UTC(),
	}
}

func NewPhotoUpload(data []byte, mimeType string, name string) *PhotoUpload {
	return &PhotoUpload{
		Data:     data,
		MimeType: mimeType,
		Size:     int64(len(data)),
		Name:     name,
	}
}

func (f *ProductFields) toDomain(id int64) *domain.Product {
	product := domain.NewProduct(f.Name, f.Description, *f.Price, f.CategoryID, f.ManufacturerID)
	product.ID = id
	return product
}
