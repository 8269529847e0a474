package http

import (
	"encoding/json"

	"github.com/DRSN-tech/catalog-admin/internal/domain"
	"github.com/shopspring/decimal"
)

// ProductResponse — представление товара в API. Цена сериализуется числом с двумя знаками.
type ProductResponse struct {
	ID               int64       `json:"id"`
	Name             string      `json:"name"`
	Description      *string     `json:"description"`
	Price            json.Number `json:"price"`
	CategoryID       int64       `json:"category_id"`
	ManufacturerID   int64       `json:"manufacturer_id"`
	CategoryName     *string     `json:"category_name"`
	ManufacturerName *string     `json:"manufacturer_name"`
	Photos           []string    `json:"photos"`
}

// productInput — тело JSON-запроса на создание/обновление товара.
// Photos == nil (поле отсутствует) при обновлении оставляет фото как есть.
type productInput struct {
	ID             int64            `json:"id"`
	Name           string           `json:"name"`
	Description    *string          `json:"description"`
	Price          *decimal.Decimal `json:"price"`
	CategoryID     int64            `json:"category_id"`
	ManufacturerID int64            `json:"manufacturer_id"`
	Photos         []string         `json:"photos"`
}

type CategoryResponse struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	ProductsCount int64   `json:"products_count"`
}

type ManufacturerResponse struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	ProductCount int64   `json:"product_count"`
}

// referenceRow — справочник без счётчиков, как в /api/products/categories.
type referenceRow struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type referenceInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type UploadResponse struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

func toProductResponse(d *domain.ProductDetails) *ProductResponse {
	photos := d.Photos
	if photos == nil {
		photos = []string{}
	}

	return &ProductResponse{
		ID:               d.ID,
		Name:             d.Name,
		Description:      d.Description,
		Price:            json.Number(d.Price.StringFixed(2)),
		CategoryID:       d.CategoryID,
		ManufacturerID:   d.ManufacturerID,
		CategoryName:     d.CategoryName,
		ManufacturerName: d.ManufacturerName,
		Photos:           photos,
	}
}

func toProductResponses(list []domain.ProductDetails) []ProductResponse {
	out := make([]ProductResponse, 0, len(list))
	for i := range list {
		out = append(out, *toProductResponse(&list[i]))
	}
	return out
}

func toCategoryResponse(c *domain.Category) *CategoryResponse {
	return &CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description, ProductsCount: c.ProductsCount}
}

func toManufacturerResponse(m *domain.Manufacturer) *ManufacturerResponse {
	return &ManufacturerResponse{ID: m.ID, Name: m.Name, Description: m.Description, ProductCount: m.ProductsCount}
}
