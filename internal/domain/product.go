package domain

import "github.com/shopspring/decimal"

// Product описывает товар
type Product struct {
	ID             int64
	Name           string
	Description    *string
	Price          decimal.Decimal
	CategoryID     int64
	ManufacturerID int64
}

func NewProduct(name string, description *string, price decimal.Decimal, categoryID, manufacturerID int64) *Product {
	return &Product{
		Name:           name,
		Description:    description,
		Price:          price,
		CategoryID:     categoryID,
		ManufacturerID: manufacturerID,
	}
}

// ProductDetails — товар вместе с названиями категории и производителя и упорядоченным списком фото.
type ProductDetails struct {
	Product
	CategoryName     *string
	ManufacturerName *string
	Photos           []string
}
