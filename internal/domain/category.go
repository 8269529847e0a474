package domain

// Category описывает категорию товаров
type Category struct {
	ID            int64
	Name          string
	Description   *string
	ProductsCount int64 // заполняется только при чтении списка
}

func NewCategory(name string, description *string) *Category {
	return &Category{
		Name:        name,
		Description: description,
	}
}
