package domain

// Manufacturer описывает производителя. Имя уникально (ограничение на уровне БД).
type Manufacturer struct {
	ID            int64
	Name          string
	Description   *string
	ProductsCount int64 // заполняется только при чтении списка
}

func NewManufacturer(name string, description *string) *Manufacturer {
	return &Manufacturer{
		Name:        name,
		Description: description,
	}
}
