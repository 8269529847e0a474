package converter

// ProductModel представляет строку выборки товара вместе с названиями справочников и фото.
type ProductModel struct {
	ID               int64    `db:"id"`
	Name             string   `db:"name"`
	Description      *string  `db:"description"`
	Price            string   `db:"price"` // NUMERIC(12,2), читается как текст
	CategoryID       int64    `db:"category_id"`
	ManufacturerID   int64    `db:"manufacturer_id"`
	CategoryName     *string  `db:"category_name"`
	ManufacturerName *string  `db:"manufacturer_name"`
	Photos           []string `db:"photos"`
}

// PhotoModel представляет запись таблицы photos в PostgreSQL.
type PhotoModel struct {
	ProductID int64  `db:"product_id"`
	Position  int32  `db:"position"`
	PhotoPath string `db:"photo_path"`
}

// CategoryModel представляет запись таблицы categories в PostgreSQL.
type CategoryModel struct {
	ID            int64   `db:"id"`
	Name          string  `db:"name"`
	Description   *string `db:"description"`
	ProductsCount int64   `db:"products_count"`
}

// ManufacturerModel представляет запись таблицы manufacturers в PostgreSQL.
type ManufacturerModel struct {
	ID            int64   `db:"id"`
	Name          string  `db:"name"`
	Description   *string `db:"description"`
	ProductsCount int64   `db:"products_count"`
}
