package pgdb

import (
	"context"

	"github.com/DRSN-tech/catalog-admin/internal/domain"
	"github.com/DRSN-tech/catalog-admin/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/catalog-admin/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jimlawless/whereami"
)

// CategoryRepo реализует репозиторий категорий поверх PostgreSQL.
type CategoryRepo struct {
	db   *CatalogStore
	conv converter.CategoryConverter
}

func NewCategoryRepo(db *CatalogStore, conv converter.CategoryConverter) *CategoryRepo {
	return &CategoryRepo{db: db, conv: conv}
}

// List возвращает категории по имени вместе с числом товаров в каждой.
func (c *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	query := `
		SELECT c.id, c.name, c.description, COUNT(p.id) AS products_count
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name;
	`

	rows, err := c.db.Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	models, err := pgx.CollectRows(rows, pgx.RowToStructByName[converter.CategoryModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), translate(err))
	}

	return c.conv.ToArrEntity(models), nil
}

// Create создаёт категорию. Дубликат имени даёт e.ErrConflict.
func (c *CategoryRepo) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `
		INSERT INTO categories (name, description) VALUES ($1, $2)
		RETURNING id, name, description, 0::bigint AS products_count;
	`

	model := c.conv.ToModel(category)
	if err := c.db.QueryRow(ctx, query, model.Name, model.Description).
		Scan(&model.ID, &model.Name, &model.Description, &model.ProductsCount); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), translate(err))
	}

	return c.conv.ToEntity(model), nil
}

// Update перезаписывает имя и описание. Для отсутствующей категории возвращается e.ErrNotFound.
func (c *CategoryRepo) Update(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `
		UPDATE categories SET name = $2, description = $3
		WHERE id = $1
		RETURNING id, name, description,
			(SELECT COUNT(*) FROM products p WHERE p.category_id = categories.id) AS products_count;
	`

	model := c.conv.ToModel(category)
	if err := c.db.QueryRow(ctx, query, model.ID, model.Name, model.Description).
		Scan(&model.ID, &model.Name, &model.Description, &model.ProductsCount); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), translate(err))
	}

	return c.conv.ToEntity(model), nil
}

// Delete удаляет категорию. Категория, на которую ссылаются товары, не удаляется (e.ErrReferentialIntegrity).
func (c *CategoryRepo) Delete(ctx context.Context, id int64) error {
	affected, err := c.db.Exec(ctx, `DELETE FROM categories WHERE id = $1;`, id)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if affected == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrNotFound)
	}

	return nil
}
