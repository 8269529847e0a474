package pgdb

import (
	"context"

	"github.com/DRSN-tech/catalog-admin/internal/domain"
	"github.com/DRSN-tech/catalog-admin/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/catalog-admin/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jimlawless/whereami"
)

// ManufacturerRepo реализует репозиторий производителей поверх PostgreSQL.
type ManufacturerRepo struct {
	db   *CatalogStore
	conv converter.ManufacturerConverter
}

func NewManufacturerRepo(db *CatalogStore, conv converter.ManufacturerConverter) *ManufacturerRepo {
	return &ManufacturerRepo{db: db, conv: conv}
}

// List возвращает производителей по id. Имена уникальны, поэтому дубликатов в выдаче нет.
func (m *ManufacturerRepo) List(ctx context.Context) ([]domain.Manufacturer, error) {
	query := `
		SELECT m.id, m.name, m.description,
			(SELECT COUNT(*) FROM products p WHERE p.manufacturer_id = m.id) AS products_count
		FROM manufacturers m
		ORDER BY m.id;
	`

	rows, err := m.db.Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	models, err := pgx.CollectRows(rows, pgx.RowToStructByName[converter.ManufacturerModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), translate(err))
	}

	return m.conv.ToArrEntity(models), nil
}

func (m *ManufacturerRepo) Create(ctx context.Context, manufacturer *domain.Manufacturer) (*domain.Manufacturer, error) {
	query := `
		INSERT INTO manufacturers (name, description) VALUES ($1, $2)
		RETURNING id, name, description, 0::bigint AS products_count;
	`

	model := m.conv.ToModel(manufacturer)
	if err := m.db.QueryRow(ctx, query, model.Name, model.Description).
		Scan(&model.ID, &model.Name, &model.Description, &model.ProductsCount); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), translate(err))
	}

	return m.conv.ToEntity(model), nil
}

func (m *ManufacturerRepo) Update(ctx context.Context, manufacturer *domain.Manufacturer) (*domain.Manufacturer, error) {
	query := `
		UPDATE manufacturers SET name = $2, description = $3
		WHERE id = $1
		RETURNING id, name, description,
			(SELECT COUNT(*) FROM products p WHERE p.manufacturer_id = manufacturers.id) AS products_count;
	`

	model := m.conv.ToModel(manufacturer)
	if err := m.db.QueryRow(ctx, query, model.ID, model.Name, model.Description).
		Scan(&model.ID, &model.Name, &model.Description, &model.ProductsCount); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), translate(err))
	}

	return m.conv.ToEntity(model), nil
}

func (m *ManufacturerRepo) Delete(ctx context.Context, id int64) error {
	affected, err := m.db.Exec(ctx, `DELETE FROM manufacturers WHERE id = $1;`, id)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if affected == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrNotFound)
	}

	return nil
}
