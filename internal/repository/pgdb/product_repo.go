package pgdb

import (
	"context"

	"github.com/DRSN-tech/catalog-admin/internal/domain"
	"github.com/DRSN-tech/catalog-admin/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/catalog-admin/internal/usecase"
	"github.com/DRSN-tech/catalog-admin/pkg/e"
	"github.com/DRSN-tech/catalog-admin/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jimlawless/whereami"
)

// selectProductDetails читает товар с названиями справочников и фото одним запросом,
// поэтому поля и фото всегда из одного снимка данных.
const selectProductDetails = `
	SELECT
		p.id, p.name, p.description, p.price::text AS price,
		p.category_id, p.manufacturer_id,
		c.name AS category_name, m.name AS manufacturer_name,
		COALESCE(
			array_agg(ph.photo_path ORDER BY ph.position) FILTER (WHERE ph.photo_path IS NOT NULL),
			'{}'::text[]
		) AS photos
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN manufacturers m ON m.id = p.manufacturer_id
	LEFT JOIN photos ph ON ph.product_id = p.id
`

// ProductRepo реализует репозиторий товаров поверх PostgreSQL.
type ProductRepo struct {
	db   *CatalogStore
	conv converter.ProductConverter
}

func NewProductRepo(db *CatalogStore, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{db: db, conv: conv}
}

// Create вставляет товар внутри транзакции. При product.ID > 0 используется явный id,
// после чего последовательность identity сдвигается вперёд, если явный id её обогнал,
// чтобы последующие вставки без id не упирались в занятые значения.
func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (int64, error) {
	if _, err := tr.TxFromCtx(ctx); err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	model := p.conv.ToModel(product)

	var id int64
	if model.ID > 0 {
		// VALUES ($1, $2, $3, $4, $5, $6) id, name, description, price, category_id, manufacturer_id
		query := `
			INSERT INTO products (id, name, description, price, category_id, manufacturer_id)
			VALUES ($1, $2, $3, $4::numeric, $5, $6)
			RETURNING id;
		`
		err := p.db.QueryRow(ctx, query,
			model.ID, model.Name, model.Description, model.Price, model.CategoryID, model.ManufacturerID,
		).Scan(&id)
		if err != nil {
			return 0, e.Wrap(whereami.WhereAmI(), translate(err))
		}

		// Последовательность только сдвигается вперёд: id, уже выданные identity
		// (в том числе удалённые или не закоммиченные в других транзакциях), повторно не выдаются.
		syncQuery := `
			SELECT setval(seq, GREATEST($1::bigint, (SELECT MAX(id) FROM products), COALESCE(pg_sequence_last_value(seq), 0)))
			FROM (SELECT pg_get_serial_sequence('products', 'id')::regclass AS seq) s;
		`
		if _, err := p.db.Exec(ctx, syncQuery, id); err != nil {
			return 0, e.Wrap(whereami.WhereAmI(), err)
		}

		return id, nil
	}

	query := `
		INSERT INTO products (name, description, price, category_id, manufacturer_id)
		VALUES ($1, $2, $3::numeric, $4, $5)
		RETURNING id;
	`
	err := p.db.QueryRow(ctx, query,
		model.Name, model.Description, model.Price, model.CategoryID, model.ManufacturerID,
	).Scan(&id)
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), translate(err))
	}

	return id, nil
}

// Update перезаписывает все поля товара. Возвращает 0, если товара нет.
func (p *ProductRepo) Update(ctx context.Context, product *domain.Product) (int64, error) {
	if _, err := tr.TxFromCtx(ctx); err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	model := p.conv.ToModel(product)
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4::numeric, category_id = $5, manufacturer_id = $6
		WHERE id = $1;
	`

	affected, err := p.db.Exec(ctx, query,
		model.ID, model.Name, model.Description, model.Price, model.CategoryID, model.ManufacturerID,
	)
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return affected, nil
}

// Delete удаляет строку товара. Фото должны быть удалены раньше в той же транзакции.
func (p *ProductRepo) Delete(ctx context.Context, id int64) (int64, error) {
	if _, err := tr.TxFromCtx(ctx); err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	affected, err := p.db.Exec(ctx, `DELETE FROM products WHERE id = $1;`, id)
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return affected, nil
}

func (p *ProductRepo) GetDetails(ctx context.Context, id int64) (*domain.ProductDetails, error) {
	query := selectProductDetails + `
		WHERE p.id = $1
		GROUP BY p.id, c.name, m.name;
	`

	rows, err := p.db.Query(ctx, query, id)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[converter.ProductModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), translate(err))
	}

	details, err := p.conv.ToEntity(&model)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return details, nil
}

// List возвращает товары по убыванию id. Пустые фильтры не ограничивают выборку.
func (p *ProductRepo) List(ctx context.Context, filter usecase.ProductFilter) ([]domain.ProductDetails, error) {
	query := selectProductDetails + `
		WHERE ($1::bigint IS NULL OR p.category_id = $1)
		  AND ($2::bigint IS NULL OR p.manufacturer_id = $2)
		GROUP BY p.id, c.name, m.name
		ORDER BY p.id DESC;
	`

	rows, err := p.db.Query(ctx, query, filter.CategoryID, filter.ManufacturerID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	models, err := pgx.CollectRows(rows, pgx.RowToStructByName[converter.ProductModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), translate(err))
	}

	products, err := p.conv.ToArrEntity(models)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return products, nil
}

// IDs возвращает все id товаров по возрастанию.
func (p *ProductRepo) IDs(ctx context.Context) ([]int64, error) {
	rows, err := p.db.Query(ctx, `SELECT id FROM products ORDER BY id ASC;`)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), translate(err))
	}

	return ids, nil
}
