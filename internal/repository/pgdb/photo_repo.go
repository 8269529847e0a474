package pgdb

import (
	"context"

	"github.com/DRSN-tech/catalog-admin/internal/domain"
	"github.com/DRSN-tech/catalog-admin/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/catalog-admin/pkg/e"
	"github.com/DRSN-tech/catalog-admin/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jimlawless/whereami"
)

// PhotoRepo реализует репозиторий фото товаров поверх PostgreSQL.
type PhotoRepo struct {
	db   *CatalogStore
	conv converter.PhotoConverter
}

func NewPhotoRepo(db *CatalogStore, conv converter.PhotoConverter) *PhotoRepo {
	return &PhotoRepo{db: db, conv: conv}
}

// Insert записывает набор фото через COPY внутри текущей транзакции.
func (p *PhotoRepo) Insert(ctx context.Context, photos []domain.Photo) error {
	if len(photos) == 0 {
		return nil
	}

	models := p.conv.ToArrModel(photos)
	src := pgx.CopyFromSlice(len(models), func(i int) ([]any, error) {
		return []any{models[i].ProductID, models[i].Position, models[i].PhotoPath}, nil
	})

	if _, err := p.db.CopyFrom(ctx, "photos", []string{"product_id", "position", "photo_path"}, src); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// Unreferenced оставляет из paths только пути, которых больше нет в photos, в порядке первого вхождения.
// Вызывается в той же транзакции, что и удаление, чтобы видеть её изменения.
func (p *PhotoRepo) Unreferenced(ctx context.Context, paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	query := `
		SELECT u.path
		FROM unnest($1::text[]) WITH ORDINALITY AS u(path, ord)
		WHERE NOT EXISTS (SELECT 1 FROM photos ph WHERE ph.photo_path = u.path)
		GROUP BY u.path
		ORDER BY MIN(u.ord);
	`

	rows, err := p.db.Query(ctx, query, paths)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	orphaned, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), translate(err))
	}

	return orphaned, nil
}

// DeleteByProduct удаляет все фото товара и возвращает их пути в прежнем порядке.
func (p *PhotoRepo) DeleteByProduct(ctx context.Context, productID int64) ([]string, error) {
	if _, err := tr.TxFromCtx(ctx); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		WITH deleted AS (
			DELETE FROM photos WHERE product_id = $1
			RETURNING position, photo_path
		)
		SELECT photo_path FROM deleted ORDER BY position;
	`

	rows, err := p.db.Query(ctx, query, productID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	paths, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), translate(err))
	}

	return paths, nil
}
