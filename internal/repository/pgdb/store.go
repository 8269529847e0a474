package pgdb

import (
	"context"

	"github.com/DRSN-tech/catalog-admin/pkg/tr"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogStore — доступ к PostgreSQL для репозиториев каталога.
// Все запросы выполняются в транзакции из контекста, если она открыта через WithinTransaction,
// иначе напрямую через пул.
type CatalogStore struct {
	pool      *pgxpool.Pool
	trManager *manager.Manager
}

func NewCatalogStore(pool *pgxpool.Pool, trManager *manager.Manager) *CatalogStore {
	return &CatalogStore{pool: pool, trManager: trManager}
}

// WithinTransaction выполняет work в одной транзакции: commit, если work вернул nil,
// и rollback при ошибке или панике. При обрыве соединения откат выполняет сервер.
func (s *CatalogStore) WithinTransaction(ctx context.Context, work func(ctx context.Context) error) error {
	return s.trManager.Do(ctx, work)
}

// Exec выполняет команду и возвращает число затронутых строк.
func (s *CatalogStore) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := tr.TrOrDB(ctx, s.pool).Exec(ctx, sql, args...)
	if err != nil {
		return 0, translate(err)
	}

	return tag.RowsAffected(), nil
}

// Query выполняет запрос. Вызывающий обязан закрыть rows.
func (s *CatalogStore) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	rows, err := tr.TrOrDB(ctx, s.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, translate(err)
	}

	return rows, nil
}

func (s *CatalogStore) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return tr.TrOrDB(ctx, s.pool).QueryRow(ctx, sql, args...)
}

// CopyFrom выполняет COPY строк в таблицу. Требует открытой транзакции.
func (s *CatalogStore) CopyFrom(ctx context.Context, table string, columns []string, src pgx.CopyFromSource) (int64, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return 0, err
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, src)
	if err != nil {
		return 0, translate(err)
	}

	return n, nil
}
