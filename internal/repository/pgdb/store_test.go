package pgdb

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/DRSN-tech/catalog-admin/internal/cfg"
	"github.com/DRSN-tech/catalog-admin/pkg/logger"
	"github.com/DRSN-tech/catalog-admin/pkg/postgres"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testStore подключается к тестовой БД и применяет миграции.
// Если PostgreSQL недоступен, тест пропускается.
func testStore(t *testing.T) (*CatalogStore, *postgres.PgDatabase) {
	t.Helper()

	dbCfg := &cfg.PGDBCfg{
		Host:             envOr("POSTGRES_HOST", "localhost"),
		Port:             envOr("POSTGRES_PORT", "5432"),
		User:             envOr("POSTGRES_USER", "catalog"),
		Password:         envOr("POSTGRES_PASSWORD", "catalog"),
		DBName:           envOr("POSTGRES_DB", "catalog_test"),
		SSLMode:          "disable",
		MigrationsSource: "file://../../../db/migrations",
	}

	db, err := postgres.Connect(context.Background(), dbCfg)
	if err != nil {
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	log := logger.NewFromSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := db.RunMigrations(log); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(db.Close)
	return NewCatalogStore(db.Pool, db.TxManager()), db
}

// cleanProducts удаляет товары и их фото, созданные тестом.
func cleanProducts(t *testing.T, db *postgres.PgDatabase, ids ...int64) {
	t.Helper()
	t.Cleanup(func() {
		ctx := context.Background()
		for _, id := range ids {
			db.Pool.Exec(ctx, "DELETE FROM photos WHERE product_id = $1", id)
			db.Pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
		}
	})
}
