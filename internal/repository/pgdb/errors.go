package pgdb

import (
	"errors"
	"fmt"

	"github.com/DRSN-tech/catalog-admin/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Коды SQLSTATE, которые различает каталог.
const (
	foreignKeyViolation = "23503"
	uniqueViolation     = "23505"
	checkViolation      = "23514"
)

// translate классифицирует ошибку драйвера по таксономии e.*, сохраняя исходную ошибку в цепочке.
func translate(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %w", e.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case foreignKeyViolation:
		return fmt.Errorf("%w (%s): %w", e.ErrReferentialIntegrity, pgErr.ConstraintName, err)
	case uniqueViolation:
		return fmt.Errorf("%w (%s): %w", e.ErrConflict, pgErr.ConstraintName, err)
	case checkViolation:
		return fmt.Errorf("%w (%s): %w", e.ErrValidation, pgErr.ConstraintName, err)
	}

	return err
}
