package e

import (
	"errors"
	"fmt"
)

var (
	// Таксономия ошибок каталога
	ErrValidation           = errors.New("validation failed")
	ErrNotFound             = errors.New("not found")
	ErrReferentialIntegrity = errors.New("referential integrity violation")
	ErrConflict             = errors.New("conflict")
	ErrPersistence          = errors.New("persistence failure")

	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = errors.New("transaction not found")

	// Конфигурация
	ErrIncorrectEnvVariable = errors.New("incorrect environment variable")

	// 400 Bad Request
	ErrStatusBadRequest     = errors.New("bad request")
	ErrExpectedMultipart    = errors.New("expected multipart/form-data")
	ErrInvalidJSON          = errors.New("invalid JSON")
	ErrMissingFields        = errors.New("required fields are missing")
	ErrInvalidID            = errors.New("invalid id")
	ErrInvalidPrice         = errors.New("invalid price")
	ErrPricePrecision       = errors.New("price must have at most 2 decimal places")
	ErrTooManyImages        = errors.New("too many images")
	ErrNoImages             = errors.New("no images provided")
	ErrFileTooLarge         = errors.New("file too large")
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// 500
	ErrInternalServerError = errors.New("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}

// Persistence помечает ошибку слоя хранения как ErrPersistence, сохраняя исходную причину
// доступной для errors.Is/errors.As. Ошибки ErrNotFound и ErrValidation возвращаются как есть.
func Persistence(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrPersistence) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) {
		return err
	}

	return fmt.Errorf("%w: %w", ErrPersistence, err)
}
