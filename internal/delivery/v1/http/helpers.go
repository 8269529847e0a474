package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/DRSN-tech/catalog-admin/internal/usecase"
	"github.com/DRSN-tech/catalog-admin/pkg/e"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"` // только в режиме разработки
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:  code,
		Error: message,
	}
}

// ToHTTPResponse сопоставляет ошибку с HTTP-статусом и безопасным для клиента сообщением.
// ErrReferentialIntegrity и ErrConflict проверяются раньше общих ошибок, так как приходят
// завёрнутыми в e.ErrPersistence.
func ToHTTPResponse(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrReferentialIntegrity):
		return http.StatusUnprocessableEntity, e.ErrReferentialIntegrity.Error()
	case errors.Is(err, e.ErrConflict):
		return http.StatusConflict, e.ErrConflict.Error()
	case errors.Is(err, e.ErrNotFound):
		return http.StatusNotFound, e.ErrNotFound.Error()
	case errors.Is(err, e.ErrValidation):
		return http.StatusBadRequest, validationMessage(err)
	case errors.Is(err, e.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, e.ErrFileTooLarge.Error()
	}

	for _, inputErr := range []error{
		e.ErrExpectedMultipart,
		e.ErrInvalidJSON,
		e.ErrMissingFields,
		e.ErrInvalidID,
		e.ErrInvalidPrice,
		e.ErrPricePrecision,
		e.ErrTooManyImages,
		e.ErrNoImages,
		e.ErrUnsupportedMediaType,
		e.ErrStatusBadRequest,
	} {
		if errors.Is(err, inputErr) {
			return http.StatusBadRequest, inputErr.Error()
		}
	}

	return http.StatusInternalServerError, e.ErrInternalServerError.Error()
}

// validationMessage отрезает префиксы операций: клиенту нужен только список полей.
func validationMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, e.ErrValidation.Error()); i >= 0 {
		return msg[i:]
	}
	return e.ErrValidation.Error()
}

// WriteError пишет JSON-ошибку. Исходный текст ошибки попадает в details только при withDetails.
func WriteError(w http.ResponseWriter, err error, withDetails bool) {
	code, msg := ToHTTPResponse(err)
	resp := NewErrorResponse(code, msg)
	if withDetails {
		resp.Details = err.Error()
	}

	WriteSuccess(w, code, resp)
}

func WriteSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// parsePrice разбирает цену вида "599.99" или "600".
// Проверка знака и количества знаков после запятой выполняется в use case.
func parsePrice(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("%w: %q", e.ErrInvalidPrice, s))
	}
	if d.GreaterThan(usecase.MaxPrice) {
		return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("%w: %q exceeds %s", e.ErrInvalidPrice, s, usecase.MaxPrice))
	}

	return &d, nil
}

// parseFormID разбирает необязательный числовой id из поля формы. Пустое значение даёт 0.
func parseFormID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), fmt.Errorf("%w: %q", e.ErrInvalidID, s))
	}

	return id, nil
}

// pathID разбирает {id} из пути. Допускаются только положительные целые.
func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, e.Wrap(whereami.WhereAmI(), fmt.Errorf("%w: %q", e.ErrInvalidID, raw))
	}

	return id, nil
}

// queryID разбирает необязательный фильтр из query-строки.
func queryID(r *http.Request, key string) (*int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("%w: %s=%q", e.ErrInvalidID, key, raw))
	}

	return &id, nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func ensureMultipartForm(r *http.Request, maxMemory int64) error {
	if !isMultipart(r) {
		return e.Wrap(whereami.WhereAmI(), e.ErrExpectedMultipart)
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return e.Wrap(whereami.WhereAmI(), e.ErrFileTooLarge)
		}
		return e.Wrap(whereami.WhereAmI(), fmt.Errorf("%w: %w", e.ErrStatusBadRequest, err))
	}

	return nil
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return e.Wrap(whereami.WhereAmI(), e.ErrFileTooLarge)
		}
		return e.Wrap(whereami.WhereAmI(), fmt.Errorf("%w: %w", e.ErrInvalidJSON, err))
	}

	return nil
}

// parseImages читает загруженные файлы в порядке их следования в форме.
func parseImages(files []*multipart.FileHeader, maxCount int, maxSize int64) ([]usecase.PhotoUpload, error) {
	if len(files) > maxCount {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrTooManyImages)
	}

	images := make([]usecase.PhotoUpload, 0, len(files))
	for _, fh := range files {
		data, mimeType, err := readFile(fh, maxSize)
		if err != nil {
			return nil, err
		}
		images = append(images, *usecase.NewPhotoUpload(data, mimeType, fh.Filename))
	}

	return images, nil
}

func readFile(fh *multipart.FileHeader, maxSize int64) ([]byte, string, error) {
	if fh.Size > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, "", e.Wrap(whereami.WhereAmI(), err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return nil, "", e.Wrap(whereami.WhereAmI(), err)
	}
	if int64(len(data)) > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	// MIME определяется по содержимому, а не по заголовку клиента
	mimeType := http.DetectContentType(data[:min(len(data), 512)])
	return data, mimeType, nil
}
