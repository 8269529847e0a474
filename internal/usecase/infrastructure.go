package usecase

import (
	"context"
	"io"
	"time"
)

// Transactor выполняет work в одной транзакции: commit, если work вернул nil,
// и rollback при ошибке или панике.
type Transactor interface {
	WithinTransaction(ctx context.Context, work func(ctx context.Context) error) error
}

// PhotoStorage загружает файлы фотографий. Возвращает стабильные пути вида /uploads/<key>.
type PhotoStorage interface {
	SavePhotos(ctx context.Context, photos []PhotoUpload) ([]string, error)
	OpenPhoto(ctx context.Context, key string) (*ImageObject, error)
	CleanupPhotos(paths []string)
}

type EventProducer interface {
	PublishProductEvent(ctx context.Context, event *ProductEvent) error
}

// ImageObject — открытый на чтение файл из хранилища.
type ImageObject struct {
	Body         io.ReadCloser
	Size         int64
	ContentType  string
	LastModified time.Time
}
