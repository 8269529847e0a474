package minio

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/catalog-admin/internal/cfg"
	"github.com/DRSN-tech/catalog-admin/internal/domain"
	"github.com/DRSN-tech/catalog-admin/internal/usecase"
	"github.com/DRSN-tech/catalog-admin/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

const noSuchKey = "NoSuchKey"

// ImageRepo реализует хранилище файлов фотографий поверх MinIO.
type ImageRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewImageRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *ImageRepo {
	return &ImageRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// Upload загружает изображение в MinIO и возвращает ключ объекта.
func (i *ImageRepo) Upload(ctx context.Context, image *domain.Image) (string, error) {
	info, err := i.mc.PutObject(ctx, i.bucket(image), image.ObjectKey, image.Body, image.Size, minio.PutObjectOptions{
		ContentType: image.ContentType,
	})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return info.Key, nil
}

// Open открывает объект на чтение. Отсутствующий объект даёт e.ErrNotFound.
func (i *ImageRepo) Open(ctx context.Context, key string) (*usecase.ImageObject, error) {
	obj, err := i.mc.GetObject(ctx, i.cfg.BucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), classify(key, err))
	}

	// GetObject ленивый: ошибка отсутствия объекта приходит только из Stat/Read
	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, e.Wrap(whereami.WhereAmI(), classify(key, err))
	}

	return &usecase.ImageObject{
		Body:         obj,
		Size:         stat.Size,
		ContentType:  stat.ContentType,
		LastModified: stat.LastModified,
	}, nil
}

// Delete удаляет объект из MinIO по указанному ключу.
func (i *ImageRepo) Delete(ctx context.Context, key string) error {
	if err := i.mc.RemoveObject(ctx, i.cfg.BucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (i *ImageRepo) bucket(image *domain.Image) string {
	if image.Bucket != "" {
		return image.Bucket
	}
	return i.cfg.BucketName
}

func classify(key string, err error) error {
	if minio.ToErrorResponse(err).Code == noSuchKey {
		return fmt.Errorf("object %q: %w", key, e.ErrNotFound)
	}
	return err
}
