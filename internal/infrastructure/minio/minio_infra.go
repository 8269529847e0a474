package minio

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/catalog-admin/internal/cfg"
	"github.com/DRSN-tech/catalog-admin/internal/domain"
	"github.com/DRSN-tech/catalog-admin/internal/infrastructure"
	"github.com/DRSN-tech/catalog-admin/internal/usecase"
	"github.com/DRSN-tech/catalog-admin/pkg/e"
	"github.com/DRSN-tech/catalog-admin/pkg/jitter"
	"github.com/DRSN-tech/catalog-admin/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// PathPrefix: префикс публичных путей к фото. Объект с ключом k доступен как PathPrefix + k.
const PathPrefix = "/uploads/"

const (
	cleanupAttempts = 3
	cleanupTimeout  = 30 * time.Second
)

// MinioInfrastructure управляет загрузкой, выдачей и очисткой фотографий в MinIO.
type MinioInfrastructure struct {
	minioRepo         usecase.ImageRepository
	cfg               *cfg.MinIOCfg
	logger            logger.Logger
	shutdownCtx       context.Context
	wg                sync.WaitGroup
	uploadImagesLimit int
	retryBase         time.Duration
	retryMax          time.Duration
}

func NewMinioInfrastructure(minioRepo usecase.ImageRepository, cfg *cfg.MinIOCfg, logger logger.Logger, shutdownCtx context.Context) *MinioInfrastructure {
	limit := cfg.UploadImagesLimit
	if limit <= 0 {
		limit = 1
	}

	return &MinioInfrastructure{
		minioRepo:         minioRepo,
		cfg:               cfg,
		logger:            logger,
		shutdownCtx:       shutdownCtx,
		uploadImagesLimit: limit,
		retryBase:         time.Second,
		retryMax:          8 * time.Second,
	}
}

// SavePhotos загружает фото параллельно (не более uploadImagesLimit одновременно) и возвращает
// пути в порядке входного списка. Неподдерживаемый MIME-тип отклоняется до начала загрузки.
// При ошибке остальные загрузки отменяются, а уже загруженные файлы удаляются в фоне.
func (m *MinioInfrastructure) SavePhotos(ctx context.Context, photos []usecase.PhotoUpload) ([]string, error) {
	const op = "MinioInfrastructure.SavePhotos"

	exts := make([]string, len(photos))
	for i, photo := range photos {
		ext, err := infrastructure.GetExtensionFromMIME(photo.MimeType)
		if err != nil {
			return nil, e.Wrap(op, fmt.Errorf("%s (%s): %w", photo.Name, photo.MimeType, err))
		}
		exts[i] = ext
	}

	keys := make([]string, len(photos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.uploadImagesLimit)

	for i, photo := range photos {
		g.Go(func() error {
			imageID := uuid.NewString()
			objKey := fmt.Sprintf("%d-%s.%s", time.Now().UnixNano(), imageID, exts[i])
			image := domain.NewImage(imageID, m.cfg.BucketName, objKey, bytes.NewReader(photo.Data), photo.Size, photo.MimeType)

			key, err := m.minioRepo.Upload(gctx, image)
			if err != nil {
				return fmt.Errorf("upload %s failed: %w", photo.Name, err)
			}

			keys[i] = key
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		m.cleanupKeys(uploaded(keys))
		return nil, e.Wrap(op, err)
	}

	paths := make([]string, len(keys))
	for i, key := range keys {
		paths[i] = PathPrefix + key
	}

	return paths, nil
}

// OpenPhoto открывает файл по ключу объекта (часть пути после PathPrefix).
func (m *MinioInfrastructure) OpenPhoto(ctx context.Context, key string) (*usecase.ImageObject, error) {
	const op = "MinioInfrastructure.OpenPhoto"

	if key == "" || strings.Contains(key, "..") {
		return nil, e.Wrap(op, fmt.Errorf("object %q: %w", key, e.ErrNotFound))
	}

	obj, err := m.minioRepo.Open(ctx, key)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if obj.ContentType == "" || obj.ContentType == "application/octet-stream" {
		if dot := strings.LastIndexByte(key, '.'); dot >= 0 {
			obj.ContentType = infrastructure.ContentTypeFromExtension(key[dot+1:])
		}
	}

	return obj, nil
}

// CleanupPhotos запускает фоновое удаление файлов по их путям.
// Пути вне PathPrefix (внешние ссылки) пропускаются.
func (m *MinioInfrastructure) CleanupPhotos(paths []string) {
	keys := make([]string, 0, len(paths))
	for _, path := range paths {
		if key, ok := strings.CutPrefix(path, PathPrefix); ok && key != "" {
			keys = append(keys, key)
		}
	}

	m.cleanupKeys(keys)
}

func (m *MinioInfrastructure) cleanupKeys(keys []string) {
	if len(keys) == 0 {
		return
	}

	m.wg.Add(1)
	go m.cleanupUploadedKeys(keys)
}

// cleanupUploadedKeys удаляет указанные объекты из MinIO с экспоненциальной задержкой и jitter.
func (m *MinioInfrastructure) cleanupUploadedKeys(keys []string) {
	defer m.wg.Done()
	const op = "MinioInfrastructure.cleanupUploadedKeys"
	m.logger.Infof("%s: cleaning up %d objects", op, len(keys))

	ctx, cancel := context.WithTimeout(m.shutdownCtx, cleanupTimeout)
	defer cancel()

	for _, key := range keys {
		for attempt := 0; attempt < cleanupAttempts; attempt++ {
			err := m.minioRepo.Delete(ctx, key)
			if err == nil {
				break
			}

			if attempt == cleanupAttempts-1 {
				m.logger.Errorf(err, "%s: giving up on key=%s", op, key)
				break
			}

			select {
			case <-time.After(jitter.ExponentialBackoff(m.retryBase, m.retryMax, attempt, jitter.DefaultJitter)):
			case <-ctx.Done():
				m.logger.Warnf("cleanup interrupted by shutdown, key=%v", key)
				return
			}
		}
	}
}

// WaitForCleanup ожидает завершения всех фоновых задач очистки с учётом таймаута завершения приложения.
func (m *MinioInfrastructure) WaitForCleanup(shutdownTimeoutCtx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-shutdownTimeoutCtx.Done():
		return fmt.Errorf("minio cleanup timeout during shutdown: %w", shutdownTimeoutCtx.Err())
	}
}

func uploaded(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}
