package minio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/circley-tech/storefront/internal/cfg"
	"github.com/circley-tech/storefront/internal/domain"
	"github.com/circley-tech/storefront/internal/infrastructure"
	"github.com/circley-tech/storefront/internal/usecase"
	"github.com/circley-tech/storefront/pkg/e"
	"github.com/circley-tech/storefront/pkg/jitter"
	"github.com/circley-tech/storefront/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	cleanupTimeout  = 30 * time.Second
	cleanupAttempts = 3
)

var cleanupBackoff = jitter.NewBackoff(time.Second, 8*time.Second)

// MinioInfrastructure загружает изображения товаров и убирает осиротевшие объекты в фоне.
type MinioInfrastructure struct {
	imageRepo   usecase.ImageRepository
	cfg         *cfg.MinIOCfg
	logger      logger.Logger
	shutdownCtx context.Context
	wg          sync.WaitGroup
}

func NewMinioInfrastructure(imageRepo usecase.ImageRepository, cfg *cfg.MinIOCfg, logger logger.Logger,
	shutdownCtx context.Context) *MinioInfrastructure {
	return &MinioInfrastructure{
		imageRepo:   imageRepo,
		cfg:         cfg,
		logger:      logger,
		shutdownCtx: shutdownCtx,
	}
}

// UploadImages загружает изображения параллельно, не более UploadImagesLimit одновременно.
// Первая ошибка отменяет остальные загрузки, уже загруженное удаляется в фоне.
func (m *MinioInfrastructure) UploadImages(ctx context.Context, req *usecase.UploadImagesReq) (*usecase.UploadImagesRes, error) {
	const op = "MinioInfrastructure.UploadImages"

	prefix := infrastructure.ObjectPrefix(req.Name)
	keys := make([]string, len(req.Images))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(m.cfg.UploadImagesLimit, 1))

	for i, image := range req.Images {
		g.Go(func() error {
			ext, err := infrastructure.GetExtensionFromMIME(image.MimeType)
			if err != nil {
				return fmt.Errorf("invalid mime type %s for %s: %w", image.MimeType, image.Name, err)
			}

			imageID := uuid.NewString()
			objKey := fmt.Sprintf("%s/%s.%s", prefix, imageID, ext)
			size, mime := image.Size, image.MimeType

			key, err := m.imageRepo.Upload(gctx, domain.NewImage(imageID, m.cfg.BucketName, objKey, image.Data, &size, &mime))
			if err != nil {
				return fmt.Errorf("upload %s failed: %w", image.Name, err)
			}

			keys[i] = key
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		m.CleanupImages(uploaded(keys))
		return nil, e.Wrap(op, err)
	}

	return usecase.NewUploadImagesRes(keys), nil
}

func uploaded(keys []string) []string {
	result := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			result = append(result, k)
		}
	}
	return result
}

// CleanupImages запускает фоновое удаление объектов.
func (m *MinioInfrastructure) CleanupImages(keys []string) {
	if len(keys) == 0 {
		return
	}

	m.wg.Add(1)
	go m.cleanup(keys)
}

// cleanup удаляет объекты с экспоненциальной задержкой между попытками.
func (m *MinioInfrastructure) cleanup(keys []string) {
	defer m.wg.Done()

	ctx, cancel := context.WithTimeout(m.shutdownCtx, cleanupTimeout)
	defer cancel()

	m.logger.Infof("cleaning up %d uploaded objects", len(keys))

	for _, key := range keys {
		for attempt := 0; attempt < cleanupAttempts; attempt++ {
			err := m.imageRepo.Delete(ctx, key)
			if err == nil {
				break
			}

			if attempt == cleanupAttempts-1 {
				m.logger.Warnf("giving up on orphaned object %s: %v", key, err)
				break
			}

			if err := cleanupBackoff.Wait(ctx, attempt); err != nil {
				m.logger.Warnf("cleanup interrupted by shutdown, key=%s", key)
				return
			}
		}
	}
}

// WaitForCleanup ждёт фоновые удаления, но не дольше таймаута завершения приложения.
func (m *MinioInfrastructure) WaitForCleanup(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("minio cleanup timeout during shutdown: %w", ctx.Err())
	}
}
