package service

import (
	"context"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/imaging"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/repository"
)

// ImageNormalizer turns an uploaded picture into the stored JPEG.
type ImageNormalizer interface {
	Normalize(data []byte) ([]byte, error)
}

// ImageService keeps photocard images in the object store and mirrors them
// into the local cache.
type ImageService struct {
	objects    repository.ObjectStore
	local      repository.LocalImageCache
	normalizer ImageNormalizer
	maxBytes   int64
	metrics    *metrics.MetricsManager
	log        logger.Logger
}

func NewImageService(
	objects repository.ObjectStore,
	local repository.LocalImageCache,
	normalizer ImageNormalizer,
	maxBytes int64,
	m *metrics.MetricsManager,
	log logger.Logger,
) *ImageService {
	return &ImageService{
		objects:    objects,
		local:      local,
		normalizer: normalizer,
		maxBytes:   maxBytes,
		metrics:    m,
		log:        log,
	}
}

// Local returns the cached image of a photocard without touching the network.
func (s *ImageService) Local(photocardID string) ([]byte, bool) {
	data, ok := s.local.Read(photocardID)
	if s.metrics != nil {
		if ok {
			s.metrics.ImageCacheLookup(metrics.CacheHit)
		} else {
			s.metrics.ImageCacheLookup(metrics.CacheMiss)
		}
	}
	return data, ok
}

// Fetch downloads the image of p and stores it in the local cache.
func (s *ImageService) Fetch(ctx context.Context, p entity.Photocard) ([]byte, error) {
	data, err := s.objects.Get(ctx, p.ImagePath, s.maxBytes)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ImageCacheLookup(metrics.CacheFail)
		}
		return nil, fmt.Errorf("fetch image %s: %w", p.ImagePath, err)
	}
	if err := s.local.Write(p.ID, data); err != nil {
		s.log.Warnf("Failed to write local image cache for %s: %v", p.ID, err)
	}
	return data, nil
}

// Store normalizes raw and uploads it as the image of p. The normalized
// bytes are returned.
func (s *ImageService) Store(ctx context.Context, p entity.Photocard, raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, ErrImageRequired
	}
	data, err := s.normalizer.Normalize(raw)
	if err != nil {
		return nil, err
	}
	if err := s.objects.Put(ctx, p.ImagePath, data, imaging.ContentType); err != nil {
		return nil, fmt.Errorf("upload image %s: %w", p.ImagePath, err)
	}
	if err := s.local.Write(p.ID, data); err != nil {
		s.log.Warnf("Failed to write local image cache for %s: %v", p.ID, err)
	}
	return data, nil
}

// Delete removes the image of p from both stores. Failures are only logged.
func (s *ImageService) Delete(ctx context.Context, p entity.Photocard) {
	if err := s.objects.Delete(ctx, p.ImagePath); err != nil {
		s.log.Warnf("Failed to delete image %s: %v", p.ImagePath, err)
	}
	if err := s.local.Delete(p.ID); err != nil {
		s.log.Warnf("Failed to delete local image of %s: %v", p.ID, err)
	}
}
