package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/repository"
)

// PhotocardResolver reads photocards through the cache.
type PhotocardResolver struct {
	repo  repository.PhotocardRepository
	cache repository.PhotocardCache
	ttl   time.Duration
	log   logger.Logger
}

func NewPhotocardResolver(repo repository.PhotocardRepository, cache repository.PhotocardCache, ttl time.Duration, log logger.Logger) *PhotocardResolver {
	return &PhotocardResolver{repo: repo, cache: cache, ttl: ttl, log: log}
}

func (r *PhotocardResolver) Resolve(ctx context.Context, id string) (*entity.Photocard, error) {
	if r.cache != nil {
		p, err := r.cache.Get(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			r.log.Warnf("Photocard cache read failed for %s: %v", id, err)
		}
	}

	p, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolve photocard %s: %w", id, err)
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, *p, r.ttl); err != nil {
			r.log.Warnf("Failed to cache photocard %s: %v", id, err)
		}
	}
	return p, nil
}

// Fresh bypasses the cache. Ownership checks use it.
func (r *PhotocardResolver) Fresh(ctx context.Context, id string) (*entity.Photocard, error) {
	p, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load photocard %s: %w", id, err)
	}
	return p, nil
}

func (r *PhotocardResolver) Invalidate(ctx context.Context, id string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, id); err != nil {
		r.log.Warnf("Failed to invalidate cached photocard %s: %v", id, err)
	}
}

// ResolveAll resolves ids with at most limit lookups in flight. The result
// keeps the order of ids; photocards that fail to resolve are left out.
func (r *PhotocardResolver) ResolveAll(ctx context.Context, ids []string, limit int) []entity.Photocard {
	if limit <= 0 {
		limit = 1
	}
	resolved := make([]*entity.Photocard, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			p, err := r.Resolve(gctx, id)
			if err != nil {
				r.log.Warnf("Skipping photocard %s: %v", id, err)
				return nil
			}
			resolved[i] = p
			return nil
		})
	}
	_ = g.Wait()

	out := make([]entity.Photocard, 0, len(ids))
	for _, p := range resolved {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}
