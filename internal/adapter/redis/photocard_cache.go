package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/repository"
	"github.com/redis/go-redis/v9"
)

const (
	photocardCacheKeyPrefix = "photocard:"
)

type photocardCache struct {
	client redis.Cmdable
}

func NewPhotocardCache(client redis.Cmdable) repository.PhotocardCache {
	return &photocardCache{client: client}
}

func (c *photocardCache) key(id string) string {
	return photocardCacheKeyPrefix + id
}

func (c *photocardCache) Get(ctx context.Context, id string) (*entity.Photocard, error) {
	val, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get photocard %s from redis: %w", id, err)
	}

	var p entity.Photocard
	if err := json.Unmarshal(val, &p); err != nil {
		_ = c.Delete(ctx, id)
		return nil, fmt.Errorf("failed to unmarshal cached photocard %s: %w", id, err)
	}
	return &p, nil
}

// Set never stores image bytes; those live in the local image cache.
func (c *photocardCache) Set(ctx context.Context, p entity.Photocard, ttl time.Duration) error {
	if p.ID == "" {
		return errors.New("cannot cache photocard with empty id")
	}
	data, err := json.Marshal(p.WithoutImage())
	if err != nil {
		return fmt.Errorf("failed to marshal photocard %s: %w", p.ID, err)
	}
	if err := c.client.Set(ctx, c.key(p.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set photocard %s in redis: %w", p.ID, err)
	}
	return nil
}

func (c *photocardCache) Delete(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete photocard %s from redis: %w", id, err)
	}
	return nil
}
