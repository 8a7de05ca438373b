package storage

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"

	"github.com/phambaophuc/imgresize/internal/models"
	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "img_resize:"

// GetFromCache returns nil data on a miss or when no cache is configured.
func (s *StorageService) GetFromCache(ctx context.Context, cacheKey string) ([]byte, error) {
	if s.redisClient == nil {
		return nil, nil
	}

	data, err := s.redisClient.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("cache get error: %w", err)
	}
	return data, nil
}

func (s *StorageService) SetCache(ctx context.Context, cacheKey string, data []byte) error {
	if s.redisClient == nil {
		return nil
	}
	return s.redisClient.Set(ctx, cacheKey, data, s.cacheDuration).Err()
}

// GenerateCacheKey hashes the source bytes together with whichever
// parameters were supplied, so "width=400" and "scale=0.5" never collide.
func (s *StorageService) GenerateCacheKey(source []byte, req models.ResizeRequest) string {
	hash := md5.New()

	hash.Write(source)

	if req.Scale != nil {
		hash.Write([]byte(fmt.Sprintf("scale_%g", *req.Scale)))
	}
	if req.Width != nil {
		hash.Write([]byte(fmt.Sprintf("width_%g", *req.Width)))
	}
	if req.Height != nil {
		hash.Write([]byte(fmt.Sprintf("height_%g", *req.Height)))
	}

	return fmt.Sprintf("%s%x", cacheKeyPrefix, hash.Sum(nil))
}
