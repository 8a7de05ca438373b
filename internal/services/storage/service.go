package storage

import (
	"time"

	"github.com/phambaophuc/imgresize/internal/config"
	"github.com/redis/go-redis/v9"
	storage_go "github.com/supabase-community/storage-go"
)

// StorageService uploads resized images to Supabase and caches HTTP results
// in Redis. Either backend may be absent when it is not configured.
type StorageService struct {
	sbClient      *storage_go.Client
	redisClient   *redis.Client
	bucket        string
	cacheDuration time.Duration
}

func NewStorageService(cfg *config.Config) *StorageService {
	s := &StorageService{
		bucket:        cfg.Supabase.BUCKET,
		cacheDuration: cfg.Storage.CacheDuration,
	}

	if cfg.SupabaseEnabled() {
		s.sbClient = storage_go.NewClient(cfg.Supabase.URL+"/storage/v1", cfg.Supabase.KEY, nil)
	}

	if cfg.RedisEnabled() {
		s.redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	return s
}

func (s *StorageService) UploadEnabled() bool {
	return s.sbClient != nil
}

func (s *StorageService) Close() error {
	if s.redisClient != nil {
		return s.redisClient.Close()
	}
	return nil
}
