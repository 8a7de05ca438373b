package storage

import (
	"context"

	storage_go "github.com/supabase-community/storage-go"
)

const statusNotConfigured = "not configured"

// HealthCheck checks Redis + Supabase
func (s *StorageService) HealthCheck(ctx context.Context) map[string]string {
	status := make(map[string]string)

	if s.redisClient == nil {
		status["redis"] = statusNotConfigured
	} else if err := s.redisClient.Ping(ctx).Err(); err != nil {
		status["redis"] = "unhealthy: " + err.Error()
	} else {
		status["redis"] = "healthy"
	}

	if s.sbClient == nil {
		status["supabase"] = statusNotConfigured
	} else if _, err := s.sbClient.ListFiles(s.bucket, "", storage_go.FileSearchOptions{}); err != nil {
		status["supabase"] = "unhealthy: " + err.Error()
	} else {
		status["supabase"] = "healthy"
	}

	return status
}
