package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/phambaophuc/imgresize/pkg/utils"
)

var ErrUploadDisabled = errors.New("supabase storage is not configured")

// UploadFile pushes a file from disk to Supabase Storage and returns its public URL.
func (s *StorageService) UploadFile(ctx context.Context, path string) (string, error) {
	if s.sbClient == nil {
		return "", ErrUploadDisabled
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for upload: %w", path, err)
	}
	defer file.Close()

	return s.upload(ctx, file, filepath.Base(path))
}

func (s *StorageService) upload(ctx context.Context, data io.Reader, filename string) (string, error) {
	if s.sbClient == nil {
		return "", ErrUploadDisabled
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := utils.GenerateStorageKey(filename)

	_, err := s.sbClient.UploadFile(s.bucket, key, data)
	if err != nil {
		return "", fmt.Errorf("failed to upload to supabase: %w", err)
	}

	publicURL := s.sbClient.GetPublicUrl(s.bucket, key)
	return publicURL.SignedURL, nil
}
