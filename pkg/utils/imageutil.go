package utils

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
)

// ResizedName inserts "_{width}x{height}" in front of the file extension.
func ResizedName(filename string, width, height int) string {
	ext := filepath.Ext(filename)
	name := strings.TrimSuffix(filename, ext)
	return fmt.Sprintf("%s_%dx%d%s", name, width, height, ext)
}

// OutputPath derives where a resized copy of src is written. With outputDir
// set the new name goes there, otherwise it sits next to the original.
func OutputPath(src, outputDir string, width, height int) string {
	name := ResizedName(filepath.Base(src), width, height)
	if outputDir != "" {
		return filepath.Join(outputDir, name)
	}
	return filepath.Join(filepath.Dir(src), name)
}

var ErrOutsideBaseDir = errors.New("path is outside the allowed directory")

// WithinDir resolves p against base, following symlinks of the parts that
// exist, and fails with ErrOutsideBaseDir if the result leaves base.
func WithinDir(base, p string) (string, error) {
	base, err := filepath.Abs(base)
	if err != nil {
		return "", err
	}
	base = resolveLinks(base)

	if !filepath.IsAbs(p) {
		p = filepath.Join(base, p)
	}
	p = resolveLinks(filepath.Clean(p))

	rel, err := filepath.Rel(base, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideBaseDir, p)
	}
	return p, nil
}

// resolveLinks evaluates symlinks in p, or in its parent when p does not
// exist yet.
func resolveLinks(p string) string {
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(p)); err == nil {
		return filepath.Join(dir, filepath.Base(p))
	}
	return p
}

// IsValidImageType sniffs the leading bytes of data for a known image format.
func IsValidImageType(data []byte) bool {
	return filetype.IsImage(data)
}

func GenerateStorageKey(filename string) string {
	ext := filepath.Ext(filename)
	name := strings.TrimSuffix(filename, ext)
	timestamp := time.Now().Unix()
	uuid := uuid.New().String()[:8]

	return fmt.Sprintf("resized/%s_%d_%s%s", name, timestamp, uuid, ext)
}
