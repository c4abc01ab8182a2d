package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"medirelay/internal/config"
)

// ErrInvalidKey is returned for keys that would escape the storage root
var ErrInvalidKey = errors.New("invalid storage key")

// Object describes a stored file
type Object struct {
	Key     string
	ModTime time.Time
}

// Storage keeps uploaded document files
type Storage interface {
	Save(ctx context.Context, key, contentType string, r io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
	List(ctx context.Context) ([]Object, error)
}

// New builds the backend selected by STORAGE_DRIVER
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case "local":
		return NewLocal(cfg.UploadDir, cfg.PublicURL)
	case "s3":
		return NewS3(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.PublicURL)
	}
	return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
}

// cleanKey normalises a slash separated key and rejects traversal
func cleanKey(key string) (string, error) {
	if key == "" || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean("/" + key)[1:]
	if cleaned == "" || cleaned != strings.TrimPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	for _, part := range strings.Split(cleaned, "/") {
		if part == ".." || part == "." {
			return "", ErrInvalidKey
		}
	}
	return cleaned, nil
}
