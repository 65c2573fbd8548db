package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// DocumentsPrefix is the namespace all uploaded documents live under.
const DocumentsPrefix = "documents"

// ErrNotExist is returned when a stored object is missing.
var ErrNotExist = errors.New("stored file does not exist")

// Store is a flat object store addressed by slash-separated keys.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// NewDocumentKey returns a fresh, collision-free key for an upload with the given original name.
func NewDocumentKey(originalName string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(originalName), "."))
	name := uuid.New().String()
	if ext != "" {
		name += "." + ext
	}
	return path.Join(DocumentsPrefix, name)
}

// RemoveAll deletes every key, logging failures instead of returning them.
func RemoveAll(ctx context.Context, store Store, keys []string) {
	for _, key := range keys {
		if err := store.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotExist) {
			log.Warnf("[Storage] Failed to delete %s: %v", key, err)
		}
	}
}

// New builds the store selected by cfg.
func New(ctx context.Context, cfg *Config) (Store, error) {
	switch cfg.Driver {
	case DriverLocal, "":
		return NewLocalStore(cfg.Root)
	case DriverS3:
		return NewS3Store(ctx, cfg)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

func cleanKey(key string) (string, error) {
	cleaned := path.Clean("/" + strings.TrimSpace(key))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return cleaned, nil
}
