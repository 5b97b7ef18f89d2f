// Package storage uploads prompt images to an object store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"promptgallery-backend/config"
	"strings"
)

// ErrDisabled is returned by Put when no asset store is configured.
var ErrDisabled = errors.New("asset store disabled")

// AssetStore stores binary assets under a key and returns their public URL.
type AssetStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// New builds the store selected by ASSET_STORE.
func New(cfg *config.Config) (AssetStore, error) {
	switch strings.ToLower(cfg.AssetStore) {
	case "", "none":
		return NoopStore{}, nil
	case "oss":
		return NewOSSStore(OSSConfigFrom(cfg))
	case "cloudinary":
		return NewCloudinaryStore(cfg)
	default:
		return nil, fmt.Errorf("unsupported asset store %q", cfg.AssetStore)
	}
}

// PromptImageKey is the object key of a prompt image: prompts/<promptId>/<filename>.
func PromptImageKey(promptID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == "/" || name == ".." {
		name = "image"
	}
	name = strings.ReplaceAll(name, " ", "_")
	return fmt.Sprintf("prompts/%s/%s", promptID, name)
}

// NoopStore rejects uploads and ignores deletes.
type NoopStore struct{}

func (NoopStore) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	return "", ErrDisabled
}

func (NoopStore) Delete(ctx context.Context, key string) error {
	return nil
}
