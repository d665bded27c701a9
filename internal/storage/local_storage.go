package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ikkim/shopfront-backend/pkg/logger"
)

// LocalStorage writes images below dir; the router serves dir under prefix.
type LocalStorage struct {
	dir    string
	prefix string
}

func NewLocalStorage(dir, prefix string) (*LocalStorage, error) {
	if err := os.MkdirAll(filepath.Join(dir, "products"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStorage{dir: dir, prefix: "/" + strings.Trim(prefix, "/")}, nil
}

func (s *LocalStorage) Backend() string {
	return "local"
}

func (s *LocalStorage) Put(ctx context.Context, img Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := objectKey("products", img.Filename, img.ContentType)
	target := filepath.Join(s.dir, filepath.FromSlash(key))

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	if _, err := io.Copy(f, img.Body); err != nil {
		f.Close()
		os.Remove(target)
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	logger.Debug("Image stored on local disk", map[string]interface{}{
		"path": target,
	})
	return path.Join(s.prefix, key), nil
}
