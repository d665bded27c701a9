// Package storage holds product images. S3 is used when a bucket is
// configured, the local filesystem otherwise.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidFileType = errors.New("only image files are allowed (JPEG, PNG, GIF, WEBP)")
	ErrFileTooLarge    = errors.New("file exceeds the maximum allowed size")
)

// AllowedImageTypes maps accepted content types to the extension used when
// the upload's filename has none.
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Image is an upload on its way to an ImageStore.
type Image struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImageStore persists an image and returns the URL it is served from.
type ImageStore interface {
	Put(ctx context.Context, img Image) (string, error)
	Backend() string
}

// ValidateImage checks the content type and size of img.
func ValidateImage(img Image, maxSize int64) error {
	if _, ok := AllowedImageTypes[strings.ToLower(img.ContentType)]; !ok {
		return ErrInvalidFileType
	}
	if maxSize > 0 && img.Size > maxSize {
		return fmt.Errorf("%w (%d bytes)", ErrFileTooLarge, maxSize)
	}
	return nil
}

// ValidateContentType validates the content type
func ValidateContentType(contentType string) error {
	if _, ok := AllowedImageTypes[strings.ToLower(contentType)]; !ok {
		return ErrInvalidFileType
	}
	return nil
}

// objectKey builds "<folder>/<uuid><ext>", taking the extension from the
// filename and falling back to the content type.
func objectKey(folder, filename, contentType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = AllowedImageTypes[strings.ToLower(contentType)]
	}
	return fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), ext)
}
