package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ikkim/shopfront-backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name    string
		img     Image
		wantErr error
	}{
		{name: "PNG within limit", img: Image{ContentType: "image/png", Size: 10}},
		{name: "Upper-case type", img: Image{ContentType: "IMAGE/JPEG", Size: 10}},
		{name: "Not an image", img: Image{ContentType: "application/pdf", Size: 10}, wantErr: ErrInvalidFileType},
		{name: "Too large", img: Image{ContentType: "image/png", Size: 101}, wantErr: ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImage(tt.img, 100)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestObjectKey(t *testing.T) {
	assert.True(t, strings.HasPrefix(objectKey("products", "photo.PNG", "image/png"), "products/"))
	assert.True(t, strings.HasSuffix(objectKey("products", "photo.PNG", "image/png"), ".png"))
	assert.True(t, strings.HasSuffix(objectKey("products", "blob", "image/webp"), ".webp"))
}

func TestLocalStorage_Put(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, "uploads/")
	require.NoError(t, err)
	assert.Equal(t, "local", store.Backend())

	url, err := store.Put(context.Background(), Image{
		Filename:    "widget.png",
		ContentType: "image/png",
		Body:        strings.NewReader("png-bytes"),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/products/"))

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestS3Storage_PresignAndFileURL(t *testing.T) {
	cfg := &config.S3Config{Region: "us-east-1", Bucket: "shop-images"}
	client := s3.New(s3.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
	})
	store := newS3Storage(client, cfg)
	assert.Equal(t, "s3", store.Backend())

	resp, err := store.GeneratePresignedURL(context.Background(), "photo.jpg", "image/jpeg", "products")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.Key, "products/"))
	assert.Contains(t, resp.UploadURL, "X-Amz-Signature")
	assert.Equal(t, "https://shop-images.s3.us-east-1.amazonaws.com/"+resp.Key, resp.FileURL)

	withCDN := newS3Storage(client, &config.S3Config{Region: "us-east-1", Bucket: "shop-images", BaseURL: "https://cdn.example.com/"})
	assert.Equal(t, "https://cdn.example.com/a/b.png", withCDN.fileURL("a/b.png"))
}
