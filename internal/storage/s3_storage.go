package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ikkim/shopfront-backend/config"
	"github.com/ikkim/shopfront-backend/pkg/logger"
)

const presignExpiry = 15 * time.Minute

type S3Storage struct {
	client  *s3.Client
	bucket  string
	region  string
	baseURL string
}

type PresignedURLResponse struct {
	UploadURL string `json:"upload_url"`
	FileURL   string `json:"file_url"`
	Key       string `json:"key"`
}

func NewS3Storage(ctx context.Context, cfg *config.S3Config) (*S3Storage, error) {
	var awsCfg aws.Config

	// Static credentials when configured, the default chain otherwise.
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		}
	} else {
		var err error
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
	}

	return newS3Storage(s3.NewFromConfig(awsCfg), cfg), nil
}

func newS3Storage(client *s3.Client, cfg *config.S3Config) *S3Storage {
	return &S3Storage{
		client:  client,
		bucket:  cfg.Bucket,
		region:  cfg.Region,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

func (s *S3Storage) Backend() string {
	return "s3"
}

// Put uploads img under products/ and returns its public URL.
func (s *S3Storage) Put(ctx context.Context, img Image) (string, error) {
	key := objectKey("products", img.Filename, img.ContentType)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        img.Body,
		ContentType: aws.String(img.ContentType),
	}
	if img.Size > 0 {
		input.ContentLength = aws.Int64(img.Size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		logger.Error("Failed to upload object to S3", err, map[string]interface{}{
			"bucket": s.bucket,
			"key":    key,
		})
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	logger.Debug("Object uploaded to S3", map[string]interface{}{
		"bucket": s.bucket,
		"key":    key,
	})
	return s.fileURL(key), nil
}

// GeneratePresignedURL returns a PUT URL valid for 15 minutes for a new
// object in folder.
func (s *S3Storage) GeneratePresignedURL(ctx context.Context, filename, contentType, folder string) (*PresignedURLResponse, error) {
	key := objectKey(folder, filename, contentType)

	presignClient := s3.NewPresignClient(s.client)
	presignedReq, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return &PresignedURLResponse{
		UploadURL: presignedReq.URL,
		FileURL:   s.fileURL(key),
		Key:       key,
	}, nil
}

func (s *S3Storage) fileURL(key string) string {
	if s.baseURL != "" {
		return fmt.Sprintf("%s/%s", s.baseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
