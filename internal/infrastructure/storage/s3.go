// Package storage provides the S3-backed image store.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/cocinadelpatito/v1/internal/infrastructure/config"
	"github.com/cocinadelpatito/v1/internal/ports/outbound"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// S3ImageStore implements outbound.ImageStore on top of S3. Each user
// has a single profile image object; re-uploading overwrites it, so the
// bucket never accumulates stale avatars.
type S3ImageStore struct {
	uploader *s3manager.Uploader
	bucket   string
	region   string
	endpoint string
	logger   *zap.Logger
}

// NewS3ImageStore creates a new S3-backed image store
func NewS3ImageStore(cfg *config.Config, logger *zap.Logger) (*S3ImageStore, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.AWS.Region),
	}
	if cfg.AWS.AccessKeyID != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		)
	}
	if cfg.AWS.Endpoint != "" {
		// Custom endpoint supports MinIO and localstack in development.
		awsConfig.Endpoint = aws.String(cfg.AWS.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create aws session: %w", err)
	}

	return &S3ImageStore{
		uploader: s3manager.NewUploader(sess),
		bucket:   cfg.AWS.S3Bucket,
		region:   cfg.AWS.Region,
		endpoint: cfg.AWS.Endpoint,
		logger:   logger.Named("s3-image-store"),
	}, nil
}

var _ outbound.ImageStore = (*S3ImageStore)(nil)

// UploadProfileImage stores the image and returns its public URL.
func (s *S3ImageStore) UploadProfileImage(ctx context.Context, userID uuid.UUID, data []byte, contentType string) (string, error) {
	key := fmt.Sprintf("profile-images/%s/avatar%s", userID.String(), extensionFor(contentType))

	result, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	s.logger.Info("profile image uploaded",
		zap.String("user_id", userID.String()),
		zap.String("key", key),
		zap.Int("bytes", len(data)),
	)

	if result.Location != "" {
		return result.Location, nil
	}
	return s.publicURL(key), nil
}

func (s *S3ImageStore) publicURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.endpoint, "/"), s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

func extensionFor(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
