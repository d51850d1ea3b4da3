// Package storage hands out presigned upload URLs for listing images and
// avatars on S3 compatible object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/config"
)

var (
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrUnknownKind     = errors.New("unknown image kind")
)

// allowedTypes maps accepted content types to object key extensions.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Upload is a presigned PUT plus the URL the object will be readable at.
type Upload struct {
	UploadURL string
	ImageURL  string
	Key       string
	ExpiresAt time.Time
}

// S3ImageStorage signs uploads into a single bucket under
// <kind>/<owner>/<uuid><ext>.
type S3ImageStorage struct {
	presign           *s3.PresignClient
	bucket            string
	publicBase        string
	presignExpiration time.Duration
	logger            *zap.Logger
}

// S3ImageStorageOption is a functional option for configuring S3ImageStorage
type S3ImageStorageOption func(*S3ImageStorage)

// WithLogger sets a custom logger for S3ImageStorage
func WithLogger(logger *zap.Logger) S3ImageStorageOption {
	return func(s *S3ImageStorage) {
		s.logger = logger
	}
}

// NewS3ImageStorage creates the storage from configuration. Signing is
// local, so no request reaches the endpoint here.
func NewS3ImageStorage(cfg *config.StorageConfig, opts ...S3ImageStorageOption) (*S3ImageStorage, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("storage access key and secret key are required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	if endpoint != "" {
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid storage endpoint: %w", err)
		}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	publicBase := strings.TrimRight(cfg.PublicBaseURL, "/")
	if publicBase == "" {
		switch {
		case endpoint != "":
			publicBase = endpoint + "/" + cfg.Bucket
		default:
			publicBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, region)
		}
	}

	s := &S3ImageStorage{
		presign:           s3.NewPresignClient(client),
		bucket:            cfg.Bucket,
		publicBase:        publicBase,
		presignExpiration: cfg.PresignTTL,
		logger:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.presignExpiration == 0 {
		s.presignExpiration = 15 * time.Minute
	}
	return s, nil
}

// CreateUpload signs a PUT for a new image owned by ownerID.
func (s *S3ImageStorage) CreateUpload(ctx context.Context, kind, ownerID, contentType string) (*Upload, error) {
	if kind != "product" && kind != "avatar" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	ext, ok := allowedTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}

	key := fmt.Sprintf("%s/%s/%s%s", kind, ownerID, uuid.NewString(), ext)
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.presignExpiration))
	if err != nil {
		s.logger.Error("failed to presign upload", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	return &Upload{
		UploadURL: req.URL,
		ImageURL:  s.publicBase + "/" + key,
		Key:       key,
		ExpiresAt: time.Now().Add(s.presignExpiration),
	}, nil
}
