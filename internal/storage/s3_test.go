package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/config"
)

func testConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Bucket:       "market-images",
		Region:       "us-east-1",
		Endpoint:     "http://localhost:9000",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		UsePathStyle: true,
		PresignTTL:   5 * time.Minute,
	}
}

func TestNewS3ImageStorage_Validation(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3ImageStorage(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		cfg := testConfig()
		cfg.Bucket = ""
		_, err := NewS3ImageStorage(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("missing credentials returns error", func(t *testing.T) {
		cfg := testConfig()
		cfg.SecretKey = ""
		_, err := NewS3ImageStorage(cfg)
		require.Error(t, err)
	})
}

func TestCreateUpload(t *testing.T) {
	s, err := NewS3ImageStorage(testConfig(), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	up, err := s.CreateUpload(context.Background(), "product", "seller-1", "image/PNG")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(up.Key, "product/seller-1/"))
	assert.True(t, strings.HasSuffix(up.Key, ".png"))
	assert.Contains(t, up.UploadURL, "localhost:9000/market-images/"+up.Key)
	assert.Contains(t, up.UploadURL, "X-Amz-Signature=")
	assert.Equal(t, "http://localhost:9000/market-images/"+up.Key, up.ImageURL)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), up.ExpiresAt, 5*time.Second)

	other, err := s.CreateUpload(context.Background(), "avatar", "seller-1", "image/jpeg")
	require.NoError(t, err)
	assert.NotEqual(t, up.Key, other.Key)
	assert.True(t, strings.HasSuffix(other.Key, ".jpg"))
}

func TestCreateUpload_Rejects(t *testing.T) {
	s, err := NewS3ImageStorage(testConfig())
	require.NoError(t, err)

	_, err = s.CreateUpload(context.Background(), "product", "u", "application/pdf")
	assert.True(t, errors.Is(err, ErrUnsupportedType))

	_, err = s.CreateUpload(context.Background(), "banner", "u", "image/png")
	assert.True(t, errors.Is(err, ErrUnknownKind))
}

func TestPublicBaseURL(t *testing.T) {
	cfg := testConfig()
	cfg.PublicBaseURL = "https://cdn.example.com/"
	s, err := NewS3ImageStorage(cfg)
	require.NoError(t, err)

	up, err := s.CreateUpload(context.Background(), "avatar", "u1", "image/webp")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/"+up.Key, up.ImageURL)
}
