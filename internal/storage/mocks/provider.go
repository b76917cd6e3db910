package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/makerloft/craftfolio-backend/internal/storage"
)

// Provider is a testify mock of storage.Provider.
type Provider struct {
	mock.Mock
}

func (m *Provider) PresignPutObject(ctx context.Context, bucket, key, contentType string, expires time.Duration) (string, error) {
	args := m.Called(ctx, bucket, key, contentType, expires)
	return args.String(0), args.Error(1)
}

func (m *Provider) EmptyDirectory(ctx context.Context, bucket, prefix string) error {
	args := m.Called(ctx, bucket, prefix)
	return args.Error(0)
}

func (m *Provider) DeleteMany(ctx context.Context, bucket string, keys []string) error {
	args := m.Called(ctx, bucket, keys)
	return args.Error(0)
}

func (m *Provider) CopyMany(ctx context.Context, bucket string, transfers []storage.Transfer) error {
	args := m.Called(ctx, bucket, transfers)
	return args.Error(0)
}

func (m *Provider) CopyManyCrossBucket(ctx context.Context, srcBucket, dstBucket string, transfers []storage.Transfer) error {
	args := m.Called(ctx, srcBucket, dstBucket, transfers)
	return args.Error(0)
}

func (m *Provider) GetText(ctx context.Context, bucket, key string) (string, error) {
	args := m.Called(ctx, bucket, key)
	return args.String(0), args.Error(1)
}

func (m *Provider) PutObject(ctx context.Context, bucket, key, contentType string, body []byte, publicRead bool) error {
	args := m.Called(ctx, bucket, key, contentType, body, publicRead)
	return args.Error(0)
}

func (m *Provider) HeadObject(ctx context.Context, bucket, key string) (bool, error) {
	args := m.Called(ctx, bucket, key)
	return args.Bool(0), args.Error(1)
}
