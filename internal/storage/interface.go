package storage

import (
	"context"
	"time"
)

// Transfer is an intra-bucket or cross-bucket copy instruction.
type Transfer struct {
	Source      string
	Destination string
}

// Provider is the object-store contract the upload lifecycle depends on.
// All operations are hard failures to the caller; no retries happen here.
type Provider interface {
	// PresignPutObject returns a time-limited URL for a direct client PUT to
	// the given key, bound to the content type.
	PresignPutObject(ctx context.Context, bucket, key, contentType string, expires time.Duration) (string, error)

	// EmptyDirectory deletes every object under prefix. Missing prefix is a no-op.
	EmptyDirectory(ctx context.Context, bucket, prefix string) error

	// DeleteMany deletes the given keys. Keys may be bare or full public URLs.
	// Deleting a non-existent key is not an error.
	DeleteMany(ctx context.Context, bucket string, keys []string) error

	// CopyMany verifies every source exists, then performs all copies within
	// bucket. A missing source fails the whole batch with ErrSourceNotFound
	// before any copy starts.
	CopyMany(ctx context.Context, bucket string, transfers []Transfer) error

	// CopyManyCrossBucket is CopyMany with distinct source and destination buckets.
	CopyManyCrossBucket(ctx context.Context, srcBucket, dstBucket string, transfers []Transfer) error

	// GetText fetches an object and decodes its full content as text.
	GetText(ctx context.Context, bucket, key string) (string, error)

	// PutObject stores body under key. publicRead controls object visibility;
	// content disposition follows the image/attachment rule.
	PutObject(ctx context.Context, bucket, key, contentType string, body []byte, publicRead bool) error

	// HeadObject reports whether key exists.
	HeadObject(ctx context.Context, bucket, key string) (bool, error)
}
