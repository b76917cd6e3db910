package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/sync/errgroup"

	"github.com/makerloft/craftfolio-backend/internal/config"
)

// ErrSourceNotFound marks a batch copy whose source object does not exist.
// Callers use it to tell "object never got uploaded" apart from transient
// store errors.
var ErrSourceNotFound = errors.New("source object not found")

// deleteBatchSize is the S3 DeleteObjects per-request limit.
const deleteBatchSize = 1000

// copyConcurrency bounds the fan-out of head checks and copies in a batch.
const copyConcurrency = 8

// Client wraps the S3 client for the user-data bucket.
type Client struct {
	s3Client      *s3.Client
	presignClient *s3.PresignClient
	publicBaseURL string
	endpoint      string
}

// NewClient builds the S3 client from static credentials.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	accessKey := cfg.AWSAccessKeyID
	secretKey := cfg.AWSSecretAccessKey
	endpoint := cfg.S3Endpoint
	region := "ru-central1"

	if accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("AWS credentials must be set")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
	presignClient := s3.NewPresignClient(client)

	return &Client{
		s3Client:      client,
		presignClient: presignClient,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		endpoint:      endpoint,
	}, nil
}

// NormalizeKey strips the public URL host prefix if present, so callers may
// pass bare keys and full public URLs interchangeably.
func (c *Client) NormalizeKey(key string) string {
	if c.publicBaseURL != "" && strings.HasPrefix(key, c.publicBaseURL) {
		key = strings.TrimPrefix(key, c.publicBaseURL)
	}
	return strings.TrimPrefix(key, "/")
}

// PresignPutObject generates a pre-signed upload URL scoped to the exact key.
func (c *Client) PresignPutObject(ctx context.Context, bucket, key, contentType string, expires time.Duration) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:             aws.String(bucket),
		Key:                aws.String(key),
		ContentType:        aws.String(contentType),
		ContentDisposition: aws.String(contentDisposition(contentType)),
	}

	req, err := c.presignClient.PresignPutObject(ctx, input, func(opts *s3.PresignOptions) {
		opts.Expires = expires
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign put for %s: %w", key, err)
	}

	return req.URL, nil
}

// EmptyDirectory lists every object under prefix and deletes them in batches.
// Returns normally if nothing matches.
func (c *Client) EmptyDirectory(ctx context.Context, bucket, prefix string) error {
	var continuation *string
	for {
		page, err := c.s3Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: continuation,
		})
		if err != nil {
			return fmt.Errorf("failed to list objects under %s: %w", prefix, err)
		}

		keys := make([]string, 0, len(page.Contents))
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		if len(keys) > 0 {
			if err := c.deleteBatch(ctx, bucket, keys); err != nil {
				return err
			}
		}

		if !aws.ToBool(page.IsTruncated) {
			return nil
		}
		continuation = page.NextContinuationToken
	}
}

// DeleteMany deletes every key given. Keys are normalized first; deleting a
// non-existent key is not an error.
func (c *Client) DeleteMany(ctx context.Context, bucket string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(keys))
	for _, key := range keys {
		if key = c.NormalizeKey(key); key != "" {
			normalized = append(normalized, key)
		}
	}

	for start := 0; start < len(normalized); start += deleteBatchSize {
		end := start + deleteBatchSize
		if end > len(normalized) {
			end = len(normalized)
		}
		if err := c.deleteBatch(ctx, bucket, normalized[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) deleteBatch(ctx context.Context, bucket string, keys []string) error {
	objects := make([]types.ObjectIdentifier, len(keys))
	for i, key := range keys {
		objects[i] = types.ObjectIdentifier{Key: aws.String(key)}
	}

	_, err := c.s3Client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(bucket),
		Delete: &types.Delete{
			Objects: objects,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete %d objects: %w", len(keys), err)
	}
	return nil
}

// CopyMany performs an intra-bucket batch copy. Every source is head-checked
// before any copy begins; a missing source fails the whole batch with
// ErrSourceNotFound and nothing is copied.
func (c *Client) CopyMany(ctx context.Context, bucket string, transfers []Transfer) error {
	return c.copyBatch(ctx, bucket, bucket, transfers)
}

// CopyManyCrossBucket is CopyMany across two buckets.
func (c *Client) CopyManyCrossBucket(ctx context.Context, srcBucket, dstBucket string, transfers []Transfer) error {
	return c.copyBatch(ctx, srcBucket, dstBucket, transfers)
}

func (c *Client) copyBatch(ctx context.Context, srcBucket, dstBucket string, transfers []Transfer) error {
	if len(transfers) == 0 {
		return nil
	}

	// Phase one: confirm every source exists. No copy may start before the
	// whole batch is verified.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(copyConcurrency)
	for _, t := range transfers {
		t := t
		g.Go(func() error {
			exists, err := c.HeadObject(gctx, srcBucket, t.Source)
			if err != nil {
				return fmt.Errorf("failed to check source %s: %w", t.Source, err)
			}
			if !exists {
				return fmt.Errorf("%w: %s", ErrSourceNotFound, t.Source)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Phase two: copies are independent and may run concurrently.
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(copyConcurrency)
	for _, t := range transfers {
		t := t
		g.Go(func() error {
			copySource := url.PathEscape(srcBucket + "/" + t.Source)
			_, err := c.s3Client.CopyObject(gctx, &s3.CopyObjectInput{
				Bucket:     aws.String(dstBucket),
				CopySource: aws.String(copySource),
				Key:        aws.String(t.Destination),
			})
			if err != nil {
				return fmt.Errorf("failed to copy %s to %s: %w", t.Source, t.Destination, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// GetText fetches an object and returns its content decoded as text. Meant
// for small text documents, not a streaming contract.
func (c *Client) GetText(ctx context.Context, bucket, key string) (string, error) {
	resp, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(c.NormalizeKey(key)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return string(data), nil
}

// PutObject stores body under key with optional public-read visibility.
func (c *Client) PutObject(ctx context.Context, bucket, key, contentType string, body []byte, publicRead bool) error {
	input := &s3.PutObjectInput{
		Bucket:             aws.String(bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(body),
		ContentType:        aws.String(contentType),
		ContentDisposition: aws.String(contentDisposition(contentType)),
	}
	if publicRead {
		input.ACL = types.ObjectCannedACLPublicRead
	}

	_, err := c.s3Client.PutObject(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return nil
}

// HeadObject reports whether key exists in bucket.
func (c *Client) HeadObject(ctx context.Context, bucket, key string) (bool, error) {
	_, err := c.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// contentDisposition selects inline rendering for images and forces a
// download for everything else.
func contentDisposition(contentType string) string {
	if strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return "inline"
	}
	return "attachment"
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noSuchKey *types.NoSuchKey
	return errors.As(err, &noSuchKey)
}
