package s3

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/mediagate/mediagate/pkg/gateerrors"
	"github.com/mediagate/mediagate/pkg/types"
)

// Backend implements the object store collaborator on top of S3
type Backend struct {
	bucket string
	config *Config
	pool   *ConnectionPool
	logger *slog.Logger

	// Metrics
	mu      sync.RWMutex
	metrics BackendMetrics
}

// NewBackend creates a new S3 backend instance
func NewBackend(ctx context.Context, bucket string, cfg *Config, logger *slog.Logger) (*Backend, error) {
	if bucket == "" {
		return nil, gateerrors.New(gateerrors.ErrCodeInvalidConfig, "bucket name cannot be empty").
			WithComponent("s3")
	}

	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
		config.WithRetryMaxAttempts(cfg.MaxRetries),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, gateerrors.Wrap(err, gateerrors.ErrCodeConfigLoad, "failed to load AWS config").
			WithComponent("s3")
	}

	factory := func() (*s3.Client, error) {
		return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			if cfg.ForcePathStyle {
				o.UsePathStyle = true
			}
		}), nil
	}

	pool, err := NewConnectionPool(cfg.PoolSize, factory)
	if err != nil {
		return nil, gateerrors.Wrap(err, gateerrors.ErrCodeInternalError, "failed to create connection pool").
			WithComponent("s3")
	}

	backend := &Backend{
		bucket: bucket,
		config: cfg,
		pool:   pool,
		logger: logger,
	}

	return backend, nil
}

// Fetch retrieves an object, or a byte range of it, as a stream. The
// caller owns the returned body and must close it.
func (b *Backend) Fetch(ctx context.Context, key string, rng *types.ByteRange) (*types.Object, error) {
	start := time.Now()

	input := &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	}
	if rng != nil {
		input.Range = aws.String(rng.Header())
	}

	client := b.pool.Get()
	if client == nil {
		b.recordMetrics(time.Since(start), true)
		return nil, gateerrors.New(gateerrors.ErrCodeUpstreamError, "no client available").
			WithComponent("s3").WithOperation("GetObject")
	}
	defer b.pool.Put(client)

	result, err := client.GetObject(ctx, input)
	if err != nil {
		b.recordMetrics(time.Since(start), true)
		b.recordError(err)
		return nil, b.translateError(err, "GetObject", key)
	}

	obj := &types.Object{
		Body:          result.Body,
		ContentLength: aws.ToInt64(result.ContentLength),
		TotalLength:   aws.ToInt64(result.ContentLength),
		ContentRange:  aws.ToString(result.ContentRange),
		ETag:          aws.ToString(result.ETag),
		LastModified:  aws.ToTime(result.LastModified),
	}

	// On a 206 the total size comes from the Content-Range suffix, not
	// Content-Length.
	if obj.ContentRange != "" {
		if total, ok := parseContentRangeTotal(obj.ContentRange); ok {
			obj.TotalLength = total
		}
	}

	b.recordMetrics(time.Since(start), false)
	b.recordBytes(obj.ContentLength)

	b.logger.Debug("object fetched",
		"key", key,
		"ranged", rng != nil,
		"content_length", obj.ContentLength)

	return obj, nil
}

// HealthCheck verifies the bucket is reachable
func (b *Backend) HealthCheck(ctx context.Context) error {
	client := b.pool.Get()
	if client == nil {
		return gateerrors.New(gateerrors.ErrCodeUpstreamError, "no client available").
			WithComponent("s3").WithOperation("HeadBucket")
	}
	defer b.pool.Put(client)

	_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(b.bucket),
	})
	if err != nil {
		return b.translateError(err, "HeadBucket", b.bucket)
	}
	return nil
}

// Metrics returns a copy of the backend metrics
func (b *Backend) Metrics() BackendMetrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.metrics
}

// Close releases the connection pool
func (b *Backend) Close() error {
	return b.pool.Close()
}

func (b *Backend) recordMetrics(duration time.Duration, isError bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.metrics.Requests++
	if isError {
		b.metrics.Errors++
	}

	// Rolling average over the last ~10 requests
	if b.metrics.AverageLatency == 0 {
		b.metrics.AverageLatency = duration
	} else {
		b.metrics.AverageLatency = time.Duration(
			(int64(b.metrics.AverageLatency)*9 + int64(duration)) / 10)
	}
}

func (b *Backend) recordBytes(n int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.metrics.BytesFetched += n
}

func (b *Backend) recordError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.metrics.LastError = err.Error()
	b.metrics.LastErrorTime = time.Now()
}

func (b *Backend) translateError(err error, operation, key string) error {
	switch {
	case isErrorType[*s3types.NoSuchKey](err):
		return gateerrors.Wrap(err, gateerrors.ErrCodeObjectNotFound, "object not found: "+key).
			WithComponent("s3").WithOperation(operation)
	case isErrorType[*s3types.NotFound](err):
		return gateerrors.Wrap(err, gateerrors.ErrCodeObjectNotFound, "not found: "+key).
			WithComponent("s3").WithOperation(operation)
	case apiErrorCode(err) == "InvalidRange":
		return gateerrors.Wrap(err, gateerrors.ErrCodeRangeUnsatisfiable, "range not satisfiable for "+key).
			WithComponent("s3").WithOperation(operation)
	case isErrorType[*s3types.NoSuchBucket](err):
		return gateerrors.Wrap(err, gateerrors.ErrCodeUpstreamError, "bucket not found: "+b.bucket).
			WithComponent("s3").WithOperation(operation)
	default:
		return gateerrors.Wrap(err, gateerrors.ErrCodeUpstreamError, operation+" failed for "+key).
			WithComponent("s3").WithOperation(operation)
	}
}

// isErrorType checks if an error is of a specific type
func isErrorType[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

// apiErrorCode extracts the service error code, if present.
func apiErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
