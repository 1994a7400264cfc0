package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	// DriverMemory keeps objects in process memory.
	DriverMemory = "memory"
	// DriverS3 selects the AWS S3 backend.
	DriverS3 = "s3"
	// DriverGCS selects the Google Cloud Storage backend.
	DriverGCS = "gcs"
	// DriverMinIO selects the MinIO backend.
	DriverMinIO = "minio"
)

var (
	// ErrUnknownDriver indicates an unsupported storage driver.
	ErrUnknownDriver = errors.New("storage: unknown driver")

	// ErrBucketRequired is returned when a remote driver has no bucket configured.
	ErrBucketRequired = errors.New("storage: bucket is required")
)

// FactoryOptions groups configuration for storage drivers.
type FactoryOptions struct {
	Bucket string
	// BaseURL prefixes links produced by the memory driver.
	BaseURL string

	S3    S3Options
	GCS   GCSOptions
	MinIO MinIOOptions
}

// NewFromDriver constructs a Storage implementation by driver name.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Storage, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver != DriverMemory && driver != "" && strings.TrimSpace(opts.Bucket) == "" {
		return nil, ErrBucketRequired
	}

	switch driver {
	case DriverMemory, "":
		return NewMemory(opts.Bucket, opts.BaseURL), nil
	case DriverS3:
		return NewS3(ctx, opts.Bucket, opts.S3)
	case DriverGCS:
		return NewGCS(ctx, opts.Bucket, opts.GCS)
	case DriverMinIO:
		return NewMinIO(opts.Bucket, opts.MinIO)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
