package storage

import (
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIO implements Storage on a MinIO server.
type MinIO struct {
	bucket string
	client *minio.Client
}

// MinIOOptions configures the MinIO client.
type MinIOOptions struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	SessionToken string
	Region       string
	UseSSL       bool
}

// NewMinIO constructs a MinIO store. No connection is made until the first call.
func NewMinIO(bucket string, opts MinIOOptions) (*MinIO, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, opts.SessionToken),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, err
	}
	return &MinIO{bucket: bucket, client: client}, nil
}

// Put implements Storage.
func (m *MinIO) Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Object, error) {
	if err := checkKey(ctx, key); err != nil {
		return Object{}, err
	}

	info, err := m.client.PutObject(ctx, m.bucket, key, r, sizeOrUnknown(opts.Size), minio.PutObjectOptions{
		ContentType:  opts.ContentType,
		UserMetadata: opts.Metadata,
	})
	if err != nil {
		return Object{}, err
	}

	return Object{
		Bucket:      m.bucket,
		Key:         key,
		Size:        info.Size,
		ETag:        info.ETag,
		ContentType: opts.ContentType,
	}, nil
}

// SignedURL implements Storage.
func (m *MinIO) SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if err := checkKey(ctx, key); err != nil {
		return "", err
	}

	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, expiry, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// Delete implements Storage.
func (m *MinIO) Delete(ctx context.Context, key string) error {
	if err := checkKey(ctx, key); err != nil {
		return err
	}
	return m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
}

// Close implements io.Closer.
func (m *MinIO) Close() error {
	return nil
}
