// Package storage uploads export artifacts to an object store and hands out
// time-limited download links.
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

var (
	// ErrMissingSigner indicates signed URL support is not configured.
	ErrMissingSigner = errors.New("storage: signed url signer not configured")

	// ErrKeyRequired is returned when an object key is empty.
	ErrKeyRequired = errors.New("storage: object key is required")

	// ErrObjectNotFound is returned by the memory driver for unknown keys.
	ErrObjectNotFound = errors.New("storage: object not found")
)

// Storage is a bucket-scoped object store.
type Storage interface {
	io.Closer

	// Put uploads r under key.
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Object, error)
	// SignedURL returns a download link valid for expiry.
	SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	// Delete removes the object stored under key.
	Delete(ctx context.Context, key string) error
}

// PutOptions configures an upload.
type PutOptions struct {
	// Size is the content length, -1 or 0 when unknown.
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// Object describes a stored object.
type Object struct {
	Bucket      string
	Key         string
	Size        int64
	ETag        string
	ContentType string
}

func checkKey(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return ErrKeyRequired
	}
	return nil
}

// sizeOrUnknown maps a non-positive size to -1, which the SDKs read as "stream until EOF".
func sizeOrUnknown(size int64) int64 {
	if size <= 0 {
		return -1
	}
	return size
}
