package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Memory keeps objects in a map. It backs the "memory" driver used locally and in tests.
type Memory struct {
	bucket  string
	baseURL string

	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemory returns an empty in-memory store.
func NewMemory(bucket, baseURL string) *Memory {
	if bucket == "" {
		bucket = "local"
	}
	if baseURL == "" {
		baseURL = "memory://"
	}
	return &Memory{
		bucket:  bucket,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		objects: make(map[string]memoryObject),
	}
}

// Put implements Storage.
func (m *Memory) Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Object, error) {
	if err := checkKey(ctx, key); err != nil {
		return Object{}, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return Object{}, err
	}

	sum := sha256.Sum256(data)
	m.mu.Lock()
	m.objects[key] = memoryObject{data: bytes.Clone(data), contentType: opts.ContentType}
	m.mu.Unlock()

	return Object{
		Bucket:      m.bucket,
		Key:         key,
		Size:        int64(len(data)),
		ETag:        hex.EncodeToString(sum[:16]),
		ContentType: opts.ContentType,
	}, nil
}

// SignedURL implements Storage. The link is not actually signed.
func (m *Memory) SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if err := checkKey(ctx, key); err != nil {
		return "", err
	}

	m.mu.RLock()
	_, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return "", ErrObjectNotFound
	}

	q := url.Values{}
	q.Set("expires", strconv.FormatInt(int64(expiry.Seconds()), 10))
	return m.baseURL + "/" + m.bucket + "/" + key + "?" + q.Encode(), nil
}

// Delete implements Storage.
func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := checkKey(ctx, key); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// Get returns a copy of the stored bytes.
func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return nil, false
	}
	return bytes.Clone(obj.data), true
}

// Close implements io.Closer.
func (m *Memory) Close() error {
	return nil
}
