package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromDriver(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		opts    FactoryOptions
		wantErr error
	}{
		{name: "EmptyDriverIsMemory", driver: ""},
		{name: "Memory", driver: "MEMORY"},
		{name: "UnknownDriver", driver: "ftp", opts: FactoryOptions{Bucket: "b"}, wantErr: ErrUnknownDriver},
		{name: "RemoteWithoutBucket", driver: DriverS3, wantErr: ErrBucketRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewFromDriver(context.Background(), tt.driver, tt.opts)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			assert.IsType(t, &Memory{}, got)
		})
	}
}

func TestNewFromDriver_MinIO(t *testing.T) {
	got, err := NewFromDriver(context.Background(), DriverMinIO, FactoryOptions{
		Bucket: "exports",
		MinIO:  MinIOOptions{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"},
	})

	require.NoError(t, err)
	assert.IsType(t, &MinIO{}, got)
	assert.NoError(t, got.Close())
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("exports", "http://files.local/")

	obj, err := m.Put(ctx, "patients/a.csv", strings.NewReader("id\n1\n"), PutOptions{ContentType: "text/csv"})
	require.NoError(t, err)
	assert.Equal(t, "exports", obj.Bucket)
	assert.Equal(t, int64(5), obj.Size)
	assert.Len(t, obj.ETag, 32)

	data, ok := m.Get("patients/a.csv")
	require.True(t, ok)
	assert.Equal(t, "id\n1\n", string(data))

	link, err := m.SignedURL(ctx, "patients/a.csv", 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "http://files.local/exports/patients/a.csv?expires=900", link)

	require.NoError(t, m.Delete(ctx, "patients/a.csv"))
	_, err = m.SignedURL(ctx, "patients/a.csv", time.Minute)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestMemory_KeyAndContext(t *testing.T) {
	m := NewMemory("", "")

	_, err := m.Put(context.Background(), " ", strings.NewReader("x"), PutOptions{})
	assert.ErrorIs(t, err, ErrKeyRequired)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.Put(ctx, "k", strings.NewReader("x"), PutOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSizeOrUnknown(t *testing.T) {
	assert.Equal(t, int64(-1), sizeOrUnknown(0))
	assert.Equal(t, int64(-1), sizeOrUnknown(-5))
	assert.Equal(t, int64(10), sizeOrUnknown(10))
}
