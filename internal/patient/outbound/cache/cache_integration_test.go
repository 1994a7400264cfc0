//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/gopatient/internal/patient/entity"
	"github.com/shandysiswandi/gopatient/internal/pkg/goerror"
	"github.com/shandysiswandi/gopatient/internal/pkg/instrument"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestCache_RoundTrip(t *testing.T) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opt, err := redis.ParseURL(uri)
	require.NoError(t, err)

	client := redis.NewClient(opt)
	t.Cleanup(func() { _ = client.Close() })

	c := NewCache(client, time.Minute, instrument.NewNoop())

	_, err = c.GetPatient(ctx, 7)
	assert.ErrorIs(t, err, goerror.ErrNotFound)

	email := "jane@example.com"
	p := entity.NewPatient(7, "Jane", "Doe", time.Date(1990, time.March, 4, 0, 0, 0, 0, time.UTC), "mrn-7", &email, nil)
	require.NoError(t, c.SetPatient(ctx, p))

	got, err := c.GetPatient(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "MRN-7", got.MedicalRecordNumber)
	assert.Equal(t, &email, got.Email)
	assert.Nil(t, got.PhoneNumber)
	assert.True(t, p.DateOfBirth.Equal(got.DateOfBirth))

	ttl, err := client.TTL(ctx, key(7)).Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)
}
