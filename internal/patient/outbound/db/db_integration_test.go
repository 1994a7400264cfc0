//go:build integration

package db

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/gopatient/internal/patient/entity"
	"github.com/shandysiswandi/gopatient/internal/pkg/goerror"
	"github.com/shandysiswandi/gopatient/internal/pkg/instrument"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("gopatient"),
		postgres.WithUsername("gopatient"),
		postgres.WithPassword("gopatient"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, Migrate(ctx, pool))
	require.NoError(t, Migrate(ctx, pool), "migrations must be re-runnable")

	return NewDB(pool, instrument.NewNoop())
}

func patient(id int64, first, last, mrn, email string) entity.Patient {
	p := entity.NewPatient(id, first, last, time.Date(1990, time.January, 2, 0, 0, 0, 0, time.UTC), mrn, &email, nil)
	p.CreatedAt = time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	return p
}

func TestDB_Patients(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	count, err := s.CountPatients(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	jane := patient(1, "Jane", "Doe", "MRN-1", "jane@example.com")
	require.NoError(t, s.CreatePatient(ctx, jane))

	t.Run("GetByID", func(t *testing.T) {
		got, err := s.GetPatientByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, jane.MedicalRecordNumber, got.MedicalRecordNumber)
		assert.True(t, jane.DateOfBirth.Equal(got.DateOfBirth))
		assert.Nil(t, got.PhoneNumber)

		_, err = s.GetPatientByID(ctx, 404)
		assert.ErrorIs(t, err, goerror.ErrNotFound)
	})

	t.Run("UniqueConstraints", func(t *testing.T) {
		err := s.CreatePatient(ctx, patient(2, "Other", "Doe", "MRN-1", "other@example.com"))
		assert.ErrorIs(t, err, goerror.ErrConflict)

		err = s.CreatePatient(ctx, patient(3, "Other", "Doe", "MRN-3", "JANE@example.com"))
		assert.ErrorIs(t, err, goerror.ErrConflict)
	})

	t.Run("Exists", func(t *testing.T) {
		ok, err := s.ExistsPatientByMRN(ctx, "MRN-1")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.ExistsPatientByEmail(ctx, "Jane@Example.com")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.ExistsPatientByMRN(ctx, "MRN-404")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("BulkAndList", func(t *testing.T) {
		n, err := s.CreatePatients(ctx, []entity.Patient{
			patient(10, "Ana", "Lim", "MRN-10", "ana@example.com"),
			patient(11, "Budi", "Lim", "MRN-11", "budi@example.com"),
			patient(12, "Citra", "Zed", "MRN-12", "citra@example.com"),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		all, total, err := s.ListPatients(ctx, entity.PatientListFilter{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		assert.Equal(t, []int64{1, 10, 11, 12}, []int64{all[0].ID, all[1].ID, all[2].ID, all[3].ID})

		page, total, err := s.ListPatients(ctx, entity.PatientListFilter{Search: "lim", Limit: 1, Offset: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, page, 1)
		assert.Equal(t, "Budi", page[0].FirstName)

		_, total, err = s.ListPatients(ctx, entity.PatientListFilter{Search: "%", Limit: 10})
		require.NoError(t, err)
		assert.Zero(t, total)
	})
}
