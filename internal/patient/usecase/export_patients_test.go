package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/gopatient/internal/patient/entity"
	"github.com/shandysiswandi/gopatient/internal/pkg/mediator"
	"github.com/shandysiswandi/gopatient/internal/pkg/result"
	"github.com/shandysiswandi/gopatient/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exportConfig = `
modules:
  patient:
    export:
      prefix: /reports/
      url_expiry: 5m
`

func TestUsecase_ExportPatients(t *testing.T) {
	phone := "+6281111"
	withPhone := samplePatient(2, "Budi", "Santoso", "MRN-2")
	withPhone.PhoneNumber = &phone
	patients := []entity.Patient{samplePatient(1, "Ana", "Lim", "MRN-1"), withPhone}

	t.Run("CSV", func(t *testing.T) {
		f := newFixture(t, exportConfig, patients...)

		res, err := f.uc.ExportPatients(context.Background(), ExportPatientsCommand{})

		require.NoError(t, err)
		require.Equal(t, result.StatusOk, res.Status())
		got := res.Value()
		assert.Equal(t, "csv", got.Format)
		assert.Equal(t, 2, got.Count)
		assert.Equal(t, "reports/20240510T090000Z-101.csv", got.Key)
		assert.Equal(t, "http://files.test/exports/reports/20240510T090000Z-101.csv?expires=300", got.URL)
		assert.Equal(t, testNow.Add(5*time.Minute), got.ExpiresAt)

		data, ok := f.store.(*storage.Memory).Get(got.Key)
		require.True(t, ok)
		assert.Equal(t, strings.Join([]string{
			"id,first_name,last_name,date_of_birth,medical_record_number,email,phone_number",
			"1,Ana,Lim,1985-07-01,MRN-1,ana@example.com,",
			"2,Budi,Santoso,1985-07-01,MRN-2,budi@example.com,+6281111",
			"",
		}, "\n"), string(data))
	})

	t.Run("JSON", func(t *testing.T) {
		f := newFixture(t, "", patients...)

		res, err := f.uc.ExportPatients(context.Background(), ExportPatientsCommand{Format: "JSON"})

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(res.Value().Key, "exports/patients/"))
		data, ok := f.store.(*storage.Memory).Get(res.Value().Key)
		require.True(t, ok)

		var views []PatientView
		require.NoError(t, json.Unmarshal(data, &views))
		assert.Equal(t, []PatientView{toView(patients[0]), toView(patients[1])}, views)
	})

	t.Run("EmptyTable", func(t *testing.T) {
		f := newFixture(t, "")

		res, err := f.uc.ExportPatients(context.Background(), ExportPatientsCommand{Format: "json"})

		require.NoError(t, err)
		data, _ := f.store.(*storage.Memory).Get(res.Value().Key)
		assert.JSONEq(t, `[]`, string(data))
	})

	t.Run("StorageFailureIsUnavailable", func(t *testing.T) {
		f := newFixture(t, "", patients...)
		f.uc.storage = failingStorage{}

		res, err := f.uc.ExportPatients(context.Background(), ExportPatientsCommand{})

		require.NoError(t, err)
		assert.Equal(t, result.StatusUnavailable, res.Status())
	})

	t.Run("RepositoryError", func(t *testing.T) {
		f := newFixture(t, "")
		f.db.listErr = errors.New("boom")

		_, err := f.uc.ExportPatients(context.Background(), ExportPatientsCommand{})

		assert.Error(t, err)
	})
}

func TestUsecase_CollectPatientsPages(t *testing.T) {
	patients := make([]entity.Patient, 0, 2_500)
	for i := range 2_500 {
		patients = append(patients, entity.Patient{ID: int64(i + 1)})
	}
	f := newFixture(t, "", patients...)

	got, err := f.uc.collectPatients(context.Background())

	require.NoError(t, err)
	assert.Len(t, got, 2_500)
	assert.Equal(t, []int32{0, 1_000, 2_000}, []int32{f.db.filters[0].Offset, f.db.filters[1].Offset, f.db.filters[2].Offset})
}

func TestExportPatients_ThroughMediator(t *testing.T) {
	f := newFixture(t, "")

	res, err := mediator.Send[ExportPatientsCommand, result.Result[ExportPatientsResponse]](context.Background(), f.mediator(t),
		ExportPatientsCommand{Format: "xlsx"})

	require.NoError(t, err)
	assert.Equal(t, result.Invalid[ExportPatientsResponse](result.NewValidationError("format", "must be one of: csv, json")), res)
}
