package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shandysiswandi/gopatient/internal/patient/entity"
	"github.com/shandysiswandi/gopatient/internal/pkg/mediator"
	"github.com/shandysiswandi/gopatient/internal/pkg/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsecase_ListPatients(t *testing.T) {
	patients := []entity.Patient{
		samplePatient(1, "Ana", "Lim", "MRN-1"),
		samplePatient(2, "Bayu", "Putra", "MRN-2"),
		samplePatient(3, "Citra", "Lim", "MRN-3"),
	}

	t.Run("DefaultsWhenParamsAreEmpty", func(t *testing.T) {
		f := newFixture(t, "", patients...)

		res, err := f.uc.ListPatients(context.Background(), ListPatientsQuery{})

		require.NoError(t, err)
		assert.Equal(t, []entity.PatientListFilter{{Limit: 20}}, f.db.filters)
		assert.Len(t, res.Value().Patients, 3)
		assert.Equal(t, map[string]any{"total": int64(3), "limit": int32(20), "offset": int32(0)}, res.Value().Meta())
	})

	t.Run("PagesAndSearches", func(t *testing.T) {
		f := newFixture(t, "", patients...)

		res, err := f.uc.ListPatients(context.Background(), ListPatientsQuery{Search: " lim ", Limit: "1", Offset: "1"})

		require.NoError(t, err)
		require.Len(t, res.Value().Patients, 1)
		assert.Equal(t, "Citra", res.Value().Patients[0].FirstName)
		assert.Equal(t, int64(2), res.Value().Total)
	})

	t.Run("RepositoryError", func(t *testing.T) {
		f := newFixture(t, "")
		f.db.listErr = errors.New("boom")

		_, err := f.uc.ListPatients(context.Background(), ListPatientsQuery{})

		assert.Error(t, err)
	})
}

func TestListPatients_ThroughMediator(t *testing.T) {
	f := newFixture(t, "")

	res, err := mediator.Send[ListPatientsQuery, result.Result[ListPatientsResponse]](context.Background(), f.mediator(t),
		ListPatientsQuery{Limit: "500", Offset: "-1"})

	require.NoError(t, err)
	assert.Equal(t, []result.ValidationError{
		result.NewValidationError("limit", "must be a number between 1 and 100"),
		result.NewValidationError("offset", "must be a non-negative number"),
	}, res.ValidationErrors())
	assert.Empty(t, f.db.filters)
}
