package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shandysiswandi/gopatient/internal/pkg/goerror"
	"github.com/shandysiswandi/gopatient/internal/pkg/mediator"
	"github.com/shandysiswandi/gopatient/internal/pkg/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsecase_GetPatientByID(t *testing.T) {
	jane := samplePatient(1, "Jane", "Doe", "MRN-1")

	t.Run("CacheMissLoadsFromDBAndFillsCache", func(t *testing.T) {
		f := newFixture(t, "", jane)

		res, err := f.uc.GetPatientByID(context.Background(), GetPatientByIDQuery{PatientID: "1"})

		require.NoError(t, err)
		assert.Equal(t, result.StatusOk, res.Status())
		assert.Equal(t, "Jane", res.Value().FirstName)
		assert.Equal(t, "1985-07-01", res.Value().DateOfBirth)
		assert.Equal(t, 1, f.cache.sets)
	})

	t.Run("CacheHitSkipsDB", func(t *testing.T) {
		f := newFixture(t, "")
		f.cache.patients[1] = jane
		f.db.err = errors.New("must not be called")

		res, err := f.uc.GetPatientByID(context.Background(), GetPatientByIDQuery{PatientID: "1"})

		require.NoError(t, err)
		assert.Equal(t, "MRN-1", res.Value().MedicalRecordNumber)
	})

	t.Run("CacheFailureFallsBackToDB", func(t *testing.T) {
		f := newFixture(t, "", jane)
		f.cache.err = errors.New("redis down")

		res, err := f.uc.GetPatientByID(context.Background(), GetPatientByIDQuery{PatientID: "1"})

		require.NoError(t, err)
		assert.True(t, res.IsSuccess())
	})

	t.Run("NotFound", func(t *testing.T) {
		f := newFixture(t, "")

		res, err := f.uc.GetPatientByID(context.Background(), GetPatientByIDQuery{PatientID: "9"})

		require.NoError(t, err)
		assert.Equal(t, result.StatusNotFound, res.Status())
		assert.Equal(t, []string{"patient not found"}, res.Errors())
	})

	t.Run("RepositoryErrorPropagates", func(t *testing.T) {
		f := newFixture(t, "")
		f.db.err = errors.New("connection reset")

		_, err := f.uc.GetPatientByID(context.Background(), GetPatientByIDQuery{PatientID: "9"})

		var gerr *goerror.Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, goerror.TypeServer, gerr.Type())
	})

	t.Run("UnparsableIDIsInvalid", func(t *testing.T) {
		f := newFixture(t, "")

		res, err := f.uc.GetPatientByID(context.Background(), GetPatientByIDQuery{PatientID: "abc"})

		require.NoError(t, err)
		assert.Equal(t, result.StatusInvalid, res.Status())
	})
}

func TestGetPatientByID_ThroughMediator(t *testing.T) {
	send := func(t *testing.T, m *mediator.Mediator, id string) result.Result[GetPatientByIDResponse] {
		t.Helper()
		res, err := mediator.Send[GetPatientByIDQuery, result.Result[GetPatientByIDResponse]](context.Background(), m, GetPatientByIDQuery{PatientID: id})
		require.NoError(t, err)
		return res
	}

	t.Run("ZeroIsInvalid", func(t *testing.T) {
		f := newFixture(t, "")

		res := send(t, f.mediator(t), "0")

		assert.Equal(t, result.Invalid[GetPatientByIDResponse](result.NewValidationError("id", "must be a valid positive number")), res)
	})

	t.Run("EmptyReportsBothFindings", func(t *testing.T) {
		f := newFixture(t, "")

		res := send(t, f.mediator(t), "")

		assert.Equal(t, []result.ValidationError{
			result.NewValidationError("id", "must not be empty"),
			result.NewValidationError("id", "must be a valid positive number"),
		}, res.ValidationErrors())
	})

	t.Run("ExistingPatientIsOk", func(t *testing.T) {
		jane := samplePatient(1, "Jane", "Doe", "MRN-1")
		f := newFixture(t, "", jane)

		res := send(t, f.mediator(t), "1")

		assert.Equal(t, result.Success(GetPatientByIDResponse(toView(jane))), res)
	})

	t.Run("MissingPatientIsNotFound", func(t *testing.T) {
		f := newFixture(t, "")

		res := send(t, f.mediator(t), "1")

		assert.Equal(t, result.NotFound[GetPatientByIDResponse]("patient not found"), res)
	})
}
