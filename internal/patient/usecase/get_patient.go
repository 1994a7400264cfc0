package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/gopatient/internal/pkg/goerror"
	"github.com/shandysiswandi/gopatient/internal/pkg/result"
)

type (
	// GetPatientByIDQuery carries the raw path value; validators parse it.
	GetPatientByIDQuery struct {
		PatientID string
	}

	GetPatientByIDResponse PatientView
)

func (s *Usecase) GetPatientByID(ctx context.Context, in GetPatientByIDQuery) (result.Result[GetPatientByIDResponse], error) {
	ctx, span := s.startSpan(ctx, "GetPatientByID")
	defer span.End()

	id, ok := parsePositiveID(in.PatientID)
	if !ok {
		return result.Invalid[GetPatientByIDResponse](result.NewValidationError(fieldID, msgPositiveNumber)), nil
	}

	cached, err := s.repoCache.GetPatient(ctx, id)
	if err == nil {
		return result.Success(GetPatientByIDResponse(toView(*cached))), nil
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "failed to read patient from cache", "patient_id", id, "error", err)
	}

	patient, err := s.repoDB.GetPatientByID(ctx, id)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "patient not found", "patient_id", id)
		return result.NotFound[GetPatientByIDResponse]("patient not found"), nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get patient by id", "patient_id", id, "error", err)
		return result.Result[GetPatientByIDResponse]{}, goerror.NewServer(err)
	}

	if err := s.repoCache.SetPatient(ctx, *patient); err != nil {
		slog.WarnContext(ctx, "failed to write patient to cache", "patient_id", id, "error", err)
	}

	return result.Success(GetPatientByIDResponse(toView(*patient))), nil
}
