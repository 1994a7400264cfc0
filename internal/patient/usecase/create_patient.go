package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/gopatient/internal/patient/entity"
	"github.com/shandysiswandi/gopatient/internal/pkg/goerror"
	"github.com/shandysiswandi/gopatient/internal/pkg/result"
)

type (
	CreatePatientCommand struct {
		FirstName           string  `json:"first_name" validate:"required,max=100,personname"`
		LastName            string  `json:"last_name" validate:"required,max=100,personname"`
		DateOfBirth         string  `json:"date_of_birth" validate:"required"`
		MedicalRecordNumber string  `json:"medical_record_number" validate:"required,max=50,mrn"`
		Email               *string `json:"email" validate:"omitempty,max=255,email"`
		PhoneNumber         *string `json:"phone_number" validate:"omitempty,max=20,e164"`
	}

	CreatePatientResponse PatientView
)

func (s *Usecase) CreatePatient(ctx context.Context, in CreatePatientCommand) (result.Result[CreatePatientResponse], error) {
	ctx, span := s.startSpan(ctx, "CreatePatient")
	defer span.End()

	dob, err := time.Parse(entity.DateLayout, strings.TrimSpace(in.DateOfBirth))
	if err != nil {
		return result.Invalid[CreatePatientResponse](result.NewValidationError(fieldDateOfBirth, msgDateFormat)), nil
	}

	patient := entity.NewPatient(s.uid.Generate(), in.FirstName, in.LastName, dob, in.MedicalRecordNumber, in.Email, in.PhoneNumber)
	patient.CreatedAt = s.clock.Now()

	err = s.repoDB.CreatePatient(ctx, patient)
	if errors.Is(err, goerror.ErrConflict) {
		// lost a race with a concurrent create after the uniqueness validators ran
		slog.WarnContext(ctx, "patient already exists", "medical_record_number", patient.MedicalRecordNumber)
		return result.Conflict[CreatePatientResponse]("patient with that medical record number or email already exists"), nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create patient", "medical_record_number", patient.MedicalRecordNumber, "error", err)
		return result.Result[CreatePatientResponse]{}, goerror.NewServer(err)
	}

	s.goroutine.Go(ctx, "patient.publish_registered", func(ctx context.Context) error {
		return s.repoMessaging.PublishPatientRegistered(ctx, PatientRegisteredEvent{
			PatientID:           patient.ID,
			MedicalRecordNumber: patient.MedicalRecordNumber,
			FullName:            patient.FullName(),
			RegisteredAt:        patient.CreatedAt,
		})
	})

	return result.Created(CreatePatientResponse(toView(patient))), nil
}
