package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samber/lo"
	"github.com/shandysiswandi/gopatient/internal/patient/entity"
	"github.com/shandysiswandi/gopatient/internal/pkg/mediator"
	"github.com/shandysiswandi/gopatient/internal/pkg/result"
	"github.com/shandysiswandi/gopatient/internal/pkg/validator"
)

const (
	fieldID                  = "id"
	fieldDateOfBirth         = "date_of_birth"
	fieldMedicalRecordNumber = "medical_record_number"
	fieldEmail               = "email"
	fieldLimit               = "limit"
	fieldOffset              = "offset"
	fieldSearch              = "search"
	fieldFormat              = "format"

	msgNotEmpty       = "must not be empty"
	msgPositiveNumber = "must be a valid positive number"
	msgDateFormat     = "must be a valid date in YYYY-MM-DD format"
	msgDateInFuture   = "must not be in the future"
	msgDateTooOld     = "must not be before 1900-01-01"
	msgMRNTaken       = "medical record number is already registered"
	msgEmailTaken     = "email is already registered"
	msgLimitRange     = "must be a number between 1 and 100"
	msgOffsetRange    = "must be a non-negative number"
	msgSearchLength   = "must be at most 100 characters"
	msgFormat         = "must be one of: csv, json"
)

var minDateOfBirth = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

func (s *Usecase) registerValidators(reg *mediator.Registry, checker validator.Checker) {
	mediator.AddValidators[GetPatientByIDQuery](reg,
		mediator.ValidatorFunc[GetPatientByIDQuery](validatePatientID),
	)

	mediator.AddValidators[CreatePatientCommand](reg,
		mediator.StructRules[CreatePatientCommand](checker),
		mediator.ValidatorFunc[CreatePatientCommand](s.validateDateOfBirth),
		mediator.ValidatorFunc[CreatePatientCommand](s.validateUniqueMRN),
		mediator.ValidatorFunc[CreatePatientCommand](s.validateUniqueEmail),
	)

	mediator.AddValidators[ListPatientsQuery](reg,
		mediator.ValidatorFunc[ListPatientsQuery](validateListParams),
	)

	mediator.AddValidators[ExportPatientsCommand](reg,
		mediator.ValidatorFunc[ExportPatientsCommand](validateExportFormat),
	)
}

// validatePatientID reports both findings for an empty id, as an empty value is
// not a positive number either.
func validatePatientID(ctx context.Context, q GetPatientByIDQuery) ([]result.ValidationError, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	findings := []result.ValidationError{}
	if strings.TrimSpace(q.PatientID) == "" {
		findings = append(findings, result.NewValidationError(fieldID, msgNotEmpty))
	}
	if _, ok := parsePositiveID(q.PatientID); !ok {
		findings = append(findings, result.NewValidationError(fieldID, msgPositiveNumber))
	}
	return findings, nil
}

// validateDateOfBirth leaves the empty case to the struct rules.
func (s *Usecase) validateDateOfBirth(ctx context.Context, c CreatePatientCommand) ([]result.ValidationError, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw := strings.TrimSpace(c.DateOfBirth)
	if raw == "" {
		return []result.ValidationError{}, nil
	}

	dob, err := time.Parse(entity.DateLayout, raw)
	if err != nil {
		return []result.ValidationError{result.NewValidationError(fieldDateOfBirth, msgDateFormat)}, nil
	}

	now := s.clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch {
	case dob.After(today):
		return []result.ValidationError{result.NewValidationError(fieldDateOfBirth, msgDateInFuture)}, nil
	case dob.Before(minDateOfBirth):
		return []result.ValidationError{result.NewValidationError(fieldDateOfBirth, msgDateTooOld)}, nil
	}
	return []result.ValidationError{}, nil
}

func (s *Usecase) validateUniqueMRN(ctx context.Context, c CreatePatientCommand) ([]result.ValidationError, error) {
	mrn := strings.ToUpper(strings.TrimSpace(c.MedicalRecordNumber))
	if mrn == "" || len(mrn) > entity.MaxMRNLength {
		return []result.ValidationError{}, nil
	}

	exists, err := s.repoDB.ExistsPatientByMRN(ctx, mrn)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo check medical record number", "medical_record_number", mrn, "error", err)
		return nil, fmt.Errorf("check medical record number: %w", err)
	}
	if exists {
		return []result.ValidationError{{Identifier: fieldMedicalRecordNumber, ErrorMessage: msgMRNTaken, ErrorCode: "unique"}}, nil
	}
	return []result.ValidationError{}, nil
}

func (s *Usecase) validateUniqueEmail(ctx context.Context, c CreatePatientCommand) ([]result.ValidationError, error) {
	email := strings.ToLower(strings.TrimSpace(lo.FromPtr(c.Email)))
	if email == "" || len(email) > entity.MaxEmailLength {
		return []result.ValidationError{}, nil
	}

	exists, err := s.repoDB.ExistsPatientByEmail(ctx, email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo check email", "email", email, "error", err)
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return []result.ValidationError{{Identifier: fieldEmail, ErrorMessage: msgEmailTaken, ErrorCode: "unique"}}, nil
	}
	return []result.ValidationError{}, nil
}

func validateListParams(ctx context.Context, q ListPatientsQuery) ([]result.ValidationError, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	findings := []result.ValidationError{}
	if raw := strings.TrimSpace(q.Limit); raw != "" {
		if n := parseInt32Or(raw, -1); n < 1 || n > maxListLimit {
			findings = append(findings, result.NewValidationError(fieldLimit, msgLimitRange))
		}
	}
	if raw := strings.TrimSpace(q.Offset); raw != "" {
		if n := parseInt32Or(raw, -1); n < 0 {
			findings = append(findings, result.NewValidationError(fieldOffset, msgOffsetRange))
		}
	}
	if utf8.RuneCountInString(strings.TrimSpace(q.Search)) > maxSearchLength {
		findings = append(findings, result.NewValidationError(fieldSearch, msgSearchLength))
	}
	return findings, nil
}

func validateExportFormat(ctx context.Context, c ExportPatientsCommand) ([]result.ValidationError, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch strings.ToLower(strings.TrimSpace(c.Format)) {
	case "", ExportFormatCSV, ExportFormatJSON:
		return []result.ValidationError{}, nil
	default:
		return []result.ValidationError{result.NewValidationError(fieldFormat, msgFormat)}, nil
	}
}
