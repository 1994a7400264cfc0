package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/gopatient/internal/patient/entity"
	"github.com/shandysiswandi/gopatient/internal/pkg/goerror"
	"github.com/shandysiswandi/gopatient/internal/pkg/result"
	"github.com/shandysiswandi/gopatient/internal/pkg/storage"
)

const (
	patientExportPageSize int32 = 1_000

	ExportFormatCSV  = "csv"
	ExportFormatJSON = "json"

	defaultExportExpiry = 15 * time.Minute
	defaultExportPrefix = "exports/patients"
)

var exportCSVHeader = []string{
	"id", "first_name", "last_name", "date_of_birth", "medical_record_number", "email", "phone_number",
}

type (
	// ExportPatientsCommand selects the file format, csv when empty.
	ExportPatientsCommand struct {
		Format string `json:"format"`
	}

	ExportPatientsResponse struct {
		Key       string    `json:"key"`
		URL       string    `json:"url"`
		Format    string    `json:"format"`
		Count     int       `json:"count"`
		ExpiresAt time.Time `json:"expires_at"`
	}
)

func (s *Usecase) ExportPatients(ctx context.Context, in ExportPatientsCommand) (result.Result[ExportPatientsResponse], error) {
	ctx, span := s.startSpan(ctx, "ExportPatients")
	defer span.End()

	format := strings.ToLower(strings.TrimSpace(in.Format))
	if format == "" {
		format = ExportFormatCSV
	}

	patients, err := s.collectPatients(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo export patients", "error", err)
		return result.Result[ExportPatientsResponse]{}, goerror.NewServer(err)
	}

	body, contentType, err := encodePatients(format, patients)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode patients export", "format", format, "error", err)
		return result.Result[ExportPatientsResponse]{}, goerror.NewServer(err)
	}

	now := s.clock.Now()
	key := fmt.Sprintf("%s/%s-%d.%s", s.exportPrefix(), now.UTC().Format("20060102T150405Z"), s.uid.Generate(), format)

	if _, err := s.storage.Put(ctx, key, bytes.NewReader(body), storage.PutOptions{
		Size:        int64(len(body)),
		ContentType: contentType,
		Metadata:    map[string]string{"records": strconv.Itoa(len(patients))},
	}); err != nil {
		slog.ErrorContext(ctx, "failed to upload patients export", "key", key, "error", err)
		return result.Unavailable[ExportPatientsResponse]("export storage is unavailable"), nil
	}

	expiry := s.exportExpiry()
	url, err := s.storage.SignedURL(ctx, key, expiry)
	if err != nil {
		slog.ErrorContext(ctx, "failed to sign patients export url", "key", key, "error", err)
		return result.Unavailable[ExportPatientsResponse]("export storage is unavailable"), nil
	}

	slog.InfoContext(ctx, "patients exported", "key", key, "count", len(patients), "format", format)

	return result.Success(ExportPatientsResponse{
		Key:       key,
		URL:       url,
		Format:    format,
		Count:     len(patients),
		ExpiresAt: now.Add(expiry),
	}), nil
}

func (s *Usecase) collectPatients(ctx context.Context) ([]entity.Patient, error) {
	var (
		patients []entity.Patient
		filter   = entity.PatientListFilter{Limit: patientExportPageSize}
	)

	for {
		page, total, err := s.repoDB.ListPatients(ctx, filter)
		if err != nil {
			return nil, err
		}

		if filter.Offset == 0 {
			if total == 0 {
				return []entity.Patient{}, nil
			}
			patients = make([]entity.Patient, 0, min(total, int64(patientExportPageSize)))
		}

		patients = append(patients, page...)

		if int64(len(patients)) >= total || len(page) == 0 {
			return patients, nil
		}

		filter.Offset += patientExportPageSize
	}
}

func (s *Usecase) exportExpiry() time.Duration {
	if d := s.cfg.GetDuration("modules.patient.export.url_expiry"); d > 0 {
		return d
	}
	return defaultExportExpiry
}

func (s *Usecase) exportPrefix() string {
	if p := strings.Trim(s.cfg.GetString("modules.patient.export.prefix"), "/ "); p != "" {
		return p
	}
	return defaultExportPrefix
}

func encodePatients(format string, patients []entity.Patient) ([]byte, string, error) {
	views := lo.Map(patients, func(p entity.Patient, _ int) PatientView { return toView(p) })

	switch format {
	case ExportFormatJSON:
		b, err := json.Marshal(views)
		return b, "application/json", err

	case ExportFormatCSV:
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write(exportCSVHeader); err != nil {
			return nil, "", err
		}
		for _, v := range views {
			if err := w.Write([]string{
				strconv.FormatInt(v.ID, 10),
				v.FirstName,
				v.LastName,
				v.DateOfBirth,
				v.MedicalRecordNumber,
				lo.FromPtr(v.Email),
				lo.FromPtr(v.PhoneNumber),
			}); err != nil {
				return nil, "", err
			}
		}
		w.Flush()
		return buf.Bytes(), "text/csv", w.Error()

	default:
		return nil, "", fmt.Errorf("unsupported export format %q", format)
	}
}
