package usecase

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/gopatient/internal/patient/entity"
	"github.com/shandysiswandi/gopatient/internal/pkg/goerror"
	"github.com/shandysiswandi/gopatient/internal/pkg/result"
)

const (
	defaultListLimit int32 = 20
	maxListLimit     int32 = 100
	maxSearchLength        = 100
)

type (
	// ListPatientsQuery carries raw query string values; validators range-check them.
	ListPatientsQuery struct {
		Search string
		Limit  string
		Offset string
	}

	ListPatientsResponse struct {
		Patients []PatientView `json:"patients"`
		Total    int64         `json:"-"`
		Limit    int32         `json:"-"`
		Offset   int32         `json:"-"`
	}
)

// Meta is rendered next to the data envelope.
func (r ListPatientsResponse) Meta() map[string]any {
	return map[string]any{
		"total":  r.Total,
		"limit":  r.Limit,
		"offset": r.Offset,
	}
}

func (s *Usecase) ListPatients(ctx context.Context, in ListPatientsQuery) (result.Result[ListPatientsResponse], error) {
	ctx, span := s.startSpan(ctx, "ListPatients")
	defer span.End()

	filter := entity.PatientListFilter{
		Search: strings.TrimSpace(in.Search),
		Limit:  parseInt32Or(in.Limit, defaultListLimit),
		Offset: parseInt32Or(in.Offset, 0),
	}

	patients, total, err := s.repoDB.ListPatients(ctx, filter)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list patients", "filter", filter, "error", err)
		return result.Result[ListPatientsResponse]{}, goerror.NewServer(err)
	}

	return result.Success(ListPatientsResponse{
		Patients: lo.Map(patients, func(p entity.Patient, _ int) PatientView { return toView(p) }),
		Total:    total,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	}), nil
}

func parseInt32Or(raw string, fallback int32) int32 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return fallback
	}
	return int32(n)
}
