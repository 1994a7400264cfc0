package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/gopatient/internal/patient/usecase"
	"github.com/shandysiswandi/gopatient/internal/pkg/goerror"
	"github.com/shandysiswandi/gopatient/internal/pkg/idempotency"
	"github.com/shandysiswandi/gopatient/internal/pkg/mediator"
	"github.com/shandysiswandi/gopatient/internal/pkg/result"
	"github.com/shandysiswandi/gopatient/internal/pkg/router"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	idempotencyScope     = "patient.create:"
)

// errNotCompleted makes the idempotency tracker release the key for any
// outcome other than Created, so the client can retry with the same key.
var errNotCompleted = errors.New("patient create did not complete")

// HTTPEndpoint exposes the patient registry over HTTP. Every handler
// dispatches through the mediator so validation runs before the use case.
type HTTPEndpoint struct {
	mediator *mediator.Mediator
	idemp    idempotency.Idempotency
}

// GetPatientByID returns one patient.
// @Summary Get patient
// @Description Returns a patient by its identifier.
// @Tags Patient
// @Produce json
// @Param id path string true "Patient ID"
// @Success 200 {object} router.successResponse{data=usecase.GetPatientByIDResponse} "Patient"
// @Failure 400 {object} router.errorResponse "Validation error"
// @Failure 404 {object} router.errorResponse "Patient not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/patients/{id} [get]
func (h *HTTPEndpoint) GetPatientByID(r *router.Request) (any, error) {
	return mediator.Send[usecase.GetPatientByIDQuery, result.Result[usecase.GetPatientByIDResponse]](
		r.Context(), h.mediator, usecase.GetPatientByIDQuery{PatientID: r.GetParam("id")},
	)
}

// ListPatients returns a page of patients.
// @Summary List patients
// @Description Lists patients ordered by name. The search term matches name, medical record number and email.
// @Tags Patient
// @Produce json
// @Param search query string false "Search term"
// @Param limit query int false "Page size (1-100)" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} router.successResponse{data=usecase.ListPatientsResponse} "Patients page, totals in meta"
// @Failure 400 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/patients [get]
func (h *HTTPEndpoint) ListPatients(r *router.Request) (any, error) {
	return mediator.Send[usecase.ListPatientsQuery, result.Result[usecase.ListPatientsResponse]](
		r.Context(), h.mediator, usecase.ListPatientsQuery{
			Search: r.GetQuery("search"),
			Limit:  r.GetQuery("limit"),
			Offset: r.GetQuery("offset"),
		},
	)
}

// CreatePatient registers a new patient.
// @Summary Create patient
// @Description Registers a patient. Send an Idempotency-Key header to make retries safe; a completed key replays the first response.
// @Tags Patient
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Idempotency key"
// @Param request body CreatePatientRequest true "Patient payload"
// @Success 201 {object} router.successResponse{data=usecase.CreatePatientResponse} "Created patient"
// @Failure 400 {object} router.errorResponse "Validation error"
// @Failure 409 {object} router.errorResponse "Duplicate patient or request in progress"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/patients [post]
func (h *HTTPEndpoint) CreatePatient(r *router.Request) (any, error) {
	var req CreatePatientRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	key := r.GetHeader(headerIdempotencyKey)
	if key == "" || h.idemp == nil {
		return h.sendCreate(r.Context(), req.command())
	}

	var (
		res      result.Result[usecase.CreatePatientResponse]
		sendErr  error
		executed bool
	)
	payload, err := h.idemp.Exec(r.Context(), idempotencyScope+key, func(ctx context.Context) ([]byte, error) {
		executed = true
		res, sendErr = h.sendCreate(ctx, req.command())
		if sendErr != nil {
			return nil, sendErr
		}
		if res.Status() != result.StatusCreated {
			return nil, errNotCompleted
		}
		return json.Marshal(res.Value())
	})

	switch {
	case executed && sendErr != nil:
		return nil, sendErr
	case executed && errors.Is(err, errNotCompleted):
		return res, nil
	case errors.Is(err, idempotency.ErrAlreadyInProgress):
		return nil, goerror.NewBusiness("a request with this idempotency key is still in progress", goerror.CodeConflict)
	case err != nil:
		slog.ErrorContext(r.Context(), "failed to track idempotency key", "idempotency_key", key, "error", err)
		return nil, goerror.NewUnavailable(err)
	case executed:
		return res, nil
	}

	var replay usecase.CreatePatientResponse
	if err := json.Unmarshal(payload, &replay); err != nil {
		slog.ErrorContext(r.Context(), "failed to decode replayed response", "idempotency_key", key, "error", err)
		return nil, goerror.NewServer(err)
	}

	return result.Created(replay), nil
}

func (h *HTTPEndpoint) sendCreate(ctx context.Context, cmd usecase.CreatePatientCommand) (result.Result[usecase.CreatePatientResponse], error) {
	return mediator.Send[usecase.CreatePatientCommand, result.Result[usecase.CreatePatientResponse]](ctx, h.mediator, cmd)
}

// ExportPatients writes every patient to object storage and returns a signed download URL.
// @Summary Export patients
// @Description Exports all patients as CSV (default) or JSON. The format may be sent in the body or the format query parameter.
// @Tags Patient
// @Accept json
// @Produce json
// @Param format query string false "csv or json"
// @Param request body ExportPatientsRequest false "Export options"
// @Success 200 {object} router.successResponse{data=usecase.ExportPatientsResponse} "Export location"
// @Failure 400 {object} router.errorResponse "Validation error"
// @Failure 503 {object} router.errorResponse "Storage unavailable"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/patients/export [post]
func (h *HTTPEndpoint) ExportPatients(r *router.Request) (any, error) {
	req := ExportPatientsRequest{Format: r.GetQuery("format")}
	if r.ContentLength != 0 {
		if err := r.DecodeBody(&req); err != nil {
			return nil, err
		}
	}

	return mediator.Send[usecase.ExportPatientsCommand, result.Result[usecase.ExportPatientsResponse]](
		r.Context(), h.mediator, usecase.ExportPatientsCommand{Format: req.Format},
	)
}
