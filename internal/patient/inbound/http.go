package inbound

import (
	"github.com/shandysiswandi/gopatient/internal/pkg/idempotency"
	"github.com/shandysiswandi/gopatient/internal/pkg/mediator"
	"github.com/shandysiswandi/gopatient/internal/pkg/router"
)

// RegisterHTTPEndpoint binds the patient routes. idemp may be nil, in which
// case the Idempotency-Key header is ignored.
func RegisterHTTPEndpoint(r *router.Router, m *mediator.Mediator, idemp idempotency.Idempotency) {
	end := &HTTPEndpoint{mediator: m, idemp: idemp}

	r.GET("/api/v1/patients", end.ListPatients)
	r.POST("/api/v1/patients", end.CreatePatient)
	r.GET("/api/v1/patients/:id", end.GetPatientByID)
	r.POST("/api/v1/patients/export", end.ExportPatients)
}
