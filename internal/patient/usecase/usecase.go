package usecase

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/shandysiswandi/gopatient/internal/patient/entity"
	"github.com/shandysiswandi/gopatient/internal/pkg/clock"
	"github.com/shandysiswandi/gopatient/internal/pkg/config"
	"github.com/shandysiswandi/gopatient/internal/pkg/goroutine"
	"github.com/shandysiswandi/gopatient/internal/pkg/instrument"
	"github.com/shandysiswandi/gopatient/internal/pkg/mediator"
	"github.com/shandysiswandi/gopatient/internal/pkg/result"
	"github.com/shandysiswandi/gopatient/internal/pkg/storage"
	"github.com/shandysiswandi/gopatient/internal/pkg/uid"
	"github.com/shandysiswandi/gopatient/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type PatientRegisteredEvent struct {
	PatientID           int64
	MedicalRecordNumber string
	FullName            string
	RegisteredAt        time.Time
}

type repoMessaging interface {
	PublishPatientRegistered(ctx context.Context, msg PatientRegisteredEvent) error
}

type repoDB interface {
	GetPatientByID(ctx context.Context, id int64) (*entity.Patient, error)
	ExistsPatientByMRN(ctx context.Context, mrn string) (bool, error)
	ExistsPatientByEmail(ctx context.Context, email string) (bool, error)
	ListPatients(ctx context.Context, filter entity.PatientListFilter) ([]entity.Patient, int64, error)
	CountPatients(ctx context.Context) (int64, error)

	CreatePatient(ctx context.Context, p entity.Patient) error
	CreatePatients(ctx context.Context, ps []entity.Patient) (int64, error)
}

// repoCache returns goerror.ErrNotFound on a miss.
type repoCache interface {
	GetPatient(ctx context.Context, id int64) (*entity.Patient, error)
	SetPatient(ctx context.Context, p entity.Patient) error
}

type Usecase struct {
	repoDB        repoDB
	repoCache     repoCache
	repoMessaging repoMessaging
	storage       storage.Storage
	cfg           config.Config
	uid           uid.NumberID
	clock         clock.Clocker
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager
}

type Dependency struct {
	RepoDB        repoDB
	RepoCache     repoCache
	RepoMessaging repoMessaging
	Storage       storage.Storage
	Config        config.Config
	UID           uid.NumberID
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoCache:     dep.RepoCache,
		repoMessaging: dep.RepoMessaging,
		storage:       dep.Storage,
		cfg:           dep.Config,
		uid:           dep.UID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("patient.usecase").Start(ctx, name)
}

// Register adds the request validators to the mediator registry and binds every
// patient handler. Validators must be in place before the handlers are bound.
func (s *Usecase) Register(m *mediator.Mediator, checker validator.Checker) error {
	s.registerValidators(m.Registry(), checker)

	return errors.Join(
		mediator.Register[GetPatientByIDQuery, result.Result[GetPatientByIDResponse]](m,
			mediator.HandlerFunc[GetPatientByIDQuery, result.Result[GetPatientByIDResponse]](s.GetPatientByID)),
		mediator.Register[CreatePatientCommand, result.Result[CreatePatientResponse]](m,
			mediator.HandlerFunc[CreatePatientCommand, result.Result[CreatePatientResponse]](s.CreatePatient)),
		mediator.Register[ListPatientsQuery, result.Result[ListPatientsResponse]](m,
			mediator.HandlerFunc[ListPatientsQuery, result.Result[ListPatientsResponse]](s.ListPatients)),
		mediator.Register[ExportPatientsCommand, result.Result[ExportPatientsResponse]](m,
			mediator.HandlerFunc[ExportPatientsCommand, result.Result[ExportPatientsResponse]](s.ExportPatients)),
	)
}

// PatientView is the wire shape of a patient.
type PatientView struct {
	ID                  int64   `json:"id,string"`
	FirstName           string  `json:"first_name"`
	LastName            string  `json:"last_name"`
	DateOfBirth         string  `json:"date_of_birth"`
	MedicalRecordNumber string  `json:"medical_record_number"`
	Email               *string `json:"email"`
	PhoneNumber         *string `json:"phone_number"`
}

func toView(p entity.Patient) PatientView {
	return PatientView{
		ID:                  p.ID,
		FirstName:           p.FirstName,
		LastName:            p.LastName,
		DateOfBirth:         p.DateOfBirth.Format(entity.DateLayout),
		MedicalRecordNumber: p.MedicalRecordNumber,
		Email:               p.Email,
		PhoneNumber:         p.PhoneNumber,
	}
}

// parsePositiveID accepts base-10 integers greater than zero.
func parsePositiveID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
