package mediator

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/shandysiswandi/gopatient/internal/pkg/clock"
	"github.com/shandysiswandi/gopatient/internal/pkg/goerror"
	"github.com/shandysiswandi/gopatient/internal/pkg/instrument"
)

var (
	// ErrHandlerNotFound is wrapped when Send is called for an unregistered request type.
	ErrHandlerNotFound = errors.New("mediator: no handler registered")

	// ErrDuplicateHandler is wrapped when a request type is registered twice.
	ErrDuplicateHandler = errors.New("mediator: handler already registered")

	// ErrResponseMismatch is wrapped when Send asks for a response type other
	// than the one the handler was registered with.
	ErrResponseMismatch = errors.New("mediator: response type mismatch")
)

// Dependency holds what a Mediator needs to build pipelines.
type Dependency struct {
	Registry   *Registry
	Instrument instrument.Instrumentation
	Clock      clock.Clocker
	// MaxConcurrency bounds validator fan-out per request. <= 0 means no bound.
	MaxConcurrency int
}

// Mediator routes requests to pipelines keyed by request type.
type Mediator struct {
	registry       *Registry
	ins            instrument.Instrumentation
	clock          clock.Clocker
	maxConcurrency int

	mu        sync.RWMutex
	pipelines map[reflect.Type]any
}

// New returns an empty Mediator.
func New(dep Dependency) *Mediator {
	if dep.Registry == nil {
		dep.Registry = NewRegistry()
	}
	if dep.Instrument == nil {
		dep.Instrument = instrument.NewNoop()
	}
	if dep.Clock == nil {
		dep.Clock = clock.New()
	}

	return &Mediator{
		registry:       dep.Registry,
		ins:            dep.Instrument,
		clock:          dep.Clock,
		maxConcurrency: dep.MaxConcurrency,
		pipelines:      make(map[reflect.Type]any),
	}
}

// Registry returns the validator registry used for new registrations.
func (m *Mediator) Registry() *Registry {
	return m.registry
}

// Register builds the pipeline for Req and binds it to h. The validators for
// Req are snapshotted from the registry at this point. Registration fails when
// Res cannot describe a validation failure or when Req already has a handler.
func Register[Req, Res any](m *Mediator, h Handler[Req, Res]) error {
	if h == nil {
		return goerror.NewServer(fmt.Errorf("mediator: nil handler for %s", reflect.TypeFor[Req]()))
	}

	if _, err := FailureFactoryFor[Res](); err != nil {
		return err
	}

	key := reflect.TypeFor[Req]()
	pipeline := NewPipeline[Req, Res](h,
		NewValidationBehavior[Req, Res](ValidatorsFor[Req](m.registry), WithMaxConcurrency(m.maxConcurrency)),
		NewLoggingBehavior[Req, Res](m.clock),
		NewObservabilityBehavior[Req, Res](m.ins, m.clock),
	)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.pipelines[key]; exists {
		return goerror.NewServer(fmt.Errorf("%w: %s", ErrDuplicateHandler, key))
	}
	m.pipelines[key] = pipeline

	return nil
}

// Send dispatches req to the pipeline registered for its type.
func Send[Req, Res any](ctx context.Context, m *Mediator, req Req) (Res, error) {
	var zero Res
	key := reflect.TypeFor[Req]()

	m.mu.RLock()
	raw, ok := m.pipelines[key]
	m.mu.RUnlock()

	if !ok {
		return zero, goerror.NewServer(fmt.Errorf("%w: %s", ErrHandlerNotFound, key))
	}

	pipeline, ok := raw.(*Pipeline[Req, Res])
	if !ok {
		return zero, goerror.NewServer(fmt.Errorf("%w: %s cannot produce %s", ErrResponseMismatch, key, reflect.TypeFor[Res]()))
	}

	return pipeline.Handle(ctx, req)
}
