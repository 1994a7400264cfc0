package mediator

import (
	"context"
	"reflect"
	"sync"

	"github.com/shandysiswandi/gopatient/internal/pkg/result"
	"github.com/shandysiswandi/gopatient/internal/pkg/validator"
)

// Validator inspects a request and reports zero or more findings. A non-nil
// error means the validator itself could not run and is returned to the caller
// unchanged.
type Validator[Req any] interface {
	Validate(ctx context.Context, req Req) ([]result.ValidationError, error)
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc[Req any] func(ctx context.Context, req Req) ([]result.ValidationError, error)

// Validate calls f.
func (f ValidatorFunc[Req]) Validate(ctx context.Context, req Req) ([]result.ValidationError, error) {
	return f(ctx, req)
}

// Registry maps a request type to its validators in registration order.
// It is filled while modules are constructed and only read afterwards.
type Registry struct {
	mu         sync.RWMutex
	validators map[reflect.Type][]any
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{validators: make(map[reflect.Type][]any)}
}

// AddValidators appends validators for Req. Nil validators are skipped.
func AddValidators[Req any](r *Registry, vs ...Validator[Req]) {
	key := reflect.TypeFor[Req]()

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, v := range vs {
		if v == nil {
			continue
		}
		r.validators[key] = append(r.validators[key], v)
	}
}

// ValidatorsFor returns a copy of the validators registered for Req.
func ValidatorsFor[Req any](r *Registry) []Validator[Req] {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	raw := r.validators[reflect.TypeFor[Req]()]
	out := make([]Validator[Req], 0, len(raw))
	for _, v := range raw {
		out = append(out, v.(Validator[Req]))
	}
	return out
}

// StructRules adapts a tag-driven struct checker into a Validator. Each
// violated rule becomes one finding, in field order.
func StructRules[Req any](c validator.Checker) Validator[Req] {
	return ValidatorFunc[Req](func(ctx context.Context, req Req) ([]result.ValidationError, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		violations, err := c.Check(req)
		if err != nil {
			return nil, err
		}

		findings := make([]result.ValidationError, 0, len(violations))
		for _, v := range violations {
			findings = append(findings, result.ValidationError{
				Identifier:   v.Field,
				ErrorMessage: v.Message,
				ErrorCode:    v.Rule,
			})
		}
		return findings, nil
	})
}
