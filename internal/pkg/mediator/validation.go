package mediator

import (
	"context"
	"errors"
	"log/slog"
	"reflect"

	"github.com/samber/lo"
	"github.com/shandysiswandi/gopatient/internal/pkg/goerror"
	"github.com/shandysiswandi/gopatient/internal/pkg/result"
	"golang.org/x/sync/errgroup"
)

// ErrNilNext is wrapped when a behavior receives no continuation.
var ErrNilNext = errors.New("mediator: nil continuation")

// ValidationOption configures a ValidationBehavior.
type ValidationOption func(*validationOptions)

type validationOptions struct {
	maxConcurrency int
}

// WithMaxConcurrency bounds how many validators run at once. n <= 0 means no
// bound.
func WithMaxConcurrency(n int) ValidationOption {
	return func(o *validationOptions) {
		o.maxConcurrency = n
	}
}

// ValidationBehavior runs validators before the rest of the chain and
// short-circuits with an Invalid response when any of them reports a finding.
type ValidationBehavior[Req, Res any] struct {
	validators []Validator[Req]
	opts       validationOptions
}

// NewValidationBehavior returns a behavior running validators in the given order.
func NewValidationBehavior[Req, Res any](validators []Validator[Req], opts ...ValidationOption) *ValidationBehavior[Req, Res] {
	b := &ValidationBehavior[Req, Res]{validators: validators}
	for _, opt := range opts {
		opt(&b.opts)
	}
	return b
}

// Handle implements Behavior.
func (b *ValidationBehavior[Req, Res]) Handle(ctx context.Context, req Req, next Next[Res]) (Res, error) {
	var zero Res
	if next == nil {
		return zero, goerror.NewServer(ErrNilNext)
	}

	if len(b.validators) == 0 {
		return next(ctx)
	}

	findings, err := b.validate(ctx, req)
	if err != nil {
		return zero, err
	}

	if len(findings) == 0 {
		return next(ctx)
	}

	factory, err := FailureFactoryFor[Res]()
	if err != nil {
		return zero, err
	}

	slog.DebugContext(ctx, "mediator: request rejected by validators",
		"request", reflect.TypeFor[Req]().String(),
		"findings", len(findings),
	)

	return buildInvalid[Res](factory, findings), nil
}

// validate fans out to every validator and joins on all of them. A failing
// validator does not cancel its siblings. Findings and errors are stored by
// registration index so neither depends on completion order.
func (b *ValidationBehavior[Req, Res]) validate(ctx context.Context, req Req) ([]result.ValidationError, error) {
	blocks := make([][]result.ValidationError, len(b.validators))
	errs := make([]error, len(b.validators))

	var g errgroup.Group
	if b.opts.maxConcurrency > 0 {
		g.SetLimit(b.opts.maxConcurrency)
	}

	for i, v := range b.validators {
		g.Go(func() error {
			blocks[i], errs[i] = v.Validate(ctx, req)
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return lo.Flatten(blocks), nil
}
