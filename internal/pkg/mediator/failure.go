package mediator

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/shandysiswandi/gopatient/internal/pkg/goerror"
	"github.com/shandysiswandi/gopatient/internal/pkg/result"
	"go.uber.org/atomic"
)

// ErrNoFailureFactory is wrapped when a response type cannot describe a
// validation failure of itself.
var ErrNoFailureFactory = errors.New("mediator: response type does not implement result.InvalidFactory")

var (
	failureCache  sync.Map // reflect.Type -> *FailureFactory
	failureBuilds = atomic.NewInt64(0)
	failureHits   = atomic.NewInt64(0)
)

// FailureFactory builds Invalid values of a single response type.
type FailureFactory struct {
	typ   reflect.Type
	build func(errs []result.ValidationError) any
}

// Type returns the response type the factory builds.
func (f *FailureFactory) Type() reflect.Type { return f.typ }

// FailureFactoryFor returns the cached factory for Res, discovering it on first
// use. Concurrent first calls may each inspect Res, but all of them observe the
// factory stored by the first writer.
func FailureFactoryFor[Res any]() (*FailureFactory, error) {
	typ := reflect.TypeFor[Res]()

	if cached, ok := failureCache.Load(typ); ok {
		failureHits.Inc()
		return cached.(*FailureFactory), nil
	}

	f, err := newFailureFactory[Res](typ)
	if err != nil {
		return nil, err
	}

	actual, _ := failureCache.LoadOrStore(typ, f)
	return actual.(*FailureFactory), nil
}

func newFailureFactory[Res any](typ reflect.Type) (*FailureFactory, error) {
	failureBuilds.Inc()

	var zero Res
	factory, ok := any(zero).(result.InvalidFactory[Res])
	if !ok {
		return nil, goerror.NewServer(fmt.Errorf("%w: %s", ErrNoFailureFactory, typ))
	}

	return &FailureFactory{
		typ: typ,
		build: func(errs []result.ValidationError) any {
			return factory.NewInvalid(errs)
		},
	}, nil
}

func buildInvalid[Res any](f *FailureFactory, errs []result.ValidationError) Res {
	return f.build(errs).(Res)
}

// FailureCacheStats reports how many times a factory was discovered and how
// many lookups were served from the cache.
func FailureCacheStats() (builds, hits int64) {
	return failureBuilds.Load(), failureHits.Load()
}
