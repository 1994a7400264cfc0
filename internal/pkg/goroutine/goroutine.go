// Package goroutine runs fire-and-forget background work with a bounded
// number of goroutines, panic recovery and a drain on shutdown.
package goroutine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/shandysiswandi/gopatient/internal/pkg/stacktrace"
	"go.uber.org/atomic"
)

// DefaultMaxGoroutine is multiplied by the CPU count when NewManager receives
// a non-positive limit.
const DefaultMaxGoroutine int = 100

// Option configures a Manager.
type Option func(*Manager)

// WithTaskTimeout bounds every task. Zero means no bound.
func WithTaskTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.taskTimeout = d
	}
}

// Manager runs background tasks detached from the caller's cancellation.
// Values carried by the caller's context (correlation ID, span) are kept.
type Manager struct {
	mu          sync.Mutex
	errs        []error
	wg          sync.WaitGroup
	sema        chan struct{}
	stateMu     sync.RWMutex
	closed      bool
	taskTimeout time.Duration
	dropped     *atomic.Int64
}

// NewManager creates a Manager that runs at most maxGoroutine tasks at once.
func NewManager(maxGoroutine int, opts ...Option) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU() * DefaultMaxGoroutine
	}

	m := &Manager{
		sema:    make(chan struct{}, maxGoroutine),
		dropped: atomic.NewInt64(0),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Go schedules f and reports whether it was accepted. Tasks are rejected when
// the manager is saturated or already draining.
func (g *Manager) Go(pCtx context.Context, name string, f func(ctx context.Context) error) bool {
	if g == nil {
		return false
	}

	g.stateMu.RLock()
	defer g.stateMu.RUnlock()

	if g.closed {
		g.dropped.Inc()
		slog.WarnContext(pCtx, "goroutine manager is closed, skipping task", "task", name)
		return false
	}

	select {
	case g.sema <- struct{}{}:
	default:
		g.dropped.Inc()
		slog.WarnContext(pCtx, "maximum goroutine limit reached, skipping task", "task", name)
		return false
	}

	ctx := context.WithoutCancel(pCtx)
	g.wg.Go(func() {
		defer func() {
			<-g.sema

			if rvr := recover(); rvr != nil {
				stack := debug.Stack()
				if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
					slog.ErrorContext(ctx, "panic occurred in goroutine", "task", name, "because", rvr, "stack", paths)
				} else {
					slog.ErrorContext(ctx, "panic occurred in goroutine", "task", name, "because", rvr, "stack", string(stack))
				}
			}
		}()

		if g.taskTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, g.taskTimeout)
			defer cancel()
		}

		if err := f(ctx); err != nil {
			slog.ErrorContext(ctx, "background task failed", "task", name, "error", err)
			g.mu.Lock()
			g.errs = append(g.errs, err)
			g.mu.Unlock()
		}
	})

	return true
}

// Dropped returns how many tasks were rejected.
func (g *Manager) Dropped() int64 {
	if g == nil {
		return 0
	}
	return g.dropped.Load()
}

// Wait stops accepting tasks, blocks until running ones finish and returns
// their collected errors.
func (g *Manager) Wait() error {
	if g == nil {
		return nil
	}

	g.stateMu.Lock()
	g.closed = true
	g.stateMu.Unlock()

	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}
