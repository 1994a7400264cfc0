// Package idempotency guards side-effecting operations with a client supplied key
// so retries replay the first outcome instead of repeating it.
package idempotency

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrAlreadyInProgress = errors.New("operation already in progress")
	ErrInvalidState      = errors.New("invalid state")
	ErrKeyRequired       = errors.New("idempotency key is required")
)

type State string

const (
	StateNone       State = "none"        // operation can proceed
	StateInProgress State = "in_progress" // operation already in progress
	StateCompleted  State = "completed"   // operation already completed, payload replayable
	StateError      State = "error"       // this operation error
)

func (s State) String() string {
	return string(s)
}

const completedPrefix = "completed:"

type Idempotency interface {
	Acquire(ctx context.Context, key string, lockDuration time.Duration) (State, []byte, error)
	MarkCompleted(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Release(ctx context.Context, key string) error
	Exec(ctx context.Context, key string, fn func(context.Context) ([]byte, error), opts ...Option) ([]byte, error)
}

type StateTracker struct {
	client redis.UniversalClient
	prefix string
}

func New(client redis.UniversalClient) *StateTracker {
	return &StateTracker{
		client: client,
		prefix: "idempotency:",
	}
}

const (
	defaultLockDuration = time.Minute
	defaultStateTTL     = 24 * time.Hour
)

type Option func(*execOptions)

type execOptions struct {
	lockDuration time.Duration
	stateTTL     time.Duration
}

func WithLockDuration(lockDuration time.Duration) Option {
	return func(o *execOptions) {
		o.lockDuration = lockDuration
	}
}

func WithStateTTL(stateTTL time.Duration) Option {
	return func(o *execOptions) {
		o.stateTTL = stateTTL
	}
}

// Acquire tries to start an operation. A completed operation returns its stored payload.
func (s *StateTracker) Acquire(ctx context.Context, key string, lockDuration time.Duration) (State, []byte, error) {
	if strings.TrimSpace(key) == "" {
		return StateError, nil, ErrKeyRequired
	}
	fk := s.prefix + key

	acquired, err := s.client.SetNX(ctx, fk, StateInProgress.String(), lockDuration).Result()
	if err != nil {
		return StateError, nil, err
	}
	if acquired {
		return StateNone, nil, nil
	}

	raw, err := s.client.Get(ctx, fk).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET
		acquired, err = s.client.SetNX(ctx, fk, StateInProgress.String(), lockDuration).Result()
		if err != nil {
			return StateError, nil, err
		}
		if acquired {
			return StateNone, nil, nil
		}
		return StateError, nil, ErrInvalidState
	}
	if err != nil {
		return StateError, nil, err
	}

	return parseState(raw)
}

func parseState(raw string) (State, []byte, error) {
	if raw == StateInProgress.String() {
		return StateInProgress, nil, nil
	}
	if payload, ok := strings.CutPrefix(raw, completedPrefix); ok {
		return StateCompleted, []byte(payload), nil
	}
	return StateError, nil, ErrInvalidState
}

func (s *StateTracker) MarkCompleted(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, completedPrefix+string(payload), ttl).Err()
}

// Release drops the key so the operation can be retried.
func (s *StateTracker) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

// Exec runs fn at most once per key. A failed fn releases the key, a successful
// one stores its payload and later calls replay it without running fn.
func (s *StateTracker) Exec(ctx context.Context, key string, fn func(context.Context) ([]byte, error), opts ...Option) ([]byte, error) {
	execOpt := &execOptions{
		lockDuration: defaultLockDuration,
		stateTTL:     defaultStateTTL,
	}
	for _, opt := range opts {
		opt(execOpt)
	}
	if execOpt.lockDuration <= 0 {
		execOpt.lockDuration = defaultLockDuration
	}
	if execOpt.stateTTL <= 0 {
		execOpt.stateTTL = defaultStateTTL
	}

	state, payload, err := s.Acquire(ctx, key, execOpt.lockDuration)
	if err != nil {
		return nil, err
	}

	switch state {
	case StateInProgress:
		return nil, ErrAlreadyInProgress
	case StateCompleted:
		return payload, nil
	}

	payload, err = fn(ctx)
	if err != nil {
		if relErr := s.Release(context.WithoutCancel(ctx), key); relErr != nil {
			return nil, errors.Join(err, relErr)
		}
		return nil, err
	}

	if err := s.MarkCompleted(context.WithoutCancel(ctx), key, payload, execOpt.stateTTL); err != nil {
		return nil, err
	}

	return payload, nil
}
