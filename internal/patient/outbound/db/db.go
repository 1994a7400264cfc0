package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/gopatient/internal/pkg/goerror"
	"github.com/shandysiswandi/gopatient/internal/pkg/instrument"
	"go.opentelemetry.io/otel/trace"
)

type DB struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation) *DB {
	return &DB{
		conn: conn,
		ins:  ins,
	}
}

// mapError translates driver errors into domain errors:
//   - no rows → goerror.ErrNotFound
//   - 23505 unique_violation → goerror.ErrConflict
//   - 40001 serialization_failure and 40P01 deadlock_detected are returned as is
func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return goerror.ErrConflict
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("patient.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if errors.Is(err, goerror.ErrNotFound) || errors.Is(err, goerror.ErrConflict) {
		err = nil
	}
	instrument.EndSpan(span, err)
}
