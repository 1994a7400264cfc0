package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/gopatient/internal/patient/entity"
)

func (s *DB) CreatePatient(ctx context.Context, p entity.Patient) (err error) {
	ctx, span := s.startSpan(ctx, "CreatePatient")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx,
		`INSERT INTO patients (`+patientColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.FirstName, p.LastName, p.DateOfBirth, p.MedicalRecordNumber, p.Email, p.PhoneNumber, p.CreatedAt,
	)
	return s.mapError(err)
}

// CreatePatients bulk-loads ps with COPY and returns the number of rows written.
func (s *DB) CreatePatients(ctx context.Context, ps []entity.Patient) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "CreatePatients")
	defer func() { s.endSpan(span, err) }()

	n, err := s.conn.CopyFrom(ctx,
		pgx.Identifier{"patients"},
		[]string{"id", "first_name", "last_name", "date_of_birth", "medical_record_number", "email", "phone_number", "created_at"},
		pgx.CopyFromSlice(len(ps), func(i int) ([]any, error) {
			p := ps[i]
			return []any{p.ID, p.FirstName, p.LastName, p.DateOfBirth, p.MedicalRecordNumber, p.Email, p.PhoneNumber, p.CreatedAt}, nil
		}),
	)
	return n, s.mapError(err)
}
