package db

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/gopatient/internal/patient/entity"
)

const patientColumns = `id, first_name, last_name, date_of_birth, medical_record_number, email, phone_number, created_at`

type patientRow struct {
	ID                  int64     `db:"id"`
	FirstName           string    `db:"first_name"`
	LastName            string    `db:"last_name"`
	DateOfBirth         time.Time `db:"date_of_birth"`
	MedicalRecordNumber string    `db:"medical_record_number"`
	Email               *string   `db:"email"`
	PhoneNumber         *string   `db:"phone_number"`
	CreatedAt           time.Time `db:"created_at"`
}

func (r patientRow) toEntity() entity.Patient {
	return entity.Patient{
		ID:                  r.ID,
		FirstName:           r.FirstName,
		LastName:            r.LastName,
		DateOfBirth:         r.DateOfBirth,
		MedicalRecordNumber: r.MedicalRecordNumber,
		Email:               r.Email,
		PhoneNumber:         r.PhoneNumber,
		CreatedAt:           r.CreatedAt,
	}
}

func (s *DB) GetPatientByID(ctx context.Context, id int64) (_ *entity.Patient, err error) {
	ctx, span := s.startSpan(ctx, "GetPatientByID")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = $1`, id)
	if err != nil {
		return nil, s.mapError(err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[patientRow])
	if err != nil {
		return nil, s.mapError(err)
	}

	p := row.toEntity()
	return &p, nil
}

func (s *DB) ExistsPatientByMRN(ctx context.Context, mrn string) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "ExistsPatientByMRN")
	defer func() { s.endSpan(span, err) }()

	var exists bool
	err = s.conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM patients WHERE medical_record_number = $1)`, mrn).Scan(&exists)
	return exists, s.mapError(err)
}

func (s *DB) ExistsPatientByEmail(ctx context.Context, email string) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "ExistsPatientByEmail")
	defer func() { s.endSpan(span, err) }()

	var exists bool
	err = s.conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM patients WHERE lower(email) = lower($1))`, email).Scan(&exists)
	return exists, s.mapError(err)
}

func (s *DB) ListPatients(ctx context.Context, filter entity.PatientListFilter) (_ []entity.Patient, _ int64, err error) {
	ctx, span := s.startSpan(ctx, "ListPatients")
	defer func() { s.endSpan(span, err) }()

	where, args := listCondition(filter.Search)

	rows, err := s.conn.Query(ctx,
		`SELECT `+patientColumns+` FROM patients`+where+
			` ORDER BY last_name, first_name, id LIMIT $`+strconv.Itoa(len(args)+1)+` OFFSET $`+strconv.Itoa(len(args)+2),
		append(args, filter.Limit, filter.Offset)...,
	)
	if err != nil {
		return nil, 0, s.mapError(err)
	}

	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[patientRow])
	if err != nil {
		return nil, 0, s.mapError(err)
	}

	var total int64
	if err := s.conn.QueryRow(ctx, `SELECT count(*) FROM patients`+where, args...).Scan(&total); err != nil {
		return nil, 0, s.mapError(err)
	}

	patients := make([]entity.Patient, 0, len(items))
	for _, item := range items {
		patients = append(patients, item.toEntity())
	}

	return patients, total, nil
}

func (s *DB) CountPatients(ctx context.Context) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "CountPatients")
	defer func() { s.endSpan(span, err) }()

	var total int64
	err = s.conn.QueryRow(ctx, `SELECT count(*) FROM patients`).Scan(&total)
	return total, s.mapError(err)
}

func listCondition(search string) (string, []any) {
	search = strings.TrimSpace(search)
	if search == "" {
		return "", nil
	}

	pattern := "%" + escapeLike(search) + "%"
	return ` WHERE (first_name || ' ' || last_name) ILIKE $1 OR medical_record_number ILIKE $1 OR email ILIKE $1`, []any{pattern}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
