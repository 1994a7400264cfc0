package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/gopatient/internal/patient/entity"
	"github.com/shandysiswandi/gopatient/internal/pkg/goerror"
	"github.com/shandysiswandi/gopatient/internal/pkg/instrument"
	"go.opentelemetry.io/otel/trace"
)

const (
	keyPrefix  = "patient:"
	defaultTTL = 10 * time.Minute
)

type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration
	ins    instrument.Instrumentation
}

// NewCache falls back to a ten minute TTL when ttl is not positive.
func NewCache(client redis.UniversalClient, ttl time.Duration, ins instrument.Instrumentation) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}

	return &Cache{client: client, ttl: ttl, ins: ins}
}

type patientRecord struct {
	ID                  int64     `json:"id"`
	FirstName           string    `json:"first_name"`
	LastName            string    `json:"last_name"`
	DateOfBirth         time.Time `json:"date_of_birth"`
	MedicalRecordNumber string    `json:"medical_record_number"`
	Email               *string   `json:"email,omitempty"`
	PhoneNumber         *string   `json:"phone_number,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

func key(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

func (c *Cache) GetPatient(ctx context.Context, id int64) (_ *entity.Patient, err error) {
	ctx, span := c.startSpan(ctx, "GetPatient")
	defer func() { c.endSpan(span, err) }()

	raw, err := c.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, goerror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec patientRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}

	return &entity.Patient{
		ID:                  rec.ID,
		FirstName:           rec.FirstName,
		LastName:            rec.LastName,
		DateOfBirth:         rec.DateOfBirth,
		MedicalRecordNumber: rec.MedicalRecordNumber,
		Email:               rec.Email,
		PhoneNumber:         rec.PhoneNumber,
		CreatedAt:           rec.CreatedAt,
	}, nil
}

func (c *Cache) SetPatient(ctx context.Context, p entity.Patient) (err error) {
	ctx, span := c.startSpan(ctx, "SetPatient")
	defer func() { c.endSpan(span, err) }()

	raw, err := json.Marshal(patientRecord{
		ID:                  p.ID,
		FirstName:           p.FirstName,
		LastName:            p.LastName,
		DateOfBirth:         p.DateOfBirth,
		MedicalRecordNumber: p.MedicalRecordNumber,
		Email:               p.Email,
		PhoneNumber:         p.PhoneNumber,
		CreatedAt:           p.CreatedAt,
	})
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key(p.ID), raw, c.ttl).Err()
}

func (c *Cache) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("patient.outbound.cache").Start(ctx, name)
}

func (c *Cache) endSpan(span trace.Span, err error) {
	if errors.Is(err, goerror.ErrNotFound) {
		err = nil
	}
	instrument.EndSpan(span, err)
}
