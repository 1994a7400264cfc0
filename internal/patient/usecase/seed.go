package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/gopatient/internal/patient/entity"
	"github.com/shandysiswandi/gopatient/internal/pkg/goerror"
)

const (
	defaultSeedMin = 3
	defaultSeedMax = 5
)

var (
	seedFirstNames = []string{"Amelia", "Budi", "Chloe", "Dimas", "Elena", "Farhan", "Grace", "Hiro", "Intan", "Jonas", "Kirana", "Liam"}
	seedLastNames  = []string{"Anderson", "Baskoro", "Chen", "Dubois", "Evans", "Fischer", "Gunawan", "Hartono", "Ibrahim", "Jensen"}
)

// Seed fills an empty patients table with between modules.patient.seed.min and
// modules.patient.seed.max generated patients. It returns how many were inserted.
func (s *Usecase) Seed(ctx context.Context) (int64, error) {
	ctx, span := s.startSpan(ctx, "Seed")
	defer span.End()

	count, err := s.repoDB.CountPatients(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo count patients", "error", err)
		return 0, goerror.NewServer(err)
	}
	if count > 0 {
		slog.InfoContext(ctx, "patients already present, skipping seed", "count", count)
		return 0, nil
	}

	lower, upper := s.seedBounds()
	n := lower
	if upper > lower {
		n += rand.IntN(upper - lower + 1) //nolint:gosec // fixture data
	}

	now := s.clock.Now()
	patients := lo.Times(n, func(i int) entity.Patient {
		return s.fakePatient(i, now)
	})

	inserted, err := s.repoDB.CreatePatients(ctx, patients)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo seed patients", "count", n, "error", err)
		return 0, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "patients seeded", "count", inserted)
	return inserted, nil
}

func (s *Usecase) seedBounds() (lower, upper int) {
	lower = s.cfg.GetInt("modules.patient.seed.min")
	upper = s.cfg.GetInt("modules.patient.seed.max")
	if lower <= 0 {
		lower = defaultSeedMin
	}
	if upper < lower {
		upper = max(lower, defaultSeedMax)
	}
	return lower, upper
}

//nolint:gosec // fixture data
func (s *Usecase) fakePatient(i int, now time.Time) entity.Patient {
	first := lo.Sample(seedFirstNames)
	last := lo.Sample(seedLastNames)
	email := fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), i+1)
	phone := fmt.Sprintf("+6281%08d", rand.IntN(100_000_000))
	dob := now.AddDate(-(18 + rand.IntN(70)), -rand.IntN(12), -rand.IntN(28))

	p := entity.NewPatient(s.uid.Generate(), first, last, dob, fmt.Sprintf("MRN-%06d", i+1), &email, &phone)
	p.CreatedAt = now
	return p
}
