package patient

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/gopatient/internal/patient/inbound"
	"github.com/shandysiswandi/gopatient/internal/patient/outbound/cache"
	"github.com/shandysiswandi/gopatient/internal/patient/outbound/db"
	"github.com/shandysiswandi/gopatient/internal/patient/outbound/mq"
	"github.com/shandysiswandi/gopatient/internal/patient/usecase"
	"github.com/shandysiswandi/gopatient/internal/pkg/clock"
	"github.com/shandysiswandi/gopatient/internal/pkg/config"
	"github.com/shandysiswandi/gopatient/internal/pkg/goroutine"
	"github.com/shandysiswandi/gopatient/internal/pkg/idempotency"
	"github.com/shandysiswandi/gopatient/internal/pkg/instrument"
	"github.com/shandysiswandi/gopatient/internal/pkg/mediator"
	"github.com/shandysiswandi/gopatient/internal/pkg/messaging"
	"github.com/shandysiswandi/gopatient/internal/pkg/router"
	"github.com/shandysiswandi/gopatient/internal/pkg/storage"
	"github.com/shandysiswandi/gopatient/internal/pkg/uid"
	"github.com/shandysiswandi/gopatient/internal/pkg/validator"
)

type Dependency struct {
	Ctx         context.Context
	DBConn      *pgxpool.Pool              `validate:"required"`
	CacheConn   redis.UniversalClient      `validate:"required"`
	Goroutine   *goroutine.Manager         `validate:"required"`
	Router      *router.Router             `validate:"required"`
	Mediator    *mediator.Mediator         `validate:"required"`
	Idempotency idempotency.Idempotency    `validate:"required"`
	Messaging   messaging.Publisher        `validate:"required"`
	Storage     storage.Storage            `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	UID         uid.NumberID               `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	Validator   validator.StructValidator  `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:        db.NewDB(dep.DBConn, dep.Instrument),
		RepoCache:     cache.NewCache(dep.CacheConn, dep.Config.GetDuration("modules.patient.cache_ttl"), dep.Instrument),
		RepoMessaging: mq.NewMessaging(dep.Messaging, dep.Instrument),
		Storage:       dep.Storage,
		Config:        dep.Config,
		UID:           dep.UID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	})

	if err := uc.Register(dep.Mediator, dep.Validator); err != nil {
		return err
	}

	if dep.Config.GetBool("modules.patient.seed.enabled") {
		ctx := dep.Ctx
		if ctx == nil {
			ctx = context.Background()
		}

		n, err := uc.Seed(ctx)
		if err != nil {
			return err
		}
		slog.InfoContext(ctx, "patient seed finished", "inserted", n)
	}

	inbound.RegisterHTTPEndpoint(dep.Router, dep.Mediator, dep.Idempotency)

	return nil
}
