package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
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

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.StructValidator
	clock     clock.Clocker
	uid       uid.NumberID
	uuid      uid.StringID
	mediator  *mediator.Mediator

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	idemp     idempotency.Idempotency
	messaging messaging.Publisher
	storage   storage.Storage

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initDatabase()
	app.initCache()
	app.initStorage()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
