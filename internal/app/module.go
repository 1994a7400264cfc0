package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/gopatient/internal/patient"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.patient.enabled") {
		if err := patient.New(patient.Dependency{
			Ctx:         a.ctx,
			DBConn:      a.dbConn,
			CacheConn:   a.cacheConn,
			Goroutine:   a.goroutine,
			Router:      a.router,
			Mediator:    a.mediator,
			Idempotency: a.idemp,
			Messaging:   a.messaging,
			Storage:     a.storage,
			Config:      a.config,
			Instrument:  a.ins,
			UID:         a.uid,
			Clock:       a.clock,
			Validator:   a.validator,
		}); err != nil {
			slog.Error("failed to init module patient", "error", err)
			os.Exit(1)
		}
	}
}
