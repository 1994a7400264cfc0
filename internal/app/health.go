package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shandysiswandi/gopatient/internal/pkg/goerror"
	"github.com/shandysiswandi/gopatient/internal/pkg/router"
)

type healthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

type pinger struct {
	name string
	fn   func(ctx context.Context) error
}

func (a *App) pingers() []pinger {
	return []pinger{
		{name: "database", fn: a.dbConn.Ping},
		{name: "redis", fn: func(ctx context.Context) error { return a.cacheConn.Ping(ctx).Err() }},
	}
}

// health pings every backing service. Any failure answers 503.
func (a *App) health(r *router.Request) (any, error) {
	return checkHealth(r.Context(), a.pingers())
}

func checkHealth(ctx context.Context, pingers []pinger) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Services: make(map[string]string, len(pingers))}
	var errs []error
	for _, p := range pingers {
		if err := p.fn(ctx); err != nil {
			slog.WarnContext(ctx, "health check failed", "service", p.name, "error", err)
			resp.Services[p.name] = "down"
			errs = append(errs, err)
			continue
		}
		resp.Services[p.name] = "up"
	}

	if len(errs) > 0 {
		return nil, goerror.NewUnavailable(errors.Join(errs...))
	}

	return resp, nil
}
