package router

import (
	"net/http"
	"slices"

	"github.com/shandysiswandi/gopatient/internal/pkg/config"
)

// middlewareMaintenance answers 503 for routes listed in
// app.maintenance.endpoints, or for every route except /health when
// app.maintenance.enabled is set. Both keys are read per request so a config
// reload takes effect without a restart.
func middlewareMaintenance(cfg config.Config) Middleware {
	return func(next http.Handler) http.Handler {
		if cfg == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := matchedRoutePath(r)

			blocked := cfg.GetBool("app.maintenance.enabled") && route != "/health"
			if !blocked {
				blocked = slices.Contains(cfg.GetArray("app.maintenance.endpoints"), route)
			}

			if blocked {
				writeJSON(w, errorResponse{Message: "service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
