package controllers

import (
	"net/http"

	"go.uber.org/multierr"

	"github.com/vigneshnair/bazaarly-backend/api/responses"
	"github.com/vigneshnair/bazaarly-backend/pkg/config"
	"github.com/vigneshnair/bazaarly-backend/pkg/db"
	pkgerrors "github.com/vigneshnair/bazaarly-backend/pkg/errors"
	"github.com/vigneshnair/bazaarly-backend/pkg/logger"
	pkgredis "github.com/vigneshnair/bazaarly-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Bazaarly-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the backing stores. Nil pingers are skipped so a
// deployment without Redis still reports ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP pkgredis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Bazaarly-Env", cfg.App.Env)

		checks := map[string]string{}
		var errs []error

		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				checks["database"] = "down"
				errs = append(errs, err)
			} else {
				checks["database"] = "up"
			}
		}
		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				checks["redis"] = "down"
				errs = append(errs, err)
			} else {
				checks["redis"] = "up"
			}
		}

		if combined := multierr.Combine(errs...); combined != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, combined, "dependency unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
