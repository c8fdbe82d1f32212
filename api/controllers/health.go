package controllers

import (
	"net/http"

	"github.com/quickcart-app/quickcart-backend/api/responses"
	"github.com/quickcart-app/quickcart-backend/pkg/config"
	"github.com/quickcart-app/quickcart-backend/pkg/db"
	pkgerrors "github.com/quickcart-app/quickcart-backend/pkg/errors"
	"github.com/quickcart-app/quickcart-backend/pkg/logger"
	"github.com/quickcart-app/quickcart-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-QuickCart-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the durable dependencies. Redis is only probed when the
// durable cart backend is configured.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-QuickCart-Env", cfg.App.Env)

		checks := map[string]string{"db": "ok"}
		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
				return
			}
		}
		if redisP != nil {
			checks["redis"] = "ok"
			if err := redisP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unreachable"))
				return
			}
		}

		checks["status"] = "ready"
		responses.WriteSuccess(w, checks)
	}
}
