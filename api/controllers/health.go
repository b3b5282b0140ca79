package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/autoparts-storefront/api/responses"
	"github.com/angelmondragon/autoparts-storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/autoparts-storefront/pkg/errors"
	"github.com/angelmondragon/autoparts-storefront/pkg/logger"
)

const (
	envHeader    = "X-AutoParts-Env"
	readyTimeout = 2 * time.Second
)

// Pinger is any durable dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the configured cart store. A nil store means carts live in
// process memory and the service is ready as soon as it is up.
func HealthReady(cfg *config.Config, logg *logger.Logger, store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cart store unreachable").WithDetails(map[string]any{
					"storage_driver": cfg.Storage.Driver,
				}))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{
			"status":         "ready",
			"storage_driver": cfg.Storage.Driver,
		})
	}
}
