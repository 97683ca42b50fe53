package controllers

import (
	"net/http"

	"github.com/storefrontlab/storefront-backend/api/responses"
	"github.com/storefrontlab/storefront-backend/internal/store"
	"github.com/storefrontlab/storefront-backend/pkg/config"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready whenever a store can serve rows; the payload
// exposes which one is active so operators can spot degraded mode.
func HealthReady(cfg *config.Config, selector *store.Selector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)

		payload := map[string]string{
			"status":     "ready",
			"store_mode": store.ModeFallback,
		}
		if selector != nil {
			payload["store_mode"] = selector.Mode()
			if err := selector.Ping(r.Context()); err != nil {
				payload["status"] = "degraded"
				responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, payload)
				return
			}
		}

		responses.WriteSuccess(w, payload)
	}
}
