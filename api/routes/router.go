package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/storefrontlab/storefront-backend/api/controllers"
	"github.com/storefrontlab/storefront-backend/api/middleware"
	"github.com/storefrontlab/storefront-backend/internal/cart"
	"github.com/storefrontlab/storefront-backend/internal/catalog"
	"github.com/storefrontlab/storefront-backend/internal/store"
	"github.com/storefrontlab/storefront-backend/pkg/config"
	"github.com/storefrontlab/storefront-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	selector *store.Selector,
	cartService cart.Service,
	catalogService catalog.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, selector))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.Auth, logg))
		r.Get("/", controllers.CatalogList(catalogService, logg))
		r.Get("/{productId}", controllers.CatalogGet(catalogService, logg))
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Auth, logg))
		r.Get("/", controllers.CartList(cartService, logg))
		r.Post("/", controllers.CartAdd(cartService, logg))
		r.Patch("/{rowId}", controllers.CartSetQuantity(cartService, logg))
		r.Delete("/{rowId}", controllers.CartRemove(cartService, logg))
	})

	return r
}
