package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aurelioventura/healthscan-backend/api/controllers"
	"github.com/aurelioventura/healthscan-backend/api/middleware"
	productsvc "github.com/aurelioventura/healthscan-backend/internal/products"
	statsvc "github.com/aurelioventura/healthscan-backend/internal/stats"
	"github.com/aurelioventura/healthscan-backend/pkg/config"
	"github.com/aurelioventura/healthscan-backend/pkg/logger"
)

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	ProductService productsvc.Service
	StatsService   statsvc.Service
	Pingers        map[string]controllers.Pinger
	Metrics        prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/products", func(r chi.Router) {
			r.Get("/", controllers.SearchProducts(deps.ProductService, logg))
		})

		r.Route("/v1/stats", func(r chi.Router) {
			r.Get("/", controllers.GetStats(deps.StatsService, logg))
			r.Post("/refresh", controllers.RefreshStats(deps.StatsService, logg))
		})
	})

	return r
}
