package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/catalog-backend/api/controllers"
	"github.com/angelmondragon/catalog-backend/api/middleware"
	"github.com/angelmondragon/catalog-backend/internal/catalog"
	"github.com/angelmondragon/catalog-backend/internal/wishlist"
	"github.com/angelmondragon/catalog-backend/pkg/auth"
	"github.com/angelmondragon/catalog-backend/pkg/config"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/metrics"
	"github.com/angelmondragon/catalog-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs. Redis and the metrics
// fields are optional.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Redis       *redis.Client
	Catalog     catalog.Service
	Wishlist    wishlist.Service
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	cfg, logg := deps.Config, deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.CORS),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.Logging(logg),
	)

	readiness := map[string]controllers.Pinger{"database": deps.DB}
	var limiter redis.RateLimiter
	if deps.Redis != nil {
		readiness["redis"] = deps.Redis
		limiter = deps.Redis
	}

	mutations := middleware.RateLimit(
		middleware.NewRateLimitPolicy("mutations", cfg.RateLimit.MutationWindow, cfg.RateLimit.MutationLimit),
		limiter,
		logg,
	)
	authenticate := middleware.Auth(cfg.JWT, logg)
	adminOnly := middleware.RequireRole(logg, string(auth.RoleAdmin))

	r.Get("/", controllers.Root())
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))

	r.Route("/api", func(r chi.Router) {
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(deps.Catalog, logg))

			// registered before /{id} so "sub" is never taken for a category id
			r.Route("/sub", func(r chi.Router) {
				r.Get("/all", controllers.SubCategoryList(deps.Catalog, logg))
				r.Get("/{categoryId}", controllers.SubCategoryListByCategory(deps.Catalog, logg))

				r.Group(func(r chi.Router) {
					r.Use(authenticate, adminOnly, mutations)
					r.Post("/", controllers.SubCategoryCreate(deps.Catalog, logg))
					r.Put("/{id}", controllers.SubCategoryUpdate(deps.Catalog, logg))
					r.Delete("/{id}", controllers.SubCategoryDelete(deps.Catalog, logg))
				})
			})

			r.Get("/{id}", controllers.CategoryGet(deps.Catalog, logg))

			r.Group(func(r chi.Router) {
				r.Use(authenticate, adminOnly, mutations)
				r.Post("/", controllers.CategoryCreate(deps.Catalog, logg))
				r.Put("/{id}", controllers.CategoryUpdate(deps.Catalog, logg))
				r.Delete("/{id}", controllers.CategoryDelete(deps.Catalog, logg))
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.Catalog, logg))
			r.Get("/{id}", controllers.ProductGet(deps.Catalog, logg))

			r.Group(func(r chi.Router) {
				r.Use(authenticate, adminOnly, mutations)
				r.Post("/", controllers.ProductCreate(deps.Catalog, logg))
				r.Put("/{id}", controllers.ProductUpdate(deps.Catalog, logg))
				r.Delete("/{id}", controllers.ProductDelete(deps.Catalog, logg))
			})
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/", controllers.WishlistGet(deps.Wishlist, logg))

			r.Group(func(r chi.Router) {
				r.Use(mutations)
				r.Post("/", controllers.WishlistAddItem(deps.Wishlist, logg))
				r.Delete("/", controllers.WishlistClear(deps.Wishlist, logg))
				r.Delete("/{productId}", controllers.WishlistRemoveItem(deps.Wishlist, logg))
			})
		})
	})

	return r
}
