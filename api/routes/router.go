package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/autoparts-storefront/api/controllers"
	"github.com/angelmondragon/autoparts-storefront/api/middleware"
	"github.com/angelmondragon/autoparts-storefront/internal/catalog"
	"github.com/angelmondragon/autoparts-storefront/internal/checkout"
	"github.com/angelmondragon/autoparts-storefront/internal/newsletter"
	"github.com/angelmondragon/autoparts-storefront/internal/pricing"
	"github.com/angelmondragon/autoparts-storefront/pkg/config"
	"github.com/angelmondragon/autoparts-storefront/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	gatherer prometheus.Gatherer,
	store controllers.Pinger,
	cat *catalog.Catalog,
	rules pricing.Rules,
	sessions controllers.CartSessions,
	checkoutService checkout.Service,
	newsletterService *newsletter.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	priceRange := catalog.PriceRange{
		Low:  decimal.NewFromInt(int64(cfg.Catalog.PriceFloor)),
		High: decimal.NewFromInt(int64(cfg.Catalog.PriceCeiling)),
	}
	now := time.Now

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, store))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(cat, priceRange, logg))
			r.Get("/featured", controllers.FeaturedProducts(cat, cfg.Catalog.FeaturedCount, logg))
			r.Get("/{productId}", controllers.GetProduct(cat, cfg.Catalog.RelatedCount, logg))
		})
		r.Get("/brands", controllers.ListBrands(cat))
		r.Get("/categories", controllers.ListCategories(cat))

		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/makes", controllers.VehicleMakes())
			r.Get("/makes/{make}/models", controllers.VehicleModels(logg))
			r.Get("/years", controllers.VehicleYears(now))
			r.Post("/select", controllers.SelectVehicle(cat, now, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.CartSession(logg))
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.GetCart(sessions, rules, logg))
				r.Delete("/", controllers.ClearCart(sessions, rules, logg))
				r.Post("/items", controllers.AddCartItem(sessions, cat, rules, logg))
				r.Patch("/items/{productId}", controllers.UpdateCartItem(sessions, rules, logg))
				r.Delete("/items/{productId}", controllers.RemoveCartItem(sessions, rules, logg))
			})
			r.Post("/checkout", controllers.PlaceOrder(sessions, checkoutService, logg))
		})

		r.Route("/newsletter", func(r chi.Router) {
			r.Post("/", controllers.NewsletterSubscribe(newsletterService, logg))
			r.Get("/{email}", controllers.NewsletterStatus(newsletterService, logg))
		})
	})

	return r
}
