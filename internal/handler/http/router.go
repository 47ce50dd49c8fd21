package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/frostmag155/shop-frontend/internal/service"
	"github.com/frostmag155/shop-frontend/pkg/health"
	"github.com/frostmag155/shop-frontend/pkg/middleware"
)

// RouterConfig carries the handler dependencies and the knobs the router
// needs from service configuration.
type RouterConfig struct {
	Carts         *service.CartService
	Catalog       *service.CatalogService
	Checkout      *service.CheckoutService
	Sessions      *service.SessionService
	Health        *health.Handler
	TokenValidate middleware.TokenValidator
	Logger        *slog.Logger
	RateLimitRPS  int
	RateBurst     int
	PprofCIDRs    []string
	CatalogMaxAge int
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateBurst, cfg.Logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, cfg.Logger)

	cartHandler := NewCartHandler(cfg.Carts, cfg.Logger)
	catalogHandler := NewCatalogHandler(cfg.Catalog, cfg.Logger)
	checkoutHandler := NewCheckoutHandler(cfg.Checkout, cfg.Logger)
	sessionHandler := NewSessionHandler(cfg.Sessions, cfg.Logger)
	contentHandler := NewContentHandler()

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		// Session tokens are optional everywhere: the storefront works for
		// anonymous shoppers, and handlers derive the cart owner per request.
		r.Use(middleware.OptionalAuth(cfg.TokenValidate))

		r.Post("/auth/login", sessionHandler.Login)
		r.Post("/auth/register", sessionHandler.Register)

		// Catalog reads are safe to cache briefly.
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(cfg.CatalogMaxAge))

			r.Get("/products", catalogHandler.ListProducts)
			r.Get("/products/{model}", catalogHandler.ProductDetail)
			r.Get("/products/{model}/display-variant", catalogHandler.DisplayVariant)

			r.Get("/content/store", contentHandler.StoreInfo)
			r.Get("/content/faq", contentHandler.FAQ)
			r.Get("/content/contacts", contentHandler.Contacts)
		})

		r.Post("/get-variant-id", catalogHandler.ResolveVariant)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)

			r.Post("/items", cartHandler.AddItem)
			r.Post("/items/{variantId}/increment", cartHandler.IncrementItem)
			r.Post("/items/{variantId}/decrement", cartHandler.DecrementItem)
			r.Delete("/items/{variantId}", cartHandler.RemoveItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/summary", checkoutHandler.Summary)
			r.Post("/", checkoutHandler.Submit)
			r.Get("/receipt", checkoutHandler.Receipt)
		})
	})

	return r
}
