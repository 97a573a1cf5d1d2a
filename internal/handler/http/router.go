package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vxsahu/urban-threadz/internal/service"
	"github.com/vxsahu/urban-threadz/pkg/health"
	"github.com/vxsahu/urban-threadz/pkg/middleware"
)

// Config tunes the router.
type Config struct {
	ServiceName string
	CORSOrigins []string
	// CatalogCacheSeconds is the max-age of catalog responses.
	CatalogCacheSeconds int
	RequestTimeout      time.Duration
	// HeartbeatInterval spaces the comments that keep event streams open.
	HeartbeatInterval time.Duration
	// Streams, when cancelled, ends every open event stream.
	Streams context.Context
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(svc *service.Storefront, healthHandler *health.Handler, logger *slog.Logger, cfg Config) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))
	r.Use(chimw.Compress(5))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	products := NewProductHandler(svc, logger)
	cart := NewCartHandler(svc, logger, cfg.HeartbeatInterval, cfg.Streams)
	wishlist := NewWishlistHandler(svc, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(cfg.RequestTimeout))
			r.Use(middleware.CacheControl(cfg.CatalogCacheSeconds))

			r.Get("/products", products.List)
			r.Get("/products/featured", products.Featured)
			r.Get("/products/new-arrivals", products.NewArrivals)
			r.Get("/products/discounted", products.Discounted)
			r.Get("/products/{id}", products.Get)
			r.Get("/products/{id}/order-link", products.OrderLink)
			r.Get("/categories", products.Categories)
			r.Get("/collections", products.Collections)
			r.Get("/collections/{category}", products.Collection)
			r.Get("/contact/{topic}", products.Contact)
		})

		r.Group(func(r chi.Router) {
			r.Use(SessionIDFromHeader)
			r.Use(middleware.CacheControl(0))

			// Streams outlive the request timeout.
			r.Get("/cart/events", cart.Events)

			r.Group(func(r chi.Router) {
				r.Use(chimw.Timeout(cfg.RequestTimeout))

				r.Get("/cart", cart.Get)
				r.Delete("/cart", cart.Clear)
				r.Post("/cart/items", cart.AddItem)
				r.Get("/cart/items/{productId}", cart.Contains)
				r.Put("/cart/items/{productId}", cart.UpdateItem)
				r.Delete("/cart/items/{productId}", cart.RemoveItem)
				r.Post("/cart/checkout", cart.Checkout)

				r.Get("/wishlist", wishlist.Get)
				r.Post("/wishlist/{productId}", wishlist.Toggle)
				r.Delete("/wishlist/{productId}", wishlist.Remove)
			})
		})
	})

	return r
}
