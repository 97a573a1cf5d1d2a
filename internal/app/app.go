package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/vxsahu/urban-threadz/internal/catalog"
	"github.com/vxsahu/urban-threadz/internal/config"
	"github.com/vxsahu/urban-threadz/internal/event"
	handler "github.com/vxsahu/urban-threadz/internal/handler/http"
	"github.com/vxsahu/urban-threadz/internal/order"
	"github.com/vxsahu/urban-threadz/internal/service"
	"github.com/vxsahu/urban-threadz/internal/storage"
	"github.com/vxsahu/urban-threadz/internal/storage/memory"
	redisstore "github.com/vxsahu/urban-threadz/internal/storage/redis"
	"github.com/vxsahu/urban-threadz/pkg/health"
	"github.com/vxsahu/urban-threadz/pkg/httpclient"
	pkgkafka "github.com/vxsahu/urban-threadz/pkg/kafka"
	"github.com/vxsahu/urban-threadz/pkg/tracing"
)

// ServiceName labels logs, metrics and traces.
const ServiceName = "storefront"

// Version is reported in trace resources.
var Version = "0.1.0"

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *goredis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown tracing.ShutdownFunc
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.Init(ctx, tracing.Config{
		Enabled:        cfg.OTELEnabled,
		ServiceName:    ServiceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		Endpoint:       cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	healthHandler := health.NewHandler(ServiceName)

	backend, err := a.storage(ctx, healthHandler)
	if err != nil {
		a.release()
		return nil, err
	}

	src := a.catalogSource()
	products, err := catalog.Load(ctx, src)
	if err != nil {
		a.release()
		return nil, err
	}
	logger.Info("catalog loaded",
		slog.Int("products", products.Len()),
		slog.String("source", src.Name()),
	)

	// Build the dependency graph.
	composer := order.NewComposer(order.Config{
		StoreName:             cfg.StoreName,
		SiteURL:               cfg.SiteURL,
		CurrencySymbol:        cfg.CurrencySymbol,
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		MessagingDomain:       cfg.MessagingDomain,
		RecipientID:           cfg.RecipientID,
	})
	svc := service.New(products, backend, composer, logger,
		service.WithMaxQuantity(cfg.CartMaxQuantity),
		service.WithPublisher(a.publisher(healthHandler)),
	)

	// HTTP router. Event streams end when shutdown begins.
	streams, stopStreams := context.WithCancel(context.Background())
	router := handler.NewRouter(svc, healthHandler, logger, handler.Config{
		ServiceName:         ServiceName,
		CORSOrigins:         cfg.CORSOrigins,
		CatalogCacheSeconds: cfg.CatalogCacheSeconds,
		RequestTimeout:      cfg.RequestTimeout(),
		Streams:             streams,
	})

	// WriteTimeout stays zero so cart event streams are not cut off; other
	// routes are bounded by the router's request timeout.
	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	a.httpServer.RegisterOnShutdown(stopStreams)
	return a, nil
}

// storage selects the session storage backend and registers its health check.
func (a *App) storage(ctx context.Context, h *health.Handler) (storage.Storage, error) {
	if a.cfg.StorageBackend != config.BackendRedis {
		a.logger.Info("using in-memory session storage")
		return memory.New(), nil
	}

	rdb, err := redisstore.NewClient(ctx, redisstore.Config{
		Addr:     a.cfg.RedisAddr,
		Password: a.cfg.RedisPass,
		DB:       a.cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.rdb = rdb
	a.logger.Info("connected to Redis",
		slog.String("addr", a.cfg.RedisAddr),
		slog.Int("db", a.cfg.RedisDB),
	)

	store := redisstore.New(rdb, a.cfg.StorageTTL(), a.logger, redisstore.WithChannel(a.cfg.RedisChannel))
	h.Register("redis", store.Ping)
	return store, nil
}

func (a *App) catalogSource() catalog.Source {
	switch {
	case a.cfg.CatalogURL != "":
		fetcher := httpclient.NewFetcher(
			httpclient.New(httpclient.DefaultConfig()),
			httpclient.DefaultBreakerConfig("catalog"),
			a.logger,
		)
		return catalog.Remote{URL: a.cfg.CatalogURL, Fetcher: fetcher}
	case a.cfg.CatalogPath != "":
		return catalog.File{Path: a.cfg.CatalogPath}
	default:
		return catalog.Embedded{}
	}
}

// publisher returns the Kafka publisher when enabled, otherwise a no-op.
func (a *App) publisher(h *health.Handler) event.Publisher {
	if !a.cfg.KafkaEnabled {
		return event.Noop{}
	}

	a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(a.cfg.KafkaBrokers), a.logger)
	h.Register("kafka", a.producer.Ping)
	a.logger.Info("kafka producer initialized", slog.Any("brokers", a.cfg.KafkaBrokers))
	return event.NewKafkaPublisher(a.producer, a.logger)
}

// Handler returns the HTTP handler served by Run.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.release()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.release()
	a.logger.Info("application shutdown complete")
	return nil
}

// release closes the clients opened by NewApp.
func (a *App) release() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
		a.producer = nil
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
		a.rdb = nil
	}

	if a.tracerShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
		a.tracerShutdown = nil
	}
}
