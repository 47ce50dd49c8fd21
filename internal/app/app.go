package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/frostmag155/shop-frontend/internal/auth"
	"github.com/frostmag155/shop-frontend/internal/commerce"
	"github.com/frostmag155/shop-frontend/internal/config"
	"github.com/frostmag155/shop-frontend/internal/event"
	handler "github.com/frostmag155/shop-frontend/internal/handler/http"
	redisrepo "github.com/frostmag155/shop-frontend/internal/repository/redis"
	"github.com/frostmag155/shop-frontend/internal/service"
	"github.com/frostmag155/shop-frontend/pkg/database"
	"github.com/frostmag155/shop-frontend/pkg/health"
	"github.com/frostmag155/shop-frontend/pkg/httpclient"
	pkgkafka "github.com/frostmag155/shop-frontend/pkg/kafka"
	"github.com/frostmag155/shop-frontend/pkg/middleware"
	"github.com/frostmag155/shop-frontend/pkg/tracing"
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	rdb             *redis.Client
	producer        *pkgkafka.Producer
	httpServer      *http.Server
	tracingShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize tracing first so every subsequent component picks up the
	// global provider. Disabled by default.
	tracingCfg := tracing.DefaultConfig("storefront")
	tracingCfg.Environment = cfg.Environment
	tracingCfg.OTLPEndpoint = cfg.OTLPEndpoint
	tracingCfg.Enabled = cfg.TracingEnabled
	tracingShutdown, err := tracing.InitTracer(ctx, tracingCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	// Initialize Redis client.
	rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("addr", cfg.RedisAddr),
		slog.Int("db", cfg.RedisDB),
	)

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Upstream commerce API client.
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.CommerceTimeout
	commerceClient := commerce.New(cfg.CommerceBaseURL, httpCfg, logger)

	// Build the dependency graph.
	cartTTL := cfg.CartTTLDuration()
	cartRepo := redisrepo.NewCartRepository(rdb, cartTTL)
	stateRepo := redisrepo.NewShopperStateRepository(rdb, cartTTL)
	eventProducer := event.NewProducer(producer, logger)

	mirror := service.NewRemoteMirror(commerceClient, stateRepo, logger)
	cartService := service.NewCartService(cartRepo, mirror, eventProducer, logger, cartTTL, cfg.RemovalWindow())
	catalogService := service.NewCatalogService(commerceClient, logger)
	checkoutService := service.NewCheckoutService(cartService, stateRepo, commerceClient, eventProducer, logger)

	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL)
	sessionService := service.NewSessionService(commerceClient, tokens, logger)

	// Health checks. The commerce API is a readiness dependency: the
	// storefront can serve cached/local state without it, but reporting
	// not-ready keeps traffic off an instance that cannot complete checkout.
	healthHandler := health.NewHandler()
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.Register("commerce-api", func(ctx context.Context) error {
		return commerceClient.Healthy(ctx)
	})

	router := handler.NewRouter(handler.RouterConfig{
		Carts:         cartService,
		Catalog:       catalogService,
		Checkout:      checkoutService,
		Sessions:      sessionService,
		Health:        healthHandler,
		TokenValidate: tokenValidator(tokens),
		Logger:        logger,
		RateLimitRPS:  cfg.RateLimitRPS,
		RateBurst:     cfg.RateLimitBurst,
		PprofCIDRs:    cfg.PprofAllowedCIDRs,
		CatalogMaxAge: cfg.CatalogCacheMaxAge,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:             cfg,
		logger:          logger,
		rdb:             rdb,
		producer:        producer,
		httpServer:      httpServer,
		tracingShutdown: tracingShutdown,
	}, nil
}

// tokenValidator adapts the JWT manager to the middleware's validator shape.
func tokenValidator(tokens *auth.JWTManager) middleware.TokenValidator {
	return func(token string) (*middleware.Claims, error) {
		claims, err := tokens.ValidateSessionToken(strings.TrimSpace(token))
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: claims.UserID,
			Email:  claims.Email,
			Name:   claims.Name,
		}, nil
	}
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	if err := a.tracingShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
