package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/coursedesk/checkout-service/internal/adapters/postgres"
	"github.com/coursedesk/checkout-service/internal/adapters/secrets"
	stripeadapter "github.com/coursedesk/checkout-service/internal/adapters/stripe"
	"github.com/coursedesk/checkout-service/internal/config"
	checkoutHandler "github.com/coursedesk/checkout-service/internal/handlers/checkout"
	"github.com/coursedesk/checkout-service/internal/middleware"
	checkoutService "github.com/coursedesk/checkout-service/internal/services/checkout"
	"github.com/coursedesk/checkout-service/pkg/logging"
	pkgmiddleware "github.com/coursedesk/checkout-service/pkg/middleware"
	"github.com/coursedesk/checkout-service/pkg/observability"
	"github.com/coursedesk/checkout-service/pkg/queue"
	"github.com/coursedesk/checkout-service/pkg/shutdown"
)

func main() {
	// Load .env if present; real environments set variables directly
	_ = godotenv.Load()

	logger := initLogger()
	defer logger.Sync()

	logger.Info("starting checkout service", zap.String("version", "0.1.0"))

	if err := resolveSecrets(logger); err != nil {
		logger.Fatal("failed to resolve secrets", zap.Error(err))
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	dbPool, err := initDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	shutdownMgr := shutdown.NewManager(logger, 30*time.Second)
	shutdownMgr.RegisterNoErr("database", dbPool.Close)
	shutdownMgr.RegisterCloser("redis", redisClient)

	// Wire adapters
	portLogger := logging.NewZapLogger(logger)
	dbExecutor := postgres.NewDBExecutor(dbPool)
	regRepo := postgres.NewRegistrationRepository(dbPool)
	schedRepo := postgres.NewScheduleRepository(dbPool)
	processor := stripeadapter.NewProcessorAdapter(cfg.Processor.APIKey, logger)
	verifier := stripeadapter.NewWebhookVerifier(cfg.Processor.WebhookSecret, logger)
	jobQueue := queue.NewQueue(redisClient, logger)
	publisher := queue.NewSettlementPublisher(jobQueue)

	// Wire services
	issuer := checkoutService.NewIssuer(dbExecutor, regRepo, schedRepo, processor, cfg.Checkout, portLogger)
	reconciler := checkoutService.NewReconciler(processor, regRepo, publisher, portLogger)

	// Wire handlers
	apiHandler := checkoutHandler.NewHTTPHandler(issuer, reconciler, logger)
	webhookHandler := checkoutHandler.NewWebhookHandler(verifier, reconciler, logger)

	rateLimiter := pkgmiddleware.NewRateLimiter(10, 20)
	shutdownMgr.RegisterNoErr("rate_limiter", rateLimiter.Shutdown)
	securityHeaders := middleware.NewSecurityHeaders(cfg.Logger.Development)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/checkout/intents",
		observability.HTTPMetricsMiddleware("/api/v1/checkout/intents", http.HandlerFunc(apiHandler.CreateIntent)))
	mux.Handle("/api/v1/checkout/reconcile",
		observability.HTTPMetricsMiddleware("/api/v1/checkout/reconcile", http.HandlerFunc(apiHandler.Reconcile)))
	// Webhook endpoint stays outside the rate limiter; the processor
	// controls delivery volume and signature verification gates abuse.
	mux.Handle("/api/v1/webhooks/processor",
		observability.HTTPMetricsMiddleware("/api/v1/webhooks/processor", http.HandlerFunc(webhookHandler.HandleWebhook)))

	handler := securityHeaders.Middleware(withRateLimitExceptWebhooks(rateLimiter, mux))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Metrics and health on a separate port, never exposed publicly
	healthChecker := observability.NewHealthChecker(dbPool, redisClient)
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsMux.HandleFunc("/health", healthChecker.HealthHandler())
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: metricsMux,
	}

	go func() {
		logger.Info("metrics server listening", zap.Int("port", cfg.Server.MetricsPort))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		logger.Info("HTTP server listening",
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	shutdownMgr.RegisterHTTPServer("metrics_server", metricsServer)
	shutdownMgr.RegisterHTTPServer("http_server", server)
	shutdownMgr.WaitForShutdown()
}

// withRateLimitExceptWebhooks applies the per-IP limiter to everything but
// the processor webhook path
func withRateLimitExceptWebhooks(rl *pkgmiddleware.RateLimiter, next http.Handler) http.Handler {
	limited := rl.Middleware(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/webhooks/processor" {
			next.ServeHTTP(w, r)
			return
		}
		limited.ServeHTTP(w, r)
	})
}

// resolveSecrets pulls processor credentials through the configured secret
// backend and exports them for config loading. With SECRETS_BACKEND unset or
// "env", credentials come straight from the environment.
func resolveSecrets(logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return secrets.Resolve(ctx, logger, "STRIPE_API_KEY", "STRIPE_WEBHOOK_SECRET", "DB_PASSWORD")
}

func initLogger() *zap.Logger {
	if os.Getenv("ENVIRONMENT") == "production" {
		zapCfg := zap.NewProductionConfig()
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		logger, _ := zapCfg.Build()
		return logger
	}

	logger, _ := zap.NewDevelopment()
	return logger
}

func initDatabase(cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = cfg.Database.MaxConns
	poolConfig.MinConns = cfg.Database.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established", zap.String("database", cfg.Database.Database))
	return pool, nil
}
