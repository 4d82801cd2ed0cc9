package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/coursedesk/checkout-service/internal/adapters/postgres"
	"github.com/coursedesk/checkout-service/internal/adapters/secrets"
	"github.com/coursedesk/checkout-service/internal/config"
	invoiceService "github.com/coursedesk/checkout-service/internal/services/invoice"
	"github.com/coursedesk/checkout-service/internal/worker"
	"github.com/coursedesk/checkout-service/pkg/logging"
	"github.com/coursedesk/checkout-service/pkg/queue"
)

func main() {
	_ = godotenv.Load()

	logger := newLogger()
	defer logger.Sync()

	secretsCtx, cancelSecrets := context.WithTimeout(context.Background(), 10*time.Second)
	err := secrets.Resolve(secretsCtx, logger, "DB_PASSWORD")
	cancelSecrets()
	if err != nil {
		logger.Fatal("resolve secrets", zap.Error(err))
	}

	cfg, err := config.LoadWorkerFromEnv()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := newPool(ctx, cfg)
	cancel()
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	invoiceRepo := postgres.NewInvoiceRepository(pool)
	syncSvc := invoiceService.NewSyncService(invoiceRepo, logging.NewZapLogger(logger))
	jobQueue := queue.NewQueue(rdb, logger)
	settlementWorker := worker.NewSettlementWorker(jobQueue, syncSvc, logger)

	workerCtx, stop := context.WithCancel(context.Background())
	defer stop()

	go settlementWorker.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	stop()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.MaxConns = cfg.Database.MaxConns
	poolConfig.MinConns = cfg.Database.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
