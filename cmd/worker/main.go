// Package main runs the background access-email worker.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/forge-workshop/backend/config"
	"github.com/forge-workshop/backend/internal/maillog"
	"github.com/forge-workshop/backend/internal/notify"
	"github.com/forge-workshop/backend/internal/worker"
	"github.com/forge-workshop/backend/pkg/database"
	"github.com/forge-workshop/backend/pkg/queue"
	"github.com/forge-workshop/backend/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if cfg.Redis.Addr == "" {
		logger.Fatal("REDIS_ADDR is required for the worker")
	}
	if cfg.Email.SMTPHost == "" {
		logger.Fatal("SMTP_HOST is required for the worker")
	}

	ctx := context.Background()
	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var deliveryLog worker.DeliveryLog
	if cfg.Database.URL == "" {
		logger.Warn("DATABASE_URL not set; delivery logging disabled")
	} else {
		pool, err := database.NewPostgresPool(ctx, cfg.Database.URL, logger)
		if err != nil {
			logger.Warn("database unavailable; delivery logging disabled", zap.Error(err))
		} else {
			defer pool.Close()
			if err := database.Migrate(ctx, pool); err != nil {
				logger.Warn("migrate", zap.Error(err))
			}
			deliveryLog = maillog.NewRepository(pool)
		}
	}

	mailer := notify.NewSMTPMailer(cfg.Email)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	processor := worker.NewEmailProcessor(jobQueue, mailer, deliveryLog, logger)

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go processor.Run(runCtx)
	logger.Info("email worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
