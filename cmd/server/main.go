// Package main runs the workshop payment and registration HTTP server.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/forge-workshop/backend/config"
	"github.com/forge-workshop/backend/internal/middleware"
	"github.com/forge-workshop/backend/internal/notify"
	"github.com/forge-workshop/backend/internal/orders"
	"github.com/forge-workshop/backend/internal/payments"
	"github.com/forge-workshop/backend/internal/registrants"
	"github.com/forge-workshop/backend/pkg/database"
	"github.com/forge-workshop/backend/pkg/queue"
	"github.com/forge-workshop/backend/pkg/redis"
	"github.com/forge-workshop/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()

	// A missing or unreachable database is a warning, not a startup failure:
	// the process stays up and store-backed handlers fail at call time.
	var pool *pgxpool.Pool
	if cfg.Database.URL == "" {
		logger.Warn("DATABASE_URL not set; registrant store disabled")
	} else {
		pool, err = database.NewPostgresPool(ctx, cfg.Database.URL, logger)
		if err != nil {
			logger.Warn("database unavailable; registrant store disabled", zap.Error(err))
			pool = nil
		} else {
			defer pool.Close()
			if err := database.Migrate(ctx, pool); err != nil {
				logger.Fatal("migrate", zap.Error(err))
			}
		}
	}

	var jobQueue *queue.Queue
	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Warn("redis unavailable; email queue disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			jobQueue = queue.NewQueue(rdb.Client, logger)
		}
	}

	var mailer notify.Mailer
	if cfg.Email.SMTPHost != "" {
		mailer = notify.NewSMTPMailer(cfg.Email)
	}
	dispatcher := notify.NewDispatcher(jobQueue, mailer, logger)

	registrantRepo := registrants.NewRepository(pool)
	provider := payments.NewClient(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, logger)
	links := payments.ResourceLinks{
		WhatsApp: cfg.Links.WhatsApp,
		Telegram: cfg.Links.Telegram,
		Download: cfg.Links.Download,
	}

	orderHandler := orders.NewHandler(registrantRepo, provider, cfg.Razorpay.KeyID, cfg.Razorpay.Currency, logger)
	webhookHandler := payments.NewWebhookHandler(registrantRepo, dispatcher, links, cfg.Razorpay.WebhookSecret, logger)
	checkoutHandler := payments.NewCheckoutHandler(logger)
	statusHandler := registrants.NewHandler(registrantRepo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	router.POST("/create-order", orderHandler.Create)
	router.POST("/payment-verify", checkoutHandler.Verify)
	router.POST("/webhook", webhookHandler.Handle)
	router.GET("/attendee-status/:paymentId", statusHandler.Status)
	if cfg.Server.DebugEndpoints {
		logger.Warn("debug endpoints enabled; /_recent-attendees is unauthenticated")
		router.GET("/_recent-attendees", statusHandler.Recent)
	}
	if cfg.Server.StaticDir != "" {
		router.Static("/static", cfg.Server.StaticDir)
		router.StaticFile("/", filepath.Join(cfg.Server.StaticDir, "index.html"))
	}

	ln, port, err := listen(cfg.Server.Port, cfg.Server.PortFallbackAttempts, logger)
	if err != nil {
		logger.Fatal("listen", zap.Error(err))
	}

	srv := &http.Server{
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", port))
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

// listen binds the configured port, trying the next consecutive ports (up to
// attempts total) when the bind fails.
func listen(port string, attempts int, logger *zap.Logger) (net.Listener, string, error) {
	base, err := strconv.Atoi(port)
	if err != nil {
		return nil, "", fmt.Errorf("invalid port %q: %w", port, err)
	}
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		p := strconv.Itoa(base + i)
		ln, err := net.Listen("tcp", ":"+p)
		if err == nil {
			return ln, p, nil
		}
		logger.Warn("port unavailable, trying next", zap.String("port", p), zap.Error(err))
	}
	return nil, "", fmt.Errorf("no free port in range %d-%d", base, base+attempts-1)
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
