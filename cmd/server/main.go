package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/config"
	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/domain"
	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/health"
	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/infrastructure/postgres"
	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/jobs"
	ctxlog "github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/log"
	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/metrics"
	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/notify"
	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/runner"
	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/signature"
	httptransport "github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/transport/http"
	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/transport/http/handler"
	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	jobStore := postgres.NewJobRepository(pool, postgres.BackoffConfig{
		Base: cfg.RetryBaseDelay(),
		Max:  cfg.RetryMaxDelay(),
	})
	orderStore := postgres.NewOrderRepository(pool)

	verifier := signature.NewVerifier(cfg.ShopifyWebhookSecret, logger)
	intake := usecase.NewIntake(jobStore)
	notifier := notify.NewNotifier(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, cfg.AlertEmail, logger)

	policy := runner.NewPolicy(cfg.WebhookMaxAttempts, cfg.ImportMaxAttempts)
	jobRunner := runner.New(
		jobStore,
		map[domain.JobKind]runner.Executor{
			domain.KindWebhook:           jobs.NewWebhookExecutor(orderStore, logger),
			domain.KindShipmentImportRow: jobs.NewShipmentExecutor(orderStore, logger),
		},
		policy,
		map[domain.JobKind]int{
			domain.KindWebhook:           cfg.WebhookClaimLimit,
			domain.KindShipmentImportRow: cfg.ImportClaimLimit,
		},
		notifier,
		logger,
	)

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	webhookHandler := handler.NewWebhookHandler(verifier, intake, logger)
	runHandler := handler.NewRunHandler(jobRunner, logger)
	importHandler := handler.NewImportHandler(intake, logger)

	srv := http.Server{
		Addr: ":" + cfg.Port,
		Handler: httptransport.NewRouter(
			logger, webhookHandler, runHandler, importHandler,
			checker, cfg.Env, cfg.JobRunnerToken,
		),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
