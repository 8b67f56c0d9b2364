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
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
)

// The worker triggers runner passes on a cron schedule and reaps stale
// claims. Concurrency across replicas is safe: every pass claims its batch
// through the store's atomic claim, so overlapping schedules never process
// the same job twice.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	logger.Info("db connected")

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	jobStore := postgres.NewJobRepository(pool, postgres.BackoffConfig{
		Base: cfg.RetryBaseDelay(),
		Max:  cfg.RetryMaxDelay(),
	})
	orderStore := postgres.NewOrderRepository(pool)
	notifier := notify.NewNotifier(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, cfg.AlertEmail, logger)

	jobRunner := runner.New(
		jobStore,
		map[domain.JobKind]runner.Executor{
			domain.KindWebhook:           jobs.NewWebhookExecutor(orderStore, logger),
			domain.KindShipmentImportRow: jobs.NewShipmentExecutor(orderStore, logger),
		},
		runner.NewPolicy(cfg.WebhookMaxAttempts, cfg.ImportMaxAttempts),
		map[domain.JobKind]int{
			domain.KindWebhook:           cfg.WebhookClaimLimit,
			domain.KindShipmentImportRow: cfg.ImportClaimLimit,
		},
		notifier,
		logger,
	)

	c := cron.New()
	_, err = c.AddFunc(cfg.RunSchedule, func() {
		if _, runErr := jobRunner.RunAll(ctx, 0); runErr != nil {
			logger.Error("scheduled runner pass", "error", runErr)
		}
	})
	if err != nil {
		stop()
		log.Fatalf("invalid RUN_SCHEDULE %q: %v", cfg.RunSchedule, err)
	}
	c.Start()
	logger.Info("worker started", "schedule", cfg.RunSchedule)

	reaper := runner.NewReaper(jobStore, logger, cfg.ReapInterval(), cfg.StaleClaimAfter())
	go reaper.Start(ctx)

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)
	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()

	// Let an in-flight pass finish before closing the pool.
	<-c.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}

	logger.Info("worker shut down")
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
