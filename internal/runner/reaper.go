package runner

import (
	"context"
	"log/slog"
	"time"

	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/metrics"
	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/repository"
)

const reapBatchLimit = 100

// Reaper releases jobs stuck in claimed state back to pending. A runner pass
// that dies mid-batch leaves its in-flight job claimed; the reaper is the
// staleness reclaim policy that eventually returns it to the pool.
type Reaper struct {
	store      repository.JobStore
	logger     *slog.Logger
	interval   time.Duration
	staleAfter time.Duration
}

func NewReaper(store repository.JobStore, logger *slog.Logger, interval, staleAfter time.Duration) *Reaper {
	return &Reaper{
		store:      store,
		logger:     logger.With("component", "reaper"),
		interval:   interval,
		staleAfter: staleAfter,
	}
}

func (r *Reaper) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reaper started", "interval", r.interval, "stale_after", r.staleAfter)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reaper shut down")
			return
		case <-ticker.C:
			r.reap(ctx)
		}
	}
}

func (r *Reaper) reap(ctx context.Context) {
	cutoff := time.Now().Add(-r.staleAfter)

	released, err := r.store.ReleaseStale(ctx, cutoff, reapBatchLimit)
	if err != nil {
		r.logger.Error("release stale claims", "error", err)
		return
	}
	if released > 0 {
		metrics.ReaperReleasedTotal.Add(float64(released))
		r.logger.Warn("released stale claims", "count", released)
	}
}
