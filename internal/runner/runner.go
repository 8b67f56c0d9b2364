package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/domain"
	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/metrics"
	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/notify"
	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/repository"
)

// Executor runs the business logic for one job kind. Implementations must be
// idempotent with respect to re-delivery: the pipeline is at-least-once.
type Executor interface {
	Execute(ctx context.Context, job *domain.Job) error
}

// Summary accumulates the outcome of one runner pass. In-memory only,
// discarded after the caller reads it.
type Summary struct {
	Claimed   int `json:"claimed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

func (s *Summary) add(other Summary) {
	s.Claimed += other.Claimed
	s.Succeeded += other.Succeeded
	s.Failed += other.Failed
}

type Options struct {
	Kind  domain.JobKind
	Limit int
}

// Runner ties claim → execute → complete/fail into one pass. It owns no
// loop: callers invoke Run from an HTTP trigger or a worker schedule, and
// concurrency comes from multiple invocations claiming disjoint batches
// through the store's atomic claim.
type Runner struct {
	store     repository.JobStore
	executors map[domain.JobKind]Executor
	policy    Policy
	ceilings  map[domain.JobKind]int
	notifier  notify.Notifier
	logger    *slog.Logger
}

func New(
	store repository.JobStore,
	executors map[domain.JobKind]Executor,
	policy Policy,
	ceilings map[domain.JobKind]int,
	notifier notify.Notifier,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		store:     store,
		executors: executors,
		policy:    policy,
		ceilings:  ceilings,
		notifier:  notifier,
		logger:    logger.With("component", "runner"),
	}
}

const defaultCeiling = 20

// Ceiling returns the hard per-pass claim bound for a kind. Caller-supplied
// limits are clamped to it regardless of what was requested.
func (r *Runner) Ceiling(kind domain.JobKind) int {
	if c, ok := r.ceilings[kind]; ok && c > 0 {
		return c
	}
	return defaultCeiling
}

func (r *Runner) clampLimit(kind domain.JobKind, limit int) int {
	ceiling := r.Ceiling(kind)
	if limit <= 0 || limit > ceiling {
		return ceiling
	}
	return limit
}

// Run claims up to opts.Limit jobs of one kind and processes them to
// completion, sequentially in claim order. Executor side effects share the
// order store, so parallelism inside a batch would reintroduce the race the
// claim step exists to prevent.
//
// Claim-level store errors propagate to the caller; per-job failures —
// including failures to record an outcome — are absorbed into the summary so
// one bad job never sinks the batch.
func (r *Runner) Run(ctx context.Context, opts Options) (Summary, error) {
	exec, ok := r.executors[opts.Kind]
	if !ok {
		return Summary{}, fmt.Errorf("%w: %s", domain.ErrUnknownKind, opts.Kind)
	}

	start := time.Now()
	limit := r.clampLimit(opts.Kind, opts.Limit)

	jobs, err := r.store.Claim(ctx, opts.Kind, limit)
	if err != nil {
		return Summary{}, fmt.Errorf("claim %s jobs: %w", opts.Kind, err)
	}
	metrics.JobsClaimedTotal.WithLabelValues(string(opts.Kind)).Add(float64(len(jobs)))

	summary := Summary{Claimed: len(jobs)}
	for _, job := range jobs {
		metrics.JobPickupLatency.Observe(time.Since(job.CreatedAt).Seconds())

		if execErr := exec.Execute(ctx, job); execErr != nil {
			r.recordFailure(ctx, job, execErr)
			summary.Failed++
			continue
		}

		if markErr := r.store.MarkCompleted(ctx, job.ID); markErr != nil {
			// The work itself succeeded; a later duplicate completion is a
			// no-op, so log and move on.
			r.logger.Error("mark job completed", "job_id", job.ID, "error", markErr)
		}
		metrics.JobsCompletedTotal.WithLabelValues(string(job.Kind), "success").Inc()
		summary.Succeeded++
	}

	metrics.RunDuration.Observe(time.Since(start).Seconds())
	r.logger.Info("runner pass finished",
		"kind", opts.Kind,
		"claimed", summary.Claimed,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
	)
	return summary, nil
}

// RunAll runs one pass per registered kind and merges the summaries. A
// claim failure for one kind aborts the remaining kinds: it signals the
// store itself is unhealthy.
func (r *Runner) RunAll(ctx context.Context, limit int) (Summary, error) {
	var total Summary
	for _, kind := range domain.Kinds {
		if _, ok := r.executors[kind]; !ok {
			continue
		}
		sum, err := r.Run(ctx, Options{Kind: kind, Limit: limit})
		if err != nil {
			return total, err
		}
		total.add(sum)
	}
	return total, nil
}

func (r *Runner) recordFailure(ctx context.Context, job *domain.Job, execErr error) {
	msg := execErr.Error()
	retryable := r.policy.ShouldRetry(job.Attempts, r.policy.MaxAttempts(job.Kind))

	if err := r.store.MarkFailed(ctx, job.ID, msg, retryable); err != nil {
		r.logger.Error("mark job failed", "job_id", job.ID, "error", err)
	}

	if retryable {
		metrics.JobsCompletedTotal.WithLabelValues(string(job.Kind), "retry").Inc()
		r.logger.Warn("job failed, will retry",
			"job_id", job.ID,
			"kind", job.Kind,
			"error", msg,
			"attempts", job.Attempts+1,
			"max_attempts", r.policy.MaxAttempts(job.Kind),
		)
		return
	}

	metrics.JobsCompletedTotal.WithLabelValues(string(job.Kind), "terminal").Inc()
	r.logger.Warn("job permanently failed", "job_id", job.ID, "kind", job.Kind, "error", msg)
	if r.notifier != nil {
		r.notifier.TerminalFailure(ctx, job, msg)
	}
}
