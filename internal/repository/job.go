package repository

import (
	"context"
	"time"

	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/domain"
)

// JobStore is the consumed contract for durable job records. The store owns
// all claim semantics: Claim must be a single atomic conditional update so
// that two concurrent runner passes never receive overlapping jobs. The
// runner depends on this interface, never on the concrete Postgres type, so
// tests can pass closure-based fakes.
type JobStore interface {
	Create(ctx context.Context, kind domain.JobKind, payload []byte) (*domain.Job, error)

	// Claim atomically transitions up to limit eligible jobs (pending or
	// failed_retryable with next_attempt_at due) to claimed and returns
	// them. Fewer than limit — including zero — is not an error.
	Claim(ctx context.Context, kind domain.JobKind, limit int) ([]*domain.Job, error)

	// MarkCompleted is idempotent: completing an already-completed job is a
	// no-op, so duplicate completion signals are tolerated.
	MarkCompleted(ctx context.Context, id string) error

	// MarkFailed increments the attempt counter and records lastError.
	// Retryable failures return to the claimable pool once the store's
	// backoff delay elapses; terminal failures are never claimed again.
	MarkFailed(ctx context.Context, id string, lastError string, retryable bool) error

	// ReleaseStale returns jobs stuck in claimed since before cutoff to
	// pending. Covers workers that died mid-batch.
	ReleaseStale(ctx context.Context, cutoff time.Time, limit int) (int, error)
}
