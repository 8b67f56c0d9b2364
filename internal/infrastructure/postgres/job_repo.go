package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BackoffConfig controls how far into the future a retryable failure is
// scheduled: base * 2^attempts, capped at max. Base 0 makes retried jobs
// immediately reclaimable.
type BackoffConfig struct {
	Base time.Duration
	Max  time.Duration
}

type JobRepository struct {
	pool    *pgxpool.Pool
	backoff BackoffConfig
}

func NewJobRepository(pool *pgxpool.Pool, backoff BackoffConfig) *JobRepository {
	return &JobRepository{pool: pool, backoff: backoff}
}

const jobColumns = `id, kind, payload, status, attempts, next_attempt_at,
	claimed_at, completed_at, last_error, created_at`

func (r *JobRepository) Create(ctx context.Context, kind domain.JobKind, payload []byte) (*domain.Job, error) {
	query := `
		INSERT INTO jobs (kind, payload, status, next_attempt_at)
		VALUES ($1, $2, 'pending', NOW())
		RETURNING ` + jobColumns

	row := r.pool.QueryRow(ctx, query, kind, payload)
	job, err := scanJob(row)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return job, nil
}

func (r *JobRepository) Claim(ctx context.Context, kind domain.JobKind, limit int) ([]*domain.Job, error) {
	// The conditional UPDATE over FOR UPDATE SKIP LOCKED is the only
	// synchronization point in the pipeline: concurrent runner passes
	// claim disjoint batches.
	query := `
		UPDATE jobs
		SET    status     = 'claimed',
		       claimed_at = NOW(),
		       updated_at = NOW()
		WHERE id IN (
			SELECT id FROM jobs
			WHERE  kind = $1
			  AND  status IN ('pending', 'failed_retryable')
			  AND  next_attempt_at <= NOW()
			ORDER BY next_attempt_at ASC, created_at ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + jobColumns

	rows, err := r.pool.Query(ctx, query, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("claim jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// MarkCompleted transitions a claimed job to completed. Completed is
// terminal, so re-completing is a no-op rather than an error.
func (r *JobRepository) MarkCompleted(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE jobs
		SET    status       = 'completed',
		       completed_at = NOW(),
		       updated_at   = NOW()
		WHERE id = $1 AND status <> 'completed'`, id)
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}

func (r *JobRepository) MarkFailed(ctx context.Context, id string, lastError string, retryable bool) error {
	if retryable {
		// Backoff timing lives here, not in the retry policy: the policy
		// decides eligibility, the store decides when the job is due again.
		_, err := r.pool.Exec(ctx, `
			UPDATE jobs
			SET    status          = 'failed_retryable',
			       attempts        = attempts + 1,
			       last_error      = $2,
			       next_attempt_at = NOW() + make_interval(secs => LEAST($3 * power(2, attempts), $4)),
			       claimed_at      = NULL,
			       updated_at      = NOW()
			WHERE id = $1 AND status <> 'completed'`,
			id, lastError, r.backoff.Base.Seconds(), r.backoff.Max.Seconds())
		if err != nil {
			return fmt.Errorf("mark failed retryable: %w", err)
		}
		return nil
	}

	_, err := r.pool.Exec(ctx, `
		UPDATE jobs
		SET    status     = 'failed_terminal',
		       attempts   = attempts + 1,
		       last_error = $2,
		       claimed_at = NULL,
		       updated_at = NOW()
		WHERE id = $1 AND status <> 'completed'`, id, lastError)
	if err != nil {
		return fmt.Errorf("mark failed terminal: %w", err)
	}
	return nil
}

func (r *JobRepository) ReleaseStale(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE jobs
		SET    status          = 'pending',
		       claimed_at      = NULL,
		       next_attempt_at = NOW(),
		       updated_at      = NOW()
		WHERE id IN (
			SELECT id FROM jobs
			WHERE  status     = 'claimed'
			  AND  claimed_at < $1
			ORDER BY claimed_at ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)`, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("release stale: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// pgx.Row and pgx.Rows both implement this.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var j domain.Job
	err := row.Scan(
		&j.ID, &j.Kind, &j.Payload, &j.Status, &j.Attempts, &j.NextAttemptAt,
		&j.ClaimedAt, &j.CompletedAt, &j.LastError, &j.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("scan job: %w", err)
	}
	return &j, nil
}
