package domain

import (
	"errors"
	"time"
)

type JobKind string

const (
	KindWebhook           JobKind = "webhook"
	KindShipmentImportRow JobKind = "shipment_import_row"
)

// Kinds lists every job kind the runner knows how to execute.
var Kinds = []JobKind{KindWebhook, KindShipmentImportRow}

type JobStatus string

const (
	StatusPending         JobStatus = "pending"
	StatusClaimed         JobStatus = "claimed"
	StatusCompleted       JobStatus = "completed"
	StatusFailedRetryable JobStatus = "failed_retryable"
	StatusFailedTerminal  JobStatus = "failed_terminal"
)

// Terminal reports whether no further transition is allowed from s.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailedTerminal
}

// Job is a durable unit of deferred work. The store owns the claim invariant:
// at most one worker holds a job in StatusClaimed at any time.
type Job struct {
	ID      string
	Kind    JobKind
	Payload []byte

	Status   JobStatus
	Attempts int

	// NextAttemptAt gates claim eligibility for retryable failures.
	NextAttemptAt time.Time

	ClaimedAt   *time.Time
	CompletedAt *time.Time
	LastError   *string

	CreatedAt time.Time
}

var (
	ErrJobNotFound   = errors.New("job not found")
	ErrUnknownKind   = errors.New("unknown job kind")
	ErrOrderNotFound = errors.New("order not found")
)
