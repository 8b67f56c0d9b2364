package runner

import "github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/domain"

// Policy is the single authority on retry eligibility. It deliberately says
// nothing about timing: when a retryable job becomes claimable again is the
// job store's concern.
type Policy struct {
	maxAttempts map[domain.JobKind]int
}

const defaultMaxAttempts = 5

// NewPolicy builds a policy with per-kind attempt ceilings. Webhook and
// import jobs warrant different tolerance, so the ceiling is a property of
// the kind, not a global constant.
func NewPolicy(webhookMax, importMax int) Policy {
	return Policy{maxAttempts: map[domain.JobKind]int{
		domain.KindWebhook:           webhookMax,
		domain.KindShipmentImportRow: importMax,
	}}
}

func (p Policy) MaxAttempts(kind domain.JobKind) int {
	if m, ok := p.maxAttempts[kind]; ok && m > 0 {
		return m
	}
	return defaultMaxAttempts
}

// ShouldRetry reports whether a job that failed with the given claim-time
// attempt count is still eligible for another attempt. Strict less-than: a
// job claimed with attempts == maxAttempts has exhausted its budget and
// fails terminally.
func (p Policy) ShouldRetry(attempts, maxAttempts int) bool {
	return attempts < maxAttempts
}
