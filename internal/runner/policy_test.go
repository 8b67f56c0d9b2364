package runner

import (
	"testing"

	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/domain"
)

func TestShouldRetry_Boundary(t *testing.T) {
	p := NewPolicy(5, 3)

	// attempts is the claim-time count; the attempt that just failed is
	// the (attempts+1)th execution.
	if !p.ShouldRetry(4, 5) {
		t.Error("attempts=4, max=5: want retryable")
	}
	if p.ShouldRetry(5, 5) {
		t.Error("attempts=5, max=5: want terminal")
	}
}

func TestShouldRetry_AtOrAboveMaxNeverRetries(t *testing.T) {
	p := NewPolicy(5, 3)
	for attempts := 5; attempts < 50; attempts++ {
		if p.ShouldRetry(attempts, 5) {
			t.Fatalf("attempts=%d, max=5: want terminal", attempts)
		}
	}
}

func TestShouldRetry_FreshJob(t *testing.T) {
	p := NewPolicy(5, 3)
	if !p.ShouldRetry(0, 5) {
		t.Error("attempts=0: a fresh job's first failure must be retryable")
	}
}

func TestMaxAttempts_PerKind(t *testing.T) {
	p := NewPolicy(5, 3)

	if got := p.MaxAttempts(domain.KindWebhook); got != 5 {
		t.Errorf("webhook max = %d, want 5", got)
	}
	if got := p.MaxAttempts(domain.KindShipmentImportRow); got != 3 {
		t.Errorf("import max = %d, want 3", got)
	}
}

func TestMaxAttempts_UnknownKindFallsBack(t *testing.T) {
	p := NewPolicy(5, 3)
	if got := p.MaxAttempts(domain.JobKind("bogus")); got != defaultMaxAttempts {
		t.Errorf("unknown kind max = %d, want default %d", got, defaultMaxAttempts)
	}
}
