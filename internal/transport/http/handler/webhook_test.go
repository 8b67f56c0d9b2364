package handler_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/domain"
	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/signature"
	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/transport/http/handler"
	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/usecase"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "shpss_test_secret"

// fakeJobStore implements repository.JobStore with per-method closures.
type fakeJobStore struct {
	create        func(ctx context.Context, kind domain.JobKind, payload []byte) (*domain.Job, error)
	claim         func(ctx context.Context, kind domain.JobKind, limit int) ([]*domain.Job, error)
	markCompleted func(ctx context.Context, id string) error
	markFailed    func(ctx context.Context, id string, lastError string, retryable bool) error
	releaseStale  func(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

func (f *fakeJobStore) Create(ctx context.Context, kind domain.JobKind, payload []byte) (*domain.Job, error) {
	return f.create(ctx, kind, payload)
}

func (f *fakeJobStore) Claim(ctx context.Context, kind domain.JobKind, limit int) ([]*domain.Job, error) {
	return f.claim(ctx, kind, limit)
}

func (f *fakeJobStore) MarkCompleted(ctx context.Context, id string) error {
	return f.markCompleted(ctx, id)
}

func (f *fakeJobStore) MarkFailed(ctx context.Context, id string, lastError string, retryable bool) error {
	return f.markFailed(ctx, id, lastError, retryable)
}

func (f *fakeJobStore) ReleaseStale(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	return f.releaseStale(ctx, cutoff, limit)
}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func webhookRouter(store *fakeJobStore) *gin.Engine {
	verifier := signature.NewVerifier(testSecret, slog.Default())
	h := handler.NewWebhookHandler(verifier, usecase.NewIntake(store), slog.Default())

	r := gin.New()
	r.POST("/webhooks/shopify", h.Receive)
	return r
}

func postWebhook(r *gin.Engine, body []byte, hmacHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/shopify", bytes.NewReader(body))
	req.Header.Set("X-Shopify-Shop-Domain", "livapon-dev.myshopify.com")
	req.Header.Set("X-Shopify-Topic", "orders/create")
	if hmacHeader != "" {
		req.Header.Set(signature.HeaderHMAC, hmacHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestReceive_ValidDelivery(t *testing.T) {
	var created *domain.Job
	store := &fakeJobStore{
		create: func(_ context.Context, kind domain.JobKind, payload []byte) (*domain.Job, error) {
			created = &domain.Job{ID: "job-001", Kind: kind, Payload: payload, Status: domain.StatusPending}
			return created, nil
		},
	}
	r := webhookRouter(store)

	body := []byte(`{"id":5001,"note":"OS-01115463"}`)
	w := postWebhook(r, body, sign(body))

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if created == nil {
		t.Fatal("no job was enqueued")
	}
	if created.Kind != domain.KindWebhook {
		t.Errorf("kind = %s, want webhook", created.Kind)
	}
	if !bytes.Contains(created.Payload, body) {
		t.Error("payload does not carry the raw delivery body")
	}
	if !bytes.Contains(created.Payload, []byte("orders/create")) {
		t.Error("payload does not carry the topic")
	}
}

func TestReceive_BadSignatureRejectedBeforeEnqueue(t *testing.T) {
	store := &fakeJobStore{
		create: func(context.Context, domain.JobKind, []byte) (*domain.Job, error) {
			t.Fatal("an unverified delivery must never reach the store")
			return nil, nil
		},
	}
	r := webhookRouter(store)

	body := []byte(`{"id":5001}`)
	w := postWebhook(r, body, sign([]byte(`{"id":9999}`)))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestReceive_MissingSignatureHeader(t *testing.T) {
	store := &fakeJobStore{
		create: func(context.Context, domain.JobKind, []byte) (*domain.Job, error) {
			t.Fatal("an unverified delivery must never reach the store")
			return nil, nil
		},
	}
	r := webhookRouter(store)

	if w := postWebhook(r, []byte(`{}`), ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestReceive_StoreFailureIs500(t *testing.T) {
	store := &fakeJobStore{
		create: func(context.Context, domain.JobKind, []byte) (*domain.Job, error) {
			return nil, errors.New("db down")
		},
	}
	r := webhookRouter(store)

	body := []byte(`{"id":5001}`)
	w := postWebhook(r, body, sign(body))

	// 500 tells Shopify to re-deliver; the signature was valid, the loss
	// was ours.
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}
