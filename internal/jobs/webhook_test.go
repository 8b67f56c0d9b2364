package jobs_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/domain"
	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/jobs"
)

// fakeOrderStore is a closure-per-method fake. Unset methods fail the test
// so each case declares exactly the store surface it expects to be touched.
type fakeOrderStore struct {
	t *testing.T

	findOrderByReference func(ctx context.Context, shopDomain, reference string) (*domain.Order, error)
	linkOrderReference   func(ctx context.Context, shopDomain, platformOrderID, reference string) error
	upsertFulfillment    func(ctx context.Context, f *domain.Fulfillment) error
	upsertShipment       func(ctx context.Context, s *domain.Shipment) error
	findVendorByCode     func(ctx context.Context, code string) (*domain.Vendor, error)
}

func (f *fakeOrderStore) FindOrderByReference(ctx context.Context, shopDomain, reference string) (*domain.Order, error) {
	if f.findOrderByReference == nil {
		f.t.Fatal("unexpected FindOrderByReference call")
	}
	return f.findOrderByReference(ctx, shopDomain, reference)
}

func (f *fakeOrderStore) LinkOrderReference(ctx context.Context, shopDomain, platformOrderID, reference string) error {
	if f.linkOrderReference == nil {
		f.t.Fatal("unexpected LinkOrderReference call")
	}
	return f.linkOrderReference(ctx, shopDomain, platformOrderID, reference)
}

func (f *fakeOrderStore) UpsertFulfillment(ctx context.Context, fl *domain.Fulfillment) error {
	if f.upsertFulfillment == nil {
		f.t.Fatal("unexpected UpsertFulfillment call")
	}
	return f.upsertFulfillment(ctx, fl)
}

func (f *fakeOrderStore) UpsertShipment(ctx context.Context, s *domain.Shipment) error {
	if f.upsertShipment == nil {
		f.t.Fatal("unexpected UpsertShipment call")
	}
	return f.upsertShipment(ctx, s)
}

func (f *fakeOrderStore) FindVendorByCode(ctx context.Context, code string) (*domain.Vendor, error) {
	if f.findVendorByCode == nil {
		f.t.Fatal("unexpected FindVendorByCode call")
	}
	return f.findVendorByCode(ctx, code)
}

func webhookJob(payload string) *domain.Job {
	return &domain.Job{
		ID:      "job-001",
		Kind:    domain.KindWebhook,
		Payload: []byte(payload),
	}
}

func TestWebhook_FulfillmentCreate(t *testing.T) {
	var got *domain.Fulfillment
	store := &fakeOrderStore{
		t: t,
		upsertFulfillment: func(_ context.Context, f *domain.Fulfillment) error {
			got = f
			return nil
		},
	}
	exec := jobs.NewWebhookExecutor(store, slog.Default())

	payload := `{
		"shop_domain": "livapon-dev.myshopify.com",
		"topic": "fulfillments/create",
		"body": {"id": 9001, "order_id": 5001, "status": "success", "tracking_number": "YT-100001"}
	}`
	if err := exec.Execute(context.Background(), webhookJob(payload)); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if got == nil {
		t.Fatal("fulfillment was not upserted")
	}
	if got.ShopDomain != "livapon-dev.myshopify.com" {
		t.Errorf("shop = %q", got.ShopDomain)
	}
	if got.PlatformFulfillmentID != "9001" || got.PlatformOrderID != "5001" {
		t.Errorf("ids = %q/%q, want 9001/5001", got.PlatformFulfillmentID, got.PlatformOrderID)
	}
	if got.TrackingNumber == nil || *got.TrackingNumber != "YT-100001" {
		t.Errorf("tracking = %v, want YT-100001", got.TrackingNumber)
	}
}

func TestWebhook_RedeliveryUpsertsAgain(t *testing.T) {
	var calls int
	store := &fakeOrderStore{
		t: t,
		upsertFulfillment: func(context.Context, *domain.Fulfillment) error {
			calls++
			return nil
		},
	}
	exec := jobs.NewWebhookExecutor(store, slog.Default())

	payload := `{
		"shop_domain": "livapon-dev.myshopify.com",
		"topic": "fulfillments/update",
		"body": {"id": 9001, "order_id": 5001, "status": "success"}
	}`
	job := webhookJob(payload)
	for i := 0; i < 2; i++ {
		if err := exec.Execute(context.Background(), job); err != nil {
			t.Fatalf("delivery %d: %v", i+1, err)
		}
	}

	// Re-delivery funnels into the same keyed upsert; no error, no state
	// the executor itself accumulates.
	if calls != 2 {
		t.Errorf("upsert calls = %d, want 2", calls)
	}
}

func TestWebhook_OrderNoteLinksReference(t *testing.T) {
	var gotOrderID, gotRef string
	store := &fakeOrderStore{
		t: t,
		linkOrderReference: func(_ context.Context, _, platformOrderID, reference string) error {
			gotOrderID, gotRef = platformOrderID, reference
			return nil
		},
	}
	exec := jobs.NewWebhookExecutor(store, slog.Default())

	payload := `{
		"shop_domain": "livapon-dev.myshopify.com",
		"topic": "orders/create",
		"body": {"id": 5001, "note": "備考（ＯＳ－０１１１５４６３）"}
	}`
	if err := exec.Execute(context.Background(), webhookJob(payload)); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if gotOrderID != "5001" || gotRef != "OS-01115463" {
		t.Errorf("linked %q → %q, want 5001 → OS-01115463", gotOrderID, gotRef)
	}
}

func TestWebhook_OrderNoteAttributesSearchedAfterNote(t *testing.T) {
	var gotRef string
	store := &fakeOrderStore{
		t: t,
		linkOrderReference: func(_ context.Context, _, _, reference string) error {
			gotRef = reference
			return nil
		},
	}
	exec := jobs.NewWebhookExecutor(store, slog.Default())

	payload := `{
		"shop_domain": "livapon-dev.myshopify.com",
		"topic": "orders/updated",
		"body": {
			"id": 5002,
			"note": "",
			"note_attributes": [{"name": "memo", "value": "OS 01115464"}]
		}
	}`
	if err := exec.Execute(context.Background(), webhookJob(payload)); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if gotRef != "OS-01115464" {
		t.Errorf("ref = %q, want OS-01115464", gotRef)
	}
}

func TestWebhook_OrderWithoutReferenceIsNoOp(t *testing.T) {
	// No closures set: any store call fails the test.
	store := &fakeOrderStore{t: t}
	exec := jobs.NewWebhookExecutor(store, slog.Default())

	payload := `{
		"shop_domain": "livapon-dev.myshopify.com",
		"topic": "orders/create",
		"body": {"id": 5003, "note": "ギフト包装希望"}
	}`
	if err := exec.Execute(context.Background(), webhookJob(payload)); err != nil {
		t.Fatalf("a reference-less order must complete cleanly, got: %v", err)
	}
}

func TestWebhook_UnknownTopicIsNoOp(t *testing.T) {
	store := &fakeOrderStore{t: t}
	exec := jobs.NewWebhookExecutor(store, slog.Default())

	payload := `{
		"shop_domain": "livapon-dev.myshopify.com",
		"topic": "products/create",
		"body": {"id": 1}
	}`
	if err := exec.Execute(context.Background(), webhookJob(payload)); err != nil {
		t.Fatalf("unknown topic must complete as a no-op, got: %v", err)
	}
}

func TestWebhook_MalformedPayloadFails(t *testing.T) {
	store := &fakeOrderStore{t: t}
	exec := jobs.NewWebhookExecutor(store, slog.Default())

	if err := exec.Execute(context.Background(), webhookJob(`{not json`)); err == nil {
		t.Fatal("malformed envelope must fail")
	}
}

func TestWebhook_MissingShopDomainFails(t *testing.T) {
	store := &fakeOrderStore{t: t}
	exec := jobs.NewWebhookExecutor(store, slog.Default())

	payload := `{"topic": "orders/create", "body": {"id": 1}}`
	if err := exec.Execute(context.Background(), webhookJob(payload)); err == nil {
		t.Fatal("missing shop domain must fail")
	}
}

func TestWebhook_StoreErrorPropagates(t *testing.T) {
	wantErr := errors.New("db down")
	store := &fakeOrderStore{
		t: t,
		upsertFulfillment: func(context.Context, *domain.Fulfillment) error {
			return wantErr
		},
	}
	exec := jobs.NewWebhookExecutor(store, slog.Default())

	payload := `{
		"shop_domain": "livapon-dev.myshopify.com",
		"topic": "fulfillments/create",
		"body": {"id": 9001, "order_id": 5001}
	}`
	err := exec.Execute(context.Background(), webhookJob(payload))
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want wrapped %v", err, wantErr)
	}
}
