// Package jobs holds the per-kind business logic the runner dispatches to.
// Every executor is idempotent under re-delivery: the pipeline guarantees
// at-least-once, never exactly-once.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/domain"
	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/orderref"
	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/repository"
)

// WebhookEnvelope is the payload recorded for a webhook job. Body carries
// the delivery's exact raw bytes; the signature was already verified against
// them at intake.
type WebhookEnvelope struct {
	ShopDomain string          `json:"shop_domain"`
	Topic      string          `json:"topic"`
	Body       json.RawMessage `json:"body"`
}

type WebhookExecutor struct {
	orders repository.OrderStore
	logger *slog.Logger
}

func NewWebhookExecutor(orders repository.OrderStore, logger *slog.Logger) *WebhookExecutor {
	return &WebhookExecutor{orders: orders, logger: logger.With("executor", "webhook")}
}

func (e *WebhookExecutor) Execute(ctx context.Context, job *domain.Job) error {
	var env WebhookEnvelope
	if err := json.Unmarshal(job.Payload, &env); err != nil {
		return fmt.Errorf("decode webhook envelope: %w", err)
	}
	if env.ShopDomain == "" {
		return fmt.Errorf("webhook envelope missing shop domain")
	}

	switch env.Topic {
	case "fulfillments/create", "fulfillments/update":
		return e.applyFulfillment(ctx, env)
	case "orders/create", "orders/updated":
		return e.applyOrder(ctx, env)
	default:
		// Subscribed topics can outpace the executor; an unknown topic is
		// completed as a no-op rather than retried forever.
		e.logger.Info("ignoring webhook topic", "topic", env.Topic, "shop", env.ShopDomain)
		return nil
	}
}

type fulfillmentEvent struct {
	ID              int64      `json:"id"`
	OrderID         int64      `json:"order_id"`
	Status          string     `json:"status"`
	TrackingNumber  *string    `json:"tracking_number"`
	TrackingCompany *string    `json:"tracking_company"`
	UpdatedAt       *time.Time `json:"updated_at"`
}

func (e *WebhookExecutor) applyFulfillment(ctx context.Context, env WebhookEnvelope) error {
	var ev fulfillmentEvent
	if err := json.Unmarshal(env.Body, &ev); err != nil {
		return fmt.Errorf("decode fulfillment event: %w", err)
	}
	if ev.ID == 0 || ev.OrderID == 0 {
		return fmt.Errorf("fulfillment event missing id or order_id")
	}

	f := &domain.Fulfillment{
		ShopDomain:            env.ShopDomain,
		PlatformFulfillmentID: fmt.Sprintf("%d", ev.ID),
		PlatformOrderID:       fmt.Sprintf("%d", ev.OrderID),
		Status:                ev.Status,
		TrackingNumber:        ev.TrackingNumber,
		TrackingCompany:       ev.TrackingCompany,
		ShippedAt:             ev.UpdatedAt,
	}
	if err := e.orders.UpsertFulfillment(ctx, f); err != nil {
		return fmt.Errorf("apply fulfillment %s: %w", f.PlatformFulfillmentID, err)
	}
	return nil
}

type orderEvent struct {
	ID             int64  `json:"id"`
	Note           string `json:"note"`
	NoteAttributes []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"note_attributes"`
}

// applyOrder reconciles the human-entered OS reference from the order's note
// fields and links it to the platform order id. Orders without a reference
// are normal — customers do not always carry one — so a miss completes the
// job without touching the store.
func (e *WebhookExecutor) applyOrder(ctx context.Context, env WebhookEnvelope) error {
	var ev orderEvent
	if err := json.Unmarshal(env.Body, &ev); err != nil {
		return fmt.Errorf("decode order event: %w", err)
	}
	if ev.ID == 0 {
		return fmt.Errorf("order event missing id")
	}

	candidates := make([]string, 0, len(ev.NoteAttributes)+1)
	candidates = append(candidates, ev.Note)
	for _, attr := range ev.NoteAttributes {
		candidates = append(candidates, attr.Value)
	}

	ref, ok := orderref.FromCandidates(candidates...)
	if !ok {
		e.logger.Debug("order carries no reference", "shop", env.ShopDomain, "order_id", ev.ID)
		return nil
	}

	if err := e.orders.LinkOrderReference(ctx, env.ShopDomain, fmt.Sprintf("%d", ev.ID), ref); err != nil {
		return fmt.Errorf("link order reference %s: %w", ref, err)
	}
	return nil
}
