package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/domain"
	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/jobs"
	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/repository"
)

// Intake turns verified inbound events into durable jobs. It does no
// business logic itself — the executors interpret payloads later, so a
// malformed body is recorded and fails at execution rather than being
// silently dropped at the edge.
type Intake struct {
	store repository.JobStore
}

func NewIntake(store repository.JobStore) *Intake {
	return &Intake{store: store}
}

// EnqueueWebhook records a verified webhook delivery. rawBody is stored
// exactly as received.
func (u *Intake) EnqueueWebhook(ctx context.Context, shopDomain, topic string, rawBody []byte) (*domain.Job, error) {
	payload, err := json.Marshal(jobs.WebhookEnvelope{
		ShopDomain: shopDomain,
		Topic:      topic,
		Body:       json.RawMessage(rawBody),
	})
	if err != nil {
		return nil, fmt.Errorf("encode webhook envelope: %w", err)
	}

	job, err := u.store.Create(ctx, domain.KindWebhook, payload)
	if err != nil {
		return nil, fmt.Errorf("enqueue webhook job: %w", err)
	}
	return job, nil
}

// EnqueueShipmentRows records one job per imported row and returns the count
// enqueued. Rows are validated by the executor, not here.
func (u *Intake) EnqueueShipmentRows(ctx context.Context, rows []jobs.ShipmentRow) (int, error) {
	var enqueued int
	for i, row := range rows {
		payload, err := json.Marshal(row)
		if err != nil {
			return enqueued, fmt.Errorf("encode row %d: %w", i, err)
		}
		if _, err := u.store.Create(ctx, domain.KindShipmentImportRow, payload); err != nil {
			return enqueued, fmt.Errorf("enqueue row %d: %w", i, err)
		}
		enqueued++
	}
	return enqueued, nil
}
