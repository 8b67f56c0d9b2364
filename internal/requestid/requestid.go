// Package requestid propagates correlation IDs through context: the
// per-request ID minted at the edge, and the platform's webhook delivery ID
// when the request is an inbound webhook. Log records pick both up so one
// delivery can be traced from intake through job execution.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

type requestKey struct{}
type deliveryKey struct{}

// New mints a UUID v4 request ID.
func New() string {
	return uuid.NewString()
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestKey{}, id)
}

// FromContext returns the request ID, or "" outside a request.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestKey{}).(string)
	return id
}

// WithDeliveryID attaches the platform's webhook delivery ID. Unlike the
// request ID it is stable across the platform's re-deliveries, so it also
// identifies duplicates.
func WithDeliveryID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, deliveryKey{}, id)
}

func DeliveryIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(deliveryKey{}).(string)
	return id
}
