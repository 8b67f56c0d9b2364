package repository

import (
	"context"

	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/domain"
)

// OrderStore is the consumed contract for order, fulfillment, shipment and
// vendor records. Upserts must be idempotent: the pipeline delivers at least
// once, so applying the same webhook or import row twice must not
// double-apply its effect.
type OrderStore interface {
	FindOrderByReference(ctx context.Context, shopDomain, reference string) (*domain.Order, error)

	// LinkOrderReference upserts the order row for (shopDomain,
	// platformOrderID) and attaches the canonical reference.
	LinkOrderReference(ctx context.Context, shopDomain, platformOrderID, reference string) error

	// UpsertFulfillment applies fulfillment state keyed by
	// (shop_domain, platform_fulfillment_id).
	UpsertFulfillment(ctx context.Context, f *domain.Fulfillment) error

	// UpsertShipment applies a vendor shipment keyed by
	// (order_id, tracking_number).
	UpsertShipment(ctx context.Context, s *domain.Shipment) error

	FindVendorByCode(ctx context.Context, code string) (*domain.Vendor, error)
}
