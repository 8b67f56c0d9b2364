package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) FindOrderByReference(ctx context.Context, shopDomain, reference string) (*domain.Order, error) {
	query := `
		SELECT id, shop_domain, platform_order_id, reference, created_at, updated_at
		FROM orders
		WHERE shop_domain = $1 AND reference = $2`

	var o domain.Order
	err := r.pool.QueryRow(ctx, query, shopDomain, reference).Scan(
		&o.ID, &o.ShopDomain, &o.PlatformOrderID, &o.Reference, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order by reference: %w", err)
	}
	return &o, nil
}

func (r *OrderRepository) LinkOrderReference(ctx context.Context, shopDomain, platformOrderID, reference string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO orders (shop_domain, platform_order_id, reference)
		VALUES ($1, $2, $3)
		ON CONFLICT (shop_domain, platform_order_id)
		DO UPDATE SET reference = EXCLUDED.reference, updated_at = NOW()`,
		shopDomain, platformOrderID, reference)
	if err != nil {
		return fmt.Errorf("link order reference: %w", err)
	}
	return nil
}

func (r *OrderRepository) UpsertFulfillment(ctx context.Context, f *domain.Fulfillment) error {
	// Keyed by (shop_domain, platform_fulfillment_id): webhook re-delivery
	// overwrites the same row instead of duplicating state.
	_, err := r.pool.Exec(ctx, `
		INSERT INTO fulfillments (
			shop_domain, platform_fulfillment_id, platform_order_id,
			status, tracking_number, tracking_company, shipped_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (shop_domain, platform_fulfillment_id)
		DO UPDATE SET status           = EXCLUDED.status,
		              tracking_number  = EXCLUDED.tracking_number,
		              tracking_company = EXCLUDED.tracking_company,
		              shipped_at       = EXCLUDED.shipped_at,
		              updated_at       = NOW()`,
		f.ShopDomain, f.PlatformFulfillmentID, f.PlatformOrderID,
		f.Status, f.TrackingNumber, f.TrackingCompany, f.ShippedAt)
	if err != nil {
		return fmt.Errorf("upsert fulfillment: %w", err)
	}
	return nil
}

func (r *OrderRepository) UpsertShipment(ctx context.Context, s *domain.Shipment) error {
	// Keyed by (order_id, tracking_number): importing the same row twice
	// must not double-apply.
	_, err := r.pool.Exec(ctx, `
		INSERT INTO shipments (order_id, vendor_code, tracking_number, carrier, shipped_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (order_id, tracking_number)
		DO UPDATE SET vendor_code = EXCLUDED.vendor_code,
		              carrier     = EXCLUDED.carrier,
		              shipped_at  = EXCLUDED.shipped_at,
		              updated_at  = NOW()`,
		s.OrderID, s.VendorCode, s.TrackingNumber, s.Carrier, s.ShippedAt)
	if err != nil {
		return fmt.Errorf("upsert shipment: %w", err)
	}
	return nil
}

func (r *OrderRepository) FindVendorByCode(ctx context.Context, code string) (*domain.Vendor, error) {
	var v domain.Vendor
	err := r.pool.QueryRow(ctx, `
		SELECT id, code, name, created_at
		FROM vendors
		WHERE code = $1`, code).Scan(&v.ID, &v.Code, &v.Name, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("vendor %q: not found", code)
		}
		return nil, fmt.Errorf("find vendor: %w", err)
	}
	return &v, nil
}
