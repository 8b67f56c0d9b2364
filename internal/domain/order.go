package domain

import "time"

// Order is the system-of-record row for a platform order. Reference is the
// canonical OS-<digits> code once reconciliation has resolved one.
type Order struct {
	ID              string
	ShopDomain      string
	PlatformOrderID string
	Reference       *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Fulfillment mirrors the platform's fulfillment object for one order.
// Keyed by (shop_domain, platform_fulfillment_id) so webhook re-delivery
// upserts instead of duplicating.
type Fulfillment struct {
	ShopDomain            string
	PlatformFulfillmentID string
	PlatformOrderID       string
	Status                string
	TrackingNumber        *string
	TrackingCompany       *string
	ShippedAt             *time.Time
}

// Shipment is a vendor-reported shipment applied to an order.
// Keyed by (order_id, tracking_number) — importing the same row twice must
// not double-apply.
type Shipment struct {
	OrderID        string
	VendorCode     string
	TrackingNumber string
	Carrier        string
	ShippedAt      *time.Time
}

type Vendor struct {
	ID        string
	Code      string
	Name      string
	CreatedAt time.Time
}
