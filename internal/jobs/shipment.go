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

// ShipmentRow is the payload recorded for one imported shipment row. The
// reference fields are free text exactly as the vendor entered them — often
// full-width Japanese — and are resolved at execution time, not at intake.
type ShipmentRow struct {
	ShopDomain     string     `json:"shop_domain"`
	VendorCode     string     `json:"vendor_code"`
	ReferenceText  string     `json:"reference_text"`
	CustomerNote   string     `json:"customer_note"`
	TrackingNumber string     `json:"tracking_number"`
	Carrier        string     `json:"carrier"`
	ShippedAt      *time.Time `json:"shipped_at"`
}

type ShipmentExecutor struct {
	orders repository.OrderStore
	logger *slog.Logger
}

func NewShipmentExecutor(orders repository.OrderStore, logger *slog.Logger) *ShipmentExecutor {
	return &ShipmentExecutor{orders: orders, logger: logger.With("executor", "shipment_import_row")}
}

func (e *ShipmentExecutor) Execute(ctx context.Context, job *domain.Job) error {
	var row ShipmentRow
	if err := json.Unmarshal(job.Payload, &row); err != nil {
		return fmt.Errorf("decode shipment row: %w", err)
	}

	if row.TrackingNumber == "" {
		return fmt.Errorf("shipment row missing tracking number")
	}
	if row.VendorCode == "" {
		return fmt.Errorf("shipment row missing vendor code")
	}
	if _, err := e.orders.FindVendorByCode(ctx, row.VendorCode); err != nil {
		return fmt.Errorf("resolve vendor: %w", err)
	}

	ref, ok := orderref.FromCandidates(row.ReferenceText, row.CustomerNote)
	if !ok {
		return fmt.Errorf("no order reference found in row (tracking %s)", row.TrackingNumber)
	}

	// The order may not have been ingested yet when the vendor ships; a
	// miss here stays retryable so a later pass can pick the row up once
	// the order webhook lands.
	order, err := e.orders.FindOrderByReference(ctx, row.ShopDomain, ref)
	if err != nil {
		return fmt.Errorf("resolve order %s: %w", ref, err)
	}

	s := &domain.Shipment{
		OrderID:        order.ID,
		VendorCode:     row.VendorCode,
		TrackingNumber: row.TrackingNumber,
		Carrier:        row.Carrier,
		ShippedAt:      row.ShippedAt,
	}
	if err := e.orders.UpsertShipment(ctx, s); err != nil {
		return fmt.Errorf("apply shipment %s: %w", row.TrackingNumber, err)
	}

	e.logger.Info("shipment applied", "order_id", order.ID, "reference", ref, "tracking", row.TrackingNumber)
	return nil
}
