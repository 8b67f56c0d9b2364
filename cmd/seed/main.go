// seed inserts vendors, orders and pending jobs into the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/domain"
	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/infrastructure/postgres"
	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/jobs"
)

const seedShop = "livapon-dev.myshopify.com"

var vendors = []struct {
	code string
	name string
}{
	{"VND-001", "山田物流"},
	{"VND-002", "佐藤運送"},
	{"VND-003", "Chiba Warehouse"},
}

var orders = []struct {
	platformID string
	reference  string
}{
	{"5001", "OS-01115463"},
	{"5002", "OS-01115464"},
	{"5003", "OS-02000001"},
}

// Reference text as vendors actually type it: full-width digits, katakana
// dashes, parentheses.
var importRows = []jobs.ShipmentRow{
	{ShopDomain: seedShop, VendorCode: "VND-001", ReferenceText: "（ＯＳ－０１１１５４６３）", TrackingNumber: "YT-100001", Carrier: "yamato"},
	{ShopDomain: seedShop, VendorCode: "VND-002", ReferenceText: "OS 01115464", TrackingNumber: "SG-200002", Carrier: "sagawa"},
	// No reference — will fail and exercise the retry path.
	{ShopDomain: seedShop, VendorCode: "VND-003", ReferenceText: "千葉県 白井市中 149-1MT2F バース16", TrackingNumber: "JP-300003", Carrier: "japanpost"},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	for _, v := range vendors {
		_, err := pool.Exec(ctx, `
			INSERT INTO vendors (code, name)
			VALUES ($1, $2)
			ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name`,
			v.code, v.name)
		if err != nil {
			log.Fatalf("upsert vendor %s: %v", v.code, err)
		}
	}

	orderStore := postgres.NewOrderRepository(pool)
	for _, o := range orders {
		if err := orderStore.LinkOrderReference(ctx, seedShop, o.platformID, o.reference); err != nil {
			log.Fatalf("seed order %s: %v", o.reference, err)
		}
	}

	jobStore := postgres.NewJobRepository(pool, postgres.BackoffConfig{})
	var created int
	for _, row := range importRows {
		payload, err := json.Marshal(row)
		if err != nil {
			log.Fatalf("encode row: %v", err)
		}
		if _, err := jobStore.Create(ctx, domain.KindShipmentImportRow, payload); err != nil {
			log.Fatalf("create job: %v", err)
		}
		created++
	}

	fmt.Printf("seeded %d vendors, %d orders, %d pending jobs\n", len(vendors), len(orders), created)
}
