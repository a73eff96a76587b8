//-------------------------------------------------------------------------
//
// dwforge - star schema warehouse builder
//
// Copyright (c) 2025 - 2026, the dwforge authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

//go:build integration
// +build integration

// End-to-end test of the transform pipeline against a real PostgreSQL.
// Run with: go test -tags=integration ./internal/warehouse/...
// Set DWFORGE_TEST_CONN environment variable to override connection string.

package warehouse_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dwforge/dwforge/internal/datagen"
	"github.com/dwforge/dwforge/internal/source"
	"github.com/dwforge/dwforge/internal/star/calendar"
	"github.com/dwforge/dwforge/internal/star/dims"
	"github.com/dwforge/dwforge/internal/star/fact"
	"github.com/dwforge/dwforge/internal/testutil"
	"github.com/dwforge/dwforge/internal/warehouse"
)

// TestTransformPipeline seeds a synthetic source dataset, runs the full
// build-and-load pipeline into the same database, and checks the loaded
// warehouse against what the builders produced.
func TestTransformPipeline(t *testing.T) {
	baseConnStr := testutil.SkipIfNoPostgres(t)

	testConnStr := testutil.CreateTestDB(t, baseConnStr, "pipeline")
	dbName := testutil.GetDBNameFromConnStr(testConnStr)

	cleanup := testutil.NewTestCleanup(t, baseConnStr, dbName)
	t.Cleanup(cleanup.Cleanup)

	pool := testutil.ConnectTestDB(t, testConnStr)
	cleanup.SetPool(pool)

	ctx := context.Background()
	log := zerolog.Nop()

	seeder := datagen.NewSeeder(log, datagen.Config{Orders: 200, Seed: 42})
	if err := seeder.Run(ctx, pool); err != nil {
		t.Fatalf("Seeding failed: %v", err)
	}

	reader := source.NewPGReader(pool)
	customers, err := reader.Customers(ctx)
	if err != nil {
		t.Fatalf("Failed to read customers: %v", err)
	}
	products, err := reader.Products(ctx)
	if err != nil {
		t.Fatalf("Failed to read products: %v", err)
	}
	sellers, err := reader.Sellers(ctx)
	if err != nil {
		t.Fatalf("Failed to read sellers: %v", err)
	}
	orders, err := reader.Orders(ctx)
	if err != nil {
		t.Fatalf("Failed to read orders: %v", err)
	}
	items, err := reader.OrderItems(ctx)
	if err != nil {
		t.Fatalf("Failed to read order items: %v", err)
	}
	payments, err := reader.Payments(ctx)
	if err != nil {
		t.Fatalf("Failed to read payments: %v", err)
	}
	reviews, err := reader.Reviews(ctx)
	if err != nil {
		t.Fatalf("Failed to read reviews: %v", err)
	}
	translations, err := reader.CategoryTranslations(ctx)
	if err != nil {
		t.Fatalf("Failed to read translations: %v", err)
	}

	if len(orders) != 200 {
		t.Fatalf("Expected 200 orders, got %d", len(orders))
	}

	builder := dims.NewBuilder(log)
	customerRows, _, err := builder.Customers(customers)
	if err != nil {
		t.Fatalf("Failed to build customers: %v", err)
	}
	productRows, _, err := builder.Products(products, translations)
	if err != nil {
		t.Fatalf("Failed to build products: %v", err)
	}
	sellerRows, _, err := builder.Sellers(sellers)
	if err != nil {
		t.Fatalf("Failed to build sellers: %v", err)
	}

	min, max, err := calendar.RangeFromOrders(orders)
	if err != nil {
		t.Fatalf("Failed to derive date range: %v", err)
	}
	calendarRows, err := calendar.Generate(min, max, 1)
	if err != nil {
		t.Fatalf("Failed to generate calendar: %v", err)
	}

	facts, stats, err := fact.NewBuilder(log).Build(ctx, fact.Input{
		Orders:   orders,
		Items:    items,
		Payments: payments,
		Reviews:  reviews,
	}, fact.Lookups{
		Customers: dims.CustomerKeys(customerRows),
		Products:  dims.ProductKeys(productRows),
		Sellers:   dims.SellerKeys(sellerRows),
		Dates:     calendar.KeySet(calendarRows),
	})
	if err != nil {
		t.Fatalf("Failed to build facts: %v", err)
	}

	// The seeder only references generated customers, products and sellers,
	// so nothing should drop.
	if stats.DroppedMandatoryKey != 0 {
		t.Errorf("Expected 0 dropped fact rows, got %d", stats.DroppedMandatoryKey)
	}
	if stats.JoinedRows != len(items) {
		t.Errorf("Expected %d joined rows, got %d", len(items), stats.JoinedRows)
	}

	if err := warehouse.CreateSchema(ctx, pool); err != nil {
		t.Fatalf("CreateSchema failed: %v", err)
	}

	payload := warehouse.Payload{
		Customers:    customerRows,
		Products:     productRows,
		Sellers:      sellerRows,
		Calendar:     calendarRows,
		Facts:        facts,
		DroppedFacts: stats.DroppedMandatoryKey,
	}

	store := warehouse.NewPGStore(pool)

	summary, err := warehouse.NewLoader(store, log, "it-run-1").Run(ctx, payload)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !summary.Passed {
		t.Errorf("Expected load to pass, got %d violations", summary.TotalViolations())
	}

	var factCount int64
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM fct_orders").Scan(&factCount); err != nil {
		t.Fatalf("Failed to count fact rows: %v", err)
	}
	if factCount != int64(len(facts)) {
		t.Errorf("Expected %d fact rows in warehouse, got %d", len(facts), factCount)
	}

	// Reload is idempotent: same counts, one more audit row.
	summary, err = warehouse.NewLoader(store, log, "it-run-2").Run(ctx, payload)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if !summary.Passed {
		t.Errorf("Expected reload to pass, got %d violations", summary.TotalViolations())
	}

	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM fct_orders").Scan(&factCount); err != nil {
		t.Fatalf("Failed to count fact rows: %v", err)
	}
	if factCount != int64(len(facts)) {
		t.Errorf("Expected %d fact rows after reload, got %d", len(facts), factCount)
	}

	var runCount int64
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM dwforge_runs").Scan(&runCount); err != nil {
		t.Fatalf("Failed to count audit rows: %v", err)
	}
	if runCount != 2 {
		t.Errorf("Expected 2 audit rows, got %d", runCount)
	}

	results, err := warehouse.Verify(ctx, store, log)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	for _, r := range results {
		if r.Violations != 0 {
			t.Errorf("Check %s: expected 0 violations, got %d", r.ForeignKey, r.Violations)
		}
	}
}
