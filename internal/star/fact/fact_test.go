package fact

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dwforge/dwforge/internal/source"
	"github.com/dwforge/dwforge/internal/star/calendar"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ts(t time.Time) *time.Time { return &t }

func testLookups() Lookups {
	cal, _ := calendar.Generate(date(2018, time.January, 1), date(2018, time.December, 31), 1)
	return Lookups{
		Customers: map[string]int64{"c1": 1, "c2": 2},
		Products:  map[string]int64{"p1": 1, "p2": 2},
		Sellers:   map[string]int64{"s1": 1},
		Dates:     calendar.KeySet(cal),
	}
}

func testOrder(id, customer string) source.Order {
	return source.Order{
		OrderID:             id,
		CustomerID:          customer,
		Status:              "delivered",
		PurchaseTS:          date(2018, time.March, 1),
		ApprovedTS:          ts(date(2018, time.March, 2)),
		CarrierDeliveryTS:   ts(date(2018, time.March, 4)),
		CustomerDeliveryTS:  ts(date(2018, time.March, 10)),
		EstimatedDeliveryTS: ts(date(2018, time.March, 15)),
	}
}

func testItem(order string, n int32, product, seller string) source.OrderItem {
	return source.OrderItem{
		OrderID:     order,
		OrderItemID: n,
		ProductID:   product,
		SellerID:    seller,
		Price:       100,
		FreightValue: 10,
	}
}

func build(t *testing.T, in Input) ([]OrderFact, Stats) {
	t.Helper()
	rows, stats, err := NewBuilder(zerolog.Nop()).Build(context.Background(), in, testLookups())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return rows, stats
}

func TestBuildBasics(t *testing.T) {
	in := Input{
		Orders: []source.Order{testOrder("o1", "c1")},
		Items:  []source.OrderItem{testItem("o1", 1, "p1", "s1")},
		Payments: []source.Payment{
			{OrderID: "o1", Value: 60},
			{OrderID: "o1", Value: 50},
		},
		Reviews: []source.Review{
			{OrderID: "o1", Score: 5},
			{OrderID: "o1", Score: 4},
		},
	}

	rows, stats := build(t, in)
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if stats.JoinedRows != 1 || stats.DroppedMandatoryKey != 0 {
		t.Errorf("Unexpected stats: %+v", stats)
	}

	r := rows[0]
	if r.CustomerKey != 1 || r.ProductKey != 1 || r.SellerKey != 1 {
		t.Errorf("Unexpected surrogate keys: %d/%d/%d", r.CustomerKey, r.ProductKey, r.SellerKey)
	}
	if r.PurchaseDateKey != 20180301 {
		t.Errorf("Expected purchase date key 20180301, got %d", r.PurchaseDateKey)
	}
	if r.ApprovalDateKey == nil || *r.ApprovalDateKey != 20180302 {
		t.Errorf("Expected approval date key 20180302, got %v", r.ApprovalDateKey)
	}
	if r.PaymentValue != 110 {
		t.Errorf("Expected payment sum 110, got %f", r.PaymentValue)
	}
	if r.ReviewScore == nil || *r.ReviewScore != 4.5 {
		t.Errorf("Expected review mean 4.5, got %v", r.ReviewScore)
	}
	if r.TotalOrderValue != 110 {
		t.Errorf("Expected total order value 110, got %f", r.TotalOrderValue)
	}
	if r.DeliveryTimeDays == nil || *r.DeliveryTimeDays != 9 {
		t.Errorf("Expected delivery time 9 days, got %v", r.DeliveryTimeDays)
	}
	if r.EstimatedDeliveryTimeDays == nil || *r.EstimatedDeliveryTimeDays != 14 {
		t.Errorf("Expected estimated delivery time 14 days, got %v", r.EstimatedDeliveryTimeDays)
	}
	if r.DelayDays == nil || *r.DelayDays != 0 {
		t.Errorf("Expected delay clamped to 0, got %v", r.DelayDays)
	}
	if r.IsDelayed {
		t.Error("Expected IsDelayed false for early delivery")
	}
	if r.IsCancelled {
		t.Error("Expected IsCancelled false")
	}
}

func TestBuildMissingAggregatesDefault(t *testing.T) {
	in := Input{
		Orders: []source.Order{testOrder("o1", "c1")},
		Items:  []source.OrderItem{testItem("o1", 1, "p1", "s1")},
	}

	rows, _ := build(t, in)
	r := rows[0]
	if r.PaymentValue != 0 {
		t.Errorf("Expected payment default 0, got %f", r.PaymentValue)
	}
	if r.ReviewScore != nil {
		t.Errorf("Expected nil review score, got %v", r.ReviewScore)
	}
}

func TestBuildOrphanItems(t *testing.T) {
	in := Input{
		Orders: []source.Order{testOrder("o1", "c1")},
		Items: []source.OrderItem{
			testItem("o1", 1, "p1", "s1"),
			testItem("missing", 1, "p1", "s1"),
		},
	}

	rows, stats := build(t, in)
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if stats.OrphanItems != 1 {
		t.Errorf("Expected 1 orphan item, got %d", stats.OrphanItems)
	}
	if stats.JoinedRows != 1 {
		t.Errorf("Expected 1 joined row, got %d", stats.JoinedRows)
	}
}

func TestBuildDropsUnresolvedMandatoryKeys(t *testing.T) {
	// Five lines, one referencing a product absent from the dimension:
	// four rows survive, drop count is 1.
	in := Input{
		Orders: []source.Order{testOrder("o1", "c1")},
		Items: []source.OrderItem{
			testItem("o1", 1, "p1", "s1"),
			testItem("o1", 2, "p2", "s1"),
			testItem("o1", 3, "p1", "s1"),
			testItem("o1", 4, "unknown-product", "s1"),
			testItem("o1", 5, "p2", "s1"),
		},
	}

	rows, stats := build(t, in)
	if len(rows) != 4 {
		t.Fatalf("Expected 4 rows, got %d", len(rows))
	}
	if stats.DroppedMandatoryKey != 1 {
		t.Errorf("Expected drop count 1, got %d", stats.DroppedMandatoryKey)
	}
	if stats.JoinedRows-len(rows) != stats.DroppedMandatoryKey {
		t.Errorf("Drop count %d does not equal joined %d minus output %d",
			stats.DroppedMandatoryKey, stats.JoinedRows, len(rows))
	}
}

func TestBuildUndeliveredOrder(t *testing.T) {
	// An order not yet delivered keeps its row: null delivery date key and
	// null delivery duration, but a resolved purchase date key.
	order := testOrder("o1", "c1")
	order.Status = "shipped"
	order.CustomerDeliveryTS = nil

	in := Input{
		Orders: []source.Order{order},
		Items:  []source.OrderItem{testItem("o1", 1, "p1", "s1")},
	}

	rows, stats := build(t, in)
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if stats.DroppedMandatoryKey != 0 {
		t.Errorf("Expected no drops, got %d", stats.DroppedMandatoryKey)
	}

	r := rows[0]
	if r.DeliveryDateKey != nil {
		t.Errorf("Expected nil delivery date key, got %v", r.DeliveryDateKey)
	}
	if r.DeliveryTimeDays != nil {
		t.Errorf("Expected nil delivery time, got %v", r.DeliveryTimeDays)
	}
	if r.DelayDays != nil {
		t.Errorf("Expected nil delay, got %v", r.DelayDays)
	}
	if r.PurchaseDateKey != 20180301 {
		t.Errorf("Expected purchase date key 20180301, got %d", r.PurchaseDateKey)
	}
}

func TestBuildDelayedDelivery(t *testing.T) {
	order := testOrder("o1", "c1")
	order.CustomerDeliveryTS = ts(date(2018, time.March, 20))
	order.EstimatedDeliveryTS = ts(date(2018, time.March, 15))

	in := Input{
		Orders: []source.Order{order},
		Items:  []source.OrderItem{testItem("o1", 1, "p1", "s1")},
	}

	rows, _ := build(t, in)
	r := rows[0]
	if !r.IsDelayed {
		t.Error("Expected IsDelayed true")
	}
	if r.DelayDays == nil || *r.DelayDays != 5 {
		t.Errorf("Expected delay 5 days, got %v", r.DelayDays)
	}
}

func TestBuildCancelledOrder(t *testing.T) {
	for _, status := range []string{"canceled", "cancelled"} {
		order := testOrder("o1", "c1")
		order.Status = status

		in := Input{
			Orders: []source.Order{order},
			Items:  []source.OrderItem{testItem("o1", 1, "p1", "s1")},
		}

		rows, _ := build(t, in)
		if !rows[0].IsCancelled {
			t.Errorf("Expected IsCancelled true for status %q", status)
		}
	}
}

func TestBuildEmptyInput(t *testing.T) {
	_, _, err := NewBuilder(zerolog.Nop()).Build(context.Background(), Input{
		Items: []source.OrderItem{testItem("o1", 1, "p1", "s1")},
	}, testLookups())
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("Expected ErrEmptyInput for empty orders, got %v", err)
	}

	_, _, err = NewBuilder(zerolog.Nop()).Build(context.Background(), Input{
		Orders: []source.Order{testOrder("o1", "c1")},
	}, testLookups())
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("Expected ErrEmptyInput for empty items, got %v", err)
	}
}

func TestBuildMissingCalendarDate(t *testing.T) {
	lk := testLookups()
	order := testOrder("o1", "c1")
	order.PurchaseTS = date(2030, time.January, 1) // far outside the calendar

	rows, stats, err := NewBuilder(zerolog.Nop()).Build(context.Background(), Input{
		Orders: []source.Order{order},
		Items:  []source.OrderItem{testItem("o1", 1, "p1", "s1")},
	}, lk)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(rows) != 0 {
		t.Fatalf("Expected row dropped for unresolved purchase date, got %d rows", len(rows))
	}
	if stats.DroppedMandatoryKey != 1 {
		t.Errorf("Expected drop count 1, got %d", stats.DroppedMandatoryKey)
	}
	if stats.MissingCalendarDates == 0 {
		t.Error("Expected missing calendar date to be counted")
	}
}

func TestBuildNoNegativeDurations(t *testing.T) {
	// Delivery recorded before purchase: durations clamp to zero instead
	// of going negative.
	order := testOrder("o1", "c1")
	order.CustomerDeliveryTS = ts(date(2018, time.February, 25))

	in := Input{
		Orders: []source.Order{order},
		Items:  []source.OrderItem{testItem("o1", 1, "p1", "s1")},
	}

	rows, _ := build(t, in)
	r := rows[0]
	if r.DeliveryTimeDays == nil || *r.DeliveryTimeDays != 0 {
		t.Errorf("Expected delivery time clamped to 0, got %v", r.DeliveryTimeDays)
	}
	if r.DelayDays == nil || *r.DelayDays != 0 {
		t.Errorf("Expected delay clamped to 0, got %v", r.DelayDays)
	}
}
