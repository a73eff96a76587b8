package dims

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dwforge/dwforge/internal/source"
)

func testBuilder() *Builder {
	fixed := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	return NewBuilder(zerolog.Nop(), WithClock(func() time.Time { return fixed }))
}

func TestCustomersDedup(t *testing.T) {
	// Three input rows, two sharing a natural key: output has 2 rows with
	// surrogate keys {1, 2} and one deduplicated record.
	in := []source.Customer{
		{CustomerID: "c2", City: "Rio", State: "rj"},
		{CustomerID: "c1", City: " Sao Paulo ", State: "SP"},
		{CustomerID: "c2", City: "duplicate", State: "RJ"},
	}

	rows, stats, err := testBuilder().Customers(in)
	if err != nil {
		t.Fatalf("Customers failed: %v", err)
	}

	if stats.Deduplicated != 1 {
		t.Errorf("Expected 1 deduplicated, got %d", stats.Deduplicated)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}

	// Natural-key ascending order drives key assignment.
	if rows[0].CustomerID != "c1" || rows[0].CustomerKey != 1 {
		t.Errorf("Expected c1 with key 1, got %s with key %d", rows[0].CustomerID, rows[0].CustomerKey)
	}
	if rows[1].CustomerID != "c2" || rows[1].CustomerKey != 2 {
		t.Errorf("Expected c2 with key 2, got %s with key %d", rows[1].CustomerID, rows[1].CustomerKey)
	}

	// Keep-first: the surviving c2 row is the one seen first.
	if rows[1].City != "rio" {
		t.Errorf("Expected keep-first city 'rio', got '%s'", rows[1].City)
	}

	if rows[0].City != "sao paulo" {
		t.Errorf("Expected normalized city 'sao paulo', got '%s'", rows[0].City)
	}
	if rows[1].State != "RJ" {
		t.Errorf("Expected normalized state 'RJ', got '%s'", rows[1].State)
	}
}

func TestCustomersRegion(t *testing.T) {
	tests := []struct {
		state  string
		region string
	}{
		{"SP", RegionSoutheast},
		{"rs", RegionSouth},
		{"BA", RegionNortheast},
		{"DF", RegionCentralWest},
		{"AM", RegionNorth},
		{"XX", RegionUnknown},
		{"", RegionUnknown},
	}

	for _, tt := range tests {
		t.Run("state "+tt.state, func(t *testing.T) {
			rows, _, err := testBuilder().Customers([]source.Customer{
				{CustomerID: "c1", State: tt.state},
			})
			if err != nil {
				t.Fatalf("Customers failed: %v", err)
			}
			if rows[0].Region != tt.region {
				t.Errorf("Expected region %s, got %s", tt.region, rows[0].Region)
			}
		})
	}
}

func TestCustomersMissingNaturalKey(t *testing.T) {
	_, _, err := testBuilder().Customers([]source.Customer{{CustomerID: ""}})
	if !errors.Is(err, ErrMissingNaturalKey) {
		t.Fatalf("Expected ErrMissingNaturalKey, got %v", err)
	}
}

func TestCustomersDeterministicKeys(t *testing.T) {
	a := []source.Customer{
		{CustomerID: "c1"}, {CustomerID: "c2"}, {CustomerID: "c3"},
	}
	b := []source.Customer{
		{CustomerID: "c3"}, {CustomerID: "c1"}, {CustomerID: "c2"},
	}

	rowsA, _, err := testBuilder().Customers(a)
	if err != nil {
		t.Fatalf("Customers failed: %v", err)
	}
	rowsB, _, err := testBuilder().Customers(b)
	if err != nil {
		t.Fatalf("Customers failed: %v", err)
	}

	for i := range rowsA {
		if rowsA[i].CustomerID != rowsB[i].CustomerID || rowsA[i].CustomerKey != rowsB[i].CustomerKey {
			t.Errorf("Key assignment depends on input order: %v vs %v", rowsA[i], rowsB[i])
		}
	}
}

func TestSCDScaffold(t *testing.T) {
	rows, _, err := testBuilder().Customers([]source.Customer{{CustomerID: "c1"}})
	if err != nil {
		t.Fatalf("Customers failed: %v", err)
	}

	r := rows[0]
	if !r.IsCurrent {
		t.Error("Expected IsCurrent true")
	}
	if r.ValidFrom.IsZero() {
		t.Error("Expected non-zero ValidFrom")
	}
	if r.ValidTo.Year() != 9999 {
		t.Errorf("Expected open-ended ValidTo in year 9999, got %d", r.ValidTo.Year())
	}
}

func TestProducts(t *testing.T) {
	in := []source.Product{
		{ProductID: "p1", CategoryName: "moveis", WeightG: 250, LengthCM: 10, HeightCM: 4, WidthCM: 5},
		{ProductID: "p2", CategoryName: "esporte", WeightG: 1500},
		{ProductID: "p3", CategoryName: "", WeightG: 3000},
		{ProductID: "p4", WeightG: 0},
		{ProductID: "p2", CategoryName: "duplicate"},
	}
	translations := []source.CategoryTranslation{
		{Name: "moveis", NameEnglish: "furniture"},
	}

	rows, stats, err := testBuilder().Products(in, translations)
	if err != nil {
		t.Fatalf("Products failed: %v", err)
	}

	if stats.Deduplicated != 1 {
		t.Errorf("Expected 1 deduplicated, got %d", stats.Deduplicated)
	}
	if len(rows) != 4 {
		t.Fatalf("Expected 4 rows, got %d", len(rows))
	}

	// Dense keys over sorted natural keys.
	for i, r := range rows {
		if r.ProductKey != int64(i+1) {
			t.Errorf("Expected dense key %d, got %d", i+1, r.ProductKey)
		}
	}

	p1 := rows[0]
	if p1.CategoryNameEnglish != "furniture" {
		t.Errorf("Expected translated category 'furniture', got '%s'", p1.CategoryNameEnglish)
	}
	if p1.VolumeCM3 != 200 {
		t.Errorf("Expected volume 200, got %f", p1.VolumeCM3)
	}
	if p1.SizeClass != SizeSmall {
		t.Errorf("Expected size %s, got %s", SizeSmall, p1.SizeClass)
	}

	if rows[1].SizeClass != SizeMedium {
		t.Errorf("Expected size %s, got %s", SizeMedium, rows[1].SizeClass)
	}
	if rows[1].CategoryNameEnglish != CategoryUntranslated {
		t.Errorf("Expected untranslated fallback, got '%s'", rows[1].CategoryNameEnglish)
	}
	if rows[2].SizeClass != SizeLarge {
		t.Errorf("Expected size %s, got %s", SizeLarge, rows[2].SizeClass)
	}
	if rows[2].CategoryName != CategoryNone {
		t.Errorf("Expected category fallback '%s', got '%s'", CategoryNone, rows[2].CategoryName)
	}
	if rows[3].SizeClass != SizeUnknown {
		t.Errorf("Expected size %s, got %s", SizeUnknown, rows[3].SizeClass)
	}
}

func TestSellers(t *testing.T) {
	in := []source.Seller{
		{SellerID: "s2", City: "CURITIBA", State: "pr"},
		{SellerID: "s1", City: "Salvador", State: "BA"},
	}

	rows, stats, err := testBuilder().Sellers(in)
	if err != nil {
		t.Fatalf("Sellers failed: %v", err)
	}

	if stats.Output != 2 {
		t.Fatalf("Expected 2 rows, got %d", stats.Output)
	}
	if rows[0].SellerID != "s1" || rows[0].SellerKey != 1 {
		t.Errorf("Expected s1 with key 1, got %s with key %d", rows[0].SellerID, rows[0].SellerKey)
	}
	if rows[0].Region != RegionNortheast {
		t.Errorf("Expected region %s, got %s", RegionNortheast, rows[0].Region)
	}
	if rows[1].City != "curitiba" || rows[1].State != "PR" {
		t.Errorf("Expected normalized city/state, got '%s'/'%s'", rows[1].City, rows[1].State)
	}
}

func TestKeyLookups(t *testing.T) {
	customers, _, err := testBuilder().Customers([]source.Customer{
		{CustomerID: "c1"}, {CustomerID: "c2"},
	})
	if err != nil {
		t.Fatalf("Customers failed: %v", err)
	}

	keys := CustomerKeys(customers)
	if len(keys) != 2 {
		t.Fatalf("Expected 2 lookup entries, got %d", len(keys))
	}
	if keys["c2"] != 2 {
		t.Errorf("Expected c2 -> 2, got %d", keys["c2"])
	}

	// A non-current version must not appear in the lookup.
	customers[0].IsCurrent = false
	keys = CustomerKeys(customers)
	if _, ok := keys["c1"]; ok {
		t.Error("Did not expect non-current row in lookup")
	}
}

func TestWithRegionMapOverride(t *testing.T) {
	b := NewBuilder(zerolog.Nop(), WithRegionMap(map[string]string{"ZZ": "elsewhere"}))
	rows, _, err := b.Customers([]source.Customer{{CustomerID: "c1", State: "zz"}})
	if err != nil {
		t.Fatalf("Customers failed: %v", err)
	}
	if rows[0].Region != "elsewhere" {
		t.Errorf("Expected overridden region 'elsewhere', got '%s'", rows[0].Region)
	}
}
