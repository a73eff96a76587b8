package warehouse

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestIntegrityChecks(t *testing.T) {
	checks := IntegrityChecks()
	if len(checks) != 7 {
		t.Fatalf("Expected 7 checks, got %d", len(checks))
	}

	mandatory := 0
	for _, c := range checks {
		if c.Mandatory {
			mandatory++
		}
	}
	if mandatory != 4 {
		t.Errorf("Expected 4 mandatory checks, got %d", mandatory)
	}

	if checks[0].ForeignKey != "customer_key" || checks[0].Dimension != TableCustomers {
		t.Errorf("Unexpected first check: %+v", checks[0])
	}
}

func TestAntiJoinSQL(t *testing.T) {
	mandatory := antiJoinSQL(FKCheck{
		ForeignKey: "customer_key", Dimension: TableCustomers,
		DimKey: "customer_key", Mandatory: true,
	})
	if strings.Contains(mandatory, "IS NOT NULL") {
		t.Error("Mandatory check must not guard on IS NOT NULL")
	}
	if !strings.Contains(mandatory, "LEFT JOIN dim_customers") {
		t.Errorf("Expected anti-join against dim_customers, got: %s", mandatory)
	}

	optional := antiJoinSQL(FKCheck{
		ForeignKey: "delivery_date_key", Dimension: TableDate, DimKey: "date_key",
	})
	if !strings.Contains(optional, "f.delivery_date_key IS NOT NULL") {
		t.Errorf("Optional check must skip null keys, got: %s", optional)
	}
}

func TestVerify(t *testing.T) {
	store := NewMemStore()
	checks := IntegrityChecks()
	store.QueryCounts = map[string]int64{
		antiJoinSQL(checks[1]): 2, // product_key
		antiJoinSQL(checks[6]): 5, // delivery_date_key
	}

	results, err := Verify(context.Background(), store, zerolog.Nop())
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if len(results) != len(checks) {
		t.Fatalf("Expected %d results, got %d", len(checks), len(results))
	}

	for _, r := range results {
		var want int64
		switch r.ForeignKey {
		case "product_key":
			want = 2
		case "delivery_date_key":
			want = 5
		}
		if r.Violations != want {
			t.Errorf("Check %s: expected %d violations, got %d", r.ForeignKey, want, r.Violations)
		}
	}
}
