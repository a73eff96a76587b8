package warehouse

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// FKCheck describes one referential-integrity check between the fact table
// and a dimension.
type FKCheck struct {
	ForeignKey string
	Dimension  string
	DimKey     string
	Mandatory  bool
}

// FKResult is the outcome of one check.
type FKResult struct {
	FKCheck
	Violations int64
}

// IntegrityChecks lists every foreign key verified after a load. The
// mandatory keys must have zero violations for the run to pass; optional
// event date keys are checked only where non-null.
func IntegrityChecks() []FKCheck {
	return []FKCheck{
		{ForeignKey: "customer_key", Dimension: TableCustomers, DimKey: "customer_key", Mandatory: true},
		{ForeignKey: "product_key", Dimension: TableProducts, DimKey: "product_key", Mandatory: true},
		{ForeignKey: "seller_key", Dimension: TableSellers, DimKey: "seller_key", Mandatory: true},
		{ForeignKey: "purchase_date_key", Dimension: TableDate, DimKey: "date_key", Mandatory: true},
		{ForeignKey: "approval_date_key", Dimension: TableDate, DimKey: "date_key"},
		{ForeignKey: "carrier_date_key", Dimension: TableDate, DimKey: "date_key"},
		{ForeignKey: "delivery_date_key", Dimension: TableDate, DimKey: "date_key"},
	}
}

// antiJoinSQL builds the query counting fact rows whose key has no
// matching dimension row.
func antiJoinSQL(c FKCheck) string {
	sql := fmt.Sprintf(`
        SELECT COUNT(*) FROM %s f
        LEFT JOIN %s d ON f.%s = d.%s
        WHERE d.%s IS NULL`,
		TableFacts, c.Dimension, c.ForeignKey, c.DimKey, c.DimKey)
	if !c.Mandatory {
		sql += fmt.Sprintf(" AND f.%s IS NOT NULL", c.ForeignKey)
	}
	return sql
}

// Verify runs every integrity check against the store and returns the
// per-key results. Violations are reported, not repaired.
func Verify(ctx context.Context, store Store, log zerolog.Logger) ([]FKResult, error) {
	checks := IntegrityChecks()
	results := make([]FKResult, 0, len(checks))

	for _, c := range checks {
		n, err := store.QueryCount(ctx, antiJoinSQL(c))
		if err != nil {
			return nil, fmt.Errorf("integrity check for %s failed: %w", c.ForeignKey, err)
		}

		if n > 0 {
			log.Error().
				Str("foreign_key", c.ForeignKey).
				Str("dimension", c.Dimension).
				Int64("violations", n).
				Msg("Referential integrity violation")
		} else {
			log.Debug().
				Str("foreign_key", c.ForeignKey).
				Msg("Referential integrity verified")
		}

		results = append(results, FKResult{FKCheck: c, Violations: n})
	}

	return results, nil
}
