package dims

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dwforge/dwforge/internal/source"
)

// CustomerRow is one row of dim_customers.
type CustomerRow struct {
	CustomerKey      int64
	CustomerID       string
	CustomerUniqueID string
	ZipCodePrefix    string
	City             string
	State            string
	Region           string
	SCD
}

// Customers builds the customer dimension.
func (b *Builder) Customers(in []source.Customer) ([]CustomerRow, Stats, error) {
	stats := Stats{Input: len(in)}

	seen := make(map[string]bool, len(in))
	deduped := make([]source.Customer, 0, len(in))
	for _, c := range in {
		if c.CustomerID == "" {
			return nil, stats, fmt.Errorf("customers: %w", ErrMissingNaturalKey)
		}
		if seen[c.CustomerID] {
			stats.Deduplicated++
			continue
		}
		seen[c.CustomerID] = true
		deduped = append(deduped, c)
	}

	sort.Slice(deduped, func(i, j int) bool {
		return deduped[i].CustomerID < deduped[j].CustomerID
	})

	scd := b.scd()
	rows := make([]CustomerRow, len(deduped))
	for i, c := range deduped {
		state := strings.ToUpper(c.State)
		rows[i] = CustomerRow{
			CustomerKey:      int64(i + 1),
			CustomerID:       c.CustomerID,
			CustomerUniqueID: c.CustomerUniqueID,
			ZipCodePrefix:    c.ZipCodePrefix,
			City:             strings.ToLower(strings.TrimSpace(c.City)),
			State:            state,
			Region:           b.region(state),
			SCD:              scd,
		}
	}

	stats.Output = len(rows)
	b.log.Info().
		Int("input", stats.Input).
		Int("deduplicated", stats.Deduplicated).
		Int("rows", stats.Output).
		Msg("Built customer dimension")

	return rows, stats, nil
}

// CustomerKeys returns the natural-key to surrogate-key lookup for the
// current customer dimension.
func CustomerKeys(rows []CustomerRow) map[string]int64 {
	keys := make(map[string]int64, len(rows))
	for _, r := range rows {
		if r.IsCurrent {
			keys[r.CustomerID] = r.CustomerKey
		}
	}
	return keys
}
