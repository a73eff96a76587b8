package dims

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dwforge/dwforge/internal/source"
)

// SellerRow is one row of dim_sellers.
type SellerRow struct {
	SellerKey     int64
	SellerID      string
	ZipCodePrefix string
	City          string
	State         string
	Region        string
	SCD
}

// Sellers builds the seller dimension.
func (b *Builder) Sellers(in []source.Seller) ([]SellerRow, Stats, error) {
	stats := Stats{Input: len(in)}

	seen := make(map[string]bool, len(in))
	deduped := make([]source.Seller, 0, len(in))
	for _, s := range in {
		if s.SellerID == "" {
			return nil, stats, fmt.Errorf("sellers: %w", ErrMissingNaturalKey)
		}
		if seen[s.SellerID] {
			stats.Deduplicated++
			continue
		}
		seen[s.SellerID] = true
		deduped = append(deduped, s)
	}

	sort.Slice(deduped, func(i, j int) bool {
		return deduped[i].SellerID < deduped[j].SellerID
	})

	scd := b.scd()
	rows := make([]SellerRow, len(deduped))
	for i, s := range deduped {
		state := strings.ToUpper(s.State)
		rows[i] = SellerRow{
			SellerKey:     int64(i + 1),
			SellerID:      s.SellerID,
			ZipCodePrefix: s.ZipCodePrefix,
			City:          strings.ToLower(strings.TrimSpace(s.City)),
			State:         state,
			Region:        b.region(state),
			SCD:           scd,
		}
	}

	stats.Output = len(rows)
	b.log.Info().
		Int("input", stats.Input).
		Int("deduplicated", stats.Deduplicated).
		Int("rows", stats.Output).
		Msg("Built seller dimension")

	return rows, stats, nil
}

// SellerKeys returns the natural-key to surrogate-key lookup for the
// current seller dimension.
func SellerKeys(rows []SellerRow) map[string]int64 {
	keys := make(map[string]int64, len(rows))
	for _, r := range rows {
		if r.IsCurrent {
			keys[r.SellerID] = r.SellerKey
		}
	}
	return keys
}
