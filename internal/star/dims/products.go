package dims

import (
	"fmt"
	"sort"

	"github.com/dwforge/dwforge/internal/source"
)

// Product size classes by weight.
const (
	SizeUnknown = "unknown"
	SizeSmall   = "small"
	SizeMedium  = "medium"
	SizeLarge   = "large"
)

// Category fallbacks for missing source values and missing translations.
const (
	CategoryNone         = "sin_categoria"
	CategoryUntranslated = "without_category"
)

// ProductRow is one row of dim_products.
type ProductRow struct {
	ProductKey          int64
	ProductID           string
	CategoryName        string
	CategoryNameEnglish string
	NameLength          int32
	DescriptionLength   int32
	PhotosQty           int32
	WeightG             float64
	LengthCM            float64
	HeightCM            float64
	WidthCM             float64
	VolumeCM3           float64
	SizeClass           string
	SCD
}

// Products builds the product dimension. The translation set maps source
// category names to English; products whose category has no translation
// classify as "without_category" rather than erroring.
func (b *Builder) Products(in []source.Product, translations []source.CategoryTranslation) ([]ProductRow, Stats, error) {
	stats := Stats{Input: len(in)}

	english := make(map[string]string, len(translations))
	for _, t := range translations {
		english[t.Name] = t.NameEnglish
	}

	seen := make(map[string]bool, len(in))
	deduped := make([]source.Product, 0, len(in))
	for _, p := range in {
		if p.ProductID == "" {
			return nil, stats, fmt.Errorf("products: %w", ErrMissingNaturalKey)
		}
		if seen[p.ProductID] {
			stats.Deduplicated++
			continue
		}
		seen[p.ProductID] = true
		deduped = append(deduped, p)
	}

	sort.Slice(deduped, func(i, j int) bool {
		return deduped[i].ProductID < deduped[j].ProductID
	})

	scd := b.scd()
	untranslated := 0
	rows := make([]ProductRow, len(deduped))
	for i, p := range deduped {
		category := p.CategoryName
		if category == "" {
			category = CategoryNone
		}

		categoryEnglish, ok := english[category]
		if !ok {
			categoryEnglish = CategoryUntranslated
			untranslated++
		}

		rows[i] = ProductRow{
			ProductKey:          int64(i + 1),
			ProductID:           p.ProductID,
			CategoryName:        category,
			CategoryNameEnglish: categoryEnglish,
			NameLength:          p.NameLength,
			DescriptionLength:   p.DescriptionLength,
			PhotosQty:           p.PhotosQty,
			WeightG:             p.WeightG,
			LengthCM:            p.LengthCM,
			HeightCM:            p.HeightCM,
			WidthCM:             p.WidthCM,
			VolumeCM3:           p.LengthCM * p.HeightCM * p.WidthCM,
			SizeClass:           sizeClass(p.WeightG),
			SCD:                 scd,
		}
	}

	stats.Output = len(rows)
	b.log.Info().
		Int("input", stats.Input).
		Int("deduplicated", stats.Deduplicated).
		Int("untranslated_categories", untranslated).
		Int("rows", stats.Output).
		Msg("Built product dimension")

	return rows, stats, nil
}

func sizeClass(weightG float64) string {
	switch {
	case weightG == 0:
		return SizeUnknown
	case weightG < 500:
		return SizeSmall
	case weightG < 2000:
		return SizeMedium
	default:
		return SizeLarge
	}
}

// ProductKeys returns the natural-key to surrogate-key lookup for the
// current product dimension.
func ProductKeys(rows []ProductRow) map[string]int64 {
	keys := make(map[string]int64, len(rows))
	for _, r := range rows {
		if r.IsCurrent {
			keys[r.ProductID] = r.ProductKey
		}
	}
	return keys
}
