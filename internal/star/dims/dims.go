// Package dims builds the conformed dimension row sets (customers,
// products, sellers) from cleaned records.
//
// Every builder applies the same sequence: deduplicate by natural key
// (keep-first), derive classification attributes, sort by natural key
// ascending, assign dense surrogate keys 1..N, and stamp the SCD-2
// scaffold. Sorting before key assignment makes the surrogate keys a pure
// function of the input set, independent of source row order.
package dims

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// ErrMissingNaturalKey reports a record whose natural key is empty. The
// natural key is a mandatory column; its absence is a schema defect.
var ErrMissingNaturalKey = errors.New("record has empty natural key")

// openEnded is the sentinel valid_to for the current dimension version.
var openEnded = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// Stats reports what a dimension build did with its input.
type Stats struct {
	Input        int
	Deduplicated int
	Output       int
}

// SCD holds the single-version slowly-changing-dimension scaffold fields.
type SCD struct {
	IsCurrent bool
	ValidFrom time.Time
	ValidTo   time.Time
}

// Builder builds dimension row sets.
type Builder struct {
	regions map[string]string
	now     func() time.Time
	log     zerolog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithRegionMap overrides the built-in state-to-region lookup.
func WithRegionMap(m map[string]string) Option {
	return func(b *Builder) {
		if len(m) > 0 {
			b.regions = m
		}
	}
}

// WithClock overrides the clock used for SCD valid_from stamps.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// NewBuilder creates a dimension builder logging to the given run logger.
func NewBuilder(log zerolog.Logger, opts ...Option) *Builder {
	b := &Builder{
		regions: DefaultRegionMap(),
		now:     time.Now,
		log:     log,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) scd() SCD {
	return SCD{
		IsCurrent: true,
		ValidFrom: b.now().UTC(),
		ValidTo:   openEnded,
	}
}

// region classifies a state code. Unmapped codes are "unknown", never an
// error.
func (b *Builder) region(state string) string {
	if r, ok := b.regions[state]; ok {
		return r
	}
	return RegionUnknown
}
