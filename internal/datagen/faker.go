//-------------------------------------------------------------------------
//
// dwforge - star schema warehouse builder
//
// Copyright (c) 2025 - 2026, the dwforge authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package datagen generates a synthetic cleaned source dataset so the
// transform can be exercised without a real operational export.
package datagen

import (
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// Faker provides fake data generation using gofakeit.
type Faker struct {
	faker *gofakeit.Faker
}

// NewFaker creates a new Faker with a random seed.
func NewFaker() *Faker {
	return &Faker{
		faker: gofakeit.New(uint64(time.Now().UnixNano())),
	}
}

// NewFakerWithSeed creates a new Faker with a specific seed for
// reproducibility.
func NewFakerWithSeed(seed uint64) *Faker {
	return &Faker{
		faker: gofakeit.New(seed),
	}
}

// HexID generates a 32-character lowercase hex identifier, the shape the
// source dataset uses for all natural keys.
func (f *Faker) HexID() string {
	return strings.ReplaceAll(f.faker.UUID(), "-", "")
}

// City generates a random city name.
func (f *Faker) City() string {
	return strings.ToLower(f.faker.City())
}

// Zip generates a random 5-digit zip code prefix.
func (f *Faker) Zip() string {
	return f.faker.Zip()
}

// Price generates a random price between min and max.
func (f *Faker) Price(min, max float64) float64 {
	return f.faker.Price(min, max)
}

// Int generates a random integer in [min, max].
func (f *Faker) Int(min, max int) int {
	return f.faker.Number(min, max)
}

// Float generates a random float in [min, max).
func (f *Faker) Float(min, max float64) float64 {
	return f.faker.Float64Range(min, max)
}

// Bool generates a random boolean with the given probability of true.
func (f *Faker) Bool(probability float64) bool {
	return f.faker.Float64Range(0, 1) < probability
}

// Choose picks a random element from a slice.
func Choose[T any](f *Faker, items []T) T {
	return items[f.Int(0, len(items)-1)]
}

// DateBetween generates a random timestamp in [start, end].
func (f *Faker) DateBetween(start, end time.Time) time.Time {
	return f.faker.DateRange(start, end).UTC()
}
