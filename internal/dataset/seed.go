package dataset

import (
	"math/rand/v2"
	"time"
)

// DefaultRowCount is the size of the generated sales table.
const DefaultRowCount = 100

// Seed generates n sales rows. Product and region cycle with the row index,
// so filter results are stable across seeds; only amounts depend on seed.
func Seed(n int, seed int64) []Row {
	rng := rand.New(rand.NewPCG(uint64(seed), 0))
	rows := make([]Row, n)
	for i := 0; i < n; i++ {
		rows[i] = Row{
			ID:      i + 1,
			Product: Products[i%len(Products)],
			Region:  Regions[i%len(Regions)],
			Amount:  float64(rng.IntN(1000) + 100),
			Date:    time.Date(2023, time.Month(i%12+1), i%28+1, 0, 0, 0, 0, time.UTC),
		}
	}
	return rows
}

// SeedLoader returns a Loader producing Seed(n, seed).
func SeedLoader(n int, seed int64) Loader {
	return func() ([]Row, error) {
		return Seed(n, seed), nil
	}
}
