// Package testutil provides deterministic data generation for tests and
// benchmarks.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe RNG and generators for the column
// shapes the library processes: uniform and gaussian float64 columns,
// Zipf-distributed label columns, and jagged per-event collections.
//
// # Random Column Generation
//
//	rng := testutil.NewRNG(seed)
//	pt := rng.UniformColumn(10_000, 0, 250)       // uniform [0, 250)
//	mass := rng.GaussianColumn(10_000, 91.2, 2.5) // peak at 91.2
//	ch := rng.ZipfLabels(10_000, channels, 1.2)   // few labels dominate
//
// # Batch Assembly
//
//	batch := testutil.MustBatch(10_000, map[string]columns.Column{
//	    "pt":      pt,
//	    "channel": ch,
//	})
package testutil
