package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/histgo/columns"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Float64 returns, as a float64, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// UniformFloats returns n values uniform in [lo, hi).
// Locks only once per call (preferred over calling Float64 in a loop).
func (r *RNG) UniformFloats(n int, lo, hi float64) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	span := hi - lo
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + r.rand.Float64()*span
	}
	return out
}

// GaussianFloats returns n values drawn from a normal distribution with the
// given mean and sigma.
func (r *RNG) GaussianFloats(n int, mean, sigma float64) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]float64, n)
	for i := range out {
		out[i] = mean + r.rand.NormFloat64()*sigma
	}
	return out
}

// UniformColumn returns a float64 column with n values uniform in [lo, hi).
func (r *RNG) UniformColumn(n int, lo, hi float64) columns.Column {
	return columns.Float64s(r.UniformFloats(n, lo, hi))
}

// GaussianColumn returns a float64 column with n normal values. A resonance
// peak over background is two of these merged.
func (r *RNG) GaussianColumn(n int, mean, sigma float64) columns.Column {
	return columns.Float64s(r.GaussianFloats(n, mean, sigma))
}

// Weights returns n event weights uniform in [0.5, 1.5), the shape of
// per-event correction factors.
func (r *RNG) Weights(n int) []float64 {
	return r.UniformFloats(n, 0.5, 1.5)
}

// Zipf returns a Zipfian-distributed value in [0, n).
// Uses Zipf's law: P(k) ∝ 1/k^s where s is the skew parameter.
// s=1.0 gives standard Zipf, s=1.5 gives heavy-tail (80/20 rule).
// This is how real-world data is distributed (power law).
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	// Normalization constant (harmonic number with exponent s).
	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	// Inverse transform sampling.
	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1 // 0-indexed
		}
	}

	return n - 1
}

// ZipfLabels returns a label column of n draws from labels with Zipf skew
// s, so a few labels dominate the way detector channels and trigger tags do
// in real event data.
func (r *RNG) ZipfLabels(n int, labels []string, s float64) columns.Column {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, n)
	for i := range out {
		out[i] = labels[r.zipfLocked(len(labels), s)]
	}
	return columns.LabelColumn(out)
}

// JaggedColumn returns a jagged float64 column with 0 to maxElems elements
// per event, values uniform in [lo, hi). Empty events are deliberate: real
// collections (tracks, hits) are often empty.
func (r *RNG) JaggedColumn(n, maxElems int, lo, hi float64) columns.Column {
	r.mu.Lock()
	defer r.mu.Unlock()

	span := hi - lo
	offsets := make([]int64, n+1)
	var flat []float64
	for i := 0; i < n; i++ {
		elems := r.rand.Intn(maxElems + 1)
		for j := 0; j < elems; j++ {
			flat = append(flat, lo+r.rand.Float64()*span)
		}
		offsets[i+1] = int64(len(flat))
	}
	return columns.JaggedColumn(flat, offsets)
}

// MustBatch assembles a batch from named columns, panicking on shape
// errors. Intended for test setup only.
func MustBatch(events int, cols map[string]columns.Column) *columns.Batch {
	b := columns.NewBatch(events)
	for name, col := range cols {
		if err := b.Set(name, col); err != nil {
			panic(fmt.Sprintf("testutil: column %q: %v", name, err))
		}
	}
	return b
}
