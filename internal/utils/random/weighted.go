// Package random isolates every random draw the engine makes behind a
// seedable source, so tests can assert exact outcomes deterministically.
package random

import (
	"math/rand"
	"time"
)

// Source yields non-negative pseudo-random integers below n.
type Source interface {
	Intn(n int) int
}

// New returns a time-seeded source for production use.
func New() Source {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// NewSeeded returns a deterministic source for tests.
func NewSeeded(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// Weighted draws values from a fixed set with integer weights.
type Weighted[T any] struct {
	values  []T
	weights []int
	total   int
}

func NewWeighted[T any](values []T, weights []int) *Weighted[T] {
	if len(values) != len(weights) || len(values) == 0 {
		panic("random: values and weights must be non-empty and equal length")
	}
	total := 0
	for _, w := range weights {
		if w <= 0 {
			panic("random: weights must be positive")
		}
		total += w
	}
	return &Weighted[T]{values: values, weights: weights, total: total}
}

// Pick draws one value; the probability of values[i] is weights[i]/sum.
func (w *Weighted[T]) Pick(src Source) T {
	n := src.Intn(w.total)
	for i, weight := range w.weights {
		if n < weight {
			return w.values[i]
		}
		n -= weight
	}
	return w.values[len(w.values)-1]
}

// Float64Between returns a value in [lo, hi) with two-decimal granularity.
// Used for the cosmetic map placement of energy balls.
func Float64Between(src Source, lo, hi float64) float64 {
	steps := int((hi - lo) * 100)
	if steps <= 0 {
		return lo
	}
	return lo + float64(src.Intn(steps))/100
}
