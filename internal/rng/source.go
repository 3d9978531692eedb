// Package rng provides the single pluggable randomness source shared by an
// engine instance for the duration of a tick. Production code uses a
// process-seeded source; tests use NewSeeded for determinism.
package rng

import (
	"math/rand"
	"time"
)

// Source is the randomness contract every behavior pass draws from. A tick
// must use exactly one Source so that, given a fixed seed, the draws (and
// therefore the outcome distributions) are reproducible.
type Source interface {
	// Float64 returns a uniform real in [0,1).
	Float64() float64
	// IntN returns a uniform int in [0,n). Panics if n <= 0.
	IntN(n int) int
	// Shuffle randomizes the order of a slice of length n via swap.
	Shuffle(n int, swap func(i, j int))
}

// mathRandSource adapts *rand.Rand to Source.
type mathRandSource struct {
	r *rand.Rand
}

// NewSeeded returns a Source that reproduces the same sequence of draws for
// the same seed across runs and across processes.
func NewSeeded(seed int64) Source {
	return &mathRandSource{r: rand.New(rand.NewSource(seed))}
}

// NewProcessDefault returns a Source seeded from the current time, suitable
// for production use where reproducibility is not required.
func NewProcessDefault() Source {
	return NewSeeded(time.Now().UnixNano())
}

func (s *mathRandSource) Float64() float64 { return s.r.Float64() }

func (s *mathRandSource) IntN(n int) int {
	if n <= 0 {
		panic("rng: IntN requires n > 0")
	}
	return s.r.Intn(n)
}

func (s *mathRandSource) Shuffle(n int, swap func(i, j int)) {
	s.r.Shuffle(n, swap)
}
