// Package sample provides the seeded generator used to pick sentences for
// claims without an annotated line.
package sample

import (
	"math/rand/v2"
	"sync"
)

// Selector is a single advancing pseudorandom stream. Callers own it and pass
// it to whatever resolves sentinel lines, so a corpus pass with the same seed
// samples the same lines.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a selector seeded with seed
func New(seed uint64) *Selector {
	return &Selector{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// NextInt returns an integer in [low, high], both ends inclusive.
// When high <= low it returns low without advancing the stream.
func (s *Selector) NextInt(low, high int) int {
	if high <= low {
		return low
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return low + s.rng.IntN(high-low+1)
}
