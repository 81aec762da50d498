// Package generator supplies the random choices the challenges make.
package generator

import (
	"math/rand"
	"time"
)

// Generator produces randomized challenge parameters.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a deterministic Generator.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// FromSeed returns a seeded Generator, or a time-seeded one when seed is zero.
func FromSeed(seed int64) *Generator {
	if seed == 0 {
		return New()
	}
	return NewSeeded(seed)
}

// Between returns a uniform integer in [lo, hi).
func (g *Generator) Between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.rnd.Intn(hi-lo)
}

// Lanes assigns a lane in [0, lanes) to each of count notes.
func (g *Generator) Lanes(count, lanes int) []int {
	out := make([]int, count)
	if lanes <= 0 {
		return out
	}
	for i := range out {
		out[i] = g.rnd.Intn(lanes)
	}
	return out
}

// Shuffled returns a shuffled copy of values.
func (g *Generator) Shuffled(values []int) []int {
	out := make([]int, len(values))
	copy(out, values)
	g.rnd.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
