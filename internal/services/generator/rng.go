package generator

import (
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
)

// Rng is the random source used by the generator. Float64 returns a value
// in [0,1).
type Rng interface {
	Float64() float64
}

// RngFor returns a reproducible source for a non-empty seed and the ambient
// source otherwise.
func RngFor(seed string) Rng {
	if seed == "" {
		return NewAmbientRng()
	}
	return NewSeededRng(seed)
}

// SeededRng is a mulberry32 stream whose state is derived from a string
// seed. Not suitable for anything security related.
type SeededRng struct {
	state uint32
}

func NewSeededRng(seed string) *SeededRng {
	h := xxhash.Sum64String(seed)
	return &SeededRng{state: uint32(h) ^ uint32(h>>32)}
}

func (r *SeededRng) Float64() float64 {
	r.state += 0x6D2B79F5
	t := r.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296.0
}

type ambientRng struct{}

// NewAmbientRng wraps the process-wide generator from math/rand/v2.
func NewAmbientRng() Rng { return ambientRng{} }

func (ambientRng) Float64() float64 { return rand.Float64() }
