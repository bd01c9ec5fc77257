// Package entropy provides the random sources that drive every stochastic
// decision in the simulation. All draws go through Source so a run can be
// replayed from a seed or scripted with a fixed sequence in tests.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mathrand "math/rand"
	"sync"
)

// Source yields uniform floats in [0, 1). Every random decision in the
// engine consumes exactly one value, so call order is the whole contract.
type Source interface {
	Float64() float64
}

// Seeded is a math/rand backed source. Same seed, same sequence.
type Seeded struct {
	rng *mathrand.Rand
}

// NewSeeded creates a reproducible source.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{rng: mathrand.New(mathrand.NewSource(seed))}
}

// Float64 returns the next value from the seeded generator.
func (s *Seeded) Float64() float64 {
	return s.rng.Float64()
}

type cryptoSource struct{}

// Crypto returns a source backed by crypto/rand. Used when no seed is configured.
func Crypto() Source {
	return cryptoSource{}
}

func (cryptoSource) Float64() float64 {
	return cryptoRandFloat()
}

// cryptoRandFloat generates a random float64 using crypto/rand.
func cryptoRandFloat() float64 {
	var buf [8]byte
	_, err := rand.Read(buf[:])
	if err != nil {
		// This should never happen but return 0.5 as a safe default.
		return 0.5
	}
	// Use only 53 bits for a uniform float64 in [0, 1).
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}

// Sequence replays a fixed list of values, wrapping around at the end.
type Sequence struct {
	mu     sync.Mutex
	values []float64
	next   int
	drawn  int
}

// NewSequence creates a scripted source. With no values it always returns 0.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

// Float64 returns the next scripted value.
func (s *Sequence) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drawn++
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next]
	s.next = (s.next + 1) % len(s.values)
	return v
}

// Drawn reports how many values have been consumed.
func (s *Sequence) Drawn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawn
}

// Chance draws once and reports whether the draw fell below p.
func Chance(src Source, p float64) bool {
	return src.Float64() < p
}

// Uniform draws once and maps it onto [lo, hi).
func Uniform(src Source, lo, hi float64) float64 {
	// The conversion keeps the product rounded on its own, so results do not
	// depend on whether the platform fuses multiply-add.
	return lo + float64((hi-lo)*src.Float64())
}

// Choice draws once and returns an index in [0, n). n must be positive.
func Choice(src Source, n int) int {
	i := int(src.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// Pick returns one of the given options using a single draw.
func Pick(src Source, options ...int) int {
	return options[Choice(src, len(options))]
}
