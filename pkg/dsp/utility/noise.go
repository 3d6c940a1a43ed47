package utility

import (
	"fmt"
	"math/rand/v2"
)

// NoiseType selects the noise colour
type NoiseType int

const (
	// WhiteNoise is flat across the spectrum
	WhiteNoise NoiseType = iota
	// PinkNoise falls 3 dB per octave
	PinkNoise
)

// ParseNoiseType reads a rig file noise name. Empty means white.
func ParseNoiseType(name string) (NoiseType, error) {
	switch name {
	case "white", "":
		return WhiteNoise, nil
	case "pink":
		return PinkNoise, nil
	}
	return WhiteNoise, fmt.Errorf("unknown noise type %q", name)
}

// pinkGain brings the summed pink poles back to roughly white's level
const pinkGain = 0.2

// NoiseGenerator produces seeded noise in [-1, 1]. Two generators with the
// same type and seed produce the same samples, so renders repeat exactly.
type NoiseGenerator struct {
	typ  NoiseType
	seed uint64
	rng  *rand.Rand
	src  *rand.PCG

	// three leaky integrators approximating a 1/f slope
	p0, p1, p2 float32
}

// NewNoiseGenerator creates a generator at the start of seed's sequence
func NewNoiseGenerator(typ NoiseType, seed int64) *NoiseGenerator {
	n := &NoiseGenerator{typ: typ, seed: uint64(seed)}
	n.src = rand.NewPCG(n.seed, n.seed^0x9e3779b97f4a7c15)
	n.rng = rand.New(n.src)
	return n
}

// Reset rewinds to the start of the sequence
func (n *NoiseGenerator) Reset() {
	n.src.Seed(n.seed, n.seed^0x9e3779b97f4a7c15)
	n.p0, n.p1, n.p2 = 0, 0, 0
}

// Next returns one sample
func (n *NoiseGenerator) Next() float32 {
	w := float32(n.rng.Float64()*2 - 1)
	if n.typ != PinkNoise {
		return w
	}

	n.p0 = 0.99765*n.p0 + 0.0990460*w
	n.p1 = 0.96300*n.p1 + 0.2965164*w
	n.p2 = 0.57000*n.p2 + 1.0526913*w
	out := (n.p0 + n.p1 + n.p2 + 0.1848*w) * pinkGain
	switch {
	case out > 1:
		return 1
	case out < -1:
		return -1
	}
	return out
}

// Generate fills buf with successive samples
func (n *NoiseGenerator) Generate(buf []float32) {
	for i := range buf {
		buf[i] = n.Next()
	}
}
