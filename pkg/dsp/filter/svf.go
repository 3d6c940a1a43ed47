// Package filter provides digital signal processing filters
package filter

import (
	"fmt"
	"math"
)

// Mode selects which SVF output Process returns
type Mode int

const (
	// ModeLowpass returns the lowpass output
	ModeLowpass Mode = iota
	// ModeBandpass returns the bandpass output
	ModeBandpass
	// ModeHighpass returns the highpass output
	ModeHighpass
	// ModeNotch returns the notch output
	ModeNotch
)

var modeNames = map[Mode]string{
	ModeLowpass:  "lowpass",
	ModeBandpass: "bandpass",
	ModeHighpass: "highpass",
	ModeNotch:    "notch",
}

// String returns the mode name used in rig files
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode converts a rig file name to a Mode
func ParseMode(name string) (Mode, error) {
	if name == "" {
		return ModeLowpass, nil
	}
	for m, n := range modeNames {
		if n == name {
			return m, nil
		}
	}
	return ModeLowpass, fmt.Errorf("unknown filter mode %q", name)
}

// SVF implements a state variable filter
// Provides simultaneous lowpass, highpass, bandpass, and notch outputs
// Zero-delay feedback topology for better analog modeling
type SVF struct {
	sampleRate float64

	// Filter parameters
	g     float32 // frequency coefficient
	k     float32 // damping coefficient (1/Q)
	drive float32 // input gain into the soft clipper, 0 bypasses it
	mode  Mode

	// State variables (per-channel)
	ic1eq []float32 // integrator 1 state
	ic2eq []float32 // integrator 2 state
}

// SVFOutputs holds all filter outputs
type SVFOutputs struct {
	Lowpass  float32
	Highpass float32
	Bandpass float32
	Notch    float32
}

// NewSVF creates a new state variable filter for the specified number of channels
func NewSVF(sampleRate float64, channels int) *SVF {
	if channels < 1 {
		channels = 1
	}
	s := &SVF{
		sampleRate: sampleRate,
		ic1eq:      make([]float32, channels),
		ic2eq:      make([]float32, channels),
	}
	s.SetFrequency(1000)
	s.SetQ(0.707)
	return s
}

// Reset clears the filter state
func (s *SVF) Reset() {
	for i := range s.ic1eq {
		s.ic1eq[i] = 0
		s.ic2eq[i] = 0
	}
}

// SetFrequency sets the cutoff, clamped below Nyquist
func (s *SVF) SetFrequency(frequency float64) {
	frequency = math.Max(10, math.Min(frequency, s.sampleRate*0.49))
	// Pre-warp the frequency for the bilinear transform
	omega := math.Tan(math.Pi * frequency / s.sampleRate)
	s.g = float32(omega)
}

// SetQ sets the filter resonance (Q factor)
func (s *SVF) SetQ(q float64) {
	s.k = float32(1.0 / math.Max(q, 0.1))
}

// SetResonance sets resonance as 0-1, where 1 is close to self-oscillation
func (s *SVF) SetResonance(res float64) {
	res = math.Max(0, math.Min(res, 1))
	s.k = float32(2.0 - 1.98*res)
}

// SetDrive sets the pre-filter saturation amount (0-1)
func (s *SVF) SetDrive(drive float64) {
	s.drive = float32(math.Max(0, math.Min(drive, 1)))
}

// SetMode selects the output returned by Process
func (s *SVF) SetMode(m Mode) {
	s.mode = m
}

// ProcessSample processes a single sample and returns all outputs
func (s *SVF) ProcessSample(input float32, channel int) SVFOutputs {
	if s.drive > 0 {
		gain := 1 + 4*s.drive
		input = float32(math.Tanh(float64(input*gain))) / gain * (1 + s.drive)
	}

	// Get state for this channel
	ic1eq := s.ic1eq[channel]
	ic2eq := s.ic2eq[channel]

	// Compute common terms
	g := s.g
	k := s.k
	a1 := 1.0 / (1.0 + g*(g+k))
	a2 := g * a1
	a3 := g * a2

	// Compute outputs
	v3 := input - ic2eq
	v1 := a1*ic1eq + a2*v3
	v2 := ic2eq + a2*ic1eq + a3*v3

	// Update state
	ic1eq = 2.0*v1 - ic1eq
	ic2eq = 2.0*v2 - ic2eq

	// Save state
	s.ic1eq[channel] = ic1eq
	s.ic2eq[channel] = ic2eq

	// Return all outputs
	return SVFOutputs{
		Lowpass:  v2,
		Bandpass: v1,
		Highpass: input - k*v1 - v2,
		Notch:    input - k*v1,
	}
}

// Process filters one sample on channel 0 and returns the selected mode
func (s *SVF) Process(input float32) float32 {
	out := s.ProcessSample(input, 0)
	switch s.mode {
	case ModeBandpass:
		return out.Bandpass
	case ModeHighpass:
		return out.Highpass
	case ModeNotch:
		return out.Notch
	default:
		return out.Lowpass
	}
}

// ProcessBuffer processes buffer with the selected mode - no allocations
func (s *SVF) ProcessBuffer(buffer []float32) {
	for i := range buffer {
		buffer[i] = s.Process(buffer[i])
	}
}
