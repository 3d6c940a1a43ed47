// Package dynamics provides the output limiter for the summed voice bus.
package dynamics

import (
	"math"

	"github.com/justyntemme/seedrig/pkg/dsp/gain"
)

const maxLookahead = 0.01

// Limiter is a peak limiter with instant attack, exponential release and
// optional lookahead. Output never exceeds the ceiling.
type Limiter struct {
	sampleRate  float64
	ceilingDB   float64
	ceiling     float32
	release     float64
	releaseCoef float64

	gain float64
	hold int // samples before release may start

	delay []float32
	pos   int
}

// NewLimiter creates a limiter with a -0.3 dB ceiling, 50 ms release and no
// lookahead
func NewLimiter(sampleRate float64) *Limiter {
	l := &Limiter{sampleRate: sampleRate, gain: 1}
	l.SetCeiling(-0.3)
	l.SetRelease(0.05)
	return l
}

// SetCeiling sets the ceiling in dB, at most 0
func (l *Limiter) SetCeiling(dB float64) {
	l.ceilingDB = math.Min(0, dB)
	l.ceiling = gain.DbToLinear32(l.ceilingDB)
}

// Ceiling returns the ceiling in dB
func (l *Limiter) Ceiling() float64 {
	return l.ceilingDB
}

// SetRelease sets the release time in seconds
func (l *Limiter) SetRelease(seconds float64) {
	l.release = math.Max(0.001, seconds)
	l.releaseCoef = math.Exp(-1 / (l.release * l.sampleRate))
}

// SetLookahead delays the signal so gain reduction starts before a peak
// arrives. Capped at 10 ms.
func (l *Limiter) SetLookahead(seconds float64) {
	n := int(math.Round(math.Max(0, math.Min(maxLookahead, seconds)) * l.sampleRate))
	if n == len(l.delay) {
		return
	}
	l.delay = nil
	if n > 0 {
		l.delay = make([]float32, n)
	}
	l.pos = 0
	l.hold = 0
}

// Latency returns the lookahead in samples
func (l *Limiter) Latency() int {
	return len(l.delay)
}

// GainReduction returns the current reduction in dB, 0 when idle
func (l *Limiter) GainReduction() float64 {
	return -gain.LinearToDb(l.gain)
}

// Process limits one sample
func (l *Limiter) Process(input float32) float32 {
	out := input
	if len(l.delay) > 0 {
		out = l.delay[l.pos]
		l.delay[l.pos] = input
		l.pos++
		if l.pos == len(l.delay) {
			l.pos = 0
		}
	}

	if l.hold > 0 {
		l.hold--
	}
	target := 1.0
	if peak := math.Abs(float64(input)); peak > float64(l.ceiling) {
		target = float64(l.ceiling) / peak
		// the reduction must last until this sample leaves the ring
		if len(l.delay) > 0 {
			l.hold = len(l.delay) + 1
		}
	}
	switch {
	case target < l.gain:
		l.gain = target
	case l.hold == 0:
		l.gain = target + (l.gain-target)*l.releaseCoef
	}

	y := out * float32(l.gain)
	return min(max(y, -l.ceiling), l.ceiling)
}

// ProcessBuffer limits buffer in place
func (l *Limiter) ProcessBuffer(buffer []float32) {
	for i, v := range buffer {
		buffer[i] = l.Process(v)
	}
}

// Reset clears the gain state and the lookahead buffer
func (l *Limiter) Reset() {
	l.gain = 1
	l.hold = 0
	l.pos = 0
	clear(l.delay)
}
