// Package param glides control values toward their targets, one update at a
// time. Knobs use it once per block, the pedal's delay times once per sample.
package param

import "math"

// DefaultThreshold is how close a glide gets before it lands on its target
const DefaultThreshold = 1e-4

// settleDecay is ln(1000): a glide has covered all but -60 dB of the
// distance after its glide time
const settleDecay = 6.907755278982137

// Smoother is a one-pole glide. Every Next keeps a fixed fraction of the
// distance still to go.
type Smoother struct {
	value     float64
	target    float64
	retain    float64
	threshold float64
	moving    bool
}

// NewSmoother creates a glide keeping retain of the remaining distance per
// update. retain 0 jumps straight to the target; values outside [0, 1) are
// treated as 0.
func NewSmoother(retain float64) *Smoother {
	s := &Smoother{threshold: DefaultThreshold}
	s.SetRetain(retain)
	return s
}

// SetRetain changes the glide speed without moving the value
func (s *Smoother) SetRetain(retain float64) {
	if !(retain >= 0 && retain < 1) {
		retain = 0
	}
	s.retain = retain
}

// SetThreshold sets the landing distance. Targets closer than this to the
// current target are ignored.
func (s *Smoother) SetThreshold(threshold float64) {
	s.threshold = math.Abs(threshold)
}

// SetTarget starts a glide toward target
func (s *Smoother) SetTarget(target float64) {
	if math.Abs(target-s.target) < s.threshold {
		return
	}
	s.target = target
	s.moving = s.value != target
}

// Target returns where the glide is heading
func (s *Smoother) Target() float64 { return s.target }

// Value returns the glide's position without advancing it
func (s *Smoother) Value() float64 { return s.value }

// Moving reports whether the value has still to land on the target
func (s *Smoother) Moving() bool { return s.moving }

// Next advances the glide by one update and returns the new value
func (s *Smoother) Next() float64 {
	if !s.moving {
		return s.value
	}
	s.value = s.target + (s.value-s.target)*s.retain
	if math.Abs(s.value-s.target) < s.threshold {
		s.value = s.target
		s.moving = false
	}
	return s.value
}

// Reset puts both the value and the target at v
func (s *Smoother) Reset(v float64) {
	s.value = v
	s.target = v
	s.moving = false
}

// RetainForTime returns the retain factor for a glide lasting seconds when
// Next is called updateRate times a second. Zero or negative inputs give 0.
func RetainForTime(seconds, updateRate float64) float64 {
	if seconds <= 0 || updateRate <= 0 {
		return 0
	}
	return math.Exp(-settleDecay / (seconds * updateRate))
}
