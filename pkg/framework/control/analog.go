// Package control turns raw board readings into smoothed knob values and
// debounced, edge-detected digital inputs.
package control

import (
	"math"

	"github.com/justyntemme/seedrig/pkg/dsp/utility"
	"github.com/justyntemme/seedrig/pkg/framework/param"
)

// SlewCoefficient derives a one-pole coefficient from a slew time in seconds
// at the rate Process is called. Zero or negative slew disables smoothing.
func SlewCoefficient(slewSeconds, updateRate float64) float64 {
	if slewSeconds <= 0 || updateRate <= 0 {
		return 1
	}
	coef := 1.0 / (slewSeconds * updateRate * 0.5)
	return math.Max(1e-6, math.Min(1, coef))
}

// AnalogConfig configures an AnalogControl
type AnalogConfig struct {
	Smoothing     bool
	Coefficient   float64 // (0,1], 1 follows the input immediately
	Invert        bool
	MoveThreshold float64 // input changes at or below this are ignored
}

// AnalogControl smooths one normalized analog channel.
// Value is always in [0, 1].
type AnalogControl struct {
	cfg      AnalogConfig
	smoother *param.Smoother
	value    float32
}

// NewAnalogControl creates a control reading 0 until the first Process or Reset
func NewAnalogControl(cfg AnalogConfig) *AnalogControl {
	if cfg.Coefficient <= 0 || cfg.Coefficient > 1 || cfg.Coefficient != cfg.Coefficient {
		cfg.Coefficient = 1
	}
	s := param.NewSmoother(1 - cfg.Coefficient)
	s.SetThreshold(1e-6)
	return &AnalogControl{cfg: cfg, smoother: s}
}

// Process feeds one raw reading and returns the updated value
func (a *AnalogControl) Process(raw float32) float32 {
	in := float64(utility.ClampUnit(raw))
	if a.cfg.Invert {
		in = 1 - in
	}

	if a.cfg.MoveThreshold > 0 && math.Abs(in-a.smoother.Target()) <= a.cfg.MoveThreshold {
		in = a.smoother.Target()
	}

	var v float64
	if a.cfg.Smoothing {
		a.smoother.SetTarget(in)
		v = a.smoother.Next()
	} else {
		a.smoother.Reset(in)
		v = in
	}
	a.value = utility.ClampUnit(float32(v))
	return a.value
}

// Value returns the current smoothed value
func (a *AnalogControl) Value() float32 {
	return a.value
}

// Reset jumps to v without smoothing so knobs don't glide up from 0 at start-up
func (a *AnalogControl) Reset(v float32) {
	v = utility.ClampUnit(v)
	a.smoother.Reset(float64(v))
	a.value = v
}

// Range maps a 0-1 control onto [Min, Max]. Exp ranges give equal ratios
// for equal knob travel, which suits frequencies.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
	Exp bool    `yaml:"exp"`
}

// Map places v in the range
func (r Range) Map(v float32) float64 {
	if r.Exp {
		return utility.MapUnitExp(float64(v), r.Min, r.Max)
	}
	return utility.MapUnit(float64(v), r.Min, r.Max)
}
