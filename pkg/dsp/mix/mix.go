// Package mix provides audio mixing and crossfading operations.
package mix

import (
	"fmt"
	"math"
)

// Curve selects the crossfade law.
type Curve int

const (
	// CurveLinear sums gains to 1 (dips ~3 dB at the centre for uncorrelated signals)
	CurveLinear Curve = iota
	// CurveEqualPower uses cos/sin gains so power stays constant
	CurveEqualPower
)

// String returns the curve name used in rig files.
func (c Curve) String() string {
	switch c {
	case CurveLinear:
		return "linear"
	case CurveEqualPower:
		return "equal-power"
	default:
		return fmt.Sprintf("Curve(%d)", int(c))
	}
}

// ParseCurve converts a rig file name to a Curve.
func ParseCurve(name string) (Curve, error) {
	switch name {
	case "linear", "":
		return CurveLinear, nil
	case "equal-power", "constant-power":
		return CurveEqualPower, nil
	}
	return CurveLinear, fmt.Errorf("unknown crossfade curve %q", name)
}

// DryWet performs a dry/wet mix between two signals.
// amount parameter: 0.0 = 100% dry, 1.0 = 100% wet
func DryWet(dry, wet, amount float32) float32 {
	return dry*(1.0-amount) + wet*amount
}

// CrossfadeCosine performs an equal-power cosine crossfade.
// position: 0.0 = 100% a, 1.0 = 100% b
func CrossfadeCosine(a, b, position float32) float32 {
	angle := position * math.Pi / 2.0
	gainA := float32(math.Cos(float64(angle)))
	gainB := float32(math.Sin(float64(angle)))
	return a*gainA + b*gainB
}

// CrossfadeLinear performs a linear crossfade.
// position: 0.0 = 100% a, 1.0 = 100% b
func CrossfadeLinear(a, b, position float32) float32 {
	return DryWet(a, b, position)
}

// CrossFade mixes a dry and a wet signal at a stored position.
// Gains are computed once per SetPos so Process stays cheap per sample.
type CrossFade struct {
	curve Curve
	pos   float32
	gainA float32
	gainB float32
}

// NewCrossFade creates a crossfade at position 0 (fully dry).
func NewCrossFade(curve Curve) *CrossFade {
	c := &CrossFade{curve: curve}
	c.SetPos(0)
	return c
}

// SetCurve changes the crossfade law.
func (c *CrossFade) SetCurve(curve Curve) {
	c.curve = curve
	c.SetPos(c.pos)
}

// Curve returns the current crossfade law.
func (c *CrossFade) Curve() Curve {
	return c.curve
}

// SetPos sets the position, clamped to 0-1.
func (c *CrossFade) SetPos(pos float32) {
	if pos != pos || pos < 0 {
		pos = 0
	} else if pos > 1 {
		pos = 1
	}
	c.pos = pos

	if c.curve == CurveEqualPower {
		angle := float64(pos) * math.Pi / 2.0
		c.gainA = float32(math.Cos(angle))
		c.gainB = float32(math.Sin(angle))
		return
	}
	c.gainA = 1.0 - pos
	c.gainB = pos
}

// Pos returns the current position.
func (c *CrossFade) Pos() float32 {
	return c.pos
}

// Process mixes one dry and one wet sample.
func (c *CrossFade) Process(dry, wet float32) float32 {
	return dry*c.gainA + wet*c.gainB
}
