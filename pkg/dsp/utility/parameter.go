// Package utility holds the small helpers shared by the voices and controls:
// normalized control mapping and seeded noise.
package utility

import "math"

// ClampUnit clamps a control reading to 0-1, mapping NaN to 0
func ClampUnit(v float32) float32 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// MapUnit places a 0-1 control value on the line from lo to hi. lo may be
// greater than hi for knobs that turn the other way.
func MapUnit(v, lo, hi float64) float64 {
	return lo + v*(hi-lo)
}

// MapUnitExp places a 0-1 control value on an exponential curve from lo to
// hi, so equal knob travel gives equal ratios. Ranges touching or crossing
// zero map linearly.
func MapUnitExp(v, lo, hi float64) float64 {
	if lo <= 0 || hi <= 0 {
		return MapUnit(v, lo, hi)
	}
	return lo * math.Pow(hi/lo, v)
}
