// Package distortion provides waveshaping drive stages
package distortion

import (
	"fmt"
	"math"
)

// CurveType represents different waveshaping transfer functions
type CurveType int

const (
	// CurveHardClip clips the signal at the threshold
	CurveHardClip CurveType = iota
	// CurveSoftClip applies soft clipping using tanh
	CurveSoftClip
	// CurveSaturate applies exponential saturation
	CurveSaturate
	// CurveFoldback creates wave folding distortion
	CurveFoldback
	// CurveSine applies sine waveshaping
	CurveSine
)

var curveNames = map[CurveType]string{
	CurveHardClip: "hardclip",
	CurveSoftClip: "softclip",
	CurveSaturate: "saturate",
	CurveFoldback: "foldback",
	CurveSine:     "sine",
}

// String returns the curve name used in rig files
func (c CurveType) String() string {
	if name, ok := curveNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CurveType(%d)", int(c))
}

// ParseCurve converts a rig file name to a CurveType
func ParseCurve(name string) (CurveType, error) {
	if name == "" {
		return CurveSoftClip, nil
	}
	for c, n := range curveNames {
		if n == name {
			return c, nil
		}
	}
	return CurveSoftClip, fmt.Errorf("unknown drive curve %q", name)
}

// Maximum pre-gain reached at amount 1
const maxDrive = 20.0

// Waveshaper applies waveshaping distortion to audio signals
type Waveshaper struct {
	curveType CurveType
	drive     float64
	mix       float64
}

// NewWaveshaper creates a new waveshaper with the specified curve type
func NewWaveshaper(curveType CurveType) *Waveshaper {
	return &Waveshaper{
		curveType: curveType,
		drive:     1.0,
		mix:       1.0,
	}
}

// SetCurveType changes the waveshaping curve
func (w *Waveshaper) SetCurveType(curveType CurveType) {
	w.curveType = curveType
}

// SetDrive sets the pre-gain directly (1.0 to 20.0)
func (w *Waveshaper) SetDrive(drive float64) {
	w.drive = math.Max(1.0, math.Min(maxDrive, drive))
}

// SetAmount maps a 0-1 knob to pre-gain with a squared taper
func (w *Waveshaper) SetAmount(amount float64) {
	amount = math.Max(0, math.Min(1, amount))
	w.SetDrive(1.0 + amount*amount*(maxDrive-1.0))
}

// Drive returns the current pre-gain
func (w *Waveshaper) Drive() float64 {
	return w.drive
}

// SetMix sets the dry/wet mix (0.0 = dry, 1.0 = wet)
func (w *Waveshaper) SetMix(mix float64) {
	w.mix = math.Max(0.0, math.Min(1.0, mix))
}

// Process applies waveshaping to a single sample
func (w *Waveshaper) Process(input float64) float64 {
	driven := input * w.drive

	var shaped float64
	switch w.curveType {
	case CurveHardClip:
		shaped = hardClip(driven)
	case CurveSoftClip:
		shaped = math.Tanh(driven)
	case CurveSaturate:
		shaped = saturate(driven)
	case CurveFoldback:
		shaped = foldback(driven)
	case CurveSine:
		shaped = math.Sin(math.Max(-math.Pi/2, math.Min(math.Pi/2, driven)))
	default:
		shaped = driven
	}

	return input*(1.0-w.mix) + shaped*w.mix
}

// ProcessSample is the float32 per-sample path used by voices
func (w *Waveshaper) ProcessSample(input float32) float32 {
	return float32(w.Process(float64(input)))
}

// ProcessBuffer applies waveshaping in place - no allocations
func (w *Waveshaper) ProcessBuffer(buffer []float32) {
	for i := range buffer {
		buffer[i] = w.ProcessSample(buffer[i])
	}
}

// hardClip implements hard clipping at ±1.0
func hardClip(x float64) float64 {
	if x > 1.0 {
		return 1.0
	} else if x < -1.0 {
		return -1.0
	}
	return x
}

// saturate implements exponential saturation
func saturate(x float64) float64 {
	if x >= 0 {
		return 1.0 - math.Exp(-x)
	}
	return -1.0 + math.Exp(x)
}

// foldback implements wave folding distortion
func foldback(x float64) float64 {
	// One fold period per unit
	normalized := (x + 1.0) / 2.0

	folded := normalized - math.Floor(normalized)
	if int(math.Floor(normalized))%2 != 0 {
		folded = 1.0 - folded
	}

	// Scale back to -1 to 1
	return folded*2.0 - 1.0
}
