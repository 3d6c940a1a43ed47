// Package envelope provides envelope generators for percussive synthesis
package envelope

import "math"

// Stage represents the current envelope stage
type Stage int

const (
	// StageIdle represents envelope idle state
	StageIdle Stage = iota
	// StageAttack represents envelope attack phase
	StageAttack
	// StageDecay represents envelope decay phase
	StageDecay
)

// String returns the stage name
func (s Stage) String() string {
	switch s {
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	default:
		return "idle"
	}
}

// Segment selects which AD segment a time applies to
type Segment int

const (
	// SegmentAttack is the rising segment
	SegmentAttack Segment = iota
	// SegmentDecay is the falling segment
	SegmentDecay
)

// AD implements a retriggerable Attack-Decay envelope.
// The internal level is normalized to 0-1 and mapped to [min, max] on output.
type AD struct {
	sampleRate float64

	// Parameters
	times [2]float64 // seconds, indexed by Segment
	curve float64
	min   float64
	max   float64

	// State
	stage     Stage
	prevStage Stage
	level     float64
	retrig    float64
	curveX    float64
	pending   bool
	out       float32
}

// NewAD creates a new AD envelope
func NewAD(sampleRate float64) *AD {
	env := &AD{
		sampleRate: sampleRate,
		times:      [2]float64{0.05, 0.05},
		min:        0.0,
		max:        1.0,
	}
	env.out = float32(env.min)
	return env
}

// SetTime sets a segment time in seconds.
// An attack time <= 0 skips the attack and starts decaying from max.
func (e *AD) SetTime(seg Segment, seconds float64) {
	if seg != SegmentAttack && seg != SegmentDecay {
		return
	}
	e.times[seg] = seconds
}

// Time returns a segment time in seconds
func (e *AD) Time(seg Segment) float64 {
	if seg != SegmentAttack && seg != SegmentDecay {
		return 0
	}
	return e.times[seg]
}

// SetCurve sets the curve exponent (0 = linear, negative = fast then slow)
func (e *AD) SetCurve(exponent float64) {
	e.curve = exponent
}

// SetMin sets the output value of a fully closed envelope
func (e *AD) SetMin(min float64) {
	e.min = min
}

// SetMax sets the output value of a fully open envelope
func (e *AD) SetMax(max float64) {
	e.max = max
}

// Min returns the configured minimum
func (e *AD) Min() float64 { return e.min }

// Max returns the configured maximum
func (e *AD) Max() float64 { return e.max }

// Trigger restarts the attack from the current level on the next Process call
func (e *AD) Trigger() {
	e.pending = true
}

// Reset immediately returns the envelope to idle
func (e *AD) Reset() {
	e.stage = StageIdle
	e.prevStage = StageIdle
	e.level = 0
	e.curveX = 0
	e.pending = false
	e.out = float32(e.min)
}

// Stage returns the current envelope stage
func (e *AD) Stage() Stage {
	return e.stage
}

// Active returns true while the envelope is running or about to run
func (e *AD) Active() bool {
	return e.pending || e.stage != StageIdle
}

// Value returns the most recent output without advancing
func (e *AD) Value() float32 {
	return e.out
}

// Process advances one sample and returns the output in [min, max]
func (e *AD) Process() float32 {
	if e.pending {
		e.pending = false
		e.stage = StageAttack
		e.curveX = 0
		e.retrig = e.level
		if e.times[SegmentAttack] <= 0 {
			e.stage = StageDecay
			e.level = 1
		}
		e.prevStage = e.stage
	}

	var beg, end, seconds float64
	switch e.stage {
	case StageAttack:
		beg, end, seconds = e.retrig, 1, e.times[SegmentAttack]
	case StageDecay:
		beg, end, seconds = 1, 0, e.times[SegmentDecay]
	default:
		e.level = 0
		e.out = float32(e.min)
		return e.out
	}

	if e.stage != e.prevStage {
		e.curveX = 0
	}
	e.prevStage = e.stage

	samples := seconds * e.sampleRate
	if samples < 1 {
		samples = 1
	}

	out := e.level
	if e.curve == 0 {
		e.level += (end - beg) / samples
	} else {
		e.curveX += e.curve / samples
		e.level = beg + (end-beg)*(1-math.Exp(e.curveX))/(1-math.Exp(e.curve))
	}
	if e.level != e.level {
		e.level = 0
	}
	e.level = math.Max(0, math.Min(1, e.level))

	if e.stage == StageAttack && out >= 1 {
		e.stage = StageDecay
	} else if e.stage == StageDecay && out <= 0 {
		e.stage = StageIdle
		e.level = 0
		out = 0
	}

	e.out = float32(out*(e.max-e.min) + e.min)
	return e.out
}

// calcCoef calculates exponential coefficient for a given time
func calcCoef(timeSeconds, sampleRate float64) float64 {
	if timeSeconds <= 0.0 {
		return 0.0
	}
	return math.Exp(-1.0 / (timeSeconds * sampleRate))
}

// Follower implements an envelope follower for level metering
type Follower struct {
	sampleRate  float64
	attack      float64
	release     float64
	attackCoef  float64
	releaseCoef float64
	envelope    float64
}

// NewFollower creates a new envelope follower
func NewFollower(sampleRate float64) *Follower {
	f := &Follower{
		sampleRate: sampleRate,
		attack:     0.01,
		release:    0.1,
	}
	f.updateCoefficients()
	return f
}

// SetAttack sets the attack time
func (f *Follower) SetAttack(seconds float64) {
	f.attack = math.Max(0.0001, seconds)
	f.updateCoefficients()
}

// SetRelease sets the release time
func (f *Follower) SetRelease(seconds float64) {
	f.release = math.Max(0.0001, seconds)
	f.updateCoefficients()
}

// updateCoefficients recalculates coefficients
func (f *Follower) updateCoefficients() {
	f.attackCoef = calcCoef(f.attack, f.sampleRate)
	f.releaseCoef = calcCoef(f.release, f.sampleRate)
}

// Follow processes a single sample
func (f *Follower) Follow(input float32) float32 {
	absInput := math.Abs(float64(input))

	if absInput > f.envelope {
		f.envelope = absInput + (f.envelope-absInput)*f.attackCoef
	} else {
		f.envelope = absInput + (f.envelope-absInput)*f.releaseCoef
	}

	return float32(f.envelope)
}

// Level returns the current envelope without advancing
func (f *Follower) Level() float32 {
	return float32(f.envelope)
}
