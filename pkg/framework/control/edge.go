package control

import (
	"math"
	"time"
)

// Polarity describes how the electrical level maps to "pressed"
type Polarity int

const (
	// ActiveHigh treats a high read as pressed (pull-down wiring)
	ActiveHigh Polarity = iota
	// ActiveLow treats a low read as pressed (pull-up wiring)
	ActiveLow
)

// EdgeConfig configures an EdgeInput
type EdgeConfig struct {
	Polarity Polarity
	Debounce time.Duration // minimum time the raw level must hold
	TickRate float64       // Debounce calls per second
}

// EdgeInput debounces a digital line with a settle counter and reports
// edges for exactly one tick.
type EdgeInput struct {
	read      func() bool
	polarity  Polarity
	settle    int
	msPerTick float64

	candidate bool
	count     int
	state     bool
	rising    bool
	falling   bool
	heldMs    float64
	lastHeld  float64
}

// NewEdgeInput creates an input polling read once per Debounce call
func NewEdgeInput(read func() bool, cfg EdgeConfig) *EdgeInput {
	if read == nil {
		read = func() bool { return false }
	}
	rate := cfg.TickRate
	if rate <= 0 {
		rate = 1000
	}
	settle := int(math.Ceil(cfg.Debounce.Seconds() * rate))
	if settle < 1 {
		settle = 1
	}
	return &EdgeInput{
		read:      read,
		polarity:  cfg.Polarity,
		settle:    settle,
		msPerTick: 1000.0 / rate,
	}
}

// Debounce samples the line; call exactly once per tick
func (e *EdgeInput) Debounce() {
	raw := e.read()
	if e.polarity == ActiveLow {
		raw = !raw
	}

	if raw != e.candidate {
		e.candidate = raw
		e.count = 1
	} else if e.count < e.settle {
		e.count++
	}

	e.rising = false
	e.falling = false

	if e.candidate != e.state && e.count >= e.settle {
		e.state = e.candidate
		if e.state {
			e.rising = true
			e.heldMs = 0
		} else {
			e.falling = true
			e.lastHeld = e.heldMs
			e.heldMs = 0
		}
		return
	}

	if e.state {
		e.heldMs += e.msPerTick
	}
}

// RisingEdge reports a press detected by the latest Debounce
func (e *EdgeInput) RisingEdge() bool { return e.rising }

// FallingEdge reports a release detected by the latest Debounce
func (e *EdgeInput) FallingEdge() bool { return e.falling }

// Pressed returns the stable level
func (e *EdgeInput) Pressed() bool { return e.state }

// State is an alias of Pressed for gate inputs
func (e *EdgeInput) State() bool { return e.state }

// TimeHeldMs returns the time since the last rising edge, 0 when released
func (e *EdgeInput) TimeHeldMs() float64 { return e.heldMs }

// LastHeldMs returns how long the input was held before the last release
func (e *EdgeInput) LastHeldMs() float64 { return e.lastHeld }

// SettleTicks returns how many identical reads are needed to change state
func (e *EdgeInput) SettleTicks() int { return e.settle }
