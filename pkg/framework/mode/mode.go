// Package mode holds the delay module's operating mode as one packed value
// shared by control mapping, the LEDs and the display.
package mode

import (
	"fmt"
	"sync/atomic"
)

// TimeRange selects the delay-time span the time knobs sweep
type TimeRange uint8

const (
	// RangeXFast spans 0.1 ms to 100 ms
	RangeXFast TimeRange = iota
	// RangeFast spans 10 ms to 500 ms
	RangeFast
	// RangeMedium spans 100 ms to 2 s
	RangeMedium
	// RangeSlow spans 1 s to 4 s
	RangeSlow

	numRanges
)

var rangeBounds = [numRanges][2]float64{
	RangeXFast:  {0.0001, 0.1},
	RangeFast:   {0.01, 0.5},
	RangeMedium: {0.1, 2.0},
	RangeSlow:   {1.0, 4.0},
}

var rangeNames = [numRanges]string{
	RangeXFast:  "X Fast",
	RangeFast:   "Fast",
	RangeMedium: "Med",
	RangeSlow:   "Slow",
}

// Bounds returns the minimum and maximum delay in seconds
func (r TimeRange) Bounds() (min, max float64) {
	if r >= numRanges {
		r = RangeXFast
	}
	b := rangeBounds[r]
	return b[0], b[1]
}

// Next cycles to the following range, wrapping after Slow
func (r TimeRange) Next() TimeRange {
	return (r + 1) % numRanges
}

// String returns the display label
func (r TimeRange) String() string {
	if r >= numRanges {
		return fmt.Sprintf("TimeRange(%d)", uint8(r))
	}
	return rangeNames[r]
}

// ParseTimeRange accepts the rig file spelling of a range
func ParseTimeRange(name string) (TimeRange, error) {
	switch name {
	case "xfast", "x-fast":
		return RangeXFast, nil
	case "fast", "":
		return RangeFast, nil
	case "medium", "med":
		return RangeMedium, nil
	case "slow":
		return RangeSlow, nil
	}
	return RangeFast, fmt.Errorf("unknown time range %q", name)
}

// MaxSeconds is the longest delay any range can ask for
func MaxSeconds() float64 {
	_, max := RangeSlow.Bounds()
	return max
}

// State is the complete mode: one value read by audio, LEDs and display
type State struct {
	Range TimeRange
	Link  bool
	Clock bool
}

const (
	linkBit  = 1 << 8
	clockBit = 1 << 9
)

// Pack encodes the state into a single word
func (s State) Pack() uint32 {
	v := uint32(s.Range)
	if s.Link {
		v |= linkBit
	}
	if s.Clock {
		v |= clockBit
	}
	return v
}

// Unpack decodes a word produced by Pack
func Unpack(v uint32) State {
	r := TimeRange(v & 0xff)
	if r >= numRanges {
		r = RangeXFast
	}
	return State{
		Range: r,
		Link:  v&linkBit != 0,
		Clock: v&clockBit != 0,
	}
}

// Lines renders the state for a status display
func (s State) Lines() []string {
	return []string{
		"Sync: " + onOff(s.Clock),
		"Range: " + s.Range.String(),
		"Link: " + onOff(s.Link),
	}
}

func onOff(b bool) string {
	if b {
		return "On"
	}
	return "Off"
}

// Shared is a State readable and writable from any goroutine without tearing
type Shared struct {
	v atomic.Uint32
}

// NewShared creates a shared state holding s
func NewShared(s State) *Shared {
	sh := &Shared{}
	sh.Store(s)
	return sh
}

// Load returns the current state
func (sh *Shared) Load() State {
	return Unpack(sh.v.Load())
}

// Store replaces the current state
func (sh *Shared) Store(s State) {
	sh.v.Store(s.Pack())
}
