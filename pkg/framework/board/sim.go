package board

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/justyntemme/seedrig/pkg/dsp/utility"
)

// Sim is a software board. Every input and output is an atomic so the
// audio goroutine and the front panel can share it without locks.
type Sim struct {
	analog  []atomic.Uint32
	digital []atomic.Bool
	leds    []atomic.Uint32

	mu    sync.Mutex
	lines []string
}

// NewSim creates a board with the given channel counts
func NewSim(analogs, digitals, leds int) *Sim {
	return &Sim{
		analog:  make([]atomic.Uint32, max(analogs, 0)),
		digital: make([]atomic.Bool, max(digitals, 0)),
		leds:    make([]atomic.Uint32, max(leds, 0)),
	}
}

// Float returns the reading on ch, 0 when out of range
func (s *Sim) Float(ch int) float32 {
	if ch < 0 || ch >= len(s.analog) {
		return 0
	}
	return math.Float32frombits(s.analog[ch].Load())
}

// SetFloat sets the reading on ch, clamped to [0, 1]
func (s *Sim) SetFloat(ch int, v float32) {
	if ch < 0 || ch >= len(s.analog) {
		return
	}
	s.analog[ch].Store(math.Float32bits(utility.ClampUnit(v)))
}

// Read returns the level of line, false when out of range
func (s *Sim) Read(line int) bool {
	if line < 0 || line >= len(s.digital) {
		return false
	}
	return s.digital[line].Load()
}

// SetLine sets the level of line
func (s *Sim) SetLine(line int, high bool) {
	if line < 0 || line >= len(s.digital) {
		return
	}
	s.digital[line].Store(high)
}

// SetLED stores a brightness, clamped to [0, 1]
func (s *Sim) SetLED(i int, brightness float32) {
	if i < 0 || i >= len(s.leds) {
		return
	}
	s.leds[i].Store(math.Float32bits(utility.ClampUnit(brightness)))
}

// LED returns the last brightness written to i
func (s *Sim) LED(i int) float32 {
	if i < 0 || i >= len(s.leds) {
		return 0
	}
	return math.Float32frombits(s.leds[i].Load())
}

// WriteLines replaces the display contents
func (s *Sim) WriteLines(lines []string) {
	s.mu.Lock()
	s.lines = append(s.lines[:0], lines...)
	s.mu.Unlock()
}

// Lines returns a copy of the display contents
func (s *Sim) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

// Counts returns the number of analog channels, digital lines and LEDs
func (s *Sim) Counts() (analogs, digitals, leds int) {
	return len(s.analog), len(s.digital), len(s.leds)
}
