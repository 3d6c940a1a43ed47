package board

import (
	"errors"
	"fmt"
	"slices"
)

// DefaultGateHold is how long a scripted gate stays high when Hold is unset
const DefaultGateHold = 0.01

// ErrBadEvent is returned for script events that set neither or both targets
var ErrBadEvent = errors.New("script event must set exactly one of gate or knob")

// Event is one timed change applied to a Sim. Times are in seconds.
type Event struct {
	At    float64 `yaml:"at"`
	Gate  *int    `yaml:"gate,omitempty"`
	Knob  *int    `yaml:"knob,omitempty"`
	Value float32 `yaml:"value,omitempty"`
	Hold  float64 `yaml:"hold,omitempty"`
}

// Script is a list of events rendered against a sample clock
type Script struct {
	Length float64 `yaml:"length"`
	Events []Event `yaml:"events"`
}

// Validate checks every event targets exactly one input
func (s Script) Validate() error {
	for i, e := range s.Events {
		if (e.Gate == nil) == (e.Knob == nil) {
			return fmt.Errorf("event %d at %.3fs: %w", i, e.At, ErrBadEvent)
		}
		if e.At < 0 {
			return fmt.Errorf("event %d: negative time %.3fs", i, e.At)
		}
	}
	return nil
}

type release struct {
	at   int64
	line int
}

// Player applies a Script to a Sim one block at a time
type Player struct {
	sim        *Sim
	events     []Event
	sampleRate float64
	length     int64
	pos        int64
	next       int
	releases   []release
}

// NewPlayer creates a player positioned at t=0
func NewPlayer(script Script, sim *Sim, sampleRate float64) *Player {
	events := slices.Clone(script.Events)
	slices.SortStableFunc(events, func(a, b Event) int {
		switch {
		case a.At < b.At:
			return -1
		case a.At > b.At:
			return 1
		}
		return 0
	})
	return &Player{
		sim:        sim,
		events:     events,
		sampleRate: sampleRate,
		length:     int64(script.Length * sampleRate),
	}
}

// Advance applies every event due before the next block of frames.
// Call it before the scheduler reads the board.
func (p *Player) Advance(frames int) {
	end := p.pos + int64(frames)

	kept := p.releases[:0]
	for _, r := range p.releases {
		if r.at < end {
			p.sim.SetLine(r.line, false)
			continue
		}
		kept = append(kept, r)
	}
	p.releases = kept

	for p.next < len(p.events) {
		e := p.events[p.next]
		at := int64(e.At * p.sampleRate)
		if at >= end {
			break
		}
		switch {
		case e.Gate != nil:
			p.sim.SetLine(*e.Gate, true)
			hold := e.Hold
			if hold <= 0 {
				hold = DefaultGateHold
			}
			p.releases = append(p.releases, release{at: at + int64(hold*p.sampleRate), line: *e.Gate})
		case e.Knob != nil:
			p.sim.SetFloat(*e.Knob, e.Value)
		}
		p.next++
	}
	p.pos = end
}

// Position returns the number of frames advanced so far
func (p *Player) Position() int64 {
	return p.pos
}

// Done reports whether the script length has been reached
func (p *Player) Done() bool {
	return p.pos >= p.length
}
