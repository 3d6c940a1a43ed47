// Package board defines the hardware collaborators the runtime talks to
// (ADC, GPIO, LEDs, display) and a software board implementing them.
package board

import (
	"errors"
	"fmt"
)

// Analog supplies normalized analog readings by channel index.
// Out-of-range channels read 0.
type Analog interface {
	Float(ch int) float32
}

// Digital supplies the raw electrical level of a digital line.
// Out-of-range lines read false.
type Digital interface {
	Read(line int) bool
}

// LEDs accepts brightness commands in [0, 1]
type LEDs interface {
	SetLED(i int, brightness float32)
}

// Display accepts informational status lines
type Display interface {
	WriteLines(lines []string)
}

// Channel validation errors
var (
	ErrNoChannels     = errors.New("no channels configured")
	ErrDuplicatePin   = errors.New("duplicate pin")
	ErrDuplicateName  = errors.New("duplicate channel name")
	ErrSparseIndex    = errors.New("channel indices must be dense from 0")
	ErrUnknownChannel = errors.New("unknown channel")
)

// ChannelDescriptor binds a logical channel index to a hardware pin
type ChannelDescriptor struct {
	Index int    `yaml:"index"`
	Pin   int    `yaml:"pin"`
	Name  string `yaml:"name"`
}

// Channels is a validated, index-ordered list of channel descriptors
type Channels struct {
	list   []ChannelDescriptor
	byName map[string]int
}

// NewChannels validates descriptors: non-empty, unique pins and names,
// and indices forming 0..n-1 in any order.
func NewChannels(descs []ChannelDescriptor) (*Channels, error) {
	if len(descs) == 0 {
		return nil, ErrNoChannels
	}

	list := make([]ChannelDescriptor, len(descs))
	filled := make([]bool, len(descs))
	pins := make(map[int]string, len(descs))
	byName := make(map[string]int, len(descs))

	for _, d := range descs {
		if d.Index < 0 || d.Index >= len(descs) || filled[d.Index] {
			return nil, fmt.Errorf("%w: index %d", ErrSparseIndex, d.Index)
		}
		if other, ok := pins[d.Pin]; ok {
			return nil, fmt.Errorf("%w: pin %d used by %q and %q", ErrDuplicatePin, d.Pin, other, d.Name)
		}
		if d.Name != "" {
			if _, ok := byName[d.Name]; ok {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateName, d.Name)
			}
			byName[d.Name] = d.Index
		}
		pins[d.Pin] = d.Name
		list[d.Index] = d
		filled[d.Index] = true
	}

	return &Channels{list: list, byName: byName}, nil
}

// Len returns the number of channels
func (c *Channels) Len() int {
	return len(c.list)
}

// At returns the descriptor for index i
func (c *Channels) At(i int) (ChannelDescriptor, bool) {
	if i < 0 || i >= len(c.list) {
		return ChannelDescriptor{}, false
	}
	return c.list[i], true
}

// Lookup resolves a channel name to its index
func (c *Channels) Lookup(name string) (int, error) {
	i, ok := c.byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownChannel, name)
	}
	return i, nil
}

// All returns the descriptors in index order
func (c *Channels) All() []ChannelDescriptor {
	out := make([]ChannelDescriptor, len(c.list))
	copy(out, c.list)
	return out
}
