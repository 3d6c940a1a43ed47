// Package config loads rig files: the board layout, the voices and effects
// wired to it, LED bindings and an optional render script.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/justyntemme/seedrig/pkg/dsp/mix"
	"github.com/justyntemme/seedrig/pkg/framework/board"
	"github.com/justyntemme/seedrig/pkg/framework/control"
	"github.com/justyntemme/seedrig/pkg/framework/dsp"
	"github.com/justyntemme/seedrig/pkg/framework/mode"
	"github.com/justyntemme/seedrig/pkg/framework/pedal"
	"github.com/justyntemme/seedrig/pkg/framework/voice"
)

// Defaults applied to fields a rig leaves out
const (
	DefaultSampleRate = 48000
	DefaultBlockSize  = 4
	DefaultChannels   = 2
	DefaultPollRate   = 1000
)

// Rig errors
var (
	ErrEmptyRig       = errors.New("rig has no voices, pedal or LEDs")
	ErrUnknownPreset  = errors.New("unknown voice preset")
	ErrDuplicateVoice = errors.New("duplicate voice name")
	ErrBadBlockSize   = errors.New("block size out of range")
	ErrBadLED         = errors.New("bad LED binding")
)

// Board lists the analog and digital channels and the LED count
type Board struct {
	Analog  []board.ChannelDescriptor `yaml:"analog"`
	Digital []board.ChannelDescriptor `yaml:"digital"`
	LEDs    int                       `yaml:"leds"`
}

// VoiceSpec is a voice entry: a preset, an inline descriptor, or a preset
// with its inputs and controls rewired
type VoiceSpec struct {
	Preset           string  `yaml:"preset"`
	Gain             float64 `yaml:"gain"`
	voice.Descriptor `yaml:",inline"`
}

// PedalSpec configures the stereo delay
type PedalSpec struct {
	Channels      pedal.Channels `yaml:"channels"`
	Curve         string         `yaml:"curve"`
	MaxSeconds    float64        `yaml:"max_seconds"`
	Smoothing     bool           `yaml:"smoothing"`
	Slew          float64        `yaml:"slew"`
	Invert        bool           `yaml:"invert"`
	MoveThreshold float64        `yaml:"move_threshold"`
	FixedRange    *control.Range `yaml:"fixed_range"`
	Glide         float64        `yaml:"glide"`
}

// PanelSpec wires the mode switches
type PanelSpec struct {
	Sync      int           `yaml:"sync"`
	Range     int           `yaml:"range"`
	Clock     *int          `yaml:"clock"`
	LongPress time.Duration `yaml:"long_press"`
	Debounce  time.Duration `yaml:"debounce"`
	ActiveLow bool          `yaml:"active_low"`
}

// ModeSpec is the mode at power-up
type ModeSpec struct {
	Range string `yaml:"range"`
	Link  bool   `yaml:"link"`
	Clock bool   `yaml:"clock"`
}

// LEDSpec binds an LED to a source: voice:<name>, gate:<name>, knob:<channel>,
// line:<line>, pedal:left, pedal:right, clock or output
type LEDSpec struct {
	LED    int    `yaml:"led"`
	Source string `yaml:"source"`
}

// Rig is a parsed rig file
type Rig struct {
	Name       string          `yaml:"name"`
	SampleRate float64         `yaml:"sample_rate"`
	BlockSize  int             `yaml:"block_size"`
	Channels   int             `yaml:"channels"`
	PollRate   float64         `yaml:"poll_rate"`
	Board      Board           `yaml:"board"`
	Voices     []VoiceSpec     `yaml:"voices"`
	Bus        []dsp.StageSpec `yaml:"bus"`
	Pedal      *PedalSpec      `yaml:"pedal"`
	Panel      *PanelSpec      `yaml:"panel"`
	Mode       ModeSpec        `yaml:"mode"`
	LEDs       []LEDSpec       `yaml:"leds"`
	Script     *board.Script   `yaml:"script"`

	analog  *board.Channels
	digital *board.Channels
	voices  []voice.Descriptor
}

// Load reads and parses a rig file
func Load(path string) (*Rig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Parse decodes a rig, applies defaults and validates it. Unknown keys are
// errors.
func Parse(data []byte) (*Rig, error) {
	var r Rig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("decode rig: %w", err)
	}
	r.defaults()
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *Rig) defaults() {
	if r.SampleRate <= 0 {
		r.SampleRate = DefaultSampleRate
	}
	if r.BlockSize == 0 {
		r.BlockSize = DefaultBlockSize
	}
	if r.Channels <= 0 {
		r.Channels = DefaultChannels
	}
	if r.PollRate <= 0 {
		r.PollRate = DefaultPollRate
	}
	for i := range r.Voices {
		if r.Voices[i].Gain == 0 {
			r.Voices[i].Gain = 1
		}
	}
}

// Validate checks the whole rig: channel lists, voice descriptors, every
// channel and line reference, the pedal, the panel, LED bindings and the
// script.
func (r *Rig) Validate() error {
	if r.BlockSize < 1 || r.BlockSize > 4096 {
		return fmt.Errorf("%w: %d", ErrBadBlockSize, r.BlockSize)
	}
	if len(r.Voices) == 0 && r.Pedal == nil && len(r.LEDs) == 0 {
		return ErrEmptyRig
	}

	var err error
	if r.analog, err = channels(r.Board.Analog); err != nil {
		return fmt.Errorf("analog: %w", err)
	}
	if r.digital, err = channels(r.Board.Digital); err != nil {
		return fmt.Errorf("digital: %w", err)
	}
	if r.Board.LEDs < 0 {
		return fmt.Errorf("%w: %d LEDs", ErrBadLED, r.Board.LEDs)
	}

	if err := r.resolveVoices(); err != nil {
		return err
	}

	if _, err := dsp.FromSpecs("bus", r.Bus, r.SampleRate); len(r.Bus) > 0 && err != nil {
		return fmt.Errorf("bus: %w", err)
	}

	if p := r.Pedal; p != nil {
		if _, err := mix.ParseCurve(p.Curve); err != nil {
			return fmt.Errorf("pedal: %w", err)
		}
		for _, ch := range []int{p.Channels.TimeL, p.Channels.TimeR, p.Channels.Feedback, p.Channels.Mix} {
			if err := r.checkAnalog(ch); err != nil {
				return fmt.Errorf("pedal: %w", err)
			}
		}
	}

	if p := r.Panel; p != nil {
		lines := []int{p.Sync, p.Range}
		if p.Clock != nil {
			lines = append(lines, *p.Clock)
		}
		for _, l := range lines {
			if err := r.checkDigital(l); err != nil {
				return fmt.Errorf("panel: %w", err)
			}
		}
	}
	if _, err := mode.ParseTimeRange(r.Mode.Range); err != nil {
		return fmt.Errorf("mode: %w", err)
	}

	for _, l := range r.LEDs {
		if err := r.checkLED(l); err != nil {
			return err
		}
	}

	if s := r.Script; s != nil {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("script: %w", err)
		}
		for _, e := range s.Events {
			if e.Gate != nil {
				if err := r.checkDigital(*e.Gate); err != nil {
					return fmt.Errorf("script: %w", err)
				}
			}
			if e.Knob != nil {
				if err := r.checkAnalog(*e.Knob); err != nil {
					return fmt.Errorf("script: %w", err)
				}
			}
		}
	}
	return nil
}

func channels(descs []board.ChannelDescriptor) (*board.Channels, error) {
	if len(descs) == 0 {
		return nil, nil
	}
	return board.NewChannels(descs)
}

func count(c *board.Channels) int {
	if c == nil {
		return 0
	}
	return c.Len()
}

func (r *Rig) checkAnalog(ch int) error {
	if ch < 0 || ch >= count(r.analog) {
		return fmt.Errorf("%w: analog %d", board.ErrUnknownChannel, ch)
	}
	return nil
}

func (r *Rig) checkDigital(line int) error {
	if line < 0 || line >= count(r.digital) {
		return fmt.Errorf("%w: digital %d", board.ErrUnknownChannel, line)
	}
	return nil
}

// resolveVoices expands presets and checks every descriptor against the board
func (r *Rig) resolveVoices() error {
	r.voices = r.voices[:0]
	names := make(map[string]bool, len(r.Voices))
	for i, spec := range r.Voices {
		d, err := spec.resolve()
		if err != nil {
			return fmt.Errorf("voice %d: %w", i, err)
		}
		if names[d.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateVoice, d.Name)
		}
		names[d.Name] = true

		if err := d.Validate(); err != nil {
			return err
		}
		if err := r.checkDigital(d.Trigger.Line); err != nil {
			return fmt.Errorf("voice %q trigger: %w", d.Name, err)
		}
		if d.Button != nil {
			if err := r.checkDigital(d.Button.Line); err != nil {
				return fmt.Errorf("voice %q button: %w", d.Name, err)
			}
		}
		for _, c := range d.Controls {
			if err := r.checkAnalog(c.Channel); err != nil {
				return fmt.Errorf("voice %q %s: %w", d.Name, c.Param, err)
			}
			if c.CV != nil {
				if err := r.checkAnalog(*c.CV); err != nil {
					return fmt.Errorf("voice %q %s cv: %w", d.Name, c.Param, err)
				}
			}
		}
		r.voices = append(r.voices, d)
	}
	return nil
}

// resolve returns the descriptor a spec declares. A preset may be renamed
// and have its inputs and controls replaced; its stages stay as built.
func (s VoiceSpec) resolve() (voice.Descriptor, error) {
	if s.Preset == "" {
		return s.Descriptor, nil
	}
	d, ok := voice.Preset(s.Preset)
	if !ok {
		return d, fmt.Errorf("%w: %q (have %s)", ErrUnknownPreset, s.Preset,
			strings.Join(voice.PresetNames(), ", "))
	}
	if s.Name != "" {
		d.Name = s.Name
	}
	if s.Trigger != nil {
		d.Trigger = s.Trigger
	}
	if s.Button != nil {
		d.Button = s.Button
	}
	if len(s.Controls) > 0 {
		d.Controls = s.Controls
	}
	return d, nil
}

// ledSource splits a binding into its kind and argument
func ledSource(src string) (kind, arg string) {
	kind, arg, _ = strings.Cut(src, ":")
	return kind, arg
}

func (r *Rig) checkLED(l LEDSpec) error {
	if l.LED < 0 || l.LED >= r.Board.LEDs {
		return fmt.Errorf("%w: led %d of %d", ErrBadLED, l.LED, r.Board.LEDs)
	}
	kind, arg := ledSource(l.Source)
	switch kind {
	case "voice", "gate":
		for _, d := range r.voices {
			if d.Name == arg {
				return nil
			}
		}
		return fmt.Errorf("%w: led %d: no voice %q", ErrBadLED, l.LED, arg)
	case "knob":
		ch, err := r.analogIndex(arg)
		if err != nil {
			return fmt.Errorf("%w: led %d: %v", ErrBadLED, l.LED, err)
		}
		return r.checkAnalog(ch)
	case "line":
		line, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("%w: led %d: %v", ErrBadLED, l.LED, err)
		}
		return r.checkDigital(line)
	case "pedal":
		if r.Pedal == nil || (arg != "left" && arg != "right") {
			return fmt.Errorf("%w: led %d: %q", ErrBadLED, l.LED, l.Source)
		}
		return nil
	case "clock":
		if r.Panel == nil || r.Panel.Clock == nil {
			return fmt.Errorf("%w: led %d: clock needs a panel clock line", ErrBadLED, l.LED)
		}
		return nil
	case "output":
		return nil
	}
	return fmt.Errorf("%w: led %d: unknown source %q", ErrBadLED, l.LED, l.Source)
}

// analogIndex resolves a channel given by index or by name
func (r *Rig) analogIndex(arg string) (int, error) {
	if ch, err := strconv.Atoi(arg); err == nil {
		return ch, nil
	}
	if r.analog == nil {
		return 0, fmt.Errorf("%w: %q", board.ErrUnknownChannel, arg)
	}
	return r.analog.Lookup(arg)
}

// Descriptors returns the resolved voice descriptors in rig order
func (r *Rig) Descriptors() []voice.Descriptor {
	out := make([]voice.Descriptor, len(r.voices))
	copy(out, r.voices)
	return out
}

// AnalogChannels returns the analog descriptors in index order
func (r *Rig) AnalogChannels() []board.ChannelDescriptor {
	if r.analog == nil {
		return nil
	}
	return r.analog.All()
}

// DigitalChannels returns the digital descriptors in index order
func (r *Rig) DigitalChannels() []board.ChannelDescriptor {
	if r.digital == nil {
		return nil
	}
	return r.digital.All()
}

// TickRate is the rate control updates run at: one per block
func (r *Rig) TickRate() float64 {
	return r.SampleRate / float64(r.BlockSize)
}
