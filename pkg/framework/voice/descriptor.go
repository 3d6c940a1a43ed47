// Package voice implements one configurable percussive voice: debounced
// trigger inputs, knob readers, attack/decay envelopes, an oscillator or noise
// source and optional drive and filter stages. Knob values are captured when
// the voice is triggered and held until the next hit.
package voice

import (
	"errors"
	"fmt"
	"time"

	"github.com/justyntemme/seedrig/pkg/dsp/distortion"
	"github.com/justyntemme/seedrig/pkg/dsp/filter"
	"github.com/justyntemme/seedrig/pkg/dsp/oscillator"
	"github.com/justyntemme/seedrig/pkg/dsp/utility"
)

// Validation errors
var (
	ErrNoTrigger      = errors.New("voice has no trigger input")
	ErrUnknownParam   = errors.New("unknown voice parameter")
	ErrDuplicateParam = errors.New("parameter bound to more than one control")
	ErrMissingStage   = errors.New("parameter has no stage to drive")
	ErrBadChannel     = errors.New("negative channel")
)

// Param names a synthesis parameter a knob can drive
type Param string

const (
	ParamFreq     Param = "freq"     // pitch envelope floor, or oscillator frequency
	ParamDecay    Param = "decay"    // amplitude envelope decay seconds
	ParamVelocity Param = "velocity" // amplitude envelope peak
	ParamFM       Param = "fm"       // pitch envelope depth above freq, in Hz
	ParamTone     Param = "tone"     // filter cutoff Hz
	ParamDrive    Param = "drive"    // waveshaper amount 0-1
	ParamBlend    Param = "blend"    // noise share of the source, 0 = oscillator only
)

var knownParams = map[Param]bool{
	ParamFreq:     true,
	ParamDecay:    true,
	ParamVelocity: true,
	ParamFM:       true,
	ParamTone:     true,
	ParamDrive:    true,
	ParamBlend:    true,
}

// InputSpec binds a digital line
type InputSpec struct {
	Line      int           `yaml:"line"`
	ActiveLow bool          `yaml:"active_low"`
	Debounce  time.Duration `yaml:"debounce"`
}

// OscSpec configures the tonal source
type OscSpec struct {
	Waveform  string  `yaml:"waveform"`
	Frequency float64 `yaml:"frequency"` // used when no freq control is bound
}

// NoiseSpec adds a noise source blended with the oscillator
type NoiseSpec struct {
	Type  string  `yaml:"type"`
	Seed  int64   `yaml:"seed"`
	Blend float64 `yaml:"blend"` // used when no blend control is bound
}

// EnvSpec configures an attack/decay envelope
type EnvSpec struct {
	Attack float64 `yaml:"attack"`
	Decay  float64 `yaml:"decay"`
	Curve  float64 `yaml:"curve"`
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
}

// DriveSpec configures the waveshaper stage
type DriveSpec struct {
	Curve  string  `yaml:"curve"`
	Amount float64 `yaml:"amount"`
}

// FilterSpec configures the state variable filter stage
type FilterSpec struct {
	Mode      string  `yaml:"mode"`
	Cutoff    float64 `yaml:"cutoff"`
	Resonance float64 `yaml:"resonance"`
	Drive     float64 `yaml:"drive"`
}

// ControlSpec binds a knob (plus an optional CV input summed into it) to a
// parameter. Continuous controls are applied every tick instead of on trigger.
type ControlSpec struct {
	Param      Param   `yaml:"param"`
	Channel    int     `yaml:"channel"`
	CV         *int    `yaml:"cv,omitempty"`
	Min        float64 `yaml:"min"`
	Max        float64 `yaml:"max"`
	Exp        bool    `yaml:"exp"`
	Smoothing  *bool   `yaml:"smoothing,omitempty"`
	Slew       float64 `yaml:"slew"`
	Invert     bool    `yaml:"invert"`
	Continuous bool    `yaml:"continuous"`
}

// Smoothed reports whether the knob is smoothed, which is the default
func (c ControlSpec) Smoothed() bool {
	return c.Smoothing == nil || *c.Smoothing
}

// Descriptor declares a voice: which stages exist and which knobs drive them
type Descriptor struct {
	Name       string        `yaml:"name"`
	Trigger    *InputSpec    `yaml:"trigger"`
	Button     *InputSpec    `yaml:"button,omitempty"`
	Oscillator OscSpec       `yaml:"oscillator"`
	Noise      *NoiseSpec    `yaml:"noise,omitempty"`
	AmpEnv     EnvSpec       `yaml:"amp_env"`
	PitchEnv   *EnvSpec      `yaml:"pitch_env,omitempty"`
	Drive      *DriveSpec    `yaml:"drive,omitempty"`
	Filter     *FilterSpec   `yaml:"filter,omitempty"`
	FM         float64       `yaml:"fm"` // pitch depth when no fm control is bound
	Controls   []ControlSpec `yaml:"controls"`
}

// stages holds the parsed enum settings of a validated descriptor
type stages struct {
	waveform oscillator.Waveform
	noise    utility.NoiseType
	drive    distortion.CurveType
	filter   filter.Mode
}

// Validate reports the first problem in d. Validation happens once at
// start-up; the audio path never checks.
func (d Descriptor) Validate() error {
	_, err := d.parse()
	return err
}

func (d Descriptor) parse() (stages, error) {
	var st stages
	var err error

	if d.Trigger == nil {
		return st, fmt.Errorf("voice %q: %w", d.Name, ErrNoTrigger)
	}
	if d.Trigger.Line < 0 || (d.Button != nil && d.Button.Line < 0) {
		return st, fmt.Errorf("voice %q: input line: %w", d.Name, ErrBadChannel)
	}

	if st.waveform, err = oscillator.ParseWaveform(d.Oscillator.Waveform); err != nil {
		return st, fmt.Errorf("voice %q: %w", d.Name, err)
	}
	if d.Noise != nil {
		if st.noise, err = utility.ParseNoiseType(d.Noise.Type); err != nil {
			return st, fmt.Errorf("voice %q: %w", d.Name, err)
		}
	}
	if d.Drive != nil {
		if st.drive, err = distortion.ParseCurve(d.Drive.Curve); err != nil {
			return st, fmt.Errorf("voice %q: %w", d.Name, err)
		}
	}
	if d.Filter != nil {
		if st.filter, err = filter.ParseMode(d.Filter.Mode); err != nil {
			return st, fmt.Errorf("voice %q: %w", d.Name, err)
		}
	}

	seen := make(map[Param]bool, len(d.Controls))
	for _, c := range d.Controls {
		if !knownParams[c.Param] {
			return st, fmt.Errorf("voice %q: %w: %q", d.Name, ErrUnknownParam, c.Param)
		}
		if seen[c.Param] {
			return st, fmt.Errorf("voice %q: %w: %q", d.Name, ErrDuplicateParam, c.Param)
		}
		seen[c.Param] = true

		if c.Channel < 0 || (c.CV != nil && *c.CV < 0) {
			return st, fmt.Errorf("voice %q: %s: %w", d.Name, c.Param, ErrBadChannel)
		}
		if !d.hasStage(c.Param) {
			return st, fmt.Errorf("voice %q: %w: %q", d.Name, ErrMissingStage, c.Param)
		}
	}
	return st, nil
}

func (d Descriptor) hasStage(p Param) bool {
	switch p {
	case ParamFM:
		return d.PitchEnv != nil
	case ParamTone:
		return d.Filter != nil
	case ParamDrive:
		return d.Drive != nil
	case ParamBlend:
		return d.Noise != nil
	}
	return true
}
