// Package pedal implements the stereo feedback delay: two independent delay
// lines whose times follow the knobs within the active mode's time range,
// mixed with the dry input through a crossfade.
package pedal

import (
	"errors"
	"math"

	"github.com/justyntemme/seedrig/pkg/dsp/delay"
	"github.com/justyntemme/seedrig/pkg/dsp/envelope"
	"github.com/justyntemme/seedrig/pkg/dsp/mix"
	"github.com/justyntemme/seedrig/pkg/framework/board"
	"github.com/justyntemme/seedrig/pkg/framework/control"
	"github.com/justyntemme/seedrig/pkg/framework/mode"
	"github.com/justyntemme/seedrig/pkg/framework/param"
)

// ErrNoSampleRate is returned for a zero or negative sample rate
var ErrNoSampleRate = errors.New("pedal needs a positive sample rate")

// Channels are the analog channels of the four pedal knobs.
// TimeL and TimeR may be the same channel for a single time knob.
type Channels struct {
	TimeL    int `yaml:"time_l"`
	TimeR    int `yaml:"time_r"`
	Feedback int `yaml:"feedback"`
	Mix      int `yaml:"mix"`
}

// Config configures a Pipeline
type Config struct {
	SampleRate    float64
	TickRate      float64        // Update calls per second
	MaxSeconds    float64        // line length, defaults to the longest time range
	Curve         mix.Curve      // dry/wet law
	Channels      Channels
	Smoothing     bool           // knob smoothing
	Slew          float64        // knob slew seconds
	Invert        bool           // knobs wired backwards
	MoveThreshold float64        // knob jitter rejection
	FixedRange    *control.Range // seconds; overrides the mode's time range
	Glide         float64        // delay time glide seconds, 0 jumps
}

// Pipeline is the stereo delay. Update runs once per block and Process once
// per frame, both on the audio goroutine.
type Pipeline struct {
	cfg    Config
	analog board.Analog
	mode   *mode.Shared

	timeL, timeR *control.AnalogControl
	feedback     *control.AnalogControl
	mixKnob      *control.AnalogControl

	lines  [2]*delay.Line
	glide  [2]*param.Smoother
	xfade  *mix.CrossFade
	meters [2]*envelope.Follower
	fb     float32
	target [2]float64
}

// New creates a pipeline reading knobs from a. m supplies the time range and
// link flag; nil runs unlinked in the fast range.
func New(cfg Config, a board.Analog, m *mode.Shared) (*Pipeline, error) {
	if cfg.SampleRate <= 0 {
		return nil, ErrNoSampleRate
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = cfg.SampleRate
	}
	if !(cfg.MaxSeconds > 0) {
		cfg.MaxSeconds = mode.MaxSeconds()
		if cfg.FixedRange != nil {
			cfg.MaxSeconds = cfg.FixedRange.Max
		}
	}
	if m == nil {
		m = mode.NewShared(mode.State{Range: mode.RangeFast})
	}

	capacity := int(math.Ceil(cfg.MaxSeconds * cfg.SampleRate))

	knob := control.AnalogConfig{
		Smoothing:     cfg.Smoothing,
		Coefficient:   control.SlewCoefficient(cfg.Slew, cfg.TickRate),
		Invert:        cfg.Invert,
		MoveThreshold: cfg.MoveThreshold,
	}
	p := &Pipeline{
		cfg:      cfg,
		analog:   a,
		mode:     m,
		timeL:    control.NewAnalogControl(knob),
		timeR:    control.NewAnalogControl(knob),
		feedback: control.NewAnalogControl(knob),
		mixKnob:  control.NewAnalogControl(knob),
		xfade:    mix.NewCrossFade(cfg.Curve),
	}
	for ch := range p.lines {
		p.lines[ch] = delay.New(capacity)
		p.meters[ch] = envelope.NewFollower(cfg.SampleRate)
		p.meters[ch].SetRelease(0.2)
		if cfg.Glide > 0 {
			p.glide[ch] = param.NewSmoother(param.RetainForTime(cfg.Glide, cfg.SampleRate))
		}
	}

	p.seed()
	p.Update()
	for ch, g := range p.glide {
		if g != nil {
			g.Reset(p.target[ch])
		}
	}
	return p, nil
}

// seed starts the knobs at their current positions
func (p *Pipeline) seed() {
	for _, k := range []struct {
		ctrl *control.AnalogControl
		ch   int
	}{
		{p.timeL, p.cfg.Channels.TimeL},
		{p.timeR, p.cfg.Channels.TimeR},
		{p.feedback, p.cfg.Channels.Feedback},
		{p.mixKnob, p.cfg.Channels.Mix},
	} {
		v := p.analog.Float(k.ch)
		if p.cfg.Invert {
			v = 1 - v
		}
		k.ctrl.Reset(v)
	}
}

// timeRange returns the span the time knobs sweep in seconds
func (p *Pipeline) timeRange(s mode.State) control.Range {
	if p.cfg.FixedRange != nil {
		return *p.cfg.FixedRange
	}
	min, max := s.Range.Bounds()
	return control.Range{Min: min, Max: max}
}

// Update reads the knobs and the mode and retargets both lines
func (p *Pipeline) Update() {
	s := p.mode.Load()
	rng := p.timeRange(s)

	left := p.timeL.Process(p.analog.Float(p.cfg.Channels.TimeL))
	right := p.timeR.Process(p.analog.Float(p.cfg.Channels.TimeR))
	if s.Link {
		right = left
	}
	p.fb = p.feedback.Process(p.analog.Float(p.cfg.Channels.Feedback))
	p.xfade.SetPos(p.mixKnob.Process(p.analog.Float(p.cfg.Channels.Mix)))

	// The knob sweeps min..max, so full turn is the range maximum. The
	// hardware sketch computes max*v + min, which overshoots by min.
	p.target[0] = rng.Map(left) * p.cfg.SampleRate
	p.target[1] = rng.Map(right) * p.cfg.SampleRate
	for ch, line := range p.lines {
		if g := p.glide[ch]; g != nil {
			g.SetTarget(p.target[ch])
			continue
		}
		line.SetDelay(p.target[ch])
	}
}

// Process runs one stereo frame: read both lines, crossfade with the dry
// input, then write input plus scaled feedback.
func (p *Pipeline) Process(inL, inR float32) (outL, outR float32) {
	in := [2]float32{inL, inR}
	var out [2]float32
	for ch, line := range p.lines {
		if g := p.glide[ch]; g != nil {
			line.SetDelay(g.Next())
		}
		wet := line.Read()
		out[ch] = p.xfade.Process(in[ch], wet)
		line.Write(in[ch] + wet*p.fb)
		p.meters[ch].Follow(wet)
	}
	return out[0], out[1]
}

// Delays returns the current delay of each line in samples
func (p *Pipeline) Delays() (left, right float64) {
	return p.lines[0].Delay(), p.lines[1].Delay()
}

// Feedback returns the feedback amount applied by Process
func (p *Pipeline) Feedback() float32 { return p.fb }

// Mix returns the crossfade position
func (p *Pipeline) Mix() float32 { return p.xfade.Pos() }

// Levels returns the metered wet level of each line for the LEDs
func (p *Pipeline) Levels() (left, right float32) {
	return p.meters[0].Level(), p.meters[1].Level()
}

// Capacity returns the line length in samples
func (p *Pipeline) Capacity() int { return p.lines[0].Capacity() }

// Reset clears both lines
func (p *Pipeline) Reset() {
	for _, line := range p.lines {
		line.Reset()
	}
}
