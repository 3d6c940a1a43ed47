package voice

import (
	"fmt"

	"github.com/justyntemme/seedrig/pkg/dsp/distortion"
	"github.com/justyntemme/seedrig/pkg/dsp/envelope"
	"github.com/justyntemme/seedrig/pkg/dsp/filter"
	"github.com/justyntemme/seedrig/pkg/dsp/mix"
	"github.com/justyntemme/seedrig/pkg/dsp/oscillator"
	"github.com/justyntemme/seedrig/pkg/dsp/utility"
	"github.com/justyntemme/seedrig/pkg/framework/board"
	"github.com/justyntemme/seedrig/pkg/framework/control"
)

// DefaultSlew is the knob slew time used when a control does not set one
const DefaultSlew = 0.002

// Rates are the audio and control rates a voice runs at
type Rates struct {
	SampleRate float64 // Process calls per second
	TickRate   float64 // Update calls per second, defaults to SampleRate
}

// Snapshot holds the synthesis parameters captured at the last trigger
type Snapshot struct {
	Freq     float64
	FM       float64
	Decay    float64
	Velocity float64
	Tone     float64
	Drive    float64
	Blend    float64
}

// PitchMin is the frequency the pitch envelope settles to
func (s Snapshot) PitchMin() float64 { return s.Freq }

// PitchMax is the frequency the pitch envelope starts from
func (s Snapshot) PitchMax() float64 { return s.Freq + s.FM }

func (s *Snapshot) set(p Param, v float64) {
	switch p {
	case ParamFreq:
		s.Freq = v
	case ParamFM:
		s.FM = v
	case ParamDecay:
		s.Decay = v
	case ParamVelocity:
		s.Velocity = v
	case ParamTone:
		s.Tone = v
	case ParamDrive:
		s.Drive = v
	case ParamBlend:
		s.Blend = v
	}
}

type binding struct {
	spec ControlSpec
	ctrl *control.AnalogControl
	rng  control.Range
}

// Voice is one percussive synthesis unit. Update runs once per control tick
// and Process once per sample, both from the audio goroutine.
type Voice struct {
	name   string
	analog board.Analog

	trigger *control.EdgeInput
	button  *control.EdgeInput
	knobs   []binding

	osc      *oscillator.Oscillator
	noise    *utility.NoiseGenerator
	ampEnv   *envelope.AD
	pitchEnv *envelope.AD
	shaper   *distortion.Waveshaper
	svf      *filter.SVF

	snap  Snapshot
	level float32
}

// New builds a voice from a validated descriptor reading knobs from a and
// inputs from d.
func New(desc Descriptor, rates Rates, a board.Analog, d board.Digital) (*Voice, error) {
	st, err := desc.parse()
	if err != nil {
		return nil, err
	}
	if rates.SampleRate <= 0 {
		return nil, fmt.Errorf("voice %q: sample rate %v", desc.Name, rates.SampleRate)
	}
	if rates.TickRate <= 0 {
		rates.TickRate = rates.SampleRate
	}

	v := &Voice{
		name:    desc.Name,
		analog:  a,
		trigger: newInput(*desc.Trigger, d, rates.TickRate),
		osc:     oscillator.New(rates.SampleRate),
		ampEnv:  newEnv(desc.AmpEnv, rates.SampleRate),
	}
	if desc.Button != nil {
		v.button = newInput(*desc.Button, d, rates.TickRate)
	}
	v.osc.SetWaveform(st.waveform)

	v.snap = Snapshot{
		Freq:     desc.Oscillator.Frequency,
		FM:       desc.FM,
		Decay:    desc.AmpEnv.Decay,
		Velocity: desc.AmpEnv.Max,
	}
	if v.snap.Velocity == 0 {
		v.snap.Velocity = 1
	}

	// pitch envelope bounds come from the snapshot, only its shape is declared
	if desc.PitchEnv != nil {
		v.pitchEnv = newEnv(*desc.PitchEnv, rates.SampleRate)
	}
	if desc.Noise != nil {
		v.noise = utility.NewNoiseGenerator(st.noise, desc.Noise.Seed)
		v.snap.Blend = desc.Noise.Blend
	}
	if desc.Drive != nil {
		v.shaper = distortion.NewWaveshaper(st.drive)
		v.snap.Drive = desc.Drive.Amount
	}
	if desc.Filter != nil {
		v.svf = filter.NewSVF(rates.SampleRate, 1)
		v.svf.SetMode(st.filter)
		v.svf.SetResonance(desc.Filter.Resonance)
		v.svf.SetDrive(desc.Filter.Drive)
		v.snap.Tone = desc.Filter.Cutoff
	}

	for _, spec := range desc.Controls {
		slew := spec.Slew
		if slew <= 0 {
			slew = DefaultSlew
		}
		b := binding{
			spec: spec,
			ctrl: control.NewAnalogControl(control.AnalogConfig{
				Smoothing:   spec.Smoothed(),
				Coefficient: control.SlewCoefficient(slew, rates.TickRate),
				Invert:      spec.Invert,
			}),
			rng: control.Range{Min: spec.Min, Max: spec.Max, Exp: spec.Exp},
		}
		// start from the current knob position instead of gliding up from 0
		start := utility.ClampUnit(v.raw(spec))
		if spec.Invert {
			start = 1 - start
		}
		b.ctrl.Reset(start)
		v.snap.set(spec.Param, b.rng.Map(b.ctrl.Value()))
		v.knobs = append(v.knobs, b)
	}

	v.configure()
	return v, nil
}

func newInput(spec InputSpec, d board.Digital, tickRate float64) *control.EdgeInput {
	pol := control.ActiveHigh
	if spec.ActiveLow {
		pol = control.ActiveLow
	}
	line := spec.Line
	return control.NewEdgeInput(func() bool { return d.Read(line) }, control.EdgeConfig{
		Polarity: pol,
		Debounce: spec.Debounce,
		TickRate: tickRate,
	})
}

func newEnv(spec EnvSpec, sampleRate float64) *envelope.AD {
	env := envelope.NewAD(sampleRate)
	env.SetTime(envelope.SegmentAttack, spec.Attack)
	env.SetTime(envelope.SegmentDecay, spec.Decay)
	env.SetCurve(spec.Curve)
	env.SetMin(spec.Min)
	env.SetMax(spec.Max)
	return env
}

func (v *Voice) raw(spec ControlSpec) float32 {
	r := v.analog.Float(spec.Channel)
	if spec.CV != nil {
		r += v.analog.Float(*spec.CV)
	}
	return r
}

// configure pushes the snapshot into the stages
func (v *Voice) configure() {
	s := v.snap
	v.ampEnv.SetMax(s.Velocity)
	v.ampEnv.SetTime(envelope.SegmentDecay, s.Decay)

	if v.pitchEnv != nil {
		v.pitchEnv.SetMin(s.PitchMin())
		v.pitchEnv.SetMax(s.PitchMax())
	} else {
		v.osc.SetFrequency(s.Freq)
	}
	if v.svf != nil {
		v.svf.SetFrequency(s.Tone)
	}
	if v.shaper != nil {
		v.shaper.SetAmount(s.Drive)
	}
}

// Update debounces the inputs and reads every knob. A rising edge on the
// trigger or the button captures all knobs and fires the envelopes; between
// hits only continuous controls reach the sound.
func (v *Voice) Update() {
	v.trigger.Debounce()
	fired := v.trigger.RisingEdge()
	if v.button != nil {
		v.button.Debounce()
		fired = fired || v.button.RisingEdge()
	}

	changed := false
	for i := range v.knobs {
		b := &v.knobs[i]
		val := b.ctrl.Process(v.raw(b.spec))
		if fired || b.spec.Continuous {
			v.snap.set(b.spec.Param, b.rng.Map(val))
			changed = true
		}
	}
	if changed {
		v.configure()
	}

	if fired {
		v.ampEnv.Trigger()
		if v.pitchEnv != nil {
			v.pitchEnv.Trigger()
		}
	}
}

// Process renders one sample
func (v *Voice) Process() float32 {
	if v.pitchEnv != nil {
		v.osc.SetFrequency(float64(v.pitchEnv.Process()))
	}
	amp := v.ampEnv.Process()
	v.level = utility.ClampUnit(amp)
	v.osc.SetAmp(amp)

	out := v.osc.Process()
	if v.noise != nil {
		out = mix.CrossfadeLinear(out, v.noise.Next()*amp, float32(v.snap.Blend))
	}
	if v.shaper != nil {
		out = v.shaper.ProcessSample(out)
	}
	if v.svf != nil {
		out = v.svf.Process(out)
	}
	return out
}

// ProcessBuffer renders one block of the voice into buf
func (v *Voice) ProcessBuffer(buf []float32) {
	for i := range buf {
		buf[i] = v.Process()
	}
}

// Name returns the descriptor name
func (v *Voice) Name() string { return v.name }

// Level returns the last amplitude envelope output, for a status LED
func (v *Voice) Level() float32 { return v.level }

// Active reports whether the amplitude envelope is running
func (v *Voice) Active() bool { return v.ampEnv.Active() }

// Snapshot returns the parameters captured at the last trigger
func (v *Voice) Snapshot() Snapshot { return v.snap }

// Gate reports the debounced level of the trigger or button
func (v *Voice) Gate() bool {
	return v.trigger.State() || (v.button != nil && v.button.State())
}
