package dsp

import (
	"fmt"

	"github.com/viterin/vek/vek32"

	"github.com/justyntemme/seedrig/pkg/dsp/distortion"
	"github.com/justyntemme/seedrig/pkg/dsp/dynamics"
	"github.com/justyntemme/seedrig/pkg/dsp/filter"
	"github.com/justyntemme/seedrig/pkg/dsp/gain"
)

// StageSpec declares one bus stage in a rig file
type StageSpec struct {
	Type      string  `yaml:"type"` // gain, drive, filter or limit
	Gain      float64 `yaml:"gain,omitempty"`
	DB        float64 `yaml:"db,omitempty"` // gain in dB when gain is unset
	Curve     string  `yaml:"curve,omitempty"`
	Amount    float64 `yaml:"amount,omitempty"`
	Mode      string  `yaml:"mode,omitempty"`
	Cutoff    float64 `yaml:"cutoff,omitempty"`
	Resonance float64 `yaml:"resonance,omitempty"`
	Ceiling   float64 `yaml:"ceiling,omitempty"` // dB
	Release   float64 `yaml:"release,omitempty"`
	Lookahead float64 `yaml:"lookahead,omitempty"`
}

// GainAdapter scales a block by a fixed factor
type GainAdapter struct {
	gain float32
}

// NewGainAdapter creates a gain stage
func NewGainAdapter(gain float32) *GainAdapter {
	return &GainAdapter{gain: gain}
}

func (a *GainAdapter) Process(buffer []float32) {
	if len(buffer) == 0 {
		return
	}
	vek32.MulNumber_Inplace(buffer, a.gain)
}

func (a *GainAdapter) Reset() {}

// SetGain changes the factor
func (a *GainAdapter) SetGain(gain float32) {
	a.gain = gain
}

// ShaperAdapter adapts a waveshaper to the Processor interface
type ShaperAdapter struct {
	shaper *distortion.Waveshaper
}

// NewShaperAdapter creates a drive stage
func NewShaperAdapter(curve distortion.CurveType, amount float64) *ShaperAdapter {
	w := distortion.NewWaveshaper(curve)
	w.SetAmount(amount)
	return &ShaperAdapter{shaper: w}
}

func (a *ShaperAdapter) Process(buffer []float32) {
	a.shaper.ProcessBuffer(buffer)
}

func (a *ShaperAdapter) Reset() {}

// FilterAdapter adapts a state variable filter to the Processor interface
type FilterAdapter struct {
	svf *filter.SVF
}

// NewFilterAdapter creates a filter stage
func NewFilterAdapter(sampleRate float64, mode filter.Mode, cutoff, resonance float64) *FilterAdapter {
	svf := filter.NewSVF(sampleRate, 1)
	svf.SetMode(mode)
	svf.SetFrequency(cutoff)
	svf.SetResonance(resonance)
	return &FilterAdapter{svf: svf}
}

func (a *FilterAdapter) Process(buffer []float32) {
	a.svf.ProcessBuffer(buffer)
}

func (a *FilterAdapter) Reset() {
	a.svf.Reset()
}

// LimiterAdapter adapts the output limiter to the Processor interface
type LimiterAdapter struct {
	limiter *dynamics.Limiter
}

// NewLimiterAdapter creates a limit stage. Zero release keeps the limiter's
// default.
func NewLimiterAdapter(sampleRate, ceiling, release, lookahead float64) *LimiterAdapter {
	l := dynamics.NewLimiter(sampleRate)
	l.SetCeiling(ceiling)
	if release > 0 {
		l.SetRelease(release)
	}
	l.SetLookahead(lookahead)
	return &LimiterAdapter{limiter: l}
}

func (a *LimiterAdapter) Process(buffer []float32) {
	a.limiter.ProcessBuffer(buffer)
}

func (a *LimiterAdapter) Reset() {
	a.limiter.Reset()
}

// GainReduction returns the limiter's current reduction in dB
func (a *LimiterAdapter) GainReduction() float64 {
	return a.limiter.GainReduction()
}

// NewStage builds the processor a spec declares
func NewStage(spec StageSpec, sampleRate float64) (Processor, error) {
	switch spec.Type {
	case "gain":
		if spec.Gain == 0 && spec.DB != 0 {
			return NewGainAdapter(gain.DbToLinear32(spec.DB)), nil
		}
		return NewGainAdapter(float32(spec.Gain)), nil
	case "limit":
		if spec.Ceiling > 0 {
			return nil, fmt.Errorf("limit ceiling %v dB above full scale", spec.Ceiling)
		}
		return NewLimiterAdapter(sampleRate, spec.Ceiling, spec.Release, spec.Lookahead), nil
	case "drive":
		curve, err := distortion.ParseCurve(spec.Curve)
		if err != nil {
			return nil, err
		}
		return NewShaperAdapter(curve, spec.Amount), nil
	case "filter":
		mode, err := filter.ParseMode(spec.Mode)
		if err != nil {
			return nil, err
		}
		if spec.Cutoff <= 0 {
			return nil, fmt.Errorf("filter cutoff %v", spec.Cutoff)
		}
		return NewFilterAdapter(sampleRate, mode, spec.Cutoff, spec.Resonance), nil
	}
	return nil, fmt.Errorf("unknown stage type %q", spec.Type)
}

// FromSpecs builds a chain from rig file stages
func FromSpecs(name string, specs []StageSpec, sampleRate float64) (*Chain, error) {
	b := NewBuilder(name)
	for i, spec := range specs {
		p, err := NewStage(spec, sampleRate)
		if err != nil {
			b.WithError(fmt.Errorf("stage %d: %w", i, err))
			continue
		}
		b.WithProcessor(spec.Type, p)
	}
	return b.Build()
}
