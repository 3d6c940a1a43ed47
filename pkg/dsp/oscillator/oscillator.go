// Package oscillator provides audio oscillators for synthesis
package oscillator

import (
	"fmt"
	"math"
)

// Waveform selects the shape produced by Process
type Waveform int

const (
	// WaveSine is a pure sine
	WaveSine Waveform = iota
	// WaveTriangle is a naive triangle
	WaveTriangle
	// WaveSaw is a naive rising sawtooth
	WaveSaw
	// WaveSquare is a naive 50% square
	WaveSquare
)

var waveformNames = map[Waveform]string{
	WaveSine:     "sine",
	WaveTriangle: "triangle",
	WaveSaw:      "saw",
	WaveSquare:   "square",
}

// String returns the waveform name used in rig files
func (w Waveform) String() string {
	if name, ok := waveformNames[w]; ok {
		return name
	}
	return fmt.Sprintf("Waveform(%d)", int(w))
}

// ParseWaveform converts a rig file name to a Waveform
func ParseWaveform(name string) (Waveform, error) {
	if name == "" {
		return WaveSine, nil
	}
	for w, n := range waveformNames {
		if n == name {
			return w, nil
		}
	}
	return WaveSine, fmt.Errorf("unknown waveform %q", name)
}

// Oscillator generates periodic waveforms
type Oscillator struct {
	sampleRate float64
	frequency  float64
	phase      float64
	phaseInc   float64
	amp        float32
	waveform   Waveform
}

// New creates a new oscillator
func New(sampleRate float64) *Oscillator {
	return &Oscillator{
		sampleRate: sampleRate,
		frequency:  440.0,
		phase:      0.0,
		phaseInc:   440.0 / sampleRate,
		amp:        1.0,
	}
}

// SetFrequency sets the oscillator frequency.
// Negative frequencies are clamped to 0 and the increment is held below Nyquist.
func (o *Oscillator) SetFrequency(freq float64) {
	if freq < 0 || freq != freq {
		freq = 0
	}
	o.frequency = freq
	o.phaseInc = math.Min(freq/o.sampleRate, 0.5)
}

// Frequency returns the current frequency in Hz
func (o *Oscillator) Frequency() float64 {
	return o.frequency
}

// SetAmp sets the output amplitude
func (o *Oscillator) SetAmp(amp float32) {
	o.amp = amp
}

// SetWaveform selects the shape produced by Process
func (o *Oscillator) SetWaveform(w Waveform) {
	o.waveform = w
}

// SetPhase sets the oscillator phase (0-1)
func (o *Oscillator) SetPhase(phase float64) {
	o.phase = phase - math.Floor(phase) // Wrap to 0-1
}

// Reset resets the oscillator phase to 0
func (o *Oscillator) Reset() {
	o.phase = 0.0
}

// updatePhase advances the phase and wraps it
func (o *Oscillator) updatePhase() {
	o.phase += o.phaseInc
	if o.phase >= 1.0 {
		o.phase -= math.Floor(o.phase)
	}
}

// Process generates one sample of the selected waveform scaled by the amplitude
func (o *Oscillator) Process() float32 {
	var sample float32
	switch o.waveform {
	case WaveTriangle:
		sample = o.Triangle()
	case WaveSaw:
		sample = o.Saw()
	case WaveSquare:
		sample = o.Square()
	default:
		sample = o.Sine()
	}
	return sample * o.amp
}

// Sine generates a sine wave sample
func (o *Oscillator) Sine() float32 {
	sample := float32(math.Sin(2.0 * math.Pi * o.phase))
	o.updatePhase()
	return sample
}

// Saw generates a sawtooth wave sample
func (o *Oscillator) Saw() float32 {
	sample := float32(2.0*o.phase - 1.0)
	o.updatePhase()
	return sample
}

// Square generates a square wave sample
func (o *Oscillator) Square() float32 {
	var sample float32
	if o.phase < 0.5 {
		sample = 1.0
	} else {
		sample = -1.0
	}
	o.updatePhase()
	return sample
}

// Triangle generates a triangle wave sample
func (o *Oscillator) Triangle() float32 {
	var sample float32
	if o.phase < 0.5 {
		sample = float32(4.0*o.phase - 1.0)
	} else {
		sample = float32(3.0 - 4.0*o.phase)
	}
	o.updatePhase()
	return sample
}
