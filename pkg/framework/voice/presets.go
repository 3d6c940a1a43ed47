package voice

import "sort"

var presets = map[string]func() Descriptor{
	"kick":        Kick,
	"snare":       Snare,
	"noise-snare": NoiseSnare,
	"drum-kick":   DrumKick,
	"analog-bass": AnalogBass,
}

// Preset returns the named built-in descriptor
func Preset(name string) (Descriptor, bool) {
	fn, ok := presets[name]
	if !ok {
		return Descriptor{}, false
	}
	return fn(), true
}

// PresetNames lists the built-in descriptors in sorted order
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func intPtr(i int) *int { return &i }

func boolPtr(b bool) *bool { return &b }

// Kick is the sine kick: a fast pitch drop from freq+fm down to freq through
// a gentle lowpass. Knobs on channels 0-4, trigger on line 0, button on line 2.
func Kick() Descriptor {
	return Descriptor{
		Name:       "kick",
		Trigger:    &InputSpec{Line: 0},
		Button:     &InputSpec{Line: 2},
		Oscillator: OscSpec{Waveform: "sine"},
		AmpEnv:     EnvSpec{Attack: 0.01, Decay: 0.5, Curve: -20, Min: 0, Max: 1},
		PitchEnv:   &EnvSpec{Attack: 0.01, Decay: 0.05},
		Filter:     &FilterSpec{Mode: "lowpass", Cutoff: 400, Resonance: 0.1, Drive: 0.1},
		Controls: []ControlSpec{
			{Param: ParamFreq, Channel: 0, Min: 40, Max: 100, Invert: true},
			{Param: ParamDecay, Channel: 1, Min: 0.25, Max: 10, Invert: true},
			{Param: ParamVelocity, Channel: 2, Min: 0.3, Max: 1, Invert: true},
			{Param: ParamFM, Channel: 3, Min: 50, Max: 250, Invert: true},
			{Param: ParamTone, Channel: 4, Min: 40, Max: 400},
		},
	}
}

// Snare is the tonal snare: a short pitch blip of fixed depth blended with
// white noise. Knobs on channels 5-9, trigger on line 1, button on line 3.
func Snare() Descriptor {
	return Descriptor{
		Name:       "snare",
		Trigger:    &InputSpec{Line: 1},
		Button:     &InputSpec{Line: 3},
		Oscillator: OscSpec{Waveform: "sine"},
		Noise:      &NoiseSpec{Type: "white", Seed: 1},
		AmpEnv:     EnvSpec{Attack: 0.01, Decay: 0.5, Curve: -20, Min: 0, Max: 1},
		PitchEnv:   &EnvSpec{Attack: 0.01, Decay: 0.05},
		Filter:     &FilterSpec{Mode: "highpass", Cutoff: 40, Resonance: 0.1, Drive: 0.1},
		FM:         100,
		Controls: []ControlSpec{
			{Param: ParamFreq, Channel: 5, Min: 100, Max: 350, Invert: true},
			{Param: ParamDecay, Channel: 6, Min: 0.25, Max: 10, Invert: true},
			{Param: ParamVelocity, Channel: 7, Min: 0.3, Max: 1, Invert: true},
			{Param: ParamBlend, Channel: 8, Min: 0, Max: 1, Invert: true},
			{Param: ParamTone, Channel: 9, Min: 40, Max: 400},
		},
	}
}

// NoiseSnare is a plain noise burst with a fixed 200 ms decay on line 1
func NoiseSnare() Descriptor {
	return Descriptor{
		Name:       "noise-snare",
		Trigger:    &InputSpec{Line: 1},
		Oscillator: OscSpec{Waveform: "sine"},
		Noise:      &NoiseSpec{Type: "white", Seed: 7, Blend: 1},
		AmpEnv:     EnvSpec{Attack: 0.01, Decay: 0.2, Min: 0, Max: 1},
	}
}

// DrumKick is the kick with a drive stage: freq, decay, fm and drive knobs on
// channels 0-3 with CV for freq and decay on 4 and 5. Trigger on line 0,
// button on line 2.
func DrumKick() Descriptor {
	return Descriptor{
		Name:       "drum-kick",
		Trigger:    &InputSpec{Line: 0},
		Button:     &InputSpec{Line: 2},
		Oscillator: OscSpec{Waveform: "sine"},
		AmpEnv:     EnvSpec{Attack: 0.01, Decay: 1, Curve: -20, Min: 0, Max: 1},
		PitchEnv:   &EnvSpec{Attack: 0.01, Decay: 0.05},
		Drive:      &DriveSpec{Curve: "softclip"},
		Controls: []ControlSpec{
			{Param: ParamFreq, Channel: 0, CV: intPtr(4), Min: 40, Max: 100},
			{Param: ParamDecay, Channel: 1, CV: intPtr(5), Min: 0.2, Max: 10},
			{Param: ParamFM, Channel: 2, Min: 50, Max: 300},
			{Param: ParamDrive, Channel: 3, Min: 0, Max: 1, Continuous: true},
		},
	}
}

// AnalogBass is the CV-driven bass drum: unsmoothed knobs read at the hit,
// a pitch envelope without attack and a saturated lowpass body. Freq and
// decay knobs on channels 0 and 1 with CV on 3 and 4, tone on 2, trigger on
// line 0.
func AnalogBass() Descriptor {
	return Descriptor{
		Name:       "analog-bass",
		Trigger:    &InputSpec{Line: 0},
		Oscillator: OscSpec{Waveform: "triangle"},
		AmpEnv:     EnvSpec{Attack: 0.001, Decay: 0.5, Curve: -8, Min: 0, Max: 1},
		PitchEnv:   &EnvSpec{Attack: 0, Decay: 0.02, Curve: -4},
		Drive:      &DriveSpec{Curve: "saturate", Amount: 0.8},
		Filter:     &FilterSpec{Mode: "lowpass", Cutoff: 1000, Resonance: 0.2},
		FM:         30,
		Controls: []ControlSpec{
			{Param: ParamFreq, Channel: 0, CV: intPtr(3), Min: 30, Max: 80, Smoothing: boolPtr(false)},
			{Param: ParamDecay, Channel: 1, CV: intPtr(4), Min: 0.05, Max: 1.5, Smoothing: boolPtr(false)},
			{Param: ParamTone, Channel: 2, Min: 200, Max: 5000, Smoothing: boolPtr(false)},
		},
	}
}
