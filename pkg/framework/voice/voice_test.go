package voice

import (
	"errors"
	"math"
	"testing"

	"github.com/justyntemme/seedrig/pkg/framework/board"
)

var testRates = Rates{SampleRate: 48000, TickRate: 12000}

// pitchVoice is the kick without inversion or smoothing so knob readings map
// straight into the snapshot
func pitchVoice() Descriptor {
	return Descriptor{
		Name:       "test",
		Trigger:    &InputSpec{Line: 0},
		Button:     &InputSpec{Line: 1},
		Oscillator: OscSpec{Waveform: "sine"},
		AmpEnv:     EnvSpec{Attack: 0.001, Decay: 0.01, Max: 1},
		PitchEnv:   &EnvSpec{Attack: 0.001, Decay: 0.005},
		Drive:      &DriveSpec{Curve: "softclip"},
		Controls: []ControlSpec{
			{Param: ParamFreq, Channel: 0, Min: 40, Max: 100, Smoothing: boolPtr(false)},
			{Param: ParamFM, Channel: 1, Min: 50, Max: 250, Smoothing: boolPtr(false)},
			{Param: ParamDrive, Channel: 2, Min: 0, Max: 1, Smoothing: boolPtr(false), Continuous: true},
		},
	}
}

func newTestVoice(t *testing.T, desc Descriptor) (*Voice, *board.Sim) {
	t.Helper()
	sim := board.NewSim(10, 4, 0)
	v, err := New(desc, testRates, sim, sim)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return v, sim
}

// hit raises line for one tick then lowers it again
func hit(v *Voice, sim *board.Sim, line int) {
	sim.SetLine(line, true)
	v.Update()
	sim.SetLine(line, false)
	v.Update()
}

func TestTriggerCapturesPitchRange(t *testing.T) {
	v, sim := newTestVoice(t, pitchVoice())
	sim.SetFloat(0, 0.5)
	sim.SetFloat(1, 0)

	hit(v, sim, 0)

	s := v.Snapshot()
	if math.Abs(s.PitchMin()-70) > 1e-6 {
		t.Errorf("Pitch min = %f, want 70", s.PitchMin())
	}
	if math.Abs(s.PitchMax()-120) > 1e-6 {
		t.Errorf("Pitch max = %f, want 120", s.PitchMax())
	}
	if math.Abs(v.pitchEnv.Min()-70) > 1e-6 || math.Abs(v.pitchEnv.Max()-120) > 1e-6 {
		t.Errorf("Pitch envelope = %f..%f, want 70..120", v.pitchEnv.Min(), v.pitchEnv.Max())
	}
	if !v.Active() {
		t.Error("Voice should be active after a hit")
	}
}

func TestSnapshotFrozenBetweenHits(t *testing.T) {
	v, sim := newTestVoice(t, pitchVoice())
	sim.SetFloat(0, 0)
	hit(v, sim, 0)
	if v.Snapshot().Freq != 40 {
		t.Fatalf("Freq = %f, want 40", v.Snapshot().Freq)
	}

	sim.SetFloat(0, 1)
	for i := 0; i < 100; i++ {
		v.Update()
	}
	if v.Snapshot().Freq != 40 {
		t.Errorf("Freq moved to %f without a trigger", v.Snapshot().Freq)
	}

	hit(v, sim, 0)
	if v.Snapshot().Freq != 100 {
		t.Errorf("Freq = %f after retrigger, want 100", v.Snapshot().Freq)
	}
}

func TestContinuousControl(t *testing.T) {
	v, sim := newTestVoice(t, pitchVoice())
	sim.SetFloat(2, 0.25)
	v.Update()
	if math.Abs(v.Snapshot().Drive-0.25) > 1e-6 {
		t.Errorf("Drive = %f, want 0.25 without a trigger", v.Snapshot().Drive)
	}
}

func TestButtonTriggers(t *testing.T) {
	v, sim := newTestVoice(t, pitchVoice())
	sim.SetFloat(0, 1)

	sim.SetLine(1, true)
	v.Update()
	if !v.Gate() {
		t.Error("Gate should follow the button")
	}
	if v.Snapshot().Freq != 100 {
		t.Errorf("Button press did not capture controls: %f", v.Snapshot().Freq)
	}
	if !v.Active() {
		t.Error("Button press should fire the envelopes")
	}
}

func TestCVSumsIntoKnob(t *testing.T) {
	v, sim := newTestVoice(t, AnalogBass())
	sim.SetFloat(0, 0.6)
	sim.SetFloat(3, 0.6)
	hit(v, sim, 0)

	if v.Snapshot().Freq != 80 {
		t.Errorf("Freq = %f, want clamped 80", v.Snapshot().Freq)
	}
}

func TestStartsFromKnobPosition(t *testing.T) {
	sim := board.NewSim(10, 4, 0)
	sim.SetFloat(0, 1)
	desc := pitchVoice()
	desc.Controls[0].Smoothing = nil

	v, err := New(desc, testRates, sim, sim)
	if err != nil {
		t.Fatal(err)
	}
	hit(v, sim, 0)
	if math.Abs(v.Snapshot().Freq-100) > 1e-3 {
		t.Errorf("Smoothed knob should start at its position, freq = %f", v.Snapshot().Freq)
	}
}

func TestProcess(t *testing.T) {
	v, sim := newTestVoice(t, pitchVoice())

	t.Run("SilentUntilTriggered", func(t *testing.T) {
		for i := 0; i < 1000; i++ {
			if out := v.Process(); out != 0 {
				t.Fatalf("Sample %d = %f before any trigger", i, out)
			}
		}
		if v.Active() {
			t.Error("Voice should be idle")
		}
	})

	t.Run("HitDecaysToSilence", func(t *testing.T) {
		hit(v, sim, 0)

		var peak, maxLevel float32
		for i := 0; i < 4800; i++ {
			out := v.Process()
			if out != out {
				t.Fatalf("NaN at sample %d", i)
			}
			if a := float32(math.Abs(float64(out))); a > peak {
				peak = a
			}
			if v.Level() > maxLevel {
				maxLevel = v.Level()
			}
		}
		if peak == 0 || maxLevel < 0.9 {
			t.Errorf("Peak %f, level %f: hit produced no sound", peak, maxLevel)
		}
		if v.Active() || v.Level() != 0 {
			t.Errorf("Voice should be idle after decay, level %f", v.Level())
		}
	})
}

func TestNoiseBlend(t *testing.T) {
	v, sim := newTestVoice(t, NoiseSnare())
	hit(v, sim, 1)

	buf := make([]float32, 480)
	v.ProcessBuffer(buf)

	var energy float64
	for _, s := range buf {
		energy += float64(s * s)
	}
	if energy == 0 {
		t.Error("Noise voice produced silence after a hit")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *Descriptor)
		wantErr error
	}{
		{"Valid", func(d *Descriptor) {}, nil},
		{"NoTrigger", func(d *Descriptor) { d.Trigger = nil }, ErrNoTrigger},
		{"UnknownParam", func(d *Descriptor) { d.Controls[0].Param = "pitch" }, ErrUnknownParam},
		{"DuplicateParam", func(d *Descriptor) { d.Controls[1].Param = ParamFreq }, ErrDuplicateParam},
		{"ToneWithoutFilter", func(d *Descriptor) { d.Controls[2].Param = ParamTone }, ErrMissingStage},
		{"BlendWithoutNoise", func(d *Descriptor) { d.Controls[2].Param = ParamBlend }, ErrMissingStage},
		{"FMWithoutPitchEnv", func(d *Descriptor) { d.PitchEnv = nil }, ErrMissingStage},
		{"NegativeChannel", func(d *Descriptor) { d.Controls[0].Channel = -1 }, ErrBadChannel},
		{"NegativeCV", func(d *Descriptor) { d.Controls[0].CV = intPtr(-2) }, ErrBadChannel},
		{"NegativeLine", func(d *Descriptor) { d.Button.Line = -1 }, ErrBadChannel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := pitchVoice()
			tt.mutate(&d)
			err := d.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("UnknownWaveform", func(t *testing.T) {
		d := pitchVoice()
		d.Oscillator.Waveform = "wavetable"
		if d.Validate() == nil {
			t.Error("Expected error for unknown waveform")
		}
	})
}

func TestPresetsValidate(t *testing.T) {
	for _, d := range []Descriptor{Kick(), Snare(), NoiseSnare(), DrumKick(), AnalogBass()} {
		if err := d.Validate(); err != nil {
			t.Errorf("%s: %v", d.Name, err)
		}
	}
}

func TestPreset(t *testing.T) {
	for _, name := range PresetNames() {
		d, ok := Preset(name)
		if !ok {
			t.Fatalf("Preset %q listed but missing", name)
		}
		if d.Name != name {
			t.Errorf("Preset %q is named %q", name, d.Name)
		}
	}
	if _, ok := Preset("cowbell"); ok {
		t.Error("Unknown preset should not resolve")
	}
}

func BenchmarkVoiceProcess(b *testing.B) {
	sim := board.NewSim(10, 4, 0)
	v, err := New(Kick(), testRates, sim, sim)
	if err != nil {
		b.Fatal(err)
	}
	sim.SetLine(0, true)
	v.Update()

	buf := make([]float32, 4)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v.Update()
		v.ProcessBuffer(buf)
	}
}
