package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/justyntemme/seedrig/pkg/framework/board"
	"github.com/justyntemme/seedrig/pkg/framework/debug"
	"github.com/justyntemme/seedrig/pkg/framework/mode"
	"github.com/justyntemme/seedrig/pkg/framework/voice"
)

const kickRig = `
name: test-kick
block_size: 4
board:
  analog:
    - {index: 0, pin: 15, name: freq}
    - {index: 1, pin: 16, name: decay}
    - {index: 2, pin: 17, name: velocity}
    - {index: 3, pin: 18, name: fm}
    - {index: 4, pin: 19, name: tone}
  digital:
    - {index: 0, pin: 20, name: trig}
    - {index: 1, pin: 21, name: unused}
    - {index: 2, pin: 22, name: button}
  leds: 3
voices:
  - preset: kick
    gain: 0.8
bus:
  - {type: drive, curve: softclip, amount: 0.1}
leds:
  - {led: 0, source: "voice:kick"}
  - {led: 1, source: "gate:kick"}
  - {led: 2, source: "knob:tone"}
script:
  length: 0.5
  events:
    - {at: 0.0, knob: 0, value: 0.5}
    - {at: 0.1, gate: 0}
`

const pedalRig = `
name: test-pedal
sample_rate: 1000
block_size: 1
board:
  analog:
    - {index: 0, pin: 15, name: time}
    - {index: 1, pin: 16, name: feedback}
    - {index: 2, pin: 17, name: mix}
  digital:
    - {index: 0, pin: 1, name: sync}
    - {index: 1, pin: 2, name: range}
    - {index: 2, pin: 3, name: clock}
  leds: 2
pedal:
  channels: {time_l: 0, time_r: 0, feedback: 1, mix: 2}
  curve: linear
  fixed_range: {min: 0, max: 1}
panel:
  sync: 0
  range: 1
  clock: 2
  long_press: 2s
  debounce: 0s
mode:
  range: medium
leds:
  - {led: 0, source: "pedal:left"}
  - {led: 1, source: clock}
`

func quietLogger() *debug.Logger {
	l := debug.Default().With("test")
	l.SetLevel(debug.LogLevelOff)
	return l
}

func mustParse(t *testing.T, src string) *Rig {
	t.Helper()
	r, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return r
}

func TestParseDefaults(t *testing.T) {
	r := mustParse(t, kickRig)
	if r.SampleRate != DefaultSampleRate || r.Channels != DefaultChannels || r.PollRate != DefaultPollRate {
		t.Errorf("Defaults not applied: %+v", r)
	}
	if r.TickRate() != 12000 {
		t.Errorf("TickRate = %f, want 12000", r.TickRate())
	}

	descs := r.Descriptors()
	if len(descs) != 1 || descs[0].Name != "kick" {
		t.Fatalf("Descriptors = %+v", descs)
	}
	if r.Voices[0].Gain != 0.8 {
		t.Errorf("Gain = %f", r.Voices[0].Gain)
	}
	if got := r.AnalogChannels(); len(got) != 5 || got[4].Name != "tone" {
		t.Errorf("Analog channels = %+v", got)
	}
}

func TestParseVoiceSpecs(t *testing.T) {
	t.Run("PresetRewired", func(t *testing.T) {
		r := mustParse(t, `
board:
  analog:
    - {index: 0, pin: 1}
  digital:
    - {index: 0, pin: 2}
    - {index: 1, pin: 3}
voices:
  - preset: analog-bass
    name: bd
    trigger: {line: 1, active_low: true, debounce: 5ms}
    controls:
      - {param: freq, channel: 0, min: 30, max: 60}
`)
		d := r.Descriptors()[0]
		if d.Name != "bd" || d.Trigger.Line != 1 || !d.Trigger.ActiveLow {
			t.Errorf("Preset not rewired: %+v", d)
		}
		if d.Trigger.Debounce.Milliseconds() != 5 {
			t.Errorf("Debounce = %v", d.Trigger.Debounce)
		}
		if len(d.Controls) != 1 || d.Filter == nil {
			t.Errorf("Controls should be replaced and stages kept: %+v", d)
		}
	})

	t.Run("Inline", func(t *testing.T) {
		r := mustParse(t, `
board:
  analog:
    - {index: 0, pin: 1}
  digital:
    - {index: 0, pin: 2}
voices:
  - name: blip
    trigger: {line: 0}
    oscillator: {waveform: square, frequency: 440}
    amp_env: {attack: 0.001, decay: 0.05, max: 1}
    controls:
      - {param: velocity, channel: 0, min: 0, max: 1, continuous: true}
      - {param: freq, channel: 0, min: 110, max: 880, exp: true}
`)
		d := r.Descriptors()[0]
		if d.Oscillator.Waveform != "square" || !d.Controls[0].Continuous || !d.Controls[1].Exp {
			t.Errorf("Inline descriptor = %+v", d)
		}
		if r.Voices[0].Gain != 1 {
			t.Errorf("Gain should default to 1, got %f", r.Voices[0].Gain)
		}
	})
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		rig     string
		wantErr error
		wantMsg string
	}{
		{
			name:    "Empty",
			rig:     "name: nothing\n",
			wantErr: ErrEmptyRig,
		},
		{
			name:    "UnknownKey",
			rig:     "name: x\nsample_rat: 1\n",
			wantMsg: "sample_rat",
		},
		{
			name:    "BlockSize",
			rig:     "block_size: -1\nleds: [{led: 0, source: output}]\nboard: {leds: 1}\n",
			wantErr: ErrBadBlockSize,
		},
		{
			name:    "UnknownPreset",
			rig:     "board: {digital: [{index: 0, pin: 1}]}\nvoices: [{preset: cowbell}]\n",
			wantErr: ErrUnknownPreset,
		},
		{
			name:    "DuplicateVoice",
			rig:     "board: {analog: [{index: 0, pin: 1}], digital: [{index: 0, pin: 1}]}\nvoices: [{preset: noise-snare, trigger: {line: 0}}, {preset: noise-snare, trigger: {line: 0}}]\n",
			wantErr: ErrDuplicateVoice,
		},
		{
			name:    "TriggerOffBoard",
			rig:     "board: {digital: [{index: 0, pin: 1}]}\nvoices: [{preset: noise-snare}]\n",
			wantErr: board.ErrUnknownChannel,
		},
		{
			name:    "ControlOffBoard",
			rig:     "board: {digital: [{index: 0, pin: 1}, {index: 1, pin: 2}, {index: 2, pin: 3}]}\nvoices: [{preset: kick}]\n",
			wantErr: board.ErrUnknownChannel,
		},
		{
			name:    "BadDescriptor",
			rig:     "board: {digital: [{index: 0, pin: 1}]}\nvoices: [{name: x}]\n",
			wantErr: voice.ErrNoTrigger,
		},
		{
			name:    "DuplicatePin",
			rig:     "board: {analog: [{index: 0, pin: 1}, {index: 1, pin: 1}], leds: 1}\nleds: [{led: 0, source: output}]\n",
			wantErr: board.ErrDuplicatePin,
		},
		{
			name:    "LEDOutOfRange",
			rig:     "board: {leds: 1}\nleds: [{led: 1, source: output}]\n",
			wantErr: ErrBadLED,
		},
		{
			name:    "LEDUnknownSource",
			rig:     "board: {leds: 1}\nleds: [{led: 0, source: \"vu:meter\"}]\n",
			wantErr: ErrBadLED,
		},
		{
			name:    "LEDPedalWithoutPedal",
			rig:     "board: {leds: 1}\nleds: [{led: 0, source: \"pedal:left\"}]\n",
			wantErr: ErrBadLED,
		},
		{
			name:    "ClockWithoutPanel",
			rig:     "board: {leds: 1}\nleds: [{led: 0, source: clock}]\n",
			wantErr: ErrBadLED,
		},
		{
			name:    "BadMode",
			rig:     "board: {leds: 1}\nleds: [{led: 0, source: output}]\nmode: {range: glacial}\n",
			wantMsg: "glacial",
		},
		{
			name:    "BadBus",
			rig:     "board: {leds: 1}\nleds: [{led: 0, source: output}]\nbus: [{type: reverb}]\n",
			wantMsg: "reverb",
		},
		{
			name:    "ScriptEvent",
			rig:     "board: {leds: 1}\nleds: [{led: 0, source: output}]\nscript: {events: [{at: 0}]}\n",
			wantErr: board.ErrBadEvent,
		},
		{
			name:    "ScriptGateOffBoard",
			rig:     "board: {leds: 1}\nleds: [{led: 0, source: output}]\nscript: {events: [{at: 0, gate: 3}]}\n",
			wantErr: board.ErrUnknownChannel,
		},
		{
			name:    "PedalCurve",
			rig:     "board: {analog: [{index: 0, pin: 1}]}\npedal: {curve: cubic}\n",
			wantMsg: "cubic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.rig))
			if err == nil {
				t.Fatal("Expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rig.yaml")
	if err := os.WriteFile(path, []byte(pedalRig), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if r.Name != "test-pedal" || r.Panel.LongPress.Seconds() != 2 {
		t.Errorf("Loaded %+v", r)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}

func TestBuildKick(t *testing.T) {
	r := mustParse(t, kickRig)
	inst, err := r.Build(quietLogger())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(inst.Voices) != 1 || inst.Voice("kick") == nil || inst.Pedal != nil {
		t.Fatalf("Instance = %+v", inst)
	}
	if a, d, l := inst.Board.Counts(); a != 5 || d != 3 || l != 3 {
		t.Errorf("Board counts = %d %d %d", a, d, l)
	}

	player := board.NewPlayer(*r.Script, inst.Board, r.SampleRate)
	block := r.BlockSize * r.Channels
	out := make([]float32, block)
	var peak float64
	for !player.Done() {
		player.Advance(r.BlockSize)
		inst.App.ProcessInterleaved(nil, out)
		for _, s := range out {
			peak = math.Max(peak, math.Abs(float64(s)))
		}
	}
	if peak == 0 {
		t.Error("Scripted hit produced silence")
	}

	inst.Board.SetFloat(4, 0.6)
	inst.App.ProcessInterleaved(nil, out)
	inst.App.Poll()
	if math.Abs(float64(inst.Board.LED(2)-0.6)) > 1e-6 {
		t.Errorf("Knob LED = %f, want 0.6", inst.Board.LED(2))
	}
}

func TestBuildPedal(t *testing.T) {
	r := mustParse(t, pedalRig)
	inst, err := r.Build(quietLogger())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if inst.Pedal == nil || inst.Panel == nil {
		t.Fatal("Pedal rig should build a pipeline and a panel")
	}
	if inst.App.View().Mode().Range != mode.RangeMedium {
		t.Errorf("Initial range = %v", inst.App.View().Mode().Range)
	}

	inst.Board.SetFloat(0, 0.25)
	inst.Board.SetFloat(2, 1)
	inst.App.ProcessInterleaved(nil, make([]float32, 2))
	if l, r := inst.Pedal.Delays(); l != 250 || r != 250 {
		t.Errorf("Delays = %v %v, want 250 from the shared time knob", l, r)
	}

	// an impulse comes back 250 frames later on both channels
	in := make([]float32, 2*300)
	in[0], in[1] = 1, 1
	out := make([]float32, len(in))
	inst.App.ProcessInterleaved(in, out)
	if out[2*250] != 1 || out[2*250+1] != 1 {
		t.Errorf("Echo = %f %f, want 1", out[2*250], out[2*250+1])
	}

	inst.App.Poll()
	if lines := inst.Board.Lines(); len(lines) != 3 || lines[1] != "Range: Med" {
		t.Errorf("Display = %v", lines)
	}
	if inst.Board.LED(0) <= 0 {
		t.Error("Wet meter LED should light after the echo")
	}
	if inst.Board.LED(1) != 0 {
		t.Error("Clock LED should be dark with sync off")
	}
}
