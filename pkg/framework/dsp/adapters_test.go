package dsp

import (
	"math"
	"testing"

	"github.com/justyntemme/seedrig/pkg/dsp/distortion"
	"github.com/justyntemme/seedrig/pkg/dsp/filter"
)

func TestGainAdapter(t *testing.T) {
	g := NewGainAdapter(0.25)
	buffer := []float32{1, -1, 0.5}
	g.Process(buffer)
	for i, want := range []float32{0.25, -0.25, 0.125} {
		if math.Abs(float64(buffer[i]-want)) > 1e-6 {
			t.Errorf("Sample %d = %f, want %f", i, buffer[i], want)
		}
	}

	g.SetGain(2)
	g.Process(nil)
}

func TestShaperAdapter(t *testing.T) {
	s := NewShaperAdapter(distortion.CurveHardClip, 1)
	buffer := []float32{0.9, -0.9, 0}
	s.Process(buffer)
	for i, v := range buffer {
		if v > 1 || v < -1 {
			t.Errorf("Sample %d = %f escaped the clipper", i, v)
		}
	}
	if buffer[2] != 0 {
		t.Errorf("Silence should stay silent, got %f", buffer[2])
	}
}

func TestFilterAdapter(t *testing.T) {
	sampleRate := 48000.0
	f := NewFilterAdapter(sampleRate, filter.ModeLowpass, 200, 0)

	// a 10 kHz tone should be heavily attenuated by a 200 Hz lowpass
	buffer := make([]float32, 4800)
	for i := range buffer {
		buffer[i] = float32(math.Sin(2 * math.Pi * 10000 * float64(i) / sampleRate))
	}
	f.Process(buffer)

	var peak float64
	for _, v := range buffer[2400:] {
		peak = math.Max(peak, math.Abs(float64(v)))
	}
	if peak > 0.05 {
		t.Errorf("Lowpass peak %f, expected strong attenuation", peak)
	}

	f.Reset()
}

func TestLimiterAdapter(t *testing.T) {
	l := NewLimiterAdapter(48000, -6, 0, 0)
	buffer := []float32{2, -2, 0.1, 1}
	l.Process(buffer)
	for i, v := range buffer {
		if math.Abs(float64(v)) > 0.5012 {
			t.Errorf("Sample %d = %f above the -6 dB ceiling", i, v)
		}
	}
	if l.GainReduction() <= 0 {
		t.Error("Expected gain reduction")
	}
	l.Reset()
	if l.GainReduction() != 0 {
		t.Errorf("GainReduction after reset = %f", l.GainReduction())
	}
}

func TestFromSpecs(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		chain, err := FromSpecs("bus", []StageSpec{
			{Type: "filter", Mode: "highpass", Cutoff: 30},
			{Type: "drive", Curve: "softclip", Amount: 0.2},
			{Type: "gain", Gain: 0.8},
			{Type: "limit", Ceiling: -1, Lookahead: 0.002},
		}, 48000)
		if err != nil {
			t.Fatalf("FromSpecs failed: %v", err)
		}
		names := chain.Stages()
		if len(names) != 4 || names[0] != "filter" || names[2] != "gain" || names[3] != "limit" {
			t.Errorf("Stages = %v", names)
		}
	})

	t.Run("GainInDB", func(t *testing.T) {
		chain, err := FromSpecs("bus", []StageSpec{{Type: "gain", DB: -6.0206}}, 48000)
		if err != nil {
			t.Fatal(err)
		}
		buffer := []float32{1}
		chain.Process(buffer)
		if math.Abs(float64(buffer[0])-0.5) > 1e-4 {
			t.Errorf("-6 dB gain = %f, want 0.5", buffer[0])
		}
	})

	tests := []struct {
		name string
		spec StageSpec
	}{
		{"UnknownType", StageSpec{Type: "reverb"}},
		{"UnknownCurve", StageSpec{Type: "drive", Curve: "fuzz"}},
		{"UnknownMode", StageSpec{Type: "filter", Mode: "comb", Cutoff: 100}},
		{"NoCutoff", StageSpec{Type: "filter", Mode: "lowpass"}},
		{"LimitAboveFullScale", StageSpec{Type: "limit", Ceiling: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromSpecs("bus", []StageSpec{tt.spec}, 48000); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func BenchmarkChain(b *testing.B) {
	chain, err := FromSpecs("bus", []StageSpec{
		{Type: "drive", Curve: "softclip", Amount: 0.3},
		{Type: "gain", Gain: 0.7},
	}, 48000)
	if err != nil {
		b.Fatal(err)
	}
	buffer := make([]float32, 64)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		chain.Process(buffer)
	}
}
