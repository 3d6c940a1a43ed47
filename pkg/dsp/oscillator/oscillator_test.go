package oscillator

import (
	"math"
	"testing"
)

func TestOscillatorRange(t *testing.T) {
	waves := []Waveform{WaveSine, WaveTriangle, WaveSaw, WaveSquare}
	for _, w := range waves {
		t.Run(w.String(), func(t *testing.T) {
			osc := New(48000)
			osc.SetWaveform(w)
			osc.SetFrequency(441)
			osc.SetAmp(0.5)

			var peak float32
			for i := 0; i < 4800; i++ {
				v := osc.Process()
				if v > 0.5+1e-6 || v < -0.5-1e-6 {
					t.Fatalf("Sample %d out of range: %f", i, v)
				}
				if a := float32(math.Abs(float64(v))); a > peak {
					peak = a
				}
			}
			if peak < 0.45 {
				t.Errorf("Peak too low: %f", peak)
			}
		})
	}
}

func TestOscillatorFrequency(t *testing.T) {
	sampleRate := 48000.0
	osc := New(sampleRate)
	osc.SetFrequency(100)

	// Count positive-going zero crossings over one second
	crossings := 0
	prev := osc.Process()
	for i := 1; i < int(sampleRate); i++ {
		v := osc.Process()
		if prev < 0 && v >= 0 {
			crossings++
		}
		prev = v
	}
	if crossings < 99 || crossings > 101 {
		t.Errorf("Expected ~100 cycles, got %d", crossings)
	}
}

func TestOscillatorClampsFrequency(t *testing.T) {
	osc := New(48000)
	osc.SetFrequency(-20)
	if osc.Frequency() != 0 {
		t.Errorf("Negative frequency should clamp to 0, got %f", osc.Frequency())
	}
	osc.SetFrequency(math.NaN())
	if osc.Frequency() != 0 {
		t.Errorf("NaN frequency should clamp to 0, got %f", osc.Frequency())
	}
}

func TestParseWaveform(t *testing.T) {
	tests := []struct {
		name    string
		want    Waveform
		wantErr bool
	}{
		{"sine", WaveSine, false},
		{"triangle", WaveTriangle, false},
		{"saw", WaveSaw, false},
		{"square", WaveSquare, false},
		{"wavetable", WaveSine, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWaveform(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWaveform(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseWaveform(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func BenchmarkOscillatorProcess(b *testing.B) {
	osc := New(48000)
	osc.SetFrequency(60)
	buffer := make([]float32, 512)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		for j := range buffer {
			buffer[j] = osc.Process()
		}
	}
}
