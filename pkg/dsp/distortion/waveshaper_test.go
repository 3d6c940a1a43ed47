package distortion

import (
	"math"
	"testing"
)

func TestWaveshaper(t *testing.T) {
	ws := NewWaveshaper(CurveHardClip)

	t.Run("HardClip", func(t *testing.T) {
		ws.SetCurveType(CurveHardClip)
		ws.SetDrive(1.0)
		ws.SetMix(1.0)

		tests := []struct {
			input    float64
			expected float64
		}{
			{0.5, 0.5},
			{1.5, 1.0},
			{-1.5, -1.0},
			{0.0, 0.0},
		}

		for _, test := range tests {
			result := ws.Process(test.input)
			if math.Abs(result-test.expected) > 1e-9 {
				t.Errorf("HardClip(%f) = %f, want %f", test.input, result, test.expected)
			}
		}
	})

	t.Run("SoftClip", func(t *testing.T) {
		ws.SetCurveType(CurveSoftClip)
		ws.SetDrive(1.0)

		result := ws.Process(10.0)
		if result > 1.0 || result < -1.0 {
			t.Errorf("SoftClip should be bounded, got %f", result)
		}

		pos := ws.Process(0.5)
		neg := ws.Process(-0.5)
		if math.Abs(pos+neg) > 1e-9 {
			t.Errorf("SoftClip should be symmetric, got %f and %f", pos, neg)
		}
	})

	t.Run("Drive", func(t *testing.T) {
		ws.SetCurveType(CurveSoftClip)
		ws.SetDrive(2.0)

		withDrive := ws.Process(0.5)
		ws.SetDrive(1.0)
		withoutDrive := ws.Process(0.5)

		if withDrive <= withoutDrive {
			t.Errorf("Higher drive should increase distortion")
		}
	})

	t.Run("Mix", func(t *testing.T) {
		ws.SetCurveType(CurveHardClip)
		ws.SetDrive(4.0)
		ws.SetMix(0.5)

		input := 0.5
		result := ws.Process(input)

		ws.SetMix(1.0)
		fullDistortion := ws.Process(input)

		if result == input || result == fullDistortion {
			t.Errorf("Mix should blend between clean and distorted signal")
		}
	})

	t.Run("Foldback", func(t *testing.T) {
		ws.SetCurveType(CurveFoldback)
		ws.SetDrive(1.0)
		ws.SetMix(1.0)

		if result := ws.Process(1.5); math.Abs(result-0.5) > 1e-9 {
			t.Errorf("Foldback(1.5) = %f, want 0.5", result)
		}
		if result := ws.Process(-1.5); math.Abs(result+0.5) > 1e-9 {
			t.Errorf("Foldback(-1.5) = %f, want -0.5", result)
		}
	})
}

func TestWaveshaperAmount(t *testing.T) {
	ws := NewWaveshaper(CurveSoftClip)

	ws.SetAmount(0)
	if ws.Drive() != 1.0 {
		t.Errorf("Amount 0 should be unity drive, got %f", ws.Drive())
	}
	ws.SetAmount(1)
	if ws.Drive() != maxDrive {
		t.Errorf("Amount 1 should be max drive, got %f", ws.Drive())
	}
	ws.SetAmount(7)
	if ws.Drive() != maxDrive {
		t.Errorf("Amount should clamp, got %f", ws.Drive())
	}
}

func TestWaveshaperBounded(t *testing.T) {
	for c := range curveNames {
		t.Run(c.String(), func(t *testing.T) {
			ws := NewWaveshaper(c)
			ws.SetAmount(1)
			for i := -100; i <= 100; i++ {
				v := ws.ProcessSample(float32(i) / 50)
				if v > 1.0001 || v < -1.0001 {
					t.Fatalf("%v output out of range: %f", c, v)
				}
			}
		})
	}
}

func TestParseCurve(t *testing.T) {
	for c, name := range curveNames {
		got, err := ParseCurve(name)
		if err != nil || got != c {
			t.Errorf("ParseCurve(%q) = %v, %v", name, got, err)
		}
	}
	if got, err := ParseCurve(""); err != nil || got != CurveSoftClip {
		t.Errorf("Empty curve should default to softclip, got %v, %v", got, err)
	}
	if _, err := ParseCurve("fuzz"); err == nil {
		t.Error("Expected error for unknown curve")
	}
}

func BenchmarkWaveshaper(b *testing.B) {
	ws := NewWaveshaper(CurveSoftClip)
	ws.SetAmount(0.6)
	buffer := make([]float32, 512)
	for i := range buffer {
		buffer[i] = float32(math.Sin(float64(i) * 0.05))
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		ws.ProcessBuffer(buffer)
	}
}
