package debug

import (
	"math"
	"strings"
	"testing"
	"time"
)

func TestLoadMeter(t *testing.T) {
	t.Run("Period", func(t *testing.T) {
		m := NewLoadMeter(48000, 48)
		if m.Period() != time.Millisecond {
			t.Errorf("Period = %v, want 1ms", m.Period())
		}
	})

	t.Run("FirstBlockSetsLoad", func(t *testing.T) {
		m := NewLoadMeter(48000, 48)
		m.Record(250 * time.Microsecond)
		if math.Abs(m.Load()-0.25) > 1e-9 {
			t.Errorf("Load = %f, want 0.25", m.Load())
		}
		if m.Count() != 1 {
			t.Errorf("Count = %d, want 1", m.Count())
		}
	})

	t.Run("Smoothing", func(t *testing.T) {
		m := NewLoadMeter(48000, 48)
		m.Record(0)
		for i := 0; i < 10; i++ {
			m.Record(time.Millisecond)
		}
		if l := m.Load(); l <= 0 || l >= 0.2 {
			t.Errorf("Smoothed load should move slowly towards 1, got %f", l)
		}
	})

	t.Run("PeakAndOverruns", func(t *testing.T) {
		m := NewLoadMeter(48000, 48)
		m.Record(100 * time.Microsecond)
		m.Record(3 * time.Millisecond)
		m.Record(200 * time.Microsecond)

		if m.Peak() != 3*time.Millisecond {
			t.Errorf("Peak = %v", m.Peak())
		}
		if m.Last() != 200*time.Microsecond {
			t.Errorf("Last = %v", m.Last())
		}
		if m.Overruns() != 1 {
			t.Errorf("Overruns = %d, want 1", m.Overruns())
		}
	})

	t.Run("BeginEnd", func(t *testing.T) {
		m := NewLoadMeter(48000, 4)
		m.Begin()
		time.Sleep(time.Millisecond)
		m.End()
		if m.Last() < time.Millisecond {
			t.Errorf("Measured %v, expected at least 1ms", m.Last())
		}
	})

	t.Run("Reset", func(t *testing.T) {
		m := NewLoadMeter(48000, 48)
		m.Record(time.Millisecond)
		m.Reset()
		if m.Count() != 0 || m.Load() != 0 || m.Peak() != 0 {
			t.Error("Reset should clear all statistics")
		}
	})

	t.Run("Report", func(t *testing.T) {
		m := NewLoadMeter(48000, 48)
		m.Record(500 * time.Microsecond)
		r := m.Report()
		if !strings.Contains(r, "50.00%") {
			t.Errorf("Report missing load: %s", r)
		}
	})
}

func BenchmarkLoadMeter(b *testing.B) {
	m := NewLoadMeter(48000, 4)
	for i := 0; i < b.N; i++ {
		m.Begin()
		m.End()
	}
}
