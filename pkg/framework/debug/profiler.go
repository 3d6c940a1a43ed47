package debug

import (
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"time"
)

// loadSmoothing is the EWMA weight of each new block
const loadSmoothing = 0.01

// LoadMeter measures how much of each block period the audio callback uses.
// Begin/End run on the audio goroutine; readers may call the getters from
// any goroutine.
type LoadMeter struct {
	period time.Duration
	start  time.Time

	count    atomic.Uint64
	overruns atomic.Uint64
	lastNs   atomic.Int64
	maxNs    atomic.Int64
	avgBits  atomic.Uint64
}

// NewLoadMeter creates a meter for blocks of blockSize frames at sampleRate
func NewLoadMeter(sampleRate float64, blockSize int) *LoadMeter {
	period := time.Duration(float64(blockSize) / sampleRate * float64(time.Second))
	if period <= 0 {
		period = time.Millisecond
	}
	return &LoadMeter{period: period}
}

// Period returns the duration of one block
func (m *LoadMeter) Period() time.Duration {
	return m.period
}

// Begin marks the start of a callback
func (m *LoadMeter) Begin() {
	m.start = time.Now()
}

// End marks the end of the callback started by Begin
func (m *LoadMeter) End() {
	m.Record(time.Since(m.start))
}

// Record adds one callback duration
func (m *LoadMeter) Record(elapsed time.Duration) {
	ns := elapsed.Nanoseconds()
	m.lastNs.Store(ns)
	if ns > m.maxNs.Load() {
		m.maxNs.Store(ns)
	}
	if elapsed > m.period {
		m.overruns.Add(1)
	}

	load := float64(elapsed) / float64(m.period)
	avg := math.Float64frombits(m.avgBits.Load())
	if m.count.Add(1) == 1 {
		avg = load
	} else {
		avg += loadSmoothing * (load - avg)
	}
	m.avgBits.Store(math.Float64bits(avg))
}

// Load returns the smoothed fraction of the block period in use
func (m *LoadMeter) Load() float64 {
	return math.Float64frombits(m.avgBits.Load())
}

// Last returns the most recent callback duration
func (m *LoadMeter) Last() time.Duration {
	return time.Duration(m.lastNs.Load())
}

// Peak returns the longest callback seen
func (m *LoadMeter) Peak() time.Duration {
	return time.Duration(m.maxNs.Load())
}

// Count returns the number of callbacks recorded
func (m *LoadMeter) Count() uint64 {
	return m.count.Load()
}

// Overruns returns how many callbacks took longer than a block period
func (m *LoadMeter) Overruns() uint64 {
	return m.overruns.Load()
}

// Reset clears all statistics
func (m *LoadMeter) Reset() {
	m.count.Store(0)
	m.overruns.Store(0)
	m.lastNs.Store(0)
	m.maxNs.Store(0)
	m.avgBits.Store(0)
}

// Report generates a one-block summary for logs
func (m *LoadMeter) Report() string {
	var sb strings.Builder
	sb.WriteString("Block Load Report:\n")
	sb.WriteString(fmt.Sprintf("  Period:   %v\n", m.period))
	sb.WriteString(fmt.Sprintf("  Blocks:   %d\n", m.Count()))
	sb.WriteString(fmt.Sprintf("  Load:     %.2f%%\n", m.Load()*100))
	sb.WriteString(fmt.Sprintf("  Peak:     %v\n", m.Peak()))
	sb.WriteString(fmt.Sprintf("  Overruns: %d\n", m.Overruns()))
	return sb.String()
}
