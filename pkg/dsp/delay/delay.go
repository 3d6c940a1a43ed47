// Package delay provides a fixed-capacity delay line for audio effects
package delay

import "math"

// Line implements a circular delay line with fractional read offset.
// Read must be called before Write on every sample.
type Line struct {
	buffer   []float32
	capacity int
	writePos int
	delay    float64
	delayInt int
	frac     float32
}

// New creates a delay line holding capacity samples.
// The initial delay is the full capacity.
func New(capacity int) *Line {
	if capacity < 1 {
		capacity = 1
	}
	d := &Line{
		buffer:   make([]float32, capacity),
		capacity: capacity,
	}
	d.SetDelay(float64(capacity))
	return d
}

// Capacity returns the maximum delay in samples
func (d *Line) Capacity() int {
	return d.capacity
}

// Delay returns the current (clamped) delay in samples
func (d *Line) Delay() float64 {
	return d.delay
}

// SetDelay sets the delay length in samples, clamped to [0, capacity].
// A delay of 0 reads the slot about to be overwritten, the same as capacity.
// Delays between 0 and 1 read one sample back, since the sample under 1
// sample old has not been written yet.
func (d *Line) SetDelay(samples float64) {
	if samples != samples || samples < 0 {
		samples = 0
	}
	if samples > 0 && samples < 1 {
		samples = 1
	}
	if samples > float64(d.capacity) {
		samples = float64(d.capacity)
	}
	d.delay = samples
	whole := math.Floor(samples)
	d.delayInt = int(whole)
	d.frac = float32(samples - whole)
}

// Reset clears the delay buffer
func (d *Line) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
}

// Write stores a sample at the write cursor and advances it
func (d *Line) Write(sample float32) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= d.capacity {
		d.writePos = 0
	}
}

// Read returns the sample written Delay() samples ago
func (d *Line) Read() float32 {
	pos := d.writePos - d.delayInt
	if pos < 0 {
		pos += d.capacity
	}
	s1 := d.buffer[pos]
	if d.frac == 0 {
		return s1
	}

	// The fractional part reaches one sample further back
	prev := pos - 1
	if prev < 0 {
		prev += d.capacity
	}
	s2 := d.buffer[prev]
	return s1*(1.0-d.frac) + s2*d.frac
}

// Process reads the delayed sample then writes input
func (d *Line) Process(input float32) float32 {
	output := d.Read()
	d.Write(input)
	return output
}
