// Package process runs the fixed-size audio block: control updates first,
// then per-sample synthesis and effects, with a narrow view for the slow loop.
package process

// Context holds the channel-separated buffers of one block. Every buffer is
// allocated by NewContext; Prepare only reslices.
type Context struct {
	Input      [][]float32
	Output     [][]float32
	SampleRate float64

	inStore  [][]float32
	outStore [][]float32

	// Pre-allocated work buffers
	workBuffer []float32
	tempBuffer []float32
}

// NewContext creates a context for blocks of up to maxBlockSize frames
func NewContext(maxBlockSize, channels int, sampleRate float64) *Context {
	maxBlockSize = max(maxBlockSize, 1)
	channels = max(channels, 1)
	c := &Context{
		SampleRate: sampleRate,
		inStore:    make([][]float32, channels),
		outStore:   make([][]float32, channels),
		Input:      make([][]float32, channels),
		Output:     make([][]float32, channels),
		workBuffer: make([]float32, maxBlockSize),
		tempBuffer: make([]float32, maxBlockSize),
	}
	for ch := 0; ch < channels; ch++ {
		c.inStore[ch] = make([]float32, maxBlockSize)
		c.outStore[ch] = make([]float32, maxBlockSize)
	}
	c.Prepare(maxBlockSize)
	return c
}

// Prepare sizes every buffer to frames, capped at the block size
func (c *Context) Prepare(frames int) {
	frames = min(max(frames, 0), c.MaxBlockSize())
	for ch := range c.inStore {
		c.Input[ch] = c.inStore[ch][:frames]
		c.Output[ch] = c.outStore[ch][:frames]
	}
}

// MaxBlockSize returns the largest block the context can hold
func (c *Context) MaxBlockSize() int {
	return len(c.workBuffer)
}

// NumSamples returns the number of frames in the current block
func (c *Context) NumSamples() int {
	if len(c.Output) > 0 {
		return len(c.Output[0])
	}
	return 0
}

// NumChannels returns the number of channels
func (c *Context) NumChannels() int {
	return len(c.Output)
}

// WorkBuffer returns the work buffer sized to the current block
func (c *Context) WorkBuffer() []float32 {
	return c.workBuffer[:c.NumSamples()]
}

// TempBuffer returns the temp buffer sized to the current block
func (c *Context) TempBuffer() []float32 {
	return c.tempBuffer[:c.NumSamples()]
}

// PassThrough copies input to output
func (c *Context) PassThrough() {
	for ch := range c.Output {
		copy(c.Output[ch], c.Input[ch])
	}
}

// Clear zeros the output buffers
func (c *Context) Clear() {
	for ch := range c.Output {
		clear(c.Output[ch])
	}
}

// Deinterleave prepares a block from interleaved input and returns its frame
// count. A nil src prepares frames of silence.
func (c *Context) Deinterleave(src []float32, frames int) int {
	channels := c.NumChannels()
	if src != nil {
		frames = min(frames, len(src)/channels)
	}
	c.Prepare(frames)
	frames = c.NumSamples()
	for ch := range c.Input {
		in := c.Input[ch]
		if src == nil {
			clear(in)
			continue
		}
		for i := range in {
			in[i] = src[i*channels+ch]
		}
	}
	return frames
}

// Interleave writes the output block into dst frame by frame
func (c *Context) Interleave(dst []float32) int {
	channels := c.NumChannels()
	frames := min(c.NumSamples(), len(dst)/channels)
	for ch, out := range c.Output {
		for i := 0; i < frames; i++ {
			dst[i*channels+ch] = out[i]
		}
	}
	return frames
}
