package process

import "github.com/justyntemme/seedrig/pkg/framework/dsp"

// Updater runs once per block before any sample is rendered: edge
// detection, trigger handling and control reads.
type Updater interface {
	Update()
}

// MonoSource renders a block of mono samples into buf
type MonoSource interface {
	ProcessBuffer(buf []float32)
}

// StereoEffect processes one stereo frame
type StereoEffect interface {
	Process(inL, inR float32) (outL, outR float32)
}

type source struct {
	src  MonoSource
	gain float32
}

// Scheduler orders the work of one audio block. With sources the summed mono
// bus replaces the input on every channel; without sources the input passes
// through to the effect.
type Scheduler struct {
	updaters []Updater
	sources  []source
	bus      *dsp.Chain
	effect   StereoEffect

	ticks uint64
	peak  float32
}

// NewScheduler creates an empty scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// AddUpdater registers u to run at the start of every block, in order
func (s *Scheduler) AddUpdater(u Updater) {
	s.updaters = append(s.updaters, u)
}

// AddSource mixes src into the mono bus at gain
func (s *Scheduler) AddSource(src MonoSource, gain float32) {
	s.sources = append(s.sources, source{src: src, gain: gain})
}

// SetBus sets the chain applied to the summed sources
func (s *Scheduler) SetBus(c *dsp.Chain) {
	s.bus = c
}

// SetEffect sets the stereo effect applied last
func (s *Scheduler) SetEffect(fx StereoEffect) {
	s.effect = fx
}

// Callback renders one block. It never allocates.
func (s *Scheduler) Callback(ctx *Context) {
	for _, u := range s.updaters {
		u.Update()
	}
	s.ticks++

	if len(s.sources) > 0 {
		bus := ctx.WorkBuffer()
		tmp := ctx.TempBuffer()
		clear(bus)
		for _, src := range s.sources {
			src.src.ProcessBuffer(tmp)
			Accumulate(bus, tmp, src.gain)
		}
		if s.bus != nil {
			s.bus.Process(bus)
		}
		ctx.CopyToAll(bus)
	} else {
		ctx.PassThrough()
	}

	if s.effect != nil {
		ctx.ProcessStereo(s.effect)
	}

	if ctx.NumChannels() > 0 {
		s.peak = Peak(ctx.Output[0], ctx.TempBuffer())
	}
}

// Ticks returns the number of blocks rendered
func (s *Scheduler) Ticks() uint64 {
	return s.ticks
}

// Peak returns the peak of the first output channel in the last block
func (s *Scheduler) Peak() float32 {
	return s.peak
}
