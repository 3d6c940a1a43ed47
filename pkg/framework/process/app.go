package process

import (
	"math"
	"strings"
	"sync/atomic"

	"github.com/justyntemme/seedrig/pkg/dsp/utility"
	"github.com/justyntemme/seedrig/pkg/framework/board"
	"github.com/justyntemme/seedrig/pkg/framework/debug"
	"github.com/justyntemme/seedrig/pkg/framework/mode"
)

// AppConfig configures an App
type AppConfig struct {
	SampleRate float64
	BlockSize  int
	Channels   int
	LEDs       int
	Mode       *mode.Shared  // nil creates a default state
	Panel      *mode.Panel   // optional slow-loop switch handling
	Display    board.Display // optional status lines
	LEDOut     board.LEDs    // optional LED driver
	Log        *debug.Logger
}

// View is what the slow loop may see of the audio side. Every field is an
// atomic written by exactly one side.
type View struct {
	mode   *mode.Shared
	leds   []atomic.Uint32
	blocks atomic.Uint64
	meter  *debug.LoadMeter
}

// Mode returns the current mode
func (v *View) Mode() mode.State { return v.mode.Load() }

// SetMode replaces the mode; the audio side picks it up on its next block
func (v *View) SetMode(s mode.State) { v.mode.Store(s) }

// LED returns the last brightness published for LED i
func (v *View) LED(i int) float32 {
	if i < 0 || i >= len(v.leds) {
		return 0
	}
	return math.Float32frombits(v.leds[i].Load())
}

// NumLEDs returns the number of LED slots
func (v *View) NumLEDs() int { return len(v.leds) }

// Blocks returns the number of blocks rendered
func (v *View) Blocks() uint64 { return v.blocks.Load() }

// Load returns the smoothed callback load as a fraction of the block period
func (v *View) Load() float64 { return v.meter.Load() }

// Meter returns the callback load meter
func (v *View) Meter() *debug.LoadMeter { return v.meter }

// App is the single application context. Callback and ProcessInterleaved
// belong to the audio goroutine; Poll and View belong to the slow loop.
type App struct {
	cfg   AppConfig
	ctx   *Context
	sched *Scheduler
	view  *View
	leds  []func() float32
	log   *debug.Logger

	shownMode uint32
	shown     bool
}

// NewApp creates an app with an empty scheduler
func NewApp(cfg AppConfig) *App {
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = 4
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 2
	}
	if cfg.Mode == nil {
		cfg.Mode = mode.NewShared(mode.State{Range: mode.RangeFast})
	}
	log := cfg.Log
	if log == nil {
		log = debug.Default().With("app")
	}
	return &App{
		cfg:   cfg,
		ctx:   NewContext(cfg.BlockSize, cfg.Channels, cfg.SampleRate),
		sched: NewScheduler(),
		view: &View{
			mode:  cfg.Mode,
			leds:  make([]atomic.Uint32, max(cfg.LEDs, 0)),
			meter: debug.NewLoadMeter(cfg.SampleRate, cfg.BlockSize),
		},
		leds: make([]func() float32, max(cfg.LEDs, 0)),
		log:  log,
	}
}

// Scheduler returns the scheduler to register sources and effects on
func (a *App) Scheduler() *Scheduler { return a.sched }

// Context returns the block context
func (a *App) Context() *Context { return a.ctx }

// View returns the slow-loop view
func (a *App) View() *View { return a.view }

// Mode returns the shared mode
func (a *App) Mode() *mode.Shared { return a.cfg.Mode }

// BlockSize returns the frames per block
func (a *App) BlockSize() int { return a.cfg.BlockSize }

// SampleRate returns the audio rate
func (a *App) SampleRate() float64 { return a.cfg.SampleRate }

// Channels returns the number of audio channels
func (a *App) Channels() int { return a.cfg.Channels }

// BindLED samples fn after every block and publishes it as LED i
func (a *App) BindLED(i int, fn func() float32) bool {
	if i < 0 || i >= len(a.leds) {
		return false
	}
	a.leds[i] = fn
	return true
}

// Callback renders the prepared context and publishes the LEDs
func (a *App) Callback() {
	a.view.meter.Begin()
	a.sched.Callback(a.ctx)
	for i, fn := range a.leds {
		if fn != nil {
			a.view.leds[i].Store(math.Float32bits(utility.ClampUnit(fn())))
		}
	}
	a.view.blocks.Add(1)
	a.view.meter.End()
}

// ProcessInterleaved renders len(out)/channels frames one block at a time.
// in may be nil for silence; otherwise it must match out in length.
func (a *App) ProcessInterleaved(in, out []float32) {
	ch := a.cfg.Channels
	block := a.cfg.BlockSize
	frames := len(out) / ch
	for pos := 0; pos < frames; pos += block {
		n := min(block, frames-pos)
		var src []float32
		if in != nil {
			src = in[pos*ch : (pos+n)*ch]
		}
		a.ctx.Deinterleave(src, n)
		a.Callback()
		a.ctx.Interleave(out[pos*ch : (pos+n)*ch])
	}
}

// Poll runs the slow loop once: switches, display and LED refresh. It
// reports whether the mode changed.
func (a *App) Poll() bool {
	changed := false
	if a.cfg.Panel != nil {
		changed = a.cfg.Panel.Poll()
	}

	s := a.view.Mode()
	if packed := s.Pack(); !a.shown || packed != a.shownMode {
		if a.cfg.Display != nil {
			a.cfg.Display.WriteLines(s.Lines())
		}
		if a.shown {
			a.log.Info("%s", strings.Join(s.Lines(), ", "))
		}
		a.shownMode, a.shown = packed, true
	}

	if a.cfg.LEDOut != nil {
		for i := range a.view.leds {
			a.cfg.LEDOut.SetLED(i, a.view.LED(i))
		}
	}
	return changed
}
