package mode

import (
	"time"

	"github.com/justyntemme/seedrig/pkg/framework/board"
	"github.com/justyntemme/seedrig/pkg/framework/control"
	"github.com/justyntemme/seedrig/pkg/framework/debug"
)

// DefaultLongPress is the hold time that turns a press into a link toggle
const DefaultLongPress = 2 * time.Second

// NoLine marks an unused digital line in PanelConfig
const NoLine = -1

// PanelConfig wires the two mode switches and the optional clock gate
type PanelConfig struct {
	Sync      int // switch 1: short press toggles clock sync
	Range     int // switch 2: short press selects the next range
	Clock     int // clock gate mirrored on the LED, NoLine when absent
	LongPress time.Duration
	Debounce  time.Duration
	Polarity  control.Polarity
	TickRate  float64 // Poll calls per second
}

// Panel turns switch presses into mode changes. It runs on the slow loop and
// publishes every change through a Shared.
type Panel struct {
	digital board.Digital
	shared  *Shared
	sync    *control.EdgeInput
	rng     *control.EdgeInput
	clock   int
	longMs  float64
	log     *debug.Logger
}

// NewPanel creates a panel reading d and writing shared. log may be nil.
func NewPanel(d board.Digital, shared *Shared, cfg PanelConfig, log *debug.Logger) *Panel {
	if cfg.LongPress <= 0 {
		cfg.LongPress = DefaultLongPress
	}
	edge := control.EdgeConfig{
		Polarity: cfg.Polarity,
		Debounce: cfg.Debounce,
		TickRate: cfg.TickRate,
	}
	line := func(n int) func() bool {
		return func() bool { return d.Read(n) }
	}
	if log == nil {
		log = debug.Default()
	}
	return &Panel{
		digital: d,
		shared:  shared,
		sync:    control.NewEdgeInput(line(cfg.Sync), edge),
		rng:     control.NewEdgeInput(line(cfg.Range), edge),
		clock:   cfg.Clock,
		longMs:  float64(cfg.LongPress.Milliseconds()),
		log:     log.With("mode"),
	}
}

// Poll debounces both switches and applies any completed press. It returns
// true when the state changed and the display should be redrawn.
func (p *Panel) Poll() bool {
	p.sync.Debounce()
	p.rng.Debounce()

	s := p.shared.Load()
	old := s

	syncUp := p.sync.FallingEdge()
	rngUp := p.rng.FallingEdge()

	switch {
	case syncUp && p.sync.LastHeldMs() >= p.longMs,
		rngUp && p.rng.LastHeldMs() >= p.longMs:
		s.Link = !s.Link
	case syncUp:
		s.Clock = !s.Clock
	case rngUp:
		s.Range = s.Range.Next()
	}

	if s == old {
		return false
	}
	p.shared.Store(s)
	p.log.Debug("mode %+v", s)
	return true
}

// State returns the published mode
func (p *Panel) State() State {
	return p.shared.Load()
}

// ClockLED returns the clock indicator brightness: the gate level while sync
// is on, dark otherwise.
func (p *Panel) ClockLED() float32 {
	if p.clock == NoLine || !p.shared.Load().Clock {
		return 0
	}
	if p.digital.Read(p.clock) {
		return 1
	}
	return 0
}
