package config

import (
	"fmt"
	"strconv"

	"github.com/justyntemme/seedrig/pkg/dsp/mix"
	"github.com/justyntemme/seedrig/pkg/framework/board"
	"github.com/justyntemme/seedrig/pkg/framework/control"
	"github.com/justyntemme/seedrig/pkg/framework/debug"
	"github.com/justyntemme/seedrig/pkg/framework/dsp"
	"github.com/justyntemme/seedrig/pkg/framework/mode"
	"github.com/justyntemme/seedrig/pkg/framework/pedal"
	"github.com/justyntemme/seedrig/pkg/framework/process"
	"github.com/justyntemme/seedrig/pkg/framework/voice"
)

// Instance is a rig wired to a software board and ready to run
type Instance struct {
	Rig    *Rig
	Board  *board.Sim
	App    *process.App
	Voices []*voice.Voice
	Pedal  *pedal.Pipeline
	Panel  *mode.Panel
}

// Build constructs the board, voices, effects and LED bindings a rig
// declares. The rig must have been returned by Parse or Load.
func (r *Rig) Build(log *debug.Logger) (*Instance, error) {
	if log == nil {
		log = debug.Default()
	}
	inst := &Instance{
		Rig:   r,
		Board: board.NewSim(count(r.analog), count(r.digital), r.Board.LEDs),
	}

	rng, err := mode.ParseTimeRange(r.Mode.Range)
	if err != nil {
		return nil, err
	}
	shared := mode.NewShared(mode.State{Range: rng, Link: r.Mode.Link, Clock: r.Mode.Clock})

	if p := r.Panel; p != nil {
		clock := mode.NoLine
		if p.Clock != nil {
			clock = *p.Clock
		}
		pol := control.ActiveHigh
		if p.ActiveLow {
			pol = control.ActiveLow
		}
		inst.Panel = mode.NewPanel(inst.Board, shared, mode.PanelConfig{
			Sync:      p.Sync,
			Range:     p.Range,
			Clock:     clock,
			LongPress: p.LongPress,
			Debounce:  p.Debounce,
			Polarity:  pol,
			TickRate:  r.PollRate,
		}, log)
	}

	inst.App = process.NewApp(process.AppConfig{
		SampleRate: r.SampleRate,
		BlockSize:  r.BlockSize,
		Channels:   r.Channels,
		LEDs:       r.Board.LEDs,
		Mode:       shared,
		Panel:      inst.Panel,
		Display:    inst.Board,
		LEDOut:     inst.Board,
		Log:        log.With("app"),
	})
	sched := inst.App.Scheduler()

	rates := voice.Rates{SampleRate: r.SampleRate, TickRate: r.TickRate()}
	for i, d := range r.voices {
		v, err := voice.New(d, rates, inst.Board, inst.Board)
		if err != nil {
			return nil, err
		}
		sched.AddUpdater(v)
		sched.AddSource(v, float32(r.Voices[i].Gain))
		inst.Voices = append(inst.Voices, v)
		log.Debug("voice %s: %d controls, gain %.2f", d.Name, len(d.Controls), r.Voices[i].Gain)
	}

	if len(r.Bus) > 0 {
		chain, err := dsp.FromSpecs("bus", r.Bus, r.SampleRate)
		if err != nil {
			return nil, err
		}
		sched.SetBus(chain)
	}

	if ps := r.Pedal; ps != nil {
		curve, err := mix.ParseCurve(ps.Curve)
		if err != nil {
			return nil, err
		}
		p, err := pedal.New(pedal.Config{
			SampleRate:    r.SampleRate,
			TickRate:      r.TickRate(),
			MaxSeconds:    ps.MaxSeconds,
			Curve:         curve,
			Channels:      ps.Channels,
			Smoothing:     ps.Smoothing,
			Slew:          ps.Slew,
			Invert:        ps.Invert,
			MoveThreshold: ps.MoveThreshold,
			FixedRange:    ps.FixedRange,
			Glide:         ps.Glide,
		}, inst.Board, shared)
		if err != nil {
			return nil, err
		}
		sched.AddUpdater(p)
		sched.SetEffect(p)
		inst.Pedal = p
		log.Debug("pedal: %d samples per line", p.Capacity())
	}

	for _, l := range r.LEDs {
		fn, err := inst.ledSource(l.Source)
		if err != nil {
			return nil, fmt.Errorf("led %d: %w", l.LED, err)
		}
		inst.App.BindLED(l.LED, fn)
	}
	return inst, nil
}

// Voice returns the voice called name
func (inst *Instance) Voice(name string) *voice.Voice {
	for _, v := range inst.Voices {
		if v.Name() == name {
			return v
		}
	}
	return nil
}

func level(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

// ledSource resolves a validated binding to a function sampled by the audio
// goroutine after each block
func (inst *Instance) ledSource(src string) (func() float32, error) {
	kind, arg := ledSource(src)
	switch kind {
	case "voice", "gate":
		v := inst.Voice(arg)
		if v == nil {
			break
		}
		if kind == "voice" {
			return v.Level, nil
		}
		return func() float32 { return level(v.Gate()) }, nil
	case "knob":
		ch, err := inst.Rig.analogIndex(arg)
		if err != nil {
			return nil, err
		}
		return func() float32 { return inst.Board.Float(ch) }, nil
	case "line":
		line, err := strconv.Atoi(arg)
		if err != nil {
			return nil, err
		}
		return func() float32 { return level(inst.Board.Read(line)) }, nil
	case "pedal":
		p := inst.Pedal
		if p == nil {
			break
		}
		right := arg == "right"
		return func() float32 {
			l, r := p.Levels()
			if right {
				return r
			}
			return l
		}, nil
	case "clock":
		if inst.Panel != nil {
			return inst.Panel.ClockLED, nil
		}
	case "output":
		return inst.App.Scheduler().Peak, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrBadLED, src)
}
