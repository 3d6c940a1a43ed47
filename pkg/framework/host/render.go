package host

import (
	"fmt"
	"io"
	"math"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"

	"github.com/justyntemme/seedrig/pkg/framework/board"
	"github.com/justyntemme/seedrig/pkg/framework/config"
	"github.com/justyntemme/seedrig/pkg/framework/debug"
)

// Streamer renders a rig instance as a beep stream. The script, if any, is
// applied to the board before each block and the slow loop is polled at the
// rig's poll rate, so offline renders see panel presses the same way the
// hardware would.
type Streamer struct {
	inst      *config.Instance
	player    *board.Player
	remaining int

	block     []float32
	pos, size int

	pollEvery int
	blocks    int

	capture []float32
}

// NewStreamer creates a streamer producing frames stereo frames. script may
// be nil.
func NewStreamer(inst *config.Instance, script *board.Script, frames int) *Streamer {
	r := inst.Rig
	s := &Streamer{
		inst:      inst,
		remaining: frames,
		block:     make([]float32, r.BlockSize*r.Channels),
		pollEvery: max(1, int(math.Round(r.TickRate()/r.PollRate))),
	}
	if script != nil {
		s.player = board.NewPlayer(*script, inst.Board, r.SampleRate)
	}
	return s
}

// Capture keeps every rendered frame, interleaved stereo, for analysis
func (s *Streamer) Capture() {
	s.capture = make([]float32, 0, 2*s.remaining)
}

// Captured returns the frames kept since Capture
func (s *Streamer) Captured() []float32 {
	return s.capture
}

func (s *Streamer) render() {
	app := s.inst.App
	if s.player != nil {
		s.player.Advance(app.BlockSize())
	}
	app.ProcessInterleaved(nil, s.block)
	s.blocks++
	if s.blocks%s.pollEvery == 0 {
		app.Poll()
	}
	s.pos, s.size = 0, app.BlockSize()
}

// Stream fills samples with rendered frames. Mono rigs are copied to both
// sides.
func (s *Streamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.remaining <= 0 {
		return 0, false
	}
	ch := s.inst.Rig.Channels
	for n < len(samples) && s.remaining > 0 {
		if s.pos >= s.size {
			s.render()
		}
		frame := s.block[s.pos*ch : (s.pos+1)*ch]
		l, r := frame[0], frame[0]
		if ch > 1 {
			r = frame[1]
		}
		samples[n][0], samples[n][1] = float64(l), float64(r)
		if s.capture != nil {
			s.capture = append(s.capture, l, r)
		}
		s.pos++
		s.remaining--
		n++
	}
	return n, true
}

// Err never fails
func (s *Streamer) Err() error {
	return nil
}

// RenderFrames returns the length to render: seconds if positive, else the
// script length, else one second
func RenderFrames(r *config.Rig, seconds float64) int {
	if seconds <= 0 && r.Script != nil {
		seconds = r.Script.Length
	}
	if seconds <= 0 {
		seconds = 1
	}
	return int(seconds * r.SampleRate)
}

// Render writes frames of the instance to w as a 16-bit stereo WAV file and
// logs level statistics of the result.
func Render(inst *config.Instance, w io.WriteSeeker, frames int, log *debug.Logger) error {
	r := inst.Rig
	s := NewStreamer(inst, r.Script, frames)
	s.Capture()

	format := beep.Format{
		SampleRate:  beep.SampleRate(int(r.SampleRate)),
		NumChannels: 2,
		Precision:   2,
	}
	if err := wav.Encode(w, s, format); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}

	debug.LogRenderStats(log, s.Captured(), 2, r.Name)
	log.Info("%s", inst.App.View().Meter().Report())
	return nil
}
