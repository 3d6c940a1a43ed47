package host

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/justyntemme/seedrig/pkg/framework/board"
	"github.com/justyntemme/seedrig/pkg/framework/config"
)

// audioSource feeds oto. Read runs on oto's goroutine, which makes it the
// audio goroutine: it is the only caller of the App's render path.
type audioSource struct {
	inst    *config.Instance
	player  *board.Player
	buf     []float32
	stopped atomic.Bool
}

func newAudioSource(inst *config.Instance, script *board.Script) *audioSource {
	s := &audioSource{inst: inst}
	if script != nil {
		s.player = board.NewPlayer(*script, inst.Board, inst.Rig.SampleRate)
	}
	return s
}

// Read renders whole frames as little-endian float32
func (s *audioSource) Read(p []byte) (int, error) {
	ch := s.inst.Rig.Channels
	frames := len(p) / (4 * ch)
	n := frames * ch
	if len(s.buf) < n {
		s.buf = make([]float32, n)
	}
	samples := s.buf[:n]

	if s.stopped.Load() {
		clear(samples)
	} else {
		app := s.inst.App
		block := app.BlockSize()
		for pos := 0; pos < frames; pos += block {
			m := min(block, frames-pos)
			if s.player != nil {
				s.player.Advance(m)
			}
			app.ProcessInterleaved(nil, samples[pos*ch:(pos+m)*ch])
		}
	}

	for i, v := range samples {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}
	return n * 4, nil
}

// Output plays a rig instance on the default audio device
type Output struct {
	ctx    *oto.Context
	player *oto.Player
	src    *audioSource
}

// OpenOutput starts realtime playback. script may be nil.
func OpenOutput(inst *config.Instance, script *board.Script, buffer time.Duration) (*Output, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(inst.Rig.SampleRate),
		ChannelCount: inst.Rig.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   buffer,
	})
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	<-ready

	src := newAudioSource(inst, script)
	player := ctx.NewPlayer(src)
	player.Play()
	return &Output{ctx: ctx, player: player, src: src}, nil
}

// Close stops playback
func (o *Output) Close() error {
	o.src.stopped.Store(true)
	return o.player.Close()
}

// RunSlowLoop polls the app at rate until stop is closed. It is the main
// loop of the hardware: switches, display and LEDs.
func RunSlowLoop(inst *config.Instance, rate float64, stop <-chan struct{}) {
	ticker := time.NewTicker(time.Duration(float64(time.Second) / rate))
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			inst.App.Poll()
		}
	}
}
