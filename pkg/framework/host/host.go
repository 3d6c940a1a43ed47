// Package host runs a rig on a desktop: offline WAV renders, realtime
// playback and a terminal front panel standing in for the knobs, switches,
// LEDs and display of the hardware.
package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/alexflint/go-arg"

	"github.com/justyntemme/seedrig/pkg/framework/config"
	"github.com/justyntemme/seedrig/pkg/framework/debug"
)

// RenderCmd renders the rig's script offline
type RenderCmd struct {
	Output  string  `arg:"-o,--output" default:"out.wav" help:"WAV file to write"`
	Seconds float64 `arg:"-s,--seconds" help:"length to render, defaults to the script length"`
}

// PlayCmd plays the rig on the default audio device
type PlayCmd struct {
	Script   bool          `arg:"--script" help:"apply the rig's script to the board while playing"`
	Headless bool          `arg:"--headless" help:"run without the front panel"`
	Seconds  float64       `arg:"-s,--seconds" help:"stop after this long when headless"`
	Buffer   time.Duration `arg:"--buffer" default:"20ms" help:"audio device buffer"`
}

// DescribeCmd prints the rig
type DescribeCmd struct{}

// Args are the command line of every rig program
type Args struct {
	Config   string       `arg:"-c,--config" help:"rig file to load instead of the built-in rig"`
	LogLevel string       `arg:"--log-level" default:"info" help:"debug, info, warn, error or off"`
	LogFile  string       `arg:"--log-file" help:"write logs to this file instead of stderr"`
	Render   *RenderCmd   `arg:"subcommand:render" help:"render the rig's script to a WAV file"`
	Play     *PlayCmd     `arg:"subcommand:play" help:"play the rig with a terminal front panel"`
	Describe *DescribeCmd `arg:"subcommand:describe" help:"print the board, voices and bindings"`
}

// Description is shown at the top of the help text
func (Args) Description() string {
	return "Runs a seedrig rig: drum voices and delay pipelines driven by knobs and gates."
}

// Main runs the command line against the embedded rig and exits
func Main(rig []byte) {
	os.Exit(Run(filepath.Base(os.Args[0]), rig, os.Args[1:], os.Stdout, os.Stderr))
}

// Run parses argv and runs the selected command. It returns the process exit
// code.
func Run(program string, rig []byte, argv []string, stdout, stderr io.Writer) int {
	var args Args
	p, err := arg.NewParser(arg.Config{Program: program}, &args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if err := p.Parse(argv); err != nil {
		if errors.Is(err, arg.ErrHelp) {
			p.WriteHelp(stdout)
			return 0
		}
		p.WriteUsage(stderr)
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}
	if p.Subcommand() == nil {
		p.WriteUsage(stderr)
		fmt.Fprintln(stderr, "error: a command is required")
		return 2
	}

	log, err := newLogger(args, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}
	defer log.Close()

	r, err := loadRig(args.Config, rig)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	log = log.With(r.Name)

	switch {
	case args.Describe != nil:
		err = Describe(stdout, r)
	case args.Render != nil:
		err = runRender(r, args.Render, log)
	case args.Play != nil:
		err = runPlay(r, args.Play, args.LogFile != "", log)
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func newLogger(args Args, stderr io.Writer) (*debug.Logger, error) {
	level, err := debug.ParseLevel(args.LogLevel)
	if err != nil {
		return nil, err
	}
	if args.LogFile != "" {
		return debug.NewFileLogger(args.LogFile, level)
	}
	log := debug.New(stderr, "", debug.DefaultFlags)
	log.SetLevel(level)
	return log, nil
}

func loadRig(path string, embedded []byte) (*config.Rig, error) {
	if path != "" {
		return config.Load(path)
	}
	if len(embedded) == 0 {
		return nil, errors.New("no rig: pass --config")
	}
	return config.Parse(embedded)
}

func runRender(r *config.Rig, cmd *RenderCmd, log *debug.Logger) error {
	inst, err := r.Build(log)
	if err != nil {
		return err
	}
	f, err := os.Create(cmd.Output)
	if err != nil {
		return err
	}
	frames := RenderFrames(r, cmd.Seconds)
	if err := Render(inst, f, frames, log); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Info("wrote %s: %.2f s", cmd.Output, float64(frames)/r.SampleRate)
	return nil
}

func runPlay(r *config.Rig, cmd *PlayCmd, logToFile bool, log *debug.Logger) error {
	if !cmd.Headless && !logToFile {
		// the front panel owns the terminal
		log.SetOutput(io.Discard)
	}
	inst, err := r.Build(log)
	if err != nil {
		return err
	}

	script := r.Script
	if !cmd.Script {
		script = nil
	}
	out, err := OpenOutput(inst, script, cmd.Buffer)
	if err != nil {
		return err
	}
	defer out.Close()

	stop := make(chan struct{})
	defer close(stop)
	go RunSlowLoop(inst, r.PollRate, stop)
	log.Info("playing at %.0f Hz, block %d", r.SampleRate, r.BlockSize)

	if !cmd.Headless {
		return RunPanel(inst)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if cmd.Seconds > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, time.Duration(cmd.Seconds*float64(time.Second)))
		defer cancelTimeout()
	}
	<-ctx.Done()
	log.Info("%s", inst.App.View().Meter().Report())
	return nil
}
