package host

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/justyntemme/seedrig/pkg/framework/board"
	"github.com/justyntemme/seedrig/pkg/framework/config"
	"github.com/justyntemme/seedrig/pkg/framework/voice"
)

var cellStyle = lipgloss.NewStyle().PaddingRight(2)

// plainTable is a borderless table that reads the same piped or on a terminal
func plainTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(false).
		StyleFunc(func(_, _ int) lipgloss.Style { return cellStyle }).
		Headers(headers...)
}

// Describe prints the rig: board channels, voices with their controls, the
// bus, the pedal and the LED bindings
func Describe(w io.Writer, r *config.Rig) error {
	var sections []string
	add := func(s string) { sections = append(sections, strings.TrimRight(s, " \n")) }

	head := plainTable()
	head.Row("rig", r.Name)
	head.Row("audio", fmt.Sprintf("%.0f Hz, %d channels, block %d (%.0f ticks/s)",
		r.SampleRate, r.Channels, r.BlockSize, r.TickRate()))
	add(head.String())

	if chs := r.AnalogChannels(); len(chs) > 0 {
		add(channelTable("analog", chs).String())
	}
	if chs := r.DigitalChannels(); len(chs) > 0 {
		add(channelTable("digital", chs).String())
	}

	for i, d := range r.Descriptors() {
		t := plainTable(fmt.Sprintf("voice %s", d.Name), stagesOf(d), fmt.Sprintf("gain %.2f", r.Voices[i].Gain))
		t.Row("  trigger", fmt.Sprintf("line %d", d.Trigger.Line), "")
		if d.Button != nil {
			t.Row("  button", fmt.Sprintf("line %d", d.Button.Line), "")
		}
		for _, c := range d.Controls {
			t.Row("  "+string(c.Param), controlSource(c), controlRange(c))
		}
		add(t.String())
	}

	if len(r.Bus) > 0 {
		types := make([]string, len(r.Bus))
		for i, s := range r.Bus {
			types[i] = s.Type
		}
		add(plainTable().Row("bus", strings.Join(types, " -> ")).String())
	}

	if p := r.Pedal; p != nil {
		t := plainTable("pedal", fmt.Sprintf("time %d/%d  feedback %d  mix %d",
			p.Channels.TimeL, p.Channels.TimeR, p.Channels.Feedback, p.Channels.Mix))
		if p.FixedRange != nil {
			t.Row("  range", fmt.Sprintf("%g..%g s", p.FixedRange.Min, p.FixedRange.Max))
		} else {
			t.Row("  range", "from mode, starting "+rangeName(r.Mode.Range))
		}
		add(t.String())
	}

	if len(r.LEDs) > 0 {
		t := plainTable("led", "source")
		for _, l := range r.LEDs {
			t.Row(strconv.Itoa(l.LED), l.Source)
		}
		add(t.String())
	}

	if s := r.Script; s != nil {
		add(plainTable().Row("script", fmt.Sprintf("%d events over %.2f s", len(s.Events), s.Length)).String())
	}

	_, err := io.WriteString(w, strings.Join(sections, "\n\n")+"\n")
	return err
}

func channelTable(kind string, chs []board.ChannelDescriptor) *table.Table {
	t := plainTable(kind, "pin", "name")
	for _, c := range chs {
		t.Row(strconv.Itoa(c.Index), strconv.Itoa(c.Pin), c.Name)
	}
	return t
}

func controlSource(c voice.ControlSpec) string {
	src := fmt.Sprintf("knob %d", c.Channel)
	if c.CV != nil {
		src += fmt.Sprintf(" + cv %d", *c.CV)
	}
	return src
}

func controlRange(c voice.ControlSpec) string {
	rng := fmt.Sprintf("%g..%g", c.Min, c.Max)
	if c.Exp {
		rng += " exp"
	}
	if c.Continuous {
		return rng + ", continuous"
	}
	return rng + ", on trigger"
}

func rangeName(name string) string {
	if name == "" {
		return "fast"
	}
	return name
}

func stagesOf(d voice.Descriptor) string {
	parts := []string{d.Oscillator.Waveform}
	if parts[0] == "" {
		parts[0] = "sine"
	}
	if d.Noise != nil {
		parts = append(parts, "noise")
	}
	if d.PitchEnv != nil {
		parts = append(parts, "pitch env")
	}
	if d.Drive != nil {
		parts = append(parts, "drive")
	}
	if d.Filter != nil {
		parts = append(parts, d.Filter.Mode)
	}
	return strings.Join(parts, " + ")
}
