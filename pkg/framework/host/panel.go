package host

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/justyntemme/seedrig/pkg/framework/board"
	"github.com/justyntemme/seedrig/pkg/framework/config"
)

const (
	frameRate = 30
	pressHold = 60 * time.Millisecond
	barWidth  = 24
	fineStep  = 0.01
	step      = 0.05
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#fff"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555"))
	cursorStyle  = lipgloss.NewStyle().Background(lipgloss.Color("#444"))
	fillStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8cf"))
	lineOnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#fc6"))
	displayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#666")).
			Padding(0, 1)
)

type tickMsg time.Time

type releaseMsg int

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// frontPanel is the interactive stand-in for the hardware: arrow keys turn
// knobs, number keys press digital lines, and the LEDs and display are drawn
// from what the slow loop last wrote to the board.
type frontPanel struct {
	inst     *config.Instance
	analog   []board.ChannelDescriptor
	digital  []board.ChannelDescriptor
	bindings map[int][]string
	cursor   int
	latched  map[int]bool
	quitting bool
}

func newFrontPanel(inst *config.Instance) frontPanel {
	return frontPanel{
		inst:     inst,
		analog:   inst.Rig.AnalogChannels(),
		digital:  inst.Rig.DigitalChannels(),
		bindings: knobBindings(inst.Rig),
		latched:  make(map[int]bool),
	}
}

// knobBindings lists what each analog channel drives, for the knob labels
func knobBindings(r *config.Rig) map[int][]string {
	out := make(map[int][]string)
	for _, d := range r.Descriptors() {
		for _, c := range d.Controls {
			out[c.Channel] = append(out[c.Channel], d.Name+"."+string(c.Param))
			if c.CV != nil {
				out[*c.CV] = append(out[*c.CV], d.Name+"."+string(c.Param)+" cv")
			}
		}
	}
	if p := r.Pedal; p != nil {
		out[p.Channels.TimeL] = append(out[p.Channels.TimeL], "time L")
		if p.Channels.TimeR != p.Channels.TimeL {
			out[p.Channels.TimeR] = append(out[p.Channels.TimeR], "time R")
		}
		out[p.Channels.Feedback] = append(out[p.Channels.Feedback], "feedback")
		out[p.Channels.Mix] = append(out[p.Channels.Mix], "mix")
	}
	return out
}

func (m frontPanel) Init() tea.Cmd {
	return tick()
}

// lineKey maps the number row to digital lines: 1 is line 0, 0 is line 9
func lineKey(key string) (int, bool) {
	if len(key) != 1 || key[0] < '0' || key[0] > '9' {
		return 0, false
	}
	if key[0] == '0' {
		return 9, true
	}
	return int(key[0] - '1'), true
}

func (m frontPanel) nudge(delta float32) {
	if len(m.analog) == 0 {
		return
	}
	b := m.inst.Board
	b.SetFloat(m.cursor, b.Float(m.cursor)+delta)
}

func (m frontPanel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.analog)-1 {
				m.cursor++
			}
		case "left", "h":
			m.nudge(-step)
		case "right", "l":
			m.nudge(step)
		case "H":
			m.nudge(-fineStep)
		case "L":
			m.nudge(fineStep)
		}

		if line, ok := lineKey(strings.TrimPrefix(key, "alt+")); ok && line < len(m.digital) {
			if strings.HasPrefix(key, "alt+") {
				m.latched[line] = !m.latched[line]
				m.inst.Board.SetLine(line, m.latched[line])
				return m, nil
			}
			m.inst.Board.SetLine(line, true)
			return m, tea.Tick(pressHold, func(time.Time) tea.Msg { return releaseMsg(line) })
		}

	case releaseMsg:
		if !m.latched[int(msg)] {
			m.inst.Board.SetLine(int(msg), false)
		}

	case tickMsg:
		return m, tick()
	}
	return m, nil
}

func bar(v float32) string {
	filled := int(v*barWidth + 0.5)
	return fillStyle.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", barWidth-filled))
}

func ledGlyph(brightness float32) string {
	level := int(40 + 215*brightness)
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(fmt.Sprintf("#%02x%02x30", level, level/3))).
		Render("●")
}

func channelName(d board.ChannelDescriptor, kind string) string {
	if d.Name != "" {
		return d.Name
	}
	return fmt.Sprintf("%s%d", kind, d.Index)
}

func (m frontPanel) View() string {
	if m.quitting {
		return ""
	}
	b := m.inst.Board
	view := m.inst.App.View()

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(titleStyle.Render(m.inst.Rig.Name))
	out.WriteString(dimStyle.Render(fmt.Sprintf("  %.0f Hz  block %d", m.inst.Rig.SampleRate, m.inst.Rig.BlockSize)))
	out.WriteString("\n\n")

	for i, d := range m.analog {
		row := fmt.Sprintf("%-10s %s %4.2f  %s", channelName(d, "knob"), bar(b.Float(i)), b.Float(i),
			dimStyle.Render(strings.Join(m.bindings[i], ", ")))
		if i == m.cursor {
			row = cursorStyle.Render(row)
		}
		out.WriteString(row)
		out.WriteString("\n")
	}

	if len(m.digital) > 0 {
		out.WriteString("\n")
		for i, d := range m.digital {
			glyph := dimStyle.Render("□")
			if b.Read(i) {
				glyph = lineOnStyle.Render("■")
			}
			key := "-"
			if i < 10 {
				key = fmt.Sprint((i + 1) % 10)
			}
			fmt.Fprintf(&out, "%s %s %s  ", key, glyph, channelName(d, "line"))
		}
		out.WriteString("\n")
	}

	if n := view.NumLEDs(); n > 0 {
		out.WriteString("\nLED ")
		for i := 0; i < n; i++ {
			out.WriteString(ledGlyph(b.LED(i)))
			out.WriteString(" ")
		}
		out.WriteString("\n")
	}

	if lines := b.Lines(); len(lines) > 0 {
		out.WriteString(displayStyle.Render(strings.Join(lines, "\n")))
		out.WriteString("\n")
	}

	out.WriteString(dimStyle.Render(fmt.Sprintf("blocks %d  load %.1f%%", view.Blocks(), view.Load()*100)))
	out.WriteString("\n")
	out.WriteString(dimStyle.Render("↑↓ knob  ←→ turn (HL fine)  1-0 press  alt+1-0 latch  q quit"))
	return out.String()
}

// RunPanel runs the front panel until the user quits
func RunPanel(inst *config.Instance) error {
	p := tea.NewProgram(newFrontPanel(inst), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
