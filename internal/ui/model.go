// Package ui is the manual lamp controller: HSV sliders, a live preview
// swatch, and ten persisted shortcut slots.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/vibesync/vibesync/internal/render"
)

const (
	barWidth   = 36
	uiFPS      = 30
	fineStep   = 0.01
	coarseStep = 0.10
)

type channel int

const (
	chanHue channel = iota
	chanSat
	chanVal
)

var channelLabels = [3]string{"HUE", "SAT", "VAL"}

type tickMsg time.Time

type sentMsg struct{ err error }

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Coarse key.Binding
	Save   key.Binding
	Reset  key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Left, k.Coarse, k.Save, k.Reset, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Left, k.Right}, {k.Coarse, k.Save, k.Reset, k.Quit}}
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/↓", "select bar")),
	Down:   key.NewBinding(key.WithKeys("down", "j")),
	Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "adjust")),
	Right:  key.NewBinding(key.WithKeys("right", "l")),
	Coarse: key.NewBinding(key.WithKeys("H", "L"), key.WithHelp("shift+←/→", "adjust fast")),
	Save:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "save mode")),
	Reset:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the Bubble Tea model for the manual controller.
type Model struct {
	transport render.Transport

	hue float64
	sat float64
	val float64

	cursor    channel
	saveMode  bool
	shortcuts Shortcuts
	status    string
	help      help.Model

	// Spring-animated display positions so the bars glide instead of snap.
	spring harmonica.Spring
	shown  [3]float64
	vel    [3]float64

	dirty    bool
	quitting bool
}

// New builds the controller model over an already-connected transport.
func New(transport render.Transport) Model {
	return Model{
		transport: transport,
		sat:       1,
		val:       1,
		shortcuts: LoadShortcuts(),
		status:    "connected",
		help:      help.New(),
		spring:    harmonica.NewSpring(harmonica.FPS(uiFPS), 8.0, 0.8),
		dirty:     true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), tea.SetWindowTitle("vibesync control"))
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/uiFPS, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		targets := [3]float64{m.hue, m.sat, m.val}
		for i := range m.shown {
			m.shown[i], m.vel[i] = m.spring.Update(m.shown[i], m.vel[i], targets[i])
		}
		cmds := []tea.Cmd{tick()}
		if m.dirty {
			m.dirty = false
			cmds = append(cmds, m.sendColor())
		}
		return m, tea.Batch(cmds...)

	case sentMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("send failed: %v", msg.err)
		} else {
			m.status = "connected"
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if s := msg.String(); len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
		return m.handleSlot(s), nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < chanVal {
			m.cursor++
		}
	case key.Matches(msg, keys.Left):
		m.adjust(-fineStep)
	case key.Matches(msg, keys.Right):
		m.adjust(fineStep)
	case key.Matches(msg, keys.Coarse):
		if msg.String() == "H" {
			m.adjust(-coarseStep)
		} else {
			m.adjust(coarseStep)
		}
	case key.Matches(msg, keys.Save):
		m.saveMode = !m.saveMode
	case key.Matches(msg, keys.Reset):
		m.hue, m.sat, m.val = 0, 0, 1
		m.dirty = true
	}
	return m, nil
}

func (m *Model) adjust(delta float64) {
	switch m.cursor {
	case chanHue:
		// Hue wraps; the other channels clamp.
		m.hue += delta
		for m.hue < 0 {
			m.hue += 1
		}
		for m.hue >= 1 {
			m.hue -= 1
		}
	case chanSat:
		m.sat = clamp01(m.sat + delta)
	case chanVal:
		m.val = clamp01(m.val + delta)
	}
	m.dirty = true
}

func (m Model) handleSlot(slot string) Model {
	if m.saveMode {
		m.shortcuts[slot] = Shortcut{Hue: m.hue, Saturation: m.sat, Value: m.val}
		if err := m.shortcuts.Save(); err != nil {
			m.status = fmt.Sprintf("save failed: %v", err)
		} else {
			m.status = "slot " + slot + " saved"
		}
		m.saveMode = false
		return m
	}
	s, ok := m.shortcuts[slot]
	if !ok {
		m.status = "slot " + slot + " empty (press x to save here)"
		return m
	}
	m.hue, m.sat, m.val = s.Hue, s.Saturation, s.Value
	m.dirty = true
	m.status = "slot " + slot + " loaded"
	return m
}

func (m Model) sendColor() tea.Cmd {
	transport := m.transport
	r, g, b := rgb255(m.hue, m.sat, m.val)
	return func() tea.Msg {
		return sentMsg{err: transport.SendColor(r, g, b)}
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	r, g, b := rgb255(m.hue, m.sat, m.val)
	hex := fmt.Sprintf("#%02X%02X%02X", r, g, b)

	var body strings.Builder
	body.WriteString(titleStyle.Render("vibesync manual control"))
	body.WriteString("\n\n")
	body.WriteString(swatchStyle(hex).Render(""))
	body.WriteString("\n")
	body.WriteString(labelStyle.Render(fmt.Sprintf("HSV %.2f %.2f %.2f  RGB %3d %3d %3d  %s", m.hue, m.sat, m.val, r, g, b, hex)))
	body.WriteString("\n\n")

	for i := chanHue; i <= chanVal; i++ {
		label := channelLabels[i]
		style := labelStyle
		marker := "  "
		if i == m.cursor {
			style = selectedLabelStyle
			marker = "> "
		}
		body.WriteString(marker + style.Render(label) + " " + bar(m.shown[i]) + fmt.Sprintf(" %3d%%", int(clamp01(m.shown[i])*100)))
		body.WriteString("\n")
	}

	body.WriteString("\n")
	if m.saveMode {
		body.WriteString(saveModeStyle.Render("SAVE MODE: press a digit to store this color"))
	} else {
		body.WriteString(statusStyle.Render(m.status))
	}
	body.WriteString("\n" + helpStyle.Render("0-9 load slot") + "\n")
	body.WriteString(m.help.View(keys))

	return frameStyle.Render(body.String())
}

func bar(value float64) string {
	filled := int(clamp01(value) * barWidth)
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

func rgb255(h, s, v float64) (uint8, uint8, uint8) {
	return colorful.Hsv(h*360, s, v).RGB255()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
