package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/oscilla-audio/engine/internal/engine"
)

const meterWidth = 40

var (
	monitorTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A40000"))
	meterFill    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))
	meterClip    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	meterTrack   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	monitorHelp  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true)
)

type tickMsg time.Time

// monitorModel is a bubbletea program that polls the engine's transport
// snapshot at UI frame rate and renders a live playhead/meter readout
// while the realtime audio callback runs in the background (§5, §4.10).
type monitorModel struct {
	e    *engine.Engine
	snap engine.TransportSnapshot
}

func newMonitorModel(e *engine.Engine) monitorModel {
	return monitorModel{e: e}
}

func (m monitorModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(66*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
	case tickMsg:
		m.snap = m.e.Transport()
		return m, tickCmd()
	}
	return m, nil
}

func (m monitorModel) View() string {
	minutes := int(m.snap.CurrentTime) / 60
	seconds := int(m.snap.CurrentTime) % 60

	status := "stopped"
	if m.snap.IsPlaying {
		status = "playing"
	}

	return fmt.Sprintf(
		"%s\n\n  %02d:%02d  %s\n\n  L %s\n  R %s\n\n%s",
		monitorTitle.Render("osciliad -- live playback"),
		minutes, seconds, status,
		meterBar(m.snap.PeakL),
		meterBar(m.snap.PeakR),
		monitorHelp.Render("q to stop"),
	)
}

// meterBar renders a [0,1] meter value as a bar, amber past 0.7 of the
// scale (-18 dB on the meter's -60..0 dB mapping).
func meterBar(peak float64) string {
	filled := int(peak * meterWidth)
	if filled > meterWidth {
		filled = meterWidth
	}
	if filled < 0 {
		filled = 0
	}
	clipPoint := int(0.7 * meterWidth)

	var bar string
	for i := 0; i < meterWidth; i++ {
		switch {
		case i < filled && i >= clipPoint:
			bar += meterClip.Render("#")
		case i < filled:
			bar += meterFill.Render("#")
		default:
			bar += meterTrack.Render("-")
		}
	}
	return bar
}
