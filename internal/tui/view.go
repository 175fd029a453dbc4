package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

const helpLine = "q quit · tab page · space pause · c clear · 1-9 toggle series · f follow"

// headerHeight and footerHeight are the fixed lines around the page body.
const (
	headerHeight = 2
	footerHeight = 1
)

// View renders the dashboard.
func (m *Model) View() string {
	if !m.ready {
		return "initializing..."
	}

	header := m.renderHeader()
	footer := helpStyle.Render(helpLine)

	var body string
	switch m.page {
	case PageMonitor:
		body = monitorStyle.Render(m.monitor.View())
	default:
		w, h := m.bodySize()
		body = lipgloss.JoinVertical(lipgloss.Left,
			m.renderChart(w, h-1),
			m.renderLegend(),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m *Model) renderHeader() string {
	title := headerStyle.Render("splot")
	status := statusStyle.Render(fmt.Sprintf(" %s · %s · samples %d",
		m.portLabel, m.page, m.snapshot.SamplesReceived))

	line := title + status
	if m.reader.Paused() {
		line += pausedStyle.Render("  [PAUSED]")
	}
	return line + "\n"
}

// bodySize is the area left for the active page.
func (m *Model) bodySize() (w, h int) {
	w = m.width
	h = m.height - headerHeight - footerHeight
	if w < 10 {
		w = 10
	}
	if h < 4 {
		h = 4
	}
	return w, h
}
