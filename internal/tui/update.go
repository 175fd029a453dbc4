package tui

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
)

// Update handles input and refresh ticks.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layoutMonitor()
		m.ready = true
		return m, nil

	case TickMsg:
		m.snapshot = m.session.Snapshot()
		m.refreshMonitorContent()
		return m, m.tick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "tab":
		if m.page == PageChart {
			m.page = PageMonitor
		} else {
			m.page = PageChart
		}
		return m, nil

	case " ":
		m.reader.SetPaused(!m.reader.Paused())
		return m, nil

	case "c":
		m.session.Reset()
		m.snapshot = m.session.Snapshot()
		m.refreshMonitorContent()
		return m, nil

	case "f":
		m.follow = !m.follow
		if m.follow {
			m.monitor.GotoBottom()
		}
		return m, nil

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		// Number keys toggle series visibility, 1-based like the legend.
		n, _ := strconv.Atoi(key)
		m.session.ToggleSeriesVisibility(n - 1)
		m.snapshot = m.session.Snapshot()
		return m, nil

	case "up", "down", "pgup", "pgdown":
		if m.page == PageMonitor {
			m.follow = false
			var cmd tea.Cmd
			m.monitor, cmd = m.monitor.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	return m, nil
}
