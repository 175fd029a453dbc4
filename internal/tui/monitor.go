package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
)

// layoutMonitor resizes the monitor viewport to the current window.
func (m *Model) layoutMonitor() {
	w, h := m.bodySize()
	if m.monitor.Width == 0 && m.monitor.Height == 0 {
		m.monitor = viewport.New(w, h)
	} else {
		m.monitor.Width = w
		m.monitor.Height = h
	}
	m.refreshMonitorContent()
}

// refreshMonitorContent feeds the raw echo lines into the viewport.
func (m *Model) refreshMonitorContent() {
	if m.monitor.Width == 0 {
		return
	}
	var b strings.Builder
	for _, line := range m.snapshot.MonitorLines {
		b.WriteString(strings.TrimRight(line, "\r\n"))
		b.WriteByte('\n')
	}
	m.monitor.SetContent(strings.TrimRight(b.String(), "\n"))
	if m.follow {
		m.monitor.GotoBottom()
	}
}
