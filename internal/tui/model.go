// Package tui renders the live plot and the raw serial monitor.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tinytelemetry/splot/internal/ingest"
)

// Page selects what the main area shows.
type Page int

const (
	PageChart Page = iota
	PageMonitor
)

func (p Page) String() string {
	switch p {
	case PageChart:
		return "Time - Value"
	case PageMonitor:
		return "Serial Monitor"
	default:
		return "unknown"
	}
}

// TickMsg drives periodic snapshot refreshes.
type TickMsg time.Time

// Model is the dashboard: it drains session snapshots on a timer and draws
// the active page. All mutation of ingestion state goes through the session
// and reader; the model itself only holds display state.
type Model struct {
	session *ingest.Session
	reader  *ingest.Reader

	updateInterval time.Duration
	portLabel      string

	width  int
	height int
	ready  bool

	page     Page
	snapshot ingest.Snapshot
	monitor  viewport.Model
	follow   bool // keep the monitor scrolled to the newest line
}

// New creates the dashboard model.
func New(session *ingest.Session, reader *ingest.Reader, portLabel string, updateInterval time.Duration) *Model {
	if updateInterval <= 0 {
		updateInterval = 250 * time.Millisecond
	}
	return &Model{
		session:        session,
		reader:         reader,
		updateInterval: updateInterval,
		portLabel:      portLabel,
		follow:         true,
	}
}

// Init starts the refresh timer.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.updateInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
