package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/linechart/timeserieslinechart"
	"github.com/charmbracelet/lipgloss"
)

// renderChart draws every visible series into one braille line chart.
func (m *Model) renderChart(width, height int) string {
	minT, maxT, minY, maxY, any := m.chartBounds()
	if !any {
		return statusStyle.Render("waiting for samples...")
	}

	chart := timeserieslinechart.New(width, height)
	chart.SetTimeRange(secsToTime(minT), secsToTime(maxT))
	chart.SetViewTimeRange(secsToTime(minT), secsToTime(maxT))
	chart.SetYRange(minY, maxY)
	chart.SetViewYRange(minY, maxY)

	for i, samples := range m.snapshot.Series {
		app := m.snapshot.Appearances[i]
		if !app.Visible || len(samples) == 0 {
			continue
		}
		// Position-prefixed so equally named series stay separate datasets.
		key := fmt.Sprintf("%02d %s", i, app.Name)
		chart.SetDataSetStyle(key, lipgloss.NewStyle().Foreground(lipgloss.Color(app.Color)))
		for _, s := range samples {
			chart.PushDataSet(key, timeserieslinechart.TimePoint{
				Time:  secsToTime(s.Time),
				Value: s.Value,
			})
		}
	}

	chart.DrawBrailleAll()
	return chart.View()
}

// chartBounds finds the time and value extent of all visible samples.
func (m *Model) chartBounds() (minT, maxT, minY, maxY float64, any bool) {
	minT, minY = math.Inf(1), math.Inf(1)
	maxT, maxY = math.Inf(-1), math.Inf(-1)

	for i, samples := range m.snapshot.Series {
		if !m.snapshot.Appearances[i].Visible {
			continue
		}
		for _, s := range samples {
			minT = math.Min(minT, s.Time)
			maxT = math.Max(maxT, s.Time)
			minY = math.Min(minY, s.Value)
			maxY = math.Max(maxY, s.Value)
			any = true
		}
	}
	if !any {
		return 0, 0, 0, 0, false
	}

	// Degenerate extents make the chart divide by zero; pad them open.
	if maxT-minT < 1e-9 {
		maxT = minT + 1
	}
	if maxY-minY < 1e-9 {
		minY -= 0.5
		maxY += 0.5
	}
	return minT, maxT, minY, maxY, true
}

// renderLegend lists the series with their colors, numbered like the
// visibility toggle keys.
func (m *Model) renderLegend() string {
	if len(m.snapshot.Appearances) == 0 {
		return ""
	}

	parts := make([]string, 0, len(m.snapshot.Appearances))
	for i, app := range m.snapshot.Appearances {
		label := fmt.Sprintf("%d:%s", i+1, app.Name)
		if app.Visible {
			parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color(app.Color)).Render(label))
		} else {
			parts = append(parts, legendHiddenStyle.Render(label))
		}
	}
	return strings.Join(parts, "  ")
}

func secsToTime(secs float64) time.Time {
	return time.Unix(0, int64(secs*float64(time.Second)))
}
