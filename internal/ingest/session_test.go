package ingest

import (
	"fmt"
	"testing"

	"github.com/tinytelemetry/splot/internal/model"
)

func newTestSession() *Session {
	return NewSession(Config{
		SampleBuffer:  8,
		MonitorBuffer: 4,
	})
}

func TestIngestCreatesSeriesLazily(t *testing.T) {
	t.Parallel()
	s := newTestSession()

	if err := s.IngestBytes([]byte("sin=0.5, cos=1.0\n")); err != nil {
		t.Fatalf("IngestBytes: %v", err)
	}

	snap := s.Snapshot()
	if len(snap.Series) != 2 {
		t.Fatalf("series count = %d, want 2", len(snap.Series))
	}
	if len(snap.Appearances) != len(snap.Series) {
		t.Fatalf("appearances = %d, series = %d, want aligned", len(snap.Appearances), len(snap.Series))
	}
	if snap.Appearances[0].Name != "sin" || snap.Appearances[1].Name != "cos" {
		t.Errorf("appearance names = %q, %q, want sin, cos", snap.Appearances[0].Name, snap.Appearances[1].Name)
	}
	if !snap.Appearances[0].Visible {
		t.Error("new series should start visible")
	}
	if snap.SamplesReceived != 2 {
		t.Errorf("SamplesReceived = %d, want 2", snap.SamplesReceived)
	}
}

func TestIngestPlaceholderNames(t *testing.T) {
	t.Parallel()
	s := newTestSession()

	if err := s.IngestBytes([]byte("1.0,2.0\n")); err != nil {
		t.Fatalf("IngestBytes: %v", err)
	}

	snap := s.Snapshot()
	if snap.Appearances[0].Name != "Samples 00" || snap.Appearances[1].Name != "Samples 01" {
		t.Errorf("placeholder names = %q, %q, want Samples 00, Samples 01",
			snap.Appearances[0].Name, snap.Appearances[1].Name)
	}
}

func TestIngestAppendsToExistingSeries(t *testing.T) {
	t.Parallel()
	s := newTestSession()

	s.IngestBytes([]byte("a=1\n"))
	s.IngestBytes([]byte("a=2\na=3\n"))

	snap := s.Snapshot()
	if len(snap.Series) != 1 {
		t.Fatalf("series count = %d, want 1", len(snap.Series))
	}
	values := snap.Series[0]
	if len(values) != 3 {
		t.Fatalf("series length = %d, want 3", len(values))
	}
	for i, want := range []float64{1, 2, 3} {
		if values[i].Value != want {
			t.Errorf("series[0][%d] = %v, want %v (arrival order)", i, values[i].Value, want)
		}
	}
}

func TestIngestEvictsAtCapacity(t *testing.T) {
	t.Parallel()
	s := NewSession(Config{SampleBuffer: 3, MonitorBuffer: 4})

	for i := 0; i < 10; i++ {
		s.IngestBytes([]byte(fmt.Sprintf("a=%d\n", i)))
	}

	snap := s.Snapshot()
	values := snap.Series[0]
	if len(values) != 3 {
		t.Fatalf("series length = %d, want capacity 3", len(values))
	}
	for i, want := range []float64{7, 8, 9} {
		if values[i].Value != want {
			t.Errorf("series[0][%d] = %v, want %v (last three in order)", i, values[i].Value, want)
		}
	}
	if snap.SamplesReceived != 10 {
		t.Errorf("SamplesReceived = %d, want 10 despite eviction", snap.SamplesReceived)
	}
}

func TestIngestTimeFieldGapSeries(t *testing.T) {
	t.Parallel()
	s := newTestSession()

	// The time field consumes split position 0, so the first value series
	// sits at position 1 and position 0 stays an empty gap.
	s.IngestBytes([]byte("time=1, sin=0.5\n"))

	snap := s.Snapshot()
	if len(snap.Series) != 2 {
		t.Fatalf("series count = %d, want 2 (gap + sin)", len(snap.Series))
	}
	if len(snap.Series[0]) != 0 {
		t.Errorf("gap series has %d samples, want 0", len(snap.Series[0]))
	}
	if snap.Appearances[1].Name != "sin" {
		t.Errorf("appearance 1 name = %q, want sin", snap.Appearances[1].Name)
	}
	if snap.Appearances[0].Name != "Samples 00" {
		t.Errorf("gap appearance name = %q, want placeholder", snap.Appearances[0].Name)
	}
}

func TestRecolorOnNewSeries(t *testing.T) {
	t.Parallel()
	s := newTestSession()

	s.IngestBytes([]byte("a=1, b=2\n"))
	twoOfTwo := s.Snapshot().Appearances[1].Color

	s.IngestBytes([]byte("a=1, b=2, c=3\n"))
	snap := s.Snapshot()
	if snap.Appearances[1].Color == twoOfTwo {
		t.Error("adding a series should respace existing hues")
	}
	if snap.Appearances[0].Color == snap.Appearances[1].Color ||
		snap.Appearances[1].Color == snap.Appearances[2].Color {
		t.Error("series colors should be distinguishable")
	}
}

func TestMonitorEcho(t *testing.T) {
	t.Parallel()
	s := newTestSession()

	s.IngestBytes([]byte("a=1\nnot numbers at all\n"))

	snap := s.Snapshot()
	if len(snap.MonitorLines) != 2 {
		t.Fatalf("monitor lines = %d, want 2 (echo keeps unparseable lines)", len(snap.MonitorLines))
	}
	if snap.MonitorLines[1] != "not numbers at all\n" {
		t.Errorf("monitor line = %q, want the raw echo", snap.MonitorLines[1])
	}
}

func TestMonitorBufferBounded(t *testing.T) {
	t.Parallel()
	s := NewSession(Config{SampleBuffer: 8, MonitorBuffer: 2})

	s.IngestBytes([]byte("1\n2\n3\n4\n"))
	snap := s.Snapshot()
	if len(snap.MonitorLines) != 2 {
		t.Fatalf("monitor lines = %d, want capacity 2", len(snap.MonitorLines))
	}
	if snap.MonitorLines[0] != "3\n" || snap.MonitorLines[1] != "4\n" {
		t.Errorf("monitor lines = %q, want the newest two", snap.MonitorLines)
	}
}

func TestResetClearsEverything(t *testing.T) {
	t.Parallel()
	s := newTestSession()

	s.IngestBytes([]byte("a=1, b=2\npartial"))
	s.Reset()

	snap := s.Snapshot()
	if len(snap.Series) != 0 || len(snap.Appearances) != 0 || len(snap.MonitorLines) != 0 {
		t.Errorf("after Reset: series=%d appearances=%d monitor=%d, want all empty",
			len(snap.Series), len(snap.Appearances), len(snap.MonitorLines))
	}
	if snap.SamplesReceived != 0 {
		t.Errorf("SamplesReceived = %d after Reset, want 0", snap.SamplesReceived)
	}

	// The buffered "partial" tail is gone too; re-ingestion seeds fresh
	// series with fresh colors.
	s.IngestBytes([]byte("x=9\n"))
	snap = s.Snapshot()
	if len(snap.Series) != 1 || snap.Appearances[0].Name != "x" {
		t.Fatalf("re-seed after Reset: series=%d, name=%q", len(snap.Series), snap.Appearances[0].Name)
	}
	if snap.Series[0][0].Value != 9 {
		t.Errorf("first sample after Reset = %v, want 9", snap.Series[0][0].Value)
	}
}

func TestSetTimeUnitClears(t *testing.T) {
	t.Parallel()
	s := newTestSession()

	s.IngestBytes([]byte("a=1\n"))
	s.SetTimeUnit(model.TimeUnitMilliseconds)

	if snap := s.Snapshot(); len(snap.Series) != 0 {
		t.Errorf("series count = %d after unit change, want 0", len(snap.Series))
	}
	if got := s.TimeUnit(); got != model.TimeUnitMilliseconds {
		t.Errorf("TimeUnit() = %v, want ms", got)
	}

	// Same unit again is a no-op, not a clear.
	s.IngestBytes([]byte("a=1\n"))
	s.SetTimeUnit(model.TimeUnitMilliseconds)
	if snap := s.Snapshot(); len(snap.Series) != 1 {
		t.Error("setting the already-active unit should not clear")
	}
}

func TestToggleSeriesVisibility(t *testing.T) {
	t.Parallel()
	s := newTestSession()

	s.IngestBytes([]byte("a=1\n"))
	s.ToggleSeriesVisibility(0)
	if s.Snapshot().Appearances[0].Visible {
		t.Error("toggle should hide the series")
	}
	s.ToggleSeriesVisibility(0)
	if !s.Snapshot().Appearances[0].Visible {
		t.Error("second toggle should show the series again")
	}

	// Out of range is ignored.
	s.ToggleSeriesVisibility(99)
	s.ToggleSeriesVisibility(-1)
}

func TestUniqueColors(t *testing.T) {
	t.Parallel()
	seen := map[string]bool{}
	const n = 12
	for i := 0; i < n; i++ {
		c := uniqueColorInList(i, n)
		if len(c) != 7 || c[0] != '#' {
			t.Fatalf("color %d = %q, want #rrggbb", i, c)
		}
		if seen[c] {
			t.Errorf("color %q assigned twice", c)
		}
		seen[c] = true
	}
}
