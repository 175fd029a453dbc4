// Package ingest drives the reassemble-parse-merge pipeline and owns the
// bounded per-position sample histories the display layer reads.
package ingest

import (
	"fmt"
	"sync"
	"time"

	"github.com/tinytelemetry/splot/internal/history"
	"github.com/tinytelemetry/splot/internal/model"
	"github.com/tinytelemetry/splot/internal/parser"
)

// Config holds the session parameters the parser and the buffers need.
type Config struct {
	TimeUnit       model.TimeUnit
	ValueSeparator rune
	SampleBuffer   int // per-series history capacity
	MonitorBuffer  int // raw-line echo capacity

	// Observer, when set, receives every merged sample (the session
	// recorder). Called with the session lock held; must not call back.
	Observer SampleObserver
}

// SampleObserver consumes samples as they are merged into a series.
type SampleObserver interface {
	ObserveSample(position int, sample model.Sample)
}

// Session is the per-connection mutable state: one bounded history per field
// position, index-aligned display metadata, the raw-line echo and the
// running sample counter. All access goes through one mutex; the display
// layer reads copies via Snapshot.
type Session struct {
	mu          sync.Mutex
	cfg         Config
	start       time.Time
	parser      parser.Parser
	series      []*history.Buffer[model.Sample]
	appearances []model.SeriesAppearance
	monitor     *history.Buffer[string]
	received    uint64
}

// Snapshot is a consistent copy of the session state for one display refresh.
type Snapshot struct {
	Series          [][]model.Sample
	Appearances     []model.SeriesAppearance
	MonitorLines    []string
	SamplesReceived uint64
	Start           time.Time
}

// NewSession creates an empty session. Series are created lazily as field
// positions first appear in the stream.
func NewSession(cfg Config) *Session {
	if cfg.TimeUnit == "" {
		cfg.TimeUnit = model.DefaultTimeUnit
	}
	if cfg.ValueSeparator == 0 {
		cfg.ValueSeparator = model.DefaultValueSeparator
	}
	if cfg.SampleBuffer <= 0 {
		cfg.SampleBuffer = model.DefaultSampleBuffer
	}
	if cfg.MonitorBuffer <= 0 {
		cfg.MonitorBuffer = model.DefaultMonitorBuffer
	}
	return &Session{
		cfg:     cfg,
		start:   time.Now(),
		monitor: history.New[string](cfg.MonitorBuffer),
	}
}

// IngestBytes runs one reassemble-parse-merge step over newly arrived raw
// bytes. Per-field parse misses are silent; an error here is catastrophic
// parser failure, after which the parser state has been discarded and the
// next call starts clean.
func (s *Session) IngestBytes(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.parse(data)
	if err != nil {
		s.parser.Clear()
		return err
	}

	for _, line := range res.Lines {
		s.monitor.Push(line)
	}

	if res.NewSamples == 0 {
		return nil
	}

	grew := false
	for i, newSamples := range res.SamplesByPos {
		if i >= len(s.series) && len(newSamples) == 0 {
			continue
		}
		for i >= len(s.series) {
			// Only the position the samples land on takes their name; gap
			// positions get the placeholder.
			var seed []model.Sample
			if len(s.series) == i {
				seed = newSamples
			}
			s.growSeries(seed)
			grew = true
		}
		for _, sample := range newSamples {
			s.series[i].Push(sample)
			if s.cfg.Observer != nil {
				s.cfg.Observer.ObserveSample(i, sample)
			}
		}
	}
	if grew {
		recolorAppearances(s.appearances)
	}

	s.received += res.NewSamples
	return nil
}

// parse isolates the parser call so a panic inside it surfaces as the
// catastrophic-failure error instead of killing the session.
func (s *Session) parse(data []byte) (res *parser.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ingest: parser failure: %v", r)
		}
	}()
	return s.parser.Parse(data, s.cfg.TimeUnit, s.cfg.ValueSeparator, s.start), nil
}

// growSeries appends one series and its appearance. The appearance is seeded
// from the first named sample headed for it, or a placeholder showing the
// position index.
func (s *Session) growSeries(newSamples []model.Sample) {
	i := len(s.series)
	name := ""
	if len(newSamples) > 0 {
		name = newSamples[0].Name
	}
	if name == "" {
		name = fmt.Sprintf("Samples %02d", i)
	}
	s.series = append(s.series, history.New[model.Sample](s.cfg.SampleBuffer))
	s.appearances = append(s.appearances, model.NewSeriesAppearance(name))
}

// Reset clears all series, appearances, the monitor echo, the counter and
// the parser's buffered bytes, and restarts the session clock.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	s.start = time.Now()
}

func (s *Session) clearLocked() {
	s.series = nil
	s.appearances = nil
	s.monitor.Clear()
	s.received = 0
	s.parser.Clear()
}

// RestartClock resets the wall-clock reference, e.g. after a successful
// connect.
func (s *Session) RestartClock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.start = time.Now()
}

// SetTimeUnit changes the unit incoming time fields are expressed in.
// Existing histories mix units after a change, so they are cleared.
func (s *Session) SetTimeUnit(u model.TimeUnit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u == s.cfg.TimeUnit {
		return
	}
	s.cfg.TimeUnit = u
	s.clearLocked()
}

// SetValueSeparator changes the field separator and clears, since position
// assignment depends on it.
func (s *Session) SetValueSeparator(sep rune) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sep == s.cfg.ValueSeparator {
		return
	}
	s.cfg.ValueSeparator = sep
	s.clearLocked()
}

// TimeUnit returns the current time unit.
func (s *Session) TimeUnit() model.TimeUnit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.TimeUnit
}

// ToggleSeriesVisibility flips whether series i is drawn.
func (s *Session) ToggleSeriesVisibility(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.appearances) {
		return
	}
	s.appearances[i].Visible = !s.appearances[i].Visible
}

// Snapshot copies the current state for the display layer.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Series:          make([][]model.Sample, len(s.series)),
		Appearances:     append([]model.SeriesAppearance(nil), s.appearances...),
		MonitorLines:    s.monitor.Slice(),
		SamplesReceived: s.received,
		Start:           s.start,
	}
	for i, buf := range s.series {
		snap.Series[i] = buf.Slice()
	}
	return snap
}

// SamplesReceived returns the running total of ingested samples.
func (s *Session) SamplesReceived() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.received
}
