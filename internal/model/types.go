package model

// Sample is a single measured value extracted from one device line.
// It is immutable after construction and owned by the history buffer
// that stores it.
type Sample struct {
	Time  float64 // seconds; device time when the line carried a time field, elapsed session time otherwise
	Value float64
	Name  string // field name from a "name=value" pair, "" when the field was bare
}

// SeriesAppearance is per-series display metadata. The appearance list is
// index-aligned 1:1 with the series list at all times.
type SeriesAppearance struct {
	Name    string
	Visible bool
	Color   string // hex color understood by lipgloss, e.g. "#f2e755"
}

// NewSeriesAppearance creates an appearance with the default visibility.
// The color is assigned by the next recolor pass.
func NewSeriesAppearance(name string) SeriesAppearance {
	return SeriesAppearance{
		Name:    name,
		Visible: true,
		Color:   "#0000ff",
	}
}
