package model

import "fmt"

// TimeUnit is the unit a device expresses its time field in.
// Received time values are converted to seconds before they reach a series.
type TimeUnit string

const (
	TimeUnitMicroseconds TimeUnit = "us"
	TimeUnitMilliseconds TimeUnit = "ms"
	TimeUnitSeconds      TimeUnit = "s"
)

// ParseTimeUnit converts a config string into a TimeUnit.
func ParseTimeUnit(s string) (TimeUnit, error) {
	switch TimeUnit(s) {
	case TimeUnitMicroseconds, TimeUnitMilliseconds, TimeUnitSeconds:
		return TimeUnit(s), nil
	default:
		return TimeUnitSeconds, fmt.Errorf("unknown time unit %q (want us, ms or s)", s)
	}
}

func (u TimeUnit) String() string { return string(u) }

// ConvertToSecs converts a value expressed in this unit to seconds.
func (u TimeUnit) ConvertToSecs(val float64) float64 {
	switch u {
	case TimeUnitMicroseconds:
		return val / 1_000_000.0
	case TimeUnitMilliseconds:
		return val / 1000.0
	default:
		return val
	}
}

// ConvertFromSecs converts seconds into this unit.
func (u TimeUnit) ConvertFromSecs(secs float64) float64 {
	switch u {
	case TimeUnitMicroseconds:
		return secs * 1_000_000.0
	case TimeUnitMilliseconds:
		return secs * 1000.0
	default:
		return secs
	}
}
