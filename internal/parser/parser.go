// Package parser turns the raw byte stream of a serial device into
// timestamped samples grouped by field position.
//
// Devices print newline-terminated lines of separator-delimited fields,
// optionally named ("sin=0.42") and optionally carrying a time field
// ("time=100"). Malformed fields are dropped silently; line noise never
// fails a call.
package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/tinytelemetry/splot/internal/model"
)

// Result holds everything one Parse call produced. It is consumed by the
// ingestion pipeline immediately and then discarded.
type Result struct {
	// Lines are the raw complete lines, newline included, for the monitor echo.
	Lines []string
	// SamplesByPos groups new samples by field position. The position is the
	// field's index after splitting a line on the separator; a time field
	// occupies its split slot but never emits into it, so its inner list
	// stays empty.
	SamplesByPos [][]model.Sample
	// NewSamples counts emitted samples. Time fields and unparseable fields
	// do not count.
	NewSamples uint64
}

// Parser converts raw device bytes into per-position samples. It keeps the
// unconsumed remainder of the byte stream between calls, so chunks may split
// lines at arbitrary points.
type Parser struct {
	asm Assembler
}

// Clear discards all accumulated byte state.
func (p *Parser) Clear() {
	p.asm.Clear()
}

// Parse feeds data to the line assembler and parses every completed line.
// unit is the unit incoming time fields are expressed in, sep the field
// separator and start the session reference for lines without a time field.
//
// Individual malformed fields are dropped without error; Parse itself is
// total.
func (p *Parser) Parse(data []byte, unit model.TimeUnit, sep rune, start time.Time) *Result {
	lines, _ := p.asm.Feed(data)

	res := &Result{Lines: lines}

	// Until a time field is seen, samples carry the elapsed session time.
	// A received time sticks for all samples after it, across lines of the
	// same call.
	lineTime := time.Since(start).Seconds()

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		for i, field := range strings.Split(line, string(sep)) {
			name, valueText, hasName := splitNameValue(field)

			value, ok := parseValueText(valueText)
			if !ok {
				continue
			}

			if hasName && (name == "time" || name == "t") {
				lineTime = unit.ConvertToSecs(value)
				continue
			}

			for len(res.SamplesByPos) <= i {
				res.SamplesByPos = append(res.SamplesByPos, nil)
			}
			res.SamplesByPos[i] = append(res.SamplesByPos[i], model.Sample{
				Time:  lineTime,
				Value: value,
				Name:  name,
			})
			res.NewSamples++
		}
	}

	return res
}

// splitNameValue separates an optional "name=" prefix from the value text.
// Only the first '=' delimits; everything after it is value text.
func splitNameValue(field string) (name, valueText string, hasName bool) {
	before, after, found := strings.Cut(field, "=")
	if !found {
		return "", field, false
	}
	return strings.TrimSpace(before), after, true
}

// parseValueText strips every character that cannot be part of a number and
// parses the rest. Stripping first keeps values like "0.42V" or values
// wrapped in stray control characters usable.
func parseValueText(s string) (float64, bool) {
	var b strings.Builder
	for _, c := range s {
		if (c >= '0' && c <= '9') || c == '-' || c == '.' {
			b.WriteRune(c)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
