package parser

import (
	"bytes"
	"strings"
)

// Assembler accumulates raw device chunks and hands out complete
// newline-terminated lines. Bytes belonging to an unterminated trailing line
// stay buffered until a later chunk completes the line.
type Assembler struct {
	buf []byte
}

// Feed appends chunk to the buffered state and extracts every complete line.
// Returned lines keep their trailing newline. consumed is the raw byte count
// of the extracted lines; the unterminated tail is retained and not counted.
// Invalid UTF-8 inside a completed line is stripped rather than failing the
// scan (serial links produce line noise), but the bad bytes still count as
// consumed.
func (a *Assembler) Feed(chunk []byte) (lines []string, consumed int) {
	a.buf = append(a.buf, chunk...)

	for {
		idx := bytes.IndexByte(a.buf[consumed:], '\n')
		if idx < 0 {
			break
		}
		raw := a.buf[consumed : consumed+idx+1]
		lines = append(lines, strings.ToValidUTF8(string(raw), ""))
		consumed += idx + 1
	}

	// Drain exactly the bytes of the extracted lines.
	a.buf = a.buf[:copy(a.buf, a.buf[consumed:])]

	return lines, consumed
}

// Clear drops all buffered bytes.
func (a *Assembler) Clear() {
	a.buf = a.buf[:0]
}

// Pending returns how many buffered bytes are not yet part of a complete line.
func (a *Assembler) Pending() int {
	return len(a.buf)
}
