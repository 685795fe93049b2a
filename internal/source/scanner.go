package source

import (
	"bytes"
)

// lineScanner iterates over the lines of a buffer without splitting it
// up front. Lines are reported without their trailing \n or \r\n.
//
// A final newline does not open an extra empty line, so "a\n" scans as one
// line and an empty buffer scans as none.
type lineScanner struct {
	data    []byte
	start   int // Start of current line
	end     int // End of current line (exclusive, before newline)
	pos     int // Current position in data
	lineNum int // Current line number (1-based)
}

func newLineScanner(data []byte) *lineScanner {
	return &lineScanner{data: data}
}

// Scan advances to the next line. Returns false when done.
func (ls *lineScanner) Scan() bool {
	if ls.pos >= len(ls.data) {
		return false
	}

	ls.start = ls.pos
	ls.lineNum++

	idx := bytes.IndexByte(ls.data[ls.pos:], '\n')
	if idx < 0 {
		// Last line without trailing newline
		ls.end = len(ls.data)
		ls.pos = len(ls.data)
	} else {
		ls.end = ls.pos + idx
		ls.pos = ls.pos + idx + 1
	}

	// CRLF
	if ls.end > ls.start && ls.data[ls.end-1] == '\r' {
		ls.end--
	}

	return true
}

// Text returns the current line as a string.
func (ls *lineScanner) Text() string {
	return string(ls.data[ls.start:ls.end])
}

// LineNumber returns the current line number (1-based).
func (ls *lineScanner) LineNumber() int {
	return ls.lineNum
}

// countLines counts lines the same way Scan does, for pre-allocation.
func countLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	newlines := bytes.Count(data, []byte{'\n'})
	if data[len(data)-1] != '\n' {
		return newlines + 1
	}
	return newlines
}
