// Package scan tells barcode scanner bursts apart from human typing.
//
// A scanner emits the characters of a code in rapid succession followed by
// Enter. Characters separated by less than the gap belong to the same code;
// a slower keystroke starts a new one.
package scan

import (
	"time"
)

// DefaultGap is the longest pause between keystrokes of one scan.
const DefaultGap = 100 * time.Millisecond

// KeyEnter terminates a scan.
const KeyEnter = "Enter"

// Key is a keystroke observed by the terminal.
type Key struct {
	Value string
	At    time.Time

	// InFormControl is set when the keystroke targets a text input, select or
	// text area; such keys belong to the form, not to the scanner.
	InFormControl bool
	Ctrl          bool
	Meta          bool
	Alt           bool
}

// Scanner accumulates keystrokes into codes. It is not safe for concurrent use.
type Scanner struct {
	gap  time.Duration
	buf  []byte
	last time.Time
}

// New creates a Scanner. A non-positive gap selects DefaultGap.
func New(gap time.Duration) *Scanner {
	if gap <= 0 {
		gap = DefaultGap
	}
	return &Scanner{gap: gap}
}

// Feed consumes k and returns a completed code when k is Enter and the buffer
// is not empty. Keys in form controls or with a modifier held are ignored.
func (s *Scanner) Feed(k Key) (string, bool) {
	if k.InFormControl || k.Ctrl || k.Meta || k.Alt {
		return "", false
	}
	if k.Value == KeyEnter {
		code := string(s.buf)
		s.buf = s.buf[:0]
		return code, code != ""
	}
	if len(k.Value) != 1 || !isAlnum(k.Value[0]) {
		return "", false
	}
	if s.last.IsZero() || k.At.Sub(s.last) >= s.gap {
		s.buf = s.buf[:0]
	}
	s.buf = append(s.buf, k.Value[0])
	s.last = k.At
	return "", false
}

// Pending returns the characters accumulated so far.
func (s *Scanner) Pending() string { return string(s.buf) }

// Reset drops any partial code.
func (s *Scanner) Reset() {
	s.buf = s.buf[:0]
	s.last = time.Time{}
}

func isAlnum(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
