package segment

import (
	"bytes"
	"fmt"
	"regexp"
)

// DefaultPrompt is the SQL*Plus prompt.
const DefaultPrompt = "SQL> "

// Detector recognizes the prompt that terminates a response unit. A match
// only counts when it ends exactly at the end of the scanned text, which
// means nothing has arrived after the prompt and the whole text is one unit.
type Detector struct {
	pattern string
	re      *regexp.Regexp
	// literal is set when the pattern has no metacharacters; matching is then
	// a suffix comparison.
	literal []byte
}

// NewDetector compiles pattern (RE2 syntax) anchored at end of input.
func NewDetector(pattern string) (*Detector, error) {
	if pattern == "" {
		return nil, fmt.Errorf("empty prompt pattern")
	}
	// Compile alone first: wrapping can rebalance a pattern like "a)(b".
	bare, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile prompt pattern %q: %w", pattern, err)
	}
	re, err := regexp.Compile(`(?:` + pattern + `)\z`)
	if err != nil {
		return nil, fmt.Errorf("compile prompt pattern %q: %w", pattern, err)
	}
	d := &Detector{pattern: pattern, re: re}
	if lit, complete := bare.LiteralPrefix(); complete && lit != "" {
		d.literal = []byte(lit)
	}
	return d, nil
}

// MustDetector is NewDetector for patterns known to be valid.
func MustDetector(pattern string) *Detector {
	d, err := NewDetector(pattern)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Detector) Pattern() string { return d.pattern }

// Find reports the span of the prompt when text ends with it. On success
// end == len(text).
func (d *Detector) Find(text []byte) (start, end int, ok bool) {
	if d.literal != nil {
		if bytes.HasSuffix(text, d.literal) {
			return len(text) - len(d.literal), len(text), true
		}
		return 0, 0, false
	}
	loc := d.re.FindIndex(text)
	if loc == nil {
		return 0, 0, false
	}
	return loc[0], loc[1], true
}
