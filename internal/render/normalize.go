package render

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// Normalize strips trailing newline and carriage-return characters and
// collapses leading blank lines so that at most one remains. Text made only of
// whitespace normalizes to "". Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	s = strings.TrimRight(s, "\r\n")
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	blank := 0
	for blank < len(lines) && strings.TrimSpace(lines[blank]) == "" {
		blank++
	}
	if blank == len(lines) {
		return ""
	}
	if blank > 0 {
		lines = lines[blank-1:]
		lines[0] = ""
	}
	return strings.Join(lines, "\n")
}

// StripIndent removes up to n leading spaces from every line.
func StripIndent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		k := 0
		for k < n && k < len(ln) && ln[k] == ' ' {
			k++
		}
		lines[i] = ln[k:]
	}
	return strings.Join(lines, "\n")
}

// finish applies the post-processing every external backend shares.
func finish(out string, indent int) string {
	out = xansi.Strip(out)
	out = strings.ReplaceAll(out, "\r\n", "\n")
	return Normalize(StripIndent(out, indent))
}
