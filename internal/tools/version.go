package tools

import (
	"regexp"
	"strings"
)

// verRe accepts both dotted triples (lynx 2.9.0dev.12) and pairs (w3m/0.5.3+git).
var verRe = regexp.MustCompile(`(?i)\bv?(\d+\.\d+(?:\.\d+)?(?:[\w\.\+-]+)?)`)

// ParseVersion extracts the first version-looking token, preferring the
// first line of s.
func ParseVersion(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	line := strings.Split(s, "\n")[0]
	if m := verRe.FindStringSubmatch(line); len(m) > 1 {
		return m[1]
	}
	if m := verRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return ""
}
