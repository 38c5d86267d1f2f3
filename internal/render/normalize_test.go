package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"trailing newlines", "abc\n\n\r\n", "abc"},
		{"single leading blank kept", "\nabc", "\nabc"},
		{"leading blanks collapsed", "\n\n  \n\nabc\ndef\n", "\nabc\ndef"},
		{"whitespace only", " \n\t\n", ""},
		{"inner blanks untouched", "a\n\n\nb", "a\n\n\nb"},
		{"crlf", "\r\n\r\nrow\r\n", "\nrow"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, Normalize(got), "normalize must be idempotent")
		})
	}
}

func TestStripIndent(t *testing.T) {
	assert.Equal(t, "a\n b\nc\n", StripIndent("   a\n    b\n c\n", 3))
	assert.Equal(t, "  x", StripIndent("  x", 0))
}

func TestFinishStripsEscapes(t *testing.T) {
	got := finish("\x1b[1mID\x1b[0m\r\n   1\r\n\r\n", 3)
	assert.Equal(t, "ID\n1", got)
}
