package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVersion(t *testing.T) {
	cases := map[string]string{
		"w3m version w3m/0.5.3+git20230121, options lang=en": "0.5.3+git20230121",
		"Lynx Version 2.9.0dev.12 (27 Jan 2023)\nmore":       "2.9.0dev.12",
		"pandoc 3.1.3\nFeatures: +server":                    "3.1.3",
		"Links 2.29":                                         "2.29",
		"no version here":                                    "",
		"":                                                   "",
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseVersion(in), in)
	}
}

func TestLookup(t *testing.T) {
	ti, ok := Lookup("links2")
	assert.True(t, ok)
	assert.Equal(t, ToolLinks, ti.ID)

	_, ok = Lookup("mystery")
	assert.False(t, ok)
}

func TestCheckCommand(t *testing.T) {
	if !Installed("sh") {
		t.Skip("sh not available")
	}
	res := CheckCommand(context.Background(), "sh")
	assert.True(t, res.Installed)
	assert.NotEmpty(t, res.Path)

	res = CheckCommand(context.Background(), "definitely-not-a-renderer-xyz")
	assert.False(t, res.Installed)
	assert.NotEmpty(t, res.Err)
	assert.False(t, Installed("definitely-not-a-renderer-xyz"))
}
