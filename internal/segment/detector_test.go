package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetector_Literal(t *testing.T) {
	d := MustDetector(DefaultPrompt)
	require.NotNil(t, d.literal)

	start, end, ok := d.Find([]byte("<p>x</p>\nSQL> "))
	require.True(t, ok)
	assert.Equal(t, 9, start)
	assert.Equal(t, 14, end)

	_, _, ok = d.Find([]byte("SQL> select 1 from dual;"))
	assert.False(t, ok, "prompt not at end of input")

	start, end, ok = d.Find([]byte("SQL> "))
	require.True(t, ok)
	assert.Equal(t, 0, start)
	assert.Equal(t, 5, end)

	_, _, ok = d.Find(nil)
	assert.False(t, ok)
}

func TestDetector_Regexp(t *testing.T) {
	d, err := NewDetector(`(?m)^\s*\d+> `)
	require.NoError(t, err)
	assert.Nil(t, d.literal)

	start, end, ok := d.Find([]byte("rows\n  12> "))
	require.True(t, ok)
	assert.Equal(t, 5, start)
	assert.Equal(t, 11, end)

	_, _, ok = d.Find([]byte("12> more"))
	assert.False(t, ok)
}

func TestDetector_Invalid(t *testing.T) {
	_, err := NewDetector("")
	assert.Error(t, err)
	_, err = NewDetector("(")
	assert.Error(t, err)
	// unbalanced groups that only compile once wrapped
	for _, p := range []string{"a)(b", "x)|(?:y"} {
		assert.NotPanics(t, func() {
			_, err = NewDetector(p)
		}, p)
		assert.Error(t, err, p)
	}
	assert.Panics(t, func() { MustDetector("(") })
}
