package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgress_EmitsOnStepCrossing(t *testing.T) {
	var got []int64
	p := &Progress{Step: 10, Emit: func(s Status) { got = append(got, s.Total) }}

	total := int64(0)
	for _, n := range []int64{4, 4, 4, 25, 1} {
		total = p.Report("s", total, n)
	}
	assert.Equal(t, int64(38), total)
	assert.Equal(t, []int64{12, 37}, got)
}

func TestProgress_Threshold(t *testing.T) {
	var got []int64
	p := &Progress{Step: 10, Threshold: 25, Emit: func(s Status) { got = append(got, s.Total) }}
	total := int64(0)
	for i := 0; i < 4; i++ {
		total = p.Report("s", total, 10)
	}
	assert.Equal(t, []int64{30, 40}, got)
}

func TestProgress_DefaultsAndNil(t *testing.T) {
	var got int
	p := &Progress{Emit: func(Status) { got++ }}
	p.Report("s", 1000, 100)
	assert.Equal(t, 1, got)

	var none *Progress
	assert.Equal(t, int64(7), none.Report("s", 3, 4))
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "received 2.0 kB", Status{Total: 2000}.String())
}
