package segment

import (
	"fmt"

	humanize "github.com/dustin/go-humanize"
)

// DefaultProgressStep is the byte interval between status updates.
const DefaultProgressStep = 1024

// Status is a best-effort progress update for one session.
type Status struct {
	Session string
	Total   int64
}

func (s Status) String() string {
	if s.Total < 0 {
		return "received 0 B"
	}
	return fmt.Sprintf("received %s", humanize.Bytes(uint64(s.Total)))
}

// Progress emits a Status each time the cumulative byte count crosses a Step
// multiple, once the count exceeds Threshold. It never affects routing.
type Progress struct {
	Step      int64
	Threshold int64
	Emit      func(Status)
}

// Report adds n to prev and returns the new total, emitting when due.
func (p *Progress) Report(session string, prev, n int64) int64 {
	total := prev + n
	if p == nil || p.Emit == nil {
		return total
	}
	step := p.Step
	if step <= 0 {
		step = DefaultProgressStep
	}
	if total > p.Threshold && total/step > prev/step {
		p.Emit(Status{Session: session, Total: total})
	}
	return total
}
