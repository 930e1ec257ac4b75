package mixer

import (
	"sync"

	"github.com/user/videomix/pkg/video"
)

// qosState holds the latest downstream quality-of-service observation. It
// has its own lock: feedback arrives on the event thread and must never
// wait behind a full aggregation cycle.
type qosState struct {
	mu         sync.Mutex
	proportion float64
	earliest   video.ClockTime
	// interval is one output frame duration, refreshed on negotiation so
	// updates don't have to reach into mixer state.
	interval video.ClockTime
}

// update records a QoS observation. A positive diff means downstream ran
// late by that much; the next acceptable timestamp then jumps ahead by
// twice the lateness plus one output interval.
func (q *qosState) update(proportion float64, diff int64, timestamp video.ClockTime) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.proportion = proportion
	if !timestamp.IsValid() {
		q.earliest = video.ClockTimeNone
		return
	}
	if diff > 0 {
		earliest := timestamp + 2*video.ClockTime(diff)
		if q.interval.IsValid() {
			earliest += q.interval
		}
		q.earliest = earliest
	} else {
		q.earliest = video.ClockTime(int64(timestamp) + diff)
	}
}

// reset clears the observation back to the no-information state.
func (q *qosState) reset(interval video.ClockTime) {
	q.mu.Lock()
	q.proportion = 0.5
	q.earliest = video.ClockTimeNone
	q.interval = interval
	q.mu.Unlock()
}

// read snapshots the observation for one aggregation cycle.
func (q *qosState) read() (float64, video.ClockTime) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.proportion, q.earliest
}
