package mixer

import "github.com/user/videomix/pkg/video"

// UpdateQoS records downstream quality-of-service feedback. proportion is
// the observed consumption rate, diff the lateness in nanoseconds
// (positive when the frame arrived late) and timestamp the running time
// of the observed frame. Safe to call from any thread.
func (m *Mixer) UpdateQoS(proportion float64, diff int64, timestamp video.ClockTime) {
	m.qos.update(proportion, diff, timestamp)
}

// Seek prepares the mixer for a new playback position. With flush set it
// pushes flush-start downstream immediately and arms a flush-stop that the
// next aggregation cycle (or HandleFlushStop) delivers exactly once.
func (m *Mixer) Seek(flush bool, position video.ClockTime) {
	if flush {
		m.sink.PushFlushStart()
	}

	if !position.IsValid() {
		position = 0
	}

	m.mu.Lock()
	m.segmentPosition = position
	m.sendSegment = true
	m.qos.reset(video.FrameDuration(m.fps))
	m.mu.Unlock()

	if flush {
		m.flushStopPending.Store(true)
	}
	m.log.Debug("seek to %s (flush=%v)", position, flush)
}

// HandleFlushStop processes a flush-stop arriving on a port: the port's
// held frame and queued accounting are discarded, the output segment is
// re-armed, and any pending flush-stop is delivered downstream now rather
// than waiting for the next cycle.
func (m *Mixer) HandleFlushStop(id int) error {
	m.mu.Lock()
	p, ok := m.portLocked(id)
	if !ok {
		m.mu.Unlock()
		return ErrUnknownPort
	}
	if p.frame != nil {
		m.source.Pop(p.ID)
	}
	p.clear()
	m.sendSegment = true
	m.qos.reset(video.FrameDuration(m.fps))
	m.mu.Unlock()

	if m.flushStopPending.CompareAndSwap(true, false) {
		m.sink.PushFlushStop()
	}
	return nil
}

// HandleSegment applies a new timing segment announced on a port. A
// segment on the master port re-arms the downstream segment announcement
// and invalidates the QoS observation, since running times restart.
func (m *Mixer) HandleSegment(id int, seg video.Segment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.portLocked(id)
	if !ok {
		return ErrUnknownPort
	}
	p.segment = seg
	if m.master == nil || p == m.master {
		m.sendSegment = true
		m.qos.reset(video.FrameDuration(m.fps))
	}
	return nil
}
