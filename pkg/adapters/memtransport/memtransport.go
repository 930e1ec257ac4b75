// Package memtransport provides in-memory frame transport: a per-port FIFO
// source feeding the mixer and a recording sink collecting its output. It
// backs the CLI driver and integration tests, where streams are generated
// up front rather than arriving over a live pipeline.
package memtransport

import (
	"sync"

	"github.com/user/videomix/pkg/ports"
	"github.com/user/videomix/pkg/video"
)

// Source is an in-memory frame source with one FIFO queue per port.
type Source struct {
	mu     sync.Mutex
	queues map[int][]*video.Frame
}

// NewSource creates an empty source.
func NewSource() *Source {
	return &Source{queues: map[int][]*video.Frame{}}
}

// Send appends a frame to the port's queue.
func (s *Source) Send(port int, frame *video.Frame) {
	s.mu.Lock()
	s.queues[port] = append(s.queues[port], frame)
	s.mu.Unlock()
}

// Peek returns the port's head frame without consuming it, or nil when the
// queue is empty.
func (s *Source) Peek(port int) *video.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.queues[port]
	if len(q) == 0 {
		return nil
	}
	return q[0]
}

// Pop consumes and returns the port's head frame, or nil.
func (s *Source) Pop(port int) *video.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.queues[port]
	if len(q) == 0 {
		return nil
	}
	f := q[0]
	s.queues[port] = q[1:]
	return f
}

// Len returns the number of queued frames on a port.
func (s *Source) Len(port int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queues[port])
}

// Sink records everything the mixer pushes downstream. When a snapshot
// sink is attached, every output frame is also saved through it.
type Sink struct {
	mu        sync.Mutex
	caps      []video.Caps
	frames    []*video.Frame
	segments  []video.Segment
	eos       bool
	snapshots ports.SnapshotSink
}

// NewSink creates a recording sink. snapshots may be nil.
func NewSink(snapshots ports.SnapshotSink) *Sink {
	return &Sink{snapshots: snapshots}
}

// AnnounceCaps records a caps change.
func (s *Sink) AnnounceCaps(caps video.Caps) error {
	s.mu.Lock()
	s.caps = append(s.caps, caps)
	s.mu.Unlock()
	return nil
}

// Push records an output frame and forwards it to the snapshot sink.
func (s *Sink) Push(frame *video.Frame) error {
	s.mu.Lock()
	index := len(s.frames)
	s.frames = append(s.frames, frame)
	snapshots := s.snapshots
	s.mu.Unlock()

	if snapshots != nil && snapshots.Enabled() {
		if err := snapshots.SaveFrame(index, frame); err != nil {
			return err
		}
	}
	return nil
}

// PushSegment records a segment announcement.
func (s *Sink) PushSegment(segment video.Segment) {
	s.mu.Lock()
	s.segments = append(s.segments, segment)
	s.mu.Unlock()
}

// PushEOS records the end of stream.
func (s *Sink) PushEOS() {
	s.mu.Lock()
	s.eos = true
	s.mu.Unlock()
}

// PushFlushStart is recorded but otherwise ignored; the queues live
// upstream of this sink.
func (s *Sink) PushFlushStart() {}

// PushFlushStop is ignored, matching PushFlushStart.
func (s *Sink) PushFlushStop() {}

// Frames returns the recorded output frames in push order.
func (s *Sink) Frames() []*video.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*video.Frame(nil), s.frames...)
}

// Caps returns the recorded caps announcements in order.
func (s *Sink) Caps() []video.Caps {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]video.Caps(nil), s.caps...)
}

// Segments returns the recorded segment announcements in order.
func (s *Sink) Segments() []video.Segment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]video.Segment(nil), s.segments...)
}

// EOS reports whether the end of stream was pushed.
func (s *Sink) EOS() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eos
}
