package ports

import "github.com/user/videomix/pkg/video"

// FrameSource delivers timestamped input frames per port. Implementations
// must be non-blocking: the mixer is only invoked once every active port
// has data queued or has reached end-of-stream.
type FrameSource interface {
	// Peek returns the current head frame of the port without consuming
	// it, or nil when the port has no data (end-of-stream or starved).
	// Repeated calls return the same frame until Pop is called.
	Peek(port int) *video.Frame

	// Pop consumes and returns the head frame of the port, or nil.
	Pop(port int) *video.Frame
}

// FrameSink accepts the mixer's downstream output: composited frames and
// the events that frame the stream.
type FrameSink interface {
	// AnnounceCaps is called whenever the negotiated output tuple
	// (format, geometry, rate, par) changes, before the next frame.
	AnnounceCaps(caps video.Caps) error

	// Push hands a finished output frame downstream. The sink owns the
	// frame afterwards.
	Push(frame *video.Frame) error

	// PushSegment announces the timing segment mapping the following
	// frames' timestamps to running time.
	PushSegment(segment video.Segment)

	// PushEOS signals that no further frames will be produced.
	PushEOS()

	// PushFlushStart and PushFlushStop bracket a flushing seek.
	PushFlushStart()
	PushFlushStop()
}

// PropertyController optionally interpolates a port's externally driven
// properties. When set on a port, the mixer calls Sync with the current
// frame's stream time right before sampling placement and opacity.
type PropertyController interface {
	Sync(streamTime video.ClockTime)
}
