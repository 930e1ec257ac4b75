// Package mixer implements the frame aggregation, synchronization and
// compositing core: it tracks per-port buffering against the master clock,
// decides when an output frame can be produced, and blends the ports'
// frames in z-order onto a background fill.
package mixer

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/user/videomix/pkg/blend"
	"github.com/user/videomix/pkg/ports"
	"github.com/user/videomix/pkg/scale"
	"github.com/user/videomix/pkg/video"
)

// Options configures a Mixer.
type Options struct {
	Background Background
	Method     scale.Method
	Logger     ports.Logger
}

// Mixer composites N independently-timed input streams into one output
// stream. One aggregation cycle runs per Collect call, on the transport
// layer's worker thread; QoS feedback and events may arrive concurrently
// on other threads.
type Mixer struct {
	source ports.FrameSource
	sink   ports.FrameSink
	log    ports.Logger

	// mu is the state lock: port registry, geometry, master selection and
	// per-port properties. Held for the whole aggregation cycle.
	mu       sync.Mutex
	ports    []*Port // sorted by z-order, ascending
	nextPort int

	format video.PixelFormat
	ops    *blend.Ops

	background Background
	method     scale.Method

	master      *Port
	negotWidth  int
	negotHeight int
	outWidth    int
	outHeight   int
	fps         video.Fraction
	par         video.Fraction
	sendCaps    bool
	sendSegment bool

	segment         video.Segment
	segmentPosition video.ClockTime

	lastTS       video.ClockTime
	lastDuration video.ClockTime

	qos              qosState
	flushStopPending atomic.Bool
}

// New creates a Mixer reading from source and writing to sink.
func New(source ports.FrameSource, sink ports.FrameSink, opts Options) *Mixer {
	log := opts.Logger
	if log == nil {
		log = noopLogger{}
	}
	m := &Mixer{
		source:     source,
		sink:       sink,
		log:        log.WithComponent("mixer"),
		background: opts.Background,
		method:     opts.Method,
		par:        video.Fract(1, 1),
	}
	m.reset()
	return m
}

// SetBackground changes the background fill for subsequent cycles.
func (m *Mixer) SetBackground(b Background) {
	m.mu.Lock()
	m.background = b
	m.mu.Unlock()
}

// SetMethod changes the scaling method for subsequent cycles.
func (m *Mixer) SetMethod(method scale.Method) {
	m.mu.Lock()
	m.method = method
	m.mu.Unlock()
}

// LastTimestamp returns the running time the mixer has produced up to.
func (m *Mixer) LastTimestamp() video.ClockTime {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastTS
}

func (m *Mixer) reset() {
	m.negotWidth, m.negotHeight = 0, 0
	m.outWidth, m.outHeight = 0, 0
	m.fps = video.Fraction{}
	m.par = video.Fract(1, 1)
	m.sendCaps = false
	m.sendSegment = false
	m.segment = video.NewSegment()
	m.segmentPosition = 0
	m.qos.reset(video.ClockTimeNone)
	m.format = video.FormatUnknown
	m.ops = nil
	m.master = nil
	m.lastTS = 0
	m.lastDuration = video.ClockTimeNone
	for _, p := range m.ports {
		p.clear()
	}
	m.flushStopPending.Store(false)
}

// Stop tears the streaming state down to defaults. Registered ports stay,
// but their held frames, counters and the negotiated output are cleared.
func (m *Mixer) Stop() {
	m.mu.Lock()
	m.reset()
	m.mu.Unlock()
}

// Collect runs one aggregation cycle. The transport layer calls it once
// data (or end-of-stream) is available on every active port. It returns
// ErrNotNegotiated before any caps exist, ErrEOS exactly when the
// end-of-stream signal is pushed, and nil for produced or QoS-dropped
// frames.
func (m *Mixer) Collect() error {
	if m.flushStopPending.CompareAndSwap(true, false) {
		m.log.Debug("pending flush stop")
		m.sink.PushFlushStop()
	}

	m.mu.Lock()

	if m.negotWidth == 0 {
		m.mu.Unlock()
		return ErrNotNegotiated
	}

	if m.fillQueues() {
		m.mu.Unlock()
		m.log.Debug("all ports at end of stream")
		m.sink.PushEOS()
		return ErrEOS
	}

	if err := m.ensureOutputCapsLocked(); err != nil {
		m.mu.Unlock()
		return err
	}

	// The master's clock stamps the output; during a master stall the
	// previous timestamp is held so downstream timing stays monotonic.
	var timestamp, duration video.ClockTime
	if m.master != nil && m.master.frame != nil {
		timestamp = m.master.segment.ToRunningTime(m.master.frame.PTS)
		duration = m.master.frame.Duration
		m.lastTS = timestamp
		m.lastDuration = duration
	} else {
		timestamp = m.lastTS
		duration = m.lastDuration
	}
	if duration.IsValid() {
		m.lastTS += duration
	}

	if !m.qosAllows(timestamp) {
		m.log.Debug("dropping frame at %s (quality-of-service)", timestamp)
		m.updateQueues()
		m.mu.Unlock()
		return nil
	}

	out := video.NewFrame(m.format, m.outWidth, m.outHeight)
	out.PTS = timestamp
	out.Duration = duration

	m.fillBackground(out)
	err := m.compositeLocked(out)
	m.updateQueues()
	m.mu.Unlock()

	if err != nil {
		return err
	}
	return m.sink.Push(out)
}

// fillQueues peeks a frame for every empty port, maintains queued-duration
// accounting and reports whether every port is drained (end-of-stream).
// Ports that accumulated consumption debt pop frames until the debt is
// covered, which keeps fast ports consuming more than one input frame per
// output tick without drift.
func (m *Mixer) fillQueues() bool {
	eos := true
	for _, p := range m.ports {
		if p.frame == nil {
			m.fetchLocked(p)
		}
		for p.frame != nil && !p.queuedUnknown && p.queued <= 0 {
			m.source.Pop(p.ID)
			p.frame = nil
			m.fetchLocked(p)
		}

		if m.sendSegment && p == m.master {
			m.emitSegmentLocked(p)
		}

		if p.frame != nil && (p.queuedUnknown || p.queued > 0) {
			eos = false
		}
	}
	return eos
}

// fetchLocked peeks the port's next frame and accounts its duration.
func (m *Mixer) fetchLocked(p *Port) {
	f := m.source.Peek(p.ID)
	if f == nil {
		return
	}
	p.frame = f

	duration := f.Duration
	if !duration.IsValid() {
		duration = video.FrameDuration(p.fps)
	}
	if duration.IsValid() {
		if !p.queuedUnknown {
			p.queued += int64(duration)
		}
	} else if p.queued == 0 {
		p.queuedUnknown = true
	}
	m.log.Debug("port %d queued now %dns", p.ID, p.queued)
}

// emitSegmentLocked announces the output timing segment derived from the
// master's segment, extended by the accumulated seek position.
func (m *Mixer) emitSegmentLocked(master *Port) {
	seg := master.segment
	start := seg.Accum
	stop := video.ClockTimeNone
	if seg.Stop.IsValid() && seg.Start.IsValid() {
		stop = start + (seg.Stop - seg.Start)
	}
	m.segment = video.Segment{
		Rate:  seg.Rate,
		Start: start,
		Stop:  stop,
		Time:  start + m.segmentPosition,
	}
	m.log.Debug("sending segment %s..%s at position %s", start, stop, m.segmentPosition)
	m.sink.PushSegment(m.segment)
	m.sendSegment = false
}

// ensureOutputCapsLocked announces output caps when the negotiated tuple
// changed and resolves the blend function table for the locked format.
func (m *Mixer) ensureOutputCapsLocked() error {
	if m.negotWidth == m.outWidth && m.negotHeight == m.outHeight && !m.sendCaps {
		return nil
	}
	ops, err := blend.OpsFor(m.format)
	if err != nil {
		return fmt.Errorf("negotiating output: %w", err)
	}
	m.ops = ops
	m.outWidth = m.negotWidth
	m.outHeight = m.negotHeight
	m.sendCaps = false
	caps := video.Caps{
		Format: m.format,
		Width:  m.outWidth, Height: m.outHeight,
		FPS: m.fps, PAR: m.par,
	}
	m.log.Info("announcing output caps %s", caps)
	if err := m.sink.AnnounceCaps(caps); err != nil {
		return fmt.Errorf("announcing output caps: %w", err)
	}
	return nil
}

// qosAllows decides whether the frame at the given running time should be
// produced or dropped based on the latest downstream observation.
func (m *Mixer) qosAllows(timestamp video.ClockTime) bool {
	if !timestamp.IsValid() {
		return true
	}
	_, earliest := m.qos.read()
	if !earliest.IsValid() {
		return true
	}
	qostime := m.segment.ToRunningTime(timestamp)
	return !qostime.IsValid() || qostime > earliest
}

// fillBackground prepares the output frame before blending.
func (m *Mixer) fillBackground(out *video.Frame) {
	switch m.background {
	case BackgroundChecker:
		m.ops.FillChecker(out.Data, out.Width, out.Height)
	case BackgroundBlack:
		m.ops.FillColor(out.Data, out.Width, out.Height, fillYBlack, fillChroma, fillChroma)
	case BackgroundWhite:
		m.ops.FillColor(out.Data, out.Width, out.Height, fillYWhite, fillChroma, fillChroma)
	case BackgroundTransparent:
		// Frames are allocated zeroed; nothing to do.
	}
}

// compositeLocked blends every port's current frame into out, bottom to
// top. Ports are visited strictly in ascending z-order.
func (m *Mixer) compositeLocked(out *video.Frame) error {
	blendFn := m.ops.Blend
	if m.background == BackgroundTransparent {
		blendFn = m.ops.Overlay
	}

	for _, p := range m.ports {
		if p.frame == nil {
			continue
		}

		// Sample externally driven properties at the frame's stream time.
		if p.Controller != nil {
			if st := p.segment.ToStreamTime(p.frame.PTS); st.IsValid() {
				p.Controller.Sync(st)
			}
		}
		xpos, ypos, alpha := p.XPos, p.YPos, p.Alpha

		frame := p.frame
		if p.Width != 0 || p.Height != 0 {
			scaled, err := scale.Frame(frame, p.Width, p.Height, m.method)
			if err != nil {
				return fmt.Errorf("scaling port %d: %w", p.ID, err)
			}
			frame = scaled
		}

		blendFn(frame.Data, xpos, ypos, frame.Width, frame.Height, alpha,
			out.Data, out.Width, out.Height)
	}
	return nil
}

// updateQueues subtracts one master interval from every port holding a
// frame and pops frames whose queued duration is exhausted, making room
// for the next fetch.
func (m *Mixer) updateQueues() {
	var interval int64
	if m.master != nil && !m.master.queuedUnknown && m.master.queued > 0 {
		interval = m.master.queued
	} else if d := video.FrameDuration(m.fps); d.IsValid() {
		interval = int64(d)
	} else {
		interval = int64(^uint64(0) >> 1)
	}

	for _, p := range m.ports {
		if p.frame == nil || p.queuedUnknown {
			continue
		}
		p.queued -= interval
		m.log.Debug("port %d queued now %dns", p.ID, p.queued)
		if p.queued <= 0 {
			m.source.Pop(p.ID)
			p.frame = nil
		}
	}
}

// noopLogger is the fallback when no logger is supplied.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{})      {}
func (noopLogger) Info(string, ...interface{})       {}
func (noopLogger) Warn(string, ...interface{})       {}
func (noopLogger) Error(string, ...interface{})      {}
func (noopLogger) WithComponent(string) ports.Logger { return noopLogger{} }
