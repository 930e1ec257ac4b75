package mixer

import (
	"bytes"
	"errors"
	"testing"

	"github.com/user/videomix/pkg/blend"
	"github.com/user/videomix/pkg/scale"
	"github.com/user/videomix/pkg/video"
)

// stubSource feeds pre-built frame queues per port.
type stubSource struct {
	queues map[int][]*video.Frame
	popped map[int]int
}

func newStubSource() *stubSource {
	return &stubSource{
		queues: map[int][]*video.Frame{},
		popped: map[int]int{},
	}
}

func (s *stubSource) Peek(port int) *video.Frame {
	q := s.queues[port]
	if len(q) == 0 {
		return nil
	}
	return q[0]
}

func (s *stubSource) Pop(port int) *video.Frame {
	q := s.queues[port]
	if len(q) == 0 {
		return nil
	}
	f := q[0]
	s.queues[port] = q[1:]
	s.popped[port]++
	return f
}

// stubSink records everything the mixer pushes downstream.
type stubSink struct {
	caps       []video.Caps
	frames     []*video.Frame
	segments   []video.Segment
	eos        int
	flushStart int
	flushStop  int
}

func (s *stubSink) AnnounceCaps(caps video.Caps) error { s.caps = append(s.caps, caps); return nil }
func (s *stubSink) Push(f *video.Frame) error          { s.frames = append(s.frames, f); return nil }
func (s *stubSink) PushSegment(seg video.Segment)      { s.segments = append(s.segments, seg) }
func (s *stubSink) PushEOS()                           { s.eos++ }
func (s *stubSink) PushFlushStart()                    { s.flushStart++ }
func (s *stubSink) PushFlushStop()                     { s.flushStop++ }

func frameSeq(format video.PixelFormat, w, h, n int, dur video.ClockTime) []*video.Frame {
	out := make([]*video.Frame, n)
	for i := 0; i < n; i++ {
		f := video.NewFrame(format, w, h)
		f.PTS = video.ClockTime(i) * dur
		f.Duration = dur
		out[i] = f
	}
	return out
}

func TestMasterSelectionSlowest(t *testing.T) {
	tests := []struct {
		name     string
		caps     []video.Caps
		wantCaps video.Caps
		master   int
	}{
		{
			name: "slower wins over faster",
			caps: []video.Caps{
				{Format: video.FormatAYUV, Width: 100, Height: 100, FPS: video.Fract(10, 1)},
				{Format: video.FormatAYUV, Width: 320, Height: 240, FPS: video.Fract(5, 1)},
			},
			wantCaps: video.Caps{
				Format: video.FormatAYUV, Width: 320, Height: 240,
				FPS: video.Fract(5, 1), PAR: video.Fract(1, 1),
			},
			master: 1,
		},
		{
			name: "geometry max is independent of master",
			caps: []video.Caps{
				{Format: video.FormatI420, Width: 640, Height: 120, FPS: video.Fract(5, 1)},
				{Format: video.FormatI420, Width: 320, Height: 480, FPS: video.Fract(30, 1)},
			},
			wantCaps: video.Caps{
				Format: video.FormatI420, Width: 640, Height: 480,
				FPS: video.Fract(5, 1), PAR: video.Fract(1, 1),
			},
			master: 0,
		},
		{
			name: "rational comparison is exact",
			caps: []video.Caps{
				{Format: video.FormatBGRA, Width: 64, Height: 64, FPS: video.Fract(30, 1)},
				{Format: video.FormatBGRA, Width: 64, Height: 64, FPS: video.Fract(30000, 1001)},
			},
			wantCaps: video.Caps{
				Format: video.FormatBGRA, Width: 64, Height: 64,
				FPS: video.Fract(30000, 1001), PAR: video.Fract(1, 1),
			},
			master: 1,
		},
		{
			name: "equal rates keep the earlier port",
			caps: []video.Caps{
				{Format: video.FormatAYUV, Width: 64, Height: 64, FPS: video.Fract(25, 1)},
				{Format: video.FormatAYUV, Width: 64, Height: 64, FPS: video.Fract(25, 1)},
			},
			wantCaps: video.Caps{
				Format: video.FormatAYUV, Width: 64, Height: 64,
				FPS: video.Fract(25, 1), PAR: video.Fract(1, 1),
			},
			master: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(newStubSource(), &stubSink{}, Options{})
			ids := make([]int, len(tt.caps))
			for i, c := range tt.caps {
				ids[i] = m.AddPort().ID
				if err := m.SetPortCaps(ids[i], c); err != nil {
					t.Fatalf("SetPortCaps(%d): %v", ids[i], err)
				}
			}
			if got := m.OutputCaps(); got != tt.wantCaps {
				t.Errorf("OutputCaps() = %v, want %v", got, tt.wantCaps)
			}
			if got := m.Master(); got != ids[tt.master] {
				t.Errorf("Master() = %d, want %d", got, ids[tt.master])
			}
		})
	}
}

func TestFormatLocking(t *testing.T) {
	m := New(newStubSource(), &stubSink{}, Options{})
	a := m.AddPort()
	b := m.AddPort()

	first := video.Caps{Format: video.FormatAYUV, Width: 64, Height: 64, FPS: video.Fract(10, 1)}
	if err := m.SetPortCaps(a.ID, first); err != nil {
		t.Fatalf("SetPortCaps: %v", err)
	}

	other := video.Caps{Format: video.FormatI420, Width: 64, Height: 64, FPS: video.Fract(10, 1)}
	if m.AcceptPortCaps(b.ID, other) {
		t.Error("AcceptPortCaps accepted a format conflicting with the locked one")
	}
	err := m.SetPortCaps(b.ID, other)
	var negErr *NegotiationError
	if !errors.As(err, &negErr) {
		t.Fatalf("SetPortCaps = %v, want NegotiationError", err)
	}
	if negErr.Locked != video.FormatAYUV {
		t.Errorf("NegotiationError.Locked = %v, want AYUV", negErr.Locked)
	}

	same := video.Caps{Format: video.FormatAYUV, Width: 32, Height: 32, FPS: video.Fract(5, 1)}
	if !m.AcceptPortCaps(b.ID, same) {
		t.Error("AcceptPortCaps rejected the locked format")
	}
}

func TestGeometryShrinksWhenPortRemoved(t *testing.T) {
	m := New(newStubSource(), &stubSink{}, Options{})
	big := m.AddPort()
	small := m.AddPort()
	if err := m.SetPortCaps(big.ID, video.Caps{Format: video.FormatAYUV, Width: 640, Height: 480, FPS: video.Fract(30, 1)}); err != nil {
		t.Fatal(err)
	}
	if err := m.SetPortCaps(small.ID, video.Caps{Format: video.FormatAYUV, Width: 320, Height: 240, FPS: video.Fract(15, 1)}); err != nil {
		t.Fatal(err)
	}

	if got := m.OutputCaps(); got.Width != 640 || got.Height != 480 {
		t.Fatalf("OutputCaps() = %v, want 640x480", got)
	}
	if err := m.RemovePort(big.ID); err != nil {
		t.Fatal(err)
	}
	got := m.OutputCaps()
	if got.Width != 320 || got.Height != 240 {
		t.Errorf("OutputCaps() after removal = %v, want 320x240", got)
	}
	if got.FPS != video.Fract(15, 1) {
		t.Errorf("FPS after removal = %v, want 15/1", got.FPS)
	}
	if m.Master() != small.ID {
		t.Errorf("Master() = %d, want %d", m.Master(), small.ID)
	}
}

func TestCollectNotNegotiated(t *testing.T) {
	m := New(newStubSource(), &stubSink{}, Options{})
	m.AddPort()
	if err := m.Collect(); !errors.Is(err, ErrNotNegotiated) {
		t.Errorf("Collect() = %v, want ErrNotNegotiated", err)
	}
}

func TestCollectEOS(t *testing.T) {
	sink := &stubSink{}
	m := New(newStubSource(), sink, Options{})
	p := m.AddPort()
	if err := m.SetPortCaps(p.ID, video.Caps{Format: video.FormatAYUV, Width: 8, Height: 8, FPS: video.Fract(10, 1)}); err != nil {
		t.Fatal(err)
	}
	if err := m.Collect(); !errors.Is(err, ErrEOS) {
		t.Fatalf("Collect() = %v, want ErrEOS", err)
	}
	if sink.eos != 1 {
		t.Errorf("eos pushed %d times, want 1", sink.eos)
	}
}

func TestCollectTimestampsAndAnnouncements(t *testing.T) {
	src := newStubSource()
	sink := &stubSink{}
	m := New(src, sink, Options{Background: BackgroundBlack})
	p := m.AddPort()
	if err := m.SetPortCaps(p.ID, video.Caps{Format: video.FormatAYUV, Width: 8, Height: 8, FPS: video.Fract(10, 1)}); err != nil {
		t.Fatal(err)
	}
	src.queues[p.ID] = frameSeq(video.FormatAYUV, 8, 8, 3, 100*video.Millisecond)

	for i := 0; i < 3; i++ {
		if err := m.Collect(); err != nil {
			t.Fatalf("Collect() #%d: %v", i, err)
		}
	}
	if err := m.Collect(); !errors.Is(err, ErrEOS) {
		t.Fatalf("Collect() after drain = %v, want ErrEOS", err)
	}

	if len(sink.caps) != 1 {
		t.Fatalf("caps announced %d times, want 1", len(sink.caps))
	}
	if len(sink.segments) != 1 {
		t.Fatalf("segments pushed %d times, want 1", len(sink.segments))
	}
	if len(sink.frames) != 3 {
		t.Fatalf("frames pushed = %d, want 3", len(sink.frames))
	}
	for i, f := range sink.frames {
		want := video.ClockTime(i) * 100 * video.Millisecond
		if f.PTS != want {
			t.Errorf("frame %d PTS = %s, want %s", i, f.PTS, want)
		}
		if f.Duration != 100*video.Millisecond {
			t.Errorf("frame %d Duration = %s, want 100ms", i, f.Duration)
		}
	}
	if got := m.LastTimestamp(); got != 300*video.Millisecond {
		t.Errorf("LastTimestamp() = %s, want 300ms", got)
	}
}

// A port twice as fast as the master must be consumed twice per output
// tick, with zero drift over a long run.
func TestQueueConservationTwoRates(t *testing.T) {
	src := newStubSource()
	sink := &stubSink{}
	m := New(src, sink, Options{Background: BackgroundBlack})

	fast := m.AddPort()
	slow := m.AddPort()
	if err := m.SetPortCaps(fast.ID, video.Caps{Format: video.FormatAYUV, Width: 4, Height: 4, FPS: video.Fract(10, 1)}); err != nil {
		t.Fatal(err)
	}
	if err := m.SetPortCaps(slow.ID, video.Caps{Format: video.FormatAYUV, Width: 8, Height: 8, FPS: video.Fract(5, 1)}); err != nil {
		t.Fatal(err)
	}
	if m.Master() != slow.ID {
		t.Fatalf("Master() = %d, want slow port %d", m.Master(), slow.ID)
	}

	const ticks = 1000
	src.queues[fast.ID] = frameSeq(video.FormatAYUV, 4, 4, 2*ticks, 100*video.Millisecond)
	src.queues[slow.ID] = frameSeq(video.FormatAYUV, 8, 8, ticks, 200*video.Millisecond)

	for i := 0; i < ticks; i++ {
		if err := m.Collect(); err != nil {
			t.Fatalf("Collect() #%d: %v", i, err)
		}
	}
	if err := m.Collect(); !errors.Is(err, ErrEOS) {
		t.Fatalf("Collect() after drain = %v, want ErrEOS", err)
	}

	if len(sink.frames) != ticks {
		t.Errorf("output frames = %d, want %d", len(sink.frames), ticks)
	}
	if got := src.popped[slow.ID]; got != ticks {
		t.Errorf("slow port consumed %d frames, want %d", got, ticks)
	}
	if got := src.popped[fast.ID]; got != 2*ticks {
		t.Errorf("fast port consumed %d frames, want %d", got, 2*ticks)
	}
	last := sink.frames[len(sink.frames)-1]
	if want := video.ClockTime(ticks-1) * 200 * video.Millisecond; last.PTS != want {
		t.Errorf("last PTS = %s, want %s", last.PTS, want)
	}
}

func TestQoSDropsLateFrames(t *testing.T) {
	src := newStubSource()
	sink := &stubSink{}
	m := New(src, sink, Options{Background: BackgroundBlack})
	p := m.AddPort()
	if err := m.SetPortCaps(p.ID, video.Caps{Format: video.FormatAYUV, Width: 8, Height: 8, FPS: video.Fract(10, 1)}); err != nil {
		t.Fatal(err)
	}
	src.queues[p.ID] = frameSeq(video.FormatAYUV, 8, 8, 6, 100*video.Millisecond)

	// Downstream reports 150ms of lateness at running time 0: the next
	// acceptable frame is 0 + 2*150ms + one 100ms interval = 400ms, and
	// only frames strictly later than that may be produced.
	m.UpdateQoS(1.0, int64(150*video.Millisecond), 0)

	for i := 0; i < 6; i++ {
		if err := m.Collect(); err != nil {
			t.Fatalf("Collect() #%d: %v", i, err)
		}
	}
	if len(sink.frames) != 1 {
		t.Fatalf("frames pushed = %d, want 1", len(sink.frames))
	}
	if want := 500 * video.Millisecond; sink.frames[0].PTS != want {
		t.Errorf("surviving frame PTS = %s, want %s", sink.frames[0].PTS, want)
	}
	// Dropped frames are still consumed.
	if got := src.popped[p.ID]; got != 6 {
		t.Errorf("consumed %d frames, want 6", got)
	}
}

func TestSeekFlushAnnouncements(t *testing.T) {
	src := newStubSource()
	sink := &stubSink{}
	m := New(src, sink, Options{Background: BackgroundBlack})
	p := m.AddPort()
	if err := m.SetPortCaps(p.ID, video.Caps{Format: video.FormatAYUV, Width: 8, Height: 8, FPS: video.Fract(10, 1)}); err != nil {
		t.Fatal(err)
	}
	src.queues[p.ID] = frameSeq(video.FormatAYUV, 8, 8, 2, 100*video.Millisecond)
	if err := m.Collect(); err != nil {
		t.Fatal(err)
	}

	m.Seek(true, video.Second)
	if sink.flushStart != 1 {
		t.Fatalf("flush start pushed %d times, want 1", sink.flushStart)
	}
	if sink.flushStop != 0 {
		t.Fatalf("flush stop pushed early (%d times)", sink.flushStop)
	}

	if err := m.Collect(); err != nil {
		t.Fatal(err)
	}
	if sink.flushStop != 1 {
		t.Errorf("flush stop pushed %d times, want 1", sink.flushStop)
	}
	if len(sink.segments) != 2 {
		t.Fatalf("segments pushed %d times, want 2", len(sink.segments))
	}
	seg := sink.segments[1]
	if seg.Time != video.Second {
		t.Errorf("post-seek segment Time = %s, want 1s", seg.Time)
	}
}

func TestHandleFlushStopReleasesUnknownQueue(t *testing.T) {
	src := newStubSource()
	sink := &stubSink{}
	m := New(src, sink, Options{Background: BackgroundBlack})
	p := m.AddPort()
	// Unknown rate and no buffer durations: the held frame never counts
	// as exhausted, so the stream cannot end on its own.
	if err := m.SetPortCaps(p.ID, video.Caps{Format: video.FormatAYUV, Width: 8, Height: 8}); err != nil {
		t.Fatal(err)
	}
	f := video.NewFrame(video.FormatAYUV, 8, 8)
	f.PTS = 0
	src.queues[p.ID] = []*video.Frame{f}

	for i := 0; i < 3; i++ {
		if err := m.Collect(); err != nil {
			t.Fatalf("Collect() #%d: %v", i, err)
		}
	}
	if got := src.popped[p.ID]; got != 0 {
		t.Fatalf("frame with unknown duration was consumed (%d pops)", got)
	}
	if len(sink.frames) != 3 {
		t.Fatalf("frames pushed = %d, want 3", len(sink.frames))
	}

	if err := m.HandleFlushStop(p.ID); err != nil {
		t.Fatal(err)
	}
	if err := m.Collect(); !errors.Is(err, ErrEOS) {
		t.Errorf("Collect() after flush = %v, want ErrEOS", err)
	}
}

func TestZOrderDecidesStacking(t *testing.T) {
	src := newStubSource()
	sink := &stubSink{}
	m := New(src, sink, Options{Background: BackgroundBlack})

	bottom := m.AddPort()
	top := m.AddPort()
	caps := video.Caps{Format: video.FormatAYUV, Width: 1, Height: 1, FPS: video.Fract(5, 1)}
	if err := m.SetPortCaps(bottom.ID, caps); err != nil {
		t.Fatal(err)
	}
	if err := m.SetPortCaps(top.ID, caps); err != nil {
		t.Fatal(err)
	}

	pixel := func(y byte) []*video.Frame {
		f := video.NewFrame(video.FormatAYUV, 1, 1)
		copy(f.Data, []byte{0xff, y, 0x80, 0x80})
		f.PTS = 0
		f.Duration = 200 * video.Millisecond
		return []*video.Frame{f}
	}

	src.queues[bottom.ID] = pixel(0x40)
	src.queues[top.ID] = pixel(0xc0)
	if err := m.Collect(); err != nil {
		t.Fatal(err)
	}
	if got := sink.frames[0].Data[1]; got != 0xc0 {
		t.Errorf("output luma = %#x, want top port's %#x", got, 0xc0)
	}

	// Push the second port below the first and repeat.
	if err := m.SetPortZOrder(top.ID, -1); err != nil {
		t.Fatal(err)
	}
	src.queues[bottom.ID] = pixel(0x40)
	src.queues[top.ID] = pixel(0xc0)
	if err := m.Collect(); err != nil {
		t.Fatal(err)
	}
	if got := sink.frames[1].Data[1]; got != 0x40 {
		t.Errorf("output luma after reorder = %#x, want %#x", got, 0x40)
	}
}

// Aggregating three stacked ports must equal blending the same frames
// one after another into the same destination.
func TestCompositeMatchesSequentialBlend(t *testing.T) {
	src := newStubSource()
	sink := &stubSink{}
	m := New(src, sink, Options{Background: BackgroundBlack})

	caps := video.Caps{Format: video.FormatAYUV, Width: 8, Height: 8, FPS: video.Fract(5, 1)}
	layers := []struct {
		luma  byte
		alpha float64
		xpos  int
	}{
		{0x40, 1.0, 0},
		{0xa0, 0.5, 2},
		{0xe0, 0.25, 4},
	}
	frames := make([]*video.Frame, len(layers))
	for i, l := range layers {
		p := m.AddPort()
		if err := m.SetPortCaps(p.ID, caps); err != nil {
			t.Fatal(err)
		}
		if err := m.SetPortPlacement(p.ID, l.xpos, 0, 0, 0); err != nil {
			t.Fatal(err)
		}
		if err := m.SetPortAlpha(p.ID, l.alpha); err != nil {
			t.Fatal(err)
		}
		f := video.NewFrame(video.FormatAYUV, 4, 4)
		for px := 0; px < 16; px++ {
			copy(f.Data[px*4:], []byte{0xff, l.luma, 0x80, 0x80})
		}
		f.PTS = 0
		f.Duration = 200 * video.Millisecond
		frames[i] = f
		src.queues[p.ID] = []*video.Frame{f}
	}

	if err := m.Collect(); err != nil {
		t.Fatal(err)
	}

	ops, err := blend.OpsFor(video.FormatAYUV)
	if err != nil {
		t.Fatal(err)
	}
	want := video.NewFrame(video.FormatAYUV, 8, 8)
	ops.FillColor(want.Data, 8, 8, 16, 128, 128)
	for i, l := range layers {
		ops.Blend(frames[i].Data, l.xpos, 0, 4, 4, l.alpha, want.Data, 8, 8)
	}
	if !bytes.Equal(sink.frames[0].Data, want.Data) {
		t.Error("aggregated output differs from sequential blending")
	}
}

// Two ports at mixed rates, opacity and stacking: the full scenario the
// mixer exists for.
func TestTwoPortScenario(t *testing.T) {
	src := newStubSource()
	sink := &stubSink{}
	m := New(src, sink, Options{Background: BackgroundChecker})

	overlay := m.AddPort() // 100x100 @10fps, on top at (50,50), 70% opacity
	base := m.AddPort()    // 320x240 @5fps, opaque bottom layer
	if err := m.SetPortCaps(overlay.ID, video.Caps{Format: video.FormatAYUV, Width: 100, Height: 100, FPS: video.Fract(10, 1)}); err != nil {
		t.Fatal(err)
	}
	if err := m.SetPortCaps(base.ID, video.Caps{Format: video.FormatAYUV, Width: 320, Height: 240, FPS: video.Fract(5, 1)}); err != nil {
		t.Fatal(err)
	}
	if err := m.SetPortZOrder(overlay.ID, 1); err != nil {
		t.Fatal(err)
	}
	if err := m.SetPortZOrder(base.ID, 0); err != nil {
		t.Fatal(err)
	}
	if err := m.SetPortPlacement(overlay.ID, 50, 50, 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := m.SetPortAlpha(overlay.ID, 0.7); err != nil {
		t.Fatal(err)
	}

	out := m.OutputCaps()
	if out.Width != 320 || out.Height != 240 || out.FPS != video.Fract(5, 1) {
		t.Fatalf("OutputCaps() = %v, want 320x240 @5/1", out)
	}

	solid := func(w, h int, luma byte, n int, dur video.ClockTime) []*video.Frame {
		frames := frameSeq(video.FormatAYUV, w, h, n, dur)
		for _, f := range frames {
			for px := 0; px < w*h; px++ {
				copy(f.Data[px*4:], []byte{0xff, luma, 0x80, 0x80})
			}
		}
		return frames
	}
	src.queues[overlay.ID] = solid(100, 100, 150, 4, 100*video.Millisecond)
	src.queues[base.ID] = solid(320, 240, 50, 2, 200*video.Millisecond)

	for i := 0; i < 2; i++ {
		if err := m.Collect(); err != nil {
			t.Fatalf("Collect() #%d: %v", i, err)
		}
	}
	// Tick 1 consumes one overlay frame, every following tick two: the
	// accounting debt carries the extra pop into the next fill.
	if got := src.popped[overlay.ID]; got != 3 {
		t.Errorf("overlay consumed %d frames, want 3", got)
	}

	frame := sink.frames[0]
	pixel := func(x, y int) []byte {
		off := (y*320 + x) * 4
		return frame.Data[off : off+4]
	}
	// Inside the overlay: 150 at 70% over 50 = (150*178 + 50*77)/255.
	if got := pixel(60, 60)[1]; got != 119 {
		t.Errorf("overlay region luma = %d, want 119", got)
	}
	// Outside the overlay: the base layer only.
	if got := pixel(10, 10)[1]; got != 50 {
		t.Errorf("base region luma = %d, want 50", got)
	}
	if got := pixel(200, 200)[1]; got != 50 {
		t.Errorf("base region luma = %d, want 50", got)
	}
}

func TestPortScaledToRequestedSize(t *testing.T) {
	src := newStubSource()
	sink := &stubSink{}
	m := New(src, sink, Options{Background: BackgroundBlack, Method: scale.Nearest})
	p := m.AddPort()
	if err := m.SetPortCaps(p.ID, video.Caps{Format: video.FormatAYUV, Width: 2, Height: 2, FPS: video.Fract(5, 1)}); err != nil {
		t.Fatal(err)
	}
	if err := m.SetPortPlacement(p.ID, 0, 0, 1, 1); err != nil {
		t.Fatal(err)
	}

	f := video.NewFrame(video.FormatAYUV, 2, 2)
	for i := 0; i < 4; i++ {
		copy(f.Data[i*4:], []byte{0xff, 0x80, 0x80, 0x80})
	}
	f.PTS = 0
	f.Duration = 200 * video.Millisecond
	src.queues[p.ID] = []*video.Frame{f}

	if err := m.Collect(); err != nil {
		t.Fatal(err)
	}
	out := sink.frames[0]
	if out.Width != 2 || out.Height != 2 {
		t.Fatalf("output geometry %dx%d, want 2x2", out.Width, out.Height)
	}
	// Scaled to 1x1: only the top-left output pixel carries the source.
	if got := out.Data[1]; got != 0x80 {
		t.Errorf("top-left luma = %#x, want %#x", got, 0x80)
	}
	if got := out.Data[4*1+1]; got != 16 {
		t.Errorf("uncovered pixel luma = %d, want background 16", got)
	}
}
