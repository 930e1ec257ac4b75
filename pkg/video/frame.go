package video

import "fmt"

// Frame is one raw video frame. Input frames are owned by the transport
// layer and borrowed read-only by the mixer; output frames are allocated
// by the mixer and owned until pushed downstream.
type Frame struct {
	Format PixelFormat
	Width  int
	Height int
	Data   []byte

	PTS      ClockTime
	Duration ClockTime
}

// NewFrame allocates a zero-filled frame for the given geometry.
func NewFrame(format PixelFormat, width, height int) *Frame {
	return &Frame{
		Format:   format,
		Width:    width,
		Height:   height,
		Data:     make([]byte, format.FrameSize(width, height)),
		PTS:      ClockTimeNone,
		Duration: ClockTimeNone,
	}
}

// Validate checks that the buffer is large enough for its stated geometry.
func (f *Frame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("frame has degenerate geometry %dx%d", f.Width, f.Height)
	}
	if need := f.Format.FrameSize(f.Width, f.Height); len(f.Data) < need {
		return fmt.Errorf("frame buffer too small: %d bytes for %s %dx%d (need %d)",
			len(f.Data), f.Format, f.Width, f.Height, need)
	}
	return nil
}

// Caps describes the negotiated properties of a stream: pixel format,
// geometry, framerate and pixel aspect ratio.
type Caps struct {
	Format PixelFormat
	Width  int
	Height int
	FPS    Fraction
	PAR    Fraction
}

func (c Caps) String() string {
	return fmt.Sprintf("%s %dx%d @%s par %s", c.Format, c.Width, c.Height, c.FPS, c.PAR)
}
