// Package testsrc generates deterministic test-pattern streams. Patterns
// are drawn with gg into RGBA and converted to the mixer's negotiated
// pixel format, so every supported layout can be exercised without real
// capture hardware.
package testsrc

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/user/videomix/pkg/video"
)

// Pattern selects what the generator draws.
type Pattern int

const (
	// PatternBars draws eight vertical color bars.
	PatternBars Pattern = iota
	// PatternGradient draws a horizontal black-to-white ramp.
	PatternGradient
	// PatternBall draws a circling ball, so motion is visible across
	// frames.
	PatternBall
	// PatternSolid fills every frame with one color.
	PatternSolid
)

func (p Pattern) String() string {
	switch p {
	case PatternBars:
		return "bars"
	case PatternGradient:
		return "gradient"
	case PatternBall:
		return "ball"
	case PatternSolid:
		return "solid"
	default:
		return fmt.Sprintf("unknown(%d)", int(p))
	}
}

// ParsePattern resolves a pattern name as used in configuration files.
func ParsePattern(s string) (Pattern, error) {
	switch s {
	case "bars":
		return PatternBars, nil
	case "gradient":
		return PatternGradient, nil
	case "ball":
		return PatternBall, nil
	case "solid":
		return PatternSolid, nil
	default:
		return PatternBars, fmt.Errorf("unknown test pattern %q", s)
	}
}

// Options configures a Generator.
type Options struct {
	Pattern Pattern
	Format  video.PixelFormat
	Width   int
	Height  int
	FPS     video.Fraction
	// Color is the fill for PatternSolid; alpha carries through on
	// formats that store it.
	Color color.NRGBA
}

// Generator produces a test-pattern stream frame by frame.
type Generator struct {
	opts     Options
	duration video.ClockTime
}

// New creates a generator. The format must be one of the supported mixing
// formats and the geometry positive.
func New(opts Options) (*Generator, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid pattern geometry %dx%d", opts.Width, opts.Height)
	}
	if opts.Format == video.FormatUnknown {
		return nil, fmt.Errorf("pattern format not set")
	}
	if opts.Color.A == 0 && opts.Color.R == 0 && opts.Color.G == 0 && opts.Color.B == 0 {
		opts.Color = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}
	return &Generator{opts: opts, duration: video.FrameDuration(opts.FPS)}, nil
}

// Caps returns the stream's negotiation caps.
func (g *Generator) Caps() video.Caps {
	return video.Caps{
		Format: g.opts.Format,
		Width:  g.opts.Width,
		Height: g.opts.Height,
		FPS:    g.opts.FPS,
		PAR:    video.Fract(1, 1),
	}
}

// Frame renders the pattern at the given frame index.
func (g *Generator) Frame(index int) *video.Frame {
	w, h := g.opts.Width, g.opts.Height
	dc := gg.NewContext(w, h)

	switch g.opts.Pattern {
	case PatternBars:
		drawBars(dc, w, h)
	case PatternGradient:
		grad := gg.NewLinearGradient(0, 0, float64(w), 0)
		grad.AddColorStop(0, color.Black)
		grad.AddColorStop(1, color.White)
		dc.SetFillStyle(grad)
		dc.DrawRectangle(0, 0, float64(w), float64(h))
		dc.Fill()
	case PatternBall:
		drawBall(dc, w, h, index, g.opts.FPS)
	case PatternSolid:
		c := g.opts.Color
		dc.SetRGBA255(int(c.R), int(c.G), int(c.B), int(c.A))
		dc.Clear()
	}

	f := video.NewFrame(g.opts.Format, w, h)
	if g.duration.IsValid() {
		f.PTS = video.ClockTime(index) * g.duration
		f.Duration = g.duration
	}
	fromRGBA(dc.Image().(*image.RGBA), f)
	return f
}

// Generate renders the first n frames of the stream.
func (g *Generator) Generate(n int) []*video.Frame {
	frames := make([]*video.Frame, n)
	for i := range frames {
		frames[i] = g.Frame(i)
	}
	return frames
}

var barColors = [8]color.NRGBA{
	{0xff, 0xff, 0xff, 0xff}, // white
	{0xff, 0xff, 0x00, 0xff}, // yellow
	{0x00, 0xff, 0xff, 0xff}, // cyan
	{0x00, 0xff, 0x00, 0xff}, // green
	{0xff, 0x00, 0xff, 0xff}, // magenta
	{0xff, 0x00, 0x00, 0xff}, // red
	{0x00, 0x00, 0xff, 0xff}, // blue
	{0x00, 0x00, 0x00, 0xff}, // black
}

func drawBars(dc *gg.Context, w, h int) {
	barWidth := float64(w) / float64(len(barColors))
	for i, c := range barColors {
		dc.SetRGBA255(int(c.R), int(c.G), int(c.B), int(c.A))
		dc.DrawRectangle(float64(i)*barWidth, 0, barWidth+1, float64(h))
		dc.Fill()
	}
}

func drawBall(dc *gg.Context, w, h, index int, fps video.Fraction) {
	dc.SetRGB255(0x20, 0x20, 0x30)
	dc.Clear()

	// One revolution per two seconds; at unknown rate, per 50 frames.
	var t float64
	if fps.N > 0 {
		t = float64(index) * float64(fps.D) / float64(fps.N) * math.Pi
	} else {
		t = float64(index) * math.Pi / 25
	}
	r := 0.35 * math.Min(float64(w), float64(h))
	cx := float64(w)/2 + r*math.Sin(t)
	cy := float64(h)/2 - r*math.Cos(t)
	dc.SetRGB255(0xf0, 0xc0, 0x30)
	dc.DrawCircle(cx, cy, math.Max(2, 0.1*math.Min(float64(w), float64(h))))
	dc.Fill()
}
