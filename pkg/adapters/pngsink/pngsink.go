// Package pngsink saves composited frames as PNG files for visual
// inspection. Conversion to RGBA happens here only; the mixing path never
// changes colorspace.
package pngsink

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/user/videomix/pkg/video"
	xdraw "golang.org/x/image/draw"
)

// Sink writes frames under a directory as frame-NNNNNN.png. An empty
// directory disables it.
type Sink struct {
	dir string
}

// New creates a snapshot sink writing into dir.
func New(dir string) *Sink {
	return &Sink{dir: dir}
}

// Enabled reports whether snapshots will be written.
func (s *Sink) Enabled() bool {
	return s.dir != ""
}

// SaveFrame writes one composited frame.
func (s *Sink) SaveFrame(index int, frame *video.Frame) error {
	return s.write(fmt.Sprintf("frame-%06d.png", index), toNRGBA(frame))
}

// SaveThumbnail writes a preview no larger than maxDim on either side.
func (s *Sink) SaveThumbnail(index int, frame *video.Frame, maxDim int) error {
	img := toNRGBA(frame)
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxDim || h > maxDim {
		if w >= h {
			h = h * maxDim / w
			w = maxDim
		} else {
			w = w * maxDim / h
			h = maxDim
		}
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		small := image.NewNRGBA(image.Rect(0, 0, w, h))
		xdraw.ApproxBiLinear.Scale(small, small.Bounds(), img, b, xdraw.Src, nil)
		img = small
	}
	return s.write(fmt.Sprintf("thumb-%06d.png", index), img)
}

func (s *Sink) write(name string, img *image.NRGBA) error {
	if !s.Enabled() {
		return nil
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return fmt.Errorf("creating snapshot file: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}
