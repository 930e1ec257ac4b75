package ports

import "github.com/user/videomix/pkg/video"

// SnapshotSink abstracts debug output for composited frames. It allows
// saving intermediate results for visual inspection without touching the
// mixing path.
type SnapshotSink interface {
	// Enabled returns true if snapshot output is enabled.
	Enabled() bool

	// SaveFrame saves a composited output frame.
	SaveFrame(index int, frame *video.Frame) error

	// SaveThumbnail saves a downscaled preview of a composited frame.
	SaveThumbnail(index int, frame *video.Frame, maxDim int) error
}
