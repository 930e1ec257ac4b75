package video

import "fmt"

// PixelFormat identifies the byte layout of raw video frames. All streams
// entering one mixer, and its output, share a single format; no colorspace
// conversion happens in the mixing path.
type PixelFormat int

const (
	FormatUnknown PixelFormat = iota

	// Packed 4-byte formats with an alpha channel.
	FormatAYUV
	FormatARGB
	FormatABGR
	FormatRGBA
	FormatBGRA

	// Packed 4-byte formats with a padding byte instead of alpha.
	FormatXRGB
	FormatXBGR
	FormatRGBX
	FormatBGRX

	// Packed 3-byte formats.
	FormatRGB
	FormatBGR

	// Planar YUV formats.
	FormatI420
	FormatYV12
	FormatY444
	FormatY42B
	FormatY41B

	// Packed 4:2:2 formats (two pixels per 4-byte macropixel).
	FormatYUY2
	FormatYVYU
	FormatUYVY
)

var formatNames = map[PixelFormat]string{
	FormatAYUV: "AYUV", FormatARGB: "ARGB", FormatABGR: "ABGR",
	FormatRGBA: "RGBA", FormatBGRA: "BGRA",
	FormatXRGB: "xRGB", FormatXBGR: "xBGR", FormatRGBX: "RGBx", FormatBGRX: "BGRx",
	FormatRGB: "RGB", FormatBGR: "BGR",
	FormatI420: "I420", FormatYV12: "YV12", FormatY444: "Y444",
	FormatY42B: "Y42B", FormatY41B: "Y41B",
	FormatYUY2: "YUY2", FormatYVYU: "YVYU", FormatUYVY: "UYVY",
}

func (f PixelFormat) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return fmt.Sprintf("unknown(%d)", int(f))
}

// ParseFormat resolves a format name as used in configuration files.
func ParseFormat(s string) (PixelFormat, error) {
	for f, name := range formatNames {
		if name == s {
			return f, nil
		}
	}
	return FormatUnknown, fmt.Errorf("unknown pixel format %q", s)
}

// Formats lists every supported format in a stable order.
func Formats() []PixelFormat {
	return []PixelFormat{
		FormatAYUV, FormatARGB, FormatABGR, FormatRGBA, FormatBGRA,
		FormatXRGB, FormatXBGR, FormatRGBX, FormatBGRX,
		FormatRGB, FormatBGR,
		FormatI420, FormatYV12, FormatY444, FormatY42B, FormatY41B,
		FormatYUY2, FormatYVYU, FormatUYVY,
	}
}

// IsPlanar reports whether the format stores luma and chroma in separate
// planes.
func (f PixelFormat) IsPlanar() bool {
	switch f {
	case FormatI420, FormatYV12, FormatY444, FormatY42B, FormatY41B:
		return true
	}
	return false
}

// IsPacked422 reports whether the format interleaves two pixels into one
// 4-byte macropixel.
func (f PixelFormat) IsPacked422() bool {
	switch f {
	case FormatYUY2, FormatYVYU, FormatUYVY:
		return true
	}
	return false
}

// HasAlpha reports whether the format carries a real alpha channel.
func (f PixelFormat) HasAlpha() bool {
	switch f {
	case FormatAYUV, FormatARGB, FormatABGR, FormatRGBA, FormatBGRA:
		return true
	}
	return false
}

// IsYUV reports whether samples are Y/Cb/Cr rather than R/G/B.
func (f PixelFormat) IsYUV() bool {
	switch f {
	case FormatAYUV, FormatI420, FormatYV12, FormatY444, FormatY42B,
		FormatY41B, FormatYUY2, FormatYVYU, FormatUYVY:
		return true
	}
	return false
}

// NumComponents returns the number of scaled components: 3 for planar
// formats, 1 for everything packed.
func (f PixelFormat) NumComponents() int {
	if f.IsPlanar() {
		return 3
	}
	return 1
}

func roundUp2(v int) int  { return (v + 1) &^ 1 }
func roundUp4(v int) int  { return (v + 3) &^ 3 }
func roundUp8(v int) int  { return (v + 7) &^ 7 }
func roundUp16(v int) int { return (v + 15) &^ 15 }

// PixelStride returns the distance in bytes between two horizontally
// adjacent samples of the given component.
func (f PixelFormat) PixelStride(component int) int {
	switch f {
	case FormatAYUV, FormatARGB, FormatABGR, FormatRGBA, FormatBGRA,
		FormatXRGB, FormatXBGR, FormatRGBX, FormatBGRX:
		return 4
	case FormatRGB, FormatBGR:
		return 3
	case FormatYUY2, FormatYVYU, FormatUYVY:
		return 2
	default:
		return 1
	}
}

// ComponentWidth returns the width of a component plane in samples.
func (f PixelFormat) ComponentWidth(component, width int) int {
	if component == 0 {
		return width
	}
	switch f {
	case FormatI420, FormatYV12, FormatY42B:
		return roundUp2(width) / 2
	case FormatY41B:
		return roundUp4(width) / 4
	default:
		return width
	}
}

// ComponentHeight returns the height of a component plane in samples.
func (f PixelFormat) ComponentHeight(component, height int) int {
	if component == 0 {
		return height
	}
	switch f {
	case FormatI420, FormatYV12:
		return roundUp2(height) / 2
	default:
		return height
	}
}

// RowStride returns the distance in bytes between two rows of a component.
func (f PixelFormat) RowStride(component, width int) int {
	switch f {
	case FormatAYUV, FormatARGB, FormatABGR, FormatRGBA, FormatBGRA,
		FormatXRGB, FormatXBGR, FormatRGBX, FormatBGRX:
		return width * 4
	case FormatRGB, FormatBGR:
		return roundUp4(width * 3)
	case FormatYUY2, FormatYVYU, FormatUYVY:
		return roundUp4(width) * 2
	case FormatI420, FormatYV12:
		if component == 0 {
			return roundUp4(width)
		}
		return roundUp8(width) / 2
	case FormatY444:
		return roundUp4(width)
	case FormatY42B:
		if component == 0 {
			return roundUp4(width)
		}
		return roundUp8(width) / 2
	case FormatY41B:
		if component == 0 {
			return roundUp4(width)
		}
		return roundUp16(width) / 4
	default:
		return 0
	}
}

// ComponentOffset returns the byte offset of a component plane inside a
// frame of the given geometry. For packed formats it returns the offset of
// the first sample of that component within the first macropixel.
func (f PixelFormat) ComponentOffset(component, width, height int) int {
	switch f {
	case FormatI420:
		switch component {
		case 1:
			return f.RowStride(0, width) * roundUp2(height)
		case 2:
			return f.ComponentOffset(1, width, height) +
				f.RowStride(1, width)*(roundUp2(height)/2)
		}
		return 0
	case FormatYV12: // same layout as I420 with U and V swapped
		switch component {
		case 1:
			return f.ComponentOffset(2, width, height) +
				f.RowStride(1, width)*(roundUp2(height)/2)
		case 2:
			return f.RowStride(0, width) * roundUp2(height)
		}
		return 0
	case FormatY444, FormatY42B, FormatY41B:
		switch component {
		case 1:
			return f.RowStride(0, width) * height
		case 2:
			return f.ComponentOffset(1, width, height) +
				f.RowStride(1, width)*height
		}
		return 0
	case FormatYUY2: // Y0 U Y1 V
		return [3]int{0, 1, 3}[component]
	case FormatYVYU: // Y0 V Y1 U
		return [3]int{0, 3, 1}[component]
	case FormatUYVY: // U Y0 V Y1
		return [3]int{1, 0, 2}[component]
	default:
		return 0
	}
}

// FrameSize returns the number of bytes needed for one frame.
func (f PixelFormat) FrameSize(width, height int) int {
	switch f {
	case FormatI420, FormatYV12:
		return f.RowStride(0, width)*roundUp2(height) +
			2*f.RowStride(1, width)*(roundUp2(height)/2)
	case FormatY444, FormatY42B, FormatY41B:
		return f.RowStride(0, width)*height + 2*f.RowStride(1, width)*height
	default:
		return f.RowStride(0, width) * height
	}
}
