// Package blend implements per-pixel-format compositing: alpha blending a
// source frame into a destination frame at an offset, and background fills.
// Each supported format resolves once, at negotiation time, to an Ops table
// so the per-frame path never switches on the format.
package blend

import (
	"fmt"

	"github.com/user/videomix/pkg/video"
)

// Func composites src (srcW x srcH) into dst (dstW x dstH) at (xpos, ypos)
// with the given global opacity in [0,1]. Source pixels falling outside the
// destination are clipped.
type Func func(src []byte, xpos, ypos, srcW, srcH int, alpha float64, dst []byte, dstW, dstH int)

// FillCheckerFunc fills dst with the 8x8 checker background pattern.
type FillCheckerFunc func(dst []byte, width, height int)

// FillColorFunc fills dst with a solid color given as Y'CbCr components
// (16,128,128 = black, 240,128,128 = white). RGB formats convert.
type FillColorFunc func(dst []byte, width, height int, y, u, v int)

// Ops is the function table for one pixel format.
type Ops struct {
	// Blend treats the destination as opaque.
	Blend Func
	// Overlay respects and produces destination alpha, for transparent
	// backgrounds that will be composited again downstream.
	Overlay     Func
	FillChecker FillCheckerFunc
	FillColor   FillColorFunc
}

// OpsFor resolves the function table for a format. Formats without a real
// alpha channel use Blend for Overlay as well.
func OpsFor(format video.PixelFormat) (*Ops, error) {
	switch format {
	case video.FormatAYUV:
		return packedAlphaOps(format, 0, [3]int{1, 2, 3}, true), nil
	case video.FormatARGB:
		return packedAlphaOps(format, 0, [3]int{1, 2, 3}, false), nil
	case video.FormatABGR:
		return packedAlphaOps(format, 0, [3]int{3, 2, 1}, false), nil
	case video.FormatRGBA:
		return packedAlphaOps(format, 3, [3]int{0, 1, 2}, false), nil
	case video.FormatBGRA:
		return packedAlphaOps(format, 3, [3]int{2, 1, 0}, false), nil
	case video.FormatXRGB:
		return packedOpaqueOps(format, 4, [3]int{1, 2, 3}), nil
	case video.FormatXBGR:
		return packedOpaqueOps(format, 4, [3]int{3, 2, 1}), nil
	case video.FormatRGBX:
		return packedOpaqueOps(format, 4, [3]int{0, 1, 2}), nil
	case video.FormatBGRX:
		return packedOpaqueOps(format, 4, [3]int{2, 1, 0}), nil
	case video.FormatRGB:
		return packedOpaqueOps(format, 3, [3]int{0, 1, 2}), nil
	case video.FormatBGR:
		return packedOpaqueOps(format, 3, [3]int{2, 1, 0}), nil
	case video.FormatI420, video.FormatYV12, video.FormatY444,
		video.FormatY42B, video.FormatY41B:
		return planarOps(format), nil
	case video.FormatYUY2, video.FormatYVYU, video.FormatUYVY:
		return packed422Ops(format), nil
	default:
		return nil, fmt.Errorf("no blend implementation for format %s", format)
	}
}

// globalAlpha maps an opacity in [0,1] to the 0..256 fixed-point factor
// applied on top of per-pixel alpha.
func globalAlpha(alpha float64) int {
	a := int(alpha * 256)
	if a < 0 {
		a = 0
	}
	if a > 256 {
		a = 256
	}
	return a
}

// clip adjusts the blend rectangle so it lies inside the destination.
// Returns the source x/y offset to start reading from and the clipped
// width/height; w or h <= 0 means nothing is visible.
func clip(xpos, ypos, srcW, srcH, dstW, dstH int) (srcX, srcY, dstX, dstY, w, h int) {
	srcX, srcY = 0, 0
	dstX, dstY = xpos, ypos
	w, h = srcW, srcH
	if dstX < 0 {
		srcX = -dstX
		w += dstX
		dstX = 0
	}
	if dstY < 0 {
		srcY = -dstY
		h += dstY
		dstY = 0
	}
	if dstX+w > dstW {
		w = dstW - dstX
	}
	if dstY+h > dstH {
		h = dstH - dstY
	}
	return
}

const (
	checkerDark  = 0x66
	checkerLight = 0x92
)

// checkerValue returns the checker luma/gray value for a pixel.
func checkerValue(x, y int) byte {
	if (x&8)^(y&8) != 0 {
		return checkerLight
	}
	return checkerDark
}

// ycbcrToRGB converts one Y'CbCr triple to R'G'B' (BT.601 full-swing
// conversion with clamping), for solid fills on RGB destinations.
func ycbcrToRGB(y, u, v int) (r, g, b int) {
	c := y - 16
	d := u - 128
	e := v - 128
	clamp := func(v int) int {
		if v < 0 {
			return 0
		}
		if v > 255 {
			return 255
		}
		return v
	}
	r = clamp((298*c + 409*e + 128) >> 8)
	g = clamp((298*c - 100*d - 208*e + 128) >> 8)
	b = clamp((298*c + 516*d + 128) >> 8)
	return
}
