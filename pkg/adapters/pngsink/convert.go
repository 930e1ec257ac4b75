package pngsink

import (
	"image"
	"image/color"

	"github.com/user/videomix/pkg/video"
)

func clamp8(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// ycbcrToRGB converts one studio-swing Y'CbCr triple to R'G'B' (BT.601).
func ycbcrToRGB(y, cb, cr int) (r, g, b byte) {
	c := y - 16
	d := cb - 128
	e := cr - 128
	r = clamp8((298*c + 409*e + 128) >> 8)
	g = clamp8((298*c - 100*d - 208*e + 128) >> 8)
	b = clamp8((298*c + 516*d + 128) >> 8)
	return
}

// packedRGBLayout returns the alpha byte offset (-1 when absent) and the
// R, G, B byte offsets of a packed RGB-family pixel.
func packedRGBLayout(f video.PixelFormat) (aOff int, rgb [3]int, ok bool) {
	switch f {
	case video.FormatARGB, video.FormatXRGB:
		return 0, [3]int{1, 2, 3}, true
	case video.FormatABGR, video.FormatXBGR:
		return 0, [3]int{3, 2, 1}, true
	case video.FormatRGBA, video.FormatRGBX:
		return 3, [3]int{0, 1, 2}, true
	case video.FormatBGRA, video.FormatBGRX:
		return 3, [3]int{2, 1, 0}, true
	case video.FormatRGB:
		return -1, [3]int{0, 1, 2}, true
	case video.FormatBGR:
		return -1, [3]int{2, 1, 0}, true
	default:
		return 0, [3]int{}, false
	}
}

func chromaSubsampleShift(f video.PixelFormat) (hs, vs int) {
	switch f {
	case video.FormatI420, video.FormatYV12:
		return 1, 1
	case video.FormatY42B:
		return 1, 0
	case video.FormatY41B:
		return 2, 0
	default:
		return 0, 0
	}
}

// toNRGBA renders a frame of any supported format into an NRGBA image.
func toNRGBA(f *video.Frame) *image.NRGBA {
	w, h := f.Width, f.Height
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	format := f.Format

	set := func(x, y int, r, g, b, a byte) {
		img.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: a})
	}

	switch {
	case format == video.FormatAYUV:
		stride := format.RowStride(0, w)
		for y := 0; y < h; y++ {
			row := f.Data[y*stride:]
			for x := 0; x < w; x++ {
				p := row[x*4 : x*4+4]
				r, g, b := ycbcrToRGB(int(p[1]), int(p[2]), int(p[3]))
				set(x, y, r, g, b, p[0])
			}
		}

	case format.IsPlanar():
		hs, vs := chromaSubsampleShift(format)
		lumaStride := format.RowStride(0, w)
		cStride := format.RowStride(1, w)
		uPlane := f.Data[format.ComponentOffset(1, w, h):]
		vPlane := f.Data[format.ComponentOffset(2, w, h):]
		for y := 0; y < h; y++ {
			row := f.Data[y*lumaStride:]
			for x := 0; x < w; x++ {
				cOff := (y>>vs)*cStride + (x >> hs)
				r, g, b := ycbcrToRGB(int(row[x]), int(uPlane[cOff]), int(vPlane[cOff]))
				set(x, y, r, g, b, 0xff)
			}
		}

	case format.IsPacked422():
		stride := format.RowStride(0, w)
		yOff := format.ComponentOffset(0, w, h)
		uOff := format.ComponentOffset(1, w, h)
		vOff := format.ComponentOffset(2, w, h)
		for y := 0; y < h; y++ {
			row := f.Data[y*stride:]
			for x := 0; x < w; x++ {
				cb := row[(x/2)*4+uOff]
				cr := row[(x/2)*4+vOff]
				r, g, b := ycbcrToRGB(int(row[x*2+yOff]), int(cb), int(cr))
				set(x, y, r, g, b, 0xff)
			}
		}

	default:
		aOff, rgb, ok := packedRGBLayout(format)
		if !ok {
			return img
		}
		bpp := format.PixelStride(0)
		stride := format.RowStride(0, w)
		for y := 0; y < h; y++ {
			row := f.Data[y*stride:]
			for x := 0; x < w; x++ {
				p := row[x*bpp : x*bpp+bpp]
				a := byte(0xff)
				if aOff >= 0 && format.HasAlpha() {
					a = p[aOff]
				}
				set(x, y, p[rgb[0]], p[rgb[1]], p[rgb[2]], a)
			}
		}
	}
	return img
}
