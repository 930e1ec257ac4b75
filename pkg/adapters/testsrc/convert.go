package testsrc

import (
	"image"

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

// rgbToYCbCr converts one R'G'B' triple to studio-swing Y'CbCr (BT.601),
// the inverse of the fill-color conversion used on RGB destinations.
func rgbToYCbCr(r, g, b int) (y, cb, cr byte) {
	y = clamp8(16 + ((66*r + 129*g + 25*b + 128) >> 8))
	cb = clamp8(128 + ((-38*r - 74*g + 112*b + 128) >> 8))
	cr = clamp8(128 + ((112*r - 94*g - 18*b + 128) >> 8))
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

// chromaSubsampleShift mirrors the chroma geometry of the planar formats.
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

// fromRGBA converts a rendered RGBA image into the frame's pixel format.
// The image and frame must share the same geometry.
func fromRGBA(img *image.RGBA, f *video.Frame) {
	at := func(x, y int) (r, g, b, a int) {
		off := img.PixOffset(x, y)
		p := img.Pix[off : off+4]
		return int(p[0]), int(p[1]), int(p[2]), int(p[3])
	}

	format := f.Format
	w, h := f.Width, f.Height
	switch {
	case format == video.FormatAYUV:
		stride := format.RowStride(0, w)
		for y := 0; y < h; y++ {
			row := f.Data[y*stride:]
			for x := 0; x < w; x++ {
				r, g, b, a := at(x, y)
				yy, cb, cr := rgbToYCbCr(r, g, b)
				p := row[x*4 : x*4+4]
				p[0], p[1], p[2], p[3] = byte(a), yy, cb, cr
			}
		}

	case format.IsPlanar():
		hs, vs := chromaSubsampleShift(format)
		lumaStride := format.RowStride(0, w)
		for y := 0; y < h; y++ {
			row := f.Data[y*lumaStride:]
			for x := 0; x < w; x++ {
				r, g, b, _ := at(x, y)
				yy, _, _ := rgbToYCbCr(r, g, b)
				row[x] = yy
			}
		}
		cw := format.ComponentWidth(1, w)
		ch := format.ComponentHeight(1, h)
		cStride := format.RowStride(1, w)
		uPlane := f.Data[format.ComponentOffset(1, w, h):]
		vPlane := f.Data[format.ComponentOffset(2, w, h):]
		for cy := 0; cy < ch; cy++ {
			for cx := 0; cx < cw; cx++ {
				sx, sy := cx<<hs, cy<<vs
				if sx >= w {
					sx = w - 1
				}
				if sy >= h {
					sy = h - 1
				}
				r, g, b, _ := at(sx, sy)
				_, cb, cr := rgbToYCbCr(r, g, b)
				uPlane[cy*cStride+cx] = cb
				vPlane[cy*cStride+cx] = cr
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
				r, g, b, _ := at(x, y)
				yy, _, _ := rgbToYCbCr(r, g, b)
				row[x*2+yOff] = yy
			}
			// Chroma comes from the left pixel of each macropixel.
			for cx := 0; cx < (w+1)/2; cx++ {
				r, g, b, _ := at(cx*2, y)
				_, cb, cr := rgbToYCbCr(r, g, b)
				row[cx*4+uOff] = cb
				row[cx*4+vOff] = cr
			}
		}

	default:
		aOff, rgb, ok := packedRGBLayout(format)
		if !ok {
			return
		}
		bpp := format.PixelStride(0)
		stride := format.RowStride(0, w)
		for y := 0; y < h; y++ {
			row := f.Data[y*stride:]
			for x := 0; x < w; x++ {
				r, g, b, a := at(x, y)
				p := row[x*bpp : x*bpp+bpp]
				p[rgb[0]], p[rgb[1]], p[rgb[2]] = byte(r), byte(g), byte(b)
				if aOff >= 0 {
					if format.HasAlpha() {
						p[aOff] = byte(a)
					} else {
						p[aOff] = 0xff
					}
				}
			}
		}
	}
}
