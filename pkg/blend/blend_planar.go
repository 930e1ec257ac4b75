package blend

import "github.com/user/videomix/pkg/video"

// plane is a strided byte view over one component of a frame.
type plane struct {
	data      []byte
	width     int
	height    int
	stride    int
	pixStride int
}

func framePlane(format video.PixelFormat, component int, width, height int, data []byte) plane {
	return plane{
		data:      data[format.ComponentOffset(component, width, height):],
		width:     format.ComponentWidth(component, width),
		height:    format.ComponentHeight(component, height),
		stride:    format.RowStride(component, width),
		pixStride: format.PixelStride(component),
	}
}

// blendPlane mixes src into dst at (xpos, ypos) with alpha a in 0..255.
func blendPlane(src, dst plane, xpos, ypos, a int) {
	srcX, srcY, dstX, dstY, w, h := clip(xpos, ypos, src.width, src.height, dst.width, dst.height)
	if w <= 0 || h <= 0 {
		return
	}
	for row := 0; row < h; row++ {
		s := src.data[(srcY+row)*src.stride+srcX*src.pixStride:]
		d := dst.data[(dstY+row)*dst.stride+dstX*dst.pixStride:]
		for col := 0; col < w; col++ {
			sv := int(s[col*src.pixStride])
			dv := int(d[col*dst.pixStride])
			d[col*dst.pixStride] = byte((sv*a + dv*(255-a)) / 255)
		}
	}
}

func fillPlane(p plane, value byte) {
	for row := 0; row < p.height; row++ {
		d := p.data[row*p.stride:]
		for col := 0; col < p.width; col++ {
			d[col*p.pixStride] = value
		}
	}
}

func fillPlaneChecker(p plane) {
	for row := 0; row < p.height; row++ {
		d := p.data[row*p.stride:]
		for col := 0; col < p.width; col++ {
			d[col*p.pixStride] = checkerValue(col, row)
		}
	}
}

// chromaShift returns the horizontal and vertical subsampling shifts of
// the chroma planes relative to luma.
func chromaShift(format video.PixelFormat) (hs, vs int) {
	switch format {
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

// planarOps builds the Ops table for three-plane YUV formats. There is no
// alpha channel, so Overlay is the same as Blend.
func planarOps(format video.PixelFormat) *Ops {
	hs, vs := chromaShift(format)

	blend := func(src []byte, xpos, ypos, srcW, srcH int, alpha float64, dst []byte, dstW, dstH int) {
		a := globalAlpha(alpha) * 255 >> 8
		for c := 0; c < 3; c++ {
			sp := framePlane(format, c, srcW, srcH, src)
			dp := framePlane(format, c, dstW, dstH, dst)
			x, y := xpos, ypos
			if c > 0 {
				x >>= hs
				y >>= vs
			}
			blendPlane(sp, dp, x, y, a)
		}
	}

	fillChecker := func(dst []byte, width, height int) {
		fillPlaneChecker(framePlane(format, 0, width, height, dst))
		fillPlane(framePlane(format, 1, width, height, dst), 0x80)
		fillPlane(framePlane(format, 2, width, height, dst), 0x80)
	}

	fillColor := func(dst []byte, width, height int, yv, uv, vv int) {
		fillPlane(framePlane(format, 0, width, height, dst), byte(yv))
		fillPlane(framePlane(format, 1, width, height, dst), byte(uv))
		fillPlane(framePlane(format, 2, width, height, dst), byte(vv))
	}

	return &Ops{Blend: blend, Overlay: blend, FillChecker: fillChecker, FillColor: fillColor}
}

// packed422Ops builds the Ops table for interleaved 4:2:2 formats. Luma
// sits at every second byte, chroma alternates inside 4-byte macropixels.
// Horizontal placement is constrained to even offsets so macropixels stay
// aligned.
func packed422Ops(format video.PixelFormat) *Ops {
	views := func(width, height int, data []byte) (y, u, v plane) {
		stride := format.RowStride(0, width)
		y = plane{data: data[format.ComponentOffset(0, width, height):],
			width: width, height: height, stride: stride, pixStride: 2}
		u = plane{data: data[format.ComponentOffset(1, width, height):],
			width: (width + 1) / 2, height: height, stride: stride, pixStride: 4}
		v = plane{data: data[format.ComponentOffset(2, width, height):],
			width: (width + 1) / 2, height: height, stride: stride, pixStride: 4}
		return
	}

	blend := func(src []byte, xpos, ypos, srcW, srcH int, alpha float64, dst []byte, dstW, dstH int) {
		a := globalAlpha(alpha) * 255 >> 8
		xpos &^= 1
		sy, su, sv := views(srcW, srcH, src)
		dy, du, dv := views(dstW, dstH, dst)
		blendPlane(sy, dy, xpos, ypos, a)
		blendPlane(su, du, xpos/2, ypos, a)
		blendPlane(sv, dv, xpos/2, ypos, a)
	}

	fillChecker := func(dst []byte, width, height int) {
		y, u, v := views(width, height, dst)
		fillPlaneChecker(y)
		fillPlane(u, 0x80)
		fillPlane(v, 0x80)
	}

	fillColor := func(dst []byte, width, height int, yv, uv, vv int) {
		y, u, v := views(width, height, dst)
		fillPlane(y, byte(yv))
		fillPlane(u, byte(uv))
		fillPlane(v, byte(vv))
	}

	return &Ops{Blend: blend, Overlay: blend, FillChecker: fillChecker, FillColor: fillColor}
}
