package blend

import "github.com/user/videomix/pkg/video"

// packedAlphaOps builds the Ops table for 4-byte packed formats carrying a
// real alpha channel. aOff is the alpha byte offset inside a pixel, cOff
// the offsets of the three color components in R,G,B (or Y,U,V) order.
func packedAlphaOps(format video.PixelFormat, aOff int, cOff [3]int, yuv bool) *Ops {
	stride := func(w int) int { return format.RowStride(0, w) }

	blend := func(src []byte, xpos, ypos, srcW, srcH int, alpha float64, dst []byte, dstW, dstH int) {
		ga := globalAlpha(alpha)
		srcX, srcY, dstX, dstY, w, h := clip(xpos, ypos, srcW, srcH, dstW, dstH)
		if w <= 0 || h <= 0 {
			return
		}
		srcStride, dstStride := stride(srcW), stride(dstW)
		for row := 0; row < h; row++ {
			s := src[(srcY+row)*srcStride+srcX*4:]
			d := dst[(dstY+row)*dstStride+dstX*4:]
			for col := 0; col < w; col++ {
				sp := s[col*4 : col*4+4]
				dp := d[col*4 : col*4+4]
				a := (int(sp[aOff]) * ga) >> 8
				for _, off := range cOff {
					dp[off] = byte((int(sp[off])*a + int(dp[off])*(255-a)) / 255)
				}
				dp[aOff] = 0xff
			}
		}
	}

	overlay := func(src []byte, xpos, ypos, srcW, srcH int, alpha float64, dst []byte, dstW, dstH int) {
		ga := globalAlpha(alpha)
		srcX, srcY, dstX, dstY, w, h := clip(xpos, ypos, srcW, srcH, dstW, dstH)
		if w <= 0 || h <= 0 {
			return
		}
		srcStride, dstStride := stride(srcW), stride(dstW)
		for row := 0; row < h; row++ {
			s := src[(srcY+row)*srcStride+srcX*4:]
			d := dst[(dstY+row)*dstStride+dstX*4:]
			for col := 0; col < w; col++ {
				sp := s[col*4 : col*4+4]
				dp := d[col*4 : col*4+4]
				sa := (int(sp[aOff]) * ga) >> 8
				da := int(dp[aOff])
				ra := sa + da*(255-sa)/255
				if ra == 0 {
					dp[cOff[0]], dp[cOff[1]], dp[cOff[2]] = 0, 0, 0
				} else {
					for _, off := range cOff {
						num := int(sp[off])*sa*255 + int(dp[off])*da*(255-sa)
						dp[off] = byte(num / (255 * ra))
					}
				}
				dp[aOff] = byte(ra)
			}
		}
	}

	fillChecker := func(dst []byte, width, height int) {
		rowStride := stride(width)
		for y := 0; y < height; y++ {
			d := dst[y*rowStride:]
			for x := 0; x < width; x++ {
				p := d[x*4 : x*4+4]
				v := checkerValue(x, y)
				p[aOff] = 0xff
				if yuv {
					p[cOff[0]] = v
					p[cOff[1]] = 0x80
					p[cOff[2]] = 0x80
				} else {
					p[cOff[0]], p[cOff[1]], p[cOff[2]] = v, v, v
				}
			}
		}
	}

	fillColor := func(dst []byte, width, height int, yv, uv, vv int) {
		var c0, c1, c2 byte
		if yuv {
			c0, c1, c2 = byte(yv), byte(uv), byte(vv)
		} else {
			r, g, b := ycbcrToRGB(yv, uv, vv)
			c0, c1, c2 = byte(r), byte(g), byte(b)
		}
		rowStride := stride(width)
		for y := 0; y < height; y++ {
			d := dst[y*rowStride:]
			for x := 0; x < width; x++ {
				p := d[x*4 : x*4+4]
				p[aOff] = 0xff
				p[cOff[0]], p[cOff[1]], p[cOff[2]] = c0, c1, c2
			}
		}
	}

	return &Ops{Blend: blend, Overlay: overlay, FillChecker: fillChecker, FillColor: fillColor}
}

// packedOpaqueOps builds the Ops table for packed formats without an alpha
// channel (3-byte RGB/BGR and 4-byte padded variants). Only the global
// opacity applies; Overlay degenerates to Blend.
func packedOpaqueOps(format video.PixelFormat, bpp int, cOff [3]int) *Ops {
	stride := func(w int) int { return format.RowStride(0, w) }

	blend := func(src []byte, xpos, ypos, srcW, srcH int, alpha float64, dst []byte, dstW, dstH int) {
		a := globalAlpha(alpha) * 255 >> 8
		srcX, srcY, dstX, dstY, w, h := clip(xpos, ypos, srcW, srcH, dstW, dstH)
		if w <= 0 || h <= 0 {
			return
		}
		srcStride, dstStride := stride(srcW), stride(dstW)
		for row := 0; row < h; row++ {
			s := src[(srcY+row)*srcStride+srcX*bpp:]
			d := dst[(dstY+row)*dstStride+dstX*bpp:]
			for col := 0; col < w; col++ {
				sp := s[col*bpp : col*bpp+bpp]
				dp := d[col*bpp : col*bpp+bpp]
				for _, off := range cOff {
					dp[off] = byte((int(sp[off])*a + int(dp[off])*(255-a)) / 255)
				}
			}
		}
	}

	fillChecker := func(dst []byte, width, height int) {
		rowStride := stride(width)
		for y := 0; y < height; y++ {
			d := dst[y*rowStride:]
			for x := 0; x < width; x++ {
				p := d[x*bpp : x*bpp+bpp]
				v := checkerValue(x, y)
				p[cOff[0]], p[cOff[1]], p[cOff[2]] = v, v, v
			}
		}
	}

	fillColor := func(dst []byte, width, height int, yv, uv, vv int) {
		r, g, b := ycbcrToRGB(yv, uv, vv)
		rowStride := stride(width)
		for y := 0; y < height; y++ {
			d := dst[y*rowStride:]
			for x := 0; x < width; x++ {
				p := d[x*bpp : x*bpp+bpp]
				p[cOff[0]], p[cOff[1]], p[cOff[2]] = byte(r), byte(g), byte(b)
			}
		}
	}

	return &Ops{Blend: blend, Overlay: blend, FillChecker: fillChecker, FillColor: fillColor}
}
