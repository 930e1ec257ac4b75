package scale

import (
	"fmt"
	"math"

	"github.com/user/videomix/pkg/video"
)

// Frame resamples src to width x height. A zero target dimension means
// "native size"; when the target equals the native geometry the input
// frame is returned unchanged (pass-through, no copy).
func Frame(src *video.Frame, width, height int, method Method) (*video.Frame, error) {
	if width == 0 {
		width = src.Width
	}
	if height == 0 {
		height = src.Height
	}
	if width == src.Width && height == src.Height {
		return src, nil
	}
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("invalid target geometry %dx%d", width, height)
	}
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if src.Format == video.FormatUnknown {
		return nil, fmt.Errorf("cannot scale frames of unknown format")
	}

	// Degenerate inputs cannot feed the wider filters.
	if src.Width == 1 {
		method = Nearest
	} else if method == FourTap && (src.Width < 4 || src.Height < 4) {
		method = Bilinear
	}

	dst := video.NewFrame(src.Format, width, height)
	dst.PTS = src.PTS
	dst.Duration = src.Duration

	srcViews := planeViews(src.Format, src.Width, src.Height, src.Data)
	dstViews := planeViews(dst.Format, dst.Width, dst.Height, dst.Data)
	for i := range srcViews {
		switch method {
		case Nearest:
			scaleNearest(dstViews[i], srcViews[i])
		case Bilinear:
			scaleBilinear(dstViews[i], srcViews[i])
		case FourTap:
			scale4Tap(dstViews[i], srcViews[i])
		default:
			return nil, fmt.Errorf("unknown scaling method %d", method)
		}
	}
	return dst, nil
}

// 16.16 fixed-point stepping keeps sample positions deterministic.

func nearestInc(srcSize, dstSize int) int {
	return (srcSize << 16) / dstSize
}

// linearInc aligns the first and last samples of source and destination.
func linearInc(srcSize, dstSize int) int {
	if dstSize <= 1 {
		return 0
	}
	return ((srcSize - 1) << 16) / (dstSize - 1)
}

func scaleNearest(dst, src planeView) {
	xInc := nearestInc(src.width, dst.width)
	yInc := nearestInc(src.height, dst.height)
	for y := 0; y < dst.height; y++ {
		sy := (y * yInc) >> 16
		for x := 0; x < dst.width; x++ {
			sx := (x * xInc) >> 16
			copy(dst.sample(x, y), src.sample(sx, sy))
		}
	}
}

func scaleBilinear(dst, src planeView) {
	xInc := linearInc(src.width, dst.width)
	yInc := linearInc(src.height, dst.height)
	for y := 0; y < dst.height; y++ {
		yAcc := y * yInc
		sy := yAcc >> 16
		fy := (yAcc >> 8) & 0xff
		sy1 := sy
		if sy1 < src.height-1 {
			sy1++
		}
		for x := 0; x < dst.width; x++ {
			xAcc := x * xInc
			sx := xAcc >> 16
			fx := (xAcc >> 8) & 0xff
			sx1 := sx
			if sx1 < src.width-1 {
				sx1++
			}
			p00 := src.sample(sx, sy)
			p10 := src.sample(sx1, sy)
			p01 := src.sample(sx, sy1)
			p11 := src.sample(sx1, sy1)
			out := dst.sample(x, y)
			for c := 0; c < dst.channels; c++ {
				top := int(p00[c])*(256-fx) + int(p10[c])*fx
				bot := int(p01[c])*(256-fx) + int(p11[c])*fx
				out[c] = byte((top*(256-fy) + bot*fy + 32768) >> 16)
			}
		}
	}
}

// tapWeights returns the four Catmull-Rom weights for a phase in 0..255,
// quantized to 1/256 units. The center tap absorbs quantization error so
// the weights always sum to exactly 256, which keeps flat input exact.
func tapWeights(frac int) [4]int {
	t := float64(frac) / 256
	w0 := int(math.Round((-0.5*t + t*t - 0.5*t*t*t) * 256))
	w2 := int(math.Round((0.5*t + 2*t*t - 1.5*t*t*t) * 256))
	w3 := int(math.Round((-0.5*t*t + 0.5*t*t*t) * 256))
	return [4]int{w0, 256 - w0 - w2 - w3, w2, w3}
}

func clampIndex(i, max int) int {
	if i < 0 {
		return 0
	}
	if i > max {
		return max
	}
	return i
}

func clampByte(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// scale4Tap runs a separable 4-tap pass vertically then horizontally. The
// intermediate rows are kept at 256x precision so negative lobes don't
// clip between passes.
func scale4Tap(dst, src planeView) {
	xInc := linearInc(src.width, dst.width)
	yInc := linearInc(src.height, dst.height)
	ch := src.channels

	// Vertical pass: dst.height rows at source width.
	tmp := make([]int32, dst.height*src.width*ch)
	for y := 0; y < dst.height; y++ {
		yAcc := y * yInc
		sy := yAcc >> 16
		w := tapWeights((yAcc >> 8) & 0xff)
		rows := [4]int{
			clampIndex(sy-1, src.height-1),
			clampIndex(sy, src.height-1),
			clampIndex(sy+1, src.height-1),
			clampIndex(sy+2, src.height-1),
		}
		out := tmp[y*src.width*ch:]
		for x := 0; x < src.width; x++ {
			for c := 0; c < ch; c++ {
				var acc int
				for t := 0; t < 4; t++ {
					acc += w[t] * int(src.sample(x, rows[t])[c])
				}
				out[x*ch+c] = int32(acc)
			}
		}
	}

	// Horizontal pass over the intermediate rows.
	for y := 0; y < dst.height; y++ {
		row := tmp[y*src.width*ch:]
		for x := 0; x < dst.width; x++ {
			xAcc := x * xInc
			sx := xAcc >> 16
			w := tapWeights((xAcc >> 8) & 0xff)
			cols := [4]int{
				clampIndex(sx-1, src.width-1),
				clampIndex(sx, src.width-1),
				clampIndex(sx+1, src.width-1),
				clampIndex(sx+2, src.width-1),
			}
			out := dst.sample(x, y)
			for c := 0; c < ch; c++ {
				var acc int
				for t := 0; t < 4; t++ {
					acc += w[t] * int(row[cols[t]*ch+c])
				}
				out[c] = clampByte((acc + 32768) >> 16)
			}
		}
	}
}
