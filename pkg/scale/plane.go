package scale

import "github.com/user/videomix/pkg/video"

// planeView is a strided view over one scalable component of a frame.
// pixStride is the byte distance between horizontally adjacent samples,
// channels the number of consecutive bytes interpolated per sample.
type planeView struct {
	data      []byte
	width     int
	height    int
	stride    int
	pixStride int
	channels  int
}

func (p planeView) sample(x, y int) []byte {
	off := y*p.stride + x*p.pixStride
	return p.data[off : off+p.channels]
}

// planeViews decomposes a frame buffer into independently scalable views.
func planeViews(format video.PixelFormat, width, height int, data []byte) []planeView {
	switch {
	case format.IsPlanar():
		views := make([]planeView, 3)
		for c := 0; c < 3; c++ {
			views[c] = planeView{
				data:      data[format.ComponentOffset(c, width, height):],
				width:     format.ComponentWidth(c, width),
				height:    format.ComponentHeight(c, height),
				stride:    format.RowStride(c, width),
				pixStride: 1,
				channels:  1,
			}
		}
		return views
	case format.IsPacked422():
		stride := format.RowStride(0, width)
		views := make([]planeView, 3)
		views[0] = planeView{
			data:  data[format.ComponentOffset(0, width, height):],
			width: width, height: height, stride: stride,
			pixStride: 2, channels: 1,
		}
		for c := 1; c < 3; c++ {
			views[c] = planeView{
				data:  data[format.ComponentOffset(c, width, height):],
				width: (width + 1) / 2, height: height, stride: stride,
				pixStride: 4, channels: 1,
			}
		}
		return views
	default:
		bpp := format.PixelStride(0)
		return []planeView{{
			data:  data,
			width: width, height: height,
			stride:    format.RowStride(0, width),
			pixStride: bpp,
			channels:  bpp,
		}}
	}
}
