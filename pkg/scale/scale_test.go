package scale

import (
	"bytes"
	"testing"

	"github.com/user/videomix/pkg/video"
)

func flatFrame(format video.PixelFormat, w, h int, value byte) *video.Frame {
	f := video.NewFrame(format, w, h)
	for i := range f.Data {
		f.Data[i] = value
	}
	return f
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    Method
		wantErr bool
	}{
		{"nearest", Nearest, false},
		{"nearest-neighbour", Nearest, false},
		{"bilinear", Bilinear, false},
		{"4-tap", FourTap, false},
		{"4tap", FourTap, false},
		{"lanczos", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseMethod(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMethod(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseMethod(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFramePassThrough(t *testing.T) {
	src := flatFrame(video.FormatAYUV, 8, 8, 0x55)
	for _, dims := range [][2]int{{8, 8}, {0, 0}, {8, 0}, {0, 8}} {
		got, err := Frame(src, dims[0], dims[1], Bilinear)
		if err != nil {
			t.Fatalf("Frame(%v): %v", dims, err)
		}
		if got != src {
			t.Errorf("Frame(%v) copied instead of passing through", dims)
		}
	}
}

func TestFrameRejectsInvalidInput(t *testing.T) {
	src := flatFrame(video.FormatAYUV, 8, 8, 0)
	if _, err := Frame(src, -1, 4, Nearest); err == nil {
		t.Error("negative width accepted")
	}
	short := video.NewFrame(video.FormatAYUV, 8, 8)
	short.Data = short.Data[:16]
	if _, err := Frame(short, 4, 4, Nearest); err == nil {
		t.Error("short buffer accepted")
	}
}

// Resampling a flat-color frame must reproduce the color exactly at any
// target size, for every method and layout family.
func TestFlatColorIsExact(t *testing.T) {
	formats := []video.PixelFormat{video.FormatAYUV, video.FormatI420, video.FormatYUY2}
	methods := []Method{Nearest, Bilinear, FourTap}
	// Target widths are kept stride-exact so the whole buffer is sampled
	// and can be compared byte for byte.
	dims := [][2]int{{8, 4}, {8, 8}, {16, 8}, {64, 64}}

	for _, format := range formats {
		for _, method := range methods {
			src := flatFrame(format, 16, 16, 0x80)
			for _, d := range dims {
				got, err := Frame(src, d[0], d[1], method)
				if err != nil {
					t.Fatalf("%s %s -> %v: %v", format, method, d, err)
				}
				for i, b := range got.Data {
					if b != 0x80 {
						t.Fatalf("%s %s -> %v: byte %d = %#x, want 0x80",
							format, method, d, i, b)
					}
				}
			}
		}
	}
}

func TestFlatColorRoundTrip(t *testing.T) {
	for _, method := range []Method{Nearest, Bilinear} {
		src := flatFrame(video.FormatAYUV, 100, 100, 0x5a)
		up, err := Frame(src, 320, 240, method)
		if err != nil {
			t.Fatalf("%s up: %v", method, err)
		}
		down, err := Frame(up, 100, 100, method)
		if err != nil {
			t.Fatalf("%s down: %v", method, err)
		}
		for i, b := range down.Data {
			if b != 0x5a {
				t.Fatalf("%s round trip byte %d = %#x, want 0x5a", method, i, b)
			}
		}
	}
}

func TestNearestSamplePositions(t *testing.T) {
	// 2x1 AYUV doubled to 4x1: each source pixel covers two outputs.
	src := video.NewFrame(video.FormatAYUV, 2, 1)
	copy(src.Data, []byte{
		0xff, 0x10, 0x80, 0x80,
		0xff, 0xf0, 0x80, 0x80,
	})
	got, err := Frame(src, 4, 1, Nearest)
	if err != nil {
		t.Fatal(err)
	}
	wantLuma := []byte{0x10, 0x10, 0xf0, 0xf0}
	for i, want := range wantLuma {
		if got.Data[i*4+1] != want {
			t.Errorf("pixel %d luma = %#x, want %#x", i, got.Data[i*4+1], want)
		}
	}
}

func TestBilinearEndpointAlignment(t *testing.T) {
	// A 2x1 ramp widened to 3x1: the endpoints stay exact and the middle
	// is the midpoint.
	src := video.NewFrame(video.FormatAYUV, 2, 1)
	copy(src.Data, []byte{
		0x00, 0x00, 0x00, 0x00,
		0xff, 0xff, 0xff, 0xff,
	})
	got, err := Frame(src, 3, 1, Bilinear)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x00, 0x80, 0xff}
	for i, w := range want {
		for c := 0; c < 4; c++ {
			if got.Data[i*4+c] != w {
				t.Errorf("pixel %d channel %d = %#x, want %#x", i, c, got.Data[i*4+c], w)
			}
		}
	}
}

func TestSingleColumnFallsBackToNearest(t *testing.T) {
	src := flatFrame(video.FormatAYUV, 1, 4, 0x33)
	got, err := Frame(src, 3, 8, FourTap)
	if err != nil {
		t.Fatal(err)
	}
	for i, b := range got.Data {
		if b != 0x33 {
			t.Fatalf("byte %d = %#x, want 0x33", i, b)
		}
	}
}

func TestFourTapSmallInputMatchesBilinear(t *testing.T) {
	src := video.NewFrame(video.FormatAYUV, 3, 3)
	for i := range src.Data {
		src.Data[i] = byte(i * 7)
	}
	fourTap, err := Frame(src, 6, 6, FourTap)
	if err != nil {
		t.Fatal(err)
	}
	bilinear, err := Frame(src, 6, 6, Bilinear)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(fourTap.Data, bilinear.Data) {
		t.Error("inputs under 4x4 must fall back to the bilinear filter")
	}
}

func TestTapWeightsSumTo256(t *testing.T) {
	for frac := 0; frac < 256; frac++ {
		w := tapWeights(frac)
		if sum := w[0] + w[1] + w[2] + w[3]; sum != 256 {
			t.Fatalf("tapWeights(%d) sum = %d, want 256", frac, sum)
		}
	}
	if w := tapWeights(0); w != [4]int{0, 256, 0, 0} {
		t.Errorf("tapWeights(0) = %v, want identity", w)
	}
}

func TestScalePreservesTiming(t *testing.T) {
	src := flatFrame(video.FormatAYUV, 4, 4, 0x80)
	src.PTS = 42 * video.Millisecond
	src.Duration = 100 * video.Millisecond
	got, err := Frame(src, 8, 8, Nearest)
	if err != nil {
		t.Fatal(err)
	}
	if got.PTS != src.PTS || got.Duration != src.Duration {
		t.Errorf("timing = (%s, %s), want (%s, %s)", got.PTS, got.Duration, src.PTS, src.Duration)
	}
}

func TestPlanarScaleKeepsPlanesIndependent(t *testing.T) {
	// I420 4x4 with distinct plane values: each plane scales on its own.
	src := video.NewFrame(video.FormatI420, 4, 4)
	f := video.FormatI420
	for i := 0; i < f.ComponentOffset(1, 4, 4); i++ {
		src.Data[i] = 10
	}
	for i := f.ComponentOffset(1, 4, 4); i < f.ComponentOffset(2, 4, 4); i++ {
		src.Data[i] = 20
	}
	for i := f.ComponentOffset(2, 4, 4); i < len(src.Data); i++ {
		src.Data[i] = 30
	}

	got, err := Frame(src, 8, 8, Bilinear)
	if err != nil {
		t.Fatal(err)
	}
	if v := got.Data[0]; v != 10 {
		t.Errorf("luma = %d, want 10", v)
	}
	uBase := f.ComponentOffset(1, 8, 8)
	vBase := f.ComponentOffset(2, 8, 8)
	if v := got.Data[uBase]; v != 20 {
		t.Errorf("U = %d, want 20", v)
	}
	if v := got.Data[vBase]; v != 30 {
		t.Errorf("V = %d, want 30", v)
	}
}
