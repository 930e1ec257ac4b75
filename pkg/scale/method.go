// Package scale resamples raw video frames between geometries. Every
// supported pixel format decomposes into byte planes that are scaled
// independently with deterministic fixed-point filters, so results are
// bit-exact across runs and platforms.
package scale

import "fmt"

// Method selects the resampling filter.
type Method int

const (
	// Nearest picks the nearest source sample.
	Nearest Method = iota
	// Bilinear interpolates linearly between the two nearest samples per
	// axis.
	Bilinear
	// FourTap applies a 4-tap Catmull-Rom filter per axis. It falls back
	// to Bilinear when the input is smaller than 4 pixels in either
	// dimension, and every method falls back to Nearest at input width 1.
	FourTap
)

func (m Method) String() string {
	switch m {
	case Nearest:
		return "nearest"
	case Bilinear:
		return "bilinear"
	case FourTap:
		return "4-tap"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// ParseMethod resolves a method name as used in configuration files.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "nearest", "nearest-neighbour":
		return Nearest, nil
	case "bilinear":
		return Bilinear, nil
	case "4-tap", "4tap":
		return FourTap, nil
	default:
		return Nearest, fmt.Errorf("unknown scaling method %q", s)
	}
}
