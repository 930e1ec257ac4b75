package mixer

import "fmt"

// Background selects how the output frame is filled before blending.
type Background int

const (
	// BackgroundChecker fills with an 8x8 checker pattern.
	BackgroundChecker Background = iota
	// BackgroundBlack fills with solid black.
	BackgroundBlack
	// BackgroundWhite fills with solid white.
	BackgroundWhite
	// BackgroundTransparent zero-fills the frame and switches blending to
	// the alpha-preserving overlay variant, so the output can be layered
	// again by a downstream compositor.
	BackgroundTransparent
)

func (b Background) String() string {
	switch b {
	case BackgroundChecker:
		return "checker"
	case BackgroundBlack:
		return "black"
	case BackgroundWhite:
		return "white"
	case BackgroundTransparent:
		return "transparent"
	default:
		return fmt.Sprintf("unknown(%d)", int(b))
	}
}

// ParseBackground resolves a background name as used in configuration.
func ParseBackground(s string) (Background, error) {
	switch s {
	case "checker":
		return BackgroundChecker, nil
	case "black":
		return BackgroundBlack, nil
	case "white":
		return BackgroundWhite, nil
	case "transparent":
		return BackgroundTransparent, nil
	default:
		return BackgroundChecker, fmt.Errorf("unknown background %q", s)
	}
}

// Solid fill colors, expressed as Y'CbCr per the shared format family.
const (
	fillYBlack = 16
	fillYWhite = 240
	fillChroma = 128
)
