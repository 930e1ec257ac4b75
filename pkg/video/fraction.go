package video

import "fmt"

// Fraction is a rational number, used for framerates and pixel aspect
// ratios so comparisons stay exact.
type Fraction struct {
	N int `yaml:"n"`
	D int `yaml:"d"`
}

// Fract is a convenience constructor.
func Fract(n, d int) Fraction {
	return Fraction{N: n, D: d}
}

// IsZero reports whether the fraction is the unset 0/0 value.
func (f Fraction) IsZero() bool {
	return f.N == 0 && f.D == 0
}

// Less compares two fractions by cross multiplication, avoiding floating
// point error: f < g iff f.N*g.D < g.N*f.D.
func (f Fraction) Less(g Fraction) bool {
	return int64(f.N)*int64(g.D) < int64(g.N)*int64(f.D)
}

func (f Fraction) String() string {
	return fmt.Sprintf("%d/%d", f.N, f.D)
}
