// Package video provides the primitive types shared by the mixer core:
// clock times, rational framerates, pixel formats and their memory layout,
// frame buffers, caps and timing segments.
package video

import "fmt"

// ClockTime is a timestamp or duration in nanoseconds.
type ClockTime uint64

// ClockTimeNone signals an invalid or unknown time.
const ClockTimeNone = ClockTime(^uint64(0))

// Second is one second expressed as a ClockTime.
const Second = ClockTime(1000000000)

// Millisecond is one millisecond expressed as a ClockTime.
const Millisecond = ClockTime(1000000)

// IsValid reports whether t holds a real time value.
func (t ClockTime) IsValid() bool {
	return t != ClockTimeNone
}

// String formats the time as seconds with nanosecond precision, or "none".
func (t ClockTime) String() string {
	if !t.IsValid() {
		return "none"
	}
	return fmt.Sprintf("%d.%09ds", uint64(t)/uint64(Second), uint64(t)%uint64(Second))
}

// ScaleInt computes val * num / denom with 128-bit-safe intermediate math
// for the value ranges the mixer uses (durations well below 2^63 ns).
func ScaleInt(val ClockTime, num, denom int) ClockTime {
	if denom == 0 {
		return ClockTimeNone
	}
	return ClockTime(uint64(val) * uint64(num) / uint64(denom))
}

// FrameDuration returns the duration of one frame at the given rate, or
// ClockTimeNone when the rate is unknown.
func FrameDuration(fps Fraction) ClockTime {
	if fps.N == 0 {
		return ClockTimeNone
	}
	return ScaleInt(Second, fps.D, fps.N)
}
