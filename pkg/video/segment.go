package video

// Segment maps buffer timestamps into running time and stream time across
// seeks. Accum carries the running time consumed by previous segments,
// Time the stream time at Start.
type Segment struct {
	Rate  float64
	Start ClockTime
	Stop  ClockTime
	Time  ClockTime
	Accum ClockTime
}

// NewSegment returns the identity segment starting at zero.
func NewSegment() Segment {
	return Segment{Rate: 1.0, Start: 0, Stop: ClockTimeNone, Time: 0, Accum: 0}
}

// ToRunningTime maps a buffer timestamp into running time. Timestamps
// outside the segment map to ClockTimeNone.
func (s Segment) ToRunningTime(ts ClockTime) ClockTime {
	if !ts.IsValid() || ts < s.Start {
		return ClockTimeNone
	}
	if s.Stop.IsValid() && ts > s.Stop {
		return ClockTimeNone
	}
	d := ts - s.Start
	if s.Rate != 0 && s.Rate != 1.0 {
		rate := s.Rate
		if rate < 0 {
			rate = -rate
		}
		d = ClockTime(float64(d) / rate)
	}
	return s.Accum + d
}

// ToStreamTime maps a buffer timestamp into stream time, the clock used
// for sampling externally controlled per-stream properties.
func (s Segment) ToStreamTime(ts ClockTime) ClockTime {
	if !ts.IsValid() || ts < s.Start {
		return ClockTimeNone
	}
	return s.Time + (ts - s.Start)
}
