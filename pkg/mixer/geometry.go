package mixer

import "github.com/user/videomix/pkg/video"

// AcceptPortCaps reports whether the mixer would accept the given caps on
// a port. Once a pixel format is locked by the first negotiation, every
// other format is rejected; geometry and rate are free per port.
func (m *Mixer) AcceptPortCaps(id int, caps video.Caps) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.portLocked(id); !ok {
		return false
	}
	if caps.Format == video.FormatUnknown {
		return false
	}
	return m.format == video.FormatUnknown || m.format == caps.Format
}

// SetPortCaps applies a port's announced input caps and renegotiates
// output geometry, rate and master selection.
func (m *Mixer) SetPortCaps(id int, caps video.Caps) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.portLocked(id)
	if !ok {
		return ErrUnknownPort
	}
	if caps.Format == video.FormatUnknown ||
		(m.format != video.FormatUnknown && m.format != caps.Format) {
		return &NegotiationError{Port: id, Caps: caps, Locked: m.format}
	}
	m.format = caps.Format

	p.inWidth = caps.Width
	p.inHeight = caps.Height
	p.fps = caps.FPS
	p.par = caps.PAR
	if p.par.IsZero() {
		p.par = video.Fract(1, 1)
	}

	m.updateMasterGeometryLocked()
	return nil
}

// updateMasterGeometryLocked recomputes the output tuple from the current
// set of ports: the biggest input geometry becomes the output geometry and
// the slowest framerate (compared as rationals) becomes the master rate.
// Any change re-arms downstream caps/segment announcements and resets the
// QoS observation.
func (m *Mixer) updateMasterGeometryLocked() {
	var width, height int
	var fps, par video.Fraction
	var master *Port

	for _, p := range m.ports {
		if p.inWidth == 0 && p.inHeight == 0 {
			// Never negotiated; excluded from geometry but still part of
			// end-of-stream accounting.
			continue
		}
		if p.inWidth > width {
			width = p.inWidth
		}
		if p.inHeight > height {
			height = p.inHeight
		}
		if master == nil || p.fps.Less(fps) {
			fps = p.fps
			par = p.par
			master = p
		}
	}

	if m.master != master || m.negotWidth != width || m.negotHeight != height ||
		m.fps != fps || m.par != par {
		m.sendCaps = true
		m.sendSegment = true
		m.qos.reset(video.FrameDuration(fps))
		m.master = master
		m.negotWidth = width
		m.negotHeight = height
		m.fps = fps
		m.par = par
		m.log.Debug("negotiated output %dx%d @%s par %s", width, height, fps, par)
	}
}

// Master returns the id of the current master port, or -1 when none is
// negotiated yet.
func (m *Mixer) Master() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.master == nil {
		return -1
	}
	return m.master.ID
}

// OutputCaps returns the currently negotiated output caps.
func (m *Mixer) OutputCaps() video.Caps {
	m.mu.Lock()
	defer m.mu.Unlock()
	return video.Caps{
		Format: m.format,
		Width:  m.negotWidth,
		Height: m.negotHeight,
		FPS:    m.fps,
		PAR:    m.par,
	}
}
