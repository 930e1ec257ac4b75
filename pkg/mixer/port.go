package mixer

import (
	"sort"

	"github.com/user/videomix/pkg/ports"
	"github.com/user/videomix/pkg/video"
)

// Port is one input stream slot. Placement and opacity are owned by the
// external property layer; the mixer reads them under the state lock and
// snapshots them once per blend, so mid-cycle mutation never tears a frame.
type Port struct {
	// ID is the stable identifier assigned at registration.
	ID int

	// ZOrder is the stacking priority; lower blends first (bottom).
	// Mutate through Mixer.SetPortZOrder so the registry stays sorted.
	ZOrder int

	// Placement of the stream inside the output frame. Width/Height 0
	// means "use native size".
	XPos   int
	YPos   int
	Width  int
	Height int

	// Alpha is the stream opacity in [0,1].
	Alpha float64

	// Controller, when set, is synced to each frame's stream time right
	// before placement and opacity are sampled.
	Controller ports.PropertyController

	// Negotiated input caps.
	inWidth  int
	inHeight int
	fps      video.Fraction
	par      video.Fraction

	segment video.Segment

	// queued is the not-yet-consumed duration of the held frame(s) in
	// nanoseconds. A port with unknown rate and no buffer durations holds
	// queuedUnknown and is only ever drained by a flush.
	queued        int64
	queuedUnknown bool

	frame *video.Frame
}

// Caps returns the port's negotiated input caps.
func (p *Port) Caps() video.Caps {
	return video.Caps{Width: p.inWidth, Height: p.inHeight, FPS: p.fps, PAR: p.par}
}

// QueuedDuration returns the port's current queued-duration counter and
// whether it holds a known value.
func (p *Port) QueuedDuration() (video.ClockTime, bool) {
	if p.queuedUnknown || p.queued < 0 {
		return video.ClockTimeNone, false
	}
	return video.ClockTime(p.queued), true
}

func (p *Port) clear() {
	p.frame = nil
	p.queued = 0
	p.queuedUnknown = false
}

// AddPort registers a new input port. The new port stacks on top of the
// existing ones (z-order = current port count) with native placement and
// full opacity.
func (m *Mixer) AddPort() *Port {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := &Port{
		ID:     m.nextPort,
		ZOrder: len(m.ports),
		Alpha:  1.0,
		par:    video.Fract(1, 1),
	}
	p.segment = video.NewSegment()
	m.nextPort++
	m.ports = append(m.ports, p)
	m.sortPortsLocked()
	return p
}

// RemovePort releases the port's held frame, drops it from the registry
// and renegotiates geometry.
func (m *Mixer) RemovePort(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, p := range m.ports {
		if p.ID == id {
			p.clear()
			m.ports = append(m.ports[:i], m.ports[i+1:]...)
			m.updateMasterGeometryLocked()
			return nil
		}
	}
	return ErrUnknownPort
}

// Port looks up a registered port by id.
func (m *Mixer) Port(id int) (*Port, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.portLocked(id)
}

func (m *Mixer) portLocked(id int) (*Port, bool) {
	for _, p := range m.ports {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// SetPortZOrder changes a port's stacking priority and re-sorts the
// registry. Equal z-orders keep their relative insertion order.
func (m *Mixer) SetPortZOrder(id, zorder int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.portLocked(id)
	if !ok {
		return ErrUnknownPort
	}
	p.ZOrder = zorder
	m.sortPortsLocked()
	return nil
}

// SetPortPlacement updates a port's position and requested size. Takes
// effect on the next aggregation cycle.
func (m *Mixer) SetPortPlacement(id, x, y, width, height int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.portLocked(id)
	if !ok {
		return ErrUnknownPort
	}
	p.XPos, p.YPos, p.Width, p.Height = x, y, width, height
	return nil
}

// SetPortAlpha updates a port's opacity. Takes effect on the next cycle.
func (m *Mixer) SetPortAlpha(id int, alpha float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.portLocked(id)
	if !ok {
		return ErrUnknownPort
	}
	p.Alpha = alpha
	return nil
}

func (m *Mixer) sortPortsLocked() {
	sort.SliceStable(m.ports, func(i, j int) bool {
		return m.ports[i].ZOrder < m.ports[j].ZOrder
	})
}
