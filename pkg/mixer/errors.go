package mixer

import (
	"errors"
	"fmt"

	"github.com/user/videomix/pkg/video"
)

var (
	// ErrNotNegotiated is returned by Collect before any port announced
	// caps, so no output geometry exists yet.
	ErrNotNegotiated = errors.New("mixer: output caps not negotiated")

	// ErrEOS is returned by Collect once every port reached end-of-stream
	// and the end-of-stream signal was pushed downstream.
	ErrEOS = errors.New("mixer: end of stream")

	// ErrUnknownPort is returned when an operation names a port id that
	// is not registered.
	ErrUnknownPort = errors.New("mixer: unknown port")
)

// NegotiationError reports input caps that conflict with the locked
// shared pixel format.
type NegotiationError struct {
	Port   int
	Caps   video.Caps
	Locked video.PixelFormat
}

func (e *NegotiationError) Error() string {
	return fmt.Sprintf("mixer: port %d caps %s rejected (locked format %s)",
		e.Port, e.Caps, e.Locked)
}
