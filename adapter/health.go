// Package adapter wires the link client into external monitoring.
package adapter

import (
	"fmt"
	"time"

	"github.com/heptiolabs/healthcheck"

	"github.com/visorlink/visorlink/link"
)

// DefaultFrameMaxAge is how stale the last acquired frame may be before the
// readiness check fails.
const DefaultFrameMaxAge = 2 * time.Second

// NewHealthHandler builds a healthcheck handler for a driver connection:
// liveness requires the segment to be open, readiness additionally requires
// a recent frame. frames may be nil when the consumer does no acquisition.
func NewHealthHandler(ch *link.Channel, frames *link.FrameAcquisition, frameMaxAge time.Duration) healthcheck.Handler {
	if frameMaxAge <= 0 {
		frameMaxAge = DefaultFrameMaxAge
	}
	h := healthcheck.NewHandler()
	h.AddLivenessCheck("segment-open", func() error {
		if ch == nil || !ch.IsOpen() {
			return link.ErrNotOpen
		}
		return nil
	})
	if frames != nil {
		h.AddReadinessCheck("frame-fresh", func() error {
			last := frames.LastFrameAt()
			if last.IsZero() {
				return fmt.Errorf("no frame acquired yet")
			}
			if age := time.Since(last); age > frameMaxAge {
				return fmt.Errorf("last frame %s old", age.Round(time.Millisecond))
			}
			return nil
		})
	}
	return h
}
