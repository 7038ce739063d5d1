package boundary

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNoStore is returned by Load/Save on an editor without a boundary store.
var ErrNoStore = errors.New("boundary: editor has no shared-memory store")

// rectFitResolution is the sampling grid used when fitting the persisted
// rectangle dimensions on save.
const rectFitResolution = 100

// Load replaces the editor state with the persisted play-area record,
// converting its driver-space points into the world polygon.
func (e *Editor) Load() error {
	if e.store == nil {
		return ErrNoStore
	}
	rec, err := e.store.GetPlayArea()
	if err != nil {
		return err
	}
	e.record = rec
	e.points = e.points[:0]
	for i := uint32(0); i < rec.PointCount; i++ {
		e.points = append(e.points, e.driverToWorld(float64(rec.Points[i][0]), float64(rec.Points[i][1])))
	}
	return nil
}

// SaveToSharedMemory commits the polygon: runs the commit-time Simplify,
// fits the largest inscribed rectangle at the standing yaw to populate the
// record's rectangle dimensions, writes the record and signals the worker.
func (e *Editor) SaveToSharedMemory() error {
	if e.store == nil {
		return ErrNoStore
	}
	if !e.Valid() {
		return errors.New("boundary: polygon needs at least 3 points")
	}
	e.Simplify(false)

	// An empty fit leaves the dimensions zero; the save still proceeds so
	// the outline is never lost to a degenerate fit.
	e.record.RectWidth, e.record.RectDepth = 0, 0
	if corners, ok := FindLargestRectAtAngle(e.points, float64(e.record.StandingYaw), rectFitResolution); ok {
		e.record.RectWidth = float32(dist2D(corners[0], corners[1]))
		e.record.RectDepth = float32(dist2D(corners[1], corners[2]))
	}
	e.record.Version++
	return e.store.SetPlayArea(&e.record)
}

// RequestClearMap forwards a clear-tracking-map request to the driver.
func (e *Editor) RequestClearMap() bool {
	if e.store == nil {
		return false
	}
	return e.store.ClearMap()
}

func dist2D(a, b r3.Vec) float64 {
	return math.Hypot(b.X-a.X, b.Z-a.Z)
}
