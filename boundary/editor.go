// Package boundary is the play-area polygon editor: an in-memory geometry
// engine over one floor-plane polygon, with brush-based boolean edits,
// simplification, inscribed-rectangle fitting and persistence through the
// driver's shared-memory record.
package boundary

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/visorlink/visorlink/internal/layout"
	"github.com/visorlink/visorlink/link"
)

// Editor edits one world-space boundary polygon. All points share the
// record's floor height; the polygon is renderable only with 3+ points.
// Editor is not safe for concurrent use; the owning tick serializes edits.
type Editor struct {
	points []r3.Vec
	record layout.PlayAreaRecord
	store  *link.BoundaryStore
}

// NewEditor returns an editor persisting through store. A nil store leaves
// the editor usable for pure geometry work (Load/Save will fail).
func NewEditor(store *link.BoundaryStore) *Editor {
	return &Editor{store: store}
}

// Points returns a copy of the current world-space polygon.
func (e *Editor) Points() []r3.Vec {
	out := make([]r3.Vec, len(e.points))
	copy(out, e.points)
	return out
}

// SetPolygon replaces the polygon.
func (e *Editor) SetPolygon(pts []r3.Vec) {
	e.points = append(e.points[:0:0], pts...)
}

// Valid reports whether the polygon encloses area.
func (e *Editor) Valid() bool { return len(e.points) >= 3 }

// Record returns the loaded play-area record with the point array
// re-derived from the current polygon.
func (e *Editor) Record() layout.PlayAreaRecord {
	e.syncRecord()
	return e.record
}

// SetReferenceFrame sets the standing center, yaw and floor height used by
// the driver/world coordinate transforms.
func (e *Editor) SetReferenceFrame(center r3.Vec, yaw, floorHeight float64) {
	e.record.StandingCenter = [3]float32{float32(center.X), float32(center.Y), float32(center.Z)}
	e.record.StandingYaw = float32(yaw)
	e.record.FloorHeight = float32(floorHeight)
}

// AddPoint appends p while the polygon is still degenerate; once it has 3+
// points, p is inserted after the starting vertex of its closest edge so
// the outline stays untangled.
func (e *Editor) AddPoint(p r3.Vec) {
	if len(e.points) < 3 {
		e.points = append(e.points, p)
		return
	}
	best, bestDist := 0, 0.0
	for i := range e.points {
		a := e.points[i]
		b := e.points[(i+1)%len(e.points)]
		d := pointSegmentDistance2D(p, a, b)
		if i == 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	e.points = append(e.points, r3.Vec{})
	copy(e.points[best+2:], e.points[best+1:])
	e.points[best+1] = p
}

// RemovePointAt deletes vertex i. Out-of-range indices are a no-op.
func (e *Editor) RemovePointAt(i int) bool {
	if i < 0 || i >= len(e.points) {
		return false
	}
	e.points = append(e.points[:i], e.points[i+1:]...)
	return true
}

// MovePoint relocates vertex i to p.
func (e *Editor) MovePoint(i int, p r3.Vec) bool {
	if i < 0 || i >= len(e.points) {
		return false
	}
	e.points[i] = p
	return true
}

// IsPointInside tests p against the polygon with an even-odd ray cast in
// the floor plane. Degenerate polygons contain nothing.
func (e *Editor) IsPointInside(p r3.Vec) bool {
	if len(e.points) < 3 {
		return false
	}
	inside := false
	for i, j := 0, len(e.points)-1; i < len(e.points); j, i = i, i+1 {
		zi, zj := e.points[i].Z, e.points[j].Z
		if (zi > p.Z) != (zj > p.Z) {
			xAt := e.points[i].X + (p.Z-zi)/(zj-zi)*(e.points[j].X-e.points[i].X)
			if p.X < xAt {
				inside = !inside
			}
		}
	}
	return inside
}

// pointSegmentDistance2D is the floor-plane distance from p to segment ab,
// with the projection parameter clamped to the segment.
func pointSegmentDistance2D(p, a, b r3.Vec) float64 {
	abx, abz := b.X-a.X, b.Z-a.Z
	apx, apz := p.X-a.X, p.Z-a.Z
	den := abx*abx + abz*abz
	t := 0.0
	if den > 0 {
		t = (apx*abx + apz*abz) / den
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
	}
	dx := apx - t*abx
	dz := apz - t*abz
	return dx*dx + dz*dz
}
