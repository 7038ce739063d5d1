package boundary

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/visorlink/visorlink/internal/layout"
)

const (
	// DrawingVertexLimit caps the polygon while the user is actively
	// painting, bounding per-frame clipping cost.
	DrawingVertexLimit = 120

	// CommitVertexLimit is the hard cap applied on commit; it matches the
	// persisted record's point capacity.
	CommitVertexLimit = layout.MaxBoundaryPoints

	// RDPToleranceMeters is the commit-time Ramer-Douglas-Peucker
	// deviation tolerance.
	RDPToleranceMeters = 0.02
)

// Simplify reduces the polygon's vertex count. While drawing it only
// applies greedy minimum-triangle-area decimation down to
// DrawingVertexLimit; on commit it first runs RDP with a metric tolerance,
// then decimates to the hard cap. The persisted driver-space point array is
// re-derived afterward in both modes.
func (e *Editor) Simplify(isDrawing bool) {
	if len(e.points) > 0 {
		if isDrawing {
			e.points = decimate(e.points, DrawingVertexLimit)
		} else {
			e.points = rdpClosed(e.points, RDPToleranceMeters)
			e.points = decimate(e.points, CommitVertexLimit)
		}
	}
	e.syncRecord()
}

// decimate repeatedly removes the vertex forming the smallest-area triangle
// with its neighbors until the polygon fits limit. It never reduces a
// polygon below 3 vertices.
func decimate(pts []r3.Vec, limit int) []r3.Vec {
	for len(pts) > limit && len(pts) > 3 {
		worst := 0
		worstArea := math.Inf(1)
		for i := range pts {
			prev := pts[(i+len(pts)-1)%len(pts)]
			next := pts[(i+1)%len(pts)]
			if a := triangleArea2D(prev, pts[i], next); a < worstArea {
				worst, worstArea = i, a
			}
		}
		pts = append(pts[:worst], pts[worst+1:]...)
	}
	return pts
}

// rdpClosed runs Ramer-Douglas-Peucker on a closed ring by splitting it at
// vertex 0 and the vertex farthest from it, simplifying both halves.
func rdpClosed(pts []r3.Vec, tolerance float64) []r3.Vec {
	if len(pts) < 4 {
		return pts
	}
	far := 1
	farDist := 0.0
	for i := 1; i < len(pts); i++ {
		dx, dz := pts[i].X-pts[0].X, pts[i].Z-pts[0].Z
		if d := dx*dx + dz*dz; d > farDist {
			far, farDist = i, d
		}
	}
	firstHalf := rdp(pts[:far+1], tolerance)
	secondRing := append(append([]r3.Vec{}, pts[far:]...), pts[0])
	secondHalf := rdp(secondRing, tolerance)
	out := append([]r3.Vec{}, firstHalf[:len(firstHalf)-1]...)
	out = append(out, secondHalf[:len(secondHalf)-1]...)
	return out
}

// rdp simplifies an open polyline, keeping both endpoints. Returned slices
// never alias the input.
func rdp(pts []r3.Vec, tolerance float64) []r3.Vec {
	if len(pts) < 3 {
		return append([]r3.Vec{}, pts...)
	}
	split := 0
	maxDist := 0.0
	for i := 1; i < len(pts)-1; i++ {
		if d := perpendicularDistance2D(pts[i], pts[0], pts[len(pts)-1]); d > maxDist {
			split, maxDist = i, d
		}
	}
	if maxDist <= tolerance {
		return []r3.Vec{pts[0], pts[len(pts)-1]}
	}
	left := rdp(pts[:split+1], tolerance)
	right := rdp(pts[split:], tolerance)
	out := append([]r3.Vec{}, left[:len(left)-1]...)
	return append(out, right...)
}

// perpendicularDistance2D is the floor-plane distance from p to the
// infinite line through a and b; the point distance when a and b coincide.
func perpendicularDistance2D(p, a, b r3.Vec) float64 {
	dx, dz := b.X-a.X, b.Z-a.Z
	n := math.Hypot(dx, dz)
	if n == 0 {
		return math.Hypot(p.X-a.X, p.Z-a.Z)
	}
	return math.Abs(dx*(a.Z-p.Z)-dz*(a.X-p.X)) / n
}

func triangleArea2D(a, b, c r3.Vec) float64 {
	return math.Abs((b.X-a.X)*(c.Z-a.Z)-(c.X-a.X)*(b.Z-a.Z)) / 2
}
