package boundary

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/visorlink/visorlink/internal/layout"
)

// Driver space anchors persisted boundary points: a floor-plane frame
// defined by the standing center and yaw. World space is the consuming
// application's frame. The two differ by a yaw rotation, a translation and
// a depth-axis negation for handedness.

// DriverToWorld maps a driver-space floor point (x, z) into world space:
// rotate by the standing yaw, subtract the standing center, negate depth.
func DriverToWorld(x, z float64, center r3.Vec, yaw float64) r3.Vec {
	v := r3.NewRotation(yaw, r3.Vec{Y: 1}).Rotate(r3.Vec{X: x, Z: z})
	v = r3.Sub(v, center)
	v.Z = -v.Z
	return v
}

// WorldToDriver is the exact algebraic inverse of DriverToWorld.
func WorldToDriver(p r3.Vec, center r3.Vec, yaw float64) (x, z float64) {
	v := p
	v.Z = -v.Z
	v = r3.Add(v, center)
	v = r3.NewRotation(-yaw, r3.Vec{Y: 1}).Rotate(v)
	return v.X, v.Z
}

func (e *Editor) standingCenter() r3.Vec {
	return r3.Vec{
		X: float64(e.record.StandingCenter[0]),
		Y: float64(e.record.StandingCenter[1]),
		Z: float64(e.record.StandingCenter[2]),
	}
}

// driverToWorld applies the record's frame and pins the world Y to the
// floor height (boundary points share one floor plane by contract).
func (e *Editor) driverToWorld(x, z float64) r3.Vec {
	v := DriverToWorld(x, z, e.standingCenter(), float64(e.record.StandingYaw))
	v.Y = float64(e.record.FloorHeight)
	return v
}

func (e *Editor) worldToDriver(p r3.Vec) (float64, float64) {
	return WorldToDriver(p, e.standingCenter(), float64(e.record.StandingYaw))
}

// syncRecord re-derives the persisted driver-space point array from the
// world polygon, zero-filling trailing slots.
func (e *Editor) syncRecord() {
	n := len(e.points)
	if n > layout.MaxBoundaryPoints {
		n = layout.MaxBoundaryPoints
	}
	e.record.PointCount = uint32(n)
	for i := range e.record.Points {
		if i < n {
			x, z := e.worldToDriver(e.points[i])
			e.record.Points[i] = [2]float32{float32(x), float32(z)}
		} else {
			e.record.Points[i] = [2]float32{}
		}
	}
}
