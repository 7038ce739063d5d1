package boundary

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestDriverToWorldIdentityFrame(t *testing.T) {
	w := DriverToWorld(1, 2, r3.Vec{}, 0)
	assert.InDelta(t, 1, w.X, 1e-12)
	assert.InDelta(t, 0, w.Y, 1e-12)
	assert.InDelta(t, -2, w.Z, 1e-12, "depth axis negates")
}

func TestDriverToWorldWithYaw(t *testing.T) {
	// A quarter turn about the vertical axis carries driver +X onto -Z,
	// which the handedness flip then turns into world +Z.
	w := DriverToWorld(1, 0, r3.Vec{}, math.Pi/2)
	assert.InDelta(t, 0, w.X, 1e-12)
	assert.InDelta(t, 1, w.Z, 1e-12)
}

func TestTransformRoundTrips(t *testing.T) {
	frames := []struct {
		center r3.Vec
		yaw    float64
	}{
		{r3.Vec{}, 0},
		{r3.Vec{X: 1.5, Y: 1.7, Z: -0.3}, 0.4},
		{r3.Vec{X: -2, Y: 0.1, Z: 3}, -2.9},
		{r3.Vec{X: 0.25, Z: 0.75}, math.Pi},
	}
	pts := [][2]float64{{0, 0}, {1, 0}, {-0.5, 2.5}, {3.25, -1.75}}

	for _, f := range frames {
		for _, p := range pts {
			w := DriverToWorld(p[0], p[1], f.center, f.yaw)
			x, z := WorldToDriver(w, f.center, f.yaw)
			assert.InDelta(t, p[0], x, 1e-9, "driver x, frame %+v", f)
			assert.InDelta(t, p[1], z, 1e-9, "driver z, frame %+v", f)
		}
		// And the other direction: world points keep their floor-plane
		// coordinates through a driver round trip regardless of height.
		for _, p := range pts {
			w := r3.Vec{X: p[0], Y: 1.23, Z: p[1]}
			x, z := WorldToDriver(w, f.center, f.yaw)
			back := DriverToWorld(x, z, f.center, f.yaw)
			assert.InDelta(t, w.X, back.X, 1e-9)
			assert.InDelta(t, w.Z, back.Z, 1e-9)
		}
	}
}

func TestEditorTransformPinsFloorHeight(t *testing.T) {
	e := NewEditor(nil)
	e.SetReferenceFrame(r3.Vec{X: 1, Y: 1.6, Z: 2}, 0.3, -1.4)
	w := e.driverToWorld(0.5, 0.5)
	// The record stores the floor height as float32.
	assert.InDelta(t, -1.4, w.Y, 1e-6)
}
