// Package distortion implements the accessory's rational radial lens model:
// a forward mapping from ideal to distorted normalized camera coordinates
// and a damped fixed-point numerical inverse.
package distortion

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// CoeffCount is the number of scalar coefficients in a distortion record.
const CoeffCount = 20

// Coefficients holds one camera's distortion coefficients. Layout:
// c0..c6 radial numerator, c7..c13 radial denominator (each a degree-6
// polynomial in r², i.e. degree 12 in r), c14/c15 tangential, c16/c17
// rotation-correction angles in radians, c18/c19 reserved.
type Coefficients [CoeffCount]float64

const (
	numStart = 0
	denStart = 7
	idxTan1  = 14
	idxTan2  = 15
	idxRotX  = 16
	idxRotY  = 17

	// epsDegenerate guards the radial denominator and the homogeneous
	// weight. Below it the model yields defined fallbacks, never errors.
	epsDegenerate = 1e-9

	// Sentinel returned when the rotation correction degenerates; far
	// outside any normalized image plane so mesh construction stays
	// well formed.
	sentinel = -10

	damping     = 0.5
	convergence = 1e-6
)

// DefaultMaxIterations bounds the fixed-point inverse.
const DefaultMaxIterations = 1024

// Intrinsics is the pinhole projection extracted from a calibration
// record's 3x3 pixel matrix.
type Intrinsics struct {
	FX, FY float64
	CX, CY float64
	Width  int
	Height int
}

// PixelToNormalized maps a pixel coordinate to the normalized camera plane.
func (in Intrinsics) PixelToNormalized(px, py float64) (float64, float64) {
	return (px - in.CX) / in.FX, (py - in.CY) / in.FY
}

func horner6(r2 float64, k *Coefficients, start int) float64 {
	s := k[start+6]
	for i := 5; i >= 0; i-- {
		s = s*r2 + k[start+i]
	}
	return s
}

// Forward maps ideal normalized coordinates to their distorted position.
func Forward(x, y float64, k *Coefficients) (float64, float64) {
	r2 := x*x + y*y

	num := horner6(r2, k, numStart)
	den := horner6(r2, k, denStart)
	scale := 1.0
	if math.Abs(den) >= epsDegenerate {
		scale = num / den
	}

	p1, p2 := k[idxTan1], k[idxTan2]
	xt := x*scale + 2*p1*x*y + p2*(r2+2*x*x)
	yt := y*scale + p1*(r2+2*y*y) + 2*p2*x*y

	// Two-axis rotation correction: apply the X-axis rotation first, then
	// the Y-axis rotation, to the homogeneous point (xt, yt, 1). The order
	// is fixed by the driver's calibration pipeline.
	rx := r3.NewRotation(k[idxRotX], r3.Vec{X: 1})
	ry := r3.NewRotation(k[idxRotY], r3.Vec{Y: 1})
	v := ry.Rotate(rx.Rotate(r3.Vec{X: xt, Y: yt, Z: 1}))
	if math.Abs(v.Z) < epsDegenerate {
		return sentinel, sentinel
	}
	return v.X / v.Z, v.Y / v.Z
}

// Inverse numerically inverts Forward by damped fixed-point iteration
// seeded at the target. Non-convergence after maxIterations is not an
// error: the best available estimate is returned. maxIterations <= 0
// selects DefaultMaxIterations.
func Inverse(xTarget, yTarget float64, k *Coefficients, maxIterations int) (float64, float64) {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	gx, gy := xTarget, yTarget
	for i := 0; i < maxIterations; i++ {
		fx, fy := Forward(gx, gy, k)
		ex, ey := xTarget-fx, yTarget-fy
		gx += ex * damping
		gy += ey * damping
		if math.Abs(ex) < convergence && math.Abs(ey) < convergence {
			break
		}
	}
	return gx, gy
}
