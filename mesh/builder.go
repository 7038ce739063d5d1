// Package mesh builds the renderable lens-correction geometry: a quad-grid
// "bubble" mesh whose vertices are undistorted camera rays projected onto a
// fixed-radius sphere. The renderer consuming the mesh is external.
package mesh

import (
	"math"

	"github.com/visorlink/visorlink/distortion"
)

// Vertex is one correction-mesh vertex: a position on the bubble and the
// source UV in the captured image.
type Vertex struct {
	X, Y, Z float32
	U, V    float32
}

// Mesh is a triangulated quad grid. Indices wind counter-clockwise.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// BubbleRadius is the sphere the undistorted rays are projected onto.
const BubbleRadius = 1.0

// BuildCorrectionMesh builds the correction mesh for one camera from its
// calibration. Each lattice vertex maps its UV to a pixel, undistorts the
// normalized coordinate through the model's inverse, projects the ideal ray
// onto the bubble and flips the vertical axis (sensor rows grow downward,
// display Y grows upward).
func BuildCorrectionMesh(width, height int, intr distortion.Intrinsics, coeffs *distortion.Coefficients, densityX, densityY int) Mesh {
	m := newGrid(densityX, densityY)
	for j := 0; j <= densityY; j++ {
		v := float64(j) / float64(densityY)
		for i := 0; i <= densityX; i++ {
			u := float64(i) / float64(densityX)
			px := u * float64(width-1)
			py := v * float64(height-1)
			xd, yd := intr.PixelToNormalized(px, py)
			xi, yi := distortion.Inverse(xd, yd, coeffs, distortion.DefaultMaxIterations)
			x, y, z := onBubble(xi, yi)
			m.Vertices = append(m.Vertices, Vertex{
				X: float32(x), Y: float32(-y), Z: float32(z),
				U: float32(u), V: float32(v),
			})
		}
	}
	return m
}

// BuildDefaultMesh builds the fallback bubble used when no calibration is
// available: vertices placed directly on the sphere from angular
// coordinates spanning ±maxFovAngle radians on both axes.
func BuildDefaultMesh(maxFovAngle float64, densityX, densityY int) Mesh {
	m := newGrid(densityX, densityY)
	for j := 0; j <= densityY; j++ {
		v := float64(j) / float64(densityY)
		ay := (v - 0.5) * 2 * maxFovAngle
		for i := 0; i <= densityX; i++ {
			u := float64(i) / float64(densityX)
			ax := (u - 0.5) * 2 * maxFovAngle
			x := BubbleRadius * math.Sin(ax) * math.Cos(ay)
			y := BubbleRadius * math.Sin(ay)
			z := BubbleRadius * math.Cos(ax) * math.Cos(ay)
			m.Vertices = append(m.Vertices, Vertex{
				X: float32(x), Y: float32(-y), Z: float32(z),
				U: float32(u), V: float32(v),
			})
		}
	}
	return m
}

// onBubble projects the ideal normalized coordinate onto the sphere.
func onBubble(x, y float64) (float64, float64, float64) {
	n := math.Sqrt(x*x + y*y + 1)
	s := BubbleRadius / n
	return x * s, y * s, s
}

// newGrid allocates the vertex slice and emits the two-triangle-per-cell
// index pattern for a (densityX+1)x(densityY+1) lattice.
func newGrid(densityX, densityY int) Mesh {
	stride := uint32(densityX + 1)
	m := Mesh{
		Vertices: make([]Vertex, 0, (densityX+1)*(densityY+1)),
		Indices:  make([]uint32, 0, densityX*densityY*6),
	}
	for j := 0; j < densityY; j++ {
		for i := 0; i < densityX; i++ {
			a := uint32(j)*stride + uint32(i)
			b := a + 1
			c := a + stride
			d := c + 1
			m.Indices = append(m.Indices, a, c, b, b, c, d)
		}
	}
	return m
}
