package boundary

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func rectArea(c [4]r3.Vec) float64 {
	return dist2D(c[0], c[1]) * dist2D(c[1], c[2])
}

func TestLargestRectInAxisAlignedSquare(t *testing.T) {
	corners, ok := FindLargestRectAtAngle(squarePolygon(0.5), 0, 50)
	require.True(t, ok)
	// Every sampled cell center of the bounding box lies inside, so the fit
	// recovers the square exactly.
	assert.InDelta(t, 1.0, rectArea(corners), 1e-9)
	assert.InDelta(t, 1.0, dist2D(corners[0], corners[1]), 1e-9)
	assert.InDelta(t, 1.0, dist2D(corners[1], corners[2]), 1e-9)
}

func TestLargestRectRecoversRotatedSquare(t *testing.T) {
	angle := 30 * math.Pi / 180
	pts := squarePolygon(1)
	rotated := make([]r3.Vec, len(pts))
	for i, p := range pts {
		x, z := rotate2D(p.X, p.Z, angle)
		rotated[i] = r3.Vec{X: x, Z: z}
	}

	corners, ok := FindLargestRectAtAngle(rotated, angle, 100)
	require.True(t, ok)
	assert.InDelta(t, 4.0, rectArea(corners), 1e-6)

	// Fitting the same polygon axis-aligned must do worse: the inscribed
	// axis-aligned rectangle of a tilted square is smaller.
	axisCorners, ok := FindLargestRectAtAngle(rotated, 0, 100)
	require.True(t, ok)
	assert.Less(t, rectArea(axisCorners), 3.0)
}

func TestLargestRectInLShape(t *testing.T) {
	// 2x2 square with the (+x,+z) quadrant removed; best rectangle is 2x1.
	l := []r3.Vec{
		{X: -1, Z: -1}, {X: 1, Z: -1}, {X: 1, Z: 0},
		{X: 0, Z: 0}, {X: 0, Z: 1}, {X: -1, Z: 1},
	}
	corners, ok := FindLargestRectAtAngle(l, 0, 100)
	require.True(t, ok)
	assert.InDelta(t, 2.0, rectArea(corners), 0.1)
}

func TestLargestRectKeepsFloorHeight(t *testing.T) {
	pts := squarePolygon(1)
	for i := range pts {
		pts[i].Y = -1.6
	}
	corners, ok := FindLargestRectAtAngle(pts, 0.2, 64)
	require.True(t, ok)
	for _, c := range corners {
		assert.Equal(t, -1.6, c.Y)
	}
}

func TestLargestRectDegenerateInput(t *testing.T) {
	_, ok := FindLargestRectAtAngle(nil, 0, 50)
	assert.False(t, ok)

	_, ok = FindLargestRectAtAngle(squarePolygon(1)[:2], 0, 50)
	assert.False(t, ok, "two points enclose nothing")

	collinear := []r3.Vec{{X: 0, Z: 0}, {X: 1, Z: 0}, {X: 2, Z: 0}}
	_, ok = FindLargestRectAtAngle(collinear, 0, 50)
	assert.False(t, ok, "zero-height bounding box")

	_, ok = FindLargestRectAtAngle(squarePolygon(1), 0, 1)
	assert.False(t, ok, "grid too coarse")
}

func TestMaxHistogramRect(t *testing.T) {
	area, left, right, height := maxHistogramRect([]int{2, 1, 4, 5, 1, 3, 3})
	assert.Equal(t, 8, area)
	assert.Equal(t, 2, left)
	assert.Equal(t, 3, right)
	assert.Equal(t, 4, height)

	area, _, _, _ = maxHistogramRect([]int{0, 0, 0})
	assert.Equal(t, 0, area)
}
