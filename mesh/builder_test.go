package mesh

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visorlink/visorlink/distortion"
)

func testIntrinsics() distortion.Intrinsics {
	return distortion.Intrinsics{FX: 550, FY: 550, CX: 640, CY: 480, Width: 1280, Height: 960}
}

func identityCoeffs() distortion.Coefficients {
	var k distortion.Coefficients
	k[0] = 1
	k[7] = 1
	return k
}

func vertexRadius(v Vertex) float64 {
	return math.Sqrt(float64(v.X)*float64(v.X) + float64(v.Y)*float64(v.Y) + float64(v.Z)*float64(v.Z))
}

func TestCorrectionMeshShape(t *testing.T) {
	k := identityCoeffs()
	const dx, dy = 16, 12
	m := BuildCorrectionMesh(1280, 960, testIntrinsics(), &k, dx, dy)

	require.Len(t, m.Vertices, (dx+1)*(dy+1))
	require.Len(t, m.Indices, dx*dy*6)

	// UVs sweep the full image, row major from the top-left corner.
	assert.Equal(t, float32(0), m.Vertices[0].U)
	assert.Equal(t, float32(0), m.Vertices[0].V)
	last := m.Vertices[len(m.Vertices)-1]
	assert.Equal(t, float32(1), last.U)
	assert.Equal(t, float32(1), last.V)

	for _, idx := range m.Indices {
		assert.Less(t, int(idx), len(m.Vertices))
	}
}

func TestCorrectionMeshVerticesOnBubble(t *testing.T) {
	k := identityCoeffs()
	m := BuildCorrectionMesh(1280, 960, testIntrinsics(), &k, 8, 8)
	for i, v := range m.Vertices {
		assert.InDelta(t, BubbleRadius, vertexRadius(v), 1e-5, "vertex %d", i)
		assert.Greater(t, v.Z, float32(0), "bubble faces forward")
	}
}

func TestCorrectionMeshFlipsVertical(t *testing.T) {
	k := identityCoeffs()
	m := BuildCorrectionMesh(1280, 960, testIntrinsics(), &k, 8, 8)
	// Row v=0 is the top of the sensor (py=0, above the principal point), so
	// after the display-axis flip it renders with positive Y.
	assert.Greater(t, m.Vertices[0].Y, float32(0))
	assert.Less(t, m.Vertices[len(m.Vertices)-1].Y, float32(0))
}

func TestCorrectionMeshUndistorts(t *testing.T) {
	k := identityCoeffs()
	k[1] = 0.1 // barrel distortion
	intr := testIntrinsics()
	const dx, dy = 8, 8
	m := BuildCorrectionMesh(1280, 960, intr, &k, dx, dy)

	// Each vertex direction, pushed back through the forward model, must
	// land on the pixel its UV sampled.
	for j := 0; j <= dy; j++ {
		for i := 0; i <= dx; i++ {
			v := m.Vertices[j*(dx+1)+i]
			x := float64(v.X) / float64(v.Z)
			y := float64(-v.Y) / float64(v.Z) // undo the display flip
			fx, fy := distortion.Forward(x, y, &k)
			wantX := (float64(v.U)*float64(1280-1) - intr.CX) / intr.FX
			wantY := (float64(v.V)*float64(960-1) - intr.CY) / intr.FY
			assert.InDelta(t, wantX, fx, 1e-3)
			assert.InDelta(t, wantY, fy, 1e-3)
		}
	}
}

func TestDefaultMeshShape(t *testing.T) {
	const dx, dy = 10, 10
	fov := 50 * math.Pi / 180
	m := BuildDefaultMesh(fov, dx, dy)

	require.Len(t, m.Vertices, (dx+1)*(dy+1))
	require.Len(t, m.Indices, dx*dy*6)

	for i, v := range m.Vertices {
		assert.InDelta(t, BubbleRadius, vertexRadius(v), 1e-5, "vertex %d", i)
	}

	// The lattice center looks straight ahead.
	center := m.Vertices[(dy/2)*(dx+1)+dx/2]
	assert.InDelta(t, 0, center.X, 1e-6)
	assert.InDelta(t, 0, center.Y, 1e-6)
	assert.InDelta(t, BubbleRadius, center.Z, 1e-6)

	// u=0 is the left edge, v=0 the top (positive Y after the flip).
	left := m.Vertices[(dy/2)*(dx+1)]
	assert.Less(t, left.X, float32(0))
	top := m.Vertices[dx/2]
	assert.Greater(t, top.Y, float32(0))
}

func TestGridWindingCounterClockwise(t *testing.T) {
	m := BuildDefaultMesh(30*math.Pi/180, 4, 4)
	// Check the first triangle of the first cell in UV space: with U right
	// and V down flipped to display Y up, CCW means positive signed area.
	for tri := 0; tri+2 < 6; tri += 3 {
		a := m.Vertices[m.Indices[tri]]
		b := m.Vertices[m.Indices[tri+1]]
		c := m.Vertices[m.Indices[tri+2]]
		area := (float64(b.X)-float64(a.X))*(float64(c.Y)-float64(a.Y)) -
			(float64(c.X)-float64(a.X))*(float64(b.Y)-float64(a.Y))
		assert.Greater(t, area, 0.0, "triangle starting at index %d", tri)
	}
}
