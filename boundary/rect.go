package boundary

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// FindLargestRectAtAngle fits the largest rectangle oriented at angle
// (radians about the vertical axis) inscribed in polygon. The polygon is
// rotated into axis alignment, rasterized on a gridResolution x
// gridResolution inside/outside grid by even-odd sampling at cell centers,
// and searched with the per-row histogram / monotonic stack maximum
// rectangle algorithm. Returns the four corners in original orientation,
// or ok=false for degenerate input or when no positive-area rectangle
// exists.
func FindLargestRectAtAngle(polygon []r3.Vec, angle float64, gridResolution int) (corners [4]r3.Vec, ok bool) {
	if len(polygon) < 3 || gridResolution < 2 {
		return corners, false
	}

	rot := make([][2]float64, len(polygon))
	minX, minZ := math.Inf(1), math.Inf(1)
	maxX, maxZ := math.Inf(-1), math.Inf(-1)
	for i, p := range polygon {
		x, z := rotate2D(p.X, p.Z, -angle)
		rot[i] = [2]float64{x, z}
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minZ, maxZ = math.Min(minZ, z), math.Max(maxZ, z)
	}
	w, h := maxX-minX, maxZ-minZ
	if w <= 0 || h <= 0 {
		return corners, false
	}
	cellW := w / float64(gridResolution)
	cellH := h / float64(gridResolution)

	heights := make([]int, gridResolution)
	bestArea := 0
	var bestRow, bestHeight, bestLeft, bestRight int
	for row := 0; row < gridResolution; row++ {
		cz := minZ + (float64(row)+0.5)*cellH
		for col := 0; col < gridResolution; col++ {
			cx := minX + (float64(col)+0.5)*cellW
			if insideEvenOdd(cx, cz, rot) {
				heights[col]++
			} else {
				heights[col] = 0
			}
		}
		if area, left, right, height := maxHistogramRect(heights); area > bestArea {
			bestArea = area
			bestRow, bestHeight, bestLeft, bestRight = row, height, left, right
		}
	}
	if bestArea == 0 {
		return corners, false
	}

	x0 := minX + float64(bestLeft)*cellW
	x1 := minX + float64(bestRight+1)*cellW
	z0 := minZ + float64(bestRow-bestHeight+1)*cellH
	z1 := minZ + float64(bestRow+1)*cellH
	floor := polygon[0].Y
	for i, c := range [4][2]float64{{x0, z0}, {x1, z0}, {x1, z1}, {x0, z1}} {
		x, z := rotate2D(c[0], c[1], angle)
		corners[i] = r3.Vec{X: x, Y: floor, Z: z}
	}
	return corners, true
}

func rotate2D(x, z, angle float64) (float64, float64) {
	s, c := math.Sincos(angle)
	return x*c - z*s, x*s + z*c
}

func insideEvenOdd(px, pz float64, pts [][2]float64) bool {
	inside := false
	for i, j := 0, len(pts)-1; i < len(pts); j, i = i, i+1 {
		zi, zj := pts[i][1], pts[j][1]
		if (zi > pz) != (zj > pz) {
			xAt := pts[i][0] + (pz-zi)/(zj-zi)*(pts[j][0]-pts[i][0])
			if px < xAt {
				inside = !inside
			}
		}
	}
	return inside
}

// maxHistogramRect finds the maximum rectangle under a histogram with a
// monotonic index stack. Returns cell area and the column span/height.
func maxHistogramRect(heights []int) (area, left, right, height int) {
	stack := make([]int, 0, len(heights))
	for i := 0; i <= len(heights); i++ {
		cur := 0
		if i < len(heights) {
			cur = heights[i]
		}
		for len(stack) > 0 && heights[stack[len(stack)-1]] >= cur {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			h := heights[top]
			l := 0
			if len(stack) > 0 {
				l = stack[len(stack)-1] + 1
			}
			if a := h * (i - l); a > area {
				area, left, right, height = a, l, i-1, h
			}
		}
		stack = append(stack, i)
	}
	return area, left, right, height
}
