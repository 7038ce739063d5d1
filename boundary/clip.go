package boundary

import (
	"math"

	polyclip "github.com/akavel/polyclip-go"
	"gonum.org/v1/gonum/spatial/r3"
)

// clipScale is the fixed-point scale applied before clipping: 1e4 units per
// meter, sub-millimeter resolution. Clipping on snapped integral
// coordinates keeps results bit-stable across edit sequences.
const clipScale = 10000.0

// ModifyPoints applies a brush polygon to the boundary: union when isUnion,
// difference otherwise. Both polygons are clipped in driver space at fixed
// point; when the boolean yields several components the one enclosing the
// largest area survives, and an empty result empties the polygon.
func (e *Editor) ModifyPoints(brushPoints []r3.Vec, isUnion bool) {
	if len(brushPoints) < 3 {
		return
	}
	if len(e.points) < 3 {
		// Nothing to subtract from; a union adopts the brush outline.
		if isUnion {
			e.SetPolygon(brushPoints)
		}
		return
	}

	subject := polyclip.Polygon{e.toClipContour(e.points)}
	clip := polyclip.Polygon{e.toClipContour(brushPoints)}

	op := polyclip.DIFFERENCE
	if isUnion {
		op = polyclip.UNION
	}
	result := subject.Construct(op, clip)

	// Compare unsigned areas: the clipper does not orient output contours
	// consistently (union keeps the subject's winding, difference flips
	// it), and holes come back wound opposite their outer ring anyway.
	best := -1
	bestArea := math.Inf(-1)
	for i, contour := range result {
		if len(contour) < 3 {
			continue
		}
		if a := math.Abs(signedArea(contour)); a > bestArea {
			best, bestArea = i, a
		}
	}
	if best < 0 {
		e.points = e.points[:0]
		return
	}

	out := make([]r3.Vec, 0, len(result[best]))
	for _, p := range result[best] {
		out = append(out, e.driverToWorld(p.X/clipScale, p.Y/clipScale))
	}
	e.points = out
}

// toClipContour converts world points to snapped fixed-point driver
// coordinates; the clip plane maps driver x to X and driver z to Y.
func (e *Editor) toClipContour(pts []r3.Vec) polyclip.Contour {
	c := make(polyclip.Contour, 0, len(pts))
	for _, p := range pts {
		x, z := e.worldToDriver(p)
		c = append(c, polyclip.Point{X: math.Round(x * clipScale), Y: math.Round(z * clipScale)})
	}
	return c
}

func signedArea(c polyclip.Contour) float64 {
	sum := 0.0
	for i := range c {
		j := (i + 1) % len(c)
		sum += c[i].X*c[j].Y - c[j].X*c[i].Y
	}
	return sum / 2
}
