package bsp

import (
	"fmt"
	"math"

	"honnef.co/go/curve"
)

// Polygon is a convex vertex ring wound clockwise. The last vertex is
// implicitly connected to the first one. An empty polygon stands for "no
// region" and is a valid value.
type Polygon []curve.Point

// NewRect returns the axis aligned rectangle spanned by min and max.
func NewRect(min, max curve.Point) Polygon {
	return Polygon{
		min,
		{X: min.X, Y: max.Y},
		max,
		{X: max.X, Y: min.Y},
	}
}

// ClipAgainstPlane removes the part of the polygon lying on one side of the
// plane and returns what remains. If clipSideIsGreater is true the side with
// a positive distance is discarded, otherwise the side with a distance less
// than or equal to zero is discarded.
//
// Vertices lying exactly on the plane are grouped with the non-positive side
// before the flag is applied, which makes the two complementary calls over
// the same plane disagree on every interior point.
//
// ClipAgainstPlane panics if a non-empty polygon has less than 3 vertices.
func (p Polygon) ClipAgainstPlane(pl Plane, clipSideIsGreater bool) Polygon {
	if len(p) == 0 {
		return p
	}
	if len(p) < 3 {
		panic(fmt.Sprintf("bsp: cannot clip a polygon with %d vertices", len(p)))
	}

	onClipSide := func(pt curve.Point) bool {
		if pl.DistanceToPoint(pt) <= 0 {
			return !clipSideIsGreater
		}
		return clipSideIsGreater
	}

	// A convex polygon crosses the plane at most twice, which adds at most
	// one vertex.
	out := make(Polygon, 0, len(p)+1)

	prev := p[len(p)-1]
	prevClipped := onClipSide(prev)
	for _, cur := range p {
		curClipped := onClipSide(cur)

		switch {
		case !prevClipped && !curClipped:
			out = append(out, cur)
		case !prevClipped && curClipped:
			// Entering the clip side: the crossing closes the kept run.
			out = appendCrossing(out, pl, prev, cur)
		case prevClipped && !curClipped:
			// Leaving the clip side.
			out = appendCrossing(out, pl, prev, cur)
			out = append(out, cur)
		}

		prev, prevClipped = cur, curClipped
	}

	return out
}

func appendCrossing(out Polygon, pl Plane, start, end curve.Point) Polygon {
	pt, ok := pl.LineIntersection(start, end)
	if !ok {
		diag.nonCrossing(pl, start, end)
		return out
	}
	return append(out, pt)
}

// SignedArea returns the area enclosed by the polygon using the shoelace
// formula. Clockwise rings have a negative area in a y-up coordinate system.
func (p Polygon) SignedArea() float64 {
	if len(p) < 3 {
		return 0
	}
	var sum float64
	prev := p[len(p)-1]
	for _, cur := range p {
		sum += prev.X*cur.Y - cur.X*prev.Y
		prev = cur
	}
	return sum / 2
}

// Area returns the absolute area enclosed by the polygon.
func (p Polygon) Area() float64 {
	return math.Abs(p.SignedArea())
}
