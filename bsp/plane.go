package bsp

import (
	"math"

	"honnef.co/go/curve"
)

// Plane is a directed line in 2D, expressed as a unit normal and a signed
// offset along that normal. The line itself is the set of points with a
// signed distance of zero.
type Plane struct {
	Normal   curve.Vec2
	Distance float64
}

// NewPlane returns the plane passing through the given point with the given
// normal. The normal has to be of unit length, otherwise every distance
// computed against the plane is scaled by the normal's length.
func NewPlane(through curve.Point, normal curve.Vec2) Plane {
	return Plane{
		Normal:   normal,
		Distance: dot(curve.Vec2(through), normal),
	}
}

// DistanceToPoint returns the signed distance of pt to the plane.
func (p Plane) DistanceToPoint(pt curve.Point) float64 {
	return dot(curve.Vec2(pt), p.Normal) - p.Distance
}

// LineIntersection returns the point where the segment between start and end
// crosses the plane. Points lying exactly on the plane count as being on the
// negative side, so the second return value is false whenever both end points
// fall on the same side under that rule.
func (p Plane) LineIntersection(start, end curve.Point) (curve.Point, bool) {
	startDist := p.DistanceToPoint(start)
	endDist := p.DistanceToPoint(end)

	if (startDist > 0) == (endDist > 0) {
		return curve.Point{}, false
	}

	frac := math.Abs(startDist) / math.Abs(endDist-startDist)
	return curve.Point(curve.Vec2(start).Lerp(curve.Vec2(end), frac)), true
}

func dot(a, b curve.Vec2) float64 {
	return a.X*b.X + a.Y*b.Y
}
