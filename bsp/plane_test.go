package bsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"honnef.co/go/curve"
)

func TestPlane_DistanceToPoint(t *testing.T) {
	assert := assert.New(t)

	pl := NewPlane(curve.Point{X: 0.5, Y: 0.5}, curve.Vec2{X: 1})
	assert.Equal(0.5, pl.Distance)

	assert.InDelta(0.0, pl.DistanceToPoint(curve.Point{X: 0.5, Y: 0.9}), 1e-12)
	assert.InDelta(0.4, pl.DistanceToPoint(curve.Point{X: 0.9, Y: 0.1}), 1e-12)
	assert.InDelta(-0.5, pl.DistanceToPoint(curve.Point{X: 0, Y: 0.1}), 1e-12)

	diag := NewPlane(curve.Point{}, curve.Vec2{X: math.Sqrt2 / 2, Y: math.Sqrt2 / 2})
	assert.InDelta(math.Sqrt2, diag.DistanceToPoint(curve.Point{X: 1, Y: 1}), 1e-12)
}

func TestPlane_LineIntersection(t *testing.T) {
	assert := assert.New(t)

	pl := NewPlane(curve.Point{X: 0.25}, curve.Vec2{X: 1})

	pt, ok := pl.LineIntersection(curve.Point{X: 0, Y: 0}, curve.Point{X: 1, Y: 1})
	assert.True(ok)
	assert.InDelta(0.25, pt.X, 1e-12)
	assert.InDelta(0.25, pt.Y, 1e-12)

	// The direction of the segment doesn't matter.
	pt, ok = pl.LineIntersection(curve.Point{X: 1, Y: 1}, curve.Point{X: 0, Y: 0})
	assert.True(ok)
	assert.InDelta(0.25, pt.X, 1e-12)
	assert.InDelta(0.25, pt.Y, 1e-12)
}

func TestPlane_LineIntersectionSameSide(t *testing.T) {
	assert := assert.New(t)

	pl := NewPlane(curve.Point{X: 0.25}, curve.Vec2{X: 1})

	_, ok := pl.LineIntersection(curve.Point{X: 0.5}, curve.Point{X: 1, Y: 1})
	assert.False(ok)
	_, ok = pl.LineIntersection(curve.Point{X: 0}, curve.Point{X: 0.1, Y: 1})
	assert.False(ok)

	// A point on the plane belongs to the non-positive side.
	_, ok = pl.LineIntersection(curve.Point{X: 0.25}, curve.Point{X: 0, Y: 1})
	assert.False(ok)

	pt, ok := pl.LineIntersection(curve.Point{X: 0.25, Y: 0.5}, curve.Point{X: 1, Y: 1})
	assert.True(ok)
	assert.Equal(curve.Point{X: 0.25, Y: 0.5}, pt)
}
