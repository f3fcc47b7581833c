/*
Package bsp implements a binary space partition of the plane used to tessellate
a convex region (usually the unit square) into convex cells.

Every internal node of the tree splits space with a directed line (a Plane);
points whose signed distance to the line is less than or equal to zero are
routed to the le child, every other point to the gt child. Leaves carry an
arbitrary payload. The polygon of a leaf is never stored: it is recovered on
demand by clipping a bounding polygon against the chain of ancestor planes.

	t := bsp.New("white")
	t.Split(curve.Point{X: 0.5, Y: 0.5}, curve.Vec2{X: 1}, "black")

	t.VisitLeafPolygons(t.Root(), bsp.NewRect(curve.Point{}, curve.Point{X: 1, Y: 1}),
		func(v *string, poly bsp.Polygon) {
			fmt.Println(*v, poly.Area())
		})

The tree is not safe for concurrent mutation.
*/
package bsp
