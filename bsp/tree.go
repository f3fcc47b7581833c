package bsp

import (
	"fmt"
	"iter"

	"honnef.co/go/curve"
)

// Cloner is implemented by payloads that need a deep copy when a leaf is
// split. Payloads that don't implement it are copied by assignment.
type Cloner[T any] interface {
	Clone() T
}

// Node is a node of a Tree: either an internal node holding a split plane
// and the keys of its two children, or a leaf holding a payload.
type Node[T any] struct {
	Plane Plane
	// Le covers the points with a distance to Plane less than or equal to
	// zero, Gt all the other ones.
	Le, Gt Key
	Value  T

	leaf bool
}

// IsLeaf reports whether n is a leaf.
func (n Node[T]) IsLeaf() bool {
	return n.leaf
}

func leafNode[T any](v T) Node[T] {
	return Node[T]{Value: v, leaf: true}
}

// Tree is a binary space partition whose leaves carry a payload of type T.
// Nodes live in an arena and refer to each other by Key.
type Tree[T any] struct {
	nodes arena[T]
	root  Key
}

// New returns a tree made of a single leaf holding root.
func New[T any](root T) *Tree[T] {
	t := &Tree[T]{}
	t.root = t.nodes.insert(leafNode(root))
	return t
}

// Len returns the number of nodes, internal and leaves, in the tree.
func (t *Tree[T]) Len() int {
	return t.nodes.len()
}

// Leaves returns the number of leaves in the tree.
func (t *Tree[T]) Leaves() int {
	// Every internal node has exactly two children.
	return (t.nodes.len() + 1) / 2
}

// Root returns the key of the root node. The root keeps its key when it gets
// split, only its content changes.
func (t *Tree[T]) Root() Key {
	return t.root
}

// Node returns a copy of the node stored under k.
func (t *Tree[T]) Node(k Key) (Node[T], bool) {
	n, ok := t.nodes.get(k)
	if !ok {
		return Node[T]{}, false
	}
	return *n, true
}

func (t *Tree[T]) node(k Key) *Node[T] {
	n, ok := t.nodes.get(k)
	if !ok {
		panic(fmt.Sprintf("bsp: no node for key %v", k))
	}
	return n
}

// descend walks from the root to the leaf containing p. It returns the key of
// that leaf, the key of its parent (the zero Key for the root) and the
// number of internal nodes crossed on the way.
func (t *Tree[T]) descend(p curve.Point) (leaf, parent Key, depth int) {
	k := t.root
	for {
		n := t.node(k)
		if n.leaf {
			return k, parent, depth
		}
		parent = k
		if n.Plane.DistanceToPoint(p) <= 0 {
			k = n.Le
		} else {
			k = n.Gt
		}
		depth++
	}
}

// Locate returns the key of the leaf whose region contains p.
func (t *Tree[T]) Locate(p curve.Point) Key {
	k, _, _ := t.descend(p)
	return k
}

// Depth returns the number of planes tested to locate p.
func (t *Tree[T]) Depth(p curve.Point) int {
	_, _, depth := t.descend(p)
	return depth
}

// Get returns the payload of the leaf containing p.
func (t *Tree[T]) Get(p curve.Point) T {
	return t.node(t.Locate(p)).Value
}

// GetMut returns a pointer to the payload of the leaf containing p. The
// pointer must not be retained across calls that change the tree.
func (t *Tree[T]) GetMut(p curve.Point) *T {
	return &t.node(t.Locate(p)).Value
}

// Split cuts the leaf containing p along the line through p with the given
// normal. The points on the non-positive side keep the previous payload, the
// ones on the positive side get v. The tree grows by exactly two nodes.
//
// The normal must have unit length. This is only checked when building with
// the bspdebug tag; otherwise the resulting point location is undefined.
func (t *Tree[T]) Split(p curve.Point, normal curve.Vec2, v T) {
	checkNormal(normal)

	k := t.Locate(p)
	old := clone(t.node(k).Value)

	le := t.nodes.insert(leafNode(old))
	gt := t.nodes.insert(leafNode(v))

	*t.node(k) = Node[T]{
		Plane: NewPlane(p, normal),
		Le:    le,
		Gt:    gt,
	}
}

// Unsplit undoes the split that created the leaf containing p. It only
// succeeds when the sibling of that leaf is a leaf too; merging subtrees is
// not supported. The merged leaf keeps the payload of the le child, which is
// the payload the region had before it was split.
//
// Unsplit reports whether the tree changed.
func (t *Tree[T]) Unsplit(p curve.Point) bool {
	_, parent, _ := t.descend(p)
	if parent == (Key{}) {
		return false
	}

	pn := t.node(parent)
	le, gt := pn.Le, pn.Gt
	if !t.node(le).leaf || !t.node(gt).leaf {
		return false
	}

	*pn = leafNode(t.node(le).Value)
	t.nodes.remove(le)
	t.nodes.remove(gt)
	return true
}

// Height returns the largest number of planes crossed from the root to any
// leaf.
func (t *Tree[T]) Height() int {
	type item struct {
		key   Key
		depth int
	}
	var height int
	stack := []item{{t.root, 0}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := t.node(it.key)
		if n.leaf {
			height = max(height, it.depth)
			continue
		}
		stack = append(stack, item{n.Gt, it.depth + 1}, item{n.Le, it.depth + 1})
	}
	return height
}

// VisitLeafPolygons calls fn for every leaf below start together with the
// polygon of its region. The region of start itself is given by clip, which
// must be convex. For a full traversal, start is the root and clip is the
// bounding polygon of the whole tessellation; the polygons passed to fn then
// tile clip.
//
// Leaves are visited in order, the le subtree of a node before its gt
// subtree. Leaves whose region lies outside clip are visited with an empty
// polygon. fn may modify the payload but must not change the tree.
func (t *Tree[T]) VisitLeafPolygons(start Key, clip Polygon, fn func(v *T, poly Polygon)) {
	t.walk(start, clip, func(v *T, poly Polygon) bool {
		fn(v, poly)
		return true
	})
}

// LeafPolygons returns an iterator over the payload and polygon of every leaf,
// clipped to clip, in the same order as VisitLeafPolygons.
func (t *Tree[T]) LeafPolygons(clip Polygon) iter.Seq2[T, Polygon] {
	return func(yield func(T, Polygon) bool) {
		t.walk(t.root, clip, func(v *T, poly Polygon) bool {
			return yield(*v, poly)
		})
	}
}

func (t *Tree[T]) walk(start Key, clip Polygon, fn func(v *T, poly Polygon) bool) {
	type pending struct {
		key  Key
		poly Polygon
	}

	// The stack replaces recursion; repeatedly splitting the same region
	// produces arbitrarily deep trees.
	stack := []pending{{start, clip}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := t.node(top.key)
		if n.leaf {
			if !fn(&n.Value, top.poly) {
				return
			}
			continue
		}

		// Push gt first so that le is visited first.
		stack = append(stack,
			pending{n.Gt, top.poly.ClipAgainstPlane(n.Plane, false)},
			pending{n.Le, top.poly.ClipAgainstPlane(n.Plane, true)},
		)
	}
}

func clone[T any](v T) T {
	if c, ok := any(v).(Cloner[T]); ok {
		return c.Clone()
	}
	return v
}
