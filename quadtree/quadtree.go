package quadtree

import "slices"

// Element is anything that can be stored in a Tree: a comparable value
// (usually a pointer) that knows its coordinates and can be moved in place.
// Removal compares elements with ==, so two distinct pointers at the same
// location are different elements.
type Element interface {
	comparable
	XY() (x, y float64)
	Translate(dx, dy float64)
}

// bounds holds the exact edges of a node. Children reuse their parent's
// edges and center lines as their own edges, so the four quadrants tile the
// parent without floating point gaps.
type bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

func boundsOf(b AABB) bounds {
	return bounds{MinX: b.XMin(), MinY: b.YMin(), MaxX: b.XMax(), MaxY: b.YMax()}
}

func (b bounds) contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// intersects is the separating axis test against a query region.
func (b bounds) intersects(r AABB) bool {
	return !(r.XMax() < b.MinX || r.XMin() > b.MaxX ||
		r.YMax() < b.MinY || r.YMin() > b.MaxY)
}

func (b bounds) quadrant(q Quadrant) bounds {
	midX := (b.MinX + b.MaxX) / 2
	midY := (b.MinY + b.MaxY) / 2
	switch q {
	case UpperLeft:
		return bounds{MinX: b.MinX, MinY: midY, MaxX: midX, MaxY: b.MaxY}
	case UpperRight:
		return bounds{MinX: midX, MinY: midY, MaxX: b.MaxX, MaxY: b.MaxY}
	case LowerLeft:
		return bounds{MinX: b.MinX, MinY: b.MinY, MaxX: midX, MaxY: midY}
	default:
		return bounds{MinX: midX, MinY: b.MinY, MaxX: b.MaxX, MaxY: midY}
	}
}

// Tree is a point quadtree. Each node holds up to capacity points. When a
// full node receives another point it subdivides into four quadrants and
// passes the point down, but keeps the points it already holds. Removing a
// point from a node pulls one up from a descendant leaf so that nodes near
// the root stay full.
//
// A Tree is not safe for concurrent use.
type Tree[E Element] struct {
	boundary AABB
	bounds   bounds
	capacity int
	points   []E
	children *[4]*Tree[E]
}

// New creates an empty tree covering boundary. It panics if capacity < 1.
func New[E Element](boundary AABB, capacity int) *Tree[E] {
	if capacity < 1 {
		panic("quadtree: capacity must be at least 1")
	}
	return newNode[E](boundary, boundsOf(boundary), capacity)
}

func newNode[E Element](boundary AABB, b bounds, capacity int) *Tree[E] {
	return &Tree[E]{
		boundary: boundary,
		bounds:   b,
		capacity: capacity,
		points:   make([]E, 0, capacity),
	}
}

func (t *Tree[E]) Boundary() AABB { return t.boundary }
func (t *Tree[E]) Capacity() int  { return t.capacity }

// Subdivided reports whether the node has children.
func (t *Tree[E]) Subdivided() bool { return t.children != nil }

func (t *Tree[E]) contains(e E) bool {
	x, y := e.XY()
	return t.bounds.contains(x, y)
}

// Insert adds e to the tree. It returns false if e lies outside the tree's
// boundary.
func (t *Tree[E]) Insert(e E) bool {
	if !t.contains(e) {
		return false
	}

	if len(t.points) < t.capacity {
		t.points = append(t.points, e)
		return true
	}

	if t.children == nil {
		t.subdivide()
	}
	for _, c := range t.children {
		if c.Insert(e) {
			return true
		}
	}
	panic("quadtree: point inside the boundary was rejected by every quadrant")
}

// InsertAll inserts every element and returns how many were accepted.
func (t *Tree[E]) InsertAll(elems []E) int {
	n := 0
	for _, e := range elems {
		if t.Insert(e) {
			n++
		}
	}
	return n
}

func (t *Tree[E]) subdivide() {
	var children [4]*Tree[E]
	for q := UpperLeft; q <= LowerRight; q++ {
		children[q] = newNode[E](t.boundary.Quadrant(q), t.bounds.quadrant(q), t.capacity)
	}
	t.children = &children
}

// Query returns the elements inside region: the node's own points first,
// then each quadrant in UpperLeft, UpperRight, LowerLeft, LowerRight order.
func (t *Tree[E]) Query(region AABB) []E {
	var results []E
	t.query(region, &results)
	return results
}

func (t *Tree[E]) query(region AABB, results *[]E) {
	if !t.bounds.intersects(region) {
		return
	}
	for _, e := range t.points {
		if region.Contains(e.XY()) {
			*results = append(*results, e)
		}
	}
	if t.children != nil {
		for _, c := range t.children {
			c.query(region, results)
		}
	}
}

// Points returns every element in the tree in the same order as Query.
func (t *Tree[E]) Points() []E {
	results := make([]E, 0, t.Len())
	t.collect(&results)
	return results
}

func (t *Tree[E]) collect(results *[]E) {
	*results = append(*results, t.points...)
	if t.children != nil {
		for _, c := range t.children {
			c.collect(results)
		}
	}
}

// Len returns the number of elements in the tree.
func (t *Tree[E]) Len() int {
	n := len(t.points)
	if t.children != nil {
		for _, c := range t.children {
			n += c.Len()
		}
	}
	return n
}

// Depth returns the number of levels in the tree; an unsubdivided tree has
// depth 1.
func (t *Tree[E]) Depth() int {
	if t.children == nil {
		return 1
	}
	deepest := 0
	for _, c := range t.children {
		deepest = max(deepest, c.Depth())
	}
	return deepest + 1
}

// Partitions returns the boundary of every subdivided node, parents before
// their children.
func (t *Tree[E]) Partitions() []AABB {
	var boxes []AABB
	t.partitions(&boxes)
	return boxes
}

func (t *Tree[E]) partitions(boxes *[]AABB) {
	if t.children == nil {
		return
	}
	*boxes = append(*boxes, t.boundary)
	for _, c := range t.children {
		c.partitions(boxes)
	}
}

// Clear removes every element and collapses the tree to a single node.
func (t *Tree[E]) Clear() {
	clear(t.points)
	t.points = t.points[:0]
	t.children = nil
}

// Remove deletes e from the tree. It returns false if e is not in the tree.
func (t *Tree[E]) Remove(e E) bool {
	if !t.contains(e) {
		return false
	}

	if i := slices.Index(t.points, e); i >= 0 {
		t.removeResident(i)
		return true
	}

	if t.children == nil {
		return false
	}
	for _, c := range t.children {
		if c.Remove(e) {
			t.pruneEmptyChildren()
			return true
		}
	}
	return false
}

// removeResident drops the i-th resident point and refills the slot from a
// descendant leaf.
func (t *Tree[E]) removeResident(i int) {
	t.points = slices.Delete(t.points, i, i+1)
	if e, ok := t.popFromLeaf(); ok {
		t.points = append(t.points, e)
	}
}

// popFromLeaf removes the first point of the first non-empty leaf below t,
// searching depth first in quadrant order, and prunes quadrants left empty.
func (t *Tree[E]) popFromLeaf() (E, bool) {
	var zero E
	if t.children == nil {
		return zero, false
	}
	for _, c := range t.children {
		var e E
		ok := false
		if c.children == nil {
			if len(c.points) > 0 {
				e = c.points[0]
				c.points = slices.Delete(c.points, 0, 1)
				ok = true
			}
		} else {
			e, ok = c.popFromLeaf()
		}
		if ok {
			t.pruneEmptyChildren()
			return e, true
		}
	}
	return zero, false
}

// pruneEmptyChildren discards the quadrants once all four are empty leaves.
func (t *Tree[E]) pruneEmptyChildren() {
	if t.children == nil {
		return
	}
	for _, c := range t.children {
		if len(c.points) > 0 || c.children != nil {
			return
		}
	}
	t.children = nil
}
