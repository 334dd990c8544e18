package simulation

import "pointquadtree/quadtree"

// PointView is the JSON form of a MovingPoint.
type PointView struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

// Box is the JSON form of an AABB, as edges.
type Box struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

func BoxOf(b quadtree.AABB) Box {
	return Box{MinX: b.XMin(), MinY: b.YMin(), MaxX: b.XMax(), MaxY: b.YMax()}
}

// Snapshot is the state a viewer needs to draw the world.
type Snapshot struct {
	Boundary        Box         `json:"boundary"`
	Capacity        int         `json:"capacity"`
	Depth           int         `json:"depth"`
	CollisionRadius float64     `json:"collision_radius"`
	InsertRate      float64     `json:"insert_rate"`
	Points          []PointView `json:"points"`
	Partitions      []Box       `json:"partitions"`
	Stats           Stats       `json:"stats"`
}

func (p *MovingPoint) view() PointView {
	return PointView{ID: p.ID, X: p.X, Y: p.Y, VX: p.Velocity.X, VY: p.Velocity.Y}
}

func viewOf(p *MovingPoint) (PointView, bool) {
	if p == nil {
		return PointView{}, false
	}
	return p.view(), true
}

// viewsOf copies points into their JSON form. The caller must hold the lock
// that guards the points.
func viewsOf(points []*MovingPoint) []PointView {
	views := make([]PointView, len(points))
	for i, p := range points {
		views[i] = p.view()
	}
	return views
}

func (w *World) Snapshot() Snapshot {
	stats := w.Stats()

	w.mu.RLock()
	defer w.mu.RUnlock()
	partitions := w.tree.Partitions()
	boxes := make([]Box, len(partitions))
	for i, b := range partitions {
		boxes[i] = BoxOf(b)
	}
	return Snapshot{
		Boundary:        BoxOf(w.tree.Boundary()),
		Capacity:        w.tree.Capacity(),
		Depth:           w.tree.Depth(),
		CollisionRadius: w.collisionRadius,
		InsertRate:      w.insertRate,
		Points:          viewsOf(w.tree.Points()),
		Partitions:      boxes,
		Stats:           stats,
	}
}
