package quadtree

// AABB is an axis aligned bounding box described by its center and its
// half-size along each axis. Containment and intersection include the edges.
type AABB struct {
	Center   Point
	HalfSize Point
}

func NewAABB(center, halfSize Point) AABB {
	return AABB{Center: center, HalfSize: halfSize}
}

// PositiveQuadrantBox returns the box spanning [0, sizeX] x [0, sizeY].
func PositiveQuadrantBox(sizeX, sizeY float64) AABB {
	half := Point{sizeX / 2, sizeY / 2}
	return AABB{Center: half, HalfSize: half}
}

func (b AABB) XMin() float64 { return b.Center.X - b.HalfSize.X }
func (b AABB) XMax() float64 { return b.Center.X + b.HalfSize.X }
func (b AABB) YMin() float64 { return b.Center.Y - b.HalfSize.Y }
func (b AABB) YMax() float64 { return b.Center.Y + b.HalfSize.Y }

// Contains reports whether (x, y) lies inside b or on its edge.
func (b AABB) Contains(x, y float64) bool {
	return x >= b.XMin() && x <= b.XMax() &&
		y >= b.YMin() && y <= b.YMax()
}

func (b AABB) ContainsPoint(p Point) bool {
	return b.Contains(p.X, p.Y)
}

// Intersects checks if the two boxes overlap. Boxes that only share an edge
// or a corner intersect.
func (b AABB) Intersects(o AABB) bool {
	return b.XMin() <= o.XMax() && b.XMax() >= o.XMin() &&
		b.YMin() <= o.YMax() && b.YMax() >= o.YMin()
}

// Quadrant returns the box covering quadrant q of b.
func (b AABB) Quadrant(q Quadrant) AABB {
	half := Point{b.HalfSize.X / 2, b.HalfSize.Y / 2}
	fx, fy := q.factors()
	return AABB{
		Center: Point{
			X: b.Center.X + fx*half.X,
			Y: b.Center.Y + fy*half.Y,
		},
		HalfSize: half,
	}
}

func (b AABB) String() string {
	return "AABB<center=" + b.Center.String() + ", half_size=" + b.HalfSize.String() + ">"
}

// Quadrant identifies one of the four children of a tree node. The
// numeric order is the order in which children are visited.
type Quadrant int

const (
	UpperLeft Quadrant = iota
	UpperRight
	LowerLeft
	LowerRight
)

func (q Quadrant) factors() (float64, float64) {
	switch q {
	case UpperLeft:
		return -1, 1
	case UpperRight:
		return 1, 1
	case LowerLeft:
		return -1, -1
	default:
		return 1, -1
	}
}

func (q Quadrant) String() string {
	switch q {
	case UpperLeft:
		return "UpperLeft"
	case UpperRight:
		return "UpperRight"
	case LowerLeft:
		return "LowerLeft"
	case LowerRight:
		return "LowerRight"
	default:
		return "Unknown"
	}
}
