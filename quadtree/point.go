package quadtree

import (
	"math"
	"strconv"
)

// Point represents a location (or a vector) in 2D space.
// Only the methods that mutate the point in place (Translate, TranslateBy,
// Scale, Normalize) have a pointer receiver.
type Point struct {
	X, Y float64
}

// XY returns the point's coordinates.
func (p Point) XY() (float64, float64) {
	return p.X, p.Y
}

func (p Point) Magnitude() float64 {
	return math.Sqrt(p.MagnitudeSquared())
}

func (p Point) MagnitudeSquared() float64 {
	return p.X*p.X + p.Y*p.Y
}

func (p Point) Distance(o Point) float64 {
	return math.Sqrt(p.DistanceSquared(o))
}

func (p Point) DistanceSquared(o Point) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	return dx*dx + dy*dy
}

// Difference returns the vector from o to p.
func (p Point) Difference(o Point) Point {
	return Point{p.X - o.X, p.Y - o.Y}
}

// DirectionFrom returns the unit vector pointing from o to p.
// If p and o coincide both components are NaN.
func (p Point) DirectionFrom(o Point) Point {
	d := p.Difference(o)
	d.Normalize()
	return d
}

// Translated returns a copy of p shifted by (dx, dy).
func (p Point) Translated(dx, dy float64) Point {
	return Point{p.X + dx, p.Y + dy}
}

func (p *Point) Translate(dx, dy float64) {
	p.X += dx
	p.Y += dy
}

func (p *Point) TranslateBy(o Point) {
	p.Translate(o.X, o.Y)
}

func (p *Point) Scale(factor float64) {
	p.X *= factor
	p.Y *= factor
}

// Normalize scales p to unit length. A zero vector becomes (NaN, NaN).
func (p *Point) Normalize() {
	p.Scale(1 / p.Magnitude())
}

// Less orders points by X, then by Y.
func (p Point) Less(o Point) bool {
	if p.X != o.X {
		return p.X < o.X
	}
	return p.Y < o.Y
}

func (p Point) String() string {
	return "(" + strconv.FormatFloat(p.X, 'f', -1, 64) + "," + strconv.FormatFloat(p.Y, 'f', -1, 64) + ")"
}
