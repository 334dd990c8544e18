package quadtree

import (
	"math"
	"sort"
	"testing"
)

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9
}

func TestPointMagnitude(t *testing.T) {
	tests := []struct {
		p       Point
		mag     float64
		squared float64
	}{
		{Point{3, 4}, 5, 25},
		{Point{-5, -12}, 13, 169},
		{Point{0, 0}, 0, 0},
	}
	for _, tc := range tests {
		if got := tc.p.Magnitude(); got != tc.mag {
			t.Errorf("%v.Magnitude() = %v, want %v", tc.p, got, tc.mag)
		}
		if got := tc.p.MagnitudeSquared(); got != tc.squared {
			t.Errorf("%v.MagnitudeSquared() = %v, want %v", tc.p, got, tc.squared)
		}
	}
}

func TestPointDistance(t *testing.T) {
	p := Point{1, 2}
	tests := []struct {
		o       Point
		dist    float64
		squared float64
	}{
		{Point{2, 2}, 1, 1},
		{Point{4, 6}, 5, 25},
		{Point{-3, -1}, 5, 25},
		{p, 0, 0},
	}
	for _, tc := range tests {
		if got := p.Distance(tc.o); got != tc.dist {
			t.Errorf("Distance(%v) = %v, want %v", tc.o, got, tc.dist)
		}
		if got := p.DistanceSquared(tc.o); got != tc.squared {
			t.Errorf("DistanceSquared(%v) = %v, want %v", tc.o, got, tc.squared)
		}
	}
}

func TestPointDifferenceAndDirection(t *testing.T) {
	if got := (Point{2, 5}).Difference(Point{1, 2}); got != (Point{1, 3}) {
		t.Errorf("Difference = %v, want (1,3)", got)
	}

	d := Point{4, 6}.DirectionFrom(Point{1, 2})
	if !nearlyEqual(d.X, 0.6) || !nearlyEqual(d.Y, 0.8) {
		t.Errorf("DirectionFrom = %v, want (0.6,0.8)", d)
	}
	if !nearlyEqual(d.Magnitude(), 1) {
		t.Errorf("DirectionFrom magnitude = %v, want 1", d.Magnitude())
	}

	z := Point{1, 1}.DirectionFrom(Point{1, 1})
	if !math.IsNaN(z.X) || !math.IsNaN(z.Y) {
		t.Errorf("DirectionFrom of coincident points = %v, want NaN components", z)
	}
}

func TestPointXY(t *testing.T) {
	p := Point{3, -4}
	if x, y := p.XY(); x != 3 || y != -4 {
		t.Fatalf("Point.XY() = %v, %v", x, y)
	}
	tr := New[*Point](NewAABB(Point{}, Point{10, 10}), 1)
	if !tr.Insert(&p) {
		t.Fatal("Insert(&p) = false")
	}
	if res := tr.TranslatePoint(&p, 1, 1); res != Translated {
		t.Fatalf("TranslatePoint = %v", res)
	}
	if x, y := p.XY(); x != 4 || y != -3 {
		t.Fatalf("after TranslatePoint, XY() = %v, %v", x, y)
	}
}

func TestPointMutation(t *testing.T) {
	p := &Point{0, 0}
	p.Translate(1, -2)
	if *p != (Point{1, -2}) {
		t.Fatalf("after Translate got %v", p)
	}
	p.Translate(0, 0)
	if *p != (Point{1, -2}) {
		t.Fatalf("after zero Translate got %v", p)
	}

	p.TranslateBy(Point{2, 3})
	if *p != (Point{3, 1}) {
		t.Fatalf("after TranslateBy got %v", p)
	}

	p.Scale(2)
	if *p != (Point{6, 2}) {
		t.Fatalf("after Scale got %v", p)
	}

	q := Point{3, 4}
	q.Scale(0.5)
	if q != (Point{1.5, 2}) {
		t.Fatalf("Scale(0.5) got %v", q)
	}

	if got := q.Translated(1, 1); got != (Point{2.5, 3}) || q != (Point{1.5, 2}) {
		t.Fatalf("Translated got %v, receiver %v", got, q)
	}

	n := Point{3, 4}
	n.Normalize()
	if !nearlyEqual(n.X, 0.6) || !nearlyEqual(n.Y, 0.8) {
		t.Fatalf("Normalize got %v", n)
	}
}

func TestPointLess(t *testing.T) {
	tests := []struct {
		a, b Point
		want bool
	}{
		{Point{1, 0}, Point{0, 2}, false},
		{Point{1, 0}, Point{2, 0}, true},
		{Point{1, 0}, Point{1, 0}, false},
		{Point{1, 0}, Point{1, 1}, true},
	}
	for _, tc := range tests {
		if got := tc.a.Less(tc.b); got != tc.want {
			t.Errorf("%v.Less(%v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}

	pts := []Point{{2, 2}, {0, 1}, {0, 0}, {1, 5}}
	sort.Slice(pts, func(i, j int) bool { return pts[i].Less(pts[j]) })
	want := []Point{{0, 0}, {0, 1}, {1, 5}, {2, 2}}
	for i := range want {
		if pts[i] != want[i] {
			t.Fatalf("sorted = %v, want %v", pts, want)
		}
	}
}

func TestPointString(t *testing.T) {
	if got := (Point{1, 2}).String(); got != "(1,2)" {
		t.Errorf("String() = %q", got)
	}
	if got := (Point{1.5, -0.25}).String(); got != "(1.5,-0.25)" {
		t.Errorf("String() = %q", got)
	}
}
