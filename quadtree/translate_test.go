package quadtree

import (
	"slices"
	"testing"
)

func TestTranslatePointOutOfRoot(t *testing.T) {
	tr := New[*Point](NewAABB(Point{0, 0}, Point{1, 1}), 1)
	p := &Point{1, 1}
	if !tr.Insert(p) {
		t.Fatal("Insert = false")
	}
	if res := tr.TranslatePoint(p, 1, 1); res != Removed {
		t.Fatalf("TranslatePoint = %v, want Removed", res)
	}
	if *p != (Point{2, 2}) {
		t.Fatalf("point not translated: %v", p)
	}
	if got := tr.Points(); len(got) != 0 {
		t.Fatalf("Points() = %v, want empty", pts(got...))
	}
}

func TestTranslatePointInPlace(t *testing.T) {
	tr := New[*Point](PositiveQuadrantBox(8, 8), 1)
	a, b := &Point{1, 1}, &Point{6, 6}
	tr.Insert(a)
	tr.Insert(b)

	// b lives in the upper-right quadrant and stays there.
	if res := tr.TranslatePoint(b, 1, 1); res != Translated {
		t.Fatalf("TranslatePoint(b) = %v", res)
	}
	if got := tr.children[UpperRight].points; !slices.Equal(got, []*Point{b}) || *b != (Point{7, 7}) {
		t.Fatalf("upper-right holds %v, b = %v", pts(got...), b)
	}

	// a lives in the root; anywhere inside the root is in place.
	if res := tr.TranslatePoint(a, 5, 0); res != Translated {
		t.Fatalf("TranslatePoint(a) = %v", res)
	}
	if !slices.Equal(tr.points, []*Point{a}) || *a != (Point{6, 1}) {
		t.Fatalf("root holds %v, a = %v", pts(tr.points...), a)
	}
	checkInvariants(t, tr)
}

func TestTranslatePointAcrossQuadrants(t *testing.T) {
	tr := New[*Point](PositiveQuadrantBox(8, 8), 1)
	a, b := &Point{1, 1}, &Point{6, 6}
	tr.Insert(a)
	tr.Insert(b)

	if res := tr.TranslatePoint(b, -5, -5); res != Translated {
		t.Fatalf("TranslatePoint = %v, want Translated", res)
	}
	if *b != (Point{1, 1}) {
		t.Fatalf("b = %v", b)
	}
	if got := tr.children[LowerLeft].points; !slices.Equal(got, []*Point{b}) {
		t.Fatalf("lower-left holds %v", pts(got...))
	}
	if n := len(tr.children[UpperRight].points); n != 0 {
		t.Fatalf("upper-right still holds %d points", n)
	}
	checkInvariants(t, tr)

	if got := tr.Query(NewAABB(Point{1, 1}, Point{0.5, 0.5})); !slices.Equal(got, []*Point{a, b}) {
		t.Fatalf("Query = %v", pts(got...))
	}
}

func TestTranslatePointRefillsVacatedNode(t *testing.T) {
	tr := New[*Point](PositiveQuadrantBox(8, 8), 1)
	root, mid, deep := &Point{1, 1}, &Point{1, 2}, &Point{1, 1.5}
	tr.Insert(root)
	tr.Insert(mid)
	tr.Insert(deep)

	ll := tr.children[LowerLeft]
	if !slices.Equal(ll.points, []*Point{mid}) || !ll.Subdivided() {
		t.Fatalf("unexpected layout: lower-left %v subdivided=%v", pts(ll.points...), ll.Subdivided())
	}

	// mid leaves the lower-left quadrant; deep moves up to take its place.
	if res := tr.TranslatePoint(mid, 5, 5); res != Translated {
		t.Fatalf("TranslatePoint = %v", res)
	}
	if !slices.Equal(ll.points, []*Point{deep}) || ll.Subdivided() {
		t.Fatalf("lower-left %v subdivided=%v", pts(ll.points...), ll.Subdivided())
	}
	if got := tr.children[UpperRight].points; !slices.Equal(got, []*Point{mid}) {
		t.Fatalf("upper-right holds %v", pts(got...))
	}
	checkInvariants(t, tr)
}

func TestTranslatePointRemovedFromSubtree(t *testing.T) {
	tr := New[*Point](NewAABB(Point{0, 0}, Point{2, 2}), 1)
	a, b := &Point{-1, -1}, &Point{1, 1}
	tr.Insert(a)
	tr.Insert(b)

	if res := tr.TranslatePoint(b, 2, 0); res != Removed {
		t.Fatalf("TranslatePoint = %v, want Removed", res)
	}
	if *b != (Point{3, 1}) {
		t.Fatalf("b = %v", b)
	}
	if got := tr.Points(); !slices.Equal(got, []*Point{a}) {
		t.Fatalf("Points() = %v", pts(got...))
	}
	if tr.Subdivided() {
		t.Fatal("empty quadrants were not pruned")
	}
}

func TestTranslatePointOnSharedEdge(t *testing.T) {
	tr := New[*Point](PositiveQuadrantBox(8, 8), 1)
	a, b := &Point{1, 1}, &Point{6, 6}
	tr.Insert(a)
	tr.Insert(b)

	// Move b onto the left edge of the upper-right quadrant, which the
	// upper-left quadrant also contains.
	if res := tr.TranslatePoint(b, -2, 0); res != Translated {
		t.Fatalf("TranslatePoint = %v", res)
	}
	if res := tr.TranslatePoint(b, 0, 1); res != Translated {
		t.Fatalf("TranslatePoint on the edge = %v", res)
	}
	if *b != (Point{4, 7}) {
		t.Fatalf("b = %v", b)
	}
	if !tr.Remove(b) {
		t.Fatal("Remove = false")
	}
	checkInvariants(t, tr)
}

func TestTranslateResultString(t *testing.T) {
	for r, want := range map[TranslateResult]string{
		Translated:         "Translated",
		Removed:            "Removed",
		OutOfBounds:        "OutOfBounds",
		NotInTree:          "NotInTree",
		TranslateResult(9): "Unknown",
	} {
		if got := r.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
