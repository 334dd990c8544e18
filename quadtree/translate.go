package quadtree

// TranslateResult reports what TranslatePoint did with an element.
type TranslateResult int

const (
	// Translated means the element was moved and is still in the tree.
	Translated TranslateResult = iota
	// Removed means the element was moved outside the node that was asked
	// to move it. It has been taken out of that node and the caller must
	// insert it somewhere else.
	Removed
	// OutOfBounds means the element's current position is outside the
	// tree's boundary.
	OutOfBounds
	// NotInTree means the element's position is inside the boundary but the
	// element is not stored in the tree.
	NotInTree
)

func (r TranslateResult) String() string {
	switch r {
	case Translated:
		return "Translated"
	case Removed:
		return "Removed"
	case OutOfBounds:
		return "OutOfBounds"
	case NotInTree:
		return "NotInTree"
	default:
		return "Unknown"
	}
}

// TranslatePoint moves e by (dx, dy). This is equivalent to removing e,
// calling e.Translate and inserting it again, but avoids restructuring the
// tree when e stays inside the node that holds it.
//
// When the new position leaves the node holding e, each ancestor in turn
// tries to reinsert it. If even t cannot take it the result is Removed: e
// has been translated and is no longer in the tree.
func (t *Tree[E]) TranslatePoint(e E, dx, dy float64) TranslateResult {
	x, y := e.XY()
	if !t.bounds.contains(x, y) {
		return OutOfBounds
	}

	for i, p := range t.points {
		if p != e {
			continue
		}
		if t.bounds.contains(x+dx, y+dy) {
			e.Translate(dx, dy)
			return Translated
		}
		t.removeResident(i)
		e.Translate(dx, dy)
		return Removed
	}

	if t.children == nil {
		return NotInTree
	}
	for _, c := range t.children {
		switch res := c.TranslatePoint(e, dx, dy); res {
		case Translated:
			return Translated
		case Removed:
			t.pruneEmptyChildren()
			if t.Insert(e) {
				return Translated
			}
			return Removed
		}
		// A child's NotInTree is not final. A point on a split line is
		// inside two quadrants but held by only one, so the search moves
		// on to the next quadrant and NotInTree is reported once none of
		// them holds e.
	}
	return NotInTree
}
