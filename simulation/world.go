package simulation

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/golang/glog"

	"pointquadtree/quadtree"
)

// MinCollisionRadius is the smallest half-size of the collision area.
const MinCollisionRadius = 8

// MovingPoint is a point with a velocity, applied once per tick.
type MovingPoint struct {
	quadtree.Point
	ID       int
	Velocity quadtree.Point
}

// Options configures a World.
type Options struct {
	Boundary        quadtree.AABB
	Capacity        int
	Seed            int64
	MaxSpeed        int
	InsertRate      float64
	CollisionRadius float64
}

// Stats tracks what the simulation has done so far.
type Stats struct {
	Ticks        int           `json:"ticks"`
	Inserted     int           `json:"inserted"`
	Removed      int           `json:"removed"`
	Escaped      int           `json:"escaped"`
	Translated   int           `json:"translated"`
	Rebuilds     int           `json:"rebuilds"`
	Queries      int           `json:"queries"`
	AvgQueryTime time.Duration `json:"avg_query_time"`
}

// World is a set of moving points indexed by a quadtree. Every method is
// safe for concurrent use. The tree and its points are only touched under
// mu, so callers get PointView copies, never the points themselves.
type World struct {
	mu              sync.RWMutex
	tree            *quadtree.Tree[*MovingPoint]
	rand            *rand.Rand
	nextID          int
	maxSpeed        int
	insertRate      float64
	accumulator     float64
	collisionRadius float64
	moving          bool
	stats           Stats

	// Queries run under the read lock, so their counters have their own.
	queryMu      sync.Mutex
	queries      int
	avgQueryTime time.Duration
}

// NewWorld creates an empty world. It panics if opts.Capacity < 1.
func NewWorld(opts Options) *World {
	return &World{
		tree:            quadtree.New[*MovingPoint](opts.Boundary, opts.Capacity),
		rand:            rand.New(rand.NewSource(opts.Seed)),
		maxSpeed:        opts.MaxSpeed,
		insertRate:      opts.InsertRate,
		collisionRadius: max(opts.CollisionRadius, MinCollisionRadius),
		moving:          true,
	}
}

func (w *World) Boundary() quadtree.AABB {
	return w.tree.Boundary()
}

// Add inserts a point at (x, y) moving by (vx, vy) per tick. It reports
// false if the position is outside the world.
func (w *World) Add(x, y, vx, vy float64) (PointView, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return viewOf(w.add(x, y, vx, vy))
}

func (w *World) add(x, y, vx, vy float64) *MovingPoint {
	w.nextID++
	p := &MovingPoint{
		Point:    quadtree.Point{X: x, Y: y},
		ID:       w.nextID,
		Velocity: quadtree.Point{X: vx, Y: vy},
	}
	if !w.tree.Insert(p) {
		glog.V(1).Infof("rejected point %d at %v", p.ID, p.Point)
		return nil
	}
	w.stats.Inserted++
	return p
}

// AddRandom inserts a point at a random integer position with a random
// integer velocity.
func (w *World) AddRandom() (PointView, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return viewOf(w.addRandom())
}

func (w *World) addRandom() *MovingPoint {
	b := w.tree.Boundary()
	x := randomBetween(w.rand, b.XMin(), b.XMax())
	y := randomBetween(w.rand, b.YMin(), b.YMax())
	vx := float64(w.rand.Intn(2*w.maxSpeed+1) - w.maxSpeed)
	vy := float64(w.rand.Intn(2*w.maxSpeed+1) - w.maxSpeed)
	return w.add(x, y, vx, vy)
}

// randomBetween returns a random integer in [lo, hi].
func randomBetween(r *rand.Rand, lo, hi float64) float64 {
	l, h := math.Ceil(lo), math.Floor(hi)
	if h <= l {
		return l
	}
	return l + float64(r.Int63n(int64(h-l)+1))
}

// RemoveRandom removes a random point. It returns false if the world is
// empty.
func (w *World) RemoveRandom() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.removeRandom()
}

func (w *World) removeRandom() bool {
	points := w.tree.Points()
	if len(points) == 0 {
		return false
	}
	w.remove(points[w.rand.Intn(len(points))])
	return true
}

func (w *World) remove(p *MovingPoint) {
	if w.tree.Remove(p) {
		w.stats.Removed++
	}
	w.stopRemovingIfEmpty()
}

// RemoveNear removes every point in the collision area around (x, y) and
// returns how many were removed.
func (w *World) RemoveNear(x, y float64) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	points := w.tree.Query(w.collisionArea(x, y))
	for _, p := range points {
		w.remove(p)
	}
	return len(points)
}

func (w *World) collisionArea(x, y float64) quadtree.AABB {
	return quadtree.NewAABB(quadtree.Point{X: x, Y: y}, quadtree.Point{X: w.collisionRadius, Y: w.collisionRadius})
}

// CollisionRadius returns the collision area's half-size.
func (w *World) CollisionRadius() float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.collisionRadius
}

// Nearby returns the points in the collision area around (x, y), along with
// the area that was searched.
func (w *World) Nearby(x, y float64) ([]PointView, quadtree.AABB) {
	w.mu.RLock()
	area := w.collisionArea(x, y)
	start := time.Now()
	points := w.tree.Query(area)
	elapsed := time.Since(start)
	views := viewsOf(points)
	w.mu.RUnlock()

	w.queryMu.Lock()
	defer w.queryMu.Unlock()
	w.queries++
	if w.queries == 1 {
		w.avgQueryTime = elapsed
	} else {
		const weight = 0.1
		w.avgQueryTime = time.Duration(float64(w.avgQueryTime)*(1-weight) + float64(elapsed)*weight)
	}
	return views, area
}

// Region returns the points inside region.
func (w *World) Region(region quadtree.AABB) []PointView {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return viewsOf(w.tree.Query(region))
}

// SetInsertRate sets how many points are added (positive) or removed
// (negative) per tick. A negative rate is refused while the world is empty.
func (w *World) SetInsertRate(rate float64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if rate < 0 && w.tree.Len() == 0 {
		return false
	}
	w.insertRate = rate
	glog.Infof("insertion rate changed to %v", rate)
	return true
}

func (w *World) stopRemovingIfEmpty() {
	if w.insertRate < 0 && w.tree.Len() == 0 {
		w.insertRate = 0
		w.accumulator = 0
		glog.Infof("world is empty, insertion rate reset to 0")
	}
}

// SetCollisionRadius changes the collision area's half-size, never going
// below MinCollisionRadius. It returns the radius in effect.
func (w *World) SetCollisionRadius(r float64) float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.collisionRadius = max(r, MinCollisionRadius)
	return w.collisionRadius
}

func (w *World) SetMoving(moving bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.moving = moving
}

// Rebuild replaces the tree with one of the given capacity holding the same
// points.
func (w *World) Rebuild(capacity int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	points := w.tree.Points()
	tree := quadtree.New[*MovingPoint](w.tree.Boundary(), capacity)
	tree.InsertAll(points)
	w.tree = tree
	w.stats.Rebuilds++
	glog.Infof("rebuilt quadtree: capacity=%d points=%d depth=%d", capacity, tree.Len(), tree.Depth())
}

// Tick runs one step: add or remove points according to the insertion
// rate, then move every point by its velocity.
func (w *World) Tick() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.accumulator += w.insertRate
	for math.Abs(w.accumulator) >= 1 {
		if w.accumulator > 0 {
			w.accumulator--
			w.addRandom()
		} else {
			w.accumulator++
			w.removeRandom()
		}
	}

	if w.moving {
		for _, p := range w.tree.Points() {
			w.move(p)
		}
	}
	w.stats.Ticks++
}

func (w *World) move(p *MovingPoint) {
	if p.Velocity == (quadtree.Point{}) {
		return
	}
	switch res := w.tree.TranslatePoint(p, p.Velocity.X, p.Velocity.Y); res {
	case quadtree.Translated:
		w.stats.Translated++
	case quadtree.Removed:
		// Only the root can report Removed here, so the point has left
		// the world.
		w.stats.Escaped++
		glog.V(2).Infof("point %d left the world at %v", p.ID, p.Point)
		w.stopRemovingIfEmpty()
	default:
		glog.Warningf("point %d could not be moved: %v", p.ID, res)
	}
}

// Run calls Tick every interval until ctx is done. onTick, if not nil, is
// called after each tick.
func (w *World) Run(ctx context.Context, interval time.Duration, onTick func()) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.Tick()
			if onTick != nil {
				onTick()
			}
		}
	}
}

// Len returns the number of points in the world.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.tree.Len()
}

func (w *World) Stats() Stats {
	w.mu.RLock()
	stats := w.stats
	w.mu.RUnlock()
	w.queryMu.Lock()
	defer w.queryMu.Unlock()
	stats.Queries = w.queries
	stats.AvgQueryTime = w.avgQueryTime
	return stats
}
