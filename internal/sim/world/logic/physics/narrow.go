package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// slab clips the parametric interval [*tmin, *tmax] of o+d*t against lo..hi on one axis.
// A ray parallel to the slab is inside it when o lies within lo..hi; with open set,
// lying exactly on a boundary counts as outside.
func slab(o, d, lo, hi float64, open bool, tmin, tmax *float64) bool {
	if d == 0 {
		if open {
			return o > lo && o < hi
		}
		return o >= lo && o <= hi
	}
	t1 := (lo - o) / d
	t2 := (hi - o) / d
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	if t1 > *tmin {
		*tmin = t1
	}
	if t2 < *tmax {
		*tmax = t2
	}
	return *tmin <= *tmax
}

// rayBox returns the entry distance of a ray (unit dir) into box, limited to maxDist.
// Rays starting inside the box do not report it.
func rayBox(o, d mgl64.Vec3, maxDist float64, b AABB) (float64, bool) {
	if b.Contains(o) {
		return 0, false
	}
	tmin, tmax := 0.0, maxDist
	for i := 0; i < 3; i++ {
		if !slab(o[i], d[i], b.Min[i], b.Max[i], false, &tmin, &tmax) {
			return 0, false
		}
	}
	if tmax <= 0 {
		return 0, false
	}
	return tmin, true
}

func rayRect(o, d mgl64.Vec2, maxDist float64, lo, hi mgl64.Vec2) (float64, bool) {
	tmin, tmax := 0.0, maxDist
	for i := 0; i < 2; i++ {
		if !slab(o[i], d[i], lo[i], hi[i], true, &tmin, &tmax) {
			return 0, false
		}
	}
	// Touching the boundary while moving away is not a hit.
	if tmax <= 0 {
		return 0, false
	}
	return tmin, true
}

func rayCircle(o, d mgl64.Vec2, maxDist float64, c mgl64.Vec2, r float64) (float64, bool) {
	m := o.Sub(c)
	b := m.Dot(d)
	cc := m.Dot(m) - r*r
	if cc >= 0 && b >= 0 {
		return 0, false
	}
	disc := b*b - cc
	if disc < 0 {
		return 0, false
	}
	t := -b - math.Sqrt(disc)
	if t < 0 {
		t = 0
	}
	if t > maxDist {
		return 0, false
	}
	return t, true
}

// circleOverlapsRect reports strict overlap (touching does not count).
func circleOverlapsRect(c mgl64.Vec2, r float64, lo, hi mgl64.Vec2) bool {
	px := math.Max(lo.X(), math.Min(c.X(), hi.X()))
	pz := math.Max(lo.Y(), math.Min(c.Y(), hi.Y()))
	dx, dz := c.X()-px, c.Y()-pz
	return dx*dx+dz*dz < r*r
}

// sweepCircleRect returns the travel distance at which a circle moving along the
// unit direction d first touches the rectangle lo..hi. The swept shape is the
// rectangle grown by r with rounded corners.
func sweepCircleRect(c mgl64.Vec2, r float64, d mgl64.Vec2, maxDist float64, lo, hi mgl64.Vec2) (float64, bool) {
	best := math.Inf(1)
	if t, ok := rayRect(c, d, maxDist, mgl64.Vec2{lo.X() - r, lo.Y()}, mgl64.Vec2{hi.X() + r, hi.Y()}); ok {
		best = math.Min(best, t)
	}
	if t, ok := rayRect(c, d, maxDist, mgl64.Vec2{lo.X(), lo.Y() - r}, mgl64.Vec2{hi.X(), hi.Y() + r}); ok {
		best = math.Min(best, t)
	}
	corners := [4]mgl64.Vec2{
		{lo.X(), lo.Y()},
		{hi.X(), lo.Y()},
		{lo.X(), hi.Y()},
		{hi.X(), hi.Y()},
	}
	for _, k := range corners {
		if t, ok := rayCircle(c, d, maxDist, k, r); ok {
			best = math.Min(best, t)
		}
	}
	if math.IsInf(best, 1) {
		return 0, false
	}
	return best, true
}

// capsuleSweep tests a vertical capsule (sphere centers bottom/top) moving
// horizontally against box. Boxes the capsule already overlaps are ignored.
func capsuleSweep(bottom, top mgl64.Vec3, r float64, d2 mgl64.Vec2, dist float64, b AABB) (float64, bool) {
	lowY := math.Min(bottom.Y(), top.Y()) - r
	highY := math.Max(bottom.Y(), top.Y()) + r
	if b.Max.Y() < lowY || b.Min.Y() > highY {
		return 0, false
	}
	c := mgl64.Vec2{bottom.X(), bottom.Z()}
	lo := mgl64.Vec2{b.Min.X(), b.Min.Z()}
	hi := mgl64.Vec2{b.Max.X(), b.Max.Z()}
	if circleOverlapsRect(c, r, lo, hi) {
		return 0, false
	}
	return sweepCircleRect(c, r, d2, dist, lo, hi)
}
